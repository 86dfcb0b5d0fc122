package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	authmw "github.com/mind-engage/mindengage-trainer/internal/auth/middleware"
	"github.com/mind-engage/mindengage-trainer/internal/quiz"
)

type page struct {
	Data  any `json:"data"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// collection adapts one record type of the store to the generic table API.
type collection struct {
	list   func(ctx context.Context, o quiz.ListOpts) (any, error)
	get    func(ctx context.Context, id string) (any, error)
	create func(ctx context.Context, raw []byte, by string) (any, error)
	delete func(ctx context.Context, id string) error
}

func collections(st quiz.Store) map[string]collection {
	return map[string]collection{
		"question_sets": {
			list: func(ctx context.Context, o quiz.ListOpts) (any, error) { return st.ListSets(ctx, o) },
			get:  func(ctx context.Context, id string) (any, error) { return st.GetSet(ctx, id) },
			create: func(ctx context.Context, raw []byte, by string) (any, error) {
				var s quiz.QuestionSet
				if err := json.Unmarshal(raw, &s); err != nil {
					return nil, &quiz.ParseError{Field: "question_sets", Err: err}
				}
				if s.CreatedBy == "" {
					s.CreatedBy = by
				}
				return st.CreateSet(ctx, s)
			},
			delete: st.DeleteSet,
		},
		"questions": {
			list: func(ctx context.Context, o quiz.ListOpts) (any, error) { return st.ListQuestions(ctx, o) },
			get:  func(ctx context.Context, id string) (any, error) { return st.GetQuestion(ctx, id) },
			create: func(ctx context.Context, raw []byte, by string) (any, error) {
				var q quiz.Question
				if err := json.Unmarshal(raw, &q); err != nil {
					return nil, &quiz.ParseError{Field: "questions", Err: err}
				}
				// records written by older clients carry set data in markers
				if q.SetID == "" {
					if _, err := q.Resolve(); err != nil && !errors.Is(err, quiz.ErrMissingMarker) {
						return nil, err
					}
				}
				if q.CreatedBy == "" {
					q.CreatedBy = by
				}
				return st.CreateQuestion(ctx, q)
			},
			delete: st.DeleteQuestion,
		},
		"answers": {
			list: func(ctx context.Context, o quiz.ListOpts) (any, error) { return st.ListAnswers(ctx, o) },
			get:  func(ctx context.Context, id string) (any, error) { return st.GetAnswer(ctx, id) },
			create: func(ctx context.Context, raw []byte, by string) (any, error) {
				var a quiz.Answer
				if err := json.Unmarshal(raw, &a); err != nil {
					return nil, &quiz.ParseError{Field: "answers", Err: err}
				}
				if a.UserID == "" {
					a.UserID = by
				}
				return st.CreateAnswer(ctx, a)
			},
			delete: st.DeleteAnswer,
		},
		"feedbacks": {
			list: func(ctx context.Context, o quiz.ListOpts) (any, error) { return st.ListFeedbacks(ctx, o) },
			get:  func(ctx context.Context, id string) (any, error) { return st.GetFeedback(ctx, id) },
			create: func(ctx context.Context, raw []byte, _ string) (any, error) {
				var f quiz.Feedback
				if err := json.Unmarshal(raw, &f); err != nil {
					return nil, &quiz.ParseError{Field: "feedbacks", Err: err}
				}
				return st.CreateFeedback(ctx, f)
			},
			delete: st.DeleteFeedback,
		},
	}
}

// MountTables registers GET/POST /{collection} and GET/DELETE
// /{collection}/{id} on r.
func MountTables(r chi.Router, st quiz.Store) {
	cols := collections(st)
	lookup := func(w http.ResponseWriter, r *http.Request) (collection, bool) {
		c, ok := cols[chi.URLParam(r, "collection")]
		if !ok {
			http.Error(w, "unknown collection", http.StatusNotFound)
		}
		return c, ok
	}

	// GET /tables/{collection}?page=&limit=&search=
	r.Get("/{collection}", func(w http.ResponseWriter, r *http.Request) {
		c, ok := lookup(w, r)
		if !ok {
			return
		}
		qv := r.URL.Query()
		limit := parseIntDefault(qv.Get("limit"), 100)
		if limit == 0 || limit > 500 {
			limit = 100
		}
		pg := parseIntDefault(qv.Get("page"), 1)
		if pg < 1 {
			pg = 1
		}
		data, err := c.list(r.Context(), quiz.ListOpts{
			Q:          strings.TrimSpace(qv.Get("search")),
			Limit:      limit,
			Offset:     (pg - 1) * limit,
			SetID:      qv.Get("set_id"),
			UserID:     qv.Get("user_id"),
			Category:   qv.Get("category"),
			MidTopic:   qv.Get("mid_topic"),
			QuestionID: qv.Get("question_id"),
			AnswerID:   qv.Get("answer_id"),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, page{Data: data, Page: pg, Limit: limit})
	})

	r.Post("/{collection}", func(w http.ResponseWriter, r *http.Request) {
		c, ok := lookup(w, r)
		if !ok {
			return
		}
		raw, err := io.ReadAll(io.LimitReader(r.Body, 4<<20))
		if err != nil {
			http.Error(w, "read body", http.StatusBadRequest)
			return
		}
		if err := quiz.ValidateRecord(chi.URLParam(r, "collection"), raw); err != nil {
			writeError(w, err)
			return
		}
		rec, err := c.create(r.Context(), raw, authmw.SubjectFromContext(r.Context()))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, rec)
	})

	r.Get("/{collection}/{id}", func(w http.ResponseWriter, r *http.Request) {
		c, ok := lookup(w, r)
		if !ok {
			return
		}
		rec, err := c.get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	})

	r.Delete("/{collection}/{id}", func(w http.ResponseWriter, r *http.Request) {
		c, ok := lookup(w, r)
		if !ok {
			return
		}
		if err := c.delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}
