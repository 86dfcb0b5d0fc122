package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	authmw "github.com/mind-engage/mindengage-trainer/internal/auth/middleware"
	"github.com/mind-engage/mindengage-trainer/internal/quiz"
	"github.com/mind-engage/mindengage-trainer/internal/trainer"
)

// POST /generate/preview
func PreviewHandler(svc *trainer.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in trainer.GenerateInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		in.CreatedBy = authmw.SubjectFromContext(r.Context())
		p, err := svc.Preview(r.Context(), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// POST /question-sets  { "token": "..." } or an explicit batch
func SaveSetHandler(svc *trainer.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in trainer.SaveInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		in.CreatedBy = authmw.SubjectFromContext(r.Context())
		out, err := svc.SaveSet(r.Context(), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

// GET /categories/{category}/topics
func TopicsHandler(svc *trainer.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topics, err := svc.Topics(r.Context(), pathParam(r, "category"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, topics)
	}
}

// GET /categories/{category}/topics/{midTopic}/sets
func TopicSetsHandler(svc *trainer.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sets, err := svc.SetsWithProgress(r.Context(),
			pathParam(r, "category"),
			pathParam(r, "midTopic"),
			authmw.SubjectFromContext(r.Context()))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sets)
	}
}

// GET /question-sets/{id}/test
func TestHandler(svc *trainer.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		set, qs, err := svc.Test(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Set       quiz.QuestionSet `json:"set"`
			Questions []quiz.Question  `json:"questions"`
		}{set, qs})
	}
}

// POST /question-sets/{id}/complete  { "answers": [{question_id, answer_text}] }
func CompleteHandler(svc *trainer.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Answers []trainer.AnswerInput `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		sub := authmw.SubjectFromContext(r.Context())
		if sub == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		c, err := svc.CompleteTest(r.Context(), sub, chi.URLParam(r, "id"), req.Answers)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

// GET /dashboard/learners
func LearnerStatsHandler(svc *trainer.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.LearnerStats(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

// reportOwner reports whether the key under /reports/ belongs to the caller.
// Keys look like reports/{userID}/{setID}/{attemptID}.html.
func reportOwner(r *http.Request) bool {
	parts := strings.Split(strings.TrimPrefix(chi.URLParam(r, "*"), "/"), "/")
	sub := authmw.SubjectFromContext(r.Context())
	return sub != "" && len(parts) >= 1 && parts[0] == sub
}

// GET /reports/*
func ReportHandler(svc *trainer.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := "reports/" + strings.TrimPrefix(chi.URLParam(r, "*"), "/")
		page, err := svc.OpenReport(r.Context(), key)
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page)
	}
}
