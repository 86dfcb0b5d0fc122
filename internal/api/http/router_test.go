package http

import (
	"bytes"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authmw "github.com/mind-engage/mindengage-trainer/internal/auth/middleware"
	"github.com/mind-engage/mindengage-trainer/internal/cache"
	"github.com/mind-engage/mindengage-trainer/internal/quiz"
	"github.com/mind-engage/mindengage-trainer/internal/quizgen"
	"github.com/mind-engage/mindengage-trainer/internal/rbac"
	"github.com/mind-engage/mindengage-trainer/internal/storage"
	"github.com/mind-engage/mindengage-trainer/internal/trainer"
)

const passage = "顧客の課題を理解することが営業の基本です。" +
	"ヒアリングでは顧客のニーズを丁寧に確認します。" +
	"信頼を得るためには提案の質を高める必要があります。" +
	"顧客との関係構築は長期的な成約に繋がります。"

// asUser stands in for the session middleware.
func asUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := authmw.WithSubject(r.Context(), r.Header.Get("X-User"))
		ctx = rbac.WithRole(ctx, r.Header.Get("X-Role"))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func newServer(t *testing.T) (http.Handler, quiz.Store) {
	t.Helper()
	st := quiz.NewMemoryStore()
	blobs, err := storage.NewFSStore(t.TempDir())
	require.NoError(t, err)
	svc := trainer.New(trainer.Deps{
		Store:     st,
		Generator: quizgen.New(quizgen.WithRand(rand.New(rand.NewPCG(3, 3)))),
		Previews:  cache.NewMemoryPreviewCache(time.Minute),
		Blobs:     blobs,
	})
	r := chi.NewRouter()
	r.Use(asUser)
	Mount(r, svc, st)
	return r, st
}

func do(t *testing.T, h http.Handler, method, path, user, role string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("X-User", user)
	req.Header.Set("X-Role", role)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestGenerateSaveTakeComplete(t *testing.T) {
	h, _ := newServer(t)
	gen := map[string]string{"category": "営業", "mid_topic": "ヒアリング", "source_text": passage}

	rec := do(t, h, http.MethodPost, "/generate/preview", "u1", rbac.RoleLearner, gen)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, h, http.MethodPost, "/generate/preview", "admin", rbac.RoleAdmin, gen)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	preview := decode[trainer.PreviewResult](t, rec)
	require.Len(t, preview.Items, 5)

	rec = do(t, h, http.MethodPost, "/question-sets", "admin", rbac.RoleAdmin, map[string]string{"token": preview.Token})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	saved := decode[trainer.SavedSet](t, rec)

	rec = do(t, h, http.MethodGet, "/question-sets/"+saved.Set.ID+"/test", "u1", rbac.RoleLearner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	test := decode[struct {
		Questions []quiz.Question `json:"questions"`
	}](t, rec)
	require.Len(t, test.Questions, 5)
	for _, q := range test.Questions {
		assert.Empty(t, q.CorrectAnswer)
	}

	answers := make([]trainer.AnswerInput, 0, 5)
	for _, q := range saved.Questions {
		answers = append(answers, trainer.AnswerInput{QuestionID: q.ID, AnswerText: q.CorrectAnswer})
	}
	rec = do(t, h, http.MethodPost, "/question-sets/"+saved.Set.ID+"/complete", "u1", rbac.RoleLearner, map[string]any{"answers": answers})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	c := decode[trainer.Completion](t, rec)
	assert.Equal(t, 100, c.MaxScore)
	assert.Len(t, c.Results, 5)
	require.NotEmpty(t, c.ReportKey)

	rec = do(t, h, http.MethodGet, "/"+c.ReportKey, "u1", rbac.RoleLearner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<!doctype html>")

	rec = do(t, h, http.MethodGet, "/"+c.ReportKey, "u2", rbac.RoleLearner, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, h, http.MethodGet, "/"+c.ReportKey, "admin", rbac.RoleAdmin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/categories/営業/topics/ヒアリング/sets", "u1", rbac.RoleLearner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sets := decode[[]trainer.SetProgress](t, rec)
	require.Len(t, sets, 1)
	assert.True(t, sets[0].Completed)
	assert.Equal(t, 100, sets[0].Progress)
}

func TestErrorStatuses(t *testing.T) {
	h, _ := newServer(t)

	rec := do(t, h, http.MethodPost, "/generate/preview", "admin", rbac.RoleAdmin, map[string]string{"category": "営業", "mid_topic": "x", "source_text": "短い"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/generate/preview", "admin", rbac.RoleAdmin, "{")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/question-sets", "admin", rbac.RoleAdmin, map[string]string{"token": "expired"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/question-sets/nope/test", "u1", rbac.RoleLearner, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/question-sets/nope/complete", "", rbac.RoleLearner, map[string]any{"answers": []any{}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodGet, "/reports/u1/missing.html", "u1", rbac.RoleLearner, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTables(t *testing.T) {
	h, st := newServer(t)

	rec := do(t, h, http.MethodGet, "/tables/questions", "u1", rbac.RoleLearner, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, h, http.MethodGet, "/tables/widgets", "admin", rbac.RoleAdmin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/tables/questions", "admin", rbac.RoleAdmin, `{"type":"quiz"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	legacy := map[string]any{
		"type":           "essay",
		"title":          "記述問題",
		"question_text":  "説明してください",
		"choices":        "[]",
		"correct_answer": "顧客、ニーズ",
		"explanation": quiz.EncodeExplanation(quiz.Markers{
			SetID: "set-1", Ordinal: 4, Points: 25, MidTopic: "ヒアリング", SourceText: passage, Body: "解説",
		}),
	}
	rec = do(t, h, http.MethodPost, "/tables/questions", "admin", rbac.RoleAdmin, legacy)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	q := decode[quiz.Question](t, rec)
	assert.Equal(t, "set-1", q.SetID)
	assert.Equal(t, 4, q.Ordinal)
	assert.Equal(t, 25, q.MaxScore)
	assert.Equal(t, "解説", q.Explanation)

	rec = do(t, h, http.MethodGet, "/tables/questions?search=記述&limit=10", "admin", rbac.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pg := decode[struct {
		Data  []quiz.Question `json:"data"`
		Page  int             `json:"page"`
		Limit int             `json:"limit"`
	}](t, rec)
	assert.Len(t, pg.Data, 1)
	assert.Equal(t, 1, pg.Page)
	assert.Equal(t, 10, pg.Limit)

	rec = do(t, h, http.MethodDelete, "/tables/questions/"+q.ID, "admin", rbac.RoleAdmin, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	_, err := st.GetQuestion(t.Context(), q.ID)
	assert.ErrorIs(t, err, quiz.ErrNotFound)

	rec = do(t, h, http.MethodGet, "/tables/questions/"+q.ID, "admin", rbac.RoleAdmin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDashboard(t *testing.T) {
	h, st := newServer(t)
	_, err := st.CreateUser(t.Context(), quiz.User{Username: "hanako", Role: rbac.RoleLearner})
	require.NoError(t, err)

	rec := do(t, h, http.MethodGet, "/dashboard/learners", "u1", rbac.RoleLearner, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, h, http.MethodGet, "/dashboard/learners", "admin", rbac.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[[]trainer.LearnerStat](t, rec)
	require.Len(t, stats, 1)
	assert.Equal(t, "hanako", stats[0].Username)
	assert.Equal(t, 0, stats[0].CompletionRate)
}
