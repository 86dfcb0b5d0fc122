package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-trainer/internal/cache"
	"github.com/mind-engage/mindengage-trainer/internal/quiz"
	"github.com/mind-engage/mindengage-trainer/internal/quizgen"
	"github.com/mind-engage/mindengage-trainer/internal/scoring"
	"github.com/mind-engage/mindengage-trainer/internal/storage"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var (
		ve *quiz.ValidationError
		pe *quiz.ParseError
		ge *quizgen.GenerationError
		se *scoring.ScoringError
	)
	switch {
	case errors.As(err, &ve), errors.As(err, &pe):
		return http.StatusBadRequest
	case errors.Is(err, quiz.ErrNotFound), errors.Is(err, storage.ErrNotFound), errors.Is(err, cache.ErrMiss):
		return http.StatusNotFound
	case errors.As(err, &ge), errors.As(err, &se):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	http.Error(w, msg, status)
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}

// pathParam returns a URL parameter decoded. chi matches on the raw path when
// the request carries percent-encoded runes, as browsers send Japanese names.
func pathParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}
