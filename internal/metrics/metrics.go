package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trainer_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trainer_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	QuestionSetsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trainer_question_sets_generated_total",
			Help: "Question sets generated, by category and outcome",
		},
		[]string{"category", "status"},
	)

	AnswersGraded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trainer_answers_graded_total",
			Help: "Graded answers by question type and outcome",
		},
		[]string{"type", "outcome"},
	)

	GradingErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trainer_grading_errors_total",
			Help: "Per-answer grading failures by tag",
		},
		[]string{"tag"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		QuestionSetsGenerated,
		AnswersGraded,
		GradingErrors,
	)
}

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }

// Middleware records count and latency per chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		RecordRequest(r.Method, route, strconv.Itoa(status), time.Since(start))
	})
}

func RecordRequest(method, route, status string, d time.Duration) {
	RequestsTotal.WithLabelValues(method, route, status).Inc()
	RequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordGeneration counts one generation attempt.
func RecordGeneration(category string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	QuestionSetsGenerated.WithLabelValues(category, status).Inc()
}

// RecordGraded counts one graded answer. outcome is correct|incorrect for
// choice questions and scored for essays.
func RecordGraded(qtype, outcome string) {
	AnswersGraded.WithLabelValues(qtype, outcome).Inc()
}

func RecordGradingError(tag string) {
	GradingErrors.WithLabelValues(tag).Inc()
}
