package trainer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"strconv"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mind-engage/mindengage-trainer/internal/grading"
	"github.com/mind-engage/mindengage-trainer/internal/metrics"
	"github.com/mind-engage/mindengage-trainer/internal/quiz"
	"github.com/mind-engage/mindengage-trainer/internal/storage"
	syncx "github.com/mind-engage/mindengage-trainer/internal/sync"
)

// AnswerInput is one submitted answer of a test.
type AnswerInput struct {
	QuestionID string `json:"question_id"`
	AnswerText string `json:"answer_text"`
}

// Completion is the outcome of finishing a test.
type Completion struct {
	AttemptID string `json:"attempt_id"`
	SetID     string `json:"set_id"`
	ReportKey string `json:"report_key,omitempty"`
	grading.BatchResult
}

// CompleteTest stores every answer first and only then grades the batch, so
// a grading failure never loses what the learner wrote. Each graded answer
// gets a feedback record; the combined report goes to the blob store.
func (s *Service) CompleteTest(ctx context.Context, userID, setID string, answers []AnswerInput) (Completion, error) {
	set, err := s.store.GetSet(ctx, setID)
	if err != nil {
		return Completion{}, err
	}
	qs, err := s.store.ListQuestions(ctx, quiz.ListOpts{SetID: setID})
	if err != nil {
		return Completion{}, err
	}
	byQuestion := make(map[string]string, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a.AnswerText
	}
	for _, a := range answers {
		if !containsQuestion(qs, a.QuestionID) {
			return Completion{}, &quiz.ValidationError{Field: "answers", Reason: fmt.Sprintf("question %s is not part of set %s", a.QuestionID, setID)}
		}
	}
	for _, q := range qs {
		if _, ok := byQuestion[q.ID]; !ok {
			return Completion{}, &quiz.ValidationError{Field: "answers", Reason: fmt.Sprintf("missing answer for question %d", q.Ordinal)}
		}
	}

	answerIDs := make(map[string]string, len(qs))
	items := make([]grading.Item, 0, len(qs))
	for _, q := range qs {
		a, err := s.store.CreateAnswer(ctx, quiz.Answer{UserID: userID, QuestionID: q.ID, AnswerText: byQuestion[q.ID]})
		if err != nil {
			return Completion{}, fmt.Errorf("save answer %d: %w", q.Ordinal, err)
		}
		answerIDs[q.ID] = a.ID
		items = append(items, grading.Item{Question: q, AnswerText: a.AnswerText, SourceText: set.SourceText})
	}

	out := Completion{AttemptID: uuid.NewString(), SetID: setID, BatchResult: s.batch.Run(ctx, items)}
	for _, e := range out.Errors {
		metrics.RecordGradingError(e.Tag)
	}
	for _, r := range out.Results {
		metrics.RecordGraded(string(r.Type), outcome(r))
		_, err := s.store.CreateFeedback(ctx, quiz.Feedback{
			AnswerID:   answerIDs[r.QuestionID],
			UserID:     userID,
			QuestionID: r.QuestionID,
			Score:      r.Score,
			MaxScore:   r.MaxScore,
			Sections:   r.Feedback.Map(),
			HTML:       r.HTML,
		})
		if err != nil {
			return out, fmt.Errorf("save feedback %d: %w", r.Ordinal, err)
		}
	}

	log := s.log.WithFields(logrus.Fields{"set_id": setID, "user_id": userID, "attempt_id": out.AttemptID})
	if s.blobs != nil {
		if key, err := s.storeReport(ctx, set, userID, out); err != nil {
			log.WithError(err).Warn("store report")
		} else {
			out.ReportKey = key
		}
	}
	s.emit(ctx, syncx.TypeTestCompleted, out.AttemptID, map[string]any{
		"user_id":     userID,
		"set_id":      setID,
		"total_score": out.TotalScore,
		"max_score":   out.MaxScore,
		"grade":       out.Grade,
		"errors":      len(out.Errors),
	})
	log.WithFields(logrus.Fields{"total": out.TotalScore, "max": out.MaxScore, "errors": len(out.Errors)}).Info("test completed")
	return out, nil
}

func containsQuestion(qs []quiz.Question, id string) bool {
	for _, q := range qs {
		if q.ID == id {
			return true
		}
	}
	return false
}

func outcome(r grading.Result) string {
	switch {
	case r.Correct == nil:
		return "scored"
	case *r.Correct:
		return "correct"
	default:
		return "incorrect"
	}
}

var pageTmpl = template.Must(template.New("report").Parse(`<!doctype html>
<html lang="ja"><head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body><h1>{{.Title}}</h1>
<p class="total">{{.Total}} / {{.Max}}点 ({{.Percent}}%) 評価: {{.Grade}}</p>
<p class="comment">{{.Comment}}</p>
{{range .Results}}<article><h2>問{{.Ordinal}} {{.Title}}</h2>{{.HTML}}</article>
{{end}}{{if .Errors}}<ul class="errors">{{range .Errors}}<li>問{{.Ordinal}}: {{.Tag}}</li>{{end}}</ul>{{end}}
</body></html>
`))

type pageResult struct {
	Ordinal int
	Title   string
	HTML    template.HTML
}

// RenderReport renders a completed attempt as a standalone page.
func RenderReport(set quiz.QuestionSet, c Completion) ([]byte, error) {
	results := make([]pageResult, len(c.Results))
	for i, r := range c.Results {
		// r.HTML comes from feedback.RenderHTML and is already escaped.
		results[i] = pageResult{Ordinal: r.Ordinal, Title: r.Title, HTML: template.HTML(r.HTML)}
	}
	var buf bytes.Buffer
	err := pageTmpl.Execute(&buf, map[string]any{
		"Title":   set.Title,
		"Total":   c.TotalScore,
		"Max":     c.MaxScore,
		"Percent": strconv.FormatFloat(c.Percent, 'f', -1, 64),
		"Grade":   c.Grade,
		"Comment": c.Comment,
		"Results": results,
		"Errors":  c.Errors,
	})
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *Service) storeReport(ctx context.Context, set quiz.QuestionSet, userID string, c Completion) (string, error) {
	page, err := RenderReport(set, c)
	if err != nil {
		return "", err
	}
	return s.blobs.Put(ctx, storage.ReportKey(userID, set.ID, c.AttemptID), bytes.NewReader(page), "text/html; charset=utf-8")
}

// OpenReport returns a stored report. Keys are the ones CompleteTest returns.
func (s *Service) OpenReport(ctx context.Context, key string) ([]byte, error) {
	if s.blobs == nil {
		return nil, storage.ErrNotFound
	}
	rc, err := s.blobs.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
