package grading

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mind-engage/mindengage-trainer/internal/feedback"
	"github.com/mind-engage/mindengage-trainer/internal/quiz"
	"github.com/mind-engage/mindengage-trainer/internal/scoring"
)

// Error tags attached to per-answer failures.
const (
	TagChoiceFeedback = "choice-feedback-error"
	TagEssayScoring   = "essay-scoring-error"
	TagEssayFeedback  = "essay-feedback-error"
	TagResultDisplay  = "result-display-error"
)

// ItemError is a failure grading one answer of a batch.
type ItemError struct {
	Tag        string
	QuestionID string
	Ordinal    int
	Err        error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("%s: question %d (%s): %v", e.Tag, e.Ordinal, e.QuestionID, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

func (e *ItemError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Tag        string `json:"tag"`
		QuestionID string `json:"question_id"`
		Ordinal    int    `json:"ordinal"`
		Message    string `json:"message"`
	}{e.Tag, e.QuestionID, e.Ordinal, e.Err.Error()})
}

// BatchResult aggregates one completed test.
type BatchResult struct {
	Results    []Result     `json:"results"`
	Errors     []*ItemError `json:"errors"`
	TotalScore int          `json:"total_score"`
	MaxScore   int          `json:"max_score"`
	Percent    float64      `json:"percent"`
	Grade      string       `json:"grade"`
	Comment    string       `json:"comment"`
	Aborted    bool         `json:"aborted"`
}

// Batch grades every answer of a test and renders each result.
type Batch struct {
	grader Grader
	abort  bool
	log    logrus.FieldLogger
}

func NewBatch(opts ...Option) *Batch {
	cfg := newConfig(opts)
	g := cfg.Grader
	if g == nil {
		g = NewDefaultGrader(opts...)
	}
	return &Batch{grader: g, abort: cfg.AbortOnError, log: cfg.Logger}
}

// Run grades items in order. A failing item is recorded and skipped; with
// WithAbortOnError the batch stops at the first failure and keeps what was
// already graded. MaxScore always covers every item so the percentage
// reflects the whole test.
func (b *Batch) Run(ctx context.Context, items []Item) BatchResult {
	var out BatchResult
	for _, it := range items {
		out.MaxScore += it.Question.Points()
	}
	for _, it := range items {
		if err := ctx.Err(); err != nil {
			out.Aborted = true
			break
		}
		res, err := b.gradeOne(ctx, it)
		if err != nil {
			var ie *ItemError
			if !errors.As(err, &ie) {
				ie = &ItemError{Tag: TagResultDisplay, QuestionID: it.Question.ID, Ordinal: it.Question.Ordinal, Err: err}
			}
			b.log.WithFields(logrus.Fields{
				"question_id": ie.QuestionID,
				"ordinal":     ie.Ordinal,
				"tag":         ie.Tag,
			}).WithError(ie.Err).Warn("grade item failed")
			out.Errors = append(out.Errors, ie)
			if b.abort {
				out.Aborted = true
				break
			}
			continue
		}
		out.Results = append(out.Results, res)
		out.TotalScore += res.Score
	}
	out.Percent = scoring.Percent(out.TotalScore, out.MaxScore)
	out.Grade = scoring.Grade(out.Percent)
	out.Comment = scoring.Comment(out.Percent)
	return out
}

func (b *Batch) gradeOne(ctx context.Context, it Item) (Result, error) {
	var (
		res Result
		err error
	)
	if perr := guard(func() { res, err = b.grader.Grade(ctx, it) }); perr != nil {
		return res, &ItemError{Tag: panicTag(it.Question.Type), QuestionID: it.Question.ID, Ordinal: it.Question.Ordinal, Err: perr}
	}
	if err != nil {
		return res, err
	}
	html, err := feedback.RenderHTML(res.Feedback, res.MaxScore)
	if err != nil {
		return res, &ItemError{Tag: TagResultDisplay, QuestionID: it.Question.ID, Ordinal: it.Question.Ordinal, Err: err}
	}
	res.HTML = html
	return res, nil
}

func panicTag(t quiz.Type) string {
	switch t {
	case quiz.TypeChoice:
		return TagChoiceFeedback
	case quiz.TypeEssay:
		return TagEssayFeedback
	default:
		return TagResultDisplay
	}
}
