package grading

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/mind-engage/mindengage-trainer/internal/feedback"
	"github.com/mind-engage/mindengage-trainer/internal/quiz"
	"github.com/mind-engage/mindengage-trainer/internal/scoring"
)

// Item is one submitted answer with what is needed to grade it.
type Item struct {
	Question   quiz.Question
	AnswerText string
	SourceText string // original passage; falls back to the explanation marker
}

// Result is the outcome of grading a single answer.
type Result struct {
	QuestionID string                  `json:"question_id"`
	Ordinal    int                     `json:"ordinal"`
	Type       quiz.Type               `json:"type"`
	Title      string                  `json:"title"`
	AnswerText string                  `json:"answer_text"`
	Score      int                     `json:"score"`
	MaxScore   int                     `json:"max_score"`
	Correct    *bool                   `json:"is_correct,omitempty"`
	Breakdown  *scoring.Breakdown      `json:"breakdown,omitempty"`
	Items      []scoring.BreakdownItem `json:"breakdown_items,omitempty"`
	Feedback   feedback.Sections       `json:"feedback"`
	HTML       string                  `json:"html,omitempty"`
}

// Strategy grades a single answer.
type Strategy interface {
	Grade(ctx context.Context, it Item) (Result, error)
}

// Grader routes by question type to the correct Strategy.
type Grader interface {
	Grade(ctx context.Context, it Item) (Result, error)
}

type defaultGrader struct {
	strategies map[quiz.Type]Strategy
}

func (g *defaultGrader) Grade(ctx context.Context, it Item) (Result, error) {
	s, ok := g.strategies[it.Question.Type]
	if !ok {
		return baseResult(it), &ItemError{
			Tag:        TagResultDisplay,
			QuestionID: it.Question.ID,
			Ordinal:    it.Question.Ordinal,
			Err:        &scoring.ScoringError{QuestionID: it.Question.ID, Reason: fmt.Sprintf("unknown question type %q", it.Question.Type)},
		}
	}
	return s.Grade(ctx, it)
}

// Engine options

type Option func(*config)

type config struct {
	Scorer       *scoring.Scorer
	AbortOnError bool
	Logger       logrus.FieldLogger
	Grader       Grader
}

func WithAbortOnError(b bool) Option         { return func(c *config) { c.AbortOnError = b } }
func WithLogger(l logrus.FieldLogger) Option { return func(c *config) { c.Logger = l } }
func WithGrader(g Grader) Option             { return func(c *config) { c.Grader = g } }

func newConfig(opts []Option) *config {
	cfg := &config{Scorer: scoring.Default}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		cfg.Logger = l
	}
	return cfg
}

// NewDefaultGrader installs the built-in strategies.
func NewDefaultGrader(opts ...Option) Grader {
	cfg := newConfig(opts)
	return &defaultGrader{
		strategies: map[quiz.Type]Strategy{
			quiz.TypeChoice: choiceStrategy{},
			quiz.TypeEssay:  essayStrategy{scorer: cfg.Scorer},
		},
	}
}

func baseResult(it Item) Result {
	return Result{
		QuestionID: it.Question.ID,
		Ordinal:    it.Question.Ordinal,
		Type:       it.Question.Type,
		Title:      it.Question.Title,
		AnswerText: it.AnswerText,
		MaxScore:   it.Question.Points(),
	}
}

// --- Strategies ---

type choiceStrategy struct{}

func (choiceStrategy) Grade(_ context.Context, it Item) (Result, error) {
	res := baseResult(it)
	fail := func(e error) error {
		return &ItemError{Tag: TagChoiceFeedback, QuestionID: it.Question.ID, Ordinal: it.Question.Ordinal, Err: e}
	}
	answer := normalizeChoice(it.AnswerText)
	score, correct, err := scoring.ScoreChoice(it.Question, answer, res.MaxScore)
	if err != nil {
		return res, fail(err)
	}
	fb, err := feedback.ForChoice(it.Question, answer, res.MaxScore)
	if err != nil {
		return res, fail(err)
	}
	res.Score = score
	res.Correct = &correct
	res.Feedback = feedback.WithScoreHeader(fb, it.Question.Ordinal, score, res.MaxScore, nil)
	return res, nil
}

type essayStrategy struct{ scorer *scoring.Scorer }

func (s essayStrategy) Grade(_ context.Context, it Item) (Result, error) {
	res := baseResult(it)
	source := it.SourceText
	if source == "" {
		if m, perr := quiz.ParseMarkers(it.Question.Explanation); perr == nil {
			source = m.SourceText
		}
	}

	var er scoring.EssayResult
	if err := guard(func() {
		er = s.scorer.ScoreEssay(it.AnswerText, source, scoring.ParseKeywords(it.Question.CorrectAnswer), res.MaxScore)
	}); err != nil {
		return res, &ItemError{Tag: TagEssayScoring, QuestionID: it.Question.ID, Ordinal: it.Question.Ordinal, Err: err}
	}
	res.Score = er.Score
	res.Breakdown = &er.Breakdown
	res.Items = er.Breakdown.Items(res.MaxScore)

	var fb feedback.Sections
	if err := guard(func() {
		fb = feedback.ForEssay(it.Question, it.AnswerText, source, er.Score, res.MaxScore, &er.Breakdown)
	}); err != nil {
		return res, &ItemError{Tag: TagEssayFeedback, QuestionID: it.Question.ID, Ordinal: it.Question.Ordinal, Err: err}
	}
	res.Feedback = feedback.WithScoreHeader(fb, it.Question.Ordinal, er.Score, res.MaxScore, res.Items)
	return res, nil
}

// guard turns a panic inside f into an error.
func guard(f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	f()
	return nil
}
