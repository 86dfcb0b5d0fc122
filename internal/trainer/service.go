// Package trainer ties generation, persistence and grading into the
// operations the HTTP surface exposes.
package trainer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mind-engage/mindengage-trainer/internal/cache"
	"github.com/mind-engage/mindengage-trainer/internal/grading"
	"github.com/mind-engage/mindengage-trainer/internal/metrics"
	"github.com/mind-engage/mindengage-trainer/internal/quiz"
	"github.com/mind-engage/mindengage-trainer/internal/quizgen"
	"github.com/mind-engage/mindengage-trainer/internal/storage"
	syncx "github.com/mind-engage/mindengage-trainer/internal/sync"
)

// Deps are the collaborators of a Service. Blobs and Events may be nil.
type Deps struct {
	Store     quiz.Store
	Generator *quizgen.Generator
	Batch     *grading.Batch
	Previews  cache.PreviewCache
	Blobs     storage.BlobStore
	Events    syncx.Appender
	Logger    logrus.FieldLogger
}

type Service struct {
	store    quiz.Store
	gen      *quizgen.Generator
	batch    *grading.Batch
	previews cache.PreviewCache
	blobs    storage.BlobStore
	events   syncx.Appender
	log      logrus.FieldLogger
	now      func() time.Time
}

func New(d Deps) *Service {
	s := &Service{
		store:    d.Store,
		gen:      d.Generator,
		batch:    d.Batch,
		previews: d.Previews,
		blobs:    d.Blobs,
		events:   d.Events,
		log:      d.Logger,
		now:      time.Now,
	}
	if s.gen == nil {
		s.gen = quizgen.New()
	}
	if s.batch == nil {
		s.batch = grading.NewBatch()
	}
	if s.previews == nil {
		s.previews = cache.NewMemoryPreviewCache(30 * time.Minute)
	}
	if s.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		s.log = l
	}
	return s
}

// GenerateInput is what an admin submits to build a question set.
type GenerateInput struct {
	Title      string `json:"title"`
	Category   string `json:"category"`
	MidTopic   string `json:"mid_topic"`
	SourceText string `json:"source_text"`
	CreatedBy  string `json:"-"`
}

// PreviewResult is a generated batch held in the preview cache.
type PreviewResult struct {
	Token     string                `json:"token"`
	Category  string                `json:"category"`
	MidTopic  string                `json:"mid_topic"`
	Items     []quizgen.PreviewItem `json:"items"`
	ExpiresIn int                   `json:"expires_in,omitempty"`
}

func (s *Service) generate(in GenerateInput) ([]quiz.Question, error) {
	if err := quizgen.Validate(in.SourceText, in.Category, in.MidTopic); err != nil {
		return nil, err
	}
	qs, err := s.gen.Generate(in.SourceText, in.Category)
	metrics.RecordGeneration(s.gen.CategoryLabel(in.Category), err)
	return qs, err
}

// Preview generates five questions without persisting them and parks the
// batch under a fresh token.
func (s *Service) Preview(ctx context.Context, in GenerateInput) (PreviewResult, error) {
	qs, err := s.generate(in)
	if err != nil {
		return PreviewResult{}, err
	}
	p := &cache.Preview{
		Token:      uuid.NewString(),
		Title:      in.Title,
		Category:   strings.TrimSpace(in.Category),
		MidTopic:   strings.TrimSpace(in.MidTopic),
		SourceText: in.SourceText,
		CreatedBy:  in.CreatedBy,
		Questions:  qs,
	}
	if err := s.previews.Set(ctx, p); err != nil {
		return PreviewResult{}, fmt.Errorf("cache preview: %w", err)
	}
	s.log.WithFields(logrus.Fields{"category": p.Category, "token": p.Token}).Info("preview generated")
	return PreviewResult{Token: p.Token, Category: p.Category, MidTopic: p.MidTopic, Items: quizgen.Preview(qs)}, nil
}

// SaveInput saves either a cached preview (Token) or an explicit batch. With
// neither Token nor Questions the batch is generated on the spot.
type SaveInput struct {
	GenerateInput
	Token     string          `json:"token"`
	Questions []quiz.Question `json:"questions"`
}

type SavedSet struct {
	Set       quiz.QuestionSet `json:"set"`
	Questions []quiz.Question  `json:"questions"`
}

// SaveSet persists a set and its five questions. A failure after the set row
// exists removes the set again so no partial batch stays behind.
func (s *Service) SaveSet(ctx context.Context, in SaveInput) (SavedSet, error) {
	var qs []quiz.Question
	switch {
	case in.Token != "":
		p, err := s.previews.Get(ctx, in.Token)
		if errors.Is(err, cache.ErrMiss) {
			return SavedSet{}, fmt.Errorf("preview %s: %w", in.Token, quiz.ErrNotFound)
		}
		if err != nil {
			return SavedSet{}, err
		}
		if in.Title == "" {
			in.Title = p.Title
		}
		in.Category, in.MidTopic, in.SourceText = p.Category, p.MidTopic, p.SourceText
		if in.CreatedBy == "" {
			in.CreatedBy = p.CreatedBy
		}
		qs = p.Questions
	case len(in.Questions) > 0:
		if err := quizgen.Validate(in.SourceText, in.Category, in.MidTopic); err != nil {
			return SavedSet{}, err
		}
		if err := checkComposition(in.Questions); err != nil {
			return SavedSet{}, err
		}
		qs = in.Questions
	default:
		var err error
		if qs, err = s.generate(in.GenerateInput); err != nil {
			return SavedSet{}, err
		}
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = s.now().Format("2006/01/02 15:04")
	}
	set, err := s.store.CreateSet(ctx, quiz.QuestionSet{
		Title:      title,
		Category:   strings.TrimSpace(in.Category),
		MidTopic:   strings.TrimSpace(in.MidTopic),
		SourceText: in.SourceText,
		CreatedBy:  in.CreatedBy,
	})
	if err != nil {
		return SavedSet{}, err
	}

	out := SavedSet{Set: set, Questions: make([]quiz.Question, 0, len(qs))}
	for i, q := range qs {
		q.ID = ""
		q.SetID = set.ID
		q.Ordinal = i + 1
		q.MaxScore = quiz.PointsFor(i + 1)
		if q.Category == "" {
			q.Category = set.Category
		}
		q.CreatedBy = in.CreatedBy
		saved, err := s.store.CreateQuestion(ctx, q)
		if err != nil {
			if derr := s.store.DeleteSet(ctx, set.ID); derr != nil {
				s.log.WithField("set_id", set.ID).WithError(derr).Error("rollback set")
			}
			return SavedSet{}, fmt.Errorf("save question %d: %w", i+1, err)
		}
		out.Questions = append(out.Questions, saved)
	}

	if in.Token != "" {
		_ = s.previews.Delete(ctx, in.Token)
	}
	s.emit(ctx, syncx.TypeQuestionSetCreated, set.ID, map[string]any{
		"set_id":    set.ID,
		"category":  set.Category,
		"mid_topic": set.MidTopic,
		"questions": len(out.Questions),
	})
	s.log.WithFields(logrus.Fields{"set_id": set.ID, "category": set.Category}).Info("question set saved")
	return out, nil
}

// checkComposition enforces three choice questions followed by two essays.
func checkComposition(qs []quiz.Question) error {
	if len(qs) != quiz.BatchSize {
		return &quiz.ValidationError{Field: "questions", Reason: fmt.Sprintf("expected %d questions, got %d", quiz.BatchSize, len(qs))}
	}
	for i, q := range qs {
		want := quiz.TypeChoice
		if i >= 3 {
			want = quiz.TypeEssay
		}
		if q.Type != want {
			return &quiz.ValidationError{Field: "questions", Reason: fmt.Sprintf("question %d must be %s", i+1, want)}
		}
		if want == quiz.TypeChoice && len(q.Choices) != 4 {
			return &quiz.ValidationError{Field: "choices", Reason: fmt.Sprintf("question %d needs 4 choices", i+1)}
		}
	}
	return nil
}

// Test returns a set with its questions in order and answer keys removed.
func (s *Service) Test(ctx context.Context, setID string) (quiz.QuestionSet, []quiz.Question, error) {
	set, err := s.store.GetSet(ctx, setID)
	if err != nil {
		return quiz.QuestionSet{}, nil, err
	}
	qs, err := s.store.ListQuestions(ctx, quiz.ListOpts{SetID: setID})
	if err != nil {
		return quiz.QuestionSet{}, nil, err
	}
	for i := range qs {
		qs[i] = qs[i].Public()
	}
	return set, qs, nil
}

func (s *Service) emit(ctx context.Context, typ, key string, data any) {
	if s.events == nil {
		return
	}
	e, err := syncx.NewEvent(typ, key, data)
	if err == nil {
		err = s.events.Append(ctx, e)
	}
	if err != nil {
		s.log.WithFields(logrus.Fields{"type": typ, "key": key}).WithError(err).Warn("append event")
	}
}
