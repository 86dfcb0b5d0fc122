package quizgen

import (
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/mind-engage/mindengage-trainer/internal/quiz"
)

// MinSourceRunes is the shortest passage accepted for generation.
const MinSourceRunes = 50

const (
	choiceCount = 3
	essayCount  = 2
	topCriteria = 5
)

type Option func(*Generator)

func WithVocabulary(v Vocabulary) Option { return func(g *Generator) { g.vocab = v } }
func WithRand(r *rand.Rand) Option       { return func(g *Generator) { g.rng = r } }
func WithLimits(l Limits) Option         { return func(g *Generator) { g.limits = l } }
func WithLogger(l logrus.FieldLogger) Option {
	return func(g *Generator) { g.log = l }
}

// Generator turns a passage into a fixed five-question set. The random
// source is the only state and is guarded for concurrent use.
type Generator struct {
	vocab  Vocabulary
	limits Limits
	log    logrus.FieldLogger

	mu  sync.Mutex
	rng *rand.Rand
}

func New(opts ...Option) *Generator {
	g := &Generator{
		vocab:  DefaultVocabulary(),
		limits: DefaultLimits(),
	}
	for _, o := range opts {
		o(g)
	}
	if g.rng == nil {
		seed := uint64(time.Now().UnixNano())
		g.rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	if g.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		g.log = l
	}
	return g
}

func (g *Generator) intN(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.IntN(n)
}

func (g *Generator) shuffle(n int, swap func(i, j int)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rng.Shuffle(n, swap)
}

// Validate applies the admin-side input checks.
func Validate(source, category, midTopic string) error {
	if strings.TrimSpace(category) == "" {
		return &ValidationError{Field: "category", Reason: "required"}
	}
	if strings.TrimSpace(midTopic) == "" {
		return &ValidationError{Field: "mid_topic", Reason: "required"}
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(source)); n < MinSourceRunes {
		return &ValidationError{Field: "source_text", Reason: "at least 50 characters required (200 or more recommended)"}
	}
	return nil
}

// Analyze runs text analysis with the category's term list.
func (g *Generator) Analyze(source, category string) Analysis {
	return Analyze(source, g.vocab.Terms(category))
}

// CategoryLabel is the canonical key of category when the vocabulary knows
// it, and "other" when it does not. Safe for bounded metric labels.
func (g *Generator) CategoryLabel(category string) string {
	if c := NormalizeCategory(category); g.vocab[c] != nil {
		return c
	}
	return OtherCategory
}

// Generate returns exactly five questions: choice questions 1-3 and essay
// questions 4-5, with ordinals and point values set.
func (g *Generator) Generate(source, category string) ([]quiz.Question, error) {
	if strings.TrimSpace(source) == "" {
		return nil, &GenerationError{Reason: "empty source text"}
	}
	cat := NormalizeCategory(category)
	a := g.Analyze(source, cat)
	g.log.WithFields(logrus.Fields{
		"category":  cat,
		"keywords":  len(a.TopKeywords),
		"concepts":  len(a.MainConcepts),
		"sentences": a.SentenceCount,
	}).Debug("analyzed source")

	out := make([]quiz.Question, 0, quiz.BatchSize)
	for i := 1; i <= choiceCount; i++ {
		q := g.choiceQuestion(i, cat, a)
		q.Category = strings.TrimSpace(category)
		out = append(out, q)
	}
	for j := 1; j <= essayCount; j++ {
		q := g.essayQuestion(j, source, a)
		q.Category = strings.TrimSpace(category)
		out = append(out, q)
	}
	return out, nil
}

func pick[T any](items []T, i int) (T, bool) {
	var zero T
	if i >= 0 && i < len(items) {
		return items[i], true
	}
	if len(items) > 0 {
		return items[0], true
	}
	return zero, false
}

func (g *Generator) choiceQuestion(n int, category string, a Analysis) quiz.Question {
	kw, ok := pick(a.TopKeywords, n-1)
	if !ok {
		kw = fallbackChoiceKeyword
	}
	q := quiz.Question{
		Ordinal:  n,
		MaxScore: quiz.PointsFor(n),
		Type:     quiz.TypeChoice,
	}

	concept, ok := pick(a.MainConcepts, n-1)
	if !ok || concept.Context == "" {
		text, choices, correct, expl := fallbackChoice(kw)
		q.Title = choiceTitle(n, kw)
		q.QuestionText = text
		q.Choices = choices
		q.CorrectAnswer = correct
		q.Explanation = expl
		return q
	}

	// the concept's own keyword keeps title, stem and explanation consistent
	kw = concept.Keyword
	correct := Truncate(concept.Context, g.limits.Choice)
	choices := append([]string{correct}, g.distractors(kw, category, correct, a, n)...)
	idx := make([]int, len(choices))
	for i := range idx {
		idx[i] = i
	}
	g.shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

	shuffled := make([]string, len(choices))
	answer := 0
	for pos, from := range idx {
		shuffled[pos] = choices[from]
		if from == 0 {
			answer = pos + 1
		}
	}

	q.Title = choiceTitle(n, kw)
	q.QuestionText = choiceQuestionText(kw)
	q.Choices = shuffled
	q.CorrectAnswer = strconv.Itoa(answer)
	q.Explanation = choiceExplanation(kw, concept.Context)
	return q
}

func (g *Generator) essayQuestion(j int, source string, a Analysis) quiz.Question {
	n := choiceCount + j
	kw, ok := pick(a.TopKeywords, j+2)
	if !ok {
		kw = fallbackEssayKeyword
	}
	criteria := append([]string(nil), a.TopKeywords[:min(topCriteria, len(a.TopKeywords))]...)

	var title, text, expl string
	if j == 1 {
		title, text, expl = understandingEssay(kw, criteria, source)
	} else {
		criteria = append(criteria, practiceCriteria...)
		title, text, expl = practiceEssay(kw, criteria, source)
	}
	return quiz.Question{
		Ordinal:       n,
		MaxScore:      quiz.PointsFor(n),
		Type:          quiz.TypeEssay,
		Title:         fmt.Sprintf("【問%d】%s", n, title),
		QuestionText:  text,
		Choices:       quiz.Choices{},
		CorrectAnswer: strings.Join(criteria, "、"),
		Explanation:   expl,
	}
}

// PreviewItem decorates a generated question for admin review.
type PreviewItem struct {
	Number    int           `json:"number"`
	TypeLabel string        `json:"type_label"`
	Question  quiz.Question `json:"question"`
}

func Preview(qs []quiz.Question) []PreviewItem {
	out := make([]PreviewItem, len(qs))
	for i, q := range qs {
		out[i] = PreviewItem{Number: i + 1, TypeLabel: q.Type.Label(), Question: q}
	}
	return out
}
