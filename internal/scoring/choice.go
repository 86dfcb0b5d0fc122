package scoring

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/mind-engage/mindengage-trainer/internal/quiz"
)

// ScoringError reports a question that cannot be scored as stored.
type ScoringError struct {
	QuestionID string
	Reason     string
	Err        error
}

func (e *ScoringError) Error() string {
	msg := "score"
	if e.QuestionID != "" {
		msg += " " + e.QuestionID
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ScoringError) Unwrap() error { return e.Err }

// LeadingInt parses an optional sign and leading decimal digits, ignoring
// surrounding whitespace and trailing text ("2", " 3 ", "2番").
func LeadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for i, r := range s {
		if i == 0 && (r == '-' || r == '+') {
			end = i + 1
			continue
		}
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			break
		}
		end = i + 1
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ScoreChoice awards full points for the correct option number and zero
// otherwise, including for unparseable answers.
func ScoreChoice(q quiz.Question, answer string, maxScore int) (score int, correct bool, err error) {
	want, ok := LeadingInt(q.CorrectAnswer)
	if !ok {
		return 0, false, &ScoringError{QuestionID: q.ID, Reason: fmt.Sprintf("non-numeric correct answer %q", q.CorrectAnswer)}
	}
	got, ok := LeadingInt(answer)
	if ok && got == want {
		return maxScore, true, nil
	}
	return 0, false, nil
}

// Result is the scoring outcome for any question type.
type Result struct {
	Score     int        `json:"score"`
	MaxScore  int        `json:"max_score"`
	Correct   *bool      `json:"is_correct,omitempty"`
	Breakdown *Breakdown `json:"breakdown,omitempty"`
	Raw       *Raw       `json:"raw,omitempty"`
}

// Score dispatches on question type.
func (s *Scorer) Score(q quiz.Question, answer, source string, maxScore int) (Result, error) {
	switch q.Type {
	case quiz.TypeChoice:
		score, correct, err := ScoreChoice(q, answer, maxScore)
		if err != nil {
			return Result{MaxScore: maxScore}, err
		}
		return Result{Score: score, MaxScore: maxScore, Correct: &correct}, nil
	case quiz.TypeEssay:
		r := s.ScoreEssay(answer, source, ParseKeywords(q.CorrectAnswer), maxScore)
		return Result{Score: r.Score, MaxScore: maxScore, Breakdown: &r.Breakdown, Raw: &r.Raw}, nil
	default:
		return Result{MaxScore: maxScore}, &ScoringError{QuestionID: q.ID, Reason: fmt.Sprintf("unknown question type %q", q.Type)}
	}
}
