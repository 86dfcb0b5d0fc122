package quiz

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Type string

const (
	TypeChoice Type = "choice"
	TypeEssay  Type = "essay"
)

// BatchSize is the number of questions in every generated set.
const BatchSize = 5

// PointsFor returns the fixed point value of a question by its 1-based position
// in a set. Sets always total 100 points: 15+15+15+25+30.
func PointsFor(ordinal int) int {
	switch ordinal {
	case 1, 2, 3:
		return 15
	case 4:
		return 25
	case 5:
		return 30
	default:
		return 0
	}
}

// LegacyDefaultPoints is used when a stored question carries no point value.
const LegacyDefaultPoints = 15

type QuestionSet struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Category   string `json:"category"`
	MidTopic   string `json:"mid_topic"`
	SourceText string `json:"source_text"`
	CreatedBy  string `json:"created_by,omitempty"`
	CreatedAt  int64  `json:"created_at,omitempty"`
}

type Question struct {
	ID            string  `json:"id"`
	SetID         string  `json:"set_id,omitempty"` // source text lives on the set
	Ordinal       int     `json:"ordinal,omitempty"`
	MaxScore      int     `json:"max_score,omitempty"`
	Type          Type    `json:"type"`
	Title         string  `json:"title"`
	Category      string  `json:"category,omitempty"`
	QuestionText  string  `json:"question_text"`
	Choices       Choices `json:"choices"`
	CorrectAnswer string  `json:"correct_answer"`
	Explanation   string  `json:"explanation"`
	CreatedBy     string  `json:"created_by,omitempty"`
	CreatedAt     int64   `json:"created_at,omitempty"`
}

// Points returns the question's max score, falling back to its position and
// finally to the legacy default.
func (q Question) Points() int {
	if q.MaxScore > 0 {
		return q.MaxScore
	}
	if p := PointsFor(q.Ordinal); p > 0 {
		return p
	}
	return LegacyDefaultPoints
}

// Public strips the answer key and explanation for learners taking a test.
func (q Question) Public() Question {
	q.CorrectAnswer = ""
	q.Explanation = ""
	return q
}

// Choices is the ordered option list of a choice question. On the wire it is
// accepted either as a JSON array or as a string holding a JSON array, which
// is how older records stored it.
type Choices []string

func (c Choices) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(c))
}

func (c *Choices) UnmarshalJSON(b []byte) error {
	trimmed := strings.TrimSpace(string(b))
	if trimmed == "null" || trimmed == "" {
		*c = Choices{}
		return nil
	}
	if strings.HasPrefix(trimmed, "\"") {
		var raw string
		if err := json.Unmarshal(b, &raw); err != nil {
			return &ParseError{Field: "choices", Err: err}
		}
		parsed, err := ParseChoices(raw)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}
	var arr []string
	if err := json.Unmarshal(b, &arr); err != nil {
		return &ParseError{Field: "choices", Err: err}
	}
	*c = arr
	return nil
}

// ParseChoices decodes a JSON-array-encoded choice list. An empty string is
// an empty list.
func ParseChoices(raw string) (Choices, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Choices{}, nil
	}
	var arr []string
	if err := json.Unmarshal([]byte(raw), &arr); err != nil {
		return nil, &ParseError{Field: "choices", Err: err}
	}
	if arr == nil {
		arr = []string{}
	}
	return arr, nil
}

// Encode returns the JSON-array string form used by the SQL store.
func (c Choices) Encode() string {
	b, _ := c.MarshalJSON()
	return string(b)
}

type Answer struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	QuestionID  string `json:"question_id"`
	AnswerText  string `json:"answer_text"`
	SubmittedAt int64  `json:"submitted_at"`
}

// Feedback is the persisted grading outcome for one answer. Sections is keyed
// by section name (good_point, partial_point, ...).
type Feedback struct {
	ID         string            `json:"id"`
	AnswerID   string            `json:"answer_id"`
	UserID     string            `json:"user_id"`
	QuestionID string            `json:"question_id"`
	Score      int               `json:"score"`
	MaxScore   int               `json:"max_score"`
	Sections   map[string]string `json:"sections"`
	HTML       string            `json:"html,omitempty"`
	CreatedAt  int64             `json:"created_at,omitempty"`
}

type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	PasswordHash string `json:"-"`
	CreatedAt    int64  `json:"created_at,omitempty"`
}

func (t Type) Valid() bool { return t == TypeChoice || t == TypeEssay }

func (t Type) Label() string {
	switch t {
	case TypeChoice:
		return "選択式"
	case TypeEssay:
		return "記述式"
	default:
		return fmt.Sprintf("不明(%s)", string(t))
	}
}
