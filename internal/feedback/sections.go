// Package feedback writes structured Japanese feedback for scored answers.
// All text comes from fixed templates chosen by thresholds over the same
// signals the scorer uses.
package feedback

import (
	"fmt"
	"math"
	"strings"

	"github.com/mind-engage/mindengage-trainer/internal/scoring"
)

// Section keys as persisted.
const (
	KeyGoodPoint         = "good_point"
	KeyPartialPoint      = "partial_point"
	KeyCorrectionPoint   = "correction_point"
	KeyDetailedBreakdown = "detailed_breakdown"
	KeyReason            = "reason"
	KeyNextAction        = "next_action"
	KeyModelAnswer       = "model_answer"
)

type Sections struct {
	GoodPoint         string `json:"good_point,omitempty"`
	PartialPoint      string `json:"partial_point,omitempty"`
	CorrectionPoint   string `json:"correction_point,omitempty"`
	DetailedBreakdown string `json:"detailed_breakdown,omitempty"`
	Reason            string `json:"reason,omitempty"`
	NextAction        string `json:"next_action,omitempty"`
	ModelAnswer       string `json:"model_answer,omitempty"`
}

// Map returns the non-empty sections keyed by name.
func (s Sections) Map() map[string]string {
	m := map[string]string{}
	put := func(k, v string) {
		if v != "" {
			m[k] = v
		}
	}
	put(KeyGoodPoint, s.GoodPoint)
	put(KeyPartialPoint, s.PartialPoint)
	put(KeyCorrectionPoint, s.CorrectionPoint)
	put(KeyDetailedBreakdown, s.DetailedBreakdown)
	put(KeyReason, s.Reason)
	put(KeyNextAction, s.NextAction)
	put(KeyModelAnswer, s.ModelAnswer)
	return m
}

func FromMap(m map[string]string) Sections {
	return Sections{
		GoodPoint:         m[KeyGoodPoint],
		PartialPoint:      m[KeyPartialPoint],
		CorrectionPoint:   m[KeyCorrectionPoint],
		DetailedBreakdown: m[KeyDetailedBreakdown],
		Reason:            m[KeyReason],
		NextAction:        m[KeyNextAction],
		ModelAnswer:       m[KeyModelAnswer],
	}
}

// WithScoreHeader prefixes the reason with the per-question score summary.
// items is nil for choice questions.
func WithScoreHeader(s Sections, ordinal, score, maxScore int, items []scoring.BreakdownItem) Sections {
	var b strings.Builder
	fmt.Fprintf(&b, "【採点結果】\n%d問目の配点: %d点\n獲得点数: %d点\n\n", ordinal, maxScore, score)
	if len(items) > 0 {
		lines := make([]string, len(items))
		for i, it := range items {
			pct := 0.0
			if it.Max > 0 {
				pct = float64(it.Score) / float64(it.Max) * 100
			}
			lines[i] = fmt.Sprintf("・%s: %d/%d点 (%.0f%%)", it.Label, it.Score, it.Max, pct)
		}
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteString("\n\n")
	}
	s.Reason = b.String() + s.Reason
	return s
}

func achievement(score, maxScore int) int {
	if maxScore <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(maxScore) * 100))
}
