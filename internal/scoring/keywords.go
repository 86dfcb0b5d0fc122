package scoring

import (
	"math"
	"regexp"
	"strings"
)

var keywordSep = regexp.MustCompile(`[、,，]`)

// ParseKeywords splits an essay's evaluation-keyword string.
func ParseKeywords(s string) []string {
	out := []string{}
	for _, k := range keywordSep.Split(s, -1) {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// UsedKeywords partitions keywords by presence in answer.
func UsedKeywords(answer string, keywords []string) (used, missing []string) {
	for _, k := range keywords {
		if strings.Contains(answer, k) {
			used = append(used, k)
		} else {
			missing = append(missing, k)
		}
	}
	return used, missing
}

// Category labels for the essay breakdown in display order.
const (
	LabelAlignment   = "テキストとの一致度"
	LabelKeywords    = "重要キーワードの使用"
	LabelSpecificity = "具体性"
	LabelStructure   = "論理性・構造"
)

// BreakdownItem is one display row of an essay breakdown.
type BreakdownItem struct {
	Label       string `json:"label"`
	Score       int    `json:"score"`
	Max         int    `json:"max"`
	Description string `json:"description"`
}

// CategoryMax is a sub-score's share of the question's max score.
func CategoryMax(maxScore int, weight float64) int {
	return int(math.Round(float64(maxScore) * weight))
}

// Items lists the breakdown with per-category maxima for maxScore.
func (b Breakdown) Items(maxScore int) []BreakdownItem {
	return []BreakdownItem{
		{LabelAlignment, b.TextAlignment, CategoryMax(maxScore, AlignmentWeight), "テキストの内容とどれだけ一致しているか"},
		{LabelKeywords, b.KeywordUsage, CategoryMax(maxScore, KeywordWeight), "重要なキーワードを使用しているか"},
		{LabelSpecificity, b.Specificity, CategoryMax(maxScore, SpecificityWeight), "具体例や数値を含んでいるか"},
		{LabelStructure, b.Structure, CategoryMax(maxScore, StructureWeight), "論理的な構成になっているか"},
	}
}
