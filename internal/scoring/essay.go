package scoring

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Internal scales of the four essay sub-scores and their weight in the
// question's max score.
const (
	AlignmentScale   = 50.0
	KeywordScale     = 20.0
	SpecificityScale = 15.0
	StructureScale   = 15.0

	AlignmentWeight   = 0.50
	KeywordWeight     = 0.20
	SpecificityWeight = 0.15
	StructureWeight   = 0.15
)

const (
	alignmentSentenceMin = 15
	particleWindow       = 10
)

// Raw holds the unscaled sub-scores.
type Raw struct {
	TextAlignment float64 `json:"text_alignment"`
	KeywordUsage  float64 `json:"keyword_usage"`
	Specificity   float64 `json:"specificity"`
	Structure     float64 `json:"structure"`
}

// Breakdown holds each sub-score rescaled to the question's max and rounded.
type Breakdown struct {
	TextAlignment int `json:"text_alignment"`
	KeywordUsage  int `json:"keyword_usage"`
	Specificity   int `json:"specificity"`
	Structure     int `json:"structure"`
}

// Scorer computes essay sub-scores with one phrase table.
type Scorer struct {
	Phrases PhraseTable
}

func NewScorer(p PhraseTable) *Scorer { return &Scorer{Phrases: p} }

// Default scorer on the current phrase table.
var Default = NewScorer(PhrasesV1)

func nonEmpty(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}

// runeIndex is strings.Index in runes, -1 when absent.
func runeIndex(s, sub string) int {
	i := strings.Index(s, sub)
	if i < 0 {
		return -1
	}
	return utf8.RuneCountInString(s[:i])
}

func countDistinct(s string, markers []string) int {
	n := 0
	for _, m := range markers {
		if m != "" && strings.Contains(s, m) {
			n++
		}
	}
	return n
}

var (
	sourceSentenceBreak = regexp.MustCompile(`[。！？\n]`)
	digitRun            = regexp.MustCompile(`\d+`)
)

// Similarity is the share of positions holding the same rune in both strings.
func Similarity(a, b string) float64 {
	ar, br := []rune(a), []rune(b)
	n := len(ar)
	if len(br) < n {
		n = len(br)
	}
	same := 0
	for i := 0; i < n; i++ {
		if ar[i] == br[i] {
			same++
		}
	}
	longest := max(len(ar), len(br), 1)
	return float64(same) / float64(longest)
}

// TextAlignment scores 0-50 how closely the answer follows the source.
func (s *Scorer) TextAlignment(answer, source string, keywords []string) float64 {
	if source == "" || strings.TrimSpace(answer) == "" {
		return 0
	}
	keywords = nonEmpty(keywords)
	score := 0.0

	used, proper := 0, 0
	answerRunes := []rune(answer)
	for _, kw := range keywords {
		idx := runeIndex(answer, kw)
		if idx < 0 {
			continue
		}
		used++
		from := max(0, idx-particleWindow)
		to := min(len(answerRunes), idx+utf8.RuneCountInString(kw)+particleWindow)
		if strings.ContainsAny(string(answerRunes[from:to]), s.Phrases.Particles) {
			proper++
		}
	}
	if len(keywords) > 0 {
		score += float64(used) / float64(len(keywords)) * 20
	}
	if used > 0 {
		score += float64(proper) / float64(used) * 5
	}

	best := 0.0
	for _, sent := range sourceSentenceBreak.Split(source, -1) {
		sent = strings.TrimSpace(sent)
		if utf8.RuneCountInString(sent) <= alignmentSentenceMin {
			continue
		}
		if sim := Similarity(answer, sent); sim > best {
			best = sim
		}
	}
	score += best * 15

	score += s.cooccurrence(answer, source, keywords)

	return math.Min(math.Round(score), AlignmentScale)
}

// cooccurrence rewards keyword pairs that appear together in both texts,
// more when they sit close in the answer. Range 0-10.
func (s *Scorer) cooccurrence(answer, source string, keywords []string) float64 {
	switch {
	case len(keywords) == 1:
		if strings.Contains(answer, keywords[0]) {
			return 10
		}
		return 0
	case len(keywords) < 2:
		return 0
	}
	points, pairs := 0.0, 0
	for i := 0; i < len(keywords); i++ {
		for j := i + 1; j < len(keywords); j++ {
			pairs++
			a, b := keywords[i], keywords[j]
			if !strings.Contains(source, a) || !strings.Contains(source, b) ||
				!strings.Contains(answer, a) || !strings.Contains(answer, b) {
				continue
			}
			d := runeIndex(answer, a) - runeIndex(answer, b)
			if d < 0 {
				d = -d
			}
			switch {
			case d < 50:
				points += 1.5
			case d < 100:
				points += 1
			default:
				points += 0.5
			}
		}
	}
	return math.Min(points/float64(pairs)*10, 10)
}

// KeywordUsage scores 0-20 by the share of keywords present.
func (s *Scorer) KeywordUsage(answer string, keywords []string) float64 {
	if answer == "" {
		return 0
	}
	keywords = nonEmpty(keywords)
	used := 0
	for _, kw := range keywords {
		if strings.Contains(answer, kw) {
			used++
		}
	}
	return float64(used) / float64(max(len(keywords), 1)) * KeywordScale
}

// Specificity scores 0-15 for examples, figures, length and ordered steps.
func (s *Scorer) Specificity(answer string) float64 {
	if answer == "" {
		return 0
	}
	score := 0
	switch n := countDistinct(answer, s.Phrases.ExampleMarkers); {
	case n >= 2:
		score += 6
	case n == 1:
		score += 4
	}
	switch n := len(digitRun.FindAllString(answer, -1)); {
	case n >= 3:
		score += 3
	case n >= 1:
		score += 2
	}
	if strings.ContainsAny(answer, s.Phrases.UnitChars) {
		score++
	}
	switch n := utf8.RuneCountInString(strings.TrimSpace(answer)); {
	case n >= 200:
		score += 3
	case n >= 150:
		score += 2
	case n >= 100:
		score++
	}
	switch n := countDistinct(answer, s.Phrases.StepMarkers); {
	case n >= 2:
		score += 2
	case n == 1:
		score++
	}
	return math.Min(float64(score), SpecificityScale)
}

// Structure scores 0-15 for length fit, causal reasoning, paragraphs and
// connectives.
func (s *Scorer) Structure(answer string) float64 {
	if answer == "" {
		return 0
	}
	score := 0
	switch n := utf8.RuneCountInString(strings.TrimSpace(answer)); {
	case n >= 150 && n <= 400:
		score += 4
	case n >= 100 && n < 500:
		score += 3
	case n >= 80 && n < 600:
		score += 2
	default:
		score++
	}

	causal := 0
	for _, m := range s.Phrases.CausalMarkers {
		causal += strings.Count(answer, m)
	}
	switch {
	case causal >= 3:
		score += 5
	case causal == 2:
		score += 4
	case causal == 1:
		score += 3
	default:
		score++
	}

	paragraphs := 0
	for _, p := range strings.Split(answer, "\n") {
		if strings.TrimSpace(p) != "" {
			paragraphs++
		}
	}
	switch {
	case paragraphs >= 3:
		score += 3
	case paragraphs == 2:
		score += 2
	case strings.Contains(answer, "\n"):
		score++
	}

	switch n := countDistinct(answer, s.Phrases.Connectives); {
	case n >= 3:
		score += 3
	case n == 2:
		score += 2
	case n == 1:
		score++
	}
	return math.Min(float64(score), StructureScale)
}

// EssayResult is the weighted outcome of one essay answer.
type EssayResult struct {
	Score     int       `json:"score"`
	MaxScore  int       `json:"max_score"`
	Raw       Raw       `json:"raw"`
	Breakdown Breakdown `json:"breakdown"`
}

// ScoreEssay combines the four sub-scores into an integer in [0, max].
func (s *Scorer) ScoreEssay(answer, source string, keywords []string, maxScore int) EssayResult {
	raw := Raw{
		TextAlignment: s.TextAlignment(answer, source, keywords),
		KeywordUsage:  s.KeywordUsage(answer, keywords),
		Specificity:   s.Specificity(answer),
		Structure:     s.Structure(answer),
	}
	m := float64(maxScore)
	ta := raw.TextAlignment / AlignmentScale * m * AlignmentWeight
	ku := raw.KeywordUsage / KeywordScale * m * KeywordWeight
	sp := raw.Specificity / SpecificityScale * m * SpecificityWeight
	st := raw.Structure / StructureScale * m * StructureWeight

	total := int(math.Round(ta + ku + sp + st))
	if total > maxScore {
		total = maxScore
	}
	if total < 0 {
		total = 0
	}
	return EssayResult{
		Score:    total,
		MaxScore: maxScore,
		Raw:      raw,
		Breakdown: Breakdown{
			TextAlignment: int(math.Round(ta)),
			KeywordUsage:  int(math.Round(ku)),
			Specificity:   int(math.Round(sp)),
			Structure:     int(math.Round(st)),
		},
	}
}
