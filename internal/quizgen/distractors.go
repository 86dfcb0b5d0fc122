package quizgen

import (
	"fmt"
)

const distractorCount = 3

// distractors builds three wrong options for the choice question at ordinal.
// A panic while assembling them falls back to the fixed safe set.
func (g *Generator) distractors(kw, category, correct string, a Analysis, ordinal int) (out []string) {
	defer func() {
		if r := recover(); r != nil {
			g.log.WithField("ordinal", ordinal).WithError(fmt.Errorf("%v", r)).Warn("distractor build failed, using safe set")
			out = safeDistractors(kw)
		}
	}()

	out = make([]string, 0, distractorCount)

	// another keyword's concept sentence, offset by one from this question
	if ordinal < len(a.MainConcepts) {
		other := a.MainConcepts[ordinal]
		if other.Context != "" && other.Keyword != kw {
			if d := Truncate(other.Context, g.limits.Distractor); d != correct {
				out = append(out, d)
			}
		}
	}

	others := make([]string, 0, len(a.TopKeywords))
	for _, k := range a.TopKeywords {
		if k != kw {
			others = append(others, k)
		}
	}
	if len(others) > 0 && len(out) < distractorCount {
		other := others[g.intN(len(others))]
		out = append(out, relatedTemplate(category, kw, other))
	}

	for _, t := range categoryTemplates(category, kw) {
		if len(out) >= distractorCount {
			break
		}
		out = append(out, t)
	}
	for len(out) < distractorCount {
		out = append(out, paddingDistractor(kw))
	}
	return out[:distractorCount]
}
