package feedback

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/mind-engage/mindengage-trainer/internal/quiz"
	"github.com/mind-engage/mindengage-trainer/internal/quizgen"
)

const (
	relevantSentenceMin = 15
	relevantSentenceMax = 4
	exampleQuoteRunes   = 60
	modelHeaderRunes    = 30
)

// relevantSentences picks up to four source sentences mentioning the most
// keywords. Ties keep source order.
func relevantSentences(source string, keywords []string) []string {
	type scored struct {
		s string
		n int
	}
	var cands []scored
	for _, s := range quizgen.SplitSentences(source, relevantSentenceMin) {
		n := 0
		for _, k := range keywords {
			if strings.Contains(s, k) {
				n++
			}
		}
		if n > 0 {
			cands = append(cands, scored{s, n})
		}
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].n > cands[j].n })
	if len(cands) > relevantSentenceMax {
		cands = cands[:relevantSentenceMax]
	}
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.s
	}
	return out
}

func isUnderstanding(q quiz.Question) bool {
	return strings.Contains(q.Title, "理解") ||
		strings.Contains(q.QuestionText, "説明してください") ||
		strings.Contains(q.QuestionText, "述べてください")
}

func isPractice(q quiz.Question) bool {
	return strings.Contains(q.Title, "実践") || strings.Contains(q.Title, "活用") ||
		strings.Contains(q.QuestionText, "どのように") || strings.Contains(q.QuestionText, "実際に")
}

// firstKeywords lists k0、k1、k2 with k3 appended when present.
func firstKeywords(kws []string) string {
	n := 3
	if len(kws) > 3 {
		n = 4
	}
	return strings.Join(kws[:n], "、")
}

// ModelAnswer assembles a reference answer from the source sentences that
// carry the evaluation keywords.
func ModelAnswer(q quiz.Question, source string, keywords []string) string {
	rel := relevantSentences(source, keywords)
	var w strings.Builder
	w.WriteString("【模範解答例】\n\n")

	switch {
	case isUnderstanding(q):
		w.WriteString("【概要】\n")
		if len(keywords) >= 3 {
			fmt.Fprintf(&w, "テキストでは、%sなどの要素が重要であると述べられています。\n\n", firstKeywords(keywords))
		} else if len(keywords) > 0 {
			fmt.Fprintf(&w, "テキストでは、%sが重要であると述べられています。\n\n", strings.Join(keywords, "や"))
		}
		switch {
		case len(rel) >= 2:
			fmt.Fprintf(&w, "【詳細】\nまず、%s。\n\nさらに、%s。", rel[0], rel[1])
			if len(rel) >= 3 {
				fmt.Fprintf(&w, "\n\nまた、%s。", rel[2])
			}
		case len(rel) == 1:
			fmt.Fprintf(&w, "【詳細】\n%s。", rel[0])
		}
		w.WriteString("\n\n【具体例】\n")
		if len(keywords) > 0 {
			fmt.Fprintf(&w, "例えば、%sを実践する場面では、", keywords[0])
			if len(rel) > 0 {
				fmt.Fprintf(&w, "「%s」という考え方が重要になります。", shorten(rel[0], exampleQuoteRunes))
			} else {
				w.WriteString("相手の立場に立って、具体的な行動を考えることが大切です。")
			}
		}

	case isPractice(q):
		w.WriteString("【実践のポイント】\n")
		at := func(i int) string {
			if i < len(rel) {
				return rel[i] + "。"
			}
			return ""
		}
		if len(keywords) >= 3 {
			fmt.Fprintf(&w, "まず第一に、%sを意識することが重要です。%s", keywords[0], at(0))
			fmt.Fprintf(&w, "\n\n次に、%sの観点も欠かせません。%s", keywords[1], at(1))
			fmt.Fprintf(&w, "\n\nさらに、%sも重要な要素です。%s", keywords[2], at(2))
		} else if len(keywords) > 0 {
			fmt.Fprintf(&w, "%sを意識し、%s", keywords[0], at(0))
			if len(keywords) > 1 {
				fmt.Fprintf(&w, "\n\nまた、%sの視点も大切です。", keywords[1])
			}
		}
		w.WriteString("\n\n【具体的な実践例】\n実際の場面では、")
		if len(keywords) >= 2 {
			fmt.Fprintf(&w, "%sと%sをバランスよく実践することで、より効果的な結果を得ることができます。", keywords[0], keywords[1])
		} else if len(keywords) == 1 {
			fmt.Fprintf(&w, "%sを日々の業務で意識的に取り入れることで、スキルが向上します。", keywords[0])
		}
		w.WriteString("\n\n【期待される成果】\nこれらを継続的に実践することで、")
		if len(keywords) >= 2 {
			fmt.Fprintf(&w, "%sや%sのスキルが向上し、", keywords[0], keywords[1])
		}
		w.WriteString("より高い成果を上げることができるようになります。")

	default:
		w.WriteString("【回答のポイント】\n")
		if len(keywords) > 0 {
			w.WriteString("テキストでは、")
			for i, k := range keywords {
				if i > 0 {
					w.WriteString("、")
				}
				if i == len(keywords)-1 && len(keywords) > 1 {
					w.WriteString("そして")
				}
				w.WriteString(k)
			}
			w.WriteString("が重要な要素として述べられています。\n\n")
		}
		if len(rel) > 0 {
			w.WriteString("【内容】\n")
			for i, s := range rel {
				if i > 0 {
					w.WriteString("\n\n")
				}
				w.WriteString(s + "。")
			}
		}
	}

	w.WriteString("\n\n【要約】\n")
	switch {
	case len(keywords) >= 3:
		fmt.Fprintf(&w, "%sという観点から、テキストの内容を的確に理解し、自分の言葉で表現することが重要です。", firstKeywords(keywords))
	case len(keywords) > 0:
		fmt.Fprintf(&w, "%sを意識して、テキストの要点を押さえた回答を心がけましょう。", strings.Join(keywords, "や"))
	default:
		w.WriteString("テキストの内容を正確に理解し、具体的かつ論理的に表現することが大切です。")
	}

	body := w.String()
	return body + fmt.Sprintf("\n\n【この模範解答の文字数】約%d文字\n（実際の回答では150〜300文字程度が目安です）",
		utf8.RuneCountInString(body)-modelHeaderRunes)
}

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
