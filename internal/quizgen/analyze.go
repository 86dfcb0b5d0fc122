package quizgen

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	maxTopKeywords       = 10
	maxImportantSentence = 10
	minSentenceRunes     = 10
)

// Concept ties a keyword to the first full sentence that mentions it.
type Concept struct {
	Keyword string `json:"keyword"`
	Context string `json:"context"`
}

type Analysis struct {
	Sentences          []string  `json:"sentences"`
	TopKeywords        []string  `json:"top_keywords"`
	ImportantSentences []string  `json:"important_sentences"`
	MainConcepts       []Concept `json:"main_concepts"`
	TextLength         int       `json:"text_length"`
	SentenceCount      int       `json:"sentence_count"`
}

var sentenceBreak = regexp.MustCompile(`[。！？\n]`)

// SplitSentences splits on Japanese sentence terminators and newlines and
// keeps trimmed fragments longer than minRunes.
func SplitSentences(text string, minRunes int) []string {
	out := []string{}
	for _, s := range sentenceBreak.Split(text, -1) {
		s = strings.TrimSpace(s)
		if utf8.RuneCountInString(s) > minRunes {
			out = append(out, s)
		}
	}
	return out
}

type termCount struct {
	term  string
	count int
}

// Analyze extracts ranked keywords, keyword-dense sentences and keyword
// concepts from text using the fixed term list.
func Analyze(text string, terms []string) Analysis {
	a := Analysis{
		Sentences:  SplitSentences(text, minSentenceRunes),
		TextLength: utf8.RuneCountInString(text),
	}
	a.SentenceCount = len(a.Sentences)

	counts := make([]termCount, 0, len(terms))
	for _, t := range terms {
		if t == "" {
			continue
		}
		if n := strings.Count(text, t); n > 0 {
			counts = append(counts, termCount{term: t, count: n})
		}
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].count > counts[j].count })
	if len(counts) > maxTopKeywords {
		counts = counts[:maxTopKeywords]
	}
	a.TopKeywords = make([]string, len(counts))
	for i, c := range counts {
		a.TopKeywords[i] = c.term
	}

	type scored struct {
		sentence string
		score    int
	}
	var ranked []scored
	for _, s := range a.Sentences {
		n := 0
		for _, kw := range a.TopKeywords {
			if strings.Contains(s, kw) {
				n++
			}
		}
		if n > 0 {
			ranked = append(ranked, scored{s, n})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > maxImportantSentence {
		ranked = ranked[:maxImportantSentence]
	}
	a.ImportantSentences = make([]string, len(ranked))
	for i, r := range ranked {
		a.ImportantSentences[i] = r.sentence
	}

	a.MainConcepts = []Concept{}
	for _, kw := range a.TopKeywords {
		if ctx, ok := conceptContext(text, kw); ok {
			a.MainConcepts = append(a.MainConcepts, Concept{Keyword: kw, Context: ctx})
		}
	}
	return a
}

// conceptContext returns the first 。-terminated segment containing kw,
// without its terminator.
func conceptContext(text, kw string) (string, bool) {
	segments := strings.Split(text, "。")
	// the final segment has no terminator
	for _, seg := range segments[:len(segments)-1] {
		if strings.Contains(seg, kw) {
			if ctx := strings.TrimSpace(seg); ctx != "" {
				return ctx, true
			}
		}
	}
	return "", false
}
