package quizgen

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Limits bounds choice lengths in runes.
type Limits struct {
	Choice     int
	Distractor int
}

func DefaultLimits() Limits { return Limits{Choice: 200, Distractor: 120} }

var (
	fullSentence = regexp.MustCompile(`[^。！？]+[。！？]`)
	clauseBreak  = regexp.MustCompile(`[、，]`)
)

const ellipsis = "..."

// Truncate shortens s to at most limit runes. It prefers the first full
// sentence, then as many leading clauses as fit, and only then cuts hard
// with an ellipsis.
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	sentences := fullSentence.FindAllString(s, -1)
	if len(sentences) == 0 {
		sentences = []string{s}
	}
	first := sentences[0]
	firstLen := utf8.RuneCountInString(first)
	if len(sentences) > 1 && firstLen <= limit {
		return first
	}
	if firstLen > limit {
		parts := clauseBreak.Split(s, -1)
		out := parts[0]
		for _, p := range parts[1:] {
			next := out + "、" + p
			if utf8.RuneCountInString(next) > limit {
				break
			}
			out = next
		}
		if !strings.HasSuffix(out, "。") {
			out += "。"
		}
		if utf8.RuneCountInString(out) <= limit {
			return out
		}
	}
	return hardCut(s, limit)
}

func hardCut(s string, limit int) string {
	keep := limit - utf8.RuneCountInString(ellipsis)
	if keep < 0 {
		keep = 0
	}
	r := []rune(s)
	if keep > len(r) {
		keep = len(r)
	}
	return string(r[:keep]) + ellipsis
}
