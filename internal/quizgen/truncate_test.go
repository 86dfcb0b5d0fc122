package quizgen_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/mind-engage/mindengage-trainer/internal/quizgen"
)

func TestTruncate(t *testing.T) {
	clause := func(r string) string { return strings.Repeat(r, 60) }
	longSentence := clause("あ") + "、" + clause("い") + "、" + clause("う") + "、" + clause("え") + "。"

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"short passes", "短い文です。", "短い文です。"},
		{"first full sentence", "短い文です。" + strings.Repeat("い", 250) + "。", "短い文です。"},
		{"clause boundary", longSentence, clause("あ") + "、" + clause("い") + "、" + clause("う") + "。"},
		{"hard cut", strings.Repeat("あ", 250), strings.Repeat("あ", 197) + "..."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := quizgen.Truncate(tc.in, 200)
			assert.Equal(t, tc.want, got)
			assert.LessOrEqual(t, utf8.RuneCountInString(got), 200)
		})
	}
}

func TestTruncate_DistractorLimit(t *testing.T) {
	in := strings.Repeat("か", 50) + "、" + strings.Repeat("き", 50) + "、" + strings.Repeat("く", 50) + "。"
	got := quizgen.Truncate(in, 120)
	assert.Equal(t, strings.Repeat("か", 50)+"、"+strings.Repeat("き", 50)+"。", got)
}
