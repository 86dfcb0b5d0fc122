package scoring_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-trainer/internal/quiz"
	"github.com/mind-engage/mindengage-trainer/internal/scoring"
)

const source = "顧客の話を最後まで聞いたうえで提案をまとめるため、準備の時間を確保する。" +
	"顧客が納得しない提案は、どれほど丁寧に説明しても採用されない。" +
	"提案書には顧客の業務の流れを具体的に書き込むことが求められる。" +
	"顧客ごとに提案の切り口を変えることで、結果が大きく変わる。" +
	"担当者は日々の記録を見返し、次の打ち合わせに備えておくとよい。" +
	"こうした積み重ねこそが、長く続く取引の土台になっていく。"

func TestScoreEssay_VerbatimSourceSentence(t *testing.T) {
	answer := "顧客の話を最後まで聞いたうえで提案をまとめるため、準備の時間を確保する。"
	r := scoring.Default.ScoreEssay(answer, source, []string{"顧客", "提案"}, 25)

	assert.Equal(t, 50.0, r.Raw.TextAlignment)
	assert.Equal(t, 20.0, r.Raw.KeywordUsage)
	assert.Equal(t, 1.0, r.Raw.Specificity)
	assert.Equal(t, 4.0, r.Raw.Structure)
	assert.Equal(t, 19, r.Score)
	assert.GreaterOrEqual(t, float64(r.Score), 0.7*25)
	assert.Equal(t, scoring.Breakdown{TextAlignment: 13, KeywordUsage: 5, Specificity: 0, Structure: 1}, r.Breakdown)
}

func TestScoreEssay_EmptyAnswer(t *testing.T) {
	r := scoring.Default.ScoreEssay("", source, []string{"顧客", "提案"}, 30)
	assert.Equal(t, 0, r.Score)
	assert.Equal(t, scoring.Raw{}, r.Raw)
}

func TestScoreEssay_ToleratesMissingInputs(t *testing.T) {
	s := scoring.Default
	assert.Zero(t, s.TextAlignment("回答", "", []string{"顧客"}))
	assert.Zero(t, s.TextAlignment("   ", source, []string{"顧客"}))
	assert.Zero(t, s.KeywordUsage("顧客", nil))
	r := s.ScoreEssay("何か書いた", source, nil, 25)
	assert.GreaterOrEqual(t, r.Score, 0)
	assert.LessOrEqual(t, r.Score, 25)
}

func TestScoreEssay_BoundedForArbitraryInput(t *testing.T) {
	answers := []string{
		strings.Repeat("顧客に提案するため、", 200),
		strings.Repeat("例えば1つ目に100円、", 80),
		"\n\n\n",
		"そのため、したがって、つまり、しかし、また、さらに",
	}
	for _, a := range answers {
		r := scoring.Default.ScoreEssay(a, source, []string{"顧客", "提案", "実践"}, 30)
		assert.GreaterOrEqual(t, r.Score, 0)
		assert.LessOrEqual(t, r.Score, 30)
	}
}

func TestSpecificity(t *testing.T) {
	a := "例えば、まず3社の顧客に1日2回連絡し、次に提案をまとめる。具体的には10％の改善を目指す。"
	assert.Equal(t, 12.0, scoring.Default.Specificity(a))
	assert.LessOrEqual(t, scoring.Default.Specificity(strings.Repeat(a, 10)), 15.0)
}

func TestStructure(t *testing.T) {
	a := "顧客の状況を丁寧に確認する。\n準備を整えて提案する。\nしかし、急ぎすぎないことも大切だ。"
	assert.Equal(t, 6.0, scoring.Default.Structure(a))
}

func TestStructure_MonotonicInCausalMarkers(t *testing.T) {
	body := strings.Repeat("顧客の話を最後まで聞いて状況を整理する。", 5)
	prev := -1.0
	for k := 0; k < 5; k++ {
		got := scoring.Default.Structure(body + strings.Repeat("ので", k))
		assert.GreaterOrEqual(t, got, prev, "occurrences=%d", k)
		prev = got
	}
}

// Past three causal markers the bonus is capped, so growing a 400-rune answer
// only costs the length band.
func TestStructure_CausalCapAtLengthBandEdge(t *testing.T) {
	body := strings.Repeat("顧客の話を聞いて状況を整理する。", 24) + "あいうえおかきくけこ" + "のでのでので"
	require.Equal(t, 400, utf8.RuneCountInString(body))

	assert.Equal(t, 9.0, scoring.Default.Structure(body))
	assert.Equal(t, 8.0, scoring.Default.Structure(body+"ため"))
}

func TestAddingKeywordNeverLowersUsageOrAlignment(t *testing.T) {
	kws := []string{"顧客", "提案", "ニーズ"}
	base := "顧客の話を最後まで聞き、相手の状況を整理していくことが大切だと考える。"
	more := base + "そのうえで提案を行う。"

	s := scoring.Default
	assert.GreaterOrEqual(t, s.KeywordUsage(more, kws), s.KeywordUsage(base, kws))
	assert.GreaterOrEqual(t, s.TextAlignment(more, source, kws), s.TextAlignment(base, source, kws))
	assert.Equal(t, 27.0, s.TextAlignment(more, source, kws))
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, scoring.Similarity("顧客", "顧客"))
	assert.Equal(t, 0.5, scoring.Similarity("顧客", "顧問"))
	assert.Equal(t, 0.0, scoring.Similarity("", ""))
}

func TestScoreChoice_Binary(t *testing.T) {
	q := quiz.Question{ID: "q1", Type: quiz.TypeChoice, CorrectAnswer: "3"}
	for _, ans := range []string{"3", " 3 ", "3番", "1", "", "abc", "４"} {
		score, _, err := scoring.ScoreChoice(q, ans, 15)
		require.NoError(t, err)
		assert.Contains(t, []int{0, 15}, score, "answer %q", ans)
	}
	score, correct, err := scoring.ScoreChoice(q, "3", 15)
	require.NoError(t, err)
	assert.True(t, correct)
	assert.Equal(t, 15, score)
}

func TestScoreChoice_NonNumericKey(t *testing.T) {
	q := quiz.Question{ID: "q1", Type: quiz.TypeChoice, CorrectAnswer: "B"}
	_, _, err := scoring.ScoreChoice(q, "2", 15)
	var se *scoring.ScoringError
	assert.ErrorAs(t, err, &se)
}

func TestScore_Idempotent(t *testing.T) {
	q := quiz.Question{Type: quiz.TypeEssay, CorrectAnswer: "顧客、提案,ニーズ"}
	a := "顧客のニーズを確認し、例えば3回の面談を通じて提案する。"
	first, err := scoring.Default.Score(q, a, source, 30)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := scoring.Default.Score(q, a, source, 30)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	require.NotNil(t, first.Breakdown)
}

func TestParseKeywords(t *testing.T) {
	assert.Equal(t, []string{"顧客", "提案", "実践", "活用"}, scoring.ParseKeywords("顧客、提案, 実践，活用、"))
	assert.Empty(t, scoring.ParseKeywords(""))
}

func TestGradeAndComment(t *testing.T) {
	cases := map[float64]string{100: "S", 90: "S", 89.9: "A", 80: "A", 70: "B", 60: "C", 50: "D", 49: "E", 0: "E"}
	for pct, want := range cases {
		assert.Equal(t, want, scoring.Grade(pct), "pct=%v", pct)
	}
	assert.Contains(t, scoring.Comment(95), "素晴らしい")
	assert.Contains(t, scoring.Comment(10), "再度確認")
}

func TestBreakdownItems(t *testing.T) {
	items := scoring.Breakdown{TextAlignment: 10}.Items(25)
	require.Len(t, items, 4)
	assert.Equal(t, scoring.LabelAlignment, items[0].Label)
	assert.Equal(t, 13, items[0].Max) // round(12.5)
	assert.Equal(t, 5, items[1].Max)
	assert.Equal(t, 4, items[2].Max)
}
