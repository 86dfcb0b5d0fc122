package grading_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-trainer/internal/grading"
	"github.com/mind-engage/mindengage-trainer/internal/quiz"
)

const passage = "顧客の課題を理解することが営業の基本です。ヒアリングでは顧客のニーズを丁寧に確認します。" +
	"信頼を得るためには提案の質を高める必要があります。顧客との関係構築は長期的な成約に繋がります。"

func set() []quiz.Question {
	choice := func(n int, key string) quiz.Question {
		return quiz.Question{
			ID: "c" + key, SetID: "s1", Ordinal: n, MaxScore: quiz.PointsFor(n), Type: quiz.TypeChoice,
			Choices:       quiz.Choices{"一", "二", "三", "四"},
			CorrectAnswer: key,
			Explanation:   "理由",
		}
	}
	return []quiz.Question{
		choice(1, "1"),
		choice(2, "2"),
		choice(3, "3"),
		{ID: "e4", SetID: "s1", Ordinal: 4, MaxScore: 25, Type: quiz.TypeEssay, Title: "【問4】顧客の理解", CorrectAnswer: "顧客、ニーズ"},
		{ID: "e5", SetID: "s1", Ordinal: 5, MaxScore: 30, Type: quiz.TypeEssay, Title: "【問5】信頼の実践", CorrectAnswer: "信頼、提案、実践"},
	}
}

func items(qs []quiz.Question, answers ...string) []grading.Item {
	out := make([]grading.Item, len(qs))
	for i, q := range qs {
		out[i] = grading.Item{Question: q, AnswerText: answers[i], SourceText: passage}
	}
	return out
}

func TestBatch_FullTest(t *testing.T) {
	b := grading.NewBatch()
	res := b.Run(context.Background(), items(set(), "1", "２", "4",
		"ヒアリングでは顧客のニーズを丁寧に確認します。", ""))

	require.Empty(t, res.Errors)
	require.Len(t, res.Results, 5)
	assert.Equal(t, 100, res.MaxScore)
	assert.False(t, res.Aborted)

	assert.Equal(t, 15, res.Results[0].Score)
	assert.Equal(t, 15, res.Results[1].Score, "full-width digit")
	assert.Equal(t, 0, res.Results[2].Score)
	require.NotNil(t, res.Results[2].Correct)
	assert.False(t, *res.Results[2].Correct)

	e4 := res.Results[3]
	require.NotNil(t, e4.Breakdown)
	assert.Len(t, e4.Items, 4)
	assert.Greater(t, e4.Score, 0)
	assert.Contains(t, e4.Feedback.Reason, "【採点結果】\n4問目の配点: 25点")
	assert.Contains(t, e4.HTML, "詳細な採点内訳（満点25点）")

	assert.Equal(t, 0, res.Results[4].Score)
	assert.Equal(t, 30+e4.Score, res.TotalScore)
	assert.Equal(t, scoreSum(res.Results), res.TotalScore)
	assert.NotEmpty(t, res.Grade)
	assert.NotEmpty(t, res.Comment)
}

func scoreSum(rs []grading.Result) int {
	n := 0
	for _, r := range rs {
		n += r.Score
	}
	return n
}

func TestChoice_LeadingIntegerRule(t *testing.T) {
	cases := []struct {
		answer, key string
		correct     bool
	}{
		{"2", "2", true},
		{"２", "2", true},
		{"－２", "2", false},
		{"2.0", "2", true},
		{"1 2", "1", true},
		{"1 2", "2", false},
		{"-2", "2", false},
		{" 3番", "3", true},
		{"( 2 )", "2", false},
		{"", "2", false},
	}
	g := grading.NewDefaultGrader()
	for _, tc := range cases {
		q := quiz.Question{
			ID: "c", Ordinal: 1, MaxScore: 15, Type: quiz.TypeChoice,
			Choices: quiz.Choices{"一", "二", "三", "四"}, CorrectAnswer: tc.key,
		}
		res, err := g.Grade(context.Background(), grading.Item{Question: q, AnswerText: tc.answer})
		require.NoError(t, err, "answer %q", tc.answer)
		require.NotNil(t, res.Correct)
		assert.Equal(t, tc.correct, *res.Correct, "answer %q key %q", tc.answer, tc.key)
		if tc.correct {
			assert.Equal(t, 15, res.Score)
		} else {
			assert.Equal(t, 0, res.Score)
		}
		assert.Equal(t, tc.answer, res.AnswerText)
	}
}

func TestBatch_MalformedChoiceCollected(t *testing.T) {
	qs := set()
	qs[1].Choices = qs[1].Choices[:3]
	res := grading.NewBatch().Run(context.Background(), items(qs, "1", "2", "3", "顧客", "信頼"))

	require.Len(t, res.Errors, 1)
	assert.Equal(t, grading.TagChoiceFeedback, res.Errors[0].Tag)
	assert.Equal(t, 2, res.Errors[0].Ordinal)
	var ve *quiz.ValidationError
	assert.ErrorAs(t, res.Errors[0], &ve)
	assert.Len(t, res.Results, 4)
	assert.Equal(t, 100, res.MaxScore)
}

func TestBatch_AbortKeepsPriorResults(t *testing.T) {
	qs := set()
	qs[2].CorrectAnswer = "C"
	b := grading.NewBatch(grading.WithAbortOnError(true))
	res := b.Run(context.Background(), items(qs, "1", "2", "3", "顧客", "信頼"))

	assert.True(t, res.Aborted)
	require.Len(t, res.Results, 2)
	assert.Equal(t, 30, res.TotalScore)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, grading.TagChoiceFeedback, res.Errors[0].Tag)
}

func TestBatch_UnknownType(t *testing.T) {
	qs := set()[:1]
	qs[0].Type = "matching"
	res := grading.NewBatch().Run(context.Background(), items(qs, "1"))
	require.Len(t, res.Errors, 1)
	assert.Equal(t, grading.TagResultDisplay, res.Errors[0].Tag)
}

type panicGrader struct{}

func (panicGrader) Grade(context.Context, grading.Item) (grading.Result, error) {
	panic("boom")
}

func TestBatch_PanicTaggedByType(t *testing.T) {
	qs := set()
	res := grading.NewBatch(grading.WithGrader(panicGrader{})).Run(context.Background(), items(qs, "1", "2", "3", "a", "b"))
	require.Len(t, res.Errors, 5)
	assert.Equal(t, grading.TagChoiceFeedback, res.Errors[0].Tag)
	assert.Equal(t, grading.TagEssayFeedback, res.Errors[4].Tag)
	assert.Empty(t, res.Results)
	assert.Equal(t, "E", res.Grade)
}

func TestBatch_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := grading.NewBatch().Run(ctx, items(set(), "1", "2", "3", "a", "b"))
	assert.True(t, res.Aborted)
	assert.Empty(t, res.Results)
}

func TestEssay_SourceFromMarkers(t *testing.T) {
	q := quiz.Question{
		ID: "legacy", Type: quiz.TypeEssay, Ordinal: 4, MaxScore: 25, CorrectAnswer: "顧客、ニーズ",
		Explanation: quiz.EncodeExplanation(quiz.Markers{SetID: "s1", Ordinal: 4, Total: 5, Points: 25, SourceText: passage, Body: "採点基準"}),
	}
	g := grading.NewDefaultGrader()
	withSource, err := g.Grade(context.Background(), grading.Item{Question: q, AnswerText: "ヒアリングでは顧客のニーズを丁寧に確認します。", SourceText: passage})
	require.NoError(t, err)
	fromMarker, err := g.Grade(context.Background(), grading.Item{Question: q, AnswerText: "ヒアリングでは顧客のニーズを丁寧に確認します。"})
	require.NoError(t, err)
	assert.Equal(t, withSource.Score, fromMarker.Score)
}

func TestItemError_Unwrap(t *testing.T) {
	base := errors.New("bad")
	err := error(&grading.ItemError{Tag: grading.TagEssayScoring, Ordinal: 4, Err: base})
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "essay-scoring-error")
}
