package quiz_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-trainer/internal/quiz"
)

func TestMarkers_EncodeParse(t *testing.T) {
	in := quiz.Markers{
		SetID: "0b8c2f4e-1111", Ordinal: 4, Points: 25, MidTopic: "ヒアリング",
		SourceText: "顧客の話を聞く。", Body: "【評価のポイント】\n1. 理解",
	}
	out, err := quiz.ParseMarkers(quiz.EncodeExplanation(in))
	require.NoError(t, err)
	assert.Equal(t, in.SetID, out.SetID)
	assert.Equal(t, 4, out.Ordinal)
	assert.Equal(t, quiz.BatchSize, out.Total)
	assert.Equal(t, 25, out.Points)
	assert.Equal(t, "ヒアリング", out.MidTopic)
	assert.Equal(t, "顧客の話を聞く。", out.SourceText)
	assert.Equal(t, in.Body, out.Body)
}

func TestMarkers_Missing(t *testing.T) {
	_, err := quiz.ParseMarkers("ただの解説")
	assert.ErrorIs(t, err, quiz.ErrMissingMarker)
}

func TestQuestion_ResolveLegacy(t *testing.T) {
	q := quiz.Question{
		Type:        quiz.TypeChoice,
		Explanation: "【問題セットID】abc\n【問題番号】2/5\n【中トピック】傾聴\n【元テキスト】\n本文\n\n解説本文",
	}
	m, err := q.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "abc", q.SetID)
	assert.Equal(t, 2, q.Ordinal)
	// no 【配点】 marker: legacy default
	assert.Equal(t, quiz.LegacyDefaultPoints, q.MaxScore)
	assert.Equal(t, "本文", m.SourceText)
	assert.Equal(t, "解説本文", q.Explanation)
}

func TestChoices_AcceptsStringOrArray(t *testing.T) {
	var a, b struct {
		Choices quiz.Choices `json:"choices"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"choices":["x","y"]}`), &a))
	require.NoError(t, json.Unmarshal([]byte(`{"choices":"[\"x\",\"y\"]"}`), &b))
	assert.Equal(t, a.Choices, b.Choices)

	var bad struct {
		Choices quiz.Choices `json:"choices"`
	}
	err := json.Unmarshal([]byte(`{"choices":"not json"}`), &bad)
	var pe *quiz.ParseError
	assert.ErrorAs(t, err, &pe)

	empty, err := quiz.ParseChoices("")
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.Equal(t, "[]", quiz.Choices(nil).Encode())
}

func TestPointsFor_Totals100(t *testing.T) {
	total := 0
	for n := 1; n <= quiz.BatchSize; n++ {
		total += quiz.PointsFor(n)
	}
	assert.Equal(t, 100, total)
	assert.Equal(t, 0, quiz.PointsFor(6))
}

func TestValidateRecord(t *testing.T) {
	ok := []byte(`{"type":"choice","title":"t","question_text":"q","choices":"[\"a\"]","correct_answer":"1","explanation":"e"}`)
	assert.NoError(t, quiz.ValidateRecord("questions", ok))

	bad := []byte(`{"type":"truefalse","title":"t","question_text":"q","correct_answer":"1","explanation":"e"}`)
	assert.Error(t, quiz.ValidateRecord("questions", bad))

	assert.NoError(t, quiz.ValidateRecord("feedbacks", []byte(`{}`)))
}
