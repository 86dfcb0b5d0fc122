package scoring

type band struct {
	min     float64
	grade   string
	comment string
}

var bands = []band{
	{90, "S", "素晴らしい！テキストの内容を深く理解し、的確に表現できています。"},
	{80, "A", "良くできています。テキストの重要なポイントを押さえています。"},
	{70, "B", "よくできました。テキストの内容を理解していますが、さらに具体性を加えると良いでしょう。"},
	{60, "C", "基本的な理解はできています。テキストとの関連性をより明確にしましょう。"},
	{50, "D", "理解は進んでいますが、テキストの内容により深く沿った回答を目指しましょう。"},
}

const (
	lowestGrade   = "E"
	lowestComment = "テキストの内容を再度確認し、重要なキーワードや概念を意識して回答してみましょう。"
)

// Grade maps a 0-100 percentage to a letter S, A, B, C, D or E.
func Grade(percent float64) string {
	for _, b := range bands {
		if percent >= b.min {
			return b.grade
		}
	}
	return lowestGrade
}

// Comment is the overall remark for a percentage.
func Comment(percent float64) string {
	for _, b := range bands {
		if percent >= b.min {
			return b.comment
		}
	}
	return lowestComment
}

// Percent returns score as a share of max in 0-100.
func Percent(score, maxScore int) float64 {
	if maxScore <= 0 {
		return 0
	}
	return float64(score) / float64(maxScore) * 100
}
