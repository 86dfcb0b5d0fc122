package feedback

import (
	"fmt"

	"github.com/mind-engage/mindengage-trainer/internal/quiz"
	"github.com/mind-engage/mindengage-trainer/internal/scoring"
)

const choiceOptions = 4

// ForChoice writes feedback for a choice answer. It fails on a question
// whose key is not numeric or whose option list is not four long.
func ForChoice(q quiz.Question, answer string, maxScore int) (Sections, error) {
	if len(q.Choices) != choiceOptions {
		return Sections{}, &quiz.ValidationError{Field: "choices", Reason: fmt.Sprintf("malformed choice count %d", len(q.Choices))}
	}
	want, ok := scoring.LeadingInt(q.CorrectAnswer)
	if !ok {
		return Sections{}, &scoring.ScoringError{QuestionID: q.ID, Reason: fmt.Sprintf("non-numeric correct answer %q", q.CorrectAnswer)}
	}
	got, answered := scoring.LeadingInt(answer)
	correctText := option(q.Choices, want)

	if answered && got == want {
		return Sections{
			GoodPoint: fmt.Sprintf("✓ 正解です！（%d点獲得）\n\n", maxScore) +
				fmt.Sprintf("選択肢%d「%s」を選ばれた判断は的確でした。\n", want, correctText) +
				"テキストの内容を正しく理解し、適切な選択ができています。",
			PartialPoint: "今回の設問では完璧な回答でした。\n\n" +
				"さらにレベルアップするには、なぜこの選択肢が正解なのかを自分の言葉で説明できるようにしましょう。",
			CorrectionPoint: "特に修正が必要な点はありません。この調子で学習を続けてください。",
			Reason: fmt.Sprintf("【正解の理由】\n%s\n\n", q.Explanation) +
				fmt.Sprintf("【あなたの選択】\n選択肢%d: %s\n\n", want, correctText) +
				"✓ この選択はテキストの内容に最も忠実であり、正確な理解に基づいています。",
			NextAction: "次のステップとして、「なぜその選択が正しいのか」を自分の言葉で説明できるよう意識してみましょう。\n\n" +
				"「わかる」から「説明できる」へのステップアップを目指してください。",
			ModelAnswer: fmt.Sprintf("【正解】選択肢%d\n\n%s\n\n【理由】\n%s", want, correctText, q.Explanation),
		}, nil
	}

	label := "未回答"
	if answered {
		label = fmt.Sprintf("%d", got)
	}
	selected := option(q.Choices, got)
	category := q.Category
	if category == "" {
		category = "このテーマ"
	}
	return Sections{
		GoodPoint: fmt.Sprintf("選択肢%s「%s」に着目された視点には、%sにおける一つの要素が含まれています。\n\n", label, selected, category) +
			"問題に真剣に向き合い、自分なりの判断をした点は評価できます。",
		PartialPoint: fmt.Sprintf("選択肢%sを選ばれた理由は理解できますが、今回の設問ではテキストの内容により忠実な選択肢が他にあります。\n\n", label) +
			"テキストで「何が最も強調されていたか」という視点で再考してみましょう。",
		CorrectionPoint: fmt.Sprintf("今回の問いでは、選択肢%d「%s」が正解でした。\n\n", want, correctText) +
			fmt.Sprintf("【選択肢%sと%dの違い】\n", label, want) +
			fmt.Sprintf("選択肢%sは一般的な考え方や部分的な要素を含んでいますが、", label) +
			fmt.Sprintf("選択肢%dはテキストで述べられている内容により正確に対応しています。", want),
		Reason: fmt.Sprintf("【正解の理由】\n%s\n\n", q.Explanation) +
			fmt.Sprintf("【あなたの選択】\n選択肢%s: %s\n\n", label, selected) +
			fmt.Sprintf("【正しい選択】\n選択肢%d: %s\n\n", want, correctText) +
			fmt.Sprintf("× 選択肢%sを選ばれた背景には部分的な理解がありましたが、", label) +
			fmt.Sprintf("テキスト全体の文脈では選択肢%dの方がより適切です。", want),
		NextAction: "次回は、問題を解く前にテキストをもう一度読み返し、" +
			"「このテキストで最も言いたいことは何か」を考えてから選択肢を見てみましょう。\n\n" +
			"テキストの主張の「核心」を捉える訓練です。",
		ModelAnswer: fmt.Sprintf("【正解】選択肢%d\n\n%s\n\n【理由】\n%s\n\n", want, correctText, q.Explanation) +
			"【ポイント】\nテキストでは、この内容が中心的なテーマとして述べられています。" +
			"選択肢を選ぶ際は、「テキストで最も強調されている内容」という視点で判断しましょう。",
	}, nil
}

// option returns the 1-based choice text, empty when out of range.
func option(choices []string, n int) string {
	if n < 1 || n > len(choices) {
		return ""
	}
	return choices[n-1]
}
