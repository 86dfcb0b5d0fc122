package quizgen

import (
	"fmt"
	"strings"
)

// Fallback keywords when the passage yields none.
const (
	fallbackChoiceKeyword = "ポイント"
	fallbackEssayKeyword  = "テーマ"
)

func choiceQuestionText(kw string) string {
	return fmt.Sprintf("テキストでは「%s」について述べられています。テキストの内容に最も合致するのはどれですか？", kw)
}

func choiceExplanation(kw, context string) string {
	return fmt.Sprintf("テキストでは、「%s」について「%s」と述べられています。これが本文の内容に最も忠実な記述です。", kw, context)
}

func choiceTitle(n int, kw string) string { return fmt.Sprintf("【問%d】%sについて", n, kw) }

// fallbackChoice is used when no concept sentence exists. The correct
// option is always the second one.
func fallbackChoice(kw string) (question string, choices []string, correct string, explanation string) {
	question = fmt.Sprintf("テキストで述べられている「%s」に関する記述として、最も適切なものはどれですか？", kw)
	choices = []string{
		kw + "は一般的な常識である",
		"テキストでは" + kw + "の重要性が強調されている",
		kw + "は考慮する必要がない",
		kw + "について詳しく説明されていない",
	}
	return question, choices, "2", fmt.Sprintf("テキスト全体を通じて、%sが重要なテーマとして扱われています。", kw)
}

// relatedTemplate pairs the question keyword with another keyword.
func relatedTemplate(category, kw, other string) string {
	switch category {
	case CategorySales:
		return fmt.Sprintf("%sは%sと密接に関連しており、両方をバランスよく実践することが顧客との信頼関係構築に繋がる", kw, other)
	case CategoryCommunication:
		return fmt.Sprintf("%sでは%sの要素も重要であり、相手の立場を考慮しながら対話を進めることが効果的である", kw, other)
	default:
		return fmt.Sprintf("%sと%sを組み合わせることで、より効果的な結果を得ることができる", kw, other)
	}
}

func categoryTemplates(category, kw string) []string {
	switch category {
	case CategorySales:
		return []string{
			kw + "においては顧客のニーズを的確に把握し、適切な提案を行うことが基本となる",
			kw + "では、製品やサービスの特徴を分かりやすく説明し、顧客の課題解決に繋げることが重要である",
		}
	case CategoryCommunication:
		return []string{
			kw + "では相手の話を注意深く聞き、適切なタイミングで自分の意見を述べることが大切である",
			kw + "においては言葉だけでなく、表情や態度なども含めた総合的なメッセージの伝達が求められる",
		}
	default:
		return []string{
			kw + "については、理論的な理解と実践的なスキルの両方が必要とされる",
			kw + "を効果的に活用するためには、状況に応じた柔軟な対応が重要である",
		}
	}
}

func paddingDistractor(kw string) string {
	return kw + "に関する一般的な理解として、継続的な学習と実践が成長に繋がる"
}

func safeDistractors(kw string) []string {
	return []string{
		kw + "は一般的なビジネススキルとして重要である",
		kw + "については実践を通じて理解を深めることができる",
		kw + "に関する知識は幅広い場面で活用できる",
	}
}

func understandingEssay(kw string, criteria []string, source string) (title, question, explanation string) {
	title = fmt.Sprintf("%sの理解", kw)
	question = fmt.Sprintf("テキストで述べられている「%s」について、あなた自身の言葉で説明してください。テキストの内容を踏まえて、具体的に記述してください。", kw)
	explanation = "【評価のポイント】\n" +
		fmt.Sprintf("1. テキストで述べられている%sの内容を正確に理解しているか\n", kw) +
		fmt.Sprintf("2. 重要なキーワード（%s）を適切に使用しているか\n", strings.Join(criteria, "、")) +
		"3. 自分の言葉で分かりやすく説明できているか\n" +
		"4. 具体的な内容が含まれているか\n\n" +
		"【元テキスト】\n" + source
	return title, question, explanation
}

func practiceEssay(kw string, criteria []string, source string) (title, question, explanation string) {
	title = fmt.Sprintf("%sの実践", kw)
	question = fmt.Sprintf("テキストで学んだ「%s」を実際の場面で活用するには、どのような点に注意すべきでしょうか。テキストの内容を踏まえて、具体的な実践方法を記述してください。", kw)
	explanation = "【評価のポイント】\n" +
		"1. テキストの内容を正しく理解した上で応用しているか\n" +
		fmt.Sprintf("2. %sに関連するキーワード（%s）を活用しているか\n", kw, strings.Join(criteria, "、")) +
		"3. 実践的で具体的な内容が含まれているか\n" +
		"4. テキストで学んだ内容と実際の応用が結びついているか\n\n" +
		"【元テキスト】\n" + source
	return title, question, explanation
}

// practiceCriteria are appended to the top keywords for the applied essay.
var practiceCriteria = []string{"実践", "活用", "具体例"}
