package quizgen

import "strings"

const (
	CategorySales         = "sales"
	CategoryCommunication = "communication"

	// OtherCategory groups every category outside the vocabulary.
	OtherCategory = "other"
)

var categoryAliases = map[string]string{
	"sales":         CategorySales,
	"営業":            CategorySales,
	"communication": CategoryCommunication,
	"コミュニケーション":     CategoryCommunication,
}

// NormalizeCategory maps display names to the canonical category key.
// Unknown categories are returned trimmed and otherwise unchanged.
func NormalizeCategory(category string) string {
	c := strings.TrimSpace(category)
	if v, ok := categoryAliases[strings.ToLower(c)]; ok {
		return v
	}
	return c
}

// Vocabulary maps a canonical category to its fixed term list. Term order is
// the tie-break order for keyword ranking.
type Vocabulary map[string][]string

var salesTerms = []string{
	"顧客", "提案", "ニーズ", "ヒアリング", "信頼", "関係構築", "課題", "解決",
	"価値", "メリット", "競合", "クロージング", "アプローチ", "フォロー", "成約", "予算",
	"決裁", "商談", "見込み客", "受注", "契約", "交渉", "プレゼン", "質問",
}

var communicationTerms = []string{
	"傾聴", "共感", "質問", "理解", "伝える", "対話", "相手", "関係",
	"配慮", "双方向", "表現", "フィードバック", "非言語", "ボディランゲージ", "アクティブリスニング", "要約",
	"言葉", "意見", "気持ち", "感情", "話す", "聞く",
}

// DefaultVocabulary returns a fresh copy of the built-in term lists.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		CategorySales:         append([]string(nil), salesTerms...),
		CategoryCommunication: append([]string(nil), communicationTerms...),
	}
}

// Terms returns the term list for category; unknown categories have none.
func (v Vocabulary) Terms(category string) []string {
	return v[NormalizeCategory(category)]
}
