package feedback

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/mind-engage/mindengage-trainer/internal/quiz"
	"github.com/mind-engage/mindengage-trainer/internal/scoring"
)

// signals are the surface features essay feedback is keyed on.
type signals struct {
	length    int
	structure bool
	example   bool
	steps     bool
	causal    bool
	used      []string
	missing   []string
	keywords  []string
}

func readSignals(answer string, keywords []string, p scoring.PhraseTable) signals {
	used, missing := scoring.UsedKeywords(answer, keywords)
	n := utf8.RuneCountInString(strings.TrimSpace(answer))
	return signals{
		length:    n,
		structure: strings.Contains(answer, "\n") || utf8.RuneCountInString(answer) > 100,
		example:   scoring.ContainsAny(answer, p.FeedbackExamples),
		steps:     scoring.ContainsAny(answer, p.FeedbackSteps),
		causal:    scoring.ContainsAny(answer, p.FeedbackCausal),
		used:      used,
		missing:   missing,
		keywords:  keywords,
	}
}

func quoteAll(ks []string) string { return "「" + strings.Join(ks, "」「") + "」" }

// ForEssay writes feedback for an essay answer already scored at score.
// The detailed breakdown is only written when b is non-nil.
func ForEssay(q quiz.Question, answer, source string, score, maxScore int, b *scoring.Breakdown) Sections {
	sg := readSignals(answer, scoring.ParseKeywords(q.CorrectAnswer), scoring.PhrasesV1)
	ach := achievement(score, maxScore)

	s := Sections{
		GoodPoint:       goodPoints(sg),
		PartialPoint:    partialPoints(sg, ach),
		CorrectionPoint: correctionPoints(sg),
		Reason:          essayReason(sg, score, maxScore, ach),
		NextAction:      essayNextAction(sg),
		ModelAnswer:     ModelAnswer(q, source, sg.keywords),
	}
	if b != nil {
		s.DetailedBreakdown = detailedBreakdown(sg, *b, score, maxScore, ach)
	}
	return s
}

func goodPoints(sg signals) string {
	var out []string
	if len(sg.used) > 0 {
		rate := int(math.Round(float64(len(sg.used)) / float64(len(sg.keywords)) * 100))
		switch {
		case rate >= 80:
			out = append(out, fmt.Sprintf("✓ 【優れた点】テキストの重要なキーワード%sを的確に使用しています（達成率%d%%）。"+
				"これらのキーワードを自然な文脈の中で活用できており、テキストの内容を正確に理解していることが伝わります。", quoteAll(sg.used), rate))
		case rate >= 50:
			out = append(out, fmt.Sprintf("✓ テキストの重要なキーワード%sを使用しています（%d/%d個、達成率%d%%）。"+
				"これらの概念を適切に回答に組み込めています。", quoteAll(sg.used), len(sg.used), len(sg.keywords), rate))
		default:
			out = append(out, fmt.Sprintf("✓ キーワード%sを使用しています。これらの概念に着目できた点は評価できます。", quoteAll(sg.used)))
		}
	}
	switch {
	case sg.length >= 200:
		out = append(out, "✓ 【優れた点】十分な文量で多角的に回答されています。複数の観点から丁寧に説明しようという姿勢が見られます。")
	case sg.length >= 150:
		out = append(out, "✓ 適切な文量で丁寧に回答されています。要点を詳しく説明しようとする意識が見られます。")
	case sg.length >= 80:
		out = append(out, "✓ 要点を押さえて回答しています。簡潔にまとめる力があります。")
	}
	if sg.example {
		out = append(out, "✓ 【優れた点】具体例を用いて説明されています。抽象的な概念を具体化できており、実践的な理解があることがわかります。")
	}
	if sg.steps {
		out = append(out, "✓ 【優れた点】論理的な構造で記述されています。「まず〜、次に〜」などの接続詞を使い、段階的に説明できています。読み手に配慮した書き方です。")
	}
	if sg.length >= 50 {
		out = append(out, "✓ 問いに対して真摯に向き合い、自分の言葉で表現しようとする姿勢が伝わります。")
	}
	if len(out) == 0 {
		return "✓ 問いに対して向き合い、回答を記述された点は評価できます。まだ発展途上ですが、学習に取り組む姿勢を大切にしてください。"
	}
	return strings.Join(out, "\n\n")
}

func partialPoints(sg signals, ach int) string {
	var out []string
	if m := len(sg.missing); m > 0 {
		switch {
		case m == len(sg.keywords):
			out = append(out, fmt.Sprintf("△ 【重要な改善点】テキストで強調されていた重要なキーワード%sが回答に含まれていません。\n\n", quoteAll(sg.missing))+
				"これらのキーワードは、テキストの核心となる概念です。もう一度テキストを読み返し、これらの言葉が「なぜ重要なのか」を考えてみましょう。\n\n"+
				"💡 ヒント: テキスト中で繰り返し出てくる言葉や、強調されている概念に注目してください。")
		case float64(m) > float64(len(sg.keywords))/2:
			out = append(out, fmt.Sprintf("△ 【改善の余地あり】テキストの重要なキーワード%sが回答に含まれていません（未使用%d/%d個）。\n\n", quoteAll(sg.missing), m, len(sg.keywords))+
				"これらのキーワードを使うことで、テキストの内容により忠実な回答になります。\n\n"+
				"💡 改善策: 次回は回答を書く前に「テキストで最も重要な言葉は何か？」と自問してみましょう。")
		default:
			out = append(out, fmt.Sprintf("△ テキストのキーワード%sも含めると、さらに完成度が高まります。\n\n", quoteAll(sg.missing))+
				"💡 次のステップ: これらの言葉を使って、あと1〜2文追加してみましょう。回答の深みが増します。")
		}
	}
	switch {
	case sg.length < 80:
		out = append(out, fmt.Sprintf("△ 【文量】現在%d文字です。もう少し詳しく説明してみましょう（目安：100文字以上、あと約%d文字）。\n\n", sg.length, 100-sg.length)+
			"💡 展開のコツ:\n• 「何を」- その概念は何か\n• 「なぜ」- なぜ重要なのか\n• 「どのように」- どう実践するのか\n\n"+
			"この3つの観点で書いてみると、自然に深まります。")
	case sg.length < 150 && ach < 70:
		out = append(out, fmt.Sprintf("△ 【深さ】現在%d文字です。要点は押さえていますが、もう少し掘り下げると理解の深さが伝わります。\n\n", sg.length)+
			"💡 深めるヒント: 「その理由は何か」「具体的にはどういうことか」を1〜2文加えてみましょう。")
	}
	if !sg.example && sg.length >= 80 {
		out = append(out, "△ 【具体性】概念の説明はできていますが、具体例があるとさらに説得力が増します。\n\n"+
			"💡 具体化の技術:\n• 「例えば、〜」で実際の場面を描写する\n• 「具体的には、〜」で詳細を補足する\n• 数字や固有名詞を使って臨場感を出す\n\n"+
			"抽象的な理解を実践に結びつける力が育ちます。")
	}
	if !sg.steps && sg.length > 200 {
		out = append(out, "△ 【構造】内容は充実していますが、文章を整理するとさらに読みやすくなります。\n\n"+
			"💡 構造化のテクニック:\n• 「まず〜、次に〜、最後に〜」で段階的に説明\n• 「第一に〜、第二に〜」で複数の観点を整理\n• 改行や段落分けで視覚的に整える\n\n"+
			"読み手に配慮した書き方は、ビジネスでも重要なスキルです。")
	}
	if sg.length >= 100 && !sg.causal {
		out = append(out, "△ 【論理性】「〜ため」「〜ので」「〜から」などの因果関係を示す言葉があると、主張の根拠が明確になります。\n\n"+
			"💡 論理展開の型: 「〜である。なぜなら〜だからである。」という構造を意識してみましょう。")
	}
	if len(out) == 0 {
		return "全体的によくできています！\n\n" +
			"さらにブラッシュアップするなら、具体例を1つ追加するか、「なぜそう言えるのか」という根拠を一文加えると、より説得力が増します。"
	}
	return strings.Join(out, "\n\n")
}

func correctionPoints(sg signals) string {
	var out []string
	if m := len(sg.missing); float64(m) > float64(len(sg.keywords))/2 {
		out = append(out, fmt.Sprintf("✗ テキストの重要なキーワードのうち、半分以上（%d個）が回答に含まれていません\n", m)+
			fmt.Sprintf("　不足キーワード：%s\n", quoteAll(sg.missing))+
			"　→ テキストを再度読み、これらのキーワードを意識して回答を組み立てましょう")
	}
	if sg.length < 50 {
		out = append(out, "✗ 回答が短すぎて、問いが求める内容を十分に表現できていません\n"+
			"　→ 最低でも80〜150文字程度を目安に、詳しく記述してみましょう")
	}
	if len(sg.used) == 0 {
		out = append(out, "✗ テキストの重要なキーワードが一つも使用されていません\n"+
			"　→ テキストの内容を踏まえて回答する必要があります")
	}
	if len(out) == 0 {
		return "大きな修正点はありません。この調子で学習を続けてください。"
	}
	return strings.Join(out, "\n\n")
}

func detailedBreakdown(sg signals, b scoring.Breakdown, score, maxScore, ach int) string {
	var w strings.Builder
	fmt.Fprintf(&w, "【満点：%d点 / 獲得：%d点 / 達成率：%d%%】\n\n", maxScore, score, ach)

	taMax := scoring.CategoryMax(maxScore, scoring.AlignmentWeight)
	fmt.Fprintf(&w, "1️⃣ テキスト一致度（配点%d点）：%d点\n", taMax, b.TextAlignment)
	switch ta := float64(b.TextAlignment); {
	case ta >= float64(taMax)*0.8:
		w.WriteString("   ✓ テキストの内容をよく理解しています\n")
	case ta >= float64(taMax)*0.5:
		w.WriteString("   △ テキストの内容をある程度理解していますが、より深く読み込みましょう\n")
	default:
		w.WriteString("   ✗ テキストの内容への理解が不足しています。もう一度読み直しましょう\n")
	}
	w.WriteString("\n")

	kMax := scoring.CategoryMax(maxScore, scoring.KeywordWeight)
	fmt.Fprintf(&w, "2️⃣ 重要キーワード使用（配点%d点）：%d点\n", kMax, b.KeywordUsage)
	fmt.Fprintf(&w, "   使用したキーワード：%s（%d/%d個）\n", quoteAll(sg.used), len(sg.used), len(sg.keywords))
	if len(sg.missing) > 0 {
		fmt.Fprintf(&w, "   未使用キーワード：%s\n", quoteAll(sg.missing))
		gain := int(math.Floor(float64(len(sg.missing)) / float64(len(sg.keywords)) * float64(kMax)))
		fmt.Fprintf(&w, "   → これらのキーワードを使うと+%d点アップ可能\n", gain)
	}
	w.WriteString("\n")

	sMax := scoring.CategoryMax(maxScore, scoring.SpecificityWeight)
	fmt.Fprintf(&w, "3️⃣ 具体性（配点%d点）：%d点\n", sMax, b.Specificity)
	if sg.example {
		w.WriteString("   ✓ 具体例が含まれています\n")
	} else {
		fmt.Fprintf(&w, "   △ 具体例がありません。「例えば〜」を追加すると+%d点アップ\n", int(math.Floor(float64(sMax)*0.3)))
	}
	w.WriteString("\n")

	stMax := scoring.CategoryMax(maxScore, scoring.StructureWeight)
	fmt.Fprintf(&w, "4️⃣ 論理性・構造（配点%d点）：%d点\n", stMax, b.Structure)
	switch {
	case sg.steps:
		w.WriteString("   ✓ 構造的に記述されています\n")
	case sg.structure:
		w.WriteString("   △ ある程度整理されていますが、「まず」「次に」などでさらに明確化できます\n")
	default:
		w.WriteString("   △ 段落分けや接続詞で構造を整理しましょう\n")
	}
	return w.String()
}

func essayReason(sg signals, score, maxScore, ach int) string {
	var w strings.Builder
	fmt.Fprintf(&w, "【あなたの得点】%d点 / %d点（達成率 %d%%）\n\n", score, maxScore, ach)
	switch {
	case ach >= 80:
		w.WriteString("✓ 優秀な回答です。テキストの内容を深く理解し、適切に表現できています。\n\n")
	case ach >= 60:
		w.WriteString("○ 良い回答です。基本的な理解はできていますが、さらに詳しく記述する余地があります。\n\n")
	case ach >= 40:
		w.WriteString("△ 基本的な理解は見られますが、テキストの重要ポイントをもっと盛り込みましょう。\n\n")
	default:
		w.WriteString("✗ テキストの内容を再度確認し、重要なキーワードを意識して回答を見直しましょう。\n\n")
	}
	w.WriteString("【評価のポイント】\n")
	fmt.Fprintf(&w, "・テキストの重要キーワード（%s）を使用しているか\n", strings.Join(sg.keywords, "、"))
	w.WriteString("・テキストの内容を正確に理解しているか\n")
	w.WriteString("・具体的に記述しているか\n")
	w.WriteString("・論理的に構成されているか")
	return w.String()
}

func essayNextAction(sg signals) string {
	switch {
	case len(sg.missing) > 0:
		head := sg.keywords
		if len(head) > 3 {
			head = head[:3]
		}
		return fmt.Sprintf("次回は、テキストを読んだ後に重要なキーワード（%sなど）をメモし、", strings.Join(head, "、")) +
			"それらを必ず回答に含めるよう意識しましょう。\n\n" +
			"キーワードを使うことで、テキストの内容に沿った回答になります。"
	case !sg.example:
		return "次回は、抽象的な表現を使ったら「例えば?」と自問し、具体例を1つ加える癖をつけましょう。\n\n" +
			"具体例があると、理解の深さが伝わります。"
	case sg.length < 100:
		return "回答する前に、「何を」「なぜ」「どのように」の3点を意識して、もう少し詳しく記述してみましょう。\n\n" +
			"各ポイントを30文字以上で説明することを目標にしてください。"
	default:
		return "この調子で、実際の業務場面でも「言語化して伝える」機会を増やすと、さらに実践力が向上するでしょう。"
	}
}
