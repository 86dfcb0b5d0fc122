package feedback

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

type block struct {
	Class   string
	Heading string
	Body    string
}

var reportTmpl = template.Must(template.New("feedback").Parse(
	`<div class="feedback">{{range .}}<section class="{{.Class}}"><h4>{{.Heading}}</h4><p>{{.Body}}</p></section>{{end}}</div>`))

func blocks(s Sections, maxScore int) []block {
	all := []block{
		{"good", "できている点", s.GoodPoint},
		{"partial", "惜しい点", s.PartialPoint},
		{"correction", "修正が必要な点", s.CorrectionPoint},
		{"breakdown", fmt.Sprintf("詳細な採点内訳（満点%d点）", maxScore), s.DetailedBreakdown},
		{"reason", "評価の理由", s.Reason},
		{"model-answer", "模範解答", s.ModelAnswer},
		{"next-action", "次に意識する一点", s.NextAction},
	}
	out := all[:0]
	for _, b := range all {
		if b.Body != "" {
			out = append(out, b)
		}
	}
	return out
}

// RenderHTML renders the present sections in display order. Section text is
// escaped; line breaks survive through CSS white-space rules on the client.
func RenderHTML(s Sections, maxScore int) (string, error) {
	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, blocks(s, maxScore)); err != nil {
		return "", fmt.Errorf("render feedback: %w", err)
	}
	return buf.String(), nil
}

// RenderText is the plain-text form used by the CLI.
func RenderText(s Sections, maxScore int) string {
	var w strings.Builder
	for i, b := range blocks(s, maxScore) {
		if i > 0 {
			w.WriteString("\n\n")
		}
		fmt.Fprintf(&w, "■ %s\n%s", b.Heading, b.Body)
	}
	return w.String()
}
