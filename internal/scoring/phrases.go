package scoring

// PhraseTable holds the Japanese surface markers the heuristics look for.
// Tables are versioned so stored scores can be traced to the rules used.
type PhraseTable struct {
	Version string

	ExampleMarkers []string
	UnitChars      string
	StepMarkers    []string
	CausalMarkers  []string
	Connectives    []string
	Particles      string

	// narrower marker sets used when writing feedback
	FeedbackExamples []string
	FeedbackSteps    []string
	FeedbackCausal   []string
}

var PhrasesV1 = PhraseTable{
	Version:        "v1",
	ExampleMarkers: []string{"例えば", "具体的には", "実際に", "たとえば", "ケースとして", "〜の場合", "〜のとき"},
	UnitChars:      "%％点円人日時間分秒件個回",
	StepMarkers:    []string{"まず", "次に", "最後に", "1つ目", "2つ目", "3つ目", "第一に", "第二に", "第三に", "ステップ"},
	CausalMarkers:  []string{"ため", "ので", "から", "よって", "したがって", "だから", "そのため", "それゆえ"},
	Connectives: []string{"しかし", "そして", "また", "さらに", "そのため", "したがって", "つまり", "ただし",
		"なぜなら", "すなわち", "このように", "これにより"},
	Particles: "はがをにでと、。",

	FeedbackExamples: []string{"例えば", "具体的には", "実際に", "たとえば"},
	FeedbackSteps:    []string{"まず", "次に", "最後に", "第一に", "第二に", "1つ目", "2つ目"},
	FeedbackCausal:   []string{"ため", "ので", "から"},
}

// ContainsAny reports whether s contains at least one of markers.
func ContainsAny(s string, markers []string) bool {
	return countDistinct(s, markers) > 0
}
