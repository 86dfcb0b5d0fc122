package quiz

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Markers are the set-level attributes older records embedded as bracketed
// tags at the top of a question's explanation.
type Markers struct {
	SetID      string
	Ordinal    int
	Total      int
	Points     int
	MidTopic   string
	SourceText string
	Body       string
}

var (
	reSetID    = regexp.MustCompile(`【問題セットID】([^\n]+)`)
	reOrdinal  = regexp.MustCompile(`【問題番号】(\d+)(?:/(\d+))?`)
	rePoints   = regexp.MustCompile(`【配点】(\d+)点`)
	reMidTopic = regexp.MustCompile(`【中トピック】([^\n]*)`)
	reSource   = regexp.MustCompile(`(?s)【元テキスト】\n(.+?)\n\n`)
)

// EncodeExplanation renders the legacy marker header followed by body.
func EncodeExplanation(m Markers) string {
	total := m.Total
	if total == 0 {
		total = BatchSize
	}
	var b strings.Builder
	fmt.Fprintf(&b, "【問題セットID】%s\n", m.SetID)
	fmt.Fprintf(&b, "【問題番号】%d/%d\n", m.Ordinal, total)
	fmt.Fprintf(&b, "【配点】%d点\n", m.Points)
	fmt.Fprintf(&b, "【中トピック】%s\n", m.MidTopic)
	fmt.Fprintf(&b, "【元テキスト】\n%s\n\n", m.SourceText)
	b.WriteString(m.Body)
	return b.String()
}

// ParseMarkers extracts whatever markers are present. The set ID is the only
// required one; others are left zero when absent.
func ParseMarkers(explanation string) (Markers, error) {
	var m Markers
	sm := reSetID.FindStringSubmatch(explanation)
	if sm == nil {
		return m, fmt.Errorf("問題セットID: %w", ErrMissingMarker)
	}
	m.SetID = strings.TrimSpace(sm[1])

	if om := reOrdinal.FindStringSubmatch(explanation); om != nil {
		n, err := strconv.Atoi(om[1])
		if err != nil {
			return m, &ParseError{Field: "問題番号", Err: err}
		}
		m.Ordinal = n
		if om[2] != "" {
			m.Total, _ = strconv.Atoi(om[2])
		}
	}
	if pm := rePoints.FindStringSubmatch(explanation); pm != nil {
		n, err := strconv.Atoi(pm[1])
		if err != nil {
			return m, &ParseError{Field: "配点", Err: err}
		}
		m.Points = n
	}
	if tm := reMidTopic.FindStringSubmatch(explanation); tm != nil {
		m.MidTopic = strings.TrimSpace(tm[1])
	}
	if loc := reSource.FindStringSubmatchIndex(explanation); loc != nil {
		m.SourceText = explanation[loc[2]:loc[3]]
		m.Body = explanation[loc[1]:]
	}
	return m, nil
}

// Resolve fills SetID, Ordinal and MaxScore from embedded markers when they
// are missing and returns the markers found. Questions that already carry
// structured fields are returned untouched.
func (q *Question) Resolve() (Markers, error) {
	if q.SetID != "" && q.Ordinal > 0 && q.MaxScore > 0 {
		return Markers{SetID: q.SetID, Ordinal: q.Ordinal, Points: q.MaxScore}, nil
	}
	m, err := ParseMarkers(q.Explanation)
	if err != nil {
		return m, err
	}
	if q.SetID == "" {
		q.SetID = m.SetID
	}
	if q.Ordinal == 0 {
		q.Ordinal = m.Ordinal
	}
	if q.MaxScore == 0 {
		if m.Points > 0 {
			q.MaxScore = m.Points
		} else {
			q.MaxScore = LegacyDefaultPoints
		}
	}
	if m.Body != "" {
		q.Explanation = m.Body
	}
	return m, nil
}
