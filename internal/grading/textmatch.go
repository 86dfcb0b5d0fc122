package grading

import "golang.org/x/text/width"

// normalizeChoice folds full-width forms ("４", "－２") to ASCII. Everything
// else is left for LeadingInt, so "2.0" still reads as 2 and "-2" as -2.
func normalizeChoice(s string) string {
	return width.Narrow.String(s)
}
