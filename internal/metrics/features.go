// Package metrics derives cheap local measurements from conversation text
// and keeps running counters for a chat session.
package metrics

import (
	"strings"
	"unicode/utf8"
)

// Text holds size measurements of one piece of text.
type Text struct {
	Bytes int `json:"bytes"`
	Runes int `json:"runes"`
	Words int `json:"words"`
	Lines int `json:"lines"`
}

// Measure counts bytes, runes, whitespace-separated words and lines in s.
// An empty string has zero lines; otherwise lines is 1 + the number of '\n'.
func Measure(s string) Text {
	t := Text{Bytes: len(s), Runes: utf8.RuneCountInString(s), Words: len(strings.Fields(s))}
	if s != "" {
		t.Lines = 1 + strings.Count(s, "\n")
	}
	return t
}
