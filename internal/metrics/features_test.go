package metrics_test

import (
	"testing"

	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
	"github.com/petasbytes/searchchat/internal/metrics"
)

func TestMeasure(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want metrics.Text
	}{
		{"empty", "", metrics.Text{}},
		{"question", "What is Go?", metrics.Text{Bytes: 11, Runes: 11, Words: 3, Lines: 1}},
		{"tool output", "Page: Go\nSummary: a language", metrics.Text{Bytes: 28, Runes: 28, Words: 5, Lines: 2}},
		{"trailing newline", "a\nb\n", metrics.Text{Bytes: 4, Runes: 4, Words: 2, Lines: 3}},
		{"crlf", "a\r\nb", metrics.Text{Bytes: 4, Runes: 4, Words: 2, Lines: 2}},
		{"only whitespace", " \t\n", metrics.Text{Bytes: 3, Runes: 3, Words: 0, Lines: 2}},
		{"multibyte", "héllö 世界", metrics.Text{Bytes: 14, Runes: 8, Words: 2, Lines: 1}},
		{"nbsp splits words", "foo bar", metrics.Text{Bytes: 8, Runes: 7, Words: 2, Lines: 1}},
		{"zero width space does not", "foo​bar", metrics.Text{Bytes: 9, Runes: 7, Words: 1, Lines: 1}},
		{"astral", "👍👍", metrics.Text{Bytes: 8, Runes: 2, Words: 1, Lines: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			testboil.FailTestIfDiff(t, metrics.Measure(tc.in), tc.want)
		})
	}
}
