package windowing

import (
	"unicode/utf8"

	"github.com/petasbytes/searchchat/conversation"
)

// TokenCounter estimates input-token cost for turns or groups.
type TokenCounter interface {
	CountTurn(t conversation.Turn) int
	CountGroup(g Group, all []conversation.Turn) int
}

// HeuristicCounter is the default deterministic estimator: one token per rune
// of text plus a fixed overhead per content block. An assistant Turn with a
// request has two blocks (text and tool_use); the request's name and argument
// are counted as runes too.
type HeuristicCounter struct{}

// Fixed per-block overhead; changing this requires updating the guard test.
const blockOverhead = 4

func (HeuristicCounter) CountTurn(t conversation.Turn) int {
	total := utf8.RuneCountInString(t.Content) + blockOverhead
	if t.RequestsTool() {
		total += utf8.RuneCountInString(t.Request.Name) + utf8.RuneCountInString(t.Request.Argument) + blockOverhead
	}
	return total
}

func (h HeuristicCounter) CountGroup(g Group, all []conversation.Turn) int {
	total := 0
	for i := g.Start; i < g.End && i < len(all); i++ {
		total += h.CountTurn(all[i])
	}
	return total
}
