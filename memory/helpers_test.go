package memory_test

import (
	"testing"
	"time"

	"github.com/petasbytes/searchchat/conversation"
	"github.com/petasbytes/searchchat/memory"
)

func sampleTranscript(id string) memory.Transcript {
	req := conversation.ToolRequest{ID: "t1", Name: "wikipedia", Argument: "Go"}
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	turns := []conversation.Turn{
		conversation.AssistantTurn("hi"),
		conversation.UserTurn("What is Go?"),
		conversation.RequestTurn("", req),
		conversation.ResultTurn(req, "Page: Go\nSummary: a language", false),
		conversation.AssistantTurn("Go is a language."),
	}
	for i := range turns {
		turns[i].CreatedAt = at.Add(time.Duration(i) * time.Second)
	}
	return memory.Transcript{SessionID: id, CreatedAt: at, UpdatedAt: at.Add(time.Minute), Turns: turns}
}

func assertTurns(t *testing.T, got, want []conversation.Turn) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("turn count: got %d want %d", len(got), len(want))
	}
	for i := range want {
		g, w := got[i], want[i]
		if g.Role != w.Role || g.Content != w.Content || g.Request != w.Request ||
			g.ResultFor != w.ResultFor || g.IsError != w.IsError || !g.CreatedAt.Equal(w.CreatedAt) {
			t.Fatalf("turn %d: got %+v want %+v", i, g, w)
		}
	}
}
