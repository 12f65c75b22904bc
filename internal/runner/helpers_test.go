package runner_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/petasbytes/searchchat/conversation"
	"github.com/petasbytes/searchchat/tools"
)

// script is a Model that replays fixed replies and records what it saw.
type script struct {
	replies []reply
	seen    [][]conversation.Turn
}

type reply struct {
	turn conversation.Turn
	err  error
}

func (s *script) Next(_ context.Context, turns []conversation.Turn, _ []tools.ToolDefinition) (conversation.Turn, error) {
	s.seen = append(s.seen, turns)
	i := len(s.seen) - 1
	if i >= len(s.replies) {
		return conversation.Turn{}, fmt.Errorf("script exhausted after %d replies", len(s.replies))
	}
	return s.replies[i].turn, s.replies[i].err
}

func answer(text string) reply { return reply{turn: conversation.AssistantTurn(text)} }

func request(id, name, arg string) reply {
	return reply{turn: conversation.RequestTurn("", conversation.ToolRequest{ID: id, Name: name, Argument: arg})}
}

// registry builds a Registry of fake tools keyed by name.
func registry(t *testing.T, fns map[string]tools.Func) *tools.Registry {
	t.Helper()
	defs := make([]tools.ToolDefinition, 0, len(fns))
	for _, name := range []string{"arxiv", "wikipedia", "search"} {
		if fn, ok := fns[name]; ok {
			defs = append(defs, tools.ToolDefinition{Name: name, Description: name, InputSchema: tools.QueryInputSchema, Function: fn})
		}
	}
	r, err := tools.NewRegistry(defs...)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return r
}

func static(out string) tools.Func {
	return func(context.Context, string) (string, error) { return out, nil }
}

func newLog(t *testing.T, turns ...conversation.Turn) *conversation.Log {
	t.Helper()
	l, err := conversation.NewLog(turns...)
	if err != nil {
		t.Fatalf("new log: %v", err)
	}
	return l
}

// assertPaired checks that every tool Turn answers the assistant Turn right before it.
func assertPaired(t *testing.T, turns []conversation.Turn) {
	t.Helper()
	for i, turn := range turns {
		if turn.Role != conversation.RoleTool {
			continue
		}
		if i == 0 || turns[i-1].Request.ID != turn.ResultFor {
			t.Fatalf("tool turn %d does not answer the preceding request", i)
		}
	}
}
