package conversation_test

import (
	"testing"

	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
	"github.com/petasbytes/searchchat/conversation"
)

func TestNewSession_SeedsGreeting(t *testing.T) {
	s := conversation.NewSession(conversation.DefaultGreeting)
	if s.ID == "" {
		t.Fatal("expected session id")
	}
	turns := s.Log.Turns()
	testboil.FailTestIfDiff(t, len(turns), 1)
	testboil.FailTestIfDiff(t, turns[0].Role, conversation.RoleAssistant)
	testboil.FailTestIfDiff(t, turns[0].Content, conversation.DefaultGreeting)
}

func TestNewSession_NoGreeting(t *testing.T) {
	s := conversation.NewSession("")
	testboil.FailTestIfDiff(t, s.Log.Len(), 0)
}

func TestSession_ResetStartsOver(t *testing.T) {
	s := conversation.NewSession("hi")
	id := s.ID
	_ = s.Log.Append(conversation.UserTurn("question"))

	s.Reset()
	testboil.FailTestIfDiff(t, s.ID, id)
	testboil.FailTestIfDiff(t, s.Log.Len(), 1)
	testboil.FailTestIfDiff(t, s.Log.Turns()[0].Content, "hi")
}

func TestResumeSession_EmptySeedsGreeting(t *testing.T) {
	s, err := conversation.ResumeSession("default", "hello", nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	testboil.FailTestIfDiff(t, s.ID, "default")
	testboil.FailTestIfDiff(t, s.Log.Len(), 1)

	anon, _ := conversation.ResumeSession("", "", nil)
	if anon.ID == "" {
		t.Fatal("expected generated id")
	}
}

func TestResumeSession_ValidatesTurns(t *testing.T) {
	bad := []conversation.Turn{
		conversation.UserTurn("q"),
		conversation.ResultTurn(conversation.ToolRequest{ID: "x", Name: "arxiv"}, "r", false),
	}
	if _, err := conversation.ResumeSession("id", "", bad); err == nil {
		t.Fatal("expected error for orphan tool result")
	}

	good := []conversation.Turn{conversation.UserTurn("q"), conversation.AssistantTurn("a")}
	s, err := conversation.ResumeSession("id-1", "hello", good)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	testboil.FailTestIfDiff(t, s.ID, "id-1")
	testboil.FailTestIfDiff(t, s.Log.Len(), 2)

	s.Reset()
	testboil.FailTestIfDiff(t, s.Log.Turns()[0].Content, "hello")
}
