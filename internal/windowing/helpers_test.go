package windowing_test

import (
	"github.com/petasbytes/searchchat/conversation"
	"github.com/petasbytes/searchchat/internal/windowing"
)

func U(text string) conversation.Turn { return conversation.Turn{Role: conversation.RoleUser, Content: text} }

func A(text string) conversation.Turn {
	return conversation.Turn{Role: conversation.RoleAssistant, Content: text}
}

// Req is an assistant Turn requesting tool name with arg under id.
func Req(id, name, arg string) conversation.Turn {
	return conversation.Turn{Role: conversation.RoleAssistant, Request: conversation.ToolRequest{ID: id, Name: name, Argument: arg}}
}

// Res is the tool Turn answering id.
func Res(id, content string) conversation.Turn {
	return conversation.Turn{Role: conversation.RoleTool, Content: content, ResultFor: id}
}

func groupsEqual(got, want []windowing.Group) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
