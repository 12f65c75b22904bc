package conversation

import (
	"errors"
	"fmt"
	"time"
)

// Role tags who produced a Turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

var (
	ErrInvalidTurn      = errors.New("invalid turn")
	ErrOrphanToolResult = errors.New("tool result does not answer the preceding request")
)

// ToolRequest is the instruction an assistant Turn carries when it wants a tool run.
type ToolRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Argument string `json:"argument"`
}

// Turn is one conversation entry. The zero Request means "no tool request".
type Turn struct {
	Role      Role        `json:"role"`
	Content   string      `json:"content,omitempty"`
	Request   ToolRequest `json:"request,omitzero"`
	ResultFor string      `json:"result_for,omitempty"`
	IsError   bool        `json:"is_error,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// RequestsTool reports whether t asks for a tool invocation.
func (t Turn) RequestsTool() bool { return t.Request.Name != "" }

// UserTurn builds a user Turn stamped with the current time.
func UserTurn(text string) Turn {
	return Turn{Role: RoleUser, Content: text, CreatedAt: time.Now().UTC()}
}

// AssistantTurn builds a terminal assistant Turn.
func AssistantTurn(text string) Turn {
	return Turn{Role: RoleAssistant, Content: text, CreatedAt: time.Now().UTC()}
}

// RequestTurn builds an assistant Turn asking for a tool.
func RequestTurn(text string, req ToolRequest) Turn {
	return Turn{Role: RoleAssistant, Content: text, Request: req, CreatedAt: time.Now().UTC()}
}

// ResultTurn builds the tool Turn answering req.
func ResultTurn(req ToolRequest, content string, isError bool) Turn {
	return Turn{Role: RoleTool, Content: content, ResultFor: req.ID, IsError: isError, CreatedAt: time.Now().UTC()}
}

// validate checks t in isolation; ordering is checked by the Log.
func (t Turn) validate() error {
	switch t.Role {
	case RoleUser:
		if t.RequestsTool() || t.ResultFor != "" || t.IsError {
			return fmt.Errorf("%w: user turn carries tool fields", ErrInvalidTurn)
		}
	case RoleAssistant:
		if t.ResultFor != "" || t.IsError {
			return fmt.Errorf("%w: assistant turn carries result fields", ErrInvalidTurn)
		}
		if t.Request != (ToolRequest{}) && (t.Request.Name == "" || t.Request.ID == "") {
			return fmt.Errorf("%w: tool request needs both id and name", ErrInvalidTurn)
		}
	case RoleTool:
		if t.RequestsTool() {
			return fmt.Errorf("%w: tool turn carries a request", ErrInvalidTurn)
		}
		if t.ResultFor == "" {
			return fmt.Errorf("%w: tool turn without result_for", ErrOrphanToolResult)
		}
	default:
		return fmt.Errorf("%w: unknown role %q", ErrInvalidTurn, t.Role)
	}
	return nil
}
