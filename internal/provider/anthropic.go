// Package provider adapts the Anthropic Messages API to the dispatch loop's
// Model contract.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/petasbytes/searchchat/conversation"
	"github.com/petasbytes/searchchat/internal/telemetry"
	"github.com/petasbytes/searchchat/internal/windowing"
	"github.com/petasbytes/searchchat/tools"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	DefaultModel     = anthropic.ModelClaude3_7SonnetLatest
	APIVersion       = "2023-06-01"
	DefaultMaxTokens = 1024
)

// ErrOverBudget means the current question and its tool results alone exceed the token budget.
var ErrOverBudget = errors.New("current question exceeds token budget")

// NewAnthropicClient returns a client using the API key from the env.
func NewAnthropicClient(opts ...option.RequestOption) *anthropic.Client {
	c := anthropic.NewClient(opts...)
	return &c
}

// Anthropic implements runner.Model over the Messages API.
type Anthropic struct {
	Client    *anthropic.Client
	Model     anthropic.Model
	MaxTokens int64
	System    string

	// TokenBudget bounds the estimated input size; <= 0 sends the whole log.
	TokenBudget int
	Counter     windowing.TokenCounter

	// OnDelta, when set, switches to streaming and receives text as it arrives.
	OnDelta func(text string)

	Telemetry *telemetry.Emitter
}

func NewAnthropic(client *anthropic.Client, model anthropic.Model) *Anthropic {
	if model == "" {
		model = DefaultModel
	}
	return &Anthropic{Client: client, Model: model, MaxTokens: DefaultMaxTokens, Counter: windowing.HeuristicCounter{}}
}

// Next sends the windowed conversation and converts the reply into one Turn.
func (a *Anthropic) Next(ctx context.Context, turns []conversation.Turn, defs []tools.ToolDefinition) (conversation.Turn, error) {
	window, err := a.window(ctx, turns)
	if err != nil {
		return conversation.Turn{}, err
	}
	msgs := ToMessages(window)
	if len(msgs) == 0 {
		return conversation.Turn{}, errors.New("no user turn to send")
	}

	params := anthropic.MessageNewParams{
		Model:     a.Model,
		MaxTokens: a.maxTokens(),
		Messages:  msgs,
	}
	if a.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: a.System}}
	}
	if len(defs) > 0 {
		params.Tools = toolParams(defs)
		// One request per Turn keeps the request/result pairing one-to-one.
		params.ToolChoice = anthropic.ToolChoiceUnionParam{
			OfAuto: &anthropic.ToolChoiceAutoParam{DisableParallelToolUse: anthropic.Bool(true)},
		}
	}

	var msg *anthropic.Message
	if a.OnDelta != nil {
		msg, err = a.stream(ctx, params)
	} else {
		msg, err = a.Client.Messages.New(ctx, params)
	}
	if err != nil {
		return conversation.Turn{}, err
	}
	return FromMessage(msg), nil
}

func (a *Anthropic) stream(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	stream := a.Client.Messages.NewStreaming(ctx, params)
	defer stream.Close()

	msg := anthropic.Message{}
	for stream.Next() {
		event := stream.Current()
		if err := msg.Accumulate(event); err != nil {
			return nil, fmt.Errorf("accumulate stream: %w", err)
		}
		if ev, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent); ok {
			if d, ok := ev.Delta.AsAny().(anthropic.TextDelta); ok && d.Text != "" {
				a.OnDelta(d.Text)
			}
		}
	}
	if err := stream.Err(); err != nil {
		return nil, err
	}
	return &msg, nil
}

// window trims turns to the token budget, never splitting a request from its result.
func (a *Anthropic) window(ctx context.Context, turns []conversation.Turn) ([]conversation.Turn, error) {
	if a.TokenBudget <= 0 {
		return turns, nil
	}
	counter := a.Counter
	if counter == nil {
		counter = windowing.HeuristicCounter{}
	}
	window, stats := windowing.PrepareSendWindow(turns, a.TokenBudget, counter)

	a.Telemetry.EmitContext(ctx, "window_prepared", map[string]any{
		"model":              string(a.Model),
		"budget":             stats.Budget,
		"total_estimated":    stats.Total,
		"included_groups":    stats.IncludedGroups,
		"skipped_groups":     stats.SkippedGroups,
		"over_budget_newest": stats.OverBudgetNewest,
	})
	if windowing.Verbose() {
		ancli.Noticef("window: model=%s budget=%d est_total=%d groups_in=%d groups_skip=%d newest_over=%t\n",
			string(a.Model), stats.Budget, stats.Total, stats.IncludedGroups, stats.SkippedGroups, stats.OverBudgetNewest)
	}

	// The current question and its tool results alone exceed the budget.
	if stats.OverBudgetNewest {
		return nil, fmt.Errorf("%w (budget %d); raise AGT_TOKEN_BUDGET", ErrOverBudget, a.TokenBudget)
	}
	return window, nil
}

func (a *Anthropic) maxTokens() int64 {
	if a.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return a.MaxTokens
}

func toolParams(defs []tools.ToolDefinition) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(defs))
	for _, d := range defs {
		out = append(out, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        d.Name,
			Description: anthropic.String(d.Description),
			InputSchema: d.InputSchema,
		}})
	}
	return out
}

// ToMessages maps Turns onto Messages API params.
//
// Rules:
// - Turns before the first user Turn (the greeting) are dropped; the API
//   requires a user message first.
// - An assistant request becomes a tool_use block only when the next Turn
//   answers it; a dangling request (aborted cycle) is sent as text.
// - Tool Turns become user tool_result blocks.
// - Consecutive Turns mapping to the same role are merged into one message.
func ToMessages(turns []conversation.Turn) []anthropic.MessageParam {
	start := len(turns)
	for i, t := range turns {
		if t.Role == conversation.RoleUser {
			start = i
			break
		}
	}
	turns = turns[start:]

	out := make([]anthropic.MessageParam, 0, len(turns))
	push := func(role anthropic.MessageParamRole, blocks ...anthropic.ContentBlockParamUnion) {
		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Content = append(out[n-1].Content, blocks...)
			return
		}
		out = append(out, anthropic.MessageParam{Role: role, Content: blocks})
	}

	for i, t := range turns {
		switch t.Role {
		case conversation.RoleUser:
			push(anthropic.MessageParamRoleUser, anthropic.NewTextBlock(nonEmpty(t.Content)))
		case conversation.RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if t.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(t.Content))
			}
			if t.RequestsTool() {
				if i+1 < len(turns) && turns[i+1].Role == conversation.RoleTool && turns[i+1].ResultFor == t.Request.ID {
					blocks = append(blocks, anthropic.NewToolUseBlock(t.Request.ID, toolInput(t.Request.Argument), t.Request.Name))
				} else if t.Content == "" {
					blocks = append(blocks, anthropic.NewTextBlock(fmt.Sprintf("(requested %s(%q) but got no result)", t.Request.Name, t.Request.Argument)))
				}
			}
			if len(blocks) == 0 {
				blocks = append(blocks, anthropic.NewTextBlock(nonEmpty("")))
			}
			push(anthropic.MessageParamRoleAssistant, blocks...)
		case conversation.RoleTool:
			push(anthropic.MessageParamRoleUser, anthropic.NewToolResultBlock(t.ResultFor, t.Content, t.IsError))
		}
	}
	return out
}

// FromMessage converts a reply into an assistant Turn. Text blocks are joined;
// only the first tool_use becomes the Turn's request. The union fields are
// read directly so accumulated stream input is seen too.
func FromMessage(msg *anthropic.Message) conversation.Turn {
	var text []string
	var req conversation.ToolRequest
	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			if s := strings.TrimSpace(block.Text); s != "" {
				text = append(text, s)
			}
		case "tool_use":
			if req.Name != "" {
				continue
			}
			req = conversation.ToolRequest{
				ID:       block.ID,
				Name:     block.Name,
				Argument: gjson.GetBytes(block.Input, "query").String(),
			}
		}
	}
	content := strings.Join(text, "\n")
	if req.Name != "" {
		return conversation.RequestTurn(content, req)
	}
	return conversation.AssistantTurn(content)
}

// toolInput builds the {"query": arg} object every tool schema declares.
func toolInput(arg string) json.RawMessage {
	b, err := sjson.SetBytes([]byte(`{}`), "query", arg)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return json.RawMessage(b)
}

// nonEmpty substitutes a placeholder because the API rejects empty text blocks.
func nonEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(empty)"
	}
	return s
}
