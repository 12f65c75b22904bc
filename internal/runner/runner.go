package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/petasbytes/searchchat/conversation"
	"github.com/petasbytes/searchchat/internal/telemetry"
	"github.com/petasbytes/searchchat/tools"
)

var (
	ErrModelUnavailable  = errors.New("model unavailable")
	ErrLoopLimitExceeded = errors.New("loop limit exceeded")
	ErrCycleCanceled     = errors.New("cycle canceled")
	ErrInvalidLog        = errors.New("log cannot start a cycle")
)

// DefaultMaxIterations bounds model calls per cycle when Runner.MaxIterations is unset.
const DefaultMaxIterations = 10

// Model produces the next Turn given the conversation so far and the tools
// it may request.
type Model interface {
	Next(ctx context.Context, turns []conversation.Turn, defs []tools.ToolDefinition) (conversation.Turn, error)
}

// ModelFunc adapts a function to the Model interface.
type ModelFunc func(ctx context.Context, turns []conversation.Turn, defs []tools.ToolDefinition) (conversation.Turn, error)

func (f ModelFunc) Next(ctx context.Context, turns []conversation.Turn, defs []tools.ToolDefinition) (conversation.Turn, error) {
	return f(ctx, turns, defs)
}

type Runner struct {
	Model Model
	Tools *tools.Registry

	// MaxIterations caps model calls per cycle; <= 0 means DefaultMaxIterations.
	MaxIterations int
	// Per-call timeouts; zero disables.
	ModelTimeout time.Duration
	ToolTimeout  time.Duration

	Telemetry *telemetry.Emitter
	// OnTurn, when set, sees every Turn as soon as it is staged.
	OnTurn func(conversation.Turn)
}

func New(model Model, reg *tools.Registry) *Runner {
	return &Runner{Model: model, Tools: reg}
}

// Result describes one cycle. It is populated on failure too.
type Result struct {
	// Appended holds the Turns this cycle added to the Log.
	Appended     []conversation.Turn
	ModelCalls   int
	ToolCalls    int
	ToolFailures int
	// Final is the last Turn the model produced.
	Final conversation.Turn
	// State is where the loop stopped.
	State State
}

// Run executes one dispatch cycle over log, whose newest Turn must be a user
// or tool Turn. The Log is owned by the cycle until Run returns.
func (r *Runner) Run(ctx context.Context, log *conversation.Log) (Result, error) {
	last, ok := log.Last()
	if !ok {
		return Result{}, fmt.Errorf("%w: log is empty", ErrInvalidLog)
	}
	if last.Role == conversation.RoleAssistant {
		return Result{}, fmt.Errorf("%w: log ends with an assistant turn", ErrInvalidLog)
	}
	if r.Model == nil {
		return Result{}, fmt.Errorf("%w: no model configured", ErrModelUnavailable)
	}
	cycle, err := log.Begin()
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidLog, err)
	}

	ctx = telemetry.WithCycleID(ctx, uuid.NewString())
	start := time.Now()
	r.Telemetry.EmitContext(ctx, "cycle_start", map[string]any{
		"log_turns":  log.Len(),
		"max_rounds": r.maxIterations(),
	})
	if last.Role == conversation.RoleUser {
		r.Telemetry.EmitTextFeatures(ctx, string(last.Role), last.Content)
	}

	res, err := r.loop(ctx, cycle)
	if errors.Is(err, ErrCycleCanceled) {
		cycle.Discard()
	} else {
		res.Appended = cycle.Pending()
		cycle.Commit()
	}

	fields := map[string]any{
		"duration_ms":   time.Since(start).Milliseconds(),
		"model_calls":   res.ModelCalls,
		"tool_calls":    res.ToolCalls,
		"tool_failures": res.ToolFailures,
		"appended":      len(res.Appended),
		"state":         res.State.String(),
		"error":         nil,
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	r.Telemetry.EmitContext(ctx, "cycle_end", fields)
	return res, err
}

func (r *Runner) loop(ctx context.Context, cycle *conversation.Cycle) (Result, error) {
	res := Result{State: AwaitingModel}
	defs := r.Tools.Definitions()

	for {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("%w: %w", ErrCycleCanceled, err)
		}

		switch res.State {
		case AwaitingModel:
			if res.ModelCalls >= r.maxIterations() {
				return res, fmt.Errorf("%w: no final answer after %d model calls", ErrLoopLimitExceeded, res.ModelCalls)
			}
			turn, err := r.callModel(ctx, cycle.Turns(), defs)
			res.ModelCalls++
			if err != nil {
				if ctx.Err() != nil {
					return res, fmt.Errorf("%w: %w", ErrCycleCanceled, ctx.Err())
				}
				return res, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
			}
			if err := r.stage(cycle, turn); err != nil {
				return res, fmt.Errorf("%w: malformed turn: %w", ErrModelUnavailable, err)
			}
			res.Final = turn
			if turn.RequestsTool() {
				res.State = AwaitingTool
			} else {
				res.State = Terminal
			}

		case AwaitingTool:
			req := res.Final.Request
			def, err := r.Tools.Lookup(req.Name)
			if err != nil {
				r.emitToolExec(ctx, req, 0, 0, "unknown tool")
				return res, err
			}
			content, failed := r.invoke(ctx, def, req)
			res.ToolCalls++
			if err := ctx.Err(); err != nil {
				return res, fmt.Errorf("%w: %w", ErrCycleCanceled, err)
			}
			if failed {
				res.ToolFailures++
			}
			if err := r.stage(cycle, conversation.ResultTurn(req, content, failed)); err != nil {
				// Only reachable if the request Turn was not staged last.
				return res, err
			}
			res.State = AwaitingModel

		case Terminal:
			return res, nil
		}
	}
}

// callModel asks the model for one Turn under ModelTimeout and normalises it.
func (r *Runner) callModel(ctx context.Context, turns []conversation.Turn, defs []tools.ToolDefinition) (conversation.Turn, error) {
	mctx, cancel := withTimeout(ctx, r.ModelTimeout)
	defer cancel()

	start := time.Now()
	turn, err := r.Model.Next(mctx, turns, defs)

	fields := map[string]any{
		"duration_ms":   time.Since(start).Milliseconds(),
		"input_turns":   len(turns),
		"requests_tool": err == nil && turn.RequestsTool(),
		"error":         nil,
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	r.Telemetry.EmitContext(ctx, "model_call", fields)
	if err != nil {
		return conversation.Turn{}, err
	}

	if turn.Role == "" {
		turn.Role = conversation.RoleAssistant
	}
	if turn.Role != conversation.RoleAssistant {
		return conversation.Turn{}, fmt.Errorf("model produced a %q turn", turn.Role)
	}
	if turn.RequestsTool() && turn.Request.ID == "" {
		turn.Request.ID = "req_" + uuid.NewString()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}
	return turn, nil
}

// invoke runs def under ToolTimeout. Any failure is folded into the returned
// content as a ToolError body, with failed set.
func (r *Runner) invoke(ctx context.Context, def tools.ToolDefinition, req conversation.ToolRequest) (content string, failed bool) {
	tctx, cancel := withTimeout(ctx, r.ToolTimeout)
	defer cancel()

	start := time.Now()
	out, err := safeCall(tctx, def.Function, req.Argument)
	ms := time.Since(start).Milliseconds()
	if err != nil {
		// Generic label in telemetry; the detailed message goes to the model.
		r.emitToolExec(ctx, req, ms, 0, "tool error")
		return classify(tctx, err).Error(), true
	}
	r.emitToolExec(ctx, req, ms, len(out), "")
	return out, false
}

func safeCall(ctx context.Context, fn tools.Func, arg string) (out string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = tools.ToolError{Code: tools.CodeFailed, Message: fmt.Sprintf("tool panicked: %v", p)}
		}
	}()
	return fn(ctx, arg)
}

func classify(ctx context.Context, err error) tools.ToolError {
	var te tools.ToolError
	switch {
	case errors.As(err, &te):
		return te
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return tools.ToolError{Code: tools.CodeTimeout, Message: "tool call timed out"}
	default:
		return tools.ToolError{Code: tools.CodeFailed, Message: err.Error()}
	}
}

func (r *Runner) stage(cycle *conversation.Cycle, t conversation.Turn) error {
	if err := cycle.Append(t); err != nil {
		return err
	}
	if r.OnTurn != nil {
		r.OnTurn(t)
	}
	return nil
}

func (r *Runner) emitToolExec(ctx context.Context, req conversation.ToolRequest, durationMs int64, outSize int, errStr string) {
	fields := map[string]any{
		"tool_name":   req.Name,
		"request_id":  req.ID,
		"duration_ms": durationMs,
		"input_size":  len(req.Argument),
		"output_size": outSize,
		"error":       nil,
	}
	if errStr != "" {
		fields["error"] = errStr
	}
	r.Telemetry.EmitContext(ctx, "tool_exec", fields)
}

func (r *Runner) maxIterations() int {
	if r.MaxIterations <= 0 {
		return DefaultMaxIterations
	}
	return r.MaxIterations
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
