// Package console is the terminal front end: it reads user lines, runs one
// dispatch cycle per line and renders every Turn with a role-specific label.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/petasbytes/searchchat/conversation"
	"github.com/petasbytes/searchchat/internal/metrics"
	"github.com/petasbytes/searchchat/internal/runner"
	"github.com/petasbytes/searchchat/internal/telemetry"
	"github.com/petasbytes/searchchat/memory"
	"github.com/petasbytes/searchchat/tools"
)

// resultPreview bounds how much of a tool result is echoed to the terminal.
const resultPreview = 160

var errExit = errors.New("exit requested")

type Console struct {
	Runner   *runner.Runner
	Session  *conversation.Session
	Store    memory.Store
	Counters *metrics.Counters

	In  io.Reader
	Out io.Writer
	// Plain disables ANSI colors.
	Plain bool

	// streaming is set while assistant text is being printed by Delta.
	streaming bool
}

// New wires a Console to r so staged Turns are rendered as they happen.
// Store may be nil, in which case nothing is persisted.
func New(r *runner.Runner, s *conversation.Session, store memory.Store) *Console {
	if store == nil {
		store = memory.Nop{}
	}
	c := &Console{
		Runner:   r,
		Session:  s,
		Store:    store,
		Counters: &metrics.Counters{},
		In:       os.Stdin,
		Out:      os.Stdout,
	}
	r.OnTurn = c.render
	return c
}

// Loop reads lines until EOF, /exit or ctx is done.
func (c *Console) Loop(ctx context.Context) error {
	c.printf("Chat with Claude (/help for commands, Ctrl-C to quit)\n")
	c.history()

	// stdin is read on its own goroutine so a blocked read never holds up
	// cancellation
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in())
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		c.printf("%s: ", c.label("You"))
		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			c.printf("\n")
			return nil
		case line, ok = <-lines:
			if !ok {
				c.printf("\n")
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("read input: %w", err)
					}
				default:
				}
				return nil
			}
		}
		if err := c.Submit(ctx, line); errors.Is(err, errExit) {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// Submit handles one line of input: a slash command or a user message that
// starts a dispatch cycle. The cycle's error is rendered and returned.
func (c *Console) Submit(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if strings.HasPrefix(text, "/") {
		return c.command(ctx, text)
	}

	if err := c.Session.Log.Append(conversation.UserTurn(text)); err != nil {
		c.failure(err)
		return err
	}
	start := time.Now()
	res, err := c.Runner.Run(telemetry.WithSessionID(ctx, c.Session.ID), c.Session.Log)
	c.endStream()

	canceled := errors.Is(err, runner.ErrCycleCanceled)
	c.Counters.Record(metrics.Cycle{
		ModelCalls:   res.ModelCalls,
		ToolCalls:    res.ToolCalls,
		ToolFailures: res.ToolFailures,
		Failed:       err != nil && !canceled,
		Duration:     time.Since(start),
	})
	if err != nil {
		c.failure(err)
	}
	c.save(ctx)
	return err
}

// Delta prints streamed assistant text. It is meant to be the provider's
// OnDelta sink.
func (c *Console) Delta(text string) {
	if !c.streaming {
		c.printf("%s: ", c.label("Claude"))
		c.streaming = true
	}
	c.printf("%s", text)
}

func (c *Console) endStream() {
	if c.streaming {
		c.printf("\n")
		c.streaming = false
	}
}

// render prints t. Assistant text already shown by Delta is not repeated.
func (c *Console) render(t conversation.Turn) {
	switch t.Role {
	case conversation.RoleUser:
		c.printf("%s: %s\n", c.label("You"), t.Content)
	case conversation.RoleAssistant:
		if c.streaming {
			c.endStream()
		} else if t.Content != "" {
			c.printf("%s: %s\n", c.label("Claude"), t.Content)
		}
		if t.RequestsTool() {
			c.printf("%s %s(%q)\n", c.label("→ tool"), t.Request.Name, t.Request.Argument)
		}
	case conversation.RoleTool:
		tag := "← result"
		if t.IsError {
			tag = "← error"
		}
		c.printf("%s: %s\n", c.label(tag), preview(t.Content))
	}
}

func (c *Console) history() {
	for _, t := range c.Session.Log.Turns() {
		c.render(t)
	}
}

func (c *Console) failure(err error) {
	var msg string
	switch {
	case errors.Is(err, runner.ErrCycleCanceled):
		msg = "Cancelled."
	case errors.Is(err, runner.ErrLoopLimitExceeded):
		limit := c.Runner.MaxIterations
		if limit <= 0 {
			limit = runner.DefaultMaxIterations
		}
		msg = fmt.Sprintf("Stopped after %d model calls without a final answer. Try rephrasing the question.", limit)
	case errors.Is(err, tools.ErrUnknownTool):
		msg = fmt.Sprintf("The model asked for a tool that does not exist: %v", err)
	case errors.Is(err, runner.ErrModelUnavailable):
		msg = fmt.Sprintf("The model could not be reached: %v", err)
	case errors.Is(err, runner.ErrInvalidLog), errors.Is(err, conversation.ErrOrphanToolResult),
		errors.Is(err, conversation.ErrInvalidTurn), errors.Is(err, conversation.ErrCycleOpen):
		msg = fmt.Sprintf("The conversation is in an unexpected state (%v). Use /clear to start over.", err)
	default:
		msg = fmt.Sprintf("error: %v", err)
	}
	c.printf("%s\n", msg)
}

// save persists the Session even when ctx has been cancelled.
func (c *Console) save(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	if err := c.Store.Save(ctx, memory.FromSession(c.Session)); err != nil {
		ancli.PrintWarn(fmt.Sprintf("failed to save conversation: %v\n", err))
	}
}

func (c *Console) label(s string) string {
	if c.Plain {
		return s
	}
	switch s {
	case "You":
		return ancli.ColoredMessage(ancli.CYAN, s)
	case "Claude":
		return ancli.ColoredMessage(ancli.BLUE, s)
	}
	return ancli.ColoredMessage(ancli.MAGENTA, s)
}

func (c *Console) printf(format string, a ...any) {
	fmt.Fprintf(c.out(), format, a...)
}

func (c *Console) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Console) in() io.Reader {
	if c.In == nil {
		return os.Stdin
	}
	return c.In
}

// preview flattens s onto one line and clips it for display.
func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= resultPreview {
		return s
	}
	return string(r[:resultPreview]) + "…"
}
