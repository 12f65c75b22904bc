package conversation

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrCycleOpen is returned when the Log is touched while a Cycle owns it.
var ErrCycleOpen = errors.New("a dispatch cycle already owns the log")

// Log is the ordered, append-only sequence of Turns for one Session.
type Log struct {
	mu    sync.Mutex
	turns []Turn
	open  bool
}

// NewLog returns a Log seeded with turns, validating each in order.
func NewLog(turns ...Turn) (*Log, error) {
	l := &Log{}
	for i, t := range turns {
		if err := l.Append(t); err != nil {
			return nil, fmt.Errorf("turn %d: %w", i, err)
		}
	}
	return l, nil
}

// Append validates t against the current tail and appends it.
func (l *Log) Append(t Turn) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.open {
		return ErrCycleOpen
	}
	if err := checkNext(l.turns, t); err != nil {
		return err
	}
	l.turns = append(l.turns, t)
	return nil
}

// Turns returns a copy of the Log contents, oldest first.
func (l *Log) Turns() []Turn {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.turns)
}

func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.turns)
}

// Last returns the newest Turn, or false for an empty Log.
func (l *Log) Last() (Turn, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.turns) == 0 {
		return Turn{}, false
	}
	return l.turns[len(l.turns)-1], true
}

// Begin hands the Log to a dispatch cycle. Until the Cycle is committed or
// discarded, direct Appends and further Begins fail with ErrCycleOpen.
func (l *Log) Begin() (*Cycle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.open {
		return nil, ErrCycleOpen
	}
	l.open = true
	return &Cycle{log: l, base: len(l.turns)}, nil
}

// checkNext enforces the ordering invariant for appending next after turns.
func checkNext(turns []Turn, next Turn) error {
	if err := next.validate(); err != nil {
		return err
	}
	if next.Role != RoleTool {
		return nil
	}
	if len(turns) == 0 {
		return fmt.Errorf("%w: log is empty", ErrOrphanToolResult)
	}
	prev := turns[len(turns)-1]
	if prev.Role != RoleAssistant || !prev.RequestsTool() || prev.Request.ID != next.ResultFor {
		return fmt.Errorf("%w: result_for=%q", ErrOrphanToolResult, next.ResultFor)
	}
	return nil
}

// Cycle stages the Turns of one dispatch cycle on top of a Log.
type Cycle struct {
	log     *Log
	base    int
	pending []Turn
	done    bool
}

// Append validates t against base+pending and stages it.
func (c *Cycle) Append(t Turn) error {
	if c.done {
		return errors.New("cycle already closed")
	}
	if err := checkNext(c.Turns(), t); err != nil {
		return err
	}
	c.pending = append(c.pending, t)
	return nil
}

// Turns returns the committed Turns followed by the staged ones.
func (c *Cycle) Turns() []Turn {
	c.log.mu.Lock()
	defer c.log.mu.Unlock()
	out := make([]Turn, 0, len(c.log.turns)+len(c.pending))
	out = append(out, c.log.turns...)
	return append(out, c.pending...)
}

// Pending returns a copy of the Turns staged so far.
func (c *Cycle) Pending() []Turn { return slices.Clone(c.pending) }

// Commit appends the staged Turns to the Log and releases it.
func (c *Cycle) Commit() {
	if c.done {
		return
	}
	c.log.mu.Lock()
	defer c.log.mu.Unlock()
	c.log.turns = append(c.log.turns, c.pending...)
	c.log.open = false
	c.done = true
}

// Discard drops the staged Turns and releases the Log untouched.
func (c *Cycle) Discard() {
	if c.done {
		return
	}
	c.log.mu.Lock()
	defer c.log.mu.Unlock()
	c.pending = nil
	c.log.open = false
	c.done = true
}
