package metrics

import (
	"fmt"
	"sync"
	"time"
)

// Cycle is what one dispatch cycle contributed.
type Cycle struct {
	ModelCalls   int
	ToolCalls    int
	ToolFailures int
	// Failed marks a cycle that ended on a hard error.
	Failed   bool
	Duration time.Duration
}

// Counters accumulates Cycle figures over a session. The zero value is ready to use.
type Counters struct {
	mu           sync.Mutex
	cycles       int
	failed       int
	modelCalls   int
	toolCalls    int
	toolFailures int
	busy         time.Duration
}

// Snapshot is a point-in-time copy of Counters.
type Snapshot struct {
	Cycles       int
	FailedCycles int
	ModelCalls   int
	ToolCalls    int
	ToolFailures int
	Busy         time.Duration
}

func (c *Counters) Record(cy Cycle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cycles++
	if cy.Failed {
		c.failed++
	}
	c.modelCalls += cy.ModelCalls
	c.toolCalls += cy.ToolCalls
	c.toolFailures += cy.ToolFailures
	c.busy += cy.Duration
}

func (c *Counters) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Cycles:       c.cycles,
		FailedCycles: c.failed,
		ModelCalls:   c.modelCalls,
		ToolCalls:    c.toolCalls,
		ToolFailures: c.toolFailures,
		Busy:         c.busy,
	}
}

// Reset zeroes every counter.
func (c *Counters) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cycles, c.failed, c.modelCalls, c.toolCalls, c.toolFailures = 0, 0, 0, 0, 0
	c.busy = 0
}

func (s Snapshot) String() string {
	return fmt.Sprintf("cycles=%d failed=%d model_calls=%d tool_calls=%d tool_failures=%d busy=%s",
		s.Cycles, s.FailedCycles, s.ModelCalls, s.ToolCalls, s.ToolFailures, s.Busy.Round(time.Millisecond))
}
