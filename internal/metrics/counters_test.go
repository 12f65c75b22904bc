package metrics_test

import (
	"testing"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
	"github.com/petasbytes/searchchat/internal/metrics"
)

func TestCounters_RecordAccumulates(t *testing.T) {
	var c metrics.Counters
	c.Record(metrics.Cycle{ModelCalls: 2, ToolCalls: 1, Duration: time.Second})
	c.Record(metrics.Cycle{ModelCalls: 3, ToolCalls: 2, ToolFailures: 1, Failed: true, Duration: 2 * time.Second})

	got := c.Snapshot()
	want := metrics.Snapshot{Cycles: 2, FailedCycles: 1, ModelCalls: 5, ToolCalls: 3, ToolFailures: 1, Busy: 3 * time.Second}
	testboil.FailTestIfDiff(t, got, want)
	testboil.FailTestIfDiff(t, got.String(), "cycles=2 failed=1 model_calls=5 tool_calls=3 tool_failures=1 busy=3s")
}

func TestCounters_Reset(t *testing.T) {
	var c metrics.Counters
	c.Record(metrics.Cycle{ModelCalls: 1})
	c.Reset()
	testboil.FailTestIfDiff(t, c.Snapshot(), metrics.Snapshot{})
}
