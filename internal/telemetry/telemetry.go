// Package telemetry appends structured events to a local JSONL file.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
)

// EventsFile is the file name written under the emitter's directory.
const EventsFile = "events.jsonl"

// Emitter writes one JSON object per line to Dir/events.jsonl. A nil or
// disabled Emitter drops events, so callers never need to check.
type Emitter struct {
	Dir     string
	Enabled bool

	mu sync.Mutex
}

// New returns an Emitter writing under dir. An empty dir means ".agent".
func New(dir string, enabled bool) *Emitter {
	if dir == "" {
		dir = ".agent"
	}
	return &Emitter{Dir: dir, Enabled: enabled}
}

// Path returns the events file location.
func (e *Emitter) Path() string {
	return filepath.Join(e.Dir, EventsFile)
}

// Emit writes a single event line. It augments fields with RFC3339Nano time
// and the event name. Write failures are reported but never returned.
func (e *Emitter) Emit(name string, fields map[string]any) {
	if e == nil || !e.Enabled {
		return
	}

	// Shallow copy so callers' maps aren't mutated.
	m := make(map[string]any, len(fields)+2)
	maps.Copy(m, fields)
	m["time"] = time.Now().UTC().Format(time.RFC3339Nano)
	m["event"] = name

	b, err := json.Marshal(m)
	if err != nil {
		ancli.PrintWarn(fmt.Sprintf("telemetry: marshal %s: %v\n", name, err))
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		ancli.PrintWarn(fmt.Sprintf("telemetry: mkdir %s: %v\n", e.Dir, err))
		return
	}
	f, err := os.OpenFile(e.Path(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		ancli.PrintWarn(fmt.Sprintf("telemetry: open %s: %v\n", e.Path(), err))
		return
	}
	defer f.Close()

	if _, err := f.Write(append(b, '\n')); err != nil {
		ancli.PrintWarn(fmt.Sprintf("telemetry: write %s: %v\n", e.Path(), err))
	}
}

// EmitContext is Emit with the session and cycle IDs carried by ctx added to
// fields.
func (e *Emitter) EmitContext(ctx context.Context, name string, fields map[string]any) {
	if e == nil || !e.Enabled {
		return
	}
	m := make(map[string]any, len(fields)+2)
	maps.Copy(m, fields)
	if id, ok := SessionIDFromContext(ctx); ok {
		m["session_id"] = id
	}
	if id, ok := CycleIDFromContext(ctx); ok {
		m["cycle_id"] = id
	}
	e.Emit(name, m)
}
