package telemetry

import (
	"context"

	"github.com/petasbytes/searchchat/internal/metrics"
)

// EmitTextFeatures records the size of a message. The text itself is never written.
func (e *Emitter) EmitTextFeatures(ctx context.Context, role, text string) {
	e.EmitContext(ctx, "local_features", map[string]any{
		"features_version": "2",
		"role":             role,
		"text":             metrics.Measure(text),
	})
}
