package telemetry

import "context"

type ctxKey int

const (
	sessionKey ctxKey = iota
	cycleKey
)

// WithSessionID tags ctx with the chat session its events belong to.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey, id)
}

// WithCycleID tags ctx with the dispatch cycle its events belong to.
func WithCycleID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, cycleKey, id)
}

func SessionIDFromContext(ctx context.Context) (string, bool) { return lookup(ctx, sessionKey) }

// CycleIDFromContext reports the cycle ID; an empty ID counts as missing.
func CycleIDFromContext(ctx context.Context) (string, bool) { return lookup(ctx, cycleKey) }

func lookup(ctx context.Context, k ctxKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	s, _ := ctx.Value(k).(string)
	return s, s != ""
}
