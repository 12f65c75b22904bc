package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/petasbytes/searchchat/conversation"
	"github.com/petasbytes/searchchat/internal/config"
	"github.com/petasbytes/searchchat/internal/console"
	"github.com/petasbytes/searchchat/internal/provider"
	"github.com/petasbytes/searchchat/internal/runner"
	"github.com/petasbytes/searchchat/internal/telemetry"
	"github.com/petasbytes/searchchat/memory"
	"github.com/petasbytes/searchchat/tools"
)

func main() {
	if err := run(); err != nil {
		ancli.PrintErr(fmt.Sprintf("%v\n", err))
		os.Exit(1)
	}
}

func run() error {
	ancli.SetupSlog()

	// Basic env check (SDK also reads API key)
	if os.Getenv("ANTHROPIC_API_KEY") == "" {
		return fmt.Errorf("missing ANTHROPIC_API_KEY; export it before running")
	}
	cfg, err := config.Load("")
	if err != nil {
		return err
	}

	// Ctrl-C / SIGTERM cancel the running cycle and end the REPL
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	session, err := resume(ctx, store, cfg)
	if err != nil {
		return err
	}

	events := telemetry.New(cfg.ArtifactsDir, cfg.Observe)

	model := provider.NewAnthropic(provider.NewAnthropicClient(), anthropic.Model(cfg.Model))
	model.MaxTokens = cfg.MaxTokens
	model.System = cfg.System
	model.TokenBudget = cfg.TokenBudget
	model.Telemetry = events

	r := runner.New(model, tools.Default(cfg.ToolOptions()))
	r.MaxIterations = cfg.MaxIterations
	r.ModelTimeout = cfg.ModelTimeout
	r.ToolTimeout = cfg.ToolTimeout
	r.Telemetry = events

	c := console.New(r, session, store)
	if cfg.Stream {
		model.OnDelta = c.Delta
	}
	return c.Loop(ctx)
}

func openStore(ctx context.Context, cfg config.Config) (memory.Store, error) {
	switch cfg.Store {
	case config.StoreNone:
		return memory.Nop{}, nil
	case config.StoreSQLite:
		if err := os.MkdirAll(cfg.StateDir, 0o755); err != nil {
			return nil, fmt.Errorf("create state dir: %w", err)
		}
		s, err := memory.OpenSQLite(ctx, filepath.Join(cfg.StateDir, "transcripts.db"))
		if err != nil {
			return nil, fmt.Errorf("open transcript db: %w", err)
		}
		return s, nil
	default:
		s, err := memory.NewJSONStore(cfg.StateDir)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// resume reloads the configured session, or starts it fresh when nothing
// usable was saved.
func resume(ctx context.Context, store memory.Store, cfg config.Config) (*conversation.Session, error) {
	t, err := store.Load(ctx, cfg.Session)
	if err != nil {
		ancli.PrintWarn(fmt.Sprintf("failed to load saved conversation: %v\n", err))
		return conversation.ResumeSession(cfg.Session, cfg.Greeting, nil)
	}
	s, err := conversation.ResumeSession(cfg.Session, cfg.Greeting, t.Turns)
	if err != nil {
		ancli.PrintWarn(fmt.Sprintf("saved conversation is invalid, starting over: %v\n", err))
		return conversation.ResumeSession(cfg.Session, cfg.Greeting, nil)
	}
	if len(t.Turns) > 0 {
		ancli.Okf("resumed session %q (%d turns)\n", s.ID, s.Log.Len())
	}
	return s, nil
}
