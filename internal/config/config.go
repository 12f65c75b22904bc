// Package config resolves runtime settings: built-in defaults, then an
// optional YAML file, then AGT_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/petasbytes/searchchat/conversation"
	"github.com/petasbytes/searchchat/tools"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when AGT_CONFIG is unset. A missing file is not an error.
const DefaultPath = ".agent/config.yaml"

// Transcript store kinds.
const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
	StoreNone   = "none"
)

const defaultSystem = "You are a helpful assistant. Use the wikipedia, arxiv and search tools " +
	"when a question needs facts you are unsure of, then answer concisely."

type Config struct {
	Model         string        `yaml:"model"`
	MaxTokens     int64         `yaml:"max_tokens"`
	System        string        `yaml:"system"`
	TokenBudget   int           `yaml:"token_budget"`
	MaxIterations int           `yaml:"max_iterations"`
	ModelTimeout  time.Duration `yaml:"model_timeout"`
	ToolTimeout   time.Duration `yaml:"tool_timeout"`
	Stream        bool          `yaml:"stream"`

	// Observe enables JSONL events under ArtifactsDir.
	Observe      bool   `yaml:"observe"`
	ArtifactsDir string `yaml:"artifacts_dir"`

	Store    string `yaml:"store"`
	StateDir string `yaml:"state_dir"`
	Session  string `yaml:"session"`
	Greeting string `yaml:"greeting"`

	Tools Tools `yaml:"tools"`
}

type Tools struct {
	MaxChars       int           `yaml:"max_chars"`
	TopK           int           `yaml:"top_k"`
	SearchResults  int           `yaml:"search_results"`
	WikipediaURL   string        `yaml:"wikipedia_url"`
	ArxivURL       string        `yaml:"arxiv_url"`
	SearchURL      string        `yaml:"search_url"`
	SearchInterval time.Duration `yaml:"search_interval"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Model:         "claude-3-7-sonnet-latest",
		MaxTokens:     1024,
		System:        defaultSystem,
		TokenBudget:   8000,
		MaxIterations: 10,
		ModelTimeout:  60 * time.Second,
		ToolTimeout:   20 * time.Second,
		Stream:        true,
		ArtifactsDir:  ".agent",
		Store:         StoreJSON,
		StateDir:      ".agent/sessions",
		Session:       "default",
		Greeting:      conversation.DefaultGreeting,
		Tools: Tools{
			MaxChars:       400,
			TopK:           1,
			SearchResults:  4,
			SearchInterval: time.Second,
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (or AGT_CONFIG,
// or DefaultPath when path is empty) and the environment, then validates it.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("AGT_CONFIG")
	}
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the runtime cannot work with.
func (c Config) Validate() error {
	switch {
	case c.Model == "":
		return errors.New("model is required")
	case c.MaxTokens <= 0:
		return fmt.Errorf("max_tokens must be positive: %d", c.MaxTokens)
	case c.TokenBudget <= 0:
		return fmt.Errorf("token_budget must be positive: %d", c.TokenBudget)
	case c.MaxIterations <= 0:
		return fmt.Errorf("max_iterations must be positive: %d", c.MaxIterations)
	case c.ModelTimeout <= 0 || c.ToolTimeout <= 0:
		return fmt.Errorf("timeouts must be positive: model=%s tool=%s", c.ModelTimeout, c.ToolTimeout)
	case c.Tools.MaxChars <= 0 || c.Tools.TopK <= 0 || c.Tools.SearchResults <= 0:
		return errors.New("tools.max_chars, tools.top_k and tools.search_results must be positive")
	}
	switch c.Store {
	case StoreJSON, StoreSQLite, StoreNone:
	default:
		return fmt.Errorf("unknown store %q (want json, sqlite or none)", c.Store)
	}
	if c.Store != StoreNone && c.StateDir == "" {
		return errors.New("state_dir is required when a store is enabled")
	}
	if c.Session == "" || c.Session == "." || c.Session == ".." || strings.ContainsAny(c.Session, `/\`) {
		return fmt.Errorf("session must be a plain name: %q", c.Session)
	}
	return nil
}

// ToolOptions maps the tools section onto tools.Options.
func (c Config) ToolOptions() tools.Options {
	return tools.Options{
		MaxChars:       c.Tools.MaxChars,
		TopK:           c.Tools.TopK,
		SearchResults:  c.Tools.SearchResults,
		WikipediaURL:   c.Tools.WikipediaURL,
		ArxivURL:       c.Tools.ArxivURL,
		SearchURL:      c.Tools.SearchURL,
		SearchInterval: c.Tools.SearchInterval,
	}
}

func (c *Config) applyEnv() error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	flag := func(key string, dst *bool) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = misc.Truthy(v)
		}
	}
	var errs []error
	integer := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
				return
			}
			*dst = n
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := os.LookupEnv(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
				return
			}
			*dst = d
		}
	}

	str("AGT_MODEL", &c.Model)
	str("AGT_SYSTEM", &c.System)
	str("AGT_ARTIFACTS_DIR", &c.ArtifactsDir)
	str("AGT_STORE", &c.Store)
	str("AGT_STATE_DIR", &c.StateDir)
	str("AGT_SESSION", &c.Session)
	str("AGT_GREETING", &c.Greeting)
	str("AGT_WIKIPEDIA_URL", &c.Tools.WikipediaURL)
	str("AGT_ARXIV_URL", &c.Tools.ArxivURL)
	str("AGT_SEARCH_URL", &c.Tools.SearchURL)

	flag("AGT_STREAM", &c.Stream)
	flag("AGT_OBSERVE_JSON", &c.Observe)

	maxTokens := int(c.MaxTokens)
	integer("AGT_MAX_TOKENS", &maxTokens)
	c.MaxTokens = int64(maxTokens)
	integer("AGT_TOKEN_BUDGET", &c.TokenBudget)
	integer("AGT_MAX_ITERATIONS", &c.MaxIterations)
	integer("AGT_TOOL_MAX_CHARS", &c.Tools.MaxChars)
	integer("AGT_TOOL_TOP_K", &c.Tools.TopK)
	integer("AGT_SEARCH_RESULTS", &c.Tools.SearchResults)

	duration("AGT_MODEL_TIMEOUT", &c.ModelTimeout)
	duration("AGT_TOOL_TIMEOUT", &c.ToolTimeout)
	duration("AGT_SEARCH_INTERVAL", &c.Tools.SearchInterval)

	return errors.Join(errs...)
}
