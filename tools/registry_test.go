package tools_test

import (
	"context"
	"errors"
	"testing"

	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
	"github.com/petasbytes/searchchat/tools"
)

func TestDefault_ToolNamesInOrder(t *testing.T) {
	r := tools.Default(tools.Options{})
	testboil.FailTestIfDiff(t, r.Len(), 3)

	got := r.Names()
	want := []string{"arxiv", "wikipedia", "search"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tool %d: got %q want %q", i, got[i], want[i])
		}
	}
}

func TestDefault_DefinitionsHaveSchemaAndDescription(t *testing.T) {
	for _, d := range tools.Default(tools.Options{}).Definitions() {
		if d.Description == "" {
			t.Errorf("%s: empty description", d.Name)
		}
		if d.Function == nil {
			t.Errorf("%s: nil function", d.Name)
		}
		if d.InputSchema.Properties == nil {
			t.Errorf("%s: nil schema properties", d.Name)
		}
		if !tools.Name(d.Name).Known() {
			t.Errorf("%s: not a known name", d.Name)
		}
	}
}

func TestLookup_ExactMatchOnly(t *testing.T) {
	r := tools.Default(tools.Options{})
	if _, err := r.Lookup("wikipedia"); err != nil {
		t.Fatalf("lookup wikipedia: %v", err)
	}
	for _, name := range []string{"Wikipedia", "wiki", "", "calculator"} {
		_, err := r.Lookup(name)
		if !errors.Is(err, tools.ErrUnknownTool) {
			t.Errorf("lookup %q: got %v want ErrUnknownTool", name, err)
		}
	}
}

func TestLookup_NilRegistry(t *testing.T) {
	var r *tools.Registry
	if _, err := r.Lookup("arxiv"); !errors.Is(err, tools.ErrUnknownTool) {
		t.Fatalf("got %v want ErrUnknownTool", err)
	}
	testboil.FailTestIfDiff(t, r.Len(), 0)
}

func TestNewRegistry_Rejects(t *testing.T) {
	noop := func(context.Context, string) (string, error) { return "", nil }

	_, err := tools.NewRegistry(
		tools.ToolDefinition{Name: "arxiv", Function: noop},
		tools.ToolDefinition{Name: "arxiv", Function: noop},
	)
	if !errors.Is(err, tools.ErrDuplicateTool) {
		t.Fatalf("duplicate: got %v", err)
	}

	_, err = tools.NewRegistry(tools.ToolDefinition{Name: "", Function: noop})
	if !errors.Is(err, tools.ErrInvalidTool) {
		t.Fatalf("empty name: got %v", err)
	}

	_, err = tools.NewRegistry(tools.ToolDefinition{Name: "search"})
	if !errors.Is(err, tools.ErrInvalidTool) {
		t.Fatalf("nil function: got %v", err)
	}

	_, err = tools.NewRegistry(tools.ToolDefinition{Name: "calculator", Function: noop})
	if !errors.Is(err, tools.ErrUnknownTool) {
		t.Fatalf("unknown name: got %v", err)
	}
}

func TestGenerateSchema_QueryProperty(t *testing.T) {
	s := tools.GenerateSchema[tools.QueryInput]()
	props, ok := s.Properties.(interface{ Len() int })
	if !ok {
		t.Fatalf("unexpected properties type %T", s.Properties)
	}
	testboil.FailTestIfDiff(t, props.Len(), 1)
}

func TestToolError_IsCompactJSON(t *testing.T) {
	e := tools.ToolError{Code: tools.CodeUpstream, Message: "boom"}
	testboil.FailTestIfDiff(t, e.Error(), `{"code":"ERR_UPSTREAM","message":"boom"}`)
}
