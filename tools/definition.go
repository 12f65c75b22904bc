package tools

import (
	"context"
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/invopop/jsonschema"
)

// Name identifies one of the built-in tools.
type Name string

const (
	NameWikipedia Name = "wikipedia"
	NameArxiv     Name = "arxiv"
	NameSearch    Name = "search"
)

// Known reports whether n is one of the built-in tool names.
func (n Name) Known() bool {
	switch n {
	case NameWikipedia, NameArxiv, NameSearch:
		return true
	}
	return false
}

// Func runs a tool against a single query.
type Func func(ctx context.Context, query string) (string, error)

type ToolDefinition struct {
	Name        string
	Description string
	InputSchema anthropic.ToolInputSchemaParam
	Function    Func
}

// QueryInput is the input every lookup tool accepts.
type QueryInput struct {
	Query string `json:"query" jsonschema_description:"The search query."`
}

var QueryInputSchema = GenerateSchema[QueryInput]()

// GenerateSchema reflects T into the input schema format the Messages API expects.
func GenerateSchema[T any]() anthropic.ToolInputSchemaParam {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)
	return anthropic.ToolInputSchemaParam{
		Properties: schema.Properties,
	}
}

// ToolError is a machine-readable failure body surfaced back to the model.
type ToolError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	CodeEmptyQuery  = "ERR_EMPTY_QUERY"
	CodeUpstream    = "ERR_UPSTREAM"
	CodeBadResponse = "ERR_BAD_RESPONSE"
	CodeTimeout     = "ERR_TIMEOUT"
	CodeFailed      = "ERR_TOOL_FAILED"
)

// Error returns a compact, single-line JSON string to keep tool results small.
func (e ToolError) Error() string {
	b, _ := json.Marshal(e)
	return string(b)
}

var errEmptyQuery = ToolError{Code: CodeEmptyQuery, Message: "query must not be empty"}
