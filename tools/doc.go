// Package tools defines the lookup tools the agent may call and the registry
// that exposes them to the model.
//
// Includes:
//   - ToolDefinition: name, description, JSON input schema, handler.
//   - GenerateSchema[T](): derive JSON Schema from Go structs.
//   - Lookup tools: wikipedia, arxiv, search (DuckDuckGo).
//   - Registry: fixed, ordered, immutable after construction.
//
// Every tool takes one query string and returns a bounded-length text result.
// Failures are reported as ToolError so they can be fed back to the model.
package tools
