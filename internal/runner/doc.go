// Package runner drives one dispatch cycle: it alternates between asking the
// model for the next Turn and running the tool that Turn requests, until the
// model answers without a request.
//
// Invariant:
//   - a tool Turn is staged only directly after the assistant Turn that
//     requested it, so request and result stay adjacent in the Log.
//
// Flow:
//
//	user -> assistant(request) -> tool(result) -> ... -> assistant(answer)
//
// Tool failures become tool Turns flagged IsError and are fed back to the
// model. Model failures, unknown tools and the iteration bound abort the
// cycle; the Turns staged before the failure are kept. Cancellation of the
// caller's context discards the whole cycle.
package runner
