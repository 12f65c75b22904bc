// Package conversation holds the chat data model: Turns, the append-only Log
// and the Session that owns it.
//
// Invariant:
//   - a tool Turn directly follows the assistant Turn whose request it answers,
//     and its ResultFor matches that request's ID.
//
// Flow:
//
//	user(text) -> assistant(request) -> tool(result) -> assistant(text)
package conversation
