// Package memory persists session transcripts across restarts.
//
// Persistence model:
//   - A Transcript is the full Turn sequence of one Session, tool Turns included.
//   - Stores are keyed by session ID. Loading an unknown ID yields an empty
//     Transcript and no error.
//   - JSONStore keeps one file per session; SQLiteStore keeps one row per Turn.
package memory
