// Package store provides persistent storage for yogi.
//
// # Architecture
//
// Two kinds of persistence live here:
//
//   - ListStore: a flat JSON array of strings in a single file, used by
//     TaskStore (todo.json) and NoteStore (notes.json)
//   - SQLiteStore: the tool invocation log, implementing InvocationStore
//
// # List Stores
//
// Both list files are pretty-printed JSON arrays of strings with no schema
// version. Loading tolerates damage deliberately: a missing file reads as
// empty, and a file that fails to parse is reset to [] with its prior
// content discarded. Saves write a temp file in the same directory and
// rename it into place, and a per-store mutex keeps load-modify-save
// sequences single-writer.
//
// NoteStore has an unusual write policy: new text merges onto the last
// entry with a newline join rather than creating an independent note; only
// an empty store gains a new entry.
//
// # Invocation Log
//
// Every dispatched tool call is recorded with its call ID, tool name,
// status, duration, and error text. The log backs the /v1/stats endpoint
// and is append-only.
//
// SQLite runs with WAL mode:
//
//	PRAGMA journal_mode=WAL;
//
// Database file locations:
//
//   - Production: <data_dir>/yogi.db
//   - Testing: :memory:
//
// # Error Handling
//
// List store reads never fail (damage degrades to empty); writes return
// wrapped errors. SQLite methods accept context.Context and return
// wrapped errors.
package store
