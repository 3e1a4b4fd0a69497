// ABOUTME: Package documentation for tool registration and dispatch.
// ABOUTME: Describes the registry, the dispatcher, and the string-result contract.

// Package tools routes the assistant's function calls to their handlers.
//
// # Registry
//
// Tools arrive in packs, named collections registered together at startup.
// The registry rejects duplicate pack IDs and tool-name collisions up front,
// so every tool name is globally unique for the lifetime of the process. All
// returns the full schema list the realtime session advertises to the model.
//
// # Dispatch
//
// The dispatcher is the single entry point for executing a call. It enforces
// a per-call timeout, records each invocation to the audit store when one is
// attached, and replays the original response for duplicate call IDs within
// the dedupe window so side-effecting tools do not run twice when the model
// resends an event.
//
// # Results
//
// Dispatch never returns an error. The model's only channel back to the user
// is speech, so unknown tools, timeouts, and handler faults are all rendered
// as plain sentences. Handlers themselves follow the same convention:
// expected failures (a service being down, a file missing) come back as
// descriptive strings, and the error return is reserved for malformed input
// or internal faults.
package tools
