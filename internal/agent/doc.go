// Package agent assembles the assistant: the persona, the builtin tool
// packs, and the realtime sessions that carry conversations.
//
// # Overview
//
// The Assistant is the composition root for everything a caller talks to.
// It registers the builtin packs into one tool registry, builds the
// dispatcher that executes calls against it, and manufactures realtime
// sessions preloaded with the persona and the full tool set.
//
// # Assistant
//
// Construct one per process and share it across sessions:
//
//	asst, err := agent.NewAssistant(agent.Deps{
//	    Config:   cfg,
//	    Tasks:    tasks,
//	    Notes:    notes,
//	    Audit:    audit,
//	    Resolver: pathname.NewResolver(),
//	    Timers:   timerMgr,
//	    Calendar: credProvider,
//	    Logger:   logger,
//	})
//
// Key operations:
//
//   - Tools(): every registered tool as a realtime function declaration
//   - Dispatcher(): the shared dispatcher, for direct invocation
//   - NewSession(): an unconnected session bound to the tool set
//   - Greet(sess): scripted greeting once the data channel opens
//   - Close(): release dispatch plumbing
//
// # Session startup
//
// The gateway drives the session lifecycle: NewSession, register the audio
// bridge, Connect, then Greet. Greet waits for data-channel readiness in
// the background and triggers the scripted greeting; a session that never
// becomes ready logs a warning and skips it. The connection is unaffected.
//
// # Persona
//
// AgentInstructions is the standing system prompt sent in session.update.
// SessionGreeting is a one-shot response instruction used right after
// connect. Both live in instructions.go so prompt edits never touch wiring.
package agent
