// Package realtime connects the assistant to the realtime voice model over
// WebRTC.
//
// # Connection
//
// A Session first trades the long-lived API key for an ephemeral token
// (MintEphemeralToken), then dials the model: one peer connection with an
// opus input track for the user's audio, the model's audio arriving on a
// remote track, and the oai-events data channel carrying JSON events.
// The SDP offer is posted over HTTPS with the full candidate set; the
// endpoint does not trickle.
//
// # Session lifecycle
//
// When the data channel opens the session sends session.update with the
// persona instructions, voice, temperature, and every registered tool
// schema. WaitReady unblocks at that point; the caller then usually sends a
// scripted greeting via GenerateReply.
//
// # Tool calls
//
// response.function_call_arguments.done events are dispatched through the
// ToolDispatcher off the read loop. The spoken result goes back as a
// conversation.item.create carrying function_call_output, followed by
// response.create so the model reads the outcome aloud.
package realtime
