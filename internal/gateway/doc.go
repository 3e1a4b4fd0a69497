// Package gateway serves the voice signaling API and bridges callers to the
// realtime model.
//
// # Overview
//
// A caller (phone, browser, or any WebRTC client) POSTs an SDP offer to the
// room endpoint. The gateway dials a fresh model session, wires the caller's
// microphone to the model and the model's voice back to the caller, and
// returns its SDP answer. The assistant then greets the caller.
//
// # Routes
//
//	GET  /healthz                 liveness, no auth
//	POST /v1/rooms/{room}/offer   SDP offer in, SDP answer out
//	GET  /v1/stats                registered packs + per-tool invocation counts
//
// The /v1 routes require "Authorization: Bearer <token>" where the token is
// a room access token minted by auth.RoomKey with the configured room API
// key and secret. Tokens for other rooms are rejected.
//
// # Call lifecycle
//
// The gateway holds at most one live call. A newer offer replaces the
// previous call, which covers a phone reconnecting after a drop. The call
// ends when the caller's peer connection fails or closes, or at shutdown.
//
// # Listeners
//
// By default the server binds server.http_addr. With tailscale.enabled the
// gateway joins the tailnet as its own node via tsnet and listens on port
// 80 there, so the signaling endpoint is reachable from the owner's devices
// without exposing a public port.
//
// # Timer announcements
//
// The gateway registers the timer manager's expiry callback. When a timer
// fires during a live call, the assistant is asked to announce it; with no
// call up the expiry is only logged.
package gateway
