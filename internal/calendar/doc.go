// ABOUTME: Package documentation for Google Calendar integration.
// ABOUTME: Covers the credential contract and what tools may assume about it.

// Package calendar talks to Google Calendar on behalf of the assistant.
//
// # Credentials
//
// All OAuth material flows through one CredentialProvider: it reads the
// client secret JSON, loads the cached token, hands out HTTP clients whose
// token source refreshes expired access tokens, and persists refreshed
// tokens back to disk with mode 0600. Interactive authorization is not this
// package's job. The login command performs the browser flow and stores the
// first token through the same provider; until then Token and HTTPClient
// return ErrNotAuthorized and tools answer with a prompt to run it.
//
// # Client
//
// Client exposes the two calls the tool pack needs, listing upcoming events
// and inserting one, each bounded by APITimeout. API failures are rewritten
// into short messages a voice assistant can read back.
package calendar
