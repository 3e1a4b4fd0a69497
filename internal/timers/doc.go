// ABOUTME: Package documentation for the timer manager.
// ABOUTME: Explains the timer lifecycle and the expiry notification path.

// Package timers manages countdown timers set during a conversation.
//
// Each timer gets a short ID the user can refer back to, a completion channel
// closed on expiry, and a spot in the manager's active set until it fires or
// is cancelled. The manager bounds how many timers may run at once and
// reports expiry both through slog and through an optional callback, which
// the serving layer uses to have the assistant announce that time is up.
package timers
