// ABOUTME: Store types and interfaces for yogi persistence
// ABOUTME: Defines the Invocation model and the InvocationStore interface

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// Invocation status values
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Invocation records a single dispatched tool call for auditing
type Invocation struct {
	ID         string
	CallID     string
	Tool       string
	Status     string // "ok" or "error"
	Error      string // empty unless Status is "error"
	DurationMs int64
	CreatedAt  time.Time
}

// ToolStats aggregates invocation counts for one tool
type ToolStats struct {
	Tool   string
	Calls  int64
	Errors int64
}

// InvocationStore persists tool invocation records
type InvocationStore interface {
	SaveInvocation(ctx context.Context, inv *Invocation) error
	RecentInvocations(ctx context.Context, limit int) ([]*Invocation, error)
	Stats(ctx context.Context) ([]*ToolStats, error)
	Close() error
}
