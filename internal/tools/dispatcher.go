// ABOUTME: Executes tool calls with timeouts, duplicate replay, and an audit trail.
// ABOUTME: Converts every failure into a string the voice model can relay to the user.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cbbisht2004/Yogi/internal/dedupe"
	"github.com/cbbisht2004/Yogi/internal/store"
)

// DefaultTimeout is the default timeout for tool execution.
const DefaultTimeout = 30 * time.Second

// Dispatcher executes tool calls against a Registry. It never returns an
// error to the caller: unknown tools, timeouts, and handler faults all come
// back as strings, since the runtime's only channel to the user is speech.
type Dispatcher struct {
	registry *Registry
	store    store.InvocationStore // optional audit trail
	cache    *dedupe.Cache         // optional duplicate-call replay
	timeout  time.Duration
	logger   *slog.Logger
}

// DispatcherConfig contains configuration options for the Dispatcher.
type DispatcherConfig struct {
	Registry *Registry
	Store    store.InvocationStore
	Cache    *dedupe.Cache
	Timeout  time.Duration
	Logger   *slog.Logger
}

// NewDispatcher creates a new Dispatcher with the given configuration.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		registry: cfg.Registry,
		store:    cfg.Store,
		cache:    cfg.Cache,
		timeout:  timeout,
		logger:   logger.With("component", "dispatch"),
	}
}

// Dispatch runs the named tool with the given JSON arguments. callID is the
// model's identifier for this function call; repeated IDs within the replay
// window return the original response without re-running the tool.
func (d *Dispatcher) Dispatch(ctx context.Context, callID, name string, args json.RawMessage) string {
	if d.cache != nil && callID != "" {
		if cached, ok := d.cache.Lookup(callID); ok {
			d.logger.Info("duplicate tool call replayed", "tool_name", name, "call_id", callID)
			return cached
		}
	}

	tool, ok := d.registry.Get(name)
	if !ok {
		d.logger.Warn("tool not found", "tool_name", name, "call_id", callID)
		d.record(name, callID, store.StatusError, ErrToolNotFound.Error(), time.Now())
		return fmt.Sprintf("I don't have a tool named '%s'.", name)
	}

	started := time.Now()
	d.logger.Info("dispatching tool call", "tool_name", name, "call_id", callID)

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	type result struct {
		output string
		err    error
	}
	resCh := make(chan result, 1)
	go func() {
		output, err := tool.Handler(ctx, args)
		resCh <- result{output, err}
	}()

	var response string
	select {
	case res := <-resCh:
		if res.err != nil {
			d.logger.Warn("tool call failed",
				"tool_name", name,
				"call_id", callID,
				"duration", time.Since(started),
				"error", res.err,
			)
			d.record(name, callID, store.StatusError, res.err.Error(), started)
			return fmt.Sprintf("Error running %s: %v", name, res.err)
		}
		response = res.output
		d.logger.Info("tool call completed",
			"tool_name", name,
			"call_id", callID,
			"duration", time.Since(started),
		)
		d.record(name, callID, store.StatusOK, "", started)
	case <-ctx.Done():
		d.logger.Warn("tool call timed out or cancelled",
			"tool_name", name,
			"call_id", callID,
			"timeout", d.timeout,
			"error", ctx.Err(),
		)
		d.record(name, callID, store.StatusError, ctx.Err().Error(), started)
		return fmt.Sprintf("The %s tool took too long and was cancelled.", name)
	}

	if d.cache != nil && callID != "" {
		d.cache.Store(callID, response)
	}
	return response
}

// record persists one invocation to the audit store when one is attached.
func (d *Dispatcher) record(tool, callID, status, errText string, started time.Time) {
	if d.store == nil {
		return
	}
	inv := &store.Invocation{
		ID:         uuid.NewString(),
		CallID:     callID,
		Tool:       tool,
		Status:     status,
		Error:      errText,
		DurationMs: time.Since(started).Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.store.SaveInvocation(ctx, inv); err != nil {
		d.logger.Warn("failed to record invocation", "tool_name", tool, "error", err)
	}
}
