// ABOUTME: Thread-safe registry of the tool packs the assistant can call.
// ABOUTME: Manages pack registration, collision detection, and schema listing.

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// ErrPackAlreadyRegistered indicates a pack with the same ID is already registered.
var ErrPackAlreadyRegistered = errors.New("pack already registered")

// ErrToolCollision indicates a tool name already exists from another pack.
var ErrToolCollision = errors.New("tool name collision")

// ErrToolNotFound indicates the requested tool is not registered.
var ErrToolNotFound = errors.New("tool not found")

// ErrNilHandler indicates a tool was registered without a handler.
var ErrNilHandler = errors.New("tool has no handler")

// Handler executes one tool call. Input is the raw JSON argument object from
// the model. The returned string is read back to the user, so expected
// failures are phrased as messages rather than returned as errors; an error
// return means the input was malformed or the handler itself faulted.
type Handler func(ctx context.Context, input json.RawMessage) (string, error)

// Tool describes one callable tool.
type Tool struct {
	Name        string
	Description string
	Parameters  json.RawMessage // JSON-schema object advertised to the model
	Handler     Handler
}

// Pack is a named collection of tools registered together.
type Pack struct {
	ID    string
	Tools []*Tool
}

// entry stores a tool with its owning pack ID for registry lookup.
type entry struct {
	tool   *Tool
	packID string
}

// Registry maintains the registered packs and their tools.
type Registry struct {
	mu     sync.RWMutex
	packs  map[string][]string // pack ID -> tool names
	tools  map[string]*entry   // global tool name -> entry
	logger *slog.Logger
}

// NewRegistry creates a new Registry instance.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		packs:  make(map[string][]string),
		tools:  make(map[string]*entry),
		logger: logger.With("component", "tools"),
	}
}

// RegisterPack validates and stores a pack and its tools.
// Returns ErrPackAlreadyRegistered if a pack with the same ID exists and
// ErrToolCollision if any tool name is already taken.
func (r *Registry) RegisterPack(pack *Pack) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.packs[pack.ID]; exists {
		return fmt.Errorf("%w: %s", ErrPackAlreadyRegistered, pack.ID)
	}

	// Validate every tool before touching the registry so a failed
	// registration leaves no partial state.
	for _, tool := range pack.Tools {
		if tool.Handler == nil {
			return fmt.Errorf("%w: '%s' in pack '%s'", ErrNilHandler, tool.Name, pack.ID)
		}
		if existing, exists := r.tools[tool.Name]; exists {
			return fmt.Errorf("%w: tool '%s' already registered by pack '%s'",
				ErrToolCollision, tool.Name, existing.packID)
		}
	}

	names := make([]string, 0, len(pack.Tools))
	for _, tool := range pack.Tools {
		r.tools[tool.Name] = &entry{tool: tool, packID: pack.ID}
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	r.packs[pack.ID] = names

	r.logger.Info("pack registered",
		"pack_id", pack.ID,
		"tool_count", len(pack.Tools),
		"total_packs", len(r.packs),
		"total_tools", len(r.tools),
	)

	return nil
}

// UnregisterPack removes a pack and all its tools from the registry.
func (r *Registry) UnregisterPack(packID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	names, exists := r.packs[packID]
	if !exists {
		return
	}

	for _, name := range names {
		delete(r.tools, name)
	}
	delete(r.packs, packID)

	r.logger.Info("pack unregistered",
		"pack_id", packID,
		"total_packs", len(r.packs),
		"total_tools", len(r.tools),
	)
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (*Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.tools[name]
	if !ok {
		return nil, false
	}
	return e.tool, true
}

// All returns every registered tool sorted by name.
func (r *Registry) All() []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Tool, 0, len(r.tools))
	for _, e := range r.tools {
		out = append(out, e.tool)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// PackInfo contains public information about a registered pack.
type PackInfo struct {
	ID        string   `json:"id"`
	ToolNames []string `json:"tools"`
}

// ListPacks returns information about all registered packs, sorted by ID.
func (r *Registry) ListPacks() []PackInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]PackInfo, 0, len(r.packs))
	for id, names := range r.packs {
		out = append(out, PackInfo{ID: id, ToolNames: names})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
