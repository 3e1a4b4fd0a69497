// ABOUTME: Wires every builtin pack into one registry and builds realtime sessions over it.
// ABOUTME: The gateway asks the assistant for a connected, greeted session per caller.

package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cbbisht2004/Yogi/internal/builtins"
	"github.com/cbbisht2004/Yogi/internal/calendar"
	"github.com/cbbisht2004/Yogi/internal/config"
	"github.com/cbbisht2004/Yogi/internal/dedupe"
	"github.com/cbbisht2004/Yogi/internal/pathname"
	"github.com/cbbisht2004/Yogi/internal/realtime"
	"github.com/cbbisht2004/Yogi/internal/store"
	"github.com/cbbisht2004/Yogi/internal/timers"
	"github.com/cbbisht2004/Yogi/internal/tools"
)

// greetingWindow bounds how long a new session may take to become ready
// before the scripted greeting is abandoned.
const greetingWindow = 30 * time.Second

// dedupeCacheSize caps the duplicate-call replay cache. A single caller never
// comes close; the bound just keeps a long-lived session from growing it.
const dedupeCacheSize = 10_000

// Deps carries the shared infrastructure the assistant's tool packs need.
type Deps struct {
	Config   *config.Config
	Tasks    *store.TaskStore
	Notes    *store.NoteStore
	Audit    store.InvocationStore
	Resolver *pathname.Resolver
	Timers   *timers.Manager
	Calendar *calendar.CredentialProvider
	Logger   *slog.Logger
}

// Assistant owns the tool registry and dispatcher and manufactures realtime
// sessions bound to them.
type Assistant struct {
	cfg        *config.Config
	registry   *tools.Registry
	dispatcher *tools.Dispatcher
	cache      *dedupe.Cache
	logger     *slog.Logger
}

// NewAssistant registers every builtin pack and prepares dispatch plumbing.
func NewAssistant(deps Deps) (*Assistant, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	registry := tools.NewRegistry(logger)
	packs := []*tools.Pack{
		builtins.TasksPack(deps.Tasks),
		builtins.NotesPack(deps.Notes),
		builtins.FilesPack(deps.Resolver),
		builtins.CommsPack(deps.Config.SMTP, logger),
		builtins.WebPack(deps.Config.Services, logger),
		builtins.UtilsPack(deps.Config.Services, logger),
		builtins.TimerPack(deps.Timers),
		builtins.CalendarPack(deps.Calendar, deps.Config.Calendar.CalendarID, logger),
	}
	for _, p := range packs {
		if err := registry.RegisterPack(p); err != nil {
			return nil, fmt.Errorf("registering pack %s: %w", p.ID, err)
		}
	}

	cache := dedupe.New(deps.Config.Tools.DedupeWindow, dedupeCacheSize)
	dispatcher := tools.NewDispatcher(tools.DispatcherConfig{
		Registry: registry,
		Store:    deps.Audit,
		Cache:    cache,
		Timeout:  deps.Config.Tools.DispatchTimeout,
		Logger:   logger,
	})

	return &Assistant{
		cfg:        deps.Config,
		registry:   registry,
		dispatcher: dispatcher,
		cache:      cache,
		logger:     logger.With("component", "assistant"),
	}, nil
}

// Registry exposes the tool registry, mainly for the stats endpoint.
func (a *Assistant) Registry() *tools.Registry { return a.registry }

// Dispatcher exposes the dispatcher for direct tool invocation.
func (a *Assistant) Dispatcher() *tools.Dispatcher { return a.dispatcher }

// Tools renders every registered tool as a realtime function declaration.
func (a *Assistant) Tools() []realtime.Tool {
	all := a.registry.All()
	out := make([]realtime.Tool, len(all))
	for i, t := range all {
		out[i] = realtime.Tool{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.Parameters,
		}
	}
	return out
}

// NewSession builds an unconnected realtime session carrying the persona and
// the full tool set.
func (a *Assistant) NewSession() (*realtime.Session, error) {
	return realtime.NewSession(realtime.SessionConfig{
		Realtime:     a.cfg.Realtime,
		Instructions: AgentInstructions,
		Tools:        a.Tools(),
		Dispatcher:   a.dispatcher,
		Logger:       a.logger,
	})
}

// Greet delivers the scripted greeting once the session's data channel
// opens. It returns immediately; the wait runs in the background so
// signaling can answer the caller promptly.
func (a *Assistant) Greet(sess *realtime.Session) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), greetingWindow)
		defer cancel()
		if err := sess.WaitReady(ctx); err != nil {
			a.logger.Warn("session never became ready", "error", err)
			return
		}
		if err := sess.GenerateReply(SessionGreeting); err != nil {
			a.logger.Warn("greeting failed", "error", err)
		}
	}()
}

// Close releases dispatch plumbing. Stores are owned by the caller.
func (a *Assistant) Close() {
	a.cache.Close()
}
