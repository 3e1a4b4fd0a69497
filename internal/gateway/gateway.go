// ABOUTME: Gateway orchestrator serving the voice signaling API over TCP or a tailnet.
// ABOUTME: Owns the HTTP server lifecycle, the live call slot, and timer announcements.

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"tailscale.com/ipn/ipnstate"
	"tailscale.com/tsnet"

	"github.com/cbbisht2004/Yogi/internal/agent"
	"github.com/cbbisht2004/Yogi/internal/auth"
	"github.com/cbbisht2004/Yogi/internal/config"
	"github.com/cbbisht2004/Yogi/internal/store"
	"github.com/cbbisht2004/Yogi/internal/timers"
)

// shutdownGrace bounds how long in-flight requests may run after the serve
// context is canceled.
const shutdownGrace = 5 * time.Second

// Deps carries the shared components the gateway serves.
type Deps struct {
	Config    *config.Config
	Assistant *agent.Assistant
	Audit     store.InvocationStore
	Timers    *timers.Manager
	Logger    *slog.Logger
}

// Gateway runs the signaling API and owns at most one live call.
type Gateway struct {
	config    *config.Config
	assistant *agent.Assistant
	audit     store.InvocationStore
	logger    *slog.Logger

	httpServer  *http.Server
	tsnetServer *tsnet.Server

	mu   sync.Mutex
	call *call
}

// New wires the router, auth middleware, and timer announcements.
func New(deps Deps) (*Gateway, error) {
	if deps.Config == nil {
		return nil, errors.New("config is required")
	}
	if deps.Assistant == nil {
		return nil, errors.New("assistant is required")
	}
	if deps.Audit == nil {
		return nil, errors.New("audit store is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	g := &Gateway{
		config:    deps.Config,
		assistant: deps.Assistant,
		audit:     deps.Audit,
		logger:    logger.With("component", "gateway"),
	}

	verifier := auth.NewRoomKey(deps.Config.Room.APIKey, []byte(deps.Config.Room.APISecret))
	g.httpServer = &http.Server{
		Handler:           g.router(verifier),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if deps.Timers != nil {
		deps.Timers.OnExpire(g.announceTimer)
	}

	return g, nil
}

// announceTimer tells the live call its timer fired. With no call up the
// expiry is only logged; the timer tools already removed it from the list.
func (g *Gateway) announceTimer(t *timers.Timer) {
	g.mu.Lock()
	c := g.call
	g.mu.Unlock()

	seconds := int(t.Duration.Seconds())
	if c == nil {
		g.logger.Info("timer expired with no live call", "timer_id", t.ID, "seconds", seconds)
		return
	}
	instruction := fmt.Sprintf("Tell the user their %d-second timer just went off.", seconds)
	if err := c.session.GenerateReply(instruction); err != nil {
		g.logger.Warn("timer announcement failed", "timer_id", t.ID, "error", err)
	}
}

// Run serves the signaling API until the context is canceled or the server
// fails. Returns nil on graceful shutdown.
func (g *Gateway) Run(ctx context.Context) error {
	ln, err := g.setupListener(ctx)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		g.logger.Info("signaling server listening", "addr", ln.Addr().String())
		if err := g.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
	case serveErr = <-errCh:
		g.logger.Error("server error", "error", serveErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	shutdownErr := g.Shutdown(shutdownCtx)

	if serveErr != nil {
		return serveErr
	}
	return shutdownErr
}

// setupListener picks the tailnet or plain TCP listener per configuration.
func (g *Gateway) setupListener(ctx context.Context) (net.Listener, error) {
	if g.config.Tailscale.Enabled {
		if g.config.Server.HTTPAddr != "" {
			g.logger.Warn("server.http_addr is ignored when tailscale is enabled",
				"http_addr", g.config.Server.HTTPAddr)
		}
		return g.setupTailscaleListener(ctx)
	}
	ln, err := net.Listen("tcp", g.config.Server.HTTPAddr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", g.config.Server.HTTPAddr, err)
	}
	return ln, nil
}

// resolveTailscaleStateDir returns the state directory, using the default
// under the user's data dir when not configured.
func resolveTailscaleStateDir(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory for tailscale state (set tailscale.state_dir explicitly): %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "yogi", "tailscale"), nil
}

// resolveTailscaleAuthKey returns the auth key from config or environment.
func resolveTailscaleAuthKey(configured string) (string, error) {
	authKey := configured
	if authKey == "" {
		authKey = os.Getenv("TS_AUTHKEY")
	}
	if authKey == "" {
		return "", errors.New("tailscale auth key required: set tailscale.auth_key in config or the TS_AUTHKEY environment variable")
	}
	return authKey, nil
}

// setupTailscaleListener joins the tailnet and listens on port 80 there.
func (g *Gateway) setupTailscaleListener(ctx context.Context) (net.Listener, error) {
	tsCfg := g.config.Tailscale

	stateDir, err := resolveTailscaleStateDir(tsCfg.StateDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(stateDir, 0700); err != nil {
		return nil, fmt.Errorf("creating tailscale state dir: %w", err)
	}

	authKey, err := resolveTailscaleAuthKey(tsCfg.AuthKey)
	if err != nil {
		return nil, err
	}

	g.tsnetServer = &tsnet.Server{
		Hostname:  tsCfg.Hostname,
		Dir:       stateDir,
		Ephemeral: tsCfg.Ephemeral,
		AuthKey:   authKey,
	}

	g.logger.Info("starting tailscale node", "hostname", tsCfg.Hostname, "state_dir", stateDir, "ephemeral", tsCfg.Ephemeral)
	status, err := g.tsnetServer.Up(ctx)
	if err != nil {
		_ = g.tsnetServer.Close()
		return nil, fmt.Errorf("starting tailscale: %w", err)
	}
	g.logTailscaleStatus(tsCfg.Hostname, status)

	ln, err := g.tsnetServer.Listen("tcp", ":80")
	if err != nil {
		_ = g.tsnetServer.Close()
		return nil, fmt.Errorf("listening on tailscale port: %w", err)
	}
	return ln, nil
}

// logTailscaleStatus logs the node's tailnet identity.
func (g *Gateway) logTailscaleStatus(hostname string, status *ipnstate.Status) {
	var tsAddr, dnsName string
	if len(status.TailscaleIPs) > 0 {
		tsAddr = status.TailscaleIPs[0].String()
	} else {
		g.logger.Warn("tailscale node has no IP addresses assigned")
	}
	if status.Self != nil {
		dnsName = status.Self.DNSName
	}
	g.logger.Info("tailscale node ready", "hostname", hostname, "tailscale_ip", tsAddr, "dns_name", dnsName)
}

// appendCloseError appends an error with label if err is non-nil.
func appendCloseError(errs []error, label string, err error) []error {
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", label, err))
	}
	return errs
}

// Shutdown stops the HTTP server, hangs up the live call, and leaves the
// tailnet. Stores are owned by the caller.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.logger.Info("shutting down gateway")

	var errs []error
	errs = appendCloseError(errs, "HTTP shutdown", g.httpServer.Shutdown(ctx))

	g.mu.Lock()
	c := g.call
	g.call = nil
	g.mu.Unlock()
	if c != nil {
		c.hangup()
	}

	if g.tsnetServer != nil {
		errs = appendCloseError(errs, "tailscale shutdown", g.tsnetServer.Close())
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}
