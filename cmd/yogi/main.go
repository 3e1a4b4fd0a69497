// ABOUTME: Entry point for the yogi voice assistant gateway.
// ABOUTME: Commands: serve, init, login, health, version.

package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/cbbisht2004/Yogi/internal/agent"
	"github.com/cbbisht2004/Yogi/internal/calendar"
	"github.com/cbbisht2004/Yogi/internal/config"
	"github.com/cbbisht2004/Yogi/internal/gateway"
	"github.com/cbbisht2004/Yogi/internal/pathname"
	"github.com/cbbisht2004/Yogi/internal/store"
	"github.com/cbbisht2004/Yogi/internal/timers"
)

// version is set by the linker at build time.
var version = "dev"

const banner = `
                   _
  _   _  ___   __ _(_)
 | | | |/ _ \ / _' | |
 | |_| | (_) | (_| | |
  \__, |\___/ \__, |_|
  |___/       |___/
`

// getConfigPath returns the path to the yogi config file.
// Priority: YOGI_CONFIG env var > XDG_CONFIG_HOME/yogi/yogi.yaml > ~/.config/yogi/yogi.yaml
func getConfigPath() string {
	if envPath := os.Getenv("YOGI_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "yogi.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "yogi", "yogi.yaml")
}

// getDataPath returns the path to the yogi data directory.
// Priority: XDG_DATA_HOME/yogi > ~/.local/share/yogi
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "yogi")
}

// calendarPaths resolves the OAuth artifact locations, defaulting to files
// next to the config.
func calendarPaths(cfg *config.Config, configPath string) (credentialsPath, tokenPath string) {
	dir := filepath.Dir(configPath)
	credentialsPath = cfg.Calendar.CredentialsFile
	if credentialsPath == "" {
		credentialsPath = filepath.Join(dir, "credentials.json")
	}
	tokenPath = cfg.Calendar.TokenFile
	if tokenPath == "" {
		tokenPath = filepath.Join(dir, "token.json")
	}
	return credentialsPath, tokenPath
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: yogi <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve     Start the voice assistant gateway")
		fmt.Println("  init      Create a new config file interactively")
		fmt.Println("  login     Authorize Google Calendar access")
		fmt.Println("  token     Mint a room access token for a caller device")
		fmt.Println("  stats     Show tool invocation stats from a running instance")
		fmt.Println("  health    Check gateway health")
		fmt.Println("  version   Print the version")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "login":
		err = runLogin(ctx)
	case "token":
		err = runToken(os.Args[2:])
	case "stats":
		err = runStats(ctx)
	case "health":
		err = runHealth(ctx)
	case "version":
		fmt.Printf("yogi %s\n", version)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	// Version info
	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	// Secrets referenced as ${VAR} in the config may live in a .env file.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	// Startup info
	green := color.New(color.FgGreen)

	green.Print("    ▶ ")
	fmt.Printf("Config:  %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("Room:    %s\n", cfg.Room.Name)
	green.Print("    ▶ ")
	fmt.Printf("Model:   %s (%s)\n", cfg.Realtime.Model, cfg.Realtime.Voice)

	if cfg.Tailscale.Enabled {
		green.Print("    ▶ ")
		fmt.Printf("Serving: ")
		cyan.Print(cfg.Tailscale.Hostname)
		if cfg.Tailscale.Ephemeral {
			gray.Print(" (ephemeral)")
		}
		fmt.Println()
	} else {
		green.Print("    ▶ ")
		fmt.Printf("Serving: %s\n", cfg.Server.HTTPAddr)
	}

	fmt.Println()

	logger.Info("starting yogi",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"room", cfg.Room.Name,
		"model", cfg.Realtime.Model,
	)

	if cfg.Realtime.APIKey == "" {
		logger.Warn("realtime.api_key is empty; calls will fail until it is set")
	}

	if err := os.MkdirAll(cfg.Storage.DataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	tasks, err := store.NewTaskStore(cfg.Storage.TodoPath())
	if err != nil {
		return fmt.Errorf("opening task store: %w", err)
	}
	notes, err := store.NewNoteStore(cfg.Storage.NotesPath())
	if err != nil {
		return fmt.Errorf("opening note store: %w", err)
	}
	audit, err := store.NewSQLiteStore(cfg.Storage.DatabasePath())
	if err != nil {
		return fmt.Errorf("opening invocation log: %w", err)
	}
	defer func() { _ = audit.Close() }()

	timerMgr := timers.NewManager(cfg.Timers.MaxActive, logger)
	defer timerMgr.Stop()

	credentialsPath, tokenPath := calendarPaths(cfg, configPath)
	provider := calendar.NewCredentialProvider(credentialsPath, tokenPath, logger)
	if !provider.Authorized() {
		logger.Warn("calendar not authorized; run 'yogi login' to enable calendar tools")
	}

	resolver := pathname.NewResolver()
	aliasPath := filepath.Join(filepath.Dir(configPath), "aliases.toml")
	aliases, err := pathname.LoadOverrides(aliasPath)
	if err != nil {
		logger.Warn("ignoring path aliases", "file", aliasPath, "error", err)
	} else if len(aliases) > 0 {
		resolver.SetOverrides(aliases)
		logger.Info("loaded path aliases", "file", aliasPath, "count", len(aliases))
	}

	asst, err := agent.NewAssistant(agent.Deps{
		Config:   cfg,
		Tasks:    tasks,
		Notes:    notes,
		Audit:    audit,
		Resolver: resolver,
		Timers:   timerMgr,
		Calendar: provider,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("building assistant: %w", err)
	}
	defer asst.Close()

	gw, err := gateway.New(gateway.Deps{
		Config:    cfg,
		Assistant: asst,
		Audit:     audit,
		Timers:    timerMgr,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("creating gateway: %w", err)
	}

	return gw.Run(ctx)
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = &colorHandler{
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
type colorHandler struct {
	mu     sync.Mutex
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	buf.WriteString(r.Message)

	prefix := ""
	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}

	// Handler-level attrs first (from WithAttrs), then record attrs.
	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + prefix + a.Key + "="))
		buf.WriteString(a.Value.String())
	}
	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + prefix + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Print(buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
	}
}

func runHealth(ctx context.Context) error {
	configPath := getConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	addr := cfg.Server.HTTPAddr
	if cfg.Tailscale.Enabled {
		addr = cfg.Tailscale.Hostname
	}

	url := fmt.Sprintf("http://%s/healthz", addr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}

// generateRoomSecret returns a random base64 secret for signing room tokens.
func generateRoomSecret() (string, error) {
	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return "", fmt.Errorf("generating room secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(secretBytes), nil
}

func runInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("yogi configuration setup")
	fmt.Println("========================")
	fmt.Println()

	configPath := prompt(reader, "Config file path", getConfigPath())

	if _, err := os.Stat(configPath); err == nil {
		answer := prompt(reader, "Config already exists. Overwrite? (y/N)", "n")
		if !strings.EqualFold(answer, "y") {
			fmt.Println("Aborted.")
			return nil
		}
	}

	fmt.Println()
	fmt.Println("--- Room ---")
	roomName := prompt(reader, "Room name", "yogi")

	apiSecret, err := generateRoomSecret()
	if err != nil {
		return err
	}
	fmt.Println("Generated a signing secret for room tokens.")

	fmt.Println()
	fmt.Println("--- Server ---")
	useTailscale := strings.EqualFold(prompt(reader, "Serve over Tailscale? (y/N)", "n"), "y")

	var httpAddr, tsHostname string
	tsEphemeral := false
	if useTailscale {
		tsHostname = prompt(reader, "Tailscale hostname", "yogi")
		tsEphemeral = strings.EqualFold(prompt(reader, "Ephemeral node? (y/N)", "n"), "y")
	} else {
		httpAddr = prompt(reader, "HTTP listen address", "127.0.0.1:8080")
	}

	fmt.Println()
	fmt.Println("--- Voice model ---")
	voice := prompt(reader, "Voice", "alloy")

	fmt.Println()
	fmt.Println("--- Storage ---")
	dataDir := prompt(reader, "Data directory", getDataPath())

	fmt.Println()
	fmt.Println("--- Logging ---")
	logLevel := prompt(reader, "Log level (debug/info/warn/error)", "info")
	logFormat := prompt(reader, "Log format (text/json)", "text")

	var b strings.Builder
	b.WriteString("# yogi configuration\n")
	b.WriteString("# ${VAR} references are expanded from the environment (and .env) at load time.\n")
	b.WriteString("\n")
	b.WriteString("room:\n")
	fmt.Fprintf(&b, "  name: %q\n", roomName)
	b.WriteString("  api_key: \"yogi\"\n")
	fmt.Fprintf(&b, "  api_secret: %q\n", apiSecret)
	b.WriteString("  # Bearer tokens for /v1 routes are HS256 JWTs signed with api_secret.\n")
	b.WriteString("  # token_ttl: \"1h\"\n")
	b.WriteString("\n")
	if useTailscale {
		b.WriteString("tailscale:\n")
		b.WriteString("  enabled: true\n")
		fmt.Fprintf(&b, "  hostname: %q\n", tsHostname)
		b.WriteString("  # auth_key: \"${TS_AUTHKEY}\"\n")
		fmt.Fprintf(&b, "  ephemeral: %v\n", tsEphemeral)
	} else {
		b.WriteString("server:\n")
		fmt.Fprintf(&b, "  http_addr: %q\n", httpAddr)
	}
	b.WriteString("\n")
	b.WriteString("realtime:\n")
	b.WriteString("  api_key: \"${OPENAI_API_KEY}\"\n")
	fmt.Fprintf(&b, "  voice: %q\n", voice)
	b.WriteString("\n")
	b.WriteString("storage:\n")
	fmt.Fprintf(&b, "  data_dir: %q\n", dataDir)
	b.WriteString("\n")
	b.WriteString("# Email sending for the comms tools.\n")
	b.WriteString("# smtp:\n")
	b.WriteString("#   username: \"${GMAIL_USER}\"\n")
	b.WriteString("#   password: \"${GMAIL_APP_PASSWORD}\"\n")
	b.WriteString("\n")
	b.WriteString("# News headlines need an API key from newsapi.org.\n")
	b.WriteString("# services:\n")
	b.WriteString("#   news_api_key: \"${NEWS_API_KEY}\"\n")
	b.WriteString("\n")
	b.WriteString("# Google Calendar OAuth files default to the config directory.\n")
	b.WriteString("# calendar:\n")
	b.WriteString("#   credentials_file: \"credentials.json\"\n")
	b.WriteString("#   token_file: \"token.json\"\n")
	b.WriteString("\n")
	b.WriteString("logging:\n")
	fmt.Fprintf(&b, "  level: %q\n", logLevel)
	fmt.Fprintf(&b, "  format: %q\n", logFormat)

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	green := color.New(color.FgGreen)
	fmt.Println()
	green.Print("✓ ")
	fmt.Printf("Config written to %s\n", configPath)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. export OPENAI_API_KEY=sk-... (or put it in a .env file)")
	fmt.Println("  2. yogi login    # optional, authorizes Google Calendar")
	fmt.Println("  3. yogi serve")
	return nil
}

// prompt asks for a value, returning def when the user just presses enter.
func prompt(reader *bufio.Reader, label, def string) string {
	if def != "" {
		fmt.Printf("%s [%s]: ", label, def)
	} else {
		fmt.Printf("%s: ", label)
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		return def
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	return line
}
