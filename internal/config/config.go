// ABOUTME: Configuration loading and parsing for the yogi assistant
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete yogi configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Realtime  RealtimeConfig  `yaml:"realtime"`
	Room      RoomConfig      `yaml:"room"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	Calendar  CalendarConfig  `yaml:"calendar"`
	Services  ServicesConfig  `yaml:"services"`
	Storage   StorageConfig   `yaml:"storage"`
	Tools     ToolsConfig     `yaml:"tools"`
	Timers    TimersConfig    `yaml:"timers"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds the HTTP signaling server address
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// TailscaleConfig holds Tailscale tsnet configuration for serving
// the signaling endpoint over a tailnet instead of a local port
type TailscaleConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Hostname  string `yaml:"hostname"`
	AuthKey   string `yaml:"auth_key"`
	StateDir  string `yaml:"state_dir"`
	Ephemeral bool   `yaml:"ephemeral"`
}

// RealtimeConfig holds the realtime voice model configuration
type RealtimeConfig struct {
	APIKey      string  `yaml:"api_key"`
	APIBase     string  `yaml:"api_base"`
	Model       string  `yaml:"model"`
	Voice       string  `yaml:"voice"`
	Temperature float64 `yaml:"temperature"`
}

// RoomConfig holds the voice room identity and token-signing material
type RoomConfig struct {
	Name      string `yaml:"name"`
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`

	TokenTTL time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	TokenTTLRaw string `yaml:"token_ttl"`
}

// SMTPConfig holds outbound mail configuration
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// CalendarConfig holds Google Calendar OAuth artifact locations
type CalendarConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	TokenFile       string `yaml:"token_file"`
	CalendarID      string `yaml:"calendar_id"`
}

// ServicesConfig holds base URLs and keys for the outbound HTTP services
// the builtin tools call. Base URLs exist so tests can point tools at
// local servers.
type ServicesConfig struct {
	WeatherBase  string `yaml:"weather_base"`
	SearchBase   string `yaml:"search_base"`
	WikiBase     string `yaml:"wiki_base"`
	NewsBase     string `yaml:"news_base"`
	NewsAPIKey   string `yaml:"news_api_key"`
	JokeBase     string `yaml:"joke_base"`
	QuoteBase    string `yaml:"quote_base"`
	ExchangeBase string `yaml:"exchange_base"`

	HTTPTimeout time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	HTTPTimeoutRaw string `yaml:"http_timeout"`
}

// StorageConfig holds local persistence locations
type StorageConfig struct {
	DataDir  string `yaml:"data_dir"`
	Database string `yaml:"database"`
}

// TodoPath returns the task list file location.
func (s StorageConfig) TodoPath() string {
	return filepath.Join(s.DataDir, "todo.json")
}

// NotesPath returns the note list file location.
func (s StorageConfig) NotesPath() string {
	return filepath.Join(s.DataDir, "notes.json")
}

// DatabasePath returns the invocation log database location.
func (s StorageConfig) DatabasePath() string {
	if s.Database != "" {
		return s.Database
	}
	return filepath.Join(s.DataDir, "yogi.db")
}

// ToolsConfig holds tool dispatch timing configuration
type ToolsConfig struct {
	DispatchTimeout time.Duration `yaml:"-"`
	DedupeWindow    time.Duration `yaml:"-"`

	// Raw string values for YAML unmarshaling
	DispatchTimeoutRaw string `yaml:"dispatch_timeout"`
	DedupeWindowRaw    string `yaml:"dedupe_window"`
}

// TimersConfig bounds the timer tool
type TimersConfig struct {
	MaxActive int `yaml:"max_active"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Defaults applied when the corresponding fields are absent from the file.
const (
	DefaultHTTPAddr        = "127.0.0.1:8080"
	DefaultAPIBase         = "https://api.openai.com"
	DefaultModel           = "gpt-4o-realtime-preview-2024-12-17"
	DefaultVoice           = "alloy"
	DefaultTemperature     = 0.8
	DefaultRoomName        = "yogi"
	DefaultSMTPHost        = "smtp.gmail.com"
	DefaultSMTPPort        = 587
	DefaultCalendarID      = "primary"
	DefaultTokenTTL        = time.Hour
	DefaultHTTPTimeout     = 10 * time.Second
	DefaultDispatchTimeout = 30 * time.Second
	DefaultDedupeWindow    = 2 * time.Minute
	DefaultMaxTimers       = 32
)

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	// Parse duration fields
	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills in unset fields with their defaults.
func (c *Config) applyDefaults() {
	if c.Server.HTTPAddr == "" && !c.Tailscale.Enabled {
		c.Server.HTTPAddr = DefaultHTTPAddr
	}
	if c.Realtime.APIBase == "" {
		c.Realtime.APIBase = DefaultAPIBase
	}
	if c.Realtime.Model == "" {
		c.Realtime.Model = DefaultModel
	}
	if c.Realtime.Voice == "" {
		c.Realtime.Voice = DefaultVoice
	}
	if c.Realtime.Temperature == 0 {
		c.Realtime.Temperature = DefaultTemperature
	}
	if c.Room.Name == "" {
		c.Room.Name = DefaultRoomName
	}
	if c.SMTP.Host == "" {
		c.SMTP.Host = DefaultSMTPHost
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = DefaultSMTPPort
	}
	if c.Calendar.CalendarID == "" {
		c.Calendar.CalendarID = DefaultCalendarID
	}
	if c.Services.WeatherBase == "" {
		c.Services.WeatherBase = "http://wttr.in"
	}
	if c.Services.SearchBase == "" {
		c.Services.SearchBase = "https://html.duckduckgo.com/html"
	}
	if c.Services.WikiBase == "" {
		c.Services.WikiBase = "https://en.wikipedia.org/api/rest_v1"
	}
	if c.Services.NewsBase == "" {
		c.Services.NewsBase = "https://newsapi.org/v2"
	}
	if c.Services.JokeBase == "" {
		c.Services.JokeBase = "https://official-joke-api.appspot.com"
	}
	if c.Services.QuoteBase == "" {
		c.Services.QuoteBase = "https://api.quotable.io"
	}
	if c.Services.ExchangeBase == "" {
		c.Services.ExchangeBase = "https://api.exchangerate.host"
	}
	if c.Timers.MaxActive == 0 {
		c.Timers.MaxActive = DefaultMaxTimers
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	// The signaling server needs an address unless Tailscale carries it
	if !c.Tailscale.Enabled && c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required (or enable tailscale)")
	}

	// Tailscale requires a hostname
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}

	if c.Storage.DataDir == "" {
		return fmt.Errorf("storage.data_dir is required")
	}

	if c.Room.APISecret == "" {
		return fmt.Errorf("room.api_secret is required")
	}

	if c.Realtime.Temperature < 0 || c.Realtime.Temperature > 2 {
		return fmt.Errorf("realtime.temperature must be between 0 and 2, got %v", c.Realtime.Temperature)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	cfg.Room.TokenTTL = DefaultTokenTTL
	if cfg.Room.TokenTTLRaw != "" {
		cfg.Room.TokenTTL, err = time.ParseDuration(cfg.Room.TokenTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing token_ttl %q: %w", cfg.Room.TokenTTLRaw, err)
		}
	}

	cfg.Services.HTTPTimeout = DefaultHTTPTimeout
	if cfg.Services.HTTPTimeoutRaw != "" {
		cfg.Services.HTTPTimeout, err = time.ParseDuration(cfg.Services.HTTPTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing http_timeout %q: %w", cfg.Services.HTTPTimeoutRaw, err)
		}
	}

	cfg.Tools.DispatchTimeout = DefaultDispatchTimeout
	if cfg.Tools.DispatchTimeoutRaw != "" {
		cfg.Tools.DispatchTimeout, err = time.ParseDuration(cfg.Tools.DispatchTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing dispatch_timeout %q: %w", cfg.Tools.DispatchTimeoutRaw, err)
		}
	}

	cfg.Tools.DedupeWindow = DefaultDedupeWindow
	if cfg.Tools.DedupeWindowRaw != "" {
		cfg.Tools.DedupeWindow, err = time.ParseDuration(cfg.Tools.DedupeWindowRaw)
		if err != nil {
			return fmt.Errorf("parsing dedupe_window %q: %w", cfg.Tools.DedupeWindowRaw, err)
		}
	}

	return nil
}
