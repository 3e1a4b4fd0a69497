// Package config handles configuration loading for yogi.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Configuration File
//
// The yogi binary resolves the config path in this order:
//
//  1. Path from the YOGI_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/yogi/yogi.yaml
//  3. ~/.config/yogi/yogi.yaml
//
// A .env file in the working directory is loaded before the config file,
// so ${VAR} references can point at values from either source.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	realtime:
//	  api_key: "${OPENAI_API_KEY}"
//	smtp:
//	  username: "${GMAIL_USER}"
//	  password: "${GMAIL_PASSWORD}"
//
// Syntax: ${VAR_NAME}. Unset variables expand to the empty string.
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	room:
//	  token_ttl: "1h"
//	services:
//	  http_timeout: "10s"
//	tools:
//	  dispatch_timeout: "30s"
//	  dedupe_window: "2m"
//
// # Configuration Sections
//
// Server and Tailscale (the signaling surface):
//
//	server:
//	  http_addr: "127.0.0.1:8080"
//	tailscale:
//	  enabled: false
//	  hostname: "yogi"
//	  auth_key: "${TS_AUTHKEY}"
//
// Realtime voice model:
//
//	realtime:
//	  api_key: "${OPENAI_API_KEY}"
//	  model: "gpt-4o-realtime-preview-2024-12-17"
//	  voice: "alloy"
//	  temperature: 0.8
//
// Room identity and token signing:
//
//	room:
//	  name: "yogi"
//	  api_key: "devkey"
//	  api_secret: "${YOGI_ROOM_SECRET}"
//	  token_ttl: "1h"
//
// Storage:
//
//	storage:
//	  data_dir: "~/.local/share/yogi"
//	  database: ""   # defaults to <data_dir>/yogi.db
//
// Outbound service endpoints live under services: and exist mainly so tests
// can substitute local servers; the defaults point at the real APIs.
//
// # Validation
//
// Load() validates:
//
//   - server.http_addr present unless tailscale is enabled
//   - tailscale.hostname present when tailscale is enabled
//   - storage.data_dir present
//   - room.api_secret present
//   - realtime.temperature within [0, 2]
//   - duration format validity
package config
