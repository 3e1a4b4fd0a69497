// ABOUTME: Operator commands: mint room tokens and show tool call stats.
// ABOUTME: Tokens are minted locally; the signing secret lives in the config.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/cbbisht2004/Yogi/internal/auth"
	"github.com/cbbisht2004/Yogi/internal/config"
	"github.com/cbbisht2004/Yogi/internal/gateway"
)

// statsTokenTTL is the lifetime of the throwaway token minted for one
// stats request.
const statsTokenTTL = 5 * time.Minute

func runToken(args []string) error {
	identity := "operator"
	var ttl time.Duration

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--identity", "-i":
			if i+1 < len(args) {
				identity = args[i+1]
				i++
			}
		case "--ttl", "-t":
			if i+1 < len(args) {
				parsed, err := time.ParseDuration(args[i+1])
				if err != nil {
					return fmt.Errorf("invalid ttl %q: %w", args[i+1], err)
				}
				ttl = parsed
				i++
			}
		default:
			return fmt.Errorf("usage: yogi token [--identity <name>] [--ttl <duration>]")
		}
	}

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if ttl == 0 {
		ttl = cfg.Room.TokenTTL
	}

	key := auth.NewRoomKey(cfg.Room.APIKey, []byte(cfg.Room.APISecret))
	token, err := key.Mint(auth.Grant{
		Identity: identity,
		Room:     cfg.Room.Name,
		TTL:      ttl,
	})
	if err != nil {
		return fmt.Errorf("minting token: %w", err)
	}

	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)

	fmt.Println()
	green.Println("  Token created")
	fmt.Println()
	cyan.Printf("  Identity:  ")
	fmt.Println(identity)
	cyan.Printf("  Room:      ")
	fmt.Println(cfg.Room.Name)
	cyan.Printf("  Expires:   ")
	fmt.Println(time.Now().Add(ttl).Format(time.RFC3339))
	fmt.Println()
	fmt.Println("  Token (keep this secret!):")
	fmt.Println()
	fmt.Println("  " + token)
	fmt.Println()

	return nil
}

func runStats(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	addr := cfg.Server.HTTPAddr
	if cfg.Tailscale.Enabled {
		addr = cfg.Tailscale.Hostname
	}

	key := auth.NewRoomKey(cfg.Room.APIKey, []byte(cfg.Room.APISecret))
	token, err := key.Mint(auth.Grant{
		Identity: "cli",
		Room:     cfg.Room.Name,
		TTL:      statsTokenTTL,
	})
	if err != nil {
		return fmt.Errorf("minting token: %w", err)
	}

	url := fmt.Sprintf("http://%s/v1/stats", addr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetching stats: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stats request failed: status %d", resp.StatusCode)
	}

	var stats gateway.StatsResponse
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return fmt.Errorf("decoding stats: %w", err)
	}

	cyan := color.New(color.FgCyan)

	fmt.Println()
	cyan.Println("  Room: " + stats.Room)
	fmt.Println()
	cyan.Println("  Tool Packs")
	cyan.Println("  ----------")
	for _, p := range stats.Packs {
		fmt.Printf("  %-16s %d tools\n", p.ID, len(p.ToolNames))
	}
	fmt.Println()

	cyan.Println("  Invocations")
	cyan.Println("  -----------")
	if len(stats.Tools) == 0 {
		fmt.Println("  (no tool calls recorded)")
		fmt.Println()
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  TOOL\tCALLS\tERRORS")
	fmt.Fprintln(w, "  ----\t-----\t------")
	for _, t := range stats.Tools {
		fmt.Fprintf(w, "  %s\t%d\t%d\n", t.Tool, t.Calls, t.Errors)
	}
	w.Flush()
	fmt.Println()

	return nil
}
