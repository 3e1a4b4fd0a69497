// ABOUTME: Ephemeral token minting for the realtime API.
// ABOUTME: The long-lived API key never rides the WebRTC signaling exchange.

package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cbbisht2004/Yogi/internal/config"
)

// mintTimeout bounds the token mint round trip.
const mintTimeout = 10 * time.Second

type ephemeralTokenResponse struct {
	ClientSecret struct {
		Value     string `json:"value"`
		ExpiresAt int64  `json:"expires_at"`
	} `json:"client_secret"`
}

// MintEphemeralToken trades the configured API key for a short-lived session
// token scoped to one realtime session.
func MintEphemeralToken(ctx context.Context, client *http.Client, cfg config.RealtimeConfig) (string, error) {
	if client == nil {
		client = &http.Client{Timeout: mintTimeout}
	}

	body, err := json.Marshal(map[string]string{
		"model": cfg.Model,
		"voice": cfg.Voice,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.APIBase+"/v1/realtime/sessions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("minting ephemeral token: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("minting ephemeral token: %s: %s", resp.Status, payload)
	}

	var tokenResp ephemeralTokenResponse
	if err := json.Unmarshal(payload, &tokenResp); err != nil {
		return "", fmt.Errorf("decoding token response: %w", err)
	}
	if tokenResp.ClientSecret.Value == "" {
		return "", fmt.Errorf("token response carried no client secret")
	}
	return tokenResp.ClientSecret.Value, nil
}
