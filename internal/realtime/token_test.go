// ABOUTME: Tests for ephemeral token minting.
// ABOUTME: Runs against an httptest stand-in for the realtime sessions endpoint.

package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cbbisht2004/Yogi/internal/config"
)

func TestMintEphemeralToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if r.URL.Path != "/v1/realtime/sessions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("authorization = %q", got)
		}

		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["model"] != "gpt-4o-realtime-preview-2024-12-17" || body["voice"] != "alloy" {
			t.Errorf("body = %v", body)
		}

		fmt.Fprint(w, `{"client_secret":{"value":"ek-ephemeral","expires_at":1756100000}}`)
	}))
	defer srv.Close()

	cfg := config.RealtimeConfig{
		APIKey:  "sk-test",
		APIBase: srv.URL,
		Model:   "gpt-4o-realtime-preview-2024-12-17",
		Voice:   "alloy",
	}
	token, err := MintEphemeralToken(context.Background(), srv.Client(), cfg)
	if err != nil {
		t.Fatalf("MintEphemeralToken: %v", err)
	}
	if token != "ek-ephemeral" {
		t.Errorf("token = %q", token)
	}
}

func TestMintEphemeralTokenAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"Incorrect API key provided"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := MintEphemeralToken(context.Background(), srv.Client(), config.RealtimeConfig{APIBase: srv.URL})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error = %v, want status in message", err)
	}
}

func TestMintEphemeralTokenEmptySecret(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	_, err := MintEphemeralToken(context.Background(), srv.Client(), config.RealtimeConfig{APIBase: srv.URL})
	if err == nil || !strings.Contains(err.Error(), "client secret") {
		t.Errorf("err = %v, want missing client secret", err)
	}
}
