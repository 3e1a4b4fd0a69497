// ABOUTME: Interactive Google OAuth login for the calendar tools.
// ABOUTME: PKCE flow against a localhost callback; the token is persisted for serve to pick up.

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"golang.org/x/oauth2"

	"github.com/cbbisht2004/Yogi/internal/calendar"
	"github.com/cbbisht2004/Yogi/internal/config"
)

const (
	callbackStartPort    = 8085
	callbackPortAttempts = 5
	callbackTimeout      = 5 * time.Minute
	exchangeTimeout      = 30 * time.Second
)

const callbackSuccessPage = `<!DOCTYPE html>
<html>
<head><title>yogi</title></head>
<body style="font-family: sans-serif; text-align: center; padding-top: 4em;">
<h1>Logged in</h1>
<p>Calendar access is authorized. You can close this tab and return to the terminal.</p>
</body>
</html>`

func runLogin(ctx context.Context) error {
	configPath := getConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	credentialsPath, tokenPath := calendarPaths(cfg, configPath)
	provider := calendar.NewCredentialProvider(credentialsPath, tokenPath, logger)

	oauthCfg, err := provider.OAuthConfig()
	if errors.Is(err, calendar.ErrNoClientSecret) {
		printCredentialSetup(credentialsPath)
		return err
	}
	if err != nil {
		return fmt.Errorf("reading OAuth client secret: %w", err)
	}

	if provider.Authorized() {
		fmt.Println("Already logged in. Delete the token file to re-authorize:")
		fmt.Printf("  %s\n", tokenPath)
		return nil
	}

	listener, port, err := listenForCallback()
	if err != nil {
		return fmt.Errorf("starting OAuth callback listener: %w", err)
	}
	defer func() { _ = listener.Close() }()

	oauthCfg.RedirectURL = fmt.Sprintf("http://localhost:%d/callback", port)

	verifier := oauth2.GenerateVerifier()
	authURL := oauthCfg.AuthCodeURL("state", oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier))

	fmt.Println("Open this URL in your browser to authorize calendar access:")
	fmt.Println()
	fmt.Println(authURL)
	fmt.Println()
	fmt.Println("Waiting for authorization...")

	code, err := waitForCode(ctx, listener)
	if err != nil {
		return err
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()

	token, err := oauthCfg.Exchange(exchangeCtx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return fmt.Errorf("exchanging authorization code: %w", err)
	}

	if err := provider.SaveToken(token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Print("✓ ")
	fmt.Println("Logged in. Calendar tools are ready.")
	return nil
}

// listenForCallback binds a localhost port for the OAuth redirect. Google
// only allows registered redirect URIs, so we try a small fixed range.
func listenForCallback() (net.Listener, int, error) {
	var lastErr error
	for i := 0; i < callbackPortAttempts; i++ {
		port := callbackStartPort + i
		listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
		if err == nil {
			return listener, port, nil
		}
		lastErr = err
	}
	return nil, 0, fmt.Errorf("ports %d-%d busy: %w", callbackStartPort, callbackStartPort+callbackPortAttempts-1, lastErr)
}

// waitForCode serves the callback endpoint until Google redirects back with
// an authorization code, the user gives up, or the timeout fires.
func waitForCode(ctx context.Context, listener net.Listener) (string, error) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if errMsg := r.URL.Query().Get("error"); errMsg != "" {
			http.Error(w, "Authorization failed: "+errMsg, http.StatusBadRequest)
			errCh <- fmt.Errorf("authorization denied: %s", errMsg)
			return
		}
		if r.URL.Query().Get("state") != "state" {
			http.Error(w, "State mismatch", http.StatusBadRequest)
			errCh <- errors.New("OAuth state mismatch")
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "Missing authorization code", http.StatusBadRequest)
			errCh <- errors.New("callback missing authorization code")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, callbackSuccessPage)
		codeCh <- code
	})

	server := &http.Server{Handler: mux}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("callback server: %w", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	select {
	case code := <-codeCh:
		return code, nil
	case err := <-errCh:
		return "", err
	case <-time.After(callbackTimeout):
		return "", errors.New("timed out waiting for authorization")
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func printCredentialSetup(credentialsPath string) {
	fmt.Fprintln(os.Stderr, "No OAuth client secret found.")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "To set up calendar access:")
	fmt.Fprintln(os.Stderr, "  1. Go to https://console.cloud.google.com/apis/credentials")
	fmt.Fprintln(os.Stderr, "  2. Create an OAuth client ID of type \"Desktop app\"")
	fmt.Fprintln(os.Stderr, "  3. Enable the Google Calendar API for the project")
	fmt.Fprintf(os.Stderr, "  4. Download the client secret JSON to %s\n", credentialsPath)
	fmt.Fprintln(os.Stderr, "  5. Run 'yogi login' again")
}
