// ABOUTME: Tests for the utility pack.
// ABOUTME: Currency conversion runs against an httptest server; stats may skip.

package builtins

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/cbbisht2004/Yogi/internal/config"
)

func newUtilsWith(t *testing.T, cfg config.ServicesConfig) *utilsHandlers {
	t.Helper()
	cfg.HTTPTimeout = 5 * time.Second
	return &utilsHandlers{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.HTTPTimeout},
		logger: testLogger(),
	}
}

func TestGeneratePassword(t *testing.T) {
	h := newUtilsWith(t, config.ServicesConfig{})

	got := call(t, h.GeneratePassword, `{}`)
	if len(got) != defaultPasswordLength {
		t.Errorf("default length = %d, want %d", len(got), defaultPasswordLength)
	}

	got = call(t, h.GeneratePassword, `{"length":20}`)
	if len(got) != 20 {
		t.Errorf("length = %d, want 20", len(got))
	}
	for _, r := range got {
		if !strings.ContainsRune(passwordCharset, r) {
			t.Errorf("character %q outside charset", r)
		}
	}

	if got := call(t, h.GeneratePassword, `{"length":4}`); got != "Password must be at least 6 characters long." {
		t.Errorf("short length = %q", got)
	}
}

func TestGeneratePasswordIsRandom(t *testing.T) {
	h := newUtilsWith(t, config.ServicesConfig{})

	a := call(t, h.GeneratePassword, `{"length":32}`)
	b := call(t, h.GeneratePassword, `{"length":32}`)
	if a == b {
		t.Error("two passwords came out identical")
	}
}

func TestSolveMath(t *testing.T) {
	h := newUtilsWith(t, config.ServicesConfig{})

	if got := call(t, h.SolveMath, `{"expression":"2 + 3 * 4"}`); got != "Result: 14" {
		t.Errorf("result = %q", got)
	}

	got := call(t, h.SolveMath, `{"expression":"2 +"}`)
	if !strings.HasPrefix(got, "Error solving math: ") {
		t.Errorf("malformed expression = %q", got)
	}
}

func TestSystemInfo(t *testing.T) {
	if testing.Short() {
		t.Skip("samples CPU for a second")
	}
	h := newUtilsWith(t, config.ServicesConfig{})

	got := call(t, h.SystemInfo, `{}`)
	if strings.HasPrefix(got, "Error getting system info") {
		t.Skipf("system stats unavailable here: %s", got)
	}
	for _, want := range []string{"CPU Usage: ", "RAM Usage: ", "Disk Usage: "} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
}

func TestConvertCurrency(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("from") != "USD" || q.Get("to") != "INR" || q.Get("amount") != "100" {
			t.Errorf("query = %v", q)
		}
		fmt.Fprint(w, `{"success":true,"result":8312.5}`)
	})

	h := newUtilsWith(t, config.ServicesConfig{ExchangeBase: srv.URL})
	got := call(t, h.ConvertCurrency, `{"amount":100,"from_currency":"usd","to_currency":"inr"}`)
	if got != "100 USD = 8312.50 INR" {
		t.Errorf("conversion = %q", got)
	}
}

func TestConvertCurrencyFailure(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":false,"error":{"info":"Invalid currency code"}}`)
	})

	h := newUtilsWith(t, config.ServicesConfig{ExchangeBase: srv.URL})
	got := call(t, h.ConvertCurrency, `{"amount":5,"from_currency":"usd","to_currency":"xxx"}`)
	if got != "Currency conversion failed: Invalid currency code" {
		t.Errorf("conversion = %q", got)
	}
}

func TestConvertCurrencyUnknownError(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":false}`)
	})

	h := newUtilsWith(t, config.ServicesConfig{ExchangeBase: srv.URL})
	got := call(t, h.ConvertCurrency, `{"amount":5,"from_currency":"usd","to_currency":"inr"}`)
	if got != "Currency conversion failed: Unknown error" {
		t.Errorf("conversion = %q", got)
	}
}

func TestConvertUnits(t *testing.T) {
	h := newUtilsWith(t, config.ServicesConfig{})

	tests := []struct{ input, want string }{
		{`{"value":10,"from_unit":"km","to_unit":"miles"}`, "10 km = 6.214 miles"},
		{`{"value":100,"from_unit":"celsius","to_unit":"fahrenheit"}`, "100 celsius = 212 fahrenheit"},
		{`{"value":2.5,"from_unit":"kg","to_unit":"lb"}`, "2.5 kg = 5.512 lb"},
	}
	for _, tt := range tests {
		if got := call(t, h.ConvertUnits, tt.input); got != tt.want {
			t.Errorf("ConvertUnits(%s) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestConvertUnitsUnknown(t *testing.T) {
	h := newUtilsWith(t, config.ServicesConfig{})

	got := call(t, h.ConvertUnits, `{"value":1,"from_unit":"parsecs","to_unit":"km"}`)
	if !strings.HasPrefix(got, "Error converting units: ") {
		t.Errorf("unknown unit = %q", got)
	}
}

func TestUtilsPackShape(t *testing.T) {
	pack := UtilsPack(config.ServicesConfig{HTTPTimeout: time.Second}, testLogger())
	if pack.ID != "core.utils" {
		t.Errorf("pack ID = %q", pack.ID)
	}
	for _, name := range []string{"generate_password", "get_system_info", "solve_math", "convert_currency", "convert_units"} {
		findHandler(t, pack, name)
	}
}
