// ABOUTME: Utility pack covers small one-shot helpers: password generation,
// ABOUTME: system stats, math evaluation, currency and unit conversion.

package builtins

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/cbbisht2004/Yogi/internal/config"
	"github.com/cbbisht2004/Yogi/internal/tools"
	"github.com/cbbisht2004/Yogi/internal/units"
)

const (
	defaultPasswordLength = 12
	minPasswordLength     = 6

	// cpuSampleInterval is how long the CPU usage probe samples for.
	cpuSampleInterval = time.Second

	// Letters, digits, and ASCII punctuation.
	passwordCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
)

// UtilsPack creates the utility pack. The services configuration supplies
// the currency conversion endpoint.
func UtilsPack(cfg config.ServicesConfig, logger *slog.Logger) *tools.Pack {
	if logger == nil {
		logger = slog.Default()
	}
	h := &utilsHandlers{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.HTTPTimeout},
		logger: logger.With("component", "utils"),
	}
	return &tools.Pack{
		ID: "core.utils",
		Tools: []*tools.Tool{
			{
				Name:        "generate_password",
				Description: "Generate a secure random password.",
				Parameters:  json.RawMessage(`{"type":"object","properties":{"length":{"type":"integer","description":"Password length, default 12"}}}`),
				Handler:     h.GeneratePassword,
			},
			{
				Name:        "get_system_info",
				Description: "Get current CPU, RAM, and disk usage.",
				Parameters:  json.RawMessage(`{"type":"object","properties":{}}`),
				Handler:     h.SystemInfo,
			},
			{
				Name:        "solve_math",
				Description: "Evaluate a math expression, e.g. '12 * (3 + 4)'.",
				Parameters:  json.RawMessage(`{"type":"object","properties":{"expression":{"type":"string"}},"required":["expression"]}`),
				Handler:     h.SolveMath,
			},
			{
				Name:        "convert_currency",
				Description: "Convert an amount between two currencies.",
				Parameters:  json.RawMessage(`{"type":"object","properties":{"amount":{"type":"number"},"from_currency":{"type":"string","description":"ISO code like USD"},"to_currency":{"type":"string","description":"ISO code like INR"}},"required":["amount","from_currency","to_currency"]}`),
				Handler:     h.ConvertCurrency,
			},
			{
				Name:        "convert_units",
				Description: "Convert a value between units, e.g. 10 km to miles.",
				Parameters:  json.RawMessage(`{"type":"object","properties":{"value":{"type":"number"},"from_unit":{"type":"string"},"to_unit":{"type":"string"}},"required":["value","from_unit","to_unit"]}`),
				Handler:     h.ConvertUnits,
			},
		},
	}
}

type utilsHandlers struct {
	cfg    config.ServicesConfig
	client *http.Client
	logger *slog.Logger
}

type passwordInput struct {
	Length int `json:"length"`
}

func (h *utilsHandlers) GeneratePassword(ctx context.Context, input json.RawMessage) (string, error) {
	var in passwordInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}
	if in.Length == 0 {
		in.Length = defaultPasswordLength
	}
	if in.Length < minPasswordLength {
		return "Password must be at least 6 characters long.", nil
	}

	out := make([]byte, in.Length)
	max := big.NewInt(int64(len(passwordCharset)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate password: %w", err)
		}
		out[i] = passwordCharset[n.Int64()]
	}
	return string(out), nil
}

func (h *utilsHandlers) SystemInfo(ctx context.Context, input json.RawMessage) (string, error) {
	cpuPercents, err := cpu.PercentWithContext(ctx, cpuSampleInterval, false)
	if err != nil || len(cpuPercents) == 0 {
		return fmt.Sprintf("Error getting system info: %v", err), nil
	}
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return fmt.Sprintf("Error getting system info: %v", err), nil
	}
	du, err := disk.UsageWithContext(ctx, "/")
	if err != nil {
		return fmt.Sprintf("Error getting system info: %v", err), nil
	}

	const mb = 1 << 20
	const gb = 1 << 30
	return fmt.Sprintf("CPU Usage: %.1f%%\nRAM Usage: %.1f%% (%dMB/%dMB)\nDisk Usage: %.1f%% (%dGB/%dGB)",
		cpuPercents[0],
		vm.UsedPercent, vm.Used/mb, vm.Total/mb,
		du.UsedPercent, du.Used/gb, du.Total/gb), nil
}

type mathInput struct {
	Expression string `json:"expression"`
}

func (h *utilsHandlers) SolveMath(ctx context.Context, input json.RawMessage) (string, error) {
	var in mathInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}
	if in.Expression == "" {
		return "", fmt.Errorf("expression is required")
	}

	result, err := expr.Eval(in.Expression, map[string]any{})
	if err != nil {
		return fmt.Sprintf("Error solving math: %v", err), nil
	}
	return fmt.Sprintf("Result: %v", result), nil
}

type currencyInput struct {
	Amount       float64 `json:"amount"`
	FromCurrency string  `json:"from_currency"`
	ToCurrency   string  `json:"to_currency"`
}

func (h *utilsHandlers) ConvertCurrency(ctx context.Context, input json.RawMessage) (string, error) {
	var in currencyInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}
	if in.FromCurrency == "" || in.ToCurrency == "" {
		return "", fmt.Errorf("from_currency and to_currency are required")
	}
	from := strings.ToUpper(in.FromCurrency)
	to := strings.ToUpper(in.ToCurrency)

	endpoint := fmt.Sprintf("%s/convert?from=%s&to=%s&amount=%g",
		strings.TrimRight(h.cfg.ExchangeBase, "/"), url.QueryEscape(from), url.QueryEscape(to), in.Amount)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Sprintf("Error converting currency: %v", err), nil
	}
	defer resp.Body.Close()

	var conversion struct {
		Success bool    `json:"success"`
		Result  float64 `json:"result"`
		Error   struct {
			Info string `json:"info"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&conversion); err != nil {
		return fmt.Sprintf("Error converting currency: %v", err), nil
	}

	if !conversion.Success {
		info := conversion.Error.Info
		if info == "" {
			info = "Unknown error"
		}
		return fmt.Sprintf("Currency conversion failed: %s", info), nil
	}
	return fmt.Sprintf("%g %s = %.2f %s", in.Amount, from, conversion.Result, to), nil
}

type unitsInput struct {
	Value    float64 `json:"value"`
	FromUnit string  `json:"from_unit"`
	ToUnit   string  `json:"to_unit"`
}

func (h *utilsHandlers) ConvertUnits(ctx context.Context, input json.RawMessage) (string, error) {
	var in unitsInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}
	if in.FromUnit == "" || in.ToUnit == "" {
		return "", fmt.Errorf("from_unit and to_unit are required")
	}

	result, err := units.Convert(in.Value, in.FromUnit, in.ToUnit)
	if err != nil {
		return fmt.Sprintf("Error converting units: %v", err), nil
	}
	return fmt.Sprintf("%g %s = %.4g %s", in.Value, in.FromUnit, result, in.ToUnit), nil
}
