// ABOUTME: Timer pack sets, cancels, and lists countdown timers.
// ABOUTME: Timers live in the shared manager so expiry can be announced mid-session.

package builtins

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cbbisht2004/Yogi/internal/timers"
	"github.com/cbbisht2004/Yogi/internal/tools"
)

// TimerPack creates the timer pack over a shared timer manager.
func TimerPack(manager *timers.Manager) *tools.Pack {
	h := &timerHandlers{manager: manager}
	return &tools.Pack{
		ID: "core.timers",
		Tools: []*tools.Tool{
			{
				Name:        "set_timer",
				Description: "Set a timer for a given number of seconds.",
				Parameters:  json.RawMessage(`{"type":"object","properties":{"seconds":{"type":"integer"}},"required":["seconds"]}`),
				Handler:     h.Set,
			},
			{
				Name:        "cancel_timer",
				Description: "Cancel a running timer by its ID.",
				Parameters:  json.RawMessage(`{"type":"object","properties":{"timer_id":{"type":"string"}},"required":["timer_id"]}`),
				Handler:     h.Cancel,
			},
			{
				Name:        "list_timers",
				Description: "List active timers and their remaining time.",
				Parameters:  json.RawMessage(`{"type":"object","properties":{}}`),
				Handler:     h.List,
			},
		},
	}
}

type timerHandlers struct {
	manager *timers.Manager
}

type setTimerInput struct {
	Seconds int `json:"seconds"`
}

func (h *timerHandlers) Set(ctx context.Context, input json.RawMessage) (string, error) {
	var in setTimerInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}

	timer, err := h.manager.Set(time.Duration(in.Seconds) * time.Second)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Timer set for %d seconds (id %s).", in.Seconds, timer.ID), nil
}

type cancelTimerInput struct {
	TimerID string `json:"timer_id"`
}

func (h *timerHandlers) Cancel(ctx context.Context, input json.RawMessage) (string, error) {
	var in cancelTimerInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}
	if in.TimerID == "" {
		return "", fmt.Errorf("timer_id is required")
	}

	if !h.manager.Cancel(in.TimerID) {
		return "No such timer.", nil
	}
	return fmt.Sprintf("Timer %s cancelled.", in.TimerID), nil
}

func (h *timerHandlers) List(ctx context.Context, input json.RawMessage) (string, error) {
	active := h.manager.Active()
	if len(active) == 0 {
		return "No active timers.", nil
	}

	lines := make([]string, len(active))
	for i, t := range active {
		lines[i] = fmt.Sprintf("Timer %s: %d seconds remaining", t.ID, int(t.Remaining().Round(time.Second).Seconds()))
	}
	return strings.Join(lines, "\n"), nil
}
