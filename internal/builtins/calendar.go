// ABOUTME: Calendar pack lists upcoming Google Calendar events and creates new ones.
// ABOUTME: Missing arguments come back as spoken clarification prompts, not errors.

package builtins

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/cbbisht2004/Yogi/internal/calendar"
	"github.com/cbbisht2004/Yogi/internal/tools"
)

// notLoggedIn is read back when calendar credentials are missing.
const notLoggedIn = "Calendar access is not set up yet. Please run: yogi login"

// calendarClient is the slice of calendar.Client these tools use. Tests swap
// in a fake so no Google endpoint is touched.
type calendarClient interface {
	ListEvents(ctx context.Context, days int) ([]calendar.Event, error)
	CreateEvent(ctx context.Context, summary, description, startTime, endTime string) (*calendar.CreatedEvent, error)
}

var _ calendarClient = (*calendar.Client)(nil)

// CalendarPack creates the calendar pack. The client is built on first use so
// the gateway can start before the user has logged in.
func CalendarPack(provider *calendar.CredentialProvider, calendarID string, logger *slog.Logger) *tools.Pack {
	if logger == nil {
		logger = slog.Default()
	}
	h := &calendarHandlers{
		logger: logger.With("component", "calendar"),
		newClient: func(ctx context.Context) (calendarClient, error) {
			return calendar.NewClient(ctx, provider, calendarID)
		},
	}
	return newCalendarPack(h)
}

func newCalendarPack(h *calendarHandlers) *tools.Pack {
	return &tools.Pack{
		ID: "core.calendar",
		Tools: []*tools.Tool{
			{
				Name:        "get_calendar_events",
				Description: "Get upcoming Google Calendar events for the next N days.",
				Parameters:  json.RawMessage(`{"type":"object","properties":{"days":{"type":"integer","description":"How many days ahead to look"}}}`),
				Handler:     h.List,
			},
			{
				Name:        "add_calendar_event",
				Description: "Add an event to Google Calendar.",
				Parameters:  json.RawMessage(`{"type":"object","properties":{"summary":{"type":"string"},"start_time":{"type":"string","description":"RFC 3339, e.g. 2025-07-22T15:00:00+05:30"},"end_time":{"type":"string","description":"RFC 3339, e.g. 2025-07-22T16:00:00+05:30"},"description":{"type":"string"}}}`),
				Handler:     h.Add,
			},
		},
	}
}

type calendarHandlers struct {
	logger    *slog.Logger
	newClient func(ctx context.Context) (calendarClient, error)

	mu     sync.Mutex
	cached calendarClient
}

func (h *calendarHandlers) getClient(ctx context.Context) (calendarClient, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cached == nil {
		c, err := h.newClient(ctx)
		if err != nil {
			return nil, err
		}
		h.cached = c
	}
	return h.cached, nil
}

type listEventsInput struct {
	Days int `json:"days"`
}

func (h *calendarHandlers) List(ctx context.Context, input json.RawMessage) (string, error) {
	var in listEventsInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}
	if in.Days <= 0 {
		return "How many days ahead would you like to check your calendar events for?", nil
	}

	client, err := h.getClient(ctx)
	if err != nil {
		if errors.Is(err, calendar.ErrNotAuthorized) || errors.Is(err, calendar.ErrNoClientSecret) {
			return notLoggedIn, nil
		}
		return fmt.Sprintf("Error fetching calendar events: %v", err), nil
	}

	events, err := client.ListEvents(ctx, in.Days)
	if err != nil {
		return fmt.Sprintf("Error fetching calendar events: %v", err), nil
	}
	if len(events) == 0 {
		return fmt.Sprintf("No upcoming events found in the next %d day(s).", in.Days), nil
	}

	lines := make([]string, 0, len(events)+1)
	lines = append(lines, fmt.Sprintf("Here are your events for the next %d day(s):", in.Days))
	for _, e := range events {
		lines = append(lines, fmt.Sprintf("%s: %s", e.Start, e.Summary))
	}
	return strings.Join(lines, "\n"), nil
}

type addEventInput struct {
	Summary     string `json:"summary"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Description string `json:"description"`
}

func (h *calendarHandlers) Add(ctx context.Context, input json.RawMessage) (string, error) {
	var in addEventInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}
	if in.Summary == "" {
		return "What should I name the event?", nil
	}
	if in.StartTime == "" {
		return "When should the event start? (Please say in format like '2025-07-22T15:00:00+05:30')", nil
	}
	if in.EndTime == "" {
		return "When should the event end? (Please say in format like '2025-07-22T16:00:00+05:30')", nil
	}

	client, err := h.getClient(ctx)
	if err != nil {
		if errors.Is(err, calendar.ErrNotAuthorized) || errors.Is(err, calendar.ErrNoClientSecret) {
			return notLoggedIn, nil
		}
		return fmt.Sprintf("⚠️ Failed to add event: %v", err), nil
	}

	created, err := client.CreateEvent(ctx, in.Summary, in.Description, in.StartTime, in.EndTime)
	if err != nil {
		return fmt.Sprintf("⚠️ Failed to add event: %v", err), nil
	}

	h.logger.Info("calendar event created", "summary", created.Summary)
	return fmt.Sprintf("✅ Event created successfully!\nTitle: %s\nStart: %s\nEnd: %s\nLink: %s",
		created.Summary, created.Start, created.End, created.HTMLLink), nil
}
