// ABOUTME: Google Calendar client behind the calendar tool pack.
// ABOUTME: Lists upcoming events and inserts new ones on the configured calendar.

package calendar

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const (
	// DefaultCalendarID is the authenticated user's primary calendar.
	DefaultCalendarID = "primary"

	// APITimeout bounds each calendar API call.
	APITimeout = 5 * time.Second

	// maxListResults caps how many upcoming events one query returns.
	maxListResults = 20
)

// Event is one calendar entry in tool-facing form. Start is an RFC 3339
// timestamp, or a bare date for all-day events.
type Event struct {
	Start   string
	Summary string
}

// CreatedEvent describes an event the API accepted.
type CreatedEvent struct {
	Summary  string
	Start    string
	End      string
	HTMLLink string
}

// Client wraps the Calendar API for the tool pack.
type Client struct {
	svc        *gcal.Service
	calendarID string
}

// NewClient builds a client authenticated through the credential provider.
func NewClient(ctx context.Context, provider *CredentialProvider, calendarID string) (*Client, error) {
	httpClient, err := provider.HTTPClient(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := gcal.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("creating calendar service: %w", err)
	}
	if calendarID == "" {
		calendarID = DefaultCalendarID
	}
	return &Client{svc: svc, calendarID: calendarID}, nil
}

// NewClientWithHTTPClient builds a client over a custom HTTP client and
// endpoint (for testing).
func NewClientWithHTTPClient(ctx context.Context, httpClient *http.Client, endpoint, calendarID string) (*Client, error) {
	svc, err := gcal.NewService(ctx, option.WithHTTPClient(httpClient), option.WithEndpoint(endpoint))
	if err != nil {
		return nil, err
	}
	if calendarID == "" {
		calendarID = DefaultCalendarID
	}
	return &Client{svc: svc, calendarID: calendarID}, nil
}

// ListEvents returns up to maxListResults events starting within the next
// [days] days, ordered by start time.
func (c *Client) ListEvents(ctx context.Context, days int) ([]Event, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	now := time.Now().UTC()
	resp, err := c.svc.Events.List(c.calendarID).
		TimeMin(now.Format(time.RFC3339)).
		TimeMax(now.AddDate(0, 0, days).Format(time.RFC3339)).
		MaxResults(maxListResults).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapError(err)
	}

	events := make([]Event, 0, len(resp.Items))
	for _, item := range resp.Items {
		start := item.Start.DateTime
		if start == "" {
			start = item.Start.Date
		}
		events = append(events, Event{Start: start, Summary: item.Summary})
	}
	return events, nil
}

// CreateEvent inserts an event with the given times (RFC 3339 with offset).
func (c *Client) CreateEvent(ctx context.Context, summary, description, startTime, endTime string) (*CreatedEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	created, err := c.svc.Events.Insert(c.calendarID, &gcal.Event{
		Summary:     summary,
		Description: description,
		Start:       &gcal.EventDateTime{DateTime: startTime},
		End:         &gcal.EventDateTime{DateTime: endTime},
	}).Context(ctx).Do()
	if err != nil {
		return nil, wrapError(err)
	}

	link := created.HtmlLink
	if link == "" {
		link = "N/A"
	}
	return &CreatedEvent{
		Summary:  summary,
		Start:    startTime,
		End:      endTime,
		HTMLLink: link,
	}, nil
}

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	errStr := err.Error()

	if strings.Contains(errStr, "context deadline exceeded") {
		return fmt.Errorf("request timed out")
	}

	if strings.Contains(errStr, "401") || strings.Contains(errStr, "403") {
		return fmt.Errorf("token expired or revoked (run: yogi login)")
	}

	if strings.Contains(errStr, "404") {
		return fmt.Errorf("calendar not found")
	}

	return err
}
