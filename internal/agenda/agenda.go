// Package agenda looks up the day's first and last scheduled events from
// an ICS calendar feed. The advisor uses the pair only to bound the
// morning and evening evaluation windows.
package agenda

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/rs/zerolog"

	"github.com/ridecast/ridecast/internal/resilience"
)

// ClientConfig holds configuration for the agenda client.
type ClientConfig struct {
	// FeedURL is the ICS calendar endpoint (required).
	FeedURL string

	// Location is the timezone event bounds are reported in.
	Location *time.Location

	// HTTPClient is the HTTP client to use (optional).
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client fetches and filters the calendar feed.
type Client struct {
	feedURL    string
	loc        *time.Location
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates an agenda client.
func NewClient(cfg ClientConfig) *Client {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig("agenda"))
	}

	return &Client{
		feedURL:    cfg.FeedURL,
		loc:        loc,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Bounds returns the start of the first event and the end of the last
// event overlapping the given date, both clipped to the day and expressed
// in the client timezone. ok is false when the day has no events —
// an expected outcome, not an error.
func (c *Client) Bounds(ctx context.Context, date time.Time) (first, last time.Time, ok bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, http.NoBody)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("fetching calendar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return time.Time{}, time.Time{}, false, fmt.Errorf("calendar returned status %d", resp.StatusCode)
	}

	cal, err := ics.ParseCalendar(resp.Body)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("parsing calendar: %w", err)
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, c.loc)
	dayEnd := dayStart.Add(24 * time.Hour)

	for _, ev := range cal.Events() {
		if cancelled(ev) {
			continue
		}

		start, err := ev.GetStartAt()
		if err != nil {
			continue
		}
		end, err := ev.GetEndAt()
		if err != nil {
			end = start
		}
		start, end = start.In(c.loc), end.In(c.loc)

		// Keep events overlapping the target day, clipped to it.
		if start.Before(dayEnd) && end.After(dayStart) {
			if start.Before(dayStart) {
				start = dayStart
			}
			if end.After(dayEnd) {
				end = dayEnd
			}
			if !ok || start.Before(first) {
				first = start
			}
			if !ok || end.After(last) {
				last = end
			}
			ok = true
		}
	}

	if ok {
		c.logger.Debug().
			Time("first", first).
			Time("last", last).
			Msg("agenda bounds resolved")
	}
	return first, last, ok, nil
}

func cancelled(ev *ics.VEvent) bool {
	prop := ev.GetProperty(ics.ComponentPropertyStatus)
	return prop != nil && strings.EqualFold(prop.Value, "CANCELLED")
}
