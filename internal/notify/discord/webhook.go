// Package discord delivers notifications through a Discord webhook,
// enforcing the embed limits Discord imposes on titles, descriptions and
// fields.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ridecast/ridecast/internal/notify"
	"github.com/ridecast/ridecast/internal/resilience"
)

// Discord embed limits.
const (
	MaxTitleLength       = 256
	MaxDescriptionLength = 4096
	MaxFieldCount        = 25
	MaxFieldNameLength   = 256
	MaxFieldValueLength  = 1024
	MaxFooterTextLength  = 2048
)

// ClientConfig holds configuration for the webhook sink.
type ClientConfig struct {
	// WebhookURL is the Discord webhook endpoint (required).
	WebhookURL string

	// MentionUsers are Discord user IDs pinged on messages whose template
	// requests a mention.
	MentionUsers []string

	// Footer is the footer text on every embed, typically app name and
	// version.
	Footer string

	// HTTPClient is the HTTP client to use (optional).
	HTTPClient *resilience.Client

	// Logger for sink operations.
	Logger zerolog.Logger
}

// Sink sends messages to a Discord webhook.
type Sink struct {
	webhookURL   string
	mentionUsers []string
	footer       string
	httpClient   *resilience.Client
	logger       zerolog.Logger
}

// NewSink creates a Discord webhook sink.
func NewSink(cfg ClientConfig) *Sink {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig("discord"))
	}

	footer := cfg.Footer
	if len(footer) > MaxFooterTextLength {
		cfg.Logger.Warn().Msg("footer text exceeds Discord limit, truncating")
		footer = footer[:MaxFooterTextLength]
	}

	return &Sink{
		webhookURL:   cfg.WebhookURL,
		mentionUsers: cfg.MentionUsers,
		footer:       footer,
		httpClient:   httpClient,
		logger:       cfg.Logger,
	}
}

// Send delivers the message as one or more embeds. Oversized parts are
// word-boundary truncated; more than 25 fields are split across
// continuation embeds.
func (s *Sink) Send(ctx context.Context, msg notify.Message) error {
	payload := webhookPayload{
		Embeds: s.buildEmbeds(msg),
	}
	if msg.Mention && len(s.mentionUsers) > 0 {
		mentions := make([]string, len(s.mentionUsers))
		for i, id := range s.mentionUsers {
			mentions[i] = "<@" + id + ">"
		}
		payload.Content = strings.Join(mentions, " ")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	s.logger.Debug().
		Str("title", msg.Title).
		Int("fields", len(msg.Fields)).
		Msg("notification sent")
	return nil
}

// buildEmbeds validates limits and chunks fields across embeds. The first
// embed carries the title and description; continuation embeds are titled
// "Continued".
func (s *Sink) buildEmbeds(msg notify.Message) []embed {
	title := msg.Title
	if len([]rune(title)) > MaxTitleLength {
		s.logger.Warn().Msg("title exceeds Discord limit, truncating")
		title = notify.SmartTruncate(title, MaxTitleLength-3)
	}
	description := msg.Description
	if len([]rune(description)) > MaxDescriptionLength {
		s.logger.Warn().Msg("description exceeds Discord limit, truncating")
		description = notify.SmartTruncate(description, MaxDescriptionLength-3)
	}

	fields := make([]embedField, 0, len(msg.Fields))
	for _, f := range msg.Fields {
		name, value := f.Name, f.Value
		if len([]rune(name)) > MaxFieldNameLength {
			name = notify.SmartTruncate(name, MaxFieldNameLength-3)
		}
		if len([]rune(value)) > MaxFieldValueLength {
			value = notify.SmartTruncate(value, MaxFieldValueLength-3)
		}
		fields = append(fields, embedField{Name: name, Value: value})
	}

	color := parseColor(msg.Color)
	timestamp := time.Now().UTC().Format(time.RFC3339)

	var embeds []embed
	for start := 0; ; start += MaxFieldCount {
		end := start + MaxFieldCount
		if end > len(fields) {
			end = len(fields)
		}

		e := embed{
			Color:     color,
			Timestamp: timestamp,
			Footer:    &embedFooter{Text: s.footer},
		}
		if start == 0 {
			e.Title = title
			e.Description = description
		} else {
			e.Title = "Continued"
		}
		if start < end {
			e.Fields = fields[start:end]
		}
		embeds = append(embeds, e)

		if end >= len(fields) {
			break
		}
	}
	return embeds
}

// parseColor converts a "#rrggbb" string to Discord's integer color.
func parseColor(c string) int {
	c = strings.TrimPrefix(c, "#")
	v, err := strconv.ParseInt(c, 16, 32)
	if err != nil {
		return 0
	}
	return int(v)
}

type webhookPayload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []embed `json:"embeds"`
}

type embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []embedField `json:"fields,omitempty"`
	Footer      *embedFooter `json:"footer,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embedFooter struct {
	Text string `json:"text"`
}
