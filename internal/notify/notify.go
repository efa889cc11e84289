// Package notify defines the structured notification model and the
// template registry mapping advisory outcomes to rendered messages. The
// core never talks to the chat channel directly, only through the
// Notifier interface.
package notify

import (
	"context"
	"strings"
)

// Field is one ordered name/value pair in a message.
type Field struct {
	Name  string
	Value string
}

// Message is a structured notification. The sink may truncate oversized
// content to fit external limits.
type Message struct {
	Title       string
	Description string
	Fields      []Field
	Color       string
	Mention     bool
}

// Notifier delivers structured messages to an external channel.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// Kind identifies a notification template.
type Kind string

// Notification kinds emitted by the advisor.
const (
	KindSystemStart      Kind = "system_start"
	KindUpdateAvailable  Kind = "update_available"
	KindBestDeparture    Kind = "best_departure"
	KindNoDeparture      Kind = "no_departure_found"
	KindNoRoundTrip      Kind = "no_round_trip"
	KindRoundTrip        Kind = "round_trip"
	KindForecastAPIError Kind = "forecast_api_error"
)

// template carries per-kind defaults. A message's own title/description,
// when set, override the template's.
type template struct {
	title       string
	description string
	color       string
	mention     bool
}

var templates = map[Kind]template{
	KindSystemStart: {
		title:       "Ridecast Started",
		description: "The departure advisor has started successfully.",
		color:       "#0dcaf0",
	},
	KindUpdateAvailable: {
		title:       "New Version Available",
		description: "A new version of the departure advisor is available. Please update.",
		color:       "#ffc107",
	},
	KindBestDeparture: {
		title:       "Optimal Departure Forecast",
		description: "Here is the detailed weather analysis to help you choose the best time to ride today.",
		color:       "#0dcaf0",
		mention:     true,
	},
	KindNoDeparture: {
		title:       "No Acceptable Departure",
		description: "No departure slot in the evaluation window passes the acceptance threshold.",
		color:       "#dc3545",
		mention:     true,
	},
	KindNoRoundTrip: {
		title:       "No Viable Round Trip",
		description: "No gear level yields an acceptable departure for both legs of the commute.",
		color:       "#dc3545",
		mention:     true,
	},
	KindRoundTrip: {
		title:       "Round-trip Forecast",
		description: "Here is the round-trip weather forecast for today.",
		color:       "#0dcaf0",
		mention:     true,
	},
	KindForecastAPIError: {
		title:       "Forecast API Error",
		description: "Error fetching forecast data.",
		color:       "#dc3545",
	},
}

// Compose merges a message with its kind's template: empty title,
// description or color fall back to the template, the mention policy
// always comes from the template.
func Compose(kind Kind, msg Message) Message {
	tpl, ok := templates[kind]
	if !ok {
		return msg
	}
	if msg.Title == "" {
		msg.Title = tpl.title
	}
	if msg.Description == "" {
		msg.Description = tpl.description
	}
	if msg.Color == "" {
		msg.Color = tpl.color
	}
	msg.Mention = tpl.mention
	return msg
}

// SmartTruncate shortens text to at most max characters, cutting at the
// last whitespace before the limit so words stay whole, and appends an
// ellipsis.
func SmartTruncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	truncated := string(runes[:max])
	if i := strings.LastIndex(truncated, " "); i > 0 {
		truncated = truncated[:i]
	}
	return strings.TrimRight(truncated, " ") + "..."
}
