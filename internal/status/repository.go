// Package status tracks whether the daily advisory notification was
// already sent, keyed by date. The mapping is read and written as a whole
// document — there are no partial updates.
package status

import (
	"context"
	"time"
)

// DayKey formats a date as the store key.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Repository persists the date → notified mapping.
type Repository interface {
	// Sent reports whether the notification for the given day key was
	// already delivered.
	Sent(ctx context.Context, day string) (bool, error)

	// MarkSent records that the day's notification was delivered.
	MarkSent(ctx context.Context, day string) error
}
