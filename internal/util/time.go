package util

import (
	"fmt"
	"sync"
	"time"
)

// TimestampFormat is the fixed-width UTC layout used for stored timestamps.
// Fixed width keeps lexical order equal to chronological order in SQLite.
const TimestampFormat = "2006-01-02T15:04:05.000000000Z"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock is a Clock backed by time.Now.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// ManualClock is a Clock that only moves when told to. Each call to Now
// advances by Step so consecutive reads stay strictly ordered.
type ManualClock struct {
	mu   sync.Mutex
	now  time.Time
	Step time.Duration
}

// NewManualClock creates a manual clock starting at the given time.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start.UTC(), Step: time.Millisecond}
}

// Now returns the current clock time and advances it by Step.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.Step)
	return t
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("cannot advance by negative duration %s", d)
	}
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
	return nil
}

// FormatTimestamp formats t for storage.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}

// ParseTimestamp parses a stored timestamp. RFC3339 values are accepted too.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(TimestampFormat, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

// FormatHours renders a duration in hours as a short human string.
func FormatHours(hours float64) string {
	switch {
	case hours < 1:
		return fmt.Sprintf("%.0fm", hours*60)
	case hours < 48:
		return fmt.Sprintf("%.1fh", hours)
	default:
		return fmt.Sprintf("%.1fd", hours/24)
	}
}

// RelativeTimeString returns a human-readable relative time string.
func RelativeTimeString(t time.Time, now time.Time) string {
	diff := now.Sub(t)

	if diff < 0 {
		return "now"
	}

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	default:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "yesterday"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}
