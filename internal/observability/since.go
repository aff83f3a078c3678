package observability

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultMetricsWindow is the metrics window used when none is given.
const DefaultMetricsWindow = "7d"

// ParseSince parses a human-friendly window like "7d", "30d" or "24h" and
// returns the corresponding time before now. An empty string means
// DefaultMetricsWindow.
func ParseSince(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = DefaultMetricsWindow
	}
	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	num, err := strconv.Atoi(s[:len(s)-1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if num < 0 {
		return time.Time{}, fmt.Errorf("invalid duration %q: must not be negative", s)
	}

	switch s[len(s)-1] {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration format %q (use e.g. 7d, 30d, 24h)", s)
	}
}
