package reporter

import (
	"fmt"
	"time"
)

func roundDuration(dur time.Duration) time.Duration {
	if dur > time.Minute {
		return dur.Round(10 * time.Second)
	}
	if dur > time.Second {
		return dur.Round(10 * time.Millisecond)
	}
	if dur > time.Millisecond {
		return dur.Round(10 * time.Microsecond)
	}
	if dur > time.Microsecond {
		return dur.Round(10 * time.Nanosecond)
	}
	return dur
}

// formatMs renders a millisecond latency value with two decimals, matching
// the sub-millisecond precision of the measurements.
func formatMs(ms float64) string {
	return fmt.Sprintf("%.2fms", ms)
}
