package utils

import (
	"fmt"
	"strings"
	"time"
)

// FormatDurationMs renders a millisecond span as "1h 2m 3s", dropping
// leading zero components. Sub-second remainders round up so a live
// countdown never shows 0s while time remains.
func FormatDurationMs(ms int64) string {
	sec := (ms + 999) / 1000
	h := sec / 3600
	m := (sec % 3600) / 60
	s := sec % 60

	parts := make([]string, 0, 3)
	if h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if m > 0 || h > 0 {
		parts = append(parts, fmt.Sprintf("%dm", m))
	}
	parts = append(parts, fmt.Sprintf("%ds", s))
	return strings.Join(parts, " ")
}

// NowMs returns the current wall clock as epoch milliseconds.
func NowMs() int64 {
	return time.Now().UnixMilli()
}
