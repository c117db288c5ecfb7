package utils

import "fmt"

// FormatDuration renders seconds as MM:SS, or HH:MM:SS for durations of an
// hour or more. Negative inputs render as 00:00.
func FormatDuration(seconds float64) string {
	if seconds < 0 {
		return "00:00"
	}
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
