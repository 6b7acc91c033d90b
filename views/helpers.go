package views

import (
	"fmt"
	"html"
)

func esc(s string) string {
	return html.EscapeString(s)
}

// FormatSize renders a byte count for the media list.
func FormatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
