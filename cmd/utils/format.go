package utils

import (
	"fmt"
	"time"
)

// FormatBytes renders a file size with binary units, e.g. "1.5 MB".
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	units := []string{"KB", "MB", "GB", "TB"}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit && exp < len(units)-1; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), units[exp])
}

// FormatElapsed renders how long a request took: "850ms", "4.2s", "2m 5s".
func FormatElapsed(d time.Duration) string {
	switch {
	case d < 0:
		return "unknown"
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		mins := int(d / time.Minute)
		secs := int((d % time.Minute) / time.Second)
		if secs == 0 {
			return fmt.Sprintf("%dm", mins)
		}
		return fmt.Sprintf("%dm %ds", mins, secs)
	}
}

// IconForCheck summarises one probe check: answered 2xx, answered with an
// error status, or never answered.
func IconForCheck(reachable, ok bool) string {
	switch {
	case ok:
		return "✅"
	case reachable:
		return "⚠️ "
	default:
		return "❌"
	}
}
