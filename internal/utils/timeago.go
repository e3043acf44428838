package utils

import (
	"fmt"
	"time"
)

// TimeAgo formats t relative to now, e.g. "3분 전".
func TimeAgo(t, now time.Time) string {
	seconds := int(now.Sub(t).Seconds())
	if seconds < 0 {
		seconds = 0
	}

	switch {
	case seconds < 60:
		return "방금 전"
	case seconds < 3600:
		return fmt.Sprintf("%d분 전", seconds/60)
	case seconds < 86400:
		return fmt.Sprintf("%d시간 전", seconds/3600)
	case seconds < 2592000:
		return fmt.Sprintf("%d일 전", seconds/86400)
	case seconds < 31536000:
		return fmt.Sprintf("%d개월 전", seconds/2592000)
	}
	return fmt.Sprintf("%d년 전", seconds/31536000)
}
