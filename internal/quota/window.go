package quota

import (
	"fmt"
	"time"

	"github.com/mvaldez/genstudio-backend/pkg/enums"
)

// WindowKind is a fixed-bucket accounting period.
type WindowKind string

const (
	WindowHour WindowKind = "hour"
	WindowDay  WindowKind = "day"
)

// bucketLabel renders the fixed-window bucket for the instant: "Y-M-D-H" for
// hourly windows, "Y-M-D" for daily ones. Buckets are fixed, not sliding, so
// bursts across a boundary are possible; that is accepted behavior.
func bucketLabel(kind WindowKind, at time.Time) string {
	at = at.UTC()
	switch kind {
	case WindowHour:
		return fmt.Sprintf("%d-%d-%d-%d", at.Year(), int(at.Month()), at.Day(), at.Hour())
	default:
		return fmt.Sprintf("%d-%d-%d", at.Year(), int(at.Month()), at.Day())
	}
}

// windowEnd returns the instant the current bucket closes.
func windowEnd(kind WindowKind, at time.Time) time.Time {
	at = at.UTC()
	switch kind {
	case WindowHour:
		return at.Truncate(time.Hour).Add(time.Hour)
	default:
		return time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	}
}

// counterKey renders the persisted key:
// ratelimit:{subject}:{resource}:{window}:{bucket}
func counterKey(subject string, resource enums.MediaType, kind WindowKind, at time.Time) string {
	return fmt.Sprintf("ratelimit:%s:%s:%s:%s", subject, resource, kind, bucketLabel(kind, at))
}
