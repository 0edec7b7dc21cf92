package workflow

import (
	"errors"
	"fmt"
	"time"

	"github.com/kiranshivaraju/shoptrack/pkg/models"
)

const secondsPerDay = 24 * 3600

// ErrBadLedger marks a history whose detained time cannot be trusted, e.g.
// an interval that ends before it starts. Callers surface it per row instead
// of failing the whole listing.
var ErrBadLedger = errors.New("status history is inconsistent")

// StaySentinel is the active-days value reported for a job whose history
// could not be evaluated.
const StaySentinel = -1

// ActiveDays returns the number of whole 24-hour periods a job has spent in
// the shop outside detained intervals. ref is the arrival timestamp when
// known, otherwise the order-creation timestamp; a zero ref yields 0.
// Both ends are compared in UTC.
func ActiveDays(ref time.Time, detained time.Duration, now time.Time) (int, error) {
	if ref.IsZero() {
		return 0, nil
	}
	if detained < 0 {
		return 0, fmt.Errorf("%w: negative detained time %s", ErrBadLedger, detained)
	}
	active := now.UTC().Sub(ref.UTC()) - detained
	if active <= 0 {
		return 0, nil
	}
	return int(active.Seconds()) / secondsPerDay, nil
}

// DetainedTime sums the spans of all detained intervals in a job's history.
// An open detained interval is measured up to now.
func DetainedTime(intervals []*models.StatusInterval, now time.Time) (time.Duration, error) {
	var total time.Duration
	for _, iv := range intervals {
		if Status(iv.Status) != StatusDetained {
			continue
		}
		end := now.UTC()
		if iv.EndedAt != nil {
			end = iv.EndedAt.UTC()
		}
		span := end.Sub(iv.StartedAt.UTC())
		if span < 0 {
			return 0, fmt.Errorf("%w: interval %s ends before it starts", ErrBadLedger, iv.ID)
		}
		total += span
	}
	return total, nil
}

// ReferenceStart picks the timestamp active-days counting starts from.
func ReferenceStart(arrivedAt *time.Time, createdAt time.Time) time.Time {
	if arrivedAt != nil {
		return *arrivedAt
	}
	return createdAt
}
