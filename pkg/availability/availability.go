// Package availability computes which parking spots are free on a given day.
package availability

import (
	"time"

	"github.com/parkit/parkmock/pkg/store"
)

// Options adjusts how availability is computed.
type Options struct {
	// ExcludeCancelled skips cancelled reservations in the overlap check.
	// The default (false) matches the production contract: cancelled
	// reservations still block a spot until product decides otherwise.
	ExcludeCancelled bool
}

// DayWindow returns the inclusive UTC window covering the calendar day of d:
// 00:00:00.000 through 23:59:59.999. Day boundaries are always UTC so
// results do not shift with the host timezone.
func DayWindow(d time.Time) (start, end time.Time) {
	d = d.UTC()
	start = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	end = start.Add(24*time.Hour - time.Millisecond)
	return start, end
}

// Overlaps reports whether the intervals [aStart, aEnd] and [bStart, bEnd]
// share at least one instant. Bounds are inclusive, so a degenerate
// interval (start == end) still overlaps at that boundary instant.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	within := func(t, lo, hi time.Time) bool {
		return !t.Before(lo) && !t.After(hi)
	}
	return within(aStart, bStart, bEnd) ||
		within(aEnd, bStart, bEnd) ||
		(!aStart.After(bStart) && !aEnd.Before(bEnd))
}

// AvailableSpots returns the subset of spots with no reservation whose
// interval intersects the UTC day window of day. A reservation spanning
// midnight blocks both adjacent days.
//
// Linear in spots times reservations; fine at mock scale.
func AvailableSpots(spots []store.ParkingSpot, reservations []store.Reservation, day time.Time, opts Options) []store.ParkingSpot {
	dayStart, dayEnd := DayWindow(day)

	available := make([]store.ParkingSpot, 0, len(spots))
	for _, spot := range spots {
		blocked := false
		for _, r := range reservations {
			if r.ParkingSpotID != spot.ID {
				continue
			}
			if opts.ExcludeCancelled && r.Cancelled {
				continue
			}
			if Overlaps(dayStart, dayEnd, r.StartTime, r.EndTime) {
				blocked = true
				break
			}
		}
		if !blocked {
			available = append(available, spot)
		}
	}
	return available
}
