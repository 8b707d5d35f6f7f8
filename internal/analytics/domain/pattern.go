package domain

import (
	"fmt"
	"time"
)

// TimeRange is a block of whole hours, StartHour:00 through EndHour:59.
type TimeRange struct {
	StartHour int
	EndHour   int
}

// Contains reports whether t's hour lies inside the range.
func (r TimeRange) Contains(t time.Time) bool {
	h := t.Hour()
	return h >= r.StartHour && h <= r.EndHour
}

// String formats the range as "09:00 - 11:59".
func (r TimeRange) String() string {
	return fmt.Sprintf("%02d:00 - %02d:59", r.StartHour, r.EndHour)
}

// Label formats the range for sentences, e.g. "9:00 AM to 11:59 AM".
func (r TimeRange) Label() string {
	return clock12(r.StartHour, 0) + " to " + clock12(r.EndHour, 59)
}

// FocusPattern summarizes when and how a user focuses best.
type FocusPattern struct {
	OptimalTimeRanges     []TimeRange
	OptimalDuration       int    // minutes
	PreferredAudioTrack   string // empty when no track stands out
	AverageSessionsPerDay float64
	MostProductiveDay     time.Weekday
}

// HasEnoughData reports whether the pattern is worth personalizing on.
func (p FocusPattern) HasEnoughData() bool {
	return len(p.OptimalTimeRanges) > 0 && p.AverageSessionsPerDay > 0
}

// InOptimalRange reports whether t falls inside any optimal range.
func (p FocusPattern) InOptimalRange(t time.Time) bool {
	for _, r := range p.OptimalTimeRanges {
		if r.Contains(t) {
			return true
		}
	}
	return false
}

// FormatHour renders an hour of day as "9 AM" or "12 PM".
func FormatHour(hour int) string {
	h, suffix := twelveHour(hour)
	return fmt.Sprintf("%d %s", h, suffix)
}

func clock12(hour, minute int) string {
	h, suffix := twelveHour(hour)
	return fmt.Sprintf("%d:%02d %s", h, minute, suffix)
}

func twelveHour(hour int) (int, string) {
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	h := hour % 12
	if h == 0 {
		h = 12
	}
	return h, suffix
}
