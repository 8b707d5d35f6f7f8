// Package domain holds the value objects produced by focus analytics. None
// of them are persisted; they are recomputed from session history.
package domain

import (
	"sort"
	"time"

	focusDomain "github.com/ogenrwotdaniel/focusflow/internal/focus/domain"
)

// DailyProductivity summarizes the focus sessions of one calendar day.
type DailyProductivity struct {
	Date              time.Time // midnight in the analysis location
	FocusMinutes      int       // minutes of completed focus sessions
	SessionsCompleted int
	SessionsTotal     int     // closed focus sessions, completed or abandoned
	CompletionRate    float64 // SessionsCompleted / SessionsTotal, 0..1
}

// DayStart returns midnight of t's calendar day in loc.
func DayStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	return DayStart(a, loc).Equal(DayStart(b, loc))
}

// BuildDailyProductivity groups closed focus sessions by calendar date in
// loc. Open sessions and breaks are ignored. The result is sorted oldest
// first and contains only days with at least one closed focus session.
func BuildDailyProductivity(sessions []*focusDomain.Session, loc *time.Location) []DailyProductivity {
	byDay := make(map[time.Time]*DailyProductivity)
	for _, s := range sessions {
		if s.IsOpen() || s.Kind != focusDomain.SessionKindFocus {
			continue
		}
		day := DayStart(s.StartTime, loc)
		d, ok := byDay[day]
		if !ok {
			d = &DailyProductivity{Date: day}
			byDay[day] = d
		}
		d.SessionsTotal++
		if s.Completed {
			d.SessionsCompleted++
			d.FocusMinutes += s.FocusMinutes()
		}
	}

	out := make([]DailyProductivity, 0, len(byDay))
	for _, d := range byDay {
		d.CompletionRate = float64(d.SessionsCompleted) / float64(d.SessionsTotal)
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
