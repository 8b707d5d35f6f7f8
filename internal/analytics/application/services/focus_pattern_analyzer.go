// Package services computes focus patterns, trends, streaks and
// recommendations from session history.
package services

import (
	"sort"
	"time"

	"github.com/ogenrwotdaniel/focusflow/internal/analytics/domain"
	focusDomain "github.com/ogenrwotdaniel/focusflow/internal/focus/domain"
)

// DefaultOptimalDuration is suggested when there is no history.
const DefaultOptimalDuration = 25

// FocusPatternAnalyzer derives a FocusPattern from closed focus sessions.
// Open sessions and breaks are always ignored.
type FocusPatternAnalyzer struct {
	loc *time.Location
}

// NewFocusPatternAnalyzer creates an analyzer that reads hours and dates in
// loc. A nil loc means time.Local.
func NewFocusPatternAnalyzer(loc *time.Location) *FocusPatternAnalyzer {
	if loc == nil {
		loc = time.Local
	}
	return &FocusPatternAnalyzer{loc: loc}
}

// Analyze combines the five individual analyses.
func (a *FocusPatternAnalyzer) Analyze(sessions []*focusDomain.Session) domain.FocusPattern {
	return domain.FocusPattern{
		OptimalTimeRanges:     a.OptimalTimeRanges(sessions),
		OptimalDuration:       a.OptimalSessionDuration(sessions),
		PreferredAudioTrack:   a.MostEffectiveAudioTrack(sessions),
		AverageSessionsPerDay: a.AverageSessionsPerActiveDay(sessions),
		MostProductiveDay:     a.MostProductiveDayOfWeek(sessions),
	}
}

// OptimalTimeRanges returns the hours whose mean rating is strictly above
// the mean of all hourly means, merged into consecutive ranges.
func (a *FocusPatternAnalyzer) OptimalTimeRanges(sessions []*focusDomain.Session) []domain.TimeRange {
	hourly := meanBy(rated(sessions), func(s *focusDomain.Session) int {
		return s.StartTime.In(a.loc).Hour()
	}, rating)
	if len(hourly) == 0 {
		return nil
	}

	var total float64
	for _, mean := range hourly {
		total += mean
	}
	overall := total / float64(len(hourly))

	var productive []int
	for hour, mean := range hourly {
		if mean > overall {
			productive = append(productive, hour)
		}
	}
	sort.Ints(productive)
	return MergeHours(productive)
}

// MergeHours merges sorted hours into ranges of consecutive hours.
func MergeHours(hours []int) []domain.TimeRange {
	if len(hours) == 0 {
		return nil
	}
	ranges := []domain.TimeRange{{StartHour: hours[0], EndHour: hours[0]}}
	for _, h := range hours[1:] {
		last := &ranges[len(ranges)-1]
		if h == last.EndHour+1 {
			last.EndHour = h
			continue
		}
		ranges = append(ranges, domain.TimeRange{StartHour: h, EndHour: h})
	}
	return ranges
}

// OptimalSessionDuration returns the planned length with the best
// completion rate times mean rating, or DefaultOptimalDuration.
func (a *FocusPatternAnalyzer) OptimalSessionDuration(sessions []*focusDomain.Session) int {
	type bucket struct {
		count, completed int
		ratingSum        float64
	}
	buckets := make(map[int]*bucket)
	for _, s := range focusOnly(sessions) {
		b, ok := buckets[s.PlannedMinutes]
		if !ok {
			b = &bucket{}
			buckets[s.PlannedMinutes] = b
		}
		b.count++
		b.ratingSum += s.ProductivityRating
		if s.Completed {
			b.completed++
		}
	}

	scores := make(map[int]float64, len(buckets))
	for minutes, b := range buckets {
		completionRate := float64(b.completed) / float64(b.count)
		scores[minutes] = completionRate * (b.ratingSum / float64(b.count))
	}
	if best, ok := argmax(scores); ok {
		return best
	}
	return DefaultOptimalDuration
}

// MostEffectiveAudioTrack returns the track with the highest mean rating,
// or "" when no rated session had a track.
func (a *FocusPatternAnalyzer) MostEffectiveAudioTrack(sessions []*focusDomain.Session) string {
	var withTrack []*focusDomain.Session
	for _, s := range rated(sessions) {
		if s.AudioTrack != nil && *s.AudioTrack != "" {
			withTrack = append(withTrack, s)
		}
	}
	means := meanBy(withTrack, func(s *focusDomain.Session) string { return *s.AudioTrack }, rating)

	best, bestMean, found := "", 0.0, false
	for track, mean := range means {
		if !found || mean > bestMean || (mean == bestMean && track < best) {
			best, bestMean, found = track, mean, true
		}
	}
	return best
}

// MostProductiveDayOfWeek returns the weekday with the highest mean rating,
// or Monday when there is no history.
func (a *FocusPatternAnalyzer) MostProductiveDayOfWeek(sessions []*focusDomain.Session) time.Weekday {
	means := meanBy(rated(sessions), func(s *focusDomain.Session) int {
		return isoWeekday(s.StartTime.In(a.loc).Weekday())
	}, rating)
	if best, ok := argmax(means); ok {
		return time.Weekday(best % 7)
	}
	return time.Monday
}

// AverageSessionsPerActiveDay averages completed focus sessions over the
// days that had at least one.
func (a *FocusPatternAnalyzer) AverageSessionsPerActiveDay(sessions []*focusDomain.Session) float64 {
	perDay := make(map[time.Time]int)
	for _, s := range focusOnly(sessions) {
		if s.Completed {
			perDay[domain.DayStart(s.StartTime, a.loc)]++
		}
	}
	if len(perDay) == 0 {
		return 0
	}
	var total int
	for _, n := range perDay {
		total += n
	}
	return float64(total) / float64(len(perDay))
}

func focusOnly(sessions []*focusDomain.Session) []*focusDomain.Session {
	out := make([]*focusDomain.Session, 0, len(sessions))
	for _, s := range sessions {
		if !s.IsOpen() && s.Kind == focusDomain.SessionKindFocus {
			out = append(out, s)
		}
	}
	return out
}

func rated(sessions []*focusDomain.Session) []*focusDomain.Session {
	out := focusOnly(sessions)
	n := 0
	for _, s := range out {
		if s.HasRating() {
			out[n] = s
			n++
		}
	}
	return out[:n]
}

func rating(s *focusDomain.Session) float64 { return s.ProductivityRating }

func meanBy[K comparable](sessions []*focusDomain.Session, key func(*focusDomain.Session) K, value func(*focusDomain.Session) float64) map[K]float64 {
	sums := make(map[K]float64)
	counts := make(map[K]int)
	for _, s := range sessions {
		k := key(s)
		sums[k] += value(s)
		counts[k]++
	}
	for k := range sums {
		sums[k] /= float64(counts[k])
	}
	return sums
}

// argmax returns the key with the largest value; ties go to the smaller key.
func argmax(values map[int]float64) (int, bool) {
	keys := make([]int, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return 0, false
	}
	sort.Ints(keys)
	best := keys[0]
	for _, k := range keys[1:] {
		if values[k] > values[best] {
			best = k
		}
	}
	return best, true
}

// isoWeekday maps Monday..Sunday to 1..7.
func isoWeekday(d time.Weekday) int {
	if d == time.Sunday {
		return 7
	}
	return int(d)
}
