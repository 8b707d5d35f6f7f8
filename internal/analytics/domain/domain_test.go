package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	focusDomain "github.com/ogenrwotdaniel/focusflow/internal/focus/domain"
)

func session(kind focusDomain.SessionKind, start time.Time, minutes int, completed bool) *focusDomain.Session {
	end := start.Add(time.Duration(minutes) * time.Minute)
	return &focusDomain.Session{
		ID:             uuid.New(),
		Kind:           kind,
		PlannedMinutes: minutes,
		StartTime:      start,
		EndTime:        &end,
		Completed:      completed,
	}
}

func TestBuildDailyProductivity(t *testing.T) {
	day1 := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	open := session(focusDomain.SessionKindFocus, day2, 25, false)
	open.EndTime = nil

	sessions := []*focusDomain.Session{
		session(focusDomain.SessionKindFocus, day2, 50, true),
		session(focusDomain.SessionKindFocus, day1, 25, true),
		session(focusDomain.SessionKindFocus, day1.Add(time.Hour), 25, false),
		session(focusDomain.SessionKindBreak, day1.Add(2*time.Hour), 5, true),
		open,
	}

	daily := BuildDailyProductivity(sessions, time.UTC)
	require.Len(t, daily, 2)

	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), daily[0].Date)
	assert.Equal(t, 25, daily[0].FocusMinutes)
	assert.Equal(t, 1, daily[0].SessionsCompleted)
	assert.Equal(t, 2, daily[0].SessionsTotal)
	assert.InDelta(t, 0.5, daily[0].CompletionRate, 1e-9)

	assert.Equal(t, 50, daily[1].FocusMinutes)
	assert.InDelta(t, 1.0, daily[1].CompletionRate, 1e-9)
}

func TestBuildDailyProductivity_ExcludesPausedTime(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	s, err := focusDomain.NewSession(focusDomain.SessionKindFocus, 25, start)
	require.NoError(t, err)
	s.RecordPauses(time.Hour)
	require.NoError(t, s.Finish(start.Add(85*time.Minute), true))

	daily := BuildDailyProductivity([]*focusDomain.Session{s}, time.UTC)

	require.Len(t, daily, 1)
	assert.Equal(t, 25, daily[0].FocusMinutes)
}

func TestBuildDailyProductivity_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	late := time.Date(2026, 3, 2, 22, 30, 0, 0, time.UTC) // 01:30 on Mar 3 in loc

	daily := BuildDailyProductivity([]*focusDomain.Session{
		session(focusDomain.SessionKindFocus, late, 25, true),
	}, loc)

	require.Len(t, daily, 1)
	assert.Equal(t, 3, daily[0].Date.Day())
	assert.True(t, SameDay(late, time.Date(2026, 3, 3, 12, 0, 0, 0, loc), loc))
}

func TestBuildDailyProductivity_Empty(t *testing.T) {
	assert.Empty(t, BuildDailyProductivity(nil, time.UTC))
}

func TestTimeRange(t *testing.T) {
	r := TimeRange{StartHour: 9, EndHour: 11}

	assert.Equal(t, "09:00 - 11:59", r.String())
	assert.Equal(t, "9:00 AM to 11:59 AM", r.Label())
	assert.True(t, r.Contains(time.Date(2026, 3, 2, 11, 59, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, "12:00 PM to 12:59 AM", TimeRange{StartHour: 12, EndHour: 0}.Label())
}

func TestFormatHour(t *testing.T) {
	tests := map[int]string{0: "12 AM", 9: "9 AM", 12: "12 PM", 15: "3 PM", 23: "11 PM"}
	for hour, want := range tests {
		assert.Equal(t, want, FormatHour(hour), "hour %d", hour)
	}
}

func TestFocusPattern_HasEnoughData(t *testing.T) {
	assert.False(t, FocusPattern{}.HasEnoughData())
	assert.False(t, FocusPattern{OptimalTimeRanges: []TimeRange{{9, 10}}}.HasEnoughData())
	assert.True(t, FocusPattern{
		OptimalTimeRanges:     []TimeRange{{9, 10}},
		AverageSessionsPerDay: 1,
	}.HasEnoughData())
}

func TestBucketIndex(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{5, "Early Morning (5-8 AM)"},
		{8, "Morning (8-11 AM)"},
		{13, "Midday (11 AM-2 PM)"},
		{16, "Afternoon (2-5 PM)"},
		{19, "Evening (5-8 PM)"},
		{22, "Night (8-11 PM)"},
		{23, "Late Night (11 PM-5 AM)"},
		{0, "Late Night (11 PM-5 AM)"},
		{4, "Late Night (11 PM-5 AM)"},
	}
	buckets := EmptyDistribution()
	require.Len(t, buckets, 7)
	for _, tt := range tests {
		assert.Equal(t, tt.want, buckets[BucketIndex(tt.hour)].Label, "hour %d", tt.hour)
	}
}
