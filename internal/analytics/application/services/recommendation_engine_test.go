package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogenrwotdaniel/focusflow/internal/analytics/domain"
	prefDomain "github.com/ogenrwotdaniel/focusflow/internal/preferences/domain"
)

func knownPattern() domain.FocusPattern {
	return domain.FocusPattern{
		OptimalTimeRanges:     []domain.TimeRange{{StartHour: 9, EndHour: 11}, {StartHour: 15, EndHour: 16}},
		OptimalDuration:       45,
		AverageSessionsPerDay: 2,
		MostProductiveDay:     time.Monday,
	}
}

func TestRecommendationEngine_ContextualRecommendation(t *testing.T) {
	engine := NewRecommendationEngine()

	t.Run("no data", func(t *testing.T) {
		rec := engine.ContextualRecommendation(domain.FocusPattern{}, at(0, 10))
		assert.Equal(t, "Build Your Focus Habit", rec.Title)
		assert.Equal(t, "Try a 25-minute focus session now.", rec.Action)
		assert.Equal(t, 25, rec.SuggestedMinutes)
		assert.InDelta(t, 0.5, rec.Confidence, 1e-9)
	})

	tests := []struct {
		name       string
		now        time.Time
		title      string
		minutes    int
		confidence float64
	}{
		{"optimal time on best day", at(0, 10), "Prime Focus Time", 45, 0.9},
		{"optimal time on another day", at(1, 10), "Good Focus Window", 45, 0.75},
		{"best day outside optimal time", at(0, 13), "Productive Day", 45, 0.7},
		{"neither", at(1, 13), "Focus Opportunity", 40, 0.6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := engine.ContextualRecommendation(knownPattern(), tt.now)
			assert.Equal(t, tt.title, rec.Title)
			assert.Equal(t, tt.minutes, rec.SuggestedMinutes)
			assert.InDelta(t, tt.confidence, rec.Confidence, 1e-9)
		})
	}

	t.Run("shorter session never drops below five minutes", func(t *testing.T) {
		pattern := knownPattern()
		pattern.OptimalDuration = 8
		rec := engine.ContextualRecommendation(pattern, at(1, 13))
		assert.Equal(t, 5, rec.SuggestedMinutes)
		assert.Equal(t, "Try a shorter session of 5 minutes.", rec.Action)
	})
}

func TestRecommendationEngine_NextOptimalFocusTime(t *testing.T) {
	engine := NewRecommendationEngine()

	t.Run("inside a range", func(t *testing.T) {
		now := at(1, 10).Add(20 * time.Minute)
		next := engine.NextOptimalFocusTime(knownPattern(), now)
		assert.True(t, next.Now)
		assert.Equal(t, now, next.At)
		assert.InDelta(t, 0.85, next.Confidence, 1e-9)
	})

	t.Run("later today", func(t *testing.T) {
		next := engine.NextOptimalFocusTime(knownPattern(), at(1, 13).Add(5*time.Minute))
		assert.False(t, next.Now)
		assert.Equal(t, at(1, 15), next.At)
		assert.InDelta(t, 0.8, next.Confidence, 1e-9)
	})

	t.Run("tomorrow", func(t *testing.T) {
		next := engine.NextOptimalFocusTime(knownPattern(), at(1, 18))
		assert.Equal(t, at(2, 9), next.At)
	})

	t.Run("no ranges", func(t *testing.T) {
		next := engine.NextOptimalFocusTime(domain.FocusPattern{}, at(1, 13).Add(25*time.Minute))
		assert.Equal(t, at(1, 14), next.At)
		assert.InDelta(t, 0.5, next.Confidence, 1e-9)
		assert.Equal(t, "We don't have enough data yet to determine your optimal focus time.", next.Explanation)
	})
}

func TestRecommendationEngine_SessionSetup(t *testing.T) {
	engine := NewRecommendationEngine()
	prefs := prefDomain.Defaults()
	prefs.Volume = 70

	t.Run("track from history", func(t *testing.T) {
		pattern := knownPattern()
		pattern.PreferredAudioTrack = "rain"

		setup := engine.SessionSetup(pattern, prefs)
		assert.Equal(t, 45, setup.FocusMinutes)
		assert.Equal(t, 8, setup.BreakMinutes)
		assert.Equal(t, "rain", setup.AudioTrack)
		assert.Equal(t, 70, setup.Volume)
		assert.Equal(t,
			"A 45-minute session aligns with your completion patterns. The 'rain' background sound has historically boosted your focus.",
			setup.Explanation)
	})

	t.Run("falls back to the preferred track", func(t *testing.T) {
		setup := engine.SessionSetup(domain.FocusPattern{}, prefs)
		assert.Equal(t, 25, setup.FocusMinutes)
		assert.Equal(t, 5, setup.BreakMinutes)
		assert.Equal(t, prefs.AudioTrack, setup.AudioTrack)
		assert.Contains(t, setup.Explanation, "Try different background sounds")
	})
}

func TestRecommendationEngine_Insights(t *testing.T) {
	engine := NewRecommendationEngine()

	t.Run("not enough data", func(t *testing.T) {
		insights := engine.Insights(domain.FocusPattern{})
		require.Len(t, insights, 1)
		assert.Equal(t, "Not Enough Data", insights[0].Title)
		assert.Equal(t, domain.InsightGeneral, insights[0].Type)
	})

	t.Run("full pattern", func(t *testing.T) {
		pattern := knownPattern()
		pattern.PreferredAudioTrack = "rain"

		insights := engine.Insights(pattern)
		require.Len(t, insights, 4)
		assert.Equal(t,
			"You tend to be most focused during: 9:00 AM to 11:59 AM, 3:00 PM to 4:59 PM",
			insights[0].Description)
		assert.Equal(t, "Monday Productivity", insights[1].Title)
		assert.Equal(t, domain.InsightDuration, insights[2].Type)
		assert.Equal(t, "The 'rain' sound correlates with your most productive sessions.", insights[3].Description)
	})

	t.Run("no audio insight without a track", func(t *testing.T) {
		assert.Len(t, engine.Insights(knownPattern()), 3)
	})
}

func TestBreakMinutesFor(t *testing.T) {
	tests := map[int]int{15: 5, 25: 5, 26: 8, 45: 8, 50: 10, 60: 10, 90: 15}
	for focus, want := range tests {
		assert.Equal(t, want, BreakMinutesFor(focus), "focus %d", focus)
	}
}
