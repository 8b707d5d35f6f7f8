package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	p := Defaults()

	assert.Equal(t, 25, p.FocusMinutes)
	assert.Equal(t, 5, p.ShortBreakMinutes)
	assert.Equal(t, 15, p.LongBreakMinutes)
	assert.Equal(t, 4, p.SessionsBeforeLongBreak)
	assert.Equal(t, "nature", p.AudioTrack)
	assert.Equal(t, 50, p.Volume)
	assert.Equal(t, "oak", p.TreeType)
	assert.Equal(t, 120, p.DailyFocusGoalMinutes)
	assert.Equal(t, 14, p.TrendsLookbackDays)
	assert.Equal(t, DefaultScoreWeights(), p.ScoreWeights)
	assert.NoError(t, p.Validate())
}

func TestValidate(t *testing.T) {
	p := Defaults()
	p.FocusMinutes = 0
	p.Volume = 101

	err := p.Validate()

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPreferencesInvalid)
	assert.Contains(t, err.Error(), "focus minutes")
	assert.Contains(t, err.Error(), "volume")
}

func TestParseScoreWeights(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want ScoreWeights
	}{
		{"empty", "", DefaultScoreWeights()},
		{"malformed", "{not json", DefaultScoreWeights()},
		{"missing key", `{"completion_rate":1,"sessions_completed":0}`, DefaultScoreWeights()},
		{"negative", `{"completion_rate":-1,"sessions_completed":1,"focus_duration":1}`, DefaultScoreWeights()},
		{"custom", `{"completion_rate":0.2,"sessions_completed":0.2,"focus_duration":0.6}`, ScoreWeights{0.2, 0.2, 0.6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseScoreWeights(tt.raw))
		})
	}
}

func TestSetAndGet(t *testing.T) {
	p := Defaults()

	require.NoError(t, p.Set("focus_minutes", "50"))
	require.NoError(t, p.Set("tree_type", "Sakura"))
	require.NoError(t, p.Set("productivity_score_weights", `{"completion_rate":1,"sessions_completed":0,"focus_duration":0}`))

	v, ok := p.Get("focus_minutes")
	assert.True(t, ok)
	assert.Equal(t, "50", v)
	assert.Equal(t, "sakura", p.TreeType)
	assert.Equal(t, 1.0, p.ScoreWeights.CompletionRate)

	assert.ErrorIs(t, p.Set("focus_minutes", "lots"), ErrPreferencesInvalid)
	assert.ErrorIs(t, p.Set("colour", "green"), ErrPreferencesInvalid)

	_, ok = p.Get("colour")
	assert.False(t, ok)
}

func TestBreakMinutes(t *testing.T) {
	p := Defaults()

	assert.Equal(t, 5, p.BreakMinutes(1))
	assert.Equal(t, 5, p.BreakMinutes(3))
	assert.Equal(t, 15, p.BreakMinutes(4))
	assert.Equal(t, 15, p.BreakMinutes(8))
	assert.Equal(t, 5, p.BreakMinutes(0))
}
