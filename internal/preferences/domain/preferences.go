// Package domain defines user preferences for sessions, audio and analytics.
package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrPreferencesInvalid wraps every validation failure.
var ErrPreferencesInvalid = errors.New("invalid preferences")

// ScoreWeights weigh the components of the overall productivity trend.
type ScoreWeights struct {
	CompletionRate    float64 `json:"completion_rate"`
	SessionsCompleted float64 `json:"sessions_completed"`
	FocusDuration     float64 `json:"focus_duration"`
}

// DefaultScoreWeights returns the 0.5/0.3/0.2 weighting.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{CompletionRate: 0.5, SessionsCompleted: 0.3, FocusDuration: 0.2}
}

// ParseScoreWeights decodes the JSON form. Malformed input, missing keys
// or negative weights fall back to the defaults.
func ParseScoreWeights(raw string) ScoreWeights {
	if strings.TrimSpace(raw) == "" {
		return DefaultScoreWeights()
	}
	var parsed map[string]float64
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return DefaultScoreWeights()
	}
	w := ScoreWeights{}
	var ok [3]bool
	w.CompletionRate, ok[0] = parsed["completion_rate"]
	w.SessionsCompleted, ok[1] = parsed["sessions_completed"]
	w.FocusDuration, ok[2] = parsed["focus_duration"]
	if !ok[0] || !ok[1] || !ok[2] || w.CompletionRate < 0 || w.SessionsCompleted < 0 || w.FocusDuration < 0 {
		return DefaultScoreWeights()
	}
	return w
}

// String renders the weights as JSON.
func (w ScoreWeights) String() string {
	b, _ := json.Marshal(w)
	return string(b)
}

// Preferences holds every user-tunable setting.
type Preferences struct {
	FocusMinutes            int          `json:"focus_minutes"`
	ShortBreakMinutes       int          `json:"short_break_minutes"`
	LongBreakMinutes        int          `json:"long_break_minutes"`
	SessionsBeforeLongBreak int          `json:"sessions_before_long_break"`
	AudioTrack              string       `json:"audio_track"`
	Volume                  int          `json:"volume"`
	TreeType                string       `json:"tree_type"`
	DailyFocusGoalMinutes   int          `json:"daily_focus_goal_minutes"`
	TrendsLookbackDays      int          `json:"trends_lookback_days"`
	ScoreWeights            ScoreWeights `json:"productivity_score_weights"`
}

// Defaults returns the out-of-the-box preferences.
func Defaults() Preferences {
	return Preferences{
		FocusMinutes:            25,
		ShortBreakMinutes:       5,
		LongBreakMinutes:        15,
		SessionsBeforeLongBreak: 4,
		AudioTrack:              "nature",
		Volume:                  50,
		TreeType:                "oak",
		DailyFocusGoalMinutes:   120,
		TrendsLookbackDays:      14,
		ScoreWeights:            DefaultScoreWeights(),
	}
}

// Validate checks ranges and returns every problem at once.
func (p Preferences) Validate() error {
	var errs []error
	if p.FocusMinutes <= 0 || p.FocusMinutes > 240 {
		errs = append(errs, fmt.Errorf("%w: focus minutes must be between 1 and 240", ErrPreferencesInvalid))
	}
	if p.ShortBreakMinutes <= 0 || p.ShortBreakMinutes > 60 {
		errs = append(errs, fmt.Errorf("%w: short break minutes must be between 1 and 60", ErrPreferencesInvalid))
	}
	if p.LongBreakMinutes <= 0 || p.LongBreakMinutes > 120 {
		errs = append(errs, fmt.Errorf("%w: long break minutes must be between 1 and 120", ErrPreferencesInvalid))
	}
	if p.SessionsBeforeLongBreak <= 0 {
		errs = append(errs, fmt.Errorf("%w: sessions before long break must be positive", ErrPreferencesInvalid))
	}
	if p.Volume < 0 || p.Volume > 100 {
		errs = append(errs, fmt.Errorf("%w: volume must be between 0 and 100", ErrPreferencesInvalid))
	}
	if p.DailyFocusGoalMinutes <= 0 {
		errs = append(errs, fmt.Errorf("%w: daily focus goal must be positive", ErrPreferencesInvalid))
	}
	if p.TrendsLookbackDays <= 0 {
		errs = append(errs, fmt.Errorf("%w: trends lookback days must be positive", ErrPreferencesInvalid))
	}
	w := p.ScoreWeights
	if w.CompletionRate < 0 || w.SessionsCompleted < 0 || w.FocusDuration < 0 {
		errs = append(errs, fmt.Errorf("%w: score weights must not be negative", ErrPreferencesInvalid))
	}
	return errors.Join(errs...)
}

// BreakMinutes returns the break length that follows the given number of
// completed focus sessions.
func (p Preferences) BreakMinutes(completedFocusSessions int) int {
	if p.SessionsBeforeLongBreak > 0 && completedFocusSessions > 0 &&
		completedFocusSessions%p.SessionsBeforeLongBreak == 0 {
		return p.LongBreakMinutes
	}
	return p.ShortBreakMinutes
}

// PreferenceStore reads and writes the preference document.
type PreferenceStore interface {
	// Get returns the stored preferences, or the store's defaults when
	// nothing has been saved yet.
	Get(ctx context.Context) (Preferences, error)

	// Save validates and stores the preferences.
	Save(ctx context.Context, prefs Preferences) error
}

// Keys lists the names accepted by Set, in display order.
var Keys = []string{
	"focus_minutes",
	"short_break_minutes",
	"long_break_minutes",
	"sessions_before_long_break",
	"audio_track",
	"volume",
	"tree_type",
	"daily_focus_goal_minutes",
	"trends_lookback_days",
	"productivity_score_weights",
}

// Set assigns one preference from its string form. The result is not
// validated; call Validate before saving.
func (p *Preferences) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "audio_track":
		p.AudioTrack = value
		return nil
	case "tree_type":
		p.TreeType = strings.ToLower(value)
		return nil
	case "productivity_score_weights":
		var w ScoreWeights
		if err := json.Unmarshal([]byte(value), &w); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrPreferencesInvalid, key, err)
		}
		p.ScoreWeights = w
		return nil
	}

	target := p.intField(key)
	if target == nil {
		return fmt.Errorf("%w: unknown key %q", ErrPreferencesInvalid, key)
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%w: %s must be a whole number", ErrPreferencesInvalid, key)
	}
	*target = n
	return nil
}

// Get returns one preference in the string form accepted by Set.
func (p Preferences) Get(key string) (string, bool) {
	switch key {
	case "audio_track":
		return p.AudioTrack, true
	case "tree_type":
		return p.TreeType, true
	case "productivity_score_weights":
		return p.ScoreWeights.String(), true
	}
	if target := p.intField(key); target != nil {
		return strconv.Itoa(*target), true
	}
	return "", false
}

func (p *Preferences) intField(key string) *int {
	switch key {
	case "focus_minutes":
		return &p.FocusMinutes
	case "short_break_minutes":
		return &p.ShortBreakMinutes
	case "long_break_minutes":
		return &p.LongBreakMinutes
	case "sessions_before_long_break":
		return &p.SessionsBeforeLongBreak
	case "volume":
		return &p.Volume
	case "daily_focus_goal_minutes":
		return &p.DailyFocusGoalMinutes
	case "trends_lookback_days":
		return &p.TrendsLookbackDays
	}
	return nil
}
