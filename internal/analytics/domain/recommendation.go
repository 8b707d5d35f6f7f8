package domain

import "time"

// Recommendation is advice for the current moment.
type Recommendation struct {
	Title            string
	Description      string
	Action           string
	SuggestedMinutes int
	Confidence       float64
}

// NextFocusTime suggests when to start the next focus session.
type NextFocusTime struct {
	At          time.Time
	Now         bool // the suggestion is to start immediately
	Confidence  float64
	Explanation string
}

// SessionSetup is a recommended session configuration.
type SessionSetup struct {
	FocusMinutes int
	BreakMinutes int
	AudioTrack   string
	Volume       int
	Explanation  string
}

// InsightType groups insights by what they describe.
type InsightType string

const (
	InsightTimePattern InsightType = "time_pattern"
	InsightDayPattern  InsightType = "day_pattern"
	InsightDuration    InsightType = "duration"
	InsightAudio       InsightType = "audio"
	InsightGeneral     InsightType = "general"
)

// Insight is a short observation about the user's focus habits.
type Insight struct {
	Title       string
	Description string
	Type        InsightType
}
