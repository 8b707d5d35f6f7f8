package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/ogenrwotdaniel/focusflow/internal/analytics/domain"
	prefDomain "github.com/ogenrwotdaniel/focusflow/internal/preferences/domain"
)

// Confidence levels of the recommendation decision table.
const (
	confidenceGeneric     = 0.5
	confidencePrime       = 0.9
	confidenceOptimalTime = 0.75
	confidenceBestDay     = 0.7
	confidenceAnyTime     = 0.6
	confidenceStartNow    = 0.85
	confidenceNextRange   = 0.8
)

// RecommendationEngine turns a FocusPattern into advice. It holds no state.
type RecommendationEngine struct{}

// NewRecommendationEngine creates a recommendation engine.
func NewRecommendationEngine() *RecommendationEngine {
	return &RecommendationEngine{}
}

// ContextualRecommendation advises on focusing at now.
func (e *RecommendationEngine) ContextualRecommendation(p domain.FocusPattern, now time.Time) domain.Recommendation {
	if !p.HasEnoughData() {
		return domain.Recommendation{
			Title:            "Build Your Focus Habit",
			Description:      "Complete more focus sessions to get personalized recommendations.",
			Action:           fmt.Sprintf("Try a %d-minute focus session now.", DefaultOptimalDuration),
			SuggestedMinutes: DefaultOptimalDuration,
			Confidence:       confidenceGeneric,
		}
	}

	optimalTime := p.InOptimalRange(now)
	bestDay := now.Weekday() == p.MostProductiveDay

	switch {
	case optimalTime && bestDay:
		return domain.Recommendation{
			Title:            "Prime Focus Time",
			Description:      "This is one of your most productive times on your best day!",
			Action:           fmt.Sprintf("Start a %d-minute focus session to maximize productivity.", p.OptimalDuration),
			SuggestedMinutes: p.OptimalDuration,
			Confidence:       confidencePrime,
		}
	case optimalTime:
		return domain.Recommendation{
			Title:            "Good Focus Window",
			Description:      "This time of day typically works well for your focus sessions.",
			Action:           fmt.Sprintf("Consider a %d-minute session now.", p.OptimalDuration),
			SuggestedMinutes: p.OptimalDuration,
			Confidence:       confidenceOptimalTime,
		}
	case bestDay:
		return domain.Recommendation{
			Title:            "Productive Day",
			Description:      "Today is typically one of your more productive days.",
			Action:           "Even though it's not your optimal time, a focus session could be effective.",
			SuggestedMinutes: p.OptimalDuration,
			Confidence:       confidenceBestDay,
		}
	default:
		shorter := max(p.OptimalDuration-5, 5)
		return domain.Recommendation{
			Title:            "Focus Opportunity",
			Description:      "While not your optimal time, any focused work builds the habit.",
			Action:           fmt.Sprintf("Try a shorter session of %d minutes.", shorter),
			SuggestedMinutes: shorter,
			Confidence:       confidenceAnyTime,
		}
	}
}

// NextOptimalFocusTime suggests now when inside an optimal range, otherwise
// the start of the next range today or the first range tomorrow. Without
// ranges it suggests the top of the next hour.
func (e *RecommendationEngine) NextOptimalFocusTime(p domain.FocusPattern, now time.Time) domain.NextFocusTime {
	ranges := p.OptimalTimeRanges
	if len(ranges) == 0 {
		return domain.NextFocusTime{
			At:          now.Truncate(time.Hour).Add(time.Hour),
			Confidence:  confidenceGeneric,
			Explanation: "We don't have enough data yet to determine your optimal focus time.",
		}
	}
	if p.InOptimalRange(now) {
		return domain.NextFocusTime{
			At:          now,
			Now:         true,
			Confidence:  confidenceStartNow,
			Explanation: "You're currently in one of your optimal focus periods.",
		}
	}

	next, day := ranges[0], now.AddDate(0, 0, 1)
	for _, r := range ranges {
		if r.StartHour > now.Hour() {
			next, day = r, now
			break
		}
	}
	return domain.NextFocusTime{
		At:          time.Date(day.Year(), day.Month(), day.Day(), next.StartHour, 0, 0, 0, now.Location()),
		Confidence:  confidenceNextRange,
		Explanation: "Based on your history, this is when you tend to be most focused.",
	}
}

// SessionSetup recommends a session configuration. The audio track falls
// back to the user's preference when no track stands out.
func (e *RecommendationEngine) SessionSetup(p domain.FocusPattern, prefs prefDomain.Preferences) domain.SessionSetup {
	duration := p.OptimalDuration
	if duration <= 0 {
		duration = DefaultOptimalDuration
	}

	track := p.PreferredAudioTrack
	trackText := fmt.Sprintf("The '%s' background sound has historically boosted your focus.", track)
	if track == "" {
		track = prefs.AudioTrack
		trackText = "Try different background sounds to find what works best for you."
	}

	return domain.SessionSetup{
		FocusMinutes: duration,
		BreakMinutes: BreakMinutesFor(duration),
		AudioTrack:   track,
		Volume:       prefs.Volume,
		Explanation: fmt.Sprintf("A %d-minute session aligns with your completion patterns. %s",
			duration, trackText),
	}
}

// Insights explains the pattern. Without enough data it returns a single
// general insight.
func (e *RecommendationEngine) Insights(p domain.FocusPattern) []domain.Insight {
	if !p.HasEnoughData() {
		return []domain.Insight{{
			Title:       "Not Enough Data",
			Description: "Complete more focus sessions to unlock personalized insights.",
			Type:        domain.InsightGeneral,
		}}
	}

	labels := make([]string, len(p.OptimalTimeRanges))
	for i, r := range p.OptimalTimeRanges {
		labels[i] = r.Label()
	}
	day := p.MostProductiveDay.String()

	insights := []domain.Insight{
		{
			Title:       "Your Productivity Peaks",
			Description: "You tend to be most focused during: " + strings.Join(labels, ", "),
			Type:        domain.InsightTimePattern,
		},
		{
			Title:       day + " Productivity",
			Description: fmt.Sprintf("Your focus sessions tend to be most effective on %s.", day),
			Type:        domain.InsightDayPattern,
		},
		{
			Title:       "Optimal Session Length",
			Description: fmt.Sprintf("You complete more sessions successfully when they're %d minutes long.", p.OptimalDuration),
			Type:        domain.InsightDuration,
		},
	}
	if p.PreferredAudioTrack != "" {
		insights = append(insights, domain.Insight{
			Title:       "Effective Background Sound",
			Description: fmt.Sprintf("The '%s' sound correlates with your most productive sessions.", p.PreferredAudioTrack),
			Type:        domain.InsightAudio,
		})
	}
	return insights
}

// BreakMinutesFor returns the break that suits a focus session length.
func BreakMinutesFor(focusMinutes int) int {
	switch {
	case focusMinutes <= 25:
		return 5
	case focusMinutes <= 45:
		return 8
	case focusMinutes <= 60:
		return 10
	default:
		return 15
	}
}
