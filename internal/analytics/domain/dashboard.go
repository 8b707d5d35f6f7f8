package domain

import "time"

// NotEnoughData is shown in place of a time of day when a period is empty.
const NotEnoughData = "Not enough data"

// ProductivityMetrics summarizes the focus sessions of one period.
type ProductivityMetrics struct {
	Label                 string
	TotalSessions         int
	CompletedSessions     int
	CompletionRate        float64 // percent, 0..100
	FocusMinutes          int
	AverageSessionMinutes int
	AverageRating         float64
	MostProductiveTime    string
	LeastInterruptedTime  string
}

// TimeBucket counts sessions started in one part of the day.
type TimeBucket struct {
	Label string
	Count int
}

// OptimalHour is an hour of day ranked by completion rate times rating.
type OptimalHour struct {
	Hour  int
	Label string
	Score float64 // 0..10
}

// Dashboard is the combined productivity overview.
type Dashboard struct {
	GeneratedAt       time.Time
	Daily             ProductivityMetrics
	Weekly            ProductivityMetrics
	Monthly           ProductivityMetrics
	CurrentStreak     int
	ProductivityScore int
	Distribution      []TimeBucket
	OptimalHours      []OptimalHour
	TopInsights       []Insight
	Error             string // set when the history could not be read
}

// bucket boundaries: the start hour of each labelled part of the day
var distributionBuckets = []struct {
	label string
	from  int
	to    int // exclusive
}{
	{"Early Morning (5-8 AM)", 5, 8},
	{"Morning (8-11 AM)", 8, 11},
	{"Midday (11 AM-2 PM)", 11, 14},
	{"Afternoon (2-5 PM)", 14, 17},
	{"Evening (5-8 PM)", 17, 20},
	{"Night (8-11 PM)", 20, 23},
	{"Late Night (11 PM-5 AM)", 23, 29},
}

// EmptyDistribution returns the seven buckets with zero counts.
func EmptyDistribution() []TimeBucket {
	out := make([]TimeBucket, len(distributionBuckets))
	for i, b := range distributionBuckets {
		out[i] = TimeBucket{Label: b.label}
	}
	return out
}

// BucketIndex returns the distribution bucket for an hour of day.
func BucketIndex(hour int) int {
	if hour < 5 {
		hour += 24
	}
	for i, b := range distributionBuckets {
		if hour >= b.from && hour < b.to {
			return i
		}
	}
	return len(distributionBuckets) - 1
}
