package domain

import (
	"time"

	"github.com/google/uuid"
)

// TimerState is the state of the session timer.
type TimerState string

const (
	TimerIdle     TimerState = "idle"
	TimerRunning  TimerState = "running"
	TimerPaused   TimerState = "paused"
	TimerFinished TimerState = "finished"
)

// SyncStatus tells whether the session's writes reached the store.
type SyncStatus string

const (
	SyncSynced  SyncStatus = "synced"
	SyncPending SyncStatus = "pending"
	SyncFailed  SyncStatus = "failed"
)

// TimerInfo is the runtime snapshot of the timer, rebuilt on every tick.
type TimerInfo struct {
	Kind      SessionKind
	State     TimerState
	Total     time.Duration
	Remaining time.Duration
	Elapsed   time.Duration
	Progress  float64
	SessionID *uuid.UUID
	Sync      SyncStatus
	LastError string
}

// IdleTimerInfo returns the state of a timer with no session.
func IdleTimerInfo() TimerInfo {
	return TimerInfo{
		Kind:  SessionKindFocus,
		State: TimerIdle,
		Sync:  SyncSynced,
	}
}

// IsActive reports whether a session is running or paused.
func (i TimerInfo) IsActive() bool {
	return i.State == TimerRunning || i.State == TimerPaused
}

// Measure computes elapsed, remaining and progress for a session of length
// total that started at start and has been paused for paused in total.
func Measure(total time.Duration, start, now time.Time, paused time.Duration) (elapsed, remaining time.Duration, progress float64) {
	elapsed = now.Sub(start) - paused
	if elapsed < 0 {
		elapsed = 0
	}
	remaining = total - elapsed
	if remaining < 0 {
		remaining = 0
	}
	if total > 0 {
		progress = clamp01(float64(elapsed) / float64(total))
	}
	return elapsed, remaining, progress
}
