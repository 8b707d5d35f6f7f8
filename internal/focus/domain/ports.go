package domain

import (
	"context"
	"time"
)

// Notifier receives timer lifecycle notifications. Calls are fire-and-forget:
// implementations must not block the timer and report their own failures.
type Notifier interface {
	OnSessionStarted(ctx context.Context, session *Session)
	OnSessionPaused(ctx context.Context, session *Session)
	OnSessionResumed(ctx context.Context, session *Session)
	OnSessionCompleted(ctx context.Context, session *Session)
	OnSessionAbandoned(ctx context.Context, session *Session)
	OnBreakEndingSoon(ctx context.Context, session *Session, remaining time.Duration)
	OnTreeGrowthChanged(ctx context.Context, tree *Tree, previous GrowthStage)
	OnMotivationalMessage(ctx context.Context, text string)
}

// AudioControl drives background sound during focus sessions.
type AudioControl interface {
	Start(ctx context.Context, track string)
	Pause(ctx context.Context)
	Resume(ctx context.Context)
	Stop(ctx context.Context)
}

// NopNotifier discards every notification.
type NopNotifier struct{}

func (NopNotifier) OnSessionStarted(context.Context, *Session)                 {}
func (NopNotifier) OnSessionPaused(context.Context, *Session)                  {}
func (NopNotifier) OnSessionResumed(context.Context, *Session)                 {}
func (NopNotifier) OnSessionCompleted(context.Context, *Session)               {}
func (NopNotifier) OnSessionAbandoned(context.Context, *Session)               {}
func (NopNotifier) OnBreakEndingSoon(context.Context, *Session, time.Duration) {}
func (NopNotifier) OnTreeGrowthChanged(context.Context, *Tree, GrowthStage)    {}
func (NopNotifier) OnMotivationalMessage(context.Context, string)              {}

// NopAudio ignores audio commands.
type NopAudio struct{}

func (NopAudio) Start(context.Context, string) {}
func (NopAudio) Pause(context.Context)         {}
func (NopAudio) Resume(context.Context)        {}
func (NopAudio) Stop(context.Context)          {}
