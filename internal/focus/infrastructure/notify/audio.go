package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ogenrwotdaniel/focusflow/pkg/observability"
)

// LoggingAudio implements domain.AudioControl for a terminal: it records
// the playing track and logs transitions instead of producing sound.
type LoggingAudio struct {
	logger *slog.Logger

	mu      sync.Mutex
	track   string
	playing bool
}

// NewLoggingAudio creates a LoggingAudio.
func NewLoggingAudio(logger *slog.Logger) *LoggingAudio {
	return &LoggingAudio{logger: observability.OrDefault(logger).With("component", "audio")}
}

func (a *LoggingAudio) Start(ctx context.Context, track string) {
	a.mu.Lock()
	a.track, a.playing = track, true
	a.mu.Unlock()
	a.logger.InfoContext(ctx, "audio started", "track", track)
}

func (a *LoggingAudio) Pause(ctx context.Context) {
	a.set(ctx, false, "audio paused")
}

func (a *LoggingAudio) Resume(ctx context.Context) {
	a.set(ctx, true, "audio resumed")
}

func (a *LoggingAudio) Stop(ctx context.Context) {
	a.mu.Lock()
	track := a.track
	a.track, a.playing = "", false
	a.mu.Unlock()
	if track != "" {
		a.logger.InfoContext(ctx, "audio stopped", "track", track)
	}
}

// NowPlaying returns the current track and whether it is playing.
func (a *LoggingAudio) NowPlaying() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.track, a.playing
}

func (a *LoggingAudio) set(ctx context.Context, playing bool, msg string) {
	a.mu.Lock()
	track := a.track
	if track != "" {
		a.playing = playing
	}
	a.mu.Unlock()
	if track != "" {
		a.logger.DebugContext(ctx, msg, "track", track)
	}
}
