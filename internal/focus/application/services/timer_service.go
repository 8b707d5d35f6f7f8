// Package services runs the focus timer and the tree it grows.
package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ogenrwotdaniel/focusflow/internal/focus/domain"
	prefDomain "github.com/ogenrwotdaniel/focusflow/internal/preferences/domain"
	"github.com/ogenrwotdaniel/focusflow/pkg/observability"
)

// ErrNotBreak is returned by SkipBreak when no break is running.
var ErrNotBreak = errors.New("no break in progress")

// TimerConfig tunes the timer.
type TimerConfig struct {
	// TickInterval is the period of the progress tick while running.
	TickInterval time.Duration

	// BreakWarning is how long before a break ends the "ending soon"
	// notice fires.
	BreakWarning time.Duration
}

// DefaultTimerConfig ticks every second and warns 30s before a break ends.
func DefaultTimerConfig() TimerConfig {
	return TimerConfig{
		TickInterval: time.Second,
		BreakWarning: 30 * time.Second,
	}
}

// TimerDeps are the collaborators of a TimerService. Notifier, Audio,
// Preferences, Motivation, Clock and Metrics are optional.
type TimerDeps struct {
	Sessions    domain.SessionStore
	Growth      *TreeGrowthService
	Journal     *WriteJournal
	Preferences prefDomain.PreferenceStore
	Notifier    domain.Notifier
	Audio       domain.AudioControl
	Motivation  *MotivationProvider
	Clock       domain.Clock
	Logger      *slog.Logger
	Metrics     observability.Metrics
}

type outcome string

const (
	outcomeCompleted outcome = "completed"
	outcomeAbandoned outcome = "abandoned"
	outcomeSkipped   outcome = "skipped"
)

// TimerService is the single session timer of the process. Lifecycle calls
// and ticks are serialized by one mutex. Every running period gets a new
// generation number, and a tick carrying an older generation is discarded,
// so a stop always beats a completion tick that was already scheduled.
type TimerService struct {
	sessions   domain.SessionStore
	growth     *TreeGrowthService
	journal    *WriteJournal
	prefs      prefDomain.PreferenceStore
	notifier   domain.Notifier
	audio      domain.AudioControl
	motivation *MotivationProvider
	clock      domain.Clock
	logger     *slog.Logger
	metrics    observability.Metrics
	config     TimerConfig
	feed       *StateFeed

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu          sync.Mutex
	state       domain.TimerState
	session     *domain.Session
	total       time.Duration
	pausedTotal time.Duration
	pausedAt    time.Time
	progress    float64
	breakWarned bool
	gen         uint64
	stopTick    chan struct{}
}

// NewTimerService creates an idle timer.
func NewTimerService(deps TimerDeps, config TimerConfig) *TimerService {
	if config.TickInterval <= 0 {
		config.TickInterval = DefaultTimerConfig().TickInterval
	}
	if config.BreakWarning <= 0 {
		config.BreakWarning = DefaultTimerConfig().BreakWarning
	}
	if deps.Clock == nil {
		deps.Clock = domain.SystemClock{}
	}
	if deps.Notifier == nil {
		deps.Notifier = domain.NopNotifier{}
	}
	if deps.Audio == nil {
		deps.Audio = domain.NopAudio{}
	}
	if deps.Motivation == nil {
		deps.Motivation = NewMotivationProvider()
	}
	if deps.Metrics == nil {
		deps.Metrics = observability.NoopMetrics{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &TimerService{
		sessions:   deps.Sessions,
		growth:     deps.Growth,
		journal:    deps.Journal,
		prefs:      deps.Preferences,
		notifier:   deps.Notifier,
		audio:      deps.Audio,
		motivation: deps.Motivation,
		clock:      deps.Clock,
		logger:     observability.OrDefault(deps.Logger).With("component", "timer"),
		metrics:    deps.Metrics,
		config:     config,
		feed:       NewStateFeed(domain.IdleTimerInfo()),
		baseCtx:    ctx,
		cancel:     cancel,
		state:      domain.TimerIdle,
	}

	s.journal.OnChange(func() {
		s.feed.Update(func(info domain.TimerInfo) domain.TimerInfo {
			info.Sync, info.LastError = s.syncStatus()
			return info
		})
	})
	return s
}

// Info returns the latest timer snapshot. It never waits on a store write.
func (s *TimerService) Info() domain.TimerInfo {
	return s.feed.Current()
}

// Subscribe streams timer snapshots, starting with the current one.
func (s *TimerService) Subscribe() (<-chan domain.TimerInfo, func()) {
	return s.feed.Subscribe()
}

// Start begins a session of the given kind. A session that is still
// running or paused is abandoned first. The returned error reports store
// failures; the timer is running either way.
func (s *TimerService) Start(ctx context.Context, kind domain.SessionKind, minutes int) (domain.TimerInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	session, err := domain.NewSession(kind, minutes, now)
	if err != nil {
		return s.feed.Current(), err
	}

	var errs []error
	if s.active() {
		s.logger.InfoContext(ctx, "abandoning running session before start", "session_id", s.session.ID)
		errs = append(errs, s.finishLocked(ctx, now, outcomeAbandoned))
	}

	prefs := s.preferences(ctx)
	if kind == domain.SessionKindFocus {
		session.WithAudioTrack(prefs.AudioTrack)
	}

	s.session = session
	s.state = domain.TimerRunning
	s.total = session.PlannedDuration()
	s.pausedTotal = 0
	s.pausedAt = time.Time{}
	s.progress = 0
	s.breakWarned = false

	ctx = observability.WithSessionID(ctx, session.ID)

	created := session.Clone()
	errs = append(errs, s.journal.Do(ctx, "session.create", func(ctx context.Context) error {
		return s.sessions.Create(ctx, created)
	}))

	if kind == domain.SessionKindFocus {
		tree, err := s.growth.StartGrowingTree(ctx, session.ID)
		errs = append(errs, err)
		if linkErr := session.LinkTree(tree.ID); linkErr == nil {
			linked := session.Clone()
			errs = append(errs, s.journal.Do(ctx, "session.link_tree", func(ctx context.Context) error {
				return s.sessions.Update(ctx, linked)
			}))
		}
		s.audio.Start(ctx, prefs.AudioTrack)
	}

	s.notifier.OnSessionStarted(ctx, session.Clone())
	s.notifier.OnMotivationalMessage(ctx, s.motivation.MessageFor(kind))

	s.startTickerLocked()
	s.metrics.Counter(observability.MetricTimerTransitions, 1, observability.T("transition", "start"))
	s.logger.InfoContext(ctx, "session started", "kind", kind, "planned_minutes", minutes)

	info := s.snapshotLocked(now)
	s.feed.Publish(info)
	return info, storeError(errs)
}

// Pause suspends a running session. It is a no-op in any other state.
func (s *TimerService) Pause(ctx context.Context) domain.TimerInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != domain.TimerRunning {
		s.logger.DebugContext(ctx, "pause ignored", "state", s.state)
		return s.feed.Current()
	}

	now := s.clock.Now()
	s.stopTickerLocked()
	s.progress = s.measure(now)
	s.pausedAt = now
	s.state = domain.TimerPaused
	s.session.RecordInterruption()

	ctx = observability.WithSessionID(ctx, s.session.ID)
	if s.session.Kind == domain.SessionKindFocus {
		s.audio.Pause(ctx)
	}
	s.notifier.OnSessionPaused(ctx, s.session.Clone())
	s.metrics.Counter(observability.MetricTimerTransitions, 1, observability.T("transition", "pause"))
	s.logger.InfoContext(ctx, "session paused", "interruptions", s.session.Interruptions)

	info := s.snapshotLocked(now)
	s.feed.Publish(info)
	return info
}

// Resume continues a paused session. It is a no-op in any other state.
func (s *TimerService) Resume(ctx context.Context) domain.TimerInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != domain.TimerPaused {
		s.logger.DebugContext(ctx, "resume ignored", "state", s.state)
		return s.feed.Current()
	}

	now := s.clock.Now()
	s.pausedTotal += now.Sub(s.pausedAt)
	s.pausedAt = time.Time{}
	s.state = domain.TimerRunning

	ctx = observability.WithSessionID(ctx, s.session.ID)
	if s.session.Kind == domain.SessionKindFocus {
		s.audio.Resume(ctx)
	}
	s.notifier.OnSessionResumed(ctx, s.session.Clone())
	s.startTickerLocked()
	s.metrics.Counter(observability.MetricTimerTransitions, 1, observability.T("transition", "resume"))
	s.logger.InfoContext(ctx, "session resumed")

	info := s.snapshotLocked(now)
	s.feed.Publish(info)
	return info
}

// Stop abandons the running or paused session: it is closed incomplete and
// its tree withers. It is a no-op when idle.
func (s *TimerService) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active() {
		s.logger.DebugContext(ctx, "stop ignored", "state", s.state)
		return nil
	}
	return s.finishLocked(ctx, s.clock.Now(), outcomeAbandoned)
}

// SkipBreak ends the current break early and counts it as completed.
func (s *TimerService) SkipBreak(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active() || s.session.Kind != domain.SessionKindBreak {
		return ErrNotBreak
	}
	return s.finishLocked(ctx, s.clock.Now(), outcomeSkipped)
}

// Close stops ticking and closes subscriber channels. An active session is
// left open in the store; call Stop first to abandon it.
func (s *TimerService) Close() {
	s.mu.Lock()
	s.stopTickerLocked()
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
	s.feed.Close()
}

// tick advances the session of generation gen. Stale generations are
// ignored.
func (s *TimerService) tick(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen || s.state != domain.TimerRunning {
		return
	}

	ctx := observability.WithSessionID(s.baseCtx, s.session.ID)
	now := s.clock.Now()
	_, remaining, progress := domain.Measure(s.total, s.session.StartTime, now, s.pausedTotal)

	// reaching zero wins over anything else due in the same tick
	if remaining <= 0 {
		if err := s.finishLocked(ctx, now, outcomeCompleted); err != nil {
			s.logger.ErrorContext(ctx, "session completed with store errors", "error", err)
		}
		return
	}

	s.progress = progress
	if s.session.Kind == domain.SessionKindFocus {
		if err := s.growth.UpdateGrowthProgress(ctx, progress); err != nil && !errors.Is(err, ErrWritePending) {
			s.logger.WarnContext(ctx, "tree growth not saved", "error", err)
		}
	}
	if s.session.Kind == domain.SessionKindBreak && !s.breakWarned && remaining <= s.config.BreakWarning {
		s.breakWarned = true
		s.notifier.OnBreakEndingSoon(ctx, s.session.Clone(), remaining)
	}

	s.feed.Publish(s.snapshotLocked(now))
}

// finishLocked closes the current session and resets the timer to idle.
// The session write is issued before the tree write.
func (s *TimerService) finishLocked(ctx context.Context, now time.Time, how outcome) error {
	s.stopTickerLocked()

	session := s.session
	ctx = observability.WithSessionID(ctx, session.ID)

	progress := s.measure(now)
	completed := how != outcomeAbandoned
	if how == outcomeCompleted {
		progress = 1
	}

	paused := s.pausedTotal
	if s.state == domain.TimerPaused {
		paused += now.Sub(s.pausedAt)
	}
	session.RecordPauses(paused)

	var errs []error
	if err := session.Finish(now, completed); err != nil {
		return err
	}
	session.DeriveRating(progress)

	closed := session.Clone()
	errs = append(errs, s.journal.Do(ctx, "session."+string(how), func(ctx context.Context) error {
		return s.sessions.Update(ctx, closed)
	}))

	if session.Kind == domain.SessionKindFocus {
		if completed {
			errs = append(errs, s.growth.CompleteCurrentTree(ctx))
		} else {
			errs = append(errs, s.growth.WitherCurrentTree(ctx))
		}
		s.audio.Stop(ctx)
	}
	s.growth.Reset()

	if completed {
		s.state = domain.TimerFinished
		s.progress = 1
		s.feed.Publish(s.snapshotLocked(now))
		s.notifier.OnSessionCompleted(ctx, session.Clone())
	} else {
		s.notifier.OnSessionAbandoned(ctx, session.Clone())
	}

	s.metrics.Counter(observability.MetricTimerTransitions, 1, observability.T("transition", string(how)))
	s.metrics.Counter(observability.MetricSessionsFinished, 1,
		observability.T("kind", string(session.Kind)),
		observability.T("outcome", string(how)),
	)
	s.logger.InfoContext(ctx, "session finished",
		"outcome", how,
		"interruptions", session.Interruptions,
		"rating", session.ProductivityRating,
	)

	s.session = nil
	s.state = domain.TimerIdle
	s.total = 0
	s.pausedTotal = 0
	s.pausedAt = time.Time{}
	s.progress = 0
	s.breakWarned = false

	s.feed.Publish(s.snapshotLocked(now))
	return storeError(errs)
}

func (s *TimerService) startTickerLocked() {
	s.stopTickerLocked()

	gen := s.gen
	stop := make(chan struct{})
	s.stopTick = stop

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.config.TickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-s.baseCtx.Done():
				return
			case <-ticker.C:
				s.tick(gen)
			}
		}
	}()
}

// stopTickerLocked retires the current generation.
func (s *TimerService) stopTickerLocked() {
	s.gen++
	if s.stopTick != nil {
		close(s.stopTick)
		s.stopTick = nil
	}
}

func (s *TimerService) active() bool {
	return s.state == domain.TimerRunning || s.state == domain.TimerPaused
}

// measure returns progress at now, freezing the clock at the pause instant
// while paused.
func (s *TimerService) measure(now time.Time) float64 {
	if s.session == nil {
		return 0
	}
	paused := s.pausedTotal
	if s.state == domain.TimerPaused {
		paused += now.Sub(s.pausedAt)
	}
	_, _, progress := domain.Measure(s.total, s.session.StartTime, now, paused)
	return progress
}

func (s *TimerService) snapshotLocked(now time.Time) domain.TimerInfo {
	info := domain.IdleTimerInfo()
	info.Sync, info.LastError = s.syncStatus()
	if s.session == nil {
		return info
	}

	paused := s.pausedTotal
	if s.state == domain.TimerPaused {
		paused += now.Sub(s.pausedAt)
	}
	elapsed, remaining, progress := domain.Measure(s.total, s.session.StartTime, now, paused)
	if elapsed > s.total {
		elapsed = s.total
	}
	if s.state == domain.TimerFinished {
		elapsed, remaining, progress = s.total, 0, 1
	}

	id := s.session.ID
	info.Kind = s.session.Kind
	info.State = s.state
	info.Total = s.total
	info.Elapsed = elapsed
	info.Remaining = remaining
	info.Progress = progress
	info.SessionID = &id
	return info
}

func (s *TimerService) syncStatus() (domain.SyncStatus, string) {
	pending, err := s.journal.Status()
	switch {
	case pending == 0:
		return domain.SyncSynced, ""
	case err != nil:
		return domain.SyncFailed, err.Error()
	default:
		return domain.SyncPending, ""
	}
}

func (s *TimerService) preferences(ctx context.Context) prefDomain.Preferences {
	if s.prefs == nil {
		return prefDomain.Defaults()
	}
	prefs, err := s.prefs.Get(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to read preferences, using defaults", "error", err)
		return prefDomain.Defaults()
	}
	return prefs
}

// generation returns the current tick generation.
func (s *TimerService) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// storeError joins store failures. Writes queued behind an earlier failure
// are not reported again.
func storeError(errs []error) error {
	var failures []error
	for _, err := range errs {
		if err != nil && !errors.Is(err, ErrWritePending) {
			failures = append(failures, err)
		}
	}
	return errors.Join(failures...)
}
