package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ogenrwotdaniel/focusflow/pkg/observability"
	"golang.org/x/time/rate"
)

// ErrWritePending is returned when a write was queued behind an earlier
// failed write instead of being executed.
var ErrWritePending = errors.New("write queued behind a failed write")

// WriteFunc performs one store write.
type WriteFunc func(ctx context.Context) error

// JournalConfig controls how queued writes are retried.
type JournalConfig struct {
	RetryInterval time.Duration
	RetryBurst    int
}

// DefaultJournalConfig returns the retry pacing used when none is configured.
func DefaultJournalConfig() JournalConfig {
	return JournalConfig{
		RetryInterval: 5 * time.Second,
		RetryBurst:    3,
	}
}

type journalEntry struct {
	op       string
	fn       WriteFunc
	attempts int
	queuedAt time.Time
}

// WriteJournal executes store writes in submission order. A failed write
// stays at the head of the queue and every later write queues behind it, so
// a session's close is never overtaken by its tree's final stage. Run
// retries the queue in the background.
type WriteJournal struct {
	config  JournalConfig
	limiter *rate.Limiter
	logger  *slog.Logger
	metrics observability.Metrics

	runMu sync.Mutex // serializes write execution

	mu       sync.Mutex
	queue    []*journalEntry
	lastErr  error
	onChange []func()

	wake chan struct{}
}

// NewWriteJournal creates a journal. Run must be started for queued writes
// to be retried automatically.
func NewWriteJournal(config JournalConfig, logger *slog.Logger, metrics observability.Metrics) *WriteJournal {
	if config.RetryInterval <= 0 {
		config.RetryInterval = DefaultJournalConfig().RetryInterval
	}
	if config.RetryBurst <= 0 {
		config.RetryBurst = DefaultJournalConfig().RetryBurst
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &WriteJournal{
		config:  config,
		limiter: rate.NewLimiter(rate.Every(config.RetryInterval), config.RetryBurst),
		logger:  observability.OrDefault(logger).With("component", "write_journal"),
		metrics: metrics,
		wake:    make(chan struct{}, 1),
	}
}

// OnChange registers a callback invoked after the queue or its last error
// changes. Callbacks run without any journal lock held.
func (j *WriteJournal) OnChange(fn func()) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.onChange = append(j.onChange, fn)
}

// Do runs the write immediately when nothing is queued. Otherwise the write
// is queued and ErrWritePending is returned. A failed write is queued for
// retry and its error returned.
func (j *WriteJournal) Do(ctx context.Context, op string, fn WriteFunc) error {
	j.runMu.Lock()

	j.mu.Lock()
	if len(j.queue) > 0 {
		j.queue = append(j.queue, &journalEntry{op: op, fn: fn, queuedAt: time.Now()})
		pending := len(j.queue)
		j.mu.Unlock()
		j.runMu.Unlock()

		j.metrics.Gauge(observability.MetricJournalPending, float64(pending))
		j.logger.Debug("write queued", "op", op, "pending", pending)
		j.notify()
		return ErrWritePending
	}
	j.mu.Unlock()

	err := fn(ctx)
	if err == nil {
		j.runMu.Unlock()
		return nil
	}

	j.mu.Lock()
	j.queue = append(j.queue, &journalEntry{op: op, fn: fn, attempts: 1, queuedAt: time.Now()})
	j.lastErr = err
	pending := len(j.queue)
	j.mu.Unlock()
	j.runMu.Unlock()

	j.metrics.Counter(observability.MetricStoreWriteFailures, 1, observability.T("op", op))
	j.metrics.Gauge(observability.MetricJournalPending, float64(pending))
	j.logger.Error("write failed, queued for retry", "op", op, "error", err)
	j.notify()
	j.signal()
	return fmt.Errorf("%s: %w", op, err)
}

// Pending returns the number of queued writes.
func (j *WriteJournal) Pending() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.queue)
}

// Status returns the queue length and the most recent write error. The
// error is cleared once the queue drains.
func (j *WriteJournal) Status() (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.queue), j.lastErr
}

// Run retries queued writes until ctx is cancelled.
func (j *WriteJournal) Run(ctx context.Context) {
	ticker := time.NewTicker(j.config.RetryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-j.wake:
		}
		for j.Pending() > 0 {
			if err := j.limiter.Wait(ctx); err != nil {
				return
			}
			if err := j.retryHead(ctx); err != nil {
				break
			}
		}
	}
}

// Flush retries the queue without pacing and returns the first error.
func (j *WriteJournal) Flush(ctx context.Context) error {
	for j.Pending() > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := j.retryHead(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (j *WriteJournal) retryHead(ctx context.Context) error {
	j.runMu.Lock()

	j.mu.Lock()
	if len(j.queue) == 0 {
		j.mu.Unlock()
		j.runMu.Unlock()
		return nil
	}
	head := j.queue[0]
	j.mu.Unlock()

	err := head.fn(ctx)

	j.mu.Lock()
	if err != nil {
		head.attempts++
		j.lastErr = err
	} else {
		j.queue = j.queue[1:]
		if len(j.queue) == 0 {
			j.lastErr = nil
		}
	}
	pending := len(j.queue)
	j.mu.Unlock()
	j.runMu.Unlock()

	j.metrics.Gauge(observability.MetricJournalPending, float64(pending))
	if err != nil {
		j.metrics.Counter(observability.MetricStoreWriteFailures, 1, observability.T("op", head.op))
		j.logger.Warn("retry failed",
			"op", head.op,
			"attempts", head.attempts,
			"queued_for", time.Since(head.queuedAt).Round(time.Second),
			"error", err,
		)
	} else {
		j.logger.Info("queued write applied", "op", head.op, "attempts", head.attempts+1, "pending", pending)
	}
	j.notify()
	if err != nil {
		return fmt.Errorf("%s: %w", head.op, err)
	}
	return nil
}

func (j *WriteJournal) signal() {
	select {
	case j.wake <- struct{}{}:
	default:
	}
}

func (j *WriteJournal) notify() {
	j.mu.Lock()
	callbacks := append([]func(){}, j.onChange...)
	j.mu.Unlock()
	for _, fn := range callbacks {
		fn()
	}
}
