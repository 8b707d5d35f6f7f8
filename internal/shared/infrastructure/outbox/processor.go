package outbox

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ogenrwotdaniel/focusflow/internal/shared/infrastructure/convert"
	"github.com/ogenrwotdaniel/focusflow/internal/shared/infrastructure/eventbus"
	"github.com/ogenrwotdaniel/focusflow/pkg/observability"
)

// ProcessorConfig holds configuration for the outbox processor.
type ProcessorConfig struct {
	PollInterval     time.Duration
	BatchSize        int
	MaxRetries       int
	RetryBackoffBase time.Duration
	RetryBackoffMax  time.Duration
	// Retention is how long relayed messages are kept.
	Retention time.Duration
}

// DefaultProcessorConfig returns sensible defaults.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		PollInterval:     time.Second,
		BatchSize:        100,
		MaxRetries:       5,
		RetryBackoffBase: time.Second,
		RetryBackoffMax:  time.Minute,
		Retention:        7 * 24 * time.Hour,
	}
}

// Stats summarizes the processor's work since it was created.
type Stats struct {
	Relayed         uint64
	Failed          uint64
	Dead            uint64
	LagSeconds      float64
	LastError       string
	LastErrorAt     *time.Time
	LastProcessedAt *time.Time
}

// Processor relays outbox messages to the broker.
type Processor struct {
	repo    Repository
	broker  eventbus.Publisher
	config  ProcessorConfig
	logger  *slog.Logger
	metrics observability.Metrics
	now     func() time.Time

	mu    sync.Mutex
	stats Stats
}

// NewProcessor creates a new outbox processor. Zero config fields take the
// defaults.
func NewProcessor(repo Repository, broker eventbus.Publisher, config ProcessorConfig, logger *slog.Logger, metrics observability.Metrics) *Processor {
	defaults := DefaultProcessorConfig()
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = defaults.MaxRetries
	}
	if config.RetryBackoffBase <= 0 {
		config.RetryBackoffBase = defaults.RetryBackoffBase
	}
	if config.RetryBackoffMax <= 0 {
		config.RetryBackoffMax = defaults.RetryBackoffMax
	}
	if config.Retention <= 0 {
		config.Retention = defaults.Retention
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &Processor{
		repo:    repo,
		broker:  broker,
		config:  config,
		logger:  observability.OrDefault(logger).With("component", "outbox"),
		metrics: metrics,
		now:     time.Now,
	}
}

// Run relays messages every PollInterval and prunes relayed ones hourly
// until ctx is cancelled.
func (p *Processor) Run(ctx context.Context) {
	p.logger.Info("outbox processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize,
	)
	defer p.logger.Info("outbox processor stopped")

	poll := time.NewTicker(p.config.PollInterval)
	defer poll.Stop()
	prune := time.NewTicker(time.Hour)
	defer prune.Stop()

	p.prune(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-poll.C:
			if _, err := p.ProcessOnce(ctx); err != nil && ctx.Err() == nil {
				p.logger.Error("failed to process outbox batch", "error", err)
			}
		case <-prune.C:
			p.prune(ctx)
		}
	}
}

// ProcessOnce relays one batch and returns how many messages reached the
// broker. A message that fails is retried later with exponential backoff
// and dead-lettered after MaxRetries attempts.
func (p *Processor) ProcessOnce(ctx context.Context) (int, error) {
	now := p.now()
	messages, err := p.repo.GetPending(ctx, now, p.config.BatchSize)
	if err != nil {
		p.recordError(err, now)
		return 0, err
	}
	p.recordLag(messages, now)

	relayed := 0
	for _, msg := range messages {
		if err := p.broker.Publish(ctx, msg.RoutingKey, msg.Payload); err != nil {
			p.fail(ctx, msg, err)
			continue
		}
		if err := p.repo.MarkPublished(ctx, msg.ID, p.now()); err != nil {
			// the broker has it; a duplicate on the next poll is acceptable
			p.logger.Error("failed to mark message as relayed", "id", msg.ID, "event_id", msg.EventID, "error", err)
			continue
		}
		relayed++
		p.mu.Lock()
		p.stats.Relayed++
		p.mu.Unlock()
		p.metrics.Counter(observability.MetricOutboxRelayed, 1, observability.T("routing_key", msg.RoutingKey))
	}
	return relayed, nil
}

func (p *Processor) fail(ctx context.Context, msg *Message, err error) {
	now := p.now()
	reason := err.Error()
	p.recordError(err, now)

	if !msg.CanRetry(p.config.MaxRetries) {
		p.mu.Lock()
		p.stats.Dead++
		p.mu.Unlock()
		p.metrics.Counter(observability.MetricOutboxFailures, 1, observability.T("outcome", "dead"))
		p.logger.Error("outbox message dead-lettered",
			"id", msg.ID,
			"event_id", msg.EventID,
			"routing_key", msg.RoutingKey,
			"attempts", msg.RetryCount+1,
			"error", err,
		)
		if markErr := p.repo.MarkDead(ctx, msg.ID, reason, now); markErr != nil {
			p.logger.Error("failed to dead-letter message", "id", msg.ID, "error", markErr)
		}
		return
	}

	p.mu.Lock()
	p.stats.Failed++
	p.mu.Unlock()
	p.metrics.Counter(observability.MetricOutboxFailures, 1, observability.T("outcome", "retry"))

	backoff := p.retryBackoff(msg.RetryCount + 1)
	p.logger.Warn("failed to relay message",
		"id", msg.ID,
		"event_id", msg.EventID,
		"routing_key", msg.RoutingKey,
		"retry_in", backoff,
		"error", err,
	)
	if markErr := p.repo.MarkFailed(ctx, msg.ID, reason, now.Add(backoff)); markErr != nil {
		p.logger.Error("failed to mark message as failed", "id", msg.ID, "error", markErr)
	}
}

// retryBackoff doubles from RetryBackoffBase per attempt, capped at
// RetryBackoffMax.
func (p *Processor) retryBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	shift := convert.IntToUint32Clamped(attempt - 1)
	if shift > 30 {
		return p.config.RetryBackoffMax
	}
	backoff := p.config.RetryBackoffBase * time.Duration(1<<shift)
	if backoff > p.config.RetryBackoffMax {
		return p.config.RetryBackoffMax
	}
	return backoff
}

func (p *Processor) prune(ctx context.Context) {
	deleted, err := p.repo.DeleteRelayed(ctx, p.now().Add(-p.config.Retention))
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Warn("failed to prune outbox", "error", err)
		}
		return
	}
	if deleted > 0 {
		p.logger.Debug("outbox pruned", "deleted", deleted)
	}
}

// Stats returns processor statistics.
func (p *Processor) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

func (p *Processor) recordError(err error, at time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats.LastError = err.Error()
	p.stats.LastErrorAt = &at
}

func (p *Processor) recordLag(messages []*Message, now time.Time) {
	lag := 0.0
	if len(messages) > 0 {
		oldest := messages[0].CreatedAt
		for _, msg := range messages[1:] {
			if msg.CreatedAt.Before(oldest) {
				oldest = msg.CreatedAt
			}
		}
		lag = now.Sub(oldest).Seconds()
	}

	p.mu.Lock()
	p.stats.LastProcessedAt = &now
	p.stats.LagSeconds = lag
	p.mu.Unlock()
	p.metrics.Gauge(observability.MetricOutboxLag, lag)
}
