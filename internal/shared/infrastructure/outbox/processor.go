package outbox

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/taskforge/taskforge/internal/shared/infrastructure/eventbus"
	"github.com/taskforge/taskforge/pkg/observability"
)

// ProcessorConfig tunes the outbox relay loop.
type ProcessorConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxRetries   int
	BaseBackoff  time.Duration
	MaxBackoff   time.Duration
}

// DefaultProcessorConfig returns sensible defaults for the relay.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		PollInterval: 2 * time.Second,
		BatchSize:    50,
		MaxRetries:   10,
		BaseBackoff:  5 * time.Second,
		MaxBackoff:   10 * time.Minute,
	}
}

// Stats captures relay counters since start.
type Stats struct {
	Published  uint64
	Failed     uint64
	DeadLetter uint64
}

// Processor relays persisted outbox messages to the event bus. Messages are
// published at-least-once; consumers must deduplicate on event_id.
type Processor struct {
	repo      Repository
	publisher eventbus.Publisher
	config    ProcessorConfig
	logger    *slog.Logger
	metrics   observability.Metrics

	mu      sync.Mutex
	stats   Stats
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
}

// NewProcessor creates a new outbox processor.
func NewProcessor(repo Repository, publisher eventbus.Publisher, config ProcessorConfig, logger *slog.Logger) *Processor {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultProcessorConfig().PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultProcessorConfig().BatchSize
	}
	if config.BaseBackoff <= 0 {
		config.BaseBackoff = DefaultProcessorConfig().BaseBackoff
	}
	if config.MaxBackoff <= 0 {
		config.MaxBackoff = DefaultProcessorConfig().MaxBackoff
	}
	return &Processor{
		repo:      repo,
		publisher: publisher,
		config:    config,
		logger:    logger,
		metrics:   observability.NoopMetrics{},
	}
}

// WithMetrics replaces the metrics sink.
func (p *Processor) WithMetrics(m observability.Metrics) *Processor {
	if m != nil {
		p.metrics = m
	}
	return p
}

// Start launches the poll loop. It returns immediately; use Stop to shut
// the loop down.
func (p *Processor) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.run(ctx)
}

// Stop shuts the poll loop down and waits for the in-flight batch.
func (p *Processor) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	close(p.stopCh)
	done := p.doneCh
	p.mu.Unlock()

	<-done
}

func (p *Processor) run(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case <-ticker.C:
			if err := p.ProcessOnce(ctx); err != nil {
				p.logger.Error("outbox batch failed", "error", err)
			}
		}
	}
}

// ProcessOnce publishes one batch of unpublished messages.
func (p *Processor) ProcessOnce(ctx context.Context) error {
	msgs, err := p.repo.GetUnpublished(ctx, p.config.BatchSize)
	if err != nil {
		return err
	}

	for _, msg := range msgs {
		if err := p.publisher.Publish(ctx, msg.RoutingKey, msg.Payload); err != nil {
			p.handleFailure(ctx, msg, err)
			continue
		}

		if err := p.repo.MarkPublished(ctx, msg.ID); err != nil {
			p.logger.Error("failed to mark outbox message published",
				"message_id", msg.ID, "event_id", msg.EventID, "error", err)
			continue
		}

		p.mu.Lock()
		p.stats.Published++
		p.mu.Unlock()
		p.metrics.Counter(observability.MetricEventsPublished, 1)
	}

	return nil
}

func (p *Processor) handleFailure(ctx context.Context, msg *Message, pubErr error) {
	if !msg.CanRetry(p.config.MaxRetries) {
		if err := p.repo.MarkDead(ctx, msg.ID, pubErr.Error()); err != nil {
			p.logger.Error("failed to dead-letter outbox message",
				"message_id", msg.ID, "event_id", msg.EventID, "error", err)
			return
		}
		p.logger.Warn("outbox message dead-lettered",
			"message_id", msg.ID, "event_id", msg.EventID,
			"event_type", msg.EventType, "retries", msg.RetryCount)
		p.mu.Lock()
		p.stats.DeadLetter++
		p.mu.Unlock()
		p.metrics.Counter(observability.MetricEventsDeadLetter, 1)
		return
	}

	nextRetry := time.Now().Add(p.backoff(msg.RetryCount))
	if err := p.repo.MarkFailed(ctx, msg.ID, pubErr.Error(), nextRetry); err != nil {
		p.logger.Error("failed to mark outbox message failed",
			"message_id", msg.ID, "event_id", msg.EventID, "error", err)
		return
	}

	p.logger.Warn("outbox publish failed, will retry",
		"message_id", msg.ID, "event_id", msg.EventID,
		"retry_count", msg.RetryCount+1, "next_retry_at", nextRetry, "error", pubErr)
	p.mu.Lock()
	p.stats.Failed++
	p.mu.Unlock()
}

// backoff returns an exponential delay capped at MaxBackoff.
func (p *Processor) backoff(retryCount int) time.Duration {
	delay := p.config.BaseBackoff
	for i := 0; i < retryCount; i++ {
		delay *= 2
		if delay >= p.config.MaxBackoff {
			return p.config.MaxBackoff
		}
	}
	return delay
}

// GetStats returns a snapshot of relay counters.
func (p *Processor) GetStats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}
