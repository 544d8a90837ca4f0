package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"garaadka-laundry/internal/infra/broker"
	"garaadka-laundry/internal/pkg/metrics"
)

// maxDispatchAttempts parks a message after this many failed publishes.
const maxDispatchAttempts = 10

type Dispatcher struct {
	repo      Repository
	publisher broker.Publisher
	logger    *zap.Logger
	interval  time.Duration
	batchSize int
}

func NewDispatcher(repo Repository, publisher broker.Publisher, logger *zap.Logger, interval time.Duration, batchSize int) *Dispatcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Dispatcher{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		interval:  interval,
		batchSize: batchSize,
	}
}

// Run polls the outbox until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	d.logger.Info("outbox dispatcher started", zap.Duration("interval", d.interval))
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("outbox dispatcher stopped")
			return
		case <-ticker.C:
			if _, err := d.DispatchOnce(ctx); err != nil && ctx.Err() == nil {
				d.logger.Error("outbox dispatch failed", zap.Error(err))
			}
		}
	}
}

// DispatchOnce publishes one batch in id order and returns how many were delivered.
func (d *Dispatcher) DispatchOnce(ctx context.Context) (int, error) {
	msgs, err := d.repo.PendingOutbox(ctx, d.batchSize, maxDispatchAttempts)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, msg := range msgs {
		if err := d.publisher.Publish(ctx, msg.Topic, RecordID(msg.AuditID), []byte(msg.Payload)); err != nil {
			metrics.OutboxDispatchedTotal.WithLabelValues("failed").Inc()
			if markErr := d.repo.MarkFailed(ctx, msg.ID, err.Error()); markErr != nil {
				return delivered, markErr
			}
			if msg.Attempts+1 >= maxDispatchAttempts {
				d.logger.Error("outbox message parked after repeated failures",
					zap.Uint("outbox_id", msg.ID),
					zap.Uint("audit_id", msg.AuditID),
					zap.Error(err),
				)
			}
			// keep per-row order: later rows wait for the next tick
			break
		}

		if err := d.repo.MarkDispatched(ctx, msg.ID, time.Now().UTC()); err != nil {
			return delivered, err
		}
		metrics.OutboxDispatchedTotal.WithLabelValues("ok").Inc()
		delivered++
	}
	return delivered, nil
}
