// Package accesslog persists one row per HTTP request off the request path.
package accesslog

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBuffer    = 1024
	defaultBatchSize = 100
	flushEvery       = 2 * time.Second
)

type Service struct {
	repo      Repository
	logger    *zap.Logger
	entries   chan AccessLog
	batchSize int
}

func NewService(repo Repository, logger *zap.Logger, buffer int) *Service {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Service{
		repo:      repo,
		logger:    logger,
		entries:   make(chan AccessLog, buffer),
		batchSize: defaultBatchSize,
	}
}

// Log queues entry without blocking. It reports false when the buffer is full and the entry was dropped.
func (s *Service) Log(entry AccessLog) bool {
	select {
	case s.entries <- entry:
		return true
	default:
		s.logger.Warn("access log buffer full, entry dropped", zap.String("request_id", entry.RequestID))
		return false
	}
}

// Run writes queued entries in batches until ctx is cancelled, then flushes what is left.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(flushEvery)
	defer ticker.Stop()

	batch := make([]AccessLog, 0, s.batchSize)
	flush := func(ctx context.Context) {
		if len(batch) == 0 {
			return
		}
		if err := s.repo.SaveBatch(ctx, batch); err != nil {
			s.logger.Error("failed to persist access log", zap.Int("entries", len(batch)), zap.Error(err))
		}
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			drain := context.WithoutCancel(ctx)
			for {
				select {
				case e := <-s.entries:
					batch = append(batch, e)
					if len(batch) >= s.batchSize {
						flush(drain)
					}
				default:
					flush(drain)
					return nil
				}
			}
		case e := <-s.entries:
			batch = append(batch, e)
			if len(batch) >= s.batchSize {
				flush(ctx)
			}
		case <-ticker.C:
			flush(ctx)
		}
	}
}
