package audit

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RunRetention deletes expired audit rows every interval until ctx is cancelled.
func (s *Service) RunRetention(ctx context.Context, interval time.Duration, retentionDays int) {
	if retentionDays < 1 {
		s.logger.Info("audit retention disabled")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	system := Actor{EmpID: "system"}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.Cleanup(ctx, system, retentionDays)
			if err != nil {
				if ctx.Err() == nil {
					s.logger.Error("audit retention cleanup failed", zap.Error(err))
				}
				continue
			}
			s.logger.Info("audit retention cleanup", zap.Int64("deleted", deleted), zap.Int("retention_days", retentionDays))
		}
	}
}
