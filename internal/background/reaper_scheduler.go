// Package background runs periodic maintenance jobs.
package background

import (
	"context"
	"time"

	"survey-payout-be/internal/pkg/logger"
	"survey-payout-be/internal/service"
)

// ReaperScheduler runs the timeout reaper on a fixed interval. A failed run
// is logged and retried on the next tick.
type ReaperScheduler struct {
	reaper   service.IReaperService
	interval time.Duration
	logger   logger.ILogger
}

func NewReaperScheduler(reaper service.IReaperService, interval time.Duration, log logger.ILogger) *ReaperScheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &ReaperScheduler{reaper: reaper, interval: interval, logger: log}
}

// Start blocks until ctx is cancelled. The first run happens immediately.
func (s *ReaperScheduler) Start(ctx context.Context) {
	s.logger.Info(logger.ModuleReaper, "Reaper scheduler started", map[string]interface{}{
		"interval": s.interval.String(),
	})

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info(logger.ModuleReaper, "Reaper scheduler stopped", nil)
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *ReaperScheduler) runOnce(ctx context.Context) {
	res, err := s.reaper.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error(logger.ModuleReaper, "Reaper run failed", map[string]interface{}{"error": err.Error()})
		return
	}
	if res.Reaped > 0 {
		s.logger.Info(logger.ModuleReaper, "Reaper run finished", map[string]interface{}{
			"reaped": res.Reaped,
			"cutoff": res.Cutoff,
		})
	}
}
