package service

import (
	"context"
	"time"

	"survey-payout-be/internal/dto"
	"survey-payout-be/internal/pkg/logger"
	"survey-payout-be/internal/repository/specification"
	"survey-payout-be/internal/repository/unitofwork"
	"survey-payout-be/pkg/eventbus"
	"survey-payout-be/pkg/events"
	"survey-payout-be/pkg/metrics"
	"survey-payout-be/pkg/reaper"
)

const reaperBatchSize = 500

type IReaperService interface {
	Run(ctx context.Context) (*dto.ReaperRunResponse, error)
}

type reaperService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  eventbus.Publisher
	metrics    *metrics.Metrics
	logger     logger.ILogger
	threshold  time.Duration
	now        func() time.Time
}

func NewReaperService(
	uowFactory unitofwork.RepositoryFactory,
	publisher eventbus.Publisher,
	metrics *metrics.Metrics,
	logger logger.ILogger,
	threshold time.Duration,
) IReaperService {
	if threshold <= 0 {
		threshold = reaper.DefaultThreshold
	}
	return &reaperService{
		uowFactory: uowFactory,
		publisher:  publisher,
		metrics:    metrics,
		logger:     logger,
		threshold:  threshold,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Run abandons every response that has waited longer than the threshold.
// The update re-checks the waiting state, so overlapping runs converge.
func (s *reaperService) Run(ctx context.Context) (*dto.ReaperRunResponse, error) {
	started := time.Now()
	defer func() { s.metrics.ReaperRunDuration.Observe(time.Since(started).Seconds()) }()

	now := s.now()
	cutoff := reaper.Cutoff(now, s.threshold)
	uow := s.uowFactory.NewUnitOfWork(ctx)

	var (
		total  int64
		reaped = make([]events.ResponsesReaped, 0)
	)
	for {
		waiting, err := uow.SurveyResponseRepository().FindAll(ctx,
			specification.WaitingSinceBefore{Cutoff: cutoff},
			specification.OrderBy{Field: "waiting_since"},
			specification.Pagination{Limit: reaperBatchSize},
		)
		if err != nil {
			return nil, err
		}

		candidates := make([]reaper.Candidate, 0, len(waiting))
		for _, r := range waiting {
			if r.WaitingSince != nil {
				candidates = append(candidates, reaper.Candidate{ID: r.Id, WaitingSince: *r.WaitingSince})
			}
		}
		expired := reaper.SelectExpired(candidates, now, s.threshold)
		if len(expired) == 0 {
			break
		}

		affected, err := uow.SurveyResponseRepository().MarkAbandoned(ctx, expired, cutoff, now)
		if err != nil {
			return nil, err
		}
		total += affected
		reaped = append(reaped, events.ResponsesReaped{
			ResponseIDs: expired,
			Count:       affected,
			Threshold:   s.threshold.String(),
			OccurredAt:  now,
		})

		if len(waiting) < reaperBatchSize || affected == 0 {
			break
		}
	}

	if total > 0 {
		s.logger.Info(logger.ModuleReaper, "Abandoned responses reaped", map[string]interface{}{
			"count":     total,
			"cutoff":    cutoff,
			"threshold": s.threshold.String(),
		})
		for _, e := range reaped {
			s.publisher.Publish(ctx, e)
		}
	} else {
		s.logger.Debug(logger.ModuleReaper, "Nothing to reap", map[string]interface{}{"cutoff": cutoff})
	}

	return &dto.ReaperRunResponse{
		Reaped:    total,
		Cutoff:    cutoff,
		Threshold: s.threshold.String(),
	}, nil
}
