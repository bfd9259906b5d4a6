package background

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"survey-payout-be/internal/dto"
	"survey-payout-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
)

type countingReaper struct {
	runs atomic.Int32
}

func (r *countingReaper) Run(context.Context) (*dto.ReaperRunResponse, error) {
	r.runs.Add(1)
	return &dto.ReaperRunResponse{}, nil
}

func TestSchedulerRunsImmediatelyAndOnTick(t *testing.T) {
	reaper := &countingReaper{}
	s := NewReaperScheduler(reaper, 10*time.Millisecond, logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return reaper.runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
