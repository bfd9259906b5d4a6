package service

import (
	"testing"
	"time"

	"survey-payout-be/internal/pkg/logger"
	"survey-payout-be/internal/repository/unitofwork"
	"survey-payout-be/internal/testutil"
	"survey-payout-be/pkg/ledger"
	"survey-payout-be/pkg/metrics"
	"survey-payout-be/pkg/quota"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type testEnv struct {
	db          *gorm.DB
	factory     unitofwork.RepositoryFactory
	publisher   *testutil.RecordingPublisher
	registry    *prometheus.Registry
	metrics     *metrics.Metrics
	responses   *responseService
	withdrawals *withdrawalService
	surveys     ISurveyService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	log := logger.NewNopLogger()
	factory := unitofwork.NewRepositoryFactory(db)
	publisher := &testutil.RecordingPublisher{}
	registry := prometheus.NewRegistry()
	l := ledger.New(log)
	q := quota.NewController(log)

	withdrawals, err := NewWithdrawalService(factory, l, publisher, log)
	if err != nil {
		t.Fatalf("withdrawal service: %v", err)
	}

	return &testEnv{
		db:          db,
		factory:     factory,
		publisher:   publisher,
		registry:    registry,
		metrics:     metrics.New(registry),
		responses:   NewResponseService(factory, l, q, publisher, log).(*responseService),
		withdrawals: withdrawals.(*withdrawalService),
		surveys:     NewSurveyService(factory, q, publisher, log),
	}
}

// fixedClock returns a clock frozen at t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
