// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"context"

	"survey-payout-be/pkg/events"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ResponsesCompletedTotal *prometheus.CounterVec
	ResponsesReviewedTotal  *prometheus.CounterVec
	EarningsCreditedTotal   prometheus.Counter
	WithdrawalsTotal        *prometheus.CounterVec
	WithdrawalAmountTotal   *prometheus.CounterVec
	CallbacksTotal          *prometheus.CounterVec
	ResponsesReapedTotal    prometheus.Counter
	ReaperRunDuration       prometheus.Histogram
	SurveysAutoPausedTotal  prometheus.Counter
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ResponsesCompletedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "survey_responses_completed_total",
				Help: "Completed survey responses by outcome and approval status",
			},
			[]string{"outcome", "approval_status"},
		),
		ResponsesReviewedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "survey_responses_reviewed_total",
				Help: "Administrative decisions on survey responses",
			},
			[]string{"decision"},
		),
		EarningsCreditedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "earnings_credited_amount_total",
				Help: "Total amount credited to user balances",
			},
		),
		WithdrawalsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "withdrawals_total",
				Help: "Withdrawal transitions by resulting status",
			},
			[]string{"status"},
		),
		WithdrawalAmountTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "withdrawal_amount_total",
				Help: "Withdrawal gross amount by resulting status",
			},
			[]string{"status"},
		),
		CallbacksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "survey_callbacks_total",
				Help: "Survey platform callbacks by result",
			},
			[]string{"result"},
		),
		ResponsesReapedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "survey_responses_reaped_total",
				Help: "Responses moved to not_complete by the timeout reaper",
			},
		),
		ReaperRunDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "reaper_run_duration_seconds",
				Help:    "Duration of timeout reaper runs",
				Buckets: prometheus.DefBuckets,
			},
		),
		SurveysAutoPausedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "surveys_auto_paused_total",
				Help: "Surveys paused after reporting quota full",
			},
		),
	}
}

// Callback results.
const (
	CallbackAccepted  = "accepted"
	CallbackForbidden = "forbidden"
	CallbackInvalid   = "invalid"
	CallbackFailed    = "failed"
)

func (m *Metrics) ObserveCallback(result string) {
	m.CallbacksTotal.WithLabelValues(result).Inc()
}

// Handle is an event bus subscriber that turns domain events into counters.
func (m *Metrics) Handle(_ context.Context, e events.Event) error {
	switch ev := e.(type) {
	case *events.ResponseCompleted:
		m.ResponsesCompletedTotal.WithLabelValues(ev.Outcome, ev.ApprovalStatus).Inc()
		if ev.Credited {
			m.EarningsCreditedTotal.Add(ev.Amount.InexactFloat64())
		}
	case *events.ResponseApproved:
		m.ResponsesReviewedTotal.WithLabelValues("approved").Inc()
		m.EarningsCreditedTotal.Add(ev.Amount.InexactFloat64())
	case *events.ResponseRejected:
		m.ResponsesReviewedTotal.WithLabelValues("rejected").Inc()
	case *events.ResponseReset:
		m.ResponsesReviewedTotal.WithLabelValues("reset").Inc()
	case *events.ResponsesReaped:
		m.ResponsesReapedTotal.Add(float64(ev.Count))
	case *events.SurveyAutoPaused:
		m.SurveysAutoPausedTotal.Inc()
	case *events.WithdrawalChanged:
		m.WithdrawalsTotal.WithLabelValues(ev.Status).Inc()
		m.WithdrawalAmountTotal.WithLabelValues(ev.Status).Add(ev.Amount.InexactFloat64())
	}
	return nil
}
