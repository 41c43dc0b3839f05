// Package metrics instruments a graph.Store with Prometheus counters and
// latency histograms.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"profilegraph/backend/internal/graph"
	"profilegraph/backend/internal/state"
	apperrors "profilegraph/backend/pkg/errors"
)

const metricsNamespace = "profilegraph"

const storeSubsystem = "store"

// Outcome label values
const (
	OutcomeOK            = "ok"
	OutcomeNotFound      = "not_found"
	OutcomeAlreadyExists = "already_exists"
	OutcomeInvalid       = "invalid"
	OutcomeError         = "error"
)

// StoreMetrics holds the collectors for store operations.
type StoreMetrics struct {
	// OperationsTotal counts operations by operation and outcome.
	OperationsTotal *prometheus.CounterVec

	// OperationDurationSeconds measures operation latency by operation.
	OperationDurationSeconds *prometheus.HistogramVec
}

// NewStoreMetrics creates the collectors and registers them on reg.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	factory := promauto.With(reg)
	return &StoreMetrics{
		OperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: storeSubsystem,
				Name:      "operations_total",
				Help:      "Total number of store operations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		OperationDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: storeSubsystem,
				Name:      "operation_duration_seconds",
				Help:      "Store operation latency in seconds",
				Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
			},
			[]string{"operation"},
		),
	}
}

// Outcome maps an operation result onto its outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case apperrors.IsNotFound(err):
		return OutcomeNotFound
	case apperrors.IsAlreadyExists(err):
		return OutcomeAlreadyExists
	case apperrors.IsUserError(err):
		return OutcomeInvalid
	}
	return OutcomeError
}

func (m *StoreMetrics) observe(operation string, start time.Time, err error) {
	m.OperationsTotal.WithLabelValues(operation, Outcome(err)).Inc()
	m.OperationDurationSeconds.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// InstrumentedStore decorates a graph.Store, recording every call.
type InstrumentedStore struct {
	next    graph.Store
	metrics *StoreMetrics
}

var _ graph.Store = (*InstrumentedStore)(nil)

// Instrument wraps next with m.
func Instrument(next graph.Store, m *StoreMetrics) *InstrumentedStore {
	return &InstrumentedStore{next: next, metrics: m}
}

func (s *InstrumentedStore) AddProfile(ctx context.Context, p *state.Profile) (_ *state.Profile, err error) {
	defer func(start time.Time) { s.metrics.observe("add_profile", start, err) }(time.Now())
	return s.next.AddProfile(ctx, p)
}

func (s *InstrumentedStore) GetProfile(ctx context.Context, p *state.Profile) (err error) {
	defer func(start time.Time) { s.metrics.observe("get_profile", start, err) }(time.Now())
	return s.next.GetProfile(ctx, p)
}

func (s *InstrumentedStore) AddFriend(ctx context.Context, a, b *state.Profile) (err error) {
	defer func(start time.Time) { s.metrics.observe("add_friend", start, err) }(time.Now())
	return s.next.AddFriend(ctx, a, b)
}

func (s *InstrumentedStore) RemoveFriend(ctx context.Context, a, b *state.Profile) (err error) {
	defer func(start time.Time) { s.metrics.observe("remove_friend", start, err) }(time.Now())
	return s.next.RemoveFriend(ctx, a, b)
}

func (s *InstrumentedStore) GetFriends(ctx context.Context, p *state.Profile) (_ []*state.Profile, err error) {
	defer func(start time.Time) { s.metrics.observe("get_friends", start, err) }(time.Now())
	return s.next.GetFriends(ctx, p)
}

func (s *InstrumentedStore) RemoveProfile(ctx context.Context, p *state.Profile) (err error) {
	defer func(start time.Time) { s.metrics.observe("remove_profile", start, err) }(time.Now())
	return s.next.RemoveProfile(ctx, p)
}

func (s *InstrumentedStore) ModifyProfile(ctx context.Context, p *state.Profile, field state.Field, value string) (err error) {
	defer func(start time.Time) { s.metrics.observe("modify_profile", start, err) }(time.Now())
	return s.next.ModifyProfile(ctx, p, field, value)
}

func (s *InstrumentedStore) Dump(ctx context.Context) (_ []graph.DumpEntry, err error) {
	defer func(start time.Time) { s.metrics.observe("dump", start, err) }(time.Now())
	return s.next.Dump(ctx)
}

// Close is not instrumented.
func (s *InstrumentedStore) Close(ctx context.Context) error {
	return s.next.Close(ctx)
}
