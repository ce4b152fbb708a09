package syncer

import (
	"context"
	"encoding/json"
	"time"

	"polycopy/storage"
)

const metricsKey = "polycopy:metrics"

// PipelineMetrics are running counters for the ingestion and execution
// loops, kept in Redis so the status API can report them.
type PipelineMetrics struct {
	TradesIngested int       `json:"trades_ingested"`
	OrdersCreated  int       `json:"orders_created"`
	OrdersFilled   int       `json:"orders_filled"`
	OrdersFailed   int       `json:"orders_failed"`
	OrdersSkipped  int       `json:"orders_skipped"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// MetricsRecorder accumulates pipeline counters in Redis. Losing a
// counter update is acceptable; metrics never block the pipeline.
type MetricsRecorder struct {
	store storage.DataStore
}

// NewMetricsRecorder creates a metrics recorder backed by the store's
// Redis connection.
func NewMetricsRecorder(store storage.DataStore) *MetricsRecorder {
	return &MetricsRecorder{store: store}
}

// Load returns the current counters, zeroed when none are stored.
func (m *MetricsRecorder) Load(ctx context.Context) (*PipelineMetrics, error) {
	raw, err := m.store.GetRedisValue(ctx, metricsKey)
	if err != nil {
		return nil, err
	}

	var metrics PipelineMetrics
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &metrics); err != nil {
			return &PipelineMetrics{}, nil
		}
	}
	return &metrics, nil
}

func (m *MetricsRecorder) update(ctx context.Context, apply func(*PipelineMetrics)) {
	metrics, err := m.Load(ctx)
	if err != nil {
		return
	}

	apply(metrics)
	metrics.UpdatedAt = time.Now()

	data, err := json.Marshal(metrics)
	if err != nil {
		return
	}
	m.store.SetRedisValue(ctx, metricsKey, string(data), 24*time.Hour)
}

// AddTradesIngested bumps the ingested trade counter.
func (m *MetricsRecorder) AddTradesIngested(ctx context.Context, n int) {
	m.update(ctx, func(p *PipelineMetrics) { p.TradesIngested += n })
}

// AddOrdersCreated bumps the created order counter.
func (m *MetricsRecorder) AddOrdersCreated(ctx context.Context, n int) {
	m.update(ctx, func(p *PipelineMetrics) { p.OrdersCreated += n })
}

// AddOrdersFilled bumps the filled order counter.
func (m *MetricsRecorder) AddOrdersFilled(ctx context.Context, n int) {
	m.update(ctx, func(p *PipelineMetrics) { p.OrdersFilled += n })
}

// AddOrdersFailed bumps the failed order counter.
func (m *MetricsRecorder) AddOrdersFailed(ctx context.Context, n int) {
	m.update(ctx, func(p *PipelineMetrics) { p.OrdersFailed += n })
}

// AddOrdersSkipped bumps the skipped order counter.
func (m *MetricsRecorder) AddOrdersSkipped(ctx context.Context, n int) {
	m.update(ctx, func(p *PipelineMetrics) { p.OrdersSkipped += n })
}
