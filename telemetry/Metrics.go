package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attributes
const (
	AttrRunID   = "quadrl.run.id"
	AttrTask    = "quadrl.task"
	AttrAgent   = "quadrl.agent"
	AttrEndType = "quadrl.episode.end"
)

// EpisodeMetrics records counters of episodes and control ticks and a
// histogram of episode returns
type EpisodeMetrics struct {
	episodes metric.Int64Counter
	ticks    metric.Int64Counter
	returns  metric.Float64Histogram
	attrs    []attribute.KeyValue
}

// NewEpisodeMetrics creates the episode instruments on the global
// meter provider. Each measurement carries attrs.
func NewEpisodeMetrics(attrs ...attribute.KeyValue) (*EpisodeMetrics, error) {
	return NewEpisodeMetricsFromMeter(otel.Meter("quadrl/experiment"),
		attrs...)
}

// NewEpisodeMetricsFromMeter creates the episode instruments on meter
func NewEpisodeMetricsFromMeter(meter metric.Meter,
	attrs ...attribute.KeyValue) (*EpisodeMetrics, error) {
	episodes, err := meter.Int64Counter(
		"quadrl.episodes.total",
		metric.WithDescription("Finished episodes by end type"),
	)
	if err != nil {
		return nil, err
	}

	ticks, err := meter.Int64Counter(
		"quadrl.ticks.total",
		metric.WithDescription("Control ticks across all episodes"),
	)
	if err != nil {
		return nil, err
	}

	returns, err := meter.Float64Histogram(
		"quadrl.episode.return",
		metric.WithDescription("Sum of rewards of finished episodes"),
	)
	if err != nil {
		return nil, err
	}

	return &EpisodeMetrics{
		episodes: episodes,
		ticks:    ticks,
		returns:  returns,
		attrs:    attrs,
	}, nil
}

// RecordEpisode records a finished episode of the given number of
// ticks, return and end type
func (m *EpisodeMetrics) RecordEpisode(ctx context.Context, ticks int,
	ret float64, end string) {
	if m == nil {
		return
	}

	opt := metric.WithAttributes(m.attrs...)
	m.ticks.Add(ctx, int64(ticks), opt)
	m.returns.Record(ctx, ret, opt)

	endAttrs := append(append([]attribute.KeyValue(nil), m.attrs...),
		attribute.String(AttrEndType, end))
	m.episodes.Add(ctx, 1, metric.WithAttributes(endAttrs...))
}
