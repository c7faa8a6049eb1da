package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// Totals are the cumulative gameplay counters since the recorder started.
type Totals struct {
	Launches int64 `json:"launches"`
	Scores   int64 `json:"scores"`
	Misses   int64 `json:"misses"`
	Sessions int64 `json:"sessions"`
}

// Recorder is an in-process meter provider whose instruments can be read back.
type Recorder struct {
	provider *sdkmetric.MeterProvider
	reader   *sdkmetric.ManualReader
}

func NewRecorder() *Recorder {
	reader := sdkmetric.NewManualReader()
	return &Recorder{
		provider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
		reader:   reader,
	}
}

// Provider is suitable for otel.SetMeterProvider.
func (r *Recorder) Provider() *sdkmetric.MeterProvider {
	return r.provider
}

func (r *Recorder) Meter(name string) metric.Meter {
	return r.provider.Meter(name)
}

// Totals collects the current value of every hoopshot counter.
func (r *Recorder) Totals(ctx context.Context) (Totals, error) {
	var rm metricdata.ResourceMetrics
	if err := r.reader.Collect(ctx, &rm); err != nil {
		return Totals{}, fmt.Errorf("collect metrics: %w", err)
	}

	var t Totals
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			var v int64
			for _, dp := range sum.DataPoints {
				v += dp.Value
			}
			switch m.Name {
			case launchesName:
				t.Launches += v
			case scoresName:
				t.Scores += v
			case missesName:
				t.Misses += v
			case sessionsName:
				t.Sessions += v
			}
		}
	}
	return t, nil
}

func (r *Recorder) Shutdown(ctx context.Context) error {
	return r.provider.Shutdown(ctx)
}
