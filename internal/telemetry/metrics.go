// Package telemetry defines the gameplay metric instruments.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const (
	launchesName = "hoopshot.launches"
	scoresName   = "hoopshot.scores"
	missesName   = "hoopshot.misses"
	sessionsName = "hoopshot.sessions"
)

type Metrics struct {
	launches metric.Int64Counter
	scores   metric.Int64Counter
	misses   metric.Int64Counter
	sessions metric.Int64UpDownCounter
}

// New registers the instruments on meter.
func New(meter metric.Meter) (*Metrics, error) {
	var m Metrics
	var err error
	if m.launches, err = meter.Int64Counter(launchesName,
		metric.WithDescription("Shots launched")); err != nil {
		return nil, fmt.Errorf("launches counter: %w", err)
	}
	if m.scores, err = meter.Int64Counter(scoresName,
		metric.WithDescription("Shots that went through the hoop")); err != nil {
		return nil, fmt.Errorf("scores counter: %w", err)
	}
	if m.misses, err = meter.Int64Counter(missesName,
		metric.WithDescription("Shots that hit the ground")); err != nil {
		return nil, fmt.Errorf("misses counter: %w", err)
	}
	if m.sessions, err = meter.Int64UpDownCounter(sessionsName,
		metric.WithDescription("Active game sessions")); err != nil {
		return nil, fmt.Errorf("sessions counter: %w", err)
	}
	return &m, nil
}

// Nop returns instruments that record nothing.
func Nop() *Metrics {
	m, _ := New(noop.NewMeterProvider().Meter("hoopshot"))
	return m
}

func (m *Metrics) Launched(ctx context.Context) { m.launches.Add(ctx, 1) }
func (m *Metrics) Scored(ctx context.Context)   { m.scores.Add(ctx, 1) }
func (m *Metrics) Missed(ctx context.Context)   { m.misses.Add(ctx, 1) }

func (m *Metrics) SessionStarted(ctx context.Context) { m.sessions.Add(ctx, 1) }
func (m *Metrics) SessionEnded(ctx context.Context)   { m.sessions.Add(ctx, -1) }
