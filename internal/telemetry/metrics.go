package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the pipeline counters. A nil *Metrics is valid and records
// nothing, so callers never have to branch on whether metrics are wired.
type Metrics struct {
	ticketsIssued        metric.Int64Counter
	commits              metric.Int64Counter
	derivationsCompleted metric.Int64Counter
	requestCount         metric.Int64Counter
	requestDuration      metric.Float64Histogram
}

func NewMetrics() (*Metrics, error) {
	meter := otel.Meter("ows-backend")

	ticketsIssued, err := meter.Int64Counter("media.tickets.issued",
		metric.WithDescription("Upload tickets issued"))
	if err != nil {
		return nil, fmt.Errorf("failed to create tickets counter: %w", err)
	}
	commits, err := meter.Int64Counter("media.commits",
		metric.WithDescription("Media records committed"))
	if err != nil {
		return nil, fmt.Errorf("failed to create commits counter: %w", err)
	}
	derivations, err := meter.Int64Counter("media.derivations.completed",
		metric.WithDescription("Derived artifacts merged into records"))
	if err != nil {
		return nil, fmt.Errorf("failed to create derivations counter: %w", err)
	}
	requestCount, err := meter.Int64Counter("http.requests",
		metric.WithDescription("HTTP requests served"))
	if err != nil {
		return nil, fmt.Errorf("failed to create request counter: %w", err)
	}
	requestDuration, err := meter.Float64Histogram("http.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	return &Metrics{
		ticketsIssued:        ticketsIssued,
		commits:              commits,
		derivationsCompleted: derivations,
		requestCount:         requestCount,
		requestDuration:      requestDuration,
	}, nil
}

func (m *Metrics) IncTicketsIssued(ctx context.Context) {
	if m == nil {
		return
	}
	m.ticketsIssued.Add(ctx, 1)
}

func (m *Metrics) IncCommits(ctx context.Context) {
	if m == nil {
		return
	}
	m.commits.Add(ctx, 1)
}

func (m *Metrics) IncDerivationsCompleted(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.derivationsCompleted.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *Metrics) RecordRequest(ctx context.Context, route, method string, status int, seconds float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("route", route),
		attribute.String("method", method),
		attribute.Int("status", status),
	)
	m.requestCount.Add(ctx, 1, attrs)
	m.requestDuration.Record(ctx, seconds, attrs)
}
