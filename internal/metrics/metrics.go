// Package metrics wires the matching core's cycle and tick counters into
// the OTel metrics SDK, exported to Google Cloud Monitoring the same way
// the teacher's transitive opentelemetry-operations-go exporter is built
// to be wired, just never exercised in that repo.
package metrics

import (
	"context"
	"fmt"

	gcpmetric "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/metric"
	"go.opentelemetry.io/otel"
	otelmetric "go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/roomie-match/matchcore/internal/config"
)

const meterName = "roomie-match/matchcore"

// Provider owns the process-wide MeterProvider. Shutdown must be called
// on exit to flush the final export.
type Provider struct {
	mp *sdkmetric.MeterProvider
}

// Setup builds a Provider from cfg.Metrics. When disabled, it returns a
// Provider wrapping an unexported MeterProvider with no readers, so every
// instrument still works but nothing is exported.
func Setup(ctx context.Context, cfg config.MetricsConfig) (*Provider, error) {
	if !cfg.Enabled {
		mp := sdkmetric.NewMeterProvider()
		otel.SetMeterProvider(mp)
		return &Provider{mp: mp}, nil
	}

	exporter, err := gcpmetric.New(gcpmetric.WithProjectID(cfg.GCPProjectID))
	if err != nil {
		return nil, fmt.Errorf("metrics: gcp exporter: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.ExportInterval))
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(mp)
	return &Provider{mp: mp}, nil
}

// Shutdown flushes pending metrics and releases exporter resources.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.mp.Shutdown(ctx)
}

// Meter returns the named meter from the process MeterProvider.
func (p *Provider) Meter(name string) otelmetric.Meter {
	return p.mp.Meter(name)
}

// Recorder holds the instruments a cycle or tick loop reports through.
// A nil *Recorder is safe to call every method on; this lets callers skip
// a cfg.Metrics.Enabled check at every call site.
type Recorder struct {
	edgesWritten     otelmetric.Int64Counter
	entriesProcessed otelmetric.Int64Counter
	notifyDropped    otelmetric.Int64Counter
	cycleDuration    otelmetric.Float64Histogram
}

// NewRecorder builds a Recorder against meter's instruments.
func NewRecorder(meter otelmetric.Meter) (*Recorder, error) {
	edgesWritten, err := meter.Int64Counter("edgecalc.edges_written",
		otelmetric.WithDescription("edges written per edge calculator tick"))
	if err != nil {
		return nil, err
	}
	entriesProcessed, err := meter.Int64Counter("edgecalc.entries_processed",
		otelmetric.WithDescription("new queue entries processed per edge calculator tick"))
	if err != nil {
		return nil, err
	}
	notifyDropped, err := meter.Int64Counter("notify.dropped_total",
		otelmetric.WithDescription("notifications dropped by the outbound worker pool"))
	if err != nil {
		return nil, err
	}
	cycleDuration, err := meter.Float64Histogram("scheduler.cycle_duration_seconds",
		otelmetric.WithDescription("match scheduler cycle wall time"),
		otelmetric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return &Recorder{
		edgesWritten:     edgesWritten,
		entriesProcessed: entriesProcessed,
		notifyDropped:    notifyDropped,
		cycleDuration:    cycleDuration,
	}, nil
}

// EdgesWritten records n edges written in one edge calculator tick.
func (r *Recorder) EdgesWritten(ctx context.Context, n int64) {
	if r == nil {
		return
	}
	r.edgesWritten.Add(ctx, n)
}

// EntriesProcessed records n new queue entries processed in one tick.
func (r *Recorder) EntriesProcessed(ctx context.Context, n int64) {
	if r == nil {
		return
	}
	r.entriesProcessed.Add(ctx, n)
}

// NotifyDropped increments the dropped-notification counter by one.
func (r *Recorder) NotifyDropped(ctx context.Context) {
	if r == nil {
		return
	}
	r.notifyDropped.Add(ctx, 1)
}

// CycleDuration records one scheduler cycle's wall time in seconds.
func (r *Recorder) CycleDuration(ctx context.Context, seconds float64) {
	if r == nil {
		return
	}
	r.cycleDuration.Record(ctx, seconds)
}
