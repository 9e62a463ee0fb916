package metrics

import (
	"context"
	"testing"

	"github.com/roomie-match/matchcore/internal/config"
)

func TestSetup_DisabledReturnsWorkingNoopProvider(t *testing.T) {
	ctx := context.Background()
	p, err := Setup(ctx, config.MetricsConfig{Enabled: false})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	defer p.Shutdown(ctx)

	r, err := NewRecorder(p.Meter("test"))
	if err != nil {
		t.Fatalf("NewRecorder failed: %v", err)
	}
	r.EdgesWritten(ctx, 3)
	r.EntriesProcessed(ctx, 1)
	r.NotifyDropped(ctx)
	r.CycleDuration(ctx, 0.5)
}

func TestRecorder_NilIsSafe(t *testing.T) {
	var r *Recorder
	ctx := context.Background()
	r.EdgesWritten(ctx, 1)
	r.EntriesProcessed(ctx, 1)
	r.NotifyDropped(ctx)
	r.CycleDuration(ctx, 1.0)
}
