package job

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type countingCompleter struct {
	calls atomic.Int32
	n     int64
	err   error
}

func (c *countingCompleter) CompletePastShifts(_ context.Context) (int64, error) {
	c.calls.Add(1)
	return c.n, c.err
}

func TestRunShiftCompletion_SweepsUntilCancelled(t *testing.T) {
	svc := &countingCompleter{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		RunShiftCompletion(ctx, svc, 5*time.Millisecond, zap.NewNop())
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for svc.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected repeated sweeps, got %d", svc.calls.Load())
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop after cancel")
	}
}

func TestRunShiftCompletion_SurvivesErrors(t *testing.T) {
	svc := &countingCompleter{err: errors.New("db down")}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// an already-cancelled context still runs the first sweep, then returns
	RunShiftCompletion(ctx, svc, time.Hour, zap.NewNop())
	if svc.calls.Load() != 1 {
		t.Errorf("expected one sweep, got %d", svc.calls.Load())
	}
}

func TestSweep_QuietWhenNothingEnded(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	sweep(context.Background(), &countingCompleter{}, logger)
	if logs.Len() != 0 {
		t.Errorf("an idle sweep should not log, got %v", logs.All())
	}

	sweep(context.Background(), &countingCompleter{n: 2}, logger)
	if got := logs.FilterMessage("shifts completed").Len(); got != 1 {
		t.Errorf("expected one completion entry, got %d", got)
	}
}
