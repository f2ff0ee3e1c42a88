package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"multifeed/internal/usecase"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingRunner struct {
	calls atomic.Int32
	err   error
}

func (r *countingRunner) Run(ctx context.Context) (*usecase.RunReport, error) {
	r.calls.Add(1)
	if r.err != nil {
		return nil, r.err
	}
	return &usecase.RunReport{RunID: "r"}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWorker_RunsImmediatelyAndOnTick(t *testing.T) {
	runner := &countingRunner{}
	w := New(runner, 20*time.Millisecond, testLogger())

	w.Start()
	assert.Eventually(t, func() bool { return runner.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	w.Stop()

	stopped := runner.calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, stopped, runner.calls.Load())
	runs, failures := w.Stats()
	assert.Equal(t, int64(stopped), runs)
	assert.Zero(t, failures)
}

func TestWorker_CountsFailures(t *testing.T) {
	runner := &countingRunner{err: errors.New("feed down")}
	w := New(runner, time.Hour, testLogger())

	w.Start()
	assert.Eventually(t, func() bool { return runner.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	w.Stop()

	_, failures := w.Stats()
	assert.Equal(t, int64(1), failures)
}

func TestWorker_SkipsRunInProgress(t *testing.T) {
	runner := &countingRunner{err: usecase.ErrRunInProgress}
	w := New(runner, time.Hour, testLogger())

	w.Start()
	assert.Eventually(t, func() bool { return runner.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	w.Stop()

	_, failures := w.Stats()
	assert.Zero(t, failures)
}

func TestWorker_StopWithoutStart(t *testing.T) {
	w := New(&countingRunner{}, time.Second, testLogger())
	w.Stop()
}
