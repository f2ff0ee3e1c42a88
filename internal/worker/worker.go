package worker

import (
	"context"
	"errors"
	"log/slog"
	"multifeed/internal/usecase"
	"sync/atomic"
	"time"
)

// Runner определяет интерфейс одного запуска конвейера.
// Используется для внедрения зависимости в воркер.
type Runner interface {
	Run(ctx context.Context) (*usecase.RunReport, error)
}

// Worker реализует фоновый воркер, запускающий конвейер по расписанию.
// Запуски выполняются последовательно в одной горутине и не перекрываются.
// Повторов при ошибке нет: следующий запуск происходит по тику.
type Worker struct {
	runner   Runner
	interval time.Duration
	log      *slog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	runs     atomic.Int64
	failures atomic.Int64
}

// New создает новый воркер для периодического запуска конвейера.
func New(runner Runner, interval time.Duration, log *slog.Logger) *Worker {
	return &Worker{
		runner:   runner,
		interval: interval,
		log:      log.With(slog.String("component", "worker")),
	}
}

// Start запускает воркер в отдельной горутине.
// Первый запуск выполняется сразу, далее с заданным интервалом.
func (w *Worker) Start() {
	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.done = make(chan struct{})
	go w.run()
}

// Stop отменяет контекст воркера и дожидается завершения текущего запуска.
func (w *Worker) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done
}

// run выполняет основной цикл работы воркера.
func (w *Worker) run() {
	defer close(w.done)
	w.log.Info("Feed processing worker started", slog.String("interval", w.interval.String()))
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	w.runOnce()
	for {
		select {
		case <-ticker.C:
			w.runOnce()
		case <-w.ctx.Done():
			w.log.Info("Worker stopping")
			return
		}
	}
}

// runOnce выполняет один запуск и логирует его итог.
func (w *Worker) runOnce() {
	if w.ctx.Err() != nil {
		return
	}
	w.runs.Add(1)
	report, err := w.runner.Run(w.ctx)
	if err != nil {
		if errors.Is(err, usecase.ErrRunInProgress) {
			w.log.Warn("Previous run is still in progress, tick skipped")
			return
		}
		w.failures.Add(1)
		attrs := []any{slog.Any("error", err)}
		if report != nil {
			attrs = append(attrs, slog.String("run_id", report.RunID), slog.Int("emitted", report.Emitted))
		}
		w.log.Error("Feed processing cycle failed", attrs...)
		return
	}
	w.log.Info("Feed processing cycle completed",
		slog.String("run_id", report.RunID),
		slog.Int("emitted", report.Emitted),
		slog.Duration("duration", report.Duration),
	)
}

// Stats возвращает число выполненных и неудачных запусков.
func (w *Worker) Stats() (runs, failures int64) {
	return w.runs.Load(), w.failures.Load()
}

// GetInterval возвращает интервал запусков.
func (w *Worker) GetInterval() time.Duration { return w.interval }
