package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"multifeed/internal/domain"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrRunInProgress возвращается, если предыдущий запуск источника еще не завершен.
var ErrRunInProgress = errors.New("run already in progress")

// RunConfig описывает один логический источник: набор лент и лимит на ленту.
type RunConfig struct {
	SourceKey  string
	URLs       []string
	MaxPerFeed int
}

// RunReport - итог одного запуска конвейера.
type RunReport struct {
	RunID    string        `json:"run_id"`
	Fetched  int           `json:"fetched"`
	Fresh    int           `json:"fresh"`
	Emitted  int           `json:"emitted"`
	Duration time.Duration `json:"duration"`
}

// RunUseCase реализует полный цикл запуска: загрузка состояния, агрегация,
// сортировка, дедупликация, выдача и сохранение новых идентификаторов.
// Запуски одного источника не выполняются параллельно.
type RunUseCase struct {
	cfg        RunConfig
	aggregator *Aggregator
	store      SeenStore
	emitter    *Emitter
	log        *slog.Logger
	mu         sync.Mutex
	newRunID   func() string
}

// NewRunUseCase создает UseCase запуска и проверяет конфигурацию источника.
// Ошибки конфигурации оборачивают domain.ErrConfiguration.
func NewRunUseCase(
	cfg RunConfig,
	aggregator *Aggregator,
	store SeenStore,
	emitter *Emitter,
	log *slog.Logger,
) (*RunUseCase, error) {
	if len(cfg.URLs) == 0 {
		return nil, fmt.Errorf("%w: feed url list is empty", domain.ErrConfiguration)
	}
	if cfg.MaxPerFeed <= 0 {
		return nil, fmt.Errorf("%w: max per feed must be positive, got %d", domain.ErrConfiguration, cfg.MaxPerFeed)
	}
	if cfg.SourceKey == "" {
		return nil, fmt.Errorf("%w: source key is empty", domain.ErrConfiguration)
	}
	urls := make([]string, len(cfg.URLs))
	copy(urls, cfg.URLs)
	cfg.URLs = urls
	return &RunUseCase{
		cfg:        cfg,
		aggregator: aggregator,
		store:      store,
		emitter:    emitter,
		log:        log.With(slog.String("component", "run"), slog.String("source", cfg.SourceKey)),
		newRunID:   uuid.NewString,
	}, nil
}

// Activate однократно загружает каждую ленту по очереди, чтобы выявить
// недоступные или неразбираемые адреса до первого запуска.
// Возвращает первую *domain.FetchError.
func (uc *RunUseCase) Activate(ctx context.Context) error {
	for _, url := range uc.cfg.URLs {
		if _, err := uc.aggregator.FetchFeed(ctx, url); err != nil {
			return err
		}
	}
	uc.log.Info("All feeds validated", slog.Int("feed_count", len(uc.cfg.URLs)))
	return nil
}

// Run выполняет один запуск конвейера.
// Ошибка загрузки любой ленты или чтения состояния прерывает запуск без побочных эффектов.
// Ошибка сохранения после выдачи возвращается вместе с отчетом: выданные записи не отзываются.
func (uc *RunUseCase) Run(ctx context.Context) (*RunReport, error) {
	if !uc.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer uc.mu.Unlock()

	start := time.Now()
	report := &RunReport{RunID: uc.newRunID()}
	log := uc.log.With(slog.String("run_id", report.RunID))
	log.Info("Run started", slog.Int("feed_count", len(uc.cfg.URLs)))

	seen, err := uc.store.LoadSeenIDs(ctx, uc.cfg.SourceKey)
	if err != nil {
		log.Error("Failed to load seen ids", slog.Any("error", err))
		return nil, &domain.PersistenceError{Op: "load", Err: err}
	}

	items, err := uc.aggregator.Aggregate(ctx, uc.cfg.URLs, uc.cfg.MaxPerFeed)
	if err != nil {
		log.Error("Run aborted", slog.String("stage", "aggregate"), slog.Any("error", err))
		return nil, err
	}
	report.Fetched = len(items)

	fresh, ids := NewDedupGate(seen).Filter(SortChronological(items))
	report.Fresh = len(fresh)

	emitted, emitErr := uc.emitter.Emit(ctx, report.RunID, fresh)
	report.Emitted = emitted

	var saveErr error
	if emitted > 0 {
		if err := uc.store.PersistSeenIDs(ctx, uc.cfg.SourceKey, ids[:emitted]); err != nil {
			log.Error("Failed to persist seen ids, items may be emitted again",
				slog.Int("count", emitted),
				slog.Any("error", err),
			)
			saveErr = &domain.PersistenceError{Op: "save", Err: err}
		}
	}
	report.Duration = time.Since(start)

	if err := errors.Join(emitErr, saveErr); err != nil {
		return report, err
	}
	log.Info("Run completed",
		slog.Int("fetched", report.Fetched),
		slog.Int("fresh", report.Fresh),
		slog.Int("emitted", report.Emitted),
		slog.Duration("duration", report.Duration),
	)
	return report, nil
}

// URLs возвращает адреса лент источника.
func (uc *RunUseCase) URLs() []string { return uc.cfg.URLs }
