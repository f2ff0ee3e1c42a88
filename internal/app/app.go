package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"multifeed/internal/adapter/fetcher"
	"multifeed/internal/adapter/matcher"
	"multifeed/internal/adapter/parser"
	"multifeed/internal/adapter/sink"
	"multifeed/internal/config"
	"multifeed/internal/logger"
	"multifeed/internal/migrations"
	server "multifeed/internal/transport/http"
	"multifeed/internal/usecase"
	"multifeed/internal/worker"
	"multifeed/storage"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// maxEmittedInMemory ограничивает журнал выдачи для бэкендов без базы данных.
const maxEmittedInMemory = 1000

// App представляет основное приложение multifeed.
// Координирует работу всех компонентов: HTTP-сервера, воркера запусков,
// хранилищ и системы логирования. Обеспечивает graceful startup и shutdown.
type App struct {
	config   *config.Config
	logger   *slog.Logger
	server   *http.Server
	worker   *worker.Worker
	run      *usecase.RunUseCase
	seen     storage.SeenStore
	stopChan chan os.Signal
	wg       sync.WaitGroup
}

// New создает и инициализирует приложение.
// Выполняет настройку логгера, подключение к выбранному хранилищу,
// применение миграций и сборку конвейера.
// Возвращает ошибку в случае сбоя любой из инициализационных процедур.
func New(cfg *config.Config) (*App, error) {
	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}
	slog.SetDefault(appLogger)
	return NewWithLogger(cfg, appLogger)
}

// NewWithLogger собирает приложение с готовым логгером.
func NewWithLogger(cfg *config.Config, appLogger *slog.Logger) (*App, error) {
	if len(cfg.App.FeedURLs) > config.RecommendedMaxFeeds {
		appLogger.Warn("Feed count exceeds recommended limit",
			slog.String("component", "app"),
			slog.Int("feed_count", len(cfg.App.FeedURLs)),
			slog.Int("recommended", config.RecommendedMaxFeeds),
		)
	}
	seen, itemLog, err := openStorage(context.Background(), cfg, appLogger)
	if err != nil {
		return nil, err
	}

	httpFetcher := fetcher.NewHTTPFetcher(appLogger, cfg.App.Timeout())
	feedParser := parser.NewFeedParser(appLogger)
	filter := usecase.NewKeywordFilter(matcher.NewTextMatcher(), cfg.App.Keywords, appLogger)
	aggregator := usecase.NewAggregator(httpFetcher, feedParser, filter, appLogger, cfg.App.FeedNames())
	emitter := usecase.NewEmitter(sink.NewLogSink(appLogger, itemLog), appLogger)

	run, err := usecase.NewRunUseCase(usecase.RunConfig{
		SourceKey:  cfg.App.SourceKey,
		URLs:       cfg.App.URLs(),
		MaxPerFeed: cfg.App.MaxPerFeed,
	}, aggregator, seen, emitter, appLogger)
	if err != nil {
		seen.Close()
		return nil, err
	}

	handler := server.NewHandler(appLogger, itemLog, run, cfg.App.DefaultItemsLimit)
	router := server.NewServer(appLogger, handler)

	return &App{
		config: cfg,
		logger: appLogger,
		server: &http.Server{
			Addr:    cfg.Server.Address,
			Handler: router,
		},
		worker:   worker.New(run, cfg.App.Interval(), appLogger),
		run:      run,
		seen:     seen,
		stopChan: make(chan os.Signal, 1),
	}, nil
}

// openStorage подключает бэкенд, выбранный в storage.driver.
// Для redis журнал выдачи хранится в памяти процесса.
func openStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.SeenStore, storage.ItemLog, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		dbPool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := dbPool.Ping(ctx); err != nil {
			dbPool.Close()
			return nil, nil, fmt.Errorf("database ping failed: %w", err)
		}
		if err := migrations.Apply(ctx, log, dbPool); err != nil {
			dbPool.Close()
			return nil, nil, fmt.Errorf("migrations failed: %w", err)
		}
		db := storage.NewPostgresStore(dbPool, cfg.App.SourceKey, cfg.App.DefaultItemsLimit, log)
		return db, db, nil
	case config.DriverRedis:
		seen, err := storage.NewRedisSeenStore(storage.RedisConfig{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		}, log)
		if err != nil {
			return nil, nil, err
		}
		return seen, storage.NewMemoryStore(cfg.App.DefaultItemsLimit, maxEmittedInMemory), nil
	case config.DriverMemory:
		mem := storage.NewMemoryStore(cfg.App.DefaultItemsLimit, maxEmittedInMemory)
		return mem, mem, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// Activate проверяет доступность всех лент и освобождает ресурсы хранилища.
// Используется в режиме проверки конфигурации.
func (a *App) Activate(ctx context.Context) error {
	defer a.seen.Close()
	return a.run.Activate(ctx)
}

// Run запускает приложение.
// Проверяет ленты, запускает воркер и HTTP-сервер, затем блокируется
// до получения сигнала завершения. Возвращает ошибку, если ленты недоступны
// или сервер не удалось запустить.
func (a *App) Run() error {
	a.logger.Info("Starting multifeed",
		slog.String("component", "app"),
		slog.Int("feed_count", len(a.run.URLs())),
		slog.String("processing_interval", a.worker.GetInterval().String()),
		slog.String("storage", a.config.Storage.Driver),
	)
	if err := a.run.Activate(context.Background()); err != nil {
		a.seen.Close()
		return fmt.Errorf("feed activation failed: %w", err)
	}
	listener, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		a.seen.Close()
		return fmt.Errorf("failed to create listener: %w", err)
	}
	a.logger.Info("HTTP server ready",
		slog.String("component", "server"),
		slog.String("address", listener.Addr().String()),
	)
	a.worker.Start()
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP server failed", slog.Any("error", err))
		}
	}()
	signal.Notify(a.stopChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-a.stopChan
	a.logger.Info("Shutdown signal received",
		slog.String("component", "app"),
		slog.String("signal", sig.String()),
	)
	return a.Shutdown()
}

// Shutdown выполняет graceful shutdown приложения.
// Останавливает воркер, завершает HTTP-сервер, закрывает хранилище
// и ожидает завершения всех горутин. Использует таймаут 10 секунд для завершения
// HTTP-сервера.
func (a *App) Shutdown() error {
	a.logger.Info("Starting graceful shutdown")
	if a.worker != nil {
		a.worker.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown failed", slog.Any("error", err))
	}
	a.wg.Wait()
	if a.seen != nil {
		a.seen.Close()
	}
	runs, failures := a.worker.Stats()
	a.logger.Info("Application stopped gracefully",
		slog.Int64("runs", runs),
		slog.Int64("failures", failures),
	)
	return nil
}
