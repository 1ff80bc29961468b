package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rknpizza/counterboard/config"
	"github.com/rknpizza/counterboard/internal/board"
	"github.com/rknpizza/counterboard/internal/kafka"
	"github.com/rknpizza/counterboard/internal/notifier"
	"github.com/rknpizza/counterboard/internal/poller"
	"github.com/rknpizza/counterboard/internal/ports"
	"github.com/rknpizza/counterboard/internal/source/woo"
	"github.com/rknpizza/counterboard/internal/store/memory"
	"github.com/rknpizza/counterboard/internal/store/postgres"
	"github.com/rknpizza/counterboard/internal/store/sqlite"
	rest "github.com/rknpizza/counterboard/internal/transport/http"
	"github.com/rknpizza/counterboard/internal/usecase"
	"github.com/rknpizza/counterboard/pkg/logger"
	"github.com/rknpizza/counterboard/pkg/metrics"
	"github.com/rknpizza/counterboard/pkg/telemetry"
)

// backgroundLoop — фоновый компонент с запуском и остановкой
// (поллер, контроллер оповещений).
type backgroundLoop interface {
	Start(ctx context.Context) error
	Close() error
}

// App — собранное приложение и его внешние интерфейсы (HTTP, фоновые циклы, consumer).
type App struct {
	Logger          ports.Logger          // логгер
	HTTPServer      *http.Server          // HTTP-сервер
	Poller          backgroundLoop        // фоновый опрос источника
	Notifier        backgroundLoop        // машина звуковых оповещений
	KafkaConsumer   ports.MessageConsumer // консьюмер событий заказов; nil, если Kafka выключена
	gracefulTimeout time.Duration         // время ожидания завершения HTTP-сервера
}

// Cleanup — функция освобождения ресурсов.
type Cleanup func()

// applyGinMode — устанавливает режим Gin по строке;
// неизвестное значение → debug и предупреждение в лог.
func applyGinMode(ctx context.Context, mode string, log ports.Logger) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	case "", "debug":
		gin.SetMode(gin.DebugMode)
	default:
		gin.SetMode(gin.DebugMode)
		log.Warnf(ctx, "unknown GIN_MODE=%q, fallback to debug", mode)
	}
}

// boardStore — полный контракт хранилища; его закрывают все три драйвера.
// Pruner возвращается отдельным значением, чтобы usecase зависел
// только от нужной ему операции.
type boardStore interface {
	ports.SnapshotStore
	ports.ChecklistStore
	ports.PrefsStore
}

// openStore — выбирает драйвер хранилища по конфигурации.
// Возвращает хранилище, опциональный pruner и функцию закрытия.
func openStore(ctx context.Context, cfg *config.Config) (boardStore, ports.ChecklistPruner, func(), error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Storage.Driver)) {
	case "", "sqlite":
		st, err := sqlite.New(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("открытие sqlite %q: %w", cfg.Storage.SQLitePath, err)
		}
		return st, st, func() { _ = st.Close() }, nil

	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("подключение postgres: %w", err)
		}
		st := postgres.New(pool)
		return st, st, pool.Close, nil

	case "memory":
		st := memory.New()
		return st, st, func() {}, nil

	default:
		return nil, nil, nil, fmt.Errorf("неизвестный STORAGE_DRIVER=%q", cfg.Storage.Driver)
	}
}

// Bootstrap — собирает зависимости и возвращает приложение, функцию очистки и ошибку.
func Bootstrap(ctx context.Context, cfg *config.Config) (*App, Cleanup, error) {
	// Логгер (dev/prod режим задаётся конфигурацией).
	logg, cleanupLogger, err := logger.NewZapLogger(cfg.Logger.IsProd)
	if err != nil {
		return nil, func() {}, err
	}

	// Регистрация метрик (Prometheus).
	metrics.MustRegister()

	// Хранилище снапшота/чек-листа/флагов.
	store, pruner, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		if cErr := cleanupLogger(); cErr != nil {
			logg.Warnf(ctx, "cleanup logger: %v", cErr)
		}
		return nil, func() {}, err
	}

	// Трейсинг OTEL (при включённой конфигурации); по умолчанию — no-op.
	shutdownTrace := func(context.Context) error { return nil }
	if cfg.Tracing.Enabled {
		setup, tErr := telemetry.SetupTracing(ctx, cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
		if tErr != nil {
			logg.Warnf(ctx, "failed to setup tracing: %v", tErr)
		} else {
			logg.Infof(ctx, "otel tracing enabled service=%s endpoint=%s sample=%.2f",
				cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
			shutdownTrace = setup
		}
	}

	// Сборка зависимостей доменного слоя.
	source := woo.New(cfg.Source)
	orderBoard := board.New()
	hub := rest.NewEventHub()
	alerts := notifier.New(hub, store, logg, cfg.Notifier.RepeatEvery, cfg.Notifier.CountdownTick, nil)
	orderPoller := poller.New(source, store, orderBoard, alerts, logg, cfg.Poller.Interval, nil)
	boardService := usecase.NewBoardService(source, store, pruner, orderPoller, logg)

	// Режим Gin.
	applyGinMode(ctx, cfg.HTTP.GinMode, logg)

	// Роутер и HTTP-сервер.
	auth := rest.NewSessionAuth(cfg.Auth)
	httpHandler := rest.NewHandler(boardService, orderBoard, alerts, hub, auth, logg)
	router := rest.NewRouter(httpHandler, rest.RouterOptions{
		StaticDir:      cfg.HTTP.StaticDir,
		TracingEnabled: cfg.Tracing.Enabled,
		ServiceName:    cfg.Tracing.ServiceName,
		HandlerTimeout: cfg.HTTP.HandlerTimeout,
	})

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	// Консьюмер Kafka — опционален: событие лишь повод опросить источник,
	// без брокера доска живёт на плановом опросе.
	var consumer ports.MessageConsumer
	if cfg.Kafka.Enabled {
		consumer = kafka.NewConsumer(&kafka.ConsumerConfig{
			Brokers:        cfg.Kafka.Brokers,
			GroupID:        cfg.Kafka.GroupID,
			Topic:          cfg.Kafka.Topic,
			StartOffset:    cfg.Kafka.StartOffset,
			ProcessTimeout: cfg.Kafka.ProcessTimeout,
			RetryInitial:   cfg.Kafka.RetryInitial,
			RetryMax:       cfg.Kafka.RetryMax,
		}, orderPoller, logg)
	}

	app := &App{
		Logger:          logg,
		HTTPServer:      httpSrv,
		Poller:          orderPoller,
		Notifier:        alerts,
		KafkaConsumer:   consumer,
		gracefulTimeout: cfg.HTTP.GracefulTimeout,
	}

	// Очистка ресурсов (в обратном порядке).
	cleanup := func() {
		if terr := shutdownTrace(context.Background()); terr != nil {
			logg.Warnf(ctx, "shutdown tracing: %v", terr)
		}
		if consumer != nil {
			if err := consumer.Close(); err != nil {
				logg.Warnf(ctx, "kafka consumer close error: %v", err)
			}
		}
		closeStore()
		if cerr := cleanupLogger(); cerr != nil {
			logg.Warnf(ctx, "cleanup logger: %v", cerr)
		}
	}

	return app, cleanup, nil
}

// Run — запускает фоновые циклы и HTTP-сервер; ждёт отмены контекста
// или ошибки и останавливает всё в обратном порядке.
func (a *App) Run(ctx context.Context) error {
	// Контроллер оповещений стартует до поллера: первый цикл опроса
	// уже сообщает ему состояние доски.
	if err := a.Notifier.Start(ctx); err != nil {
		return fmt.Errorf("запуск контроллера оповещений: %w", err)
	}
	if err := a.Poller.Start(ctx); err != nil {
		_ = a.Notifier.Close()
		return fmt.Errorf("запуск поллера: %w", err)
	}

	errCh := make(chan error, 2)

	// Запуск консьюмера (если настроен).
	if a.KafkaConsumer != nil {
		go func() {
			a.Logger.Infof(ctx, "kafka consumer starting")
			if err := a.KafkaConsumer.Run(ctx); err != nil {
				errCh <- err
			}
		}()
	}

	// Запуск HTTP-сервера.
	go func() {
		a.Logger.Infof(ctx, "http server starting (addr=%s)", a.HTTPServer.Addr)
		if err := a.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Ожидание сигнала остановки или фоновой ошибки.
	select {
	case <-ctx.Done():
		a.Logger.Infof(ctx, "shutdown requested, starting graceful shutdown")
	case err := <-errCh:
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			a.Logger.Infof(ctx, "background component stopped: %v", err)
		} else {
			a.Logger.Warnf(ctx, "background error: %v", err)
		}
	}

	gt := a.gracefulTimeout
	if gt <= 0 {
		gt = 5 * time.Second
	}

	// Корректная остановка HTTP-сервера.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), gt)
	defer cancel()

	if err := a.HTTPServer.Shutdown(shutdownCtx); err != nil {
		a.Logger.Warnf(ctx, "http server shutdown failed: %v", err)
	} else {
		a.Logger.Infof(ctx, "http server stopped gracefully")
	}

	// Остановка фоновых циклов.
	if err := a.Poller.Close(); err != nil {
		a.Logger.Warnf(ctx, "poller close error: %v", err)
	}
	if err := a.Notifier.Close(); err != nil {
		a.Logger.Warnf(ctx, "notifier close error: %v", err)
	}
	if a.KafkaConsumer != nil {
		if err := a.KafkaConsumer.Close(); err != nil {
			a.Logger.Warnf(ctx, "kafka consumer close error: %v", err)
		}
	}

	a.Logger.Infof(ctx, "service stopped")
	return nil
}
