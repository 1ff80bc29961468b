// Package poller — фоновый цикл опроса источника заказов: плановый период
// на gocron, разница по снапшоту, публикация на доску и сигнал контроллеру
// оповещений.
package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/rknpizza/counterboard/internal/domain"
	"github.com/rknpizza/counterboard/internal/ports"
	"github.com/rknpizza/counterboard/pkg/ctxmeta"
	"github.com/rknpizza/counterboard/pkg/metrics"
)

// Локальные интерфейсы потребителя: поллеру не нужны конкретные типы
// доски и контроллера, только эти две операции.
type (
	boardPublisher interface {
		Publish(active, completed []domain.Order)
	}
	alertController interface {
		// ObservePoll — результат цикла для машины оповещений:
		// сколько новых заказов и остались ли confirmed на доске.
		ObservePoll(ctx context.Context, newOrders int, confirmedOutstanding bool)
	}
)

var _ ports.PollTrigger = (*Poller)(nil)

// Result — итог одного успешного цикла опроса.
type Result struct {
	Active       []domain.Order
	Completed    []domain.Order
	NewlyArrived []domain.Order
}

// Poller — владелец цикла опроса. Плановые тики при занятом цикле
// пропускаются; PollNow, наоборот, дожидается своей очереди.
type Poller struct {
	source    ports.OrderSource
	snapshots ports.SnapshotStore
	board     boardPublisher
	alerts    alertController
	log       ports.Logger
	interval  time.Duration
	clock     clockwork.Clock

	mu        sync.Mutex // сериализует циклы
	scheduler gocron.Scheduler
}

// New — конструктор Poller. clock == nil означает реальное время.
func New(
	source ports.OrderSource,
	snapshots ports.SnapshotStore,
	board boardPublisher,
	alerts alertController,
	log ports.Logger,
	interval time.Duration,
	clock clockwork.Clock,
) *Poller {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Poller{
		source:    source,
		snapshots: snapshots,
		board:     board,
		alerts:    alerts,
		log:       log,
		interval:  interval,
		clock:     clock,
	}
}

// Start — первый цикл сразу, дальше по расписанию.
func (p *Poller) Start(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler(gocron.WithClock(p.clock))
	if err != nil {
		return fmt.Errorf("создание планировщика: %w", err)
	}

	if _, err := scheduler.NewJob(
		gocron.DurationJob(p.interval),
		gocron.NewTask(func() { p.scheduledCycle(ctx) }),
		gocron.WithName("order-poll"),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	); err != nil {
		_ = scheduler.Shutdown()
		return fmt.Errorf("создание задачи опроса: %w", err)
	}

	p.scheduler = scheduler
	scheduler.Start()
	return nil
}

// Close — останавливает расписание; текущий цикл дорабатывает.
func (p *Poller) Close() error {
	if p.scheduler == nil {
		return nil
	}
	return p.scheduler.Shutdown()
}

// scheduledCycle — плановый тик. Занятый цикл означает медленный источник,
// догонять нет смысла: следующий тик заберёт свежие данные.
func (p *Poller) scheduledCycle(ctx context.Context) {
	if !p.mu.TryLock() {
		metrics.PollerCycles.WithLabelValues("skipped").Inc()
		p.log.Warnf(ctx, "плановый опрос пропущен: предыдущий цикл ещё идёт")
		return
	}
	defer p.mu.Unlock()

	if _, err := p.cycle(ctx); err != nil {
		p.log.Errorf(ctx, "цикл опроса: %v", err)
	}
}

// PollNow — внеплановый цикл (после смены статуса, по событию Kafka).
// В отличие от планового тика дожидается завершения текущего цикла:
// вызывающему нужны данные не старее его собственного изменения.
func (p *Poller) PollNow(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, err := p.cycle(ctx)
	return err
}

// Poll — один цикл под замком (для вызова напрямую из тестов и бутстрапа).
func (p *Poller) Poll(ctx context.Context) (Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cycle(ctx)
}

// cycle — тело цикла. Вызывается только под p.mu.
// Любая ошибка до записи снапшота оставляет прошлое состояние нетронутым.
func (p *Poller) cycle(ctx context.Context) (Result, error) {
	ctx = ctxmeta.WithCycleID(ctx, uuid.NewString())

	active, err := p.source.FetchOrders(ctx, domain.ActiveStatuses()...)
	if err != nil {
		metrics.PollerCycles.WithLabelValues("fetch_error").Inc()
		return Result{}, fmt.Errorf("активные заказы: %w", err)
	}
	completed, err := p.source.FetchOrders(ctx, domain.StatusCompleted)
	if err != nil {
		metrics.PollerCycles.WithLabelValues("fetch_error").Inc()
		return Result{}, fmt.Errorf("завершённые заказы: %w", err)
	}

	prev, err := p.snapshots.Load(ctx)
	if err != nil {
		metrics.PollerCycles.WithLabelValues("store_error").Inc()
		return Result{}, fmt.Errorf("чтение снапшота: %w", err)
	}

	arrived := domain.NewlyArrived(prev, active)

	if err := p.snapshots.Replace(ctx, domain.SnapshotOf(active)); err != nil {
		metrics.PollerCycles.WithLabelValues("store_error").Inc()
		return Result{}, fmt.Errorf("замена снапшота: %w", err)
	}

	p.board.Publish(active, completed)
	p.alerts.ObservePoll(ctx, len(arrived), domain.HasConfirmed(active))

	metrics.PollerCycles.WithLabelValues("ok").Inc()
	metrics.PollerNewOrders.Add(float64(len(arrived)))
	metrics.PollerActiveOrders.Set(float64(len(active)))

	if len(arrived) > 0 {
		p.log.Infof(ctx, "опрос: активных=%d, завершённых=%d, новых=%d",
			len(active), len(completed), len(arrived))
	}

	return Result{Active: active, Completed: completed, NewlyArrived: arrived}, nil
}
