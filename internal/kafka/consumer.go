// Package kafka — приём событий заказов из брокера. Само событие данных
// не несёт: валидное сообщение лишь повод опросить источник вне очереди,
// владельцем данных остаётся его API.
package kafka

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/rknpizza/counterboard/internal/domain"
	"github.com/rknpizza/counterboard/internal/ports"
	"github.com/rknpizza/counterboard/pkg/metrics"
)

var _ ports.MessageConsumer = (*Consumer)(nil)

// ErrInvalidEvent — сообщение не является событием заказа.
// Такое сообщение пропускается с коммитом: повторная доставка не поможет.
var ErrInvalidEvent = errors.New("invalid order event")

// reader — минимальный контракт над kafka.Reader для подмены в тестах.
type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Config() kafka.ReaderConfig
	Close() error
}

// orderEvent — форма события на проводе: идентификатор и статус заказа.
type orderEvent struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// Consumer — обёртка над kafka.Reader с ручным коммитом оффсетов.
type Consumer struct {
	reader         reader
	trigger        ports.PollTrigger
	log            ports.Logger
	processTimeout time.Duration
	retryInitial   time.Duration
	retryMax       time.Duration
	jitterRand     *rand.Rand
	closeOnce      sync.Once
}

// NewConsumer — конструктор. readerConfig() настроен на ручной коммит.
func NewConsumer(cfg *ConsumerConfig, trigger ports.PollTrigger, log ports.Logger) *Consumer {
	return newConsumer(kafka.NewReader(cfg.readerConfig()), cfg, trigger, log)
}

func newConsumer(r reader, cfg *ConsumerConfig, trigger ports.PollTrigger, log ports.Logger) *Consumer {
	pt := cfg.ProcessTimeout
	if pt <= 0 {
		pt = 5 * time.Second
	}
	rInit := cfg.RetryInitial
	if rInit <= 0 {
		rInit = time.Second
	}
	rMax := cfg.RetryMax
	if rMax <= 0 {
		rMax = 30 * time.Second
	}

	return &Consumer{
		reader:         r,
		trigger:        trigger,
		log:            log,
		processTimeout: pt,
		retryInitial:   rInit,
		retryMax:       rMax,
		// jitterRand — рассинхронизация экспоненциального backoff.
		jitterRand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run — основной цикл:
// 1) читаем сообщение без автокоммита;
// 2) валидное событие → внеплановый опрос → CommitMessages;
// 3) невалидное → лог и CommitMessages (пропускаем навсегда);
// 4) временная ошибка опроса → без коммита (at-least-once).
func (c *Consumer) Run(ctx context.Context) error {
	rc := c.reader.Config()
	c.log.Infof(ctx, "kafka consumer started topic=%s group_id=%s brokers=%v", rc.Topic, rc.GroupID, rc.Brokers)

	retry := c.retryInitial

	for {
		msg, fetchErr := c.reader.FetchMessage(ctx)
		if fetchErr != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			sleep := c.withJitterEqual(retry)
			c.log.Warnf(ctx, "fetch failed: %v (will retry in %s)", fetchErr, sleep)
			if !c.sleepWithBackoff(ctx, sleep) {
				return ctx.Err()
			}
			retry = c.nextBackoff(retry)
			continue
		}

		retry = c.retryInitial
		metrics.KafkaMessagesConsumed.WithLabelValues(rc.Topic).Inc()

		if shouldCommit := c.handleMessage(ctx, rc.Topic, &msg); shouldCommit {
			c.commitSafely(ctx, &msg)
		} else {
			// Пауза после временной ошибки, чтобы не молотить источник.
			_ = c.sleepWithBackoff(ctx, c.withJitterEqual(minDuration(c.retryInitial, 500*time.Millisecond)))
		}
	}
}

// Close — закрывает reader. Вызывается при остановке приложения.
func (c *Consumer) Close() (retErr error) {
	c.closeOnce.Do(func() {
		retErr = c.reader.Close()
	})
	return retErr
}

// parseEvent — строгий разбор события: известный JSON, положительный id,
// статус из закрытого множества.
func parseEvent(raw []byte) (orderEvent, error) {
	var ev orderEvent
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ev); err != nil {
		return orderEvent{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if ev.ID <= 0 {
		return orderEvent{}, fmt.Errorf("%w: id=%d", ErrInvalidEvent, ev.ID)
	}
	if _, err := domain.ParseStatus(ev.Status); err != nil {
		return orderEvent{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	return ev, nil
}

// handleMessage — одно сообщение; возвращает, коммитить ли оффсет.
func (c *Consumer) handleMessage(ctx context.Context, topic string, msg *kafka.Message) bool {
	ev, err := parseEvent(msg.Value)
	if err != nil {
		metrics.KafkaMessagesFailed.WithLabelValues(topic).Inc()
		c.log.Warnf(ctx, "invalid message offset=%d: %v (skipped)", msg.Offset, err)
		return true
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, c.processTimeout)
	err = c.trigger.PollNow(ctxTimeout)
	cancel()
	if err != nil {
		// Временная ошибка источника: НЕ коммитим, обработаем повторно.
		metrics.KafkaMessagesFailed.WithLabelValues(topic).Inc()
		c.log.Warnf(ctx, "poll after event order=%d offset=%d: %v (will retry without commit)", ev.ID, msg.Offset, err)
		return false
	}

	metrics.KafkaMessagesProcessed.WithLabelValues(topic).Inc()
	return true
}

// commitSafely — коммит оффсета с логированием ошибки.
func (c *Consumer) commitSafely(ctx context.Context, msg *kafka.Message) {
	if commitErr := c.reader.CommitMessages(ctx, *msg); commitErr != nil {
		c.log.Warnf(ctx, "commit failed offset=%d: %v", msg.Offset, commitErr)
	}
}

// sleepWithBackoff — ждёт d или останавливается по контексту.
func (c *Consumer) sleepWithBackoff(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func (c *Consumer) nextBackoff(current time.Duration) time.Duration {
	current *= 2
	if current > c.retryMax {
		return c.retryMax
	}
	return current
}

// withJitterEqual — половина задержки фиксирована, половина случайна.
func (c *Consumer) withJitterEqual(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	half := d / 2
	jitter := time.Duration(c.jitterRand.Int63n(int64(d-half) + 1))
	return half + jitter
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
