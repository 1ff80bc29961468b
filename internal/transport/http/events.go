package rest

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rknpizza/counterboard/internal/ports"
)

// Имена SSE-событий.
const (
	EventAlert    = "alert"     // звуковой сигнал о новых заказах
	EventAlertOff = "alert-off" // остановка звука
	EventNewOrder = "new-order" // на доске появились новые подтверждённые заказы
	EventState    = "state"     // снимок состояния оповещений
)

// BoardEvent — одно событие для подписчиков доски.
type BoardEvent struct {
	Name string `json:"name"`
	Data any    `json:"data,omitempty"`
}

var _ ports.AlertSink = (*EventHub)(nil)

// EventHub — раздача событий доски SSE-подписчикам. Реализует AlertSink:
// Play превращается в событие alert, Stop — в alert-off. Play без единого
// подписчика возвращает ошибку — сигнал физически некому воспроизвести,
// контроллер покажет это как PlaybackBlocked.
type EventHub struct {
	mu          sync.RWMutex
	subscribers map[chan BoardEvent]struct{}
}

// ErrNoListeners — ни одного подключённого клиента доски.
var ErrNoListeners = fmt.Errorf("нет подключённых клиентов доски")

func NewEventHub() *EventHub {
	return &EventHub{subscribers: make(map[chan BoardEvent]struct{})}
}

// Subscribe — канал событий и функция отписки.
func (h *EventHub) Subscribe() (chan BoardEvent, func()) {
	ch := make(chan BoardEvent, 16)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	unsubscribe := func() {
		h.mu.Lock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, unsubscribe
}

// Broadcast — событие всем подписчикам. Медленный подписчик событие теряет:
// блокировать контроллер оповещений нельзя.
func (h *EventHub) Broadcast(event BoardEvent) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for ch := range h.subscribers {
		select {
		case ch <- event:
			delivered++
		default:
		}
	}
	return delivered
}

// Play — событие alert всем клиентам.
func (h *EventHub) Play(_ context.Context) error {
	if h.Broadcast(BoardEvent{Name: EventAlert}) == 0 {
		return ErrNoListeners
	}
	return nil
}

// Stop — событие alert-off.
func (h *EventHub) Stop() {
	h.Broadcast(BoardEvent{Name: EventAlertOff})
}

// NewOrders — событие new-order с числом новых заказов; клиенты по нему
// перерисовывают доску, не дожидаясь следующего alert.
func (h *EventHub) NewOrders(count int) {
	h.Broadcast(BoardEvent{Name: EventNewOrder, Data: gin.H{"count": count}})
}

// Listeners — текущее число подписчиков.
func (h *EventHub) Listeners() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// streamEvents — хендлер GET /api/events: SSE-стрим до отключения клиента.
func (h *Handler) streamEvents(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	events, unsubscribe := h.hub.Subscribe()
	defer unsubscribe()

	// Стартовый снимок, чтобы клиент сразу знал состояние оповещений.
	stateTicker := time.NewTicker(time.Second)
	defer stateTicker.Stop()

	c.SSEvent(EventState, h.notifier.State())
	c.Writer.Flush()

	c.Stream(func(_ io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(ev.Name, ev.Data)
			return true
		case <-stateTicker.C:
			// Секундный пульс со снимком: клиент рисует обратный отсчёт.
			c.SSEvent(EventState, h.notifier.State())
			return true
		}
	})
}
