// Package notifier — машина состояний звукового оповещения о новых заказах:
// немедленный сигнал, повтор каждые 15 секунд и секундный обратный отсчёт
// до следующего повтора.
package notifier

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/rknpizza/counterboard/internal/ports"
	"github.com/rknpizza/counterboard/pkg/metrics"
)

// State — видимое состояние контроллера для API и TUI.
type State struct {
	Muted            bool `json:"muted"`
	LoopActive       bool `json:"loop_active"`
	CountdownSeconds int  `json:"countdown_seconds"`
	PlaybackBlocked  bool `json:"playback_blocked"`
}

// Controller — владелец цикла оповещений. Все переходы — под одним мьютексом;
// тикеры живут в отдельной горутине и останавливаются при любом выходе
// из состояния Looping, прежде чем могут появиться новые.
type Controller struct {
	sink  ports.AlertSink
	prefs ports.PrefsStore
	log   ports.Logger
	clock clockwork.Clock

	repeatEvery   time.Duration
	countdownTick time.Duration

	mu                   sync.Mutex
	muted                bool
	loopActive           bool // логическое «надо звонить», переживает mute
	countdown            int
	playbackBlocked      bool
	confirmedOutstanding bool

	stopLoop chan struct{}
	loopDone sync.WaitGroup
}

// New — конструктор Controller. clock == nil означает реальное время.
func New(sink ports.AlertSink, prefs ports.PrefsStore, log ports.Logger,
	repeatEvery, countdownTick time.Duration, clock clockwork.Clock) *Controller {
	if repeatEvery <= 0 {
		repeatEvery = 15 * time.Second
	}
	if countdownTick <= 0 {
		countdownTick = time.Second
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Controller{
		sink:          sink,
		prefs:         prefs,
		log:           log,
		clock:         clock,
		repeatEvery:   repeatEvery,
		countdownTick: countdownTick,
		countdown:     int(repeatEvery / time.Second),
	}
}

// Start — восстанавливает сохранённый mute-флаг.
func (c *Controller) Start(ctx context.Context) error {
	muted, err := c.prefs.Muted(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.muted = muted
	c.mu.Unlock()
	return nil
}

// ObservePoll — сигнал от поллера после каждого успешного цикла.
// Непустой confirmed-набор взводит цикл (в том числе после рестарта,
// когда снапшот уцелел и новых заказов в диффе нет); пустой — гасит.
func (c *Controller) ObservePoll(ctx context.Context, newOrders int, confirmedOutstanding bool) {
	// Приёмники с раздачей событий (SSE-хаб) узнают о новых заказах
	// независимо от звукового цикла и mute.
	if newOrders > 0 {
		if ann, ok := c.sink.(interface{ NewOrders(count int) }); ok {
			ann.NewOrders(newOrders)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.confirmedOutstanding = confirmedOutstanding

	if !confirmedOutstanding {
		c.exitLoopLocked()
		return
	}
	c.enterLoopLocked(ctx)
}

// SetMuted — переключение mute с записью в хранилище. Ошибка записи
// оставляет контроллер в прежнем состоянии.
func (c *Controller) SetMuted(ctx context.Context, muted bool) error {
	if err := c.prefs.SetMuted(ctx, muted); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.muted == muted {
		return nil
	}
	c.muted = muted

	if muted {
		// Логический loopActive не трогаем: после unmute цикл
		// должен продолжиться, если заказы ещё на доске.
		c.stopTickersLocked()
		c.sink.Stop()
		c.countdown = int(c.repeatEvery / time.Second)
		metrics.NotifierLooping.Set(0)
		return nil
	}

	// Unmute: звоним, только если по последнему опросу есть confirmed.
	c.loopActive = c.confirmedOutstanding
	if c.loopActive {
		c.armLoopLocked(ctx)
	}
	return nil
}

// State — снимок состояния.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Muted:            c.muted,
		LoopActive:       c.loopActive,
		CountdownSeconds: c.countdown,
		PlaybackBlocked:  c.playbackBlocked,
	}
}

// Close — остановка тикеров и приёмника.
func (c *Controller) Close() error {
	c.mu.Lock()
	c.stopTickersLocked()
	c.loopActive = false
	c.mu.Unlock()
	c.loopDone.Wait()
	c.sink.Stop()
	return nil
}

// enterLoopLocked — идемпотентный вход в Looping: работающий цикл
// не перезапускается, второй пары тикеров не бывает.
func (c *Controller) enterLoopLocked(ctx context.Context) {
	c.loopActive = true
	if c.muted || c.stopLoop != nil {
		return
	}
	c.armLoopLocked(ctx)
}

// armLoopLocked — немедленный сигнал и запуск тикеров.
func (c *Controller) armLoopLocked(ctx context.Context) {
	c.playLocked(ctx)
	c.countdown = int(c.repeatEvery / time.Second)
	metrics.NotifierLooping.Set(1)

	stop := make(chan struct{})
	c.stopLoop = stop
	c.loopDone.Add(1)

	go c.runTickers(ctx, stop)
}

// exitLoopLocked — полный выход из Looping: тикеры, звук, отсчёт.
func (c *Controller) exitLoopLocked() {
	c.loopActive = false
	c.stopTickersLocked()
	c.sink.Stop()
	c.countdown = int(c.repeatEvery / time.Second)
	metrics.NotifierLooping.Set(0)
}

func (c *Controller) stopTickersLocked() {
	if c.stopLoop == nil {
		return
	}
	close(c.stopLoop)
	c.stopLoop = nil
}

// runTickers — горутина цикла: секундный отсчёт + повтор сигнала.
func (c *Controller) runTickers(ctx context.Context, stop chan struct{}) {
	defer c.loopDone.Done()

	countdownTicker := c.clock.NewTicker(c.countdownTick)
	repeatTicker := c.clock.NewTicker(c.repeatEvery)
	defer countdownTicker.Stop()
	defer repeatTicker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-countdownTicker.Chan():
			c.mu.Lock()
			if c.countdown > 0 {
				c.countdown--
			}
			c.mu.Unlock()
		case <-repeatTicker.Chan():
			c.mu.Lock()
			// Запоздавший тик уже остановленного цикла.
			if c.stopLoop != stop {
				c.mu.Unlock()
				return
			}
			c.playLocked(ctx)
			c.countdown = int(c.repeatEvery / time.Second)
			c.mu.Unlock()
		}
	}
}

// playLocked — один сигнал. Отказ воспроизведения не меняет логическое
// состояние: цикл продолжается, следующий тик попробует снова.
func (c *Controller) playLocked(ctx context.Context) {
	if err := c.sink.Play(ctx); err != nil {
		c.playbackBlocked = true
		metrics.NotifierAlerts.WithLabelValues("error").Inc()
		c.log.Warnf(ctx, "воспроизведение оповещения: %v", err)
		return
	}
	c.playbackBlocked = false
	metrics.NotifierAlerts.WithLabelValues("ok").Inc()
}
