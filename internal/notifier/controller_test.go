package notifier

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/jonboulle/clockwork"

	"github.com/rknpizza/counterboard/internal/ports/mocks"
)

func newController(t *testing.T, ctrl *gomock.Controller, clock clockwork.Clock) (*Controller, *mocks.MockAlertSink, *mocks.MockPrefsStore) {
	t.Helper()

	sink := mocks.NewMockAlertSink(ctrl)
	prefs := mocks.NewMockPrefsStore(ctrl)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warnf(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	c := New(sink, prefs, log, 15*time.Second, time.Second, clock)
	t.Cleanup(func() {
		sink.EXPECT().Stop().AnyTimes()
		_ = c.Close()
	})
	return c, sink, prefs
}

// waitFor — ждёт выполнения условия (тикеры работают в отдельной горутине).
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("не дождались: %s", what)
}

// blockOnTickers — ждёт, пока горутина цикла взведёт оба тикера.
func blockOnTickers(t *testing.T, clock *clockwork.FakeClock) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := clock.BlockUntilContext(ctx, 2); err != nil {
		t.Fatalf("ожидание тикеров: %v", err)
	}
}

func TestController_NewOrdersStartLoop(t *testing.T) {
	ctrl := gomock.NewController(t)

	clock := clockwork.NewFakeClock()
	c, sink, _ := newController(t, ctrl, clock)

	sink.EXPECT().Play(gomock.Any()).Return(nil).Times(1)

	c.ObservePoll(context.Background(), 2, true)

	st := c.State()
	if !st.LoopActive || st.Muted || st.PlaybackBlocked {
		t.Fatalf("состояние после старта цикла: %+v", st)
	}
	if st.CountdownSeconds != 15 {
		t.Fatalf("отсчёт после старта: %d", st.CountdownSeconds)
	}
}

func TestController_OutstandingConfirmedStartsLoop(t *testing.T) {
	ctrl := gomock.NewController(t)

	clock := clockwork.NewFakeClock()
	c, sink, _ := newController(t, ctrl, clock)

	sink.EXPECT().Play(gomock.Any()).Return(nil).Times(1)

	// После рестарта снапшот уцелел: диффа нет, но confirmed-заказы
	// на доске есть — цикл обязан взвестись.
	c.ObservePoll(context.Background(), 0, true)

	st := c.State()
	if !st.LoopActive {
		t.Fatal("цикл не взвёлся при непустом confirmed-наборе без новых заказов")
	}
	if st.CountdownSeconds != 15 {
		t.Fatalf("отсчёт после старта: %d", st.CountdownSeconds)
	}
}

func TestController_CountdownTicks(t *testing.T) {
	ctrl := gomock.NewController(t)

	clock := clockwork.NewFakeClock()
	c, sink, _ := newController(t, ctrl, clock)
	sink.EXPECT().Play(gomock.Any()).Return(nil).Times(1)

	c.ObservePoll(context.Background(), 1, true)
	blockOnTickers(t, clock)

	clock.Advance(time.Second)
	waitFor(t, "отсчёт 14", func() bool { return c.State().CountdownSeconds == 14 })

	clock.Advance(time.Second)
	waitFor(t, "отсчёт 13", func() bool { return c.State().CountdownSeconds == 13 })
}

func TestController_RepeatReplaysAndResets(t *testing.T) {
	ctrl := gomock.NewController(t)

	clock := clockwork.NewFakeClock()
	c, sink, _ := newController(t, ctrl, clock)

	var plays atomic.Int32
	sink.EXPECT().Play(gomock.Any()).DoAndReturn(func(context.Context) error {
		plays.Add(1)
		return nil
	}).AnyTimes()

	c.ObservePoll(context.Background(), 1, true)
	blockOnTickers(t, clock)

	clock.Advance(15 * time.Second)
	waitFor(t, "повторный сигнал", func() bool { return plays.Load() == 2 })
	// Застрявший в очереди тик отсчёта может прийти уже после сброса,
	// поэтому допускаем 14.
	waitFor(t, "сброс отсчёта", func() bool { return c.State().CountdownSeconds >= 14 })
}

func TestController_ZeroConfirmedStopsLoop(t *testing.T) {
	ctrl := gomock.NewController(t)

	clock := clockwork.NewFakeClock()
	c, sink, _ := newController(t, ctrl, clock)

	sink.EXPECT().Play(gomock.Any()).Return(nil).Times(1)
	sink.EXPECT().Stop().MinTimes(1)

	ctx := context.Background()
	c.ObservePoll(ctx, 1, true)
	c.ObservePoll(ctx, 0, false)

	st := c.State()
	if st.LoopActive {
		t.Fatal("после пустого confirmed-набора цикл должен остановиться")
	}
	if st.CountdownSeconds != 15 {
		t.Fatalf("отсчёт после остановки: %d", st.CountdownSeconds)
	}
}

func TestController_StartIsIdempotent(t *testing.T) {
	ctrl := gomock.NewController(t)

	clock := clockwork.NewFakeClock()
	c, sink, _ := newController(t, ctrl, clock)

	// Второй ObservePoll с новыми заказами при работающем цикле
	// не даёт ни второго немедленного сигнала, ни второй пары тикеров.
	sink.EXPECT().Play(gomock.Any()).Return(nil).Times(1)

	ctx := context.Background()
	c.ObservePoll(ctx, 1, true)
	c.ObservePoll(ctx, 1, true)

	if !c.State().LoopActive {
		t.Fatal("цикл должен оставаться активным")
	}
}

func TestController_MuteAndUnmute(t *testing.T) {
	ctrl := gomock.NewController(t)

	clock := clockwork.NewFakeClock()
	c, sink, prefs := newController(t, ctrl, clock)
	ctx := context.Background()

	sink.EXPECT().Play(gomock.Any()).Return(nil).Times(1)
	c.ObservePoll(ctx, 1, true)

	prefs.EXPECT().SetMuted(gomock.Any(), true).Return(nil)
	sink.EXPECT().Stop().MinTimes(1)
	if err := c.SetMuted(ctx, true); err != nil {
		t.Fatalf("SetMuted(true): %v", err)
	}

	st := c.State()
	if !st.Muted {
		t.Fatal("флаг mute должен быть включён")
	}
	if !st.LoopActive {
		t.Fatal("логический цикл должен пережить mute")
	}
	if st.CountdownSeconds != 15 {
		t.Fatalf("отсчёт в mute: %d", st.CountdownSeconds)
	}

	// Unmute при confirmed на доске — цикл продолжается с немедленным сигналом.
	prefs.EXPECT().SetMuted(gomock.Any(), false).Return(nil)
	sink.EXPECT().Play(gomock.Any()).Return(nil).Times(1)
	if err := c.SetMuted(ctx, false); err != nil {
		t.Fatalf("SetMuted(false): %v", err)
	}
	if st := c.State(); st.Muted || !st.LoopActive {
		t.Fatalf("состояние после unmute: %+v", st)
	}
}

func TestController_UnmuteWithEmptyBoardStaysIdle(t *testing.T) {
	ctrl := gomock.NewController(t)

	clock := clockwork.NewFakeClock()
	c, sink, prefs := newController(t, ctrl, clock)
	ctx := context.Background()

	sink.EXPECT().Play(gomock.Any()).Return(nil).Times(1)
	sink.EXPECT().Stop().AnyTimes()
	c.ObservePoll(ctx, 1, true)

	prefs.EXPECT().SetMuted(gomock.Any(), true).Return(nil)
	if err := c.SetMuted(ctx, true); err != nil {
		t.Fatalf("SetMuted(true): %v", err)
	}

	// Пока стояли на mute, заказы разобрали.
	c.ObservePoll(ctx, 0, false)

	// Unmute на пустой доске: никакого Play.
	prefs.EXPECT().SetMuted(gomock.Any(), false).Return(nil)
	if err := c.SetMuted(ctx, false); err != nil {
		t.Fatalf("SetMuted(false): %v", err)
	}
	if st := c.State(); st.LoopActive {
		t.Fatalf("цикл не должен возобновиться: %+v", st)
	}
}

func TestController_MutedNewOrdersStaySilent(t *testing.T) {
	ctrl := gomock.NewController(t)

	clock := clockwork.NewFakeClock()
	c, sink, prefs := newController(t, ctrl, clock)
	ctx := context.Background()

	prefs.EXPECT().Muted(gomock.Any()).Return(true, nil)
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Play не ожидается вовсе: mock упадёт при вызове.
	_ = sink
	c.ObservePoll(ctx, 3, true)

	st := c.State()
	if !st.Muted || !st.LoopActive {
		t.Fatalf("состояние: %+v", st)
	}
}

func TestController_PlaybackFailureSurfacedAndRetried(t *testing.T) {
	ctrl := gomock.NewController(t)

	clock := clockwork.NewFakeClock()
	c, sink, _ := newController(t, ctrl, clock)

	gomock.InOrder(
		sink.EXPECT().Play(gomock.Any()).Return(errors.New("клиент отклонил воспроизведение")),
		sink.EXPECT().Play(gomock.Any()).Return(nil),
	)

	c.ObservePoll(context.Background(), 1, true)

	st := c.State()
	if !st.PlaybackBlocked {
		t.Fatal("отказ воспроизведения должен подняться в состояние")
	}
	if !st.LoopActive {
		t.Fatal("логическое состояние не должно меняться при отказе")
	}

	// Следующий повтор проходит — флаг снимается.
	blockOnTickers(t, clock)
	clock.Advance(15 * time.Second)
	waitFor(t, "сброс playback_blocked", func() bool { return !c.State().PlaybackBlocked })
}

func TestController_SetMutedStoreErrorKeepsState(t *testing.T) {
	ctrl := gomock.NewController(t)

	clock := clockwork.NewFakeClock()
	c, _, prefs := newController(t, ctrl, clock)

	prefs.EXPECT().SetMuted(gomock.Any(), true).Return(errors.New("база недоступна"))
	if err := c.SetMuted(context.Background(), true); err == nil {
		t.Fatal("ожидали ошибку записи")
	}
	if c.State().Muted {
		t.Fatal("при ошибке записи состояние не меняется")
	}
}

// announcingSink — приёмник с раздачей new-order (как SSE-хаб).
type announcingSink struct {
	counts []int
}

func (s *announcingSink) Play(context.Context) error { return nil }
func (s *announcingSink) Stop()                      {}
func (s *announcingSink) NewOrders(count int)        { s.counts = append(s.counts, count) }

func TestController_AnnouncesNewOrdersToCapableSink(t *testing.T) {
	ctrl := gomock.NewController(t)

	sink := &announcingSink{}
	prefs := mocks.NewMockPrefsStore(ctrl)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warnf(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	clock := clockwork.NewFakeClock()
	c := New(sink, prefs, log, 15*time.Second, time.Second, clock)
	t.Cleanup(func() { _ = c.Close() })

	c.ObservePoll(context.Background(), 2, true)
	c.ObservePoll(context.Background(), 0, true)

	if len(sink.counts) != 1 || sink.counts[0] != 2 {
		t.Fatalf("ожидали одно объявление о 2 заказах, получили %v", sink.counts)
	}

	// Mute гасит звук, но не объявления: доска всё равно перерисовывается.
	prefs.EXPECT().SetMuted(gomock.Any(), true).Return(nil)
	if err := c.SetMuted(context.Background(), true); err != nil {
		t.Fatalf("SetMuted: %v", err)
	}
	c.ObservePoll(context.Background(), 1, true)

	if len(sink.counts) != 2 || sink.counts[1] != 1 {
		t.Fatalf("ожидали объявление и под mute, получили %v", sink.counts)
	}
}
