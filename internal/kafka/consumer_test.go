package kafka

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/segmentio/kafka-go"

	kmocks "github.com/rknpizza/counterboard/internal/kafka/mocks"
	"github.com/rknpizza/counterboard/internal/ports"
	"github.com/rknpizza/counterboard/internal/ports/mocks"
)

type nopLogger struct{}

func (nopLogger) Infof(context.Context, string, ...any)  {}
func (nopLogger) Warnf(context.Context, string, ...any)  {}
func (nopLogger) Errorf(context.Context, string, ...any) {}

// runAsync — Consumer.Run в горутине, ошибка в канал.
func runAsync(ctx context.Context, c *Consumer) <-chan error {
	errCh := make(chan error, 1)
	go func() { errCh <- c.Run(ctx) }()
	return errCh
}

func newTestConsumer(r reader, trigger ports.PollTrigger) *Consumer {
	return &Consumer{
		reader: r, trigger: trigger, log: nopLogger{},
		processTimeout: 30 * time.Millisecond,
		retryInitial:   5 * time.Millisecond,
		retryMax:       10 * time.Millisecond,
		jitterRand:     rand.New(rand.NewSource(1)),
	}
}

func expectBlockingFetch(r *kmocks.Mockreader) {
	r.EXPECT().FetchMessage(gomock.Any()).
		DoAndReturn(func(ctx context.Context) (kafka.Message, error) {
			<-ctx.Done()
			return kafka.Message{}, ctx.Err()
		})
}

func waitCanceled(t *testing.T, errCh <-chan error) {
	t.Helper()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("ожидали context.Canceled, получили %v", err)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatal("Run не остановился")
	}
}

var testReaderConfig = kafka.ReaderConfig{Topic: "order-events", GroupID: "g1", Brokers: []string{"b:9092"}}

// Валидное событие: внеплановый опрос + коммит.
func TestRun_ValidEvent_PollsAndCommits(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := kmocks.NewMockreader(ctrl)
	trigger := mocks.NewMockPollTrigger(ctrl)

	r.EXPECT().Config().Return(testReaderConfig).AnyTimes()
	r.EXPECT().FetchMessage(gomock.Any()).
		Return(kafka.Message{Offset: 1, Value: []byte(`{"id": 101, "status": "confirmed"}`)}, nil)
	trigger.EXPECT().PollNow(gomock.Any()).Return(nil)
	r.EXPECT().CommitMessages(gomock.Any(), gomock.Any()).Return(nil)
	expectBlockingFetch(r)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := runAsync(ctx, newTestConsumer(r, trigger))

	time.Sleep(20 * time.Millisecond)
	cancel()
	waitCanceled(t, errCh)
}

// Невалидное событие: опрос не дергаем, оффсет коммитим, чтобы не ретраить мусор.
func TestRun_InvalidEvent_CommitsWithoutPoll(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := kmocks.NewMockreader(ctrl)
	trigger := mocks.NewMockPollTrigger(ctrl) // PollNow не ожидается

	r.EXPECT().Config().Return(testReaderConfig).AnyTimes()
	r.EXPECT().FetchMessage(gomock.Any()).
		Return(kafka.Message{Offset: 7, Value: []byte(`{"id": 0, "status": "refunded"}`)}, nil)
	r.EXPECT().CommitMessages(gomock.Any(), gomock.Any()).Return(nil)
	expectBlockingFetch(r)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := runAsync(ctx, newTestConsumer(r, trigger))

	time.Sleep(20 * time.Millisecond)
	cancel()
	waitCanceled(t, errCh)
}

// Временная ошибка опроса: НЕ коммитим — сообщение придёт снова.
func TestRun_PollFailure_NoCommit(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := kmocks.NewMockreader(ctrl)
	trigger := mocks.NewMockPollTrigger(ctrl)

	r.EXPECT().Config().Return(testReaderConfig).AnyTimes()
	r.EXPECT().FetchMessage(gomock.Any()).
		Return(kafka.Message{Offset: 2, Value: []byte(`{"id": 5, "status": "completed"}`)}, nil)
	trigger.EXPECT().PollNow(gomock.Any()).Return(errors.New("источник недоступен"))
	// CommitMessages не ожидается: вызов уронит тест как unexpected call.
	expectBlockingFetch(r)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := runAsync(ctx, newTestConsumer(r, trigger))

	time.Sleep(30 * time.Millisecond)
	cancel()
	waitCanceled(t, errCh)
}

// Ошибки FetchMessage ретраятся с backoff; по отмене контекста — выход.
func TestRun_FetchError_RetryThenStopOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := kmocks.NewMockreader(ctrl)
	trigger := mocks.NewMockPollTrigger(ctrl)

	r.EXPECT().Config().Return(testReaderConfig).AnyTimes()
	r.EXPECT().FetchMessage(gomock.Any()).
		DoAndReturn(func(_ context.Context) (kafka.Message, error) {
			return kafka.Message{}, errors.New("broker error")
		}).AnyTimes()

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()

	if err := newTestConsumer(r, trigger).Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("ожидали DeadlineExceeded, получили %v", err)
	}
}

// Ошибка коммита — только предупреждение, цикл живёт дальше.
func TestRun_CommitWarnOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := kmocks.NewMockreader(ctrl)
	trigger := mocks.NewMockPollTrigger(ctrl)

	r.EXPECT().Config().Return(testReaderConfig).AnyTimes()
	r.EXPECT().FetchMessage(gomock.Any()).
		Return(kafka.Message{Offset: 3, Value: []byte(`{"id": 9, "status": "confirmed"}`)}, nil)
	trigger.EXPECT().PollNow(gomock.Any()).Return(nil)
	r.EXPECT().CommitMessages(gomock.Any(), gomock.Any()).Return(errors.New("temporary"))
	expectBlockingFetch(r)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := runAsync(ctx, newTestConsumer(r, trigger))

	time.Sleep(20 * time.Millisecond)
	cancel()
	waitCanceled(t, errCh)
}

func TestClose_DelegatesToReader(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := kmocks.NewMockreader(ctrl)
	trigger := mocks.NewMockPollTrigger(ctrl)

	r.EXPECT().Close().Return(nil)

	c := newTestConsumer(r, trigger)
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Повторный Close не дергает reader второй раз.
	if err := c.Close(); err != nil {
		t.Fatalf("повторный Close: %v", err)
	}
}

func TestParseEvent(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"id": 101, "status": "confirmed"}`, false},
		{"unknown_status", `{"id": 101, "status": "refunded"}`, true},
		{"zero_id", `{"id": 0, "status": "confirmed"}`, true},
		{"negative_id", `{"id": -5, "status": "confirmed"}`, true},
		{"unknown_field", `{"id": 1, "status": "confirmed", "extra": true}`, true},
		{"not_json", `order 101`, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseEvent([]byte(tc.raw))
			if tc.wantErr && !errors.Is(err, ErrInvalidEvent) {
				t.Fatalf("ожидали ErrInvalidEvent, получили %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("неожиданная ошибка: %v", err)
			}
		})
	}
}
