package app_test

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rknpizza/counterboard/internal/app"
)

// логгер-заглушка
type nopLogger struct{}

func (nopLogger) Infof(context.Context, string, ...any)  {}
func (nopLogger) Warnf(context.Context, string, ...any)  {}
func (nopLogger) Errorf(context.Context, string, ...any) {}

// фоновый цикл-заглушка (поллер/нотифаер)
type fakeLoop struct {
	startCalls int32
	closeCalls int32
}

func (f *fakeLoop) Start(ctx context.Context) error {
	atomic.AddInt32(&f.startCalls, 1)
	return nil
}
func (f *fakeLoop) Close() error {
	atomic.AddInt32(&f.closeCalls, 1)
	return nil
}

// фейковый консьюмер, который ждёт отмены контекста
type fakeConsumer struct {
	runCalls   int32
	closeCalls int32
}

func (f *fakeConsumer) Run(ctx context.Context) error {
	atomic.AddInt32(&f.runCalls, 1)
	<-ctx.Done()
	return ctx.Err()
}
func (f *fakeConsumer) Close() error {
	atomic.AddInt32(&f.closeCalls, 1)
	return nil
}

func TestAppRun_GracefulShutdown(t *testing.T) {
	// HTTP-сервер на случайном свободном порту
	srv := &http.Server{
		Addr:    "127.0.0.1:0",
		Handler: http.NewServeMux(),
	}

	pl := &fakeLoop{}
	nt := &fakeLoop{}
	fc := &fakeConsumer{}
	a := &app.App{
		Logger:        nopLogger{},
		HTTPServer:    srv,
		Poller:        pl,
		Notifier:      nt,
		KafkaConsumer: fc,
	}

	// Запуск и быстрая остановка
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	if err := a.Run(ctx); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if atomic.LoadInt32(&pl.startCalls) == 0 || atomic.LoadInt32(&pl.closeCalls) == 0 {
		t.Fatalf("poller should be started and closed")
	}
	if atomic.LoadInt32(&nt.startCalls) == 0 || atomic.LoadInt32(&nt.closeCalls) == 0 {
		t.Fatalf("notifier should be started and closed")
	}
	if atomic.LoadInt32(&fc.runCalls) == 0 {
		t.Fatalf("consumer.Run should be called")
	}
	if atomic.LoadInt32(&fc.closeCalls) == 0 {
		t.Fatalf("consumer.Close should be called")
	}
}

func TestAppRun_WithoutKafka(t *testing.T) {
	srv := &http.Server{
		Addr:    "127.0.0.1:0",
		Handler: http.NewServeMux(),
	}

	a := &app.App{
		Logger:     nopLogger{},
		HTTPServer: srv,
		Poller:     &fakeLoop{},
		Notifier:   &fakeLoop{},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	if err := a.Run(ctx); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
}
