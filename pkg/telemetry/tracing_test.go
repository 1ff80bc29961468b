package telemetry

import (
	"context"
	"testing"
)

func TestSetupTracing_DefaultsAndClampedRatio(t *testing.T) {
	// Экспортёр OTLP/HTTP ленивый: соединение не нужно до первого батча,
	// поэтому setup с дефолтным endpoint проходит без бэкенда.
	shutdown, err := SetupTracing(context.Background(), "counterboard-test", "", 2.5)
	if err != nil {
		t.Fatalf("SetupTracing: %v", err)
	}
	if shutdown == nil {
		t.Fatal("SetupTracing вернула nil shutdown")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
