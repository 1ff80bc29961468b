package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rknpizza/counterboard/pkg/metrics"
)

func TestMustRegister_IsIdempotent(t *testing.T) {
	// Должно выполняться без паники даже при повторном вызове.
	t.Helper()
	metrics.MustRegister()
	metrics.MustRegister()
}

func TestPollerCounters_Inc(t *testing.T) {
	metrics.MustRegister()

	beforeOK := testutil.ToFloat64(metrics.PollerCycles.WithLabelValues("ok"))
	beforeErr := testutil.ToFloat64(metrics.PollerCycles.WithLabelValues("fetch_error"))
	beforeNew := testutil.ToFloat64(metrics.PollerNewOrders)

	metrics.PollerCycles.WithLabelValues("ok").Inc()
	metrics.PollerNewOrders.Add(2)

	if got := testutil.ToFloat64(metrics.PollerCycles.WithLabelValues("ok")); got != beforeOK+1 {
		t.Fatalf("PollerCycles(ok): got=%v want=%v", got, beforeOK+1)
	}
	if got := testutil.ToFloat64(metrics.PollerCycles.WithLabelValues("fetch_error")); got != beforeErr {
		t.Fatalf("PollerCycles(fetch_error): got=%v want=%v", got, beforeErr)
	}
	if got := testutil.ToFloat64(metrics.PollerNewOrders); got != beforeNew+2 {
		t.Fatalf("PollerNewOrders: got=%v want=%v", got, beforeNew+2)
	}
}

func TestNotifierLooping_GaugeSet(t *testing.T) {
	metrics.MustRegister()

	cur := testutil.ToFloat64(metrics.NotifierLooping)

	metrics.NotifierLooping.Set(1)
	if got := testutil.ToFloat64(metrics.NotifierLooping); got != 1 {
		t.Fatalf("NotifierLooping after set: got=%v want=1", got)
	}

	metrics.NotifierLooping.Set(cur) // вернуть как было
	if got := testutil.ToFloat64(metrics.NotifierLooping); got != cur {
		t.Fatalf("NotifierLooping restore: got=%v want=%v", got, cur)
	}
}

func TestStoreOps_CountersByLabel(t *testing.T) {
	metrics.MustRegister()

	before := testutil.ToFloat64(metrics.StoreOps.WithLabelValues("snapshot", "replace"))
	otherBefore := testutil.ToFloat64(metrics.StoreOps.WithLabelValues("checklist", "toggle"))

	metrics.StoreOps.WithLabelValues("snapshot", "replace").Inc()
	metrics.StoreOps.WithLabelValues("snapshot", "replace").Inc()

	if got := testutil.ToFloat64(metrics.StoreOps.WithLabelValues("snapshot", "replace")); got != before+2 {
		t.Fatalf("StoreOps(snapshot,replace): got=%v want=%v", got, before+2)
	}
	if got := testutil.ToFloat64(metrics.StoreOps.WithLabelValues("checklist", "toggle")); got != otherBefore {
		t.Fatalf("StoreOps(checklist,toggle): got=%v want=%v", got, otherBefore)
	}
}
