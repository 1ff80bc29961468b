package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	PollerCycles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poller_cycles_total",
			Help: "Poll cycles by result",
		},
		[]string{"result"}, // ok|fetch_error|store_error|skipped
	)
	PollerNewOrders = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "poller_orders_new_total",
			Help: "Orders classified as newly arrived",
		},
	)
	PollerActiveOrders = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "poller_orders_active",
			Help: "Active orders seen in the last successful poll",
		},
	)
)

var (
	NotifierAlerts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_alerts_total",
			Help: "Alert playbacks by result",
		},
		[]string{"result"}, // ok|error
	)
	NotifierLooping = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "notifier_looping",
			Help: "1 while the repeat-alert loop is armed",
		},
	)
)

var (
	StoreOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_operations_total",
			Help: "Snapshot/checklist/prefs store operations",
		},
		[]string{"store", "op"}, // snapshot|checklist|prefs, load|replace|get|toggle|set
	)
	BoardOrders = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "board_orders",
			Help: "Orders currently held on the in-memory board",
		},
		[]string{"set"}, // active|completed
	)
)

var (
	KafkaMessagesConsumed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_consumed_total",
			Help: "Number of messages fetched from Kafka",
		},
		[]string{"topic"},
	)
	KafkaMessagesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_processed_total",
			Help: "Number of messages processed successfully",
		},
		[]string{"topic"},
	)
	KafkaMessagesFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_failed_total",
			Help: "Number of messages failed to process",
		},
		[]string{"topic"},
	)
)

var registerOnce sync.Once

// MustRegister — регистрирует все метрики; повторный вызов безопасен
// (метрики используются и сервером, и тестами пакетов-потребителей).
func MustRegister() {
	registerOnce.Do(register)
}

func register() {
	prometheus.MustRegister(
		PollerCycles, PollerNewOrders, PollerActiveOrders,
		NotifierAlerts, NotifierLooping,
		StoreOps, BoardOrders,
		KafkaMessagesConsumed, KafkaMessagesProcessed, KafkaMessagesFailed,
	)
}
