//go:generate mockgen -source=../order_source.go    -destination=./mock_order_source.go    -package=mocks
//go:generate mockgen -source=../snapshot_store.go  -destination=./mock_snapshot_store.go  -package=mocks
//go:generate mockgen -source=../checklist_store.go -destination=./mock_checklist_store.go -package=mocks
//go:generate mockgen -source=../prefs_store.go     -destination=./mock_prefs_store.go     -package=mocks
//go:generate mockgen -source=../alert_sink.go      -destination=./mock_alert_sink.go      -package=mocks
//go:generate mockgen -source=../poll_trigger.go    -destination=./mock_poll_trigger.go    -package=mocks
//go:generate mockgen -source=../logger.go          -destination=./mock_logger.go          -package=mocks

package mocks
