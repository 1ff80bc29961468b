package ports

import "context"

// AlertSink — канал доставки звукового сигнала до клиентов.
// Play может вернуть ошибку (клиентская сторона отклонила воспроизведение) —
// контроллер оповещений переживает это без смены логического состояния.
type AlertSink interface {
	Play(ctx context.Context) error
	Stop()
}
