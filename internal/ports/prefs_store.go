package ports

import "context"

// PrefsStore — постоянные клиентские флаги. Сейчас это только mute-флаг
// оповещений; живёт в том же локальном хранилище, что и снапшот.
type PrefsStore interface {
	Muted(ctx context.Context) (bool, error)
	SetMuted(ctx context.Context, muted bool) error
}
