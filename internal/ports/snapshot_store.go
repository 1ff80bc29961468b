package ports

import (
	"context"

	"github.com/rknpizza/counterboard/internal/domain"
)

// SnapshotStore — хранит (id, статус)-проекцию активных заказов между
// циклами опроса и между перезапусками процесса.
type SnapshotStore interface {
	// Load — проекция последнего успешного опроса; пустая карта, если истории нет.
	Load(ctx context.Context) (domain.Snapshot, error)

	// Replace — атомарная замена всего набора. Частичных обновлений не бывает:
	// либо записан весь новый набор, либо остаётся старый.
	Replace(ctx context.Context, entries []domain.SnapshotEntry) error
}
