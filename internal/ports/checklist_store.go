package ports

import "context"

// ChecklistStore — пер-позиционные флаги «приготовлено» по заказам.
// Записи создаются лениво; отсутствующий ключ читается как false.
type ChecklistStore interface {
	// Get — значение флага; (false, nil) для невиданного ключа.
	Get(ctx context.Context, orderID int64, key string) (bool, error)

	// Toggle — инвертирует флаг; несуществующая запись создаётся со значением true.
	// Возвращает новое значение. Ключ не проверяется на принадлежность заказу —
	// осиротевшие ключи допустимы.
	Toggle(ctx context.Context, orderID int64, key string) (bool, error)

	// Checked — все флаги заказа одной картой (для отдачи в UI).
	Checked(ctx context.Context, orderID int64) (map[string]bool, error)
}

// ChecklistPruner — опциональное расширение: удаление чек-листа завершённого
// заказа. Есть только у серверных (общих) реализаций хранилища.
type ChecklistPruner interface {
	PruneCompleted(ctx context.Context, orderID int64) error
}
