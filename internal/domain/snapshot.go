package domain

// SnapshotEntry — минимальная проекция заказа (id, статус),
// фиксируемая после каждого успешного цикла опроса.
type SnapshotEntry struct {
	ID     int64  `json:"id"`
	Status Status `json:"status"`
}

// Snapshot — полный набор проекций активных заказов, ключ — id.
// Набор всегда отражает ровно последний успешный опрос и
// заменяется атомарно целиком, частичных обновлений не бывает.
type Snapshot map[int64]Status

// SnapshotOf — строит проекцию из списка активных заказов.
func SnapshotOf(orders []Order) []SnapshotEntry {
	entries := make([]SnapshotEntry, 0, len(orders))
	for i := range orders {
		entries = append(entries, SnapshotEntry{ID: orders[i].ID, Status: orders[i].Status})
	}
	return entries
}

// NewlyArrived — разница по id между текущими confirmed-заказами и
// confirmed-частью предыдущего снапшота. Заказ, сменивший статус между
// опросами без «confirmed-появления», новым не считается.
func NewlyArrived(prev Snapshot, current []Order) []Order {
	var arrived []Order
	for i := range current {
		if current[i].Status != StatusConfirmed {
			continue
		}
		if st, ok := prev[current[i].ID]; ok && st == StatusConfirmed {
			continue
		}
		arrived = append(arrived, current[i])
	}
	return arrived
}

// HasConfirmed — есть ли в списке хоть один confirmed-заказ.
func HasConfirmed(orders []Order) bool {
	for i := range orders {
		if orders[i].Status == StatusConfirmed {
			return true
		}
	}
	return false
}
