package board

import (
	"sync"
	"time"

	"github.com/rknpizza/counterboard/internal/domain"
	"github.com/rknpizza/counterboard/pkg/metrics"
)

// Board — потокобезопасная доска: результат последнего успешного опроса
// (активные + завершённые заказы). Наружу отдаются только копии,
// чтобы читатели не делили срезы с поллером.
type Board struct {
	mu sync.RWMutex

	active    []domain.Order
	completed []domain.Order
	updatedAt time.Time
}

func New() *Board { return &Board{} }

// Publish — атомарная замена обоих наборов результатом цикла опроса.
func (b *Board) Publish(active, completed []domain.Order) {
	activeCopy := domain.CloneOrders(active)
	completedCopy := domain.CloneOrders(completed)
	now := time.Now()

	b.mu.Lock()
	b.active = activeCopy
	b.completed = completedCopy
	b.updatedAt = now
	b.mu.Unlock()

	metrics.BoardOrders.WithLabelValues("active").Set(float64(len(activeCopy)))
	metrics.BoardOrders.WithLabelValues("completed").Set(float64(len(completedCopy)))
}

// Active — копия активного набора.
func (b *Board) Active() []domain.Order {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return domain.CloneOrders(b.active)
}

// Completed — копия завершённого набора.
func (b *Board) Completed() []domain.Order {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return domain.CloneOrders(b.completed)
}

// OrderByID — заказ из любого набора; (nil, false) если не виден на доске.
func (b *Board) OrderByID(id int64) (*domain.Order, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for i := range b.active {
		if b.active[i].ID == id {
			return b.active[i].Clone(), true
		}
	}
	for i := range b.completed {
		if b.completed[i].ID == id {
			return b.completed[i].Clone(), true
		}
	}
	return nil, false
}

// UpdatedAt — время последней публикации (нулевое до первого опроса).
func (b *Board) UpdatedAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.updatedAt
}
