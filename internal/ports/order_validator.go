package ports

import (
	"context"

	"github.com/rknpizza/counterboard/internal/domain"
)

// OrderValidator — проверка корректности заказа из внешнего фида
// (перед загрузкой на доску или в офлайн-инструментах).
type OrderValidator interface {
	Validate(ctx context.Context, order *domain.Order) error
}
