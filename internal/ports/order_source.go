package ports

import (
	"context"

	"github.com/rknpizza/counterboard/internal/domain"
)

// OrderSource — удалённый источник заказов (владелец данных).
type OrderSource interface {
	// FetchOrders — заказы с любым из перечисленных статусов.
	// Должен поддерживать как минимум {confirmed, in_preparation} вместе
	// и {completed} отдельно.
	FetchOrders(ctx context.Context, statuses ...domain.Status) ([]domain.Order, error)

	// UpdateStatus — смена статуса на стороне источника.
	// Идемпотентен с точки зрения вызывающего: повтор с теми же
	// аргументами безопасен.
	UpdateStatus(ctx context.Context, orderID int64, status domain.Status) (*domain.Order, error)
}
