package validate

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/rknpizza/counterboard/internal/domain"
	"github.com/rknpizza/counterboard/internal/ports"
)

// Проверка, что OrderValidator удовлетворяет интерфейсу OrderValidator.
var _ ports.OrderValidator = (*OrderValidator)(nil)

// ErrInvalidOrder — базовая (sentinel error) ошибка валидации.
var ErrInvalidOrder = errors.New("order validation failed")

// OrderValidator — структура для валидации заказа.
type OrderValidator struct{}

// NewOrderValidator — конструктор OrderValidator.
// Возвращает ErrInvalidOrder (с обёрнутой причиной) при любой проблеме.
func NewOrderValidator() *OrderValidator { return &OrderValidator{} }

// Validate — проверяет корректность полей заказа.
func (v *OrderValidator) Validate(_ context.Context, order *domain.Order) error {
	if err := v.validateCore(order); err != nil {
		return err
	}
	if err := v.validateBilling(&order.Billing); err != nil {
		return err
	}
	return v.validateItems(order.Items)
}

// validateCore — валидация основных полей заказа.
func (v *OrderValidator) validateCore(order *domain.Order) error {
	if order == nil {
		return fmt.Errorf("%w: заказ не может быть nil", ErrInvalidOrder)
	}
	if order.ID <= 0 {
		return fmt.Errorf("%w: id должен быть положительным", ErrInvalidOrder)
	}
	if !order.Status.Valid() {
		return fmt.Errorf("%w: status %q вне допустимого множества", ErrInvalidOrder, order.Status)
	}
	if order.DateCreated.IsZero() || order.DateCreated.Before(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)) {
		return fmt.Errorf("%w: date_created некорректен", ErrInvalidOrder)
	}
	if err := validateMoney("total", order.Total); err != nil {
		return err
	}
	return nil
}

// Валидация контактных данных: поля опциональны, но заполненный email
// должен разбираться.
func (v *OrderValidator) validateBilling(b *domain.Billing) error {
	if b.Email == "" {
		return nil
	}
	if _, err := mail.ParseAddress(b.Email); err != nil {
		return fmt.Errorf("%w: billing.email некорректен", ErrInvalidOrder)
	}
	return nil
}

// Валидация позиций
func (v *OrderValidator) validateItems(items []domain.LineItem) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: line_items не должен быть пустым", ErrInvalidOrder)
	}

	for i := range items {
		item := &items[i]
		idx := strconv.Itoa(i)

		if strings.TrimSpace(item.Name) == "" {
			return fmt.Errorf("%w: line_items[%s].name обязателен", ErrInvalidOrder, idx)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: line_items[%s].quantity должен быть положительным", ErrInvalidOrder, idx)
		}
		if err := validateMoney("line_items["+idx+"].total", item.Total); err != nil {
			return err
		}
		if item.TotalTax != "" {
			if err := validateMoney("line_items["+idx+"].total_tax", item.TotalTax); err != nil {
				return err
			}
		}
	}
	return nil
}

// validateMoney — денежное поле: непустая десятичная строка, неотрицательная.
// Суммы не пересчитываются, только проверяется форма.
func validateMoney(field, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("%w: %s обязателен", ErrInvalidOrder, field)
	}
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("%w: %s не является десятичным числом", ErrInvalidOrder, field)
	}
	if amount < 0 {
		return fmt.Errorf("%w: %s должен быть неотрицательным", ErrInvalidOrder, field)
	}
	return nil
}
