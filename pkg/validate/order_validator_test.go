package validate_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rknpizza/counterboard/internal/domain"
	"github.com/rknpizza/counterboard/pkg/validate"
)

func validOrder() *domain.Order {
	return &domain.Order{
		ID:          101,
		Status:      domain.StatusConfirmed,
		DateCreated: time.Date(2026, 8, 30, 11, 42, 0, 0, time.UTC),
		Total:       "24.00",

		Billing: domain.Billing{
			FirstName: "Анна",
			Email:     "anna@example.com",
		},

		Items: []domain.LineItem{
			{
				Name:     "Бургер",
				Quantity: 2,
				Total:    "24.00",
				TotalTax: "0.00",
			},
		},
	}
}

func TestOrderValidator_Validate(t *testing.T) {
	v := validate.NewOrderValidator()
	ctx := context.Background()

	t.Run("valid order", func(t *testing.T) {
		o := validOrder()
		if err := v.Validate(ctx, o); err != nil {
			t.Fatalf("expected valid order, got: %v", err)
		}
	})

	t.Run("empty email is allowed", func(t *testing.T) {
		o := validOrder()
		o.Billing.Email = ""
		if err := v.Validate(ctx, o); err != nil {
			t.Fatalf("expected valid order, got: %v", err)
		}
	})

	type testCase struct {
		name      string
		makeOrder func() *domain.Order
		msg       string
	}

	cases := []testCase{
		{
			name:      "nil order",
			makeOrder: func() *domain.Order { return nil },
			msg:       "заказ не может быть nil",
		},
		{
			name: "non-positive id",
			makeOrder: func() *domain.Order {
				o := validOrder()
				o.ID = 0
				return o
			},
			msg: "id должен быть положительным",
		},
		{
			name: "unknown status",
			makeOrder: func() *domain.Order {
				o := validOrder()
				o.Status = "refunded"
				return o
			},
			msg: "status",
		},
		{
			name: "zero date_created",
			makeOrder: func() *domain.Order {
				o := validOrder()
				o.DateCreated = time.Time{}
				return o
			},
			msg: "date_created некорректен",
		},
		{
			name: "empty total",
			makeOrder: func() *domain.Order {
				o := validOrder()
				o.Total = ""
				return o
			},
			msg: "total обязателен",
		},
		{
			name: "non-decimal total",
			makeOrder: func() *domain.Order {
				o := validOrder()
				o.Total = "24,00"
				return o
			},
			msg: "не является десятичным числом",
		},
		{
			name: "negative total",
			makeOrder: func() *domain.Order {
				o := validOrder()
				o.Total = "-1"
				return o
			},
			msg: "должен быть неотрицательным",
		},
		{
			name: "bad billing email",
			makeOrder: func() *domain.Order {
				o := validOrder()
				o.Billing.Email = "not-an-email"
				return o
			},
			msg: "billing.email некорректен",
		},
		{
			name: "no items",
			makeOrder: func() *domain.Order {
				o := validOrder()
				o.Items = nil
				return o
			},
			msg: "line_items не должен быть пустым",
		},
		{
			name: "empty item name",
			makeOrder: func() *domain.Order {
				o := validOrder()
				o.Items[0].Name = "  "
				return o
			},
			msg: "line_items[0].name обязателен",
		},
		{
			name: "zero quantity",
			makeOrder: func() *domain.Order {
				o := validOrder()
				o.Items[0].Quantity = 0
				return o
			},
			msg: "line_items[0].quantity должен быть положительным",
		},
		{
			name: "bad item total",
			makeOrder: func() *domain.Order {
				o := validOrder()
				o.Items[0].Total = "free"
				return o
			},
			msg: "line_items[0].total не является десятичным числом",
		},
		{
			name: "bad item total_tax",
			makeOrder: func() *domain.Order {
				o := validOrder()
				o.Items[0].TotalTax = "n/a"
				return o
			},
			msg: "line_items[0].total_tax не является десятичным числом",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate(ctx, tc.makeOrder())
			if err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !errors.Is(err, validate.ErrInvalidOrder) {
				t.Fatalf("expected ErrInvalidOrder, got: %v", err)
			}
			if !strings.Contains(err.Error(), tc.msg) {
				t.Fatalf("expected message to contain %q, got: %v", tc.msg, err)
			}
		})
	}
}
