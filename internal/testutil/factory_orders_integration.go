//go:build integration

package testutil

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"time"

	"github.com/rknpizza/counterboard/internal/domain"
)

func randHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func UniqSuffix() string { return randHex(6) }

// RandOrderID — случайный положительный идентификатор заказа.
func RandOrderID() int64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(1<<31))
	return n.Int64() + 1
}

// MakeOrder — мини-генератор валидного заказа.
func MakeOrder(opts ...func(*domain.Order)) domain.Order {
	o := domain.Order{
		ID:          RandOrderID(),
		Status:      domain.StatusConfirmed,
		DateCreated: time.Now().UTC().Truncate(time.Second),
		Total:       "25.50",
		Billing: domain.Billing{
			FirstName: "Анна",
			LastName:  "Петрова",
			Email:     "anna@example.com",
			Phone:     "+7-900-555-01",
		},
		Items: []domain.LineItem{
			{Name: "Маргарита", Quantity: 2, Total: "20.00", TotalTax: "0.00"},
			{Name: "Кола", Quantity: 1, Total: "5.50", TotalTax: "0.00"},
		},
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

func WithID(id int64) func(*domain.Order) {
	return func(o *domain.Order) { o.ID = id }
}

func WithStatus(status domain.Status) func(*domain.Order) {
	return func(o *domain.Order) { o.Status = status }
}

func WithItems(items ...domain.LineItem) func(*domain.Order) {
	return func(o *domain.Order) { o.Items = items }
}
