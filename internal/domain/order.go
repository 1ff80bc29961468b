package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status — статус заказа. Закрытое множество значений:
// неизвестный статус отклоняется на границе десериализации,
// а не протаскивается дальше по системе.
type Status string

const (
	StatusConfirmed     Status = "confirmed"      // подтверждён/оплачен, ждёт кухню
	StatusInPreparation Status = "in_preparation" // готовится
	StatusCompleted     Status = "completed"      // выдан/завершён
)

// ErrUnknownStatus — базовая (sentinel error) ошибка для статусов вне закрытого множества.
var ErrUnknownStatus = fmt.Errorf("unknown order status")

// ParseStatus — разбирает строку статуса; значения вне множества → ErrUnknownStatus.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusConfirmed, StatusInPreparation, StatusCompleted:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// Valid — true, если статус принадлежит закрытому множеству.
func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

// UnmarshalJSON — строгая десериализация статуса.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ActiveStatuses — статусы «активного» заказа (видны на основной доске).
func ActiveStatuses() []Status {
	return []Status{StatusConfirmed, StatusInPreparation}
}

// Billing — контактные данные клиента. Система их только показывает.
type Billing struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// LineItem — позиция заказа. Total/TotalTax приходят от источника
// как десятичные строки и не пересчитываются здесь.
type LineItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Total    string `json:"total"`
	TotalTax string `json:"total_tax"`
}

// ChecklistKey — ключ позиции в чек-листе приготовления: "{кол-во}× {название}".
// Две разные позиции с одинаковыми именем и количеством схлопываются в один
// ключ — это осознанно унаследованное поведение (см. DESIGN.md).
func (li LineItem) ChecklistKey() string {
	return fmt.Sprintf("%d× %s", li.Quantity, li.Name)
}

// Order — заказ. Владелец данных — удалённый источник;
// у нас живут только read-only копии в пределах цикла опроса.
type Order struct {
	ID          int64      `json:"id"`
	Status      Status     `json:"status"`
	DateCreated time.Time  `json:"date_created"`
	Total       string     `json:"total"`
	Billing     Billing    `json:"billing"`
	Items       []LineItem `json:"line_items"`
}

// Clone — глубокая копия заказа (доска отдаёт наружу только копии).
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	cloned := *o
	if o.Items != nil {
		cloned.Items = append([]LineItem(nil), o.Items...)
	}
	return &cloned
}

// CloneOrders — копия среза заказов целиком.
func CloneOrders(orders []Order) []Order {
	if orders == nil {
		return nil
	}
	out := make([]Order, len(orders))
	for i := range orders {
		out[i] = *orders[i].Clone()
	}
	return out
}
