// Package woo — клиент WooCommerce REST API (источник заказов).
// Транспортные статусы источника не совпадают с доменными,
// перевод между ними живёт только здесь.
package woo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rknpizza/counterboard/config"
	"github.com/rknpizza/counterboard/internal/domain"
	"github.com/rknpizza/counterboard/internal/ports"
)

// Транспортные статусы WooCommerce.
const (
	wireProcessing  = "processing"
	wirePreparation = "preparation"
	wireCompleted   = "completed"
)

// ErrUnexpectedStatus — источник ответил не-2xx кодом.
var ErrUnexpectedStatus = fmt.Errorf("источник ответил неожиданным HTTP-статусом")

// Client — HTTP-клиент источника. Потокобезопасен.
type Client struct {
	httpClient *http.Client
	baseURL    string
	key        string
	secret     string
	perPage    int
}

var _ ports.OrderSource = (*Client)(nil)

func New(cfg config.Source) *Client {
	perPage := cfg.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		key:        cfg.ConsumerKey,
		secret:     cfg.ConsumerSecret,
		perPage:    perPage,
	}
}

// toWire / fromWire — перевод статуса между доменом и транспортом источника.
func toWire(s domain.Status) (string, error) {
	switch s {
	case domain.StatusConfirmed:
		return wireProcessing, nil
	case domain.StatusInPreparation:
		return wirePreparation, nil
	case domain.StatusCompleted:
		return wireCompleted, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnknownStatus, s)
}

func fromWire(s string) (domain.Status, error) {
	switch s {
	case wireProcessing:
		return domain.StatusConfirmed, nil
	case wirePreparation:
		return domain.StatusInPreparation, nil
	case wireCompleted:
		return domain.StatusCompleted, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnknownStatus, s)
}

// wireOrder — форма заказа на проводе. Статус здесь строка:
// строгий разбор делаем сами после перевода из транспортного значения.
type wireOrder struct {
	ID          int64             `json:"id"`
	Status      string            `json:"status"`
	DateCreated string            `json:"date_created"`
	Total       string            `json:"total"`
	Billing     domain.Billing    `json:"billing"`
	LineItems   []domain.LineItem `json:"line_items"`
}

func (w wireOrder) toDomain() (domain.Order, error) {
	status, err := fromWire(w.Status)
	if err != nil {
		return domain.Order{}, fmt.Errorf("заказ %d: %w", w.ID, err)
	}
	// WooCommerce отдаёт date_created без зоны, в локальном времени магазина.
	created, err := time.Parse("2006-01-02T15:04:05", w.DateCreated)
	if err != nil {
		// Запасной вариант: некоторые инсталляции присылают RFC3339.
		created, err = time.Parse(time.RFC3339, w.DateCreated)
		if err != nil {
			return domain.Order{}, fmt.Errorf("заказ %d: разбор date_created: %w", w.ID, err)
		}
	}
	return domain.Order{
		ID:          w.ID,
		Status:      status,
		DateCreated: created,
		Total:       w.Total,
		Billing:     w.Billing,
		Items:       w.LineItems,
	}, nil
}

// FetchOrders — GET /wp-json/wc/v3/orders со списком статусов.
// Статусы передаются повторяющимся параметром status.
func (c *Client) FetchOrders(ctx context.Context, statuses ...domain.Status) ([]domain.Order, error) {
	if len(statuses) == 0 {
		return nil, fmt.Errorf("пустой список статусов")
	}

	q := url.Values{}
	q.Set("per_page", strconv.Itoa(c.perPage))
	for _, s := range statuses {
		wire, err := toWire(s)
		if err != nil {
			return nil, err
		}
		q.Add("status", wire)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/wp-json/wc/v3/orders?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("сборка запроса: %w", err)
	}
	req.SetBasicAuth(c.key, c.secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("запрос заказов: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var raw []wireOrder
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("разбор ответа: %w", err)
	}

	orders := make([]domain.Order, 0, len(raw))
	for _, w := range raw {
		order, err := w.toDomain()
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// UpdateStatus — PUT /wp-json/wc/v3/orders/{id} с новым статусом.
// Возвращает заказ в состоянии после обновления.
func (c *Client) UpdateStatus(ctx context.Context, orderID int64, status domain.Status) (*domain.Order, error) {
	wire, err := toWire(status)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(map[string]string{"status": wire})
	if err != nil {
		return nil, fmt.Errorf("сборка тела запроса: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		fmt.Sprintf("%s/wp-json/wc/v3/orders/%d", c.baseURL, orderID), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("сборка запроса: %w", err)
	}
	req.SetBasicAuth(c.key, c.secret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("обновление заказа %d: %w", orderID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Первый килобайт тела — в ошибку: WooCommerce кладёт туда
		// код и человекочитаемую причину отказа.
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: %d (заказ %d): %s",
			ErrUnexpectedStatus, resp.StatusCode, orderID, bytes.TrimSpace(excerpt))
	}

	var raw wireOrder
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("разбор ответа: %w", err)
	}
	order, err := raw.toDomain()
	if err != nil {
		return nil, err
	}
	return &order, nil
}
