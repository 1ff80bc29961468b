package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// boardClient — HTTP-клиент доски: логин по статической паре,
// дальше все запросы ходят с session-cookie.
type boardClient struct {
	baseURL string
	http    *http.Client
	cookie  string
}

func newBoardClient(baseURL string) *boardClient {
	return &boardClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Login — POST /api/login; запоминает cookie сессии.
func (c *boardClient) Login(ctx context.Context, user, password string) error {
	body, _ := json.Marshal(map[string]string{"username": user, "password": password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login: status %d", resp.StatusCode)
	}
	for _, ck := range resp.Cookies() {
		if ck.Name == "board_session" {
			c.cookie = ck.Name + "=" + ck.Value
			return nil
		}
	}
	return fmt.Errorf("login: session cookie not set")
}

// OrderCounts — размеры активной и завершённой частей доски.
func (c *boardClient) OrderCounts(ctx context.Context) (active, completed int, err error) {
	active, err = c.orderCount(ctx, "active")
	if err != nil {
		return 0, 0, err
	}
	completed, err = c.orderCount(ctx, "completed")
	if err != nil {
		return 0, 0, err
	}
	return active, completed, nil
}

func (c *boardClient) orderCount(ctx context.Context, status string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/orders?status="+status, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Cookie", c.cookie)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("orders %s: status %d", status, resp.StatusCode)
	}
	var payload struct {
		Orders []json.RawMessage `json:"orders"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("orders %s: %w", status, err)
	}
	return len(payload.Orders), nil
}

// SetMuted — PUT /api/notifications.
func (c *boardClient) SetMuted(ctx context.Context, muted bool) error {
	body, _ := json.Marshal(map[string]bool{"muted": muted})
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/api/notifications", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cookie", c.cookie)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("notifications: status %d", resp.StatusCode)
	}
	return nil
}

// sseEvent — одно событие из потока /api/events.
type sseEvent struct {
	Name string
	Data string
}

// StreamEvents — открывает SSE-поток и шлёт события в канал до отмены
// контекста. Поток держится без таймаута клиента.
func (c *boardClient) StreamEvents(ctx context.Context, out chan<- sseEvent) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/events", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Cookie", c.cookie)
	req.Header.Set("Accept", "text/event-stream")

	// отдельный клиент: у потока нет общего таймаута
	streamClient := &http.Client{}
	resp, err := streamClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("events: status %d", resp.StatusCode)
	}

	var ev sseEvent
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			ev.Name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			ev.Data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		case line == "":
			if ev.Name != "" {
				select {
				case out <- ev:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			ev = sseEvent{}
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("events stream: %w", err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return io.EOF
}
