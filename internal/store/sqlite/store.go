// Package sqlite — локальное хранилище стойки (снапшот, чек-листы, флаги)
// во встраиваемой базе. Вариант по умолчанию: один клиент, один файл.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/rknpizza/counterboard/internal/domain"
	"github.com/rknpizza/counterboard/internal/ports"
	"github.com/rknpizza/counterboard/pkg/metrics"
)

// Store — одна база на все три концерна. Потокобезопасен
// (сериализацию берёт на себя database/sql + сам SQLite).
type Store struct {
	db *sql.DB
}

var (
	_ ports.SnapshotStore   = (*Store)(nil)
	_ ports.ChecklistStore  = (*Store)(nil)
	_ ports.ChecklistPruner = (*Store)(nil)
	_ ports.PrefsStore      = (*Store)(nil)
)

// New — открывает базу по пути (":memory:" для тестов) и накатывает схему.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("открытие sqlite: %w", err)
	}
	// Файл один, писатель один: пул соединений тут только мешает,
	// а для ":memory:" второе соединение — вообще другая база.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("инициализация схемы: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS order_snapshot (
		order_id INTEGER PRIMARY KEY,
		status   TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS checklist (
		order_id INTEGER NOT NULL,
		item_key TEXT NOT NULL,
		checked  INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (order_id, item_key)
	);
	CREATE TABLE IF NOT EXISTS prefs (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Load — снапшот активных заказов; пустая карта, если истории ещё нет.
func (s *Store) Load(ctx context.Context) (domain.Snapshot, error) {
	metrics.StoreOps.WithLabelValues("snapshot", "load").Inc()

	rows, err := s.db.QueryContext(ctx, "SELECT order_id, status FROM order_snapshot")
	if err != nil {
		return nil, fmt.Errorf("чтение снапшота: %w", err)
	}
	defer rows.Close()

	snapshot := make(domain.Snapshot)
	for rows.Next() {
		var id int64
		var raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan снапшота: %w", err)
		}
		status, err := domain.ParseStatus(raw)
		if err != nil {
			return nil, fmt.Errorf("снапшот, заказ %d: %w", id, err)
		}
		snapshot[id] = status
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("обход снапшота: %w", err)
	}
	return snapshot, nil
}

// Replace — полная замена снапшота в одной транзакции.
func (s *Store) Replace(ctx context.Context, entries []domain.SnapshotEntry) error {
	metrics.StoreOps.WithLabelValues("snapshot", "replace").Inc()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("начало транзакции: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM order_snapshot"); err != nil {
		return fmt.Errorf("очистка снапшота: %w", err)
	}
	for _, e := range entries {
		if !e.Status.Valid() {
			return fmt.Errorf("снапшот, заказ %d: %w", e.ID, domain.ErrUnknownStatus)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO order_snapshot (order_id, status) VALUES (?, ?)",
			e.ID, string(e.Status),
		); err != nil {
			return fmt.Errorf("запись снапшота (заказ %d): %w", e.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("фиксация снапшота: %w", err)
	}
	return nil
}

// Get — флаг позиции чек-листа; невиданный ключ читается как false.
func (s *Store) Get(ctx context.Context, orderID int64, key string) (bool, error) {
	metrics.StoreOps.WithLabelValues("checklist", "get").Inc()

	var checked bool
	err := s.db.QueryRowContext(ctx,
		"SELECT checked FROM checklist WHERE order_id = ? AND item_key = ?",
		orderID, key,
	).Scan(&checked)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("чтение чек-листа: %w", err)
	}
	return checked, nil
}

// Toggle — инвертирует флаг; отсутствующая запись создаётся со значением true.
func (s *Store) Toggle(ctx context.Context, orderID int64, key string) (bool, error) {
	metrics.StoreOps.WithLabelValues("checklist", "toggle").Inc()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("начало транзакции: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var checked bool
	err = tx.QueryRowContext(ctx,
		"SELECT checked FROM checklist WHERE order_id = ? AND item_key = ?",
		orderID, key,
	).Scan(&checked)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		checked = false
	case err != nil:
		return false, fmt.Errorf("чтение чек-листа: %w", err)
	}

	next := !checked
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO checklist (order_id, item_key, checked) VALUES (?, ?, ?)
		 ON CONFLICT (order_id, item_key) DO UPDATE SET checked = excluded.checked`,
		orderID, key, next,
	); err != nil {
		return false, fmt.Errorf("запись чек-листа: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("фиксация чек-листа: %w", err)
	}
	return next, nil
}

// Checked — все флаги заказа.
func (s *Store) Checked(ctx context.Context, orderID int64) (map[string]bool, error) {
	metrics.StoreOps.WithLabelValues("checklist", "checked").Inc()

	rows, err := s.db.QueryContext(ctx,
		"SELECT item_key, checked FROM checklist WHERE order_id = ?", orderID)
	if err != nil {
		return nil, fmt.Errorf("чтение чек-листа: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var key string
		var checked bool
		if err := rows.Scan(&key, &checked); err != nil {
			return nil, fmt.Errorf("scan чек-листа: %w", err)
		}
		out[key] = checked
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("обход чек-листа: %w", err)
	}
	return out, nil
}

// PruneCompleted — чистит чек-лист выданного заказа: ключи строятся из
// названий позиций и на другом заказе не переиспользуются.
func (s *Store) PruneCompleted(ctx context.Context, orderID int64) error {
	metrics.StoreOps.WithLabelValues("checklist", "prune").Inc()

	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM checklist WHERE order_id = ?", orderID); err != nil {
		return fmt.Errorf("очистка чек-листа (заказ %d): %w", orderID, err)
	}
	return nil
}

const prefMuted = "notifications_muted"

// Muted — сохранённый mute-флаг; отсутствие записи читается как false.
func (s *Store) Muted(ctx context.Context) (bool, error) {
	metrics.StoreOps.WithLabelValues("prefs", "get").Inc()

	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM prefs WHERE key = ?", prefMuted).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("чтение флага оповещений: %w", err)
	}
	return value == "true", nil
}

// SetMuted — запись mute-флага.
func (s *Store) SetMuted(ctx context.Context, muted bool) error {
	metrics.StoreOps.WithLabelValues("prefs", "set").Inc()

	value := "false"
	if muted {
		value = "true"
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO prefs (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		prefMuted, value,
	); err != nil {
		return fmt.Errorf("запись флага оповещений: %w", err)
	}
	return nil
}

// Close — закрывает базу.
func (s *Store) Close() error { return s.db.Close() }
