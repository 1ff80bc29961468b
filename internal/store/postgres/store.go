// Package postgres — хранилище стойки на Postgres (pgxpool): вариант
// для общей стойки, когда чек-лист и mute-флаг делят несколько рабочих мест.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rknpizza/counterboard/internal/domain"
	"github.com/rknpizza/counterboard/internal/ports"
	"github.com/rknpizza/counterboard/pkg/metrics"
)

var (
	_ ports.SnapshotStore   = (*Store)(nil)
	_ ports.ChecklistStore  = (*Store)(nil)
	_ ports.ChecklistPruner = (*Store)(nil)
	_ ports.PrefsStore      = (*Store)(nil)
)

// Store — все три концерна на одном пуле. Схему накатывают goose-миграции
// (migrations/), сам Store таблицы не создаёт.
type Store struct {
	pool *pgxpool.Pool
}

// New — конструктор Store.
func New(pool *pgxpool.Pool) *Store { return &Store{pool: pool} }

// Load — снапшот активных заказов; пустая карта, если истории нет.
func (s *Store) Load(ctx context.Context) (domain.Snapshot, error) {
	metrics.StoreOps.WithLabelValues("snapshot", "load").Inc()

	rows, err := s.pool.Query(ctx, `SELECT order_id, status FROM order_snapshot`)
	if err != nil {
		return nil, fmt.Errorf("select snapshot: %w", err)
	}
	defer rows.Close()

	snapshot := make(domain.Snapshot)
	for rows.Next() {
		var id int64
		var raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		status, err := domain.ParseStatus(raw)
		if err != nil {
			return nil, fmt.Errorf("snapshot, заказ %d: %w", id, err)
		}
		snapshot[id] = status
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("snapshot rows: %w", err)
	}
	return snapshot, nil
}

// Replace — полная транзакционная замена снапшота: DELETE + COPY.
func (s *Store) Replace(ctx context.Context, entries []domain.SnapshotEntry) error {
	metrics.StoreOps.WithLabelValues("snapshot", "replace").Inc()

	for _, e := range entries {
		if !e.Status.Valid() {
			return fmt.Errorf("snapshot, заказ %d: %w", e.ID, domain.ErrUnknownStatus)
		}
	}

	transaction, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		// При уже завершённой транзакции Rollback вернёт ErrTxClosed — игнорируем.
		if rbErr := transaction.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			_ = rbErr
		}
	}()

	if _, err := transaction.Exec(ctx, `DELETE FROM order_snapshot`); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}

	if len(entries) > 0 {
		copyRows := make([][]any, 0, len(entries))
		for _, e := range entries {
			copyRows = append(copyRows, []any{e.ID, string(e.Status)})
		}
		if _, err := transaction.CopyFrom(
			ctx,
			pgx.Identifier{"order_snapshot"},
			[]string{"order_id", "status"},
			pgx.CopyFromRows(copyRows),
		); err != nil {
			return fmt.Errorf("copy snapshot: %w", err)
		}
	}

	if err := transaction.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Get — флаг позиции чек-листа; невиданный ключ читается как false.
func (s *Store) Get(ctx context.Context, orderID int64, key string) (bool, error) {
	metrics.StoreOps.WithLabelValues("checklist", "get").Inc()

	var checked bool
	err := s.pool.QueryRow(ctx,
		`SELECT checked FROM checklist WHERE order_id = $1 AND item_key = $2`,
		orderID, key,
	).Scan(&checked)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("select checklist: %w", err)
	}
	return checked, nil
}

// Toggle — инвертирует флаг одним upsert-запросом; отсутствующая запись
// создаётся со значением true. Возвращает новое значение.
func (s *Store) Toggle(ctx context.Context, orderID int64, key string) (bool, error) {
	metrics.StoreOps.WithLabelValues("checklist", "toggle").Inc()

	var next bool
	err := s.pool.QueryRow(ctx, `
		INSERT INTO checklist (order_id, item_key, checked) VALUES ($1, $2, TRUE)
		ON CONFLICT (order_id, item_key) DO UPDATE SET checked = NOT checklist.checked
		RETURNING checked
	`, orderID, key).Scan(&next)
	if err != nil {
		return false, fmt.Errorf("toggle checklist: %w", err)
	}
	return next, nil
}

// Checked — все флаги заказа.
func (s *Store) Checked(ctx context.Context, orderID int64) (map[string]bool, error) {
	metrics.StoreOps.WithLabelValues("checklist", "checked").Inc()

	rows, err := s.pool.Query(ctx,
		`SELECT item_key, checked FROM checklist WHERE order_id = $1`, orderID)
	if err != nil {
		return nil, fmt.Errorf("select checklist: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var key string
		var checked bool
		if err := rows.Scan(&key, &checked); err != nil {
			return nil, fmt.Errorf("scan checklist: %w", err)
		}
		out[key] = checked
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("checklist rows: %w", err)
	}
	return out, nil
}

// PruneCompleted — удаляет чек-лист выданного заказа.
func (s *Store) PruneCompleted(ctx context.Context, orderID int64) error {
	metrics.StoreOps.WithLabelValues("checklist", "prune").Inc()

	if _, err := s.pool.Exec(ctx,
		`DELETE FROM checklist WHERE order_id = $1`, orderID); err != nil {
		return fmt.Errorf("prune checklist (заказ %d): %w", orderID, err)
	}
	return nil
}

const prefMuted = "notifications_muted"

// Muted — сохранённый mute-флаг; отсутствие записи читается как false.
func (s *Store) Muted(ctx context.Context) (bool, error) {
	metrics.StoreOps.WithLabelValues("prefs", "get").Inc()

	var muted bool
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM prefs WHERE key = $1`, prefMuted).Scan(&muted)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("select prefs: %w", err)
	}
	return muted, nil
}

// SetMuted — запись mute-флага.
func (s *Store) SetMuted(ctx context.Context, muted bool) error {
	metrics.StoreOps.WithLabelValues("prefs", "set").Inc()

	if _, err := s.pool.Exec(ctx, `
		INSERT INTO prefs (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`, prefMuted, muted); err != nil {
		return fmt.Errorf("upsert prefs: %w", err)
	}
	return nil
}
