// Package memory — хранилище в памяти: драйвер memory в конфиге
// и подложка для юнит-тестов. Ничего не переживает рестарт.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/rknpizza/counterboard/internal/domain"
	"github.com/rknpizza/counterboard/internal/ports"
)

type checklistKey struct {
	orderID int64
	item    string
}

// Store — реализация всех трёх хранилищ на картах под одним мьютексом.
type Store struct {
	mu        sync.RWMutex
	snapshot  domain.Snapshot
	checklist map[checklistKey]bool
	muted     bool
}

var (
	_ ports.SnapshotStore   = (*Store)(nil)
	_ ports.ChecklistStore  = (*Store)(nil)
	_ ports.ChecklistPruner = (*Store)(nil)
	_ ports.PrefsStore      = (*Store)(nil)
)

func New() *Store {
	return &Store{
		snapshot:  make(domain.Snapshot),
		checklist: make(map[checklistKey]bool),
	}
}

func (s *Store) Load(_ context.Context) (domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(domain.Snapshot, len(s.snapshot))
	for id, status := range s.snapshot {
		out[id] = status
	}
	return out, nil
}

func (s *Store) Replace(_ context.Context, entries []domain.SnapshotEntry) error {
	next := make(domain.Snapshot, len(entries))
	for _, e := range entries {
		if !e.Status.Valid() {
			return fmt.Errorf("снапшот, заказ %d: %w", e.ID, domain.ErrUnknownStatus)
		}
		next[e.ID] = e.Status
	}

	s.mu.Lock()
	s.snapshot = next
	s.mu.Unlock()
	return nil
}

func (s *Store) Get(_ context.Context, orderID int64, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checklist[checklistKey{orderID, key}], nil
}

func (s *Store) Toggle(_ context.Context, orderID int64, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := checklistKey{orderID, key}
	s.checklist[k] = !s.checklist[k]
	return s.checklist[k], nil
}

func (s *Store) Checked(_ context.Context, orderID int64) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]bool)
	for k, v := range s.checklist {
		if k.orderID == orderID {
			out[k.item] = v
		}
	}
	return out, nil
}

func (s *Store) PruneCompleted(_ context.Context, orderID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k := range s.checklist {
		if k.orderID == orderID {
			delete(s.checklist, k)
		}
	}
	return nil
}

func (s *Store) Muted(_ context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.muted, nil
}

func (s *Store) SetMuted(_ context.Context, muted bool) error {
	s.mu.Lock()
	s.muted = muted
	s.mu.Unlock()
	return nil
}
