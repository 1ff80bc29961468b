package sqlite

import (
	"context"
	"testing"

	"github.com/rknpizza/counterboard/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("открытие хранилища: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_SnapshotRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	snap, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load на пустой базе: %v", err)
	}
	if len(snap) != 0 {
		t.Fatalf("ожидали пустой снапшот, получили %d записей", len(snap))
	}

	entries := []domain.SnapshotEntry{
		{ID: 1, Status: domain.StatusConfirmed},
		{ID: 2, Status: domain.StatusInPreparation},
	}
	if err := s.Replace(ctx, entries); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	snap, err = s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap) != 2 || snap[1] != domain.StatusConfirmed || snap[2] != domain.StatusInPreparation {
		t.Fatalf("снапшот после Replace: %+v", snap)
	}
}

func TestStore_ReplaceDropsOldEntries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Replace(ctx, []domain.SnapshotEntry{{ID: 1, Status: domain.StatusConfirmed}}); err != nil {
		t.Fatalf("первый Replace: %v", err)
	}
	if err := s.Replace(ctx, []domain.SnapshotEntry{{ID: 2, Status: domain.StatusConfirmed}}); err != nil {
		t.Fatalf("второй Replace: %v", err)
	}

	snap, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap) != 1 {
		t.Fatalf("ожидали 1 запись, получили %d", len(snap))
	}
	if _, ok := snap[1]; ok {
		t.Fatal("заказ 1 должен был исчезнуть после полной замены")
	}
}

func TestStore_ReplaceRejectsUnknownStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Replace(ctx, []domain.SnapshotEntry{{ID: 1, Status: domain.StatusConfirmed}}); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	err := s.Replace(ctx, []domain.SnapshotEntry{
		{ID: 2, Status: domain.StatusConfirmed},
		{ID: 3, Status: domain.Status("refunded")},
	})
	if err == nil {
		t.Fatal("ожидали ошибку на неизвестном статусе")
	}

	// Неудачная замена не должна затронуть старый набор.
	snap, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap) != 1 || snap[1] != domain.StatusConfirmed {
		t.Fatalf("старый снапшот повреждён: %+v", snap)
	}
}

func TestStore_ChecklistToggle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	key := "2× Маргарита"

	got, err := s.Get(ctx, 10, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got {
		t.Fatal("невиданный ключ должен читаться как false")
	}

	if v, err := s.Toggle(ctx, 10, key); err != nil || !v {
		t.Fatalf("первый Toggle: v=%v, err=%v", v, err)
	}
	if v, err := s.Toggle(ctx, 10, key); err != nil || v {
		t.Fatalf("второй Toggle: v=%v, err=%v", v, err)
	}
	if v, err := s.Toggle(ctx, 10, key); err != nil || !v {
		t.Fatalf("третий Toggle: v=%v, err=%v", v, err)
	}
}

func TestStore_ChecklistIsolatedByOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	key := "1× Пепперони"

	if _, err := s.Toggle(ctx, 10, key); err != nil {
		t.Fatalf("Toggle: %v", err)
	}

	got, err := s.Get(ctx, 11, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got {
		t.Fatal("флаг не должен протекать между заказами")
	}
}

func TestStore_Checked(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Toggle(ctx, 10, "1× Пепперони"); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if _, err := s.Toggle(ctx, 10, "2× Кола"); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if _, err := s.Toggle(ctx, 10, "2× Кола"); err != nil {
		t.Fatalf("Toggle назад: %v", err)
	}

	checked, err := s.Checked(ctx, 10)
	if err != nil {
		t.Fatalf("Checked: %v", err)
	}
	if len(checked) != 2 {
		t.Fatalf("ожидали 2 ключа, получили %d", len(checked))
	}
	if !checked["1× Пепперони"] || checked["2× Кола"] {
		t.Fatalf("значения флагов: %+v", checked)
	}
}

func TestStore_PruneCompleted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Toggle(ctx, 10, "1× Пепперони"); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if _, err := s.Toggle(ctx, 11, "1× Пепперони"); err != nil {
		t.Fatalf("Toggle: %v", err)
	}

	if err := s.PruneCompleted(ctx, 10); err != nil {
		t.Fatalf("PruneCompleted: %v", err)
	}

	checked, err := s.Checked(ctx, 10)
	if err != nil {
		t.Fatalf("Checked: %v", err)
	}
	if len(checked) != 0 {
		t.Fatalf("чек-лист заказа 10 должен быть пуст: %+v", checked)
	}
	if got, _ := s.Get(ctx, 11, "1× Пепперони"); !got {
		t.Fatal("чистка заказа 10 не должна трогать заказ 11")
	}
}

func TestStore_MutedFlag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	muted, err := s.Muted(ctx)
	if err != nil {
		t.Fatalf("Muted: %v", err)
	}
	if muted {
		t.Fatal("по умолчанию mute выключен")
	}

	if err := s.SetMuted(ctx, true); err != nil {
		t.Fatalf("SetMuted(true): %v", err)
	}
	if muted, _ = s.Muted(ctx); !muted {
		t.Fatal("флаг не сохранился")
	}

	if err := s.SetMuted(ctx, false); err != nil {
		t.Fatalf("SetMuted(false): %v", err)
	}
	if muted, _ = s.Muted(ctx); muted {
		t.Fatal("флаг не сбросился")
	}
}
