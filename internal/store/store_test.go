package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ykvlv/medication-bot/internal/domain"
)

func TestMemory_UpdateWithoutCreate(t *testing.T) {
	m := NewMemory()
	called := false
	if m.Update("U1", false, func(*domain.UserReminder) { called = true }) {
		t.Fatal("missing user must not be updated")
	}
	if called || m.Len() != 0 {
		t.Fatal("no entry may be created")
	}
}

func TestMemory_CreateAndGetCopy(t *testing.T) {
	m := NewMemory()
	ok := m.Update("U1", true, func(r *domain.UserReminder) {
		r.ScheduledTime = domain.TimeOfDay{Hour: 21}
		r.Timer = domain.Timer{Kind: domain.DailyArmed, Handle: 1}
	})
	if !ok {
		t.Fatal("create failed")
	}

	got, ok := m.Get("U1")
	if !ok || got.UserID != "U1" || got.State() != domain.StateArmed {
		t.Fatalf("unexpected reminder %+v", got)
	}

	// Mutating the copy must not leak into the store.
	got.Timer = domain.Timer{}
	again, _ := m.Get("U1")
	if again.State() != domain.StateArmed {
		t.Fatal("Get must return a copy")
	}
}

func TestMemory_ConcurrentUsers(t *testing.T) {
	m := NewMemory()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := []string{"A", "B", "C"}[i%3]
			m.Update(id, true, func(r *domain.UserReminder) { r.Escalations++ })
		}(i)
	}
	wg.Wait()

	list := m.List()
	if len(list) != 3 {
		t.Fatalf("want 3 users, got %d", len(list))
	}
	total := 0
	for i, r := range list {
		if i > 0 && list[i-1].UserID > r.UserID {
			t.Fatal("list must be ordered by user id")
		}
		total += r.Escalations
	}
	if total != 50 {
		t.Fatalf("lost updates: %d", total)
	}
}

func openTestJournal(t *testing.T) *SQLiteJournal {
	t.Helper()
	j, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "data", "journal.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestJournal_RecordAndRecent(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	base := time.Date(2025, time.May, 5, 12, 0, 0, 0, time.UTC)

	records := []domain.Delivery{
		{UserID: "U1", Kind: domain.NotifyDaily, Delivered: true, At: base},
		{UserID: "U1", Kind: domain.NotifyEscalation, Delivered: false, Error: "timeout", At: base.Add(time.Hour)},
		{UserID: "U1", Kind: domain.NotifyEscalation, Delivered: true, At: base.Add(2 * time.Hour)},
		{UserID: "U2", Kind: domain.NotifyDaily, Delivered: true, At: base},
	}
	for _, d := range records {
		if err := j.Record(ctx, d); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	got, err := j.Recent(ctx, "U1", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("want 3 records, got %d", len(got))
	}
	if !got[0].At.Equal(base.Add(2*time.Hour)) || got[0].Kind != domain.NotifyEscalation {
		t.Fatalf("newest first expected, got %+v", got[0])
	}
	if got[1].Delivered || got[1].Error != "timeout" {
		t.Fatalf("failed delivery not preserved: %+v", got[1])
	}

	n, err := j.CountSince(ctx, "U1", domain.NotifyEscalation, base)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("want 1 delivered escalation, got %d", n)
	}
}

func TestJournal_RejectsEmptyUser(t *testing.T) {
	j := openTestJournal(t)
	if err := j.Record(context.Background(), domain.Delivery{Kind: domain.NotifyDaily}); err == nil {
		t.Fatal("expected error")
	}
}

func TestJournal_ReopenSkipsAppliedMigrations(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := j.Record(ctx, domain.Delivery{UserID: "U1", Kind: domain.NotifyDaily, Delivered: true}); err != nil {
		t.Fatalf("record: %v", err)
	}
	_ = j.Close()

	j, err = OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer j.Close()
	got, err := j.Recent(ctx, "U1", 0)
	if err != nil || len(got) != 1 {
		t.Fatalf("want 1 record after reopen, got %d (%v)", len(got), err)
	}
}
