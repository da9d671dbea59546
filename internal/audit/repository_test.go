package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	r, err := NewRepository(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRecordAndListRecent(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	entries := []Entry{
		{Year: "2025", CohortYear: 2020, TotalRupiah: 10_000_000, Actor: "admin", RecordedAt: base},
		{Year: "2025", CohortYear: 2019, TotalRupiah: 9_200_000, Actor: "admin", RecordedAt: base.Add(time.Minute)},
	}
	for _, e := range entries {
		if err := r.Record(ctx, e); err != nil {
			t.Fatalf("record %+v: %v", e, err)
		}
	}

	got, err := r.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	// Newest first.
	if got[0].CohortYear != 2019 || got[1].CohortYear != 2020 {
		t.Fatalf("order wrong: %+v", got)
	}
	if !got[1].RecordedAt.Equal(base) {
		t.Fatalf("recorded_at lost precision: %v", got[1].RecordedAt)
	}
}

func TestRecordIsIdempotentPerDelivery(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	e := Entry{Year: "2025", CohortYear: 2020, TotalRupiah: 10_000_000, Actor: "admin",
		RecordedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}

	// Same event redelivered by the broker.
	for i := 0; i < 3; i++ {
		if err := r.Record(ctx, e); err != nil {
			t.Fatalf("record attempt %d: %v", i, err)
		}
	}

	got, err := r.ListRecent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 entry after redelivery, got %d", len(got))
	}
}
