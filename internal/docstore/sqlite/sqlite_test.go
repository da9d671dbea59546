package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "iuran.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetAbsent(t *testing.T) {
	s := newTestStore(t)
	doc, ok, err := s.Get(context.Background(), "iuran", "2025")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok || doc != nil {
		t.Fatalf("absent document should be (nil, false), got (%v, %v)", doc, ok)
	}
}

func TestSetMergeRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	err := s.SetMerge(ctx, "iuran", "2025", map[string]any{
		"angkatanList": []any{
			map[string]any{"tahunAngkatan": int64(2020), "total": int64(8_500_000)},
		},
		"iuranData": map[string]any{"target": int64(25_000_000), "total": int64(8_500_000)},
	})
	if err != nil {
		t.Fatalf("first merge: %v", err)
	}

	// Partial nested write must keep the sibling target.
	err = s.SetMerge(ctx, "iuran", "2025", map[string]any{
		"iuranData": map[string]any{"total": int64(17_700_000)},
	})
	if err != nil {
		t.Fatalf("second merge: %v", err)
	}

	doc, ok, err := s.Get(ctx, "iuran", "2025")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	dues := doc["iuranData"].(map[string]any)
	if dues["total"] != int64(17_700_000) || dues["target"] != int64(25_000_000) {
		t.Fatalf("merge result wrong: %v", dues)
	}
	list := doc["angkatanList"].([]any)
	if len(list) != 1 {
		t.Fatalf("cohort list lost: %v", list)
	}
	// Whole numbers must come back as int64 after the JSON round trip.
	entry := list[0].(map[string]any)
	if entry["total"] != int64(8_500_000) {
		t.Fatalf("expected int64 amount, got %T %v", entry["total"], entry["total"])
	}
}
