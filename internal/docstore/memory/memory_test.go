package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestGetAbsentDocument(t *testing.T) {
	s := New()
	doc, ok, err := s.Get(context.Background(), "iuran", "2025")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok || doc != nil {
		t.Fatalf("absent document should be (nil, false), got (%v, %v)", doc, ok)
	}
}

func TestSetMergeCreatesAndMerges(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.SetMerge(ctx, "iuran", "2025", map[string]any{
		"iuranData": map[string]any{"target": int64(25_000_000), "total": int64(0)},
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.SetMerge(ctx, "iuran", "2025", map[string]any{
		"iuranData": map[string]any{"total": int64(17_700_000)},
	}); err != nil {
		t.Fatal(err)
	}

	doc, ok, err := s.Get(ctx, "iuran", "2025")
	if err != nil || !ok {
		t.Fatalf("get failed: ok=%v err=%v", ok, err)
	}
	dues := doc["iuranData"].(map[string]any)
	if dues["target"] != int64(25_000_000) || dues["total"] != int64(17_700_000) {
		t.Fatalf("merge result wrong: %v", dues)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.SetMerge(ctx, "iuran", "2025", map[string]any{"x": map[string]any{"a": int64(1)}})

	doc, _, _ := s.Get(ctx, "iuran", "2025")
	doc["x"].(map[string]any)["a"] = int64(99)

	again, _, _ := s.Get(ctx, "iuran", "2025")
	if again["x"].(map[string]any)["a"] != int64(1) {
		t.Fatal("caller mutation leaked into the store")
	}
}

func TestNewFromFiles(t *testing.T) {
	dir := t.TempDir()
	seed := `{"angkatanList":[{"tahunAngkatan":2020,"total":8500000}],"iuranData":{"target":25000000,"total":8500000}}`
	if err := os.WriteFile(filepath.Join(dir, "iuran__2025.json"), []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}
	// Malformed file must be skipped, not fatal.
	if err := os.WriteFile(filepath.Join(dir, "iuran__bad.json"), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewFromFiles(dir)
	doc, ok, err := s.Get(context.Background(), "iuran", "2025")
	if err != nil || !ok {
		t.Fatalf("seeded doc missing: ok=%v err=%v", ok, err)
	}
	// JSON numbers must arrive as int64 for whole amounts.
	dues := doc["iuranData"].(map[string]any)
	if dues["target"] != int64(25_000_000) {
		t.Fatalf("expected int64 target, got %T %v", dues["target"], dues["target"])
	}
	if _, ok, _ := s.Get(context.Background(), "iuran", "bad"); ok {
		t.Fatal("malformed seed file should be skipped")
	}
}
