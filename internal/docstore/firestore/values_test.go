package firestore

import (
	"reflect"
	"testing"
	"time"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	doc := map[string]any{
		"angkatanList": []any{
			map[string]any{"tahunAngkatan": int64(2020), "total": int64(8_500_000)},
			map[string]any{"tahunAngkatan": int64(2019), "total": int64(0)},
		},
		"iuranData": map[string]any{
			"target": int64(25_000_000),
			"total":  int64(17_700_000),
		},
		"lastUpdated": now,
		"note":        "seed",
	}

	fields, err := encodeFields(doc)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got := decodeFields(fields)

	if !reflect.DeepEqual(got, doc) {
		t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", got, doc)
	}
}

func TestEncodeZeroInteger(t *testing.T) {
	fields, err := encodeFields(map[string]any{"total": int64(0)})
	if err != nil {
		t.Fatal(err)
	}
	v := fields["total"]
	if len(v.ForceSendFields) == 0 || v.ForceSendFields[0] != "IntegerValue" {
		t.Fatalf("zero integers must be force-sent, got %+v", v)
	}
}

func TestEncodeUnsupportedType(t *testing.T) {
	if _, err := encodeFields(map[string]any{"bad": struct{}{}}); err == nil {
		t.Fatal("expected error for unsupported type")
	}
}

func TestLeafFieldPaths(t *testing.T) {
	doc := map[string]any{
		"angkatanList": []any{"replaced", "wholesale"},
		"iuranData": map[string]any{
			"total": int64(1),
		},
		"2025": map[string]any{
			"sisaTahunLalu": int64(0),
		},
		"lastUpdated": time.Now(),
	}

	got := leafFieldPaths(doc)
	want := []string{
		"`2025`.sisaTahunLalu",
		"angkatanList",
		"iuranData.total",
		"lastUpdated",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("paths = %v, want %v", got, want)
	}
}
