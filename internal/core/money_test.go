package core

import "testing"

func TestParseRupiah(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"10000000", 10_000_000, true},
		{"10.000.000", 10_000_000, true},
		{"Rp 10.000.000", 10_000_000, true},
		{"rp 500", 500, true},
		{" 9200000 ", 9_200_000, true},
		{"0", 0, true},
		{"1.00", 0, false}, // bad grouping
		{"10..000", 0, false},
		{"-500", 0, false},
		{"+500", 0, false},
		{"12,5", 0, false},
		{"abc", 0, false},
		{"", 0, false},
		{"Rp", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseRupiah(tc.in)
		if tc.ok {
			if err != nil || got.Rupiah != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Rupiah, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestFormatRupiah(t *testing.T) {
	cases := []struct {
		in  int64
		out string
	}{
		{0, "Rp 0"},
		{500, "Rp 500"},
		{8_500_000, "Rp 8.500.000"},
		{19_200_000, "Rp 19.200.000"},
		{1_000_000_000, "Rp 1.000.000.000"},
	}
	for _, tc := range cases {
		if got := FormatRupiah(Money{Rupiah: tc.in}); got != tc.out {
			t.Fatalf("%d expected %q, got %q", tc.in, tc.out, got)
		}
	}
}
