package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseRupiah converts a user-entered rupiah amount to a Money value.
//
// It accepts plain digits ("10000000") as well as the common Indonesian
// display form with dot thousands separators ("10.000.000") and an optional
// "Rp" prefix. Negative values and fractional amounts are rejected; the
// rupiah has no minor unit here.
func ParseRupiah(s string) (Money, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "Rp")
	s = strings.TrimPrefix(s, "rp")
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	// Thousands separators: dots must group exactly three digits.
	if strings.Contains(s, ".") {
		parts := strings.Split(s, ".")
		for i, p := range parts {
			if p == "" {
				return Money{}, ErrInvalidAmount
			}
			if i > 0 && len(p) != 3 {
				return Money{}, ErrInvalidAmount
			}
		}
		s = strings.Join(parts, "")
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return Money{Rupiah: v}, nil
}

// FormatRupiah renders an amount as "Rp 10.000.000".
func FormatRupiah(m Money) string {
	return "Rp " + groupThousands(m.Rupiah)
}

func groupThousands(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	digits := strconv.FormatInt(v, 10)
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
