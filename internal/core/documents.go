// Package core provides the dues (iuran) domain model: rupiah amounts,
// per-year cohort ledgers, and the cross-year summary.
//
// This file converts between the loosely-typed documents returned by the
// document store and the typed schemas above. Malformed fields are dropped
// or defaulted at this boundary instead of propagating untyped maps.
package core

import "time"

// Document field names used by the hosted store. The spellings follow the
// live documents and must not change without a data migration.
const (
	FieldCohortList  = "angkatanList"
	FieldCohortYear  = "tahunAngkatan"
	FieldTotal       = "total"
	FieldDuesData    = "iuranData"
	FieldTarget      = "target"
	FieldCarryOver   = "sisaTahunLalu"
	FieldLastUpdated = "lastUpdated"
)

// ParseYearLedger coerces a raw year document into a YearLedger.
// Entries with a missing or non-numeric cohort year are dropped; missing
// amounts default to zero.
func ParseYearLedger(year string, doc map[string]any) YearLedger {
	l := YearLedger{Year: year}
	l.Cohorts = parseCohortList(doc[FieldCohortList])
	if dues, ok := doc[FieldDuesData].(map[string]any); ok {
		l.Rollup = Money{Rupiah: coerceInt64(dues[FieldTotal])}
		l.Target = Money{Rupiah: coerceInt64(dues[FieldTarget])}
	}
	l.LastUpdated = coerceTime(doc[FieldLastUpdated])
	return l
}

// ParseSummary coerces the raw cross-year summary document. Top-level fields
// that are not year-keyed maps are ignored.
func ParseSummary(doc map[string]any) Summary {
	s := Summary{Years: make(map[string]SummaryEntry)}
	for year, raw := range doc {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		s.Years[year] = SummaryEntry{
			Cohorts:     parseCohortList(entry[FieldCohortList]),
			Total:       Money{Rupiah: coerceInt64(entry[FieldTotal])},
			Target:      Money{Rupiah: coerceInt64(entry[FieldTarget])},
			CarryOver:   Money{Rupiah: coerceInt64(entry[FieldCarryOver])},
			LastUpdated: coerceTime(entry[FieldLastUpdated]),
		}
	}
	return s
}

// EncodeCohortList renders the cohort list in document form.
func EncodeCohortList(cohorts []CohortContribution) []any {
	out := make([]any, 0, len(cohorts))
	for _, c := range cohorts {
		out = append(out, map[string]any{
			FieldCohortYear: int64(c.CohortYear),
			FieldTotal:      c.Total.Rupiah,
		})
	}
	return out
}

func parseCohortList(raw any) []CohortContribution {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	var out []CohortContribution
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		year, ok := coerceInt(entry[FieldCohortYear])
		if !ok {
			continue
		}
		out = append(out, CohortContribution{
			CohortYear: year,
			Total:      Money{Rupiah: coerceInt64(entry[FieldTotal])},
		})
	}
	return out
}

func coerceInt64(raw any) int64 {
	switch v := raw.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func coerceInt(raw any) (int, bool) {
	switch v := raw.(type) {
	case int64:
		return int(v), true
	case int:
		return v, true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func coerceTime(raw any) time.Time {
	switch v := raw.(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
	}
	return time.Time{}
}
