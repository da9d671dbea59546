package core

import (
	"errors"
	"time"
)

type (
	Role string

	// Money is an amount in whole Indonesian rupiah. The rupiah has no
	// practical minor unit, so amounts are plain int64 values.
	Money struct {
		Rupiah int64
	}

	// CohortContribution is one cohort's collected total within a fiscal year.
	CohortContribution struct {
		CohortYear int
		Total      Money
	}

	// YearLedger is the per-year dues document: the cohort list plus the
	// rolled-up total and the independent target.
	YearLedger struct {
		Year        string
		Cohorts     []CohortContribution
		Rollup      Money
		Target      Money
		LastUpdated time.Time
	}

	// SummaryEntry is one year's slice of the cross-year summary document.
	// Total includes the carry-over from prior years on top of the rollup.
	SummaryEntry struct {
		Cohorts     []CohortContribution
		Total       Money
		Target      Money
		CarryOver   Money
		LastUpdated time.Time
	}

	// Summary is the cross-year summary document, keyed by year string.
	Summary struct {
		Years map[string]SummaryEntry
	}
)

const (
	RoleAdmin Role = "admin"
	RoleGuest Role = "guest"
)

var (
	ErrInvalidYear       = errors.New("invalid year")
	ErrInvalidCohortYear = errors.New("invalid cohort year")
	ErrInvalidAmount     = errors.New("invalid amount")
)

func (m Money) Validate() error {
	if m.Rupiah < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ValidateCohortYear accepts four-digit cohort years only.
func ValidateCohortYear(y int) error {
	if y < 1900 || y > 2200 {
		return ErrInvalidCohortYear
	}
	return nil
}

// ApplyContribution returns the cohort list with cohortYear's total replaced,
// or with a new entry appended when the cohort is not present yet. List order
// is preserved; exactly one entry per cohort year.
func ApplyContribution(cohorts []CohortContribution, cohortYear int, total Money) []CohortContribution {
	out := make([]CohortContribution, len(cohorts))
	copy(out, cohorts)
	for i := range out {
		if out[i].CohortYear == cohortYear {
			out[i].Total = total
			return out
		}
	}
	return append(out, CohortContribution{CohortYear: cohortYear, Total: total})
}

// RollupTotal recomputes the full sum of all cohort totals. Always a full
// summation, never incremental, so partial updates cannot drift.
func RollupTotal(cohorts []CohortContribution) Money {
	var sum int64
	for _, c := range cohorts {
		sum += c.Total.Rupiah
	}
	return Money{Rupiah: sum}
}

// Progress returns the rounded percentage of current against target,
// clamped to 0-100. A zero target reports zero progress.
func Progress(current, target Money) int {
	if target.Rupiah <= 0 || current.Rupiah <= 0 {
		return 0
	}
	pct := int((current.Rupiah*100 + target.Rupiah/2) / target.Rupiah)
	if pct > 100 {
		pct = 100
	}
	return pct
}

// GrandTotal sums collected and target amounts across all summary years.
func (s Summary) GrandTotal() (collected, target Money) {
	for _, e := range s.Years {
		collected.Rupiah += e.Total.Rupiah
		target.Rupiah += e.Target.Rupiah
	}
	return collected, target
}
