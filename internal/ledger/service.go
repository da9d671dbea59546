// Package ledger implements the dues ledger read model and the two-document
// update procedure that keeps the per-year ledger and the cross-year summary
// consistent.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"iuran/internal/core"
	"iuran/internal/docstore"
)

const (
	// Collection holds one document per fiscal year plus the summary.
	Collection = "iuran"
	// SummaryDocID is the singleton cross-year summary document.
	SummaryDocID = "rekapTahunan"
)

// ErrYearNotFound is returned when the per-year ledger document does not
// exist. Updates never create a year implicitly.
var ErrYearNotFound = errors.New("year ledger not found")

// EventPublisher receives a notification after a successful ledger update.
// Publication is best effort and never fails the update.
type EventPublisher interface {
	PublishLedgerUpdated(ctx context.Context, year string, cohortYear int, totalRupiah int64, actor string) error
}

// Service composes the document store into the ledger operations.
type Service struct {
	store  docstore.Store
	events EventPublisher
	now    func() time.Time
}

func NewService(store docstore.Store, events EventPublisher) *Service {
	return &Service{
		store:  store,
		events: events,
		now:    time.Now,
	}
}

// FetchYearLedger reads one year's document. A missing document is
// (zero, false, nil), not an error.
func (s *Service) FetchYearLedger(ctx context.Context, year string) (core.YearLedger, bool, error) {
	doc, ok, err := s.store.Get(ctx, Collection, year)
	if err != nil {
		return core.YearLedger{}, false, fmt.Errorf("fetch year ledger %s: %w", year, err)
	}
	if !ok {
		return core.YearLedger{}, false, nil
	}
	return core.ParseYearLedger(year, doc), true, nil
}

// FetchSummary reads the cross-year summary document. A missing document is
// (zero, false, nil), not an error.
func (s *Service) FetchSummary(ctx context.Context) (core.Summary, bool, error) {
	doc, ok, err := s.store.Get(ctx, Collection, SummaryDocID)
	if err != nil {
		return core.Summary{}, false, fmt.Errorf("fetch summary: %w", err)
	}
	if !ok {
		return core.Summary{}, false, nil
	}
	return core.ParseSummary(doc), true, nil
}

// UpdateCohortContribution sets one cohort's collected total for a year and
// propagates the recomputed rollup into the summary document.
//
// The year document and the summary are written in two separate merge calls;
// a failure between them leaves the documents inconsistent until the next
// successful update. That window is accepted, there is no rollback.
func (s *Service) UpdateCohortContribution(ctx context.Context, year string, cohortYear int, newTotal core.Money, actor string) error {
	if err := newTotal.Validate(); err != nil {
		return err
	}
	if err := core.ValidateCohortYear(cohortYear); err != nil {
		return err
	}

	yearDoc, ok, err := s.store.Get(ctx, Collection, year)
	if err != nil {
		return fmt.Errorf("read year ledger %s: %w", year, err)
	}
	if !ok {
		return fmt.Errorf("year %s: %w", year, ErrYearNotFound)
	}
	current := core.ParseYearLedger(year, yearDoc)

	cohorts := core.ApplyContribution(current.Cohorts, cohortYear, newTotal)
	rollup := core.RollupTotal(cohorts)

	// Summary defaults apply when the per-year entry is absent.
	var entry core.SummaryEntry
	if summaryDoc, ok, err := s.store.Get(ctx, Collection, SummaryDocID); err != nil {
		return fmt.Errorf("read summary: %w", err)
	} else if ok {
		entry = core.ParseSummary(summaryDoc).Years[year]
	}

	now := s.now().UTC()
	encodedCohorts := core.EncodeCohortList(cohorts)

	// First write: the year document. Target lives under iuranData and is
	// preserved by the merge since only total is touched.
	err = s.store.SetMerge(ctx, Collection, year, docstore.Document{
		core.FieldCohortList: encodedCohorts,
		core.FieldDuesData: map[string]any{
			core.FieldTotal: rollup.Rupiah,
		},
		core.FieldLastUpdated: now,
	})
	if err != nil {
		return fmt.Errorf("write year ledger %s: %w", year, err)
	}

	// Second write: the per-year summary entry mirrors the cohort list and
	// adds the carry-over from prior years on top of the rollup.
	err = s.store.SetMerge(ctx, Collection, SummaryDocID, docstore.Document{
		year: map[string]any{
			core.FieldCohortList:  encodedCohorts,
			core.FieldTotal:       entry.CarryOver.Rupiah + rollup.Rupiah,
			core.FieldTarget:      entry.Target.Rupiah,
			core.FieldCarryOver:   entry.CarryOver.Rupiah,
			core.FieldLastUpdated: now,
		},
	})
	if err != nil {
		return fmt.Errorf("write summary for %s: %w", year, err)
	}

	slog.InfoContext(ctx, "Cohort contribution updated",
		"year", year,
		"cohort_year", cohortYear,
		"total_rupiah", newTotal.Rupiah,
		"rollup_rupiah", rollup.Rupiah,
		"actor", actor)

	if s.events != nil {
		if err := s.events.PublishLedgerUpdated(ctx, year, cohortYear, newTotal.Rupiah, actor); err != nil {
			slog.ErrorContext(ctx, "Failed to publish ledger update event",
				"error", err,
				"year", year,
				"cohort_year", cohortYear)
			// The update already succeeded; the audit trail catches up later.
		}
	}

	return nil
}
