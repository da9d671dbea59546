package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"iuran/internal/amqp"
	"iuran/internal/audit"
)

type recorderSpy struct {
	entries []audit.Entry
	err     error
}

func (r *recorderSpy) Record(_ context.Context, e audit.Entry) error {
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, e)
	return nil
}

func TestHandleLedgerUpdated(t *testing.T) {
	spy := &recorderSpy{}
	w := NewAuditWorker(spy)
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	err := w.HandleLedgerUpdated(context.Background(), &amqp.LedgerUpdatedMessage{
		Year: "2025", CohortYear: 2020, TotalRupiah: 10_000_000, Actor: "admin", Timestamp: ts,
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(spy.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(spy.entries))
	}
	e := spy.entries[0]
	if e.Year != "2025" || e.CohortYear != 2020 || e.TotalRupiah != 10_000_000 || !e.RecordedAt.Equal(ts) {
		t.Fatalf("entry mismatch: %+v", e)
	}
}

func TestHandleLedgerUpdatedPropagatesRecordError(t *testing.T) {
	w := NewAuditWorker(&recorderSpy{err: errors.New("disk full")})
	err := w.HandleLedgerUpdated(context.Background(), &amqp.LedgerUpdatedMessage{Year: "2025"})
	if err == nil {
		t.Fatal("recording failure must surface so the event is redelivered")
	}
}

func TestHandleLedgerUpdatedDropsYearlessEvents(t *testing.T) {
	spy := &recorderSpy{}
	w := NewAuditWorker(spy)
	if err := w.HandleLedgerUpdated(context.Background(), &amqp.LedgerUpdatedMessage{CohortYear: 2020}); err != nil {
		t.Fatalf("yearless events are dropped, not retried: %v", err)
	}
	if len(spy.entries) != 0 {
		t.Fatal("yearless event recorded")
	}
}
