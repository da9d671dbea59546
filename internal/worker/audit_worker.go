// Package worker turns ledger-update events into audit trail entries.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"iuran/internal/amqp"
	"iuran/internal/audit"
)

// Recorder is the slice of the audit repository the worker needs.
type Recorder interface {
	Record(ctx context.Context, e audit.Entry) error
}

type AuditWorker struct {
	recorder Recorder
}

func NewAuditWorker(recorder Recorder) *AuditWorker {
	return &AuditWorker{recorder: recorder}
}

// HandleLedgerUpdated records one event. Errors propagate so the consumer
// nacks and the broker redelivers; recording dedupes on redelivery.
func (w *AuditWorker) HandleLedgerUpdated(ctx context.Context, msg *amqp.LedgerUpdatedMessage) error {
	if msg.Year == "" {
		slog.WarnContext(ctx, "Dropping ledger event without a year", "cohort_year", msg.CohortYear)
		return nil
	}

	err := w.recorder.Record(ctx, audit.Entry{
		Year:        msg.Year,
		CohortYear:  msg.CohortYear,
		TotalRupiah: msg.TotalRupiah,
		Actor:       msg.Actor,
		RecordedAt:  msg.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("record ledger event: %w", err)
	}
	return nil
}
