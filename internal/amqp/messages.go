package amqp

import (
	"encoding/json"
	"time"
)

// LedgerUpdatedMessage notifies the audit worker that a cohort's collected
// total changed. It carries the full figure so the worker never has to read
// the ledger documents back.
type LedgerUpdatedMessage struct {
	Year        string    `json:"year"`
	CohortYear  int       `json:"cohort_year"`
	TotalRupiah int64     `json:"total_rupiah"`
	Actor       string    `json:"actor"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewLedgerUpdatedMessage(year string, cohortYear int, totalRupiah int64, actor string) *LedgerUpdatedMessage {
	return &LedgerUpdatedMessage{
		Year:        year,
		CohortYear:  cohortYear,
		TotalRupiah: totalRupiah,
		Actor:       actor,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *LedgerUpdatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerUpdatedMessageFromJSON creates a message from JSON bytes.
func LedgerUpdatedMessageFromJSON(data []byte) (*LedgerUpdatedMessage, error) {
	var msg LedgerUpdatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
