package events

import "time"

const ForemanInvoiceRecordedTopic = "construction.foreman.invoice.v1"

// ForemanInvoiceRecordedEvent is written to the outbox in the same transaction
// as the ledger's invoice line. The reconciliation consumer replays it to make
// sure the mirrored project cost entry exists.
type ForemanInvoiceRecordedEvent struct {
	EventType  string    `json:"event_type"`
	LedgerID   string    `json:"ledger_id"`
	LineID     string    `json:"line_id"`
	ProjectID  string    `json:"project_id"`
	Amount     int64     `json:"amount"`
	OccurredAt time.Time `json:"occurred_at"`
}
