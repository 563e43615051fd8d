package foreman

import (
	"time"

	"github.com/google/uuid"
)

// ForemanLedger is the running cash-vs-invoice account for one foreman on
// one project. The three totals are recomputed from the entry tables after
// every mutation; Version guards the recompute against concurrent writers.
type ForemanLedger struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`

	ForemanID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_foreman_ledgers_pair"`
	ForemanName string    `gorm:"type:varchar(255);not null"`
	ProjectID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_foreman_ledgers_pair"`
	ProjectName string    `gorm:"type:varchar(255);not null"`

	ProjectLocation string `gorm:"type:varchar(255)"`

	TotalSent        int64 `gorm:"type:bigint;not null;default:0"`
	TotalInvoiced    int64 `gorm:"type:bigint;not null;default:0"`
	RemainingBalance int64 `gorm:"type:bigint;not null;default:0"`

	Version int64 `gorm:"not null;default:0"`

	CashAdvances []CashAdvance `gorm:"foreignKey:LedgerID;constraint:OnDelete:CASCADE"`
	InvoiceLines []InvoiceLine `gorm:"foreignKey:LedgerID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type CashAdvance struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	LedgerID uuid.UUID `gorm:"type:uuid;not null;index:idx_cash_advances_ledger"`

	Date        time.Time `gorm:"type:date;not null"`
	Amount      int64     `gorm:"type:bigint;not null"`
	Mode        string    `gorm:"type:varchar(30);not null"`
	ReferenceNo string    `gorm:"type:varchar(60)"`
	Remarks     string    `gorm:"type:text"`

	CreatedAt time.Time
}

type InvoiceLine struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	LedgerID uuid.UUID `gorm:"type:uuid;not null;index:idx_invoice_lines_ledger"`

	Date      time.Time `gorm:"type:date;not null"`
	Amount    int64     `gorm:"type:bigint;not null"`
	InvoiceNo string    `gorm:"type:varchar(60)"`
	Category  string    `gorm:"type:varchar(60)"`
	Remarks   string    `gorm:"type:text"`

	CreatedAt time.Time
}
