package debt

import (
	"time"

	"github.com/google/uuid"
)

// DebtInstrument is a single loan/advance/reimbursement owed by an employee,
// tracked independently of any payroll period. PaidAmount and Status change
// only through the settlement path; there is no delete surface because a
// settled payroll period may reference the record forever.
type DebtInstrument struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_debts_employee"`

	Kind        string    `gorm:"type:varchar(20);not null"`
	Amount      int64     `gorm:"type:bigint;not null"`
	Date        time.Time `gorm:"type:date;not null"`
	Description string    `gorm:"type:text"`

	PaidAmount int64  `gorm:"type:bigint;not null;default:0"`
	Status     string `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_debts_status"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DeriveStatus is the three-way rule over paidAmount. PaidAmount may exceed
// Amount (over-settlement is not rejected); anything at or past the full
// amount counts as completed. The settlement UPDATEs in the repository
// embed this same rule as a SQL CASE; change both together.
func DeriveStatus(amount, paidAmount int64) string {
	switch {
	case paidAmount <= 0:
		return StatusPending
	case paidAmount < amount:
		return StatusPartial
	default:
		return StatusCompleted
	}
}
