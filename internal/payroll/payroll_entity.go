package payroll

import (
	"time"

	"github.com/google/uuid"
)

// PayrollPeriod stores one employee's computed pay for one date range.
// Derived amounts (absent deduction, the three totals, net salary) are
// computed once at create time and stored; they are never recomputed on read.
type PayrollPeriod struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_payroll_periods_employee"`

	FromDate time.Time `gorm:"type:date;not null"`
	ToDate   time.Time `gorm:"type:date;not null"`

	BaseSalary      int64 `gorm:"type:bigint;not null"`
	Allowances      int64 `gorm:"type:bigint;not null;default:0"`
	AbsentDays      int   `gorm:"not null;default:0"`
	AbsentDeduction int64 `gorm:"type:bigint;not null;default:0"`
	FixedDeductions int64 `gorm:"type:bigint;not null;default:0"`

	ManualExpensesTotal int64 `gorm:"type:bigint;not null;default:0"`
	LinkedExpensesTotal int64 `gorm:"type:bigint;not null;default:0"`
	TotalDeductions     int64 `gorm:"type:bigint;not null;default:0"`
	NetSalary           int64 `gorm:"type:bigint;not null;default:0"`

	Status   string     `gorm:"type:varchar(20);not null;default:'PENDING'"`
	PaidDate *time.Time `gorm:"type:date"`

	// BatchID links this period back to the roster entry whose status
	// mirrors this period's status. The roster side never writes it.
	BatchID *uuid.UUID `gorm:"type:uuid;index:idx_payroll_periods_batch"`

	ManualExpenses   []ManualExpenseLine `gorm:"foreignKey:PeriodID;constraint:OnDelete:CASCADE"`
	LinkedDeductions []LinkedDeduction   `gorm:"foreignKey:PeriodID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type ManualExpenseLine struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PeriodID    uuid.UUID `gorm:"type:uuid;not null;index:idx_manual_expense_period"`
	Description string    `gorm:"type:text;not null"`
	Amount      int64     `gorm:"type:bigint;not null"`
}

type LinkedDeduction struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PeriodID     uuid.UUID `gorm:"type:uuid;not null;index:idx_linked_deduction_period"`
	InstrumentID uuid.UUID `gorm:"type:uuid;not null"`
	Amount       int64     `gorm:"type:bigint;not null"`
}
