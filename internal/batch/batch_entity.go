package batch

import (
	"time"

	"github.com/google/uuid"
)

// PayrollBatch is a named roster of employees for one project + foreman +
// period date. Entry status is a projection of each member's payroll period
// status; roster CRUD never writes it directly.
type PayrollBatch struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`

	ProjectID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_batches_triple"`
	ProjectName string    `gorm:"type:varchar(255);not null"`
	ForemanID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_batches_triple"`
	ForemanName string    `gorm:"type:varchar(255);not null"`
	PeriodDate  time.Time `gorm:"type:date;not null;uniqueIndex:uq_batches_triple"`

	Entries []PayrollBatchEntry `gorm:"foreignKey:BatchID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type PayrollBatchEntry struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BatchID uuid.UUID `gorm:"type:uuid;not null;index:idx_batch_entries_batch"`

	EmployeeID   uuid.UUID `gorm:"type:uuid;not null;index:idx_batch_entries_employee"`
	EmployeeName string    `gorm:"type:varchar(255);not null"`
	IDNumber     string    `gorm:"type:varchar(50)"`
	Salary       int64     `gorm:"type:bigint;not null"`
	Status       string    `gorm:"type:varchar(20);not null;default:'pending'"`
}
