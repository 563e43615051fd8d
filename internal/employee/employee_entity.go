package employee

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Employee struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FullName string    `gorm:"type:varchar(180);not null"`
	// National-ID-like string shown on payroll rosters
	IDNumber   string `gorm:"type:varchar(64);uniqueIndex:uq_employees_id_number"`
	CrewNumber string `gorm:"type:varchar(32);uniqueIndex:uq_employees_crew_number"`

	// Nominal base salary in minor units (cents)
	BaseSalary int64 `gorm:"type:bigint;not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
