package project

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Project struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name     string    `gorm:"type:varchar(180);not null"`
	Location string    `gorm:"type:varchar(180)"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	Costs []ProjectCost `gorm:"foreignKey:ProjectID"`
}

// ProjectCost is one posted cost line on a project. Lines mirrored from a
// foreman ledger invoice carry the originating line id in SourceRef; cost
// history stays in place even after the ledger relationship is removed.
type ProjectCost struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index"`

	Date        time.Time `gorm:"type:date;not null"`
	Description string    `gorm:"type:varchar(255);not null"`
	Category    string    `gorm:"type:varchar(60)"`
	Amount      int64     `gorm:"type:bigint;not null"`

	// Back-reference to the foreman ledger invoice line that produced this
	// entry; null for costs posted directly.
	SourceRef *string `gorm:"type:varchar(64);index:idx_project_costs_source_ref"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
