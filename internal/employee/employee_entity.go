package employee

import (
	"time"

	"github.com/google/uuid"
)

// Employee is keyed by its HR code (e.g. "E042"). Balance is owned by the
// ledger package; this package only reads it.
type Employee struct {
	ID         string     `gorm:"type:varchar(32);primaryKey"`
	FullName   string     `gorm:"not null"`
	Email      string     `gorm:"uniqueIndex"`
	Balance    int        `gorm:"not null"`
	SuperiorID *string    `gorm:"type:varchar(32);index"`
	OrgUnitID  *uuid.UUID `gorm:"type:uuid"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Superior *Employee `gorm:"foreignKey:SuperiorID;references:ID"`
	OrgUnit  *OrgUnit  `gorm:"foreignKey:OrgUnitID;references:ID"`
}

type OrgUnit struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string
}

func (OrgUnit) TableName() string {
	return "org_units"
}
