package audit

import (
	"time"

	"github.com/google/uuid"
)

type Action string

const (
	ActionSubmitted Action = "SUBMITTED"
	ActionApproved  Action = "APPROVED"
	ActionRejected  Action = "REJECTED"
)

// Entry is one immutable line of a request's history.
type Entry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ActorID   string    `gorm:"not null"`
	Action    Action    `gorm:"type:varchar(16);not null"`
	RequestID uuid.UUID `gorm:"type:uuid;not null;index"`
	Detail    string
	CreatedAt time.Time
}

func (Entry) TableName() string {
	return "audit_entries"
}
