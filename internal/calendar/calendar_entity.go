package calendar

import (
	"time"

	"github.com/google/uuid"
)

// Holiday is a non-working calendar day. Only the date part of Date is meaningful.
type Holiday struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Date        time.Time `gorm:"type:date;uniqueIndex;not null"`
	Description string
	CreatedAt   time.Time
}

func (Holiday) TableName() string {
	return "holidays"
}
