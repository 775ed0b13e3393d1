package leave

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// IsActive reports whether a request in this status still holds its period.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusApproved
}

func (s Status) IsFinal() bool {
	return s == StatusApproved || s == StatusRejected
}

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

func (d Decision) Status() Status {
	if d == DecisionApprove {
		return StatusApproved
	}
	return StatusRejected
}

type LeaveType struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name             string    `gorm:"type:varchar(100);not null;uniqueIndex"`
	DefaultAllotment int       `gorm:"type:int;not null"`
}

func (LeaveType) TableName() string {
	return "leave_types"
}

type Leave struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID  string    `gorm:"type:varchar(32);not null;index:idx_leave_requests_employee_dates"`
	LeaveTypeID uuid.UUID `gorm:"type:uuid;not null"`

	StartDate time.Time `gorm:"type:date;not null;index:idx_leave_requests_employee_dates"`
	EndDate   time.Time `gorm:"type:date;not null;index:idx_leave_requests_employee_dates"`
	TotalDays int       `gorm:"type:int;not null"`
	Reason    string    `gorm:"type:text"`

	Status          Status     `gorm:"type:varchar(16);not null;index"`
	SubmittedAt     time.Time  `gorm:"not null"`
	DecidedBy       *string    `gorm:"type:uuid"`
	DecidedAt       *time.Time
	DecisionComment *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time

	LeaveType *LeaveType `gorm:"foreignKey:LeaveTypeID"`
}

func (Leave) TableName() string {
	return "leave_requests"
}

func (l Leave) Period() DateRange {
	return DateRange{Start: l.StartDate, End: l.EndDate}
}
