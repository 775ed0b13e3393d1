package events

import "time"

const LeaveLifecycleTopic = "hr.leave.lifecycle.v1"

const (
	LeaveSubmitted = "leave.submitted"
	LeaveApproved  = "leave.approved"
	LeaveRejected  = "leave.rejected"
)

// LeaveLifecycleEvent is written to the outbox in the same transaction as
// the state change it describes.
type LeaveLifecycleEvent struct {
	EventType    string    `json:"event_type"`
	LeaveID      string    `json:"leave_id"`
	EmployeeID   string    `json:"employee_id"`
	ActorID      string    `json:"actor_id"`
	LeaveTypeID  string    `json:"leave_type_id"`
	Status       string    `json:"status"`
	StartDate    string    `json:"start_date"`
	EndDate      string    `json:"end_date"`
	Days         int       `json:"days"`
	BalanceAfter *int      `json:"balance_after,omitempty"`
	Comment      string    `json:"comment,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}
