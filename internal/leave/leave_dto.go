package leave

type SubmitLeaveRequest struct {
	LeaveTypeID string `json:"leave_type_id" binding:"required,uuid"`
	StartDate   string `json:"start_date" binding:"required"`
	EndDate     string `json:"end_date" binding:"required"`
	Reason      string `json:"reason" binding:"max=1000"`
}

type DecideLeaveRequest struct {
	Comment string `json:"comment" binding:"max=1000"`
}

type HistoryEntryResponse struct {
	ActorID   string `json:"actor_id"`
	Action    string `json:"action"`
	Detail    string `json:"detail"`
	CreatedAt string `json:"created_at"`
}

type LeaveResponse struct {
	ID              string                 `json:"id"`
	EmployeeID      string                 `json:"employee_id"`
	LeaveTypeID     string                 `json:"leave_type_id"`
	LeaveTypeName   string                 `json:"leave_type_name,omitempty"`
	StartDate       string                 `json:"start_date"`
	EndDate         string                 `json:"end_date"`
	TotalDays       int                    `json:"total_days"`
	Reason          string                 `json:"reason,omitempty"`
	Status          string                 `json:"status"`
	SubmittedAt     string                 `json:"submitted_at"`
	DecidedBy       *string                `json:"decided_by,omitempty"`
	DecidedAt       *string                `json:"decided_at,omitempty"`
	DecisionComment *string                `json:"decision_comment,omitempty"`
	BalanceAfter    *int                   `json:"balance_after,omitempty"`
	History         []HistoryEntryResponse `json:"history,omitempty"`
}
