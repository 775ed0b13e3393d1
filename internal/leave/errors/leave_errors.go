package leaveerrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidRange,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidRange,
		"start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrStartDateInPast = apperror.New(
		apperror.CodeInvalidRange,
		"start_date must be today or later",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveTypeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave_type_id",
		http.StatusBadRequest,
	)
	ErrInvalidDecision = apperror.New(
		apperror.CodeInvalidInput,
		"decision must be approve or reject",
		http.StatusBadRequest,
	)
	ErrNoEmployeeProfile = apperror.New(
		apperror.CodeForbidden,
		"acting user has no employee profile",
		http.StatusForbidden,
	)
	ErrLeaveTypeNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave type not found",
		http.StatusNotFound,
	)
	ErrInsufficientBalance = apperror.New(
		apperror.CodeInsufficientBalance,
		"insufficient leave balance",
		http.StatusBadRequest,
	)
	ErrConflictingPeriod = apperror.New(
		apperror.CodeConflictingPeriod,
		"leave already exists in overlapping period",
		http.StatusBadRequest,
	)
	ErrForbidden = apperror.New(
		apperror.CodeForbidden,
		"you are not allowed to decide this leave request",
		http.StatusForbidden,
	)
	ErrViewForbidden = apperror.New(
		apperror.CodeForbidden,
		"you are not allowed to view this leave request",
		http.StatusForbidden,
	)
	ErrAlreadyDecided = apperror.New(
		apperror.CodeAlreadyDecided,
		"leave request has already been decided",
		http.StatusBadRequest,
	)
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave not found",
		http.StatusNotFound,
	)
)

// InsufficientBalance returns ErrInsufficientBalance carrying the numbers the
// caller needs for display. The result still matches ErrInsufficientBalance.
func InsufficientBalance(currentBalance, requestedDays int) *apperror.AppError {
	return ErrInsufficientBalance.WithDetails(map[string]int{
		"current_balance": currentBalance,
		"requested_days":  requestedDays,
	})
}
