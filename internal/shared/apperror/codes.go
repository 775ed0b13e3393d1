package apperror

const (
	// Client errors (4xx)
	CodeInvalidInput = "INVALID_INPUT"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeInvalidState = "INVALID_STATE"

	// Leave lifecycle outcomes
	CodeInvalidRange        = "INVALID_RANGE"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeConflictingPeriod   = "CONFLICTING_PERIOD"
	CodeAlreadyDecided      = "ALREADY_DECIDED"

	// Server errors (5xx)
	CodeInternalError      = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)
