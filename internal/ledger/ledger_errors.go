package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")
	ErrAccountNotFound     = errors.New("ledger: account not found")
	ErrNegativeAmount      = errors.New("ledger: amount must not be negative")
)

// InsufficientBalanceError carries the numbers behind a refused debit.
// It matches ErrInsufficientBalance with errors.Is.
type InsufficientBalanceError struct {
	EmployeeID string
	Available  int
	Requested  int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("ledger: employee %s has %d day(s), %d requested", e.EmployeeID, e.Available, e.Requested)
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}
