package leave

import (
	"errors"

	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/ledger"
	"go-leave/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgExclusionViolation = "23P01"
	pgCheckViolation     = "23514"

	balanceCheckConstraint = "employees_balance_check"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var insufficient *ledger.InsufficientBalanceError
	if errors.As(err, &insufficient) {
		return leaveerrors.InsufficientBalance(insufficient.Available, insufficient.Requested)
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return leaveerrors.ErrLeaveNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgExclusionViolation:
			return wrapSentinel(pgErr, leaveerrors.ErrConflictingPeriod)
		case pgErr.Code == pgCheckViolation && pgErr.ConstraintName == balanceCheckConstraint:
			return wrapSentinel(pgErr, leaveerrors.ErrInsufficientBalance)
		}
	}

	return err
}

// wrapSentinel keeps the database error underneath a domain sentinel.
func wrapSentinel(err error, sentinel *apperror.AppError) error {
	return apperror.Wrap(err, sentinel.Code, sentinel.Message, sentinel.HTTPStatus)
}
