package ledger

import (
	"context"
	"database/sql"
	"errors"

	"go-leave/internal/shared/dbtx"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the per-employee leave balance store. Balances are whole days
// and never go below zero.
//
//go:generate mockgen -source=ledger_repo.go -destination=mock/ledger_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Balance(ctx context.Context, employeeID string, forUpdate bool) (int, error)
	CheckSufficient(ctx context.Context, employeeID string, days int) error
	Debit(ctx context.Context, employeeID string, days int) (int, error)
	Credit(ctx context.Context, employeeID string, days int) (int, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: dbtx.Bind(r.db, tx)}
}

func (r *repository) Balance(ctx context.Context, employeeID string, forUpdate bool) (int, error) {
	q := r.db.WithContext(ctx).Select("id", "balance").Where("id = ?", employeeID)
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var acc Account
	if err := q.Take(&acc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrAccountNotFound
		}
		return 0, err
	}
	return acc.Balance, nil
}

func (r *repository) CheckSufficient(ctx context.Context, employeeID string, days int) error {
	if days < 0 {
		return ErrNegativeAmount
	}

	balance, err := r.Balance(ctx, employeeID, false)
	if err != nil {
		return err
	}
	if balance < days {
		return &InsufficientBalanceError{EmployeeID: employeeID, Available: balance, Requested: days}
	}
	return nil
}

// Debit subtracts days and returns the new balance. The update is conditional
// on the balance covering the amount, so a concurrent debit can never drive it
// negative.
func (r *repository) Debit(ctx context.Context, employeeID string, days int) (int, error) {
	if days < 0 {
		return 0, ErrNegativeAmount
	}

	res := r.db.WithContext(ctx).
		Model(&Account{}).
		Where("id = ? AND balance >= ?", employeeID, days).
		UpdateColumn("balance", gorm.Expr("balance - ?", days))
	if res.Error != nil {
		return 0, res.Error
	}

	balance, err := r.Balance(ctx, employeeID, false)
	if err != nil {
		return 0, err
	}
	if res.RowsAffected == 0 {
		return 0, &InsufficientBalanceError{EmployeeID: employeeID, Available: balance, Requested: days}
	}
	return balance, nil
}

func (r *repository) Credit(ctx context.Context, employeeID string, days int) (int, error) {
	if days < 0 {
		return 0, ErrNegativeAmount
	}

	res := r.db.WithContext(ctx).
		Model(&Account{}).
		Where("id = ?", employeeID).
		UpdateColumn("balance", gorm.Expr("balance + ?", days))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrAccountNotFound
	}

	return r.Balance(ctx, employeeID, false)
}
