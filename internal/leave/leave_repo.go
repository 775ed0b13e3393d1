package leave

import (
	"context"
	"database/sql"
	"time"

	"go-leave/internal/shared/dbtx"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DecisionUpdate is the single mutation a pending request ever receives.
type DecisionUpdate struct {
	Status    Status
	TotalDays int
	DecidedBy string
	DecidedAt time.Time
	Comment   *string
}

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *Leave) error
	FindByID(ctx context.Context, id uuid.UUID) (*Leave, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Leave, error)
	FindActiveByEmployee(ctx context.Context, employeeID string) ([]Leave, error)
	FindByEmployee(ctx context.Context, employeeID string) ([]Leave, error)
	FindPending(ctx context.Context, employeeIDs []string) ([]Leave, error)
	UpdateDecision(ctx context.Context, id uuid.UUID, upd DecisionUpdate) (bool, error)
	FindLeaveType(ctx context.Context, id uuid.UUID) (*LeaveType, error)
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

func (r *repository) Create(ctx context.Context, l *Leave) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(l).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Leave, error) {
	var l Leave
	err := r.db.WithContext(ctx).
		Preload("LeaveType").
		Take(&l, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// FindByIDForUpdate locks the request row until the enclosing transaction ends.
func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Leave, error) {
	var l Leave
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Take(&l, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) FindActiveByEmployee(ctx context.Context, employeeID string) ([]Leave, error) {
	var leaves []Leave
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("status IN ?", []Status{StatusPending, StatusApproved}).
		Order("start_date ASC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID string) ([]Leave, error) {
	var leaves []Leave
	err := r.db.WithContext(ctx).
		Preload("LeaveType").
		Where("employee_id = ?", employeeID).
		Order("start_date DESC").
		Find(&leaves).Error
	return leaves, err
}

// FindPending lists pending requests of the given employees. A nil slice
// means every employee.
func (r *repository) FindPending(ctx context.Context, employeeIDs []string) ([]Leave, error) {
	var leaves []Leave
	if employeeIDs != nil && len(employeeIDs) == 0 {
		return leaves, nil
	}

	q := r.db.WithContext(ctx).
		Preload("LeaveType").
		Where("status = ?", StatusPending)
	if employeeIDs != nil {
		q = q.Where("employee_id IN ?", employeeIDs)
	}
	err := q.Order("submitted_at ASC").Find(&leaves).Error
	return leaves, err
}

// UpdateDecision moves a pending request to its final status. It reports
// false when the request was no longer pending.
func (r *repository) UpdateDecision(ctx context.Context, id uuid.UUID, upd DecisionUpdate) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&Leave{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(map[string]any{
			"status":           upd.Status,
			"total_days":       upd.TotalDays,
			"decided_by":       upd.DecidedBy,
			"decided_at":       upd.DecidedAt,
			"decision_comment": upd.Comment,
			"updated_at":       upd.DecidedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) FindLeaveType(ctx context.Context, id uuid.UUID) (*LeaveType, error) {
	var lt LeaveType
	if err := r.db.WithContext(ctx).Take(&lt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &lt, nil
}
