package employee

import (
	"context"
	"database/sql"

	"go-leave/internal/shared/dbtx"

	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindByID(ctx context.Context, id string) (*Employee, error)
	// FindSuperiorID loads only the superior column, for hot paths that hold row locks.
	FindSuperiorID(ctx context.Context, id string) (*string, error)
	FindByIDs(ctx context.Context, ids []string) ([]Employee, error)
	FindSubordinates(ctx context.Context, superiorID string) ([]Employee, error)
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

func (r *repository) FindByID(ctx context.Context, id string) (*Employee, error) {
	var emp Employee
	err := r.db.WithContext(ctx).
		Preload("Superior").
		Preload("OrgUnit").
		Take(&emp, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

func (r *repository) FindSuperiorID(ctx context.Context, id string) (*string, error) {
	var row struct {
		SuperiorID *string
	}
	err := r.db.WithContext(ctx).
		Model(&Employee{}).
		Select("superior_id").
		Where("id = ?", id).
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return row.SuperiorID, nil
}

func (r *repository) FindByIDs(ctx context.Context, ids []string) ([]Employee, error) {
	var emps []Employee
	if len(ids) == 0 {
		return emps, nil
	}
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&emps).Error
	return emps, err
}

func (r *repository) FindSubordinates(ctx context.Context, superiorID string) ([]Employee, error) {
	var emps []Employee
	err := r.db.WithContext(ctx).
		Where("superior_id = ?", superiorID).
		Order("full_name ASC").
		Find(&emps).Error
	return emps, err
}
