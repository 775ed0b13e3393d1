package audit

import (
	"context"
	"database/sql"
	"errors"

	"go-leave/internal/shared/dbtx"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrEmptyActor = errors.New("audit: actor is required")

// Repository appends to the audit trail. There is no update or delete; the
// table also rejects them with a trigger.
//
//go:generate mockgen -source=audit_repo.go -destination=mock/audit_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Record(ctx context.Context, entry *Entry) error
	FindByRequest(ctx context.Context, requestID uuid.UUID) ([]Entry, error)
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

func (r *repository) Record(ctx context.Context, entry *Entry) error {
	if entry.ActorID == "" {
		return ErrEmptyActor
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) FindByRequest(ctx context.Context, requestID uuid.UUID) ([]Entry, error) {
	var entries []Entry
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}
