package user

import (
	"context"
	"errors"

	"go-leave/internal/authz"
	"go-leave/internal/domain"
	"go-leave/internal/shared/contextutil"
	usererrors "go-leave/internal/user/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=user_service.go -destination=mock/user_service_mock.go -package=mock
type Service interface {
	GetByID(ctx context.Context, id string) (UserResponse, error)
	// GetActor resolves the acting user's role and employee link from the
	// users table. Token claims are not trusted for this.
	GetActor(ctx context.Context, userID string) (authz.Actor, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("user.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) GetByID(ctx context.Context, id string) (UserResponse, error) {
	u, err := s.find(ctx, id)
	if err != nil {
		return UserResponse{}, err
	}
	return mapToResponse(*u), nil
}

func (s *service) GetActor(ctx context.Context, userID string) (authz.Actor, error) {
	u, err := s.find(ctx, userID)
	if err != nil {
		return authz.Actor{}, err
	}
	if !u.IsActive {
		return authz.Actor{}, usererrors.ErrUserInactive
	}

	role, err := domain.ParseRole(u.Role.String())
	if err != nil {
		contextutil.GetLogger(ctx, s.logger).Error("user has unknown role",
			zap.String("user_id", userID),
			zap.String("role", u.Role.String()),
		)
		return authz.Actor{}, err
	}

	actor := authz.Actor{UserID: u.ID.String(), Role: role}
	if u.EmployeeID != nil {
		actor.EmployeeID = *u.EmployeeID
	}
	return actor, nil
}

func (s *service) find(ctx context.Context, id string) (*User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, usererrors.ErrInvalidUserID
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usererrors.ErrUserNotFound
		}
		contextutil.GetLogger(ctx, s.logger).Error("find user failed", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}
	return u, nil
}

func mapToResponse(u User) UserResponse {
	resp := UserResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		Role:      u.Role.String(),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if u.EmployeeID != nil {
		resp.EmployeeID = *u.EmployeeID
	}
	if u.Employee != nil {
		resp.FullName = u.Employee.FullName
	}
	return resp
}
