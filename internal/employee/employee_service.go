package employee

import (
	"context"
	"strings"

	employeeerrors "go-leave/internal/employee/errors"
	"go-leave/internal/shared/contextutil"

	"go.uber.org/zap"
)

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	GetByID(ctx context.Context, id string) (EmployeeResponse, error)
	GetSubordinates(ctx context.Context, superiorID string) ([]SubordinateResponse, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		repo:   repo,
		logger: l,
	}
}

func (s *service) GetByID(ctx context.Context, id string) (EmployeeResponse, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return EmployeeResponse{}, employeeerrors.ErrNoEmployeeProfile
	}

	s.logger.Debug("get employee by id requested",
		zap.String("request_id", contextutil.GetRequestID(ctx)),
		zap.String("employee_id", id),
	)

	emp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Warn("get employee by id failed", zap.String("employee_id", id), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	return mapToResponse(*emp), nil
}

func (s *service) GetSubordinates(ctx context.Context, superiorID string) ([]SubordinateResponse, error) {
	if strings.TrimSpace(superiorID) == "" {
		return nil, employeeerrors.ErrNoEmployeeProfile
	}

	emps, err := s.repo.FindSubordinates(ctx, superiorID)
	if err != nil {
		s.logger.Error("get subordinates failed", zap.String("superior_id", superiorID), zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	resp := make([]SubordinateResponse, 0, len(emps))
	for _, e := range emps {
		resp = append(resp, SubordinateResponse{
			ID:       e.ID,
			FullName: e.FullName,
			Balance:  e.Balance,
		})
	}
	return resp, nil
}

func mapToResponse(e Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:       e.ID,
		FullName: e.FullName,
		Email:    e.Email,
		Balance:  e.Balance,
	}
	if e.SuperiorID != nil {
		resp.SuperiorID = *e.SuperiorID
	}
	if e.Superior != nil {
		resp.SuperiorName = e.Superior.FullName
	}
	if e.OrgUnitID != nil {
		resp.OrgUnitID = e.OrgUnitID.String()
	}
	if e.OrgUnit != nil {
		resp.OrgUnitName = e.OrgUnit.Name
	}
	return resp
}
