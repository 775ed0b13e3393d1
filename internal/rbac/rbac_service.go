package rbac

import (
	"sync"

	"go-leave/internal/domain"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

// Service answers the coarse question "may this role reach this endpoint".
// Whether a given actor may decide a given request is answered by authz.
//
//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	LoadPolicy() error
	Enforce(req domain.EnforceRequest) (bool, error)
}

type service struct {
	enforcer *casbin.Enforcer
	mu       sync.RWMutex
	loaded   bool
	logger   *zap.Logger
}

func NewService(enforcer *casbin.Enforcer, logger ...*zap.Logger) Service {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}

	return &service{
		enforcer: enforcer,
		logger:   l,
	}
}

func (s *service) LoadPolicy() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadPolicyUnlocked()
}

func (s *service) loadPolicyUnlocked() error {
	s.enforcer.ClearPolicy()

	for _, g := range roleHierarchy {
		if _, err := s.enforcer.AddGroupingPolicy(g[0].String(), g[1].String()); err != nil {
			return err
		}
	}

	for _, p := range staticPermissions {
		if _, err := s.enforcer.AddPolicy(p.Role.String(), p.Resource, p.Action); err != nil {
			return err
		}
	}

	s.loaded = true
	s.logger.Info("rbac policy loaded",
		zap.Int("groupings", len(roleHierarchy)),
		zap.Int("permissions", len(staticPermissions)),
	)
	return nil
}

func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	if _, err := domain.ParseRole(req.Role.String()); err != nil {
		return false, nil
	}

	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()

	if !loaded {
		s.mu.Lock()
		if !s.loaded {
			if err := s.loadPolicyUnlocked(); err != nil {
				s.mu.Unlock()
				return false, err
			}
		}
		s.mu.Unlock()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	allowed, err := s.enforcer.Enforce(req.Role.String(), req.Resource, req.Action)
	if err != nil {
		s.logger.Error("rbac enforce failed",
			zap.String("role", req.Role.String()),
			zap.String("resource", req.Resource),
			zap.String("action", req.Action),
			zap.Error(err),
		)
		return false, err
	}

	s.logger.Debug("rbac enforce result",
		zap.String("role", req.Role.String()),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
		zap.Bool("allowed", allowed),
	)

	return allowed, nil
}
