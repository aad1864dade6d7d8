package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/madrasati-app/madrasati-api/internal/models"
)

type roleRepository interface {
	HasRole(ctx context.Context, userID string, role models.UserRole) (bool, error)
	RoleOf(ctx context.Context, userID string) (models.UserRole, error)
}

// RoleService resolves whether a session's user holds a required role.
type RoleService struct {
	repo   roleRepository
	logger *zap.Logger
}

// NewRoleService constructs a RoleService.
func NewRoleService(repo roleRepository, logger *zap.Logger) *RoleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoleService{repo: repo, logger: logger}
}

// HasRole reports whether the user holds the role. A missing assignment row
// is false, not an error, and any query failure is also treated as "not
// authorized" so the gate fails closed.
func (s *RoleService) HasRole(ctx context.Context, userID string, role models.UserRole) bool {
	if userID == "" || role == "" {
		return false
	}
	ok, err := s.repo.HasRole(ctx, userID, role)
	if err != nil {
		s.logger.Warn("role lookup failed, denying access", zap.String("user_id", userID), zap.String("role", string(role)), zap.Error(err))
		return false
	}
	return ok
}

// HasAnyRole reports whether the user holds at least one of the roles.
func (s *RoleService) HasAnyRole(ctx context.Context, userID string, roles ...models.UserRole) bool {
	for _, role := range roles {
		if s.HasRole(ctx, userID, role) {
			return true
		}
	}
	return false
}
