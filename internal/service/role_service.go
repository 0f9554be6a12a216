package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/staffing-service/internal/domain"
	"github.com/spec-kit/staffing-service/internal/repository"
	apperrors "github.com/spec-kit/staffing-service/pkg/util"
)

// RoleService manages named permission bundles. System roles are
// immutable and cannot be deleted.
type RoleService struct {
	roles repository.RoleRepository
	users repository.UserRepository
}

// NewRoleService creates the service.
func NewRoleService(roles repository.RoleRepository, users repository.UserRepository) *RoleService {
	return &RoleService{roles: roles, users: users}
}

// ListRoles returns all roles.
func (s *RoleService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	list, err := s.roles.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// CreateRole creates a custom role with a validated unique name.
func (s *RoleService) CreateRole(ctx context.Context, name string, permissions []string) (*domain.Role, error) {
	if !domain.ValidRoleName(name) {
		return nil, apperrors.NewValidationError("role name must match [a-z_]+", map[string]any{"name": name})
	}
	if _, err := s.roles.GetByName(ctx, name); err == nil {
		return nil, apperrors.NewConflict("role name already exists", map[string]any{"name": name})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}
	role := &domain.Role{Name: name, Permissions: permissions}
	if err := s.roles.Create(ctx, role); err != nil {
		return nil, apperrors.MapError(err)
	}
	return role, nil
}

// UpdateRole replaces a custom role's permission set.
func (s *RoleService) UpdateRole(ctx context.Context, id string, permissions []string) (*domain.Role, error) {
	role, err := s.getRole(ctx, id)
	if err != nil {
		return nil, err
	}
	if role.IsSystem {
		return nil, apperrors.NewConflict("system roles are immutable", map[string]any{"role_id": id})
	}
	role.Permissions = permissions
	if err := s.roles.Update(ctx, role); err != nil {
		return nil, apperrors.MapError(err)
	}
	return role, nil
}

// DeleteRole removes a custom role.
func (s *RoleService) DeleteRole(ctx context.Context, id string) error {
	role, err := s.getRole(ctx, id)
	if err != nil {
		return err
	}
	if role.IsSystem {
		return apperrors.NewConflict("system roles cannot be deleted", map[string]any{"role_id": id})
	}
	if err := s.roles.Delete(ctx, role.ID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// AssignRoleToUser points a user at a role record, superseding the
// legacy enum for permission checks.
func (s *RoleService) AssignRoleToUser(ctx context.Context, userID, roleID string) (*domain.User, error) {
	role, err := s.getRole(ctx, roleID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	user.RoleID = &role.ID
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

func (s *RoleService) getRole(ctx context.Context, id string) (*domain.Role, error) {
	role, err := s.roles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("role", map[string]any{"role_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return role, nil
}
