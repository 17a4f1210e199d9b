package rbac

import (
	"log/slog"
)

// Repository is the persistence collaborator behind grant resolution and
// role/permission management. Every read excludes soft-deleted rows.
type Repository interface {
	RolesByUserID(userID int64) ([]*Role, error)
	PermissionsByRoleID(roleID int64) ([]*Permission, error)

	ListRoles() ([]*Role, error)
	RoleByID(roleID int64) (*Role, error)
	RoleByCode(roleCode string) (*Role, error)
	CreateRole(role *Role) error
	UpdateRole(role *Role) error
	SoftDeleteRole(roleID int64) error
	RoleInUse(roleID int64) (bool, error)

	ListPermissions() ([]*Permission, error)
	PermissionByID(permissionID int64) (*Permission, error)
	PermissionByCode(permissionCode string) (*Permission, error)
	CreatePermission(permission *Permission) error
	UpdatePermission(permission *Permission) error
	SoftDeletePermission(permissionID int64) error

	UserExists(userID int64) (bool, error)
	UserRoleExists(userID, roleID int64) (bool, error)
	CreateUserRole(userID, roleID int64) error
	DeleteUserRole(userID, roleID int64) error
}

// Service resolves effective grants and manages the role/permission model.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// ---- grant resolution ----

// RolesOf returns the caller's non-deleted roles in stable (role id) order.
// A user with no assignments gets an empty slice, not an error.
func (s *Service) RolesOf(userID int64) ([]*Role, error) {
	return s.repo.RolesByUserID(userID)
}

// PermissionsOfRole returns the non-deleted permissions linked to a role.
func (s *Service) PermissionsOfRole(roleID int64) ([]*Permission, error) {
	return s.repo.PermissionsByRoleID(roleID)
}

// PermissionsOf computes the union of permissions over all the user's
// roles. A permission reachable via two roles counts once; order is the
// first-seen resolution order.
func (s *Service) PermissionsOf(userID int64) ([]*Permission, error) {
	roles, err := s.repo.RolesByUserID(userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]struct{})
	var union []*Permission
	for _, role := range roles {
		perms, err := s.repo.PermissionsByRoleID(role.ID)
		if err != nil {
			return nil, err
		}
		for _, p := range perms {
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			union = append(union, p)
		}
	}
	return union, nil
}

// PermissionCodesOf returns just the codes, in resolution order. Used for
// the token snapshot at login.
func (s *Service) PermissionCodesOf(userID int64) ([]string, error) {
	perms, err := s.PermissionsOf(userID)
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(perms))
	for _, p := range perms {
		codes = append(codes, p.PermissionCode)
	}
	return codes, nil
}

// GrantsOf resolves both role codes and permission codes for the request
// gate. Always hits storage; the token's embedded snapshot is never used.
func (s *Service) GrantsOf(userID int64) (roleCodes, permissionCodes []string, err error) {
	roles, err := s.repo.RolesByUserID(userID)
	if err != nil {
		return nil, nil, err
	}
	roleCodes = make([]string, 0, len(roles))
	seen := make(map[int64]struct{})
	for _, role := range roles {
		roleCodes = append(roleCodes, role.RoleCode)
		perms, err := s.repo.PermissionsByRoleID(role.ID)
		if err != nil {
			return nil, nil, err
		}
		for _, p := range perms {
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			permissionCodes = append(permissionCodes, p.PermissionCode)
		}
	}
	return roleCodes, permissionCodes, nil
}

// ---- role management ----

func (s *Service) ListRoles() ([]*Role, error) {
	return s.repo.ListRoles()
}

func (s *Service) GetRole(roleID int64) (*Role, error) {
	return s.repo.RoleByID(roleID)
}

func (s *Service) CreateRole(role *Role) error {
	if existing, err := s.repo.RoleByCode(role.RoleCode); err == nil && existing != nil {
		return ErrRoleCodeTaken
	}
	return s.repo.CreateRole(role)
}

func (s *Service) UpdateRole(role *Role) error {
	current, err := s.repo.RoleByID(role.ID)
	if err != nil {
		return err
	}
	if current.RoleCode != role.RoleCode {
		if existing, err := s.repo.RoleByCode(role.RoleCode); err == nil && existing != nil {
			return ErrRoleCodeTaken
		}
	}
	return s.repo.UpdateRole(role)
}

// DeleteRole soft-deletes a role. Deletion is blocked while the role is
// referenced by any user assignment or permission link.
func (s *Service) DeleteRole(roleID int64) error {
	if _, err := s.repo.RoleByID(roleID); err != nil {
		return err
	}
	inUse, err := s.repo.RoleInUse(roleID)
	if err != nil {
		return err
	}
	if inUse {
		return ErrRoleInUse
	}
	return s.repo.SoftDeleteRole(roleID)
}

// ---- permission management ----

func (s *Service) ListPermissions() ([]*Permission, error) {
	return s.repo.ListPermissions()
}

func (s *Service) GetPermission(permissionID int64) (*Permission, error) {
	return s.repo.PermissionByID(permissionID)
}

func (s *Service) CreatePermission(permission *Permission) error {
	if existing, err := s.repo.PermissionByCode(permission.PermissionCode); err == nil && existing != nil {
		return ErrPermCodeTaken
	}
	return s.repo.CreatePermission(permission)
}

func (s *Service) UpdatePermission(permission *Permission) error {
	current, err := s.repo.PermissionByID(permission.ID)
	if err != nil {
		return err
	}
	if current.PermissionCode != permission.PermissionCode {
		if existing, err := s.repo.PermissionByCode(permission.PermissionCode); err == nil && existing != nil {
			return ErrPermCodeTaken
		}
	}
	return s.repo.UpdatePermission(permission)
}

func (s *Service) DeletePermission(permissionID int64) error {
	if _, err := s.repo.PermissionByID(permissionID); err != nil {
		return err
	}
	return s.repo.SoftDeletePermission(permissionID)
}

// ---- user-role assignment ----

// AssignRole grants a role to a user. Both sides must exist; assigning an
// already-held role is a no-op success.
func (s *Service) AssignRole(userID, roleID int64) error {
	exists, err := s.repo.UserExists(userID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrUserNotFound
	}
	if _, err := s.repo.RoleByID(roleID); err != nil {
		return err
	}

	held, err := s.repo.UserRoleExists(userID, roleID)
	if err != nil {
		return err
	}
	if held {
		return nil
	}

	if err := s.repo.CreateUserRole(userID, roleID); err != nil {
		return err
	}
	s.logger.Info("role assigned", "user_id", userID, "role_id", roleID)
	return nil
}

// RemoveRole revokes a role from a user.
func (s *Service) RemoveRole(userID, roleID int64) error {
	held, err := s.repo.UserRoleExists(userID, roleID)
	if err != nil {
		return err
	}
	if !held {
		return ErrAssignmentNotFound
	}

	if err := s.repo.DeleteUserRole(userID, roleID); err != nil {
		return err
	}
	s.logger.Info("role removed", "user_id", userID, "role_id", roleID)
	return nil
}
