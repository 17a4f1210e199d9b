package postgres

import (
	"time"

	"github.com/wiratama/access-management/internal/rbac"
	"gorm.io/gorm"
)

type roleRow struct {
	ID          int64     `gorm:"primaryKey"`
	RoleName    string    `gorm:"column:role_name;not null"`
	RoleCode    string    `gorm:"column:role_code;uniqueIndex;not null"`
	Description string    `gorm:"column:description"`
	Deleted     bool      `gorm:"column:deleted;default:false"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (roleRow) TableName() string { return "roles" }

type permissionRow struct {
	ID             int64     `gorm:"primaryKey"`
	PermissionName string    `gorm:"column:permission_name;not null"`
	PermissionCode string    `gorm:"column:permission_code;uniqueIndex;not null"`
	ResourceType   string    `gorm:"column:resource_type"`
	ResourceURL    string    `gorm:"column:resource_url"`
	ParentID       *int64    `gorm:"column:parent_id"`
	Deleted        bool      `gorm:"column:deleted;default:false"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (permissionRow) TableName() string { return "permissions" }

type userRoleRow struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"column:user_id;uniqueIndex:idx_user_role;not null"`
	RoleID    int64     `gorm:"column:role_id;uniqueIndex:idx_user_role;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (userRoleRow) TableName() string { return "user_roles" }

type rolePermissionRow struct {
	ID           int64     `gorm:"primaryKey"`
	RoleID       int64     `gorm:"column:role_id;uniqueIndex:idx_role_permission;not null"`
	PermissionID int64     `gorm:"column:permission_id;uniqueIndex:idx_role_permission;not null"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (rolePermissionRow) TableName() string { return "role_permissions" }

func (r roleRow) toDomain() *rbac.Role {
	return &rbac.Role{
		ID:          r.ID,
		RoleName:    r.RoleName,
		RoleCode:    r.RoleCode,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (p permissionRow) toDomain() *rbac.Permission {
	return &rbac.Permission{
		ID:             p.ID,
		PermissionName: p.PermissionName,
		PermissionCode: p.PermissionCode,
		ResourceType:   p.ResourceType,
		ResourceURL:    p.ResourceURL,
		ParentID:       p.ParentID,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ---- grant resolution reads ----

func (r *Repository) RolesByUserID(userID int64) ([]*rbac.Role, error) {
	var rows []roleRow
	err := r.db.Table("roles").
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ? AND roles.deleted = ?", userID, false).
		Order("roles.id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	roles := make([]*rbac.Role, 0, len(rows))
	for _, row := range rows {
		roles = append(roles, row.toDomain())
	}
	return roles, nil
}

func (r *Repository) PermissionsByRoleID(roleID int64) ([]*rbac.Permission, error) {
	var rows []permissionRow
	err := r.db.Table("permissions").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ? AND permissions.deleted = ?", roleID, false).
		Order("permissions.id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	perms := make([]*rbac.Permission, 0, len(rows))
	for _, row := range rows {
		perms = append(perms, row.toDomain())
	}
	return perms, nil
}

// ---- role management ----

func (r *Repository) ListRoles() ([]*rbac.Role, error) {
	var rows []roleRow
	err := r.db.Where("deleted = ?", false).Order("id ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	roles := make([]*rbac.Role, 0, len(rows))
	for _, row := range rows {
		roles = append(roles, row.toDomain())
	}
	return roles, nil
}

func (r *Repository) RoleByID(roleID int64) (*rbac.Role, error) {
	var row roleRow
	err := r.db.Where("id = ? AND deleted = ?", roleID, false).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, rbac.ErrRoleNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *Repository) RoleByCode(roleCode string) (*rbac.Role, error) {
	var row roleRow
	err := r.db.Where("role_code = ? AND deleted = ?", roleCode, false).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, rbac.ErrRoleNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *Repository) CreateRole(role *rbac.Role) error {
	row := roleRow{
		RoleName:    role.RoleName,
		RoleCode:    role.RoleCode,
		Description: role.Description,
	}
	if err := r.db.Create(&row).Error; err != nil {
		return err
	}
	role.ID = row.ID
	role.CreatedAt = row.CreatedAt
	role.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *Repository) UpdateRole(role *rbac.Role) error {
	return r.db.Model(&roleRow{}).
		Where("id = ? AND deleted = ?", role.ID, false).
		Updates(map[string]interface{}{
			"role_name":   role.RoleName,
			"role_code":   role.RoleCode,
			"description": role.Description,
		}).Error
}

func (r *Repository) SoftDeleteRole(roleID int64) error {
	return r.db.Model(&roleRow{}).Where("id = ?", roleID).Update("deleted", true).Error
}

// RoleInUse reports whether any user assignment or permission link still
// references the role.
func (r *Repository) RoleInUse(roleID int64) (bool, error) {
	var count int64
	if err := r.db.Model(&userRoleRow{}).Where("role_id = ?", roleID).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}
	if err := r.db.Model(&rolePermissionRow{}).Where("role_id = ?", roleID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ---- permission management ----

func (r *Repository) ListPermissions() ([]*rbac.Permission, error) {
	var rows []permissionRow
	err := r.db.Where("deleted = ?", false).Order("id ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	perms := make([]*rbac.Permission, 0, len(rows))
	for _, row := range rows {
		perms = append(perms, row.toDomain())
	}
	return perms, nil
}

func (r *Repository) PermissionByID(permissionID int64) (*rbac.Permission, error) {
	var row permissionRow
	err := r.db.Where("id = ? AND deleted = ?", permissionID, false).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, rbac.ErrPermissionNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *Repository) PermissionByCode(permissionCode string) (*rbac.Permission, error) {
	var row permissionRow
	err := r.db.Where("permission_code = ? AND deleted = ?", permissionCode, false).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, rbac.ErrPermissionNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *Repository) CreatePermission(permission *rbac.Permission) error {
	row := permissionRow{
		PermissionName: permission.PermissionName,
		PermissionCode: permission.PermissionCode,
		ResourceType:   permission.ResourceType,
		ResourceURL:    permission.ResourceURL,
		ParentID:       permission.ParentID,
	}
	if err := r.db.Create(&row).Error; err != nil {
		return err
	}
	permission.ID = row.ID
	permission.CreatedAt = row.CreatedAt
	permission.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *Repository) UpdatePermission(permission *rbac.Permission) error {
	return r.db.Model(&permissionRow{}).
		Where("id = ? AND deleted = ?", permission.ID, false).
		Updates(map[string]interface{}{
			"permission_name": permission.PermissionName,
			"permission_code": permission.PermissionCode,
			"resource_type":   permission.ResourceType,
			"resource_url":    permission.ResourceURL,
			"parent_id":       permission.ParentID,
		}).Error
}

func (r *Repository) SoftDeletePermission(permissionID int64) error {
	return r.db.Model(&permissionRow{}).Where("id = ?", permissionID).Update("deleted", true).Error
}

// ---- user-role assignment ----

func (r *Repository) UserExists(userID int64) (bool, error) {
	var count int64
	err := r.db.Table("users").Where("id = ? AND deleted = ?", userID, false).Count(&count).Error
	return count > 0, err
}

func (r *Repository) UserRoleExists(userID, roleID int64) (bool, error) {
	var count int64
	err := r.db.Model(&userRoleRow{}).Where("user_id = ? AND role_id = ?", userID, roleID).Count(&count).Error
	return count > 0, err
}

func (r *Repository) CreateUserRole(userID, roleID int64) error {
	return r.db.Create(&userRoleRow{UserID: userID, RoleID: roleID}).Error
}

func (r *Repository) DeleteUserRole(userID, roleID int64) error {
	return r.db.Where("user_id = ? AND role_id = ?", userID, roleID).Delete(&userRoleRow{}).Error
}

// ---- role-permission links (used by seeding and admin bootstrap) ----

func (r *Repository) CreateRolePermission(roleID, permissionID int64) error {
	var count int64
	if err := r.db.Model(&rolePermissionRow{}).
		Where("role_id = ? AND permission_id = ?", roleID, permissionID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return r.db.Create(&rolePermissionRow{RoleID: roleID, PermissionID: permissionID}).Error
}

func (r *Repository) DeleteRolePermission(roleID, permissionID int64) error {
	return r.db.Where("role_id = ? AND permission_id = ?", roleID, permissionID).Delete(&rolePermissionRow{}).Error
}
