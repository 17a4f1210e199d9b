package rbac_test

import (
	"errors"
	"log/slog"
	"os"

	"github.com/wiratama/access-management/internal/rbac"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// MockRepository implements rbac.Repository for testing
type MockRepository struct {
	roles           map[int64]*rbac.Role
	permissions     map[int64]*rbac.Permission
	userRoles       map[int64][]int64 // user id -> role ids
	rolePermissions map[int64][]int64 // role id -> permission ids
	users           map[int64]bool
	nextRoleID      int64
	nextPermID      int64
	shouldFail      bool
	failError       error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		roles:           make(map[int64]*rbac.Role),
		permissions:     make(map[int64]*rbac.Permission),
		userRoles:       make(map[int64][]int64),
		rolePermissions: make(map[int64][]int64),
		users:           make(map[int64]bool),
		nextRoleID:      1,
		nextPermID:      1,
	}
}

func (m *MockRepository) RolesByUserID(userID int64) ([]*rbac.Role, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var result []*rbac.Role
	for _, roleID := range m.userRoles[userID] {
		if role, ok := m.roles[roleID]; ok {
			result = append(result, role)
		}
	}
	return result, nil
}

func (m *MockRepository) PermissionsByRoleID(roleID int64) ([]*rbac.Permission, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var result []*rbac.Permission
	for _, permID := range m.rolePermissions[roleID] {
		if perm, ok := m.permissions[permID]; ok {
			result = append(result, perm)
		}
	}
	return result, nil
}

func (m *MockRepository) ListRoles() ([]*rbac.Role, error) {
	var result []*rbac.Role
	for _, role := range m.roles {
		result = append(result, role)
	}
	return result, nil
}

func (m *MockRepository) RoleByID(roleID int64) (*rbac.Role, error) {
	role, ok := m.roles[roleID]
	if !ok {
		return nil, rbac.ErrRoleNotFound
	}
	return role, nil
}

func (m *MockRepository) RoleByCode(roleCode string) (*rbac.Role, error) {
	for _, role := range m.roles {
		if role.RoleCode == roleCode {
			return role, nil
		}
	}
	return nil, rbac.ErrRoleNotFound
}

func (m *MockRepository) CreateRole(role *rbac.Role) error {
	role.ID = m.nextRoleID
	m.nextRoleID++
	m.roles[role.ID] = role
	return nil
}

func (m *MockRepository) UpdateRole(role *rbac.Role) error {
	m.roles[role.ID] = role
	return nil
}

func (m *MockRepository) SoftDeleteRole(roleID int64) error {
	delete(m.roles, roleID)
	return nil
}

func (m *MockRepository) RoleInUse(roleID int64) (bool, error) {
	for _, roleIDs := range m.userRoles {
		for _, id := range roleIDs {
			if id == roleID {
				return true, nil
			}
		}
	}
	return len(m.rolePermissions[roleID]) > 0, nil
}

func (m *MockRepository) ListPermissions() ([]*rbac.Permission, error) {
	var result []*rbac.Permission
	for _, perm := range m.permissions {
		result = append(result, perm)
	}
	return result, nil
}

func (m *MockRepository) PermissionByID(permissionID int64) (*rbac.Permission, error) {
	perm, ok := m.permissions[permissionID]
	if !ok {
		return nil, rbac.ErrPermissionNotFound
	}
	return perm, nil
}

func (m *MockRepository) PermissionByCode(permissionCode string) (*rbac.Permission, error) {
	for _, perm := range m.permissions {
		if perm.PermissionCode == permissionCode {
			return perm, nil
		}
	}
	return nil, rbac.ErrPermissionNotFound
}

func (m *MockRepository) CreatePermission(permission *rbac.Permission) error {
	permission.ID = m.nextPermID
	m.nextPermID++
	m.permissions[permission.ID] = permission
	return nil
}

func (m *MockRepository) UpdatePermission(permission *rbac.Permission) error {
	m.permissions[permission.ID] = permission
	return nil
}

func (m *MockRepository) SoftDeletePermission(permissionID int64) error {
	delete(m.permissions, permissionID)
	return nil
}

func (m *MockRepository) UserExists(userID int64) (bool, error) {
	return m.users[userID], nil
}

func (m *MockRepository) UserRoleExists(userID, roleID int64) (bool, error) {
	for _, id := range m.userRoles[userID] {
		if id == roleID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockRepository) CreateUserRole(userID, roleID int64) error {
	m.userRoles[userID] = append(m.userRoles[userID], roleID)
	return nil
}

func (m *MockRepository) DeleteUserRole(userID, roleID int64) error {
	kept := m.userRoles[userID][:0]
	for _, id := range m.userRoles[userID] {
		if id != roleID {
			kept = append(kept, id)
		}
	}
	m.userRoles[userID] = kept
	return nil
}

var _ = Describe("RBAC Service", func() {
	var (
		repo    *MockRepository
		service *rbac.Service
	)

	addRole := func(code string) *rbac.Role {
		role := &rbac.Role{RoleName: code, RoleCode: code}
		Expect(repo.CreateRole(role)).To(Succeed())
		return role
	}

	addPermission := func(code string) *rbac.Permission {
		perm := &rbac.Permission{PermissionName: code, PermissionCode: code}
		Expect(repo.CreatePermission(perm)).To(Succeed())
		return perm
	}

	BeforeEach(func() {
		repo = NewMockRepository()
		lg := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = rbac.NewService(repo, lg)
	})

	Describe("GrantsOf", func() {
		It("should return empty grants for a user with no assignments", func() {
			roleCodes, permissionCodes, err := service.GrantsOf(42)
			Expect(err).NotTo(HaveOccurred())
			Expect(roleCodes).To(BeEmpty())
			Expect(permissionCodes).To(BeEmpty())
		})

		It("should union permissions across roles without duplicates", func() {
			admin := addRole("admin")
			auditor := addRole("auditor")
			view := addPermission("user:view")
			auditView := addPermission("audit:view")

			repo.users[42] = true
			repo.userRoles[42] = []int64{admin.ID, auditor.ID}
			repo.rolePermissions[admin.ID] = []int64{view.ID, auditView.ID}
			repo.rolePermissions[auditor.ID] = []int64{auditView.ID}

			roleCodes, permissionCodes, err := service.GrantsOf(42)
			Expect(err).NotTo(HaveOccurred())
			Expect(roleCodes).To(Equal([]string{"admin", "auditor"}))
			Expect(permissionCodes).To(Equal([]string{"user:view", "audit:view"}))
		})

		It("should propagate repository failures", func() {
			repo.shouldFail = true
			repo.failError = errors.New("database error")
			_, _, err := service.GrantsOf(42)
			Expect(err).To(MatchError(repo.failError))
		})
	})

	Describe("PermissionCodesOf", func() {
		It("should keep first-seen resolution order", func() {
			first := addRole("first")
			second := addRole("second")
			a := addPermission("a:view")
			b := addPermission("b:view")

			repo.userRoles[7] = []int64{first.ID, second.ID}
			repo.rolePermissions[first.ID] = []int64{b.ID}
			repo.rolePermissions[second.ID] = []int64{a.ID, b.ID}

			codes, err := service.PermissionCodesOf(7)
			Expect(err).NotTo(HaveOccurred())
			Expect(codes).To(Equal([]string{"b:view", "a:view"}))
		})
	})

	Describe("CreateRole", func() {
		It("should reject a duplicate role code", func() {
			addRole("admin")
			err := service.CreateRole(&rbac.Role{RoleName: "Other", RoleCode: "admin"})
			Expect(err).To(MatchError(rbac.ErrRoleCodeTaken))
		})

		It("should create a role with a fresh code", func() {
			role := &rbac.Role{RoleName: "Auditor", RoleCode: "auditor"}
			Expect(service.CreateRole(role)).To(Succeed())
			Expect(role.ID).To(BeNumerically(">", 0))
		})
	})

	Describe("UpdateRole", func() {
		It("should allow updates that keep the code", func() {
			role := addRole("admin")
			role.RoleName = "Administrator"
			Expect(service.UpdateRole(role)).To(Succeed())
		})

		It("should reject renaming onto a taken code", func() {
			addRole("admin")
			role := addRole("auditor")
			updated := *role
			updated.RoleCode = "admin"
			Expect(service.UpdateRole(&updated)).To(MatchError(rbac.ErrRoleCodeTaken))
		})
	})

	Describe("DeleteRole", func() {
		It("should block deletion while users hold the role", func() {
			role := addRole("admin")
			repo.userRoles[42] = []int64{role.ID}
			Expect(service.DeleteRole(role.ID)).To(MatchError(rbac.ErrRoleInUse))
		})

		It("should block deletion while the role carries permissions", func() {
			role := addRole("admin")
			perm := addPermission("user:view")
			repo.rolePermissions[role.ID] = []int64{perm.ID}
			Expect(service.DeleteRole(role.ID)).To(MatchError(rbac.ErrRoleInUse))
		})

		It("should delete an unreferenced role", func() {
			role := addRole("orphan")
			Expect(service.DeleteRole(role.ID)).To(Succeed())
			_, err := service.GetRole(role.ID)
			Expect(err).To(MatchError(rbac.ErrRoleNotFound))
		})

		It("should report an unknown role", func() {
			Expect(service.DeleteRole(999)).To(MatchError(rbac.ErrRoleNotFound))
		})
	})

	Describe("CreatePermission", func() {
		It("should reject a duplicate permission code", func() {
			addPermission("user:view")
			err := service.CreatePermission(&rbac.Permission{PermissionName: "View", PermissionCode: "user:view"})
			Expect(err).To(MatchError(rbac.ErrPermCodeTaken))
		})
	})

	Describe("AssignRole", func() {
		var role *rbac.Role

		BeforeEach(func() {
			role = addRole("admin")
			repo.users[42] = true
		})

		It("should assign a role once", func() {
			Expect(service.AssignRole(42, role.ID)).To(Succeed())
			held, err := repo.UserRoleExists(42, role.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(held).To(BeTrue())
		})

		It("should be idempotent for an already-held role", func() {
			Expect(service.AssignRole(42, role.ID)).To(Succeed())
			Expect(service.AssignRole(42, role.ID)).To(Succeed())
			Expect(repo.userRoles[42]).To(HaveLen(1))
		})

		It("should require the user to exist", func() {
			Expect(service.AssignRole(99, role.ID)).To(MatchError(rbac.ErrUserNotFound))
		})

		It("should require the role to exist", func() {
			Expect(service.AssignRole(42, 999)).To(MatchError(rbac.ErrRoleNotFound))
		})
	})

	Describe("RemoveRole", func() {
		It("should remove a held role", func() {
			role := addRole("admin")
			repo.users[42] = true
			Expect(service.AssignRole(42, role.ID)).To(Succeed())
			Expect(service.RemoveRole(42, role.ID)).To(Succeed())
			Expect(repo.userRoles[42]).To(BeEmpty())
		})

		It("should report a missing assignment", func() {
			role := addRole("admin")
			Expect(service.RemoveRole(42, role.ID)).To(MatchError(rbac.ErrAssignmentNotFound))
		})
	})
})
