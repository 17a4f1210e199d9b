package rbac

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/wiratama/access-management/internal"
	"github.com/wiratama/access-management/internal/transport"
	"github.com/wiratama/access-management/pkg/logger"
)

// ServiceAPI is the management surface the HTTP handlers depend on.
type ServiceAPI interface {
	ListRoles() ([]*Role, error)
	GetRole(roleID int64) (*Role, error)
	CreateRole(role *Role) error
	UpdateRole(role *Role) error
	DeleteRole(roleID int64) error

	ListPermissions() ([]*Permission, error)
	GetPermission(permissionID int64) (*Permission, error)
	CreatePermission(permission *Permission) error
	UpdatePermission(permission *Permission) error
	DeletePermission(permissionID int64) error

	RolesOf(userID int64) ([]*Role, error)
	PermissionsOfRole(roleID int64) ([]*Permission, error)
	AssignRole(userID, roleID int64) error
	RemoveRole(userID, roleID int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

func (h *Handler) idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// ---- roles ----

func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.Service.ListRoles()
	if err != nil {
		h.Logger.Error("failed to list roles", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.WriteJSON(w, http.StatusOK, roles)
}

func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(r)
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "invalid role id")
		return
	}

	role, err := h.Service.GetRole(id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, role)
}

func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var dto RoleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	role := &Role{
		RoleName:    dto.RoleName,
		RoleCode:    dto.RoleCode,
		Description: dto.Description,
	}
	if err := h.Service.CreateRole(role); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, role)
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(r)
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "invalid role id")
		return
	}

	var dto RoleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	role := &Role{
		ID:          id,
		RoleName:    dto.RoleName,
		RoleCode:    dto.RoleCode,
		Description: dto.Description,
	}
	if err := h.Service.UpdateRole(role); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, role)
}

func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(r)
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "invalid role id")
		return
	}

	if err := h.Service.DeleteRole(id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetRolePermissions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(r)
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "invalid role id")
		return
	}

	perms, err := h.Service.PermissionsOfRole(id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, perms)
}

// ---- permissions ----

func (h *Handler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.Service.ListPermissions()
	if err != nil {
		h.Logger.Error("failed to list permissions", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.WriteJSON(w, http.StatusOK, perms)
}

func (h *Handler) GetPermission(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(r)
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "invalid permission id")
		return
	}

	perm, err := h.Service.GetPermission(id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, perm)
}

func (h *Handler) CreatePermission(w http.ResponseWriter, r *http.Request) {
	var dto PermissionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	perm := &Permission{
		PermissionName: dto.PermissionName,
		PermissionCode: dto.PermissionCode,
		ResourceType:   dto.ResourceType,
		ResourceURL:    dto.ResourceURL,
		ParentID:       dto.ParentID,
	}
	if err := h.Service.CreatePermission(perm); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, perm)
}

func (h *Handler) UpdatePermission(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(r)
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "invalid permission id")
		return
	}

	var dto PermissionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	perm := &Permission{
		ID:             id,
		PermissionName: dto.PermissionName,
		PermissionCode: dto.PermissionCode,
		ResourceType:   dto.ResourceType,
		ResourceURL:    dto.ResourceURL,
		ParentID:       dto.ParentID,
	}
	if err := h.Service.UpdatePermission(perm); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, perm)
}

func (h *Handler) DeletePermission(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(r)
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "invalid permission id")
		return
	}

	if err := h.Service.DeletePermission(id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- user-role assignment ----

func (h *Handler) AssignRole(w http.ResponseWriter, r *http.Request) {
	var dto AssignmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Service.AssignRole(dto.UserID, dto.RoleID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "assigned"})
}

func (h *Handler) RemoveRole(w http.ResponseWriter, r *http.Request) {
	var dto AssignmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Service.RemoveRole(dto.UserID, dto.RoleID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetUserRoles lists the roles currently assigned to a user.
func (h *Handler) GetUserRoles(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(r)
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	roles, err := h.Service.RolesOf(id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, roles)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch err {
	case ErrRoleNotFound:
		h.WriteAppError(w, internal.ErrRoleNotFound)
	case ErrRoleCodeTaken:
		h.WriteAppError(w, internal.ErrRoleAlreadyExists)
	case ErrRoleInUse:
		h.WriteAppError(w, internal.ErrRoleInUse)
	case ErrPermissionNotFound:
		h.WriteAppError(w, internal.ErrPermissionNotFound)
	case ErrPermCodeTaken:
		h.WriteAppError(w, internal.ErrPermissionExists)
	case ErrAssignmentNotFound:
		h.WriteAppError(w, internal.ErrAssignmentNotFound)
	case ErrUserNotFound:
		h.WriteAppError(w, internal.ErrUserNotFound)
	default:
		h.Logger.Error("rbac service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}
