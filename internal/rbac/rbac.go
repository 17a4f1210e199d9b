package rbac

import (
	"errors"
	"time"
)

// Mode controls how a requirement's permission list combines: ANY admits a
// caller holding at least one listed permission, ALL demands every one.
// Role lists are always ANY regardless of Mode.
type Mode string

const (
	ModeAny Mode = "ANY"
	ModeAll Mode = "ALL"
)

// Requirement is the declared role/permission precondition attached to a
// protected operation at route registration. Immutable at runtime.
type Requirement struct {
	Permissions []string
	Roles       []string
	Mode        Mode
}

// IsEmpty reports whether the requirement declares nothing, which makes the
// operation public beyond token verification.
func (r Requirement) IsEmpty() bool {
	return len(r.Permissions) == 0 && len(r.Roles) == 0
}

// Deny reasons surfaced through verdicts and HTTP responses.
const (
	ReasonMissingRole       = "missing required role"
	ReasonMissingPermission = "missing required permission"
)

// Verdict is the outcome of an access decision. The engine never returns
// errors; failure to satisfy a requirement is a value, not an exception.
type Verdict struct {
	Allowed bool
	Reason  string
}

var Allow = Verdict{Allowed: true}

func Deny(reason string) Verdict {
	return Verdict{Allowed: false, Reason: reason}
}

// Role is a named permission bundle identified by a stable code.
type Role struct {
	ID          int64     `json:"id"`
	RoleName    string    `json:"role_name"`
	RoleCode    string    `json:"role_code"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Permission is an atomic capability identified by a stable code such as
// "user:view".
type Permission struct {
	ID             int64     `json:"id"`
	PermissionName string    `json:"permission_name"`
	PermissionCode string    `json:"permission_code"`
	ResourceType   string    `json:"resource_type,omitempty"`
	ResourceURL    string    `json:"resource_url,omitempty"`
	ParentID       *int64    `json:"parent_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

var (
	ErrRoleNotFound       = errors.New("role not found")
	ErrRoleCodeTaken      = errors.New("role code already exists")
	ErrRoleInUse          = errors.New("role is still referenced")
	ErrPermissionNotFound = errors.New("permission not found")
	ErrPermCodeTaken      = errors.New("permission code already exists")
	ErrAssignmentNotFound = errors.New("user does not hold this role")
	ErrUserNotFound       = errors.New("user not found")
)
