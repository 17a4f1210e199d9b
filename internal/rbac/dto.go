package rbac

// ValidationError mirrors the auth package's lightweight DTO validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

type RoleDTO struct {
	RoleName    string `json:"role_name"`
	RoleCode    string `json:"role_code"`
	Description string `json:"description,omitempty"`
}

func (d RoleDTO) Validate() error {
	if d.RoleName == "" {
		return ValidationError{Msg: "role_name is required"}
	}
	if d.RoleCode == "" {
		return ValidationError{Msg: "role_code is required"}
	}
	return nil
}

type PermissionDTO struct {
	PermissionName string `json:"permission_name"`
	PermissionCode string `json:"permission_code"`
	ResourceType   string `json:"resource_type,omitempty"`
	ResourceURL    string `json:"resource_url,omitempty"`
	ParentID       *int64 `json:"parent_id,omitempty"`
}

func (d PermissionDTO) Validate() error {
	if d.PermissionName == "" {
		return ValidationError{Msg: "permission_name is required"}
	}
	if d.PermissionCode == "" {
		return ValidationError{Msg: "permission_code is required"}
	}
	return nil
}

type AssignmentDTO struct {
	UserID int64 `json:"user_id"`
	RoleID int64 `json:"role_id"`
}

func (d AssignmentDTO) Validate() error {
	if d.UserID <= 0 {
		return ValidationError{Msg: "user_id is required"}
	}
	if d.RoleID <= 0 {
		return ValidationError{Msg: "role_id is required"}
	}
	return nil
}
