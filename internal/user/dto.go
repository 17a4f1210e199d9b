package user

// UpdateProfileDTO carries mutable profile fields. Username is immutable
// after creation and deliberately absent here.
type UpdateProfileDTO struct {
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Nickname *string `json:"nickname,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
}

type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (d UpdateProfileDTO) Validate() error {
	if d.Email == nil && d.Phone == nil && d.Nickname == nil && d.Avatar == nil {
		return ValidationError{Msg: "no fields to update"}
	}
	return nil
}
