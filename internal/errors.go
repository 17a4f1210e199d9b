package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeTokenMissing       ErrorCode = "TOKEN_MISSING"
	ErrCodeTokenInvalid       ErrorCode = "TOKEN_INVALID"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"

	ErrCodeGrantLookupFailed       ErrorCode = "GRANT_LOOKUP_FAILED"
	ErrCodeRoleRequirementUnmet    ErrorCode = "ROLE_REQUIREMENT_UNMET"
	ErrCodePermRequirementUnmet    ErrorCode = "PERMISSION_REQUIREMENT_UNMET"
	ErrCodeUserNotFound            ErrorCode = "USER_NOT_FOUND"
	ErrCodeUserAlreadyExists       ErrorCode = "USER_ALREADY_EXISTS"
	ErrCodeRoleNotFound            ErrorCode = "ROLE_NOT_FOUND"
	ErrCodeRoleAlreadyExists       ErrorCode = "ROLE_ALREADY_EXISTS"
	ErrCodeRoleInUse               ErrorCode = "ROLE_IN_USE"
	ErrCodePermissionNotFound      ErrorCode = "PERMISSION_NOT_FOUND"
	ErrCodePermissionAlreadyExists ErrorCode = "PERMISSION_ALREADY_EXISTS"
	ErrCodeRoleAssignmentNotFound  ErrorCode = "ROLE_ASSIGNMENT_NOT_FOUND"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

var (
	ErrInvalidCredentials = NewUnauthorizedError("Invalid username or password", ErrCodeInvalidCredentials)
	ErrTokenMissing       = NewUnauthorizedError("No valid token provided", ErrCodeTokenMissing)
	ErrTokenInvalid       = NewUnauthorizedError("Invalid token", ErrCodeTokenInvalid)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)

	ErrMissingRequiredRole       = NewForbiddenError("missing required role", ErrCodeRoleRequirementUnmet)
	ErrMissingRequiredPermission = NewForbiddenError("missing required permission", ErrCodePermRequirementUnmet)

	ErrUserNotFound       = NewNotFoundError("User not found", ErrCodeUserNotFound)
	ErrUserAlreadyExists  = NewConflictError("Username already taken", ErrCodeUserAlreadyExists)
	ErrRoleNotFound       = NewNotFoundError("Role not found", ErrCodeRoleNotFound)
	ErrRoleAlreadyExists  = NewConflictError("Role code already exists", ErrCodeRoleAlreadyExists)
	ErrRoleInUse          = NewConflictError("Role is still assigned to users or permissions", ErrCodeRoleInUse)
	ErrPermissionNotFound = NewNotFoundError("Permission not found", ErrCodePermissionNotFound)
	ErrPermissionExists   = NewConflictError("Permission code already exists", ErrCodePermissionAlreadyExists)
	ErrAssignmentNotFound = NewNotFoundError("User does not hold this role", ErrCodeRoleAssignmentNotFound)
)

// NewGrantLookupFailedError wraps a persistence failure during grant
// resolution; reported distinctly from authorization denials so the
// boundary can choose 500 over 403.
func NewGrantLookupFailedError(cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       ErrCodeGrantLookupFailed,
		Message:    "Failed to resolve caller grants",
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
