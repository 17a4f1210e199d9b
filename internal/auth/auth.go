package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User is the identity record backing authentication. The legacy Role label
// is kept for token claims and display; authorization always goes through
// the rbac package's fresh grant resolution.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Nickname     string    `json:"nickname,omitempty"`
	Avatar       string    `json:"avatar,omitempty"`
	Role         string    `json:"role,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Claims is the signed claim set carried by an access token. Subject holds
// the username. Permissions is a comma-joined snapshot of the caller's
// permission codes at issuance; it is informational only and never trusted
// for authorization decisions.
type Claims struct {
	UserID      int64  `json:"user_id"`
	Role        string `json:"role,omitempty"`
	Permissions string `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// Username returns the token subject.
func (c *Claims) Username() string {
	return c.Subject
}

// PermissionCodes splits the embedded CSV snapshot.
func (c *Claims) PermissionCodes() []string {
	if c.Permissions == "" {
		return nil
	}
	return strings.Split(c.Permissions, ",")
}

// UserRepository is the persistence collaborator for identity lookups.
type UserRepository interface {
	GetByUsername(username string) (*User, error)
	GetByID(userID int64) (*User, error)
	Create(user *User) error
}

// PermissionSource resolves the permission-code snapshot embedded into
// tokens at login. Satisfied by the rbac grant resolver.
type PermissionSource interface {
	PermissionCodesOf(userID int64) ([]string, error)
}

// TokenGenerator issues and verifies signed access tokens.
type TokenGenerator interface {
	Issue(username string, userID int64, roleLabel, permissionCodesCSV string) (string, error)
	Verify(tokenString string) (*Claims, error)
}

// ServiceAPI is the surface the HTTP handlers depend on.
type ServiceAPI interface {
	Login(dto LoginDTO) (*LoginResponse, error)
	Register(dto RegisterDTO) (*User, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	UserInfo(userID int64) (*User, error)
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("username already taken")
)
