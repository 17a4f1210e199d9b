package auth

import (
	"strings"
)

const defaultRoleLabel = "USER"

// Service is the main auth service with dependencies
type Service struct {
	users  UserRepository
	tokens TokenGenerator
	grants PermissionSource
	hasher *PasswordHasher
}

// NewService creates a new auth service
func NewService(users UserRepository, tokens TokenGenerator, grants PermissionSource, hasher *PasswordHasher) *Service {
	if hasher == nil {
		hasher = NewPasswordHasher(0)
	}
	return &Service{
		users:  users,
		tokens: tokens,
		grants: grants,
		hasher: hasher,
	}
}

// Login validates credentials, resolves the caller's permission codes and
// issues a signed token embedding the snapshot.
func (s *Service) Login(dto LoginDTO) (*LoginResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.GetByUsername(dto.Username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !s.hasher.Verify(dto.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	codes, err := s.grants.PermissionCodesOf(user.ID)
	if err != nil {
		return nil, err
	}
	permissionCSV := strings.Join(codes, ",")

	token, err := s.tokens.Issue(user.Username, user.ID, user.Role, permissionCSV)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		Token:       token,
		UserID:      user.ID,
		Username:    user.Username,
		Nickname:    user.Nickname,
		Role:        user.Role,
		Avatar:      user.Avatar,
		Permissions: permissionCSV,
	}, nil
}

// Register creates a new account with a hashed password and the default
// role label. The username must not be taken by a non-deleted user.
func (s *Service) Register(dto RegisterDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if existing, err := s.users.GetByUsername(dto.Username); err == nil && existing != nil {
		return nil, ErrUserAlreadyExists
	}

	hash, err := s.hasher.Hash(dto.Password)
	if err != nil {
		return nil, err
	}

	user := &User{
		Username:     dto.Username,
		PasswordHash: hash,
		Email:        dto.Email,
		Phone:        dto.Phone,
		Nickname:     dto.Nickname,
		Avatar:       dto.Avatar,
		Role:         defaultRoleLabel,
	}

	if err := s.users.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// ValidateAccessToken verifies the token and returns its claims.
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokens.Verify(tokenString)
}

// UserInfo loads the profile for an authenticated caller.
func (s *Service) UserInfo(userID int64) (*User, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
