package user

import (
	"errors"
	"time"
)

// User is the profile view of an identity record; the password hash never
// leaves the repository layer in this package.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Nickname  string    `json:"nickname,omitempty"`
	Avatar    string    `json:"avatar,omitempty"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Repository interface {
	GetByID(userID int64) (*User, error)
	List() ([]*User, error)
	UpdateProfile(user *User) error
	SoftDelete(userID int64) error
}

var ErrNotFound = errors.New("user not found")
