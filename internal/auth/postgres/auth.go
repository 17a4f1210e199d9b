package postgres

import (
	"time"

	"github.com/wiratama/access-management/internal/auth"
	"gorm.io/gorm"
)

// userRow maps the users table. Soft-deleted rows are filtered on every read.
type userRow struct {
	ID           int64     `gorm:"primaryKey"`
	Username     string    `gorm:"column:username;uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Email        string    `gorm:"column:email"`
	Phone        string    `gorm:"column:phone"`
	Nickname     string    `gorm:"column:nickname"`
	Avatar       string    `gorm:"column:avatar"`
	Role         string    `gorm:"column:role"`
	Deleted      bool      `gorm:"column:deleted;default:false"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (userRow) TableName() string {
	return "users"
}

func (r userRow) toDomain() *auth.User {
	return &auth.User{
		ID:           r.ID,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		Email:        r.Email,
		Phone:        r.Phone,
		Nickname:     r.Nickname,
		Avatar:       r.Avatar,
		Role:         r.Role,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByUsername(username string) (*auth.User, error) {
	var row userRow
	err := r.db.Where("username = ? AND deleted = ?", username, false).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *Repository) GetByID(userID int64) (*auth.User, error) {
	var row userRow
	err := r.db.Where("id = ? AND deleted = ?", userID, false).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *Repository) Create(user *auth.User) error {
	row := userRow{
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		Email:        user.Email,
		Phone:        user.Phone,
		Nickname:     user.Nickname,
		Avatar:       user.Avatar,
		Role:         user.Role,
	}
	if err := r.db.Create(&row).Error; err != nil {
		return err
	}
	user.ID = row.ID
	user.CreatedAt = row.CreatedAt
	user.UpdatedAt = row.UpdatedAt
	return nil
}
