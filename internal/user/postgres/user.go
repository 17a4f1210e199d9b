package postgres

import (
	"time"

	"github.com/wiratama/access-management/internal/user"
	"gorm.io/gorm"
)

type userRow struct {
	ID        int64     `gorm:"primaryKey"`
	Username  string    `gorm:"column:username"`
	Email     string    `gorm:"column:email"`
	Phone     string    `gorm:"column:phone"`
	Nickname  string    `gorm:"column:nickname"`
	Avatar    string    `gorm:"column:avatar"`
	Role      string    `gorm:"column:role"`
	Deleted   bool      `gorm:"column:deleted"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (userRow) TableName() string { return "users" }

func (r userRow) toDomain() *user.User {
	return &user.User{
		ID:        r.ID,
		Username:  r.Username,
		Email:     r.Email,
		Phone:     r.Phone,
		Nickname:  r.Nickname,
		Avatar:    r.Avatar,
		Role:      r.Role,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByID(userID int64) (*user.User, error) {
	var row userRow
	err := r.db.Where("id = ? AND deleted = ?", userID, false).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *Repository) List() ([]*user.User, error) {
	var rows []userRow
	err := r.db.Where("deleted = ?", false).Order("id ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	users := make([]*user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toDomain())
	}
	return users, nil
}

func (r *Repository) UpdateProfile(u *user.User) error {
	return r.db.Model(&userRow{}).
		Where("id = ? AND deleted = ?", u.ID, false).
		Updates(map[string]interface{}{
			"email":    u.Email,
			"phone":    u.Phone,
			"nickname": u.Nickname,
			"avatar":   u.Avatar,
		}).Error
}

func (r *Repository) SoftDelete(userID int64) error {
	return r.db.Model(&userRow{}).Where("id = ?", userID).Update("deleted", true).Error
}
