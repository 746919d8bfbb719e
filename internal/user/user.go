package user

import (
	"errors"
	"time"

	"github.com/fieldops/advance-settlement/internal/auth"
)

var ErrUserNotFound = errors.New("user not found")

type User struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Email        string    `json:"email" gorm:"column:email;uniqueIndex;not null"`
	Name         string    `json:"name" gorm:"column:name;not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null"`
	Role         auth.Role `json:"role" gorm:"column:role;not null"`
	IsActive     bool      `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == auth.RoleAdmin
}
