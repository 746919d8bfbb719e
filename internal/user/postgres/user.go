package postgres

import (
	"errors"

	"github.com/fieldops/advance-settlement/internal/auth"
	"github.com/fieldops/advance-settlement/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(userID int64) (*user.User, error) {
	var u user.User
	err := r.db.First(&u, "id = ? AND is_active = ?", userID, true).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetStaff() ([]*user.User, error) {
	var staff []*user.User
	err := r.db.
		Where("role = ? AND is_active = ?", auth.RoleStaff, true).
		Order("name ASC").
		Find(&staff).Error
	return staff, err
}
