package user

import (
	"fmt"
)

type Repository interface {
	GetByID(userID int64) (*User, error)
	GetStaff() ([]*User, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
	}
}

func (s *Service) GetByID(userID int64) (*User, error) {
	u, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return u, nil
}

// ListStaff returns active staff members, used by admins when recording an
// advance or an expense on someone's behalf.
func (s *Service) ListStaff() ([]*User, error) {
	staff, err := s.repo.GetStaff()
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	return staff, nil
}
