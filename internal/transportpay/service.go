package transportpay

import (
	"log/slog"
	"time"

	"github.com/fieldops/advance-settlement/internal/auth"
)

type Repository interface {
	Create(p *TransportPayment) error
	GetByID(id int64) (*TransportPayment, error)
	GetByEnteredBy(userID int64, limit, offset int) ([]*TransportPayment, error)
	GetAll(limit, offset int) ([]*TransportPayment, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// CreatePayment records a direct payment to a transport provider. These sit
// outside the advance lifecycle and never need settlement.
func (s *Service) CreatePayment(user *auth.User, dto CreateTransportPaymentDTO) (*TransportPayment, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("transport payment validation failed", "error", err, "user_id", user.ID)
		return nil, err
	}

	now := time.Now()
	payment := &TransportPayment{
		EnteredBy:     user.ID,
		EnteredByRole: user.Role,
		DriverName:    dto.DriverName,
		VehicleNumber: dto.VehicleNumber,
		AmountPaise:   dto.AmountPaise,
		PayDate:       dto.PayDate,
		Notes:         dto.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(payment); err != nil {
		s.logger.Error("failed to create transport payment", "error", err, "user_id", user.ID)
		return nil, err
	}

	s.logger.Info("transport payment recorded",
		"payment_id", payment.ID,
		"driver", payment.DriverName,
		"vehicle", payment.VehicleNumber,
		"amount_paise", payment.AmountPaise)

	return payment, nil
}

func (s *Service) GetPayment(id int64) (*TransportPayment, error) {
	payment, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *Service) GetUserPayments(userID int64, limit, offset int) ([]*TransportPayment, error) {
	payments, err := s.repo.GetByEnteredBy(userID, limit, offset)
	if err != nil {
		s.logger.Error("failed to get user transport payments", "error", err, "user_id", userID)
		return nil, err
	}
	return payments, nil
}

func (s *Service) GetAllPayments(limit, offset int) ([]*TransportPayment, error) {
	payments, err := s.repo.GetAll(limit, offset)
	if err != nil {
		s.logger.Error("failed to get all transport payments", "error", err)
		return nil, err
	}
	return payments, nil
}
