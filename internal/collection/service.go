package collection

import (
	"context"
	"log/slog"
	"time"

	"github.com/fieldops/advance-settlement/internal/auth"
	"github.com/fieldops/advance-settlement/internal/core/events"
)

type Repository interface {
	Create(c *Collection) error
	GetByID(id int64) (*Collection, error)
	GetByEnteredBy(userID int64, limit, offset int) ([]*Collection, error)
	GetAll(limit, offset int) ([]*Collection, error)
	GetPendingApproval(limit, offset int) ([]*Collection, error)
	Update(c *Collection) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo   Repository
	events EventPublisher
	logger *slog.Logger
}

func NewService(repo Repository, eventBus EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		events: eventBus,
		logger: logger,
	}
}

// CreateCollection records a customer payment. Admin entries are approved at
// creation; staff entries start unapproved.
func (s *Service) CreateCollection(user *auth.User, dto CreateCollectionDTO) (*Collection, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("collection validation failed", "error", err, "user_id", user.ID)
		return nil, err
	}

	now := time.Now()
	col := &Collection{
		CustomerName:   dto.CustomerName,
		AmountPaise:    dto.AmountPaise,
		CollectionDate: dto.CollectionDate,
		EnteredBy:      user.ID,
		EnteredByRole:  user.Role,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if user.IsAdmin() {
		col.Approved = true
		col.ApprovedBy = &user.ID
		col.ApprovedByName = &user.Name
		col.ApprovedDate = &now
	}

	if err := s.repo.Create(col); err != nil {
		s.logger.Error("failed to create collection", "error", err, "user_id", user.ID)
		return nil, err
	}

	s.logger.Info("collection recorded",
		"collection_id", col.ID,
		"customer", col.CustomerName,
		"amount_paise", col.AmountPaise,
		"entered_by_role", col.EnteredByRole,
		"approved", col.Approved)

	return col, nil
}

// Approve marks a staff-entered collection as approved and stamps the
// approver. Approving an already-approved collection is an idempotent no-op.
func (s *Service) Approve(ctx context.Context, collectionID, approverID int64, approverName string) (*Collection, error) {
	col, err := s.repo.GetByID(collectionID)
	if err != nil {
		s.logger.Warn("approve requested for unknown collection", "collection_id", collectionID)
		return nil, ErrCollectionNotFound
	}

	if col.Approved {
		s.logger.Info("collection already approved", "collection_id", collectionID)
		return col, nil
	}

	now := time.Now()
	col.Approved = true
	col.ApprovedBy = &approverID
	col.ApprovedByName = &approverName
	col.ApprovedDate = &now
	col.UpdatedAt = now

	if err := s.repo.Update(col); err != nil {
		s.logger.Error("failed to approve collection", "error", err, "collection_id", collectionID)
		return nil, err
	}

	s.logger.Info("collection approved",
		"collection_id", collectionID,
		"approved_by", approverID)

	if s.events != nil {
		event := events.NewCollectionApprovedEvent(col.ID, col.CustomerName, col.AmountPaise, approverID)
		if err := s.events.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish approval event", "error", err, "collection_id", collectionID)
		}
	}

	return col, nil
}

func (s *Service) GetUserCollections(userID int64, limit, offset int) ([]*Collection, error) {
	collections, err := s.repo.GetByEnteredBy(userID, limit, offset)
	if err != nil {
		s.logger.Error("failed to get user collections", "error", err, "user_id", userID)
		return nil, err
	}
	return collections, nil
}

func (s *Service) GetAllCollections(limit, offset int) ([]*Collection, error) {
	collections, err := s.repo.GetAll(limit, offset)
	if err != nil {
		s.logger.Error("failed to get all collections", "error", err)
		return nil, err
	}
	return collections, nil
}

// GetPendingApproval lists staff-entered collections awaiting admin sign-off.
func (s *Service) GetPendingApproval(limit, offset int) ([]*Collection, error) {
	collections, err := s.repo.GetPendingApproval(limit, offset)
	if err != nil {
		s.logger.Error("failed to get pending collections", "error", err)
		return nil, err
	}
	return collections, nil
}
