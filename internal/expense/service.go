package expense

import (
	"log/slog"
	"time"

	"github.com/fieldops/advance-settlement/internal/advance"
)

// Repository defines the data access methods for expenses
type Repository interface {
	Create(exp *Expense) error
	GetByID(id int64) (*Expense, error)
	GetByUserID(userID int64, limit, offset int) ([]*Expense, error)
	GetAll(limit, offset int) ([]*Expense, error)
	GetByAdvanceID(advanceID int64) ([]*Expense, error)
	// GetWithoutAdvance lists expenses pending manual reconciliation.
	GetWithoutAdvance(limit, offset int) ([]*Expense, error)
	CountByAdvanceID(advanceID int64) (int64, error)
	Update(exp *Expense) error
	Delete(id int64) error
}

// AdvanceGate exposes the advance lookups expense creation needs.
type AdvanceGate interface {
	GetAdvance(id int64) (*advance.Advance, error)
}

// Service handles expense business logic
type Service struct {
	repo     Repository
	advances AdvanceGate
	logger   *slog.Logger
}

func NewService(repo Repository, advances AdvanceGate, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		advances: advances,
		logger:   logger,
	}
}

// CreateExpense creates an expense for a user, against an advance or without
// one. The total/itemized-sum invariant and the one-expense-per-advance rule
// are enforced here, before any write.
func (s *Service) CreateExpense(userID int64, dto CreateExpenseDTO) (*Expense, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("expense validation failed", "error", err, "user_id", userID)
		return nil, err
	}

	if dto.AdvanceID.ID != nil {
		adv, err := s.advances.GetAdvance(*dto.AdvanceID.ID)
		if err != nil {
			s.logger.Warn("expense references unknown advance", "advance_id", *dto.AdvanceID.ID, "user_id", userID)
			return nil, ErrAdvanceNotFound
		}

		if !adv.IsActive() || adv.IsSettled() {
			s.logger.Warn("expense against inactive advance",
				"advance_id", adv.ID,
				"status", adv.Status,
				"settlement_status", adv.SettlementStatus)
			return nil, ErrAdvanceNotActive
		}

		count, err := s.repo.CountByAdvanceID(adv.ID)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrAdvanceHasExpense
		}
	}

	now := time.Now()
	exp := &Expense{
		UserID:           userID,
		AdvanceID:        dto.AdvanceID.ID,
		ExpenseDate:      dto.ExpenseDate,
		Category:         dto.Category,
		FarePaise:        dto.FarePaise,
		ParkingPaise:     dto.ParkingPaise,
		OilPaise:         dto.OilPaise,
		BreakfastPaise:   dto.BreakfastPaise,
		OthersPaise:      dto.OthersPaise,
		TotalPaise:       dto.TotalPaise,
		Notes:            dto.Notes,
		SettlementStatus: SettlementPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(exp); err != nil {
		s.logger.Error("failed to create expense", "error", err, "user_id", userID)
		return nil, err
	}

	s.logger.Info("expense created",
		"expense_id", exp.ID,
		"user_id", userID,
		"advance_id", exp.AdvanceID,
		"total_paise", exp.TotalPaise)

	return exp, nil
}

// GetExpenseByID retrieves an expense with access control: staff see their
// own, admins see everything.
func (s *Service) GetExpenseByID(id, userID int64, isAdmin bool) (*Expense, error) {
	exp, err := s.repo.GetByID(id)
	if err != nil {
		return nil, ErrExpenseNotFound
	}

	if !isAdmin && exp.UserID != userID {
		s.logger.Warn("unauthorized access to expense", "expense_id", id, "user_id", userID)
		return nil, ErrUnauthorizedAccess
	}

	return exp, nil
}

func (s *Service) GetUserExpenses(userID int64, limit, offset int) ([]*Expense, error) {
	expenses, err := s.repo.GetByUserID(userID, limit, offset)
	if err != nil {
		s.logger.Error("failed to get user expenses", "error", err, "user_id", userID)
		return nil, err
	}
	return expenses, nil
}

func (s *Service) GetAllExpenses(limit, offset int) ([]*Expense, error) {
	expenses, err := s.repo.GetAll(limit, offset)
	if err != nil {
		s.logger.Error("failed to get all expenses", "error", err)
		return nil, err
	}
	return expenses, nil
}

// GetUnreconciled lists expenses submitted without an advance. They never
// contribute to any advance balance and wait for manual admin action.
func (s *Service) GetUnreconciled(limit, offset int) ([]*Expense, error) {
	expenses, err := s.repo.GetWithoutAdvance(limit, offset)
	if err != nil {
		s.logger.Error("failed to get unreconciled expenses", "error", err)
		return nil, err
	}
	return expenses, nil
}

// UpdateExpense replaces the itemized amounts of a pending expense. Settled
// expenses are immutable, and the advance link cannot change here.
func (s *Service) UpdateExpense(id, userID int64, isAdmin bool, dto UpdateExpenseDTO) (*Expense, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("expense update validation failed", "error", err, "expense_id", id)
		return nil, err
	}

	exp, err := s.repo.GetByID(id)
	if err != nil {
		return nil, ErrExpenseNotFound
	}

	if !isAdmin && exp.UserID != userID {
		s.logger.Warn("unauthorized expense update", "expense_id", id, "user_id", userID)
		return nil, ErrUnauthorizedAccess
	}

	if exp.IsSettled() {
		return nil, ErrExpenseSettled
	}

	exp.ExpenseDate = dto.ExpenseDate
	exp.Category = dto.Category
	exp.FarePaise = dto.FarePaise
	exp.ParkingPaise = dto.ParkingPaise
	exp.OilPaise = dto.OilPaise
	exp.BreakfastPaise = dto.BreakfastPaise
	exp.OthersPaise = dto.OthersPaise
	exp.TotalPaise = dto.TotalPaise
	exp.Notes = dto.Notes
	exp.UpdatedAt = time.Now()

	if err := s.repo.Update(exp); err != nil {
		s.logger.Error("failed to update expense", "error", err, "expense_id", id)
		return nil, err
	}

	s.logger.Info("expense updated", "expense_id", id, "user_id", userID, "total_paise", exp.TotalPaise)
	return exp, nil
}

// DeleteExpense removes a pending expense. Settled expenses are immutable.
func (s *Service) DeleteExpense(id, userID int64, isAdmin bool) error {
	exp, err := s.repo.GetByID(id)
	if err != nil {
		return ErrExpenseNotFound
	}

	if !isAdmin && exp.UserID != userID {
		s.logger.Warn("unauthorized expense delete", "expense_id", id, "user_id", userID)
		return ErrUnauthorizedAccess
	}

	if exp.IsSettled() {
		return ErrExpenseSettled
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete expense", "error", err, "expense_id", id)
		return err
	}

	s.logger.Info("expense deleted", "expense_id", id, "user_id", userID)
	return nil
}
