package advance

import (
	"context"
	"log/slog"
	"time"

	"github.com/fieldops/advance-settlement/internal/core/events"
)

// Repository defines the data access methods for advances.
type Repository interface {
	Create(adv *Advance) error
	GetByID(id int64) (*Advance, error)
	GetByStaffID(staffID int64, limit, offset int) ([]*Advance, error)
	GetAll(limit, offset int) ([]*Advance, error)
	// MarkSettled transitions the advance and any linked expenses to settled
	// in one transaction, conditioned on the advance still being pending.
	// Returns whether this call performed the transition.
	MarkSettled(id int64, settledAt time.Time) (bool, error)
	// MarkCancelled cancels an advance, conditioned on it being active.
	MarkCancelled(id int64) (bool, error)
}

// ExpenseReader exposes the expense records linked to an advance. Only the
// fields the settlement rules need cross this boundary.
type ExpenseReader interface {
	ListByAdvanceID(advanceID int64) ([]LinkedExpense, error)
}

// EventPublisher publishes domain events after state transitions.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service owns the settlement rules: derived balances, the expense status
// gate and the settle transition.
type Service struct {
	repo     Repository
	expenses ExpenseReader
	events   EventPublisher
	logger   *slog.Logger
}

func NewService(repo Repository, expenses ExpenseReader, eventBus EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		expenses: expenses,
		events:   eventBus,
		logger:   logger,
	}
}

// CreateAdvance issues a new advance to a staff member.
func (s *Service) CreateAdvance(adminID int64, dto CreateAdvanceDTO) (*Advance, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("advance validation failed", "error", err, "staff_id", dto.StaffID)
		return nil, err
	}

	now := time.Now()
	adv := &Advance{
		StaffID:          dto.StaffID,
		AmountPaise:      dto.AmountPaise,
		AdvanceDate:      dto.AdvanceDate,
		Status:           StatusActive,
		SettlementStatus: SettlementPending,
		CreatedBy:        adminID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(adv); err != nil {
		s.logger.Error("failed to create advance", "error", err, "staff_id", dto.StaffID)
		return nil, err
	}

	s.logger.Info("advance created",
		"advance_id", adv.ID,
		"staff_id", adv.StaffID,
		"amount_paise", adv.AmountPaise,
		"created_by", adminID)

	return adv, nil
}

// GetAdvance retrieves an advance by id. Unlike balance queries this is a
// strict read: unknown ids report not found.
func (s *Service) GetAdvance(id int64) (*Advance, error) {
	adv, err := s.repo.GetByID(id)
	if err != nil {
		return nil, ErrAdvanceNotFound
	}
	return adv, nil
}

// CalculateBalance derives spent and remaining balance for an advance.
// Tolerant read: an unknown advance yields a zero balance, not an error.
func (s *Service) CalculateBalance(advanceID int64) (Balance, error) {
	adv, err := s.repo.GetByID(advanceID)
	if err != nil {
		s.logger.Debug("balance requested for unknown advance", "advance_id", advanceID)
		return classifyBalance(0, 0), nil
	}

	linked, err := s.expenses.ListByAdvanceID(advanceID)
	if err != nil {
		s.logger.Error("failed to load expenses for balance", "error", err, "advance_id", advanceID)
		return Balance{}, err
	}

	var spent int64
	for _, e := range linked {
		spent += e.TotalPaise
	}

	return classifyBalance(adv.AmountPaise, spent), nil
}

// ExpenseStatus reports whether the advance has a linked expense and its
// settlement state. The UI uses this as the action gate. Tolerant read.
func (s *Service) ExpenseStatus(advanceID int64) (ExpenseStatusInfo, error) {
	linked, err := s.expenses.ListByAdvanceID(advanceID)
	if err != nil {
		s.logger.Error("failed to load expenses for status", "error", err, "advance_id", advanceID)
		return ExpenseStatusInfo{}, err
	}

	if len(linked) == 0 {
		return ExpenseStatusInfo{}, nil
	}

	// Expense creation enforces one expense per advance, so the first row is
	// the expense.
	exp := linked[0]
	return ExpenseStatusInfo{
		HasExpense: true,
		Expense:    &exp,
		IsPending:  exp.SettlementStatus == SettlementPending,
		IsSettled:  exp.SettlementStatus == SettlementSettled,
	}, nil
}

// Settle marks the advance and its linked expense as settled in one logical
// operation. The two status fields move in lock-step by rule, not by a
// database cascade. Idempotent: settling a settled advance is a no-op.
func (s *Service) Settle(ctx context.Context, advanceID, adminID int64) (*Advance, error) {
	adv, err := s.repo.GetByID(advanceID)
	if err != nil {
		s.logger.Warn("settle requested for unknown advance", "advance_id", advanceID)
		return nil, ErrAdvanceNotFound
	}

	if adv.IsCancelled() {
		return nil, ErrAdvanceCancelled
	}

	if adv.IsSettled() {
		s.logger.Info("advance already settled", "advance_id", advanceID)
		return adv, nil
	}

	balance, err := s.CalculateBalance(advanceID)
	if err != nil {
		return nil, err
	}

	settledAt := time.Now()
	transitioned, err := s.repo.MarkSettled(advanceID, settledAt)
	if err != nil {
		s.logger.Error("failed to settle advance", "error", err, "advance_id", advanceID)
		return nil, err
	}

	if !transitioned {
		// Lost a race to a concurrent settle; the advance is settled either way.
		s.logger.Info("advance settled concurrently", "advance_id", advanceID)
		return s.repo.GetByID(advanceID)
	}

	s.logger.Info("advance settled",
		"advance_id", advanceID,
		"staff_id", adv.StaffID,
		"spent_paise", balance.SpentPaise,
		"balance_paise", balance.BalancePaise,
		"settled_by", adminID)

	if s.events != nil {
		event := events.NewAdvanceSettledEvent(advanceID, adv.StaffID, adv.AmountPaise,
			balance.SpentPaise, balance.BalancePaise, adminID)
		if err := s.events.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish settled event", "error", err, "advance_id", advanceID)
		}
	}

	return s.repo.GetByID(advanceID)
}

// Cancel voids an advance that has no expense against it yet.
func (s *Service) Cancel(advanceID int64) error {
	adv, err := s.repo.GetByID(advanceID)
	if err != nil {
		return ErrAdvanceNotFound
	}

	if adv.IsSettled() {
		return ErrAdvanceSettled
	}

	linked, err := s.expenses.ListByAdvanceID(advanceID)
	if err != nil {
		return err
	}
	if len(linked) > 0 {
		return ErrAdvanceHasExpense
	}

	transitioned, err := s.repo.MarkCancelled(advanceID)
	if err != nil {
		s.logger.Error("failed to cancel advance", "error", err, "advance_id", advanceID)
		return err
	}
	if !transitioned {
		return ErrAdvanceSettled
	}

	s.logger.Info("advance cancelled", "advance_id", advanceID)
	return nil
}

// View assembles the advance with its derived balance and action gate.
func (s *Service) View(advanceID int64) (*AdvanceView, error) {
	adv, err := s.repo.GetByID(advanceID)
	if err != nil {
		return nil, ErrAdvanceNotFound
	}
	return s.buildView(adv)
}

// ListForStaff returns a staff member's advances with balances.
func (s *Service) ListForStaff(staffID int64, limit, offset int) ([]*AdvanceView, error) {
	advances, err := s.repo.GetByStaffID(staffID, limit, offset)
	if err != nil {
		s.logger.Error("failed to list advances", "error", err, "staff_id", staffID)
		return nil, err
	}
	return s.buildViews(advances)
}

// ListAll returns every advance with balances, for admin screens.
func (s *Service) ListAll(limit, offset int) ([]*AdvanceView, error) {
	advances, err := s.repo.GetAll(limit, offset)
	if err != nil {
		s.logger.Error("failed to list all advances", "error", err)
		return nil, err
	}
	return s.buildViews(advances)
}

func (s *Service) buildViews(advances []*Advance) ([]*AdvanceView, error) {
	views := make([]*AdvanceView, 0, len(advances))
	for _, adv := range advances {
		view, err := s.buildView(adv)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *Service) buildView(adv *Advance) (*AdvanceView, error) {
	linked, err := s.expenses.ListByAdvanceID(adv.ID)
	if err != nil {
		return nil, err
	}

	var spent int64
	for _, e := range linked {
		spent += e.TotalPaise
	}

	info := ExpenseStatusInfo{}
	if len(linked) > 0 {
		exp := linked[0]
		info = ExpenseStatusInfo{
			HasExpense: true,
			Expense:    &exp,
			IsPending:  exp.SettlementStatus == SettlementPending,
			IsSettled:  exp.SettlementStatus == SettlementSettled,
		}
	}

	return &AdvanceView{
		Advance:        adv,
		Balance:        classifyBalance(adv.AmountPaise, spent),
		ExpenseStatus:  info,
		AllowedActions: adv.AllowedActions(info),
	}, nil
}
