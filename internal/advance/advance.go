package advance

import (
	"errors"
	"time"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusSettled   Status = "settled"
	StatusCancelled Status = "cancelled"
)

type SettlementStatus string

const (
	SettlementPending SettlementStatus = "pending"
	SettlementSettled SettlementStatus = "settled"
)

// Advance is cash handed to a staff member in anticipation of expenses. The
// amount is fixed at creation; only status fields change afterwards. Balances
// are always derived from linked expenses, never stored here.
type Advance struct {
	ID               int64            `json:"id" gorm:"primaryKey"`
	StaffID          int64            `json:"staff_id" gorm:"column:staff_id;not null"`
	AmountPaise      int64            `json:"amount_paise" gorm:"column:amount_paise;not null"`
	AdvanceDate      time.Time        `json:"advance_date" gorm:"column:advance_date;type:date"`
	Status           Status           `json:"status" gorm:"column:status;default:active"`
	SettlementStatus SettlementStatus `json:"settlement_status" gorm:"column:settlement_status;default:pending"`
	CreatedBy        int64            `json:"created_by" gorm:"column:created_by"`
	SettledAt        *time.Time       `json:"settled_at,omitempty" gorm:"column:settled_at"`
	CreatedAt        time.Time        `json:"created_at" gorm:"column:created_at"`
	UpdatedAt        time.Time        `json:"updated_at" gorm:"column:updated_at"`
}

func (Advance) TableName() string {
	return "advances"
}

func (a *Advance) IsActive() bool {
	return a.Status == StatusActive
}

func (a *Advance) IsSettled() bool {
	return a.SettlementStatus == SettlementSettled
}

func (a *Advance) IsCancelled() bool {
	return a.Status == StatusCancelled
}

// BalanceStatus classifies the sign of a derived balance. It is descriptive
// only; it never drives the settlement status.
type BalanceStatus string

const (
	// BalanceSurplus: staff spent less than the advance and owes money back.
	BalanceSurplus BalanceStatus = "surplus"
	// BalanceDeficit: staff spent more than the advance and is owed money.
	BalanceDeficit BalanceStatus = "deficit"
	// BalanceBalanced: spending exactly matches the advance.
	BalanceBalanced BalanceStatus = "balanced"
)

// Balance is derived per advance: spent is the sum of linked expense totals,
// balance is amount minus spent.
type Balance struct {
	SpentPaise   int64         `json:"spent_paise"`
	BalancePaise int64         `json:"balance_paise"`
	Status       BalanceStatus `json:"status"`
}

func classifyBalance(amountPaise, spentPaise int64) Balance {
	balance := amountPaise - spentPaise
	status := BalanceBalanced
	if balance > 0 {
		status = BalanceSurplus
	} else if balance < 0 {
		status = BalanceDeficit
	}
	return Balance{
		SpentPaise:   spentPaise,
		BalancePaise: balance,
		Status:       status,
	}
}

// LinkedExpense is the slice of an expense record the settlement rules need.
type LinkedExpense struct {
	ID               int64            `json:"id"`
	TotalPaise       int64            `json:"total_paise"`
	SettlementStatus SettlementStatus `json:"settlement_status"`
}

// ExpenseStatusInfo gates which actions an advance currently allows: no
// expense means one can be added, a pending expense can be modified or
// settled, a settled expense locks the advance down.
type ExpenseStatusInfo struct {
	HasExpense bool           `json:"has_expense"`
	Expense    *LinkedExpense `json:"expense,omitempty"`
	IsPending  bool           `json:"is_pending"`
	IsSettled  bool           `json:"is_settled"`
}

type Action string

const (
	ActionAddExpense    Action = "add_expense"
	ActionModifyExpense Action = "modify_expense"
	ActionSettle        Action = "settle"
)

// AllowedActions evaluates the advance/expense joint state table.
func (a *Advance) AllowedActions(info ExpenseStatusInfo) []Action {
	if !a.IsActive() || a.IsSettled() {
		return nil
	}
	if !info.HasExpense {
		return []Action{ActionAddExpense}
	}
	if info.IsPending {
		return []Action{ActionModifyExpense, ActionSettle}
	}
	return nil
}

var (
	ErrAdvanceNotFound   = errors.New("advance not found")
	ErrAdvanceSettled    = errors.New("advance is already settled")
	ErrAdvanceCancelled  = errors.New("advance is cancelled")
	ErrAdvanceHasExpense = errors.New("advance has a linked expense")
)
