package expense

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

type Category string

const (
	CategoryLocalTravel Category = "local_travel"
	CategoryOutstation  Category = "outstation"
	CategoryFood        Category = "food"
	CategoryOffice      Category = "office"
	CategoryOther       Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryLocalTravel, CategoryOutstation, CategoryFood, CategoryOffice, CategoryOther:
		return true
	}
	return false
}

type SettlementStatus string

const (
	SettlementPending SettlementStatus = "pending"
	SettlementSettled SettlementStatus = "settled"
)

// WithoutAdvanceLabel is the wire label for expenses submitted with no linked
// advance. Internally a nil AdvanceID represents the same thing.
const WithoutAdvanceLabel = "WITHOUT_ADVANCE"

// AdvanceRef accepts an advance reference from the wire: a numeric id, null,
// or the WithoutAdvanceLabel string, the last two both meaning no advance.
type AdvanceRef struct {
	ID *int64
}

func (r AdvanceRef) MarshalJSON() ([]byte, error) {
	if r.ID == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*r.ID)
}

func (r *AdvanceRef) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == `"`+WithoutAdvanceLabel+`"` {
		r.ID = nil
		return nil
	}
	var id int64
	if err := json.Unmarshal(data, &id); err != nil {
		return errors.New("advance_id must be a number or " + WithoutAdvanceLabel)
	}
	r.ID = &id
	return nil
}

// Expense is an itemized spending record, optionally linked to an advance.
// TotalPaise is computed once at creation and must equal the itemized sum;
// the engine enforces the invariant at write time instead of recomputing
// lazily on read.
type Expense struct {
	ID               int64            `json:"id" gorm:"primaryKey"`
	UserID           int64            `json:"user_id" gorm:"column:user_id;not null"`
	AdvanceID        *int64           `json:"advance_id,omitempty" gorm:"column:advance_id"`
	ExpenseDate      time.Time        `json:"expense_date" gorm:"column:expense_date;type:date"`
	Category         Category         `json:"category" gorm:"column:category"`
	FarePaise        int64            `json:"fare_paise" gorm:"column:fare_paise"`
	ParkingPaise     int64            `json:"parking_paise" gorm:"column:parking_paise"`
	OilPaise         int64            `json:"oil_paise" gorm:"column:oil_paise"`
	BreakfastPaise   int64            `json:"breakfast_paise" gorm:"column:breakfast_paise"`
	OthersPaise      int64            `json:"others_paise" gorm:"column:others_paise"`
	TotalPaise       int64            `json:"total_paise" gorm:"column:total_paise;not null"`
	Notes            string           `json:"notes,omitempty" gorm:"column:notes"`
	SettlementStatus SettlementStatus `json:"settlement_status" gorm:"column:settlement_status;default:pending"`
	CreatedAt        time.Time        `json:"created_at" gorm:"column:created_at"`
	UpdatedAt        time.Time        `json:"updated_at" gorm:"column:updated_at"`
}

func (Expense) TableName() string {
	return "expenses"
}

// ItemizedSum adds up the constituent amount fields.
func (e *Expense) ItemizedSum() int64 {
	return e.FarePaise + e.ParkingPaise + e.OilPaise + e.BreakfastPaise + e.OthersPaise
}

func (e *Expense) IsWithoutAdvance() bool {
	return e.AdvanceID == nil
}

func (e *Expense) IsPending() bool {
	return e.SettlementStatus == SettlementPending
}

func (e *Expense) IsSettled() bool {
	return e.SettlementStatus == SettlementSettled
}

var (
	ErrExpenseNotFound    = errors.New("expense not found")
	ErrExpenseSettled     = errors.New("expense is already settled")
	ErrUnauthorizedAccess = errors.New("unauthorized access to expense")
	ErrAdvanceNotFound    = errors.New("advance not found")
	ErrAdvanceNotActive   = errors.New("advance is not active")
	ErrAdvanceHasExpense  = errors.New("advance already has an expense")
)
