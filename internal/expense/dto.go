package expense

import (
	"time"

	errors "github.com/fieldops/advance-settlement/internal"
	"github.com/fieldops/advance-settlement/internal/core/common/validation"
)

// CreateExpenseDTO is the request payload for submitting an expense. The
// advance reference may be a numeric id, null or the WITHOUT_ADVANCE label;
// an unlinked expense surfaces on the unreconciled list instead of any
// balance.
type CreateExpenseDTO struct {
	AdvanceID      AdvanceRef `json:"advance_id,omitempty"`
	UserID         int64      `json:"user_id,omitempty"` // admin-on-behalf-of-staff only
	ExpenseDate    time.Time  `json:"expense_date"`
	Category       Category   `json:"category"`
	FarePaise      int64      `json:"fare_paise"`
	ParkingPaise   int64      `json:"parking_paise"`
	OilPaise       int64      `json:"oil_paise"`
	BreakfastPaise int64      `json:"breakfast_paise"`
	OthersPaise    int64      `json:"others_paise"`
	TotalPaise     int64      `json:"total_paise"`
	Notes          string     `json:"notes,omitempty"`
}

func (dto CreateExpenseDTO) itemizedSum() int64 {
	return dto.FarePaise + dto.ParkingPaise + dto.OilPaise + dto.BreakfastPaise + dto.OthersPaise
}

// UpdateExpenseDTO is the request payload for modifying a pending expense.
// The advance link and owner are immutable; relinking means deleting the
// pending expense and recreating it.
type UpdateExpenseDTO struct {
	ExpenseDate    time.Time `json:"expense_date"`
	Category       Category  `json:"category"`
	FarePaise      int64     `json:"fare_paise"`
	ParkingPaise   int64     `json:"parking_paise"`
	OilPaise       int64     `json:"oil_paise"`
	BreakfastPaise int64     `json:"breakfast_paise"`
	OthersPaise    int64     `json:"others_paise"`
	TotalPaise     int64     `json:"total_paise"`
	Notes          string    `json:"notes,omitempty"`
}

func (dto UpdateExpenseDTO) itemizedSum() int64 {
	return dto.FarePaise + dto.ParkingPaise + dto.OilPaise + dto.BreakfastPaise + dto.OthersPaise
}

// Validate applies the same rules as expense creation: no negative itemized
// fields, total == itemized sum, known category, no future dates.
func (dto UpdateExpenseDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("fare_paise", dto.FarePaise).NonNegative()
	v.Field("parking_paise", dto.ParkingPaise).NonNegative()
	v.Field("oil_paise", dto.OilPaise).NonNegative()
	v.Field("breakfast_paise", dto.BreakfastPaise).NonNegative()
	v.Field("others_paise", dto.OthersPaise).NonNegative()
	v.Field("total_paise", dto.TotalPaise).Required().MinInt(1, errors.ErrCodeInvalidAmount)
	v.Field("expense_date", dto.ExpenseDate).NotFuture()
	if err := v.Validate(); err != nil {
		return err
	}

	if dto.ExpenseDate.IsZero() {
		return errors.NewValidationError("expense date is required", errors.ErrCodeInvalidDate)
	}

	if !dto.Category.Valid() {
		return errors.NewValidationError("unknown expense category", errors.ErrCodeInvalidCategory)
	}

	if dto.TotalPaise != dto.itemizedSum() {
		return errors.NewValidationError("total must equal the sum of itemized amounts", errors.ErrCodeTotalMismatch)
	}

	return nil
}

// Validate rejects the draft before any mutation: negative itemized fields,
// zero totals, totals that do not match the itemized sum, unknown categories
// and future dates all fail here.
func (dto CreateExpenseDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("fare_paise", dto.FarePaise).NonNegative()
	v.Field("parking_paise", dto.ParkingPaise).NonNegative()
	v.Field("oil_paise", dto.OilPaise).NonNegative()
	v.Field("breakfast_paise", dto.BreakfastPaise).NonNegative()
	v.Field("others_paise", dto.OthersPaise).NonNegative()
	v.Field("total_paise", dto.TotalPaise).Required().MinInt(1, errors.ErrCodeInvalidAmount)
	v.Field("expense_date", dto.ExpenseDate).NotFuture()
	if err := v.Validate(); err != nil {
		return err
	}

	if dto.ExpenseDate.IsZero() {
		return errors.NewValidationError("expense date is required", errors.ErrCodeInvalidDate)
	}

	if !dto.Category.Valid() {
		return errors.NewValidationError("unknown expense category", errors.ErrCodeInvalidCategory)
	}

	if dto.TotalPaise != dto.itemizedSum() {
		return errors.NewValidationError("total must equal the sum of itemized amounts", errors.ErrCodeTotalMismatch)
	}

	return nil
}
