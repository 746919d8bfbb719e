package advance

import (
	"time"

	"github.com/fieldops/advance-settlement/internal/core/common/validation"
)

// CreateAdvanceDTO is the request payload for issuing an advance to staff.
type CreateAdvanceDTO struct {
	StaffID     int64     `json:"staff_id"`
	AmountPaise int64     `json:"amount_paise"`
	AdvanceDate time.Time `json:"advance_date"`
}

func (dto CreateAdvanceDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("staff_id", dto.StaffID).Required()
	v.Field("amount_paise", dto.AmountPaise).Required().NonNegative()
	v.Field("advance_date", dto.AdvanceDate).NotFuture()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// AdvanceView is an advance with its derived balance and action gate, the
// shape list and detail endpoints return.
type AdvanceView struct {
	*Advance
	Balance        Balance           `json:"balance"`
	ExpenseStatus  ExpenseStatusInfo `json:"expense_status"`
	AllowedActions []Action          `json:"allowed_actions"`
}
