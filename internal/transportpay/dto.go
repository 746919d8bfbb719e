package transportpay

import (
	"time"

	"github.com/fieldops/advance-settlement/internal/core/common/validation"
)

type CreateTransportPaymentDTO struct {
	DriverName    string    `json:"driver_name"`
	VehicleNumber string    `json:"vehicle_number"`
	AmountPaise   int64     `json:"amount_paise"`
	PayDate       time.Time `json:"pay_date"`
	Notes         string    `json:"notes,omitempty"`
}

func (dto CreateTransportPaymentDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("driver_name", dto.DriverName).Required().MaxLength(200)
	v.Field("vehicle_number", dto.VehicleNumber).Required().MaxLength(50)
	v.Field("pay_date", dto.PayDate).NotFuture()
	v.Field("notes", dto.Notes).MaxLength(500)
	if err := v.Validate(); err != nil {
		return err
	}
	if err := validation.ValidateMoneyAmount("amount_paise", dto.AmountPaise); err != nil {
		return err
	}
	return nil
}
