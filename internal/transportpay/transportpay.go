package transportpay

import (
	"errors"
	"time"

	"github.com/fieldops/advance-settlement/internal/auth"
)

var ErrPaymentNotFound = errors.New("transport payment not found")

// TransportPayment records a direct payment to an external transport
// provider. These are standalone entries outside the advance lifecycle.
type TransportPayment struct {
	ID            int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	EnteredBy     int64     `json:"entered_by" gorm:"column:entered_by;not null"`
	EnteredByRole auth.Role `json:"entered_by_role" gorm:"column:entered_by_role;not null"`
	DriverName    string    `json:"driver_name" gorm:"column:driver_name;not null"`
	VehicleNumber string    `json:"vehicle_number" gorm:"column:vehicle_number;not null"`
	AmountPaise   int64     `json:"amount_paise" gorm:"column:amount_paise;not null"`
	PayDate       time.Time `json:"pay_date" gorm:"column:pay_date;not null"`
	Notes         string    `json:"notes,omitempty" gorm:"column:notes"`
	CreatedAt     time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (TransportPayment) TableName() string {
	return "transport_payments"
}
