package postgres

import (
	"errors"

	"github.com/fieldops/advance-settlement/internal/transportpay"
	"gorm.io/gorm"
)

type TransportPaymentRepository struct {
	db *gorm.DB
}

func NewTransportPaymentRepository(db *gorm.DB) *TransportPaymentRepository {
	return &TransportPaymentRepository{db: db}
}

func (r *TransportPaymentRepository) Create(p *transportpay.TransportPayment) error {
	return r.db.Create(p).Error
}

func (r *TransportPaymentRepository) GetByID(id int64) (*transportpay.TransportPayment, error) {
	var payment transportpay.TransportPayment
	err := r.db.First(&payment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, transportpay.ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *TransportPaymentRepository) GetByEnteredBy(userID int64, limit, offset int) ([]*transportpay.TransportPayment, error) {
	var payments []*transportpay.TransportPayment
	err := r.db.
		Where("entered_by = ?", userID).
		Order("pay_date DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&payments).Error
	return payments, err
}

func (r *TransportPaymentRepository) GetAll(limit, offset int) ([]*transportpay.TransportPayment, error) {
	var payments []*transportpay.TransportPayment
	err := r.db.
		Order("pay_date DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&payments).Error
	return payments, err
}
