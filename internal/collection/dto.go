package collection

import (
	"time"

	"github.com/fieldops/advance-settlement/internal/core/common/validation"
)

type CreateCollectionDTO struct {
	CustomerName   string    `json:"customer_name"`
	AmountPaise    int64     `json:"amount_paise"`
	CollectionDate time.Time `json:"collection_date"`
}

func (dto CreateCollectionDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("customer_name", dto.CustomerName).Required().MaxLength(200)
	v.Field("collection_date", dto.CollectionDate).NotFuture()
	if err := v.Validate(); err != nil {
		return err
	}
	if err := validation.ValidateMoneyAmount("amount_paise", dto.AmountPaise); err != nil {
		return err
	}
	return nil
}
