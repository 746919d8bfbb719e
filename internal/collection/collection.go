package collection

import (
	"errors"
	"time"

	"github.com/fieldops/advance-settlement/internal/auth"
)

// Collection is a customer payment recorded by staff or admin. Staff-entered
// collections wait for admin approval; admin entries are approved on the spot.
type Collection struct {
	ID             int64      `json:"id" gorm:"primaryKey"`
	CustomerName   string     `json:"customer_name" gorm:"column:customer_name;not null"`
	AmountPaise    int64      `json:"amount_paise" gorm:"column:amount_paise;not null"`
	CollectionDate time.Time  `json:"collection_date" gorm:"column:collection_date;type:date"`
	EnteredBy      int64      `json:"entered_by" gorm:"column:entered_by"`
	EnteredByRole  auth.Role  `json:"entered_by_role" gorm:"column:entered_by_role"`
	Approved       bool       `json:"approved" gorm:"column:approved"`
	ApprovedBy     *int64     `json:"approved_by,omitempty" gorm:"column:approved_by"`
	ApprovedByName *string    `json:"approved_by_name,omitempty" gorm:"column:approved_by_name"`
	ApprovedDate   *time.Time `json:"approved_date,omitempty" gorm:"column:approved_date"`
	CreatedAt      time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (Collection) TableName() string {
	return "collections"
}

func (c *Collection) IsApproved() bool {
	return c.Approved
}

var ErrCollectionNotFound = errors.New("collection not found")
