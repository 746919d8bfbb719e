package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeAdvanceSettled     = "advance.settled"
	EventTypeCollectionApproved = "collection.approved"
)

type AdvanceSettledEvent struct {
	BaseEvent
	AdvanceID    int64 `json:"advance_id"`
	StaffID      int64 `json:"staff_id"`
	AmountPaise  int64 `json:"amount_paise"`
	SpentPaise   int64 `json:"spent_paise"`
	BalancePaise int64 `json:"balance_paise"`
	SettledBy    int64 `json:"settled_by"`
}

func NewAdvanceSettledEvent(advanceID, staffID, amountPaise, spentPaise, balancePaise, settledBy int64) *AdvanceSettledEvent {
	return &AdvanceSettledEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeAdvanceSettled,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"advance_id":    advanceID,
				"staff_id":      staffID,
				"amount_paise":  amountPaise,
				"spent_paise":   spentPaise,
				"balance_paise": balancePaise,
				"settled_by":    settledBy,
			},
		},
		AdvanceID:    advanceID,
		StaffID:      staffID,
		AmountPaise:  amountPaise,
		SpentPaise:   spentPaise,
		BalancePaise: balancePaise,
		SettledBy:    settledBy,
	}
}

type CollectionApprovedEvent struct {
	BaseEvent
	CollectionID int64  `json:"collection_id"`
	CustomerName string `json:"customer_name"`
	AmountPaise  int64  `json:"amount_paise"`
	ApprovedBy   int64  `json:"approved_by"`
}

func NewCollectionApprovedEvent(collectionID int64, customerName string, amountPaise, approvedBy int64) *CollectionApprovedEvent {
	return &CollectionApprovedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeCollectionApproved,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"collection_id": collectionID,
				"customer_name": customerName,
				"amount_paise":  amountPaise,
				"approved_by":   approvedBy,
			},
		},
		CollectionID: collectionID,
		CustomerName: customerName,
		AmountPaise:  amountPaise,
		ApprovedBy:   approvedBy,
	}
}
