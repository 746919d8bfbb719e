package postgres

import (
	"time"

	"github.com/fieldops/advance-settlement/internal/advance"
	"gorm.io/gorm"
)

// AdvanceRepository implements the advance.Repository interface using GORM
type AdvanceRepository struct {
	db *gorm.DB
}

func NewAdvanceRepository(db *gorm.DB) advance.Repository {
	return &AdvanceRepository{db: db}
}

func (r *AdvanceRepository) Create(adv *advance.Advance) error {
	return r.db.Create(adv).Error
}

func (r *AdvanceRepository) GetByID(id int64) (*advance.Advance, error) {
	var adv advance.Advance
	err := r.db.Where("id = ?", id).First(&adv).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, advance.ErrAdvanceNotFound
		}
		return nil, err
	}
	return &adv, nil
}

func (r *AdvanceRepository) GetByStaffID(staffID int64, limit, offset int) ([]*advance.Advance, error) {
	var advances []*advance.Advance
	err := r.db.Where("staff_id = ?", staffID).
		Order("advance_date DESC").
		Limit(limit).
		Offset(offset).
		Find(&advances).Error
	return advances, err
}

func (r *AdvanceRepository) GetAll(limit, offset int) ([]*advance.Advance, error) {
	var advances []*advance.Advance
	err := r.db.Order("advance_date DESC").
		Limit(limit).
		Offset(offset).
		Find(&advances).Error
	return advances, err
}

// MarkSettled flips the advance and its linked expenses to settled in one
// transaction. The conditional WHERE keeps a concurrent settle or expense
// write from double-processing the same advance.
func (r *AdvanceRepository) MarkSettled(id int64, settledAt time.Time) (bool, error) {
	var transitioned bool

	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&advance.Advance{}).
			Where("id = ? AND settlement_status = ?", id, advance.SettlementPending).
			Updates(map[string]interface{}{
				"status":            advance.StatusSettled,
				"settlement_status": advance.SettlementSettled,
				"settled_at":        settledAt,
				"updated_at":        time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		transitioned = true

		return tx.Table("expenses").
			Where("advance_id = ?", id).
			Updates(map[string]interface{}{
				"settlement_status": advance.SettlementSettled,
				"updated_at":        time.Now(),
			}).Error
	})

	return transitioned, err
}

func (r *AdvanceRepository) MarkCancelled(id int64) (bool, error) {
	res := r.db.Model(&advance.Advance{}).
		Where("id = ? AND status = ?", id, advance.StatusActive).
		Updates(map[string]interface{}{
			"status":     advance.StatusCancelled,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
