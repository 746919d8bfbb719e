package postgres

import (
	"database/sql"

	"github.com/fieldops/advance-settlement/internal/expense"
	"gorm.io/gorm"
)

// ExpenseRepository implements the expense.Repository interface using GORM
type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) expense.Repository {
	return &ExpenseRepository{db: db}
}

// Create saves a new expense. For advance-linked expenses the advance's
// settlement status is re-checked inside the transaction so a settle racing
// this write cannot slip an expense under a settled advance.
func (r *ExpenseRepository) Create(exp *expense.Expense) error {
	if exp.AdvanceID == nil {
		return r.db.Create(exp).Error
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		var status string
		row := tx.Raw("SELECT settlement_status FROM advances WHERE id = ?", *exp.AdvanceID).Row()
		if err := row.Scan(&status); err != nil {
			if err == sql.ErrNoRows {
				return expense.ErrAdvanceNotFound
			}
			return err
		}
		if expense.SettlementStatus(status) != expense.SettlementPending {
			return expense.ErrAdvanceNotActive
		}

		return tx.Create(exp).Error
	})
}

func (r *ExpenseRepository) GetByID(id int64) (*expense.Expense, error) {
	var exp expense.Expense
	err := r.db.Where("id = ?", id).First(&exp).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, expense.ErrExpenseNotFound
		}
		return nil, err
	}
	return &exp, nil
}

func (r *ExpenseRepository) GetByUserID(userID int64, limit, offset int) ([]*expense.Expense, error) {
	var expenses []*expense.Expense
	err := r.db.Where("user_id = ?", userID).
		Order("expense_date DESC").
		Limit(limit).
		Offset(offset).
		Find(&expenses).Error
	return expenses, err
}

func (r *ExpenseRepository) GetAll(limit, offset int) ([]*expense.Expense, error) {
	var expenses []*expense.Expense
	err := r.db.Order("expense_date DESC").
		Limit(limit).
		Offset(offset).
		Find(&expenses).Error
	return expenses, err
}

func (r *ExpenseRepository) GetByAdvanceID(advanceID int64) ([]*expense.Expense, error) {
	var expenses []*expense.Expense
	err := r.db.Where("advance_id = ?", advanceID).
		Order("id ASC").
		Find(&expenses).Error
	return expenses, err
}

func (r *ExpenseRepository) GetWithoutAdvance(limit, offset int) ([]*expense.Expense, error) {
	var expenses []*expense.Expense
	err := r.db.Where("advance_id IS NULL").
		Order("expense_date DESC").
		Limit(limit).
		Offset(offset).
		Find(&expenses).Error
	return expenses, err
}

func (r *ExpenseRepository) CountByAdvanceID(advanceID int64) (int64, error) {
	var count int64
	err := r.db.Model(&expense.Expense{}).
		Where("advance_id = ?", advanceID).
		Count(&count).Error
	return count, err
}

// Update rewrites a pending expense's mutable fields. The conditional WHERE
// keeps a settle racing this write from mutating an already-settled row.
func (r *ExpenseRepository) Update(exp *expense.Expense) error {
	res := r.db.Model(&expense.Expense{}).
		Where("id = ? AND settlement_status = ?", exp.ID, expense.SettlementPending).
		Updates(map[string]interface{}{
			"expense_date":    exp.ExpenseDate,
			"category":        exp.Category,
			"fare_paise":      exp.FarePaise,
			"parking_paise":   exp.ParkingPaise,
			"oil_paise":       exp.OilPaise,
			"breakfast_paise": exp.BreakfastPaise,
			"others_paise":    exp.OthersPaise,
			"total_paise":     exp.TotalPaise,
			"notes":           exp.Notes,
			"updated_at":      exp.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return expense.ErrExpenseSettled
	}
	return nil
}

func (r *ExpenseRepository) Delete(id int64) error {
	return r.db.Delete(&expense.Expense{}, id).Error
}
