package postgres

import (
	"github.com/fieldops/advance-settlement/internal/advance"
	"gorm.io/gorm"
)

// ExpenseReader reads expense rows linked to an advance. It lives here rather
// than in the expense package so the settlement rules own their read model.
type ExpenseReader struct {
	db *gorm.DB
}

func NewExpenseReader(db *gorm.DB) advance.ExpenseReader {
	return &ExpenseReader{db: db}
}

func (r *ExpenseReader) ListByAdvanceID(advanceID int64) ([]advance.LinkedExpense, error) {
	rows, err := r.db.Table("expenses").
		Select("id, total_paise, settlement_status").
		Where("advance_id = ?", advanceID).
		Order("id ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var linked []advance.LinkedExpense
	for rows.Next() {
		var e advance.LinkedExpense
		var status string
		if err := rows.Scan(&e.ID, &e.TotalPaise, &status); err != nil {
			return nil, err
		}
		e.SettlementStatus = advance.SettlementStatus(status)
		linked = append(linked, e)
	}
	return linked, rows.Err()
}
