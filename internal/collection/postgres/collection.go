package postgres

import (
	"errors"

	"github.com/fieldops/advance-settlement/internal/collection"
	"gorm.io/gorm"
)

type CollectionRepository struct {
	db *gorm.DB
}

func NewCollectionRepository(db *gorm.DB) *CollectionRepository {
	return &CollectionRepository{db: db}
}

func (r *CollectionRepository) Create(col *collection.Collection) error {
	return r.db.Create(col).Error
}

func (r *CollectionRepository) GetByID(id int64) (*collection.Collection, error) {
	var col collection.Collection
	err := r.db.First(&col, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, collection.ErrCollectionNotFound
		}
		return nil, err
	}
	return &col, nil
}

func (r *CollectionRepository) GetByEnteredBy(userID int64, limit, offset int) ([]*collection.Collection, error) {
	var collections []*collection.Collection
	err := r.db.
		Where("entered_by = ?", userID).
		Order("collection_date DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&collections).Error
	return collections, err
}

func (r *CollectionRepository) GetAll(limit, offset int) ([]*collection.Collection, error) {
	var collections []*collection.Collection
	err := r.db.
		Order("collection_date DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&collections).Error
	return collections, err
}

func (r *CollectionRepository) GetPendingApproval(limit, offset int) ([]*collection.Collection, error) {
	var collections []*collection.Collection
	err := r.db.
		Where("approved = ?", false).
		Order("collection_date ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&collections).Error
	return collections, err
}

func (r *CollectionRepository) Update(col *collection.Collection) error {
	return r.db.Save(col).Error
}
