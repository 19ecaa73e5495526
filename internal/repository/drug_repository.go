package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"medtrack/internal/model"
)

// DrugRepository defines persistence operations for drug definitions.
type DrugRepository interface {
	List(ctx context.Context, userID uint) ([]model.Drug, error)
	FindOwned(ctx context.Context, userID, id uint) (*model.Drug, error)
	Create(ctx context.Context, drug *model.Drug) error
	// Update changes an owned drug and returns the stored row.
	Update(ctx context.Context, userID, id uint, name string, unit model.UnitType, dosage decimal.NullDecimal) (*model.Drug, error)
	Delete(ctx context.Context, userID, id uint) error
}

type drugRepository struct {
	db *gorm.DB
}

// NewDrugRepository builds a GORM-backed repository.
func NewDrugRepository(db *gorm.DB) DrugRepository {
	return &drugRepository{db: db}
}

// List returns the user's drugs ordered by name.
func (r *drugRepository) List(ctx context.Context, userID uint) ([]model.Drug, error) {
	drugs := []model.Drug{}
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("name").Order("id").Find(&drugs).Error
	if err != nil {
		return nil, err
	}
	return drugs, nil
}

func (r *drugRepository) FindOwned(ctx context.Context, userID, id uint) (*model.Drug, error) {
	var drug model.Drug
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&drug).Error; err != nil {
		return nil, err
	}
	return &drug, nil
}

func (r *drugRepository) Create(ctx context.Context, drug *model.Drug) error {
	return r.db.WithContext(ctx).Create(drug).Error
}

func (r *drugRepository) Update(ctx context.Context, userID, id uint, name string, unit model.UnitType, dosage decimal.NullDecimal) (*model.Drug, error) {
	db := r.db.WithContext(ctx)
	err := db.Model(&model.Drug{}).Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{
			"name":           name,
			"unit_type":      unit,
			"default_dosage": dosage,
		}).Error
	if err != nil {
		return nil, err
	}
	// Re-read instead of trusting RowsAffected: MySQL reports 0 for unchanged rows.
	return r.FindOwned(ctx, userID, id)
}

// Delete removes an owned drug. Consumptions and the schedule go with it.
func (r *drugRepository) Delete(ctx context.Context, userID, id uint) error {
	return deleteOwned(r.db.WithContext(ctx), &model.Drug{}, userID, id)
}
