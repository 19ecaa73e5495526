package repository

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"medtrack/internal/model"
)

// ConsumptionRepository defines persistence operations for drug consumptions.
type ConsumptionRepository interface {
	List(ctx context.Context, userID uint, filter EventFilter) ([]model.Consumption, error)
	ListForDate(ctx context.Context, userID uint, day time.Time) ([]model.Consumption, error)
	Create(ctx context.Context, consumption *model.Consumption) error
	Delete(ctx context.Context, userID, id uint) error
}

type consumptionRepository struct {
	db *gorm.DB
}

// NewConsumptionRepository builds a GORM-backed repository.
func NewConsumptionRepository(db *gorm.DB) ConsumptionRepository {
	return &consumptionRepository{db: db}
}

func (r *consumptionRepository) joined(ctx context.Context, userID uint) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("drug_consumptions AS dc").
		Select("dc.*, d.name AS drug_name, d.unit_type AS drug_unit_type").
		Joins("JOIN drugs d ON d.id = dc.drug_id").
		Where("dc.user_id = ?", userID)
}

// List returns consumptions newest first, joined with their drug.
func (r *consumptionRepository) List(ctx context.Context, userID uint, filter EventFilter) ([]model.Consumption, error) {
	out := []model.Consumption{}
	q := filter.apply(r.joined(ctx, userID), "dc.consumption_date", "dc.drug_id").
		Order("dc.consumption_date DESC").
		Order("dc.consumed_at DESC").
		Order("dc.id DESC")
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListForDate returns the consumptions of one calendar day, latest first.
func (r *consumptionRepository) ListForDate(ctx context.Context, userID uint, day time.Time) ([]model.Consumption, error) {
	out := []model.Consumption{}
	err := r.joined(ctx, userID).
		Where("dc.consumption_date = ?", datatypes.Date(day)).
		Order("dc.consumed_at DESC").
		Order("dc.id DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *consumptionRepository) Create(ctx context.Context, consumption *model.Consumption) error {
	return r.db.WithContext(ctx).Create(consumption).Error
}

func (r *consumptionRepository) Delete(ctx context.Context, userID, id uint) error {
	return deleteOwned(r.db.WithContext(ctx), &model.Consumption{}, userID, id)
}
