package repository

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"medtrack/internal/model"
)

// ProcedureRepository defines persistence operations for procedure definitions.
type ProcedureRepository interface {
	List(ctx context.Context, userID uint) ([]model.Procedure, error)
	FindOwned(ctx context.Context, userID, id uint) (*model.Procedure, error)
	Create(ctx context.Context, procedure *model.Procedure) error
	Update(ctx context.Context, userID, id uint, name string) (*model.Procedure, error)
	Delete(ctx context.Context, userID, id uint) error
}

type procedureRepository struct {
	db *gorm.DB
}

// NewProcedureRepository builds a GORM-backed repository.
func NewProcedureRepository(db *gorm.DB) ProcedureRepository {
	return &procedureRepository{db: db}
}

func (r *procedureRepository) List(ctx context.Context, userID uint) ([]model.Procedure, error) {
	procedures := []model.Procedure{}
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("name").Order("id").Find(&procedures).Error
	if err != nil {
		return nil, err
	}
	return procedures, nil
}

func (r *procedureRepository) FindOwned(ctx context.Context, userID, id uint) (*model.Procedure, error) {
	var procedure model.Procedure
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&procedure).Error; err != nil {
		return nil, err
	}
	return &procedure, nil
}

func (r *procedureRepository) Create(ctx context.Context, procedure *model.Procedure) error {
	return r.db.WithContext(ctx).Create(procedure).Error
}

func (r *procedureRepository) Update(ctx context.Context, userID, id uint, name string) (*model.Procedure, error) {
	err := r.db.WithContext(ctx).Model(&model.Procedure{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("name", name).Error
	if err != nil {
		return nil, err
	}
	return r.FindOwned(ctx, userID, id)
}

func (r *procedureRepository) Delete(ctx context.Context, userID, id uint) error {
	return deleteOwned(r.db.WithContext(ctx), &model.Procedure{}, userID, id)
}

// ProcedureRecordRepository defines persistence operations for procedure records.
type ProcedureRecordRepository interface {
	List(ctx context.Context, userID uint, filter EventFilter) ([]model.ProcedureRecord, error)
	ListForDate(ctx context.Context, userID uint, day time.Time) ([]model.ProcedureRecord, error)
	// ListForExport returns every record in the range, oldest first.
	ListForExport(ctx context.Context, userID uint, rng DateRange, procedureID *uint) ([]model.ProcedureRecord, error)
	Create(ctx context.Context, record *model.ProcedureRecord) error
	Delete(ctx context.Context, userID, id uint) error
}

type procedureRecordRepository struct {
	db *gorm.DB
}

// NewProcedureRecordRepository builds a GORM-backed repository.
func NewProcedureRecordRepository(db *gorm.DB) ProcedureRecordRepository {
	return &procedureRecordRepository{db: db}
}

func (r *procedureRecordRepository) joined(ctx context.Context, userID uint) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("procedure_records AS pr").
		Select("pr.*, mp.name AS procedure_name").
		Joins("JOIN medical_procedures mp ON mp.id = pr.procedure_id").
		Where("pr.user_id = ?", userID)
}

func (r *procedureRecordRepository) List(ctx context.Context, userID uint, filter EventFilter) ([]model.ProcedureRecord, error) {
	out := []model.ProcedureRecord{}
	q := filter.apply(r.joined(ctx, userID), "pr.procedure_date", "pr.procedure_id").
		Order("pr.procedure_date DESC").
		Order("pr.performed_at DESC").
		Order("pr.id DESC")
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *procedureRecordRepository) ListForDate(ctx context.Context, userID uint, day time.Time) ([]model.ProcedureRecord, error) {
	out := []model.ProcedureRecord{}
	err := r.joined(ctx, userID).
		Where("pr.procedure_date = ?", datatypes.Date(day)).
		Order("pr.performed_at DESC").
		Order("pr.id DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *procedureRecordRepository) ListForExport(ctx context.Context, userID uint, rng DateRange, procedureID *uint) ([]model.ProcedureRecord, error) {
	out := []model.ProcedureRecord{}
	q := r.joined(ctx, userID).
		Where("pr.procedure_date BETWEEN ? AND ?", datatypes.Date(rng.Start), datatypes.Date(rng.End))
	if procedureID != nil {
		q = q.Where("pr.procedure_id = ?", *procedureID)
	}
	err := q.Order("pr.procedure_date ASC").
		Order("pr.performed_at ASC").
		Order("pr.id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *procedureRecordRepository) Create(ctx context.Context, record *model.ProcedureRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *procedureRecordRepository) Delete(ctx context.Context, userID, id uint) error {
	return deleteOwned(r.db.WithContext(ctx), &model.ProcedureRecord{}, userID, id)
}
