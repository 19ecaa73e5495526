package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"medtrack/internal/model"
)

// cadenceColumns are overwritten when a schedule is upserted.
var cadenceColumns = []string{"schedule_type", "interval_hours", "times_per_day", "notes", "is_active"}

// DrugScheduleRepository defines persistence operations for drug schedules.
type DrugScheduleRepository interface {
	List(ctx context.Context, userID uint) ([]model.DrugSchedule, error)
	// Upsert stores the one schedule of (user, drug), replacing any previous one.
	Upsert(ctx context.Context, schedule *model.DrugSchedule) (*model.DrugSchedule, error)
	Delete(ctx context.Context, userID, id uint) error
}

type drugScheduleRepository struct {
	db *gorm.DB
}

// NewDrugScheduleRepository builds a GORM-backed repository.
func NewDrugScheduleRepository(db *gorm.DB) DrugScheduleRepository {
	return &drugScheduleRepository{db: db}
}

func (r *drugScheduleRepository) List(ctx context.Context, userID uint) ([]model.DrugSchedule, error) {
	out := []model.DrugSchedule{}
	err := r.db.WithContext(ctx).
		Table("drug_schedules AS ds").
		Select("ds.*, d.name AS drug_name").
		Joins("JOIN drugs d ON d.id = ds.drug_id").
		Where("ds.user_id = ?", userID).
		Order("d.name").
		Order("ds.id").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *drugScheduleRepository) Upsert(ctx context.Context, schedule *model.DrugSchedule) (*model.DrugSchedule, error) {
	db := r.db.WithContext(ctx)
	schedule.IsActive = true
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "drug_id"}},
		DoUpdates: clause.AssignmentColumns(cadenceColumns),
	}).Create(schedule).Error
	if err != nil {
		return nil, err
	}
	// On conflict the insert id is not the stored row's id; read it back.
	var stored model.DrugSchedule
	if err := db.Where("user_id = ? AND drug_id = ?", schedule.UserID, schedule.DrugID).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *drugScheduleRepository) Delete(ctx context.Context, userID, id uint) error {
	return deleteOwned(r.db.WithContext(ctx), &model.DrugSchedule{}, userID, id)
}

// ProcedureScheduleRepository defines persistence operations for procedure schedules.
type ProcedureScheduleRepository interface {
	List(ctx context.Context, userID uint) ([]model.ProcedureSchedule, error)
	Upsert(ctx context.Context, schedule *model.ProcedureSchedule) (*model.ProcedureSchedule, error)
	Delete(ctx context.Context, userID, id uint) error
}

type procedureScheduleRepository struct {
	db *gorm.DB
}

// NewProcedureScheduleRepository builds a GORM-backed repository.
func NewProcedureScheduleRepository(db *gorm.DB) ProcedureScheduleRepository {
	return &procedureScheduleRepository{db: db}
}

func (r *procedureScheduleRepository) List(ctx context.Context, userID uint) ([]model.ProcedureSchedule, error) {
	out := []model.ProcedureSchedule{}
	err := r.db.WithContext(ctx).
		Table("procedure_schedules AS ps").
		Select("ps.*, mp.name AS procedure_name").
		Joins("JOIN medical_procedures mp ON mp.id = ps.procedure_id").
		Where("ps.user_id = ?", userID).
		Order("mp.name").
		Order("ps.id").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *procedureScheduleRepository) Upsert(ctx context.Context, schedule *model.ProcedureSchedule) (*model.ProcedureSchedule, error) {
	db := r.db.WithContext(ctx)
	schedule.IsActive = true
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "procedure_id"}},
		DoUpdates: clause.AssignmentColumns(cadenceColumns),
	}).Create(schedule).Error
	if err != nil {
		return nil, err
	}
	var stored model.ProcedureSchedule
	if err := db.Where("user_id = ? AND procedure_id = ?", schedule.UserID, schedule.ProcedureID).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *procedureScheduleRepository) Delete(ctx context.Context, userID, id uint) error {
	return deleteOwned(r.db.WithContext(ctx), &model.ProcedureSchedule{}, userID, id)
}
