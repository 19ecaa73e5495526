package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	apperrors "medtrack/internal/errors"
	"medtrack/internal/model"
	"medtrack/internal/repository"
)

// DrugInput is the editable part of a drug definition.
type DrugInput struct {
	Name          string
	UnitType      model.UnitType
	DefaultDosage decimal.NullDecimal
}

// ConsumptionInput describes one taken dose. ConsumedAt defaults to Date
// at the current time of day.
type ConsumptionInput struct {
	DrugID     uint
	Date       time.Time
	Quantity   decimal.Decimal
	UnitType   model.UnitType
	Notes      *string
	ConsumedAt *time.Time
}

// DrugService manages drug definitions, their consumption log and schedules.
type DrugService interface {
	ListDrugs(ctx context.Context, userID uint) ([]model.Drug, error)
	CreateDrug(ctx context.Context, userID uint, in DrugInput) (*model.Drug, error)
	UpdateDrug(ctx context.Context, userID, drugID uint, in DrugInput) (*model.Drug, error)
	DeleteDrug(ctx context.Context, userID, drugID uint) error

	ListConsumptions(ctx context.Context, userID uint, q EventQuery) ([]model.Consumption, error)
	RecordConsumption(ctx context.Context, userID uint, in ConsumptionInput) (*model.Consumption, error)
	DeleteConsumption(ctx context.Context, userID, consumptionID uint) error

	ListSchedules(ctx context.Context, userID uint) ([]model.DrugSchedule, error)
	UpsertSchedule(ctx context.Context, userID, drugID uint, cadence model.Cadence) (*model.DrugSchedule, error)
	DeleteSchedule(ctx context.Context, userID, scheduleID uint) error
}

type drugService struct {
	drugRepo        repository.DrugRepository
	consumptionRepo repository.ConsumptionRepository
	scheduleRepo    repository.DrugScheduleRepository
	now             func() time.Time
}

// NewDrugService creates a new drug service.
func NewDrugService(drugRepo repository.DrugRepository, consumptionRepo repository.ConsumptionRepository, scheduleRepo repository.DrugScheduleRepository) DrugService {
	return &drugService{
		drugRepo:        drugRepo,
		consumptionRepo: consumptionRepo,
		scheduleRepo:    scheduleRepo,
		now:             time.Now,
	}
}

func (s *drugService) ListDrugs(ctx context.Context, userID uint) ([]model.Drug, error) {
	drugs, err := s.drugRepo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list drugs: %w", err)
	}
	return drugs, nil
}

func (s *drugService) CreateDrug(ctx context.Context, userID uint, in DrugInput) (*model.Drug, error) {
	if !in.UnitType.Valid() {
		return nil, apperrors.ErrInvalidUnitType
	}
	drug := &model.Drug{
		UserID:        userID,
		Name:          in.Name,
		UnitType:      in.UnitType,
		DefaultDosage: in.DefaultDosage,
	}
	if err := s.drugRepo.Create(ctx, drug); err != nil {
		return nil, fmt.Errorf("create drug: %w", err)
	}
	return drug, nil
}

func (s *drugService) UpdateDrug(ctx context.Context, userID, drugID uint, in DrugInput) (*model.Drug, error) {
	if !in.UnitType.Valid() {
		return nil, apperrors.ErrInvalidUnitType
	}
	drug, err := s.drugRepo.Update(ctx, userID, drugID, in.Name, in.UnitType, in.DefaultDosage)
	if err != nil {
		return nil, notFound(err, apperrors.ErrDrugNotFound, "update drug")
	}
	return drug, nil
}

// DeleteDrug removes the drug along with its consumptions and schedule.
func (s *drugService) DeleteDrug(ctx context.Context, userID, drugID uint) error {
	if err := s.drugRepo.Delete(ctx, userID, drugID); err != nil {
		return notFound(err, apperrors.ErrDrugNotFound, "delete drug")
	}
	return nil
}

func (s *drugService) ListConsumptions(ctx context.Context, userID uint, q EventQuery) ([]model.Consumption, error) {
	filter, err := q.filter()
	if err != nil {
		return nil, err
	}
	consumptions, err := s.consumptionRepo.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list consumptions: %w", err)
	}
	return consumptions, nil
}

func (s *drugService) RecordConsumption(ctx context.Context, userID uint, in ConsumptionInput) (*model.Consumption, error) {
	if !in.UnitType.Valid() {
		return nil, apperrors.ErrInvalidUnitType
	}
	if _, err := s.drugRepo.FindOwned(ctx, userID, in.DrugID); err != nil {
		return nil, notFound(err, apperrors.ErrDrugNotFound, "find drug")
	}

	consumedAt := atTimeOfDay(in.Date, s.now())
	if in.ConsumedAt != nil {
		consumedAt = *in.ConsumedAt
	}
	consumption := &model.Consumption{
		UserID:          userID,
		DrugID:          in.DrugID,
		ConsumptionDate: datatypes.Date(calendarDay(in.Date)),
		ConsumedAt:      consumedAt,
		Quantity:        in.Quantity,
		UnitType:        in.UnitType,
		Notes:           blankToNil(in.Notes),
	}
	if err := s.consumptionRepo.Create(ctx, consumption); err != nil {
		return nil, fmt.Errorf("create consumption: %w", err)
	}
	return consumption, nil
}

func (s *drugService) DeleteConsumption(ctx context.Context, userID, consumptionID uint) error {
	if err := s.consumptionRepo.Delete(ctx, userID, consumptionID); err != nil {
		return notFound(err, apperrors.ErrConsumptionNotFound, "delete consumption")
	}
	return nil
}

func (s *drugService) ListSchedules(ctx context.Context, userID uint) ([]model.DrugSchedule, error) {
	schedules, err := s.scheduleRepo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list drug schedules: %w", err)
	}
	return schedules, nil
}

// UpsertSchedule stores the drug's single schedule, replacing and
// re-activating any previous one.
func (s *drugService) UpsertSchedule(ctx context.Context, userID, drugID uint, cadence model.Cadence) (*model.DrugSchedule, error) {
	if err := cadence.Normalize(); err != nil {
		return nil, err
	}
	if _, err := s.drugRepo.FindOwned(ctx, userID, drugID); err != nil {
		return nil, notFound(err, apperrors.ErrDrugNotFound, "find drug")
	}
	cadence.Notes = blankToNil(cadence.Notes)

	schedule, err := s.scheduleRepo.Upsert(ctx, &model.DrugSchedule{
		UserID:  userID,
		DrugID:  drugID,
		Cadence: cadence,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert drug schedule: %w", err)
	}
	return schedule, nil
}

func (s *drugService) DeleteSchedule(ctx context.Context, userID, scheduleID uint) error {
	if err := s.scheduleRepo.Delete(ctx, userID, scheduleID); err != nil {
		return notFound(err, apperrors.ErrScheduleNotFound, "delete drug schedule")
	}
	return nil
}

// notFound maps a missing row to the domain error and wraps anything else.
func notFound(err, domainErr error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErr
	}
	return fmt.Errorf("%s: %w", op, err)
}
