package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"medtrack/internal/model"
	"medtrack/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByLogin(ctx context.Context, login string) (*model.User, error) {
	args := m.Called(ctx, login)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string, excludeID uint) (bool, error) {
	args := m.Called(ctx, username, email, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, id uint, username, email string) (*model.User, error) {
	args := m.Called(ctx, id, username, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) UpdatePasswordHash(ctx context.Context, id uint, hash string) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

// MockLoginGuard is a mock implementation of LoginGuardInterface.
type MockLoginGuard struct {
	mock.Mock
}

func (m *MockLoginGuard) Allowed(ctx context.Context, scope, identifier string) (bool, error) {
	args := m.Called(ctx, scope, identifier)
	return args.Bool(0), args.Error(1)
}

func (m *MockLoginGuard) RecordFailure(ctx context.Context, scope, identifier string) error {
	args := m.Called(ctx, scope, identifier)
	return args.Error(0)
}

func (m *MockLoginGuard) Reset(ctx context.Context, scope, identifier string) error {
	args := m.Called(ctx, scope, identifier)
	return args.Error(0)
}

// MockDrugRepository is a mock implementation of DrugRepository.
type MockDrugRepository struct {
	mock.Mock
}

func (m *MockDrugRepository) List(ctx context.Context, userID uint) ([]model.Drug, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Drug), args.Error(1)
}

func (m *MockDrugRepository) FindOwned(ctx context.Context, userID, id uint) (*model.Drug, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Drug), args.Error(1)
}

func (m *MockDrugRepository) Create(ctx context.Context, drug *model.Drug) error {
	args := m.Called(ctx, drug)
	return args.Error(0)
}

func (m *MockDrugRepository) Update(ctx context.Context, userID, id uint, name string, unit model.UnitType, dosage decimal.NullDecimal) (*model.Drug, error) {
	args := m.Called(ctx, userID, id, name, unit, dosage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Drug), args.Error(1)
}

func (m *MockDrugRepository) Delete(ctx context.Context, userID, id uint) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

// MockConsumptionRepository is a mock implementation of ConsumptionRepository.
type MockConsumptionRepository struct {
	mock.Mock
}

func (m *MockConsumptionRepository) List(ctx context.Context, userID uint, filter repository.EventFilter) ([]model.Consumption, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Consumption), args.Error(1)
}

func (m *MockConsumptionRepository) ListForDate(ctx context.Context, userID uint, day time.Time) ([]model.Consumption, error) {
	args := m.Called(ctx, userID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Consumption), args.Error(1)
}

func (m *MockConsumptionRepository) Create(ctx context.Context, consumption *model.Consumption) error {
	args := m.Called(ctx, consumption)
	return args.Error(0)
}

func (m *MockConsumptionRepository) Delete(ctx context.Context, userID, id uint) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

// MockDrugScheduleRepository is a mock implementation of DrugScheduleRepository.
type MockDrugScheduleRepository struct {
	mock.Mock
}

func (m *MockDrugScheduleRepository) List(ctx context.Context, userID uint) ([]model.DrugSchedule, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DrugSchedule), args.Error(1)
}

func (m *MockDrugScheduleRepository) Upsert(ctx context.Context, schedule *model.DrugSchedule) (*model.DrugSchedule, error) {
	args := m.Called(ctx, schedule)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DrugSchedule), args.Error(1)
}

func (m *MockDrugScheduleRepository) Delete(ctx context.Context, userID, id uint) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

// MockProcedureRepository is a mock implementation of ProcedureRepository.
type MockProcedureRepository struct {
	mock.Mock
}

func (m *MockProcedureRepository) List(ctx context.Context, userID uint) ([]model.Procedure, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Procedure), args.Error(1)
}

func (m *MockProcedureRepository) FindOwned(ctx context.Context, userID, id uint) (*model.Procedure, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Procedure), args.Error(1)
}

func (m *MockProcedureRepository) Create(ctx context.Context, procedure *model.Procedure) error {
	args := m.Called(ctx, procedure)
	return args.Error(0)
}

func (m *MockProcedureRepository) Update(ctx context.Context, userID, id uint, name string) (*model.Procedure, error) {
	args := m.Called(ctx, userID, id, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Procedure), args.Error(1)
}

func (m *MockProcedureRepository) Delete(ctx context.Context, userID, id uint) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

// MockProcedureRecordRepository is a mock implementation of ProcedureRecordRepository.
type MockProcedureRecordRepository struct {
	mock.Mock
}

func (m *MockProcedureRecordRepository) List(ctx context.Context, userID uint, filter repository.EventFilter) ([]model.ProcedureRecord, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ProcedureRecord), args.Error(1)
}

func (m *MockProcedureRecordRepository) ListForDate(ctx context.Context, userID uint, day time.Time) ([]model.ProcedureRecord, error) {
	args := m.Called(ctx, userID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ProcedureRecord), args.Error(1)
}

func (m *MockProcedureRecordRepository) ListForExport(ctx context.Context, userID uint, rng repository.DateRange, procedureID *uint) ([]model.ProcedureRecord, error) {
	args := m.Called(ctx, userID, rng, procedureID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ProcedureRecord), args.Error(1)
}

func (m *MockProcedureRecordRepository) Create(ctx context.Context, record *model.ProcedureRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockProcedureRecordRepository) Delete(ctx context.Context, userID, id uint) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

// MockProcedureScheduleRepository is a mock implementation of ProcedureScheduleRepository.
type MockProcedureScheduleRepository struct {
	mock.Mock
}

func (m *MockProcedureScheduleRepository) List(ctx context.Context, userID uint) ([]model.ProcedureSchedule, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ProcedureSchedule), args.Error(1)
}

func (m *MockProcedureScheduleRepository) Upsert(ctx context.Context, schedule *model.ProcedureSchedule) (*model.ProcedureSchedule, error) {
	args := m.Called(ctx, schedule)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProcedureSchedule), args.Error(1)
}

func (m *MockProcedureScheduleRepository) Delete(ctx context.Context, userID, id uint) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}
