package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"

	apperrors "medtrack/internal/errors"
	"medtrack/internal/export"
	"medtrack/internal/model"
	"medtrack/internal/repository"
)

// ProcedureRecordInput describes one performed procedure. PerformedAt
// defaults to Date at the current time of day.
type ProcedureRecordInput struct {
	ProcedureID uint
	Date        time.Time
	Notes       *string
	PerformedAt *time.Time
}

// ExportFile is a generated spreadsheet ready to be sent.
type ExportFile struct {
	Filename string
	Content  []byte
}

// ProcedureService manages procedure definitions, their records, schedules
// and spreadsheet export.
type ProcedureService interface {
	ListProcedures(ctx context.Context, userID uint) ([]model.Procedure, error)
	CreateProcedure(ctx context.Context, userID uint, name string) (*model.Procedure, error)
	UpdateProcedure(ctx context.Context, userID, procedureID uint, name string) (*model.Procedure, error)
	DeleteProcedure(ctx context.Context, userID, procedureID uint) error

	ListRecords(ctx context.Context, userID uint, q EventQuery) ([]model.ProcedureRecord, error)
	RecordProcedure(ctx context.Context, userID uint, in ProcedureRecordInput) (*model.ProcedureRecord, error)
	DeleteRecord(ctx context.Context, userID, recordID uint) error

	ListSchedules(ctx context.Context, userID uint) ([]model.ProcedureSchedule, error)
	UpsertSchedule(ctx context.Context, userID, procedureID uint, cadence model.Cadence) (*model.ProcedureSchedule, error)
	DeleteSchedule(ctx context.Context, userID, scheduleID uint) error

	Export(ctx context.Context, userID uint, start, end time.Time, procedureID *uint) (*ExportFile, error)
}

type procedureService struct {
	procedureRepo repository.ProcedureRepository
	recordRepo    repository.ProcedureRecordRepository
	scheduleRepo  repository.ProcedureScheduleRepository
	now           func() time.Time
}

// NewProcedureService creates a new procedure service.
func NewProcedureService(procedureRepo repository.ProcedureRepository, recordRepo repository.ProcedureRecordRepository, scheduleRepo repository.ProcedureScheduleRepository) ProcedureService {
	return &procedureService{
		procedureRepo: procedureRepo,
		recordRepo:    recordRepo,
		scheduleRepo:  scheduleRepo,
		now:           time.Now,
	}
}

func (s *procedureService) ListProcedures(ctx context.Context, userID uint) ([]model.Procedure, error) {
	procedures, err := s.procedureRepo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list procedures: %w", err)
	}
	return procedures, nil
}

func (s *procedureService) CreateProcedure(ctx context.Context, userID uint, name string) (*model.Procedure, error) {
	procedure := &model.Procedure{UserID: userID, Name: name}
	if err := s.procedureRepo.Create(ctx, procedure); err != nil {
		return nil, fmt.Errorf("create procedure: %w", err)
	}
	return procedure, nil
}

func (s *procedureService) UpdateProcedure(ctx context.Context, userID, procedureID uint, name string) (*model.Procedure, error) {
	procedure, err := s.procedureRepo.Update(ctx, userID, procedureID, name)
	if err != nil {
		return nil, notFound(err, apperrors.ErrProcedureNotFound, "update procedure")
	}
	return procedure, nil
}

func (s *procedureService) DeleteProcedure(ctx context.Context, userID, procedureID uint) error {
	if err := s.procedureRepo.Delete(ctx, userID, procedureID); err != nil {
		return notFound(err, apperrors.ErrProcedureNotFound, "delete procedure")
	}
	return nil
}

func (s *procedureService) ListRecords(ctx context.Context, userID uint, q EventQuery) ([]model.ProcedureRecord, error) {
	filter, err := q.filter()
	if err != nil {
		return nil, err
	}
	records, err := s.recordRepo.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list procedure records: %w", err)
	}
	return records, nil
}

func (s *procedureService) RecordProcedure(ctx context.Context, userID uint, in ProcedureRecordInput) (*model.ProcedureRecord, error) {
	if _, err := s.procedureRepo.FindOwned(ctx, userID, in.ProcedureID); err != nil {
		return nil, notFound(err, apperrors.ErrProcedureNotFound, "find procedure")
	}

	performedAt := atTimeOfDay(in.Date, s.now())
	if in.PerformedAt != nil {
		performedAt = *in.PerformedAt
	}
	record := &model.ProcedureRecord{
		UserID:        userID,
		ProcedureID:   in.ProcedureID,
		ProcedureDate: datatypes.Date(calendarDay(in.Date)),
		PerformedAt:   performedAt,
		Notes:         blankToNil(in.Notes),
	}
	if err := s.recordRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("create procedure record: %w", err)
	}
	return record, nil
}

func (s *procedureService) DeleteRecord(ctx context.Context, userID, recordID uint) error {
	if err := s.recordRepo.Delete(ctx, userID, recordID); err != nil {
		return notFound(err, apperrors.ErrProcedureRecordNotFound, "delete procedure record")
	}
	return nil
}

func (s *procedureService) ListSchedules(ctx context.Context, userID uint) ([]model.ProcedureSchedule, error) {
	schedules, err := s.scheduleRepo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list procedure schedules: %w", err)
	}
	return schedules, nil
}

func (s *procedureService) UpsertSchedule(ctx context.Context, userID, procedureID uint, cadence model.Cadence) (*model.ProcedureSchedule, error) {
	if err := cadence.Normalize(); err != nil {
		return nil, err
	}
	if _, err := s.procedureRepo.FindOwned(ctx, userID, procedureID); err != nil {
		return nil, notFound(err, apperrors.ErrProcedureNotFound, "find procedure")
	}
	cadence.Notes = blankToNil(cadence.Notes)

	schedule, err := s.scheduleRepo.Upsert(ctx, &model.ProcedureSchedule{
		UserID:      userID,
		ProcedureID: procedureID,
		Cadence:     cadence,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert procedure schedule: %w", err)
	}
	return schedule, nil
}

func (s *procedureService) DeleteSchedule(ctx context.Context, userID, scheduleID uint) error {
	if err := s.scheduleRepo.Delete(ctx, userID, scheduleID); err != nil {
		return notFound(err, apperrors.ErrScheduleNotFound, "delete procedure schedule")
	}
	return nil
}

// Export renders every record between start and end, inclusive, oldest
// first.
func (s *procedureService) Export(ctx context.Context, userID uint, start, end time.Time, procedureID *uint) (*ExportFile, error) {
	if start.After(end) {
		return nil, apperrors.ErrInvalidDateRange
	}
	records, err := s.recordRepo.ListForExport(ctx, userID, repository.DateRange{Start: start, End: end}, procedureID)
	if err != nil {
		return nil, fmt.Errorf("list procedure records: %w", err)
	}

	var buf bytes.Buffer
	if err := export.WriteProcedureRecords(&buf, records, s.now().Location()); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return &ExportFile{
		Filename: fmt.Sprintf("procedure_records_%s_to_%s.xlsx", start.Format(DateLayout), end.Format(DateLayout)),
		Content:  buf.Bytes(),
	}, nil
}
