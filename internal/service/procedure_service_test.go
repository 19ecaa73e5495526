package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	apperrors "medtrack/internal/errors"
	"medtrack/internal/export"
	"medtrack/internal/model"
	"medtrack/internal/repository"
)

type procedureMocks struct {
	procedures *MockProcedureRepository
	records    *MockProcedureRecordRepository
	schedules  *MockProcedureScheduleRepository
}

func newProcedureService(now time.Time) (*procedureService, procedureMocks) {
	m := procedureMocks{
		procedures: new(MockProcedureRepository),
		records:    new(MockProcedureRecordRepository),
		schedules:  new(MockProcedureScheduleRepository),
	}
	svc := NewProcedureService(m.procedures, m.records, m.schedules).(*procedureService)
	svc.now = func() time.Time { return now }
	return svc, m
}

func TestProcedureService_Definitions(t *testing.T) {
	svc, m := newProcedureService(time.Now())
	ctx := context.Background()

	m.procedures.On("Create", mock.Anything, mock.MatchedBy(func(p *model.Procedure) bool {
		return p.UserID == 1 && p.Name == "Physio"
	})).Return(nil)
	m.procedures.On("Update", mock.Anything, uint(1), uint(3), "Massage").Return(&model.Procedure{ID: 3, Name: "Massage"}, nil)
	m.procedures.On("Update", mock.Anything, uint(2), uint(3), "Massage").Return(nil, gorm.ErrRecordNotFound)
	m.procedures.On("Delete", mock.Anything, uint(2), uint(3)).Return(gorm.ErrRecordNotFound)

	p, err := svc.CreateProcedure(ctx, 1, "Physio")
	require.NoError(t, err)
	assert.Equal(t, "Physio", p.Name)

	p, err = svc.UpdateProcedure(ctx, 1, 3, "Massage")
	require.NoError(t, err)
	assert.Equal(t, "Massage", p.Name)

	_, err = svc.UpdateProcedure(ctx, 2, 3, "Massage")
	assert.ErrorIs(t, err, apperrors.ErrProcedureNotFound)
	assert.ErrorIs(t, svc.DeleteProcedure(ctx, 2, 3), apperrors.ErrProcedureNotFound)
	m.procedures.AssertExpectations(t)
}

func TestProcedureService_RecordProcedure(t *testing.T) {
	now := time.Date(2024, 5, 2, 9, 15, 0, 0, time.UTC)
	date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	svc, m := newProcedureService(now)
	m.procedures.On("FindOwned", mock.Anything, uint(1), uint(3)).Return(&model.Procedure{ID: 3}, nil)
	m.procedures.On("FindOwned", mock.Anything, uint(1), uint(4)).Return(nil, gorm.ErrRecordNotFound)
	m.records.On("Create", mock.Anything, mock.AnythingOfType("*model.ProcedureRecord")).Return(nil)

	rec, err := svc.RecordProcedure(context.Background(), 1, ProcedureRecordInput{ProcedureID: 3, Date: date})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 9, 15, 0, 0, time.UTC), rec.PerformedAt)
	assert.Nil(t, rec.Notes)

	_, err = svc.RecordProcedure(context.Background(), 1, ProcedureRecordInput{ProcedureID: 4, Date: date})
	assert.ErrorIs(t, err, apperrors.ErrProcedureNotFound)

	m.records.On("Delete", mock.Anything, uint(1), uint(77)).Return(gorm.ErrRecordNotFound)
	assert.ErrorIs(t, svc.DeleteRecord(context.Background(), 1, 77), apperrors.ErrProcedureRecordNotFound)
}

func TestProcedureService_ListRecordsByProcedure(t *testing.T) {
	svc, m := newProcedureService(time.Now())
	procedureID := uint(3)
	m.records.On("List", mock.Anything, uint(1), repository.EventFilter{DefinitionID: &procedureID}).
		Return([]model.ProcedureRecord{{ID: 1, ProcedureID: 3}}, nil)

	out, err := svc.ListRecords(context.Background(), 1, EventQuery{DefinitionID: &procedureID})
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestProcedureService_UpsertSchedule(t *testing.T) {
	svc, m := newProcedureService(time.Now())
	perDay := 2
	m.procedures.On("FindOwned", mock.Anything, uint(1), uint(3)).Return(&model.Procedure{ID: 3}, nil)
	m.schedules.On("Upsert", mock.Anything, mock.MatchedBy(func(s *model.ProcedureSchedule) bool {
		return s.ProcedureID == 3 && s.ScheduleType == model.SchedulePerDay && *s.TimesPerDay == 2
	})).Return(&model.ProcedureSchedule{ID: 1}, nil)

	_, err := svc.UpsertSchedule(context.Background(), 1, 3, model.Cadence{ScheduleType: model.SchedulePerDay, TimesPerDay: &perDay})
	require.NoError(t, err)

	_, err = svc.UpsertSchedule(context.Background(), 1, 3, model.Cadence{ScheduleType: "hourly"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidScheduleType)
	m.schedules.AssertExpectations(t)
}

func TestProcedureService_Export(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	t.Run("start after end", func(t *testing.T) {
		svc, m := newProcedureService(time.Now())
		_, err := svc.Export(context.Background(), 1, end, start, nil)
		assert.ErrorIs(t, err, apperrors.ErrInvalidDateRange)
		m.records.AssertNotCalled(t, "ListForExport", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("writes workbook", func(t *testing.T) {
		svc, m := newProcedureService(time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC))
		m.records.On("ListForExport", mock.Anything, uint(1), repository.DateRange{Start: start, End: end}, (*uint)(nil)).
			Return([]model.ProcedureRecord{{
				ProcedureDate: datatypes.Date(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)),
				PerformedAt:   time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC),
				ProcedureName: "Physio",
			}}, nil)

		file, err := svc.Export(context.Background(), 1, start, end, nil)
		require.NoError(t, err)
		assert.Equal(t, "procedure_records_2024-03-01_to_2024-03-31.xlsx", file.Filename)

		f, err := excelize.OpenReader(bytes.NewReader(file.Content))
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows(export.SheetName)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "02/03/2024", rows[1][0])
		assert.Equal(t, "08:00", rows[1][1])
	})
}
