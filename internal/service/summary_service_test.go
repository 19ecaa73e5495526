package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"medtrack/internal/model"
)

func TestSummaryService_Today(t *testing.T) {
	// Late evening west of UTC: the local calendar date is still the 15th.
	local := time.FixedZone("UTC-5", -5*60*60)
	now := time.Date(2024, 1, 15, 22, 0, 0, 0, local)
	today := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	consumptions := new(MockConsumptionRepository)
	records := new(MockProcedureRecordRepository)
	consumptions.On("ListForDate", mock.Anything, uint(1), today).
		Return([]model.Consumption{{ID: 1, DrugName: "Aspirin"}}, nil)
	records.On("ListForDate", mock.Anything, uint(1), today).
		Return([]model.ProcedureRecord{}, nil)

	svc := NewSummaryService(consumptions, records).(*summaryService)
	svc.now = func() time.Time { return now }

	summary, err := svc.Today(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", summary.Date)
	require.Len(t, summary.Consumptions, 1)
	assert.Equal(t, "Aspirin", summary.Consumptions[0].DrugName)
	assert.Empty(t, summary.Procedures)
}

func TestSummaryService_TodayPropagatesErrors(t *testing.T) {
	consumptions := new(MockConsumptionRepository)
	records := new(MockProcedureRecordRepository)
	consumptions.On("ListForDate", mock.Anything, uint(1), mock.Anything).Return(nil, errors.New("db down"))

	svc := NewSummaryService(consumptions, records)
	_, err := svc.Today(context.Background(), 1)
	assert.Error(t, err)
	records.AssertNotCalled(t, "ListForDate", mock.Anything, mock.Anything, mock.Anything)
}
