package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "medtrack/internal/errors"
)

func intPtr(v int) *int { return &v }

func TestCadence_Normalize(t *testing.T) {
	tests := []struct {
		name          string
		cadence       Cadence
		expectedError error
		wantInterval  *int
		wantPerDay    *int
	}{
		{
			name:         "interval keeps hours and drops per-day count",
			cadence:      Cadence{ScheduleType: ScheduleInterval, IntervalHours: intPtr(8), TimesPerDay: intPtr(3)},
			wantInterval: intPtr(8),
		},
		{
			name:       "per_day keeps count and drops hours",
			cadence:    Cadence{ScheduleType: SchedulePerDay, IntervalHours: intPtr(8), TimesPerDay: intPtr(2)},
			wantPerDay: intPtr(2),
		},
		{
			name:          "interval without hours",
			cadence:       Cadence{ScheduleType: ScheduleInterval},
			expectedError: apperrors.ErrInvalidIntervalHours,
		},
		{
			name:          "interval with zero hours",
			cadence:       Cadence{ScheduleType: ScheduleInterval, IntervalHours: intPtr(0)},
			expectedError: apperrors.ErrInvalidIntervalHours,
		},
		{
			name:          "per_day with negative count",
			cadence:       Cadence{ScheduleType: SchedulePerDay, TimesPerDay: intPtr(-1)},
			expectedError: apperrors.ErrInvalidTimesPerDay,
		},
		{
			name:          "unknown type",
			cadence:       Cadence{ScheduleType: "weekly", IntervalHours: intPtr(1)},
			expectedError: apperrors.ErrInvalidScheduleType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.cadence
			err := c.Normalize()
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantInterval, c.IntervalHours)
			assert.Equal(t, tt.wantPerDay, c.TimesPerDay)
		})
	}
}

func TestUnitType_Valid(t *testing.T) {
	assert.True(t, UnitPills.Valid())
	assert.True(t, UnitMg.Valid())
	assert.False(t, UnitType("ml").Valid())
	assert.False(t, UnitType("").Valid())
}
