package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "medtrack/internal/errors"
)

func newContext(body string) echo.Context {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestBindRequired(t *testing.T) {
	const message = "drug_id, consumption_date, quantity, and unit_type are required"

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name: "all present, zero quantity allowed",
			body: `{"drug_id":"3","consumption_date":"2024-01-15","quantity":0,"unit_type":"pills"}`,
		},
		{
			name:    "blank id",
			body:    `{"drug_id":"","consumption_date":"2024-01-15","quantity":1,"unit_type":"pills"}`,
			wantErr: message,
		},
		{
			name:    "zero id",
			body:    `{"drug_id":0,"consumption_date":"2024-01-15","quantity":1,"unit_type":"pills"}`,
			wantErr: message,
		},
		{
			name:    "missing quantity",
			body:    `{"drug_id":3,"consumption_date":"2024-01-15","unit_type":"pills"}`,
			wantErr: message,
		},
		{
			name:    "malformed body",
			body:    `{"drug_id":`,
			wantErr: "Invalid request body",
		},
		{
			name:    "non numeric id",
			body:    `{"drug_id":"abc","consumption_date":"2024-01-15","quantity":1,"unit_type":"pills"}`,
			wantErr: "Invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req ConsumptionRequest
			err := bindRequired(newContext(tt.body), &req, message)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, uint(3), req.DrugID.Value)
				assert.True(t, req.Quantity.Valid)
				return
			}
			httpErr := apperrors.MapErrorToHTTP(err)
			assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
			assert.Equal(t, tt.wantErr, httpErr.Message)
		})
	}
}

func TestCadenceOf(t *testing.T) {
	var req DrugScheduleRequest
	require.NoError(t, bindRequired(newContext(`{"drug_id":1,"schedule_type":"per_day","interval_hours":"","times_per_day":"3"}`), &req, "required"))

	cadence := cadenceOf(req.ScheduleType, req.IntervalHours, req.TimesPerDay, req.Notes)
	assert.Equal(t, "per_day", string(cadence.ScheduleType))
	assert.Nil(t, cadence.IntervalHours)
	require.NotNil(t, cadence.TimesPerDay)
	assert.Equal(t, 3, *cadence.TimesPerDay)
}
