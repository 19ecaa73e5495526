package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "medtrack/internal/errors"
	"medtrack/internal/model"
	"medtrack/internal/service"
)

// DrugHandler serves drug definitions, consumptions, schedules and the
// daily summary.
type DrugHandler struct {
	drugService    service.DrugService
	summaryService service.SummaryService
}

// NewDrugHandler creates a new drug handler.
func NewDrugHandler(drugService service.DrugService, summaryService service.SummaryService) *DrugHandler {
	return &DrugHandler{drugService: drugService, summaryService: summaryService}
}

// DrugRequest is the body of drug create and update.
type DrugRequest struct {
	Name          string          `json:"name" validate:"required"`
	UnitType      model.UnitType  `json:"unit_type" validate:"required"`
	DefaultDosage optionalDecimal `json:"default_dosage" swaggertype:"number"`
}

func (r DrugRequest) input() service.DrugInput {
	return service.DrugInput{
		Name:          r.Name,
		UnitType:      r.UnitType,
		DefaultDosage: r.DefaultDosage.NullDecimal,
	}
}

// ConsumptionRequest records one taken dose.
type ConsumptionRequest struct {
	DrugID          flexUint        `json:"drug_id" validate:"required" swaggertype:"integer"`
	ConsumptionDate string          `json:"consumption_date" validate:"required" example:"2024-01-15"`
	Quantity        optionalDecimal `json:"quantity" validate:"required" swaggertype:"number"`
	UnitType        model.UnitType  `json:"unit_type" validate:"required"`
	Notes           *string         `json:"notes"`
	ConsumedAt      optionalTime    `json:"consumed_at" swaggertype:"string" format:"date-time"`
}

// DrugScheduleRequest creates or replaces the schedule of a drug.
type DrugScheduleRequest struct {
	DrugID        flexUint `json:"drug_id" validate:"required" swaggertype:"integer"`
	ScheduleType  string   `json:"schedule_type" validate:"required" enums:"interval,per_day"`
	IntervalHours flexInt  `json:"interval_hours" swaggertype:"integer"`
	TimesPerDay   flexInt  `json:"times_per_day" swaggertype:"integer"`
	Notes         *string  `json:"notes"`
}

func cadenceOf(scheduleType string, intervalHours, timesPerDay flexInt, notes *string) model.Cadence {
	return model.Cadence{
		ScheduleType:  model.ScheduleType(scheduleType),
		IntervalHours: intervalHours.Ptr(),
		TimesPerDay:   timesPerDay.Ptr(),
		Notes:         notes,
	}
}

// ListDrugs godoc
// @Summary List the caller's drugs
// @Tags drugs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string][]model.Drug
// @Failure 401 {object} errors.ErrorResponse
// @Router /drugs [get]
func (h *DrugHandler) ListDrugs(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	drugs, err := h.drugService.ListDrugs(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"drugs": drugs})
}

// CreateDrug godoc
// @Summary Create a drug definition
// @Tags drugs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body DrugRequest true "Drug"
// @Success 201 {object} map[string]model.Drug
// @Failure 400 {object} errors.ErrorResponse
// @Router /drugs [post]
func (h *DrugHandler) CreateDrug(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req DrugRequest
	if err := bindRequired(c, &req, "Name and unit_type are required"); err != nil {
		return err
	}

	drug, err := h.drugService.CreateDrug(c.Request().Context(), userID, req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"drug": drug})
}

// UpdateDrug godoc
// @Summary Update a drug definition
// @Tags drugs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Drug ID"
// @Param request body DrugRequest true "Drug"
// @Success 200 {object} map[string]model.Drug
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /drugs/{id} [put]
func (h *DrugHandler) UpdateDrug(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	drugID, err := pathID(c, apperrors.ErrDrugNotFound)
	if err != nil {
		return err
	}
	var req DrugRequest
	if err := bindRequired(c, &req, "Name and unit_type are required"); err != nil {
		return err
	}

	drug, err := h.drugService.UpdateDrug(c.Request().Context(), userID, drugID, req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"drug": drug})
}

// DeleteDrug godoc
// @Summary Delete a drug with its consumptions and schedule
// @Tags drugs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Drug ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} errors.ErrorResponse
// @Router /drugs/{id} [delete]
func (h *DrugHandler) DeleteDrug(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	drugID, err := pathID(c, apperrors.ErrDrugNotFound)
	if err != nil {
		return err
	}
	if err := h.drugService.DeleteDrug(c.Request().Context(), userID, drugID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Drug deleted successfully"})
}

// ListConsumptions godoc
// @Summary List consumptions
// @Description With both dates, every consumption in the inclusive range; otherwise the 100 most recent.
// @Tags drugs
// @Produce json
// @Security BearerAuth
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD"
// @Param drug_id query int false "Drug ID"
// @Success 200 {object} map[string][]model.Consumption
// @Failure 400 {object} errors.ErrorResponse
// @Router /drugs/consumptions [get]
func (h *DrugHandler) ListConsumptions(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	q, err := eventQuery(c, "drug_id")
	if err != nil {
		return err
	}
	consumptions, err := h.drugService.ListConsumptions(c.Request().Context(), userID, q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"consumptions": consumptions})
}

// RecordConsumption godoc
// @Summary Record a consumption
// @Tags drugs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ConsumptionRequest true "Consumption"
// @Success 201 {object} map[string]model.Consumption
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /drugs/consumptions [post]
func (h *DrugHandler) RecordConsumption(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req ConsumptionRequest
	if err := bindRequired(c, &req, "drug_id, consumption_date, quantity, and unit_type are required"); err != nil {
		return err
	}
	date, err := parseDate("consumption_date", req.ConsumptionDate)
	if err != nil {
		return err
	}

	consumption, err := h.drugService.RecordConsumption(c.Request().Context(), userID, service.ConsumptionInput{
		DrugID:     req.DrugID.Value,
		Date:       date,
		Quantity:   req.Quantity.Decimal,
		UnitType:   req.UnitType,
		Notes:      req.Notes,
		ConsumedAt: req.ConsumedAt.Value,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"consumption": consumption})
}

// DeleteConsumption godoc
// @Summary Delete a consumption
// @Tags drugs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Consumption ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} errors.ErrorResponse
// @Router /drugs/consumptions/{id} [delete]
func (h *DrugHandler) DeleteConsumption(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, apperrors.ErrConsumptionNotFound)
	if err != nil {
		return err
	}
	if err := h.drugService.DeleteConsumption(c.Request().Context(), userID, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Consumption record deleted successfully"})
}

// ListSchedules godoc
// @Summary List drug schedules
// @Tags drugs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string][]model.DrugSchedule
// @Router /drugs/schedules [get]
func (h *DrugHandler) ListSchedules(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	schedules, err := h.drugService.ListSchedules(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"schedules": schedules})
}

// UpsertSchedule godoc
// @Summary Create or replace a drug's schedule
// @Description PUT /drugs/schedules/{id} behaves identically; the drug is taken from the body.
// @Tags drugs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body DrugScheduleRequest true "Schedule"
// @Success 201 {object} map[string]model.DrugSchedule
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /drugs/schedules [post]
func (h *DrugHandler) UpsertSchedule(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req DrugScheduleRequest
	if err := bindRequired(c, &req, "drug_id and schedule_type are required"); err != nil {
		return err
	}

	cadence := cadenceOf(req.ScheduleType, req.IntervalHours, req.TimesPerDay, req.Notes)
	schedule, err := h.drugService.UpsertSchedule(c.Request().Context(), userID, req.DrugID.Value, cadence)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"schedule": schedule})
}

// DeleteSchedule godoc
// @Summary Delete a drug schedule
// @Tags drugs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Schedule ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} errors.ErrorResponse
// @Router /drugs/schedules/{id} [delete]
func (h *DrugHandler) DeleteSchedule(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, apperrors.ErrScheduleNotFound)
	if err != nil {
		return err
	}
	if err := h.drugService.DeleteSchedule(c.Request().Context(), userID, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Schedule deleted successfully"})
}

// TodaySummary godoc
// @Summary Today's consumptions and procedures
// @Tags drugs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.Summary
// @Router /drugs/summary/today [get]
func (h *DrugHandler) TodaySummary(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	summary, err := h.summaryService.Today(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}
