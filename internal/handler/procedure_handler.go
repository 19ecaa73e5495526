package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "medtrack/internal/errors"
	"medtrack/internal/export"
	"medtrack/internal/service"
)

// ProcedureHandler serves procedure definitions, records, schedules and the
// spreadsheet export.
type ProcedureHandler struct {
	procedureService service.ProcedureService
}

// NewProcedureHandler creates a new procedure handler.
func NewProcedureHandler(procedureService service.ProcedureService) *ProcedureHandler {
	return &ProcedureHandler{procedureService: procedureService}
}

// ProcedureRequest is the body of procedure create and update.
type ProcedureRequest struct {
	Name string `json:"name" validate:"required"`
}

// ProcedureRecordRequest records one performed procedure.
type ProcedureRecordRequest struct {
	ProcedureID   flexUint     `json:"procedure_id" validate:"required" swaggertype:"integer"`
	ProcedureDate string       `json:"procedure_date" validate:"required" example:"2024-01-15"`
	Notes         *string      `json:"notes"`
	PerformedAt   optionalTime `json:"performed_at" swaggertype:"string" format:"date-time"`
}

// ProcedureScheduleRequest creates or replaces the schedule of a procedure.
type ProcedureScheduleRequest struct {
	ProcedureID   flexUint `json:"procedure_id" validate:"required" swaggertype:"integer"`
	ScheduleType  string   `json:"schedule_type" validate:"required" enums:"interval,per_day"`
	IntervalHours flexInt  `json:"interval_hours" swaggertype:"integer"`
	TimesPerDay   flexInt  `json:"times_per_day" swaggertype:"integer"`
	Notes         *string  `json:"notes"`
}

// ListProcedures godoc
// @Summary List the caller's procedures
// @Tags procedures
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string][]model.Procedure
// @Router /procedures [get]
func (h *ProcedureHandler) ListProcedures(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	procedures, err := h.procedureService.ListProcedures(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"procedures": procedures})
}

// CreateProcedure godoc
// @Summary Create a procedure definition
// @Tags procedures
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ProcedureRequest true "Procedure"
// @Success 201 {object} map[string]model.Procedure
// @Failure 400 {object} errors.ErrorResponse
// @Router /procedures [post]
func (h *ProcedureHandler) CreateProcedure(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req ProcedureRequest
	if err := bindRequired(c, &req, "name is required"); err != nil {
		return err
	}

	procedure, err := h.procedureService.CreateProcedure(c.Request().Context(), userID, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"procedure": procedure})
}

// UpdateProcedure godoc
// @Summary Rename a procedure
// @Tags procedures
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Procedure ID"
// @Param request body ProcedureRequest true "Procedure"
// @Success 200 {object} map[string]model.Procedure
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /procedures/{id} [put]
func (h *ProcedureHandler) UpdateProcedure(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, apperrors.ErrProcedureNotFound)
	if err != nil {
		return err
	}
	var req ProcedureRequest
	if err := bindRequired(c, &req, "name is required"); err != nil {
		return err
	}

	procedure, err := h.procedureService.UpdateProcedure(c.Request().Context(), userID, id, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"procedure": procedure})
}

// DeleteProcedure godoc
// @Summary Delete a procedure with its records and schedule
// @Tags procedures
// @Produce json
// @Security BearerAuth
// @Param id path int true "Procedure ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} errors.ErrorResponse
// @Router /procedures/{id} [delete]
func (h *ProcedureHandler) DeleteProcedure(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, apperrors.ErrProcedureNotFound)
	if err != nil {
		return err
	}
	if err := h.procedureService.DeleteProcedure(c.Request().Context(), userID, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Procedure deleted successfully"})
}

// ListRecords godoc
// @Summary List procedure records
// @Description With both dates, every record in the inclusive range; otherwise the 100 most recent.
// @Tags procedures
// @Produce json
// @Security BearerAuth
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD"
// @Param procedure_id query int false "Procedure ID"
// @Success 200 {object} map[string][]model.ProcedureRecord
// @Failure 400 {object} errors.ErrorResponse
// @Router /procedures/records [get]
func (h *ProcedureHandler) ListRecords(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	q, err := eventQuery(c, "procedure_id")
	if err != nil {
		return err
	}
	records, err := h.procedureService.ListRecords(c.Request().Context(), userID, q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"records": records})
}

// RecordProcedure godoc
// @Summary Record a performed procedure
// @Tags procedures
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ProcedureRecordRequest true "Record"
// @Success 201 {object} map[string]model.ProcedureRecord
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /procedures/records [post]
func (h *ProcedureHandler) RecordProcedure(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req ProcedureRecordRequest
	if err := bindRequired(c, &req, "procedure_id and procedure_date are required"); err != nil {
		return err
	}
	date, err := parseDate("procedure_date", req.ProcedureDate)
	if err != nil {
		return err
	}

	record, err := h.procedureService.RecordProcedure(c.Request().Context(), userID, service.ProcedureRecordInput{
		ProcedureID: req.ProcedureID.Value,
		Date:        date,
		Notes:       req.Notes,
		PerformedAt: req.PerformedAt.Value,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"record": record})
}

// DeleteRecord godoc
// @Summary Delete a procedure record
// @Tags procedures
// @Produce json
// @Security BearerAuth
// @Param id path int true "Record ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} errors.ErrorResponse
// @Router /procedures/records/{id} [delete]
func (h *ProcedureHandler) DeleteRecord(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, apperrors.ErrProcedureRecordNotFound)
	if err != nil {
		return err
	}
	if err := h.procedureService.DeleteRecord(c.Request().Context(), userID, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Procedure record deleted successfully"})
}

// ListSchedules godoc
// @Summary List procedure schedules
// @Tags procedures
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string][]model.ProcedureSchedule
// @Router /procedures/schedules [get]
func (h *ProcedureHandler) ListSchedules(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	schedules, err := h.procedureService.ListSchedules(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"schedules": schedules})
}

// UpsertSchedule godoc
// @Summary Create or replace a procedure's schedule
// @Description PUT /procedures/schedules/{id} behaves identically; the procedure is taken from the body.
// @Tags procedures
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ProcedureScheduleRequest true "Schedule"
// @Success 201 {object} map[string]model.ProcedureSchedule
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /procedures/schedules [post]
func (h *ProcedureHandler) UpsertSchedule(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req ProcedureScheduleRequest
	if err := bindRequired(c, &req, "procedure_id and schedule_type are required"); err != nil {
		return err
	}

	cadence := cadenceOf(req.ScheduleType, req.IntervalHours, req.TimesPerDay, req.Notes)
	schedule, err := h.procedureService.UpsertSchedule(c.Request().Context(), userID, req.ProcedureID.Value, cadence)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"schedule": schedule})
}

// DeleteSchedule godoc
// @Summary Delete a procedure schedule
// @Tags procedures
// @Produce json
// @Security BearerAuth
// @Param id path int true "Schedule ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} errors.ErrorResponse
// @Router /procedures/schedules/{id} [delete]
func (h *ProcedureHandler) DeleteSchedule(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, apperrors.ErrScheduleNotFound)
	if err != nil {
		return err
	}
	if err := h.procedureService.DeleteSchedule(c.Request().Context(), userID, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Schedule deleted successfully"})
}

// Export godoc
// @Summary Export procedure records as a spreadsheet
// @Tags procedures
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param start_date query string true "YYYY-MM-DD"
// @Param end_date query string true "YYYY-MM-DD"
// @Param procedure_id query int false "Procedure ID"
// @Success 200 {file} file
// @Failure 400 {object} errors.ErrorResponse
// @Router /procedures/export [get]
func (h *ProcedureHandler) Export(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	if c.QueryParam("start_date") == "" || c.QueryParam("end_date") == "" {
		return apperrors.BadRequest("start_date and end_date are required")
	}
	q, err := eventQuery(c, "procedure_id")
	if err != nil {
		return err
	}

	file, err := h.procedureService.Export(c.Request().Context(), userID, *q.Start, *q.End, q.DefinitionID)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Filename))
	return c.Blob(http.StatusOK, export.ContentType, file.Content)
}

// ListTypes godoc
// @Summary Legacy procedure types
// @Description Always empty; kept for older clients.
// @Tags procedures
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string][]string
// @Router /procedure-types [get]
func (h *ProcedureHandler) ListTypes(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"types": []string{}})
}
