package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "medtrack/internal/errors"
	"medtrack/internal/service"
)

// AdminHandler handles the operator endpoints.
type AdminHandler struct {
	adminService service.AdminService
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// AdminLoginRequest represents an admin login request.
type AdminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ResetPasswordRequest carries the replacement password for a user.
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required"`
}

// Login godoc
// @Summary Admin login
// @Tags admin
// @Accept json
// @Produce json
// @Param request body AdminLoginRequest true "Admin credentials"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/login [post]
func (h *AdminHandler) Login(c echo.Context) error {
	var req AdminLoginRequest
	if err := bindRequired(c, &req, "Username and password are required"); err != nil {
		return err
	}

	token, err := h.adminService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Admin login successful",
		"token":   token,
	})
}

// ListUsers godoc
// @Summary List all users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string][]model.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.adminService.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users})
}

// ResetUserPassword godoc
// @Summary Reset a user's password
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body ResetPasswordRequest true "New password"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/users/{id}/password [put]
func (h *AdminHandler) ResetUserPassword(c echo.Context) error {
	userID, err := pathID(c, apperrors.ErrUserNotFound)
	if err != nil {
		return err
	}
	var req ResetPasswordRequest
	if err := bindRequired(c, &req, "new_password is required to reset password"); err != nil {
		return err
	}

	if err := h.adminService.ResetUserPassword(c.Request().Context(), userID, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User password reset successfully"})
}
