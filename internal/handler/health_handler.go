package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Health godoc
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "OK", Message: "API is running"})
}

// Root answers / when no frontend bundle is deployed.
func Root(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message":  "API is running",
		"frontend": "Not available",
		"health":   "/api/health",
	})
}
