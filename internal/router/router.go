package router

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"medtrack/internal/auth"
	"medtrack/internal/config"
	apperrors "medtrack/internal/errors"
	"medtrack/internal/handler"
	"medtrack/internal/logging"
	"medtrack/internal/metrics"
)

// Handlers groups the HTTP handlers mounted under /api.
type Handlers struct {
	Auth      *handler.AuthHandler
	Admin     *handler.AdminHandler
	Drug      *handler.DrugHandler
	Procedure *handler.ProcedureHandler
}

// Register wires middleware, the error handler and every route.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	log *zap.Logger,
	m *metrics.Metrics,
	jwtService *auth.JWTService,
	h Handlers,
) {
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = ErrorHandler(log)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	// Metrics wrap the request logger, which commits error responses.
	e.Use(m.Middleware())
	e.Use(logging.RequestLogger(log))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/metrics", m.Handler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	api.GET("/health", handler.Health)

	limited := authRateLimiter(cfg.AuthRateLimit)
	requireUser := auth.RequireUser(jwtService)
	requireAdmin := auth.RequireAdmin(jwtService)

	// Public routes
	api.POST("/auth/register", h.Auth.Register, limited...)
	api.POST("/auth/login", h.Auth.Login, limited...)
	api.POST("/admin/login", h.Admin.Login, limited...)

	account := api.Group("/auth", requireUser)
	account.GET("/profile", h.Auth.GetProfile)
	account.PUT("/profile", h.Auth.UpdateProfile)
	account.PUT("/password", h.Auth.ChangePassword)

	drugs := api.Group("/drugs", requireUser)
	drugs.GET("", h.Drug.ListDrugs)
	drugs.POST("", h.Drug.CreateDrug)
	drugs.GET("/consumptions", h.Drug.ListConsumptions)
	drugs.POST("/consumptions", h.Drug.RecordConsumption)
	drugs.DELETE("/consumptions/:id", h.Drug.DeleteConsumption)
	drugs.GET("/schedules", h.Drug.ListSchedules)
	drugs.POST("/schedules", h.Drug.UpsertSchedule)
	drugs.PUT("/schedules/:id", h.Drug.UpsertSchedule)
	drugs.DELETE("/schedules/:id", h.Drug.DeleteSchedule)
	drugs.GET("/summary/today", h.Drug.TodaySummary)
	drugs.PUT("/:id", h.Drug.UpdateDrug)
	drugs.DELETE("/:id", h.Drug.DeleteDrug)

	procedures := api.Group("/procedures", requireUser)
	procedures.GET("", h.Procedure.ListProcedures)
	procedures.POST("", h.Procedure.CreateProcedure)
	procedures.GET("/records", h.Procedure.ListRecords)
	procedures.POST("/records", h.Procedure.RecordProcedure)
	procedures.DELETE("/records/:id", h.Procedure.DeleteRecord)
	procedures.GET("/schedules", h.Procedure.ListSchedules)
	procedures.POST("/schedules", h.Procedure.UpsertSchedule)
	procedures.PUT("/schedules/:id", h.Procedure.UpsertSchedule)
	procedures.DELETE("/schedules/:id", h.Procedure.DeleteSchedule)
	procedures.GET("/summary/today", h.Drug.TodaySummary)
	procedures.GET("/export", h.Procedure.Export)
	procedures.PUT("/:id", h.Procedure.UpdateProcedure)
	procedures.DELETE("/:id", h.Procedure.DeleteProcedure)

	api.GET("/procedure-types", h.Procedure.ListTypes, requireUser)

	admin := api.Group("/admin", requireAdmin)
	admin.GET("/users", h.Admin.ListUsers)
	admin.PUT("/users/:id/password", h.Admin.ResetUserPassword)

	api.RouteNotFound("/*", func(c echo.Context) error {
		return apperrors.NewHTTPError(http.StatusNotFound, "API endpoint not found")
	})

	registerFrontend(e, cfg.StaticDir)
}

// authRateLimiter limits credential endpoints per client IP. A non-positive
// rate disables it.
func authRateLimiter(perSecond float64) []echo.MiddlewareFunc {
	if perSecond <= 0 {
		return nil
	}
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(perSecond),
		Burst:     int(perSecond*10) + 1,
		ExpiresIn: 15 * time.Minute,
	})
	return []echo.MiddlewareFunc{middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return apperrors.NewHTTPError(http.StatusTooManyRequests, "Too many requests, please try again later")
		},
	})}
}

// registerFrontend serves the built web client with an index.html fallback
// for client-side routes. Without a bundle only / answers.
func registerFrontend(e *echo.Echo, dir string) {
	if dir == "" {
		e.GET("/", handler.Root)
		return
	}
	if _, err := os.Stat(filepath.Join(dir, "index.html")); err != nil {
		e.GET("/", handler.Root)
		return
	}
	e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
		Root:  dir,
		HTML5: true,
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return isAPIPath(p) || p == "/metrics" || strings.HasPrefix(p, "/swagger/")
		},
	}))
}

func isAPIPath(p string) bool {
	return p == "/api" || strings.HasPrefix(p, "/api/")
}

// ErrorHandler renders every error as {"error": message}. Unknown errors
// are logged and answered with a generic 500.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		httpErr := toHTTPError(err, c)
		if httpErr.StatusCode >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.Error(err),
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(httpErr.StatusCode)
		} else {
			err = c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
		}
		if err != nil {
			log.Error("write error response", zap.Error(err))
		}
	}
}

func toHTTPError(err error, c echo.Context) *apperrors.HTTPError {
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		return apperrors.MapErrorToHTTP(err)
	}
	if isAPIPath(c.Request().URL.Path) &&
		(he.Code == http.StatusNotFound || he.Code == http.StatusMethodNotAllowed) {
		return apperrors.NewHTTPError(http.StatusNotFound, "API endpoint not found")
	}
	if he.Code >= http.StatusInternalServerError {
		return apperrors.NewHTTPError(he.Code, "Internal server error")
	}
	msg, ok := he.Message.(string)
	if !ok {
		msg = http.StatusText(he.Code)
	}
	return apperrors.NewHTTPError(he.Code, msg)
}
