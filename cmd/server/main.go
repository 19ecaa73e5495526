package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "medtrack/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"medtrack/internal/auth"
	"medtrack/internal/cache"
	"medtrack/internal/config"
	"medtrack/internal/db"
	"medtrack/internal/handler"
	"medtrack/internal/logging"
	"medtrack/internal/metrics"
	"medtrack/internal/repository"
	"medtrack/internal/router"
	"medtrack/internal/service"
)

// @title Medication Tracker API
// @version 1.0
// @description Per-user drug and procedure tracking with schedules, daily summary and spreadsheet export.
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	gormDB, err := db.Open(cfg.DB, logger)
	if err != nil {
		logger.Fatal("database init", zap.String("driver", cfg.DB.Driver), zap.Error(err))
	}
	if cfg.AutoMigrate {
		if err := db.Migrate(context.Background(), gormDB); err != nil {
			logger.Fatal("auto-migrate", zap.Error(err))
		}
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if cacheClient.Enabled() {
		if err := cacheClient.Ping(context.Background()); err != nil {
			logger.Warn("redis unavailable, login throttling fails open", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	drugRepo := repository.NewDrugRepository(gormDB)
	consumptionRepo := repository.NewConsumptionRepository(gormDB)
	drugScheduleRepo := repository.NewDrugScheduleRepository(gormDB)
	procedureRepo := repository.NewProcedureRepository(gormDB)
	recordRepo := repository.NewProcedureRecordRepository(gormDB)
	procedureScheduleRepo := repository.NewProcedureScheduleRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpiresIn, cfg.AdminJWTExpiresIn)
	loginGuard := auth.NewLoginGuard(cacheClient, cfg.LoginMaxAttempts, cfg.LoginAttemptWindow)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, loginGuard)
	adminService := service.NewAdminService(userRepo, jwtService, loginGuard, service.AdminCredentials{
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
	})
	drugService := service.NewDrugService(drugRepo, consumptionRepo, drugScheduleRepo)
	procedureService := service.NewProcedureService(procedureRepo, recordRepo, procedureScheduleRepo)
	summaryService := service.NewSummaryService(consumptionRepo, recordRepo)

	e := echo.New()
	router.Register(e, cfg, logger, metrics.New(), jwtService, router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Admin:     handler.NewAdminHandler(adminService),
		Drug:      handler.NewDrugHandler(drugService, summaryService),
		Procedure: handler.NewProcedureHandler(procedureService),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.ServerPort
		logger.Info("server starting", zap.String("addr", addr), zap.String("swagger", "/swagger/index.html"))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
}
