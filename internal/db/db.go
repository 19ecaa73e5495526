package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/glebarez/go-sqlite" // pure Go sqlite driver, registers "sqlite"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"medtrack/internal/config"
)

// MemoryDSN opens a private in-memory sqlite database.
const MemoryDSN = "file::memory:"

// Open connects to the configured driver. The returned pool is meant to be
// shared by the whole process.
func Open(cfg config.DBConfig, log *zap.Logger) (*gorm.DB, error) {
	dsn := cfg.ConnString()
	switch cfg.Driver {
	case "postgres":
		return NewPostgres(dsn, log)
	case "mysql":
		return NewMySQL(dsn, log)
	case "sqlite":
		return NewSQLite(dsn, log)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// NewPostgres returns a GORM DB backed by lib/pq.
func NewPostgres(dsn string, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DriverName: "postgres",
		DSN:        dsn,
	}), gormConfig(log))
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := configurePool(db, 10); err != nil {
		return nil, err
	}
	return db, nil
}

// NewMySQL returns a connected GORM DB instance.
func NewMySQL(dsn string, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), gormConfig(log))
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	if err := configurePool(db, 10); err != nil {
		return nil, err
	}
	return db, nil
}

// NewSQLite opens a sqlite database with foreign keys enforced. A single
// connection is kept so that in-memory databases stay one database.
func NewSQLite(dsn string, log *zap.Logger) (*gorm.DB, error) {
	sqlDB, err := sql.Open("sqlite", withForeignKeys(dsn))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	db, err := gorm.Open(sqlite.Dialector{Conn: sqlDB}, gormConfig(log))
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}
	return db, nil
}

func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

func configurePool(db *gorm.DB, maxOpen int) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxOpen / 2)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return nil
}

func gormConfig(log *zap.Logger) *gorm.Config {
	if log == nil {
		return &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	}
	return &gorm.Config{
		Logger: logger.New(zap.NewStdLog(log.Named("gorm")), logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Error,
			IgnoreRecordNotFoundError: true,
		}),
	}
}
