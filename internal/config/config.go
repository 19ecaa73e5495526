package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string
	DB         DBConfig

	JWTSecret         string
	JWTExpiresIn      time.Duration
	AdminUsername     string
	AdminPassword     string
	AdminJWTExpiresIn time.Duration

	RedisAddr          string
	RedisDB            int
	RedisPass          string
	LoginMaxAttempts   int
	LoginAttemptWindow time.Duration
	AuthRateLimit      float64

	StaticDir        string
	CORSAllowOrigins []string
	LogLevel         string
	LogFormat        string
	AutoMigrate      bool
}

// DBConfig describes how to reach the relational store.
type DBConfig struct {
	Driver   string
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	// DSN, when set, is used verbatim instead of the assembled connection string.
	DSN string
}

// ConnString returns the driver specific connection string.
func (d DBConfig) ConnString() string {
	if d.DSN != "" {
		return d.DSN
	}
	switch d.Driver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			d.User, d.Password, d.Host, d.Port, d.Name)
	case "sqlite":
		return d.Name
	default:
		return fmt.Sprintf("host=%s port=%s dbname=%s user=%s password=%s sslmode=%s",
			d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode)
	}
}

// Load builds Config from an optional .env file, the environment and defaults.
func Load() (*Config, error) {
	_ = godotenv.Load() // a missing .env is fine, the environment still applies

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	jwtExpiry, err := ParseDuration(v.GetString("jwt_expires_in"))
	if err != nil {
		return nil, fmt.Errorf("JWT_EXPIRES_IN: %w", err)
	}
	adminExpiry, err := ParseDuration(v.GetString("admin_jwt_expires_in"))
	if err != nil {
		return nil, fmt.Errorf("ADMIN_JWT_EXPIRES_IN: %w", err)
	}
	window, err := ParseDuration(v.GetString("login_attempt_window"))
	if err != nil {
		return nil, fmt.Errorf("LOGIN_ATTEMPT_WINDOW: %w", err)
	}

	cfg := &Config{
		ServerPort: v.GetString("server_port"),
		DB: DBConfig{
			Driver:   strings.ToLower(v.GetString("db_driver")),
			Host:     v.GetString("db_host"),
			Port:     v.GetString("db_port"),
			Name:     v.GetString("db_name"),
			User:     v.GetString("db_user"),
			Password: v.GetString("db_password"),
			SSLMode:  v.GetString("db_sslmode"),
			DSN:      v.GetString("database_dsn"),
		},
		JWTSecret:          v.GetString("jwt_secret"),
		JWTExpiresIn:       jwtExpiry,
		AdminUsername:      v.GetString("admin_username"),
		AdminPassword:      v.GetString("admin_password"),
		AdminJWTExpiresIn:  adminExpiry,
		RedisAddr:          v.GetString("redis_addr"),
		RedisDB:            v.GetInt("redis_db"),
		RedisPass:          v.GetString("redis_password"),
		LoginMaxAttempts:   v.GetInt("login_max_attempts"),
		LoginAttemptWindow: window,
		AuthRateLimit:      v.GetFloat64("auth_rate_limit"),
		StaticDir:          v.GetString("static_dir"),
		CORSAllowOrigins:   splitList(v.GetString("cors_allow_origins")),
		LogLevel:           v.GetString("log_level"),
		LogFormat:          v.GetString("log_format"),
		AutoMigrate:        v.GetBool("auto_migrate"),
	}

	switch cfg.DB.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return nil, fmt.Errorf("DB_DRIVER: unsupported driver %q", cfg.DB.Driver)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_port", "3001")

	v.SetDefault("db_driver", "postgres")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_name", "medtrack")
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_password", "")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("database_dsn", "")

	v.SetDefault("jwt_secret", "change-me")
	v.SetDefault("jwt_expires_in", "7d")
	v.SetDefault("admin_username", "")
	v.SetDefault("admin_password", "")
	v.SetDefault("admin_jwt_expires_in", "1h")

	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_password", "")
	v.SetDefault("login_max_attempts", 10)
	v.SetDefault("login_attempt_window", "15m")
	v.SetDefault("auth_rate_limit", 5)

	v.SetDefault("static_dir", "frontend/dist")
	v.SetDefault("cors_allow_origins", "*")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("auto_migrate", true)
}

// ParseDuration accepts Go durations ("90m"), whole days ("7d") and bare
// seconds ("3600").
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	if secs, err := strconv.Atoi(s); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
