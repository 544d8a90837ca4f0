package postgres

import (
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"garaadka-laundry/internal/config"
)

const (
	SSLDisable    = "disable"
	SSLRequire    = "require"
	SSLVerifyFull = "verify-full"
	SSLVerifyCA   = "verify-ca"
)

// Open connects to PostgreSQL and sizes the pool from max_open_conns.
func Open(cfg config.Postgres, logger *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(gormPostgres.Open(BuildDSN(cfg, logger)), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get *sql.DB from gorm: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxOpen)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("postgres connection established", zap.String("host", cfg.Host), zap.String("db", cfg.DBName))
	return db, nil
}

// BuildDSN assembles the keyword/value connection string. An invalid ssl_mode falls back to disable.
func BuildDSN(cfg config.Postgres, logger *zap.Logger) string {
	name := cfg.DBName
	if name == "" {
		name = "laundry"
	}
	ssl := cfg.SSLMode
	if !isValidSSLMode(ssl) {
		logger.Warn("invalid ssl mode, using default", zap.String("ssl_mode", ssl), zap.String("default", SSLDisable))
		ssl = SSLDisable
	}

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.Port, cfg.User, cfg.Pwd, name, ssl,
	)
}

func isValidSSLMode(mode string) bool {
	switch mode {
	case SSLDisable, SSLRequire, SSLVerifyFull, SSLVerifyCA:
		return true
	default:
		return false
	}
}
