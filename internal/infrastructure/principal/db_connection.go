// Package principal resolves account claims from the user directory, with an
// in-process cache in front of the database.
package principal

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tokengate/tokengate/internal/domain/models"
	"github.com/tokengate/tokengate/pkg/logger"
)

// DatabaseConfig selects the directory backend. Driver "sqlite" with a file
// DSN serves local runs and tests; "postgres" is the production path.
type DatabaseConfig struct {
	Driver          string        `json:"driver" yaml:"driver" mapstructure:"driver"`
	DSN             string        `json:"dsn" yaml:"dsn" mapstructure:"dsn"`
	MaxOpenConns    int           `json:"max_open_conns" yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns" yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `json:"auto_migrate" yaml:"auto_migrate" mapstructure:"auto_migrate"`
}

// OpenDatabase opens the user directory and applies pool settings.
func OpenDatabase(ctx context.Context, cfg *DatabaseConfig, log logger.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite", "":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open user directory: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("access connection pool: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping user directory: %w", err)
	}

	if cfg.AutoMigrate {
		if err := db.WithContext(ctx).AutoMigrate(&models.User{}); err != nil {
			return nil, fmt.Errorf("migrate user directory: %w", err)
		}
	}

	log.Info(ctx, "user directory connected",
		logger.String("driver", cfg.Driver),
	)
	return db, nil
}
