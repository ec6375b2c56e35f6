package database

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/intern-assistant/platform/internal/shared/config"
)

// DB wraps the gorm handle with helper methods.
type DB struct {
	Gorm *gorm.DB
}

// New opens the record store. A postgres URL or DSN selects the
// postgres driver; anything else is treated as a sqlite file path so
// the zero-config default is an embedded single-file store.
func New(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	var (
		db  *gorm.DB
		err error
	)
	if cfg.IsPostgres() {
		db, err = gorm.Open(postgres.Open(cfg.URL), gormCfg)
	} else {
		db, err = gorm.Open(sqlite.Open(cfg.URL), gormCfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Gorm: db}, nil
}

// Migrate creates the schema idempotently at startup. There is no
// migrations system; AutoMigrate only adds what is absent.
func (db *DB) Migrate(models ...any) error {
	if err := db.Gorm.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Health checks the database connection.
func (db *DB) Health(ctx context.Context) error {
	sqlDB, err := db.Gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func (db *DB) Close() {
	if sqlDB, err := db.Gorm.DB(); err == nil {
		sqlDB.Close()
	}
}
