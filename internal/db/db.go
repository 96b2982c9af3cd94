package db

import (
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"lab-reservation-backend/config"
	"lab-reservation-backend/internal/model"
)

// Init opens the database, applies the pool settings and runs migrations.
// A postgres:// DSN selects the PostgreSQL driver; anything else is
// treated as a SQLite path, which keeps local development and tests free
// of external services.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dialector := open(cfg.DSN)
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	log.Println("Running database migrations...")
	if err := db.AutoMigrate(
		&model.User{},
		&model.Resource{},
		&model.Booking{},
		&model.Notification{},
	); err != nil {
		return nil, fmt.Errorf("automigrate failed: %w", err)
	}

	if db.Dialector.Name() == "postgres" {
		if err := applyPostgresIndexes(db); err != nil {
			log.Printf("Warning: failed to apply some PostgreSQL indexes: %v. Continuing without them.", err)
		}
	}

	log.Println("Database initialization complete.")
	return db, nil
}

func open(dsn string) gorm.Dialector {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return postgres.Open(dsn)
	}
	return sqlite.Open(dsn)
}

// applyPostgresIndexes adds partial indexes for the hot booking scans;
// AutoMigrate cannot express the WHERE clauses.
func applyPostgresIndexes(db *gorm.DB) error {
	ddls := []string{
		// Overlap and active-count checks only ever look at approved rows.
		"CREATE INDEX IF NOT EXISTS idx_bookings_approved_window ON bookings (resource_id, starts_at, ends_at) WHERE status = 'approved';",

		// The sweep scans approved rows by end instant.
		"CREATE INDEX IF NOT EXISTS idx_bookings_approved_ends_at ON bookings (ends_at) WHERE status = 'approved';",

		"CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications (user_id, created_at DESC);",
	}

	for _, ddl := range ddls {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("DDL failed on %q: %w", ddl, err)
		}
	}
	return nil
}
