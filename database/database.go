package database

import (
	"fmt"
	"log"
	"strings"
	"time"

	"versioninfo/config"
	"versioninfo/models"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Driver names accepted by Open
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open connects to the configured database, applies connection pool settings
// and, for SQLite, the optional PRAGMAs, then runs automigrations for the
// console's models.
func Open(cfg *config.Config, zl zerolog.Logger) (*gorm.DB, error) {
	logLevel := logger.Silent
	if cfg.IsDebug() {
		logLevel = logger.Info
	}
	gormLogger := sqliteMetricsLogger{inner: logger.New(
		log.New(zl.With().Str("component", "gorm").Logger(), "", 0),
		logger.Config{
			SlowThreshold: 200 * time.Millisecond,
			LogLevel:      logLevel,
		},
	)}

	driver := strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite, "":
		driver = DriverSQLite
		dialector = sqlite.Open(buildSQLiteDSN(cfg.DatabaseURL, cfg))
	case DriverPostgres:
		dialector = postgres.Open(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	pool := currentSQLitePoolConfig(cfg)
	sqlDB.SetMaxIdleConns(pool.maxIdleConns)
	sqlDB.SetMaxOpenConns(pool.maxOpenConns)
	sqlDB.SetConnMaxIdleTime(time.Duration(pool.maxIdleSec) * time.Second)
	sqlDB.SetConnMaxLifetime(time.Duration(pool.maxLifeSec) * time.Second)

	// Apply PRAGMAs again as a best-effort startup initialization (useful for existing DB files).
	// Connection URL parameters ensure PRAGMAs are applied for new connections too.
	if driver == DriverSQLite && cfg.SQLitePragmasEnabled {
		if cfg.SQLiteBusyTimeoutMS > 0 {
			db.Exec("PRAGMA busy_timeout = ?", cfg.SQLiteBusyTimeoutMS)
		}
		if journalMode := normalizeSQLiteJournalMode(cfg.SQLiteJournalMode); journalMode != "" {
			db.Exec("PRAGMA journal_mode = " + journalMode)
		}
		if synchronous := normalizeSQLiteSynchronous(cfg.SQLiteSynchronous); synchronous != "" {
			db.Exec("PRAGMA synchronous = " + synchronous)
		}
		if cfg.SQLiteForeignKeys {
			db.Exec("PRAGMA foreign_keys = ON")
		} else {
			db.Exec("PRAGMA foreign_keys = OFF")
		}
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	zl.Info().Str("driver", driver).Msg("database initialized")
	return db, nil
}

// Migrate creates or updates the console tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.AppSetting{}, &models.User{}, &models.Session{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Close closes the database connection and releases resources
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
