// Package repo implements the persistence layer for schemes, chat logs and
// idempotency records on top of GORM. Functions take a *gorm.DB explicitly so
// callers decide on transactions and test databases.
package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/domain"
)

// Supported values for the driver argument of Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Open connects to the configured database. SQLite gets the WAL/busy-timeout
// PRAGMAs; every driver gets the same pool limits. When withTracing is set the
// GORM OpenTelemetry plugin is attached so queries appear as child spans.
func Open(driver, dsn string, withTracing bool) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	driver = strings.ToLower(driver)
	switch driver {
	case DriverSQLite, "":
		db, err = OpenSQLite(dsn)
	case DriverPostgres:
		db, err = gorm.Open(postgres.Open(dsn), gormConfig())
	case DriverMySQL:
		db, err = gorm.Open(mysql.Open(dsn), gormConfig())
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
	if err != nil {
		return nil, err
	}

	if driver != DriverSQLite && driver != "" {
		configurePool(db)
	}

	if withTracing {
		if err := attachTracing(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// OpenSQLite opens (or creates) a SQLite database and applies PRAGMAs.
func OpenSQLite(path string) (*gorm.DB, error) {
	// Fail early if the parent directory is missing instead of surfacing
	// sqlite's "out of memory (14)".
	if !strings.HasPrefix(path, "file:") && path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if _, err := os.Stat(dir); err != nil {
				return nil, err
			}
		}
	}

	db, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return nil, err
	}

	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA foreign_keys=ON;")
	db.Exec("PRAGMA busy_timeout=5000;")

	configurePool(db)
	return db, nil
}

// AutoMigrate creates or updates the tables this service owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Scheme{},
		&domain.ChatLog{},
		&domain.Idempotency{},
	)
}

func attachTracing(db *gorm.DB) error {
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return fmt.Errorf("gorm tracing plugin: %w", err)
	}
	return nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: gormlogger.New(
			&log.Logger,
			gormlogger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	}
}

func configurePool(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
}

// dialect returns the active GORM dialector name.
func dialect(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return ""
	}
	return db.Dialector.Name()
}
