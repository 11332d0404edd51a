package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"gorm.io/gorm"
)

// VersionReader reports the database server version.
type VersionReader struct {
	db     *gorm.DB
	driver string

	mu     sync.RWMutex
	cached string
}

// NewVersionReader returns a reader for db. The version is captured once here
// so ServerVersion can answer without a round trip; a failure leaves it empty.
func NewVersionReader(ctx context.Context, db *gorm.DB) *VersionReader {
	r := &VersionReader{db: db}
	if db != nil && db.Dialector != nil {
		r.driver = db.Dialector.Name()
	}
	if v, err := r.QueryVersion(ctx); err == nil {
		r.cached = v
	}
	return r
}

// Label returns the display name of the database engine.
func (r *VersionReader) Label() string {
	switch r.driver {
	case DriverPostgres:
		return "PostgreSQL"
	case DriverSQLite:
		return "SQLite"
	case "":
		return "Database"
	default:
		return r.driver
	}
}

func (r *VersionReader) versionQuery() (string, error) {
	switch r.driver {
	case DriverSQLite:
		return "SELECT sqlite_version()", nil
	case DriverPostgres:
		return "SHOW server_version", nil
	default:
		return "", fmt.Errorf("no version query for driver %q", r.driver)
	}
}

// QueryVersion asks the server for its version string.
func (r *VersionReader) QueryVersion(ctx context.Context) (string, error) {
	if r == nil || r.db == nil {
		return "", errors.New("database not initialized")
	}

	query, err := r.versionQuery()
	if err != nil {
		return "", err
	}

	var v string
	if err := r.db.WithContext(ctx).Raw(query).Scan(&v).Error; err != nil {
		return "", fmt.Errorf("failed to query database version: %w", err)
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", errors.New("database returned an empty version")
	}

	r.mu.Lock()
	r.cached = v
	r.mu.Unlock()
	return v, nil
}

// ServerVersion returns the last version seen without querying the server.
func (r *VersionReader) ServerVersion() string {
	if r == nil {
		return ""
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cached
}
