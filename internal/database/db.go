// Package database stores compiled dictionaries in SQLite.
package database

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	// Schema version for migrations
	SchemaVersion = 1
)

// DB wraps the gorm connection
type DB struct {
	*gorm.DB
}

// Open opens the SQLite store at path with the given connection pool limits.
// Non-positive limits fall back to the defaults.
func Open(path string, maxOpenConns, maxIdleConns int) (*DB, error) {
	gormDB, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on&_journal_mode=WAL"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}

	if maxOpenConns <= 0 {
		maxOpenConns = 25
	}
	if maxIdleConns <= 0 {
		maxIdleConns = 5
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{gormDB}, nil
}

// NewDBFromGorm wraps an existing gorm connection.
func NewDBFromGorm(gormDB *gorm.DB) *DB {
	return &DB{gormDB}
}

// Migrate creates the tables and records the schema version.
func (db *DB) Migrate() error {
	if err := db.AutoMigrate(&Dictionary{}, &Entry{}, &Metadata{}); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}

	meta := Metadata{Key: "schema_version", Value: fmt.Sprintf("%d", SchemaVersion)}
	if err := db.Save(&meta).Error; err != nil {
		return fmt.Errorf("failed to update schema version: %w", err)
	}

	return nil
}

// GetSchemaVersion returns the stored schema version, 0 if none.
func (db *DB) GetSchemaVersion() (int, error) {
	var meta Metadata
	err := db.Where("key = ?", "schema_version").Limit(1).Find(&meta).Error
	if err != nil {
		return 0, err
	}
	if meta.Key == "" {
		return 0, nil
	}

	var version int
	if _, err := fmt.Sscanf(meta.Value, "%d", &version); err != nil {
		return 0, fmt.Errorf("invalid schema version %q: %w", meta.Value, err)
	}
	return version, nil
}

// Ping checks the underlying connection.
func (db *DB) Ping() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Close closes the database connection
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
