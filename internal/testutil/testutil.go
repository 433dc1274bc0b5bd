// Package testutil provides shared utilities for testing.
package testutil

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/palemoky/zhconv/internal/converter"
	"github.com/palemoky/zhconv/internal/database"
	"github.com/palemoky/zhconv/internal/dict"
)

// SetupTestDB creates an in-memory SQLite store with migrations applied.
// Returns the DB wrapper and Repository. Automatically cleans up on test completion.
func SetupTestDB(t *testing.T) (*database.DB, *database.Repository) {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "Failed to open in-memory database")

	// each connection to :memory: opens a separate database
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	db := database.NewDBFromGorm(gormDB)
	require.NoError(t, db.Migrate(), "Failed to run migrations")

	repo := database.NewRepository(db)

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db, repo
}

// SetupTestGin creates a test Gin engine with test mode enabled.
func SetupTestGin() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// Converter builds a named converter with one stage per source->target map.
func Converter(name string, stages ...map[string]string) *converter.Converter {
	indexes := make([]*dict.Index, 0, len(stages))
	for _, stage := range stages {
		entries := make([]dict.Entry, 0, len(stage))
		for source, target := range stage {
			entries = append(entries, dict.Entry{Source: source, Target: target})
		}
		indexes = append(indexes, dict.Build(entries))
	}
	return converter.New(indexes...).WithName(name)
}
