// Package testutil provides shared helpers for package tests.
package testutil

import (
	"log/slog"
	"testing"

	"bloggazers/internal/cache"
	"bloggazers/internal/database"
	"bloggazers/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB returns an isolated in-memory database with the full schema
// migrated. The single-connection pool keeps the memory store alive for the
// lifetime of the test.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// NewTestRedis starts a miniredis instance, wires the cache package's shared
// client to it, and returns the client.
func NewTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetClient(client)
	t.Cleanup(func() {
		cache.SetClient(nil)
		client.Close()
	})
	return mr, client
}

// Silence drops middleware log output for the duration of a test.
func Silence(t *testing.T) {
	t.Helper()

	prev := middleware.Logger
	middleware.Logger = slog.New(slog.DiscardHandler)
	t.Cleanup(func() { middleware.Logger = prev })
}
