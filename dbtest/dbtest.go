// Package dbtest opens throwaway SQLite stores for package tests.
package dbtest

import (
	"path/filepath"
	"testing"
	"time"

	"peer-delivery-api/config"
	"peer-delivery-api/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Open returns a migrated database in a temp directory, closed on cleanup.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := config.OpenDB(config.DatabaseConfig{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		BusyTimeout: 5 * time.Second,
		LogLevel:    "silent",
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = config.CloseDB(db) })
	return db
}

// User inserts a user with the given email and returns it.
func User(t testing.TB, db *gorm.DB, email string, admin bool) *models.User {
	t.Helper()
	u := &models.User{Name: email, Email: email, PasswordHash: "x", IsAdmin: admin}
	require.NoError(t, db.Create(u).Error)
	return u
}

// Count returns the number of rows of model matching the optional condition.
func Count(t testing.TB, db *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
