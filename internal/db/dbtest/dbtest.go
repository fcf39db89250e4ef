// Package dbtest provides an in-memory database for tests.
package dbtest

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/models"
)

// New creates a migrated in-memory SQLite database.
// The pool is limited to one connection, every new connection would see an empty database.
func New(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to create test database")

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb), "failed to migrate test database")

	return gdb
}

// Client inserts a client.
func Client(t *testing.T, gdb *gorm.DB, name string) models.Client {
	t.Helper()

	c := models.Client{Name: name}
	require.NoError(t, gdb.Create(&c).Error)

	return c
}

// User inserts an active user with the given role. clientID is only set when non-zero.
func User(t *testing.T, gdb *gorm.DB, username string, role models.Role, clientID uint64) models.User {
	t.Helper()

	u := models.User{
		Active:   true,
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
	}
	if clientID != 0 {
		u.ClientID = &clientID
	}

	require.NoError(t, gdb.Create(&u).Error)

	return u
}
