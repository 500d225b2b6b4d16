package database

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forumbridge/migrator/internal/entities"
)

func setupTestDB(t *testing.T) (*Database, func()) {
	dbPath := "./test_database_" + t.Name() + ".db"

	db, err := New(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}

	return db, cleanup
}

func TestNew_MigratesSchema(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	for _, model := range []any{
		&entities.User{},
		&entities.Category{},
		&entities.Topic{},
		&entities.Post{},
		&entities.SiteSetting{},
	} {
		assert.True(t, db.DB.Migrator().HasTable(model))
	}
}

func TestNew_SeedsThrottleEnabled(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	enabled, err := db.ThrottleEnabled()
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestSetThrottleEnabled(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, db.SetThrottleEnabled(false))
	enabled, err := db.ThrottleEnabled()
	require.NoError(t, err)
	assert.False(t, enabled)

	require.NoError(t, db.SetThrottleEnabled(true))
	enabled, err = db.ThrottleEnabled()
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestNew_ReopeningKeepsExistingSetting(t *testing.T) {
	dbPath := "./test_database_reopen.db"
	defer os.Remove(dbPath)

	db, err := New(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.SetThrottleEnabled(false))
	require.NoError(t, db.Close())

	db, err = New(dbPath)
	require.NoError(t, err)
	defer db.Close()

	enabled, err := db.ThrottleEnabled()
	require.NoError(t, err)
	assert.False(t, enabled)
}
