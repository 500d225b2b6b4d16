package users

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/forumbridge/migrator/internal/entities"
	"github.com/forumbridge/migrator/internal/importer"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := "./test_users_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.User{}, &entities.UserCustomField{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func TestRepository_Create(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	createdAt := time.Date(2015, 6, 1, 12, 0, 0, 0, time.UTC)
	id, err := repo.Create(importer.UserRecord{
		Username:  "Alice",
		Email:     "Alice@Example.COM",
		CreatedAt: createdAt,
	})

	require.NoError(t, err)
	require.NotZero(t, id)

	var user entities.User
	require.NoError(t, repo.db.First(&user, id).Error)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice", user.Name) // blank name falls back to username
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, entities.TrustLevelBasic, user.TrustLevel)
	assert.True(t, user.Active)
	assert.NotEmpty(t, user.PasswordHash)
	assert.Equal(t, createdAt, user.CreatedAt.UTC())
}

func TestRepository_Create_RejectsInvalidEmail(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.Create(importer.UserRecord{Username: "noemail", Email: "not-an-address"})

	assert.Error(t, err)
}

func TestRepository_Create_DuplicateEmailFails(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.Create(importer.UserRecord{Username: "first", Email: "same@example.com"})
	require.NoError(t, err)

	_, err = repo.Create(importer.UserRecord{Username: "second", Email: "same@example.com"})
	assert.Error(t, err)
}

func TestRepository_Create_KeepsElevatedTrustLevel(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	id, err := repo.Create(importer.UserRecord{
		Username:   "veteran",
		Email:      "veteran@example.com",
		TrustLevel: int(entities.TrustLevelRegular),
	})
	require.NoError(t, err)

	var user entities.User
	require.NoError(t, repo.db.First(&user, id).Error)
	assert.Equal(t, entities.TrustLevelRegular, user.TrustLevel)
}

func TestRepository_SuggestUsername_SuffixesOnCollision(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.Create(importer.UserRecord{Username: "alice", Email: "a1@example.com"})
	require.NoError(t, err)
	_, err = repo.Create(importer.UserRecord{Username: "alice", Email: "a2@example.com"})
	require.NoError(t, err)

	suggestion, err := repo.SuggestUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, "alice2", suggestion)
}

func TestRepository_SuggestUsername_Sanitizes(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	suggestion, err := repo.SuggestUsername("  Olga Brömsen!  ")
	require.NoError(t, err)
	assert.Equal(t, "olga_brömsen", suggestion)

	suggestion, err = repo.SuggestUsername("***")
	require.NoError(t, err)
	assert.Equal(t, "user", suggestion)
}

func TestRepository_FindIDByEmail(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	created, err := repo.Create(importer.UserRecord{Username: "bob", Email: "bob@example.com"})
	require.NoError(t, err)

	id, err := repo.FindIDByEmail("Bob@Example.com")
	require.NoError(t, err)
	assert.Equal(t, created, id)
}

func TestRepository_FindIDByEmail_AbsentIsNotAnError(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	id, err := repo.FindIDByEmail("nobody@example.com")
	require.NoError(t, err)
	assert.Zero(t, id)
}

func TestRepository_EnsureAdmin(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	id, err := repo.EnsureAdmin("admin", "admin@example.com")
	require.NoError(t, err)

	var user entities.User
	require.NoError(t, repo.db.First(&user, id).Error)
	assert.True(t, user.Admin)
	assert.True(t, user.Moderator)
	assert.Equal(t, entities.TrustLevelLeader, user.TrustLevel)

	// Second call finds the same account.
	again, err := repo.EnsureAdmin("admin", "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, again)
}

func TestRepository_EnsureSystem_Idempotent(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	first, err := repo.EnsureSystem()
	require.NoError(t, err)
	assert.Equal(t, SystemUsername, first.Username)
	assert.False(t, first.Active)
	assert.False(t, first.Admin)

	second, err := repo.EnsureSystem()
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestRepository_ImportIDRoundtrip(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	id, err := repo.Create(importer.UserRecord{Username: "carol", Email: "carol@example.com"})
	require.NoError(t, err)

	require.NoError(t, repo.StampImportID(id, "42"))

	ids, err := repo.ImportedIDs()
	require.NoError(t, err)
	assert.Equal(t, map[string]uint{"42": id}, ids)
}
