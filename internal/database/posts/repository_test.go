package posts

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

const testOwnerID = 1

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := "./test_posts_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Topic{}, &entities.Post{}, &entities.PostCustomField{})
	require.NoError(t, err)

	repo := NewRepository(db, testOwnerID)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func TestRepository_Create_Topic(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	createdAt := time.Date(2019, 3, 12, 8, 0, 0, 0, time.UTC)
	created, err := repo.Create(importer.PostRecord{
		UserID:    7,
		Title:     "Welcome to the forum",
		Raw:       "First post.",
		CreatedAt: createdAt,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, created.PostNumber)
	require.NotZero(t, created.TopicID)

	var topic entities.Topic
	require.NoError(t, repo.db.First(&topic, created.TopicID).Error)
	assert.Equal(t, "Welcome to the forum", topic.Title)
	assert.Equal(t, uint(7), topic.UserID)
	assert.Equal(t, 1, topic.PostsCount)
	assert.Equal(t, createdAt, topic.BumpedAt.UTC())

	var post entities.Post
	require.NoError(t, repo.db.First(&post, created.ID).Error)
	assert.Equal(t, entities.PostTypeRegular, post.PostType)
	assert.Equal(t, "First post.", post.Raw)
}

func TestRepository_Create_TopicRequiresTitle(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.Create(importer.PostRecord{Raw: "no title"})
	assert.Error(t, err)
}

func TestRepository_Create_RepliesGetDensePostNumbers(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	opening, err := repo.Create(importer.PostRecord{Title: "Thread", Raw: "op"})
	require.NoError(t, err)

	replyTo := 1
	first, err := repo.Create(importer.PostRecord{TopicID: opening.TopicID, Raw: "one"})
	require.NoError(t, err)
	second, err := repo.Create(importer.PostRecord{TopicID: opening.TopicID, Raw: "two", ReplyToPostNumber: &replyTo})
	require.NoError(t, err)

	assert.Equal(t, 2, first.PostNumber)
	assert.Equal(t, 3, second.PostNumber)

	var topic entities.Topic
	require.NoError(t, repo.db.First(&topic, opening.TopicID).Error)
	assert.Equal(t, 3, topic.PostsCount)

	var post entities.Post
	require.NoError(t, repo.db.First(&post, second.ID).Error)
	require.NotNil(t, post.ReplyToPostNumber)
	assert.Equal(t, 1, *post.ReplyToPostNumber)
}

func TestRepository_Create_ReplyToMissingTopicFails(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.Create(importer.PostRecord{TopicID: 999, Raw: "orphan"})
	assert.Error(t, err)
}

func TestRepository_Create_UnmappedAuthorFallsBackToDefaultOwner(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	created, err := repo.Create(importer.PostRecord{Title: "Ownerless", Raw: "x"})
	require.NoError(t, err)

	var post entities.Post
	require.NoError(t, repo.db.First(&post, created.ID).Error)
	assert.Equal(t, uint(testOwnerID), post.UserID)
}

func TestRepository_TopicPositions(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	opening, err := repo.Create(importer.PostRecord{Title: "Thread", Raw: "op"})
	require.NoError(t, err)
	reply, err := repo.Create(importer.PostRecord{TopicID: opening.TopicID, Raw: "one"})
	require.NoError(t, err)

	positions, err := repo.TopicPositions()
	require.NoError(t, err)
	assert.Equal(t, map[uint]importer.TopicPosition{
		opening.ID: {TopicID: opening.TopicID, PostNumber: 1},
		reply.ID:   {TopicID: opening.TopicID, PostNumber: 2},
	}, positions)
}

func TestRepository_ImportIDRoundtrip(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	created, err := repo.Create(importer.PostRecord{Title: "Thread", Raw: "op"})
	require.NoError(t, err)

	require.NoError(t, repo.StampImportID(created.ID, "thread-1"))

	ids, err := repo.ImportedIDs()
	require.NoError(t, err)
	assert.Equal(t, map[string]uint{"thread-1": created.ID}, ids)
}

func TestRepository_RefreshTopicActivity(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	t1 := time.Date(2019, 3, 12, 8, 0, 0, 0, time.UTC)
	t2 := time.Date(2019, 3, 13, 9, 0, 0, 0, time.UTC)
	t3 := time.Date(2019, 3, 14, 10, 0, 0, 0, time.UTC)

	opening, err := repo.Create(importer.PostRecord{Title: "Thread", Raw: "op", CreatedAt: t1})
	require.NoError(t, err)
	_, err = repo.Create(importer.PostRecord{TopicID: opening.TopicID, Raw: "reply", CreatedAt: t2})
	require.NoError(t, err)

	// A later moderator action must not count as activity.
	action := entities.Post{
		TopicID:    opening.TopicID,
		UserID:     testOwnerID,
		PostNumber: 3,
		Raw:        "closed",
		PostType:   entities.PostTypeModeratorAction,
		CreatedAt:  t3,
	}
	require.NoError(t, repo.db.Create(&action).Error)

	require.NoError(t, repo.RefreshTopicActivity())

	var topic entities.Topic
	require.NoError(t, repo.db.First(&topic, opening.TopicID).Error)
	assert.Equal(t, t2, topic.BumpedAt.UTC())
}
