package categories

import (
	"os"
	"testing"

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
	dbPath := "./test_categories_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Category{}, &entities.CategoryCustomField{})
	require.NoError(t, err)

	repo := NewRepository(db, testOwnerID)

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

	id, err := repo.Create(importer.CategoryRecord{
		Name:        "Tech Support & FAQ",
		Description: "Ask for help here.",
		Position:    2,
	})

	require.NoError(t, err)
	require.NotZero(t, id)

	var category entities.Category
	require.NoError(t, repo.db.First(&category, id).Error)
	assert.Equal(t, "Tech Support & FAQ", category.Name)
	assert.Equal(t, "tech-support-faq", category.Slug)
	assert.Equal(t, "Ask for help here.", category.Description)
	assert.Equal(t, 2, category.Position)
	assert.Equal(t, uint(testOwnerID), category.UserID)
	assert.Nil(t, category.ParentCategoryID)
}

func TestRepository_Create_DuplicateNamesAreDistinctCategories(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	first, err := repo.Create(importer.CategoryRecord{Name: "General"})
	require.NoError(t, err)
	second, err := repo.Create(importer.CategoryRecord{Name: "General"})
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	var count int64
	require.NoError(t, repo.db.Model(&entities.Category{}).Where("name = ?", "General").Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestRepository_Create_WithParent(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	parent, err := repo.Create(importer.CategoryRecord{Name: "Support"})
	require.NoError(t, err)

	child, err := repo.Create(importer.CategoryRecord{Name: "Installation", ParentCategoryID: &parent})
	require.NoError(t, err)

	var category entities.Category
	require.NoError(t, repo.db.First(&category, child).Error)
	require.NotNil(t, category.ParentCategoryID)
	assert.Equal(t, parent, *category.ParentCategoryID)
}

func TestRepository_ImportIDRoundtrip(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	first, err := repo.Create(importer.CategoryRecord{Name: "General"})
	require.NoError(t, err)
	second, err := repo.Create(importer.CategoryRecord{Name: "Support"})
	require.NoError(t, err)

	require.NoError(t, repo.StampImportID(first, "10"))
	require.NoError(t, repo.StampImportID(second, "20"))

	ids, err := repo.ImportedIDs()
	require.NoError(t, err)
	assert.Equal(t, map[string]uint{"10": first, "20": second}, ids)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "hello-world", slugify("Hello, World!"))
	assert.Equal(t, "faq", slugify("  FAQ  "))
	assert.Equal(t, "", slugify("!!!"))
}
