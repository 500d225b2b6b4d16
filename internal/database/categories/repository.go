// Package categories provides the target platform's category operations
// consumed by the migration engine.
package categories

import (
	"strings"
	"unicode"

	"gorm.io/gorm"

	"github.com/forumbridge/migrator/internal/entities"
	"github.com/forumbridge/migrator/internal/importer"
)

// Repository handles all category database operations.
type Repository struct {
	db             *gorm.DB
	defaultOwnerID uint
}

var _ importer.CategoryStore = (*Repository)(nil)

// NewRepository creates a new categories repository. defaultOwnerID is the
// unprivileged account that owns migrated categories.
func NewRepository(db *gorm.DB, defaultOwnerID uint) *Repository {
	return &Repository{db: db, defaultOwnerID: defaultOwnerID}
}

// Create creates a target category from migrated attributes. Name collisions
// are allowed on purpose: two source categories with the same name are still
// two categories.
func (r *Repository) Create(rec importer.CategoryRecord) (uint, error) {
	category := entities.Category{
		Name:             rec.Name,
		Slug:             slugify(rec.Name),
		Description:      rec.Description,
		Position:         rec.Position,
		ParentCategoryID: rec.ParentCategoryID,
		UserID:           r.defaultOwnerID,
	}
	if err := r.db.Create(&category).Error; err != nil {
		return 0, err
	}
	return category.ID, nil
}

// StampImportID persists the source record's id as metadata on the category.
func (r *Repository) StampImportID(categoryID uint, importID string) error {
	field := entities.CategoryCustomField{
		CategoryID: categoryID,
		Name:       entities.ImportIDField,
		Value:      importID,
	}
	return r.db.Create(&field).Error
}

// ImportedIDs scans back every persisted import id as importID -> categoryID.
func (r *Repository) ImportedIDs() (map[string]uint, error) {
	var fields []entities.CategoryCustomField
	if err := r.db.Where("name = ?", entities.ImportIDField).Find(&fields).Error; err != nil {
		return nil, err
	}
	ids := make(map[string]uint, len(fields))
	for _, f := range fields {
		ids[f.Value] = f.CategoryID
	}
	return ids, nil
}

func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteRune('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
