package entities

import "time"

// ImportIDField is the custom-field name under which the source system's
// record identifier is stamped on migrated entities. Scanning these fields
// back is what makes a rerun of the migration idempotent.
const ImportIDField = "import_id"

type UserCustomField struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index" json:"user_id"`
	Name      string    `gorm:"index;size:100" json:"name"`
	Value     string    `gorm:"size:255" json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

type CategoryCustomField struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CategoryID uint      `gorm:"index" json:"category_id"`
	Name       string    `gorm:"index;size:100" json:"name"`
	Value      string    `gorm:"size:255" json:"value"`
	CreatedAt  time.Time `json:"created_at"`
}

type PostCustomField struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"index" json:"post_id"`
	Name      string    `gorm:"index;size:100" json:"name"`
	Value     string    `gorm:"size:255" json:"value"`
	CreatedAt time.Time `json:"created_at"`
}
