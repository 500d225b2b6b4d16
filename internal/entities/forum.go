package entities

import "time"

// TrustLevel mirrors the discussion platform's privilege tiers.
type TrustLevel int

const (
	TrustLevelNewcomer TrustLevel = 0
	TrustLevelBasic    TrustLevel = 1
	TrustLevelMember   TrustLevel = 2
	TrustLevelRegular  TrustLevel = 3
	TrustLevelLeader   TrustLevel = 4
)

type PostType int

const (
	PostTypeRegular         PostType = 1
	PostTypeModeratorAction PostType = 2
	PostTypeSmallAction     PostType = 3
)

type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"uniqueIndex;size:60" json:"username"`
	Name         string     `gorm:"size:255" json:"name,omitempty"`
	Email        string     `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string     `gorm:"size:100" json:"-"`
	TrustLevel   TrustLevel `gorm:"default:1" json:"trust_level"`
	Admin        bool       `gorm:"default:false" json:"admin"`
	Moderator    bool       `gorm:"default:false" json:"moderator"`
	Active       bool       `gorm:"default:true" json:"active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type Category struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"index;size:100" json:"name"`
	Slug             string    `gorm:"size:100" json:"slug"`
	Description      string    `gorm:"type:text" json:"description,omitempty"`
	Position         int       `json:"position"`
	ParentCategoryID *uint     `gorm:"index" json:"parent_category_id,omitempty"`
	UserID           uint      `gorm:"index" json:"user_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type Topic struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Title      string     `gorm:"size:512" json:"title"`
	CategoryID uint       `gorm:"index" json:"category_id"`
	UserID     uint       `gorm:"index" json:"user_id"`
	PostsCount int        `gorm:"default:0" json:"posts_count"`
	Views      int        `gorm:"default:0" json:"views"`
	PinnedAt   *time.Time `json:"pinned_at,omitempty"`
	BumpedAt   time.Time  `json:"bumped_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type Post struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	TopicID           uint      `gorm:"index" json:"topic_id"`
	UserID            uint      `gorm:"index" json:"user_id"`
	PostNumber        int       `gorm:"index" json:"post_number"`
	Raw               string    `gorm:"type:text" json:"raw"`
	ReplyToPostNumber *int      `json:"reply_to_post_number,omitempty"`
	PostType          PostType  `gorm:"default:1" json:"post_type"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// SiteSetting is a key/value switch consulted by the platform at runtime,
// e.g. whether creation rate limits are enforced.
type SiteSetting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:100" json:"name"`
	Value     string    `gorm:"size:255" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
