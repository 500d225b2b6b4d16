package importer

import (
	"time"

	"github.com/forumbridge/migrator/internal/source"
)

// UserRecord is the attribute set a user transform produces from one source
// row. ImportID is consumed by the importer itself and never reaches the
// target store.
type UserRecord struct {
	ImportID   any
	Username   string
	Name       string
	Email      string
	TrustLevel int
	Admin      bool
	Moderator  bool
	CreatedAt  time.Time
}

// CategoryRecord is the attribute set a category transform produces.
// ParentCategoryID, when set, is an already-mapped target category id.
type CategoryRecord struct {
	ImportID         any
	Name             string
	Description      string
	Position         int
	ParentCategoryID *uint
}

// PostRecord is the attribute set a post transform produces. A record with
// TopicID == 0 and a Title starts a new topic; a record with TopicID != 0 is
// a reply within that topic. A transform returns nil when the row cannot be
// resolved (e.g. an orphan reply whose topic was never imported), which the
// importer counts as a skip.
type PostRecord struct {
	ImportID          any
	UserID            uint
	Title             string
	CategoryID        uint
	TopicID           uint
	ReplyToPostNumber *int
	Raw               string
	PinnedAt          *time.Time
	CreatedAt         time.Time
}

// Transforms map one raw source row to the typed attributes an entity
// importer needs. They are supplied by the source-specific extraction logic.
type (
	UserTransform     func(row source.Row) UserRecord
	CategoryTransform func(row source.Row) CategoryRecord
	PostTransform     func(row source.Row) *PostRecord
)

// CreatedPost reports where a newly created post landed in the target system.
type CreatedPost struct {
	ID         uint
	TopicID    uint
	PostNumber int
}

// UserStore is the user-side surface the importer consumes from the target
// platform. Create runs with bulk-import validation relaxed; FindIDByEmail
// returns 0 with a nil error when no user carries the address.
type UserStore interface {
	Create(rec UserRecord) (uint, error)
	FindIDByEmail(email string) (uint, error)
	EnsureAdmin(username, email string) (uint, error)
	StampImportID(userID uint, importID string) error
	ImportedIDs() (map[string]uint, error)
}

// CategoryStore is the category-side surface of the target platform.
type CategoryStore interface {
	Create(rec CategoryRecord) (uint, error)
	StampImportID(categoryID uint, importID string) error
	ImportedIDs() (map[string]uint, error)
}

// PostStore is the post/topic-side surface of the target platform.
// TopicPositions returns the topic coordinates of every existing post so the
// identity map can be rehydrated; RefreshTopicActivity bulk-corrects each
// topic's last-activity timestamp from its post history.
type PostStore interface {
	Create(rec PostRecord) (CreatedPost, error)
	StampImportID(postID uint, importID string) error
	ImportedIDs() (map[string]uint, error)
	TopicPositions() (map[uint]TopicPosition, error)
	RefreshTopicActivity() error
}

// ThrottleStore toggles the target platform's creation rate limiting.
// The importer disables it for the duration of a run and re-enables it on
// every exit path.
type ThrottleStore interface {
	SetThrottleEnabled(enabled bool) error
}

// Stores bundles the target-platform collaborators an import run needs.
type Stores struct {
	Users      UserStore
	Categories CategoryStore
	Posts      PostStore
	Throttle   ThrottleStore
}
