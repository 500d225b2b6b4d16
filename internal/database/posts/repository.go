// Package posts provides the target platform's topic and post operations
// consumed by the migration engine: transactional topic/post creation,
// import-id stamping and scan-back, topic-position scans for identity-map
// rehydration, and the bulk topic-activity refresh.
package posts

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/forumbridge/migrator/internal/entities"
	"github.com/forumbridge/migrator/internal/importer"
)

// Repository handles all post and topic database operations.
type Repository struct {
	db             *gorm.DB
	defaultOwnerID uint
}

var _ importer.PostStore = (*Repository)(nil)

// NewRepository creates a new posts repository. defaultOwnerID owns posts
// whose source author could not be mapped to a target user.
func NewRepository(db *gorm.DB, defaultOwnerID uint) *Repository {
	return &Repository{db: db, defaultOwnerID: defaultOwnerID}
}

// Create creates a target post. A record with TopicID == 0 starts a new
// topic (title required) whose opening post gets post number 1; otherwise
// the record is appended to its topic with the next post number. Both cases
// run in one transaction so post numbers stay dense.
func (r *Repository) Create(rec importer.PostRecord) (importer.CreatedPost, error) {
	if rec.TopicID == 0 {
		return r.createTopic(rec)
	}
	return r.createReply(rec)
}

func (r *Repository) createTopic(rec importer.PostRecord) (importer.CreatedPost, error) {
	if rec.Title == "" {
		return importer.CreatedPost{}, fmt.Errorf("topic post missing title")
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	var post entities.Post
	err := r.db.Transaction(func(tx *gorm.DB) error {
		topic := entities.Topic{
			Title:      rec.Title,
			CategoryID: rec.CategoryID,
			UserID:     r.ownerFor(rec),
			PostsCount: 1,
			PinnedAt:   rec.PinnedAt,
			BumpedAt:   createdAt,
			CreatedAt:  createdAt,
		}
		if err := tx.Create(&topic).Error; err != nil {
			return err
		}

		post = entities.Post{
			TopicID:    topic.ID,
			UserID:     topic.UserID,
			PostNumber: 1,
			Raw:        rec.Raw,
			PostType:   entities.PostTypeRegular,
			CreatedAt:  createdAt,
		}
		return tx.Create(&post).Error
	})
	if err != nil {
		return importer.CreatedPost{}, err
	}
	return importer.CreatedPost{ID: post.ID, TopicID: post.TopicID, PostNumber: post.PostNumber}, nil
}

func (r *Repository) createReply(rec importer.PostRecord) (importer.CreatedPost, error) {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	var post entities.Post
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var topic entities.Topic
		if err := tx.First(&topic, rec.TopicID).Error; err != nil {
			return fmt.Errorf("topic %d not found: %w", rec.TopicID, err)
		}

		var maxNumber int
		if err := tx.Model(&entities.Post{}).
			Where("topic_id = ?", rec.TopicID).
			Select("COALESCE(MAX(post_number), 0)").
			Scan(&maxNumber).Error; err != nil {
			return err
		}

		post = entities.Post{
			TopicID:           rec.TopicID,
			UserID:            r.ownerFor(rec),
			PostNumber:        maxNumber + 1,
			Raw:               rec.Raw,
			ReplyToPostNumber: rec.ReplyToPostNumber,
			PostType:          entities.PostTypeRegular,
			CreatedAt:         createdAt,
		}
		if err := tx.Create(&post).Error; err != nil {
			return err
		}

		return tx.Model(&topic).Update("posts_count", gorm.Expr("posts_count + 1")).Error
	})
	if err != nil {
		return importer.CreatedPost{}, err
	}
	return importer.CreatedPost{ID: post.ID, TopicID: post.TopicID, PostNumber: post.PostNumber}, nil
}

func (r *Repository) ownerFor(rec importer.PostRecord) uint {
	if rec.UserID != 0 {
		return rec.UserID
	}
	return r.defaultOwnerID
}

// StampImportID persists the source record's id as metadata on the post.
func (r *Repository) StampImportID(postID uint, importID string) error {
	field := entities.PostCustomField{
		PostID: postID,
		Name:   entities.ImportIDField,
		Value:  importID,
	}
	return r.db.Create(&field).Error
}

// ImportedIDs scans back every persisted import id as importID -> postID.
func (r *Repository) ImportedIDs() (map[string]uint, error) {
	var fields []entities.PostCustomField
	if err := r.db.Where("name = ?", entities.ImportIDField).Find(&fields).Error; err != nil {
		return nil, err
	}
	ids := make(map[string]uint, len(fields))
	for _, f := range fields {
		ids[f.Value] = f.PostID
	}
	return ids, nil
}

// TopicPositions recomputes the topic coordinates of every existing post.
func (r *Repository) TopicPositions() (map[uint]importer.TopicPosition, error) {
	var posts []entities.Post
	if err := r.db.Select("id", "topic_id", "post_number").Find(&posts).Error; err != nil {
		return nil, err
	}
	positions := make(map[uint]importer.TopicPosition, len(posts))
	for _, p := range posts {
		positions[p.ID] = importer.TopicPosition{TopicID: p.TopicID, PostNumber: p.PostNumber}
	}
	return positions, nil
}

// RefreshTopicActivity sets every topic's last-activity timestamp to the
// newest creation time among its regular posts, ignoring moderator and
// system actions. Idempotent: it recomputes from current state.
func (r *Repository) RefreshTopicActivity() error {
	return r.db.Exec(`
		UPDATE topics
		SET bumped_at = (
			SELECT MAX(p.created_at) FROM posts p
			WHERE p.topic_id = topics.id AND p.post_type = ?
		)
		WHERE EXISTS (
			SELECT 1 FROM posts p
			WHERE p.topic_id = topics.id AND p.post_type = ?
		)`,
		entities.PostTypeRegular, entities.PostTypeRegular,
	).Error
}
