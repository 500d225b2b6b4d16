// Package legacyforum extracts content from a legacy forum database
// (users, forums, threads, comments) and feeds it to the migration engine.
// It owns the source SQL and the row transforms; the engine owns identity
// and creation. Other source formats follow the same shape: implement
// importer.Extractor with your own schema's queries.
package legacyforum

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/forumbridge/migrator/internal/importer"
	"github.com/forumbridge/migrator/internal/source"
)

// Options configures an extraction run.
type Options struct {
	// BatchSize bounds each page pulled from the source.
	BatchSize int
	// ExcludedForums lists forum names (case-insensitive) whose threads and
	// comments are left behind.
	ExcludedForums []string
}

// Extractor implements importer.Extractor for the legacy forum schema.
type Extractor struct {
	src       source.Querier
	batchSize int
	excluded  map[string]bool
}

var _ importer.Extractor = (*Extractor)(nil)

func New(src source.Querier, opts Options) *Extractor {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = importer.DefaultBatchSize
	}
	excluded := make(map[string]bool, len(opts.ExcludedForums))
	for _, name := range opts.ExcludedForums {
		excluded[strings.ToLower(strings.TrimSpace(name))] = true
	}
	return &Extractor{src: src, batchSize: batchSize, excluded: excluded}
}

func (e *Extractor) Name() string {
	return "legacy forum"
}

// Run drives the import phases in dependency order: users before anything
// they author, categories before topics, topics before the replies that
// reference them.
func (e *Extractor) Run(imp *importer.Importer) error {
	if err := e.importUsers(imp); err != nil {
		return err
	}
	if err := e.importCategories(imp); err != nil {
		return err
	}
	if err := e.importTopics(imp); err != nil {
		return err
	}
	return e.importReplies(imp)
}

func (e *Extractor) importUsers(imp *importer.Importer) error {
	total, err := e.src.Count(`SELECT COUNT(*) FROM users`)
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}

	reader := importer.NewBatchReader(e.src,
		`SELECT user_id, username, email, joined_at FROM users ORDER BY user_id`,
		e.batchSize)
	return reader.Pages(func(page importer.Page) error {
		imp.CreateUsers(page.Rows, total, func(row source.Row) importer.UserRecord {
			return importer.UserRecord{
				ImportID:  row.Int64("user_id"),
				Username:  row.Str("username"),
				Email:     row.Str("email"),
				CreatedAt: row.Time("joined_at"),
			}
		})
		return nil
	})
}

func (e *Extractor) importCategories(imp *importer.Importer) error {
	// Parents before children so parent_id can resolve through the
	// identity map in a single pass.
	rows, err := e.src.Query(
		`SELECT forum_id, name, description, position, parent_id
		 FROM forums ORDER BY (parent_id IS NOT NULL), forum_id`)
	if err != nil {
		return fmt.Errorf("failed to query forums: %w", err)
	}

	kept := rows[:0]
	for _, row := range rows {
		if !e.excluded[strings.ToLower(row.Str("name"))] {
			kept = append(kept, row)
		}
	}

	imp.CreateCategories(kept, func(row source.Row) importer.CategoryRecord {
		rec := importer.CategoryRecord{
			ImportID:    row.Int64("forum_id"),
			Name:        row.Str("name"),
			Description: row.Str("description"),
			Position:    row.Int("position"),
		}
		if parentID := row.Int64("parent_id"); parentID != 0 {
			if mapped, ok := imp.Identity().Lookup(importer.KindCategory, parentID); ok {
				rec.ParentCategoryID = &mapped
			}
		}
		return rec
	})
	return nil
}

func (e *Extractor) importTopics(imp *importer.Importer) error {
	total, err := e.src.Count(`SELECT COUNT(*) FROM threads`)
	if err != nil {
		return fmt.Errorf("failed to count threads: %w", err)
	}

	reader := importer.NewBatchReader(e.src,
		`SELECT thread_id, forum_id, user_id, title, body, pinned, created_at
		 FROM threads ORDER BY thread_id`,
		e.batchSize)
	return reader.Pages(func(page importer.Page) error {
		imp.CreatePosts(page.Rows, total, page.Offset, func(row source.Row) *importer.PostRecord {
			categoryID, ok := imp.Identity().Lookup(importer.KindCategory, row.Int64("forum_id"))
			if !ok {
				// Thread lives in an excluded or unknown forum.
				return nil
			}

			rec := &importer.PostRecord{
				ImportID:   threadKey(row.Int64("thread_id")),
				Title:      row.Str("title"),
				CategoryID: categoryID,
				Raw:        row.Str("body"),
				CreatedAt:  row.Time("created_at"),
			}
			if userID, ok := imp.Identity().Lookup(importer.KindUser, row.Int64("user_id")); ok {
				rec.UserID = userID
			}
			if row.Int("pinned") != 0 {
				pinnedAt := rec.CreatedAt
				rec.PinnedAt = &pinnedAt
			}
			return rec
		})
		return nil
	})
}

func (e *Extractor) importReplies(imp *importer.Importer) error {
	total, err := e.src.Count(`SELECT COUNT(*) FROM comments`)
	if err != nil {
		return fmt.Errorf("failed to count comments: %w", err)
	}

	linker := imp.Replies()
	reader := importer.NewBatchReader(e.src,
		`SELECT comment_id, thread_id, user_id, parent_comment_id, body, created_at
		 FROM comments ORDER BY comment_id`,
		e.batchSize)
	return reader.Pages(func(page importer.Page) error {
		imp.CreatePosts(page.Rows, total, page.Offset, func(row source.Row) *importer.PostRecord {
			topic, ok := imp.Identity().TopicLookup(threadKey(row.Int64("thread_id")))
			if !ok {
				// Orphan comment: its thread was never imported.
				return nil
			}

			rec := &importer.PostRecord{
				ImportID:  commentKey(row.Int64("comment_id")),
				TopicID:   topic.TopicID,
				Raw:       row.Str("body"),
				CreatedAt: row.Time("created_at"),
			}
			if userID, ok := imp.Identity().Lookup(importer.KindUser, row.Int64("user_id")); ok {
				rec.UserID = userID
			}
			if parentID := row.Int64("parent_comment_id"); parentID != 0 {
				// A missing parent still yields a plain topic reply.
				if ref, ok := linker.Link(commentKey(parentID)); ok {
					rec.ReplyToPostNumber = ref.ReplyToPostNumber
				}
			}
			return rec
		})
		return nil
	})
}

// Threads and comments share the post namespace in the identity map, so
// their numeric ids are prefixed to keep them from colliding.
func threadKey(id int64) string {
	return "thread-" + strconv.FormatInt(id, 10)
}

func commentKey(id int64) string {
	return "comment-" + strconv.FormatInt(id, 10)
}
