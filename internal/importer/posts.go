package importer

import (
	"log"

	"github.com/forumbridge/migrator/internal/source"
)

// CreatePosts imports one page of topic or reply rows. total and offset come
// from the source-side pagination and drive progress reporting. Returns the
// page's created and skipped counts; callers aggregate across pages.
//
// Per row: a nil transform result is a deliberate skip (the row cannot be
// resolved, e.g. its topic was never imported); an already-mapped import id
// is an idempotent replay skip; a creation failure is logged and skipped so
// a single bad row never aborts the batch.
func (i *Importer) CreatePosts(rows []source.Row, total, offset int, transform PostTransform) (created, skipped int) {
	for n, row := range rows {
		rec := transform(row)
		if rec == nil {
			skipped++
		} else if key := importKey(rec.ImportID); i.alreadyImported(KindPost, key) {
			skipped++
		} else if post, err := i.stores.Posts.Create(*rec); err != nil {
			log.Printf("failed to create post for source id %s: %v", key, err)
			skipped++
		} else {
			i.stampAndRecord(KindPost, key, post.ID, i.stores.Posts.StampImportID)
			i.ids.RecordPosition(post.ID, TopicPosition{TopicID: post.TopicID, PostNumber: post.PostNumber})
			created++
		}

		i.status.step(offset+n+1, total)
	}
	if len(rows) > 0 {
		i.status.done()
	}

	i.tally.CreatedPosts += created
	i.tally.SkippedPosts += skipped
	return created, skipped
}
