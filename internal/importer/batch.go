package importer

import (
	"fmt"

	"github.com/forumbridge/migrator/internal/source"
)

// DefaultBatchSize bounds how many source rows are held in memory at once.
const DefaultBatchSize = 1000

// Page is one bounded slice of source rows fetched via offset pagination.
type Page struct {
	Rows   []source.Row
	Offset int
}

// BatchReader pulls rows from the source in fixed-size pages. The base query
// must carry stable ORDER BY semantics; the reader only appends LIMIT/OFFSET.
// An empty page ends the sequence; that rule lives here so callers cannot
// forget the termination check.
type BatchReader struct {
	q         source.Querier
	query     string
	batchSize int
}

func NewBatchReader(q source.Querier, query string, batchSize int) *BatchReader {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &BatchReader{q: q, query: query, batchSize: batchSize}
}

// Pages invokes fn for each non-empty page in order and returns after the
// first empty page. Each page is fully materialized, handed to fn and
// discarded before the next fetch, bounding peak memory to one page.
func (r *BatchReader) Pages(fn func(page Page) error) error {
	for offset := 0; ; offset += r.batchSize {
		paged := fmt.Sprintf("%s LIMIT %d OFFSET %d", r.query, r.batchSize, offset)
		rows, err := r.q.Query(paged)
		if err != nil {
			return fmt.Errorf("failed to fetch page at offset %d: %w", offset, err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := fn(Page{Rows: rows, Offset: offset}); err != nil {
			return err
		}
	}
}
