package importer

import (
	"log"

	"github.com/forumbridge/migrator/internal/source"
)

// CreateCategories imports category rows. A category already present in the
// identity map is reused as-is; everything else is created and mapped.
// Duplicate names across distinct import ids deliberately yield distinct
// target categories: the source ids, not the names, are the identity.
func (i *Importer) CreateCategories(rows []source.Row, transform CategoryTransform) {
	total := len(rows)
	for n, row := range rows {
		rec := transform(row)
		key := importKey(rec.ImportID)

		if i.alreadyImported(KindCategory, key) {
			i.tally.SkippedCategories++
		} else if categoryID, err := i.stores.Categories.Create(rec); err != nil {
			log.Printf("failed to create category for source id %s: %v", key, err)
			i.tally.SkippedCategories++
		} else {
			i.stampAndRecord(KindCategory, key, categoryID, i.stores.Categories.StampImportID)
			i.tally.CreatedCategories++
		}

		i.status.step(n+1, total)
	}
	if total > 0 {
		i.status.done()
	}
}
