// Package importer is the migration engine core: the idempotent identity
// map, the batched streaming reader and the entity importers that move a
// legacy forum's users, categories, topics and comments into the target
// discussion platform. Every creation is guarded by persisted import-id
// metadata, so a killed run can simply be restarted and will re-skip
// everything it already did.
package importer

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Extractor is the source-specific half of a migration: it owns the source
// SQL and the row transforms, and drives the importer's phases in order
// (users, categories, topics, replies).
type Extractor interface {
	Name() string
	Run(imp *Importer) error
}

// Options configures an import run.
type Options struct {
	// Out receives progress lines and the final summary. Defaults to stdout.
	Out io.Writer
	// AdminUsername/AdminEmail identify the designated admin account to
	// bootstrap before the import. Left empty, the step is skipped.
	AdminUsername string
	AdminEmail    string
}

// Tally aggregates per-kind outcome counters across the whole run.
type Tally struct {
	CreatedUsers      int
	AdoptedUsers      int
	SkippedUsers      int
	FailedUsers       int
	CreatedCategories int
	SkippedCategories int
	CreatedPosts      int
	SkippedPosts      int
}

// Importer is the explicit context object threaded through a migration run.
// It owns all mutable run state: the identity map, the failure list and the
// counters. Single-threaded by design; no locking is needed.
type Importer struct {
	stores Stores
	opts   Options
	out    io.Writer
	status statusWriter

	ids    *IdentityMap
	failed []FailedRecord
	tally  Tally
}

func New(stores Stores, opts Options) *Importer {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &Importer{
		stores: stores,
		opts:   opts,
		out:    opts.Out,
		status: statusWriter{w: opts.Out},
		ids:    NewIdentityMap(),
	}
}

// Identity exposes the identity map to transforms that need to resolve
// already-imported users, categories or posts.
func (i *Importer) Identity() *IdentityMap {
	return i.ids
}

// Replies returns a linker over the run's identity map.
func (i *Importer) Replies() *ReplyLinker {
	return &ReplyLinker{ids: i.ids}
}

// Failures returns the rows that could not be imported during this run.
func (i *Importer) Failures() []FailedRecord {
	return i.failed
}

// Tally returns the run's outcome counters so far.
func (i *Importer) Tally() Tally {
	return i.tally
}

// Run executes a full migration: rehydrate the identity map from the target,
// disable target-side throttling for the duration (re-enabled on every exit
// path), bootstrap the admin account, hand control to the extractor, then
// finalize topic activity timestamps and print the summary.
func (i *Importer) Run(ex Extractor) (err error) {
	log.Printf("starting %s import", ex.Name())

	i.reset()
	if err := i.hydrate(); err != nil {
		return fmt.Errorf("failed to rehydrate identity map: %w", err)
	}

	if err := i.stores.Throttle.SetThrottleEnabled(false); err != nil {
		return fmt.Errorf("failed to disable throttling: %w", err)
	}
	defer func() {
		if throttleErr := i.stores.Throttle.SetThrottleEnabled(true); throttleErr != nil {
			log.Printf("failed to re-enable throttling: %v", throttleErr)
			if err == nil {
				err = throttleErr
			}
		}
	}()

	i.ensureAdmin()

	if err := ex.Run(i); err != nil {
		return fmt.Errorf("%s import failed: %w", ex.Name(), err)
	}

	log.Printf("updating topic activity timestamps")
	if err := i.stores.Posts.RefreshTopicActivity(); err != nil {
		return fmt.Errorf("failed to refresh topic activity: %w", err)
	}

	i.printSummary()
	return nil
}

// reset clears per-run state so a scheduled rerun starts from the target's
// current persisted contents, not a stale in-memory map.
func (i *Importer) reset() {
	i.ids = NewIdentityMap()
	i.failed = nil
	i.tally = Tally{}
}

// hydrate rebuilds the identity map from the import-id metadata persisted on
// existing target entities, plus the topic coordinates of every known post.
func (i *Importer) hydrate() error {
	users, err := i.stores.Users.ImportedIDs()
	if err != nil {
		return err
	}
	i.ids.load(KindUser, users)

	categories, err := i.stores.Categories.ImportedIDs()
	if err != nil {
		return err
	}
	i.ids.load(KindCategory, categories)

	posts, err := i.stores.Posts.ImportedIDs()
	if err != nil {
		return err
	}
	i.ids.load(KindPost, posts)

	positions, err := i.stores.Posts.TopicPositions()
	if err != nil {
		return err
	}
	i.ids.loadPositions(positions)

	log.Printf("identity map rehydrated: %d users, %d categories, %d posts",
		i.ids.Len(KindUser), i.ids.Len(KindCategory), i.ids.Len(KindPost))
	return nil
}

// ensureAdmin bootstraps the designated admin account. Failure here is
// reported but does not abort the run: the admin is not on the critical
// import path.
func (i *Importer) ensureAdmin() {
	if i.opts.AdminEmail == "" {
		return
	}
	if _, err := i.stores.Users.EnsureAdmin(i.opts.AdminUsername, i.opts.AdminEmail); err != nil {
		log.Printf("failed to bootstrap admin account %s: %v", i.opts.AdminEmail, err)
	}
}

// alreadyImported reports whether the import id is mapped for the kind.
func (i *Importer) alreadyImported(kind Kind, key string) bool {
	_, ok := i.ids.Lookup(kind, key)
	return ok
}

// stampAndRecord persists the import id on the target entity and records the
// in-memory mapping. A duplicate Record here means two code paths created
// the same source record in one run; it is surfaced loudly rather than
// silently overwritten.
func (i *Importer) stampAndRecord(kind Kind, key string, targetID uint, stamp func(uint, string) error) {
	if err := stamp(targetID, key); err != nil {
		log.Printf("failed to stamp import id on %s %d: %v", kind, targetID, err)
	}
	if err := i.ids.Record(kind, key, targetID); err != nil {
		log.Printf("identity map corruption: %v", err)
	}
}

func (i *Importer) printSummary() {
	fmt.Fprintf(i.out, "\nusers:      %d created, %d adopted, %d skipped, %d failed\n",
		i.tally.CreatedUsers, i.tally.AdoptedUsers, i.tally.SkippedUsers, i.tally.FailedUsers)
	fmt.Fprintf(i.out, "categories: %d created, %d skipped\n",
		i.tally.CreatedCategories, i.tally.SkippedCategories)
	fmt.Fprintf(i.out, "posts:      %d created, %d skipped\n",
		i.tally.CreatedPosts, i.tally.SkippedPosts)

	if len(i.failed) > 0 {
		fmt.Fprintf(i.out, "\nfailed records:\n")
		for _, f := range i.failed {
			fmt.Fprintf(i.out, "  %s (%s): %s\n", f.ImportID, f.Email, f.Reason)
		}
	}
}
