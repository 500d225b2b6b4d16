package cli

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/robfig/cron/v3"

	"github.com/forumbridge/migrator/internal/config"
	"github.com/forumbridge/migrator/internal/database"
	"github.com/forumbridge/migrator/internal/database/categories"
	"github.com/forumbridge/migrator/internal/database/posts"
	"github.com/forumbridge/migrator/internal/database/users"
	"github.com/forumbridge/migrator/internal/importer"
	"github.com/forumbridge/migrator/internal/legacyforum"
	"github.com/forumbridge/migrator/internal/source"
)

// MigrateCommand runs the legacy forum migration, once or on a schedule.
type MigrateCommand struct {
	SourcePath string
	TargetPath string
	BatchSize  int
	Schedule   string

	cfg *config.Config
}

// NewMigrateCommand creates a new MigrateCommand
func NewMigrateCommand(cfg *config.Config) *MigrateCommand {
	return &MigrateCommand{cfg: cfg}
}

// ParseFlags parses command line flags
func (cmd *MigrateCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)

	fs.StringVar(&cmd.SourcePath, "source", cmd.cfg.Source.DatabasePath, "Path to the legacy forum database")
	fs.StringVar(&cmd.TargetPath, "target", cmd.cfg.Target.DatabasePath, "Path to the target platform database")
	fs.IntVar(&cmd.BatchSize, "batch-size", cmd.cfg.Import.BatchSize, "Source rows fetched per page")
	fs.StringVar(&cmd.Schedule, "schedule", cmd.cfg.Import.Schedule, "Cron expression for repeated runs (empty = run once)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s migrate [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Migrate a legacy forum database into the discussion platform.\n\n")
		fmt.Fprintf(os.Stderr, "The migration is idempotent: records already carrying an import id\n")
		fmt.Fprintf(os.Stderr, "on the target are skipped, so interrupted runs can simply be rerun.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s migrate -source ./forum.db -target ./discussion.db\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s migrate -schedule \"0 3 * * *\"\n", os.Args[0])
	}

	return fs.Parse(args)
}

// Run executes the migrate command
func (cmd *MigrateCommand) Run() error {
	db, err := database.New(cmd.TargetPath)
	if err != nil {
		return fmt.Errorf("failed to open target database: %w", err)
	}
	defer db.Close()

	userRepo := users.NewRepository(db.DB)
	system, err := userRepo.EnsureSystem()
	if err != nil {
		return err
	}

	src, err := source.OpenSQLite(cmd.SourcePath)
	if err != nil {
		return fmt.Errorf("failed to connect to source: %w", err)
	}
	defer src.Close()

	imp := importer.New(
		importer.Stores{
			Users:      userRepo,
			Categories: categories.NewRepository(db.DB, system.ID),
			Posts:      posts.NewRepository(db.DB, system.ID),
			Throttle:   db,
		},
		importer.Options{
			Out:           os.Stdout,
			AdminUsername: cmd.cfg.Admin.Username,
			AdminEmail:    cmd.cfg.Admin.Email,
		},
	)

	extractor := legacyforum.New(src, legacyforum.Options{
		BatchSize:      cmd.BatchSize,
		ExcludedForums: cmd.cfg.Import.ExcludedCategories,
	})

	if cmd.Schedule == "" {
		return imp.Run(extractor)
	}

	// Scheduled mode: the run is idempotent, so a nightly rerun just picks
	// up whatever appeared in the source since the last one.
	if err := imp.Run(extractor); err != nil {
		return err
	}
	c := cron.New()
	if _, err := c.AddFunc(cmd.Schedule, func() {
		if err := imp.Run(extractor); err != nil {
			log.Printf("scheduled migration failed: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", cmd.Schedule, err)
	}
	log.Printf("scheduled migration with cron expression %q", cmd.Schedule)
	c.Run()
	return nil
}
