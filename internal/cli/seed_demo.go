package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/forumbridge/migrator/internal/config"
	"github.com/forumbridge/migrator/internal/legacyforum"
)

// SeedDemoCommand generates a small legacy forum database to migrate from.
type SeedDemoCommand struct {
	OutputPath string
}

// NewSeedDemoCommand creates a new SeedDemoCommand
func NewSeedDemoCommand() *SeedDemoCommand {
	return &SeedDemoCommand{}
}

// ParseFlags parses command line flags
func (cmd *SeedDemoCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("seed-demo", flag.ExitOnError)

	fs.StringVar(&cmd.OutputPath, "out", config.DefaultSourceDatabasePath, "Where to write the demo source database")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s seed-demo [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a demo legacy forum database for trying out the migration.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run executes the seed-demo command
func (cmd *SeedDemoCommand) Run() error {
	if err := legacyforum.Seed(cmd.OutputPath); err != nil {
		return err
	}
	fmt.Printf("Demo forum database written to %s\n", cmd.OutputPath)
	return nil
}
