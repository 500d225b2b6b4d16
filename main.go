package main

import (
	"fmt"
	"os"

	"github.com/forumbridge/migrator/internal/cli"
	"github.com/forumbridge/migrator/internal/config"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	command := "migrate"
	args := os.Args[1:]
	if len(os.Args) >= 2 {
		command = os.Args[1]
		args = os.Args[2:]
	}

	switch command {
	case "migrate":
		cfg := config.NewConfig()
		cmd := cli.NewMigrateCommand(cfg)
		if err := cmd.ParseFlags(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := cmd.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "seed-demo":
		cmd := cli.NewSeedDemoCommand()
		if err := cmd.ParseFlags(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := cmd.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "version":
		fmt.Printf("migrator %s (%s)\n", Version, Commit)

	case "-h", "--help", "help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  migrate    Migrate a legacy forum into the discussion platform (default)\n")
	fmt.Fprintf(os.Stderr, "  seed-demo  Generate a demo legacy forum database\n")
	fmt.Fprintf(os.Stderr, "  version    Print version information\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
