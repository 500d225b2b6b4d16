// Command seed_source writes a demo legacy forum database, the same data the
// seed-demo CLI command produces. Kept as a standalone binary so CI jobs can
// generate fixtures without the full migrator.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/forumbridge/migrator/internal/legacyforum"
)

func main() {
	out := flag.String("out", "./legacy-forum.db", "Where to write the demo source database")
	flag.Parse()

	if err := legacyforum.Seed(*out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Demo forum database written to %s\n", *out)
}
