package main

import (
	"fmt"
	"os"

	"github.com/idiomattic/otot/internal/cli"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := cli.Run(version); err != nil {
		fmt.Fprintf(os.Stderr, "otot: %v\n", err)
		os.Exit(1)
	}
}
