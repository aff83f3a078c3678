package main

import (
	"fmt"
	"os"

	app "github.com/valter-silva-au/taskdeck/internal"
	"github.com/valter-silva-au/taskdeck/internal/cli"
)

// Set by goreleaser ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)

	a, err := app.NewApp(app.ResolveBasePath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing tdeck: %v\n", err)
		os.Exit(1)
	}

	err = cli.Execute()
	_ = a.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", cli.ErrorMessage(err))
		os.Exit(1)
	}
}
