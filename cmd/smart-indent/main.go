package main

import (
	"fmt"
	"os"

	"github.com/r9s-ai/smart-indent/cli"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	err := cli.Run(os.Args[1:], cli.Options{
		BuildInfo: cli.BuildInfo{
			Version:   version,
			Commit:    commit,
			BuildDate: buildDate,
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "smart-indent: %v\n", err)
		os.Exit(1)
	}
}
