package main

import (
	"os"

	"github.com/cogmem/cogmem/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
