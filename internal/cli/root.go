// Package cli implements the cogmem CLI commands.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cogmem/cogmem/internal/embedding"
	"github.com/cogmem/cogmem/internal/hydrate"
	"github.com/cogmem/cogmem/internal/store"
)

var dbPath string

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "cogmem",
	Short: "Persistent cognitive memory for AI agents",
	Long:  "A CLI for persistent agent memory: embedded similarity recall, a relation graph, and agent state. SQLite-backed, single binary.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $COGMEM_DB or ~/.cogmem/memory.db)")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("COGMEM_DB"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cogmem", "memory.db")
}

func openStore() (*store.SQLiteStore, error) {
	return store.New(store.Options{
		Path:     getDBPath(),
		Embedder: embedding.NewFromEnv(),
	})
}

func openEngine() (*hydrate.Engine, *store.SQLiteStore, error) {
	s, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	return hydrate.New(s, hydrate.Options{}), s, nil
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
