package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cogmem/cogmem/internal/store"
)

func init() {
	export := &cobra.Command{
		Use:   "export",
		Short: "Export memories and relations as JSON",
		Run:   runExport,
	}
	RootCmd.AddCommand(export)

	imp := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a previous export",
		Long:  "Import an export from a file or stdin. Memories get fresh ids and recomputed embeddings.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runImport,
	}
	RootCmd.AddCommand(imp)
}

func runExport(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	exp, err := s.ExportAll(cmd.Context())
	if err != nil {
		exitErr("export", err)
	}

	b, _ := json.MarshalIndent(exp, "", "  ")
	fmt.Println(string(b))
}

func runImport(cmd *cobra.Command, args []string) {
	var r io.Reader = os.Stdin
	if len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			exitErr("open import file", err)
		}
		defer f.Close()
		r = f
	}

	var exp store.Export
	if err := json.NewDecoder(r).Decode(&exp); err != nil {
		exitErr("decode import", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	n, err := s.Import(cmd.Context(), &exp)
	if err != nil {
		exitErr("import", err)
	}
	fmt.Printf("{\"imported\": %d}\n", n)
}
