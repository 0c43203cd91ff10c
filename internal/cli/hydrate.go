package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cogmem/cogmem/internal/hydrate"
)

func init() {
	cmd := &cobra.Command{
		Use:   "hydrate [query...]",
		Short: "Assemble a context bundle for a query",
		Long:  "Recall relevant memories and bundle them with identity, worldview, drives, and emotional state. Multiple queries run as a batch.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runHydrate,
	}

	cmd.Flags().IntP("limit", "l", 0, "Max memories (0 uses the default)")
	cmd.Flags().Bool("no-partial", false, "Drop weak matches below the similarity floor")
	cmd.Flags().Bool("goals", false, "Include goals")
	cmd.Flags().Bool("no-identity", false, "Skip the identity section")
	cmd.Flags().Bool("no-worldview", false, "Skip the worldview section")
	cmd.Flags().Bool("no-emotion", false, "Skip the emotional-state section")
	cmd.Flags().Bool("no-drives", false, "Skip the drives section")
	cmd.Flags().Bool("batch", false, "Treat each positional arg as its own query")

	RootCmd.AddCommand(cmd)
}

func runHydrate(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	batch, _ := cmd.Flags().GetBool("batch")

	e, s, err := openEngine()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if batch && len(args) > 1 {
		results, err := e.HydrateBatch(cmd.Context(), args, limit)
		b, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(b))
		if err != nil {
			exitErr("hydrate batch", err)
		}
		return
	}

	p := hydrate.DefaultParams(strings.Join(args, " "))
	p.MemoryLimit = limit
	if v, _ := cmd.Flags().GetBool("no-partial"); v {
		p.IncludePartial = false
	}
	if v, _ := cmd.Flags().GetBool("goals"); v {
		p.IncludeGoals = true
	}
	if v, _ := cmd.Flags().GetBool("no-identity"); v {
		p.IncludeIdentity = false
	}
	if v, _ := cmd.Flags().GetBool("no-worldview"); v {
		p.IncludeWorldview = false
	}
	if v, _ := cmd.Flags().GetBool("no-emotion"); v {
		p.IncludeEmotionalState = false
	}
	if v, _ := cmd.Flags().GetBool("no-drives"); v {
		p.IncludeDrives = false
	}

	out, err := e.Hydrate(cmd.Context(), p)
	if err != nil {
		exitErr("hydrate", err)
	}

	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(b))
}
