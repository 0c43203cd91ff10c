package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cogmem/cogmem/internal/model"
	"github.com/cogmem/cogmem/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "remember [content]",
		Short: "Store a memory",
		Long:  "Store a memory. Content can be a positional arg or piped via stdin.",
		Run:   runRemember,
	}

	cmd.Flags().StringP("type", "t", "SEMANTIC", "Memory type: SEMANTIC, EPISODIC, STRATEGIC, WORKING")
	cmd.Flags().StringP("importance", "i", "0.5", "Importance in [0, 1]")
	cmd.Flags().String("valence", "", "Emotional valence in [-1, 1]")

	RootCmd.AddCommand(cmd)
}

func runRemember(cmd *cobra.Command, args []string) {
	typ, _ := cmd.Flags().GetString("type")
	impStr, _ := cmd.Flags().GetString("importance")
	valStr, _ := cmd.Flags().GetString("valence")

	// Get content: positional arg first, then check stdin
	var content string
	if len(args) > 0 {
		content = strings.Join(args, " ")
	} else {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			b, err := io.ReadAll(os.Stdin)
			if err != nil {
				exitErr("read stdin", err)
			}
			content = string(b)
		}
	}

	if strings.TrimSpace(content) == "" {
		exitErr("remember", fmt.Errorf("content is required (positional arg or stdin)"))
	}

	importance, err := parseFloat(impStr)
	if err != nil {
		exitErr("parse importance", err)
	}

	var valence *float64
	if valStr != "" {
		v, err := parseFloat(valStr)
		if err != nil {
			exitErr("parse valence", err)
		}
		valence = &v
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	mem, err := s.Remember(cmd.Context(), store.RememberParams{
		Content:    strings.TrimSpace(content),
		Type:       model.MemoryType(strings.ToUpper(typ)),
		Importance: importance,
		Valence:    valence,
	})
	if err != nil {
		exitErr("remember", err)
	}

	b, _ := json.Marshal(mem)
	fmt.Println(string(b))
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}
