package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Show a rollup of memory and state health",
		Run:   runHealth,
	}

	RootCmd.AddCommand(cmd)
}

func runHealth(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	health, err := s.Health(cmd.Context())
	if err != nil {
		exitErr("health", err)
	}

	b, _ := json.MarshalIndent(health, "", "  ")
	fmt.Println(string(b))
}
