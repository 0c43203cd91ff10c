package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cogmem/cogmem/internal/model"
	"github.com/cogmem/cogmem/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "recall [query...]",
		Short: "Search memories by similarity",
		Long:  "Rank stored memories by similarity to the query. Multiple queries run as a batch.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runRecall,
	}
	cmd.Flags().IntP("limit", "l", 10, "Max results per query")
	cmd.Flags().StringP("type", "t", "", "Filter by memory type")
	cmd.Flags().Bool("batch", false, "Treat each positional arg as its own query")
	RootCmd.AddCommand(cmd)

	recent := &cobra.Command{
		Use:   "recent",
		Short: "List the most recently stored memories",
		Run:   runRecent,
	}
	recent.Flags().IntP("limit", "l", 10, "Max results")
	recent.Flags().StringP("type", "t", "", "Filter by memory type")
	RootCmd.AddCommand(recent)

	get := &cobra.Command{
		Use:   "get [id]",
		Short: "Fetch one memory by id",
		Args:  cobra.ExactArgs(1),
		Run:   runGet,
	}
	RootCmd.AddCommand(get)

	working := &cobra.Command{
		Use:   "working [query]",
		Short: "Search short-lived working memory",
		Args:  cobra.MinimumNArgs(1),
		Run:   runWorking,
	}
	working.Flags().IntP("limit", "l", 10, "Max results")
	RootCmd.AddCommand(working)

	evict := &cobra.Command{
		Use:   "evict",
		Short: "Apply the working-memory retention policy once",
		Run:   runEvict,
	}
	RootCmd.AddCommand(evict)
}

func runRecall(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	typ, _ := cmd.Flags().GetString("type")
	batch, _ := cmd.Flags().GetBool("batch")

	if batch && len(args) > 1 {
		runRecallBatch(cmd, args, limit)
		return
	}
	query := strings.Join(args, " ")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	results, err := s.Recall(cmd.Context(), store.RecallParams{
		Query: query,
		Limit: limit,
		Type:  model.MemoryType(strings.ToUpper(typ)),
	})
	if err != nil {
		exitErr("recall", err)
	}

	b, _ := json.MarshalIndent(results, "", "  ")
	fmt.Println(string(b))
}

func runRecallBatch(cmd *cobra.Command, queries []string, limit int) {
	e, s, err := openEngine()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	results, err := e.RecallBatch(cmd.Context(), queries, limit)

	b, _ := json.MarshalIndent(results, "", "  ")
	fmt.Println(string(b))
	if err != nil {
		exitErr("recall batch", err)
	}
}

func runRecent(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	typ, _ := cmd.Flags().GetString("type")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	memories, err := s.RecallRecent(cmd.Context(), limit, model.MemoryType(strings.ToUpper(typ)))
	if err != nil {
		exitErr("recent", err)
	}

	b, _ := json.MarshalIndent(memories, "", "  ")
	fmt.Println(string(b))
}

func runGet(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	mem, err := s.RecallByID(cmd.Context(), args[0])
	if err != nil {
		exitErr("get", err)
	}
	if mem == nil {
		fmt.Println("null")
		return
	}

	b, _ := json.MarshalIndent(mem, "", "  ")
	fmt.Println(string(b))
}

func runWorking(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	results, err := s.SearchWorking(cmd.Context(), strings.Join(args, " "), limit)
	if err != nil {
		exitErr("working", err)
	}

	b, _ := json.MarshalIndent(results, "", "  ")
	fmt.Println(string(b))
}

func runEvict(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	n, err := s.EvictWorking(cmd.Context())
	if err != nil {
		exitErr("evict", err)
	}
	fmt.Printf("{\"evicted\": %d}\n", n)
}
