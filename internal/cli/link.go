package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cogmem/cogmem/internal/model"
)

func init() {
	link := &cobra.Command{
		Use:   "link [source-id] [target]",
		Short: "Create a relation between memories",
		Long:  "Create a directed relation. The target is a memory id, a belief id (SUPPORTS), or a concept label (LINKED_TO_CONCEPT).",
		Args:  cobra.ExactArgs(2),
		Run:   runLink,
	}
	link.Flags().StringP("kind", "k", "", "Relation: CAUSES, CONTRADICTS, SUPPORTS, LINKED_TO_CONCEPT")
	link.MarkFlagRequired("kind")
	RootCmd.AddCommand(link)

	causes := &cobra.Command{
		Use:   "causes [id]",
		Short: "List the direct causes of a memory",
		Args:  cobra.ExactArgs(1),
		Run:   runCauses,
	}
	RootCmd.AddCommand(causes)

	contradictions := &cobra.Command{
		Use:   "contradictions",
		Short: "List contradicting memory pairs",
		Run:   runContradictions,
	}
	contradictions.Flags().IntP("limit", "l", 20, "Max pairs")
	RootCmd.AddCommand(contradictions)

	evidence := &cobra.Command{
		Use:   "evidence [belief-id]",
		Short: "List memories supporting a worldview belief",
		Args:  cobra.ExactArgs(1),
		Run:   runEvidence,
	}
	evidence.Flags().IntP("limit", "l", 20, "Max results")
	RootCmd.AddCommand(evidence)

	concept := &cobra.Command{
		Use:   "concept [label]",
		Short: "List memories linked to a concept",
		Args:  cobra.MinimumNArgs(1),
		Run:   runConcept,
	}
	concept.Flags().IntP("limit", "l", 20, "Max results")
	RootCmd.AddCommand(concept)
}

func runLink(cmd *cobra.Command, args []string) {
	kind, _ := cmd.Flags().GetString("kind")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	err = s.Link(cmd.Context(), args[0], args[1], model.RelationKind(strings.ToUpper(kind)))
	if err != nil {
		exitErr("link", err)
	}
	fmt.Println(`{"linked": true}`)
}

func runCauses(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	causes, err := s.FindCauses(cmd.Context(), args[0])
	if err != nil {
		exitErr("causes", err)
	}

	b, _ := json.MarshalIndent(causes, "", "  ")
	fmt.Println(string(b))
}

func runContradictions(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	pairs, err := s.FindContradictions(cmd.Context(), limit)
	if err != nil {
		exitErr("contradictions", err)
	}

	b, _ := json.MarshalIndent(pairs, "", "  ")
	fmt.Println(string(b))
}

func runEvidence(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	memories, err := s.FindSupportingEvidence(cmd.Context(), args[0], limit)
	if err != nil {
		exitErr("evidence", err)
	}

	b, _ := json.MarshalIndent(memories, "", "  ")
	fmt.Println(string(b))
}

func runConcept(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	memories, err := s.FindByConcept(cmd.Context(), strings.Join(args, " "), limit)
	if err != nil {
		exitErr("concept", err)
	}

	b, _ := json.MarshalIndent(memories, "", "  ")
	fmt.Println(string(b))
}
