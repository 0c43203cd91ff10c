package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cogmem/cogmem/internal/model"
)

func init() {
	identity := &cobra.Command{
		Use:   "identity",
		Short: "Show the current identity aspects",
		Run:   runIdentity,
	}
	identity.AddCommand(&cobra.Command{
		Use:   "set [aspect] [content]",
		Short: "Record a new revision of an identity aspect",
		Long:  "Aspects: purpose, values, self_concept, agency, boundary.",
		Args:  cobra.MinimumNArgs(2),
		Run:   runIdentitySet,
	})
	RootCmd.AddCommand(identity)

	worldview := &cobra.Command{
		Use:   "worldview",
		Short: "Show all worldview beliefs",
		Run:   runWorldview,
	}
	add := &cobra.Command{
		Use:   "add [belief]",
		Short: "Store a worldview belief",
		Args:  cobra.MinimumNArgs(1),
		Run:   runWorldviewAdd,
	}
	add.Flags().StringP("category", "c", "general", "Belief category")
	add.Flags().String("confidence", "0.5", "Confidence in [0, 1]")
	worldview.AddCommand(add)
	RootCmd.AddCommand(worldview)

	goals := &cobra.Command{
		Use:   "goals",
		Short: "List goals",
		Run:   runGoals,
	}
	goals.Flags().StringP("priority", "p", "", "Filter: ACTIVE, BLOCKED, DEFERRED, DONE, ABANDONED")
	goalAdd := &cobra.Command{
		Use:   "add [title]",
		Short: "Store a goal",
		Args:  cobra.MinimumNArgs(1),
		Run:   runGoalAdd,
	}
	goalAdd.Flags().String("desc", "", "Description")
	goalAdd.Flags().StringP("priority", "p", "ACTIVE", "Priority")
	goals.AddCommand(goalAdd)
	RootCmd.AddCommand(goals)

	drives := &cobra.Command{
		Use:   "drives",
		Short: "Show current drive levels",
		Run:   runDrives,
	}
	driveSet := &cobra.Command{
		Use:   "set [name] [level]",
		Short: "Set a drive level",
		Args:  cobra.ExactArgs(2),
		Run:   runDriveSet,
	}
	driveSet.Flags().String("max", "1.0", "Maximum level for the drive")
	drives.AddCommand(driveSet)
	RootCmd.AddCommand(drives)

	emotion := &cobra.Command{
		Use:   "emotion",
		Short: "Show the current emotional state",
		Run:   runEmotion,
	}
	emotion.AddCommand(&cobra.Command{
		Use:   "set [emotion] [valence]",
		Short: "Record an emotional state",
		Args:  cobra.ExactArgs(2),
		Run:   runEmotionSet,
	})
	RootCmd.AddCommand(emotion)
}

func runIdentity(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	aspects, err := s.Identity(cmd.Context())
	if err != nil {
		exitErr("identity", err)
	}

	b, _ := json.MarshalIndent(aspects, "", "  ")
	fmt.Println(string(b))
}

func runIdentitySet(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	aspect := model.AspectType(strings.ToLower(args[0]))
	content := strings.Join(args[1:], " ")
	if err := s.PutIdentity(cmd.Context(), aspect, content); err != nil {
		exitErr("identity set", err)
	}
	fmt.Println(`{"ok": true}`)
}

func runWorldview(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	beliefs, err := s.Worldview(cmd.Context())
	if err != nil {
		exitErr("worldview", err)
	}

	b, _ := json.MarshalIndent(beliefs, "", "  ")
	fmt.Println(string(b))
}

func runWorldviewAdd(cmd *cobra.Command, args []string) {
	category, _ := cmd.Flags().GetString("category")
	confStr, _ := cmd.Flags().GetString("confidence")
	confidence, err := parseFloat(confStr)
	if err != nil {
		exitErr("parse confidence", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	belief, err := s.PutBelief(cmd.Context(), strings.Join(args, " "), category, confidence)
	if err != nil {
		exitErr("worldview add", err)
	}

	b, _ := json.Marshal(belief)
	fmt.Println(string(b))
}

func runGoals(cmd *cobra.Command, args []string) {
	priority, _ := cmd.Flags().GetString("priority")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	goals, err := s.Goals(cmd.Context(), model.GoalPriority(strings.ToUpper(priority)))
	if err != nil {
		exitErr("goals", err)
	}

	b, _ := json.MarshalIndent(goals, "", "  ")
	fmt.Println(string(b))
}

func runGoalAdd(cmd *cobra.Command, args []string) {
	desc, _ := cmd.Flags().GetString("desc")
	priority, _ := cmd.Flags().GetString("priority")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	goal, err := s.PutGoal(cmd.Context(), strings.Join(args, " "), desc,
		model.GoalPriority(strings.ToUpper(priority)))
	if err != nil {
		exitErr("goals add", err)
	}

	b, _ := json.Marshal(goal)
	fmt.Println(string(b))
}

func runDrives(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	drives, err := s.Drives(cmd.Context())
	if err != nil {
		exitErr("drives", err)
	}

	b, _ := json.MarshalIndent(drives, "", "  ")
	fmt.Println(string(b))
}

func runDriveSet(cmd *cobra.Command, args []string) {
	maxStr, _ := cmd.Flags().GetString("max")
	level, err := parseFloat(args[1])
	if err != nil {
		exitErr("parse level", err)
	}
	max, err := parseFloat(maxStr)
	if err != nil {
		exitErr("parse max", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.SetDrive(cmd.Context(), args[0], level, max); err != nil {
		exitErr("drives set", err)
	}
	fmt.Println(`{"ok": true}`)
}

func runEmotion(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	emo, err := s.Emotion(cmd.Context())
	if err != nil {
		exitErr("emotion", err)
	}
	if emo == nil {
		fmt.Println("null")
		return
	}

	b, _ := json.MarshalIndent(emo, "", "  ")
	fmt.Println(string(b))
}

func runEmotionSet(cmd *cobra.Command, args []string) {
	valence, err := parseFloat(args[1])
	if err != nil {
		exitErr("parse valence", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.SetEmotion(cmd.Context(), args[0], valence); err != nil {
		exitErr("emotion set", err)
	}
	fmt.Println(`{"ok": true}`)
}
