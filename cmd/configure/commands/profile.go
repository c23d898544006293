package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/benvon/devotional/internal/database"
	"github.com/benvon/devotional/internal/models"
	"github.com/benvon/devotional/internal/request"
	"github.com/benvon/devotional/internal/restoration"
	"github.com/spf13/cobra"
)

// NewProfileCmd creates the profile command with show and reset subcommands
func NewProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Inspect or reset a device profile",
	}
	cmd.AddCommand(newProfileShowCmd())
	cmd.AddCommand(newProfileResetCmd())
	return cmd
}

func deviceFlag(cmd *cobra.Command, device *string) {
	cmd.Flags().StringVar(device, "device", "", "Device identifier (required)")
	_ = cmd.MarkFlagRequired("device")
}

func checkDevice(device string) error {
	if !request.ValidDeviceID(device) {
		return fmt.Errorf("invalid --device %q", device)
	}
	return nil
}

func newProfileShowCmd() *cobra.Command {
	var device string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the stored profile of a device",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkDevice(device); err != nil {
				return err
			}
			_, db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB(db, cmd.ErrOrStderr())

			profile, err := database.NewProfileRepository(db).Load(cmd.Context(), database.ProfileKey(device))
			if err != nil {
				return fmt.Errorf("failed to load profile: %w", err)
			}
			out := cmd.OutOrStdout()
			if profile == nil {
				fmt.Fprintf(out, "No profile stored for device %s\n", device)
				return nil
			}
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(profile)
			}
			printProfile(out, *profile)
			return nil
		},
	}
	deviceFlag(cmd, &device)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw stored document")
	return cmd
}

func printProfile(w io.Writer, p models.UserProfile) {
	fmt.Fprintf(w, "Name: %s\n", p.Name)
	fmt.Fprintf(w, "Onboarding complete: %t\n", p.OnboardingComplete)
	fmt.Fprintf(w, "Challenges: %s\n", strings.Join(p.SpiritualChallenge, ", "))
	fmt.Fprintf(w, "Themes: %s\n", strings.Join(p.InterestThemes, ", "))
	if p.LastDevotionalDate != nil {
		fmt.Fprintf(w, "Last devotional: %s\n", *p.LastDevotionalDate)
	}
	s := p.Stats
	fmt.Fprintf(w, "Stats: intimacy=%d reading=%d comprehension=%d peace=%d consistency=%d streak=%d\n",
		s.Intimacy, s.Reading, s.Comprehension, s.Peace, s.Consistency, s.Streak)
	fmt.Fprintf(w, "Restoration plan: %t\n", p.RestorationPlan != nil && p.RestorationPlan.Active)
}

func newProfileResetCmd() *cobra.Command {
	var device string
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the stored profile of a device",
		Long:  "Delete the stored profile of a device. Journal entries are kept.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkDevice(device); err != nil {
				return err
			}
			_, db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB(db, cmd.ErrOrStderr())

			if err := database.NewProfileRepository(db).Delete(cmd.Context(), database.ProfileKey(device)); err != nil {
				return fmt.Errorf("failed to reset profile: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Profile for device %s reset.\n", device)
			return nil
		},
	}
	deviceFlag(cmd, &device)
	return cmd
}

// NewPlanCmd creates the plan command
func NewPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Inspect restoration plans",
	}
	cmd.AddCommand(newPlanStatusCmd())
	return cmd
}

func newPlanStatusCmd() *cobra.Command {
	var device string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show restoration plan progress for a device",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkDevice(device); err != nil {
				return err
			}
			_, db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB(db, cmd.ErrOrStderr())

			profile, err := database.NewProfileRepository(db).Load(cmd.Context(), database.ProfileKey(device))
			if err != nil {
				return fmt.Errorf("failed to load profile: %w", err)
			}
			out := cmd.OutOrStdout()
			if profile == nil || profile.RestorationPlan == nil {
				fmt.Fprintf(out, "No restoration plan for device %s\n", device)
				return nil
			}
			printPlan(out, restoration.NewView(*profile.RestorationPlan, time.Now()))
			return nil
		},
	}
	deviceFlag(cmd, &device)
	return cmd
}

func printPlan(w io.Writer, v restoration.View) {
	fmt.Fprintf(w, "Areas: %s\n", strings.Join(v.Areas, ", "))
	fmt.Fprintf(w, "Started: %s (%d day(s) ago)\n", v.StartDate.Format(time.DateOnly), v.DaysPassed)
	fmt.Fprintf(w, "Progress: %d%%\n", v.Progress)
	for _, d := range v.Days {
		mark := " "
		switch {
		case d.Completed:
			mark = "x"
		case d.Locked:
			mark = "-"
		}
		fmt.Fprintf(w, "  [%s] Day %d: %s\n", mark, d.Day, d.Title)
	}
}
