package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tonyarciria-byte/psycomed/internal/app"
)

// NewStatsCmd creates the stats command
func NewStatsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show entry totals and rating summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				stats := a.Store.Stats()
				out := cmd.OutOrStdout()
				if asJSON {
					return printJSON(out, stats)
				}
				fmt.Fprintf(out, "Entries: %d\n", stats.Total)
				fmt.Fprintf(out, "Average: %d%%\n", stats.Average)
				fmt.Fprintf(out, "Best:    %d\n", stats.Best)
				fmt.Fprintf(out, "Worst:   %d\n", stats.Worst)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

// NewInsightsCmd creates the insights command
func NewInsightsCmd() *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Show insights derived from the journal",
		Long:  "Show insights derived from the journal. With --full the complete analytics document is printed as JSON.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				out := cmd.OutOrStdout()
				entries := a.Store.Entries()
				if full {
					return printJSON(out, a.Analytics.Analyze(entries, time.Now()))
				}
				insights := a.Analytics.Insights(entries, time.Now())
				if len(insights) == 0 {
					fmt.Fprintln(out, "Not enough entries for insights yet")
					return nil
				}
				for _, in := range insights {
					fmt.Fprintf(out, "%s [%s] %s\n  %s\n", in.Icon, in.Type, in.Title, in.Description)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "Print all derived metrics as JSON")
	return cmd
}

// NewRecommendCmd creates the recommend command
func NewRecommendCmd() *cobra.Command {
	var mood int
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Suggest activities for a mood",
		Long:  "Suggest activities and advice for --mood, or for the rating of the most recent entry.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				entries := a.Store.EntriesInRange("", "")
				current := mood
				if !cmd.Flags().Changed("mood") {
					if len(entries) == 0 {
						return fmt.Errorf("no entries recorded, pass --mood")
					}
					current = entries[0].Rating
				}

				rec := a.Recommender.RecommendContext(ctx, entries, current)
				out := cmd.OutOrStdout()
				if rec.Category == "" {
					fmt.Fprintf(out, "No recommendation for mood %d\n", current)
					return nil
				}
				fmt.Fprintf(out, "%s (mood %d)\n\n", rec.Category, current)
				fmt.Fprintf(out, "%s\n\n", rec.Advice)
				for _, activity := range rec.Activities {
					fmt.Fprintf(out, "  - %s\n", activity)
				}
				if rec.MotivationalMessage != "" {
					fmt.Fprintf(out, "\n%s\n", rec.MotivationalMessage)
				}
				if len(rec.Insights) > 0 {
					fmt.Fprintf(out, "\n%s\n", strings.Join(rec.Insights, "\n"))
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&mood, "mood", "m", 0, "Mood rating from 1 to 20")
	return cmd
}

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write an encrypted analytics export",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				now := time.Now()
				derived := a.Analytics.Analyze(a.Store.Entries(), now)
				blob, err := a.Analytics.Export(a.Cipher, derived, a.Tracker.Snapshot(), now)
				if err != nil {
					return err
				}
				if output == "" || output == "-" {
					fmt.Fprintln(cmd.OutOrStdout(), blob)
					return nil
				}
				if err := os.WriteFile(output, []byte(blob+"\n"), 0o600); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Export written to %s\n", output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "File to write (default stdout)")
	return cmd
}
