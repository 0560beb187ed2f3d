package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/tonyarciria-byte/psycomed/internal/app"
	"github.com/tonyarciria-byte/psycomed/internal/models"
)

// NewEntryCmd creates the entry command with add, list, delete and clear subcommands
func NewEntryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entry",
		Short: "Manage mood entries",
	}
	cmd.AddCommand(newEntryAddCmd())
	cmd.AddCommand(newEntryListCmd())
	cmd.AddCommand(newEntryDeleteCmd())
	cmd.AddCommand(newEntryClearCmd())
	return cmd
}

func newEntryAddCmd() *cobra.Command {
	var (
		rating, sleep int
		tags          []string
		title, note   string
	)
	cmd := &cobra.Command{
		Use:   "add [date]",
		Short: "Record or update the entry for a day",
		Long:  "Record the entry for date (YYYY-MM-DD, default today). Only the given flags change an existing entry.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := models.EntryInput{Date: time.Now().Format(models.DateLayout)}
			if len(args) == 1 {
				input.Date = args[0]
			}
			flags := cmd.Flags()
			if flags.Changed("rating") {
				input.Rating = &rating
			}
			if flags.Changed("sleep") {
				q := models.SleepQuality(sleep)
				input.SleepQuality = &q
			}
			if flags.Changed("tag") {
				input.Tags = &tags
			}
			if flags.Changed("title") {
				input.Title = &title
			}
			if flags.Changed("note") {
				input.Note = &note
			}

			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				_, msgs, err := a.Store.UpsertEntry(ctx, input)
				if err := storeError(cmd, msgs, err); err != nil {
					return err
				}
				entry, _ := a.Store.Entry(input.Date)
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s: rating %d/%d, %s\n", entry.Date, entry.Rating, models.RatingMax, entry.DisplayTitle())
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&rating, "rating", "r", 0, "Mood rating from 1 to 20")
	cmd.Flags().IntVarP(&sleep, "sleep", "s", 0, "Sleep quality from 1 to 5")
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "Tag (repeatable, at most 5)")
	cmd.Flags().StringVar(&title, "title", "", "Journal title")
	cmd.Flags().StringVar(&note, "note", "", "Journal note")
	return cmd
}

func newEntryListCmd() *cobra.Command {
	var (
		from, to, query string
		asJSON          bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				entries := a.Store.EntriesInRange(from, to)
				if query != "" {
					matched := make(map[string]bool)
					for _, e := range a.Store.Search(query) {
						matched[e.Date] = true
					}
					filtered := entries[:0]
					for _, e := range entries {
						if matched[e.Date] {
							filtered = append(filtered, e)
						}
					}
					entries = filtered
				}

				out := cmd.OutOrStdout()
				if asJSON {
					return printJSON(out, entries)
				}
				if len(entries) == 0 {
					fmt.Fprintln(out, "No entries recorded")
					return nil
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "DATE\tRATING\tSLEEP\tTAGS\tTITLE")
				for _, e := range entries {
					sleep := "-"
					if e.SleepQuality.Recorded() {
						sleep = fmt.Sprint(int(e.SleepQuality))
					}
					fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", e.Date, e.Rating, sleep, strings.Join(e.Tags, ","), e.DisplayTitle())
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "First date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Last date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Only entries whose title, note or tags contain this text")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print entries as JSON")
	return cmd
}

func newEntryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <date>",
		Short: "Delete the entry for a day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				deleted, err := a.Store.DeleteEntry(ctx, args[0])
				if !deleted {
					return fmt.Errorf("no entry for %s", args[0])
				}
				if err := storeError(cmd, nil, err); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func newEntryClearCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete all entries without --yes")
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := storeError(cmd, nil, a.Store.ClearAll(ctx)); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "All entries deleted")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion of all entries")
	return cmd
}

// NewSeedCmd creates the seed command
func NewSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Add a week of sample entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				entries, err := a.Store.Seed(ctx)
				if err := storeError(cmd, nil, err); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Sample entries added, journal has %d entries\n", len(entries))
				return nil
			})
		},
	}
}
