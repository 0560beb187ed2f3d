package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tonyarciria-byte/psycomed/internal/app"
)

// NewProfileCmd creates the profile command with show, set and reset subcommands
func NewProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage the user profile",
	}
	cmd.AddCommand(newProfileShowCmd())
	cmd.AddCommand(newProfileSetCmd())
	cmd.AddCommand(newProfileResetCmd())
	return cmd
}

func newProfileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the profile as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				return printJSON(cmd.OutOrStdout(), a.Store.Profile())
			})
		},
	}
}

func newProfileSetCmd() *cobra.Command {
	var (
		name, country, language, theme, reminderTime string
		age                                          int
		reminders, notifications, autoTheme          bool
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update profile fields",
		Long:  "Update the profile. Fields whose flag is not given keep their value.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				profile := a.Store.Profile()
				flags := cmd.Flags()
				if flags.Changed("name") {
					profile.Name = name
				}
				if flags.Changed("age") {
					profile.Age = age
				}
				if flags.Changed("country") {
					profile.Country = country
				}
				if flags.Changed("language") {
					profile.Language = language
				}
				if flags.Changed("theme") {
					profile.Theme = theme
				}
				if flags.Changed("auto-theme") {
					profile.AutoTheme = autoTheme
				}
				if flags.Changed("reminders") {
					profile.Reminders = reminders
				}
				if flags.Changed("reminder-time") {
					profile.ReminderTime = reminderTime
				}
				if flags.Changed("notifications") {
					profile.Notifications = notifications
				}

				update, msgs, err := a.Store.UpdateProfile(ctx, profile)
				if err := storeError(cmd, msgs, err); err != nil {
					return err
				}
				if update.LanguageChanged {
					fmt.Fprintf(cmd.OutOrStdout(), "Language changed, locale is now %s\n", update.Locale)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Profile updated")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().IntVar(&age, "age", 0, "Age (13 to 120)")
	cmd.Flags().StringVar(&country, "country", "", "Country")
	cmd.Flags().StringVar(&language, "language", "", "Interface language, Español or English")
	cmd.Flags().StringVar(&theme, "theme", "", "Theme id (light, dark, auto, nature, ocean, sunset, lavender or a custom theme)")
	cmd.Flags().BoolVar(&autoTheme, "auto-theme", false, "Switch to dark in the evening")
	cmd.Flags().BoolVar(&reminders, "reminders", true, "Enable the daily reminder")
	cmd.Flags().StringVar(&reminderTime, "reminder-time", "", "Daily reminder time (HH:MM)")
	cmd.Flags().BoolVar(&notifications, "notifications", true, "Enable notifications")
	return cmd
}

func newProfileResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the default profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if _, err := a.Store.ResetProfile(ctx); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Profile reset")
				return nil
			})
		},
	}
}
