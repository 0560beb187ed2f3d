package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tonyarciria-byte/psycomed/internal/app"
	"github.com/tonyarciria-byte/psycomed/internal/config"
	"github.com/tonyarciria-byte/psycomed/internal/logger"
	"github.com/tonyarciria-byte/psycomed/internal/store"
)

// NewRootCmd creates the moodctl command tree
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "moodctl",
		Short:         "Manage the local mood journal",
		Long:          "Record mood entries, inspect analytics and manage the profile stored by the psycomed server.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().Bool("debug", false, "Show debug logs on stderr")

	cmd.AddCommand(NewEntryCmd())
	cmd.AddCommand(NewSeedCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewInsightsCmd())
	cmd.AddCommand(NewRecommendCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewProfileCmd())
	return cmd
}

// withApp loads configuration, initialises the application without a
// notification queue, runs fn and disposes the application, saving state
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) (err error) {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	debug, _ := cmd.Flags().GetBool("debug")
	log, err := logger.NewDevelopmentLogger(debug)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync(log) }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a := app.New(cfg, log, app.WithoutQueue())
	if err := a.Init(ctx); err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer func() {
		if disposeErr := a.Dispose(ctx); disposeErr != nil {
			err = errors.Join(err, fmt.Errorf("close journal: %w", disposeErr))
		}
	}()

	return fn(ctx, a)
}

// storeError turns a store mutation result into a command error. Persistence
// failures are reported as warnings since Dispose saves the state again.
func storeError(cmd *cobra.Command, msgs []string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrValidation):
		return fmt.Errorf("invalid input: %s", strings.Join(msgs, "; "))
	case errors.Is(err, store.ErrNotFound):
		return err
	default:
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
		return nil
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
