package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/memohai/meetprep/cmd/meetprep/modules"
	dbmigrations "github.com/memohai/meetprep/db"
	"github.com/memohai/meetprep/internal/db"
	"github.com/memohai/meetprep/internal/reminder"
	"github.com/memohai/meetprep/internal/version"
)

func main() {
	root := &cobra.Command{
		Use:           "meetprep",
		Short:         "Slack meeting prep reminders from Google Calendar",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), runOnceCmd(), migrateCmd(), versionCmd())
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func fxLogger(logger *slog.Logger) fxevent.Logger {
	return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP endpoints and the reminder scheduler",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			app := fx.New(
				modules.InfraModule,
				modules.DomainModule,
				modules.ServerModule,
				fx.WithLogger(fxLogger),
			)
			if err := app.Err(); err != nil {
				return err
			}
			app.Run()
			return nil
		},
	}
}

func runOnceCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "run-once",
		Short: "Check every authorized calendar once and print the report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var svc *reminder.Service
			app := fx.New(
				modules.InfraModule,
				modules.DomainModule,
				fx.Populate(&svc),
				fx.WithLogger(fxLogger),
			)
			if err := app.Err(); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			if err := app.Start(ctx); err != nil {
				return err
			}
			defer func() { _ = app.Stop(context.Background()) }()

			report, err := svc.RunOnce(ctx)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "upper bound for the whole run")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate up|down|version|force N",
		Short:     "Apply or inspect database migrations",
		Args:      cobra.MinimumNArgs(1),
		ValidArgs: []string{"up", "down", "version", "force"},
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := modules.ProvideConfig()
			if err != nil {
				return err
			}
			logger := modules.ProvideLogger(cfg)
			fsys, err := dbmigrations.Migrations()
			if err != nil {
				return fmt.Errorf("load migrations: %w", err)
			}
			return db.RunMigrate(logger, cfg.Postgres, fsys, args[0], args[1:])
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "meetprep %s\n", version.Detailed())
		},
	}
}
