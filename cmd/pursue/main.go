package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pursue/internal/bootstrap"
	"pursue/internal/platform/clock"
	"pursue/internal/platform/config"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "pursue",
		Short:         "Group momentum (heat) engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (optional)")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newHeatCmd(&configPath))
	root.AddCommand(newRosterCmd(&configPath))
	root.AddCommand(newPushCmd(&configPath))
	root.AddCommand(newTUICmd(&configPath))
	return root
}

// withApp builds the application for one command and closes it afterwards.
func withApp(configPath string, fn func(ctx context.Context, app *bootstrap.App) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	app, err := bootstrap.New(cfg)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runErr := fn(ctx, app)
	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return errors.Join(runErr, app.Close(closeCtx))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseOptionalDate(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	d, err := clock.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("--date: %w", err)
	}
	return &d, nil
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the job endpoint, heat reads and metrics over HTTP",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withApp(*configPath, func(ctx context.Context, app *bootstrap.App) error {
				if app.Config.JobKey == "" {
					app.Logger.Warn("job key is empty; the batch endpoint will reject every call")
				}
				srv := &http.Server{
					Addr:              app.Config.HTTPAddr,
					Handler:           app.HeatHTTP.Router(),
					ReadHeaderTimeout: 5 * time.Second,
				}
				errc := make(chan error, 1)
				go func() {
					app.Logger.Info("http listening", zap.String("addr", srv.Addr))
					errc <- srv.ListenAndServe()
				}()
				select {
				case err := <-errc:
					if errors.Is(err, http.ErrServerClosed) {
						return nil
					}
					return err
				case <-ctx.Done():
				}
				app.Logger.Info("http shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
		},
	}
}

func newHeatCmd(configPath *string) *cobra.Command {
	heat := &cobra.Command{Use: "heat", Short: "Heat engine operations"}

	var runDate string
	run := &cobra.Command{
		Use:   "run",
		Short: "Run the daily heat batch (defaults to yesterday)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			date, err := parseOptionalDate(runDate)
			if err != nil {
				return err
			}
			return withApp(*configPath, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.HeatCLI.Run(ctx, date)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "run=%s date=%s processed=%d skipped=%d errors=%d\n",
					out.RunID, out.Date, out.Processed, out.Skipped, out.Errors)
				for _, f := range out.Failures {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", f.GroupID, f.Error)
				}
				return nil
			})
		},
	}
	run.Flags().StringVar(&runDate, "date", "", "day to process, YYYY-MM-DD")

	var calcGroup, calcDate string
	calc := &cobra.Command{
		Use:   "calc --group <id>",
		Short: "Recalculate a single group",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(calcGroup) == "" {
				return fmt.Errorf("--group is required")
			}
			date, err := parseOptionalDate(calcDate)
			if err != nil {
				return err
			}
			return withApp(*configPath, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.HeatCLI.Calculate(ctx, calcGroup, date)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), out)
			})
		},
	}
	calc.Flags().StringVar(&calcGroup, "group", "", "group id")
	calc.Flags().StringVar(&calcDate, "date", "", "day to process, YYYY-MM-DD")

	var showGroup string
	show := &cobra.Command{
		Use:   "show",
		Short: "Show one group's heat, or the whole board",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*configPath, func(ctx context.Context, app *bootstrap.App) error {
				if showGroup != "" {
					out, err := app.HeatCLI.Show(ctx, showGroup)
					if err != nil {
						return err
					}
					return printJSON(cmd.OutOrStdout(), out)
				}
				board, err := app.HeatCLI.Board(ctx)
				if err != nil {
					return err
				}
				if len(board) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no groups")
					return nil
				}
				for _, e := range board {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%5.1f\t%s\tstreak=%d\t%s\n",
						e.GroupID, e.Heat.Score, e.Heat.TierName, e.Heat.StreakDays, e.GroupName)
				}
				return nil
			})
		},
	}
	show.Flags().StringVar(&showGroup, "group", "", "group id (optional)")

	var histGroup, histUser string
	var histDays int
	history := &cobra.Command{
		Use:   "history --group <id> --user <id>",
		Short: "Print a group's heat history as seen by a member",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(histGroup) == "" || strings.TrimSpace(histUser) == "" {
				return fmt.Errorf("--group and --user are required")
			}
			return withApp(*configPath, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.HeatCLI.History(ctx, histGroup, histUser, histDays)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), out)
			})
		},
	}
	history.Flags().StringVar(&histGroup, "group", "", "group id")
	history.Flags().StringVar(&histUser, "user", "", "calling user id")
	history.Flags().IntVar(&histDays, "days", 0, "days of history, 1..90 (default from config)")

	heat.AddCommand(run, calc, show, history)
	return heat
}

func newRosterCmd(configPath *string) *cobra.Command {
	roster := &cobra.Command{Use: "roster", Short: "Groups, members, goals and progress"}

	roster.AddCommand(&cobra.Command{
		Use:   "import <file>",
		Short: "Import a YAML roster fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*configPath, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.RosterCLI.Import(ctx, args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported users=%d groups=%d memberships=%d goals=%d progress=%d\n",
					out.Users, out.Groups, out.Memberships, out.Goals, out.Progress)
				return nil
			})
		},
	})

	var createID, createName string
	create := &cobra.Command{
		Use:   "create-group --id <id> --name <name>",
		Short: "Create an empty group",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(createName) == "" {
				return fmt.Errorf("--name is required")
			}
			return withApp(*configPath, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.RosterCLI.CreateGroup(ctx, createID, createName)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", out.Name, out.ID)
				return nil
			})
		},
	}
	create.Flags().StringVar(&createID, "id", "", "group id (generated when empty)")
	create.Flags().StringVar(&createName, "name", "", "group name")

	var deleteGroup string
	var hard bool
	del := &cobra.Command{
		Use:   "delete-group --group <id>",
		Short: "Soft-delete a group, or remove it and its heat with --hard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(deleteGroup) == "" {
				return fmt.Errorf("--group is required")
			}
			return withApp(*configPath, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.RosterCLI.DeleteGroup(ctx, deleteGroup, hard); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s hard=%t\n", deleteGroup, hard)
				return nil
			})
		},
	}
	del.Flags().StringVar(&deleteGroup, "group", "", "group id")
	del.Flags().BoolVar(&hard, "hard", false, "remove rows instead of marking deleted")

	roster.AddCommand(&cobra.Command{
		Use:   "groups",
		Short: "List active groups",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*configPath, func(ctx context.Context, app *bootstrap.App) error {
				groups, err := app.RosterCLI.ListGroups(ctx)
				if err != nil {
					return err
				}
				if len(groups) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no groups")
					return nil
				}
				for _, g := range groups {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", g.ID, g.Name)
				}
				return nil
			})
		},
	})

	roster.AddCommand(create, del)
	return roster
}

func newPushCmd(configPath *string) *cobra.Command {
	push := &cobra.Command{Use: "push", Short: "Push provider operations"}

	push.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Validate the push provider checksum and lifecycle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*configPath, func(ctx context.Context, app *bootstrap.App) error {
				r, err := app.PushCLI.Doctor(ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s@%s checksum=%t binary=%t lifecycle=%t",
					r.Provider, r.Version, r.ChecksumValid, r.BinaryReachable, r.LifecycleOK)
				if r.Error != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), " error=%q", r.Error)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout())
				return nil
			})
		},
	})

	var testUser, testBody string
	test := &cobra.Command{
		Use:   "test --user <id>",
		Short: "Send a test notification through the configured provider",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(testUser) == "" {
				return fmt.Errorf("--user is required")
			}
			return withApp(*configPath, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.PushCLI.Test(ctx, testUser, testBody); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "sent")
				return nil
			})
		},
	}
	test.Flags().StringVar(&testUser, "user", "", "recipient user id")
	test.Flags().StringVar(&testBody, "body", "Test notification", "message body")

	push.AddCommand(test)
	return push
}

func newTUICmd(configPath *string) *cobra.Command {
	var viewer string
	var days int
	tui := &cobra.Command{
		Use:   "tui",
		Short: "Run the heat board terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withApp(*configPath, func(_ context.Context, app *bootstrap.App) error {
				return bootstrap.RunTUI(app, viewer, days)
			})
		},
	}
	tui.Flags().StringVar(&viewer, "user", "", "view history as this member")
	tui.Flags().IntVar(&days, "days", 30, "history window in days")
	return tui
}
