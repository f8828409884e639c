package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/bigchunguss42069/sketch-time-tool/internal/config"
	"github.com/bigchunguss42069/sketch-time-tool/internal/service"
	"github.com/bigchunguss42069/sketch-time-tool/internal/service/aggregate"
	"github.com/bigchunguss42069/sketch-time-tool/internal/storage"
	"github.com/bigchunguss42069/sketch-time-tool/internal/storage/filestore"
	"github.com/bigchunguss42069/sketch-time-tool/internal/storage/mysql"
)

var errMismatch = errors.New("aggregation index differs from rebuild")

type app struct {
	cfg    *config.Config
	store  *filestore.Storage
	ledger *service.LedgerService
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:          "timesheetctl",
		Short:        "Maintenance tools for the timesheet ledger",
		Long:         "timesheetctl rebuilds and verifies the cost object aggregation index from the stored month snapshots.",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to the config file (defaults to CONFIG_PATH)")

	open := func(cmd *cobra.Command) (*app, error) {
		path := cfgPath
		if path == "" {
			path = os.Getenv("CONFIG_PATH")
		}
		cfg, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		store, err := filestore.New(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
		ledger := service.NewLedgerService(log, store.Snapshots, store.Locks, store.Aggregation, store.Archive, service.Options{
			Holidays:         cfg.Holidays,
			DailyTargetHours: cfg.DailyTargetHours,
		})
		return &app{cfg: cfg, store: store, ledger: ledger}, nil
	}

	root.AddCommand(newRebuildCmd(open), newVerifyCmd(open))
	return root
}

func newRebuildCmd(open func(*cobra.Command) (*app, error)) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Recompute the aggregation index from the latest snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			out := cmd.OutOrStdout()

			mismatches, err := a.ledger.Verify(ctx)
			if errors.Is(err, service.ErrIndexUnreadable) {
				fmt.Fprintf(out, "stored index unreadable, rebuilding from snapshots: %v\n", err)
			} else if err != nil {
				return err
			}
			idx, err := a.ledger.Rebuild(ctx, dryRun)
			if err != nil {
				return err
			}

			printIndex(out, idx)
			printMismatches(out, mismatches)
			if dryRun {
				fmt.Fprintln(out, "dry run, stored index unchanged")
			} else {
				fmt.Fprintln(out, "index replaced")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute and report without replacing the stored index")
	return cmd
}

func newVerifyCmd(open func(*cobra.Command) (*app, error)) *cobra.Command {
	var replica bool

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Compare the stored aggregation index with a fresh rebuild",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			mismatches, err := a.ledger.Verify(ctx)
			if err != nil {
				return err
			}

			if replica {
				more, err := verifyReplica(ctx, a)
				if err != nil {
					return err
				}
				mismatches = append(mismatches, more...)
			}

			out := cmd.OutOrStdout()
			printMismatches(out, mismatches)
			if len(mismatches) > 0 {
				return fmt.Errorf("%w: %d mismatches", errMismatch, len(mismatches))
			}
			fmt.Fprintln(out, "ok")
			return nil
		},
	}
	cmd.Flags().BoolVar(&replica, "replica", false, "also compare the MySQL reporting replica with the stored index")
	return cmd
}

// verifyReplica reports replica rows that differ from the stored index.
// Mismatch.Stored is the JSON index, Mismatch.Rebuilt the replica.
func verifyReplica(ctx context.Context, a *app) ([]aggregate.Mismatch, error) {
	const op = "timesheetctl.verifyReplica"

	if a.cfg.Replica.DSN == "" {
		return nil, fmt.Errorf("%s: replica dsn is not configured", op)
	}
	db, err := mysql.New(a.cfg.Replica.DSN)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer db.Close()

	stored, err := a.store.Aggregation.Load()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var out []aggregate.Mismatch
	for team, idx := range stored {
		remote, err := db.LoadTeam(ctx, team)
		if err != nil {
			return nil, fmt.Errorf("%s: team %s: %w", op, team, err)
		}
		out = append(out, aggregate.Diff(
			storage.AggregationIndex{team: idx},
			storage.AggregationIndex{team: remote},
		)...)
	}
	return out, nil
}

func printIndex(w io.Writer, idx storage.AggregationIndex) {
	teams := make([]string, 0, len(idx))
	for team := range idx {
		teams = append(teams, team)
	}
	sort.Strings(teams)

	for _, team := range teams {
		fmt.Fprintf(w, "team %s: %d cost objects\n", team, len(idx[team]))
	}
}

func printMismatches(w io.Writer, mismatches []aggregate.Mismatch) {
	for _, m := range mismatches {
		fmt.Fprintln(w, m.String())
	}
}
