package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	syncapp "github.com/tallysync/backend/internal/application/sync"
	"github.com/tallysync/backend/internal/bootstrap"
	"github.com/tallysync/backend/internal/infrastructure/persistence"
	"github.com/tallysync/backend/internal/infrastructure/tally"
)

const kindAll = "all"

func newSyncCommand(env Env) *cobra.Command {
	var (
		flags  tallyFlags
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:       "sync <customers|items|all>",
		Short:     "Fetch an export from Tally and import it",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(tally.KindCustomers), string(tally.KindItems), kindAll},
		RunE: func(cmd *cobra.Command, args []string) error {
			var kinds []tally.Kind
			if args[0] == kindAll {
				kinds = []tally.Kind{tally.KindCustomers, tally.KindItems}
			} else {
				kind, err := tally.ParseKind(args[0])
				if err != nil {
					return err
				}
				kinds = []tally.Kind{kind}
			}
			return env.runSync(cmd.Context(), cmd.OutOrStdout(), &flags, dryRun, kinds)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "decode and parse without writing to the database")
	return cmd
}

func (e Env) runSync(ctx context.Context, out io.Writer, flags *tallyFlags, dryRun bool, kinds []tally.Kind) error {
	cfg, log, err := e.load(flags)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	var db *persistence.Database
	if !dryRun {
		db, err = bootstrap.OpenDatabase(cfg, log)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer db.Close()
	}

	svc, err := bootstrap.NewSyncService(bootstrap.SyncDeps{Config: cfg, DB: db, Logger: log, DryRun: dryRun})
	if err != nil {
		return err
	}

	failed := false
	var total syncapp.Outcome
	for _, kind := range kinds {
		result := svc.Sync(ctx, kind)
		printResult(out, result)
		total = total.Add(result.Outcome)
		if result.Failed() {
			failed = true
			log.Error("Sync failed", zap.String("kind", string(kind)), zap.String("cause", string(result.Failure.Cause)))
		}
	}
	if len(kinds) > 1 {
		fmt.Fprintf(out, "total: saved=%d duplicates=%d errors=%d\n", total.Saved, total.Duplicates, total.Errors)
	}

	if failed {
		return ErrTransportFailure
	}
	return nil
}

func printResult(out io.Writer, r syncapp.Result) {
	if r.Failed() {
		fmt.Fprintf(out, "%s: FAILED (%s) %s\n", r.Kind, r.Failure.Cause, r.Failure.Message)
		if r.Failure.Hint != "" {
			fmt.Fprintf(out, "  hint: %s\n", r.Failure.Hint)
		}
		return
	}
	fmt.Fprintf(out, "%s: found=%d saved=%d duplicates=%d errors=%d decoder=%s",
		r.Kind, r.Found, r.Saved, r.Duplicates, r.Errors, r.Decoder)
	if r.DryRun {
		fmt.Fprint(out, " (dry run)")
	}
	fmt.Fprintln(out)
	if r.Capture != "" {
		fmt.Fprintf(out, "  raw response: %s\n", r.Capture)
	}
}
