package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	ballotengine "clubvote/contexts/club-elections/ballot-engine"
	postgresadapter "clubvote/contexts/club-elections/ballot-engine/adapters/postgres"
	"clubvote/contexts/club-elections/ballot-engine/adapters/receipts"
	httptransport "clubvote/contexts/club-elections/ballot-engine/transport/http"
	"clubvote/internal/platform/db"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	flagPostgresDSN = "postgres-dsn"
	flagLockTimeout = "ledger-lock-timeout"
)

// ledger is an opened ballot ledger plus its lifecycle hooks.
type ledger struct {
	Module  ballotengine.Module
	Migrate func(ctx context.Context) error
	Close   func() error
}

type ledgerOpener func(dsn string, lockTimeout time.Duration) (ledger, error)

func openPostgresLedger(dsn string, lockTimeout time.Duration) (ledger, error) {
	if strings.TrimSpace(dsn) == "" {
		return ledger{}, errors.New("postgres dsn is required (--postgres-dsn or POSTGRES_DSN)")
	}
	pg, err := db.Connect(dsn)
	if err != nil {
		return ledger{}, err
	}
	logger := slog.Default().With("process", "ballotctl")
	repo := postgresadapter.NewRepository(pg.DB, logger, postgresadapter.WithLockTimeout(lockTimeout))
	module := ballotengine.NewModule(ballotengine.Dependencies{
		Ledger:   repo,
		Reader:   repo,
		Receipts: receipts.Issuer{},
		Clock:    postgresadapter.SystemClock{},
		IDGen:    postgresadapter.UUIDGenerator{},
		Logger:   logger,
	})
	return ledger{Module: module, Migrate: repo.Migrate, Close: pg.Close}, nil
}

func newRootCmd(open ledgerOpener) *cobra.Command {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "ballotctl",
		Short:         "Administer the club elections ballot ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	addLedgerFlags(root.PersistentFlags())
	_ = v.BindPFlags(root.PersistentFlags())

	withLedger := func(cmd *cobra.Command, fn func(ctx context.Context, l ledger) error) error {
		l, err := open(v.GetString(flagPostgresDSN), v.GetDuration(flagLockTimeout))
		if err != nil {
			return err
		}
		defer func() {
			if l.Close != nil {
				_ = l.Close()
			}
		}()
		return fn(cmd.Context(), l)
	}

	root.AddCommand(
		migrateCmd(withLedger),
		verifyReceiptCmd(withLedger),
		winnersCmd(withLedger),
		leaderboardCmd(withLedger),
	)
	return root
}

func addLedgerFlags(flags *pflag.FlagSet) {
	flags.String(flagPostgresDSN, "", "Postgres connection string for the ballot ledger")
	flags.Duration(flagLockTimeout, 5*time.Second, "Row lock wait bound for ledger transactions")
}

type ledgerRunner func(cmd *cobra.Command, fn func(ctx context.Context, l ledger) error) error

func migrateCmd(run ledgerRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the ballot ledger schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, l ledger) error {
				if l.Migrate == nil {
					return errors.New("ledger does not support migrations")
				}
				if err := l.Migrate(ctx); err != nil {
					return err
				}
				cmd.Println("ballot ledger schema is up to date")
				return nil
			})
		},
	}
}

func verifyReceiptCmd(run ledgerRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "verify-receipt [receipt]",
		Short: "Confirm that a vote receipt was recorded and counted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, l ledger) error {
				resp, err := l.Module.Handler.VerifyReceiptHandler(ctx, httptransport.VerifyReceiptRequest{Receipt: args[0]})
				if err != nil {
					return err
				}
				return printJSON(cmd, resp)
			})
		},
	}
}

func winnersCmd(run ledgerRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "winners [election_id]",
		Short: "Print the official winner of every position in an election",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, l ledger) error {
				resp, err := l.Module.Handler.OfficialWinnersHandler(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, resp)
			})
		},
	}
}

func leaderboardCmd(run ledgerRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard [position_id]",
		Short: "Print the live leaderboard for a position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, l ledger) error {
				resp, err := l.Module.Handler.PositionLeaderboardHandler(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, resp)
			})
		},
	}
}

func printJSON(cmd *cobra.Command, payload any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
