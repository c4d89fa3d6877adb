package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/afritokeni/ussd-engine/internal/config"
	"github.com/afritokeni/ussd-engine/internal/model"
	"github.com/afritokeni/ussd-engine/internal/repository/postgres"
	"github.com/afritokeni/ussd-engine/internal/token"
)

var errNoDatabase = errors.New("DATABASE_DSN is not set")

func requireDSN() (string, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return "", err
	}
	if cfg.Database.DSN == "" {
		return "", errNoDatabase
	}
	return cfg.Database.DSN, nil
}

// withDatabase opens the configured database for the duration of fn.
func withDatabase(ctx context.Context, fn func(db *postgres.Connection) error) error {
	dsn, err := requireDSN()
	if err != nil {
		return err
	}

	db, err := postgres.NewConnection(ctx, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(db)
}

func parseInt(name, value string) (int64, error) {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid %s %q: must not be negative", name, value)
	}
	return n, nil
}

func newTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage gateway bearer tokens",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "issue <gateway-id>",
		Short: "Issue a bearer token for a USSD gateway",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewConfig()
			if err != nil {
				return err
			}
			signed, err := token.NewJWT(cfg.JWT.Secret, cfg.JWT.TTL).GenerateGatewayToken(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	})

	return cmd
}

func newBalanceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Inspect and seed wallet balances",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set <phone> <asset> <amount>",
			Short: "Set a balance in the asset's minor units",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				amount, err := parseInt("amount", args[2])
				if err != nil {
					return err
				}
				return withDatabase(cmd.Context(), func(db *postgres.Connection) error {
					return postgres.NewWalletRepository(db).UpdateBalance(cmd.Context(), args[0], args[1], amount)
				})
			},
		},
		&cobra.Command{
			Use:   "get <phone> <asset>",
			Short: "Print a balance in the asset's minor units",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDatabase(cmd.Context(), func(db *postgres.Connection) error {
					bal, err := postgres.NewWalletRepository(db).Balance(cmd.Context(), args[0], args[1])
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%d %s\n", bal.Amount, bal.Currency)
					return nil
				})
			},
		},
	)

	return cmd
}

func newAgentCommand() *cobra.Command {
	agent := model.Agent{}

	add := &cobra.Command{
		Use:   "add",
		Short: "Register or update a cash agent",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd.Context(), func(db *postgres.Connection) error {
				return postgres.NewAgentRepository(db).Add(cmd.Context(), agent)
			})
		},
	}
	add.Flags().StringVar(&agent.ID, "id", "", "agent id")
	add.Flags().StringVar(&agent.Name, "name", "", "display name")
	add.Flags().StringVar(&agent.Location, "location", "", "location shown to subscribers")
	add.Flags().StringVar(&agent.Phone, "phone", "", "phone number notified of new requests")
	for _, flag := range []string{"id", "name", "location"} {
		_ = add.MarkFlagRequired(flag)
	}

	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Manage cash agents",
	}
	cmd.AddCommand(add)
	return cmd
}

func newDAOCommand() *cobra.Command {
	var (
		proposal model.Proposal
		duration time.Duration
	)

	addProposal := &cobra.Command{
		Use:   "propose",
		Short: "Open a governance proposal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			proposal.EndsAt = time.Now().Add(duration)
			return withDatabase(cmd.Context(), func(db *postgres.Connection) error {
				return postgres.NewGovernanceRepository(db).AddProposal(cmd.Context(), proposal)
			})
		},
	}
	addProposal.Flags().StringVar(&proposal.ID, "id", "", "proposal id")
	addProposal.Flags().StringVar(&proposal.Title, "title", "", "title shown in the menu")
	addProposal.Flags().DurationVar(&duration, "duration", 7*24*time.Hour, "voting period")
	_ = addProposal.MarkFlagRequired("id")
	_ = addProposal.MarkFlagRequired("title")

	setTokens := &cobra.Command{
		Use:   "tokens <phone> <amount>",
		Short: "Set the governance tokens held by a subscriber",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := parseInt("amount", args[1])
			if err != nil {
				return err
			}
			return withDatabase(cmd.Context(), func(db *postgres.Connection) error {
				return postgres.NewGovernanceRepository(db).SetTokens(cmd.Context(), args[0], tokens)
			})
		},
	}

	cmd := &cobra.Command{
		Use:   "dao",
		Short: "Manage governance proposals and tokens",
	}
	cmd.AddCommand(addProposal, setTokens)
	return cmd
}

func newSessionCommand() *cobra.Command {
	var idle time.Duration

	purge := &cobra.Command{
		Use:   "purge",
		Short: "Delete sessions stored in Postgres that have been idle too long",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd.Context(), func(db *postgres.Connection) error {
				n, err := postgres.NewSessionRepository(db).PurgeIdle(cmd.Context(), time.Now().Add(-idle))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "purged %d sessions\n", n)
				return nil
			})
		},
	}
	purge.Flags().DurationVar(&idle, "idle", 30*time.Minute, "minimum idle time")

	cmd := &cobra.Command{
		Use:   "session",
		Short: "Maintain stored sessions",
	}
	cmd.AddCommand(purge)
	return cmd
}
