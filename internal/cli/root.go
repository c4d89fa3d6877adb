// Package cli defines the cobra commands of the ussd binary.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/afritokeni/ussd-engine/internal/config"
	"github.com/afritokeni/ussd-engine/internal/logger"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

// NewRootCommand assembles the command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "ussd",
		Short: "AfriTokeni USSD session engine",
		Long: `Serves the AfriTokeni USSD menus to telecom gateways and provides
the operational commands around it: migrations, gateway tokens, seeding
balances and agents, and a terminal simulator.`,
		Version:       buildVersion + " (" + buildCommit + ", " + buildDate + ")",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.AddCommand(
		newServeCommand(),
		newSimulateCommand(),
		newMigrateCommand(),
		newTokenCommand(),
		newBalanceCommand(),
		newAgentCommand(),
		newDAOCommand(),
		newSessionCommand(),
	)

	return root
}

// Execute runs the command tree until ctx is cancelled.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.New(cfg.LogLevel), nil
}
