package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/forgegate-inc/forgegate/internal/interfaces/cli/migrate"
	"github.com/forgegate-inc/forgegate/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "forgegate",
		Short: "ForgeGate - feature-gated authorization core",
		Long:  `ForgeGate is the entitlement-gated authorization service: protected branches and environments, merge request approvals, membership, and the audit trail behind them.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
