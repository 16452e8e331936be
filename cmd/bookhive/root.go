package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the bookhive CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "bookhive",
		Short:         "Bookhive API server",
		Long:          `Bookhive serves user accounts and session tokens for the book catalogue.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
