package cli

import (
	"family-finance-go/pkg/logger"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the family-finance command tree. Running the binary
// without a subcommand starts the HTTP server.
func NewRootCommand(log logger.Logger) *cobra.Command {
	serve := NewServeCommand(log)

	cmd := &cobra.Command{
		Use:           "family-finance",
		Short:         "Family finance tracker API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}

	cmd.AddCommand(serve)
	cmd.AddCommand(NewMigrateCommand(log))
	cmd.AddCommand(NewTokenCommand(log))

	return cmd
}
