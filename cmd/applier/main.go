// Command applier submits applicant records from a JSON file into a web form.
package main

import (
	"fmt"
	"os"

	"form-applier/internal/di"
	"form-applier/internal/infrastructure/logger"
	"form-applier/internal/infrastructure/userinteraction"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "applier",
	Short:         "Submit applicant records into web forms",
	Long:          "applier fills and submits a web form once per applicant record using a headless browser, then reports which submissions were confirmed.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the binary runs",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "pong!")
	},
}

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List the available form agents",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		userinteraction.NewPlainPresenter(cmd.OutOrStdout()).ShowAgents(di.NewAgentRegistry(logger.NewNop()))
	},
}

func init() {
	rootCmd.AddCommand(pingCmd, agentsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		userinteraction.NewErrorPresenter().ShowError(err)
		os.Exit(1)
	}
}
