package cmd

import (
	"fmt"

	"github.com/egoavara/bitrix-console/internal/agent"
	"github.com/egoavara/bitrix-console/internal/i18n"
	"github.com/spf13/cobra"
)

var agentsOnCronCmd = &cobra.Command{
	Use:   "agents:on-cron",
	Short: "Switch agent execution to cron",
	Long: `Stop running agents on page hits. After this command agents only run
from cron, for example:

  * * * * * bitrix-console agent:run --document-root /var/www/site`,
	Args: cobra.NoArgs,
	RunE: runAgentsOnCron,
}

var agentRunCmd = &cobra.Command{
	Use:   "agent:run",
	Short: "Run agents and send queued mail events",
	Args:  cobra.NoArgs,
	RunE:  runAgentRun,
}

func init() {
	rootCmd.AddCommand(agentsOnCronCmd)
	rootCmd.AddCommand(agentRunCmd)
}

func runAgentsOnCron(cmd *cobra.Command, args []string) error {
	client, err := newCMSClient()
	if err != nil {
		return err
	}

	if err := agent.EnableCron(cmd.Context(), client); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), i18n.T("agents.cronEnabled", nil))
	return nil
}

func runAgentRun(cmd *cobra.Command, args []string) error {
	client, err := newCMSClient()
	if err != nil {
		return err
	}
	return agent.Run(cmd.Context(), client)
}
