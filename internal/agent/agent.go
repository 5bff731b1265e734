// Package agent switches and runs the CMS agent scheduler.
package agent

import (
	"context"
	"fmt"

	"github.com/egoavara/bitrix-console/internal/cms"
)

// Options written by EnableCron. With both set to N the site stops running
// agents on page hits and relies on agent:run from cron.
const (
	OptionModule       = "main"
	OptionUseCrontab   = "agents_use_crontab"
	OptionCheckAgents  = "check_agents"
	OptionDisabledFlag = "N"
)

// EnableCron moves agent execution from page hits to cron
func EnableCron(ctx context.Context, f cms.Facade) error {
	for _, name := range []string{OptionUseCrontab, OptionCheckAgents} {
		if err := f.SetOption(ctx, OptionModule, name, OptionDisabledFlag); err != nil {
			return fmt.Errorf("failed to set %s/%s: %w", OptionModule, name, err)
		}
	}
	return nil
}

// Run executes due agents and then sends queued mail events
func Run(ctx context.Context, f cms.Facade) error {
	if err := f.CheckAgents(ctx); err != nil {
		return fmt.Errorf("failed to run agents: %w", err)
	}
	if err := f.CheckEvents(ctx); err != nil {
		return fmt.Errorf("failed to send events: %w", err)
	}
	return nil
}
