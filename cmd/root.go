package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/egoavara/bitrix-console/internal/cms"
	"github.com/egoavara/bitrix-console/internal/config"
	"github.com/egoavara/bitrix-console/internal/i18n"
	"github.com/egoavara/bitrix-console/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ErrNoSite is returned when no Bitrix installation can be located
var ErrNoSite = errors.New("bitrix installation not found")

var (
	verbose      bool
	documentRoot string
	logger       = zap.NewNop()

	rootCmd = &cobra.Command{
		Use:           "bitrix-console",
		Short:         "Console commands for Bitrix sites",
		SilenceErrors: true,
		SilenceUsage:  true,
		Long: `bitrix-console runs maintenance tasks against a Bitrix site
from the command line.

Commands:
  agents:on-cron  Switch agent execution to cron
  agent:run       Run agents and send queued mail events
  module:test     Test installation of marketplace modules
  module:search   List free and trial modules of the marketplace
  config          Manage configuration`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.New(verbose)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}
)

// Execute runs the root command. Interrupts cancel the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&documentRoot, "document-root", "", "site document root (default: config or detected from the working directory)")

	rootCmd.AddCommand(configCmd)
}

// resolveDocumentRoot picks the site from the flag, the config, or the
// working directory, in that order
func resolveDocumentRoot() (string, error) {
	root := documentRoot
	if root == "" {
		root = config.Get().Bitrix.DocumentRoot
	}
	if root == "" {
		if wd, err := os.Getwd(); err == nil {
			root = config.DetectDocumentRoot(wd)
		}
	}
	if root == "" {
		return "", fmt.Errorf("%w: %s", ErrNoSite, i18n.T("site.hint", nil))
	}

	if _, err := os.Stat(config.PrologPath(root)); err != nil {
		return "", fmt.Errorf("%w in %s", ErrNoSite, root)
	}
	return root, nil
}

// newCMSClient returns the facade for the resolved site
func newCMSClient() (*cms.PHPClient, error) {
	root, err := resolveDocumentRoot()
	if err != nil {
		return nil, err
	}
	logger.Debug("using site", zap.String("documentRoot", root))
	return cms.NewPHPClient(root, config.Get().Bitrix.PHP, logger), nil
}
