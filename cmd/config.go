package cmd

import (
	"fmt"

	"github.com/egoavara/bitrix-console/internal/config"
	"github.com/egoavara/bitrix-console/internal/i18n"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage bitrix-console configuration",
	Long: `Manage bitrix-console configuration settings.

Settings are stored in ~/.config/bitrix-console/config.yaml and can be
overridden with BXCONSOLE_* environment variables, for example
BXCONSOLE_BITRIX_DOCUMENTROOT.

Example:
  bitrix-console config show
  bitrix-console config set bitrix.documentRoot /var/www/site`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

Available keys:
  locale               - Language setting
                         Values: auto, en-US, ru-RU
  bitrix.documentRoot  - Site document root used by the CMS commands
  bitrix.php           - PHP interpreter (default: php)
  marketplace.host     - Marketplace host used for search queries
  marketplace.timeout  - Timeout of one marketplace request, e.g. 30s
  trial.timeout        - Timeout of one module trial, e.g. 10m (0 disables)

Example:
  bitrix-console config set locale ru-RU
  bitrix-console config set trial.timeout 5m`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Configuration:")
	fmt.Fprintln(out, "----------------------------------------")
	fmt.Fprintf(out, "  %s: %s\n", config.KeyLocale, cfg.Locale)
	fmt.Fprintf(out, "  %s: %s\n", config.KeyDocumentRoot, cfg.Bitrix.DocumentRoot)
	fmt.Fprintf(out, "  %s: %s\n", config.KeyPHPBinary, cfg.Bitrix.PHP)
	fmt.Fprintf(out, "  %s: %s\n", config.KeyMarketplaceHost, cfg.Marketplace.Host)
	fmt.Fprintf(out, "  %s: %s\n", config.KeyMarketplaceTimeout, cfg.Marketplace.Timeout)
	fmt.Fprintf(out, "  %s: %s\n", config.KeyTrialTimeout, cfg.Trial.Timeout)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "File: %s\n", config.ConfigPath())

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Locale:")
	if cfg.Locale == "auto" {
		fmt.Fprintln(out, "  auto: System locale is auto-detected")
	} else {
		fmt.Fprintf(out, "  %s: Using fixed locale\n", cfg.Locale)
	}

	if cfg.Bitrix.DocumentRoot == "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, i18n.T("site.hint", nil))
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	if err := config.Set(key, value); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), i18n.T("config.saved", map[string]interface{}{"Key": key, "Value": value}))
	if key == config.KeyLocale {
		i18n.SetLocale(value)
	}
	return nil
}
