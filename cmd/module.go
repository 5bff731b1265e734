package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/egoavara/bitrix-console/internal/config"
	"github.com/egoavara/bitrix-console/internal/i18n"
	"github.com/egoavara/bitrix-console/internal/marketplace"
	"github.com/egoavara/bitrix-console/internal/report"
	"github.com/egoavara/bitrix-console/internal/search"
	"github.com/egoavara/bitrix-console/internal/trial"
	"github.com/egoavara/bitrix-console/internal/tui"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// ErrNoQuery is returned when no query is given and prompting is disabled
var ErrNoQuery = errors.New("no query argument specified")

var (
	moduleFilter   string
	moduleExact    bool
	noInteraction  bool
	trialTimeout   time.Duration
	catalogTimeout time.Duration
)

var moduleTestCmd = &cobra.Command{
	Use:   "module:test [query]",
	Short: "Test installation of marketplace modules",
	Long: `Install and immediately uninstall every free or trial module found on
the marketplace, then print a report grouped by outcome.

The query is either a marketplace URL of a module list or a search term.
Without a query the command asks for one.

Example:
  bitrix-console module:test notamedia
  bitrix-console module:test "https://marketplace.1c-bitrix.ru/solutions/?category=12"
  bitrix-console module:test seo --filter notamedia --trial-timeout 5m`,
	Args: cobra.MaximumNArgs(1),
	RunE: runModuleTest,
}

var moduleSearchCmd = &cobra.Command{
	Use:   "module:search [query]",
	Short: "List free and trial modules of the marketplace",
	Long: `List the modules module:test would try, without installing anything.

Example:
  bitrix-console module:search notamedia
  bitrix-console module:search seo --filter sitemap`,
	Args: cobra.MaximumNArgs(1),
	RunE: runModuleSearch,
}

// catalogFlags are shared by module:test and module:search
func catalogFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("catalog", pflag.ContinueOnError)
	fs.StringVar(&moduleFilter, "filter", "", "only keep modules matching this fuzzy filter")
	fs.BoolVar(&moduleExact, "exact", false, "match --filter as a substring instead of fuzzy")
	fs.BoolVarP(&noInteraction, "no-interaction", "n", false, "do not ask for a query")
	fs.DurationVar(&catalogTimeout, "timeout", 0, "timeout of a single marketplace request (default: config)")
	return fs
}

func init() {
	moduleTestCmd.Flags().AddFlagSet(catalogFlags())
	moduleTestCmd.Flags().DurationVar(&trialTimeout, "trial-timeout", 0, "timeout of one module trial (default: config)")
	moduleSearchCmd.Flags().AddFlagSet(catalogFlags())

	rootCmd.AddCommand(moduleTestCmd)
	rootCmd.AddCommand(moduleSearchCmd)
}

func runModuleTest(cmd *cobra.Command, args []string) error {
	query, err := readQuery(args)
	if err != nil {
		return err
	}

	client, err := newCMSClient()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	modules, err := fetchCatalog(cmd, query)
	if err != nil {
		return err
	}

	timeout := trialTimeout
	if !cmd.Flags().Changed("trial-timeout") {
		timeout = config.Get().Trial.Timeout
	}

	runner := &trial.Runner{
		Installer: client,
		Progress:  tui.NewBar(out, tui.IsTerminal(os.Stdout)),
		Logger:    logger,
		Out:       out,
		Timeout:   timeout,
	}

	rep, runErr := runner.Run(cmd.Context(), modules)
	fmt.Fprintln(out)
	if err := report.Render(out, rep); err != nil {
		return err
	}
	if runErr != nil {
		return fmt.Errorf("%s: %w", i18n.T("trial.interrupted", map[string]interface{}{"Done": rep.Total(), "Total": modules.Len()}), runErr)
	}
	return nil
}

func runModuleSearch(cmd *cobra.Command, args []string) error {
	query, err := readQuery(args)
	if err != nil {
		return err
	}

	modules, err := fetchCatalog(cmd, query)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, i18n.T("module.found", map[string]interface{}{"Count": modules.Len()}, modules.Len()))
	fmt.Fprintln(out)
	for _, m := range modules.List() {
		fmt.Fprintf(out, "  %s  %s\n", tui.InfoStyle.Render(m.Code), m.Name)
	}
	return nil
}

// readQuery takes the query argument or asks for one
func readQuery(args []string) (string, error) {
	if len(args) > 0 {
		return marketplace.ValidateQuery(args[0])
	}
	if noInteraction {
		return "", ErrNoQuery
	}

	var ask tui.Asker
	if tui.IsTerminal(os.Stdin) {
		ask = tui.TerminalAsker(os.Stdin, os.Stdout, marketplace.DefaultQuery)
	} else {
		ask = tui.LineAsker(os.Stdin, os.Stdout, marketplace.DefaultQuery)
	}
	return tui.AskQuery(ask, marketplace.DefaultQuery)
}

// fetchCatalog resolves query and collects the eligible modules, narrowed
// by --filter
func fetchCatalog(cmd *cobra.Command, query string) (*marketplace.Modules, error) {
	cfg := config.Get()
	out := cmd.OutOrStdout()

	base, err := marketplace.ResolveQuery(query, cfg.Marketplace.Host)
	if err != nil {
		return nil, err
	}

	timeout := catalogTimeout
	if !cmd.Flags().Changed("timeout") {
		timeout = cfg.Marketplace.Timeout
	}

	fmt.Fprintln(out, tui.InfoStyle.Render(i18n.T("module.fetching", nil)))

	fetcher := marketplace.NewFetcher(
		marketplace.WithTimeout(timeout),
		marketplace.WithLogger(logger),
		marketplace.WithProgress(tui.NewBar(out, tui.IsTerminal(os.Stdout))),
	)
	catalog, err := fetcher.Fetch(cmd.Context(), base)
	if err != nil {
		return nil, err
	}
	logger.Debug("catalog fetched",
		zap.Int("pages", catalog.Pages),
		zap.Int("modules", catalog.Modules.Len()),
	)

	if catalog.Category != "" {
		fmt.Fprintln(out, i18n.T("module.category", map[string]interface{}{
			"Category": tui.InfoStyle.Render(catalog.Category),
		}))
	}

	modules := search.Filter(catalog.Modules, moduleFilter, moduleExact)
	if modules.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", marketplace.ErrNoModulesFound, i18n.T("module.filterEmpty", map[string]interface{}{"Filter": moduleFilter}))
	}
	printSkipped(out, catalog.Modules.Len()-modules.Len())
	return modules, nil
}

func printSkipped(out io.Writer, n int) {
	if n > 0 {
		fmt.Fprintln(out, i18n.T("module.filtered", map[string]interface{}{"Count": n}, n))
	}
}
