package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/kmitra/pyshake/analytics"
	"github.com/kmitra/pyshake/internal/bundle"
	"github.com/kmitra/pyshake/internal/config"
	"github.com/kmitra/pyshake/output"
	"github.com/spf13/cobra"
)

var (
	treeshakeConfigPath string
	treeshakeAliasFlags []string
	treeshakePreserve   []string
	treeshakeSafeDecos  []string
	treeshakeFormat     string
	treeshakeFailOn     string
)

var treeshakeCmd = &cobra.Command{
	Use:   "treeshake <source-dir>",
	Short: "Remove dead code from a self-contained source tree in place",
	Long: `treeshake indexes every Python file under <source-dir> (typically a tree
bundle just produced), runs a whole-program reference fixpoint seeded from
--preserve-symbol and --import-alias, and prunes every dead definition,
assignment and import in place, deleting files and now-empty package
directories left behind. Parameters may come from --config instead of
flags; config values are additive to --preserve-symbol, --import-alias and
--safe-decorator, never a replacement for them.`,
	Args: cobra.ExactArgs(1),
	RunE: runTreeshake,
}

func init() {
	treeshakeCmd.Flags().StringVar(&treeshakeConfigPath, "config", "", "YAML config file contributing additional preserve-symbols, import-aliases and safe-decorators")
	treeshakeCmd.Flags().StringSliceVar(&treeshakeAliasFlags, "import-alias", nil, "visible=actual pair recording a dynamic import alias (repeatable)")
	treeshakeCmd.Flags().StringSliceVar(&treeshakePreserve, "preserve-symbol", nil, "fully-qualified name to keep alive regardless of reference counting (repeatable)")
	treeshakeCmd.Flags().StringSliceVar(&treeshakeSafeDecos, "safe-decorator", nil, "decorator name/FQN to add to the built-in safe-decorator allowlist (repeatable)")
	treeshakeCmd.Flags().StringVar(&treeshakeFormat, "format", "text", "output format: text, json, sarif")
	treeshakeCmd.Flags().StringVar(&treeshakeFailOn, "fail-on", "", "comma-separated warning kinds that cause a non-zero exit")
	rootCmd.AddCommand(treeshakeCmd)
}

func runTreeshake(cmd *cobra.Command, args []string) error {
	failOn := output.ParseFailOn(treeshakeFailOn)
	if err := output.ValidateWarningKinds(failOn); err != nil {
		return err
	}

	preserveSymbols := treeshakePreserve
	safeDecorators := treeshakeSafeDecos

	aliases, err := parseImportAliases(treeshakeAliasFlags)
	if err != nil {
		return err
	}

	if treeshakeConfigPath != "" {
		cfg, err := config.Load(treeshakeConfigPath)
		if err != nil {
			return err
		}
		for visible, actual := range cfg.ImportAliases {
			aliases.Add(visible, actual)
		}
		preserveSymbols = append(preserveSymbols, cfg.PreserveSymbols...)
		safeDecorators = append(safeDecorators, cfg.SafeDecorators...)
	}

	logger := output.NewLogger(loggerVerbosity())
	sink := &progressSink{logger: logger}

	analytics.ReportEvent(analytics.TreeshakeStarted)
	start := time.Now()
	report, err := bundle.Treeshake(args[0], aliases, preserveSymbols, safeDecorators, sink)
	if err != nil {
		analytics.ReportEvent(analytics.TreeshakeFailed)
		return err
	}
	analytics.ReportEvent(analytics.TreeshakeCompleted)

	logger.Progress(fmt.Sprintf("removed %d statements", report.StatementsRemoved))

	run := output.RunInfo{Target: args[0], Version: Version, Duration: time.Since(start)}
	if err := emitReport(os.Stdout, report, run, treeshakeFormat); err != nil {
		return err
	}

	exitCode := output.DetermineExitCode(report, failOn, false)
	if exitCode != output.ExitCodeSuccess {
		os.Exit(int(exitCode))
	}
	return nil
}
