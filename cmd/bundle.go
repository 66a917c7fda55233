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
	"github.com/spf13/pflag"
)

var (
	bundleConfigPath  string
	bundleDestination string
	bundleVendorName  string
	bundleRoots       []string
	bundleTopPackage  string
	bundleResources   []string
	bundleFormat      string
	bundleFailOn      string
)

var bundleCmd = &cobra.Command{
	Use:   "bundle <module>",
	Short: "Vendor a module and its dependencies into a self-contained tree",
	Long: `bundle resolves <module> against the given --root directories, collects
its transitive import closure, rewrites first-party modules' third-party
imports to the vendored <top-package>.<vendor-name>.<package> form, and
writes first-party modules, vendored third-party modules and native
extensions to --destination. Parameters may come from --config instead of
flags; a flag that is explicitly set always wins over the config file.`,
	Args: cobra.ExactArgs(1),
	RunE: runBundle,
}

func init() {
	bundleCmd.Flags().StringVar(&bundleConfigPath, "config", "", "YAML config file supplying defaults for the flags below")
	bundleCmd.Flags().StringVar(&bundleDestination, "destination", "", "output directory (required)")
	bundleCmd.Flags().StringVar(&bundleVendorName, "vendor-name", "", `directory name third-party packages are vendored under (default "vendor")`)
	bundleCmd.Flags().StringSliceVar(&bundleRoots, "root", nil, "resolution root directory (repeatable, required unless set in --config)")
	bundleCmd.Flags().StringVar(&bundleTopPackage, "top-package", "", "top-level package name (required unless set in --config)")
	bundleCmd.Flags().StringSliceVar(&bundleResources, "resource", nil, "glob pattern for non-Python resource files to copy alongside first-party packages (repeatable)")
	bundleCmd.Flags().StringVar(&bundleFormat, "format", "text", "output format: text, json, sarif")
	bundleCmd.Flags().StringVar(&bundleFailOn, "fail-on", "", "comma-separated warning kinds that cause a non-zero exit")
	rootCmd.AddCommand(bundleCmd)
}

func runBundle(cmd *cobra.Command, args []string) error {
	failOn := output.ParseFailOn(bundleFailOn)
	if err := output.ValidateWarningKinds(failOn); err != nil {
		return err
	}

	opts := bundle.Options{
		ModuleSpec:      args[0],
		ResolutionRoots: bundleRoots,
		TopPackage:      bundleTopPackage,
		Destination:     bundleDestination,
		VendorName:      bundleVendorName,
		ResourceGlobs:   bundleResources,
	}

	if bundleConfigPath != "" {
		cfg, err := config.Load(bundleConfigPath)
		if err != nil {
			return err
		}
		mergeBundleConfig(cmd.Flags(), cfg, &opts)
	}
	if opts.VendorName == "" {
		opts.VendorName = "vendor"
	}
	if opts.Destination == "" || opts.TopPackage == "" || len(opts.ResolutionRoots) == 0 {
		return fmt.Errorf("bundle: --destination is required, and --top-package and --root are required directly or via --config")
	}

	logger := output.NewLogger(loggerVerbosity())
	sink := &progressSink{logger: logger}

	analytics.ReportEvent(analytics.BundleStarted)
	start := time.Now()
	report, err := bundle.Bundle(opts, sink)
	if err != nil {
		analytics.ReportEvent(analytics.BundleFailed)
		return err
	}
	analytics.ReportEvent(analytics.BundleCompleted)

	run := output.RunInfo{Target: args[0], Version: Version, Duration: time.Since(start)}
	if err := emitReport(os.Stdout, report, run, bundleFormat); err != nil {
		return err
	}

	exitCode := output.DetermineExitCode(report, failOn, false)
	if exitCode != output.ExitCodeSuccess {
		os.Exit(int(exitCode))
	}
	return nil
}

// mergeBundleConfig fills in opts fields left at their zero value from cfg,
// never overriding a flag the caller explicitly set.
func mergeBundleConfig(flags *pflag.FlagSet, cfg *config.Config, opts *bundle.Options) {
	if !flags.Changed("top-package") && cfg.TopPackage != "" {
		opts.TopPackage = cfg.TopPackage
	}
	if !flags.Changed("root") && len(cfg.Roots) > 0 {
		opts.ResolutionRoots = cfg.Roots
	}
	if !flags.Changed("vendor-name") && cfg.VendorName != "" {
		opts.VendorName = cfg.VendorName
	}
	if !flags.Changed("resource") && len(cfg.Resources) > 0 {
		opts.ResourceGlobs = cfg.Resources
	}
	if len(cfg.Metadata) > 0 {
		opts.BundleMetadata = cfg.Metadata
	}
}
