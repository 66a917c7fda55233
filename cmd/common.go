package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/kmitra/pyshake/internal/bundle"
	"github.com/kmitra/pyshake/internal/core"
	"github.com/kmitra/pyshake/output"
)

// progressSink adapts a *output.Logger into a bundle.EventSink, so bundle
// and treeshake progress shows up through the same logger every other
// command uses.
type progressSink struct {
	logger *output.Logger
}

func (s *progressSink) FoundModule(spec string)   { s.logger.Debug("found module %s", spec) }
func (s *progressSink) TotalModules(count int)    { s.logger.Statistic("collected %d modules", count) }
func (s *progressSink) ProcessModule(spec string) { s.logger.Debug("processing %s", spec) }
func (s *progressSink) ReferencesIteration(iteration int) {
	s.logger.Debug("reference fixpoint iteration %d", iteration)
}
func (s *progressSink) NodesRemoval(spec string) {
	s.logger.Debug("pruned dead statements in %s", spec)
}
func (s *progressSink) BundledMetadata() { s.logger.Progress("wrote bundle metadata") }

// loggerVerbosity derives the output verbosity from the --verbose persistent
// flag shared by every subcommand.
func loggerVerbosity() output.VerbosityLevel {
	if verboseFlag {
		return output.VerbosityVerbose
	}
	return output.VerbosityDefault
}

// parseImportAliases turns "visible=actual" flag values into an
// core.ImportAliasMap.
func parseImportAliases(pairs []string) (*core.ImportAliasMap, error) {
	aliases := core.NewImportAliasMap()
	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid --import-alias %q, expected visible=actual", pair)
		}
		aliases.Add(parts[0], parts[1])
	}
	return aliases, nil
}

// emitReport renders report in the requested format to w.
func emitReport(w io.Writer, report *bundle.Report, run output.RunInfo, format string) error {
	switch format {
	case "json":
		return output.NewJSONFormatterWithWriter(w, nil).Format(report, run)
	case "sarif":
		return output.NewSARIFFormatterWithWriter(w, nil).Format(report, run)
	case "text", "":
		summary := output.BuildSummary(report)
		return output.NewTextFormatterWithWriter(w, nil, nil).Format(report, summary)
	default:
		return fmt.Errorf("unknown --format %q, must be one of: text, json, sarif", format)
	}
}
