package output

import (
	"fmt"
	"io"
	"os"

	"github.com/kmitra/pyshake/internal/bundle"
)

// warningKindOrder fixes the display order of warning kinds, most actionable
// first.
var warningKindOrder = []bundle.WarningKind{
	bundle.WarningAmbiguousDecorator,
	bundle.WarningUnobservedPreservationSymbol,
	bundle.WarningMissingLibsCompanion,
}

// TextFormatter formats a bundle.Report as human-readable text.
type TextFormatter struct {
	writer  io.Writer
	options *OutputOptions
	logger  *Logger
}

// NewTextFormatter creates a text formatter.
func NewTextFormatter(opts *OutputOptions, logger *Logger) *TextFormatter {
	if opts == nil {
		opts = NewDefaultOptions()
	}
	return &TextFormatter{
		writer:  os.Stdout,
		options: opts,
		logger:  logger,
	}
}

// NewTextFormatterWithWriter creates a formatter with custom writer (for testing).
func NewTextFormatterWithWriter(w io.Writer, opts *OutputOptions, logger *Logger) *TextFormatter {
	tf := NewTextFormatter(opts, logger)
	tf.writer = w
	return tf
}

// Format outputs a completed Bundle/Treeshake run as text.
func (f *TextFormatter) Format(report *bundle.Report, summary *Summary) error {
	f.writeHeader()

	if report == nil || len(report.Warnings) == 0 {
		fmt.Fprintln(f.writer, "No warnings.")
	} else {
		f.writeWarnings(report.Warnings)
	}

	f.writeSummary(summary)

	if f.options.ShouldShowStatistics() {
		f.writeStatistics(summary)
	}

	return nil
}

func (f *TextFormatter) writeHeader() {
	fmt.Fprintln(f.writer, "pyshake report")
	fmt.Fprintln(f.writer)
}

func (f *TextFormatter) writeWarnings(warnings []bundle.Warning) {
	fmt.Fprintln(f.writer, "Warnings:")
	fmt.Fprintln(f.writer)

	grouped := f.groupByKind(warnings)
	for _, kind := range warningKindOrder {
		if ws, ok := grouped[kind]; ok && len(ws) > 0 {
			f.writeKindGroup(kind, ws)
		}
	}
	fmt.Fprintln(f.writer)
}

func (f *TextFormatter) groupByKind(warnings []bundle.Warning) map[bundle.WarningKind][]bundle.Warning {
	grouped := make(map[bundle.WarningKind][]bundle.Warning)
	for _, w := range warnings {
		grouped[w.Kind] = append(grouped[w.Kind], w)
	}
	return grouped
}

func (f *TextFormatter) writeKindGroup(kind bundle.WarningKind, warnings []bundle.Warning) {
	fmt.Fprintf(f.writer, "  %s (%d):\n", kind, len(warnings))
	for _, w := range warnings {
		fmt.Fprintf(f.writer, "    [%s] %s\n", w.Module, w.Message)
	}
}

func (f *TextFormatter) writeSummary(summary *Summary) {
	fmt.Fprintln(f.writer, "Summary:")
	fmt.Fprintf(f.writer, "  %d modules bundled, %d statements removed, %d warnings\n",
		summary.ModulesBundled, summary.StatementsRemoved, summary.TotalWarnings)
	fmt.Fprintln(f.writer)
}

func (f *TextFormatter) writeStatistics(summary *Summary) {
	fmt.Fprintln(f.writer, "Warnings by kind:")
	for _, kind := range warningKindOrder {
		if count, ok := summary.ByKind[kind.String()]; ok && count > 0 {
			fmt.Fprintf(f.writer, "  %s: %d\n", kind, count)
		}
	}
	fmt.Fprintln(f.writer)
}

// Summary holds aggregated statistics for one Bundle or Treeshake run.
type Summary struct {
	ModulesBundled    int
	StatementsRemoved int
	TotalWarnings     int
	ByKind            map[string]int
}

// BuildSummary aggregates a Report into display-ready statistics.
func BuildSummary(report *bundle.Report) *Summary {
	summary := &Summary{
		ByKind: make(map[string]int),
	}
	if report == nil {
		return summary
	}

	summary.ModulesBundled = report.ModulesBundled
	summary.StatementsRemoved = report.StatementsRemoved
	summary.TotalWarnings = len(report.Warnings)
	for _, w := range report.Warnings {
		summary.ByKind[w.Kind.String()]++
	}
	return summary
}
