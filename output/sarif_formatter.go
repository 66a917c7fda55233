package output

import (
	"encoding/json"
	"io"
	"os"

	sarif "github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/kmitra/pyshake/internal/bundle"
)

// SARIFFormatter formats a bundle.Report as SARIF 2.1.0.
type SARIFFormatter struct {
	writer  io.Writer
	options *OutputOptions
}

// NewSARIFFormatter creates a SARIF formatter.
func NewSARIFFormatter(opts *OutputOptions) *SARIFFormatter {
	if opts == nil {
		opts = NewDefaultOptions()
	}
	return &SARIFFormatter{
		writer:  os.Stdout,
		options: opts,
	}
}

// NewSARIFFormatterWithWriter creates a formatter with custom writer (for testing).
func NewSARIFFormatterWithWriter(w io.Writer, opts *OutputOptions) *SARIFFormatter {
	sf := NewSARIFFormatter(opts)
	sf.writer = w
	return sf
}

// Format outputs a completed run as SARIF.
func (f *SARIFFormatter) Format(report *bundle.Report, run RunInfo) error {
	sarifReport, err := sarif.New(sarif.Version210)
	if err != nil {
		return err
	}

	sarifRun := sarif.NewRunWithInformationURI("pyshake", "https://github.com/kmitra/pyshake")

	if report != nil {
		f.buildRules(report.Warnings, sarifRun)
		for _, w := range report.Warnings {
			f.buildResult(w, sarifRun)
		}
	}

	sarifReport.AddRun(sarifRun)

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(sarifReport)
}

func (f *SARIFFormatter) buildRules(warnings []bundle.Warning, run *sarif.Run) {
	seen := make(map[string]bool)

	for _, w := range warnings {
		id := w.Kind.String()
		if seen[id] {
			continue
		}
		seen[id] = true

		run.AddRule(id).
			WithName(id).
			WithDescription(f.kindDescription(w.Kind)).
			WithHelpURI("https://github.com/kmitra/pyshake").
			WithDefaultConfiguration(sarif.NewReportingConfiguration().WithLevel(f.kindLevel(w.Kind)))
	}
}

func (f *SARIFFormatter) kindDescription(kind bundle.WarningKind) string {
	switch kind {
	case bundle.WarningAmbiguousDecorator:
		return "A definition survived tree-shaking only because of an unrecognized decorator."
	case bundle.WarningUnobservedPreservationSymbol:
		return "A caller-supplied preservation symbol never matched a definition."
	case bundle.WarningMissingLibsCompanion:
		return "A native extension module is missing its expected .libs companion directory."
	default:
		return "Unclassified warning."
	}
}

func (f *SARIFFormatter) kindLevel(kind bundle.WarningKind) string {
	switch kind {
	case bundle.WarningMissingLibsCompanion:
		return "error"
	default:
		return "warning"
	}
}

func (f *SARIFFormatter) buildResult(w bundle.Warning, run *sarif.Run) {
	result := run.CreateResultForRule(w.Kind.String()).
		WithMessage(sarif.NewTextMessage(w.Message))

	location := sarif.NewLocation().
		WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(
					sarif.NewArtifactLocation().WithUri(w.Module),
				),
		)
	result.AddLocation(location)
}
