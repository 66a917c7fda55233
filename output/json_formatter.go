package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/kmitra/pyshake/internal/bundle"
)

// JSONFormatter formats a bundle.Report as JSON.
type JSONFormatter struct {
	writer  io.Writer
	options *OutputOptions
}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter(opts *OutputOptions) *JSONFormatter {
	if opts == nil {
		opts = NewDefaultOptions()
	}
	return &JSONFormatter{
		writer:  os.Stdout,
		options: opts,
	}
}

// NewJSONFormatterWithWriter creates a formatter with custom writer (for testing).
func NewJSONFormatterWithWriter(w io.Writer, opts *OutputOptions) *JSONFormatter {
	jf := NewJSONFormatter(opts)
	jf.writer = w
	return jf
}

// JSONOutput represents the complete JSON output structure.
type JSONOutput struct {
	Tool     JSONTool    `json:"tool"`
	Run      JSONRun     `json:"run"`
	Warnings []JSONEntry `json:"warnings"`
	Summary  JSONSummary `json:"summary"`
	Errors   []string    `json:"errors,omitempty"`
}

// JSONTool contains tool metadata.
type JSONTool struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	URL     string `json:"url"`
}

// JSONRun contains metadata about the bundle/treeshake invocation.
type JSONRun struct {
	Target    string  `json:"target"`
	Timestamp string  `json:"timestamp"`
	Duration  float64 `json:"duration"`
}

// JSONEntry represents a single warning.
type JSONEntry struct {
	Kind    string `json:"kind"`
	Module  string `json:"module"`
	Message string `json:"message"`
}

// JSONSummary contains aggregated statistics.
type JSONSummary struct {
	ModulesBundled    int            `json:"modules_bundled"`    //nolint:tagliatelle
	StatementsRemoved int            `json:"statements_removed"` //nolint:tagliatelle
	TotalWarnings     int            `json:"total_warnings"`     //nolint:tagliatelle
	ByKind            map[string]int `json:"by_kind"`            //nolint:tagliatelle
}

// RunInfo carries caller-supplied metadata about one invocation that the
// Report itself does not track.
type RunInfo struct {
	Target   string
	Version  string
	Duration time.Duration
	Errors   []string
}

// Format outputs a completed run as JSON.
func (f *JSONFormatter) Format(report *bundle.Report, run RunInfo) error {
	output := f.buildOutput(report, run)

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func (f *JSONFormatter) buildOutput(report *bundle.Report, run RunInfo) JSONOutput {
	version := run.Version
	if version == "" {
		version = "unknown"
	}

	summary := BuildSummary(report)

	output := JSONOutput{
		Tool: JSONTool{
			Name:    "pyshake",
			Version: version,
			URL:     "https://github.com/kmitra/pyshake",
		},
		Run: JSONRun{
			Target:    run.Target,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Duration:  run.Duration.Seconds(),
		},
		Warnings: f.buildWarnings(report),
		Summary: JSONSummary{
			ModulesBundled:    summary.ModulesBundled,
			StatementsRemoved: summary.StatementsRemoved,
			TotalWarnings:     summary.TotalWarnings,
			ByKind:            summary.ByKind,
		},
		Errors: run.Errors,
	}

	return output
}

func (f *JSONFormatter) buildWarnings(report *bundle.Report) []JSONEntry {
	if report == nil {
		return []JSONEntry{}
	}
	entries := make([]JSONEntry, 0, len(report.Warnings))
	for _, w := range report.Warnings {
		entries = append(entries, JSONEntry{
			Kind:    w.Kind.String(),
			Module:  w.Module,
			Message: w.Message,
		})
	}
	return entries
}
