package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/kmitra/pyshake/internal/bundle"
)

func TestNewJSONFormatter(t *testing.T) {
	jf := NewJSONFormatter(nil)
	if jf == nil {
		t.Fatal("expected non-nil formatter")
	}
	if jf.options == nil {
		t.Error("expected default options")
	}
}

func TestJSONFormatterToolMetadata(t *testing.T) {
	var buf bytes.Buffer
	jf := NewJSONFormatterWithWriter(&buf, nil)

	err := jf.Format(&bundle.Report{}, RunInfo{Version: "0.1.0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var output JSONOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("failed to unmarshal output: %v", err)
	}

	if output.Tool.Name != "pyshake" {
		t.Errorf("Tool.Name: got %q, want pyshake", output.Tool.Name)
	}
	if output.Tool.Version != "0.1.0" {
		t.Errorf("Tool.Version: got %q, want 0.1.0", output.Tool.Version)
	}
	if output.Tool.URL != "https://github.com/kmitra/pyshake" {
		t.Errorf("Tool.URL: got %q", output.Tool.URL)
	}
}

func TestJSONFormatterDefaultVersion(t *testing.T) {
	var buf bytes.Buffer
	jf := NewJSONFormatterWithWriter(&buf, nil)

	jf.Format(&bundle.Report{}, RunInfo{})

	var output JSONOutput
	json.Unmarshal(buf.Bytes(), &output)

	if output.Tool.Version != "unknown" {
		t.Errorf("Tool.Version: got %q, want unknown", output.Tool.Version)
	}
}

func TestJSONFormatterWarnings(t *testing.T) {
	var buf bytes.Buffer
	jf := NewJSONFormatterWithWriter(&buf, nil)

	report := &bundle.Report{
		ModulesBundled:    3,
		StatementsRemoved: 9,
		Warnings: []bundle.Warning{
			{Kind: bundle.WarningAmbiguousDecorator, Module: "pkg.mod", Message: "kept alive by @custom"},
			{Kind: bundle.WarningMissingLibsCompanion, Module: "native.ext", Message: "no .libs"},
		},
	}

	err := jf.Format(report, RunInfo{Target: "myapp.main", Duration: 2 * time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var output JSONOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if len(output.Warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d", len(output.Warnings))
	}
	if output.Warnings[0].Kind != "ambiguous-decorator" {
		t.Errorf("warning[0].Kind: got %q", output.Warnings[0].Kind)
	}
	if output.Warnings[0].Module != "pkg.mod" {
		t.Errorf("warning[0].Module: got %q", output.Warnings[0].Module)
	}

	if output.Summary.ModulesBundled != 3 {
		t.Errorf("Summary.ModulesBundled: got %d, want 3", output.Summary.ModulesBundled)
	}
	if output.Summary.StatementsRemoved != 9 {
		t.Errorf("Summary.StatementsRemoved: got %d, want 9", output.Summary.StatementsRemoved)
	}
	if output.Summary.TotalWarnings != 2 {
		t.Errorf("Summary.TotalWarnings: got %d, want 2", output.Summary.TotalWarnings)
	}
	if output.Summary.ByKind["ambiguous-decorator"] != 1 {
		t.Errorf("ByKind[ambiguous-decorator]: got %d, want 1", output.Summary.ByKind["ambiguous-decorator"])
	}

	if output.Run.Target != "myapp.main" {
		t.Errorf("Run.Target: got %q", output.Run.Target)
	}
	if output.Run.Duration != 2.0 {
		t.Errorf("Run.Duration: got %v, want 2.0", output.Run.Duration)
	}
}

func TestJSONFormatterNoWarnings(t *testing.T) {
	var buf bytes.Buffer
	jf := NewJSONFormatterWithWriter(&buf, nil)

	err := jf.Format(&bundle.Report{ModulesBundled: 1}, RunInfo{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var output JSONOutput
	json.Unmarshal(buf.Bytes(), &output)

	if len(output.Warnings) != 0 {
		t.Errorf("expected zero warnings, got %d", len(output.Warnings))
	}
}

func TestJSONFormatterErrors(t *testing.T) {
	var buf bytes.Buffer
	jf := NewJSONFormatterWithWriter(&buf, nil)

	jf.Format(&bundle.Report{}, RunInfo{Errors: []string{"parse failure in a.py"}})

	output := buf.String()
	if !strings.Contains(output, "parse failure in a.py") {
		t.Error("missing error message in output")
	}
}

func TestJSONFormatterIndented(t *testing.T) {
	var buf bytes.Buffer
	jf := NewJSONFormatterWithWriter(&buf, nil)

	jf.Format(&bundle.Report{}, RunInfo{})

	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("expected indented JSON output")
	}
}
