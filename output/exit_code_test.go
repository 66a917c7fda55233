package output

import (
	"errors"
	"testing"

	"github.com/kmitra/pyshake/internal/bundle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reportWithWarnings(kinds ...bundle.WarningKind) *bundle.Report {
	r := &bundle.Report{}
	for _, k := range kinds {
		r.Warnings = append(r.Warnings, bundle.Warning{Kind: k, Module: "m", Message: "msg"})
	}
	return r
}

func TestDetermineExitCode(t *testing.T) {
	tests := []struct {
		name      string
		report    *bundle.Report
		failOn    []string
		hadErrors bool
		expected  ExitCode
	}{
		{
			name:      "No warnings, no fail-on",
			report:    reportWithWarnings(),
			failOn:    []string{},
			hadErrors: false,
			expected:  ExitCodeSuccess,
		},
		{
			name:      "Warnings present, no fail-on",
			report:    reportWithWarnings(bundle.WarningAmbiguousDecorator),
			failOn:    []string{},
			hadErrors: false,
			expected:  ExitCodeSuccess,
		},
		{
			name:      "Ambiguous decorator matches fail-on",
			report:    reportWithWarnings(bundle.WarningAmbiguousDecorator),
			failOn:    []string{"ambiguous-decorator"},
			hadErrors: false,
			expected:  ExitCodeWarnings,
		},
		{
			name:      "Missing libs companion matches fail-on",
			report:    reportWithWarnings(bundle.WarningMissingLibsCompanion),
			failOn:    []string{"missing-libs-companion"},
			hadErrors: false,
			expected:  ExitCodeWarnings,
		},
		{
			name: "Multiple kinds, matches one",
			report: reportWithWarnings(
				bundle.WarningAmbiguousDecorator,
				bundle.WarningUnobservedPreservationSymbol,
			),
			failOn:    []string{"missing-libs-companion", "unobserved-preservation-symbol"},
			hadErrors: false,
			expected:  ExitCodeWarnings,
		},
		{
			name:      "Warning does not match fail-on",
			report:    reportWithWarnings(bundle.WarningMissingLibsCompanion),
			failOn:    []string{"ambiguous-decorator"},
			hadErrors: false,
			expected:  ExitCodeSuccess,
		},
		{
			name:      "Errors take precedence over no warnings",
			report:    reportWithWarnings(),
			failOn:    []string{"ambiguous-decorator"},
			hadErrors: true,
			expected:  ExitCodeError,
		},
		{
			name:      "Errors take precedence over warnings",
			report:    reportWithWarnings(bundle.WarningAmbiguousDecorator),
			failOn:    []string{"ambiguous-decorator"},
			hadErrors: true,
			expected:  ExitCodeError,
		},
		{
			name:      "Case insensitive matching - uppercase fail-on",
			report:    reportWithWarnings(bundle.WarningAmbiguousDecorator),
			failOn:    []string{"AMBIGUOUS-DECORATOR"},
			hadErrors: false,
			expected:  ExitCodeWarnings,
		},
		{
			name: "All kinds match",
			report: reportWithWarnings(
				bundle.WarningAmbiguousDecorator,
				bundle.WarningUnobservedPreservationSymbol,
				bundle.WarningMissingLibsCompanion,
			),
			failOn:    []string{"ambiguous-decorator", "unobserved-preservation-symbol", "missing-libs-companion"},
			hadErrors: false,
			expected:  ExitCodeWarnings,
		},
		{
			name:      "Nil report with fail-on",
			report:    nil,
			failOn:    []string{"ambiguous-decorator"},
			hadErrors: false,
			expected:  ExitCodeSuccess,
		},
		{
			name:      "Empty fail-on with errors",
			report:    reportWithWarnings(bundle.WarningAmbiguousDecorator),
			failOn:    []string{},
			hadErrors: true,
			expected:  ExitCodeError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DetermineExitCode(tt.report, tt.failOn, tt.hadErrors)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseFailOn(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "Empty string",
			input:    "",
			expected: []string{},
		},
		{
			name:     "Whitespace only",
			input:    "   ",
			expected: []string{},
		},
		{
			name:     "Single kind",
			input:    "ambiguous-decorator",
			expected: []string{"ambiguous-decorator"},
		},
		{
			name:     "Multiple kinds",
			input:    "ambiguous-decorator,missing-libs-companion",
			expected: []string{"ambiguous-decorator", "missing-libs-companion"},
		},
		{
			name:     "Multiple kinds with spaces",
			input:    "ambiguous-decorator, missing-libs-companion",
			expected: []string{"ambiguous-decorator", "missing-libs-companion"},
		},
		{
			name:     "Trimming leading/trailing spaces",
			input:    "  ambiguous-decorator  ,  missing-libs-companion  ",
			expected: []string{"ambiguous-decorator", "missing-libs-companion"},
		},
		{
			name:     "Empty segments ignored",
			input:    "ambiguous-decorator,,missing-libs-companion",
			expected: []string{"ambiguous-decorator", "missing-libs-companion"},
		},
		{
			name:     "Trailing comma ignored",
			input:    "ambiguous-decorator,missing-libs-companion,",
			expected: []string{"ambiguous-decorator", "missing-libs-companion"},
		},
		{
			name:     "Mixed case lowercased",
			input:    "AMBIGUOUS-DECORATOR,Missing-Libs-Companion",
			expected: []string{"ambiguous-decorator", "missing-libs-companion"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseFailOn(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestValidateWarningKinds(t *testing.T) {
	tests := []struct {
		name      string
		input     []string
		wantError bool
		errorMsg  string
	}{
		{
			name:      "Empty list",
			input:     []string{},
			wantError: false,
		},
		{
			name:      "Valid single kind - ambiguous-decorator",
			input:     []string{"ambiguous-decorator"},
			wantError: false,
		},
		{
			name:      "Valid single kind - unobserved-preservation-symbol",
			input:     []string{"unobserved-preservation-symbol"},
			wantError: false,
		},
		{
			name:      "Valid single kind - missing-libs-companion",
			input:     []string{"missing-libs-companion"},
			wantError: false,
		},
		{
			name:      "Valid multiple kinds",
			input:     []string{"ambiguous-decorator", "missing-libs-companion"},
			wantError: false,
		},
		{
			name:      "Invalid kind",
			input:     []string{"invalid"},
			wantError: true,
			errorMsg:  "invalid warning kind 'invalid', must be one of: ambiguous-decorator, unobserved-preservation-symbol, missing-libs-companion",
		},
		{
			name:      "Valid then invalid",
			input:     []string{"ambiguous-decorator", "invalid"},
			wantError: true,
			errorMsg:  "invalid warning kind 'invalid', must be one of: ambiguous-decorator, unobserved-preservation-symbol, missing-libs-companion",
		},
		{
			name:      "Case insensitive",
			input:     []string{"AMBIGUOUS-DECORATOR"},
			wantError: false,
		},
		{
			name:      "Invalid case preserved in error",
			input:     []string{"INVALID"},
			wantError: true,
			errorMsg:  "invalid warning kind 'INVALID', must be one of: ambiguous-decorator, unobserved-preservation-symbol, missing-libs-companion",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWarningKinds(tt.input)
			if tt.wantError {
				assert.Error(t, err)
				assert.Equal(t, tt.errorMsg, err.Error())

				var invalidErr *InvalidWarningKindError
				assert.True(t, errors.As(err, &invalidErr), "error should be *InvalidWarningKindError")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateWarningKinds_ErrorAsCheck(t *testing.T) {
	err := ValidateWarningKinds([]string{"invalid"})
	require.Error(t, err)

	var invalidErr *InvalidWarningKindError
	require.True(t, errors.As(err, &invalidErr), "error should be *InvalidWarningKindError")
	require.Equal(t, "invalid", invalidErr.Kind)
}

func TestInvalidWarningKindError(t *testing.T) {
	err := &InvalidWarningKindError{
		Kind:  "unknown",
		Valid: []string{"ambiguous-decorator", "unobserved-preservation-symbol", "missing-libs-companion"},
	}

	expected := "invalid warning kind 'unknown', must be one of: ambiguous-decorator, unobserved-preservation-symbol, missing-libs-companion"
	assert.Equal(t, expected, err.Error())
}

func TestExitCodeConstants(t *testing.T) {
	assert.Equal(t, ExitCode(0), ExitCodeSuccess)
	assert.Equal(t, ExitCode(1), ExitCodeWarnings)
	assert.Equal(t, ExitCode(2), ExitCodeError)
}
