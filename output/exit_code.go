package output

import (
	"fmt"
	"strings"

	"github.com/kmitra/pyshake/internal/bundle"
)

// ExitCode represents the exit code for the CLI.
type ExitCode int

const (
	// ExitCodeSuccess indicates successful execution with no fail-on warnings.
	ExitCodeSuccess ExitCode = 0

	// ExitCodeWarnings indicates the run produced warnings matching --fail-on.
	ExitCodeWarnings ExitCode = 1

	// ExitCodeError indicates configuration or execution error.
	ExitCodeError ExitCode = 2
)

// InvalidWarningKindError is returned when an invalid --fail-on value is provided.
type InvalidWarningKindError struct {
	Kind  string
	Valid []string
}

func (e *InvalidWarningKindError) Error() string {
	return fmt.Sprintf("invalid warning kind '%s', must be one of: %s",
		e.Kind, strings.Join(e.Valid, ", "))
}

var validWarningKinds = map[string]bool{
	bundle.WarningAmbiguousDecorator.String():           true,
	bundle.WarningUnobservedPreservationSymbol.String(): true,
	bundle.WarningMissingLibsCompanion.String():         true,
}

// DetermineExitCode calculates the appropriate exit code for a completed
// Bundle or Treeshake run.
//
// Exit code precedence:
// 1. ExitCodeError (2) - if hadErrors is true.
// 2. ExitCodeWarnings (1) - if report has a warning matching --fail-on.
// 3. ExitCodeSuccess (0) - otherwise (no warnings or no --fail-on match).
func DetermineExitCode(report *bundle.Report, failOn []string, hadErrors bool) ExitCode {
	if hadErrors {
		return ExitCodeError
	}

	if len(failOn) == 0 || report == nil {
		return ExitCodeSuccess
	}

	failOnSet := make(map[string]bool, len(failOn))
	for _, kind := range failOn {
		failOnSet[strings.ToLower(kind)] = true
	}

	for _, w := range report.Warnings {
		if failOnSet[w.Kind.String()] {
			return ExitCodeWarnings
		}
	}

	return ExitCodeSuccess
}

// ParseFailOn parses the comma-separated --fail-on flag value into a slice of
// warning kind names. Empty strings and whitespace are trimmed. Returns an
// empty slice for empty input.
func ParseFailOn(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return []string{}
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, strings.ToLower(trimmed))
		}
	}
	return result
}

// ValidateWarningKinds checks that all provided --fail-on values name a real
// WarningKind. Returns InvalidWarningKindError for the first invalid one.
func ValidateWarningKinds(kinds []string) error {
	validList := []string{
		bundle.WarningAmbiguousDecorator.String(),
		bundle.WarningUnobservedPreservationSymbol.String(),
		bundle.WarningMissingLibsCompanion.String(),
	}

	for _, kind := range kinds {
		normalized := strings.ToLower(kind)
		if !validWarningKinds[normalized] {
			return &InvalidWarningKindError{
				Kind:  kind,
				Valid: validList,
			}
		}
	}
	return nil
}
