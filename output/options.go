package output

// OutputOptions configures how a formatter renders a bundle.Report.
type OutputOptions struct {
	Verbosity VerbosityLevel
}

// NewDefaultOptions returns the default output configuration.
func NewDefaultOptions() *OutputOptions {
	return &OutputOptions{Verbosity: VerbosityDefault}
}

// ShouldShowStatistics reports whether the per-kind warning breakdown should
// be printed, which only makes sense once the user asked for more than the
// default amount of output.
func (o *OutputOptions) ShouldShowStatistics() bool {
	return o.Verbosity >= VerbosityVerbose
}
