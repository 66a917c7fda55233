package bundle

// EventSink receives synchronous progress notifications while Bundle or
// Treeshake run. Implementations must not mutate core state from inside a
// callback; the orchestration loop calls these inline on the same
// goroutine, in the order the events occur.
type EventSink interface {
	// FoundModule reports a module spec added to the collected corpus.
	FoundModule(spec string)

	// TotalModules reports the final corpus size once collection finishes.
	TotalModules(count int)

	// ProcessModule reports that spec is about to be rewritten (Bundle) or
	// counted (Treeshake).
	ProcessModule(spec string)

	// ReferencesIteration reports the whole-program reference fixpoint
	// completing. Treeshake calls it once, with 1, after the fixpoint has
	// converged; individual passes are not reported.
	ReferencesIteration(iteration int)

	// NodesRemoval reports that dead statements in spec have been pruned.
	NodesRemoval(spec string)

	// BundledMetadata reports that the destination's .gitignore and, when
	// Options.BundleMetadata is non-empty, its .bundle-metadata.json have
	// been written.
	BundledMetadata()
}

// NopSink implements EventSink with no-ops, for callers that don't need
// progress notifications.
type NopSink struct{}

func (NopSink) FoundModule(string)         {}
func (NopSink) TotalModules(int)           {}
func (NopSink) ProcessModule(string)       {}
func (NopSink) ReferencesIteration(int)    {}
func (NopSink) NodesRemoval(string)        {}
func (NopSink) BundledMetadata()           {}

func sinkOrNop(sink EventSink) EventSink {
	if sink == nil {
		return NopSink{}
	}
	return sink
}
