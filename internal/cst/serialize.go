package cst

import (
	"sort"

	sitter "github.com/smacker/go-tree-sitter"
)

// Serialize returns the tree's source bytes. For a tree that has not been
// mutated via ApplyEdits this is byte-identical to the bytes passed to
// Parse, satisfying the round-trip invariant (§4.1, §8.1).
func Serialize(t *Tree) []byte {
	return t.Source
}

// SerializeNode renders a single node's source span, for diagnostic use.
func SerializeNode(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	return n.Content(source)
}

// ApplyEdits produces a new source buffer with every edit applied. Edits
// must be non-overlapping; they are applied right-to-left so earlier
// offsets stay valid regardless of input order. Returns the unmodified
// source when edits is empty, preserving round-trip stability.
func ApplyEdits(source []byte, edits []Edit) []byte {
	if len(edits) == 0 {
		return source
	}

	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartByte < sorted[j].StartByte })

	var out []byte
	cursor := uint32(0)
	for _, e := range sorted {
		if e.StartByte < cursor {
			// Overlapping edit: skip rather than corrupt output, since no
			// rewrite may fail destructively (§4.5).
			continue
		}
		out = append(out, source[cursor:e.StartByte]...)
		out = append(out, []byte(e.Replace)...)
		cursor = e.EndByte
	}
	out = append(out, source[cursor:]...)
	return out
}
