package dag

import "github.com/specialistvlad/tariffgraph/internal/value"

// TraceEntry is one node's recorded outcome: the value it produced, its
// kind, and the path (ordered ancestor names from the evaluation target
// down to this node) by which it was first reached.
type TraceEntry struct {
	Value value.Value
	Kind  Kind
	Path  []string
}

// Trace collects one TraceEntry per node touched during an evaluation,
// keyed by node name. A nil *Trace means "no tracing requested"; every
// method on it degrades to a no-op.
type Trace struct {
	entries map[string]TraceEntry
	order   []string
}

// NewTrace returns an empty Trace ready to be passed to Evaluate.
func NewTrace() *Trace {
	return &Trace{entries: make(map[string]TraceEntry)}
}

func (t *Trace) recordIfAbsent(name string, v value.Value, kind Kind, path []string) {
	if t == nil {
		return
	}
	if _, ok := t.entries[name]; ok {
		return
	}
	pathCopy := make([]string, len(path))
	copy(pathCopy, path)
	t.entries[name] = TraceEntry{Value: v, Kind: kind, Path: pathCopy}
	t.order = append(t.order, name)
}

// Entries returns every recorded node name, in the order first reached.
func (t *Trace) Entries() []string {
	if t == nil {
		return nil
	}
	return t.order
}

// Get returns the recorded entry for name, if any.
func (t *Trace) Get(name string) (TraceEntry, bool) {
	if t == nil {
		return TraceEntry{}, false
	}
	e, ok := t.entries[name]
	return e, ok
}
