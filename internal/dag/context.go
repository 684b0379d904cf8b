package dag

import "github.com/specialistvlad/tariffgraph/internal/value"

// Context is the caller-supplied mapping from input names to values for
// one evaluation. Names not referenced by any INPUT node are permitted
// and ignored; a name absent from Context is treated as the absent value
// by any INPUT node that reads it.
type Context map[string]value.Value

// Snapshot renders Context as plain strings, for embedding in a failed
// EvaluationError where callers need a loggable view rather than the
// original typed values.
func (c Context) Snapshot() map[string]string {
	out := make(map[string]string, len(c))
	for k, v := range c {
		out[k] = v.String()
	}
	return out
}
