package dag

import (
	"fmt"

	"github.com/specialistvlad/tariffgraph/internal/table"
)

// Tables is the read-only registry of lookup tables a Graph's LOOKUP
// nodes consult by symbolic name, resolved once at construction time and
// shared across every evaluation.
type Tables struct {
	ranges map[string]*table.OrderedRangeTable
	exact  map[string]*table.ExactMatchTable
}

// NewTables returns an empty table registry.
func NewTables() *Tables {
	return &Tables{
		ranges: make(map[string]*table.OrderedRangeTable),
		exact:  make(map[string]*table.ExactMatchTable),
	}
}

// AddRange registers a named OrderedRangeTable. It returns an error if
// name already names a range or exact table.
func (t *Tables) AddRange(name string, tbl *table.OrderedRangeTable) error {
	if t.has(name) {
		return fmt.Errorf("duplicate table name %q", name)
	}
	t.ranges[name] = tbl
	return nil
}

// AddExact registers a named ExactMatchTable. It returns an error if
// name already names a range or exact table.
func (t *Tables) AddExact(name string, tbl *table.ExactMatchTable) error {
	if t.has(name) {
		return fmt.Errorf("duplicate table name %q", name)
	}
	t.exact[name] = tbl
	return nil
}

func (t *Tables) has(name string) bool {
	if _, ok := t.ranges[name]; ok {
		return true
	}
	_, ok := t.exact[name]
	return ok
}

// Range looks up a range table by name.
func (t *Tables) Range(name string) (*table.OrderedRangeTable, bool) {
	tbl, ok := t.ranges[name]
	return tbl, ok
}

// Exact looks up an exact-match table by name.
func (t *Tables) Exact(name string) (*table.ExactMatchTable, bool) {
	tbl, ok := t.exact[name]
	return tbl, ok
}
