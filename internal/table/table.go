// Package table implements the two read-only lookup table variants
// consulted by LOOKUP nodes: an OrderedRangeTable queried by binary
// search over a decimal key domain (degrading to a bounded backward scan
// only when authored intervals overlap), and an ExactMatchTable keyed by
// text or integer. Both are built once and are immutable thereafter.
package table

import (
	"sort"

	"github.com/specialistvlad/tariffgraph/internal/decimal"
	"github.com/specialistvlad/tariffgraph/internal/evalerror"
)

// Interval is one {lo, hi, value} row of an OrderedRangeTable, inclusive
// on both ends.
type Interval struct {
	Lo, Hi decimal.Decimal
	Value  decimal.Decimal
	// order records the original insertion index, so that overlapping
	// intervals resolve deterministically: the earliest-inserted interval
	// containing the key wins.
	order int
}

// OrderedRangeTable is a sequence of inclusive decimal intervals, sorted
// by Lo ascending (ties on Lo broken by insertion order), with an
// optional default returned when no interval contains the query key.
type OrderedRangeTable struct {
	intervals []Interval
	// prefixMaxHi[j] is the maximum Hi among intervals[0..j]. Since it is
	// non-decreasing in j, scanning intervals[i..0] backward can stop as
	// soon as prefixMaxHi[j] falls below the query key: no interval at or
	// before j can possibly contain it.
	prefixMaxHi []decimal.Decimal
	def         *decimal.Decimal
}

// NewOrderedRangeTable builds a range table from rows in authored order.
// Authored intervals should be disjoint, but overlap is tolerated; the
// table stores insertion order so overlap resolves deterministically.
// def, if non-nil, is returned for keys matching no interval.
func NewOrderedRangeTable(rows []Interval, def *decimal.Decimal) *OrderedRangeTable {
	intervals := make([]Interval, len(rows))
	for i, r := range rows {
		r.order = i
		intervals[i] = r
	}
	sort.SliceStable(intervals, func(i, j int) bool {
		return intervals[i].Lo.Cmp(intervals[j].Lo) < 0
	})

	prefixMaxHi := make([]decimal.Decimal, len(intervals))
	for i, iv := range intervals {
		if i == 0 || iv.Hi.Cmp(prefixMaxHi[i-1]) > 0 {
			prefixMaxHi[i] = iv.Hi
		} else {
			prefixMaxHi[i] = prefixMaxHi[i-1]
		}
	}
	return &OrderedRangeTable{intervals: intervals, prefixMaxHi: prefixMaxHi, def: def}
}

// Lookup finds the interval containing key and returns its value. It
// returns a LookupMiss error if no interval matches and no default was
// configured.
//
// Algorithm: binary search for the largest index i such that
// intervals[i].Lo <= key — no j > i can match, since Lo is sorted
// ascending and intervals[j].Lo > key for all such j. Then scan backward
// from i, checking every intervals[j].Hi >= key (Lo is already known to
// be <= key for any j <= i), tracking the earliest-inserted match by
// order, and stopping as soon as prefixMaxHi[j] < key proves no earlier
// interval can contain it either. This is O(log n) for disjoint tables
// (the scan stops at i immediately) and remains correct, not just
// adjacency-correct, when authored intervals overlap.
func (t *OrderedRangeTable) Lookup(key decimal.Decimal) (decimal.Decimal, error) {
	n := len(t.intervals)
	// Largest i with intervals[i].Lo <= key, via sort.Search on the
	// negated predicate (first index where Lo > key).
	i := sort.Search(n, func(idx int) bool {
		return t.intervals[idx].Lo.Cmp(key) > 0
	}) - 1

	if i < 0 {
		return t.fallback(key)
	}

	best := -1
	for j := i; j >= 0; j-- {
		iv := t.intervals[j]
		if key.Cmp(iv.Hi) <= 0 {
			if best == -1 || iv.order < t.intervals[best].order {
				best = j
			}
		}
		if j > 0 && t.prefixMaxHi[j-1].Cmp(key) < 0 {
			break
		}
	}
	if best == -1 {
		return t.fallback(key)
	}
	return t.intervals[best].Value, nil
}

func (t *OrderedRangeTable) fallback(key decimal.Decimal) (decimal.Decimal, error) {
	if t.def != nil {
		return *t.def, nil
	}
	return decimal.Decimal{}, evalerror.New(evalerror.LookupMiss,
		"range table: no interval contains %s and no default is defined", key)
}

// Len reports the number of stored intervals, for tests exercising the
// binary-search comparison budget.
func (t *OrderedRangeTable) Len() int {
	return len(t.intervals)
}

// KeyType distinguishes the scalar type backing an ExactMatchTable's keys.
type KeyType int

const (
	// TextKey indexes the table by string.
	TextKey KeyType = iota
	// IntKey indexes the table by int64.
	IntKey
)

// ExactMatchTable maps a fixed-type key to a decimal value, with an
// optional default for unmatched keys.
type ExactMatchTable struct {
	keyType KeyType
	text    map[string]decimal.Decimal
	integer map[int64]decimal.Decimal
	def     *decimal.Decimal
}

// NewExactMatchTextTable builds a text-keyed exact-match table of decimal
// values. def, if non-nil, backs unmatched keys.
func NewExactMatchTextTable(rows map[string]decimal.Decimal, def *decimal.Decimal) *ExactMatchTable {
	t := &ExactMatchTable{keyType: TextKey, text: make(map[string]decimal.Decimal, len(rows)), def: def}
	for k, v := range rows {
		t.text[k] = v
	}
	return t
}

// NewExactMatchIntTable builds an integer-keyed exact-match table of
// decimal values. def, if non-nil, backs unmatched keys.
func NewExactMatchIntTable(rows map[int64]decimal.Decimal, def *decimal.Decimal) *ExactMatchTable {
	t := &ExactMatchTable{keyType: IntKey, integer: make(map[int64]decimal.Decimal, len(rows)), def: def}
	for k, v := range rows {
		t.integer[k] = v
	}
	return t
}

// LookupText looks up a text key. Calling this on an integer-keyed table
// is a TypeMismatch.
func (t *ExactMatchTable) LookupText(key string) (decimal.Decimal, error) {
	if t.keyType != TextKey {
		return decimal.Decimal{}, evalerror.New(evalerror.TypeMismatch,
			"exact match table is keyed by integer, not text")
	}
	if v, ok := t.text[key]; ok {
		return v, nil
	}
	if t.def != nil {
		return *t.def, nil
	}
	return decimal.Decimal{}, evalerror.New(evalerror.LookupMiss,
		"exact match table: no row for key %q and no default is defined", key)
}

// LookupInt looks up an integer key. Calling this on a text-keyed table
// is a TypeMismatch.
func (t *ExactMatchTable) LookupInt(key int64) (decimal.Decimal, error) {
	if t.keyType != IntKey {
		return decimal.Decimal{}, evalerror.New(evalerror.TypeMismatch,
			"exact match table is keyed by text, not integer")
	}
	if v, ok := t.integer[key]; ok {
		return v, nil
	}
	if t.def != nil {
		return *t.def, nil
	}
	return decimal.Decimal{}, evalerror.New(evalerror.LookupMiss,
		"exact match table: no row for key %d and no default is defined", key)
}

// KeyType reports whether this table is keyed by text or integer.
func (t *ExactMatchTable) KeyType() KeyType {
	return t.keyType
}
