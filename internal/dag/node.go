// Package dag implements the computation-node algebra, the owning Graph
// container, and the memoized evaluator that walks it. The twelve node
// kinds are modeled as a single tagged struct rather than twelve
// interface implementations: the Evaluator dispatches on Kind through an
// exhaustive switch, which keeps the algebra closed and makes every kind
// auditable in one place.
package dag

import (
	"fmt"

	"github.com/specialistvlad/tariffgraph/internal/decimal"
	"github.com/specialistvlad/tariffgraph/internal/value"
)

// Kind identifies which of the twelve computation variants a Node is.
type Kind int

const (
	Input Kind = iota
	Constant
	Add
	Multiply
	Lookup
	If
	Round
	Switch
	Coalesce
	Min
	Max
	Abs
)

func (k Kind) String() string {
	switch k {
	case Input:
		return "INPUT"
	case Constant:
		return "CONSTANT"
	case Add:
		return "ADD"
	case Multiply:
		return "MULTIPLY"
	case Lookup:
		return "LOOKUP"
	case If:
		return "IF"
	case Round:
		return "ROUND"
	case Switch:
		return "SWITCH"
	case Coalesce:
		return "COALESCE"
	case Min:
		return "MIN"
	case Max:
		return "MAX"
	case Abs:
		return "ABS"
	default:
		return "UNKNOWN"
	}
}

// LookupMode selects which Table variant a LOOKUP node queries.
type LookupMode int

const (
	RangeMode LookupMode = iota
	ExactMode
)

// CompareOp is one of the four comparison operators an IF node supports.
type CompareOp int

const (
	GreaterThan CompareOp = iota
	LessThan
	GreaterOrEqual
	LessOrEqual
)

// ParseCompareOp maps a declaration symbol to a CompareOp.
func ParseCompareOp(symbol string) (CompareOp, error) {
	switch symbol {
	case ">":
		return GreaterThan, nil
	case "<":
		return LessThan, nil
	case ">=":
		return GreaterOrEqual, nil
	case "<=":
		return LessOrEqual, nil
	default:
		return 0, fmt.Errorf("unknown comparison operator %q", symbol)
	}
}

func (op CompareOp) apply(lhs, rhs decimal.Decimal) bool {
	cmp := lhs.Cmp(rhs)
	switch op {
	case GreaterThan:
		return cmp > 0
	case LessThan:
		return cmp < 0
	case GreaterOrEqual:
		return cmp >= 0
	case LessOrEqual:
		return cmp <= 0
	default:
		return false
	}
}

// Branch is an IF then/else arm: either a
// constant baked at declaration time, or a reference to another node in
// the same graph, evaluated only if this branch is selected.
type Branch struct {
	Value value.Value
	Ref   string
	IsRef bool
}

// ConstBranch wraps a baked-in constant as a Branch.
func ConstBranch(v value.Value) Branch {
	return Branch{Value: v}
}

// RefBranch wraps a dependency reference as a Branch.
func RefBranch(name string) Branch {
	return Branch{Ref: name, IsRef: true}
}

// SwitchCase is one {key -> value} row of a SWITCH node's case table. Key
// equality is by the underlying scalar, so Key and the SWITCH's
// discriminator value must share the same value.Kind to ever match.
type SwitchCase struct {
	Key   value.Value
	Value value.Value
}

// Node is one vertex of a tariff graph. Exactly the fields relevant to
// Kind are populated; the rest are zero. Nodes are constructed once by
// Graph.AddNode and are immutable thereafter.
type Node struct {
	Name string
	Kind Kind

	// INPUT
	InputKey   string
	InputDType value.Kind

	// CONSTANT
	ConstantValue value.Value

	// ADD, MULTIPLY, MIN, MAX, COALESCE
	Inputs []string

	// LOOKUP
	Table      string
	KeyNode    string
	LookupMode LookupMode

	// IF
	CondNode  string
	CompareOp CompareOp
	Threshold decimal.Decimal
	Then      Branch
	Else      Branch

	// ROUND
	RoundInput string
	Decimals   int32
	RoundMode  decimal.Mode

	// SWITCH
	SwitchVar string
	Cases     []SwitchCase
	Default   *value.Value

	// ABS
	AbsInput string
}

// Dependencies returns the names of every other node this node reads
// from, in the declared order. Dependency lists are the only topology
// the Graph knows about; the Evaluator resolves them recursively.
func (n *Node) Dependencies() []string {
	switch n.Kind {
	case Input, Constant:
		return nil
	case Add, Multiply, Min, Max, Coalesce:
		return n.Inputs
	case Lookup:
		return []string{n.KeyNode}
	case If:
		deps := []string{n.CondNode}
		if n.Then.IsRef {
			deps = append(deps, n.Then.Ref)
		}
		if n.Else.IsRef {
			deps = append(deps, n.Else.Ref)
		}
		return deps
	case Round:
		return []string{n.RoundInput}
	case Switch:
		return []string{n.SwitchVar}
	case Abs:
		return []string{n.AbsInput}
	default:
		return nil
	}
}
