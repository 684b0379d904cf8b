package dag

import (
	"context"
	"time"

	"github.com/specialistvlad/tariffgraph/internal/ctxlog"
	"github.com/specialistvlad/tariffgraph/internal/decimal"
	"github.com/specialistvlad/tariffgraph/internal/evalerror"
	"github.com/specialistvlad/tariffgraph/internal/profiler"
	"github.com/specialistvlad/tariffgraph/internal/table"
	"github.com/specialistvlad/tariffgraph/internal/value"
)

// Evaluator drives memoized depth-first evaluation of a Graph against a
// Context. Graph and Tables are immutable and safely shared
// across concurrent evaluations; all per-evaluation state lives in the
// unexported evalState and must never be shared across contexts.
type Evaluator struct {
	Graph  *Graph
	Tables *Tables
}

// NewEvaluator pairs a Graph with the table registry its LOOKUP nodes
// consult.
func NewEvaluator(g *Graph, tables *Tables) *Evaluator {
	return &Evaluator{Graph: g, Tables: tables}
}

// frame is one entry of the traversal stack: the node currently being
// resolved, plus the wall time spent so far in its descendants, so the
// node's own recorded time can be computed exclusive of child work.
type frame struct {
	name      string
	childTime time.Duration
}

type evalState struct {
	ctx        Context
	cache      map[string]value.Value
	inProgress map[string]bool
	stack      []frame
	trace      *Trace
	prof       *profiler.Profiler
}

func (s *evalState) path() []string {
	p := make([]string, len(s.stack))
	for i, f := range s.stack {
		p[i] = f.name
	}
	return p
}

// Evaluate computes target's value against input, with no trace and no
// profiler attached.
func (e *Evaluator) Evaluate(ctx context.Context, target string, input Context) (value.Value, error) {
	return e.EvaluateTraced(ctx, target, input, nil, nil)
}

// EvaluateTraced computes target's value against input, optionally
// populating trace and prof. Either or both may be nil.
func (e *Evaluator) EvaluateTraced(ctx context.Context, target string, input Context, trace *Trace, prof *profiler.Profiler) (value.Value, error) {
	log := ctxlog.FromContext(ctx)

	if _, ok := e.Graph.Get(target); !ok {
		return value.Value{}, evalerror.Wrap(target, []string{target}, input.Snapshot(),
			evalerror.New(evalerror.UnresolvedReference, "evaluation target %q does not exist", target))
	}

	s := &evalState{
		ctx:        input,
		cache:      make(map[string]value.Value, e.Graph.Len()),
		inProgress: make(map[string]bool),
		trace:      trace,
		prof:       prof,
	}

	result, err := e.eval(s, target)
	if err != nil {
		wrapped, ok := err.(*evalerror.EvaluationError)
		if !ok {
			wrapped = evalerror.Wrap(target, []string{target}, input.Snapshot(), err)
		}
		log.Debug("evaluation failed", "target", target, "kind", wrapped.Kind, "node", wrapped.Node)
		return value.Value{}, wrapped
	}
	return result, nil
}

// eval resolves name within s, consulting the cache first, then
// recursing through the node's kind-compute. Any error it returns that
// is not already an *evalerror.EvaluationError gets wrapped exactly
// once, here, at the node where it first surfaced; frames further up the
// call stack propagate an already-wrapped error unchanged.
func (e *Evaluator) eval(s *evalState, name string) (value.Value, error) {
	if v, ok := s.cache[name]; ok {
		s.prof.Hit(name)
		if s.trace != nil {
			if n, ok := e.Graph.Get(name); ok {
				s.trace.recordIfAbsent(name, v, n.Kind, append(s.path(), name))
			}
		}
		return v, nil
	}

	if s.inProgress[name] {
		return value.Value{}, evalerror.Wrap(name, append(s.path(), name), s.ctx.Snapshot(),
			evalerror.New(evalerror.Cycle, "node %q is already being evaluated", name))
	}

	n, ok := e.Graph.Get(name)
	if !ok {
		return value.Value{}, evalerror.Wrap(name, append(s.path(), name), s.ctx.Snapshot(),
			evalerror.New(evalerror.UnresolvedReference, "unknown node %q", name))
	}

	s.inProgress[name] = true
	s.prof.Miss(name)
	s.stack = append(s.stack, frame{name: name})
	start := time.Now()

	result, err := e.compute(s, n)

	elapsed := time.Since(start)
	top := len(s.stack) - 1
	exclusive := elapsed - s.stack[top].childTime

	// path is only needed to trace this node or to attribute an error to
	// it; skip the allocation entirely on the common untraced, error-free
	// path (the dominant case across a large batch of contexts).
	var path []string
	if s.trace != nil || err != nil {
		path = s.path()
	}

	s.stack = s.stack[:top]
	delete(s.inProgress, name)

	if err != nil {
		if _, ok := err.(*evalerror.EvaluationError); ok {
			return value.Value{}, err
		}
		return value.Value{}, evalerror.Wrap(name, path, s.ctx.Snapshot(), err)
	}

	s.prof.Add(name, exclusive)
	if len(s.stack) > 0 {
		s.stack[len(s.stack)-1].childTime += elapsed
	}
	s.cache[name] = result
	if s.trace != nil {
		s.trace.recordIfAbsent(name, result, n.Kind, path)
	}
	return result, nil
}

// compute dispatches on n.Kind and produces n's value, recursing into
// e.eval for every dependency it actually needs — IF and COALESCE only
// touch the branch they select rather than evaluating every operand.
func (e *Evaluator) compute(s *evalState, n *Node) (value.Value, error) {
	switch n.Kind {
	case Input:
		return e.computeInput(s, n)
	case Constant:
		return n.ConstantValue, nil
	case Add:
		return e.reduce(s, n.Inputs, decimal.Zero, decimal.Decimal.Add)
	case Multiply:
		return e.reduce(s, n.Inputs, decimal.One, decimal.Decimal.Mul)
	case Lookup:
		return e.computeLookup(s, n)
	case If:
		return e.computeIf(s, n)
	case Round:
		return e.computeRound(s, n)
	case Switch:
		return e.computeSwitch(s, n)
	case Coalesce:
		return e.computeCoalesce(s, n)
	case Min:
		return e.computeMinMax(s, n, true)
	case Max:
		return e.computeMinMax(s, n, false)
	case Abs:
		return e.computeAbs(s, n)
	default:
		return value.Value{}, evalerror.New(evalerror.InternalError, "node %q: unknown kind %v", n.Name, n.Kind)
	}
}

func (e *Evaluator) computeInput(s *evalState, n *Node) (value.Value, error) {
	raw, ok := s.ctx[n.InputKey]
	if !ok || raw.IsAbsent() {
		return value.NewAbsent(), nil
	}

	switch n.InputDType {
	case value.Text:
		txt, ok := raw.Text()
		if !ok {
			return value.Value{}, evalerror.New(evalerror.TypeMismatch,
				"input %q: expected text, got %s", n.InputKey, raw.Kind())
		}
		return value.NewText(txt), nil
	default:
		if d, ok := raw.Decimal(); ok {
			return value.NewDecimal(d), nil
		}
		// Textual digits are accepted for a decimal-typed input.
		txt, ok := raw.Text()
		if !ok {
			return value.Value{}, evalerror.New(evalerror.TypeMismatch,
				"input %q: expected decimal, got %s", n.InputKey, raw.Kind())
		}
		d, err := decimal.NewFromString(txt)
		if err != nil {
			return value.Value{}, evalerror.New(evalerror.TypeMismatch,
				"input %q: %q is not a valid decimal literal", n.InputKey, txt)
		}
		return value.NewDecimal(d), nil
	}
}

func (e *Evaluator) reduce(s *evalState, inputs []string, identity decimal.Decimal, op func(decimal.Decimal, decimal.Decimal) decimal.Decimal) (value.Value, error) {
	acc := identity
	for _, dep := range inputs {
		v, err := e.eval(s, dep)
		if err != nil {
			return value.Value{}, err
		}
		if v.IsAbsent() {
			return value.NewAbsent(), nil
		}
		d, ok := v.Decimal()
		if !ok {
			return value.Value{}, evalerror.New(evalerror.TypeMismatch, "operand %q is not decimal", dep)
		}
		acc = op(acc, d)
	}
	return value.NewDecimal(acc), nil
}

func (e *Evaluator) computeLookup(s *evalState, n *Node) (value.Value, error) {
	keyVal, err := e.eval(s, n.KeyNode)
	if err != nil {
		return value.Value{}, err
	}
	if keyVal.IsAbsent() {
		return value.NewAbsent(), nil
	}

	switch n.LookupMode {
	case ExactMode:
		tbl, ok := e.Tables.Exact(n.Table)
		if !ok {
			return value.Value{}, evalerror.New(evalerror.InternalError, "lookup %q: unknown table %q", n.Name, n.Table)
		}
		var result decimal.Decimal
		switch tbl.KeyType() {
		case table.TextKey:
			txt, ok := keyVal.Text()
			if !ok {
				return value.Value{}, evalerror.New(evalerror.TypeMismatch, "lookup %q: table %q is keyed by text", n.Name, n.Table)
			}
			result, err = tbl.LookupText(txt)
		default:
			d, ok := keyVal.Decimal()
			if !ok {
				return value.Value{}, evalerror.New(evalerror.TypeMismatch, "lookup %q: table %q is keyed by integer", n.Name, n.Table)
			}
			result, err = tbl.LookupInt(d.IntPart())
		}
		if err != nil {
			return value.Value{}, err
		}
		return value.NewDecimal(result), nil
	default:
		tbl, ok := e.Tables.Range(n.Table)
		if !ok {
			return value.Value{}, evalerror.New(evalerror.InternalError, "lookup %q: unknown table %q", n.Name, n.Table)
		}
		d, ok := keyVal.Decimal()
		if !ok {
			return value.Value{}, evalerror.New(evalerror.TypeMismatch, "lookup %q: range table key must be decimal", n.Name)
		}
		result, err := tbl.Lookup(d)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewDecimal(result), nil
	}
}

func (e *Evaluator) computeIf(s *evalState, n *Node) (value.Value, error) {
	condVal, err := e.eval(s, n.CondNode)
	if err != nil {
		return value.Value{}, err
	}
	if condVal.IsAbsent() {
		return value.Value{}, evalerror.New(evalerror.MissingInput, "if %q: condition %q is absent", n.Name, n.CondNode)
	}
	condDec, ok := condVal.Decimal()
	if !ok {
		return value.Value{}, evalerror.New(evalerror.TypeMismatch, "if %q: condition must be decimal", n.Name)
	}

	branch := n.Else
	if n.CompareOp.apply(condDec, n.Threshold) {
		branch = n.Then
	}
	if branch.IsRef {
		return e.eval(s, branch.Ref)
	}
	return branch.Value, nil
}

func (e *Evaluator) computeRound(s *evalState, n *Node) (value.Value, error) {
	v, err := e.eval(s, n.RoundInput)
	if err != nil {
		return value.Value{}, err
	}
	if v.IsAbsent() {
		return value.NewAbsent(), nil
	}
	d, ok := v.Decimal()
	if !ok {
		return value.Value{}, evalerror.New(evalerror.TypeMismatch, "round %q: input must be decimal", n.Name)
	}
	return value.NewDecimal(d.Round(n.Decimals, n.RoundMode)), nil
}

func (e *Evaluator) computeSwitch(s *evalState, n *Node) (value.Value, error) {
	v, err := e.eval(s, n.SwitchVar)
	if err != nil {
		return value.Value{}, err
	}
	if !v.IsAbsent() {
		for _, c := range n.Cases {
			if c.Key.Kind() == v.Kind() && c.Key.Equal(v) {
				return c.Value, nil
			}
		}
	}
	if n.Default != nil {
		return *n.Default, nil
	}
	return value.NewAbsent(), nil
}

func (e *Evaluator) computeCoalesce(s *evalState, n *Node) (value.Value, error) {
	for _, dep := range n.Inputs {
		v, err := e.eval(s, dep)
		if err != nil {
			return value.Value{}, err
		}
		if !v.IsAbsent() {
			return v, nil
		}
	}
	return value.NewAbsent(), nil
}

func (e *Evaluator) computeMinMax(s *evalState, n *Node, wantMin bool) (value.Value, error) {
	var best *decimal.Decimal
	for _, dep := range n.Inputs {
		v, err := e.eval(s, dep)
		if err != nil {
			return value.Value{}, err
		}
		if v.IsAbsent() {
			continue
		}
		d, ok := v.Decimal()
		if !ok {
			return value.Value{}, evalerror.New(evalerror.TypeMismatch, "%s %q: operand %q is not decimal", n.Kind, n.Name, dep)
		}
		switch {
		case best == nil:
			cur := d
			best = &cur
		case wantMin && d.Cmp(*best) < 0:
			cur := d
			best = &cur
		case !wantMin && d.Cmp(*best) > 0:
			cur := d
			best = &cur
		}
	}
	if best == nil {
		return value.NewAbsent(), nil
	}
	return value.NewDecimal(*best), nil
}

func (e *Evaluator) computeAbs(s *evalState, n *Node) (value.Value, error) {
	v, err := e.eval(s, n.AbsInput)
	if err != nil {
		return value.Value{}, err
	}
	if v.IsAbsent() {
		return value.NewAbsent(), nil
	}
	d, ok := v.Decimal()
	if !ok {
		return value.Value{}, evalerror.New(evalerror.TypeMismatch, "abs %q: input must be decimal", n.Name)
	}
	return value.NewDecimal(d.Abs()), nil
}
