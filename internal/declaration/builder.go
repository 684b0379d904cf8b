package declaration

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/tariffgraph/internal/dag"
	"github.com/specialistvlad/tariffgraph/internal/decimal"
	"github.com/specialistvlad/tariffgraph/internal/value"
)

// build decodes every node block of f into a *dag.Graph. It does not
// call Graph.Validate; callers are expected to validate immediately
// after, so a malformed declaration is reported uniformly whether the
// defect is a bad attribute or a structural one (unresolved reference,
// cycle).
func build(f *file) (*dag.Graph, error) {
	g := dag.NewGraph(f.Product, f.Version, f.Currency, f.Metadata)

	for _, block := range f.Nodes {
		n, err := buildNode(block)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", block.Name, err)
		}
		if err := g.AddNode(n); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func buildNode(block nodeBlock) (*dag.Node, error) {
	switch block.Type {
	case "input":
		var spec inputSpec
		if err := decode(block, &spec); err != nil {
			return nil, err
		}
		dtype, err := parseDType(spec.DType)
		if err != nil {
			return nil, err
		}
		key := spec.Key
		if key == "" {
			key = block.Name
		}
		return &dag.Node{Name: block.Name, Kind: dag.Input, InputKey: key, InputDType: dtype}, nil

	case "constant":
		var spec constantSpec
		if err := decode(block, &spec); err != nil {
			return nil, err
		}
		if spec.Text != "" {
			return &dag.Node{Name: block.Name, Kind: dag.Constant, ConstantValue: value.NewText(spec.Text)}, nil
		}
		v, err := ctyToValue(spec.Value)
		if err != nil {
			return nil, fmt.Errorf("constant value: %w", err)
		}
		return &dag.Node{Name: block.Name, Kind: dag.Constant, ConstantValue: v}, nil

	case "add":
		spec, err := decodeInputs(block)
		if err != nil {
			return nil, err
		}
		return &dag.Node{Name: block.Name, Kind: dag.Add, Inputs: spec.Inputs}, nil

	case "multiply":
		spec, err := decodeInputs(block)
		if err != nil {
			return nil, err
		}
		return &dag.Node{Name: block.Name, Kind: dag.Multiply, Inputs: spec.Inputs}, nil

	case "min":
		spec, err := decodeInputs(block)
		if err != nil {
			return nil, err
		}
		return &dag.Node{Name: block.Name, Kind: dag.Min, Inputs: spec.Inputs}, nil

	case "max":
		spec, err := decodeInputs(block)
		if err != nil {
			return nil, err
		}
		return &dag.Node{Name: block.Name, Kind: dag.Max, Inputs: spec.Inputs}, nil

	case "coalesce":
		spec, err := decodeInputs(block)
		if err != nil {
			return nil, err
		}
		return &dag.Node{Name: block.Name, Kind: dag.Coalesce, Inputs: spec.Inputs}, nil

	case "lookup":
		var spec lookupSpec
		if err := decode(block, &spec); err != nil {
			return nil, err
		}
		mode, err := parseLookupMode(spec.Mode)
		if err != nil {
			return nil, err
		}
		return &dag.Node{Name: block.Name, Kind: dag.Lookup, Table: spec.Table, KeyNode: spec.KeyNode, LookupMode: mode}, nil

	case "if":
		var spec ifSpec
		if err := decode(block, &spec); err != nil {
			return nil, err
		}
		op, err := dag.ParseCompareOp(spec.Op)
		if err != nil {
			return nil, err
		}
		thresholdVal, err := ctyToValue(spec.Threshold)
		if err != nil {
			return nil, fmt.Errorf("threshold: %w", err)
		}
		threshold, ok := thresholdVal.Decimal()
		if !ok {
			return nil, fmt.Errorf("threshold must be a number, got %s", thresholdVal.Kind())
		}
		then, err := ifBranch(spec.Then, spec.ThenNode)
		if err != nil {
			return nil, fmt.Errorf("then: %w", err)
		}
		elseBranch, err := ifBranch(spec.Else, spec.ElseNode)
		if err != nil {
			return nil, fmt.Errorf("else: %w", err)
		}
		return &dag.Node{
			Name: block.Name, Kind: dag.If, CondNode: spec.CondNode,
			CompareOp: op, Threshold: threshold, Then: then, Else: elseBranch,
		}, nil

	case "round":
		var spec roundSpec
		if err := decode(block, &spec); err != nil {
			return nil, err
		}
		mode, err := decimal.ParseMode(spec.Mode)
		if err != nil {
			return nil, err
		}
		return &dag.Node{Name: block.Name, Kind: dag.Round, RoundInput: spec.Input, Decimals: int32(spec.Decimals), RoundMode: mode}, nil

	case "switch":
		var spec switchSpec
		if err := decode(block, &spec); err != nil {
			return nil, err
		}
		// HCL decodes an object attribute into a Go map, which loses the
		// author's original case ordering; sort case labels so the
		// resulting Cases slice — and therefore first-match tie-break
		// order in a case of duplicate resolved keys — is stable run to
		// run.
		labels := make([]string, 0, len(spec.Cases))
		for k := range spec.Cases {
			labels = append(labels, k)
		}
		sort.Strings(labels)

		cases := make([]dag.SwitchCase, 0, len(labels))
		for _, k := range labels {
			val, err := ctyToValue(spec.Cases[k])
			if err != nil {
				return nil, fmt.Errorf("case %q: %w", k, err)
			}
			cases = append(cases, dag.SwitchCase{Key: parseLiteral(k), Value: val})
		}
		n := &dag.Node{Name: block.Name, Kind: dag.Switch, SwitchVar: spec.Var, Cases: cases}
		if !spec.Default.IsNull() {
			def, err := ctyToValue(spec.Default)
			if err != nil {
				return nil, fmt.Errorf("default: %w", err)
			}
			n.Default = &def
		}
		return n, nil

	case "abs":
		var spec singleInputSpec
		if err := decode(block, &spec); err != nil {
			return nil, err
		}
		return &dag.Node{Name: block.Name, Kind: dag.Abs, AbsInput: spec.Input}, nil

	default:
		return nil, fmt.Errorf("unrecognized node type %q", block.Type)
	}
}

func decode(block nodeBlock, target any) error {
	diags := gohcl.DecodeBody(block.Remain, nil, target)
	if diags.HasErrors() {
		return fmt.Errorf("%s", diags.Error())
	}
	return nil
}

func decodeInputs(block nodeBlock) (listInputsSpec, error) {
	var spec listInputsSpec
	if err := decode(block, &spec); err != nil {
		return spec, err
	}
	if len(spec.Inputs) == 0 {
		return spec, fmt.Errorf("%s node requires at least one input", block.Type)
	}
	return spec, nil
}

func parseDType(name string) (value.Kind, error) {
	switch name {
	case "decimal":
		return value.Decimal, nil
	case "text":
		return value.Text, nil
	default:
		return 0, fmt.Errorf("unknown input dtype %q", name)
	}
}

func parseLookupMode(name string) (dag.LookupMode, error) {
	switch name {
	case "range":
		return dag.RangeMode, nil
	case "exact":
		return dag.ExactMode, nil
	default:
		return 0, fmt.Errorf("unknown lookup mode %q", name)
	}
}

// ifBranch resolves an IF arm authored either as a baked-in literal or
// as a reference to another node; exactly one of literal/ref is
// expected to be non-empty.
func ifBranch(literal cty.Value, ref string) (dag.Branch, error) {
	if ref != "" {
		return dag.RefBranch(ref), nil
	}
	if literal.IsNull() {
		return dag.Branch{}, fmt.Errorf("neither a literal nor a node reference was given")
	}
	v, err := ctyToValue(literal)
	if err != nil {
		return dag.Branch{}, err
	}
	return dag.ConstBranch(v), nil
}

// ctyToValue converts a decoded HCL attribute into the engine's tri-state
// Value: numbers become Decimal (rendered from cty's own big.Float so no
// precision is lost in the round trip), strings become Text.
func ctyToValue(v cty.Value) (value.Value, error) {
	if v.IsNull() {
		return value.NewAbsent(), nil
	}
	switch v.Type() {
	case cty.Number:
		bf := v.AsBigFloat()
		d, err := decimal.NewFromString(bf.Text('f', -1))
		if err != nil {
			return value.Value{}, fmt.Errorf("decoding number: %w", err)
		}
		return value.NewDecimal(d), nil
	case cty.String:
		return value.NewText(v.AsString()), nil
	default:
		return value.Value{}, fmt.Errorf("unsupported literal type %s", v.Type().FriendlyName())
	}
}

// parseLiteral treats a raw map key (always a string in HCL) as decimal
// when it parses as one and as text otherwise. Used for SWITCH case
// keys, which have no separate type tag the way CONSTANT and INPUT do.
func parseLiteral(s string) value.Value {
	if d, err := decimal.NewFromString(s); err == nil {
		return value.NewDecimal(d)
	}
	return value.NewText(s)
}
