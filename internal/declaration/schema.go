// Package declaration loads a tariff graph from its textual HCL form: a
// top-level product/version/currency header, a metadata block, and a
// sequence of typed `node` blocks naming one of the twelve computation
// kinds. It also loads the CSV-tabulated lookup tables a declaration's
// LOOKUP nodes reference by symbolic name.
package declaration

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// file is the raw HCL shape of one declaration document, decoded with
// gohcl.DecodeBody. Each node block carries its own two labels (name,
// type) and defers its type-specific body to a second decode pass, since
// gohcl cannot itself dispatch on a label's value.
type file struct {
	Product  string            `hcl:"product"`
	Version  string            `hcl:"version"`
	Currency string            `hcl:"currency"`
	Metadata map[string]string `hcl:"metadata,optional"`
	Tables   []tableBlock      `hcl:"table,block"`
	Nodes    []nodeBlock       `hcl:"node,block"`
}

// tableBlock names one lookup table a LOOKUP node's `table` attribute
// refers to, and where its data lives on disk relative to the
// declaration file that defines it.
type tableBlock struct {
	Name        string `hcl:",label"`
	Path        string `hcl:"path"`
	Mode        string `hcl:"mode"`
	KeyType     string `hcl:"key_type,optional"`
	KeyColumn   string `hcl:"key_column,optional"`
	ValueColumn string `hcl:"value_column,optional"`
}

type nodeBlock struct {
	Name   string   `hcl:",label"`
	Type   string   `hcl:",label"`
	Remain hcl.Body `hcl:",remain"`
}

type inputSpec struct {
	DType string `hcl:"dtype"`
	Key   string `hcl:"key,optional"`
}

// constantSpec's Value is decoded as a raw cty.Value rather than a Go
// string, so a declaration can author a bare HCL number (value = 500)
// instead of a quoted decimal string.
type constantSpec struct {
	Value cty.Value `hcl:"value,optional"`
	Text  string    `hcl:"text,optional"`
}

type listInputsSpec struct {
	Inputs []string `hcl:"inputs"`
}

type lookupSpec struct {
	Table   string `hcl:"table"`
	KeyNode string `hcl:"key_node"`
	Mode    string `hcl:"mode"`
}

type ifSpec struct {
	CondNode  string    `hcl:"cond_node"`
	Op        string    `hcl:"op"`
	Threshold cty.Value `hcl:"threshold"`
	Then      cty.Value `hcl:"then,optional"`
	ThenNode  string    `hcl:"then_node,optional"`
	Else      cty.Value `hcl:"else,optional"`
	ElseNode  string    `hcl:"else_node,optional"`
}

type roundSpec struct {
	Input    string `hcl:"input"`
	Decimals int    `hcl:"decimals"`
	Mode     string `hcl:"mode"`
}

// switchSpec's Cases maps a raw case label to its cty.Value so a case's
// value can be authored as either a decimal or a text literal. HCL map
// keys are always strings; parseLiteral recovers the label's intended
// kind the same way a bare case label would be typed.
type switchSpec struct {
	Var     string               `hcl:"var_node"`
	Cases   map[string]cty.Value `hcl:"cases"`
	Default cty.Value            `hcl:"default,optional"`
}

type singleInputSpec struct {
	Input string `hcl:"input"`
}
