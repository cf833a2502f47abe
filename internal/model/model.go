// Package model loads declarative graph definitions from .hcl files and
// translates them into evaluation graphs. A definition file declares free
// variables with `input` blocks and computed nodes with `node` blocks whose
// `expr` attribute is evaluated against the node's dependencies:
//
//	input "xs" {}
//
//	node "n" {
//	  expr = length(xs)
//	}
//
//	node "m" {
//	  expr = sum(xs) / n
//	}
//
// Dependencies are inferred from the variables referenced by expr and can be
// widened with an explicit depends_on list.
package model

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Spec is the format-agnostic representation of a graph definition,
// aggregated across all loaded files.
type Spec struct {
	Inputs []*Input
	Nodes  []*NodeSpec
}

// Input declares one free variable.
type Input struct {
	Name string
}

// NodeSpec declares one computed node: its unevaluated expression and any
// explicit dependencies beyond those the expression references.
type NodeSpec struct {
	Name      string
	DependsOn []string
	Expr      hcl.Expression
}

// hclGraphFile mirrors the top-level structure of a definition file for
// decoding.
type hclGraphFile struct {
	Inputs []*hclInput `hcl:"input,block"`
	Nodes  []*hclNode  `hcl:"node,block"`
}

type hclInput struct {
	Name string `hcl:"name,label"`
}

type hclNode struct {
	Name      string         `hcl:"name,label"`
	DependsOn []string       `hcl:"depends_on,optional"`
	Expr      hcl.Expression `hcl:"expr"`
}

// ParseSpec decodes one definition file from source bytes. The filename is
// used for diagnostics only.
func ParseSpec(filename string, src []byte, parser *hclparse.Parser) (*Spec, error) {
	hclFile, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, diags)
	}

	var parsed hclGraphFile
	diags = gohcl.DecodeBody(hclFile.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, diags)
	}

	spec := &Spec{}
	for _, in := range parsed.Inputs {
		spec.Inputs = append(spec.Inputs, &Input{Name: in.Name})
	}
	for _, n := range parsed.Nodes {
		spec.Nodes = append(spec.Nodes, &NodeSpec{
			Name:      n.Name,
			DependsOn: n.DependsOn,
			Expr:      n.Expr,
		})
	}
	return spec, nil
}
