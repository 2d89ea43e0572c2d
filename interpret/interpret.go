// Copyright 2024 EURE Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package interpret implements the CST-to-Document lowering from spec
// §4.3: a visitor that recognizes the six canonical binding/section forms
// and drives a document/constructor.Constructor to materialize a
// document.Document.
//
// The tree shape this package expects from the parser collaborator is
// described by the Label() strings switched on below (Document, Binding,
// Block, TextBinding, Section, Path and its segment kinds, and the value
// literal kinds) — see the package-level constants.
package interpret

import (
	"fmt"

	"github.com/eure-lang/eure-go/cst"
	"github.com/eure-lang/eure-go/document"
	"github.com/eure-lang/eure-go/document/constructor"
	"github.com/eure-lang/eure-go/errors"
	"github.com/eure-lang/eure-go/ident"
	"github.com/eure-lang/eure-go/path"
	"github.com/eure-lang/eure-go/value"
)

// Canonical node labels the parser collaborator is expected to produce.
// These are the only strings this package switches on.
const (
	LabelDocument    = "Document"
	LabelBinding     = "Binding"     // path = value
	LabelBlock       = "Block"       // path { ... }
	LabelTextBinding = "TextBinding" // path: text-literal
	LabelSection     = "Section"     // @ section-path ...

	LabelPath           = "Path"
	LabelSegIdent       = "SegIdent"
	LabelSegExtension   = "SegExtension"
	LabelSegMetaExt     = "SegMetaExtension"
	LabelSegTupleIndex  = "SegTupleIndex"
	LabelSegValue       = "SegValue"
	LabelSegArrayIndex  = "SegArrayIndex" // has an Index child
	LabelSegArrayAppend = "SegArrayAppend"

	LabelValueNull   = "Null"
	LabelValueBool   = "Bool"
	LabelValueI64    = "I64"
	LabelValueU64    = "U64"
	LabelValueF32    = "F32"
	LabelValueF64    = "F64"
	LabelValueText   = "Text"
	LabelValuePath   = "PathLiteral"
	LabelValueHole   = "Hole"
	LabelEmptyMap    = "EmptyMap"
	LabelEmptyArray  = "EmptyArray"
	LabelEmptyTuple  = "EmptyTuple"
)

// Option configures an interpretation pass.
type Option func(*interp)

// WithTolerant makes Interpret continue past a failed top-level
// binding/section form, accumulating InsertErrors instead of aborting
// construction at the first one.
func WithTolerant() Option {
	return func(i *interp) { i.tolerant = true }
}

type interp struct {
	src      string
	tolerant bool
	diags    []errors.Error
}

// genericError adapts a plain error (e.g. an *ident.Error, or a
// constructor/document typed error already satisfying errors.Error) into
// the errors.Error interface for uniform accumulation.
type genericError struct {
	errors.Base
	msg string
}

func (e *genericError) Kind() string  { return "InterpretError" }
func (e *genericError) Error() string { return e.msg }

func wrapErr(err error, at path.Path) errors.Error {
	if ee, ok := err.(errors.Error); ok {
		return ee
	}
	return &genericError{Base: errors.Base{At: at, Sev: errors.SeverityError}, msg: err.Error()}
}

// Interpret drives tree through a fresh Constructor and returns the
// resulting Document plus any accumulated diagnostics. In non-tolerant mode
// (the default), the first error aborts interpretation and the returned
// Document is nil.
func Interpret(tree cst.Tree, opts ...Option) (*document.Document, []errors.Error) {
	i := &interp{src: tree.Source()}
	for _, opt := range opts {
		opt(i)
	}

	for _, d := range tree.Diagnostics() {
		i.diags = append(i.diags, &genericError{
			Base: errors.Base{Sev: errors.SeverityError, Pos: d.Span},
			msg:  d.Message,
		})
		if !i.tolerant {
			return nil, i.diags
		}
	}

	root := tree.Root()
	if root.Label() != LabelDocument {
		i.diags = append(i.diags, &genericError{msg: fmt.Sprintf("expected a %s root node, got %s", LabelDocument, root.Label())})
		return nil, i.diags
	}

	c := constructor.New()
	for _, form := range root.Children() {
		actions, err := i.compileForm(form)
		if err != nil {
			i.diags = append(i.diags, wrapErr(err, path.Path{}))
			if !i.tolerant {
				return nil, i.diags
			}
			continue
		}
		if err := run(c, actions); err != nil {
			i.diags = append(i.diags, wrapErr(err, path.Path{}))
			if !i.tolerant {
				return nil, i.diags
			}
			continue
		}
	}

	doc := c.Finish()
	return doc, i.diags
}

// compileForm recognizes one of the six canonical top-level forms and
// compiles it (and its nested content) into a flat action program.
func (i *interp) compileForm(n cst.Node) ([]Action, error) {
	var actions []Action
	switch n.Label() {
	case LabelBinding, LabelTextBinding:
		pathNode, valueNode := firstChildLabeled(n, LabelPath), lastNonPathChild(n)
		if pathNode == nil || valueNode == nil {
			return nil, fmt.Errorf("malformed %s: missing path or value", n.Label())
		}
		actions = append(actions, Action{Kind: ActionBeginScope})
		segActions, err := i.compileSegments(pathNode)
		if err != nil {
			return nil, err
		}
		actions = append(actions, segActions...)
		valActions, err := i.compileValue(valueNode)
		if err != nil {
			return nil, err
		}
		actions = append(actions, valActions...)
		actions = append(actions, Action{Kind: ActionEndScope})

	case LabelBlock:
		pathNode := firstChildLabeled(n, LabelPath)
		if pathNode == nil {
			return nil, fmt.Errorf("malformed Block: missing path")
		}
		actions = append(actions, Action{Kind: ActionBeginScope})
		segActions, err := i.compileSegments(pathNode)
		if err != nil {
			return nil, err
		}
		actions = append(actions, segActions...)
		actions = append(actions, Action{Kind: ActionBindEmptyMap})
		for _, child := range n.Children() {
			if child == pathNode {
				continue
			}
			inner, err := i.compileForm(child)
			if err != nil {
				return nil, err
			}
			actions = append(actions, inner...)
		}
		actions = append(actions, Action{Kind: ActionEndScope})

	case LabelSection:
		pathNode := firstChildLabeled(n, LabelPath)
		if pathNode == nil {
			return nil, fmt.Errorf("malformed Section: missing path")
		}
		actions = append(actions, Action{Kind: ActionBeginScope})
		segActions, err := i.compileSegments(pathNode)
		if err != nil {
			return nil, err
		}
		actions = append(actions, segActions...)

		rest := siblingsAfter(n, pathNode)
		switch {
		case len(rest) == 1 && isValueNode(rest[0]):
			// `@ path = value` / `@ path[i] = value` direct assignment
			valActions, err := i.compileValue(rest[0])
			if err != nil {
				return nil, err
			}
			actions = append(actions, valActions...)
		default:
			// block mode (explicit `{ ... }`) or items mode (bare sibling
			// forms): both leave the section path bound to a map and
			// recurse into its nested forms.
			actions = append(actions, Action{Kind: ActionBindEmptyMap})
			for _, child := range rest {
				inner, err := i.compileForm(child)
				if err != nil {
					return nil, err
				}
				actions = append(actions, inner...)
			}
		}
		actions = append(actions, Action{Kind: ActionEndScope})

	default:
		return nil, fmt.Errorf("unrecognized top-level form %q", n.Label())
	}
	return actions, nil
}

func (i *interp) compileSegments(pathNode cst.Node) ([]Action, error) {
	var actions []Action
	for _, seg := range pathNode.Children() {
		a, err := i.compileSegment(seg)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, nil
}

func (i *interp) compileSegment(n cst.Node) (Action, error) {
	pos := n.Span().Start
	switch n.Label() {
	case LabelSegIdent:
		id, err := ident.New(n.Text(i.src))
		if err != nil {
			return Action{}, err
		}
		return Action{Kind: ActionNavigate, Segment: path.SegIdent(id), Pos: pos}, nil
	case LabelSegExtension:
		id, err := ident.New(n.Text(i.src))
		if err != nil {
			return Action{}, err
		}
		return Action{Kind: ActionNavigate, Segment: path.SegExtension(id), Pos: pos}, nil
	case LabelSegMetaExt:
		id, err := ident.New(n.Text(i.src))
		if err != nil {
			return Action{}, err
		}
		return Action{Kind: ActionNavigate, Segment: path.SegMetaExtension(id), Pos: pos}, nil
	case LabelSegTupleIndex:
		idx, err := parseUint(n.Text(i.src))
		if err != nil {
			return Action{}, err
		}
		return Action{Kind: ActionNavigate, Segment: path.SegTupleIndex(idx), Pos: pos}, nil
	case LabelSegArrayAppend:
		return Action{Kind: ActionNavigate, Segment: path.SegArrayAppend(), Pos: pos}, nil
	case LabelSegArrayIndex:
		idx, err := parseUint(n.Text(i.src))
		if err != nil {
			return Action{}, err
		}
		return Action{Kind: ActionNavigate, Segment: path.SegArrayIndex(idx), Pos: pos}, nil
	default:
		return Action{}, fmt.Errorf("unrecognized path segment %q", n.Label())
	}
}

func (i *interp) compileValue(n cst.Node) ([]Action, error) {
	pos := n.Span().Start
	switch n.Label() {
	case LabelValueNull:
		return []Action{{Kind: ActionBindPrimitive, Value: value.Null(), Pos: pos}}, nil
	case LabelValueBool:
		return []Action{{Kind: ActionBindPrimitive, Value: value.Bool(n.Text(i.src) == "true"), Pos: pos}}, nil
	case LabelValueI64:
		v, err := parseInt(n.Text(i.src))
		if err != nil {
			return nil, err
		}
		return []Action{{Kind: ActionBindPrimitive, Value: value.I64(v), Pos: pos}}, nil
	case LabelValueU64:
		v, err := parseUint(n.Text(i.src))
		if err != nil {
			return nil, err
		}
		return []Action{{Kind: ActionBindPrimitive, Value: value.U64(v), Pos: pos}}, nil
	case LabelValueF32:
		v, err := parseFloat32(n.Text(i.src))
		if err != nil {
			return nil, err
		}
		return []Action{{Kind: ActionBindPrimitive, Value: value.F32(v), Pos: pos}}, nil
	case LabelValueF64:
		v, err := parseFloat(n.Text(i.src))
		if err != nil {
			return nil, err
		}
		return []Action{{Kind: ActionBindPrimitive, Value: value.F64(v), Pos: pos}}, nil
	case LabelValueText:
		return []Action{{Kind: ActionBindPrimitive, Value: value.TextValue(value.Text{Content: n.Text(i.src)}), Pos: pos}}, nil
	case LabelValuePath:
		pathNode := firstChildLabeled(n, LabelPath)
		if pathNode == nil {
			return nil, fmt.Errorf("malformed %s: missing path", n.Label())
		}
		p, err := i.compileLiteralPath(pathNode)
		if err != nil {
			return nil, err
		}
		return []Action{{Kind: ActionBindPrimitive, Value: value.PathValue(p), Pos: pos}}, nil
	case LabelValueHole:
		return []Action{{Kind: ActionBindHole, Pos: pos}}, nil
	case LabelEmptyMap:
		return []Action{{Kind: ActionBindEmptyMap, Pos: pos}}, nil
	case LabelEmptyArray:
		return []Action{{Kind: ActionBindEmptyArray, Pos: pos}}, nil
	case LabelEmptyTuple:
		return []Action{{Kind: ActionBindEmptyTuple, Pos: pos}}, nil
	default:
		return nil, fmt.Errorf("unrecognized value literal %q", n.Label())
	}
}

// compileLiteralPath resolves a nested Path node (the operand of a
// PathLiteral value) into a path.Path directly, reusing compileSegment
// rather than emitting navigation Actions: a path literal is bound as a
// single primitive value, not walked into.
func (i *interp) compileLiteralPath(pathNode cst.Node) (path.Path, error) {
	var p path.Path
	for _, seg := range pathNode.Children() {
		a, err := i.compileSegment(seg)
		if err != nil {
			return path.Path{}, err
		}
		p = p.Append(a.Segment, a.Pos)
	}
	return p, nil
}

func firstChildLabeled(n cst.Node, label string) cst.Node {
	for _, c := range n.Children() {
		if c.Label() == label {
			return c
		}
	}
	return nil
}

func lastNonPathChild(n cst.Node) cst.Node {
	children := n.Children()
	for i := len(children) - 1; i >= 0; i-- {
		if children[i].Label() != LabelPath {
			return children[i]
		}
	}
	return nil
}

func siblingsAfter(n, marker cst.Node) []cst.Node {
	children := n.Children()
	for i, c := range children {
		if c == marker {
			return children[i+1:]
		}
	}
	return nil
}

func isValueNode(n cst.Node) bool {
	switch n.Label() {
	case LabelValueNull, LabelValueBool, LabelValueI64, LabelValueU64, LabelValueF32, LabelValueF64,
		LabelValueText, LabelValuePath, LabelValueHole, LabelEmptyMap, LabelEmptyArray, LabelEmptyTuple:
		return true
	default:
		return false
	}
}

func parseUint(s string) (uint64, error) {
	var v uint64
	_, err := fmt.Sscanf(s, "%d", &v)
	return v, err
}

func parseInt(s string) (int64, error) {
	var v int64
	_, err := fmt.Sscanf(s, "%d", &v)
	return v, err
}

func parseFloat(s string) (float64, error) {
	var v float64
	_, err := fmt.Sscanf(s, "%g", &v)
	return v, err
}

func parseFloat32(s string) (float32, error) {
	var v float32
	_, err := fmt.Sscanf(s, "%g", &v)
	return v, err
}
