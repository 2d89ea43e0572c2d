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

// Package cst declares the interfaces the core consumes from the external
// parser collaborator: a concrete syntax tree with exactly two node kinds,
// byte spans into the source, and a tolerant error report. The core never
// implements a grammar or scanner itself — this package only describes the
// shape it is handed.
package cst

import "github.com/eure-lang/eure-go/token"

// NodeKind distinguishes the two CST node shapes: a Terminal (a leaf
// carrying source text) or a NonTerminal (an interior node with children
// representing a grammar production).
type NodeKind int

const (
	Terminal NodeKind = iota
	NonTerminal
)

// Node is one CST node. Exactly one of Text/Children applies, selected by
// Kind. A dynamic token synthesized by editor tooling carries its text
// directly instead of deriving it from Span, since it may
// not correspond to any byte range of the original source.
type Node interface {
	Kind() NodeKind
	// Label identifies the grammar production or terminal symbol this node
	// represents (e.g. "Binding", "Ident", "ArrayMarker"); the interpreter
	// switches on it to recognize the six canonical binding/section forms.
	Label() string
	Span() token.Span
	// Children returns this node's children in source order. Empty for a
	// Terminal.
	Children() []Node
	// Text returns this node's literal text. Only meaningful for a
	// Terminal; valid whether or not the terminal is dynamic.
	Text(src string) string
}

// Tree is a parsed concrete syntax tree: a root handle plus the source it
// was parsed from. The parser is expected to be tolerant and may return a
// partial Tree alongside a non-empty Diagnostics list.
type Tree interface {
	Root() Node
	Source() string
	Diagnostics() []Diagnostic
}

// Diagnostic is a parser-reported syntax problem, forwarded into the
// interpreter's tolerant-mode error accumulation without interpretation.
type Diagnostic struct {
	Span    token.Span
	Message string
}
