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

// Package path represents EURE paths: ordered sequences of segments used to
// address nodes in a document or fields in a schema.
package path

import (
	"fmt"
	"strings"

	"github.com/eure-lang/eure-go/ident"
	"github.com/eure-lang/eure-go/token"
)

// A Kind distinguishes the six segment shapes a Path can hold.
type Kind int

const (
	// Ident addresses an ordinary map key.
	Ident Kind = iota
	// Extension addresses a single-dollar extension on the current node.
	Extension
	// MetaExtension addresses a double-dollar schema-for-extension entry.
	MetaExtension
	// TupleIndex addresses a positional slot in a tuple.
	TupleIndex
	// Value addresses a map entry keyed by a literal value.
	Value
	// ArrayIndex refines the immediately preceding Ident segment; Index set
	// means "this element", Index unset means "append".
	ArrayIndex
)

func (k Kind) String() string {
	switch k {
	case Ident:
		return "ident"
	case Extension:
		return "extension"
	case MetaExtension:
		return "meta-extension"
	case TupleIndex:
		return "tuple-index"
	case Value:
		return "value"
	case ArrayIndex:
		return "array-index"
	default:
		return "unknown"
	}
}

// KeyCmpValue is a type constraint describing a comparable, printable key
// such as value.KeyCmpValue. Segment does not use it: a Value segment stores
// its key as a ValueKey (see Segment.Literal).
type KeyCmpValue interface {
	comparable
	fmt.Stringer
}

// A Segment is one element of a Path. Exactly one of its fields is
// meaningful, selected by Kind; this mirrors the source specification's
// tagged-union segment shape while staying a plain comparable struct usable
// as a map key component.
type Segment struct {
	Kind    Kind
	Ident   ident.Identifier // valid when Kind is Ident, Extension, or MetaExtension
	Index   uint64           // valid when Kind is TupleIndex, or ArrayIndex with HasIndex
	Literal ValueKey         // valid when Kind is Value
	HasIndex bool            // valid when Kind is ArrayIndex; false means "append"
}

// ValueKey is a hashable projection of a scalar value usable as a Segment's
// literal map key. It is defined minimally here; the value package's
// KeyCmpValue converts to and from it.
type ValueKey struct {
	Tag  ValueKeyTag
	Bool bool
	Int  int64
	UInt uint64
	Str  string
}

// ValueKeyTag discriminates the scalar kinds a ValueKey can hold.
type ValueKeyTag int

const (
	ValueKeyNull ValueKeyTag = iota
	ValueKeyBool
	ValueKeyInt
	ValueKeyUInt
	ValueKeyString
)

func (v ValueKey) String() string {
	switch v.Tag {
	case ValueKeyNull:
		return "null"
	case ValueKeyBool:
		return fmt.Sprintf("%t", v.Bool)
	case ValueKeyInt:
		return fmt.Sprintf("%d", v.Int)
	case ValueKeyUInt:
		return fmt.Sprintf("%d", v.UInt)
	case ValueKeyString:
		return fmt.Sprintf("%q", v.Str)
	default:
		return "?"
	}
}

// SegIdent builds an Ident segment.
func SegIdent(id ident.Identifier) Segment { return Segment{Kind: Ident, Ident: id} }

// SegExtension builds an Extension segment.
func SegExtension(id ident.Identifier) Segment { return Segment{Kind: Extension, Ident: id} }

// SegMetaExtension builds a MetaExtension segment.
func SegMetaExtension(id ident.Identifier) Segment { return Segment{Kind: MetaExtension, Ident: id} }

// SegTupleIndex builds a TupleIndex segment.
func SegTupleIndex(n uint64) Segment { return Segment{Kind: TupleIndex, Index: n} }

// SegValue builds a Value segment.
func SegValue(v ValueKey) Segment { return Segment{Kind: Value, Literal: v} }

// SegArrayIndex builds an ArrayIndex segment addressing element n.
func SegArrayIndex(n uint64) Segment { return Segment{Kind: ArrayIndex, Index: n, HasIndex: true} }

// SegArrayAppend builds an ArrayIndex segment meaning "append".
func SegArrayAppend() Segment { return Segment{Kind: ArrayIndex, HasIndex: false} }

func (s Segment) String() string {
	switch s.Kind {
	case Ident:
		return s.Ident.String()
	case Extension:
		return "$" + s.Ident.String()
	case MetaExtension:
		return "$$" + s.Ident.String()
	case TupleIndex:
		return fmt.Sprintf(".%d", s.Index)
	case Value:
		return "[" + s.Literal.String() + "]"
	case ArrayIndex:
		if s.HasIndex {
			return fmt.Sprintf("[%d]", s.Index)
		}
		return "[]"
	default:
		return "?"
	}
}

// A Path is an ordered sequence of segments addressing a node in a document
// or a field in a schema. Positions, when present, align one-to-one with
// Segments and are forwarded from the parser into diagnostics; the core
// never reads them itself.
type Path struct {
	Segments  []Segment
	Positions []token.Pos // nil, or len(Positions) == len(Segments)
}

// New builds a Path from segments with no position information.
func New(segs ...Segment) Path {
	return Path{Segments: segs}
}

// Append returns a new Path with seg appended at position pos (token.NoPos
// if unknown). Append never mutates p.
func (p Path) Append(seg Segment, pos token.Pos) Path {
	segs := make([]Segment, len(p.Segments)+1)
	copy(segs, p.Segments)
	segs[len(segs)-1] = seg

	var positions []token.Pos
	if p.Positions != nil || pos.IsValid() {
		positions = make([]token.Pos, len(segs))
		copy(positions, p.Positions)
		for i := len(p.Positions); i < len(segs)-1; i++ {
			positions[i] = token.NoPos
		}
		positions[len(segs)-1] = pos
	}
	return Path{Segments: segs, Positions: positions}
}

// Len returns the number of segments.
func (p Path) Len() int { return len(p.Segments) }

// Empty reports whether p has no segments (the root path).
func (p Path) Empty() bool { return len(p.Segments) == 0 }

// Equal reports whether p and q address the same location, ignoring
// position information.
func (p Path) Equal(q Path) bool {
	if len(p.Segments) != len(q.Segments) {
		return false
	}
	for i := range p.Segments {
		if p.Segments[i] != q.Segments[i] {
			return false
		}
	}
	return true
}

// String renders a human-readable dotted form, e.g. "config.database.$type".
func (p Path) String() string {
	var b strings.Builder
	for i, s := range p.Segments {
		if i > 0 && s.Kind != ArrayIndex {
			b.WriteByte('.')
		}
		b.WriteString(s.String())
	}
	if b.Len() == 0 {
		return "."
	}
	return b.String()
}
