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

// Package value defines EURE's scalar value union: the primitives a
// document node's content may hold, and the key-comparable subset usable as
// map keys or enum discriminants.
package value

import (
	"fmt"

	"github.com/eure-lang/eure-go/path"
	"golang.org/x/text/language"
)

// Kind discriminates the scalar shapes a Value can hold.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindI64
	KindU64
	KindF32
	KindF64
	KindText
	KindPath
	KindHole
	KindUnit
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindI64:
		return "i64"
	case KindU64:
		return "u64"
	case KindF32:
		return "f32"
	case KindF64:
		return "f64"
	case KindText:
		return "text"
	case KindPath:
		return "path"
	case KindHole:
		return "hole"
	case KindUnit:
		return "unit"
	default:
		return "unknown"
	}
}

// A Value is a tagged union over EURE's primitive scalar kinds. Exactly one
// field is meaningful, selected by Kind. A Value never represents a
// compound (map/array/tuple) node — those live only in the document arena
// (see package document).
type Value struct {
	Kind Kind
	Bool bool
	I64  int64
	U64  uint64
	F32  float32
	F64  float64
	Text Text
	Path path.Path
}

// Null returns the null value.
func Null() Value { return Value{Kind: KindNull} }

// Unit returns the unit value `()`.
func Unit() Value { return Value{Kind: KindUnit} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// I64 wraps a signed 64-bit integer.
func I64(v int64) Value { return Value{Kind: KindI64, I64: v} }

// U64 wraps an unsigned 64-bit integer.
func U64(v uint64) Value { return Value{Kind: KindU64, U64: v} }

// F32 wraps a 32-bit float.
func F32(v float32) Value { return Value{Kind: KindF32, F32: v} }

// F64 wraps a 64-bit float.
func F64(v float64) Value { return Value{Kind: KindF64, F64: v} }

// TextValue wraps a text primitive.
func TextValue(t Text) Value { return Value{Kind: KindText, Text: t} }

// PathValue wraps a path literal.
func PathValue(p path.Path) Value { return Value{Kind: KindPath, Path: p} }

func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindUnit:
		return "()"
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	case KindI64:
		return fmt.Sprintf("%d", v.I64)
	case KindU64:
		return fmt.Sprintf("%d", v.U64)
	case KindF32:
		return fmt.Sprintf("%g", v.F32)
	case KindF64:
		return fmt.Sprintf("%g", v.F64)
	case KindText:
		return v.Text.Content
	case KindPath:
		return v.Path.String()
	case KindHole:
		return "!hole"
	default:
		return "?"
	}
}

// Lang is the language tag carried by a [Text] primitive. The core neither
// parses nor validates embedded languages; it only stores and compares the
// tag.
type Lang struct {
	// Kind is one of "plaintext", "implicit", or "other".
	Kind LangKind
	// Name holds the tag text when Kind is LangOther, e.g. "rust" or "json".
	Name string
}

// LangKind discriminates the Lang union.
type LangKind int

const (
	LangPlaintext LangKind = iota
	LangImplicit
	LangOther
)

// Equal reports whether l and m denote the same language, canonicalizing
// LangOther tags through BCP-47 parsing when possible (e.g. "EN" == "en")
// and falling back to a raw string comparison when the tag isn't a
// recognized language subtag (many code-fence hints, like "rust" or "json",
// aren't BCP-47 languages at all).
func (l Lang) Equal(m Lang) bool {
	if l.Kind != m.Kind {
		return false
	}
	if l.Kind != LangOther {
		return true
	}
	lt, lerr := language.Parse(l.Name)
	mt, merr := language.Parse(m.Name)
	if lerr == nil && merr == nil {
		return lt == mt
	}
	return l.Name == m.Name
}

func (l Lang) String() string {
	switch l.Kind {
	case LangPlaintext:
		return "plaintext"
	case LangImplicit:
		return "implicit"
	case LangOther:
		return l.Name
	default:
		return "?"
	}
}

// Fence records which source fence width (3 through 6 backticks/dollars)
// a block text literal used, for source round-tripping by the formatter
// collaborator. The core stores this purely as provenance.
type Fence int

const (
	FenceInline Fence = iota // not a fenced block at all
	Block3
	Block4
	Block5
	Block6
)

// Text is a text primitive: content plus its language tag and the fence
// width hint it was written with.
type Text struct {
	Content string
	Lang    Lang
	Fence   Fence
}

// KeyCmpValue is the hashable projection of Value usable as a map key
// (document.DocumentKey's Value variant) or an enum discriminant
// (schema.EnumSchema's variants map). Floats and holes are excluded: they
// are not meaningfully comparable/hashable as map keys.
type KeyCmpValue struct {
	tag  path.ValueKeyTag
	boolV bool
	i64V int64
	u64V uint64
	strV string
}

// KeyCmpNull, KeyCmpBool, KeyCmpI64, KeyCmpU64, and KeyCmpString construct
// the respective KeyCmpValue variants.
func KeyCmpNull() KeyCmpValue { return KeyCmpValue{tag: path.ValueKeyNull} }
func KeyCmpBool(b bool) KeyCmpValue { return KeyCmpValue{tag: path.ValueKeyBool, boolV: b} }
func KeyCmpI64(v int64) KeyCmpValue { return KeyCmpValue{tag: path.ValueKeyInt, i64V: v} }
func KeyCmpU64(v uint64) KeyCmpValue { return KeyCmpValue{tag: path.ValueKeyUInt, u64V: v} }
func KeyCmpString(s string) KeyCmpValue { return KeyCmpValue{tag: path.ValueKeyString, strV: s} }

func (k KeyCmpValue) String() string {
	return k.toSegmentKey().String()
}

func (k KeyCmpValue) toSegmentKey() path.ValueKey {
	return path.ValueKey{Tag: k.tag, Bool: k.boolV, Int: k.i64V, UInt: k.u64V, Str: k.strV}
}

// AsSegment converts k into a path.Segment usable to address a map entry
// keyed by this value.
func (k KeyCmpValue) AsSegment() path.Segment {
	return path.SegValue(k.toSegmentKey())
}

// FromValue converts v into a KeyCmpValue, reporting false for kinds that
// are not key-comparable (F32, F64, Path, Hole, Unit). Text converts to a
// string key holding its content.
func FromValue(v Value) (KeyCmpValue, bool) {
	switch v.Kind {
	case KindNull:
		return KeyCmpNull(), true
	case KindBool:
		return KeyCmpBool(v.Bool), true
	case KindI64:
		return KeyCmpI64(v.I64), true
	case KindU64:
		return KeyCmpU64(v.U64), true
	case KindText:
		return KeyCmpString(v.Text.Content), true
	default:
		return KeyCmpValue{}, false
	}
}
