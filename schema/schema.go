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

// Package schema defines the EURE schema model: the `Type` union,
// object/enum field schemas, and the top-level DocumentSchema that the
// extract and validate packages build and consume.
package schema

import (
	"github.com/eure-lang/eure-go/path"
	"github.com/eure-lang/eure-go/value"
)

// Kind discriminates the shapes a Type can hold.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindI64
	KindU64
	KindF32
	KindF64
	KindString
	KindPath
	KindCode
	KindArray
	KindObject
	KindVariant
	KindUnion
	KindTypeRef
	KindCascadeType
	KindAny
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
	case KindString:
		return "string"
	case KindPath:
		return "path"
	case KindCode:
		return "code"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindVariant:
		return "variant"
	case KindUnion:
		return "union"
	case KindTypeRef:
		return "type-ref"
	case KindCascadeType:
		return "cascade-type"
	case KindAny:
		return "any"
	default:
		return "?"
	}
}

// Type is the tagged union of schema type expressions. Exactly the field
// matching Kind is meaningful.
type Type struct {
	Kind Kind

	// Code holds the required language tag when Kind == KindCode.
	Code value.Lang

	// Array holds the element type when Kind == KindArray.
	Array *Type

	// Object holds the field schema when Kind == KindObject.
	Object *ObjectSchema

	// Variant holds the enum schema when Kind == KindVariant.
	Variant *EnumSchema

	// Union holds the member types when Kind == KindUnion.
	Union []Type

	// TypeRef holds the referenced type's name when Kind == KindTypeRef.
	TypeRef string

	// CascadeType holds the wrapped type when Kind == KindCascadeType.
	CascadeType *Type
}

func Null() Type   { return Type{Kind: KindNull} }
func Bool() Type   { return Type{Kind: KindBool} }
func I64() Type    { return Type{Kind: KindI64} }
func U64() Type    { return Type{Kind: KindU64} }
func F32() Type    { return Type{Kind: KindF32} }
func F64() Type    { return Type{Kind: KindF64} }
func String() Type { return Type{Kind: KindString} }
func PathType() Type { return Type{Kind: KindPath} }
func Any() Type    { return Type{Kind: KindAny} }

// CodeType returns a text type constrained to lang.
func CodeType(lang value.Lang) Type { return Type{Kind: KindCode, Code: lang} }

// ArrayType returns an array type with element type elem.
func ArrayType(elem Type) Type { return Type{Kind: KindArray, Array: &elem} }

// ObjectType wraps an ObjectSchema as a Type.
func ObjectType(o *ObjectSchema) Type { return Type{Kind: KindObject, Object: o} }

// VariantType wraps an EnumSchema as a Type.
func VariantType(e *EnumSchema) Type { return Type{Kind: KindVariant, Variant: e} }

// UnionType returns a union over members.
func UnionType(members ...Type) Type { return Type{Kind: KindUnion, Union: members} }

// RefType returns a named type reference, resolved later against
// DocumentSchema.Types.
func RefType(name string) Type { return Type{Kind: KindTypeRef, TypeRef: name} }

// CascadeTypeOf wraps inner as a cascade-registering type.
func CascadeTypeOf(inner Type) Type { return Type{Kind: KindCascadeType, CascadeType: &inner} }

// Representation discriminates how an EnumSchema's variant tag is encoded
// in the data document.
type Representation int

const (
	RepresentationExternal Representation = iota
	RepresentationInternal
	RepresentationAdjacent
)

func (r Representation) String() string {
	switch r {
	case RepresentationExternal:
		return "external"
	case RepresentationInternal:
		return "internal"
	case RepresentationAdjacent:
		return "adjacent"
	default:
		return "?"
	}
}

// EnumSchema is a tagged-union schema: a named set of variants, each an
// ObjectSchema, discriminated per Representation.
type EnumSchema struct {
	Variants       *VariantMap
	Representation Representation
	// Tag is the discriminant field name for Internal/Adjacent representations.
	Tag string
	// Content is the payload field name for Adjacent representation.
	Content string
}

func NewEnumSchema(repr Representation) *EnumSchema {
	return &EnumSchema{Variants: NewVariantMap(), Representation: repr}
}

// Constraints collects the value-level constraints a FieldSchema may carry
// and that the validator checks against bound values.
type Constraints struct {
	Min        *float64
	Max        *float64
	MinLength  *int
	MaxLength  *int
	Pattern    string
	Unique     bool
	Values     []value.KeyCmpValue // enumerated allowed values ($values)
}

// Preferences records stylistic hints (PreferSection, PreferArraySyntax).
// The validator does not read them.
type Preferences struct {
	PreferSection     bool
	PreferArraySyntax bool
}

// SerdeFieldOptions mirrors the subset of `$serde` controls that apply at
// field granularity (renaming, flattening).
type SerdeFieldOptions struct {
	Rename string
	Flatten bool
}

// FieldSchema is one ObjectSchema field's full schema.
type FieldSchema struct {
	TypeExpr    Type
	Optional    bool
	Default     *value.Value
	Constraints Constraints
	Preferences Preferences
	Serde       SerdeFieldOptions
	Description string
	// Deprecated marks a field whose presence should emit a DeprecatedField
	// warning.
	Deprecated bool
}

// ObjectSchema is a structural map schema: named fields plus an optional
// catch-all type for entries not explicitly declared.
type ObjectSchema struct {
	Fields               *FieldMap
	AdditionalProperties *Type
}

func NewObjectSchema() *ObjectSchema {
	return &ObjectSchema{Fields: NewFieldMap()}
}

// SerdeOptions holds document-wide `$serde` controls.
type SerdeOptions struct {
	RenameAll string
	DenyUnknownFields bool
}

// DocumentSchema is the top-level schema artifact produced by extraction
// and consumed by validation.
type DocumentSchema struct {
	Types        *TypeMap
	Root         *ObjectSchema
	CascadeTypes *CascadeMap
	SchemaRef    *string
	SerdeOptions SerdeOptions
}

// NewDocumentSchema returns an empty DocumentSchema with an empty root
// object.
func NewDocumentSchema() *DocumentSchema {
	return &DocumentSchema{
		Types:        NewTypeMap(),
		Root:         NewObjectSchema(),
		CascadeTypes: NewCascadeMap(),
	}
}

// FromPathSegments maps a canonical schema path literal (e.g. `.string`,
// `.number`, `.array.string`, `.$types.Foo`) to the Type it denotes. It
// recognizes exactly the builtin primitive/compound spellings plus
// `$types.<name>` references; any other path reports ok=false.
func FromPathSegments(p path.Path) (Type, bool) {
	segs := p.Segments
	if len(segs) == 0 {
		return Type{}, false
	}

	if (segs[0].Kind == path.Ident || segs[0].Kind == path.Extension) && segs[0].Ident.String() == "types" && len(segs) == 2 && segs[1].Kind == path.Ident {
		return RefType(segs[1].Ident.String()), true
	}

	if len(segs) == 1 && segs[0].Kind == path.Ident {
		if t, ok := primitiveByName(segs[0].Ident.String()); ok {
			return t, true
		}
		return Type{}, false
	}

	if len(segs) >= 2 && segs[0].Kind == path.Ident && segs[0].Ident.String() == "array" {
		inner, ok := FromPathSegments(path.Path{Segments: segs[1:]})
		if !ok {
			return Type{}, false
		}
		return ArrayType(inner), true
	}

	return Type{}, false
}

func primitiveByName(name string) (Type, bool) {
	switch name {
	case "null":
		return Null(), true
	case "bool", "boolean":
		return Bool(), true
	case "i64", "int":
		return I64(), true
	case "u64", "uint":
		return U64(), true
	case "f32":
		return F32(), true
	case "f64", "number", "float":
		return F64(), true
	case "string":
		return String(), true
	case "path":
		return PathType(), true
	case "any":
		return Any(), true
	default:
		return Type{}, false
	}
}
