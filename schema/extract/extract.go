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

// Package extract implements the two schema-extraction entry points:
// DocumentToSchema, for a document that is entirely schema metadata, and
// ExtractSchemaFromDocument, for a possibly-mixed self-describing document.
package extract

import (
	"strings"

	"github.com/eure-lang/eure-go/document"
	"github.com/eure-lang/eure-go/ident"
	"github.com/eure-lang/eure-go/path"
	"github.com/eure-lang/eure-go/schema"
	"github.com/eure-lang/eure-go/value"
)

var (
	extType        = ident.MustNew("type")
	extOptional    = ident.MustNew("optional")
	extMin         = ident.MustNew("min")
	extMax         = ident.MustNew("max")
	extMinLength   = ident.MustNew("min-length")
	extMaxLength   = ident.MustNew("max-length")
	extPattern     = ident.MustNew("pattern")
	extValues      = ident.MustNew("values")
	extVariants    = ident.MustNew("variants")
	extVariant     = ident.MustNew("variant")
	extDescription = ident.MustNew("description")
	extDeprecated  = ident.MustNew("deprecated")
	extTypes       = ident.MustNew("types")
	extSchema      = ident.MustNew("schema")
	extCascadeType = ident.MustNew("cascade-type")
	extSerde       = ident.MustNew("serde")
)

type extractor struct {
	doc *document.Document
}

// DocumentToSchema builds a DocumentSchema from doc, which must be entirely
// schema metadata. It returns the first structural error encountered.
func DocumentToSchema(doc *document.Document) (*schema.DocumentSchema, error) {
	x := &extractor{doc: doc}
	ds := schema.NewDocumentSchema()
	root := doc.RootID()

	if err := x.populateTopLevelExtensions(root, ds, path.Path{}); err != nil {
		return nil, err
	}
	if err := x.populateObjectFields(root, ds.Root, path.Path{}, ds); err != nil {
		return nil, err
	}
	return ds, nil
}

// ExtractSchemaFromDocument walks a possibly-mixed document, builds a
// DocumentSchema from whatever schema metadata it carries, and reports
// whether the document was pure schema (no non-schema content key anywhere).
func ExtractSchemaFromDocument(doc *document.Document) (ds *schema.DocumentSchema, isPure bool, inline map[string]*schema.ObjectSchema, err error) {
	x := &extractor{doc: doc}
	ds = schema.NewDocumentSchema()
	root := doc.RootID()
	inline = make(map[string]*schema.ObjectSchema)

	if err = x.populateTopLevelExtensions(root, ds, path.Path{}); err != nil {
		return nil, false, nil, err
	}
	if err = x.populateObjectFields(root, ds.Root, path.Path{}, ds); err != nil {
		return nil, false, nil, err
	}
	x.collectInlineSchemas(root, path.Path{}, inline)
	isPure = x.isPureSchema(root)
	return ds, isPure, inline, nil
}

// populateTopLevelExtensions reads $types, $schema, $cascade-type, and
// $serde off the node at id, and also registers any $cascade-type found at
// id itself.
func (x *extractor) populateTopLevelExtensions(id document.NodeID, ds *schema.DocumentSchema, at path.Path) error {
	if typesID, ok, err := x.doc.ExtensionGet(id, extTypes); err != nil {
		return err
	} else if ok {
		if err := x.populateNamedTypes(typesID, ds, at); err != nil {
			return err
		}
	}

	if schemaID, ok, err := x.doc.ExtensionGet(id, extSchema); err != nil {
		return err
	} else if ok {
		if s, ok := x.textOf(schemaID); ok {
			ds.SchemaRef = &s
		}
	}

	if err := x.registerCascadeType(id, ds, at); err != nil {
		return err
	}

	if serdeID, ok, err := x.doc.ExtensionGet(id, extSerde); err != nil {
		return err
	} else if ok {
		x.populateSerdeOptions(serdeID, ds)
	}

	return nil
}

func (x *extractor) populateSerdeOptions(id document.NodeID, ds *schema.DocumentSchema) {
	entries, err := x.doc.Children(id)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.Key.Kind != document.KeyIdent {
			continue
		}
		switch e.Key.Ident.String() {
		case "rename-all":
			if s, ok := x.textOf(e.ID); ok {
				ds.SerdeOptions.RenameAll = s
			}
		case "deny-unknown-fields":
			if b, ok := x.boolOf(e.ID); ok {
				ds.SerdeOptions.DenyUnknownFields = b
			}
		}
	}
}

// populateNamedTypes reads $types' entries: each is either a path literal
// (direct alias) or an object describing a field/variant schema.
func (x *extractor) populateNamedTypes(id document.NodeID, ds *schema.DocumentSchema, at path.Path) error {
	entries, err := x.doc.Children(id)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.Key.Kind != document.KeyIdent {
			continue
		}
		name := e.Key.Ident.String()
		fs, err := x.fieldSchemaFromNode(e.ID, at.Append(path.SegIdent(e.Key.Ident), -1), ds)
		if err != nil {
			return err
		}
		if !ds.Types.Set(name, fs.TypeExpr) {
			return schema.NewError(schema.ConflictingTypes, at, "duplicate named type "+name)
		}
	}
	return nil
}

// registerCascadeType reads a $cascade-type extension off id, if present,
// and registers it in ds at path at.
func (x *extractor) registerCascadeType(id document.NodeID, ds *schema.DocumentSchema, at path.Path) error {
	if ds == nil {
		return nil
	}
	ctID, ok, err := x.doc.ExtensionGet(id, extCascadeType)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	n, err := x.doc.Node(ctID)
	if err != nil {
		return err
	}
	if n.Content.Kind != document.ContentPrimitive || n.Content.Primitive.Kind != value.KindPath {
		return schema.NewError(schema.InvalidTypePath, at, "$cascade-type must be a path literal")
	}
	ty, ok := schema.FromPathSegments(n.Content.Primitive.Path)
	if !ok {
		return schema.NewError(schema.InvalidTypePath, at, "$cascade-type path does not denote a known type")
	}
	ds.CascadeTypes.Set(pathKey(at), ty)
	return nil
}

// populateObjectFields converts id's own non-extension map entries into
// obj's fields, recursing into every reachable node to register cascade
// types along the way.
func (x *extractor) populateObjectFields(id document.NodeID, obj *schema.ObjectSchema, at path.Path, ds *schema.DocumentSchema) error {
	n, err := x.doc.Node(id)
	if err != nil {
		return err
	}
	if n.Content.Kind != document.ContentMap {
		return nil
	}
	entries, err := x.doc.Children(id)
	if err != nil {
		return err
	}
	for _, e := range entries {
		switch e.Key.Kind {
		case document.KeyIdent:
			childPath := at.Append(path.SegIdent(e.Key.Ident), -1)
			fs, err := x.fieldSchemaFromNode(e.ID, childPath, ds)
			if err != nil {
				return err
			}
			obj.Fields.Set(value.KeyCmpString(e.Key.Ident.String()), fs)
			if err := x.registerCascadeType(e.ID, ds, childPath); err != nil {
				return err
			}
		case document.KeyMetaExtension:
			// "$$x" registers a schema for the extension $x, optional.
			childPath := at.Append(path.SegExtension(e.Key.Ident), -1)
			fs, err := x.fieldSchemaFromNode(e.ID, childPath, ds)
			if err != nil {
				return err
			}
			fs.Optional = true
			obj.Fields.Set(value.KeyCmpString("$"+e.Key.Ident.String()), fs)
		default:
			// Value/TupleIndex keys are not named fields; ignored here.
		}
	}
	return nil
}

// fieldSchemaFromNode builds the FieldSchema for the node at id, applying
// the field-extension rules ($type, $optional, $min, $max, and the rest).
func (x *extractor) fieldSchemaFromNode(id document.NodeID, at path.Path, ds *schema.DocumentSchema) (schema.FieldSchema, error) {
	fs := schema.FieldSchema{TypeExpr: schema.Any()}

	if variantsID, ok, err := x.doc.ExtensionGet(id, extVariants); err != nil {
		return fs, err
	} else if ok {
		enum, err := x.enumSchemaFromVariants(id, variantsID, at, ds)
		if err != nil {
			return fs, err
		}
		fs.TypeExpr = schema.VariantType(enum)
	} else if typeID, ok, err := x.doc.ExtensionGet(id, extType); err != nil {
		return fs, err
	} else if ok {
		ty, err := x.typeFromNode(typeID, at)
		if err != nil {
			return fs, err
		}
		fs.TypeExpr = ty
	} else {
		n, err := x.doc.Node(id)
		if err != nil {
			return fs, err
		}
		switch n.Content.Kind {
		case document.ContentPrimitive:
			if n.Content.Primitive.Kind == value.KindPath {
				if ty, ok := schema.FromPathSegments(n.Content.Primitive.Path); ok {
					fs.TypeExpr = ty
				}
			}
		case document.ContentMap:
			nested := schema.NewObjectSchema()
			if err := x.populateObjectFields(id, nested, at, ds); err != nil {
				return fs, err
			}
			fs.TypeExpr = schema.ObjectType(nested)
		case document.ContentArray:
			fs.TypeExpr = schema.ArrayType(schema.Any())
		}
	}

	if optID, ok, err := x.doc.ExtensionGet(id, extOptional); err != nil {
		return fs, err
	} else if ok {
		if b, ok := x.boolOf(optID); ok {
			fs.Optional = b
		}
	}
	if descID, ok, err := x.doc.ExtensionGet(id, extDescription); err != nil {
		return fs, err
	} else if ok {
		if s, ok := x.textOf(descID); ok {
			fs.Description = s
		}
	}
	if depID, ok, err := x.doc.ExtensionGet(id, extDeprecated); err != nil {
		return fs, err
	} else if ok {
		if b, ok := x.boolOf(depID); ok {
			fs.Deprecated = b
		}
	}

	cons, err := x.constraintsFromExtensions(id)
	if err != nil {
		return fs, err
	}
	fs.Constraints = cons

	return fs, nil
}

func (x *extractor) constraintsFromExtensions(id document.NodeID) (schema.Constraints, error) {
	var c schema.Constraints
	if minID, ok, err := x.doc.ExtensionGet(id, extMin); err != nil {
		return c, err
	} else if ok {
		if f, ok := x.numberOf(minID); ok {
			c.Min = &f
		}
	}
	if maxID, ok, err := x.doc.ExtensionGet(id, extMax); err != nil {
		return c, err
	} else if ok {
		if f, ok := x.numberOf(maxID); ok {
			c.Max = &f
		}
	}
	if minLenID, ok, err := x.doc.ExtensionGet(id, extMinLength); err != nil {
		return c, err
	} else if ok {
		if f, ok := x.numberOf(minLenID); ok {
			n := int(f)
			c.MinLength = &n
		}
	}
	if maxLenID, ok, err := x.doc.ExtensionGet(id, extMaxLength); err != nil {
		return c, err
	} else if ok {
		if f, ok := x.numberOf(maxLenID); ok {
			n := int(f)
			c.MaxLength = &n
		}
	}
	if patID, ok, err := x.doc.ExtensionGet(id, extPattern); err != nil {
		return c, err
	} else if ok {
		if s, ok := x.textOf(patID); ok {
			c.Pattern = s
		}
	}
	if valuesID, ok, err := x.doc.ExtensionGet(id, extValues); err != nil {
		return c, err
	} else if ok {
		entries, err := x.doc.Children(valuesID)
		if err == nil {
			for _, e := range entries {
				if n, err := x.doc.Node(e.ID); err == nil && n.Content.Kind == document.ContentPrimitive {
					if kv, ok := value.FromValue(n.Content.Primitive); ok {
						c.Values = append(c.Values, kv)
					}
				}
			}
		}
	}
	return c, nil
}

// typeFromNode interprets a `$type` extension's target node as a Type:
// either a path literal (canonical type path) or a text naming a
// previously declared named type.
func (x *extractor) typeFromNode(id document.NodeID, at path.Path) (schema.Type, error) {
	n, err := x.doc.Node(id)
	if err != nil {
		return schema.Type{}, err
	}
	if n.Content.Kind != document.ContentPrimitive {
		return schema.Type{}, schema.NewError(schema.InvalidField, at, "$type must be a path or string literal")
	}
	switch n.Content.Primitive.Kind {
	case value.KindPath:
		ty, ok := schema.FromPathSegments(n.Content.Primitive.Path)
		if !ok {
			return schema.Type{}, schema.NewError(schema.InvalidTypePath, at, "$type path does not denote a known type")
		}
		return ty, nil
	case value.KindText:
		return schema.RefType(n.Content.Primitive.Text.Content), nil
	default:
		return schema.Type{}, schema.NewError(schema.InvalidField, at, "$type must be a path or string literal")
	}
}

// enumSchemaFromVariants builds an EnumSchema from a `$variants` object,
// whose representation is controlled by a sibling `$variant` extension
// carrying a "repr" field ("external" | "internal" | "adjacent") plus, for
// internal/adjacent, "tag" (and "content" for adjacent).
func (x *extractor) enumSchemaFromVariants(fieldID, variantsID document.NodeID, at path.Path, ds *schema.DocumentSchema) (*schema.EnumSchema, error) {
	repr := schema.RepresentationExternal
	tag, content := "tag", "content"
	if variantExtID, ok, err := x.doc.ExtensionGet(fieldID, extVariant); err != nil {
		return nil, err
	} else if ok {
		entries, err := x.doc.Children(variantExtID)
		if err == nil {
			for _, e := range entries {
				if e.Key.Kind != document.KeyIdent {
					continue
				}
				switch e.Key.Ident.String() {
				case "repr":
					if s, ok := x.textOf(e.ID); ok {
						switch s {
						case "internal":
							repr = schema.RepresentationInternal
						case "adjacent":
							repr = schema.RepresentationAdjacent
						default:
							repr = schema.RepresentationExternal
						}
					}
				case "tag":
					if s, ok := x.textOf(e.ID); ok {
						tag = s
					}
				case "content":
					if s, ok := x.textOf(e.ID); ok {
						content = s
					}
				}
			}
		}
	}

	enum := schema.NewEnumSchema(repr)
	enum.Tag, enum.Content = tag, content

	entries, err := x.doc.Children(variantsID)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.Key.Kind != document.KeyIdent {
			continue
		}
		name := e.Key.Ident.String()
		obj := schema.NewObjectSchema()
		variantPath := at.Append(path.SegIdent(e.Key.Ident), -1)
		if err := x.populateObjectFields(e.ID, obj, variantPath, ds); err != nil {
			return nil, err
		}
		enum.Variants.Set(value.KeyCmpString(name), obj)
	}
	return enum, nil
}

// collectInlineSchemas walks every node reachable from id, recording an
// ObjectSchema for each map node that itself carries a schema-only
// extension ($type or $variants) directly, keyed by its path.
func (x *extractor) collectInlineSchemas(id document.NodeID, at path.Path, inline map[string]*schema.ObjectSchema) {
	n, err := x.doc.Node(id)
	if err != nil {
		return
	}
	if x.hasSchemaExtension(id) && n.Content.Kind == document.ContentMap {
		obj := schema.NewObjectSchema()
		_ = x.populateObjectFields(id, obj, at, nil)
		inline[pathKey(at)] = obj
	}
	if n.Content.Kind != document.ContentMap {
		return
	}
	entries, err := x.doc.Children(id)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.Key.Kind != document.KeyIdent {
			continue
		}
		x.collectInlineSchemas(e.ID, at.Append(path.SegIdent(e.Key.Ident), -1), inline)
	}
}

// isPureSchema reports whether every reachable leaf under id exists solely
// to carry schema metadata rather than actual data content.
func (x *extractor) isPureSchema(id document.NodeID) bool {
	n, err := x.doc.Node(id)
	if err != nil {
		return true
	}
	if x.hasSchemaExtension(id) {
		return true
	}
	switch n.Content.Kind {
	case document.ContentHole:
		return true
	case document.ContentMap:
		entries, err := x.doc.Children(id)
		if err != nil {
			return true
		}
		for _, e := range entries {
			if !x.isPureSchema(e.ID) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (x *extractor) hasSchemaExtension(id document.NodeID) bool {
	for _, name := range [...]ident.Identifier{extType, extVariants} {
		if _, ok, err := x.doc.ExtensionGet(id, name); err == nil && ok {
			return true
		}
	}
	return false
}

func (x *extractor) textOf(id document.NodeID) (string, bool) {
	n, err := x.doc.Node(id)
	if err != nil || n.Content.Kind != document.ContentPrimitive || n.Content.Primitive.Kind != value.KindText {
		return "", false
	}
	return n.Content.Primitive.Text.Content, true
}

func (x *extractor) boolOf(id document.NodeID) (bool, bool) {
	n, err := x.doc.Node(id)
	if err != nil || n.Content.Kind != document.ContentPrimitive || n.Content.Primitive.Kind != value.KindBool {
		return false, false
	}
	return n.Content.Primitive.Bool, true
}

func (x *extractor) numberOf(id document.NodeID) (float64, bool) {
	n, err := x.doc.Node(id)
	if err != nil || n.Content.Kind != document.ContentPrimitive {
		return 0, false
	}
	switch n.Content.Primitive.Kind {
	case value.KindI64:
		return float64(n.Content.Primitive.I64), true
	case value.KindU64:
		return float64(n.Content.Primitive.U64), true
	case value.KindF32:
		return float64(n.Content.Primitive.F32), true
	case value.KindF64:
		return n.Content.Primitive.F64, true
	default:
		return 0, false
	}
}

// pathKey renders p the same way schema.CascadeMap keys are compared
// against: dotted segment names; any other segment (an array index, for
// example) is added as its own dotted part in its String form.
func pathKey(p path.Path) string {
	var parts []string
	for _, s := range p.Segments {
		switch s.Kind {
		case path.Ident:
			parts = append(parts, s.Ident.String())
		case path.Extension:
			parts = append(parts, "$"+s.Ident.String())
		default:
			parts = append(parts, s.String())
		}
	}
	return strings.Join(parts, ".")
}
