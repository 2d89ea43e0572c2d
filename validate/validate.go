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

package validate

import (
	"regexp"
	"strings"

	"github.com/eure-lang/eure-go/document"
	"github.com/eure-lang/eure-go/ident"
	"github.com/eure-lang/eure-go/path"
	"github.com/eure-lang/eure-go/schema"
	"github.com/eure-lang/eure-go/value"
)

func identUnchecked(s string) ident.Identifier { return ident.Unchecked(s) }

// Options configures a Validate pass.
type Options struct {
	// MaxErrors stops accumulating new errors past this count (0 means
	// unlimited). Traversal still completes; later errors are simply
	// dropped.
	MaxErrors int
	// Tolerant is reserved for a future mode that stops descending into a
	// subtree after its first error; the current validator always descends
	// fully and never lets one error stop traversal.
	Tolerant bool
}

// Result is the outcome of a Validate call.
type Result struct {
	Errors     []*Error
	Warnings   []*Error
	IsValid    bool
	IsComplete bool
}

type validator struct {
	doc      *document.Document
	ds       *schema.DocumentSchema
	opts     Options
	errs     []*Error
	warns    []*Error
	hasHoles bool
	cascades *schema.CascadeMap
}

// Validate checks doc against ds and returns every error/warning found, in
// deterministic depth-first pre-order. The traversal always completes; it
// never aborts on an error.
func Validate(doc *document.Document, ds *schema.DocumentSchema, opts Options) Result {
	v := &validator{doc: doc, ds: ds, opts: opts, cascades: clonedCascades(ds)}

	rootField := schema.FieldSchema{TypeExpr: schema.ObjectType(ds.Root)}
	v.validateField(rootField, doc.RootID(), path.Path{})

	return Result{
		Errors:     v.errs,
		Warnings:   v.warns,
		IsValid:    len(v.errs) == 0,
		IsComplete: len(v.errs) == 0 && !v.hasHoles,
	}
}

func clonedCascades(ds *schema.DocumentSchema) *schema.CascadeMap {
	// ds.CascadeTypes is only read through LongestPrefix/Get during
	// validation and mutated only by CascadeType-kind fields encountered
	// mid-traversal; those mutations must not leak back into ds itself, so
	// validation starts from a private copy.
	if ds == nil || ds.CascadeTypes == nil {
		return schema.NewCascadeMap()
	}
	return ds.CascadeTypes.Clone()
}

func (v *validator) addErr(e *Error) {
	if v.opts.MaxErrors > 0 && len(v.errs) >= v.opts.MaxErrors {
		return
	}
	v.errs = append(v.errs, e)
}

func (v *validator) addWarn(w *Error) {
	v.warns = append(v.warns, w)
}

// resolveEffectiveType unwraps TypeRef by name, and falls back to the
// nearest ancestor cascade type when fs's own type is unspecified
// (represented here as KindAny).
func (v *validator) resolveEffectiveType(ty schema.Type, at path.Path) schema.Type {
	for ty.Kind == schema.KindTypeRef {
		resolved, ok := v.ds.Types.Get(ty.TypeRef)
		if !ok {
			v.addErr(unknownType(at, ty.TypeRef))
			return schema.Any()
		}
		ty = resolved
	}
	if ty.Kind == schema.KindAny {
		if cascaded, ok := v.cascades.LongestPrefix(pathKey(at)); ok {
			return v.resolveEffectiveType(cascaded, at)
		}
	}
	return ty
}

// validateField is the entry point for checking one node against one
// FieldSchema: it resolves the effective type, checks value-level
// constraints, checks the node's own extensions, then dispatches structural
// checks by kind.
func (v *validator) validateField(fs schema.FieldSchema, id document.NodeID, at path.Path) {
	n, err := v.doc.Node(id)
	if err != nil {
		v.addErr(detailErr(InternalError, at, err.Error()))
		return
	}
	if n.Content.IsHole() {
		if n.Content.HoleLabel == nil {
			v.hasHoles = true
		}
		return
	}

	ty := v.resolveEffectiveType(fs.TypeExpr, at)

	v.checkConstraints(fs, n, at)
	v.checkExtensions(fs, n, id, at)

	v.dispatch(ty, n, id, at, fs)
}

func (v *validator) dispatch(ty schema.Type, n *document.Node, id document.NodeID, at path.Path, fs schema.FieldSchema) {
	switch ty.Kind {
	case schema.KindCascadeType:
		v.cascades.Set(pathKey(at), *ty.CascadeType)
		v.dispatch(*ty.CascadeType, n, id, at, fs)
	case schema.KindTypeRef:
		resolved, ok := v.ds.Types.Get(ty.TypeRef)
		if !ok {
			v.addErr(unknownType(at, ty.TypeRef))
			return
		}
		v.dispatch(resolved, n, id, at, fs)
	case schema.KindNull:
		v.checkPrimitiveKind(n, at, value.KindNull, "null")
	case schema.KindBool:
		v.checkPrimitiveKind(n, at, value.KindBool, "boolean")
	case schema.KindI64:
		v.checkPrimitiveKind(n, at, value.KindI64, "i64")
	case schema.KindU64:
		v.checkPrimitiveKind(n, at, value.KindU64, "u64")
	case schema.KindF32:
		v.checkNumericKind(n, at, "f32")
	case schema.KindF64:
		v.checkNumericKind(n, at, "f64")
	case schema.KindString:
		v.checkPrimitiveKind(n, at, value.KindText, "string")
	case schema.KindPath:
		v.checkPrimitiveKind(n, at, value.KindPath, "path")
	case schema.KindCode:
		v.checkCode(n, at, ty)
	case schema.KindArray:
		v.checkArray(n, id, at, ty)
	case schema.KindObject:
		v.checkObject(n, id, at, ty.Object)
	case schema.KindVariant:
		v.checkVariant(n, id, at, ty.Variant)
	case schema.KindUnion:
		v.checkUnion(n, id, at, ty.Union)
	case schema.KindAny:
		// no structural constraint.
	default:
		v.addErr(detailErr(InternalError, at, "unresolvable type kind"))
	}
}

func (v *validator) checkPrimitiveKind(n *document.Node, at path.Path, want value.Kind, wantName string) {
	if n.Content.Kind != document.ContentPrimitive || n.Content.Primitive.Kind != want {
		v.addErr(typeMismatch(at, wantName, actualKindName(n)))
	}
}

// checkNumericKind accepts any numeric primitive kind (i64/u64/f32/f64)
// against a schema's F32/F64 field: an integer literal like `42` widens
// cleanly into a floating-point field, so the two float kinds stand for a
// general "number" type rather than a byte-exact f32/f64 match.
func (v *validator) checkNumericKind(n *document.Node, at path.Path, wantName string) {
	if n.Content.Kind != document.ContentPrimitive || !isNumeric(n.Content.Primitive.Kind) {
		v.addErr(typeMismatch(at, wantName, actualKindName(n)))
	}
}

func (v *validator) checkCode(n *document.Node, at path.Path, ty schema.Type) {
	if n.Content.Kind != document.ContentPrimitive || n.Content.Primitive.Kind != value.KindText {
		v.addErr(typeMismatch(at, "code", actualKindName(n)))
		return
	}
	if !n.Content.Primitive.Text.Lang.Equal(ty.Code) {
		v.addErr(typeMismatch(at, "code("+ty.Code.String()+")", "code("+n.Content.Primitive.Text.Lang.String()+")"))
	}
}

func actualKindName(n *document.Node) string {
	switch n.Content.Kind {
	case document.ContentPrimitive:
		if n.Content.Primitive.Kind == value.KindText {
			return "string"
		}
		return n.Content.Primitive.Kind.String()
	case document.ContentMap:
		return "map"
	case document.ContentArray:
		return "array"
	case document.ContentTuple:
		return "tuple"
	case document.ContentHole:
		return "hole"
	default:
		return "?"
	}
}

func (v *validator) checkArray(n *document.Node, id document.NodeID, at path.Path, ty schema.Type) {
	if n.Content.Kind != document.ContentArray {
		v.addErr(typeMismatch(at, "array", actualKindName(n)))
		return
	}
	entries, err := v.doc.Children(id)
	if err != nil {
		v.addErr(detailErr(InternalError, at, err.Error()))
		return
	}
	elemType := schema.Any()
	if ty.Array != nil {
		elemType = *ty.Array
	}
	for i, e := range entries {
		v.validateField(schema.FieldSchema{TypeExpr: elemType}, e.ID, at.Append(path.SegArrayIndex(uint64(i)), -1))
	}
}

func (v *validator) checkObject(n *document.Node, id document.NodeID, at path.Path, obj *schema.ObjectSchema) {
	if n.Content.Kind != document.ContentMap {
		v.addErr(typeMismatch(at, "object", actualKindName(n)))
		return
	}
	if obj == nil {
		return
	}
	entries, err := v.doc.Children(id)
	if err != nil {
		v.addErr(detailErr(InternalError, at, err.Error()))
		return
	}

	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.Key.Kind != document.KeyIdent {
			continue
		}
		name := e.Key.Ident.String()
		seen[name] = true
		fs, ok := obj.Fields.Get(value.KeyCmpString(name))
		childPath := at.Append(path.SegIdent(e.Key.Ident), -1)
		if !ok {
			if obj.AdditionalProperties != nil {
				v.validateField(schema.FieldSchema{TypeExpr: *obj.AdditionalProperties}, e.ID, childPath)
				continue
			}
			v.addErr(unexpectedField(at, name))
			continue
		}
		v.validateField(fs, e.ID, childPath)
	}

	for _, key := range obj.Fields.Keys() {
		name := key.String()
		if len(name) > 0 && name[0] == '$' {
			continue // meta-extension field schema; checked by checkExtensions, not here.
		}
		if seen[name] {
			continue
		}
		fs, _ := obj.Fields.Get(key)
		if fs.Optional || fs.Default != nil {
			continue
		}
		v.addErr(requiredFieldMissing(at, name))
	}
}

func (v *validator) checkVariant(n *document.Node, id document.NodeID, at path.Path, enum *schema.EnumSchema) {
	if n.Content.Kind != document.ContentMap {
		v.addErr(detailErr(InvalidVariantDiscriminator, at, "variant value is not a map, got "+actualKindName(n)))
		return
	}
	if enum == nil {
		return
	}
	switch enum.Representation {
	case schema.RepresentationExternal:
		v.checkExternalVariant(n, id, at, enum)
	case schema.RepresentationInternal:
		v.checkInternalVariant(n, id, at, enum)
	case schema.RepresentationAdjacent:
		v.checkAdjacentVariant(n, id, at, enum)
	}
}

func (v *validator) checkExternalVariant(n *document.Node, id document.NodeID, at path.Path, enum *schema.EnumSchema) {
	entries, err := v.doc.Children(id)
	if err != nil {
		v.addErr(detailErr(InternalError, at, err.Error()))
		return
	}
	var named []document.Entry
	for _, e := range entries {
		if e.Key.Kind == document.KeyIdent {
			named = append(named, e)
		}
	}
	if len(named) != 1 {
		v.addErr(detailErr(MissingVariantTag, at, "external representation requires exactly one entry"))
		return
	}
	name := named[0].Key.Ident.String()
	obj, ok := enum.Variants.Get(value.KeyCmpString(name))
	if !ok {
		v.addErr(unknownVariant(at, name))
		return
	}
	v.checkObject(v.doc.MustNode(named[0].ID), named[0].ID, at.Append(path.SegIdent(named[0].Key.Ident), -1), obj)
}

func (v *validator) checkInternalVariant(n *document.Node, id document.NodeID, at path.Path, enum *schema.EnumSchema) {
	tagID, ok, err := v.doc.MapGet(id, document.KeyFromIdent(identUnchecked(enum.Tag)))
	if err != nil {
		v.addErr(detailErr(InternalError, at, err.Error()))
		return
	}
	if !ok {
		v.addErr(detailErr(MissingVariantTag, at, enum.Tag))
		return
	}
	tagNode := v.doc.MustNode(tagID)
	if tagNode.Content.Kind != document.ContentPrimitive || tagNode.Content.Primitive.Kind != value.KindText {
		v.addErr(detailErr(InvalidVariantDiscriminator, at, enum.Tag))
		return
	}
	name := tagNode.Content.Primitive.Text.Content
	obj, ok := enum.Variants.Get(value.KeyCmpString(name))
	if !ok {
		v.addErr(unknownVariant(at, name))
		return
	}
	v.checkObject(v.doc.MustNode(id), id, at, obj)
}

func (v *validator) checkAdjacentVariant(n *document.Node, id document.NodeID, at path.Path, enum *schema.EnumSchema) {
	tagID, ok, err := v.doc.MapGet(id, document.KeyFromIdent(identUnchecked(enum.Tag)))
	if err != nil {
		v.addErr(detailErr(InternalError, at, err.Error()))
		return
	}
	if !ok {
		v.addErr(detailErr(MissingVariantTag, at, enum.Tag))
		return
	}
	tagNode := v.doc.MustNode(tagID)
	if tagNode.Content.Kind != document.ContentPrimitive || tagNode.Content.Primitive.Kind != value.KindText {
		v.addErr(detailErr(InvalidVariantDiscriminator, at, enum.Tag))
		return
	}
	name := tagNode.Content.Primitive.Text.Content
	obj, ok := enum.Variants.Get(value.KeyCmpString(name))
	if !ok {
		v.addErr(unknownVariant(at, name))
		return
	}
	contentID, ok, err := v.doc.MapGet(id, document.KeyFromIdent(identUnchecked(enum.Content)))
	if err != nil {
		v.addErr(detailErr(InternalError, at, err.Error()))
		return
	}
	if !ok {
		v.addErr(requiredFieldMissing(at, enum.Content))
		return
	}
	v.checkObject(v.doc.MustNode(contentID), contentID, at.Append(path.SegIdent(identUnchecked(enum.Content)), -1), obj)
}

func (v *validator) checkUnion(n *document.Node, id document.NodeID, at path.Path, members []schema.Type) {
	successes := 0
	var lastErrs []*Error
	for _, m := range members {
		probe := &validator{doc: v.doc, ds: v.ds, opts: v.opts, cascades: v.cascades}
		probe.validateField(schema.FieldSchema{TypeExpr: m}, id, at)
		if len(probe.errs) == 0 {
			successes++
		} else {
			lastErrs = probe.errs
		}
	}
	switch {
	case successes == 1:
		// exactly one member matched cleanly; nothing to report.
	case successes > 1:
		v.addErr(detailErr(TypeMismatch, at, "ambiguous union: more than one member matched"))
	default:
		if len(lastErrs) > 0 {
			v.addErr(lastErrs[len(lastErrs)-1])
		} else {
			v.addErr(detailErr(TypeMismatch, at, "no union member matched"))
		}
	}
}

func (v *validator) checkConstraints(fs schema.FieldSchema, n *document.Node, at path.Path) {
	c := fs.Constraints
	if n.Content.Kind != document.ContentPrimitive && n.Content.Kind != document.ContentArray {
		return
	}

	if n.Content.Kind == document.ContentPrimitive && n.Content.Primitive.Kind == value.KindText {
		s := n.Content.Primitive.Text.Content
		if c.MinLength != nil && len(s) < *c.MinLength {
			v.addErr(detailErr(StringLengthViolation, at, "shorter than minimum length"))
		}
		if c.MaxLength != nil && len(s) > *c.MaxLength {
			v.addErr(detailErr(StringLengthViolation, at, "longer than maximum length"))
		}
		if c.Pattern != "" {
			re, err := regexp.Compile(c.Pattern)
			if err != nil {
				v.addErr(detailErr(InvalidSchemaPattern, at, err.Error()))
			} else if !re.MatchString(s) {
				v.addErr(detailErr(StringPatternViolation, at, c.Pattern))
			}
		}
	}

	if n.Content.Kind == document.ContentPrimitive && isNumeric(n.Content.Primitive.Kind) {
		f := numericValue(n.Content.Primitive)
		if c.Min != nil && f < *c.Min {
			v.addErr(detailErr(NumberRangeViolation, at, "below minimum"))
		}
		if c.Max != nil && f > *c.Max {
			v.addErr(detailErr(NumberRangeViolation, at, "above maximum"))
		}
	}

	if n.Content.Kind == document.ContentArray {
		if c.MinLength != nil && len(n.Content.Array) < *c.MinLength {
			v.addErr(detailErr(ArrayLengthViolation, at, "shorter than minimum length"))
		}
		if c.MaxLength != nil && len(n.Content.Array) > *c.MaxLength {
			v.addErr(detailErr(ArrayLengthViolation, at, "longer than maximum length"))
		}
		if c.Unique {
			if !v.arrayIsUnique(n.Content.Array) {
				v.addErr(detailErr(ArrayUniqueViolation, at, "duplicate elements"))
			}
		}
	}

	if len(c.Values) > 0 {
		if kv, ok := value.FromValue(n.Content.Primitive); ok {
			allowed := false
			for _, want := range c.Values {
				if want == kv {
					allowed = true
					break
				}
			}
			if !allowed {
				v.addErr(detailErr(InvalidValue, at, "value is not one of the enumerated $values"))
			}
		}
	}
}

func (v *validator) arrayIsUnique(ids []document.NodeID) bool {
	seen := make(map[value.KeyCmpValue]bool, len(ids))
	for _, id := range ids {
		n, err := v.doc.Node(id)
		if err != nil || n.Content.Kind != document.ContentPrimitive {
			continue
		}
		kv, ok := value.FromValue(n.Content.Primitive)
		if !ok {
			continue
		}
		if seen[kv] {
			return false
		}
		seen[kv] = true
	}
	return true
}

// checkExtensions checks extension rules: every $k
// extension on n must have a matching MetaExtension(k) field schema in the
// governing object schema (here, the object the resolved type itself
// describes, looked up by the "$"+k convention extraction uses), else
// UnknownExtension; a deprecated field schema present on the node emits
// DeprecatedField.
func (v *validator) checkExtensions(fs schema.FieldSchema, n *document.Node, id document.NodeID, at path.Path) {
	if fs.Deprecated {
		v.addWarn(deprecatedField(at, at.String()))
	}
	governing := governingObjectOf(v.resolveEffectiveType(fs.TypeExpr, at))

	exts, err := v.doc.Extensions(id)
	if err != nil {
		return
	}
	for _, e := range exts {
		if e.Key.Kind != document.KeyExtension {
			continue
		}
		name := e.Key.Ident.String()
		if governing == nil {
			v.addWarn(unknownExtension(at, name))
			continue
		}
		extFS, ok := governing.Fields.Get(value.KeyCmpString("$" + name))
		if !ok {
			v.addWarn(unknownExtension(at, name))
			continue
		}
		if extFS.Deprecated {
			v.addWarn(deprecatedField(at, "$"+name))
		}
	}
}

func governingObjectOf(ty schema.Type) *schema.ObjectSchema {
	switch ty.Kind {
	case schema.KindObject:
		return ty.Object
	case schema.KindCascadeType:
		if ty.CascadeType != nil {
			return governingObjectOf(*ty.CascadeType)
		}
	}
	return nil
}

func isNumeric(k value.Kind) bool {
	switch k {
	case value.KindI64, value.KindU64, value.KindF32, value.KindF64:
		return true
	default:
		return false
	}
}

// pathKey renders at in the same dotted form schema/extract uses to key
// CascadeMap, so cascade types registered during extraction resolve against
// the paths the validator visits.
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

func numericValue(v value.Value) float64 {
	switch v.Kind {
	case value.KindI64:
		return float64(v.I64)
	case value.KindU64:
		return float64(v.U64)
	case value.KindF32:
		return float64(v.F32)
	case value.KindF64:
		return v.F64
	default:
		return 0
	}
}
