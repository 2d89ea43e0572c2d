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

package extract

import (
	"testing"

	"github.com/eure-lang/eure-go/document/constructor"
	"github.com/eure-lang/eure-go/ident"
	"github.com/eure-lang/eure-go/path"
	"github.com/eure-lang/eure-go/schema"
	"github.com/eure-lang/eure-go/value"
	"github.com/go-quicktest/qt"
)

func navIdent(t *testing.T, c *constructor.Constructor, name string) {
	t.Helper()
	if err := c.Navigate(path.SegIdent(ident.MustNew(name))); err != nil {
		t.Fatalf("navigate %q: %v", name, err)
	}
}

func navExt(t *testing.T, c *constructor.Constructor, name string) {
	t.Helper()
	if err := c.Navigate(path.SegExtension(ident.MustNew(name))); err != nil {
		t.Fatalf("navigate extension %q: %v", name, err)
	}
}

// TestExtractSelfDescribing covers a self-describing document: two fields
// whose only content is a $type extension naming a primitive path.
func TestExtractSelfDescribing(t *testing.T) {
	c := constructor.New()

	s1 := c.BeginScope()
	navIdent(t, c, "company")
	navIdent(t, c, "department")
	navIdent(t, c, "budget")
	navExt(t, c, "type")
	if err := c.BindPrimitive(value.PathValue(path.New(path.SegIdent(ident.MustNew("number"))))); err != nil {
		t.Fatal(err)
	}
	if err := c.EndScope(s1); err != nil {
		t.Fatal(err)
	}

	s2 := c.BeginScope()
	navIdent(t, c, "company")
	navIdent(t, c, "department")
	navIdent(t, c, "manager")
	navExt(t, c, "type")
	if err := c.BindPrimitive(value.PathValue(path.New(path.SegIdent(ident.MustNew("string"))))); err != nil {
		t.Fatal(err)
	}
	if err := c.EndScope(s2); err != nil {
		t.Fatal(err)
	}

	doc := c.Finish()

	ds, isPure, _, err := ExtractSchemaFromDocument(doc)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(isPure))

	companyField, ok := ds.Root.Fields.Get(value.KeyCmpString("company"))
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(companyField.TypeExpr.Kind, schema.KindObject))

	deptField, ok := companyField.TypeExpr.Object.Fields.Get(value.KeyCmpString("department"))
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(deptField.TypeExpr.Kind, schema.KindObject))

	budgetField, ok := deptField.TypeExpr.Object.Fields.Get(value.KeyCmpString("budget"))
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(budgetField.TypeExpr.Kind, schema.KindF64))

	managerField, ok := deptField.TypeExpr.Object.Fields.Get(value.KeyCmpString("manager"))
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(managerField.TypeExpr.Kind, schema.KindString))
}

// TestExtractMixedDocumentIsNotPure confirms a document with actual bound
// data (not just schema metadata) reports is_pure_schema = false.
func TestExtractMixedDocumentIsNotPure(t *testing.T) {
	c := constructor.New()
	s := c.BeginScope()
	navIdent(t, c, "answer")
	if err := c.BindPrimitive(value.I64(42)); err != nil {
		t.Fatal(err)
	}
	if err := c.EndScope(s); err != nil {
		t.Fatal(err)
	}
	doc := c.Finish()

	_, isPure, _, err := ExtractSchemaFromDocument(doc)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsFalse(isPure))
}

// TestDocumentToSchemaNamedTypesAndCascade covers the $types/$cascade-type
// root extensions.
func TestDocumentToSchemaNamedTypesAndCascade(t *testing.T) {
	c := constructor.New()
	s := c.BeginScope()
	navExt(t, c, "types")
	navIdent(t, c, "ID")
	if err := c.BindPrimitive(value.PathValue(path.New(path.SegIdent(ident.MustNew("string"))))); err != nil {
		t.Fatal(err)
	}
	if err := c.EndScope(s); err != nil {
		t.Fatal(err)
	}

	s2 := c.BeginScope()
	navExt(t, c, "cascade-type")
	if err := c.BindPrimitive(value.PathValue(path.New(path.SegIdent(ident.MustNew("string"))))); err != nil {
		t.Fatal(err)
	}
	if err := c.EndScope(s2); err != nil {
		t.Fatal(err)
	}

	doc := c.Finish()
	ds, err := DocumentToSchema(doc)
	qt.Assert(t, qt.IsNil(err))

	ty, ok := ds.Types.Get("ID")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(ty.Kind, schema.KindString))

	cascadeTy, ok := ds.CascadeTypes.Get("")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(cascadeTy.Kind, schema.KindString))
}

// TestExtractVariantsDefaultExternalRepresentation covers a `$variants`
// extension with no accompanying `$variant` configuration, which defaults to
// external representation: each variant name is read as a nested object
// schema in its own right.
func TestExtractVariantsDefaultExternalRepresentation(t *testing.T) {
	c := constructor.New()
	s := c.BeginScope()
	navIdent(t, c, "pet")
	navExt(t, c, "variants")
	if err := c.BindEmptyMap(); err != nil {
		t.Fatal(err)
	}

	dog := c.BeginScope()
	navIdent(t, c, "dog")
	if err := c.BindEmptyMap(); err != nil {
		t.Fatal(err)
	}
	dogName := c.BeginScope()
	navIdent(t, c, "name")
	navExt(t, c, "type")
	if err := c.BindPrimitive(value.PathValue(path.New(path.SegIdent(ident.MustNew("string"))))); err != nil {
		t.Fatal(err)
	}
	if err := c.EndScope(dogName); err != nil {
		t.Fatal(err)
	}
	if err := c.EndScope(dog); err != nil {
		t.Fatal(err)
	}

	cat := c.BeginScope()
	navIdent(t, c, "cat")
	if err := c.BindEmptyMap(); err != nil {
		t.Fatal(err)
	}
	catLives := c.BeginScope()
	navIdent(t, c, "lives")
	navExt(t, c, "type")
	if err := c.BindPrimitive(value.PathValue(path.New(path.SegIdent(ident.MustNew("number"))))); err != nil {
		t.Fatal(err)
	}
	if err := c.EndScope(catLives); err != nil {
		t.Fatal(err)
	}
	if err := c.EndScope(cat); err != nil {
		t.Fatal(err)
	}

	if err := c.EndScope(s); err != nil {
		t.Fatal(err)
	}
	doc := c.Finish()

	ds, err := DocumentToSchema(doc)
	qt.Assert(t, qt.IsNil(err))

	petField, ok := ds.Root.Fields.Get(value.KeyCmpString("pet"))
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(petField.TypeExpr.Kind, schema.KindVariant))

	enum := petField.TypeExpr.Variant
	qt.Assert(t, qt.Equals(enum.Representation, schema.RepresentationExternal))

	dogObj, ok := enum.Variants.Get(value.KeyCmpString("dog"))
	qt.Assert(t, qt.IsTrue(ok))
	nameField, ok := dogObj.Fields.Get(value.KeyCmpString("name"))
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(nameField.TypeExpr.Kind, schema.KindString))

	catObj, ok := enum.Variants.Get(value.KeyCmpString("cat"))
	qt.Assert(t, qt.IsTrue(ok))
	livesField, ok := catObj.Fields.Get(value.KeyCmpString("lives"))
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(livesField.TypeExpr.Kind, schema.KindF64))
}

// TestExtractVariantsInternalRepresentationWithCustomTag covers a `$variant`
// extension selecting internal representation with a custom tag name.
func TestExtractVariantsInternalRepresentationWithCustomTag(t *testing.T) {
	c := constructor.New()
	s := c.BeginScope()
	navIdent(t, c, "shape")
	navExt(t, c, "variant")
	if err := c.BindEmptyMap(); err != nil {
		t.Fatal(err)
	}
	repr := c.BeginScope()
	navIdent(t, c, "repr")
	if err := c.BindPrimitive(value.TextValue(value.Text{Content: "internal"})); err != nil {
		t.Fatal(err)
	}
	if err := c.EndScope(repr); err != nil {
		t.Fatal(err)
	}
	tag := c.BeginScope()
	navIdent(t, c, "tag")
	if err := c.BindPrimitive(value.TextValue(value.Text{Content: "kind"})); err != nil {
		t.Fatal(err)
	}
	if err := c.EndScope(tag); err != nil {
		t.Fatal(err)
	}
	if err := c.EndScope(s); err != nil {
		t.Fatal(err)
	}

	s2 := c.BeginScope()
	navIdent(t, c, "shape")
	navExt(t, c, "variants")
	if err := c.BindEmptyMap(); err != nil {
		t.Fatal(err)
	}
	circle := c.BeginScope()
	navIdent(t, c, "circle")
	if err := c.BindEmptyMap(); err != nil {
		t.Fatal(err)
	}
	radius := c.BeginScope()
	navIdent(t, c, "radius")
	navExt(t, c, "type")
	if err := c.BindPrimitive(value.PathValue(path.New(path.SegIdent(ident.MustNew("number"))))); err != nil {
		t.Fatal(err)
	}
	if err := c.EndScope(radius); err != nil {
		t.Fatal(err)
	}
	if err := c.EndScope(circle); err != nil {
		t.Fatal(err)
	}
	if err := c.EndScope(s2); err != nil {
		t.Fatal(err)
	}
	doc := c.Finish()

	ds, err := DocumentToSchema(doc)
	qt.Assert(t, qt.IsNil(err))

	shapeField, ok := ds.Root.Fields.Get(value.KeyCmpString("shape"))
	qt.Assert(t, qt.IsTrue(ok))
	enum := shapeField.TypeExpr.Variant
	qt.Assert(t, qt.Equals(enum.Representation, schema.RepresentationInternal))
	qt.Assert(t, qt.Equals(enum.Tag, "kind"))

	circleObj, ok := enum.Variants.Get(value.KeyCmpString("circle"))
	qt.Assert(t, qt.IsTrue(ok))
	radiusField, ok := circleObj.Fields.Get(value.KeyCmpString("radius"))
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(radiusField.TypeExpr.Kind, schema.KindF64))
}

// TestExtractSerdeOptions covers the document-wide `$serde` extension
// (rename-all, deny-unknown-fields).
func TestExtractSerdeOptions(t *testing.T) {
	c := constructor.New()
	s := c.BeginScope()
	navExt(t, c, "serde")
	if err := c.BindEmptyMap(); err != nil {
		t.Fatal(err)
	}
	renameAll := c.BeginScope()
	navIdent(t, c, "rename-all")
	if err := c.BindPrimitive(value.TextValue(value.Text{Content: "camelCase"})); err != nil {
		t.Fatal(err)
	}
	if err := c.EndScope(renameAll); err != nil {
		t.Fatal(err)
	}
	deny := c.BeginScope()
	navIdent(t, c, "deny-unknown-fields")
	if err := c.BindPrimitive(value.Bool(true)); err != nil {
		t.Fatal(err)
	}
	if err := c.EndScope(deny); err != nil {
		t.Fatal(err)
	}
	if err := c.EndScope(s); err != nil {
		t.Fatal(err)
	}
	doc := c.Finish()

	ds, err := DocumentToSchema(doc)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(ds.SerdeOptions.RenameAll, "camelCase"))
	qt.Assert(t, qt.IsTrue(ds.SerdeOptions.DenyUnknownFields))
}
