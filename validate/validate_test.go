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
	"testing"

	"github.com/eure-lang/eure-go/document/constructor"
	"github.com/eure-lang/eure-go/errors"
	"github.com/eure-lang/eure-go/ident"
	"github.com/eure-lang/eure-go/internal/diagnostic"
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

// TestValidateEmptySchemaNoExtensions covers an empty schema against a
// document with no extensions, which should yield no errors or warnings.
func TestValidateEmptySchemaNoExtensions(t *testing.T) {
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

	ds := schema.NewDocumentSchema()
	ds.Root.AdditionalProperties = ptrType(schema.Any())

	res := Validate(doc, ds, Options{})
	qt.Assert(t, qt.HasLen(res.Errors, 0))
	qt.Assert(t, qt.HasLen(res.Warnings, 0))
	qt.Assert(t, qt.IsTrue(res.IsValid))
}

// TestValidateSimpleBindingAgainstNumberSchema covers an integer literal
// validating cleanly against a floating-point field schema.
func TestValidateSimpleBindingAgainstNumberSchema(t *testing.T) {
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

	ds := schema.NewDocumentSchema()
	ds.Root.Fields.Set(value.KeyCmpString("answer"), schema.FieldSchema{TypeExpr: schema.F64()})

	res := Validate(doc, ds, Options{})
	qt.Assert(t, qt.HasLen(res.Errors, 0))
	qt.Assert(t, qt.IsTrue(res.IsValid))
	qt.Assert(t, qt.IsTrue(res.IsComplete))
}

// TestValidateTypeMismatch covers `enabled = "yes"` against
// `{enabled: boolean}`, which should produce exactly one TypeMismatch
// error.
func TestValidateTypeMismatch(t *testing.T) {
	c := constructor.New()
	s := c.BeginScope()
	navIdent(t, c, "enabled")
	if err := c.BindPrimitive(value.TextValue(value.Text{Content: "yes"})); err != nil {
		t.Fatal(err)
	}
	if err := c.EndScope(s); err != nil {
		t.Fatal(err)
	}
	doc := c.Finish()

	ds := schema.NewDocumentSchema()
	ds.Root.Fields.Set(value.KeyCmpString("enabled"), schema.FieldSchema{TypeExpr: schema.Bool()})

	res := Validate(doc, ds, Options{})
	qt.Assert(t, qt.HasLen(res.Errors, 1))
	qt.Assert(t, qt.Equals(res.Errors[0].ErrKind, TypeMismatch))
	qt.Assert(t, qt.Equals(res.Errors[0].Expected, "boolean"))
	qt.Assert(t, qt.Equals(res.Errors[0].Actual, "string"))
	qt.Assert(t, qt.IsFalse(res.IsValid))
}

// TestValidateOptionalFieldOmittedNoError confirms an optional field absent
// from the document produces no error.
func TestValidateOptionalFieldOmittedNoError(t *testing.T) {
	c := constructor.New()
	doc := c.Finish()

	ds := schema.NewDocumentSchema()
	ds.Root.Fields.Set(value.KeyCmpString("nickname"), schema.FieldSchema{TypeExpr: schema.String(), Optional: true})

	res := Validate(doc, ds, Options{})
	qt.Assert(t, qt.HasLen(res.Errors, 0))
}

// TestValidateRequiredFieldMissing confirms a non-optional, non-defaulted
// field absent from the document produces RequiredFieldMissing.
func TestValidateRequiredFieldMissing(t *testing.T) {
	c := constructor.New()
	doc := c.Finish()

	ds := schema.NewDocumentSchema()
	ds.Root.Fields.Set(value.KeyCmpString("name"), schema.FieldSchema{TypeExpr: schema.String()})

	res := Validate(doc, ds, Options{})
	qt.Assert(t, qt.HasLen(res.Errors, 1))
	qt.Assert(t, qt.Equals(res.Errors[0].ErrKind, RequiredFieldMissing))
	qt.Assert(t, qt.Equals(res.Errors[0].Field, "name"))
}

// TestValidateUnknownExtensionWarning covers a binding under an extension
// segment combined with the UnknownExtension warning rule.
func TestValidateUnknownExtensionWarning(t *testing.T) {
	c := constructor.New()
	s := c.BeginScope()
	navIdent(t, c, "user")
	navExt(t, c, "type")
	if err := c.BindPrimitive(value.TextValue(value.Text{Content: "Person"})); err != nil {
		t.Fatal(err)
	}
	if err := c.EndScope(s); err != nil {
		t.Fatal(err)
	}
	doc := c.Finish()

	ds := schema.NewDocumentSchema()
	userObj := schema.NewObjectSchema()
	ds.Root.Fields.Set(value.KeyCmpString("user"), schema.FieldSchema{TypeExpr: schema.ObjectType(userObj)})

	res := Validate(doc, ds, Options{})
	qt.Assert(t, qt.HasLen(res.Warnings, 1))
	qt.Assert(t, qt.Equals(res.Warnings[0].WarnKind, UnknownExtension))
	qt.Assert(t, qt.Equals(res.Warnings[0].Name, "type"))
}

// TestValidateCascadeTypeAppliesToDescendants confirms a cascade type set
// on the schema is visible during validation: a descendant of "tags" typed
// only as Any picks up the registered cascade type `string` and a
// string value there is accepted.
func TestValidateCascadeTypeAppliesToDescendants(t *testing.T) {
	c := constructor.New()
	s := c.BeginScope()
	navIdent(t, c, "tags")
	navIdent(t, c, "first")
	if err := c.BindPrimitive(value.TextValue(value.Text{Content: "hello"})); err != nil {
		t.Fatal(err)
	}
	if err := c.EndScope(s); err != nil {
		t.Fatal(err)
	}
	doc := c.Finish()

	ds := schema.NewDocumentSchema()
	tagsObj := schema.NewObjectSchema()
	tagsObj.AdditionalProperties = ptrType(schema.Any())
	ds.Root.Fields.Set(value.KeyCmpString("tags"), schema.FieldSchema{TypeExpr: schema.ObjectType(tagsObj)})
	ds.CascadeTypes.Set("tags", schema.String())

	res := Validate(doc, ds, Options{})
	qt.Assert(t, qt.HasLen(res.Errors, 0))
}

// TestValidateExternalVariant covers the external-representation variant
// form: a single named entry selects the variant, and that entry's node is
// checked against the matching variant's object schema.
func TestValidateExternalVariant(t *testing.T) {
	dogObj := schema.NewObjectSchema()
	dogObj.Fields.Set(value.KeyCmpString("name"), schema.FieldSchema{TypeExpr: schema.String()})
	catObj := schema.NewObjectSchema()
	catObj.Fields.Set(value.KeyCmpString("lives"), schema.FieldSchema{TypeExpr: schema.I64()})

	enum := schema.NewEnumSchema(schema.RepresentationExternal)
	enum.Variants.Set(value.KeyCmpString("dog"), dogObj)
	enum.Variants.Set(value.KeyCmpString("cat"), catObj)

	ds := schema.NewDocumentSchema()
	ds.Root.Fields.Set(value.KeyCmpString("pet"), schema.FieldSchema{TypeExpr: schema.VariantType(enum)})

	t.Run("valid", func(t *testing.T) {
		c := constructor.New()
		s := c.BeginScope()
		navIdent(t, c, "pet")
		navIdent(t, c, "dog")
		navIdent(t, c, "name")
		if err := c.BindPrimitive(value.TextValue(value.Text{Content: "Rex"})); err != nil {
			t.Fatal(err)
		}
		if err := c.EndScope(s); err != nil {
			t.Fatal(err)
		}
		doc := c.Finish()

		res := Validate(doc, ds, Options{})
		qt.Assert(t, qt.HasLen(res.Errors, 0))
	})

	t.Run("unknown variant", func(t *testing.T) {
		c := constructor.New()
		s := c.BeginScope()
		navIdent(t, c, "pet")
		navIdent(t, c, "fish")
		if err := c.BindEmptyMap(); err != nil {
			t.Fatal(err)
		}
		if err := c.EndScope(s); err != nil {
			t.Fatal(err)
		}
		doc := c.Finish()

		res := Validate(doc, ds, Options{})
		qt.Assert(t, qt.HasLen(res.Errors, 1))
		qt.Assert(t, qt.Equals(res.Errors[0].ErrKind, UnknownVariant))
		qt.Assert(t, qt.Equals(res.Errors[0].Name, "fish"))
	})
}

// TestValidateInternalVariant covers the internal-representation variant
// form: the discriminant is a sibling field inside the same object.
func TestValidateInternalVariant(t *testing.T) {
	circleObj := schema.NewObjectSchema()
	circleObj.Fields.Set(value.KeyCmpString("kind"), schema.FieldSchema{TypeExpr: schema.Any()})
	circleObj.Fields.Set(value.KeyCmpString("radius"), schema.FieldSchema{TypeExpr: schema.F64()})

	enum := schema.NewEnumSchema(schema.RepresentationInternal)
	enum.Tag = "kind"
	enum.Variants.Set(value.KeyCmpString("circle"), circleObj)

	ds := schema.NewDocumentSchema()
	ds.Root.Fields.Set(value.KeyCmpString("shape"), schema.FieldSchema{TypeExpr: schema.VariantType(enum)})

	t.Run("valid", func(t *testing.T) {
		c := constructor.New()
		s := c.BeginScope()
		navIdent(t, c, "shape")
		inner := c.BeginScope()
		navIdent(t, c, "kind")
		if err := c.BindPrimitive(value.TextValue(value.Text{Content: "circle"})); err != nil {
			t.Fatal(err)
		}
		if err := c.EndScope(inner); err != nil {
			t.Fatal(err)
		}
		inner2 := c.BeginScope()
		navIdent(t, c, "radius")
		if err := c.BindPrimitive(value.F64(1.5)); err != nil {
			t.Fatal(err)
		}
		if err := c.EndScope(inner2); err != nil {
			t.Fatal(err)
		}
		if err := c.EndScope(s); err != nil {
			t.Fatal(err)
		}
		doc := c.Finish()

		res := Validate(doc, ds, Options{})
		qt.Assert(t, qt.HasLen(res.Errors, 0))
	})

	t.Run("missing tag", func(t *testing.T) {
		c := constructor.New()
		s := c.BeginScope()
		navIdent(t, c, "shape")
		navIdent(t, c, "radius")
		if err := c.BindPrimitive(value.F64(1.5)); err != nil {
			t.Fatal(err)
		}
		if err := c.EndScope(s); err != nil {
			t.Fatal(err)
		}
		doc := c.Finish()

		res := Validate(doc, ds, Options{})
		qt.Assert(t, qt.HasLen(res.Errors, 1))
		qt.Assert(t, qt.Equals(res.Errors[0].ErrKind, MissingVariantTag))
	})
}

// TestValidateAdjacentVariant covers the adjacent-representation variant
// form: the discriminant and the payload are separate sibling fields.
func TestValidateAdjacentVariant(t *testing.T) {
	textObj := schema.NewObjectSchema()
	textObj.Fields.Set(value.KeyCmpString("body"), schema.FieldSchema{TypeExpr: schema.String()})

	enum := schema.NewEnumSchema(schema.RepresentationAdjacent)
	enum.Tag, enum.Content = "type", "payload"
	enum.Variants.Set(value.KeyCmpString("text"), textObj)

	ds := schema.NewDocumentSchema()
	ds.Root.Fields.Set(value.KeyCmpString("msg"), schema.FieldSchema{TypeExpr: schema.VariantType(enum)})

	t.Run("valid", func(t *testing.T) {
		c := constructor.New()
		s := c.BeginScope()
		navIdent(t, c, "msg")
		inner := c.BeginScope()
		navIdent(t, c, "type")
		if err := c.BindPrimitive(value.TextValue(value.Text{Content: "text"})); err != nil {
			t.Fatal(err)
		}
		if err := c.EndScope(inner); err != nil {
			t.Fatal(err)
		}
		inner2 := c.BeginScope()
		navIdent(t, c, "payload")
		if err := c.BindEmptyMap(); err != nil {
			t.Fatal(err)
		}
		inner3 := c.BeginScope()
		navIdent(t, c, "body")
		if err := c.BindPrimitive(value.TextValue(value.Text{Content: "hi"})); err != nil {
			t.Fatal(err)
		}
		if err := c.EndScope(inner3); err != nil {
			t.Fatal(err)
		}
		if err := c.EndScope(inner2); err != nil {
			t.Fatal(err)
		}
		if err := c.EndScope(s); err != nil {
			t.Fatal(err)
		}
		doc := c.Finish()

		res := Validate(doc, ds, Options{})
		qt.Assert(t, qt.HasLen(res.Errors, 0))
	})

	t.Run("missing content", func(t *testing.T) {
		c := constructor.New()
		s := c.BeginScope()
		navIdent(t, c, "msg")
		inner := c.BeginScope()
		navIdent(t, c, "type")
		if err := c.BindPrimitive(value.TextValue(value.Text{Content: "text"})); err != nil {
			t.Fatal(err)
		}
		if err := c.EndScope(inner); err != nil {
			t.Fatal(err)
		}
		if err := c.EndScope(s); err != nil {
			t.Fatal(err)
		}
		doc := c.Finish()

		res := Validate(doc, ds, Options{})
		qt.Assert(t, qt.HasLen(res.Errors, 1))
		qt.Assert(t, qt.Equals(res.Errors[0].ErrKind, RequiredFieldMissing))
		qt.Assert(t, qt.Equals(res.Errors[0].Field, "payload"))
	})
}

// TestValidateUnionAmbiguousMatch covers a union where more than one member
// validates cleanly: "any" and "string" both accept a bound text value, so
// the union cannot pick a single member.
func TestValidateUnionAmbiguousMatch(t *testing.T) {
	c := constructor.New()
	s := c.BeginScope()
	navIdent(t, c, "label")
	if err := c.BindPrimitive(value.TextValue(value.Text{Content: "hi"})); err != nil {
		t.Fatal(err)
	}
	if err := c.EndScope(s); err != nil {
		t.Fatal(err)
	}
	doc := c.Finish()

	ds := schema.NewDocumentSchema()
	ds.Root.Fields.Set(value.KeyCmpString("label"), schema.FieldSchema{TypeExpr: schema.UnionType(schema.Any(), schema.String())})

	res := Validate(doc, ds, Options{})
	qt.Assert(t, qt.HasLen(res.Errors, 1))
	qt.Assert(t, qt.Equals(res.Errors[0].ErrKind, TypeMismatch))
}

// TestValidateUnionNoMatch covers a union where no member validates cleanly.
func TestValidateUnionNoMatch(t *testing.T) {
	c := constructor.New()
	s := c.BeginScope()
	navIdent(t, c, "flag")
	if err := c.BindPrimitive(value.TextValue(value.Text{Content: "nope"})); err != nil {
		t.Fatal(err)
	}
	if err := c.EndScope(s); err != nil {
		t.Fatal(err)
	}
	doc := c.Finish()

	ds := schema.NewDocumentSchema()
	ds.Root.Fields.Set(value.KeyCmpString("flag"), schema.FieldSchema{TypeExpr: schema.UnionType(schema.Bool(), schema.I64())})

	res := Validate(doc, ds, Options{})
	qt.Assert(t, qt.HasLen(res.Errors, 1))
	qt.Assert(t, qt.Equals(res.Errors[0].ErrKind, TypeMismatch))
}

// TestValidateConstraints table-drives the value-level constraint checks:
// string length/pattern, numeric range, array length/uniqueness, and
// enumerated $values.
func TestValidateConstraints(t *testing.T) {
	tests := []struct {
		name    string
		build   func(t *testing.T, c *constructor.Constructor)
		fs      schema.FieldSchema
		wantErr ErrorKind
	}{
		{
			name: "string shorter than minimum length",
			build: func(t *testing.T, c *constructor.Constructor) {
				if err := c.BindPrimitive(value.TextValue(value.Text{Content: "hi"})); err != nil {
					t.Fatal(err)
				}
			},
			fs: schema.FieldSchema{TypeExpr: schema.String(), Constraints: schema.Constraints{MinLength: intPtr(5)}},
			wantErr: StringLengthViolation,
		},
		{
			name: "string fails pattern",
			build: func(t *testing.T, c *constructor.Constructor) {
				if err := c.BindPrimitive(value.TextValue(value.Text{Content: "abc123"})); err != nil {
					t.Fatal(err)
				}
			},
			fs: schema.FieldSchema{TypeExpr: schema.String(), Constraints: schema.Constraints{Pattern: `^[a-z]+$`}},
			wantErr: StringPatternViolation,
		},
		{
			name: "number above maximum",
			build: func(t *testing.T, c *constructor.Constructor) {
				if err := c.BindPrimitive(value.I64(100)); err != nil {
					t.Fatal(err)
				}
			},
			fs: schema.FieldSchema{TypeExpr: schema.I64(), Constraints: schema.Constraints{Max: floatPtr(10)}},
			wantErr: NumberRangeViolation,
		},
		{
			name: "array longer than maximum length",
			build: func(t *testing.T, c *constructor.Constructor) {
				if err := c.BindEmptyArray(); err != nil {
					t.Fatal(err)
				}
				for _, v := range []int64{1, 2, 3} {
					s := c.BeginScope()
					if err := c.Navigate(path.SegArrayAppend()); err != nil {
						t.Fatal(err)
					}
					if err := c.BindPrimitive(value.I64(v)); err != nil {
						t.Fatal(err)
					}
					if err := c.EndScope(s); err != nil {
						t.Fatal(err)
					}
				}
			},
			fs: schema.FieldSchema{TypeExpr: schema.ArrayType(schema.I64()), Constraints: schema.Constraints{MaxLength: intPtr(2)}},
			wantErr: ArrayLengthViolation,
		},
		{
			name: "array has duplicate elements",
			build: func(t *testing.T, c *constructor.Constructor) {
				if err := c.BindEmptyArray(); err != nil {
					t.Fatal(err)
				}
				for _, v := range []int64{1, 1} {
					s := c.BeginScope()
					if err := c.Navigate(path.SegArrayAppend()); err != nil {
						t.Fatal(err)
					}
					if err := c.BindPrimitive(value.I64(v)); err != nil {
						t.Fatal(err)
					}
					if err := c.EndScope(s); err != nil {
						t.Fatal(err)
					}
				}
			},
			fs: schema.FieldSchema{TypeExpr: schema.ArrayType(schema.I64()), Constraints: schema.Constraints{Unique: true}},
			wantErr: ArrayUniqueViolation,
		},
		{
			name: "value not in enumerated values",
			build: func(t *testing.T, c *constructor.Constructor) {
				if err := c.BindPrimitive(value.TextValue(value.Text{Content: "purple"})); err != nil {
					t.Fatal(err)
				}
			},
			fs: schema.FieldSchema{TypeExpr: schema.String(), Constraints: schema.Constraints{
				Values: []value.KeyCmpValue{value.KeyCmpString("red"), value.KeyCmpString("blue")},
			}},
			wantErr: InvalidValue,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := constructor.New()
			s := c.BeginScope()
			navIdent(t, c, "field")
			tc.build(t, c)
			if err := c.EndScope(s); err != nil {
				t.Fatal(err)
			}
			doc := c.Finish()

			ds := schema.NewDocumentSchema()
			ds.Root.Fields.Set(value.KeyCmpString("field"), tc.fs)

			res := Validate(doc, ds, Options{})
			qt.Assert(t, qt.HasLen(res.Errors, 1))
			qt.Assert(t, qt.Equals(res.Errors[0].ErrKind, tc.wantErr))
		})
	}
}

// TestScenarios runs every txtar scenario under testdata through the
// validator and checks its rendered diagnostics against the "want" section,
// exactly as internal/diagnostic's own scenario_test.go does — here exercised
// directly against the package under test rather than only as a debug
// rendering demonstration.
func TestScenarios(t *testing.T) {
	diagnostic.Run(t, "testdata", func(t *testing.T, sc *diagnostic.Scenario) {
		doc := sc.Doc.Finish()
		res := Validate(doc, sc.Schema, Options{})

		diags := make([]errors.Error, 0, len(res.Errors)+len(res.Warnings))
		for _, e := range res.Errors {
			diags = append(diags, e)
		}
		for _, w := range res.Warnings {
			diags = append(diags, w)
		}

		sc.Check(t, diagnostic.Lines(diagnostic.Collect(diags)))
	})
}

func intPtr(n int) *int            { return &n }
func floatPtr(f float64) *float64 { return &f }

func ptrType(t schema.Type) *schema.Type { return &t }
