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

package diagnostic

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/tools/txtar"

	"github.com/eure-lang/eure-go/document/constructor"
	"github.com/eure-lang/eure-go/ident"
	"github.com/eure-lang/eure-go/path"
	"github.com/eure-lang/eure-go/schema"
	"github.com/eure-lang/eure-go/value"
)

// Scenario is one txtar-driven test case, adapted from the teacher's
// internal/cuetxtar.Test: a .txtar archive supplies a "schema" section (a
// flat field-name:type[,optional] list), a "doc" section (a flat
// field-name=literal list), and a "want" section holding the expected
// Lines() output. Scenarios model flat, root-level object schemas only —
// nested objects, variants, and extensions are exercised by the
// table-driven _test.go files in schema/extract and validate instead.
type Scenario struct {
	Name   string
	Schema *schema.DocumentSchema
	Doc    *constructor.Constructor // unfinished; call Finish() once bindings are done
	Want   []string

	path string
	arc  *txtar.Archive
}

// Run walks root for *.txtar files and invokes f once per scenario with a
// *testing.T scoped to that file's base name.
func Run(t *testing.T, root string, f func(t *testing.T, sc *Scenario)) {
	t.Helper()

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(p) != ".txtar" {
			return nil
		}
		name := strings.TrimSuffix(filepath.Base(p), ".txtar")
		t.Run(name, func(t *testing.T) {
			sc, err := loadScenario(p)
			if err != nil {
				t.Fatalf("loading scenario: %v", err)
			}
			f(t, sc)
		})
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func loadScenario(p string) (*Scenario, error) {
	arc, err := txtar.ParseFile(p)
	if err != nil {
		return nil, err
	}
	sc := &Scenario{
		Name: strings.TrimSuffix(filepath.Base(p), ".txtar"),
		path: p,
		arc:  arc,
	}

	schemaSrc := section(arc, "schema")
	docSrc := section(arc, "doc")
	wantSrc := section(arc, "want")

	ds, err := parseSchemaSection(schemaSrc)
	if err != nil {
		return nil, fmt.Errorf("schema section: %w", err)
	}
	sc.Schema = ds

	c := constructor.New()
	if err := parseDocSection(c, docSrc); err != nil {
		return nil, fmt.Errorf("doc section: %w", err)
	}
	sc.Doc = c

	if wantSrc != "" {
		sc.Want = strings.Split(strings.TrimRight(wantSrc, "\n"), "\n")
	}
	return sc, nil
}

func section(arc *txtar.Archive, name string) string {
	for _, f := range arc.Files {
		if f.Name == name {
			return string(f.Data)
		}
	}
	return ""
}

// parseSchemaSection reads lines of the form "name: type" or
// "name: type, optional", one root-level field per line. Blank lines and
// lines starting with '#' are ignored.
func parseSchemaSection(src string) (*schema.DocumentSchema, error) {
	ds := schema.NewDocumentSchema()
	for _, line := range splitLines(src) {
		name, rest, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("malformed schema line %q", line)
		}
		name = strings.TrimSpace(name)
		parts := strings.Split(rest, ",")
		typeName := strings.TrimSpace(parts[0])
		ty, ok := schemaTypeByName(typeName)
		if !ok {
			return nil, fmt.Errorf("unknown schema type %q", typeName)
		}
		fs := schema.FieldSchema{TypeExpr: ty}
		for _, flag := range parts[1:] {
			if strings.TrimSpace(flag) == "optional" {
				fs.Optional = true
			}
		}
		ds.Root.Fields.Set(value.KeyCmpString(name), fs)
	}
	return ds, nil
}

func schemaTypeByName(name string) (schema.Type, bool) {
	switch name {
	case "null":
		return schema.Null(), true
	case "bool", "boolean":
		return schema.Bool(), true
	case "i64", "int":
		return schema.I64(), true
	case "u64", "uint":
		return schema.U64(), true
	case "f32":
		return schema.F32(), true
	case "f64", "number", "float":
		return schema.F64(), true
	case "string":
		return schema.String(), true
	case "any":
		return schema.Any(), true
	default:
		return schema.Type{}, false
	}
}

// parseDocSection reads lines of the form "name = literal", where literal
// is a quoted string, an integer, a float, true/false, or null, and binds
// each directly at the document root via the constructor.
func parseDocSection(c *constructor.Constructor, src string) error {
	for _, line := range splitLines(src) {
		name, lit, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("malformed doc line %q", line)
		}
		name = strings.TrimSpace(name)
		lit = strings.TrimSpace(lit)

		s := c.BeginScope()
		if err := c.Navigate(path.SegIdent(ident.MustNew(name))); err != nil {
			return err
		}
		v, err := parseLiteral(lit)
		if err != nil {
			return err
		}
		if err := c.BindPrimitive(v); err != nil {
			return err
		}
		if err := c.EndScope(s); err != nil {
			return err
		}
	}
	return nil
}

func parseLiteral(lit string) (value.Value, error) {
	switch {
	case lit == "null":
		return value.Null(), nil
	case lit == "true":
		return value.Bool(true), nil
	case lit == "false":
		return value.Bool(false), nil
	case strings.HasPrefix(lit, `"`) && strings.HasSuffix(lit, `"`):
		s, err := strconv.Unquote(lit)
		if err != nil {
			return value.Value{}, err
		}
		return value.TextValue(value.Text{Content: s}), nil
	case strings.Contains(lit, "."):
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return value.Value{}, err
		}
		return value.F64(f), nil
	default:
		i, err := strconv.ParseInt(lit, 10, 64)
		if err != nil {
			return value.Value{}, err
		}
		return value.I64(i), nil
	}
}

func splitLines(src string) []string {
	var out []string
	for _, line := range strings.Split(src, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

// Check compares got against the scenario's "want" section, updating the
// on-disk archive in place when EURE_UPDATE_GOLDEN is set (mirroring the
// teacher's CUE_UPDATE convention).
func (sc *Scenario) Check(t *testing.T, got []string) {
	t.Helper()
	want := strings.Join(sc.Want, "\n")
	have := strings.Join(got, "\n")
	if want == have {
		return
	}
	if os.Getenv("EURE_UPDATE_GOLDEN") != "" {
		sc.writeWant(got)
		return
	}
	t.Errorf("scenario %s: result differs (-want +got)\n%s", sc.Name, cmp.Diff(want, have))
}

func (sc *Scenario) writeWant(got []string) {
	data := []byte(strings.Join(got, "\n") + "\n")
	found := false
	for i, f := range sc.arc.Files {
		if f.Name == "want" {
			sc.arc.Files[i].Data = data
			found = true
			break
		}
	}
	if !found {
		sc.arc.Files = append(sc.arc.Files, txtar.File{Name: "want", Data: data})
	}
	_ = os.WriteFile(sc.path, txtar.Format(sc.arc), 0o644)
}
