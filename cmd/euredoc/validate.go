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

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/tools/txtar"

	"github.com/eure-lang/eure-go/document/constructor"
	"github.com/eure-lang/eure-go/errors"
	"github.com/eure-lang/eure-go/ident"
	"github.com/eure-lang/eure-go/internal/diagnostic"
	"github.com/eure-lang/eure-go/internal/eurefmt"
	"github.com/eure-lang/eure-go/path"
	"github.com/eure-lang/eure-go/schema"
	"github.com/eure-lang/eure-go/value"
	"github.com/eure-lang/eure-go/validate"
)

func newValidateCmd() *cobra.Command {
	var showTree bool

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "validate a flat schema+doc file and print diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arc, err := txtar.ParseFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			ds, err := parseSchema(section(arc, "schema"))
			if err != nil {
				return fmt.Errorf("schema section: %w", err)
			}
			c := constructor.New()
			if err := parseDoc(c, section(arc, "doc")); err != nil {
				return fmt.Errorf("doc section: %w", err)
			}
			doc := c.Finish()

			if showTree {
				fmt.Fprintln(cmd.OutOrStdout(), eurefmt.DumpDocument(doc))
			}

			res := validate.Validate(doc, ds, validate.Options{})
			diags := make([]errors.Error, 0, len(res.Errors)+len(res.Warnings))
			for _, e := range res.Errors {
				diags = append(diags, e)
			}
			for _, w := range res.Warnings {
				diags = append(diags, w)
			}

			group := diagnostic.Collect(diags)
			for _, line := range diagnostic.Lines(group) {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			if !res.IsValid {
				return fmt.Errorf("%d error(s)", len(res.Errors))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showTree, "tree", false, "print the constructed document tree before validating")
	return cmd
}

func section(arc *txtar.Archive, name string) string {
	for _, f := range arc.Files {
		if f.Name == name {
			return string(f.Data)
		}
	}
	return ""
}

func parseSchema(src string) (*schema.DocumentSchema, error) {
	ds := schema.NewDocumentSchema()
	for _, line := range nonBlankLines(src) {
		name, rest, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("malformed schema line %q", line)
		}
		name = strings.TrimSpace(name)
		parts := strings.Split(rest, ",")
		ty, ok := schemaTypeByName(strings.TrimSpace(parts[0]))
		if !ok {
			return nil, fmt.Errorf("unknown schema type %q", parts[0])
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

func parseDoc(c *constructor.Constructor, src string) error {
	for _, line := range nonBlankLines(src) {
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

func nonBlankLines(src string) []string {
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
