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

// Package eurefmt is a debug pretty-printer for documents and schemas. It
// has no bearing on correctness; it exists so test failures and ad hoc
// debugging sessions get a readable dump instead of a Go %+v of unexported
// arena internals.
package eurefmt

import (
	"fmt"
	"strings"

	"github.com/kr/pretty"

	"github.com/eure-lang/eure-go/document"
	"github.com/eure-lang/eure-go/schema"
)

// node is the exported, walkable mirror of a document.Node that
// pretty.Sprint can actually recurse into (document.Node's Map/Array/Tuple
// fields are keyed by opaque NodeID, not useful on their own).
type node struct {
	Kind       string
	Label      string // set for ContentHole with an explicit label
	Value      string // set for ContentPrimitive
	Children   []child
	Extensions []child
}

type child struct {
	Key  string
	Node *node
}

// DumpDocument renders doc as an indented, human-readable tree rooted at
// doc.RootID().
func DumpDocument(doc *document.Document) string {
	n, err := buildNode(doc, doc.RootID())
	if err != nil {
		return fmt.Sprintf("<eurefmt: %v>", err)
	}
	return pretty.Sprint(n)
}

func buildNode(doc *document.Document, id document.NodeID) (*node, error) {
	n, err := doc.Node(id)
	if err != nil {
		return nil, err
	}
	out := &node{Kind: n.Content.Kind.String()}
	if n.Content.HoleLabel != nil {
		out.Label = n.Content.HoleLabel.String()
	}
	if n.Content.Kind == document.ContentPrimitive {
		out.Value = n.Content.Primitive.String()
	}

	entries, err := doc.Children(id)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		c, err := buildNode(doc, e.ID)
		if err != nil {
			return nil, err
		}
		out.Children = append(out.Children, child{Key: e.Key.String(), Node: c})
	}

	exts, err := doc.Extensions(id)
	if err != nil {
		return nil, err
	}
	for _, e := range exts {
		c, err := buildNode(doc, e.ID)
		if err != nil {
			return nil, err
		}
		out.Extensions = append(out.Extensions, child{Key: e.Key.String(), Node: c})
	}

	return out, nil
}

// typeSummary is the exported mirror of schema.Type used for dumping; it
// avoids recursing through schema.Type's *Type/*ObjectSchema pointers
// directly so cascade/ref cycles can't make pretty.Sprint loop.
type typeSummary struct {
	Kind   string
	Detail string
}

func summarizeType(t schema.Type) typeSummary {
	switch t.Kind {
	case schema.KindArray:
		return typeSummary{Kind: "array", Detail: summarizeType(*t.Array).Kind}
	case schema.KindObject:
		return typeSummary{Kind: "object", Detail: fmt.Sprintf("%d field(s)", t.Object.Fields.Len())}
	case schema.KindVariant:
		return typeSummary{Kind: "variant", Detail: fmt.Sprintf("%d variant(s)", t.Variant.Variants.Len())}
	case schema.KindTypeRef:
		return typeSummary{Kind: "type-ref", Detail: t.TypeRef}
	case schema.KindCascadeType:
		return typeSummary{Kind: "cascade-type", Detail: summarizeType(*t.CascadeType).Kind}
	default:
		return typeSummary{Kind: t.Kind.String()}
	}
}

// DumpSchema renders ds's field names and summarized types, one line per
// top-level field, sorted by field insertion order.
func DumpSchema(ds *schema.DocumentSchema) string {
	var b strings.Builder
	for _, key := range ds.Root.Fields.Keys() {
		fs, _ := ds.Root.Fields.Get(key)
		ts := summarizeType(fs.TypeExpr)
		fmt.Fprintf(&b, "%s: %s", key.String(), ts.Kind)
		if ts.Detail != "" {
			fmt.Fprintf(&b, " (%s)", ts.Detail)
		}
		if fs.Optional {
			b.WriteString(" [optional]")
		}
		b.WriteString("\n")
	}
	return b.String()
}
