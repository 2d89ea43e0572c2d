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

package document

import (
	"testing"

	"github.com/eure-lang/eure-go/ident"
	"github.com/eure-lang/eure-go/path"
	"github.com/eure-lang/eure-go/value"
)

func TestRootStability(t *testing.T) {
	d := New()
	root := d.RootID()
	if err := d.SetContent(root, EmptyMap()); err != nil {
		t.Fatal(err)
	}
	if d.RootID() != root {
		t.Fatalf("root id changed: got %d, want %d", d.RootID(), root)
	}
}

func TestMapInsertOrderPreserved(t *testing.T) {
	d := New()
	root := d.RootID()
	if err := d.SetContent(root, EmptyMap()); err != nil {
		t.Fatal(err)
	}

	keys := []string{"c", "a", "b"}
	for _, k := range keys {
		id := d.AllocHole()
		if _, err := d.MapInsert(root, KeyFromIdent(ident.MustNew(k)), id); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := d.Children(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	for i, k := range keys {
		if entries[i].Key.String() != k {
			t.Fatalf("entry %d: got key %q, want %q", i, entries[i].Key.String(), k)
		}
	}
}

func TestExtensionIsolatedFromMapEntries(t *testing.T) {
	d := New()
	root := d.RootID()
	if err := d.SetContent(root, EmptyMap()); err != nil {
		t.Fatal(err)
	}

	userID := d.AllocHole()
	if _, err := d.MapInsert(root, KeyFromIdent(ident.MustNew("user")), userID); err != nil {
		t.Fatal(err)
	}

	typeID := d.AllocHole()
	if err := d.SetContent(typeID, Primitive(value.TextValue(value.Text{Content: "Person"}))); err != nil {
		t.Fatal(err)
	}
	if _, err := d.ExtensionInsert(userID, ident.MustNew("type"), typeID); err != nil {
		t.Fatal(err)
	}

	children, err := d.Children(userID)
	if err != nil {
		t.Fatal(err)
	}
	if len(children) != 0 {
		t.Fatalf("expected user's map entries to be empty, got %d", len(children))
	}

	exts, err := d.Extensions(userID)
	if err != nil {
		t.Fatal(err)
	}
	if len(exts) != 1 || exts[0].Key.String() != "$type" {
		t.Fatalf("expected one $type extension, got %v", exts)
	}
}

func TestResolveReadOnlyDoesNotCreateHoles(t *testing.T) {
	d := New()
	root := d.RootID()
	if err := d.SetContent(root, EmptyMap()); err != nil {
		t.Fatal(err)
	}

	before := d.Len()
	_, err := d.Resolve(path.New(path.SegIdent(ident.MustNew("missing"))))
	if err == nil {
		t.Fatal("expected ErrNodeNotFound for a missing path")
	}
	if d.Len() != before {
		t.Fatalf("Resolve must not allocate nodes: before %d, after %d", before, d.Len())
	}
}

func TestArrayAppendOrder(t *testing.T) {
	d := New()
	arr := d.alloc(EmptyArray())
	for i := 0; i < 3; i++ {
		id := d.AllocHole()
		if err := d.SetContent(id, Primitive(value.I64(int64(i)))); err != nil {
			t.Fatal(err)
		}
		if _, err := d.ArrayAppend(arr, id); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := d.Children(arr)
	if err != nil {
		t.Fatal(err)
	}
	for i, e := range entries {
		n, err := d.Node(e.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got := n.Content.Primitive.I64; got != int64(i) {
			t.Fatalf("element %d: got %d, want %d", i, got, i)
		}
	}
}
