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

package path

import (
	"testing"

	"github.com/eure-lang/eure-go/ident"
	"github.com/eure-lang/eure-go/token"
	"github.com/google/go-cmp/cmp"
)

func TestAppendDoesNotMutate(t *testing.T) {
	base := New(SegIdent(ident.MustNew("config")))
	extended := base.Append(SegIdent(ident.MustNew("database")), token.NoPos)

	if base.Len() != 1 {
		t.Fatalf("base mutated: got len %d", base.Len())
	}
	if extended.Len() != 2 {
		t.Fatalf("extended: got len %d, want 2", extended.Len())
	}
}

func TestEqualIgnoresPositions(t *testing.T) {
	a := New(SegIdent(ident.MustNew("x"))).Append(SegIdent(ident.MustNew("y")), 5)
	b := New(SegIdent(ident.MustNew("x"))).Append(SegIdent(ident.MustNew("y")), token.NoPos)
	if !a.Equal(b) {
		t.Fatal("expected paths to be equal regardless of position info")
	}
}

func TestString(t *testing.T) {
	p := New(
		SegIdent(ident.MustNew("user")),
		SegExtension(ident.MustNew("type")),
	)
	if got, want := p.String(), "user.$type"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	arr := New(SegIdent(ident.MustNew("items")), SegArrayAppend())
	if got, want := arr.String(), "items[]"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSegmentsComparable(t *testing.T) {
	a := SegTupleIndex(2)
	b := SegTupleIndex(2)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("segments differ (-got +want):\n%s", diff)
	}
}
