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

package value

import "testing"

func TestFromValue(t *testing.T) {
	cases := []struct {
		v    Value
		want bool
	}{
		{Null(), true},
		{Bool(true), true},
		{I64(-1), true},
		{U64(1), true},
		{F32(1.5), false},
		{F64(1.5), false},
		{TextValue(Text{Content: "hi"}), true},
		{Unit(), false},
	}
	for _, c := range cases {
		_, ok := FromValue(c.v)
		if ok != c.want {
			t.Errorf("FromValue(%v) ok = %v, want %v", c.v, ok, c.want)
		}
	}
}

func TestLangEqual(t *testing.T) {
	a := Lang{Kind: LangOther, Name: "en"}
	b := Lang{Kind: LangOther, Name: "EN"}
	if !a.Equal(b) {
		t.Fatal("expected canonicalized BCP-47 comparison to match")
	}

	c := Lang{Kind: LangOther, Name: "rust"}
	d := Lang{Kind: LangOther, Name: "rust"}
	if !c.Equal(d) {
		t.Fatal("expected raw-string fallback to match identical non-BCP-47 tags")
	}

	e := Lang{Kind: LangOther, Name: "rust"}
	f := Lang{Kind: LangOther, Name: "json"}
	if e.Equal(f) {
		t.Fatal("expected different code-fence tags to differ")
	}

	if !(Lang{Kind: LangPlaintext}).Equal(Lang{Kind: LangPlaintext}) {
		t.Fatal("expected plaintext == plaintext")
	}
}

func TestKeyCmpValueRoundTrip(t *testing.T) {
	k := KeyCmpString("Foo")
	seg := k.AsSegment()
	if seg.Kind.String() != "value" {
		t.Fatalf("expected value segment, got %s", seg.Kind)
	}
}
