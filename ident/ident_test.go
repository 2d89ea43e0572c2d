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

package ident

import (
	"testing"

	"github.com/go-quicktest/qt"
)

func TestNewValid(t *testing.T) {
	for _, s := range []string{
		"a", "_a", "foo", "foo-bar", "foo_bar", "Foo123", "_", "a-b-c",
	} {
		id, err := New(s)
		qt.Assert(t, qt.IsNil(err), qt.Commentf("input %q", s))
		qt.Assert(t, qt.Equals(id.String(), s))
	}
}

func TestNewInvalid(t *testing.T) {
	for _, s := range []string{
		"", "$type", "1abc", "-abc", "foo bar", "foo.bar",
	} {
		_, err := New(s)
		qt.Assert(t, qt.IsNotNil(err), qt.Commentf("input %q", s))
	}
}

func TestMustNewPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected MustNew to panic on invalid input")
		}
	}()
	MustNew("$bad")
}

func TestUncheckedDoesNotValidate(t *testing.T) {
	id := Unchecked("$whatever")
	qt.Assert(t, qt.Equals(id.String(), "$whatever"))
}

func TestIsValid(t *testing.T) {
	qt.Assert(t, qt.IsTrue(IsValid("foo")))
	qt.Assert(t, qt.IsFalse(IsValid("$foo")))
}
