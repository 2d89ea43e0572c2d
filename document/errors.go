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
	"fmt"

	"github.com/eure-lang/eure-go/errors"
	"github.com/eure-lang/eure-go/path"
)

// InsertErrorKind is the taxonomy of child-resolution failures from spec
// §4.1/§6.3, reported by the constructor's mutating navigation.
// Document.Resolve does not use it; a missing segment there yields
// ErrNodeNotFound.
type InsertErrorKind int

const (
	BindingTargetHasValue InsertErrorKind = iota
	ExpectedMap
	ExpectedTuple
	ExpectedArray
	ArrayIndexOutOfRange
	TupleIndexOutOfRange
	DuplicateKey
)

func (k InsertErrorKind) String() string {
	switch k {
	case BindingTargetHasValue:
		return "BindingTargetHasValue"
	case ExpectedMap:
		return "ExpectedMap"
	case ExpectedTuple:
		return "ExpectedTuple"
	case ExpectedArray:
		return "ExpectedArray"
	case ArrayIndexOutOfRange:
		return "ArrayIndexOutOfRange"
	case TupleIndexOutOfRange:
		return "TupleIndexOutOfRange"
	case DuplicateKey:
		return "DuplicateKey"
	default:
		return "?"
	}
}

// InsertError reports why resolving or creating a child at a given segment
// failed.
type InsertError struct {
	errors.Base
	InsertKind InsertErrorKind
	Segment    path.Segment
	Detail     string
}

// NewInsertError constructs an InsertError. It is exported for the
// constructor package.
func NewInsertError(kind InsertErrorKind, seg path.Segment, at path.Path, detail string) *InsertError {
	return newInsertError(kind, seg, at, detail)
}

func newInsertError(kind InsertErrorKind, seg path.Segment, at path.Path, detail string) *InsertError {
	return &InsertError{
		Base:       errors.Base{At: at, Sev: errors.SeverityError},
		InsertKind: kind,
		Segment:    seg,
		Detail:     detail,
	}
}

func (e *InsertError) Kind() string { return e.InsertKind.String() }

func (e *InsertError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: segment %s at %s: %s", e.InsertKind, e.Segment, e.At, e.Detail)
	}
	return fmt.Sprintf("%s: segment %s at %s", e.InsertKind, e.Segment, e.At)
}

var _ errors.Error = (*InsertError)(nil)
