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

package schema

import (
	"fmt"

	"github.com/eure-lang/eure-go/errors"
	"github.com/eure-lang/eure-go/path"
)

// ErrorKind discriminates the errors schema extraction can produce.
type ErrorKind int

const (
	InvalidTypePath ErrorKind = iota
	InvalidField
	ConflictingTypes
	InvalidVariant
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidTypePath:
		return "InvalidTypePath"
	case InvalidField:
		return "InvalidField"
	case ConflictingTypes:
		return "ConflictingTypes"
	case InvalidVariant:
		return "InvalidVariant"
	default:
		return "?"
	}
}

// Error is a schema-extraction-time failure: a malformed or conflicting
// schema declaration encountered while building a DocumentSchema.
type Error struct {
	errors.Base
	ErrKind ErrorKind
	Detail  string
}

func (e *Error) Kind() string { return e.ErrKind.String() }

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("schema: %s at %s", e.ErrKind, e.At)
	}
	return fmt.Sprintf("schema: %s at %s: %s", e.ErrKind, e.At, e.Detail)
}

// NewError builds a schema Error at the given path.
func NewError(kind ErrorKind, at path.Path, detail string) *Error {
	return &Error{Base: errors.Base{At: at, Sev: errors.SeverityError}, ErrKind: kind, Detail: detail}
}
