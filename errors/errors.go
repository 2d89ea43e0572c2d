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

// Package errors defines the shared diagnostic types used across the
// construction, interpretation, extraction, and validation taxonomies: an
// Error interface carrying position/path information, and a List aggregate
// for accumulating many of them in deterministic order.
package errors

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/eure-lang/eure-go/path"
	"github.com/eure-lang/eure-go/token"
)

// Severity distinguishes a hard failure from an advisory diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Error is the common diagnostic type produced by every taxonomy in the
// core (InsertErrorKind, ScopeError, SchemaError, ValidationErrorKind,
// ValidationWarning). No taxonomy's member is a bare string: every kind is a
// typed enum carrying its own payload, reachable via Kind().
type Error interface {
	error
	// Kind returns the taxonomy-specific discriminant as a stable string,
	// e.g. "ExpectedMap" or "TypeMismatch". It is never used for control
	// flow inside the core itself — callers that need to branch on kind use
	// errors.As with the concrete typed error.
	Kind() string
	// Position returns the primary source position. Base reports its
	// span's Start, which is 0 (not token.NoPos) when no span was set.
	Position() token.Pos
	// Path returns the document/schema path the error occurred at, or the
	// zero Path if not applicable.
	Path() path.Path
	// Severity returns whether this is a hard error or an advisory warning.
	Severity() Severity
}

// Base is embedded by every concrete error type in the taxonomy packages;
// it supplies the common Position/Path/Severity bookkeeping so each
// taxonomy only needs to implement Kind() and Error().
type Base struct {
	Pos Span
	At  path.Path
	Sev Severity
}

// Span is a position, potentially with no line/column info resolved yet
// (that resolution is the formatter collaborator's job against a LineMap).
type Span = token.Span

func (b Base) Position() token.Pos {
	return b.Pos.Start
}

func (b Base) Path() path.Path { return b.At }

func (b Base) Severity() Severity {
	return b.Sev
}

// List accumulates diagnostics in the order they were added and supports
// deterministic sorting for final presentation, mirroring the teacher
// idiom's list type but specialized to the typed Error above rather than a
// free-form message.
type List []Error

// Add appends err to the list.
func (l *List) Add(err Error) {
	*l = append(*l, err)
}

// Errors returns the list's severity-Error-only members.
func (l List) Errors() []Error {
	out := make([]Error, 0, len(l))
	for _, e := range l {
		if e.Severity() == SeverityError {
			out = append(out, e)
		}
	}
	return out
}

// Warnings returns the list's severity-Warning-only members.
func (l List) Warnings() []Error {
	out := make([]Error, 0, len(l))
	for _, e := range l {
		if e.Severity() == SeverityWarning {
			out = append(out, e)
		}
	}
	return out
}

// Sort orders the list deterministically by position then path then
// message, for stable, reproducible diagnostic output.
func (l List) Sort() {
	slices.SortFunc(l, func(a, b Error) int {
		if c := cmp.Compare(a.Position(), b.Position()); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Path().String(), b.Path().String()); c != 0 {
			return c
		}
		return cmp.Compare(a.Error(), b.Error())
	})
}

// Error implements the error interface by joining all member messages.
func (l List) Error() string {
	switch len(l) {
	case 0:
		return ""
	case 1:
		return l[0].Error()
	default:
		msgs := make([]string, len(l))
		for i, e := range l {
			msgs[i] = e.Error()
		}
		return fmt.Sprintf("%d errors: %v", len(l), msgs)
	}
}
