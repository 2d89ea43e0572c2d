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

// Package validate implements the schema validator: a synchronous,
// always-completes descent over a data document paired with a
// DocumentSchema, producing an ordered, deterministic list of typed errors
// and warnings.
package validate

import (
	"fmt"

	"github.com/eure-lang/eure-go/errors"
	"github.com/eure-lang/eure-go/path"
)

// ErrorKind discriminates the hard-failure diagnostics the validator emits.
type ErrorKind int

const (
	TypeMismatch ErrorKind = iota
	UnknownType
	RequiredFieldMissing
	UnexpectedField
	StringLengthViolation
	StringPatternViolation
	InvalidSchemaPattern
	NumberRangeViolation
	ArrayLengthViolation
	ArrayUniqueViolation
	UnknownVariant
	MissingVariantTag
	VariantDiscriminatorMissing
	InvalidVariantDiscriminator
	PreferSection
	PreferArraySyntax
	InvalidValue
	InternalError
)

func (k ErrorKind) String() string {
	switch k {
	case TypeMismatch:
		return "TypeMismatch"
	case UnknownType:
		return "UnknownType"
	case RequiredFieldMissing:
		return "RequiredFieldMissing"
	case UnexpectedField:
		return "UnexpectedField"
	case StringLengthViolation:
		return "StringLengthViolation"
	case StringPatternViolation:
		return "StringPatternViolation"
	case InvalidSchemaPattern:
		return "InvalidSchemaPattern"
	case NumberRangeViolation:
		return "NumberRangeViolation"
	case ArrayLengthViolation:
		return "ArrayLengthViolation"
	case ArrayUniqueViolation:
		return "ArrayUniqueViolation"
	case UnknownVariant:
		return "UnknownVariant"
	case MissingVariantTag:
		return "MissingVariantTag"
	case VariantDiscriminatorMissing:
		return "VariantDiscriminatorMissing"
	case InvalidVariantDiscriminator:
		return "InvalidVariantDiscriminator"
	case PreferSection:
		return "PreferSection"
	case PreferArraySyntax:
		return "PreferArraySyntax"
	case InvalidValue:
		return "InvalidValue"
	case InternalError:
		return "InternalError"
	default:
		return "?"
	}
}

// WarningKind discriminates the advisory diagnostics the validator emits.
type WarningKind int

const (
	UnknownExtension WarningKind = iota
	DeprecatedField
)

func (k WarningKind) String() string {
	switch k {
	case UnknownExtension:
		return "UnknownExtension"
	case DeprecatedField:
		return "DeprecatedField"
	default:
		return "?"
	}
}

// Error is one validation diagnostic: either a hard ErrorKind failure or a
// WarningKind advisory, both carried by the same type so they sort together
// in one deterministic ordering.
type Error struct {
	errors.Base
	ErrKind  ErrorKind
	WarnKind WarningKind
	isWarn   bool

	Expected string
	Actual   string
	Field    string
	Name     string
	Detail   string
}

func (e *Error) Kind() string {
	if e.isWarn {
		return e.WarnKind.String()
	}
	return e.ErrKind.String()
}

func (e *Error) Error() string {
	base := fmt.Sprintf("%s at %s", e.Kind(), e.At)
	switch {
	case e.Expected != "" || e.Actual != "":
		return fmt.Sprintf("%s: expected %s, got %s", base, e.Expected, e.Actual)
	case e.Field != "":
		return fmt.Sprintf("%s: field %q", base, e.Field)
	case e.Name != "":
		return fmt.Sprintf("%s: %q", base, e.Name)
	case e.Detail != "":
		return fmt.Sprintf("%s: %s", base, e.Detail)
	default:
		return base
	}
}

func newErr(kind ErrorKind, at path.Path) *Error {
	return &Error{Base: errors.Base{At: at, Sev: errors.SeverityError}, ErrKind: kind}
}

func newWarn(kind WarningKind, at path.Path) *Error {
	return &Error{Base: errors.Base{At: at, Sev: errors.SeverityWarning}, WarnKind: kind, isWarn: true}
}

func typeMismatch(at path.Path, expected, actual string) *Error {
	e := newErr(TypeMismatch, at)
	e.Expected, e.Actual = expected, actual
	return e
}

func requiredFieldMissing(at path.Path, field string) *Error {
	e := newErr(RequiredFieldMissing, at)
	e.Field = field
	return e
}

func unexpectedField(at path.Path, field string) *Error {
	e := newErr(UnexpectedField, at)
	e.Field = field
	return e
}

func unknownType(at path.Path, name string) *Error {
	e := newErr(UnknownType, at)
	e.Name = name
	return e
}

func unknownVariant(at path.Path, name string) *Error {
	e := newErr(UnknownVariant, at)
	e.Name = name
	return e
}

func detailErr(kind ErrorKind, at path.Path, detail string) *Error {
	e := newErr(kind, at)
	e.Detail = detail
	return e
}

func unknownExtension(at path.Path, name string) *Error {
	w := newWarn(UnknownExtension, at)
	w.Name = name
	return w
}

func deprecatedField(at path.Path, field string) *Error {
	w := newWarn(DeprecatedField, at)
	w.Field = field
	return w
}
