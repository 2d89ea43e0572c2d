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

package constructor

import (
	"fmt"

	"github.com/eure-lang/eure-go/errors"
	"github.com/eure-lang/eure-go/path"
)

// ScopeErrorKind is the taxonomy of scope-discipline violations from spec
// §5/§6.3.
type ScopeErrorKind int

const (
	NotMostRecentScope ScopeErrorKind = iota
	CannotEndAtRoot
)

func (k ScopeErrorKind) String() string {
	if k == CannotEndAtRoot {
		return "CannotEndAtRoot"
	}
	return "NotMostRecentScope"
}

// ScopeError reports a violation of the begin_scope/end_scope LIFO
// discipline.
type ScopeError struct {
	errors.Base
	ScopeKind ScopeErrorKind
}

func newScopeError(kind ScopeErrorKind, at path.Path) *ScopeError {
	return &ScopeError{
		Base:      errors.Base{At: at, Sev: errors.SeverityError},
		ScopeKind: kind,
	}
}

func (e *ScopeError) Kind() string { return e.ScopeKind.String() }

func (e *ScopeError) Error() string {
	return fmt.Sprintf("%s at %s", e.ScopeKind, e.At)
}

var _ errors.Error = (*ScopeError)(nil)
