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

package interpret

import (
	"github.com/eure-lang/eure-go/document/constructor"
	"github.com/eure-lang/eure-go/ident"
	"github.com/eure-lang/eure-go/path"
	"github.com/eure-lang/eure-go/token"
	"github.com/eure-lang/eure-go/value"
)

// ActionKind discriminates the flat action program an interpret pass
// compiles from one CST form before executing it against a Constructor.
// This mirrors the source language's own eure-tree/action.rs: compiling a
// shape to a flat op sequence once, rather than re-deriving control flow
// while walking, is what lets a host skip a whole malformed form at once in
// tolerant mode.
type ActionKind int

const (
	ActionBeginScope ActionKind = iota
	ActionEndScope
	ActionNavigate
	ActionBindPrimitive
	ActionBindEmptyMap
	ActionBindEmptyArray
	ActionBindEmptyTuple
	ActionBindHole
)

// Action is one compiled step of the action program.
type Action struct {
	Kind    ActionKind
	Segment path.Segment
	Pos     token.Pos
	Value   value.Value
	Label   *ident.Identifier
}

// run executes actions against c in order, stopping at the first error
// (the caller decides whether that aborts the whole interpretation or is
// swallowed for tolerant-mode recovery of the next top-level form).
func run(c *constructor.Constructor, actions []Action) error {
	var scopes []constructor.Scope
	// best-effort: close any scopes still open when the program ends or
	// aborts at an error, so the constructor's LIFO discipline is never left
	// broken for the next top-level form in tolerant mode.
	defer func() {
		for i := len(scopes) - 1; i >= 0; i-- {
			_ = c.EndScope(scopes[i])
		}
	}()
	for _, a := range actions {
		switch a.Kind {
		case ActionBeginScope:
			scopes = append(scopes, c.BeginScope())
		case ActionEndScope:
			if len(scopes) == 0 {
				continue
			}
			top := scopes[len(scopes)-1]
			scopes = scopes[:len(scopes)-1]
			if err := c.EndScope(top); err != nil {
				return err
			}
		case ActionNavigate:
			if err := c.NavigateAt(a.Segment, a.Pos); err != nil {
				return err
			}
		case ActionBindPrimitive:
			if err := c.BindPrimitive(a.Value); err != nil {
				return err
			}
		case ActionBindEmptyMap:
			if err := c.BindEmptyMap(); err != nil {
				return err
			}
		case ActionBindEmptyArray:
			if err := c.BindEmptyArray(); err != nil {
				return err
			}
		case ActionBindEmptyTuple:
			if err := c.BindEmptyTuple(); err != nil {
				return err
			}
		case ActionBindHole:
			if err := c.BindHole(a.Label); err != nil {
				return err
			}
		}
	}
	return nil
}
