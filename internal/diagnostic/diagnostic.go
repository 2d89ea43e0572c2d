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

// Package diagnostic holds rendering-free plumbing shared by every
// diagnostic-producing package (construction, interpretation, extraction,
// validation): severity grouping, deterministic sorting, and a canonical
// one-line-per-diagnostic string form used by golden-file tests. It never
// decides how a diagnostic is ultimately displayed to a user; that is a
// formatter collaborator's job.
package diagnostic

import (
	"fmt"

	"github.com/eure-lang/eure-go/errors"
)

// Group splits a mixed diagnostic list into its error and warning members,
// each already deterministically ordered by errors.List.Sort.
type Group struct {
	Errors   []errors.Error
	Warnings []errors.Error
}

// Collect builds a Group from a flat list, sorting a copy first so the
// input slice's order is left untouched.
func Collect(diags []errors.Error) Group {
	list := make(errors.List, len(diags))
	copy(list, diags)
	list.Sort()
	return Group{
		Errors:   list.Errors(),
		Warnings: list.Warnings(),
	}
}

// Line renders one diagnostic as "severity: message", where message is the
// taxonomy's own Error() string (already carrying kind and path). This is
// the canonical one-line form used by txtar golden scenarios and by
// cmd/euredoc's plain-text report mode.
func Line(e errors.Error) string {
	return fmt.Sprintf("%s: %s", e.Severity(), e.Error())
}

// Lines renders a whole (already sorted) diagnostic list, one Line per
// entry, errors first then warnings — Collect's own grouping order.
func Lines(g Group) []string {
	out := make([]string, 0, len(g.Errors)+len(g.Warnings))
	for _, e := range g.Errors {
		out = append(out, Line(e))
	}
	for _, w := range g.Warnings {
		out = append(out, Line(w))
	}
	return out
}
