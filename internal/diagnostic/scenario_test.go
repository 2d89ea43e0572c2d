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

package diagnostic_test

import (
	"testing"

	"github.com/eure-lang/eure-go/errors"
	"github.com/eure-lang/eure-go/internal/diagnostic"
	"github.com/eure-lang/eure-go/validate"
)

// TestScenarios runs every txtar scenario under testdata through the
// validator and checks its rendered diagnostics against the "want" section.
func TestScenarios(t *testing.T) {
	diagnostic.Run(t, "testdata", func(t *testing.T, sc *diagnostic.Scenario) {
		doc := sc.Doc.Finish()
		res := validate.Validate(doc, sc.Schema, validate.Options{})

		diags := make([]errors.Error, 0, len(res.Errors)+len(res.Warnings))
		for _, e := range res.Errors {
			diags = append(diags, e)
		}
		for _, w := range res.Warnings {
			diags = append(diags, w)
		}

		sc.Check(t, diagnostic.Lines(diagnostic.Collect(diags)))
	})
}
