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

import "github.com/eure-lang/eure-go/document"

// orderedNodeSet is the unbound-nodes bookkeeping set: an insertion-ordered
// set of node ids awaiting final disposition at Finish.
type orderedNodeSet struct {
	present map[document.NodeID]bool
	order   []document.NodeID
}

func newOrderedNodeSet() *orderedNodeSet {
	return &orderedNodeSet{present: make(map[document.NodeID]bool)}
}

func (s *orderedNodeSet) add(id document.NodeID) {
	if s.present[id] {
		return
	}
	s.present[id] = true
	s.order = append(s.order, id)
}

func (s *orderedNodeSet) remove(id document.NodeID) {
	if !s.present[id] {
		return
	}
	delete(s.present, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *orderedNodeSet) ordered() []document.NodeID {
	out := make([]document.NodeID, len(s.order))
	copy(out, s.order)
	return out
}
