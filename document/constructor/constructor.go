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

// Package constructor implements the stateful builder described in spec
// §4.2: it navigates a Document by path segment, enforces hole-before-bind,
// supports scoped rollback bookkeeping, and finalizes unbound holes to
// empty maps. It is the only supported mutator of a document.Document; see
// that package's doc comment for the low-level primitives this package is
// built on.
package constructor

import (
	"log/slog"

	"github.com/eure-lang/eure-go/document"
	"github.com/eure-lang/eure-go/ident"
	"github.com/eure-lang/eure-go/path"
	"github.com/eure-lang/eure-go/token"
	"github.com/eure-lang/eure-go/value"
	"github.com/google/uuid"
)

// Scope is the opaque handle issued by BeginScope. Scopes nest strictly:
// EndScope(s) fails unless s is the most recently opened still-open scope.
type Scope struct {
	id         uuid.UUID
	stackDepth int
	pathDepth  int
}

// Option configures a Constructor.
type Option func(*Constructor)

// WithLogger attaches a logger used only for internal trace-level
// diagnosis (arena promotions, scope stack depth); it never affects
// user-visible diagnostics, which always flow through the typed error
// taxonomy instead of log lines.
func WithLogger(l *slog.Logger) Option {
	return func(c *Constructor) { c.log = l }
}

// WithCapacityHint pre-sizes internal bookkeeping slices for a construction
// expected to reach roughly n path segments of nesting depth; purely an
// allocation optimization; correctness does not depend on it.
func WithCapacityHint(n int) Option {
	return func(c *Constructor) { c.capacityHint = n }
}

// Constructor is the stateful builder over a document.Document.
type Constructor struct {
	doc *document.Document

	segs       []path.Segment
	positions  []token.Pos
	stack      []document.NodeID
	holeBound  []bool
	scopes     []Scope
	unbound    *orderedNodeSet

	log          *slog.Logger
	capacityHint int
}

// New creates a Constructor over a fresh document.Document, positioned at
// its root.
func New(opts ...Option) *Constructor {
	doc := document.New()
	c := &Constructor{
		doc:     doc,
		stack:   []document.NodeID{doc.RootID()},
		holeBound: []bool{false},
		unbound: newOrderedNodeSet(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.capacityHint > 0 {
		segs := make([]path.Segment, 0, c.capacityHint)
		c.segs = segs
	}
	return c
}

// CurrentNodeID returns the id of the node the constructor is currently
// positioned at.
func (c *Constructor) CurrentNodeID() document.NodeID {
	return c.stack[len(c.stack)-1]
}

// CurrentPath returns the path from root to the current node.
func (c *Constructor) CurrentPath() path.Path {
	return path.Path{Segments: append([]path.Segment(nil), c.segs...), Positions: append([]token.Pos(nil), c.positions...)}
}

// Document returns the document under construction. Callers may read it
// freely; mutation outside this Constructor's API voids its invariants.
func (c *Constructor) Document() *document.Document { return c.doc }

func (c *Constructor) trace(msg string, args ...any) {
	if c.log != nil {
		c.log.Debug(msg, args...)
	}
}

// BeginScope opens a new nested scope at the current position.
func (c *Constructor) BeginScope() Scope {
	s := Scope{id: uuid.New(), stackDepth: len(c.stack), pathDepth: len(c.segs)}
	c.scopes = append(c.scopes, s)
	c.trace("begin_scope", "id", s.id, "stack_depth", s.stackDepth)
	return s
}

// EndScope closes s. s must be the most recently opened still-open scope;
// otherwise NotMostRecentScope is returned and no state changes. Every
// stack frame created inside the scope that is still a hole and was not
// explicitly bound is recorded in the unbound set awaiting Finish.
func (c *Constructor) EndScope(s Scope) error {
	if len(c.scopes) == 0 {
		return newScopeError(NotMostRecentScope, c.CurrentPath())
	}
	top := c.scopes[len(c.scopes)-1]
	if top.id != s.id {
		return newScopeError(NotMostRecentScope, c.CurrentPath())
	}
	if top.stackDepth == 0 {
		return newScopeError(CannotEndAtRoot, c.CurrentPath())
	}

	for i := top.stackDepth; i < len(c.stack); i++ {
		id := c.stack[i]
		if c.holeBound[i] {
			continue
		}
		if n, err := c.doc.Node(id); err == nil && n.Content.IsHole() {
			c.unbound.add(id)
		}
	}

	c.scopes = c.scopes[:len(c.scopes)-1]
	c.stack = c.stack[:top.stackDepth]
	c.holeBound = c.holeBound[:top.stackDepth]
	c.segs = c.segs[:top.pathDepth]
	if c.positions != nil {
		c.positions = c.positions[:top.pathDepth]
	}
	c.trace("end_scope", "id", s.id)
	return nil
}

// Navigate resolves seg against the current node — creating a child if
// necessary — and pushes the result as the new current node. On error, the
// constructor's path/stack are left unchanged.
func (c *Constructor) Navigate(seg path.Segment) error {
	return c.navigateAt(seg, token.NoPos)
}

// NavigateAt is like Navigate but records pos as the segment's source
// position for later diagnostics.
func (c *Constructor) NavigateAt(seg path.Segment, pos token.Pos) error {
	return c.navigateAt(seg, pos)
}

func (c *Constructor) navigateAt(seg path.Segment, pos token.Pos) error {
	parent := c.CurrentNodeID()
	child, bound, err := c.resolveChild(parent, seg)
	if err != nil {
		return err
	}
	c.segs = append(c.segs, seg)
	if c.positions != nil || pos.IsValid() {
		if c.positions == nil {
			c.positions = make([]token.Pos, len(c.segs)-1, cap(c.segs))
		}
		c.positions = append(c.positions, pos)
	}
	c.stack = append(c.stack, child)
	c.holeBound = append(c.holeBound, bound)
	return nil
}

// resolveChild implements the per-segment-kind dispatch table from spec
// §4.1. It returns the resolved/created child id, and whether that child
// should be treated as already "hole-bound" (true only for a pre-existing
// non-hole node, so a later RequireHole on it correctly fails).
func (c *Constructor) resolveChild(parent document.NodeID, seg path.Segment) (document.NodeID, bool, error) {
	n, err := c.doc.Node(parent)
	if err != nil {
		return document.Invalid, false, err
	}

	switch seg.Kind {
	case path.Ident:
		return c.resolveMapLikeChild(parent, n, document.KeyFromIdent(seg.Ident), seg)
	case path.MetaExtension:
		return c.resolveMapLikeChild(parent, n, document.KeyFromMetaExtension(seg.Ident), seg)
	case path.Value:
		key, ok := keyFromSegmentLiteral(seg.Literal)
		if !ok {
			return document.Invalid, false, document.NewInsertError(document.BindingTargetHasValue, seg, c.CurrentPath(), "invalid literal key")
		}
		return c.resolveMapLikeChild(parent, n, key, seg)
	case path.Extension:
		return c.resolveExtension(parent, n, seg)
	case path.TupleIndex:
		return c.resolveTupleIndex(parent, n, seg)
	case path.ArrayIndex:
		return c.resolveArrayIndex(parent, n, seg)
	default:
		return document.Invalid, false, document.NewInsertError(document.ExpectedMap, seg, c.CurrentPath(), "unknown segment kind")
	}
}

func (c *Constructor) resolveMapLikeChild(parent document.NodeID, n *document.Node, key document.DocumentKey, seg path.Segment) (document.NodeID, bool, error) {
	switch n.Content.Kind {
	case document.ContentHole:
		if err := c.doc.SetContent(parent, document.EmptyMap()); err != nil {
			return document.Invalid, false, err
		}
		hole := c.doc.AllocHole()
		if _, err := c.doc.MapInsert(parent, key, hole); err != nil {
			return document.Invalid, false, err
		}
		return hole, false, nil
	case document.ContentMap:
		if existing, ok, err := c.doc.MapGet(parent, key); err != nil {
			return document.Invalid, false, err
		} else if ok {
			bound := !c.isHole(existing)
			return existing, bound, nil
		}
		hole := c.doc.AllocHole()
		if _, err := c.doc.MapInsert(parent, key, hole); err != nil {
			return document.Invalid, false, err
		}
		return hole, false, nil
	case document.ContentPrimitive:
		return document.Invalid, false, document.NewInsertError(document.BindingTargetHasValue, seg, c.CurrentPath(), "node already bound to a primitive value")
	default: // Array, Tuple
		return document.Invalid, false, document.NewInsertError(document.ExpectedMap, seg, c.CurrentPath(), "expected a map")
	}
}

func (c *Constructor) resolveExtension(parent document.NodeID, n *document.Node, seg path.Segment) (document.NodeID, bool, error) {
	switch n.Content.Kind {
	case document.ContentHole, document.ContentMap:
		if existing, ok, err := c.doc.ExtensionGet(parent, seg.Ident); err != nil {
			return document.Invalid, false, err
		} else if ok {
			return existing, !c.isHole(existing), nil
		}
		hole := c.doc.AllocHole()
		if _, err := c.doc.ExtensionInsert(parent, seg.Ident, hole); err != nil {
			return document.Invalid, false, err
		}
		return hole, false, nil
	case document.ContentPrimitive:
		return document.Invalid, false, document.NewInsertError(document.BindingTargetHasValue, seg, c.CurrentPath(), "cannot attach an extension to a bound primitive")
	default: // Array, Tuple
		return document.Invalid, false, document.NewInsertError(document.ExpectedMap, seg, c.CurrentPath(), "cannot attach an extension to an array or tuple")
	}
}

func (c *Constructor) resolveTupleIndex(parent document.NodeID, n *document.Node, seg path.Segment) (document.NodeID, bool, error) {
	switch n.Content.Kind {
	case document.ContentHole:
		if err := c.doc.SetContent(parent, document.EmptyTuple()); err != nil {
			return document.Invalid, false, err
		}
		id, err := c.doc.TupleEnsureLen(parent, int(seg.Index)+1)
		if err != nil {
			return document.Invalid, false, err
		}
		return id, false, nil
	case document.ContentTuple:
		id, ok, err := c.doc.TupleAt(parent, int(seg.Index))
		if err != nil {
			return document.Invalid, false, err
		}
		if !ok {
			return document.Invalid, false, document.NewInsertError(document.TupleIndexOutOfRange, seg, c.CurrentPath(), "tuple index out of range")
		}
		return id, !c.isHole(id), nil
	default:
		return document.Invalid, false, document.NewInsertError(document.ExpectedTuple, seg, c.CurrentPath(), "expected a tuple")
	}
}

func (c *Constructor) resolveArrayIndex(parent document.NodeID, n *document.Node, seg path.Segment) (document.NodeID, bool, error) {
	switch n.Content.Kind {
	case document.ContentHole:
		if err := c.doc.SetContent(parent, document.EmptyArray()); err != nil {
			return document.Invalid, false, err
		}
		return c.arrayIndexOnArray(parent, seg)
	case document.ContentArray:
		return c.arrayIndexOnArray(parent, seg)
	default:
		return document.Invalid, false, document.NewInsertError(document.ExpectedArray, seg, c.CurrentPath(), "expected an array")
	}
}

func (c *Constructor) arrayIndexOnArray(parent document.NodeID, seg path.Segment) (document.NodeID, bool, error) {
	if !seg.HasIndex {
		hole := c.doc.AllocHole()
		if _, err := c.doc.ArrayAppend(parent, hole); err != nil {
			return document.Invalid, false, err
		}
		return hole, false, nil
	}
	id, err := c.doc.ArrayEnsureLen(parent, int(seg.Index)+1)
	if err != nil {
		return document.Invalid, false, err
	}
	return id, !c.isHole(id), nil
}

func (c *Constructor) isHole(id document.NodeID) bool {
	n, err := c.doc.Node(id)
	if err != nil {
		return false
	}
	return n.Content.IsHole()
}

// RequireHole returns BindingTargetHasValue unless the current node is a
// hole.
func (c *Constructor) RequireHole() error {
	if !c.isHole(c.CurrentNodeID()) {
		return document.NewInsertError(document.BindingTargetHasValue, path.Segment{}, c.CurrentPath(), "current node is already bound")
	}
	return nil
}

func (c *Constructor) bindContent(content document.NodeContent) error {
	if err := c.RequireHole(); err != nil {
		return err
	}
	id := c.CurrentNodeID()
	if err := c.doc.SetContent(id, content); err != nil {
		return err
	}
	c.unbound.remove(id)
	if len(c.holeBound) > 0 {
		c.holeBound[len(c.holeBound)-1] = true
	}
	return nil
}

// BindPrimitive binds the current hole to a scalar value.
func (c *Constructor) BindPrimitive(v value.Value) error {
	return c.bindContent(document.Primitive(v))
}

// BindEmptyMap binds the current hole to an empty map.
func (c *Constructor) BindEmptyMap() error {
	return c.bindContent(document.EmptyMap())
}

// BindEmptyArray binds the current hole to an empty array.
func (c *Constructor) BindEmptyArray() error {
	return c.bindContent(document.EmptyArray())
}

// BindEmptyTuple binds the current hole to an empty tuple.
func (c *Constructor) BindEmptyTuple() error {
	return c.bindContent(document.EmptyTuple())
}

// BindHole marks the current node as an explicitly labeled hole, which
// survives Finish instead of being finalized into an empty map (spec
// invariant 8.1.2).
func (c *Constructor) BindHole(label *ident.Identifier) error {
	if err := c.RequireHole(); err != nil {
		return err
	}
	id := c.CurrentNodeID()
	var content document.NodeContent
	if label != nil {
		content = document.LabeledHole(*label)
	} else {
		content = document.Hole()
	}
	if err := c.doc.SetContent(id, content); err != nil {
		return err
	}
	c.unbound.remove(id)
	if len(c.holeBound) > 0 {
		c.holeBound[len(c.holeBound)-1] = true
	}
	return nil
}

// Finish finalizes every still-hole node recorded in the unbound set (and
// the root, if it was never bound) into an empty map, and returns the
// completed document. The Constructor must not be used afterward.
func (c *Constructor) Finish() *document.Document {
	for _, id := range c.unbound.ordered() {
		if n, err := c.doc.Node(id); err == nil && n.Content.Kind == document.ContentHole && n.Content.HoleLabel == nil {
			_ = c.doc.SetContent(id, document.EmptyMap())
		}
	}
	root := c.doc.RootID()
	if n, err := c.doc.Node(root); err == nil && n.Content.Kind == document.ContentHole && n.Content.HoleLabel == nil {
		_ = c.doc.SetContent(root, document.EmptyMap())
	}
	doc := c.doc
	c.doc = nil
	return doc
}

func keyFromSegmentLiteral(vk path.ValueKey) (document.DocumentKey, bool) {
	switch vk.Tag {
	case path.ValueKeyNull:
		return document.KeyFromValue(value.KeyCmpNull()), true
	case path.ValueKeyBool:
		return document.KeyFromValue(value.KeyCmpBool(vk.Bool)), true
	case path.ValueKeyInt:
		return document.KeyFromValue(value.KeyCmpI64(vk.Int)), true
	case path.ValueKeyUInt:
		return document.KeyFromValue(value.KeyCmpU64(vk.UInt)), true
	case path.ValueKeyString:
		return document.KeyFromValue(value.KeyCmpString(vk.Str)), true
	default:
		return document.DocumentKey{}, false
	}
}
