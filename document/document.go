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

// Package document implements the logical EURE document model: an arena of
// typed nodes addressed by stable ids, with hole/fill semantics and
// per-node extension tables. See the constructor subpackage for the sole
// supported way to build and mutate a Document.
package document

import (
	"fmt"

	"github.com/eure-lang/eure-go/ident"
	"github.com/eure-lang/eure-go/path"
	"github.com/eure-lang/eure-go/value"
)

// NodeID is a stable index into a Document's arena. RootID() returns the
// first allocated node, id 0; negative ids are never valid.
type NodeID int

// Invalid is the NodeID returned where no node applies.
const Invalid NodeID = -1

// DocumentKeyKind discriminates the shapes a DocumentKey (a map entry's
// key) can take.
type DocumentKeyKind int

const (
	KeyIdent DocumentKeyKind = iota
	KeyExtension
	KeyMetaExtension
	KeyTupleIndex
	KeyValue
)

// DocumentKey is the key type for a Map node's entries: an Ident, Extension,
// MetaExtension, TupleIndex, or literal Value, mirroring path.Segment's
// shape but scoped to what is legal as a map key (no bare ArrayIndex).
type DocumentKey struct {
	Kind       DocumentKeyKind
	Ident      ident.Identifier
	TupleIndex uint64
	Value      value.KeyCmpValue
}

func KeyFromIdent(id ident.Identifier) DocumentKey { return DocumentKey{Kind: KeyIdent, Ident: id} }
func KeyFromExtension(id ident.Identifier) DocumentKey {
	return DocumentKey{Kind: KeyExtension, Ident: id}
}
func KeyFromMetaExtension(id ident.Identifier) DocumentKey {
	return DocumentKey{Kind: KeyMetaExtension, Ident: id}
}
func KeyFromTupleIndex(n uint64) DocumentKey { return DocumentKey{Kind: KeyTupleIndex, TupleIndex: n} }
func KeyFromValue(v value.KeyCmpValue) DocumentKey { return DocumentKey{Kind: KeyValue, Value: v} }

func (k DocumentKey) String() string {
	switch k.Kind {
	case KeyIdent:
		return k.Ident.String()
	case KeyExtension:
		return "$" + k.Ident.String()
	case KeyMetaExtension:
		return "$$" + k.Ident.String()
	case KeyTupleIndex:
		return fmt.Sprintf(".%d", k.TupleIndex)
	case KeyValue:
		return "[" + k.Value.String() + "]"
	default:
		return "?"
	}
}

// AsSegment converts a DocumentKey back into the equivalent path.Segment.
func (k DocumentKey) AsSegment() path.Segment {
	switch k.Kind {
	case KeyIdent:
		return path.SegIdent(k.Ident)
	case KeyExtension:
		return path.SegExtension(k.Ident)
	case KeyMetaExtension:
		return path.SegMetaExtension(k.Ident)
	case KeyTupleIndex:
		return path.SegTupleIndex(k.TupleIndex)
	case KeyValue:
		return k.Value.AsSegment()
	default:
		return path.Segment{}
	}
}

// ContentKind discriminates a Node's content shape.
type ContentKind int

const (
	ContentHole ContentKind = iota
	ContentPrimitive
	ContentMap
	ContentArray
	ContentTuple
)

func (k ContentKind) String() string {
	switch k {
	case ContentHole:
		return "hole"
	case ContentPrimitive:
		return "primitive"
	case ContentMap:
		return "map"
	case ContentArray:
		return "array"
	case ContentTuple:
		return "tuple"
	default:
		return "?"
	}
}

// NodeContent is the tagged union a Node's content can hold.
type NodeContent struct {
	Kind ContentKind

	// HoleLabel is set only when Kind == ContentHole and the hole was
	// explicitly bound with a label (bind_hole); such holes survive
	// finalization instead of becoming an empty map.
	HoleLabel *ident.Identifier

	// Primitive is set only when Kind == ContentPrimitive.
	Primitive value.Value

	// Map is set only when Kind == ContentMap. Order of entries is
	// insertion order (spec invariant 8.1.4).
	Map *OrderedMap

	// Array and Tuple are set only when Kind == ContentArray /
	// ContentTuple respectively; element order is insertion order.
	Array []NodeID
	Tuple []NodeID
}

// Hole returns an unbound, unlabeled hole.
func Hole() NodeContent { return NodeContent{Kind: ContentHole} }

// LabeledHole returns a hole explicitly bound with label.
func LabeledHole(label ident.Identifier) NodeContent {
	l := label
	return NodeContent{Kind: ContentHole, HoleLabel: &l}
}

// Primitive wraps a scalar value as node content.
func Primitive(v value.Value) NodeContent { return NodeContent{Kind: ContentPrimitive, Primitive: v} }

// EmptyMap returns an empty map node content.
func EmptyMap() NodeContent { return NodeContent{Kind: ContentMap, Map: NewOrderedMap()} }

// EmptyArray returns an empty array node content.
func EmptyArray() NodeContent { return NodeContent{Kind: ContentArray} }

// EmptyTuple returns a tuple with no elements; slots are added later by the
// caller (used when a hole is promoted to a tuple by a TupleIndex segment).
func EmptyTuple() NodeContent { return NodeContent{Kind: ContentTuple} }

func (c NodeContent) IsHole() bool { return c.Kind == ContentHole }

// Node is a single arena entry: its content plus its extension table. The
// root node's meta-extensions are stored as ordinary Map entries under
// KeyMetaExtension, a deliberate choice to avoid a second table.
type Node struct {
	Content    NodeContent
	Extensions *OrderedMap // keys are always KeyExtension
}

func newNode(c NodeContent) *Node {
	return &Node{Content: c, Extensions: NewOrderedMap()}
}

// ErrNodeNotFound is returned by Node/Children/Extensions/Resolve when a
// NodeID is not present in the arena. Well-formed callers that generated
// the id from this same Document should never see it; if they do, it is
// an internal invariant violation.
type ErrNodeNotFound struct {
	ID NodeID
}

func (e *ErrNodeNotFound) Error() string {
	return fmt.Sprintf("document: node %d not found", e.ID)
}

// Document is an arena of Nodes plus a distinguished root. Nodes are never
// removed once allocated; the only supported mutator is the constructor
// package.
type Document struct {
	nodes  []*Node
	rootID NodeID
}

// New creates a Document whose root is a single hole.
func New() *Document {
	d := &Document{}
	d.rootID = d.alloc(Hole())
	return d
}

func (d *Document) alloc(c NodeContent) NodeID {
	d.nodes = append(d.nodes, newNode(c))
	return NodeID(len(d.nodes) - 1)
}

// RootID returns the document's root node id. It is stable for the
// document's lifetime.
func (d *Document) RootID() NodeID { return d.rootID }

// Node returns the node at id.
func (d *Document) Node(id NodeID) (*Node, error) {
	if int(id) < 0 || int(id) >= len(d.nodes) {
		return nil, &ErrNodeNotFound{ID: id}
	}
	return d.nodes[id], nil
}

// MustNode is like Node but panics on a missing id; for internal callers
// that have already established id is well-formed (e.g. the constructor,
// which only ever hands out ids it allocated itself).
func (d *Document) MustNode(id NodeID) *Node {
	n, err := d.Node(id)
	if err != nil {
		panic(err)
	}
	return n
}

// Len returns the number of allocated nodes, including holes.
func (d *Document) Len() int { return len(d.nodes) }

// --- Low-level mutation primitives -----------------------------------------
//
// The following methods are the only way to mutate a Document's arena.
// They are exported so the constructor package (the sole intended caller)
// can implement the higher-level construction protocol from outside this
// package, but they are reserved for the constructor and the
// interpreter/tests that drive it directly — ordinary client code reads a
// Document, it does not call these.

// AllocHole allocates a fresh, unlabeled hole and returns its id.
func (d *Document) AllocHole() NodeID {
	return d.alloc(Hole())
}

// SetContent replaces the content at id. It does not touch id's extension
// table.
func (d *Document) SetContent(id NodeID, c NodeContent) error {
	n, err := d.Node(id)
	if err != nil {
		return err
	}
	n.Content = c
	return nil
}

// MapInsert inserts childID under key into the map at mapID, returning an
// error if mapID is not a Map node. If key is already present, its existing
// target is left untouched and ok reports false (callers use this to
// implement "insert or get" child resolution).
func (d *Document) MapInsert(mapID NodeID, key DocumentKey, childID NodeID) (ok bool, err error) {
	n, err := d.Node(mapID)
	if err != nil {
		return false, err
	}
	if n.Content.Kind != ContentMap {
		return false, fmt.Errorf("document: node %d is not a map", mapID)
	}
	return n.Content.Map.Insert(key, childID), nil
}

// MapGet looks up key in the map at mapID.
func (d *Document) MapGet(mapID NodeID, key DocumentKey) (NodeID, bool, error) {
	n, err := d.Node(mapID)
	if err != nil {
		return Invalid, false, err
	}
	if n.Content.Kind != ContentMap {
		return Invalid, false, fmt.Errorf("document: node %d is not a map", mapID)
	}
	id, ok := n.Content.Map.Get(key)
	return id, ok, nil
}

// ExtensionInsert inserts childID under key into id's extension table,
// returning ok=false if key was already present (existing target
// untouched).
func (d *Document) ExtensionInsert(id NodeID, key ident.Identifier, childID NodeID) (ok bool, err error) {
	n, err := d.Node(id)
	if err != nil {
		return false, err
	}
	return n.Extensions.Insert(KeyFromExtension(key), childID), nil
}

// ExtensionGet looks up key in id's extension table.
func (d *Document) ExtensionGet(id NodeID, key ident.Identifier) (NodeID, bool, error) {
	n, err := d.Node(id)
	if err != nil {
		return Invalid, false, err
	}
	nid, ok := n.Extensions.Get(KeyFromExtension(key))
	return nid, ok, nil
}

// ArrayAppend appends childID to the array at id, returning its new index.
func (d *Document) ArrayAppend(id NodeID, childID NodeID) (int, error) {
	n, err := d.Node(id)
	if err != nil {
		return 0, err
	}
	if n.Content.Kind != ContentArray {
		return 0, fmt.Errorf("document: node %d is not an array", id)
	}
	n.Content.Array = append(n.Content.Array, childID)
	return len(n.Content.Array) - 1, nil
}

// ArrayEnsureLen pads the array at id with freshly allocated holes so it has
// at least n elements, returning the (possibly pre-existing) id at index n-1.
func (d *Document) ArrayEnsureLen(id NodeID, n int) (NodeID, error) {
	node, err := d.Node(id)
	if err != nil {
		return Invalid, err
	}
	if node.Content.Kind != ContentArray {
		return Invalid, fmt.Errorf("document: node %d is not an array", id)
	}
	for len(node.Content.Array) < n {
		node.Content.Array = append(node.Content.Array, d.AllocHole())
	}
	return node.Content.Array[n-1], nil
}

// TupleEnsureLen pads the tuple at id with freshly allocated holes so it has
// exactly max(len, n) elements, returning the id at index n-1.
func (d *Document) TupleEnsureLen(id NodeID, n int) (NodeID, error) {
	node, err := d.Node(id)
	if err != nil {
		return Invalid, err
	}
	if node.Content.Kind != ContentTuple {
		return Invalid, fmt.Errorf("document: node %d is not a tuple", id)
	}
	for len(node.Content.Tuple) < n {
		node.Content.Tuple = append(node.Content.Tuple, d.AllocHole())
	}
	return node.Content.Tuple[n-1], nil
}

// TupleAt returns the id at index idx in the tuple at id, without growing
// it; ok is false if idx is out of range.
func (d *Document) TupleAt(id NodeID, idx int) (NodeID, bool, error) {
	node, err := d.Node(id)
	if err != nil {
		return Invalid, false, err
	}
	if node.Content.Kind != ContentTuple || idx < 0 || idx >= len(node.Content.Tuple) {
		return Invalid, false, nil
	}
	return node.Content.Tuple[idx], true, nil
}

// ArrayAt returns the id at index idx in the array at id, without growing
// it; ok is false if idx is out of range.
func (d *Document) ArrayAt(id NodeID, idx int) (NodeID, bool, error) {
	node, err := d.Node(id)
	if err != nil {
		return Invalid, false, err
	}
	if node.Content.Kind != ContentArray || idx < 0 || idx >= len(node.Content.Array) {
		return Invalid, false, nil
	}
	return node.Content.Array[idx], true, nil
}

// Entry is one (key, target) pair from a Map's entries, or an Extensions
// table, preserving insertion order.
type Entry struct {
	Key DocumentKey
	ID  NodeID
}

// Children returns the ordered entries of a Map/Array/Tuple node. Array and
// Tuple entries are reported with KeyTupleIndex keys carrying their
// positional index, for a uniform iteration shape.
func (d *Document) Children(id NodeID) ([]Entry, error) {
	n, err := d.Node(id)
	if err != nil {
		return nil, err
	}
	switch n.Content.Kind {
	case ContentMap:
		return n.Content.Map.Entries(), nil
	case ContentArray:
		out := make([]Entry, len(n.Content.Array))
		for i, child := range n.Content.Array {
			out[i] = Entry{Key: KeyFromTupleIndex(uint64(i)), ID: child}
		}
		return out, nil
	case ContentTuple:
		out := make([]Entry, len(n.Content.Tuple))
		for i, child := range n.Content.Tuple {
			out[i] = Entry{Key: KeyFromTupleIndex(uint64(i)), ID: child}
		}
		return out, nil
	default:
		return nil, nil
	}
}

// Extensions returns the ordered $-extension entries of a node.
func (d *Document) Extensions(id NodeID) ([]Entry, error) {
	n, err := d.Node(id)
	if err != nil {
		return nil, err
	}
	return n.Extensions.Entries(), nil
}

// Resolve walks p against this finished document read-only, never creating
// holes. A missing segment yields ErrNodeNotFound; this is the read-side
// counterpart to the constructor's mutating navigate.
func (d *Document) Resolve(p path.Path) (NodeID, error) {
	cur := d.rootID
	for _, seg := range p.Segments {
		n, err := d.Node(cur)
		if err != nil {
			return Invalid, err
		}
		next, ok := resolveReadOnly(n, seg)
		if !ok {
			return Invalid, &ErrNodeNotFound{ID: Invalid}
		}
		cur = next
	}
	return cur, nil
}

func resolveReadOnly(n *Node, seg path.Segment) (NodeID, bool) {
	switch seg.Kind {
	case path.Extension:
		return n.Extensions.Get(KeyFromExtension(seg.Ident))
	case path.Ident:
		if n.Content.Kind != ContentMap {
			return Invalid, false
		}
		return n.Content.Map.Get(KeyFromIdent(seg.Ident))
	case path.MetaExtension:
		if n.Content.Kind != ContentMap {
			return Invalid, false
		}
		return n.Content.Map.Get(KeyFromMetaExtension(seg.Ident))
	case path.Value:
		if n.Content.Kind != ContentMap {
			return Invalid, false
		}
		return n.Content.Map.Get(KeyFromValue(valueFromSegmentKey(seg.Literal)))
	case path.TupleIndex:
		if n.Content.Kind != ContentTuple || seg.Index >= uint64(len(n.Content.Tuple)) {
			return Invalid, false
		}
		return n.Content.Tuple[seg.Index], true
	case path.ArrayIndex:
		if n.Content.Kind != ContentArray || !seg.HasIndex || seg.Index >= uint64(len(n.Content.Array)) {
			return Invalid, false
		}
		return n.Content.Array[seg.Index], true
	default:
		return Invalid, false
	}
}

func valueFromSegmentKey(vk path.ValueKey) value.KeyCmpValue {
	switch vk.Tag {
	case path.ValueKeyBool:
		return value.KeyCmpBool(vk.Bool)
	case path.ValueKeyInt:
		return value.KeyCmpI64(vk.Int)
	case path.ValueKeyUInt:
		return value.KeyCmpU64(vk.UInt)
	case path.ValueKeyString:
		return value.KeyCmpString(vk.Str)
	default:
		return value.KeyCmpNull()
	}
}
