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

import "github.com/eure-lang/eure-go/value"

// fieldEntry is one (key, FieldSchema) pair in insertion order.
type fieldEntry struct {
	Key   value.KeyCmpValue
	Value FieldSchema
}

// FieldMap is an insertion-ordered map from KeyCmpValue to FieldSchema,
// used by ObjectSchema.Fields.
type FieldMap struct {
	index   map[value.KeyCmpValue]int
	entries []fieldEntry
}

func NewFieldMap() *FieldMap {
	return &FieldMap{index: make(map[value.KeyCmpValue]int)}
}

func (m *FieldMap) Get(key value.KeyCmpValue) (FieldSchema, bool) {
	i, ok := m.index[key]
	if !ok {
		return FieldSchema{}, false
	}
	return m.entries[i].Value, true
}

// Set inserts or overwrites key's field schema, preserving original
// insertion position on overwrite.
func (m *FieldMap) Set(key value.KeyCmpValue, f FieldSchema) {
	if i, ok := m.index[key]; ok {
		m.entries[i].Value = f
		return
	}
	m.index[key] = len(m.entries)
	m.entries = append(m.entries, fieldEntry{Key: key, Value: f})
}

func (m *FieldMap) Len() int { return len(m.entries) }

func (m *FieldMap) Has(key value.KeyCmpValue) bool {
	_, ok := m.index[key]
	return ok
}

// Keys returns the field keys in insertion order.
func (m *FieldMap) Keys() []value.KeyCmpValue {
	out := make([]value.KeyCmpValue, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Key
	}
	return out
}

// variantEntry is one (key, ObjectSchema) pair in insertion order.
type variantEntry struct {
	Key   value.KeyCmpValue
	Value *ObjectSchema
}

// VariantMap is an insertion-ordered map from KeyCmpValue to ObjectSchema,
// used by EnumSchema.Variants.
type VariantMap struct {
	index   map[value.KeyCmpValue]int
	entries []variantEntry
}

func NewVariantMap() *VariantMap {
	return &VariantMap{index: make(map[value.KeyCmpValue]int)}
}

func (m *VariantMap) Get(key value.KeyCmpValue) (*ObjectSchema, bool) {
	i, ok := m.index[key]
	if !ok {
		return nil, false
	}
	return m.entries[i].Value, true
}

func (m *VariantMap) Set(key value.KeyCmpValue, o *ObjectSchema) {
	if i, ok := m.index[key]; ok {
		m.entries[i].Value = o
		return
	}
	m.index[key] = len(m.entries)
	m.entries = append(m.entries, variantEntry{Key: key, Value: o})
}

func (m *VariantMap) Len() int { return len(m.entries) }

func (m *VariantMap) Keys() []value.KeyCmpValue {
	out := make([]value.KeyCmpValue, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Key
	}
	return out
}

// typeEntry is one (name, Type) pair in insertion order.
type typeEntry struct {
	Name string
	Type Type
}

// TypeMap is an insertion-ordered map from a named type's name to its Type,
// used by DocumentSchema.Types.
type TypeMap struct {
	index   map[string]int
	entries []typeEntry
}

func NewTypeMap() *TypeMap {
	return &TypeMap{index: make(map[string]int)}
}

func (m *TypeMap) Get(name string) (Type, bool) {
	i, ok := m.index[name]
	if !ok {
		return Type{}, false
	}
	return m.entries[i].Type, true
}

// Set inserts name's type, reporting false (and leaving the map untouched)
// if name is already registered — callers use this to detect ConflictingTypes.
func (m *TypeMap) Set(name string, t Type) bool {
	if _, ok := m.index[name]; ok {
		return false
	}
	m.index[name] = len(m.entries)
	m.entries = append(m.entries, typeEntry{Name: name, Type: t})
	return true
}

func (m *TypeMap) Len() int { return len(m.entries) }

// cascadeEntry is one (path string, Type) pair in insertion order.
type cascadeEntry struct {
	PathKey string
	Type    Type
}

// CascadeMap is an insertion-ordered map from a path's canonical string
// form to the cascade Type registered at it (DocumentSchema.CascadeTypes).
type CascadeMap struct {
	index   map[string]int
	entries []cascadeEntry
}

func NewCascadeMap() *CascadeMap {
	return &CascadeMap{index: make(map[string]int)}
}

func (m *CascadeMap) Set(pathKey string, t Type) {
	if i, ok := m.index[pathKey]; ok {
		m.entries[i].Type = t
		return
	}
	m.index[pathKey] = len(m.entries)
	m.entries = append(m.entries, cascadeEntry{PathKey: pathKey, Type: t})
}

func (m *CascadeMap) Get(pathKey string) (Type, bool) {
	i, ok := m.index[pathKey]
	if !ok {
		return Type{}, false
	}
	return m.entries[i].Type, true
}

// Clone returns an independent copy of m, so a caller can register further
// entries (e.g. from CascadeType-kind fields encountered mid-validation)
// without mutating the original.
func (m *CascadeMap) Clone() *CascadeMap {
	clone := NewCascadeMap()
	for _, e := range m.entries {
		clone.Set(e.PathKey, e.Type)
	}
	return clone
}

// LongestPrefix returns the registered cascade type whose path key is the
// longest prefix of pathKey (by '.'-separated segments), used by the
// validator to resolve an ancestor cascade type.
func (m *CascadeMap) LongestPrefix(pathKey string) (Type, bool) {
	var best Type
	bestLen := -1
	found := false
	for _, e := range m.entries {
		if isPathPrefix(e.PathKey, pathKey) && len(e.PathKey) > bestLen {
			best = e.Type
			bestLen = len(e.PathKey)
			found = true
		}
	}
	return best, found
}

func isPathPrefix(prefix, full string) bool {
	if prefix == "." || prefix == "" {
		return true
	}
	if prefix == full {
		return true
	}
	if len(full) > len(prefix) && full[:len(prefix)] == prefix && full[len(prefix)] == '.' {
		return true
	}
	return false
}
