// Package config implements C1, the layered configuration merger of
// spec.md §3/§4.1: a recursive tagged tree annotated per-node with
// (source, scope) provenance, merged across scopes with per-key override
// strategies and path-rewriting transforms.
//
// The tree itself has no off-the-shelf analogue in the corpus — nothing in
// the retrieved examples models scope-tagged provenance on a recursive
// dynamic value — so it is hand-built. yaml.v3 (see load.go) plays the role
// spec.md assigns the "YAML lexer" external collaborator: it turns bytes
// into a generic interface{} tree, which ValueFromAny lifts into this
// tagged Value type.
package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the tagged variant of a Value: mapping, sequence, scalar, or null.
type Kind int

const (
	KindNull Kind = iota
	KindMapping
	KindSequence
	KindScalar
)

// SourceKind distinguishes where a Value's content originated.
type SourceKind int

const (
	SourceNull SourceKind = iota
	SourceDefault
	SourceFile
	SourcePackage
)

// Source records provenance for a Value node: which document it came from.
type Source struct {
	Kind    SourceKind
	Path    string // for File/Package
	Package string // package handle, for Package
}

func (s Source) String() string {
	switch s.Kind {
	case SourceDefault:
		return "default"
	case SourceFile:
		return s.Path
	case SourcePackage:
		return fmt.Sprintf("package:%s/%s", s.Package, s.Path)
	default:
		return "null"
	}
}

// Scope is config provenance with a total order: Null < Default < System <
// User < Workdir < Package. "current scope" of a subtree is the max scope
// found among its leaves (spec.md §3).
type Scope int

const (
	ScopeNull Scope = iota
	ScopeDefault
	ScopeSystem
	ScopeUser
	ScopeWorkdir
	ScopePackage
)

func (s Scope) String() string {
	switch s {
	case ScopeDefault:
		return "default"
	case ScopeSystem:
		return "system"
	case ScopeUser:
		return "user"
	case ScopeWorkdir:
		return "workdir"
	case ScopePackage:
		return "package"
	default:
		return "null"
	}
}

// OrderedMap preserves YAML document key order, which matters for
// reproducible merge/export output even though lookups are by key.
type OrderedMap struct {
	keys   []string
	values map[string]*Value
}

// NewOrderedMap returns an empty OrderedMap.
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{values: map[string]*Value{}}
}

// Set inserts or replaces the value for key, preserving first-insertion order.
func (m *OrderedMap) Set(key string, v *Value) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Get returns the value for key, if present.
func (m *OrderedMap) Get(key string) (*Value, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Delete removes key, if present.
func (m *OrderedMap) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns keys in insertion order.
func (m *OrderedMap) Keys() []string { return append([]string(nil), m.keys...) }

// Len reports the number of entries.
func (m *OrderedMap) Len() int { return len(m.keys) }

// Clone performs a shallow copy of the map structure (not its values).
func (m *OrderedMap) Clone() *OrderedMap {
	out := NewOrderedMap()
	for _, k := range m.keys {
		out.Set(k, m.values[k])
	}
	return out
}

// Value is one node of the C1 dynamic value tree.
type Value struct {
	Kind     Kind
	Mapping  *OrderedMap
	Sequence []*Value
	Scalar   any // string | int64 | float64 | bool | nil
	Source   Source
	Scope    Scope
}

// NewMapping returns an empty mapping Value with the given provenance.
func NewMapping(src Source, scope Scope) *Value {
	return &Value{Kind: KindMapping, Mapping: NewOrderedMap(), Source: src, Scope: scope}
}

// NewSequence returns an empty sequence Value with the given provenance.
func NewSequence(src Source, scope Scope) *Value {
	return &Value{Kind: KindSequence, Source: src, Scope: scope}
}

// NewScalar returns a scalar Value with the given provenance.
func NewScalar(v any, src Source, scope Scope) *Value {
	return &Value{Kind: KindScalar, Scalar: v, Source: src, Scope: scope}
}

// NewNull returns a null Value.
func NewNull(src Source, scope Scope) *Value {
	return &Value{Kind: KindNull, Source: src, Scope: scope}
}

// IsEmpty reports whether a container Value has no elements; scalars and
// null are never "empty" containers.
func (v *Value) IsEmpty() bool {
	if v == nil {
		return true
	}
	switch v.Kind {
	case KindMapping:
		return v.Mapping == nil || v.Mapping.Len() == 0
	case KindSequence:
		return len(v.Sequence) == 0
	default:
		return false
	}
}

// ValueFromAny lifts a generic interface{} tree (as produced by yaml.v3's
// Unmarshal into `any`) into a tagged Value tree, stamping every node with
// the same (source, scope) since a freshly-ingested document has uniform
// provenance until overridden by a future merge.
func ValueFromAny(x any, src Source, scope Scope) *Value {
	switch t := x.(type) {
	case nil:
		return NewNull(src, scope)
	case map[string]any:
		m := NewMapping(src, scope)
		for k, val := range t {
			m.Mapping.Set(k, ValueFromAny(val, src, scope))
		}
		return m
	case map[any]any:
		m := NewMapping(src, scope)
		for k, val := range t {
			m.Mapping.Set(fmt.Sprint(k), ValueFromAny(val, src, scope))
		}
		return m
	case []any:
		seq := NewSequence(src, scope)
		for _, val := range t {
			seq.Sequence = append(seq.Sequence, ValueFromAny(val, src, scope))
		}
		return seq
	default:
		return NewScalar(t, src, scope)
	}
}

// Dig descends mappings by key or sequences by decimal index, per spec.md
// §4.1: "Reads via dig(keypath) descend mappings by key or sequences by
// decimal index."
func (v *Value) Dig(keypath ...string) (*Value, bool) {
	cur := v
	for _, key := range keypath {
		if cur == nil {
			return nil, false
		}
		switch cur.Kind {
		case KindMapping:
			next, ok := cur.Mapping.Get(key)
			if !ok {
				return nil, false
			}
			cur = next
		case KindSequence:
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 || idx >= len(cur.Sequence) {
				return nil, false
			}
			cur = cur.Sequence[idx]
		default:
			return nil, false
		}
	}
	return cur, cur != nil
}

// AsStringForced coerces a scalar to string, including number-to-string.
func (v *Value) AsStringForced() (string, bool) {
	if v == nil || v.Kind != KindScalar {
		return "", false
	}
	switch t := v.Scalar.(type) {
	case string:
		return t, true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64), true
	case bool:
		if t {
			return "true", true
		}
		return "false", true
	case nil:
		return "", false
	default:
		return fmt.Sprint(t), true
	}
}

var truthy = map[string]bool{"true": true, "yes": true, "y": true, "on": true, "1": true}
var falsy = map[string]bool{"false": true, "no": true, "n": true, "off": true, "0": true}

// AsBoolForced coerces a scalar to bool per spec.md §4.1's accepted literal
// set, case-insensitively, including from a native bool or numeric scalar.
func (v *Value) AsBoolForced() (bool, bool) {
	if v == nil || v.Kind != KindScalar {
		return false, false
	}
	switch t := v.Scalar.(type) {
	case bool:
		return t, true
	case string:
		low := strings.ToLower(strings.TrimSpace(t))
		if truthy[low] {
			return true, true
		}
		if falsy[low] {
			return false, true
		}
		return false, false
	case int:
		return t != 0, true
	case int64:
		return t != 0, true
	case float64:
		return t != 0, true
	default:
		return false, false
	}
}

// AsIntForced coerces a scalar to int64.
func (v *Value) AsIntForced() (int64, bool) {
	if v == nil || v.Kind != KindScalar {
		return 0, false
	}
	switch t := v.Scalar.(type) {
	case int:
		return int64(t), true
	case int64:
		return t, true
	case float64:
		return int64(t), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		return n, err == nil
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// AsFloatForced coerces a scalar to float64.
func (v *Value) AsFloatForced() (float64, bool) {
	if v == nil || v.Kind != KindScalar {
		return 0, false
	}
	switch t := v.Scalar.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// CurrentScope returns the maximum scope found anywhere in the subtree,
// implementing spec.md §3's "current scope = max of subtree".
func (v *Value) CurrentScope() Scope {
	if v == nil {
		return ScopeNull
	}
	max := v.Scope
	switch v.Kind {
	case KindMapping:
		for _, k := range v.Mapping.Keys() {
			child, _ := v.Mapping.Get(k)
			if s := child.CurrentScope(); s > max {
				max = s
			}
		}
	case KindSequence:
		for _, child := range v.Sequence {
			if s := child.CurrentScope(); s > max {
				max = s
			}
		}
	}
	return max
}

// SelectScope returns a pruned subtree keeping only leaves whose provenance
// equals scope, preserving container nodes only if non-empty after pruning
// (spec.md §4.1).
func (v *Value) SelectScope(scope Scope) *Value {
	return v.filterScope(scope, true)
}

// RejectScope is SelectScope's complement: it drops leaves whose provenance
// equals scope.
func (v *Value) RejectScope(scope Scope) *Value {
	return v.filterScope(scope, false)
}

func (v *Value) filterScope(scope Scope, keep bool) *Value {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case KindMapping:
		out := NewMapping(v.Source, v.Scope)
		for _, k := range v.Mapping.Keys() {
			child, _ := v.Mapping.Get(k)
			filtered := child.filterScope(scope, keep)
			if filtered != nil && !(filtered.Kind != KindScalar && filtered.IsEmpty()) {
				out.Mapping.Set(k, filtered)
			}
		}
		if out.Mapping.Len() == 0 {
			return nil
		}
		return out
	case KindSequence:
		out := NewSequence(v.Source, v.Scope)
		for _, child := range v.Sequence {
			filtered := child.filterScope(scope, keep)
			if filtered != nil && !(filtered.Kind != KindScalar && filtered.IsEmpty()) {
				out.Sequence = append(out.Sequence, filtered)
			}
		}
		if len(out.Sequence) == 0 {
			return nil
		}
		return out
	default:
		matches := v.Scope == scope
		if matches == keep {
			return v
		}
		return nil
	}
}
