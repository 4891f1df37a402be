package config

import "strings"

// Strategy is a merge override strategy (spec.md §3 "Merge options").
type Strategy int

const (
	StrategyDefault Strategy = iota
	StrategyAppend
	StrategyPrepend
	StrategyReplace
	StrategyKeep
	StrategyRaw
)

// MergeOptions controls how one incoming document merges into an existing
// tree: the override Strategy and whether path transforms apply.
type MergeOptions struct {
	Strategy  Strategy
	Transform bool
}

const (
	suffixAppend  = "__toappend"
	suffixPrepend = "__toprepend"
	suffixReplace = "__toreplace"
	suffixIfNone  = "__ifnone"
)

// splitKeySuffix inspects a mapping-entry key for the spec.md §4.1
// key-suffix reinterpretation rules, returning the bare key and the
// strategy it forces (StrategyDefault if no suffix matched).
func splitKeySuffix(key string) (string, Strategy) {
	switch {
	case strings.HasSuffix(key, suffixAppend):
		return strings.TrimSuffix(key, suffixAppend), StrategyAppend
	case strings.HasSuffix(key, suffixPrepend):
		return strings.TrimSuffix(key, suffixPrepend), StrategyPrepend
	case strings.HasSuffix(key, suffixReplace):
		return strings.TrimSuffix(key, suffixReplace), StrategyReplace
	case strings.HasSuffix(key, suffixIfNone):
		return strings.TrimSuffix(key, suffixIfNone), StrategyKeep
	default:
		return key, StrategyDefault
	}
}

// Merge ingests incoming into existing under opts, returning the merged
// tree. existing may be nil (treated as an empty/absent node). This is the
// single entry point implementing spec.md §4.1's "Merge rules" table plus
// the key-suffix / path.append.* / path.prepend.* / suggest_config
// reinterpretation and the Raw-strategy suppression of all of the above.
func Merge(existing, incoming *Value, opts MergeOptions, keypath []string) *Value {
	if incoming == nil {
		return existing
	}
	if opts.Strategy == StrategyRaw {
		return mergeRaw(existing, incoming)
	}

	if existing == nil || existing.Kind == KindNull {
		return adopt(incoming, opts, keypath)
	}

	switch existing.Kind {
	case KindMapping:
		if incoming.Kind != KindMapping {
			return replaceLeaf(incoming, opts, keypath)
		}
		return mergeMappings(existing, incoming, opts, keypath)
	case KindSequence:
		if incoming.Kind != KindSequence {
			return replaceLeaf(incoming, opts, keypath)
		}
		return mergeSequences(existing, incoming, opts)
	case KindScalar:
		if opts.Strategy == StrategyKeep {
			return existing
		}
		return replaceLeaf(incoming, opts, keypath)
	default:
		return adopt(incoming, opts, keypath)
	}
}

// adopt is used when the existing node is null/absent: incoming is adopted
// recursively, propagating the strategy into children per §4.1's merge
// table ("Null / absent: adopt incoming (recursive, strategy propagates)").
func adopt(incoming *Value, opts MergeOptions, keypath []string) *Value {
	switch incoming.Kind {
	case KindMapping:
		return mergeMappings(NewMapping(incoming.Source, incoming.Scope), incoming, opts, keypath)
	case KindSequence:
		return mergeSequences(NewSequence(incoming.Source, incoming.Scope), incoming, opts)
	default:
		return replaceLeaf(incoming, opts, keypath)
	}
}

func mergeMappings(existing, incoming *Value, opts MergeOptions, keypath []string) *Value {
	out := existing.Clone()
	if out.Mapping == nil {
		out.Mapping = NewOrderedMap()
	}
	out.Source = incoming.Source
	if incoming.Scope > out.Scope {
		out.Scope = incoming.Scope
	}

	for _, rawKey := range incoming.Mapping.Keys() {
		childIncoming, _ := incoming.Mapping.Get(rawKey)

		key := rawKey
		childOpts := opts
		if opts.Strategy != StrategyRaw {
			bareKey, forced := splitKeySuffix(rawKey)
			if forced != StrategyDefault {
				key = bareKey
				childOpts.Strategy = forced
			} else if len(keypath) >= 1 && keypath[len(keypath)-1] == "path" &&
				(rawKey == "append" || rawKey == "prepend") {
				// path.append.* / path.prepend.* entries infer their
				// strategy from the key itself (§4.1).
				if rawKey == "append" {
					childOpts.Strategy = StrategyAppend
				} else {
					childOpts.Strategy = StrategyPrepend
				}
			}
			if len(keypath) == 0 && rawKey == "suggest_config" {
				childOpts.Strategy = StrategyRaw
			}
		}

		childKeypath := append(append([]string{}, keypath...), key)
		existingChild, _ := out.Mapping.Get(key)
		merged := Merge(existingChild, childIncoming, childOpts, childKeypath)
		if merged != nil {
			out.Mapping.Set(key, merged)
		}
	}
	return out
}

func mergeSequences(existing, incoming *Value, opts MergeOptions) *Value {
	switch opts.Strategy {
	case StrategyAppend:
		return &Value{
			Kind:     KindSequence,
			Sequence: dedupAppend(existing.Sequence, incoming.Sequence),
			Source:   incoming.Source,
			Scope:    maxScope(existing.Scope, incoming.Scope),
		}
	case StrategyPrepend:
		return &Value{
			Kind:     KindSequence,
			Sequence: dedupAppend(incoming.Sequence, existing.Sequence),
			Source:   incoming.Source,
			Scope:    maxScope(existing.Scope, incoming.Scope),
		}
	case StrategyKeep:
		if !existing.IsEmpty() {
			return existing
		}
		return incoming
	default: // Default, Replace
		return &Value{
			Kind:     KindSequence,
			Sequence: append([]*Value(nil), incoming.Sequence...),
			Source:   incoming.Source,
			Scope:    incoming.Scope,
		}
	}
}

// dedupAppend concatenates base then extra, dropping any extra element that
// scalar-equals an element already present, per spec.md §3 invariant (c):
// "Append/Prepend on sequences deduplicate against the existing sequence."
func dedupAppend(base, extra []*Value) []*Value {
	seen := map[string]bool{}
	key := func(v *Value) (string, bool) {
		if v == nil || v.Kind != KindScalar {
			return "", false
		}
		s, ok := v.AsStringForced()
		return s, ok
	}
	out := append([]*Value(nil), base...)
	for _, v := range base {
		if k, ok := key(v); ok {
			seen[k] = true
		}
	}
	for _, v := range extra {
		if k, ok := key(v); ok {
			if seen[k] {
				continue
			}
			seen[k] = true
		}
		out = append(out, v)
	}
	return out
}

func replaceLeaf(incoming *Value, opts MergeOptions, keypath []string) *Value {
	if opts.Transform {
		return transformPath(incoming, keypath)
	}
	return incoming
}

// mergeRaw disables all suffix reinterpretation and path transforms within
// the subtree, performing a structural replace/adopt without recursion
// into suffix semantics (§4.1 invariant (a)).
func mergeRaw(existing, incoming *Value) *Value {
	rawOpts := MergeOptions{Strategy: StrategyRaw, Transform: false}
	if existing == nil || existing.Kind == KindNull {
		return cloneRaw(incoming)
	}
	if existing.Kind != incoming.Kind {
		return cloneRaw(incoming)
	}
	switch existing.Kind {
	case KindMapping:
		out := existing.Clone()
		for _, k := range incoming.Mapping.Keys() {
			childIncoming, _ := incoming.Mapping.Get(k)
			childExisting, _ := out.Mapping.Get(k)
			out.Mapping.Set(k, mergeRaw(childExisting, childIncoming))
		}
		_ = rawOpts
		return out
	case KindSequence:
		return cloneRaw(incoming)
	default:
		return incoming
	}
}

func cloneRaw(v *Value) *Value {
	return v
}

// Clone performs a shallow structural clone of a mapping Value (children
// are shared, the OrderedMap and top-level fields are copied) so merges
// don't mutate a shared parent tree in place.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	out := &Value{Kind: v.Kind, Scalar: v.Scalar, Source: v.Source, Scope: v.Scope}
	if v.Kind == KindMapping {
		if v.Mapping != nil {
			out.Mapping = v.Mapping.Clone()
		} else {
			out.Mapping = NewOrderedMap()
		}
	}
	if v.Kind == KindSequence {
		out.Sequence = append([]*Value(nil), v.Sequence...)
	}
	return out
}

func maxScope(a, b Scope) Scope {
	if a > b {
		return a
	}
	return b
}
