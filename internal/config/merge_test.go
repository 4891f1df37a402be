package config

import "testing"

func strVal(s string) *Value {
	return NewScalar(s, Source{Kind: SourceDefault}, ScopeDefault)
}

func mapVal(entries map[string]*Value) *Value {
	m := NewMapping(Source{Kind: SourceDefault}, ScopeDefault)
	for k, v := range entries {
		m.Mapping.Set(k, v)
	}
	return m
}

func seqVal(items ...*Value) *Value {
	s := NewSequence(Source{Kind: SourceDefault}, ScopeDefault)
	s.Sequence = items
	return s
}

// S2: merge strategy via suffix — {path:{prepend:["/a"]}} merged with
// {path:{prepend__toappend:["/b"]}} yields {path:{prepend:["/a","/b"]}}.
func TestMergeSuffixStrategy(t *testing.T) {
	existing := mapVal(map[string]*Value{
		"path": mapVal(map[string]*Value{
			"prepend": seqVal(strVal("/a")),
		}),
	})
	incoming := mapVal(map[string]*Value{
		"path": mapVal(map[string]*Value{
			"prepend__toappend": seqVal(strVal("/b")),
		}),
	})

	merged := Merge(existing, incoming, MergeOptions{Strategy: StrategyDefault}, nil)

	prependVal, ok := merged.Dig("path", "prepend")
	if !ok {
		t.Fatalf("path.prepend missing after merge")
	}
	if len(prependVal.Sequence) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(prependVal.Sequence))
	}
	a, _ := prependVal.Sequence[0].AsStringForced()
	b, _ := prependVal.Sequence[1].AsStringForced()
	if a != "/a" || b != "/b" {
		t.Fatalf("expected [/a /b], got [%s %s]", a, b)
	}
}

func TestMergeAppendDedups(t *testing.T) {
	existing := seqVal(strVal("/a"), strVal("/b"))
	incoming := seqVal(strVal("/b"), strVal("/c"))
	merged := mergeSequences(existing, incoming, MergeOptions{Strategy: StrategyAppend})
	var got []string
	for _, v := range merged.Sequence {
		s, _ := v.AsStringForced()
		got = append(got, s)
	}
	want := []string{"/a", "/b", "/c"}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}

func TestMergeKeepNeverOverwritesNonEmpty(t *testing.T) {
	existing := strVal("original")
	incoming := strVal("new")
	merged := Merge(existing, incoming, MergeOptions{Strategy: StrategyKeep}, nil)
	s, _ := merged.AsStringForced()
	if s != "original" {
		t.Fatalf("Keep overwrote existing value: got %q", s)
	}
}

func TestMergeTypeMismatchReplaces(t *testing.T) {
	existing := mapVal(map[string]*Value{"a": strVal("1")})
	incoming := strVal("scalar-now")
	merged := Merge(existing, incoming, MergeOptions{Strategy: StrategyDefault}, nil)
	if merged.Kind != KindScalar {
		t.Fatalf("expected type-mismatch replace to scalar, got kind %v", merged.Kind)
	}
}

// Invariant 1: associativity of merge for Append/Prepend/Replace/Keep.
func TestMergeAssociativity(t *testing.T) {
	a := mapVal(map[string]*Value{"k": seqVal(strVal("1"))})
	b := mapVal(map[string]*Value{"k": seqVal(strVal("2"))})
	c := mapVal(map[string]*Value{"k": seqVal(strVal("3"))})

	opts := MergeOptions{Strategy: StrategyAppend}
	left := Merge(Merge(a, b, opts, nil), c, opts, nil)
	right := Merge(a, Merge(b, c, opts, nil), opts, nil)

	lv, _ := left.Dig("k")
	rv, _ := right.Dig("k")
	if len(lv.Sequence) != len(rv.Sequence) {
		t.Fatalf("associativity broke: left=%d right=%d elements", len(lv.Sequence), len(rv.Sequence))
	}
	for i := range lv.Sequence {
		ls, _ := lv.Sequence[i].AsStringForced()
		rs, _ := rv.Sequence[i].AsStringForced()
		if ls != rs {
			t.Fatalf("associativity broke at %d: %q != %q", i, ls, rs)
		}
	}
}

func TestSelectRejectScope(t *testing.T) {
	tree := NewMapping(Source{Kind: SourceDefault}, ScopeDefault)
	tree.Mapping.Set("a", NewScalar("default-a", Source{Kind: SourceDefault}, ScopeDefault))
	tree.Mapping.Set("b", NewScalar("user-b", Source{Kind: SourceFile, Path: "u.yaml"}, ScopeUser))

	selected := tree.SelectScope(ScopeUser)
	if selected == nil {
		t.Fatalf("expected non-nil selection")
	}
	if _, ok := selected.Dig("a"); ok {
		t.Fatalf("SelectScope(User) should not keep default-scoped leaf")
	}
	if v, ok := selected.Dig("b"); !ok {
		t.Fatalf("SelectScope(User) should keep user-scoped leaf")
	} else if s, _ := v.AsStringForced(); s != "user-b" {
		t.Fatalf("unexpected value %q", s)
	}

	rejected := tree.RejectScope(ScopeUser)
	if _, ok := rejected.Dig("b"); ok {
		t.Fatalf("RejectScope(User) should drop user-scoped leaf")
	}
	if _, ok := rejected.Dig("a"); !ok {
		t.Fatalf("RejectScope(User) should keep default-scoped leaf")
	}
}

func TestAsBoolForcedLiterals(t *testing.T) {
	cases := map[string]bool{
		"true": true, "YES": true, "y": true, "On": true, "1": true,
		"false": false, "no": false, "N": false, "OFF": false, "0": false,
	}
	for lit, want := range cases {
		v := strVal(lit)
		got, ok := v.AsBoolForced()
		if !ok {
			t.Fatalf("%q did not parse as bool", lit)
		}
		if got != want {
			t.Fatalf("%q: got %v want %v", lit, got, want)
		}
	}
}
