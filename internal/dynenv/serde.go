package dynenv

import (
	"encoding/json"
	"fmt"
	"strings"
)

type wireScalarChange struct {
	P *string `json:"p,omitempty"`
	C *string `json:"c,omitempty"`
}

type wireListChange struct {
	O string `json:"o"`
	V string `json:"v"`
	I int    `json:"i"`
}

type wireState struct {
	V map[string]wireScalarChange `json:"v"`
	L map[string][]wireListChange `json:"l"`
}

func listOpCode(k ListOpKind) string {
	switch k {
	case ListCreate:
		return "c"
	case ListAdd:
		return "a"
	case ListDel:
		return "d"
	default:
		return "?"
	}
}

func parseListOpCode(s string) (ListOpKind, bool) {
	switch s {
	case "c":
		return ListCreate, true
	case "a":
		return ListAdd, true
	case "d":
		return ListDel, true
	default:
		return 0, false
	}
}

// Encode serializes state as `"<16-hex id>;<json>"`, per spec.md §4.4.
func Encode(s *State) (string, error) {
	if s == nil || s.ID == NoDynenv {
		return NoDynenv, nil
	}
	w := wireState{V: map[string]wireScalarChange{}, L: map[string][]wireListChange{}}
	for name, c := range s.V {
		w.V[name] = wireScalarChange{P: c.Prev, C: c.Curr}
	}
	for name, changes := range s.L {
		for _, c := range changes {
			w.L[name] = append(w.L[name], wireListChange{O: listOpCode(c.Op), V: c.Value, I: c.Index})
		}
	}
	payload, err := json.Marshal(w)
	if err != nil {
		return "", fmt.Errorf("encoding dynenv state: %w", err)
	}
	return s.ID + ";" + string(payload), nil
}

// Decode parses the `__omni_dynenv` variable's contents. Unknown list-op
// tags are skipped rather than aborting the whole decode: only the entry
// carrying the unknown tag is dropped, and the same variable's other
// entries are kept, so a partially forward-incompatible log still undoes
// what it can understand.
func Decode(raw string) (*State, error) {
	if raw == "" || raw == NoDynenv {
		return newState(NoDynenv), nil
	}
	idx := strings.IndexByte(raw, ';')
	if idx < 0 {
		return nil, fmt.Errorf("malformed dynenv state: missing ';' separator")
	}
	id, payload := raw[:idx], raw[idx+1:]

	var w wireState
	if err := json.Unmarshal([]byte(payload), &w); err != nil {
		return nil, fmt.Errorf("decoding dynenv state: %w", err)
	}

	s := newState(id)
	for name, c := range w.V {
		s.V[name] = ScalarChange{Prev: c.P, Curr: c.C}
	}
	for name, changes := range w.L {
		for _, c := range changes {
			kind, ok := parseListOpCode(c.O)
			if !ok {
				continue // unknown tag: no-op for this entry
			}
			s.L[name] = append(s.L[name], ListChange{Op: kind, Value: c.V, Index: c.I})
		}
	}
	return s, nil
}
