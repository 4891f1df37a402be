package dynenv

import (
	"encoding/hex"
	"strings"

	"lukechampine.com/blake3"
)

// listVars are variables the apply/undo engine treats as ':'-joined
// ordered lists (PATH-like) rather than opaque scalars.
var listVars = map[string]bool{
	"PATH": true, "GEM_PATH": true, "GOPATH": true,
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	return strings.Split(v, ":")
}

func joinList(items []string) string {
	return strings.Join(items, ":")
}

// TargetID computes the blake3-derived dynenv id over the ordered
// planning inputs plus shell PPID and workdir root/id, per spec.md §4.4
// "Apply vs. undo".
func TargetID(planSignature, shellPPID, workdirRoot, workdirID string) string {
	h := blake3.New(32, nil)
	h.Write([]byte(planSignature))
	h.Write([]byte{0})
	h.Write([]byte(shellPPID))
	h.Write([]byte{0})
	h.Write([]byte(workdirRoot))
	h.Write([]byte{0})
	h.Write([]byte(workdirID))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:8])
}

// Apply runs plan against env in declared order and returns the resulting
// environment plus the State needed to undo it later.
func Apply(env map[string]string, plan []PlanOp, targetID string) (map[string]string, *State) {
	result := make(map[string]string, len(env))
	for k, v := range env {
		result[k] = v
	}
	state := newState(targetID)

	for _, op := range plan {
		if listVars[op.Name] {
			applyListOp(result, state, op)
			continue
		}
		applyScalarOp(result, state, op)
	}
	return result, state
}

func applyScalarOp(env map[string]string, state *State, op PlanOp) {
	prevVal, existed := env[op.Name]
	var prevPtr *string
	if existed {
		v := prevVal
		prevPtr = &v
	}

	var newVal string
	switch op.Op {
	case OpSet:
		newVal = op.Value
	case OpPrefix:
		newVal = op.Value + prevVal
	case OpSuffix:
		newVal = prevVal + op.Value
	case OpRemove:
		delete(env, op.Name)
		state.recordScalar(op.Name, prevPtr, nil)
		return
	default:
		newVal = op.Value
	}
	env[op.Name] = newVal
	cv := newVal
	state.recordScalar(op.Name, prevPtr, &cv)
}

func (s *State) recordScalar(name string, prev, curr *string) {
	if existing, ok := s.V[name]; ok {
		existing.Curr = curr
		s.V[name] = existing
		return
	}
	s.V[name] = ScalarChange{Prev: prev, Curr: curr}
}

func applyListOp(env map[string]string, state *State, op PlanOp) {
	_, existed := env[op.Name]
	list := splitList(env[op.Name])

	switch op.Op {
	case OpPrepend:
		list = append([]string{op.Value}, list...)
		kind := ListAdd
		if !existed {
			kind = ListCreate
		}
		state.L[op.Name] = append(state.L[op.Name], ListChange{Op: kind, Value: op.Value, Index: 0})
	case OpAppend:
		idx := len(list)
		list = append(list, op.Value)
		kind := ListAdd
		if !existed {
			kind = ListCreate
		}
		state.L[op.Name] = append(state.L[op.Name], ListChange{Op: kind, Value: op.Value, Index: idx})
	case OpRemove:
		for i, v := range list {
			if v == op.Value {
				state.L[op.Name] = append(state.L[op.Name], ListChange{Op: ListDel, Value: op.Value, Index: i})
				list = append(list[:i], list[i+1:]...)
				break
			}
		}
	}
	env[op.Name] = joinList(list)
}

// Undo reverses state's recorded operations in reverse order, per
// Invariant 6: `undo(apply(E,P)) = E` except for variables the user
// changed manually between apply and undo, which are left as-is.
func Undo(env map[string]string, state *State) map[string]string {
	result := make(map[string]string, len(env))
	for k, v := range env {
		result[k] = v
	}

	for name, change := range state.V {
		current, exists := result[name]
		if change.Curr != nil {
			if !exists || current != *change.Curr {
				continue // user changed it since apply: leave as-is
			}
		}
		if change.Prev == nil {
			delete(result, name)
		} else {
			result[name] = *change.Prev
		}
	}

	for name, changes := range state.L {
		list := splitList(result[name])
		for i := len(changes) - 1; i >= 0; i-- {
			c := changes[i]
			switch c.Op {
			case ListCreate:
				delete(result, name)
				list = nil
			case ListAdd:
				list = removeNearest(list, c.Value, c.Index)
			case ListDel:
				list = insertAt(list, c.Index, c.Value)
			}
		}
		if _, ok := result[name]; ok {
			result[name] = joinList(list)
		}
	}

	return result
}

// removeNearest removes the occurrence of value nearest to index i.
func removeNearest(list []string, value string, i int) []string {
	best := -1
	bestDist := -1
	for idx, v := range list {
		if v != value {
			continue
		}
		dist := idx - i
		if dist < 0 {
			dist = -dist
		}
		if best == -1 || dist < bestDist {
			best, bestDist = idx, dist
		}
	}
	if best == -1 {
		return list
	}
	return append(list[:best], list[best+1:]...)
}

func insertAt(list []string, i int, value string) []string {
	if i < 0 {
		i = 0
	}
	if i > len(list) {
		i = len(list)
	}
	out := make([]string, 0, len(list)+1)
	out = append(out, list[:i]...)
	out = append(out, value)
	out = append(out, list[i:]...)
	return out
}
