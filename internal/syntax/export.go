package syntax

import (
	"fmt"
	"strings"
)

// Export implements spec.md §4.2's OMNI_ARG_* convention: an
// OMNI_ARG_LIST of dests in declaration order, plus per-dest
// OMNI_ARG_<DEST>_TYPE and OMNI_ARG_<DEST>_VALUE entries, for every dest
// that received a value. Matches S4 of §8 exactly for a two-parameter
// schema with both values provided.
func Export(s Syntax, res *ParseResult) map[string]string {
	env := map[string]string{}
	var list []string
	for i := range s.Parameters {
		dest := s.Parameters[i].ResolvedDest()
		v, ok := res.Values[dest]
		if !ok {
			continue
		}
		list = append(list, dest)
		upper := strings.ToUpper(dest)
		env[fmt.Sprintf("OMNI_ARG_%s_TYPE", upper)] = res.Types[dest].String()
		env[fmt.Sprintf("OMNI_ARG_%s_VALUE", upper)] = formatValue(v)
	}
	env["OMNI_ARG_LIST"] = strings.Join(list, " ")
	return env
}

func formatValue(v any) string {
	switch val := v.(type) {
	case []string:
		return strings.Join(val, " ")
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(val)
	}
}
