// Package syntax implements C2: the declarative parameter/group schema
// (spec.md §3/§4.2) that compiles to a runtime argument parser (via
// github.com/spf13/pflag, the corpus's standard flag library) and exports
// typed results as OMNI_ARG_* environment variables for spawned commands.
package syntax

// ArgTypeKind is the sum-type tag for ArgType.
type ArgTypeKind int

const (
	TypeString ArgTypeKind = iota
	TypeDirPath
	TypeFilePath
	TypeRepoPath
	TypeInteger
	TypeFloat
	TypeBoolean
	TypeFlag
	TypeCounter
	TypeEnum
	TypeArray
)

// ArgType is spec.md §3's "Arg type" sum: a scalar kind, Enum(values), or
// Array(inner).
type ArgType struct {
	Kind   ArgTypeKind
	Values []string // for Enum
	Inner  *ArgType // for Array
}

func (t ArgType) String() string {
	switch t.Kind {
	case TypeString:
		return "str"
	case TypeDirPath:
		return "dirpath"
	case TypeFilePath:
		return "filepath"
	case TypeRepoPath:
		return "repopath"
	case TypeInteger:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBoolean:
		return "bool"
	case TypeFlag:
		return "flag"
	case TypeCounter:
		return "counter"
	case TypeEnum:
		return "enum"
	case TypeArray:
		if t.Inner != nil {
			return "array<" + t.Inner.String() + ">"
		}
		return "array"
	default:
		return "unknown"
	}
}

// IsPositional-relevant helpers used by validation.
func (t ArgType) isFlagLike() bool { return t.Kind == TypeFlag || t.Kind == TypeCounter }

// NumValuesKind is the sum-type tag for NumValues.
type NumValuesKind int

const (
	NumAny NumValuesKind = iota
	NumExactly
	NumAtLeast
	NumAtMost
	NumBetween
)

// NumValues is spec.md §3's "NumValues" sum: Any | Exactly(n) | AtLeast(n) |
// AtMost(n) | Between(lo,hi).
type NumValues struct {
	Kind NumValuesKind
	Lo   int
	Hi   int // only meaningful for Exactly (Lo==Hi), AtMost, Between
}

// Max returns the upper bound implied by this NumValues, or -1 if unbounded.
func (n NumValues) Max() int {
	switch n.Kind {
	case NumExactly:
		return n.Lo
	case NumAtMost, NumBetween:
		return n.Hi
	default:
		return -1
	}
}

// Min returns the lower bound implied by this NumValues.
func (n NumValues) Min() int {
	switch n.Kind {
	case NumExactly:
		return n.Lo
	case NumAtLeast, NumBetween:
		return n.Lo
	default:
		return 0
	}
}

// IsMany implements spec.md §3's "semantic method is_many() = max>1 ∨
// unbounded".
func (n NumValues) IsMany() bool {
	max := n.Max()
	return max == -1 || max > 1
}

// Parameter is spec.md §3's "Parameter" record.
type Parameter struct {
	Names               []string
	Dest                string
	Desc                string
	Required             bool
	Placeholders         []string
	ArgType              ArgType
	Default              any
	DefaultMissing       any
	NumValues            NumValues
	ValueDelimiter       string
	Last                 bool
	Leftovers            bool
	AllowHyphenValues    bool
	AllowNegativeNumbers bool
	GroupOccurrences     bool
	Requires             []string
	ConflictsWith        []string
	RequiredWithout      []string
	RequiredWithoutAll   []string
	RequiredIfEq         map[string]string
	RequiredIfEqAll      map[string]string
}

// IsPositional reports whether the parameter's primary name spec has no
// leading "-" (a name spec without it is truncated to a single alternative
// per spec.md §4.2 "Name spec").
func (p Parameter) IsPositional() bool {
	if len(p.Names) == 0 {
		return true
	}
	return p.Names[0][0] != '-'
}

// PrimaryName returns the first configured name.
func (p Parameter) PrimaryName() string {
	if len(p.Names) == 0 {
		return ""
	}
	return p.Names[0]
}

// ResolvedDest returns Dest if set, else Sanitize(PrimaryName()).
func (p Parameter) ResolvedDest() string {
	if p.Dest != "" {
		return Sanitize(p.Dest)
	}
	return Sanitize(p.PrimaryName())
}

// Group is spec.md §3's "Group" record.
type Group struct {
	Name          string
	Parameters    []string
	Multiple      bool
	Required      bool
	Requires      []string
	ConflictsWith []string
}

// Syntax is spec.md §3's "Syntax" record.
type Syntax struct {
	Usage      string
	Parameters []Parameter
	Groups     []Group
}
