package syntax

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/wrkdir/omni/internal/errs"
)

// Autocompletion is the metadata header's `autocompletion` tri-state.
type Autocompletion int

const (
	AutocompletionFalse Autocompletion = iota
	AutocompletionPartial
	AutocompletionFull
)

// Header is the parsed form of a script's in-file metadata header
// (spec.md §4.2 "in-file metadata headers").
type Header struct {
	Category       []string
	Help           string
	Autocompletion Autocompletion
	Argparser      bool
	SyncUpdate     bool
	Syntax         Syntax
}

var headerLineRe = regexp.MustCompile(`^#\s*([A-Za-z_]+|\+)\s*:\s*(.*)$`)

type pendingEntry struct {
	kind string // "arg", "opt", "arggroup"
	raw  []string
	line int
}

// ParseHeader implements the metadata header grammar of spec.md §6/§4.2:
// consecutive `# key: rest` lines, with `# +: rest` continuing the
// previous key by appending a newline-joined segment. The first
// non-matching line terminates header parsing.
func ParseHeader(lines []string, h *errs.Handler) Header {
	var categoryRaw []string
	var helpRaw []string
	var autocompletionRaw, argparserRaw, syncUpdateRaw string
	categorySeen, helpSeen, autocompletionSeen, argparserSeen, syncUpdateSeen := -1, -1, -1, -1, -1

	var entries []*pendingEntry
	var lastSingular string // one of "category","help","autocompletion","argparser","sync_update" or ""

	for i, line := range lines {
		m := headerLineRe.FindStringSubmatch(line)
		if m == nil {
			break
		}
		key, rest := m[1], m[2]

		if key == "+" {
			if len(entries) > 0 && lastSingular == "" {
				last := entries[len(entries)-1]
				last.raw = append(last.raw, rest)
				continue
			}
			switch lastSingular {
			case "category":
				categoryRaw = append(categoryRaw, rest)
			case "help":
				helpRaw = append(helpRaw, rest)
			case "autocompletion":
				autocompletionRaw += "\n" + rest
			case "argparser":
				argparserRaw += "\n" + rest
			case "sync_update":
				syncUpdateRaw += "\n" + rest
			default:
				h.Add(errs.Record{Kind: errs.ContinueWithoutKey, Line: i + 1, Extra: map[string]string{"rest": rest}})
			}
			continue
		}

		switch key {
		case "category":
			if categorySeen >= 0 {
				h.Add(errs.Record{Kind: errs.DuplicateKey, Line: i + 1, KeyPath: []string{"category"}, Extra: map[string]string{"prior_line": strconv.Itoa(categorySeen + 1)}})
			}
			categorySeen = i
			categoryRaw = []string{rest}
			lastSingular = "category"
		case "help":
			if helpSeen >= 0 {
				h.Add(errs.Record{Kind: errs.DuplicateKey, Line: i + 1, KeyPath: []string{"help"}, Extra: map[string]string{"prior_line": strconv.Itoa(helpSeen + 1)}})
			}
			helpSeen = i
			helpRaw = []string{rest}
			lastSingular = "help"
		case "autocompletion":
			if autocompletionSeen >= 0 {
				h.Add(errs.Record{Kind: errs.DuplicateKey, Line: i + 1, KeyPath: []string{"autocompletion"}, Extra: map[string]string{"prior_line": strconv.Itoa(autocompletionSeen + 1)}})
			}
			autocompletionSeen = i
			autocompletionRaw = rest
			lastSingular = "autocompletion"
		case "argparser":
			if argparserSeen >= 0 {
				h.Add(errs.Record{Kind: errs.DuplicateKey, Line: i + 1, KeyPath: []string{"argparser"}, Extra: map[string]string{"prior_line": strconv.Itoa(argparserSeen + 1)}})
			}
			argparserSeen = i
			argparserRaw = rest
			lastSingular = "argparser"
		case "sync_update":
			if syncUpdateSeen >= 0 {
				h.Add(errs.Record{Kind: errs.DuplicateKey, Line: i + 1, KeyPath: []string{"sync_update"}, Extra: map[string]string{"prior_line": strconv.Itoa(syncUpdateSeen + 1)}})
			}
			syncUpdateSeen = i
			syncUpdateRaw = rest
			lastSingular = "sync_update"
		case "arg", "opt", "arggroup":
			entries = append(entries, &pendingEntry{kind: key, raw: []string{rest}, line: i + 1})
			lastSingular = ""
		default:
			h.Add(errs.Record{Kind: errs.UnknownKey, Line: i + 1, KeyPath: []string{key}})
		}
	}

	hdr := Header{
		Category:       strings.Split(strings.Join(categoryRaw, "\n"), "\n"),
		Help:           strings.Join(helpRaw, "\n"),
		Autocompletion: parseAutocompletion(autocompletionRaw),
		Argparser:      parseBoolLiteral(argparserRaw),
		SyncUpdate:     parseBoolLiteral(syncUpdateRaw),
	}
	if len(categoryRaw) == 0 {
		hdr.Category = nil
	}

	if helpSeen < 0 {
		h.Add(errs.Record{Kind: errs.MissingHelp})
	}
	if len(entries) == 0 {
		h.Add(errs.Record{Kind: errs.MissingSyntax})
	}

	for _, e := range entries {
		switch e.kind {
		case "arg":
			if p, ok := parseParamEntry(e, true, h); ok {
				hdr.Syntax.Parameters = append(hdr.Syntax.Parameters, p)
			}
		case "opt":
			if p, ok := parseParamEntry(e, false, h); ok {
				hdr.Syntax.Parameters = append(hdr.Syntax.Parameters, p)
			}
		case "arggroup":
			if g, ok := parseGroupEntry(e, h); ok {
				hdr.Syntax.Groups = append(hdr.Syntax.Groups, g)
			}
		}
	}

	return hdr
}

func parseAutocompletion(raw string) Autocompletion {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "full":
		return AutocompletionFull
	case "partial":
		return AutocompletionPartial
	default:
		return AutocompletionFalse
	}
}

func parseBoolLiteral(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "yes", "y", "on", "1":
		return true
	default:
		return false
	}
}

var kvRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*=`)

// segments flattens the entry's raw lines into ": "-delimited tokens, the
// way the grammar composes a first line's colon-separated fields with one
// field per continuation line.
func (e *pendingEntry) segments() []string {
	var tokens []string
	for _, line := range e.raw {
		tokens = append(tokens, strings.Split(line, ": ")...)
	}
	return tokens
}

func parseParamEntry(e *pendingEntry, required bool, h *errs.Handler) (Parameter, bool) {
	tokens := e.segments()
	if len(tokens) == 0 {
		h.Add(errs.Record{Kind: errs.ParameterEmptyPart, Line: e.line})
		return Parameter{}, false
	}
	nameSpec := tokens[0]
	rest := tokens[1:]

	var desc string
	kv := map[string]string{}
	for i, tok := range rest {
		if kvRe.MatchString(tok) {
			eq := strings.IndexByte(tok, '=')
			kv[tok[:eq]] = tok[eq+1:]
			continue
		}
		if i != len(rest)-1 {
			h.Add(errs.Record{Kind: errs.ParameterInvalidKeyValue, Line: e.line, Extra: map[string]string{"token": tok}})
			continue
		}
		desc = tok
	}
	if desc == "" {
		h.Add(errs.Record{Kind: errs.ParameterMissingDescription, Line: e.line})
	}

	p := Parameter{
		Names:    splitNameSpec(nameSpec),
		Desc:     desc,
		Required: required,
	}
	if v, ok := kv["dest"]; ok {
		p.Dest = v
	}
	if v, ok := kv["type"]; ok {
		p.ArgType = parseArgTypeSpec(v)
	}
	if v, ok := kv["delimiter"]; ok {
		p.ValueDelimiter = v
	}
	if v, ok := kv["last"]; ok {
		p.Last = parseBoolLiteral(v)
	}
	if v, ok := kv["leftovers"]; ok {
		p.Leftovers = parseBoolLiteral(v)
	}
	if v, ok := kv["allow_hyphen_values"]; ok {
		p.AllowHyphenValues = parseBoolLiteral(v)
	}
	if v, ok := kv["allow_negative_numbers"]; ok {
		p.AllowNegativeNumbers = parseBoolLiteral(v)
	}
	if v, ok := kv["group_occurrences"]; ok {
		p.GroupOccurrences = parseBoolLiteral(v)
	}
	if v, ok := kv["requires"]; ok {
		p.Requires = strings.Fields(v)
	}
	if v, ok := kv["conflicts_with"]; ok {
		p.ConflictsWith = strings.Fields(v)
	}
	if v, ok := kv["num_values"]; ok {
		p.NumValues = parseNumValuesSpec(v)
	}
	return p, true
}

func parseGroupEntry(e *pendingEntry, h *errs.Handler) (Group, bool) {
	tokens := e.segments()
	if len(tokens) < 2 {
		h.Add(errs.Record{Kind: errs.GroupEmptyPart, Line: e.line})
		return Group{}, false
	}
	name := tokens[0]
	rest := tokens[1 : len(tokens)-1]
	params := strings.Fields(tokens[len(tokens)-1])
	if len(params) == 0 {
		h.Add(errs.Record{Kind: errs.GroupMissingParameters, Line: e.line, KeyPath: []string{name}})
		return Group{}, false
	}
	g := Group{Name: name, Parameters: params}
	for _, tok := range rest {
		if !kvRe.MatchString(tok) {
			h.Add(errs.Record{Kind: errs.GroupUnknownConfigKey, Line: e.line, Extra: map[string]string{"token": tok}})
			continue
		}
		eq := strings.IndexByte(tok, '=')
		key, val := tok[:eq], tok[eq+1:]
		switch key {
		case "multiple":
			g.Multiple = parseBoolLiteral(val)
		case "required":
			g.Required = parseBoolLiteral(val)
		case "requires":
			g.Requires = strings.Fields(val)
		case "conflicts_with":
			g.ConflictsWith = strings.Fields(val)
		default:
			h.Add(errs.Record{Kind: errs.GroupUnknownConfigKey, Line: e.line, KeyPath: []string{key}})
		}
	}
	return g, true
}

func splitNameSpec(spec string) []string {
	parts := strings.Split(spec, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseArgTypeSpec(spec string) ArgType {
	spec = strings.TrimSpace(spec)
	switch spec {
	case "str", "string":
		return ArgType{Kind: TypeString}
	case "int", "integer":
		return ArgType{Kind: TypeInteger}
	case "float":
		return ArgType{Kind: TypeFloat}
	case "bool", "boolean":
		return ArgType{Kind: TypeBoolean}
	case "flag":
		return ArgType{Kind: TypeFlag}
	case "counter":
		return ArgType{Kind: TypeCounter}
	case "dirpath":
		return ArgType{Kind: TypeDirPath}
	case "filepath":
		return ArgType{Kind: TypeFilePath}
	case "repopath":
		return ArgType{Kind: TypeRepoPath}
	}
	if strings.HasPrefix(spec, "enum(") && strings.HasSuffix(spec, ")") {
		values := strings.Split(spec[len("enum(") : len(spec)-1], ",")
		for i := range values {
			values[i] = strings.TrimSpace(values[i])
		}
		return ArgType{Kind: TypeEnum, Values: values}
	}
	if strings.HasPrefix(spec, "array<") && strings.HasSuffix(spec, ">") {
		inner := parseArgTypeSpec(spec[len("array<") : len(spec)-1])
		return ArgType{Kind: TypeArray, Inner: &inner}
	}
	return ArgType{Kind: TypeString}
}

func parseNumValuesSpec(spec string) NumValues {
	spec = strings.TrimSpace(spec)
	if spec == "any" || spec == "" {
		return NumValues{Kind: NumAny}
	}
	if strings.HasSuffix(spec, "+") {
		n, _ := strconv.Atoi(strings.TrimSuffix(spec, "+"))
		return NumValues{Kind: NumAtLeast, Lo: n}
	}
	if strings.HasPrefix(spec, "..") {
		n, _ := strconv.Atoi(strings.TrimPrefix(spec, ".."))
		return NumValues{Kind: NumAtMost, Hi: n}
	}
	if idx := strings.Index(spec, ".."); idx >= 0 {
		lo, _ := strconv.Atoi(spec[:idx])
		hi, _ := strconv.Atoi(spec[idx+2:])
		return NumValues{Kind: NumBetween, Lo: lo, Hi: hi}
	}
	n, _ := strconv.Atoi(spec)
	return NumValues{Kind: NumExactly, Lo: n, Hi: n}
}
