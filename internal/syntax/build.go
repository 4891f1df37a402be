package syntax

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// Parser is a Syntax schema compiled into a runtime pflag.FlagSet, per
// spec.md §4.2. Positional parameters are not modeled by pflag and are
// consumed manually from the flag set's residual arguments.
type Parser struct {
	syntax      Syntax
	flags       *pflag.FlagSet
	byDest      map[string]*Parameter
	positionals []*Parameter
}

// BuildParser compiles a validated Syntax into a runtime Parser. Callers
// must run CheckParameters(s) first; BuildParser does not re-validate.
func BuildParser(s Syntax) (*Parser, error) {
	fs := pflag.NewFlagSet(s.Usage, pflag.ContinueOnError)
	p := &Parser{syntax: s, flags: fs, byDest: map[string]*Parameter{}}

	for i := range s.Parameters {
		param := &s.Parameters[i]
		dest := param.ResolvedDest()
		p.byDest[dest] = param
		if param.IsPositional() {
			p.positionals = append(p.positionals, param)
			continue
		}
		if err := registerFlag(fs, param, dest); err != nil {
			return nil, fmt.Errorf("registering %s: %w", dest, err)
		}
	}
	return p, nil
}

func registerFlag(fs *pflag.FlagSet, param *Parameter, dest string) error {
	long, short := flagNames(param)
	switch param.ArgType.Kind {
	case TypeFlag:
		fs.BoolP(long, short, asBool(param.Default), param.Desc)
	case TypeCounter:
		fs.CountP(long, short, param.Desc)
	case TypeInteger:
		fs.IntP(long, short, asInt(param.Default), param.Desc)
	case TypeFloat:
		fs.Float64P(long, short, asFloat(param.Default), param.Desc)
	case TypeBoolean:
		fs.BoolP(long, short, asBool(param.Default), param.Desc)
	case TypeArray:
		fs.StringArrayP(long, short, nil, param.Desc)
	default:
		fs.StringP(long, short, asString(param.Default), param.Desc)
	}
	return nil
}

func flagNames(param *Parameter) (long, short string) {
	for _, n := range param.Names {
		switch {
		case strings.HasPrefix(n, "--"):
			long = strings.TrimPrefix(n, "--")
		case strings.HasPrefix(n, "-") && len(n) == 2:
			short = strings.TrimPrefix(n, "-")
		}
	}
	if long == "" {
		long = param.ResolvedDest()
	}
	return long, short
}

// Parse runs the compiled parser against args, per spec.md §4.2, then
// binds any remaining (non-flag) tokens to positional parameters in
// declaration order.
func (p *Parser) Parse(args []string) (*ParseResult, error) {
	if err := p.flags.Parse(args); err != nil {
		return nil, err
	}
	res := &ParseResult{Values: map[string]any{}, Types: map[string]ArgType{}}

	for dest, param := range p.byDest {
		if param.IsPositional() {
			continue
		}
		long, _ := flagNames(param)
		f := p.flags.Lookup(long)
		if f == nil || (!f.Changed && param.Default == nil) {
			continue
		}
		v, err := flagValue(f, param.ArgType)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", dest, err)
		}
		res.Values[dest] = v
		res.Types[dest] = param.ArgType
	}

	rest := p.flags.Args()
	for _, param := range p.positionals {
		if param.Leftovers {
			res.Values[param.ResolvedDest()] = rest
			res.Types[param.ResolvedDest()] = param.ArgType
			rest = nil
			continue
		}
		if len(rest) == 0 {
			continue
		}
		res.Values[param.ResolvedDest()] = rest[0]
		res.Types[param.ResolvedDest()] = param.ArgType
		rest = rest[1:]
	}

	return res, nil
}

// ParseResult is the typed outcome of a Parser.Parse call, consumed by
// Export to build the OMNI_ARG_* environment per spec.md §4.2.
type ParseResult struct {
	Values map[string]any
	Types  map[string]ArgType
}

func flagValue(f *pflag.Flag, t ArgType) (any, error) {
	switch t.Kind {
	case TypeInteger:
		return strconv.Atoi(f.Value.String())
	case TypeFloat:
		return strconv.ParseFloat(f.Value.String(), 64)
	case TypeBoolean, TypeFlag:
		return strconv.ParseBool(f.Value.String())
	case TypeCounter:
		return strconv.Atoi(f.Value.String())
	default:
		return f.Value.String(), nil
	}
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return 0
}

func asString(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
