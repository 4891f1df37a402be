package syntax

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// rawSyntax mirrors the `syntax:` YAML block's shape before it is lifted
// into the typed Syntax model, per spec.md §4.2 ingestion path (a).
type rawSyntax struct {
	Usage      string                   `mapstructure:"usage"`
	Parameters []map[string]any         `mapstructure:"parameters"`
	Groups     []map[string]any         `mapstructure:"groups"`
}

// DecodeSyntaxBlock lifts a generic YAML-decoded map (as produced by
// yaml.v3 unmarshaling into `any`) into a Syntax value, using mapstructure
// for the struct-shaped parts of the schema.
func DecodeSyntaxBlock(raw map[string]any) (Syntax, error) {
	var rs rawSyntax
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &rs,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return Syntax{}, fmt.Errorf("building syntax decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return Syntax{}, fmt.Errorf("decoding syntax block: %w", err)
	}

	s := Syntax{Usage: rs.Usage}
	for _, pm := range rs.Parameters {
		p, err := decodeParameter(pm)
		if err != nil {
			return Syntax{}, err
		}
		s.Parameters = append(s.Parameters, p)
	}
	for _, gm := range rs.Groups {
		g, err := decodeGroup(gm)
		if err != nil {
			return Syntax{}, err
		}
		s.Groups = append(s.Groups, g)
	}
	return s, nil
}

func decodeParameter(m map[string]any) (Parameter, error) {
	var p Parameter
	if names, ok := m["names"].([]any); ok {
		for _, n := range names {
			p.Names = append(p.Names, fmt.Sprint(n))
		}
	} else if name, ok := m["name"].(string); ok {
		p.Names = []string{name}
	}
	if v, ok := m["dest"].(string); ok {
		p.Dest = v
	}
	if v, ok := m["desc"].(string); ok {
		p.Desc = v
	}
	if v, ok := m["required"].(bool); ok {
		p.Required = v
	}
	if v, ok := m["type"].(string); ok {
		p.ArgType = parseArgTypeSpec(v)
	}
	if v, ok := m["default"]; ok {
		p.Default = v
	}
	if v, ok := m["default_missing"]; ok {
		p.DefaultMissing = v
	}
	if v, ok := m["num_values"]; ok {
		p.NumValues = parseNumValuesSpec(fmt.Sprint(v))
	}
	if v, ok := m["delimiter"].(string); ok {
		p.ValueDelimiter = v
	}
	if v, ok := m["last"].(bool); ok {
		p.Last = v
	}
	if v, ok := m["leftovers"].(bool); ok {
		p.Leftovers = v
	}
	if v, ok := m["allow_hyphen_values"].(bool); ok {
		p.AllowHyphenValues = v
	}
	if v, ok := m["allow_negative_numbers"].(bool); ok {
		p.AllowNegativeNumbers = v
	}
	if v, ok := m["group_occurrences"].(bool); ok {
		p.GroupOccurrences = v
	}
	p.Requires = stringList(m["requires"])
	p.ConflictsWith = stringList(m["conflicts_with"])
	p.RequiredWithout = stringList(m["required_without"])
	p.RequiredWithoutAll = stringList(m["required_without_all"])
	p.RequiredIfEq = stringMap(m["required_if_eq"])
	p.RequiredIfEqAll = stringMap(m["required_if_eq_all"])
	return p, nil
}

func decodeGroup(m map[string]any) (Group, error) {
	var g Group
	if v, ok := m["name"].(string); ok {
		g.Name = v
	}
	g.Parameters = stringList(m["parameters"])
	if v, ok := m["multiple"].(bool); ok {
		g.Multiple = v
	}
	if v, ok := m["required"].(bool); ok {
		g.Required = v
	}
	g.Requires = stringList(m["requires"])
	g.ConflictsWith = stringList(m["conflicts_with"])
	return g, nil
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, fmt.Sprint(it))
	}
	return out
}

func stringMap(v any) map[string]string {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, val := range m {
		out[k] = fmt.Sprint(val)
	}
	return out
}
