package syntax

import "testing"

// S4 — Arg parser export.
func TestBuildParseExportS4(t *testing.T) {
	s := Syntax{Parameters: []Parameter{
		{Names: []string{"--param1"}, Dest: "param1", ArgType: ArgType{Kind: TypeString}, Required: true},
		{Names: []string{"--param2"}, Dest: "param2", ArgType: ArgType{Kind: TypeInteger}},
	}}
	if err := CheckParameters(s); err != nil {
		t.Fatalf("check_parameters: %v", err)
	}
	p, err := BuildParser(s)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	res, err := p.Parse([]string{"--param1", "value1", "--param2", "42"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	env := Export(s, res)

	want := map[string]string{
		"OMNI_ARG_LIST":         "param1 param2",
		"OMNI_ARG_PARAM1_TYPE":  "str",
		"OMNI_ARG_PARAM1_VALUE": "value1",
		"OMNI_ARG_PARAM2_TYPE":  "int",
		"OMNI_ARG_PARAM2_VALUE": "42",
	}
	if len(env) != len(want) {
		t.Fatalf("got %d entries, want %d: %v", len(env), len(want), env)
	}
	for k, v := range want {
		if env[k] != v {
			t.Fatalf("%s: got %q want %q", k, env[k], v)
		}
	}
}
