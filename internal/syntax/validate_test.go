package syntax

import "testing"

// S3 — two parameters whose dest both resolve to paramdest must fail
// check_parameters() with the exact message from spec.md §8.
func TestCheckParametersDuplicateDest(t *testing.T) {
	s := Syntax{Parameters: []Parameter{
		{Names: []string{"--param-dest"}, ArgType: ArgType{Kind: TypeString}},
		{Names: []string{"--other"}, Dest: "param_dest", ArgType: ArgType{Kind: TypeString}},
	}}
	err := CheckParameters(s)
	if err == nil {
		t.Fatalf("expected error")
	}
	want := "identifier param_dest is defined more than once"
	if err.Error() != want {
		t.Fatalf("got %q want %q", err.Error(), want)
	}
}

func TestCheckParametersRejectsReservedHelp(t *testing.T) {
	s := Syntax{Parameters: []Parameter{
		{Names: []string{"-h"}, ArgType: ArgType{Kind: TypeFlag}},
	}}
	if err := CheckParameters(s); err == nil {
		t.Fatalf("expected reserved-name error")
	}
}

func TestCheckParametersUnknownCrossReference(t *testing.T) {
	s := Syntax{Parameters: []Parameter{
		{Names: []string{"--a"}, ArgType: ArgType{Kind: TypeString}, Requires: []string{"nope"}},
	}}
	if err := CheckParameters(s); err == nil {
		t.Fatalf("expected unknown-reference error")
	}
}

func TestCheckParametersMultiValuePositionalOrdering(t *testing.T) {
	s := Syntax{Parameters: []Parameter{
		{Names: []string{"many"}, ArgType: ArgType{Kind: TypeString}, NumValues: NumValues{Kind: NumAtLeast, Lo: 2}},
		{Names: []string{"trailing"}, ArgType: ArgType{Kind: TypeString}},
	}}
	if err := CheckParameters(s); err == nil {
		t.Fatalf("expected ordering violation error")
	}
}

func TestCheckParametersOK(t *testing.T) {
	s := Syntax{Parameters: []Parameter{
		{Names: []string{"--param1"}, ArgType: ArgType{Kind: TypeString}, Required: true},
		{Names: []string{"--param2"}, ArgType: ArgType{Kind: TypeInteger}},
	}}
	if err := CheckParameters(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
