package workdir

import "testing"

// Invariant 7: verify_id is true on the machine that minted the id and
// false on a different one.
func TestVerifyIDMachineBound(t *testing.T) {
	petname, hexDigits := NewID("machine-a")
	if !VerifyID("machine-a", petname, hexDigits) {
		t.Fatalf("expected id to verify on minting machine")
	}
	if VerifyID("machine-b", petname, hexDigits) {
		t.Fatalf("expected id to fail verification on a different machine")
	}
}

func TestParseIDFile(t *testing.T) {
	petname, hexDigits := NewID("m")
	contents := petname + ":" + hexDigits + "\n"
	gotPetname, gotHex, ok := ParseIDFile(contents)
	if !ok {
		t.Fatalf("expected valid id file to parse")
	}
	if gotPetname != petname || gotHex != hexDigits {
		t.Fatalf("got %q:%q want %q:%q", gotPetname, gotHex, petname, hexDigits)
	}
}

func TestParseIDFileRejectsMalformed(t *testing.T) {
	cases := []string{"", "just-one-word", "a-b-c:notatallhex", "a-b-c:deadbeef"}
	for _, c := range cases {
		if _, _, ok := ParseIDFile(c); ok {
			t.Fatalf("expected %q to be rejected", c)
		}
	}
}

func TestIDTypedPrefix(t *testing.T) {
	id := ID{Petname: "a-b-c", Hex: "0123456789abcdef", Flavor: FlavorWorktree}
	if id.Typed() != "worktree#a-b-c:0123456789abcdef" {
		t.Fatalf("got %q", id.Typed())
	}
	id.Flavor = FlavorPackage
	if id.Typed() != "package#a-b-c:0123456789abcdef" {
		t.Fatalf("got %q", id.Typed())
	}
}
