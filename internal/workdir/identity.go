// Package workdir implements C5: workdir identity resolution, the
// per-workdir data directory, and the exclusive update lock with a
// tailable sync log, per spec.md §4.5.
package workdir

import (
	"encoding/hex"
	"fmt"
	"math/rand"
	"os"
	"regexp"
	"strings"

	"lukechampine.com/blake3"
)

// Flavor distinguishes the two kinds of identified workdir roots.
type Flavor int

const (
	FlavorWorktree Flavor = iota
	FlavorPackage
)

// ID holds a resolved workdir identity: the bare id, its flavor-prefixed
// typed form, and the root directory it was resolved from.
type ID struct {
	Petname string
	Hex     string // 16 hex digits, low 64 bits of blake3(machine_id ‖ petname)
	Root    string
	Flavor  Flavor
}

// String returns the bare "<petname>:<16 hex>" form.
func (id ID) String() string {
	return id.Petname + ":" + id.Hex
}

// Typed returns "package#<id>" or "worktree#<id>" per §4.5 "Trust derivation".
func (id ID) Typed() string {
	prefix := "worktree#"
	if id.Flavor == FlavorPackage {
		prefix = "package#"
	}
	return prefix + id.String()
}

var idFileRe = regexp.MustCompile(`^([a-z]+-[a-z]+-[a-z]+):([0-9a-f]{16})$`)

// ParseIDFile validates the contents of a .omni/id file against
// "<3-word-petname>:<16-hex>".
func ParseIDFile(contents string) (petname, hexDigits string, ok bool) {
	m := idFileRe.FindStringSubmatch(strings.TrimSpace(contents))
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// computeHex recomputes the low 64 bits of blake3(machine_id ‖ petname),
// hex-encoded to 16 digits.
func computeHex(machineID, petname string) string {
	h := blake3.New(32, nil)
	h.Write([]byte(machineID))
	h.Write([]byte(petname))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[24:32])
}

// VerifyID recomputes the hex half of id against the current machine id
// and reports whether it matches, per Invariant 7.
func VerifyID(machineID, petname, hexDigits string) bool {
	return computeHex(machineID, petname) == hexDigits
}

// NewID mints a fresh "petname:hex" pair for machineID.
func NewID(machineID string) (petname, hexDigits string) {
	petname = randomPetname()
	return petname, computeHex(machineID, petname)
}

func randomPetname() string {
	pick := func(words []string) string { return words[rand.Intn(len(words))] }
	return pick(petnameAdjectives) + "-" + pick(petnameAdjectives2) + "-" + pick(petnameNouns)
}

// MachineID reads the host's stable machine identifier, per the resolution
// order systemd-based and Linux distributions commonly provide. Falls back
// to the hostname if neither file is present (e.g. in a container without
// /etc/machine-id mounted), which keeps ids stable for the life of that
// container without requiring a generated-and-persisted fallback file.
func MachineID() (string, error) {
	for _, path := range []string{"/etc/machine-id", "/var/lib/dbus/machine-id"} {
		b, err := os.ReadFile(path)
		if err == nil {
			return strings.TrimSpace(string(b)), nil
		}
	}
	host, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("resolving machine id: %w", err)
	}
	return host, nil
}

var petnameAdjectives = []string{
	"able", "brave", "calm", "deft", "eager", "fleet", "glad", "hardy",
	"idle", "jolly", "keen", "lively", "merry", "neat", "open", "plain",
	"quiet", "ready", "swift", "tidy",
}

var petnameAdjectives2 = []string{
	"amber", "blue", "coral", "dusky", "emerald", "frosty", "golden", "hazel",
	"indigo", "jade", "lilac", "maroon", "olive", "pearl", "russet", "silver",
	"teal", "umber", "violet", "white",
}

var petnameNouns = []string{
	"badger", "crane", "otter", "falcon", "marten", "heron", "lynx", "newt",
	"osprey", "pika", "quail", "raven", "stoat", "tern", "vole", "wren",
	"ibex", "gecko", "finch", "mole",
}
