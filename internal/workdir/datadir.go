package workdir

import (
	"math/big"
	"path/filepath"

	"github.com/wrkdir/omni/internal/xdg"
	"lukechampine.com/blake3"
)

const base62Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// base62 encodes b as a base62 string, most-significant digit first, using
// the full precision of b rather than folding it into a machine word.
func base62(b []byte) string {
	n := new(big.Int).SetBytes(b)
	if n.Sign() == 0 {
		return string(base62Alphabet[0])
	}
	base := big.NewInt(62)
	mod := new(big.Int)
	var out []byte
	for n.Sign() > 0 {
		n.DivMod(n, base, mod)
		out = append([]byte{base62Alphabet[mod.Int64()]}, out...)
	}
	return string(out)
}

// DataDir returns the deterministic per-workdir data directory,
// `DATA_HOME/wd/<base62(blake3(id))[..20]>`, per spec.md §3.
func DataDir(id ID) string {
	h := blake3.New(32, nil)
	h.Write([]byte(id.String()))
	sum := h.Sum(nil)
	enc := base62(sum)
	if len(enc) > 20 {
		enc = enc[:20]
	}
	return filepath.Join(xdg.DataHome(), "wd", enc)
}
