package interp

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// Fingerprint hashes the size and tables of in. Canonical forms of
// isomorphic interpretations have equal fingerprints, which makes them
// usable as map or store keys for deduplication.
func Fingerprint(in *Interpretation) string {
	h := sha256.New()
	var buf [binary.MaxVarintLen64]byte
	put := func(v int) {
		k := binary.PutVarint(buf[:], int64(v))
		h.Write(buf[:k])
	}
	put(in.size)
	put(len(in.order))
	for _, s := range in.order {
		t := in.tables[s]
		put(len(s.Name))
		h.Write([]byte(s.Name))
		put(s.Arity)
		put(int(t.kind))
		for _, v := range t.values {
			put(v)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
