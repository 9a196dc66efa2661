package util

import (
	"github.com/cespare/xxhash"
)

// HashKey produces an `xxhash` hash from the given parts,
// separating them with a zero byte so that ("ab", "c") != ("a", "bc")
// NOTE: https://github.com/cespare/xxhash for more details
func HashKey(parts ...[]byte) uint64 {
	h := xxhash.New()

	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}

		h.Write(p)
	}

	return h.Sum64()
}
