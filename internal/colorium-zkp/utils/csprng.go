package utils

import (
	"lukechampine.com/blake3"
)

const permutationSourceContext = "colorium-zkp permutation source v1"

// PermutationSource draws the prover's per-round color permutations from a
// Blake3 XOF keyed by the proving-session seed. The seed is the
// zero-knowledge witness randomness: it never touches the transcript and must
// never be logged or persisted.
type PermutationSource struct {
	xof *blake3.OutputReader
}

// NewPermutationSource creates a deterministic permutation stream for a seed.
func NewPermutationSource(seed [32]byte) *PermutationSource {
	key := make([]byte, 32)
	blake3.DeriveKey(key, permutationSourceContext, seed[:])
	h := blake3.New(32, key)
	return &PermutationSource{xof: h.XOF()}
}

// Next draws a uniformly random permutation of {0,1,2} (Fisher-Yates with
// rejection sampling, so the draw is unbiased).
func (s *PermutationSource) Next() [3]uint8 {
	perm := [3]uint8{0, 1, 2}
	for i := 2; i >= 1; i-- {
		j := s.drawBelow(uint8(i) + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm
}

func (s *PermutationSource) drawBelow(bound uint8) uint8 {
	limit := 256 - 256%int(bound)
	var b [1]byte
	for {
		s.xof.Read(b[:])
		if int(b[0]) < limit {
			return b[0] % bound
		}
	}
}
