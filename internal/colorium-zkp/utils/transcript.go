package utils

import (
	"encoding/binary"
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"lukechampine.com/blake3"

	"github.com/colorium/colorium-zkp/internal/colorium-zkp/core"
)

// Transcript is the Fiat-Shamir state: a running keyed Blake3 hasher. The
// prover and verifier absorb identical byte sequences in identical order, so
// both derive identical challenges. Absorption is append-only.
//
// Each challenge call absorbs its label (under the FRI-challenge domain tag)
// and then squeezes from an XOF over the current state. The protocol's fixed
// absorption schedule guarantees no two challenge calls see the same state.
type Transcript struct {
	h *blake3.Hasher
}

// NewTranscript creates a transcript keyed by the given protocol identifier.
func NewTranscript(protocolID string) *Transcript {
	key := make([]byte, 32)
	blake3.DeriveKey(key, protocolID, nil)
	return &Transcript{h: blake3.New(32, key)}
}

// Absorb appends labeled bytes to the transcript:
// 0x03 || len(label) as u16 BE || label || len(data) as u64 BE || data.
func (t *Transcript) Absorb(label string, data []byte) {
	var hdr [1 + 2]byte
	hdr[0] = core.TagTranscript
	binary.BigEndian.PutUint16(hdr[1:], uint16(len(label)))
	t.h.Write(hdr[:])
	t.h.Write([]byte(label))
	var dlen [8]byte
	binary.BigEndian.PutUint64(dlen[:], uint64(len(data)))
	t.h.Write(dlen[:])
	t.h.Write(data)
}

// AbsorbDigest absorbs a 32-byte digest under the given label.
func (t *Transcript) AbsorbDigest(label string, d core.Digest) {
	t.Absorb(label, d[:])
}

// squeeze absorbs the challenge label and returns an XOF over the resulting
// state. All draws for one challenge (including rejected ones) come from the
// same stream.
func (t *Transcript) squeeze(label string) *blake3.OutputReader {
	var hdr [1 + 2]byte
	hdr[0] = core.TagFriChallenge
	binary.BigEndian.PutUint16(hdr[1:], uint16(len(label)))
	t.h.Write(hdr[:])
	t.h.Write([]byte(label))
	return t.h.XOF()
}

func drawU64(xof *blake3.OutputReader) uint64 {
	var buf [8]byte
	xof.Read(buf[:])
	return binary.LittleEndian.Uint64(buf[:])
}

// ChallengeU64 derives a 64-bit challenge for the given label.
func (t *Transcript) ChallengeU64(label string) uint64 {
	return drawU64(t.squeeze(label))
}

// ChallengeIndex derives an index in [0, n), rejection-sampling away the
// modulo-bias zone.
func (t *Transcript) ChallengeIndex(label string, n uint64) (uint64, error) {
	if n == 0 {
		return 0, fmt.Errorf("challenge index range must be positive")
	}
	xof := t.squeeze(label)
	return drawIndex(xof, n), nil
}

func drawIndex(xof *blake3.OutputReader, n uint64) uint64 {
	// reject draws >= floor(2^64/n)*n
	rem := (^uint64(0)%n + 1) % n
	for {
		v := drawU64(xof)
		if rem != 0 && v >= ^uint64(0)-rem+1 {
			continue
		}
		return v % n
	}
}

// ChallengeIndices derives count indices in [0, n) for one label. With
// distinct set, indices are rejection-sampled until pairwise distinct; the
// result preserves draw order.
func (t *Transcript) ChallengeIndices(label string, n uint64, count int, distinct bool) ([]uint64, error) {
	if n == 0 {
		return nil, fmt.Errorf("challenge index range must be positive")
	}
	if distinct && uint64(count) > n {
		return nil, fmt.Errorf("cannot draw %d distinct indices from [0, %d)", count, n)
	}
	xof := t.squeeze(label)
	out := make([]uint64, 0, count)
	seen := bitset.New(uint(n))
	for len(out) < count {
		idx := drawIndex(xof, n)
		if distinct {
			if seen.Test(uint(idx)) {
				continue
			}
			seen.Set(uint(idx))
		}
		out = append(out, idx)
	}
	return out, nil
}

// ChallengeQueries derives count distinct indices in [0, n) that are not
// multiples of stride. Pass stride 1 to disable the filter. Used for FRI
// query sampling, where positions on the trace subgroup have vanishing
// constraint denominators.
func (t *Transcript) ChallengeQueries(label string, n uint64, count int, stride uint64) ([]uint64, error) {
	if n == 0 || stride == 0 {
		return nil, fmt.Errorf("challenge query range and stride must be positive")
	}
	admissible := n - (n-1)/stride - 1
	if stride == 1 {
		admissible = n
	}
	if uint64(count) > admissible {
		return nil, fmt.Errorf("cannot draw %d distinct filtered indices from [0, %d)", count, n)
	}
	xof := t.squeeze(label)
	out := make([]uint64, 0, count)
	seen := bitset.New(uint(n))
	for len(out) < count {
		idx := drawIndex(xof, n)
		if stride > 1 && idx%stride == 0 {
			continue
		}
		if seen.Test(uint(idx)) {
			continue
		}
		seen.Set(uint(idx))
		out = append(out, idx)
	}
	return out, nil
}

// ChallengeField derives a uniform Goldilocks field element.
func (t *Transcript) ChallengeField(label string) core.Element {
	return fieldFromXOF(t.squeeze(label))
}

// ChallengeFields derives count uniform field elements for one label.
func (t *Transcript) ChallengeFields(label string, count int) []core.Element {
	xof := t.squeeze(label)
	out := make([]core.Element, count)
	for i := range out {
		out[i] = fieldFromXOF(xof)
	}
	return out
}

func fieldFromXOF(xof *blake3.OutputReader) core.Element {
	for {
		v := drawU64(xof)
		if v < core.FieldModulus {
			return core.NewElement(v)
		}
	}
}
