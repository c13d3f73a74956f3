package core

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/field/goldilocks"
)

// Element is an element of the Goldilocks field GF(p), p = 2^64 - 2^32 + 1.
// Arithmetic is provided by gnark-crypto's generated field code.
type Element = goldilocks.Element

// FieldModulus is p = 2^64 - 2^32 + 1.
const FieldModulus uint64 = 0xffffffff00000001

// MaxTwoAdicity is the largest k with 2^k | p-1.
const MaxTwoAdicity = 32

// twoAdicGenerator is 7^((p-1)/2^32) mod p, a primitive 2^32-th root of unity
// (7 generates the multiplicative group of the Goldilocks field).
const twoAdicGenerator uint64 = 1753635133440165772

// NewElement returns the field element with the given canonical value.
func NewElement(v uint64) Element {
	return goldilocks.NewElement(v)
}

// ElementToUint64 returns the canonical residue of e.
func ElementToUint64(e Element) uint64 {
	var b big.Int
	e.BigInt(&b)
	return b.Uint64()
}

// ElementToBytes serializes e as 8 little-endian bytes of its canonical residue.
func ElementToBytes(e Element) [8]byte {
	var out [8]byte
	binary.LittleEndian.PutUint64(out[:], ElementToUint64(e))
	return out
}

// ElementFromBytes parses 8 little-endian bytes as a canonical field element.
// Non-canonical values (>= p) are rejected.
func ElementFromBytes(b []byte) (Element, error) {
	var z Element
	if len(b) != 8 {
		return z, fmt.Errorf("field element must be 8 bytes, got %d", len(b))
	}
	v := binary.LittleEndian.Uint64(b)
	if v >= FieldModulus {
		return z, fmt.Errorf("non-canonical field element %d", v)
	}
	z.SetUint64(v)
	return z, nil
}

// RootOfUnity returns a primitive 2^logN-th root of unity.
func RootOfUnity(logN int) (Element, error) {
	var root Element
	if logN < 0 || logN > MaxTwoAdicity {
		return root, fmt.Errorf("no 2^%d-th root of unity in the Goldilocks field", logN)
	}
	root.SetUint64(twoAdicGenerator)
	for k := MaxTwoAdicity; k > logN; k-- {
		root.Square(&root)
	}
	return root, nil
}

// Inverse returns e^-1. Inverting zero yields zero, matching the underlying
// field implementation; callers guard against zero where it matters.
func Inverse(e Element) Element {
	var inv Element
	inv.Inverse(&e)
	return inv
}

// ExpUint64 returns base^exp.
func ExpUint64(base Element, exp uint64) Element {
	var z Element
	z.Exp(base, new(big.Int).SetUint64(exp))
	return z
}
