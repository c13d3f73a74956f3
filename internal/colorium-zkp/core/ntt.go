package core

import (
	"fmt"
	"math/bits"
)

// NTT evaluates the polynomial with coefficient slice a over the subgroup
// generated by root, in place. len(a) must be a power of two and root a
// primitive len(a)-th root of unity. Output is in natural order:
// a[k] = P(root^k).
func NTT(a []Element, root Element) error {
	n := len(a)
	if n == 0 || n&(n-1) != 0 {
		return fmt.Errorf("NTT size must be a power of two, got %d", n)
	}
	bitReverse(a)
	for length := 2; length <= n; length <<= 1 {
		wlen := ExpUint64(root, uint64(n/length))
		half := length / 2
		for start := 0; start < n; start += length {
			var w Element
			w.SetOne()
			for j := 0; j < half; j++ {
				u := a[start+j]
				var v Element
				v.Mul(&a[start+j+half], &w)
				a[start+j].Add(&u, &v)
				a[start+j+half].Sub(&u, &v)
				w.Mul(&w, &wlen)
			}
		}
	}
	return nil
}

// INTT is the inverse transform of NTT over the same subgroup.
func INTT(a []Element, root Element) error {
	n := len(a)
	if n == 0 || n&(n-1) != 0 {
		return fmt.Errorf("INTT size must be a power of two, got %d", n)
	}
	if err := NTT(a, Inverse(root)); err != nil {
		return err
	}
	nInv := Inverse(NewElement(uint64(n)))
	for i := range a {
		a[i].Mul(&a[i], &nInv)
	}
	return nil
}

// InterpolateSubgroup returns the coefficients of the unique polynomial of
// degree < len(evals) whose evaluations over the order-len(evals) subgroup
// are evals. The input slice is not modified.
func InterpolateSubgroup(evals []Element) ([]Element, error) {
	n := len(evals)
	if n == 0 || n&(n-1) != 0 {
		return nil, fmt.Errorf("interpolation size must be a power of two, got %d", n)
	}
	root, err := RootOfUnity(bits.TrailingZeros(uint(n)))
	if err != nil {
		return nil, err
	}
	coeffs := make([]Element, n)
	copy(coeffs, evals)
	if err := INTT(coeffs, root); err != nil {
		return nil, err
	}
	return coeffs, nil
}

// EvaluateSubgroup evaluates the polynomial with the given coefficients over
// the order-size subgroup. size must be a power of two and at least
// len(coeffs). The input slice is not modified.
func EvaluateSubgroup(coeffs []Element, size int) ([]Element, error) {
	if size < len(coeffs) {
		return nil, fmt.Errorf("evaluation domain %d smaller than coefficient count %d", size, len(coeffs))
	}
	if size == 0 || size&(size-1) != 0 {
		return nil, fmt.Errorf("evaluation domain must be a power of two, got %d", size)
	}
	root, err := RootOfUnity(bits.TrailingZeros(uint(size)))
	if err != nil {
		return nil, err
	}
	evals := make([]Element, size)
	copy(evals, coeffs)
	if err := NTT(evals, root); err != nil {
		return nil, err
	}
	return evals, nil
}

func bitReverse(a []Element) {
	n := len(a)
	shift := 64 - uint(bits.TrailingZeros(uint(n)))
	for i := range a {
		j := int(bits.Reverse64(uint64(i)) >> shift)
		if i < j {
			a[i], a[j] = a[j], a[i]
		}
	}
}
