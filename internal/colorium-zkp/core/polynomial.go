package core

import "fmt"

// EvalPoly evaluates the polynomial with the given coefficients at x (Horner).
func EvalPoly(coeffs []Element, x Element) Element {
	var acc Element
	for i := len(coeffs) - 1; i >= 0; i-- {
		acc.Mul(&acc, &x)
		acc.Add(&acc, &coeffs[i])
	}
	return acc
}

// MulByLinear multiplies the polynomial by (x - c) in coefficient form.
func MulByLinear(coeffs []Element, c Element) []Element {
	out := make([]Element, len(coeffs)+1)
	var negC Element
	negC.Neg(&c)
	for i, a := range coeffs {
		var t Element
		t.Mul(&a, &negC)
		out[i].Add(&out[i], &t)
		out[i+1].Add(&out[i+1], &a)
	}
	return out
}

// DivideByLinear divides the polynomial by (x - c), returning the quotient.
// The division must be exact; a nonzero remainder is an error.
func DivideByLinear(coeffs []Element, c Element) ([]Element, error) {
	if len(coeffs) == 0 {
		return nil, nil
	}
	quotient := make([]Element, len(coeffs)-1)
	var carry Element
	for i := len(coeffs) - 1; i >= 1; i-- {
		carry.Mul(&carry, &c)
		carry.Add(&carry, &coeffs[i])
		quotient[i-1] = carry
	}
	var rem Element
	rem.Mul(&carry, &c)
	rem.Add(&rem, &coeffs[0])
	if !rem.IsZero() {
		return nil, fmt.Errorf("polynomial not divisible by linear factor")
	}
	return quotient, nil
}

// DivideByVanishing divides the polynomial by x^n - 1, returning the quotient.
// The division must be exact; a nonzero remainder is an error.
func DivideByVanishing(coeffs []Element, n int) ([]Element, error) {
	if n <= 0 {
		return nil, fmt.Errorf("vanishing degree must be positive, got %d", n)
	}
	if len(coeffs) <= n {
		for _, c := range coeffs {
			if !c.IsZero() {
				return nil, fmt.Errorf("polynomial not divisible by vanishing polynomial")
			}
		}
		return nil, nil
	}
	rem := make([]Element, len(coeffs))
	copy(rem, coeffs)
	quotient := make([]Element, len(coeffs)-n)
	for i := len(rem) - 1; i >= n; i-- {
		quotient[i-n].Add(&quotient[i-n], &rem[i])
		rem[i-n].Add(&rem[i-n], &rem[i])
		rem[i].SetZero()
	}
	for i := 0; i < n; i++ {
		if !rem[i].IsZero() {
			return nil, fmt.Errorf("polynomial not divisible by vanishing polynomial")
		}
	}
	return quotient, nil
}

// ShiftArgument returns the coefficients of P(s*x) given those of P(x).
func ShiftArgument(coeffs []Element, s Element) []Element {
	out := make([]Element, len(coeffs))
	var power Element
	power.SetOne()
	for i, a := range coeffs {
		out[i].Mul(&a, &power)
		power.Mul(&power, &s)
	}
	return out
}
