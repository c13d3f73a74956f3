package core

import (
	"testing"
)

// naiveEval evaluates a polynomial at every power of root by Horner's rule.
func naiveEval(coeffs []Element, root Element, n int) []Element {
	out := make([]Element, n)
	var x Element
	x.SetOne()
	for k := 0; k < n; k++ {
		out[k] = EvalPoly(coeffs, x)
		x.Mul(&x, &root)
	}
	return out
}

// TestNTTMatchesNaiveEvaluation tests the transform against direct evaluation
func TestNTTMatchesNaiveEvaluation(t *testing.T) {
	for logN := 1; logN <= 6; logN++ {
		n := 1 << logN
		coeffs := make([]Element, n)
		for i := range coeffs {
			coeffs[i] = NewElement(uint64(i*i + 3))
		}
		root, err := RootOfUnity(logN)
		if err != nil {
			t.Fatal(err)
		}
		expected := naiveEval(coeffs, root, n)

		got := make([]Element, n)
		copy(got, coeffs)
		if err := NTT(got, root); err != nil {
			t.Fatalf("NTT failed for n=%d: %v", n, err)
		}
		for k := range got {
			if !got[k].Equal(&expected[k]) {
				t.Fatalf("NTT mismatch at n=%d index %d", n, k)
			}
		}
	}
}

// TestInterpolateEvaluateRoundTrip tests that INTT inverts NTT
func TestInterpolateEvaluateRoundTrip(t *testing.T) {
	n := 16
	evals := make([]Element, n)
	for i := range evals {
		evals[i] = NewElement(uint64(7*i + 1))
	}
	coeffs, err := InterpolateSubgroup(evals)
	if err != nil {
		t.Fatal(err)
	}
	back, err := EvaluateSubgroup(coeffs, n)
	if err != nil {
		t.Fatal(err)
	}
	for i := range evals {
		if !back[i].Equal(&evals[i]) {
			t.Fatalf("round trip mismatch at %d", i)
		}
	}
}

// TestLowDegreeExtensionContainsTrace tests that the blown-up evaluation
// agrees with the trace on the embedded subgroup
func TestLowDegreeExtensionContainsTrace(t *testing.T) {
	n, blowup := 8, 4
	trace := make([]Element, n)
	for i := range trace {
		trace[i] = NewElement(uint64(i % 2))
	}
	coeffs, err := InterpolateSubgroup(trace)
	if err != nil {
		t.Fatal(err)
	}
	lde, err := EvaluateSubgroup(coeffs, n*blowup)
	if err != nil {
		t.Fatal(err)
	}
	for r := 0; r < n; r++ {
		if !lde[r*blowup].Equal(&trace[r]) {
			t.Fatalf("LDE does not embed trace at row %d", r)
		}
	}
}

// TestNTTRejectsBadSizes tests input validation
func TestNTTRejectsBadSizes(t *testing.T) {
	root, _ := RootOfUnity(2)
	if err := NTT(make([]Element, 3), root); err == nil {
		t.Error("expected error for non-power-of-two size")
	}
	if err := NTT(nil, root); err == nil {
		t.Error("expected error for empty input")
	}
}

// TestDivisionHelpers tests polynomial quotient helpers
func TestDivisionHelpers(t *testing.T) {
	// (x - 3)(x - 5) = x^2 - 8x + 15
	c := NewElement(3)
	poly := MulByLinear([]Element{NewElement(FieldModulus - 5), NewElement(1)}, c)

	q, err := DivideByLinear(poly, c)
	if err != nil {
		t.Fatalf("exact division failed: %v", err)
	}
	// quotient should be x - 5
	five := NewElement(5)
	var negFive Element
	negFive.Neg(&five)
	if len(q) != 2 || !q[0].Equal(&negFive) || !q[1].IsOne() {
		t.Error("quotient mismatch")
	}

	poly[0].Add(&poly[0], &five)
	if _, err := DivideByLinear(poly, c); err == nil {
		t.Error("expected error for inexact division")
	}
}

// TestDivideByVanishing tests division by x^n - 1
func TestDivideByVanishing(t *testing.T) {
	// (x^4 - 1) * (x + 2)
	n := 4
	poly := make([]Element, n+2)
	two := NewElement(2)
	one := NewElement(1)
	poly[0].Neg(&two)
	poly[1].Neg(&one)
	poly[n] = two
	poly[n+1] = one

	q, err := DivideByVanishing(poly, n)
	if err != nil {
		t.Fatalf("exact division failed: %v", err)
	}
	if len(q) != 2 || !q[0].Equal(&two) || !q[1].IsOne() {
		t.Error("quotient mismatch")
	}

	poly[2] = one
	if _, err := DivideByVanishing(poly, n); err == nil {
		t.Error("expected error for inexact division")
	}
}

// TestShiftArgument tests P(s*x) evaluation identity
func TestShiftArgument(t *testing.T) {
	coeffs := []Element{NewElement(4), NewElement(9), NewElement(1)}
	s := NewElement(11)
	x := NewElement(5)
	shifted := ShiftArgument(coeffs, s)

	var sx Element
	sx.Mul(&s, &x)
	left := EvalPoly(shifted, x)
	right := EvalPoly(coeffs, sx)
	if !left.Equal(&right) {
		t.Error("shifted polynomial does not evaluate to P(s*x)")
	}
}
