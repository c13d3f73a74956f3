package graph

import (
	"testing"
)

// TestDistinctColors tests the canonical relation
func TestDistinctColors(t *testing.T) {
	cs := DistinctColors()
	for a := uint8(0); a < 3; a++ {
		for b := uint8(0); b < 3; b++ {
			want := a != b
			if cs.Contains(a, b) != want {
				t.Errorf("Contains(%d, %d) = %v, want %v", a, b, cs.Contains(a, b), want)
			}
		}
	}
	if cs.PairCount() != 6 {
		t.Errorf("PairCount() = %d, want 6", cs.PairCount())
	}
	if cs.Contains(3, 0) {
		t.Error("out-of-range color accepted")
	}
}

// TestNewColorationSetValidation tests mask validation
func TestNewColorationSetValidation(t *testing.T) {
	tests := []struct {
		name      string
		mask      uint16
		expectErr bool
	}{
		{name: "distinct colors", mask: DistinctColors().Mask(), expectErr: false},
		{name: "empty relation", mask: 0, expectErr: false},
		{name: "full relation", mask: 0x1ff, expectErr: false},
		{name: "equal colors", mask: 1<<0 | 1<<4 | 1<<8, expectErr: false},
		{name: "mask too wide", mask: 1 << 9, expectErr: true},
		{name: "single pair", mask: 1 << 1, expectErr: true},
		{name: "asymmetric pair set", mask: 1<<1 | 1<<2, expectErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewColorationSet(tt.mask)
			if (err != nil) != tt.expectErr {
				t.Errorf("NewColorationSet(%#x) error = %v, expectErr = %v", tt.mask, err, tt.expectErr)
			}
		})
	}
}

// TestPermutationInvariance tests that validated masks are S3-closed
func TestPermutationInvariance(t *testing.T) {
	cs := DistinctColors()
	for _, sigma := range perms3 {
		for a := uint8(0); a < 3; a++ {
			for b := uint8(0); b < 3; b++ {
				if cs.Contains(a, b) != cs.Contains(sigma[a], sigma[b]) {
					t.Fatalf("relation not invariant under %v at (%d, %d)", sigma, a, b)
				}
			}
		}
	}
}
