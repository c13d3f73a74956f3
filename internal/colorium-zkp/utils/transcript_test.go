package utils

import (
	"testing"

	"github.com/colorium/colorium-zkp/internal/colorium-zkp/core"
)

// TestTranscriptDeterminism tests that identical absorption sequences yield
// identical challenges
func TestTranscriptDeterminism(t *testing.T) {
	a := NewTranscript("test-protocol")
	b := NewTranscript("test-protocol")
	a.Absorb("data", []byte{1, 2, 3})
	b.Absorb("data", []byte{1, 2, 3})
	if a.ChallengeU64("x") != b.ChallengeU64("x") {
		t.Error("identical transcripts produced different challenges")
	}
}

// TestTranscriptSensitivity tests that challenges react to every input
func TestTranscriptSensitivity(t *testing.T) {
	base := func() *Transcript {
		tr := NewTranscript("test-protocol")
		tr.Absorb("data", []byte{1, 2, 3})
		return tr
	}
	reference := base().ChallengeU64("x")

	other := NewTranscript("test-protocol")
	other.Absorb("data", []byte{1, 2, 4})
	if other.ChallengeU64("x") == reference {
		t.Error("challenge ignored absorbed bytes")
	}

	if base().ChallengeU64("y") == reference {
		t.Error("challenge ignored the label")
	}

	diffID := NewTranscript("other-protocol")
	diffID.Absorb("data", []byte{1, 2, 3})
	if diffID.ChallengeU64("x") == reference {
		t.Error("challenge ignored the protocol ID")
	}
}

// TestChallengeIndexRange tests bounds and rejection sampling
func TestChallengeIndexRange(t *testing.T) {
	tr := NewTranscript("test-protocol")
	for _, n := range []uint64{1, 2, 3, 7, 1000} {
		idx, err := tr.ChallengeIndex("idx", n)
		if err != nil {
			t.Fatal(err)
		}
		if idx >= n {
			t.Errorf("index %d out of range [0, %d)", idx, n)
		}
	}
	if _, err := tr.ChallengeIndex("idx", 0); err == nil {
		t.Error("expected error for zero range")
	}
}

// TestChallengeIndicesDistinct tests distinct index sampling
func TestChallengeIndicesDistinct(t *testing.T) {
	tr := NewTranscript("test-protocol")
	indices, err := tr.ChallengeIndices("spots", 10, 10, true)
	if err != nil {
		t.Fatal(err)
	}
	seen := make(map[uint64]bool)
	for _, idx := range indices {
		if idx >= 10 {
			t.Fatalf("index %d out of range", idx)
		}
		if seen[idx] {
			t.Fatalf("duplicate index %d", idx)
		}
		seen[idx] = true
	}
	if len(indices) != 10 {
		t.Fatalf("got %d indices, want 10", len(indices))
	}

	if _, err := tr.ChallengeIndices("spots", 3, 4, true); err == nil {
		t.Error("expected error when distinct count exceeds range")
	}
}

// TestChallengeField tests field element sampling
func TestChallengeField(t *testing.T) {
	tr := NewTranscript("test-protocol")
	elems := tr.ChallengeFields("alpha", 16)
	if len(elems) != 16 {
		t.Fatalf("got %d elements, want 16", len(elems))
	}
	for i, e := range elems {
		if core.ElementToUint64(e) >= core.FieldModulus {
			t.Errorf("element %d is non-canonical", i)
		}
	}

	a := NewTranscript("p")
	b := NewTranscript("p")
	ea := a.ChallengeField("alpha")
	eb := b.ChallengeField("alpha")
	if !ea.Equal(&eb) {
		t.Error("field challenge is not deterministic")
	}
}

// TestChallengeQueries tests filtered distinct query sampling
func TestChallengeQueries(t *testing.T) {
	tr := NewTranscript("test-protocol")
	n, stride := uint64(64), uint64(8)
	queries, err := tr.ChallengeQueries("fri-query", n, 20, stride)
	if err != nil {
		t.Fatal(err)
	}
	if len(queries) != 20 {
		t.Fatalf("got %d queries, want 20", len(queries))
	}
	seen := make(map[uint64]bool)
	for _, q := range queries {
		if q >= n {
			t.Fatalf("query %d out of range", q)
		}
		if q%stride == 0 {
			t.Fatalf("query %d is a multiple of the stride", q)
		}
		if seen[q] {
			t.Fatalf("duplicate query %d", q)
		}
		seen[q] = true
	}

	// 64 positions minus 8 multiples of 8 leaves 56 admissible queries
	if _, err := tr.ChallengeQueries("fri-query", n, 57, stride); err == nil {
		t.Error("expected error when count exceeds admissible positions")
	}
}
