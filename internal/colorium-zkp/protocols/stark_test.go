package protocols

import (
	"errors"
	"testing"

	"github.com/colorium/colorium-zkp/internal/colorium-zkp/core"
	"github.com/colorium/colorium-zkp/internal/colorium-zkp/utils"
)

func blankTreeFor(t *testing.T, bits []uint8, chunkSize int) *core.ChunkedTree {
	t.Helper()
	items := make([][]byte, len(bits))
	for i, b := range bits {
		items[i] = []byte{b}
	}
	tree, err := core.CommitItems(items, chunkSize, core.DefaultHasher())
	if err != nil {
		t.Fatal(err)
	}
	return tree
}

// TestBlankCountStarkRoundTrip tests prove/verify for several bit vectors
func TestBlankCountStarkRoundTrip(t *testing.T) {
	cfg := utils.DefaultVerifierConfig()
	h := core.DefaultHasher()
	tests := []struct {
		name   string
		bits   []uint8
		budget uint32
	}{
		{name: "no blanks tight budget", bits: []uint8{0, 0, 0}, budget: 0},
		{name: "exact budget", bits: []uint8{1, 0, 1, 0, 0, 1, 0}, budget: 3},
		{name: "loose budget", bits: []uint8{0, 1, 0, 0, 0}, budget: 4},
		{name: "budget above edge count", bits: []uint8{1}, budget: 100},
		{name: "longer vector", bits: make([]uint8, 100), budget: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := blankTreeFor(t, tt.bits, int(cfg.ChunkSize))
			trP := utils.NewTranscript("stark-test")
			proof, err := proveBlankCount(trP, tt.bits, tt.budget, cfg, h, tree)
			if err != nil {
				t.Fatalf("proveBlankCount failed: %v", err)
			}
			trV := utils.NewTranscript("stark-test")
			if err := verifyBlankCount(trV, &proof, len(tt.bits), tt.budget, cfg, h, tree.Root()); err != nil {
				t.Fatalf("verifyBlankCount rejected an honest proof: %v", err)
			}
		})
	}
}

// TestBlankCountStarkRefusesOverBudget tests prover refusal
func TestBlankCountStarkRefusesOverBudget(t *testing.T) {
	cfg := utils.DefaultVerifierConfig()
	h := core.DefaultHasher()
	bits := []uint8{1, 1, 1, 0}
	tree := blankTreeFor(t, bits, int(cfg.ChunkSize))
	tr := utils.NewTranscript("stark-test")
	if _, err := proveBlankCount(tr, bits, 2, cfg, h, tree); err == nil {
		t.Error("expected refusal for blank count above budget")
	}
}

// TestBlankCountStarkRejectsTampering tests that modified proofs fail
func TestBlankCountStarkRejectsTampering(t *testing.T) {
	cfg := utils.DefaultVerifierConfig()
	h := core.DefaultHasher()
	bits := []uint8{1, 0, 0, 1, 0, 0, 0}
	tree := blankTreeFor(t, bits, int(cfg.ChunkSize))

	prove := func() StarkProof {
		tr := utils.NewTranscript("stark-test")
		proof, err := proveBlankCount(tr, bits, 2, cfg, h, tree)
		if err != nil {
			t.Fatal(err)
		}
		return proof
	}

	tests := []struct {
		name   string
		tamper func(p *StarkProof)
	}{
		{"trace root", func(p *StarkProof) { p.TraceRoot[0] ^= 1 }},
		{"constraint root", func(p *StarkProof) { p.ConstraintRoot[5] ^= 1 }},
		{"layer root", func(p *StarkProof) { p.Fri.LayerRoots[0][0] ^= 1 }},
		{"final codeword", func(p *StarkProof) {
			one := core.NewElement(1)
			p.Fri.FinalCodeword[0].Add(&p.Fri.FinalCodeword[0], &one)
		}},
		{"trace opening chunk", func(p *StarkProof) { p.TraceOpen.Chunks[0][0] ^= 1 }},
		{"composition opening chunk", func(p *StarkProof) { p.CompOpen.Chunks[0][0] ^= 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proof := prove()
			tt.tamper(&proof)
			trV := utils.NewTranscript("stark-test")
			if err := verifyBlankCount(trV, &proof, len(bits), 2, cfg, h, tree.Root()); err == nil {
				t.Error("tampered STARK proof verified")
			}
		})
	}
}

// TestBlankCountStarkCrossCheck tests the trace/commitment agreement check
func TestBlankCountStarkCrossCheck(t *testing.T) {
	cfg := utils.DefaultVerifierConfig()
	h := core.DefaultHasher()
	bits := []uint8{1, 0, 1, 0, 0, 0, 1}

	// commit a complementary bit vector so every queried row disagrees
	flipped := make([]uint8, len(bits))
	for i, b := range bits {
		flipped[i] = 1 - b
	}
	wrongTree := blankTreeFor(t, flipped, int(cfg.ChunkSize))

	tr := utils.NewTranscript("stark-test")
	proof, err := proveBlankCount(tr, bits, 3, cfg, h, wrongTree)
	if err != nil {
		t.Fatal(err)
	}
	trV := utils.NewTranscript("stark-test")
	err = verifyBlankCount(trV, &proof, len(bits), 3, cfg, h, wrongTree.Root())
	if err == nil {
		t.Fatal("expected rejection for trace/commitment disagreement")
	}
	var verr *VerificationError
	if !errors.As(err, &verr) || verr.Reason != RejectBlankMismatch {
		t.Errorf("got %v, want BlankMismatch", err)
	}
}

// TestBuildTrace tests the trace construction invariants
func TestBuildTrace(t *testing.T) {
	cfg := utils.DefaultVerifierConfig()
	p, err := newStarkParams(5, 2, cfg)
	if err != nil {
		t.Fatal(err)
	}
	cols, err := buildTrace([]uint8{1, 0, 0, 1, 0}, p)
	if err != nil {
		t.Fatal(err)
	}
	if p.n != 8 {
		t.Fatalf("trace length = %d, want 8", p.n)
	}

	// acc is the prefix sum of bit
	var running core.Element
	for i := 0; i < p.n; i++ {
		if !cols[1][i].Equal(&running) {
			t.Fatalf("acc[%d] is not the running sum", i)
		}
		running.Add(&running, &cols[0][i])
	}

	// acc + bound at the last row equals the effective budget
	var last core.Element
	last.Add(&cols[1][p.n-1], &cols[4][p.n-1])
	budget := core.NewElement(p.budget)
	if !last.Equal(&budget) {
		t.Error("acc + bound at the last row does not equal the budget")
	}

	if _, err := buildTrace([]uint8{2, 0, 0, 0, 0}, p); err == nil {
		t.Error("expected rejection of non-binary bits")
	}
}
