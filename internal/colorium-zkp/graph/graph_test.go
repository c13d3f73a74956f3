package graph

import (
	"testing"

	"github.com/bits-and-blooms/bitset"

	"github.com/colorium/colorium-zkp/internal/colorium-zkp/core"
)

// TestBuilders tests that the instance builders produce valid witnesses
func TestBuilders(t *testing.T) {
	tests := []struct {
		name string
		inst *GraphInstance
	}{
		{name: "path 4", inst: Path(4)},
		{name: "path 2", inst: Path(2)},
		{name: "cycle 6", inst: Cycle(6)},
		{name: "cycle 7 with blank", inst: Cycle(7)},
		{name: "tripartite 10", inst: Tripartite(10, 3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.inst.Validate(); err != nil {
				t.Fatalf("Validate() failed: %v", err)
			}
			if err := tt.inst.CheckWitness(); err != nil {
				t.Fatalf("CheckWitness() failed: %v", err)
			}
		})
	}
}

// TestCycleBlankPlacement tests the closing-edge blank rule
func TestCycleBlankPlacement(t *testing.T) {
	divisible := Cycle(6)
	if divisible.BlankCount() != 0 || divisible.BlankBudget != 0 {
		t.Error("cycle 6 should need no blanks")
	}
	odd := Cycle(7)
	if odd.BlankCount() != 1 || odd.BlankBudget != 1 {
		t.Error("cycle 7 should blank its closing edge")
	}
	if !odd.IsBlank(len(odd.Edges) - 1) {
		t.Error("the blanked edge should be the closing edge")
	}
}

// TestValidateRejections tests structural validation
func TestValidateRejections(t *testing.T) {
	base := func() *GraphInstance { return Path(4) }
	tests := []struct {
		name   string
		mutate func(g *GraphInstance)
	}{
		{"node out of range", func(g *GraphInstance) { g.Edges[0].To = 99 }},
		{"unsorted edges", func(g *GraphInstance) { g.Edges[0], g.Edges[1] = g.Edges[1], g.Edges[0] }},
		{"duplicate edge", func(g *GraphInstance) { g.Edges[1] = g.Edges[0] }},
		{"bad color", func(g *GraphInstance) { g.Coloring[0] = 3 }},
		{"short coloring", func(g *GraphInstance) { g.Coloring = g.Coloring[:2] }},
		{"invalid mask", func(g *GraphInstance) { g.ColorationMask = 1 << 1 }},
		{"no edges", func(g *GraphInstance) { g.Edges = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := base()
			tt.mutate(g)
			if err := g.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

// TestCheckWitness tests witness validation
func TestCheckWitness(t *testing.T) {
	bad := Path(4)
	bad.Coloring[1] = 0 // edge (0,1) now monochromatic
	if err := bad.CheckWitness(); err == nil {
		t.Error("expected witness rejection for improper coloring")
	}

	over := Cycle(7)
	over.BlankBudget = 0
	if err := over.CheckWitness(); err == nil {
		t.Error("expected witness rejection for exceeded budget")
	}

	blankOK := Path(4)
	blankOK.Coloring[1] = 0
	blankOK.Blank = bitset.New(uint(len(blankOK.Edges)))
	blankOK.Blank.Set(0)
	blankOK.BlankBudget = 1
	if err := blankOK.CheckWitness(); err != nil {
		t.Errorf("blank edge should exempt the violating pair: %v", err)
	}
}

// TestDigestCoversPublicPartOnly tests digest stability under witness change
func TestDigestCoversPublicPartOnly(t *testing.T) {
	h := core.DefaultHasher()
	a := Path(4)
	b := Path(4)
	if a.Digest(h) != b.Digest(h) {
		t.Fatal("digest is not deterministic")
	}

	b.Coloring[0] = 1
	if a.Digest(h) != b.Digest(h) {
		t.Error("digest must not depend on the coloring witness")
	}

	c := Path(4)
	c.BlankBudget = 5
	if a.Digest(h) == c.Digest(h) {
		t.Error("digest must bind the blank budget")
	}

	d := Path(5)
	if a.Digest(h) == d.Digest(h) {
		t.Error("digest must bind the graph shape")
	}
}
