package graph

import (
	"encoding/binary"
	"fmt"

	"github.com/bits-and-blooms/bitset"

	"github.com/colorium/colorium-zkp/internal/colorium-zkp/core"
)

// Edge is an ordered node pair.
type Edge struct {
	From uint32
	To   uint32
}

// GraphInstance is the prover's input: a directed graph, a 3-coloring, the
// blank-edge set, the admissible-triad mask, and the blank budget. The graph
// shape, mask, and budget are public; the coloring and blank set are witness.
type GraphInstance struct {
	// NumNodes is the node count; nodes are labeled 0..NumNodes-1
	NumNodes uint32

	// Edges lists the ordered edges in canonical (lexicographic) order
	Edges []Edge

	// Coloring maps each node to a color in {0,1,2}
	Coloring []uint8

	// Blank marks the blank edges by canonical edge index
	Blank *bitset.BitSet

	// ColorationMask is the 9-bit admissible-triad relation C
	ColorationMask uint16

	// BlankBudget is the public bound B on the number of blank edges
	BlankBudget uint32
}

// NumEdges returns the edge count m.
func (g *GraphInstance) NumEdges() int {
	return len(g.Edges)
}

// IsBlank reports whether the edge at the given canonical index is blank.
func (g *GraphInstance) IsBlank(index int) bool {
	return g.Blank != nil && g.Blank.Test(uint(index))
}

// BlankCount returns |B|.
func (g *GraphInstance) BlankCount() uint32 {
	if g.Blank == nil {
		return 0
	}
	return uint32(g.Blank.Count())
}

// Validate checks the structural invariants of the instance: node bounds,
// canonical edge order, color range, and witness vector lengths.
func (g *GraphInstance) Validate() error {
	if g.NumNodes == 0 {
		return fmt.Errorf("graph must have at least one node")
	}
	if len(g.Edges) == 0 {
		return fmt.Errorf("graph must have at least one edge")
	}
	for i, e := range g.Edges {
		if e.From >= g.NumNodes || e.To >= g.NumNodes {
			return fmt.Errorf("edge %d (%d, %d) references a node out of range", i, e.From, e.To)
		}
		if i > 0 {
			prev := g.Edges[i-1]
			if e.From < prev.From || (e.From == prev.From && e.To <= prev.To) {
				return fmt.Errorf("edge list is not in canonical order at index %d", i)
			}
		}
	}
	if len(g.Coloring) != int(g.NumNodes) {
		return fmt.Errorf("coloring has %d entries, want %d", len(g.Coloring), g.NumNodes)
	}
	for v, c := range g.Coloring {
		if c > 2 {
			return fmt.Errorf("node %d has color %d, want 0..2", v, c)
		}
	}
	if g.Blank != nil && g.Blank.Len() > uint(len(g.Edges)) {
		next, ok := g.Blank.NextSet(uint(len(g.Edges)))
		if ok {
			return fmt.Errorf("blank mask marks edge %d beyond edge count %d", next, len(g.Edges))
		}
	}
	if _, err := NewColorationSet(g.ColorationMask); err != nil {
		return err
	}
	return nil
}

// CheckWitness verifies that the coloring is proper with respect to C on all
// non-blank edges and that the blank count respects the budget. Provers call
// this before committing; a failing witness is refused, never proven.
func (g *GraphInstance) CheckWitness() error {
	cs, err := NewColorationSet(g.ColorationMask)
	if err != nil {
		return err
	}
	for i, e := range g.Edges {
		if g.IsBlank(i) {
			continue
		}
		a, b := g.Coloring[e.From], g.Coloring[e.To]
		if !cs.Contains(a, b) {
			return fmt.Errorf("edge %d (%d, %d) has inadmissible colors (%d, %d)", i, e.From, e.To, a, b)
		}
	}
	if got := g.BlankCount(); got > g.BlankBudget {
		return fmt.Errorf("instance has %d blank edges, budget is %d", got, g.BlankBudget)
	}
	return nil
}

// PublicParams is the public part of an instance: everything a verifier
// needs, with the witness stripped.
type PublicParams struct {
	NumNodes       uint32
	Edges          []Edge
	ColorationMask uint16
	BlankBudget    uint32
}

// Public strips the witness from the instance.
func (g *GraphInstance) Public() *PublicParams {
	return &PublicParams{
		NumNodes:       g.NumNodes,
		Edges:          g.Edges,
		ColorationMask: g.ColorationMask,
		BlankBudget:    g.BlankBudget,
	}
}

// NumEdges returns the edge count m.
func (p *PublicParams) NumEdges() int {
	return len(p.Edges)
}

// Digest computes the canonical instance commitment: a hash over the graph
// shape, the triad mask, and the blank budget. The witness never enters it.
func (p *PublicParams) Digest(h core.Hasher) core.Digest {
	buf := make([]byte, 0, 10+8*len(p.Edges)+6)
	var u32 [4]byte
	binary.BigEndian.PutUint32(u32[:], p.NumNodes)
	buf = append(buf, u32[:]...)
	binary.BigEndian.PutUint32(u32[:], uint32(len(p.Edges)))
	buf = append(buf, u32[:]...)
	for _, e := range p.Edges {
		binary.BigEndian.PutUint32(u32[:], e.From)
		buf = append(buf, u32[:]...)
		binary.BigEndian.PutUint32(u32[:], e.To)
		buf = append(buf, u32[:]...)
	}
	var u16 [2]byte
	binary.BigEndian.PutUint16(u16[:], p.ColorationMask)
	buf = append(buf, u16[:]...)
	binary.BigEndian.PutUint32(u32[:], p.BlankBudget)
	buf = append(buf, u32[:]...)
	return h.Hash(buf)
}

// Digest computes the canonical commitment of the instance's public part.
func (g *GraphInstance) Digest(h core.Hasher) core.Digest {
	return g.Public().Digest(h)
}

// Path builds the path 0 -> 1 -> ... -> n-1 colored i mod 3, with no blanks.
func Path(n uint32) *GraphInstance {
	edges := make([]Edge, 0, n-1)
	coloring := make([]uint8, n)
	for i := uint32(0); i < n; i++ {
		coloring[i] = uint8(i % 3)
		if i+1 < n {
			edges = append(edges, Edge{From: i, To: i + 1})
		}
	}
	return &GraphInstance{
		NumNodes:       n,
		Edges:          edges,
		Coloring:       coloring,
		Blank:          bitset.New(uint(len(edges))),
		ColorationMask: DistinctColors().Mask(),
		BlankBudget:    0,
	}
}

// Cycle builds the directed cycle on n nodes colored i mod 3. When n is 1
// mod 3 the closing edge is monochromatic and marked blank, with a budget of
// one; otherwise there are no blanks and the budget is zero.
func Cycle(n uint32) *GraphInstance {
	edges := make([]Edge, 0, n)
	coloring := make([]uint8, n)
	for i := uint32(0); i < n; i++ {
		coloring[i] = uint8(i % 3)
		if i+1 < n {
			edges = append(edges, Edge{From: i, To: i + 1})
		}
	}
	// closing edge (n-1, 0) sorts last in canonical order
	edges = append(edges, Edge{From: n - 1, To: 0})
	blank := bitset.New(uint(len(edges)))
	var budget uint32
	if coloring[n-1] == coloring[0] {
		blank.Set(uint(len(edges) - 1))
		budget = 1
	}
	return &GraphInstance{
		NumNodes:       n,
		Edges:          edges,
		Coloring:       coloring,
		Blank:          blank,
		ColorationMask: DistinctColors().Mask(),
		BlankBudget:    budget,
	}
}

// Tripartite builds a denser instance: nodes are colored i mod 3 and every
// forward edge between differently-colored nodes is present, plus up to
// budget same-color edges marked blank. It stands in for adversarially
// generated instances in tests and benchmarks.
func Tripartite(n uint32, budget uint32) *GraphInstance {
	edges := make([]Edge, 0)
	coloring := make([]uint8, n)
	for i := uint32(0); i < n; i++ {
		coloring[i] = uint8(i % 3)
	}
	blankCandidates := make([]int, 0, budget)
	for i := uint32(0); i < n; i++ {
		for j := i + 1; j < n; j++ {
			if coloring[i] != coloring[j] {
				edges = append(edges, Edge{From: i, To: j})
			} else if uint32(len(blankCandidates)) < budget {
				blankCandidates = append(blankCandidates, len(edges))
				edges = append(edges, Edge{From: i, To: j})
			}
		}
	}
	blank := bitset.New(uint(len(edges)))
	for _, idx := range blankCandidates {
		blank.Set(uint(idx))
	}
	return &GraphInstance{
		NumNodes:       n,
		Edges:          edges,
		Coloring:       coloring,
		Blank:          blank,
		ColorationMask: DistinctColors().Mask(),
		BlankBudget:    budget,
	}
}
