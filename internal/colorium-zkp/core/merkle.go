package core

import (
	"bytes"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// ChunkedTree is a Merkle tree over fixed-size items grouped into chunks.
// Chunk j holds items [j*chunkSize, (j+1)*chunkSize); its leaf hash is
// H(0x01 || j || chunk bytes). Internal nodes are H(0x02 || left || right).
// The leaf layer is padded to a power of two with all-zero sentinel chunks.
type ChunkedTree struct {
	hasher    Hasher
	chunkSize int
	itemSize  int
	numItems  int
	numChunks int
	chunks    [][]byte
	levels    [][]Digest
}

// BatchProof opens a set of items: the raw contents of the minimal covering
// chunk set plus the shared authentication path, deduplicated in pre-order.
type BatchProof struct {
	ChunkIndices []uint32
	Chunks       [][]byte
	Path         []Digest
}

// TreeShape carries the public parameters a verifier needs to replay a
// commitment: how many items it holds, how wide they are, and the chunking.
type TreeShape struct {
	NumItems  int
	ItemSize  int
	ChunkSize int
}

// CommitItems builds a chunked Merkle tree over the given items. All items
// must have the same nonzero length and chunkSize must be a power of two.
// Leaf hashing is parallelized; the resulting tree is deterministic.
func CommitItems(items [][]byte, chunkSize int, h Hasher) (*ChunkedTree, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("cannot commit to an empty item vector")
	}
	if chunkSize <= 0 || chunkSize&(chunkSize-1) != 0 {
		return nil, fmt.Errorf("chunk size must be a power of two, got %d", chunkSize)
	}
	itemSize := len(items[0])
	if itemSize == 0 {
		return nil, fmt.Errorf("items must be non-empty")
	}
	for i, item := range items {
		if len(item) != itemSize {
			return nil, fmt.Errorf("item %d has size %d, want %d", i, len(item), itemSize)
		}
	}

	numChunks := (len(items) + chunkSize - 1) / chunkSize
	numLeaves := nextPow2(numChunks)
	chunkBytes := chunkSize * itemSize

	chunks := make([][]byte, numChunks)
	for j := 0; j < numChunks; j++ {
		chunk := make([]byte, chunkBytes)
		for k := 0; k < chunkSize; k++ {
			idx := j*chunkSize + k
			if idx >= len(items) {
				break
			}
			copy(chunk[k*itemSize:], items[idx])
		}
		chunks[j] = chunk
	}

	leaves := make([]Digest, numLeaves)
	zeroChunk := make([]byte, chunkBytes)
	var g errgroup.Group
	workers := runtime.GOMAXPROCS(0)
	stride := (numLeaves + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := w * stride
		hi := min(lo+stride, numLeaves)
		if lo >= hi {
			break
		}
		g.Go(func() error {
			for j := lo; j < hi; j++ {
				if j < numChunks {
					leaves[j] = LeafHash(h, uint64(j), chunks[j])
				} else {
					leaves[j] = LeafHash(h, uint64(j), zeroChunk)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	levels := [][]Digest{leaves}
	for len(levels[len(levels)-1]) > 1 {
		prev := levels[len(levels)-1]
		next := make([]Digest, len(prev)/2)
		for i := range next {
			next[i] = NodeHash(h, prev[2*i], prev[2*i+1])
		}
		levels = append(levels, next)
	}

	return &ChunkedTree{
		hasher:    h,
		chunkSize: chunkSize,
		itemSize:  itemSize,
		numItems:  len(items),
		numChunks: numChunks,
		chunks:    chunks,
		levels:    levels,
	}, nil
}

// Root returns the Merkle root.
func (t *ChunkedTree) Root() Digest {
	return t.levels[len(t.levels)-1][0]
}

// Shape returns the public tree parameters.
func (t *ChunkedTree) Shape() TreeShape {
	return TreeShape{NumItems: t.numItems, ItemSize: t.itemSize, ChunkSize: t.chunkSize}
}

// Open produces a batch proof for the given item indices. Indices may be
// given in any order; the proof is canonical (chunks ascending, deduped).
func (t *ChunkedTree) Open(indices []uint64) (*BatchProof, error) {
	if len(indices) == 0 {
		return nil, fmt.Errorf("cannot open an empty index set")
	}
	chunkSet := make(map[uint32]struct{})
	for _, idx := range indices {
		if idx >= uint64(t.numItems) {
			return nil, fmt.Errorf("index %d out of range [0, %d)", idx, t.numItems)
		}
		chunkSet[uint32(idx/uint64(t.chunkSize))] = struct{}{}
	}
	chunkIndices := make([]uint32, 0, len(chunkSet))
	for j := range chunkSet {
		chunkIndices = append(chunkIndices, j)
	}
	sort.Slice(chunkIndices, func(i, j int) bool { return chunkIndices[i] < chunkIndices[j] })

	chunks := make([][]byte, len(chunkIndices))
	for i, j := range chunkIndices {
		chunk := make([]byte, len(t.chunks[j]))
		copy(chunk, t.chunks[j])
		chunks[i] = chunk
	}

	numLeaves := len(t.levels[0])
	revealed := makeRevealedSet(chunkIndices, numLeaves)
	var path []Digest
	var collect func(lvl, idx int)
	collect = func(lvl, idx int) {
		if lvl == 0 {
			return
		}
		for _, child := range []int{2 * idx, 2*idx + 1} {
			if revealed.contains(lvl-1, child) {
				collect(lvl-1, child)
			} else {
				path = append(path, t.levels[lvl-1][child])
			}
		}
	}
	collect(len(t.levels)-1, 0)

	return &BatchProof{ChunkIndices: chunkIndices, Chunks: chunks, Path: path}, nil
}

// VerifyBatch checks a batch proof against a root and returns the opened item
// values keyed by item index. The proof must cover exactly the chunk set
// implied by indices, in canonical order.
func VerifyBatch(h Hasher, root Digest, shape TreeShape, indices []uint64, proof *BatchProof) (map[uint64][]byte, error) {
	if proof == nil {
		return nil, fmt.Errorf("missing batch proof")
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("cannot verify an empty index set")
	}
	if shape.ChunkSize <= 0 || shape.ChunkSize&(shape.ChunkSize-1) != 0 {
		return nil, fmt.Errorf("chunk size must be a power of two, got %d", shape.ChunkSize)
	}

	chunkSet := make(map[uint32]struct{})
	for _, idx := range indices {
		if idx >= uint64(shape.NumItems) {
			return nil, fmt.Errorf("index %d out of range [0, %d)", idx, shape.NumItems)
		}
		chunkSet[uint32(idx/uint64(shape.ChunkSize))] = struct{}{}
	}
	expected := make([]uint32, 0, len(chunkSet))
	for j := range chunkSet {
		expected = append(expected, j)
	}
	sort.Slice(expected, func(i, j int) bool { return expected[i] < expected[j] })

	if len(proof.ChunkIndices) != len(expected) {
		return nil, fmt.Errorf("proof covers %d chunks, want %d", len(proof.ChunkIndices), len(expected))
	}
	for i, j := range expected {
		if proof.ChunkIndices[i] != j {
			return nil, fmt.Errorf("proof chunk set is not canonical at position %d", i)
		}
	}
	chunkBytes := shape.ChunkSize * shape.ItemSize
	if len(proof.Chunks) != len(expected) {
		return nil, fmt.Errorf("proof has %d chunk payloads, want %d", len(proof.Chunks), len(expected))
	}
	for i, chunk := range proof.Chunks {
		if len(chunk) != chunkBytes {
			return nil, fmt.Errorf("chunk payload %d has size %d, want %d", i, len(chunk), chunkBytes)
		}
	}

	numChunks := (shape.NumItems + shape.ChunkSize - 1) / shape.ChunkSize
	numLeaves := nextPow2(numChunks)
	revealed := makeRevealedSet(expected, numLeaves)
	chunkByIndex := make(map[uint32][]byte, len(expected))
	for i, j := range proof.ChunkIndices {
		chunkByIndex[j] = proof.Chunks[i]
	}

	levelCount := 1
	for n := numLeaves; n > 1; n /= 2 {
		levelCount++
	}

	pathPos := 0
	var rec func(lvl, idx int) (Digest, error)
	rec = func(lvl, idx int) (Digest, error) {
		if lvl == 0 {
			return LeafHash(h, uint64(idx), chunkByIndex[uint32(idx)]), nil
		}
		var children [2]Digest
		for c := 0; c < 2; c++ {
			child := 2*idx + c
			if revealed.contains(lvl-1, child) {
				d, err := rec(lvl-1, child)
				if err != nil {
					return Digest{}, err
				}
				children[c] = d
			} else {
				if pathPos >= len(proof.Path) {
					return Digest{}, fmt.Errorf("authentication path exhausted")
				}
				children[c] = proof.Path[pathPos]
				pathPos++
			}
		}
		return NodeHash(h, children[0], children[1]), nil
	}

	computed, err := rec(levelCount-1, 0)
	if err != nil {
		return nil, err
	}
	if pathPos != len(proof.Path) {
		return nil, fmt.Errorf("authentication path has %d trailing nodes", len(proof.Path)-pathPos)
	}
	if !bytes.Equal(computed[:], root[:]) {
		return nil, fmt.Errorf("recomputed root does not match commitment")
	}

	values := make(map[uint64][]byte, len(indices))
	for _, idx := range indices {
		chunk := chunkByIndex[uint32(idx/uint64(shape.ChunkSize))]
		off := int(idx%uint64(shape.ChunkSize)) * shape.ItemSize
		values[idx] = chunk[off : off+shape.ItemSize]
	}
	return values, nil
}

// revealedSet answers subtree-containment queries for a sorted leaf index set.
type revealedSet struct {
	leaves    []uint32
	numLeaves int
}

func makeRevealedSet(sorted []uint32, numLeaves int) revealedSet {
	return revealedSet{leaves: sorted, numLeaves: numLeaves}
}

// contains reports whether the subtree rooted at (lvl, idx) covers any
// revealed leaf. Level 0 is the leaf layer.
func (r revealedSet) contains(lvl, idx int) bool {
	lo := uint32(idx << lvl)
	hi := uint32((idx + 1) << lvl)
	pos := sort.Search(len(r.leaves), func(i int) bool { return r.leaves[i] >= lo })
	return pos < len(r.leaves) && r.leaves[pos] < hi
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
