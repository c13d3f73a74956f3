package protocols

import (
	"fmt"
	"math/bits"
	"sort"

	"github.com/colorium/colorium-zkp/internal/colorium-zkp/core"
	"github.com/colorium/colorium-zkp/internal/colorium-zkp/utils"
)

// starkColumns is the trace width: bit, acc, slack, pow, bound.
const starkColumns = 5

// starkConstraints is the number of composed constraints: two booleanity,
// three transitions, four boundaries.
const starkConstraints = 9

// starkParams are the public STARK dimensions, derived identically by prover
// and verifier from the edge count, the budget, and the configuration.
type starkParams struct {
	m       int    // committed blank bits
	n       int    // trace length, next_pow2(m+1)
	domain  int    // low-degree-extension domain size, blowup*n
	blowup  int
	budget  uint64 // effective bound, min(B, m)
	queries int
	chunk   int
}

func newStarkParams(m int, budget uint32, cfg *utils.VerifierConfig) (*starkParams, error) {
	if m <= 0 {
		return nil, fmt.Errorf("blank vector must be non-empty")
	}
	n := utils.NextPowerOfTwo(m + 1)
	blowup := cfg.Blowup()
	domain := n * blowup
	if utils.Log2(domain) > core.MaxTwoAdicity {
		return nil, fmt.Errorf("LDE domain 2^%d exceeds the field's two-adicity", utils.Log2(domain))
	}
	eff := uint64(budget)
	if uint64(m) < eff {
		eff = uint64(m)
	}
	// queries avoid the trace subgroup, so at most domain-n positions exist
	queries := int(cfg.FriQueries)
	if admissible := domain - n; queries > admissible {
		queries = admissible
	}
	return &starkParams{
		m:       m,
		n:       n,
		domain:  domain,
		blowup:  blowup,
		budget:  eff,
		queries: queries,
		chunk:   int(cfg.ChunkSize),
	}, nil
}

// buildTrace materializes the five execution-trace columns for a blank-bit
// vector. Row i of acc holds the running sum of bits before i; slack holds
// the binary decomposition of budget - total; pow and bound accumulate the
// weighted slack sum so the bound check stays polynomial.
func buildTrace(bitsVec []uint8, p *starkParams) ([starkColumns][]core.Element, error) {
	var cols [starkColumns][]core.Element
	var total uint64
	for i, b := range bitsVec {
		if b > 1 {
			return cols, fmt.Errorf("blank bit %d has non-binary value %d", i, b)
		}
		total += uint64(b)
	}
	if total > p.budget {
		return cols, fmt.Errorf("blank count %d exceeds budget %d", total, p.budget)
	}
	diff := p.budget - total

	for c := range cols {
		cols[c] = make([]core.Element, p.n)
	}
	bit, acc, slack, pow, bound := cols[0], cols[1], cols[2], cols[3], cols[4]

	var running uint64
	for i := 0; i < p.n; i++ {
		var b uint64
		if i < len(bitsVec) {
			b = uint64(bitsVec[i])
		}
		bit[i] = core.NewElement(b)
		acc[i] = core.NewElement(running)
		running += b

		if i < 64 {
			slack[i] = core.NewElement(diff >> i & 1)
		}
	}

	pow[0].SetOne()
	for i := 1; i < p.n; i++ {
		pow[i].Double(&pow[i-1])
		var weighted core.Element
		weighted.Mul(&pow[i-1], &slack[i-1])
		bound[i].Add(&bound[i-1], &weighted)
	}
	return cols, nil
}

// traceItems encodes one LDE row per Merkle item: five little-endian field
// elements.
func traceItems(ldes [starkColumns][]core.Element, domain int) [][]byte {
	items := make([][]byte, domain)
	for i := 0; i < domain; i++ {
		row := make([]byte, 0, TraceItemSize)
		for c := 0; c < starkColumns; c++ {
			b := core.ElementToBytes(ldes[c][i])
			row = append(row, b[:]...)
		}
		items[i] = row
	}
	return items
}

// mulEvalsToCoeffs interpolates the product of two codewords given over the
// same subgroup. Exact as long as deg(a) + deg(b) < len(a).
func mulEvalsToCoeffs(a, b []core.Element) ([]core.Element, error) {
	prod := make([]core.Element, len(a))
	for i := range prod {
		prod[i].Mul(&a[i], &b[i])
	}
	return core.InterpolateSubgroup(prod)
}

// addScaled accumulates dst += alpha * src, growing dst as needed.
func addScaled(dst []core.Element, src []core.Element, alpha core.Element) []core.Element {
	if len(src) > len(dst) {
		grown := make([]core.Element, len(src))
		copy(grown, dst)
		dst = grown
	}
	for i := range src {
		var t core.Element
		t.Mul(&src[i], &alpha)
		dst[i].Add(&dst[i], &t)
	}
	return dst
}

func subPoly(a, b []core.Element) []core.Element {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]core.Element, n)
	copy(out, a)
	for i := range b {
		out[i].Sub(&out[i], &b[i])
	}
	return out
}

// proveBlankCount produces the blank-count STARK bound into the transcript.
// blankTree must be the protocol's (round-invariant) blank-bit commitment;
// the proof opens it at the queried trace rows for the cross-check.
func proveBlankCount(tr *utils.Transcript, bitsVec []uint8, budget uint32, cfg *utils.VerifierConfig, h core.Hasher, blankTree *core.ChunkedTree) (StarkProof, error) {
	var proof StarkProof
	p, err := newStarkParams(len(bitsVec), budget, cfg)
	if err != nil {
		return proof, err
	}

	cols, err := buildTrace(bitsVec, p)
	if err != nil {
		return proof, err
	}

	logN := bits.TrailingZeros(uint(p.n))
	omega, err := core.RootOfUnity(logN)
	if err != nil {
		return proof, err
	}
	omegaLast := core.ExpUint64(omega, uint64(p.n-1))

	var coeffs [starkColumns][]core.Element
	var ldes [starkColumns][]core.Element
	for c := range cols {
		cc, err := core.InterpolateSubgroup(cols[c])
		if err != nil {
			return proof, fmt.Errorf("trace interpolation failed: %w", err)
		}
		coeffs[c] = cc
		lde, err := core.EvaluateSubgroup(cc, p.domain)
		if err != nil {
			return proof, fmt.Errorf("trace extension failed: %w", err)
		}
		ldes[c] = lde
	}

	traceTree, err := core.CommitItems(traceItems(ldes, p.domain), p.chunk, h)
	if err != nil {
		return proof, fmt.Errorf("failed to commit trace: %w", err)
	}
	proof.TraceRoot = traceTree.Root()
	tr.AbsorbDigest("stark-trace-root", proof.TraceRoot)
	alphas := tr.ChallengeFields("stark-alpha", starkConstraints)

	quotients, err := constraintQuotients(coeffs, ldes, p, omega, omegaLast)
	if err != nil {
		return proof, err
	}
	var comp []core.Element
	for i, q := range quotients {
		comp = addScaled(comp, q, alphas[i])
	}
	compEvals, err := core.EvaluateSubgroup(comp, p.domain)
	if err != nil {
		return proof, fmt.Errorf("composition extension failed: %w", err)
	}

	compTree, err := core.CommitItems(wordItems(compEvals), p.chunk, h)
	if err != nil {
		return proof, fmt.Errorf("failed to commit composition: %w", err)
	}
	proof.ConstraintRoot = compTree.Root()
	tr.AbsorbDigest("stark-constraint-root", proof.ConstraintRoot)

	logDomain := bits.TrailingZeros(uint(p.domain))
	domainGen, err := core.RootOfUnity(logDomain)
	if err != nil {
		return proof, err
	}
	fri, err := friCommit(tr, compEvals, domainGen, p.chunk, h)
	if err != nil {
		return proof, err
	}
	proof.Fri.LayerRoots = fri.roots
	proof.Fri.FinalCodeword = fri.finalCodeword

	queries, err := tr.ChallengeQueries("fri-query", uint64(p.domain), p.queries, uint64(p.blowup))
	if err != nil {
		return proof, err
	}

	traceIdx, compIdx, layerIdx, blankIdx := queryIndexSets(queries, p)
	proof.TraceOpen, err = traceTree.Open(traceIdx)
	if err != nil {
		return proof, fmt.Errorf("failed to open trace: %w", err)
	}
	proof.CompOpen, err = compTree.Open(compIdx)
	if err != nil {
		return proof, fmt.Errorf("failed to open composition: %w", err)
	}
	proof.Fri.LayerOpen = make([]*core.BatchProof, len(fri.trees))
	for i, tree := range fri.trees {
		proof.Fri.LayerOpen[i], err = tree.Open(layerIdx[i])
		if err != nil {
			return proof, fmt.Errorf("failed to open FRI layer %d: %w", i, err)
		}
	}
	if len(blankIdx) > 0 {
		proof.BlankOpen, err = blankTree.Open(blankIdx)
		if err != nil {
			return proof, fmt.Errorf("failed to open blank commitment: %w", err)
		}
	}
	return proof, nil
}

// constraintQuotients computes the nine constraint quotient polynomials in
// coefficient form, in the fixed composition order.
func constraintQuotients(coeffs, ldes [starkColumns][]core.Element, p *starkParams, omega, omegaLast core.Element) ([starkConstraints][]core.Element, error) {
	var out [starkConstraints][]core.Element
	bitC, accC, slackC, powC, boundC := coeffs[0], coeffs[1], coeffs[2], coeffs[3], coeffs[4]
	bitL, slackL, powL := ldes[0], ldes[2], ldes[3]

	transition := func(c []core.Element) ([]core.Element, error) {
		return core.DivideByVanishing(core.MulByLinear(c, omegaLast), p.n)
	}

	// C1: bit is boolean on the whole trace
	bitSq, err := mulEvalsToCoeffs(bitL, bitL)
	if err != nil {
		return out, err
	}
	if out[0], err = core.DivideByVanishing(subPoly(bitSq, bitC), p.n); err != nil {
		return out, fmt.Errorf("bit booleanity constraint: %w", err)
	}

	// C2: slack is boolean on the whole trace
	slackSq, err := mulEvalsToCoeffs(slackL, slackL)
	if err != nil {
		return out, err
	}
	if out[1], err = core.DivideByVanishing(subPoly(slackSq, slackC), p.n); err != nil {
		return out, fmt.Errorf("slack booleanity constraint: %w", err)
	}

	// C3: acc(wx) - acc(x) - bit(x) on all but the last row
	c3 := subPoly(subPoly(core.ShiftArgument(accC, omega), accC), bitC)
	if out[2], err = transition(c3); err != nil {
		return out, fmt.Errorf("accumulator transition constraint: %w", err)
	}

	// C4: pow(wx) - 2*pow(x) on all but the last row
	powDoubled := make([]core.Element, len(powC))
	for i := range powC {
		powDoubled[i].Double(&powC[i])
	}
	c4 := subPoly(core.ShiftArgument(powC, omega), powDoubled)
	if out[3], err = transition(c4); err != nil {
		return out, fmt.Errorf("power transition constraint: %w", err)
	}

	// C5: bound(wx) - bound(x) - pow(x)*slack(x) on all but the last row
	ps, err := mulEvalsToCoeffs(powL, slackL)
	if err != nil {
		return out, err
	}
	c5 := subPoly(subPoly(core.ShiftArgument(boundC, omega), boundC), ps)
	if out[4], err = transition(c5); err != nil {
		return out, fmt.Errorf("bound transition constraint: %w", err)
	}

	// B1: acc(1) = 0
	if out[5], err = core.DivideByLinear(accC, core.NewElement(1)); err != nil {
		return out, fmt.Errorf("accumulator boundary constraint: %w", err)
	}

	// B2: bound(1) = 0
	if out[6], err = core.DivideByLinear(boundC, core.NewElement(1)); err != nil {
		return out, fmt.Errorf("bound boundary constraint: %w", err)
	}

	// B3: pow(1) = 1
	powShift := make([]core.Element, len(powC))
	copy(powShift, powC)
	one := core.NewElement(1)
	powShift[0].Sub(&powShift[0], &one)
	if out[7], err = core.DivideByLinear(powShift, core.NewElement(1)); err != nil {
		return out, fmt.Errorf("power boundary constraint: %w", err)
	}

	// B4: acc + bound = budget at the last row
	final := make([]core.Element, p.n)
	copy(final, accC)
	for i := range boundC {
		final[i].Add(&final[i], &boundC[i])
	}
	budget := core.NewElement(p.budget)
	final[0].Sub(&final[0], &budget)
	if out[8], err = core.DivideByLinear(final, omegaLast); err != nil {
		return out, fmt.Errorf("budget boundary constraint: %w", err)
	}

	return out, nil
}

// queryIndexSets maps FRI query positions to the index sets each commitment
// must open: trace rows at the query and its omega-shift plus the pure trace
// cell for the cross-check, the composition folding pair, every folded
// layer's folding pair, and the blank bits under the queried trace rows.
func queryIndexSets(queries []uint64, p *starkParams) (traceIdx, compIdx []uint64, layerIdx [][]uint64, blankIdx []uint64) {
	folds := friLayerCount(p.domain)
	layerIdx = make([][]uint64, folds-1)

	traceSet := make(map[uint64]struct{})
	compSet := make(map[uint64]struct{})
	layerSets := make([]map[uint64]struct{}, folds-1)
	for i := range layerSets {
		layerSets[i] = make(map[uint64]struct{})
	}
	blankSet := make(map[uint64]struct{})

	domain := uint64(p.domain)
	for _, q := range queries {
		traceSet[q] = struct{}{}
		traceSet[(q+uint64(p.blowup))%domain] = struct{}{}
		row := q % uint64(p.n)
		traceSet[row*uint64(p.blowup)] = struct{}{}
		if row < uint64(p.m) {
			blankSet[row] = struct{}{}
		}

		half := domain / 2
		compSet[q%half] = struct{}{}
		compSet[q%half+half] = struct{}{}
		for i := 0; i < folds-1; i++ {
			half /= 2
			layerSets[i][q%half] = struct{}{}
			layerSets[i][q%half+half] = struct{}{}
		}
	}

	traceIdx = sortedIndices(traceSet)
	compIdx = sortedIndices(compSet)
	for i := range layerSets {
		layerIdx[i] = sortedIndices(layerSets[i])
	}
	blankIdx = sortedIndices(blankSet)
	return traceIdx, compIdx, layerIdx, blankIdx
}

// verifyBlankCount replays the STARK transcript and checks every query:
// Merkle openings, the composition equation, the FRI folding chain, and the
// agreement between trace bits and the protocol's blank commitment.
func verifyBlankCount(tr *utils.Transcript, proof *StarkProof, m int, budget uint32, cfg *utils.VerifierConfig, h core.Hasher, blankRoot core.Digest) error {
	p, err := newStarkParams(m, budget, cfg)
	if err != nil {
		return reject(RejectInvalidConfig, "invalid STARK parameters: %v", err)
	}

	tr.AbsorbDigest("stark-trace-root", proof.TraceRoot)
	alphas := tr.ChallengeFields("stark-alpha", starkConstraints)
	tr.AbsorbDigest("stark-constraint-root", proof.ConstraintRoot)

	folds := friLayerCount(p.domain)
	if len(proof.Fri.LayerRoots) != folds-1 || len(proof.Fri.LayerOpen) != folds-1 {
		return reject(RejectMalformedProof, "FRI proof has %d layers, want %d", len(proof.Fri.LayerRoots), folds-1)
	}
	if len(proof.Fri.FinalCodeword) != friFinalSize {
		return reject(RejectMalformedProof, "FRI final codeword has length %d, want %d", len(proof.Fri.FinalCodeword), friFinalSize)
	}
	betas := make([]core.Element, folds)
	for i := 0; i < folds; i++ {
		betas[i] = tr.ChallengeField("fri-beta")
		if i < folds-1 {
			tr.AbsorbDigest("fri-layer-root", proof.Fri.LayerRoots[i])
		} else {
			tr.Absorb("fri-final", wordBytes(proof.Fri.FinalCodeword))
		}
	}
	if !proof.Fri.FinalCodeword[0].Equal(&proof.Fri.FinalCodeword[1]) {
		return reject(RejectFriInconsistent, "final FRI codeword is not constant")
	}

	queries, err := tr.ChallengeQueries("fri-query", uint64(p.domain), p.queries, uint64(p.blowup))
	if err != nil {
		return reject(RejectInvalidConfig, "query sampling failed: %v", err)
	}

	traceIdx, compIdx, layerIdx, blankIdx := queryIndexSets(queries, p)
	traceShape := core.TreeShape{NumItems: p.domain, ItemSize: TraceItemSize, ChunkSize: p.chunk}
	traceValues, err := core.VerifyBatch(h, proof.TraceRoot, traceShape, traceIdx, proof.TraceOpen)
	if err != nil {
		return reject(RejectBadMerkleOpening, "trace opening: %v", err)
	}
	wordShape := core.TreeShape{NumItems: p.domain, ItemSize: WordItemSize, ChunkSize: p.chunk}
	compValues, err := core.VerifyBatch(h, proof.ConstraintRoot, wordShape, compIdx, proof.CompOpen)
	if err != nil {
		return reject(RejectBadMerkleOpening, "composition opening: %v", err)
	}
	layerValues := make([]map[uint64][]byte, folds-1)
	layerLen := p.domain / 2
	for i := 0; i < folds-1; i++ {
		shape := core.TreeShape{NumItems: layerLen, ItemSize: WordItemSize, ChunkSize: p.chunk}
		layerValues[i], err = core.VerifyBatch(h, proof.Fri.LayerRoots[i], shape, layerIdx[i], proof.Fri.LayerOpen[i])
		if err != nil {
			return reject(RejectBadMerkleOpening, "FRI layer %d opening: %v", i, err)
		}
		layerLen /= 2
	}
	var blankValues map[uint64][]byte
	if len(blankIdx) > 0 {
		blankShape := core.TreeShape{NumItems: p.m, ItemSize: BlankItemSize, ChunkSize: p.chunk}
		blankValues, err = core.VerifyBatch(h, blankRoot, blankShape, blankIdx, proof.BlankOpen)
		if err != nil {
			return reject(RejectBadMerkleOpening, "blank cross-check opening: %v", err)
		}
	}

	logDomain := utils.Log2(p.domain)
	domainGen, err := core.RootOfUnity(logDomain)
	if err != nil {
		return reject(RejectInvalidConfig, "%v", err)
	}
	omega := core.ExpUint64(domainGen, uint64(p.blowup))
	omegaLast := core.ExpUint64(omega, uint64(p.n-1))

	for _, q := range queries {
		row, err := decodeTraceRow(traceValues[q])
		if err != nil {
			return reject(RejectMalformedProof, "trace row %d: %v", q, err)
		}
		next, err := decodeTraceRow(traceValues[(q+uint64(p.blowup))%uint64(p.domain)])
		if err != nil {
			return reject(RejectMalformedProof, "trace row %d: %v", q, err)
		}
		// q is always inside the composition folding pair {q mod D/2, q mod D/2 + D/2}
		compVal, err := core.ElementFromBytes(compValues[q])
		if err != nil {
			return reject(RejectMalformedProof, "composition value %d: %v", q, err)
		}

		x := core.ExpUint64(domainGen, q)
		expected := composeConstraints(row, next, alphas, x, p, omegaLast)
		if !expected.Equal(&compVal) {
			return rejectAt(RejectStarkConstraint, -1, int64(q), "composition value disagrees with trace")
		}

		// cross-check the trace bit against the protocol blank commitment
		r := q % uint64(p.n)
		if r < uint64(p.m) {
			cell, err := decodeTraceRow(traceValues[r*uint64(p.blowup)])
			if err != nil {
				return reject(RejectMalformedProof, "trace row %d: %v", r*uint64(p.blowup), err)
			}
			blankByte := blankValues[r][0]
			if blankByte > 1 {
				return rejectAt(RejectMalformedProof, -1, int64(r), "blank opening is not a bit")
			}
			expectedBit := core.NewElement(uint64(blankByte))
			if !cell[0].Equal(&expectedBit) {
				return rejectAt(RejectBlankMismatch, -1, int64(r), "trace bit disagrees with blank opening")
			}
		}

		// FRI folding chain
		if err := verifyFoldingChain(q, compValues, layerValues, proof.Fri.FinalCodeword, betas, domainGen, p); err != nil {
			return err
		}
	}
	return nil
}

// decodeTraceRow splits one 40-byte trace item into its five column values.
func decodeTraceRow(item []byte) ([starkColumns]core.Element, error) {
	var row [starkColumns]core.Element
	if len(item) != TraceItemSize {
		return row, fmt.Errorf("trace item has %d bytes, want %d", len(item), TraceItemSize)
	}
	for c := 0; c < starkColumns; c++ {
		e, err := core.ElementFromBytes(item[c*8 : (c+1)*8])
		if err != nil {
			return row, err
		}
		row[c] = e
	}
	return row, nil
}

// composeConstraints evaluates the weighted constraint composition at x from
// the opened trace rows at x and omega*x.
func composeConstraints(row, next [starkColumns]core.Element, alphas []core.Element, x core.Element, p *starkParams, omegaLast core.Element) core.Element {
	bit, acc, slack, pow, bound := row[0], row[1], row[2], row[3], row[4]
	accN, powN, boundN := next[1], next[3], next[4]
	one := core.NewElement(1)

	// vanishing denominators; x is never on the trace subgroup
	zAll := core.ExpUint64(x, uint64(p.n))
	zAll.Sub(&zAll, &one)
	zAllInv := core.Inverse(zAll)
	var lin1, linLast core.Element
	lin1.Sub(&x, &one)
	lin1Inv := core.Inverse(lin1)
	linLast.Sub(&x, &omegaLast)
	linLastInv := core.Inverse(linLast)
	var transInv core.Element
	transInv.Mul(&zAllInv, &linLast)

	terms := make([]core.Element, starkConstraints)

	// C1, C2: booleanity
	var t core.Element
	t.Sub(&bit, &one)
	t.Mul(&t, &bit)
	terms[0].Mul(&t, &zAllInv)
	t.Sub(&slack, &one)
	t.Mul(&t, &slack)
	terms[1].Mul(&t, &zAllInv)

	// C3: acc transition
	t.Sub(&accN, &acc)
	t.Sub(&t, &bit)
	terms[2].Mul(&t, &transInv)

	// C4: pow transition
	var dbl core.Element
	dbl.Double(&pow)
	t.Sub(&powN, &dbl)
	terms[3].Mul(&t, &transInv)

	// C5: bound transition
	var ps core.Element
	ps.Mul(&pow, &slack)
	t.Sub(&boundN, &bound)
	t.Sub(&t, &ps)
	terms[4].Mul(&t, &transInv)

	// B1, B2, B3: first-row boundaries
	terms[5].Mul(&acc, &lin1Inv)
	terms[6].Mul(&bound, &lin1Inv)
	t.Sub(&pow, &one)
	terms[7].Mul(&t, &lin1Inv)

	// B4: budget boundary at the last row
	budget := core.NewElement(p.budget)
	t.Add(&acc, &bound)
	t.Sub(&t, &budget)
	terms[8].Mul(&t, &linLastInv)

	var sum core.Element
	for i := range terms {
		var w core.Element
		w.Mul(&terms[i], &alphas[i])
		sum.Add(&sum, &w)
	}
	return sum
}

// verifyFoldingChain checks FRI co-linearity for one query across all layers.
func verifyFoldingChain(q uint64, compValues map[uint64][]byte, layerValues []map[uint64][]byte, finalCodeword []core.Element, betas []core.Element, domainGen core.Element, p *starkParams) error {
	layerAt := func(layer int, pos uint64) (core.Element, error) {
		var raw []byte
		if layer == 0 {
			raw = compValues[pos]
		} else {
			raw = layerValues[layer-1][pos]
		}
		if raw == nil {
			return core.Element{}, reject(RejectMalformedProof, "missing FRI opening at layer %d position %d", layer, pos)
		}
		e, err := core.ElementFromBytes(raw)
		if err != nil {
			return core.Element{}, reject(RejectMalformedProof, "FRI opening at layer %d position %d: %v", layer, pos, err)
		}
		return e, nil
	}

	inv2 := core.Inverse(core.NewElement(2))
	gen := domainGen
	half := uint64(p.domain) / 2
	folds := friLayerCount(p.domain)
	for layer := 0; layer < folds; layer++ {
		pos := q % half
		a, err := layerAt(layer, pos)
		if err != nil {
			return err
		}
		b, err := layerAt(layer, pos+half)
		if err != nil {
			return err
		}
		xInv := core.Inverse(core.ExpUint64(gen, pos))
		var sum, diff, t, folded core.Element
		sum.Add(&a, &b)
		diff.Sub(&a, &b)
		t.Mul(&diff, &xInv)
		t.Mul(&t, &betas[layer])
		folded.Add(&sum, &t)
		folded.Mul(&folded, &inv2)

		// the folded value lands at the same position in the next layer,
		// which the next layer's opening pair always covers
		var want core.Element
		if layer == folds-1 {
			want = finalCodeword[pos]
		} else {
			want, err = layerAt(layer+1, pos)
			if err != nil {
				return err
			}
		}
		if !folded.Equal(&want) {
			return rejectAt(RejectFriInconsistent, -1, int64(q), "co-linearity check failed at layer %d", layer)
		}
		gen.Square(&gen)
		half /= 2
	}
	return nil
}

func sortedIndices(set map[uint64]struct{}) []uint64 {
	out := make([]uint64, 0, len(set))
	for idx := range set {
		out = append(out, idx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
