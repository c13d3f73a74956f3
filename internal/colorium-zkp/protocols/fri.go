package protocols

import (
	"fmt"

	"github.com/colorium/colorium-zkp/internal/colorium-zkp/core"
	"github.com/colorium/colorium-zkp/internal/colorium-zkp/utils"
)

// friFinalSize is the codeword length at which folding stops. The final
// codeword is shipped in full and must be constant.
const friFinalSize = 2

// friFold halves a codeword: next[j] = (f[j] + f[j+h])/2 + beta*(f[j] - f[j+h])/(2*x_j)
// where h = len/2 and x_j runs over the first half of the layer's domain.
func friFold(codeword []core.Element, gen core.Element, beta core.Element) []core.Element {
	half := len(codeword) / 2
	next := make([]core.Element, half)

	inv2 := core.Inverse(core.NewElement(2))
	genInv := core.Inverse(gen)
	var xInv core.Element
	xInv.SetOne()
	for j := 0; j < half; j++ {
		var sum, diff, t core.Element
		sum.Add(&codeword[j], &codeword[j+half])
		diff.Sub(&codeword[j], &codeword[j+half])
		t.Mul(&diff, &xInv)
		t.Mul(&t, &beta)
		sum.Add(&sum, &t)
		sum.Mul(&sum, &inv2)
		next[j] = sum
		xInv.Mul(&xInv, &genInv)
	}
	return next
}

// friCommitResult is the prover-side output of the FRI commit phase.
type friCommitResult struct {
	trees         []*core.ChunkedTree // trees for the committed folded layers
	roots         []core.Digest
	finalCodeword []core.Element
}

// friCommit folds the layer-zero codeword down to the final size, committing
// every intermediate codeword and threading roots and folding challenges
// through the transcript. The layer-zero commitment must already have been
// absorbed by the caller.
func friCommit(tr *utils.Transcript, codeword []core.Element, gen core.Element, chunkSize int, h core.Hasher) (*friCommitResult, error) {
	if len(codeword) < 2*friFinalSize {
		return nil, fmt.Errorf("FRI codeword of length %d is too short to fold", len(codeword))
	}
	res := &friCommitResult{}
	current := codeword
	curGen := gen
	for len(current) > friFinalSize {
		beta := tr.ChallengeField("fri-beta")
		next := friFold(current, curGen, beta)
		curGen.Square(&curGen)
		if len(next) > friFinalSize {
			tree, err := core.CommitItems(wordItems(next), chunkSize, h)
			if err != nil {
				return nil, fmt.Errorf("failed to commit FRI layer: %w", err)
			}
			root := tree.Root()
			tr.AbsorbDigest("fri-layer-root", root)
			res.trees = append(res.trees, tree)
			res.roots = append(res.roots, root)
		} else {
			res.finalCodeword = next
			tr.Absorb("fri-final", wordBytes(next))
		}
		current = next
	}
	return res, nil
}

// friLayerCount returns the number of folds for a layer-zero codeword of the
// given length.
func friLayerCount(domain int) int {
	return utils.Log2(domain) - 1
}

// wordItems encodes a codeword as 8-byte Merkle items.
func wordItems(codeword []core.Element) [][]byte {
	items := make([][]byte, len(codeword))
	for i, e := range codeword {
		b := core.ElementToBytes(e)
		items[i] = b[:]
	}
	return items
}

// wordBytes flattens a codeword into its canonical byte string.
func wordBytes(codeword []core.Element) []byte {
	out := make([]byte, 0, 8*len(codeword))
	for _, e := range codeword {
		b := core.ElementToBytes(e)
		out = append(out, b[:]...)
	}
	return out
}
