package protocols

import (
	"github.com/colorium/colorium-zkp/internal/colorium-zkp/core"
	"github.com/colorium/colorium-zkp/internal/colorium-zkp/graph"
	"github.com/colorium/colorium-zkp/internal/colorium-zkp/logger"
	"github.com/colorium/colorium-zkp/internal/colorium-zkp/utils"
)

// Verify replays the Fiat-Shamir transcript against the public instance
// parameters and checks every round and the STARK. It returns nil on accept
// and a *VerificationError carrying the reject reason otherwise. The first
// failed check is fatal.
func Verify(params *graph.PublicParams, cfg *utils.VerifierConfig, proof *Proof) error {
	log := logger.Logger().With().Str("component", "verifier").Logger()

	if err := cfg.Validate(); err != nil {
		return reject(RejectInvalidConfig, "%v", err)
	}
	cs, err := graph.NewColorationSet(params.ColorationMask)
	if err != nil {
		return reject(RejectInvalidConfig, "%v", err)
	}
	m := params.NumEdges()
	if m == 0 {
		return reject(RejectInvalidConfig, "instance has no edges")
	}
	if int(cfg.SpotsPerRound) > m {
		return reject(RejectInvalidConfig, "cannot draw %d distinct spots from %d edges", cfg.SpotsPerRound, m)
	}
	if cfg.Strategy == utils.BlankSampling && int(cfg.BlankChecksPerRound) > m {
		return reject(RejectInvalidConfig, "cannot draw %d distinct blank probes from %d edges", cfg.BlankChecksPerRound, m)
	}

	if proof.Config == nil || !proof.Config.Equal(cfg) {
		return reject(RejectTranscriptDesync, "proof was produced under a different configuration")
	}
	hasher := core.DefaultHasher()
	digest := params.Digest(hasher)
	if digest != proof.InstanceDigest {
		return reject(RejectTranscriptDesync, "proof binds a different instance")
	}
	if len(proof.Rounds) != int(cfg.Rounds) {
		return reject(RejectMalformedProof, "proof has %d rounds, config says %d", len(proof.Rounds), cfg.Rounds)
	}

	tr := utils.NewTranscript(ProtocolID)
	seedTranscript(tr, digest, cfg, params.BlankBudget)

	edges := params.Edges
	chunk := int(cfg.ChunkSize)
	edgeShape := core.TreeShape{NumItems: m, ItemSize: EdgeItemSize, ChunkSize: chunk}
	permShape := core.TreeShape{NumItems: int(params.NumNodes), ItemSize: PermItemSize, ChunkSize: chunk}
	blankShape := core.TreeShape{NumItems: m, ItemSize: BlankItemSize, ChunkSize: chunk}

	var blankRoot0 core.Digest
	var observedBlanks uint64

	for r := range proof.Rounds {
		rec := &proof.Rounds[r]
		absorbCommitment(tr, &rec.Commitment)

		// the blank vector is round-invariant; so is its commitment
		if r == 0 {
			blankRoot0 = rec.Commitment.BlankRoot
		} else if rec.Commitment.BlankRoot != blankRoot0 {
			return rejectAt(RejectBlankMismatch, r, -1, "blank commitment differs across rounds")
		}

		ch, err := deriveRoundChallenge(tr, cfg, m)
		if err != nil {
			return rejectAt(RejectInvalidConfig, r, -1, "challenge derivation failed: %v", err)
		}

		blankSet := make(map[uint64]struct{})
		for _, e := range ch.spots {
			blankSet[e] = struct{}{}
		}
		for _, e := range ch.probes {
			blankSet[e] = struct{}{}
		}
		blankIdx := sortedIndices(blankSet)
		blankValues, err := core.VerifyBatch(hasher, rec.Commitment.BlankRoot, blankShape, blankIdx, rec.Response.BlankOpen)
		if err != nil {
			return rejectAt(RejectBadMerkleOpening, r, -1, "blank opening: %v", err)
		}
		blankBits := make(map[uint64]uint8, len(blankValues))
		for idx, raw := range blankValues {
			if raw[0] > 1 {
				return rejectAt(RejectMalformedProof, r, int64(idx), "blank opening is not a bit")
			}
			blankBits[idx] = raw[0]
		}

		edgeIdx, permIdx := verifierIndexSets(ch, edges, blankBits)
		edgeValues, err := core.VerifyBatch(hasher, rec.Commitment.EdgeRoot, edgeShape, edgeIdx, rec.Response.EdgeOpen)
		if err != nil {
			return rejectAt(RejectBadMerkleOpening, r, -1, "edge opening: %v", err)
		}
		var permValues map[uint64][]byte
		if ch.mode == ModePermutation {
			permValues, err = core.VerifyBatch(hasher, rec.Commitment.PermRoot, permShape, permIdx, rec.Response.PermOpen)
			if err != nil {
				return rejectAt(RejectBadMerkleOpening, r, -1, "permutation opening: %v", err)
			}
		} else if rec.Response.PermOpen != nil {
			return rejectAt(RejectMalformedProof, r, -1, "unexpected permutation opening in endpoints mode")
		}

		for _, e := range ch.spots {
			if blankBits[e] == 1 {
				return rejectAt(RejectSpotMarkedBlank, r, int64(e), "spot-challenged edge is marked blank")
			}
			pair := edgeValues[e]
			a, b := pair[0], pair[1]
			if ch.mode == ModePermutation {
				pu := permValues[uint64(edges[e].From)][0]
				pv := permValues[uint64(edges[e].To)][0]
				if pu != a || pv != b {
					return rejectAt(RejectSpotViolatesColoration, r, int64(e), "edge record disagrees with permuted coloring")
				}
			}
			if !cs.Contains(a, b) {
				return rejectAt(RejectSpotViolatesColoration, r, int64(e), "endpoint pair (%d, %d) not in coloration set", a, b)
			}
		}

		var roundBlanks uint64
		for _, e := range ch.probes {
			roundBlanks += uint64(blankBits[e])
		}
		observedBlanks += roundBlanks
		if cfg.Strategy == utils.BlankFull && roundBlanks > uint64(params.BlankBudget) {
			return rejectAt(RejectBlankBudgetExceeded, r, -1, "observed %d blanks, budget is %d", roundBlanks, params.BlankBudget)
		}

		tr.Absorb("response", EncodeRoundResponse(&rec.Response))
	}

	if err := verifyBlankCount(tr, &proof.Stark, m, params.BlankBudget, cfg, hasher, blankRoot0); err != nil {
		return err
	}

	log.Debug().Uint64("observed_blanks", observedBlanks).Msg("proof accepted")
	return nil
}

// VerifyBytes deserializes and verifies a transcript file in one step.
func VerifyBytes(params *graph.PublicParams, cfg *utils.VerifierConfig, raw []byte) error {
	proof, err := UnmarshalProof(raw)
	if err != nil {
		return err
	}
	return Verify(params, cfg, proof)
}
