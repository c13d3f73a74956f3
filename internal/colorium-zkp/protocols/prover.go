package protocols

import (
	"encoding/binary"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/colorium/colorium-zkp/internal/colorium-zkp/core"
	"github.com/colorium/colorium-zkp/internal/colorium-zkp/graph"
	"github.com/colorium/colorium-zkp/internal/colorium-zkp/logger"
	"github.com/colorium/colorium-zkp/internal/colorium-zkp/utils"
)

// Prover holds one proving session. It owns the instance witness and the
// permutation source; per-round Merkle trees live only inside the round that
// builds them.
type Prover struct {
	instance *graph.GraphInstance
	cs       graph.ColorationSet
	cfg      *utils.VerifierConfig
	hasher   core.Hasher
	perms    *utils.PermutationSource
	log      zerolog.Logger
}

// NewProver validates the instance, the witness, and the configuration, and
// binds the session seed. An instance whose witness is invalid (improper
// coloring, or more blanks than the budget) is refused here; the prover
// never emits a proof for it.
func NewProver(instance *graph.GraphInstance, cfg *utils.VerifierConfig, seed [32]byte) (*Prover, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := instance.Validate(); err != nil {
		return nil, fmt.Errorf("invalid instance: %w", err)
	}
	if err := instance.CheckWitness(); err != nil {
		return nil, fmt.Errorf("refusing to prove: %w", err)
	}
	m := instance.NumEdges()
	if int(cfg.SpotsPerRound) > m {
		return nil, fmt.Errorf("cannot draw %d distinct spots from %d edges", cfg.SpotsPerRound, m)
	}
	if cfg.Strategy == utils.BlankSampling && int(cfg.BlankChecksPerRound) > m {
		return nil, fmt.Errorf("cannot draw %d distinct blank probes from %d edges", cfg.BlankChecksPerRound, m)
	}
	cs, err := graph.NewColorationSet(instance.ColorationMask)
	if err != nil {
		return nil, fmt.Errorf("invalid coloration set: %w", err)
	}
	return &Prover{
		instance: instance,
		cs:       cs,
		cfg:      cfg,
		hasher:   core.DefaultHasher(),
		perms:    utils.NewPermutationSource(seed),
		log:      logger.Logger().With().Str("component", "prover").Logger(),
	}, nil
}

// roundChallenge is the per-round challenge derived from the transcript.
type roundChallenge struct {
	spots  []uint64
	probes []uint64
	mode   SpotMode
}

// deriveRoundChallenge reads one round's challenge off the transcript. Both
// sides call it at the same transcript state.
func deriveRoundChallenge(tr *utils.Transcript, cfg *utils.VerifierConfig, m int) (*roundChallenge, error) {
	ch := &roundChallenge{}
	var err error
	ch.spots, err = tr.ChallengeIndices("spot", uint64(m), int(cfg.SpotsPerRound), true)
	if err != nil {
		return nil, err
	}
	switch cfg.Strategy {
	case utils.BlankSampling:
		ch.probes, err = tr.ChallengeIndices("blank", uint64(m), int(cfg.BlankChecksPerRound), true)
		if err != nil {
			return nil, err
		}
	case utils.BlankFull:
		// full probing consumes only a fixed marker
		tr.Absorb("blank-full", nil)
		ch.probes = make([]uint64, m)
		for i := range ch.probes {
			ch.probes[i] = uint64(i)
		}
	default:
		return nil, fmt.Errorf("unknown blank strategy %d", cfg.Strategy)
	}
	ch.mode = SpotMode(tr.ChallengeU64("mode") & 1)
	return ch, nil
}

// responseIndexSets derives the three opening index sets for a round from
// its challenge and the blank bits. Edge openings cover every spot plus
// every probe that revealed a blank; permutation openings (permutation mode
// only) cover the endpoints of every spotted edge.
func responseIndexSets(ch *roundChallenge, edges []graph.Edge, bits []uint8) (edgeIdx, permIdx, blankIdx []uint64) {
	edgeSet := make(map[uint64]struct{})
	blankSet := make(map[uint64]struct{})
	for _, e := range ch.spots {
		edgeSet[e] = struct{}{}
		blankSet[e] = struct{}{}
	}
	for _, e := range ch.probes {
		blankSet[e] = struct{}{}
		if bits[e] == 1 {
			edgeSet[e] = struct{}{}
		}
	}
	edgeIdx = sortedIndices(edgeSet)
	blankIdx = sortedIndices(blankSet)
	if ch.mode == ModePermutation {
		permSet := make(map[uint64]struct{})
		for _, e := range ch.spots {
			permSet[uint64(edges[e].From)] = struct{}{}
			permSet[uint64(edges[e].To)] = struct{}{}
		}
		permIdx = sortedIndices(permSet)
	}
	return edgeIdx, permIdx, blankIdx
}

// verifierIndexSets mirrors responseIndexSets on the verifier side, where
// the blank bits come from verified openings rather than the witness.
func verifierIndexSets(ch *roundChallenge, edges []graph.Edge, blankBits map[uint64]uint8) (edgeIdx, permIdx []uint64) {
	edgeSet := make(map[uint64]struct{})
	for _, e := range ch.spots {
		edgeSet[e] = struct{}{}
	}
	for _, e := range ch.probes {
		if blankBits[e] == 1 {
			edgeSet[e] = struct{}{}
		}
	}
	edgeIdx = sortedIndices(edgeSet)
	if ch.mode == ModePermutation {
		permSet := make(map[uint64]struct{})
		for _, e := range ch.spots {
			permSet[uint64(edges[e].From)] = struct{}{}
			permSet[uint64(edges[e].To)] = struct{}{}
		}
		permIdx = sortedIndices(permSet)
	}
	return edgeIdx, permIdx
}

// seedTranscript absorbs the protocol preamble: instance digest, verifier
// configuration, and blank budget, in that order.
func seedTranscript(tr *utils.Transcript, digest core.Digest, cfg *utils.VerifierConfig, budget uint32) {
	tr.Absorb("instance", digest[:])
	tr.Absorb("config", cfg.Encode())
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], budget)
	tr.Absorb("budget", b[:])
}

// absorbCommitment feeds a round's three roots into the transcript as the
// concatenation Re || Rp || Rb.
func absorbCommitment(tr *utils.Transcript, com *RoundCommitment) {
	buf := make([]byte, 0, 3*core.DigestSize)
	buf = append(buf, com.EdgeRoot[:]...)
	buf = append(buf, com.PermRoot[:]...)
	buf = append(buf, com.BlankRoot[:]...)
	tr.Absorb("round-roots", buf)
}

// Prove runs the full protocol: R commit/challenge/response rounds followed
// by the blank-count STARK, all bound through one Fiat-Shamir transcript.
func (p *Prover) Prove() (*Proof, error) {
	inst := p.instance
	m := inst.NumEdges()
	edges := inst.Edges

	bits := make([]uint8, m)
	blankItems := make([][]byte, m)
	for i := range bits {
		if inst.IsBlank(i) {
			bits[i] = 1
		}
		blankItems[i] = []byte{bits[i]}
	}

	digest := inst.Digest(p.hasher)
	tr := utils.NewTranscript(ProtocolID)
	seedTranscript(tr, digest, p.cfg, inst.BlankBudget)

	proof := &Proof{
		InstanceDigest: digest,
		Config:         p.cfg.Clone(),
		Rounds:         make([]RoundRecord, p.cfg.Rounds),
	}

	// the blank commitment is round-invariant; the STARK cross-checks
	// against the round-zero tree
	var blankTree0 *core.ChunkedTree

	for r := 0; r < int(p.cfg.Rounds); r++ {
		sigma := p.perms.Next()
		permColors := make([]uint8, inst.NumNodes)
		for v := range permColors {
			permColors[v] = sigma[inst.Coloring[v]]
		}

		edgeItems := make([][]byte, m)
		permItems := make([][]byte, len(permColors))
		for e := range edgeItems {
			edgeItems[e] = []byte{permColors[edges[e].From], permColors[edges[e].To]}
		}
		for v := range permItems {
			permItems[v] = []byte{permColors[v]}
		}

		var edgeTree, permTree, blankTree *core.ChunkedTree
		var g errgroup.Group
		chunk := int(p.cfg.ChunkSize)
		g.Go(func() error {
			var err error
			edgeTree, err = core.CommitItems(edgeItems, chunk, p.hasher)
			return err
		})
		g.Go(func() error {
			var err error
			permTree, err = core.CommitItems(permItems, chunk, p.hasher)
			return err
		})
		g.Go(func() error {
			var err error
			blankTree, err = core.CommitItems(blankItems, chunk, p.hasher)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("round %d commitment failed: %w", r, err)
		}
		if r == 0 {
			blankTree0 = blankTree
		}

		com := RoundCommitment{
			EdgeRoot:  edgeTree.Root(),
			PermRoot:  permTree.Root(),
			BlankRoot: blankTree.Root(),
		}
		absorbCommitment(tr, &com)

		ch, err := deriveRoundChallenge(tr, p.cfg, m)
		if err != nil {
			return nil, fmt.Errorf("round %d challenge derivation failed: %w", r, err)
		}

		edgeIdx, permIdx, blankIdx := responseIndexSets(ch, edges, bits)
		resp := RoundResponse{}
		if resp.EdgeOpen, err = edgeTree.Open(edgeIdx); err != nil {
			return nil, fmt.Errorf("round %d edge opening failed: %w", r, err)
		}
		if ch.mode == ModePermutation {
			if resp.PermOpen, err = permTree.Open(permIdx); err != nil {
				return nil, fmt.Errorf("round %d permutation opening failed: %w", r, err)
			}
		}
		if resp.BlankOpen, err = blankTree.Open(blankIdx); err != nil {
			return nil, fmt.Errorf("round %d blank opening failed: %w", r, err)
		}

		tr.Absorb("response", EncodeRoundResponse(&resp))
		proof.Rounds[r] = RoundRecord{Commitment: com, Response: resp}
		p.log.Debug().Int("round", r).Uint8("mode", uint8(ch.mode)).Msg("round complete")
	}

	stark, err := proveBlankCount(tr, bits, inst.BlankBudget, p.cfg, p.hasher, blankTree0)
	if err != nil {
		return nil, fmt.Errorf("blank-count STARK failed: %w", err)
	}
	proof.Stark = stark

	if raw, err := proof.Marshal(); err == nil {
		p.log.Debug().Int("bytes", len(raw)).Msg("proof complete")
	}
	return proof, nil
}
