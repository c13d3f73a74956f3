package protocols

import (
	"bytes"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/colorium/colorium-zkp/internal/colorium-zkp/graph"
	"github.com/colorium/colorium-zkp/internal/colorium-zkp/utils"
)

// TestCompletenessProperty tests that every valid witness proves and
// verifies, across instance families, strategies, and seeds
func TestCompletenessProperty(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping property test in short mode")
	}
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	properties.Property("prove then verify accepts", prop.ForAll(
		func(kind int, size int, rounds int, full bool, seedByte int) bool {
			var inst *graph.GraphInstance
			switch kind % 3 {
			case 0:
				inst = graph.Path(uint32(size))
			case 1:
				inst = graph.Cycle(uint32(size))
			default:
				inst = graph.Tripartite(uint32(size), 2)
			}
			m := inst.NumEdges()
			spots := 2
			if spots > m {
				spots = m
			}
			blanks := 1
			if blanks > m {
				blanks = m
			}
			cfg := utils.DefaultVerifierConfig().
				WithRounds(uint32(rounds)).
				WithSpotsPerRound(uint32(spots)).
				WithBlankChecksPerRound(uint32(blanks))
			if full {
				cfg = cfg.WithStrategy(utils.BlankFull)
			}

			var seed [32]byte
			seed[0] = byte(seedByte)
			prover, err := NewProver(inst, cfg, seed)
			if err != nil {
				return false
			}
			proof, err := prover.Prove()
			if err != nil {
				return false
			}
			return Verify(inst.Public(), cfg, proof) == nil
		},
		gen.IntRange(0, 2),
		gen.IntRange(4, 12),
		gen.IntRange(1, 4),
		gen.Bool(),
		gen.IntRange(0, 255),
	))

	properties.Property("proofs are deterministic per seed", prop.ForAll(
		func(size int, seedByte int) bool {
			inst := graph.Cycle(uint32(size))
			cfg := utils.DefaultVerifierConfig().
				WithRounds(2).
				WithSpotsPerRound(2).
				WithBlankChecksPerRound(1)
			var seed [32]byte
			seed[0] = byte(seedByte)

			raw := func() []byte {
				prover, err := NewProver(inst, cfg, seed)
				if err != nil {
					return nil
				}
				proof, err := prover.Prove()
				if err != nil {
					return nil
				}
				out, err := proof.Marshal()
				if err != nil {
					return nil
				}
				return out
			}
			a, b := raw(), raw()
			return a != nil && bytes.Equal(a, b)
		},
		gen.IntRange(4, 10),
		gen.IntRange(0, 255),
	))

	properties.TestingRun(t)
}
