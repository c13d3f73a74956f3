package coloriumzkp

import (
	"errors"
	"testing"

	"github.com/bits-and-blooms/bitset"
	"github.com/stretchr/testify/require"
)

func pathInstance() *Instance {
	return &Instance{
		NumNodes:       4,
		Edges:          []Edge{{From: 0, To: 1}, {From: 1, To: 2}, {From: 2, To: 3}},
		Coloring:       []uint8{0, 1, 2, 0},
		Blank:          bitset.New(3),
		ColorationMask: DistinctColorsMask(),
		BlankBudget:    0,
	}
}

// TestPublicAPIRoundTrip tests Prove, Marshal, and VerifyBytes end to end
func TestPublicAPIRoundTrip(t *testing.T) {
	inst := pathInstance()
	cfg := DefaultConfig().
		WithRounds(4).
		WithSpotsPerRound(2).
		WithBlankChecksPerRound(0)

	var seed [32]byte
	seed[3] = 9
	proof, err := Prove(inst, cfg, seed)
	require.NoError(t, err)
	require.NoError(t, Verify(inst.Public(), cfg, proof))

	raw, err := proof.Marshal()
	require.NoError(t, err)
	require.NoError(t, VerifyBytes(inst.Public(), cfg, raw))

	back, err := UnmarshalProof(raw)
	require.NoError(t, err)
	require.Equal(t, proof, back)
}

// TestCommitInstance tests the public digest helper
func TestCommitInstance(t *testing.T) {
	a := CommitInstance(pathInstance().Public())
	b := CommitInstance(pathInstance().Public())
	require.Equal(t, a, b)

	other := pathInstance()
	other.BlankBudget = 2
	require.NotEqual(t, a, CommitInstance(other.Public()))
}

// TestRejectReasonSurface tests that reject reasons flow through the
// public error type
func TestRejectReasonSurface(t *testing.T) {
	inst := pathInstance()
	cfg := DefaultConfig().
		WithRounds(2).
		WithSpotsPerRound(2).
		WithBlankChecksPerRound(0)

	var seed [32]byte
	proof, err := Prove(inst, cfg, seed)
	require.NoError(t, err)

	err = Verify(inst.Public(), cfg.Clone().WithRounds(3), proof)
	require.Error(t, err)
	var verr *VerificationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, RejectTranscriptDesync, verr.Reason)
}
