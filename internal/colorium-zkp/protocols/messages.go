package protocols

import (
	"github.com/colorium/colorium-zkp/internal/colorium-zkp/core"
	"github.com/colorium/colorium-zkp/internal/colorium-zkp/utils"
)

// ProtocolID seeds the Fiat-Shamir transcript. Changing any protocol rule
// requires bumping the version suffix.
const ProtocolID = "colorium-zkp/3col-blank/v1"

// SpotMode is the per-round coin deciding what a spot check reveals.
type SpotMode uint8

const (
	// ModeEndpoints reveals the committed edge-color pair and blank bit
	ModeEndpoints SpotMode = 0

	// ModePermutation additionally reveals the permuted node colors of the
	// edge's endpoints and checks them against the edge record
	ModePermutation SpotMode = 1
)

// Canonical leaf item widths for the three per-round commitments and the
// STARK trees. Merkle chunks concatenate this many bytes per item.
const (
	// EdgeItemSize: one byte per endpoint color
	EdgeItemSize = 2

	// PermItemSize: one permuted node color
	PermItemSize = 1

	// BlankItemSize: one blank bit
	BlankItemSize = 1

	// TraceItemSize: five little-endian field columns per trace row
	TraceItemSize = 5 * 8

	// WordItemSize: one little-endian field element (composition and FRI
	// layer codewords)
	WordItemSize = 8
)

// RoundCommitment is the triple of Merkle roots a round opens against.
type RoundCommitment struct {
	EdgeRoot  core.Digest
	PermRoot  core.Digest
	BlankRoot core.Digest
}

// RoundResponse carries the batch openings answering one round's challenge.
// PermOpen is nil in endpoints mode. The index sets are not serialized; the
// verifier rederives them from the transcript.
type RoundResponse struct {
	EdgeOpen  *core.BatchProof
	PermOpen  *core.BatchProof
	BlankOpen *core.BatchProof
}

// RoundRecord is one round of the proof.
type RoundRecord struct {
	Commitment RoundCommitment
	Response   RoundResponse
}

// FriProof is the low-degree test attached to the composition polynomial.
// LayerRoots commits the folded codewords (the composition commitment is
// layer zero); FinalCodeword is the last, constant codeword in full.
type FriProof struct {
	LayerRoots    []core.Digest
	FinalCodeword []core.Element
	LayerOpen     []*core.BatchProof
}

// StarkProof is the blank-count argument. BlankOpen opens the round-zero
// blank commitment at the queried trace rows for the cross-check.
type StarkProof struct {
	TraceRoot      core.Digest
	ConstraintRoot core.Digest
	Fri            FriProof
	TraceOpen      *core.BatchProof
	CompOpen       *core.BatchProof
	BlankOpen      *core.BatchProof
}

// Proof is a complete non-interactive transcript: the instance binding, the
// configuration it was produced under, all round records, and the STARK.
type Proof struct {
	InstanceDigest core.Digest
	Config         *utils.VerifierConfig
	Rounds         []RoundRecord
	Stark          StarkProof
}
