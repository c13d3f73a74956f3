package coloriumzkp

import (
	"github.com/colorium/colorium-zkp/internal/colorium-zkp/core"
	"github.com/colorium/colorium-zkp/internal/colorium-zkp/graph"
	"github.com/colorium/colorium-zkp/internal/colorium-zkp/protocols"
	"github.com/colorium/colorium-zkp/internal/colorium-zkp/utils"
)

// Instance is a graph with its coloring witness, blank set, triad mask, and
// blank budget.
type Instance = graph.GraphInstance

// Edge is an ordered node pair.
type Edge = graph.Edge

// PublicParams is the public part of an instance.
type PublicParams = graph.PublicParams

// Config holds the public protocol parameters.
type Config = utils.VerifierConfig

// BlankStrategy selects Sampling or Full blank probing.
type BlankStrategy = utils.BlankStrategy

// Blank probing strategies.
const (
	BlankSampling = utils.BlankSampling
	BlankFull     = utils.BlankFull
)

// Proof is a complete serialized-to-bytes-capable transcript.
type Proof = protocols.Proof

// VerificationError carries the reject reason and position diagnostics.
type VerificationError = protocols.VerificationError

// RejectReason identifies why verification rejected a proof.
type RejectReason = protocols.RejectReason

// Reject reasons.
const (
	RejectBadMerkleOpening       = protocols.RejectBadMerkleOpening
	RejectSpotViolatesColoration = protocols.RejectSpotViolatesColoration
	RejectSpotMarkedBlank        = protocols.RejectSpotMarkedBlank
	RejectBlankMismatch          = protocols.RejectBlankMismatch
	RejectBlankBudgetExceeded    = protocols.RejectBlankBudgetExceeded
	RejectStarkConstraint        = protocols.RejectStarkConstraint
	RejectFriInconsistent        = protocols.RejectFriInconsistent
	RejectTranscriptDesync       = protocols.RejectTranscriptDesync
	RejectMalformedProof         = protocols.RejectMalformedProof
	RejectInvalidConfig          = protocols.RejectInvalidConfig
)

// DefaultConfig returns the default protocol parameters.
func DefaultConfig() *Config {
	return utils.DefaultVerifierConfig()
}

// DistinctColorsMask is the canonical coloration relation: all ordered pairs
// of two different colors.
func DistinctColorsMask() uint16 {
	return graph.DistinctColors().Mask()
}

// Prove runs a proving session over the instance with the given seed. The
// same instance, configuration, and seed always yield byte-identical proofs.
func Prove(instance *Instance, cfg *Config, seed [32]byte) (*Proof, error) {
	prover, err := protocols.NewProver(instance, cfg, seed)
	if err != nil {
		return nil, err
	}
	return prover.Prove()
}

// Verify checks a proof against the public instance parameters. It returns
// nil on accept and a *VerificationError otherwise.
func Verify(params *PublicParams, cfg *Config, proof *Proof) error {
	return protocols.Verify(params, cfg, proof)
}

// VerifyBytes deserializes and verifies a transcript file.
func VerifyBytes(params *PublicParams, cfg *Config, raw []byte) error {
	return protocols.VerifyBytes(params, cfg, raw)
}

// CommitInstance computes the canonical 32-byte digest of an instance's
// public part.
func CommitInstance(params *PublicParams) [32]byte {
	return [32]byte(params.Digest(core.DefaultHasher()))
}

// UnmarshalProof parses a serialized transcript.
func UnmarshalProof(raw []byte) (*Proof, error) {
	return protocols.UnmarshalProof(raw)
}
