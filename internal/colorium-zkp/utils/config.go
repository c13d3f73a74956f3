package utils

import (
	"encoding/binary"
	"fmt"
)

// BlankStrategy selects how blank probes are chosen each round.
type BlankStrategy uint32

const (
	// BlankSampling probes blank_checks_per_round transcript-chosen edges.
	BlankSampling BlankStrategy = 0

	// BlankFull probes every edge each round.
	BlankFull BlankStrategy = 1
)

// VerifierConfig represents the public protocol parameters. Both sides must
// agree on it byte for byte; it is absorbed into the transcript before any
// round and embedded in serialized proofs.
type VerifierConfig struct {
	// Rounds is the number of commit/challenge/response rounds
	Rounds uint32

	// SpotsPerRound is the number of spot-checked edges per round
	SpotsPerRound uint32

	// BlankChecksPerRound is the number of blank probes per round (Sampling only)
	BlankChecksPerRound uint32

	// ChunkSize is the Merkle chunk width in items (power of two)
	ChunkSize uint32

	// Strategy selects Sampling or Full blank probing
	Strategy BlankStrategy

	// FriQueries is the number of FRI query positions
	FriQueries uint32

	// FriBlowupLog2 is log2 of the low-degree-extension blowup factor
	FriBlowupLog2 uint32
}

// DefaultVerifierConfig returns the default protocol parameters.
func DefaultVerifierConfig() *VerifierConfig {
	return &VerifierConfig{
		Rounds:              8,
		SpotsPerRound:       4,
		BlankChecksPerRound: 2,
		ChunkSize:           8,
		Strategy:            BlankSampling,
		FriQueries:          40,
		FriBlowupLog2:       3,
	}
}

// Validate checks if the configuration is valid
func (c *VerifierConfig) Validate() error {
	if c.Rounds == 0 {
		return fmt.Errorf("rounds must be positive")
	}
	if c.SpotsPerRound == 0 {
		return fmt.Errorf("spots per round must be positive")
	}
	if c.ChunkSize == 0 || c.ChunkSize&(c.ChunkSize-1) != 0 {
		return fmt.Errorf("chunk size must be a power of two, got %d", c.ChunkSize)
	}
	if c.Strategy != BlankSampling && c.Strategy != BlankFull {
		return fmt.Errorf("unknown blank strategy %d", c.Strategy)
	}
	if c.FriQueries == 0 {
		return fmt.Errorf("FRI queries must be positive")
	}
	if c.FriBlowupLog2 == 0 || c.FriBlowupLog2 > 16 {
		return fmt.Errorf("FRI blowup log2 must be in [1, 16], got %d", c.FriBlowupLog2)
	}
	return nil
}

// Blowup returns the low-degree-extension blowup factor.
func (c *VerifierConfig) Blowup() int {
	return 1 << c.FriBlowupLog2
}

// Encode serializes the configuration in its fixed wire schema:
// seven big-endian u32 values.
func (c *VerifierConfig) Encode() []byte {
	buf := make([]byte, 28)
	binary.BigEndian.PutUint32(buf[0:], c.Rounds)
	binary.BigEndian.PutUint32(buf[4:], c.SpotsPerRound)
	binary.BigEndian.PutUint32(buf[8:], c.BlankChecksPerRound)
	binary.BigEndian.PutUint32(buf[12:], c.ChunkSize)
	binary.BigEndian.PutUint32(buf[16:], uint32(c.Strategy))
	binary.BigEndian.PutUint32(buf[20:], c.FriQueries)
	binary.BigEndian.PutUint32(buf[24:], c.FriBlowupLog2)
	return buf
}

// DecodeVerifierConfig parses the fixed wire schema produced by Encode.
func DecodeVerifierConfig(buf []byte) (*VerifierConfig, error) {
	if len(buf) != 28 {
		return nil, fmt.Errorf("verifier config must be 28 bytes, got %d", len(buf))
	}
	c := &VerifierConfig{
		Rounds:              binary.BigEndian.Uint32(buf[0:]),
		SpotsPerRound:       binary.BigEndian.Uint32(buf[4:]),
		BlankChecksPerRound: binary.BigEndian.Uint32(buf[8:]),
		ChunkSize:           binary.BigEndian.Uint32(buf[12:]),
		Strategy:            BlankStrategy(binary.BigEndian.Uint32(buf[16:])),
		FriQueries:          binary.BigEndian.Uint32(buf[20:]),
		FriBlowupLog2:       binary.BigEndian.Uint32(buf[24:]),
	}
	return c, nil
}

// Equal reports whether two configurations match field for field.
func (c *VerifierConfig) Equal(other *VerifierConfig) bool {
	return *c == *other
}

// WithRounds sets the round count
func (c *VerifierConfig) WithRounds(rounds uint32) *VerifierConfig {
	c.Rounds = rounds
	return c
}

// WithSpotsPerRound sets the spot count per round
func (c *VerifierConfig) WithSpotsPerRound(spots uint32) *VerifierConfig {
	c.SpotsPerRound = spots
	return c
}

// WithBlankChecksPerRound sets the blank probe count per round
func (c *VerifierConfig) WithBlankChecksPerRound(checks uint32) *VerifierConfig {
	c.BlankChecksPerRound = checks
	return c
}

// WithChunkSize sets the Merkle chunk width
func (c *VerifierConfig) WithChunkSize(size uint32) *VerifierConfig {
	c.ChunkSize = size
	return c
}

// WithStrategy sets the blank probing strategy
func (c *VerifierConfig) WithStrategy(s BlankStrategy) *VerifierConfig {
	c.Strategy = s
	return c
}

// WithFriQueries sets the FRI query count
func (c *VerifierConfig) WithFriQueries(queries uint32) *VerifierConfig {
	c.FriQueries = queries
	return c
}

// Clone creates a copy of the configuration
func (c *VerifierConfig) Clone() *VerifierConfig {
	out := *c
	return &out
}
