package utils

import (
	"bytes"
	"testing"
)

// TestDefaultVerifierConfig tests the default configuration
func TestDefaultVerifierConfig(t *testing.T) {
	cfg := DefaultVerifierConfig()
	if cfg == nil {
		t.Fatal("DefaultVerifierConfig() returned nil")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
	if cfg.Blowup() != 8 {
		t.Errorf("default blowup = %d, want 8", cfg.Blowup())
	}
}

// TestConfigValidate tests the Validate method
func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *VerifierConfig)
		expectErr bool
	}{
		{name: "valid default", mutate: func(c *VerifierConfig) {}, expectErr: false},
		{name: "zero rounds", mutate: func(c *VerifierConfig) { c.Rounds = 0 }, expectErr: true},
		{name: "zero spots", mutate: func(c *VerifierConfig) { c.SpotsPerRound = 0 }, expectErr: true},
		{name: "chunk size not power of two", mutate: func(c *VerifierConfig) { c.ChunkSize = 6 }, expectErr: true},
		{name: "chunk size zero", mutate: func(c *VerifierConfig) { c.ChunkSize = 0 }, expectErr: true},
		{name: "unknown strategy", mutate: func(c *VerifierConfig) { c.Strategy = 7 }, expectErr: true},
		{name: "sampling without blank checks", mutate: func(c *VerifierConfig) { c.BlankChecksPerRound = 0 }, expectErr: false},
		{name: "zero FRI queries", mutate: func(c *VerifierConfig) { c.FriQueries = 0 }, expectErr: true},
		{name: "zero blowup", mutate: func(c *VerifierConfig) { c.FriBlowupLog2 = 0 }, expectErr: true},
		{name: "huge blowup", mutate: func(c *VerifierConfig) { c.FriBlowupLog2 = 40 }, expectErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultVerifierConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.expectErr {
				t.Errorf("Validate() error = %v, expectErr = %v", err, tt.expectErr)
			}
		})
	}
}

// TestConfigEncodeDecodeRoundTrip tests the fixed wire schema
func TestConfigEncodeDecodeRoundTrip(t *testing.T) {
	cfg := DefaultVerifierConfig().
		WithRounds(11).
		WithSpotsPerRound(5).
		WithBlankChecksPerRound(3).
		WithChunkSize(16).
		WithStrategy(BlankFull).
		WithFriQueries(17)

	raw := cfg.Encode()
	if len(raw) != 28 {
		t.Fatalf("encoded config has %d bytes, want 28", len(raw))
	}
	back, err := DecodeVerifierConfig(raw)
	if err != nil {
		t.Fatal(err)
	}
	if !back.Equal(cfg) {
		t.Error("decode(encode(cfg)) != cfg")
	}
	if !bytes.Equal(back.Encode(), raw) {
		t.Error("re-encoding is not canonical")
	}

	if _, err := DecodeVerifierConfig(raw[:27]); err == nil {
		t.Error("expected error for short config")
	}
}

// TestConfigClone tests that Clone detaches the copy
func TestConfigClone(t *testing.T) {
	cfg := DefaultVerifierConfig()
	clone := cfg.Clone()
	clone.Rounds = 99
	if cfg.Rounds == 99 {
		t.Error("clone mutated the original")
	}
}
