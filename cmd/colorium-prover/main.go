// Command colorium-prover proves and verifies graph 3-coloring transcripts.
//
// Instances are CBOR files; transcripts use the binary layout produced by
// the core serializer.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"github.com/bits-and-blooms/bitset"
	"github.com/fxamacker/cbor/v2"

	"github.com/colorium/colorium-zkp/internal/colorium-zkp/logger"
	coloriumzkp "github.com/colorium/colorium-zkp/pkg/colorium-zkp"
)

// instanceFile is the on-disk CBOR schema for a graph instance.
type instanceFile struct {
	Nodes          uint32      `cbor:"nodes"`
	Edges          [][2]uint32 `cbor:"edges"`
	Coloring       []uint8     `cbor:"coloring"`
	BlankEdges     []uint32    `cbor:"blank_edges"`
	ColorationMask uint16      `cbor:"coloration_mask"`
	BlankBudget    uint32      `cbor:"blank_budget"`
}

func loadInstance(path string) (*coloriumzkp.Instance, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read instance file: %w", err)
	}
	var file instanceFile
	if err := cbor.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse instance file: %w", err)
	}
	inst := &coloriumzkp.Instance{
		NumNodes:       file.Nodes,
		Edges:          make([]coloriumzkp.Edge, len(file.Edges)),
		Coloring:       file.Coloring,
		Blank:          bitset.New(uint(len(file.Edges))),
		ColorationMask: file.ColorationMask,
		BlankBudget:    file.BlankBudget,
	}
	for i, e := range file.Edges {
		inst.Edges[i] = coloriumzkp.Edge{From: e[0], To: e[1]}
	}
	for _, idx := range file.BlankEdges {
		inst.Blank.Set(uint(idx))
	}
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	return inst, nil
}

func configFlags(fs *flag.FlagSet) *coloriumzkp.Config {
	cfg := coloriumzkp.DefaultConfig()
	fs.Func("rounds", "number of protocol rounds", func(s string) error {
		_, err := fmt.Sscanf(s, "%d", &cfg.Rounds)
		return err
	})
	fs.Func("spots", "spot checks per round", func(s string) error {
		_, err := fmt.Sscanf(s, "%d", &cfg.SpotsPerRound)
		return err
	})
	fs.Func("blank-checks", "blank probes per round", func(s string) error {
		_, err := fmt.Sscanf(s, "%d", &cfg.BlankChecksPerRound)
		return err
	})
	fs.Func("strategy", "blank strategy: sampling or full", func(s string) error {
		switch s {
		case "sampling":
			cfg.Strategy = coloriumzkp.BlankSampling
		case "full":
			cfg.Strategy = coloriumzkp.BlankFull
		default:
			return fmt.Errorf("unknown strategy %q", s)
		}
		return nil
	})
	return cfg
}

func runProve(args []string) error {
	fs := flag.NewFlagSet("prove", flag.ExitOnError)
	instancePath := fs.String("instance", "", "instance file (CBOR)")
	outPath := fs.String("out", "proof.zkpcc", "output transcript file")
	cfg := configFlags(fs)
	fs.Parse(args)
	if *instancePath == "" {
		return fmt.Errorf("prove requires -instance")
	}

	inst, err := loadInstance(*instancePath)
	if err != nil {
		return err
	}

	// fresh witness randomness per session; intentionally never printed
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return fmt.Errorf("failed to draw proving seed: %w", err)
	}

	proof, err := coloriumzkp.Prove(inst, cfg, seed)
	if err != nil {
		return err
	}
	raw, err := proof.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(*outPath, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	log := logger.Logger()
	log.Info().
		Str("out", *outPath).
		Int("bytes", len(raw)).
		Int("rounds", len(proof.Rounds)).
		Msg("transcript written")
	return nil
}

func runVerify(args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	instancePath := fs.String("instance", "", "instance file (CBOR)")
	proofPath := fs.String("proof", "", "transcript file")
	cfg := configFlags(fs)
	fs.Parse(args)
	if *instancePath == "" || *proofPath == "" {
		return fmt.Errorf("verify requires -instance and -proof")
	}

	inst, err := loadInstance(*instancePath)
	if err != nil {
		return err
	}
	raw, err := os.ReadFile(*proofPath)
	if err != nil {
		return fmt.Errorf("failed to read transcript: %w", err)
	}
	if err := coloriumzkp.VerifyBytes(inst.Public(), cfg, raw); err != nil {
		return err
	}
	fmt.Println("Accept")
	return nil
}

func runDigest(args []string) error {
	fs := flag.NewFlagSet("digest", flag.ExitOnError)
	instancePath := fs.String("instance", "", "instance file (CBOR)")
	fs.Parse(args)
	if *instancePath == "" {
		return fmt.Errorf("digest requires -instance")
	}
	inst, err := loadInstance(*instancePath)
	if err != nil {
		return err
	}
	digest := coloriumzkp.CommitInstance(inst.Public())
	fmt.Println(hex.EncodeToString(digest[:]))
	return nil
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: colorium-prover <prove|verify|digest> [flags]")
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "prove":
		err = runProve(os.Args[2:])
	case "verify":
		err = runVerify(os.Args[2:])
	case "digest":
		err = runDigest(os.Args[2:])
	default:
		err = fmt.Errorf("unknown command %q", os.Args[1])
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
