// Package coloriumzkp provides a non-interactive, publicly verifiable
// zero-knowledge proof that a prover knows a proper 3-coloring of a directed
// graph with at most B blank edges, without revealing the coloring.
//
// Soundness is amplified over many independent rounds whose commitments are
// bound through a Fiat-Shamir transcript; the blank-count bound is proven by
// a STARK over a Blake3 Merkle commitment scheme with a FRI low-degree test
// in the Goldilocks field.
//
// # Quick Start
//
// Proving knowledge of a coloring:
//
//	cfg := coloriumzkp.DefaultConfig()
//	proof, err := coloriumzkp.Prove(instance, cfg, seed)
//	if err != nil {
//		log.Fatal(err)
//	}
//	raw, err := proof.Marshal()
//
// Verifying a transcript against the public instance parameters:
//
//	err := coloriumzkp.VerifyBytes(instance.Public(), cfg, raw)
//	if err != nil {
//		var reject *coloriumzkp.VerificationError
//		if errors.As(err, &reject) {
//			fmt.Println("rejected:", reject.Reason)
//		}
//	}
//
// The proving seed feeds the per-round color permutations. It is witness
// randomness: it must come from a cryptographically secure source and must
// never be logged or persisted.
package coloriumzkp
