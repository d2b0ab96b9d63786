// Package structure models an RNA secondary structure as a graph.
//
// # Overview
//
// A [Structure] holds one [Nucleotide] per sequence position and two kinds of
// [Bond]: backbone bonds between neighbors i and i+1, generated automatically,
// and pairing bonds between two externally supplied indices. Pairings are an
// input: this package does not predict or validate base pairing.
//
// # Construction
//
// Pairing indices are given as a flat list consumed two at a time:
//
//	s, err := structure.New("GGGAAAUCC", []int{0, 8, 1, 7})
//	if err != nil {
//	    // errors.Is(err, structure.ErrSelfPairing), ...
//	}
//
// [New] fails without a partial result when the sequence leaves the
// {A, U, G, C} alphabet, the pairing list has odd length, an index is out of
// range, or a pairing bond joins an index to itself. Every error also carries
// a code from [github.com/matzehuels/rnaviz/pkg/errors].
//
// # Identity
//
// Nucleotides are addressed by index. Their label (base followed by index,
// e.g. "A0") is unique and used only for display.
//
// # Notation
//
// [ParsePairs] reads the comma-separated pairing format ("0,8,1,7") and
// [Structure.DotBracket] produces the one-dimensional dot-bracket view.
package structure
