package structure

import (
	"errors"
	"fmt"
	"strconv"

	rnaerrors "github.com/matzehuels/rnaviz/pkg/errors"
)

var (
	// ErrInvalidAlphabet is returned by [New] when the sequence is empty or
	// contains a character outside {A, U, G, C}. Lowercase letters are
	// rejected; callers that accept user input should normalize first.
	ErrInvalidAlphabet = errors.New("invalid alphabet")

	// ErrMalformedPairing is returned by [New] when the flat pairing list has
	// odd length, and by [ParsePairs] when an entry is not a non-negative integer.
	ErrMalformedPairing = errors.New("malformed pairing list")

	// ErrIndexOutOfRange is returned by [New] when a pairing index does not
	// address a nucleotide of the sequence.
	ErrIndexOutOfRange = errors.New("pairing index out of range")

	// ErrSelfPairing is returned by [New] when both indices of one pairing
	// bond are equal.
	ErrSelfPairing = errors.New("nucleotide paired with itself")
)

// Base is a nucleotide base letter.
type Base byte

// The four RNA bases.
const (
	Adenine  Base = 'A'
	Uracil   Base = 'U'
	Guanine  Base = 'G'
	Cytosine Base = 'C'
)

// Bases lists the RNA alphabet in canonical order.
var Bases = []Base{Adenine, Uracil, Guanine, Cytosine}

// Valid reports whether b is one of A, U, G, C.
func (b Base) Valid() bool {
	switch b {
	case Adenine, Uracil, Guanine, Cytosine:
		return true
	}
	return false
}

// String returns the single-letter form of the base.
func (b Base) String() string { return string(rune(b)) }

// Nucleotide is one sequence position. The index is its identity; the label
// (base followed by index, e.g. "G2") is unique within a structure.
type Nucleotide struct {
	Index int
	Base  Base
}

// Label returns the display label, e.g. "A0".
func (n Nucleotide) Label() string {
	return n.Base.String() + strconv.Itoa(n.Index)
}

// BondKind distinguishes generated backbone bonds from supplied pairings.
type BondKind int

const (
	// Backbone connects sequence-adjacent nucleotides i and i+1.
	Backbone BondKind = iota
	// Pairing connects two externally specified nucleotides.
	Pairing
)

// String returns the lowercase kind name used in configuration and output.
func (k BondKind) String() string {
	switch k {
	case Backbone:
		return "backbone"
	case Pairing:
		return "pairing"
	default:
		return fmt.Sprintf("BondKind(%d)", int(k))
	}
}

// MarshalText encodes the kind by name.
func (k BondKind) MarshalText() ([]byte, error) {
	if k != Backbone && k != Pairing {
		return nil, fmt.Errorf("invalid bond kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name produced by MarshalText.
func (k *BondKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "backbone":
		*k = Backbone
	case "pairing":
		*k = Pairing
	default:
		return fmt.Errorf("invalid bond kind %q", text)
	}
	return nil
}

// Bond is an undirected edge between two nucleotide indices. For pairing
// bonds, I and J keep the order in which they were supplied.
type Bond struct {
	I, J int
	Kind BondKind
}

// Touches reports whether the bond has index as one of its endpoints.
func (b Bond) Touches(index int) bool { return b.I == index || b.J == index }

// Same reports whether two bonds connect the same endpoints, ignoring order.
func (b Bond) Same(o Bond) bool {
	return b.Kind == o.Kind &&
		((b.I == o.I && b.J == o.J) || (b.I == o.J && b.J == o.I))
}

// Structure is the immutable nucleotide graph of an RNA secondary structure.
// Nodes are addressed by sequence index; neighbors are kept as an adjacency
// list so layout code never needs label lookups.
//
// A Structure is safe for concurrent reads once constructed.
type Structure struct {
	seq       string
	nodes     []Nucleotide
	backbone  []Bond
	pairings  []Bond
	adjacency [][]int
}

// New builds a structure from a sequence over {A,U,G,C} and a flat list of
// pairing indices consumed two at a time. Duplicate pairings are kept so the
// output mirrors the input.
//
// Errors are checked in order: alphabet, pairing length, index range,
// self-pairing. No partial structure is returned on failure.
func New(seq string, pairs []int) (*Structure, error) {
	if seq == "" {
		return nil, rnaerrors.Wrap(rnaerrors.ErrCodeInvalidAlphabet, ErrInvalidAlphabet, "sequence is empty")
	}
	for i := 0; i < len(seq); i++ {
		if !Base(seq[i]).Valid() {
			return nil, rnaerrors.Wrap(rnaerrors.ErrCodeInvalidAlphabet, ErrInvalidAlphabet,
				"character %q at position %d is not one of A, U, G, C", seq[i], i)
		}
	}
	if len(pairs)%2 != 0 {
		return nil, rnaerrors.Wrap(rnaerrors.ErrCodeMalformedPairing, ErrMalformedPairing,
			"pairing list has odd length %d", len(pairs))
	}
	n := len(seq)
	for k, idx := range pairs {
		if idx < 0 || idx >= n {
			return nil, rnaerrors.Wrap(rnaerrors.ErrCodeIndexOutOfRange, ErrIndexOutOfRange,
				"pairing entry %d is %d, want [0, %d)", k, idx, n)
		}
	}
	for k := 0; k < len(pairs); k += 2 {
		if pairs[k] == pairs[k+1] {
			return nil, rnaerrors.Wrap(rnaerrors.ErrCodeSelfPairing, ErrSelfPairing,
				"pairing bond %d pairs index %d with itself", k/2, pairs[k])
		}
	}

	s := &Structure{
		seq:       seq,
		nodes:     make([]Nucleotide, n),
		backbone:  make([]Bond, 0, n-1),
		pairings:  make([]Bond, 0, len(pairs)/2),
		adjacency: make([][]int, n),
	}
	for i := range n {
		s.nodes[i] = Nucleotide{Index: i, Base: Base(seq[i])}
	}
	for i := 0; i+1 < n; i++ {
		s.addBond(Bond{I: i, J: i + 1, Kind: Backbone})
	}
	for k := 0; k < len(pairs); k += 2 {
		s.addBond(Bond{I: pairs[k], J: pairs[k+1], Kind: Pairing})
	}
	return s, nil
}

func (s *Structure) addBond(b Bond) {
	if b.Kind == Backbone {
		s.backbone = append(s.backbone, b)
	} else {
		s.pairings = append(s.pairings, b)
	}
	s.adjacency[b.I] = append(s.adjacency[b.I], b.J)
	s.adjacency[b.J] = append(s.adjacency[b.J], b.I)
}

// Sequence returns the sequence the structure was built from.
func (s *Structure) Sequence() string { return s.seq }

// Len returns the number of nucleotides.
func (s *Structure) Len() int { return len(s.nodes) }

// Nucleotide returns the nucleotide at index i. It panics if i is out of range.
func (s *Structure) Nucleotide(i int) Nucleotide { return s.nodes[i] }

// Nucleotides returns a copy of all nucleotides in index order.
func (s *Structure) Nucleotides() []Nucleotide {
	out := make([]Nucleotide, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// Backbone returns a copy of the backbone bonds in index order.
func (s *Structure) Backbone() []Bond {
	out := make([]Bond, len(s.backbone))
	copy(out, s.backbone)
	return out
}

// Pairings returns a copy of the pairing bonds in input order.
func (s *Structure) Pairings() []Bond {
	out := make([]Bond, len(s.pairings))
	copy(out, s.pairings)
	return out
}

// Bonds returns all bonds: backbone first, then pairings.
func (s *Structure) Bonds() []Bond {
	out := make([]Bond, 0, len(s.backbone)+len(s.pairings))
	out = append(out, s.backbone...)
	return append(out, s.pairings...)
}

// EdgeCount returns the total number of bonds.
func (s *Structure) EdgeCount() int { return len(s.backbone) + len(s.pairings) }

// Neighbors returns the indices bonded to i, one entry per bond. Duplicate
// pairings appear more than once. The returned slice must not be modified.
func (s *Structure) Neighbors(i int) []int { return s.adjacency[i] }
