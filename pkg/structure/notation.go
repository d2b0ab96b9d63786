package structure

import (
	"fmt"
	"strconv"
	"strings"

	rnaerrors "github.com/matzehuels/rnaviz/pkg/errors"
)

// ParsePairs parses a comma-separated list of pairing indices such as
// "0,3,1,2". Whitespace around entries is ignored and an empty string yields
// no pairs. The parity of the list is not checked here; [New] reports it.
func ParsePairs(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	fields := strings.Split(s, ",")
	out := make([]int, 0, len(fields))
	for i, f := range fields {
		f = strings.TrimSpace(f)
		v, err := strconv.Atoi(f)
		if err != nil || v < 0 {
			return nil, rnaerrors.Wrap(rnaerrors.ErrCodeMalformedPairing, ErrMalformedPairing,
				"entry %d (%q) is not a non-negative integer", i, f)
		}
		out = append(out, v)
	}
	return out, nil
}

// FormatPairs is the inverse of [ParsePairs] for the pairings of s.
func (s *Structure) FormatPairs() string {
	parts := make([]string, 0, 2*len(s.pairings))
	for _, b := range s.pairings {
		parts = append(parts, strconv.Itoa(b.I), strconv.Itoa(b.J))
	}
	return strings.Join(parts, ",")
}

// DotBracket returns the one-dimensional view of the structure: '.' for
// unpaired nucleotides, '(' for the lower and ')' for the higher index of
// each pairing. When pairings share an index, later pairings overwrite the
// marks of earlier ones.
func (s *Structure) DotBracket() string {
	out := []byte(strings.Repeat(".", len(s.nodes)))
	for _, b := range s.pairings {
		lo, hi := min(b.I, b.J), max(b.I, b.J)
		out[lo] = '('
		out[hi] = ')'
	}
	return string(out)
}

// PairSummary describes each pairing bond as "{X,Y}" using the bases at its
// endpoints, in input order.
func (s *Structure) PairSummary() []string {
	out := make([]string, len(s.pairings))
	for i, b := range s.pairings {
		out[i] = fmt.Sprintf("{%s,%s}", s.nodes[b.I].Base, s.nodes[b.J].Base)
	}
	return out
}

// Normalize uppercases a user-supplied sequence and strips surrounding
// whitespace. It performs no alphabet checks.
func Normalize(seq string) string {
	return strings.ToUpper(strings.TrimSpace(seq))
}
