package structure

import (
	"errors"
	"slices"
	"testing"
)

func TestParsePairs(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []int
		wantErr bool
	}{
		{"empty", "", nil, false},
		{"blank", "  ", nil, false},
		{"one pair", "0,3", []int{0, 3}, false},
		{"spaces", " 0, 8 ,1,7 ", []int{0, 8, 1, 7}, false},
		{"odd count parses", "0", []int{0}, false},
		{"negative", "0,-1", nil, true},
		{"not a number", "0,x", nil, true},
		{"trailing comma", "0,3,", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePairs(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePairs(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrMalformedPairing) {
					t.Errorf("ParsePairs(%q) error = %v, want ErrMalformedPairing", tt.input, err)
				}
				return
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("ParsePairs(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatPairsRoundTrip(t *testing.T) {
	s, err := New("GGGAAAUCC", []int{0, 8, 7, 1})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if got := s.FormatPairs(); got != "0,8,7,1" {
		t.Errorf("FormatPairs() = %q, want %q", got, "0,8,7,1")
	}
	pairs, err := ParsePairs(s.FormatPairs())
	if err != nil {
		t.Fatalf("ParsePairs() error: %v", err)
	}
	if !slices.Equal(pairs, []int{0, 8, 7, 1}) {
		t.Errorf("round trip = %v", pairs)
	}
}

func TestDotBracket(t *testing.T) {
	tests := []struct {
		seq   string
		pairs []int
		want  string
	}{
		{"AUGC", nil, "...."},
		{"AUGC", []int{0, 3}, "(..)"},
		{"AUGC", []int{3, 0}, "(..)"},
		{"GGGAAAUCC", []int{0, 8, 1, 7}, "((.....))"},
		{"GGGAAAUCC", []int{0, 8, 8, 2}, "(.(.....)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			s, err := New(tt.seq, tt.pairs)
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}
			if got := s.DotBracket(); got != tt.want {
				t.Errorf("DotBracket() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPairSummary(t *testing.T) {
	s, err := New("GGGAAAUCC", []int{0, 8, 6, 3})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	want := []string{"{G,C}", "{U,A}"}
	if got := s.PairSummary(); !slices.Equal(got, want) {
		t.Errorf("PairSummary() = %v, want %v", got, want)
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  augc\n"); got != "AUGC" {
		t.Errorf("Normalize() = %q, want %q", got, "AUGC")
	}
}
