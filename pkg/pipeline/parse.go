package pipeline

import (
	"encoding/json"

	"github.com/matzehuels/rnaviz/pkg/cache"
	"github.com/matzehuels/rnaviz/pkg/structure"
	"github.com/matzehuels/rnaviz/pkg/style"
)

// BuildStructure validates opts.Sequence and opts.Pairs into a structure.
func BuildStructure(opts Options) (*structure.Structure, error) {
	return structure.New(structure.Normalize(opts.Sequence), opts.Pairs)
}

// StructureHash identifies a structure by its sequence and pairing list.
func StructureHash(s *structure.Structure) string {
	return cache.Hash([]byte(s.Sequence() + "|" + s.FormatPairs()))
}

func policyHash(p *style.Policy) string {
	if p == nil {
		return ""
	}
	data, _ := json.Marshal(p)
	return cache.Hash(data)[:16]
}
