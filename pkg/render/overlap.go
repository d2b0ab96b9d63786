package render

import (
	"cmp"
	"math"
	"slices"

	"github.com/tidwall/rtree"
)

// Overlap is a pair of markers whose discs intersect.
type Overlap struct {
	I, J int
}

// Overlaps returns every pair of markers whose discs intersect, ordered by
// (I, J) with I < J. Candidates come from an R-tree over the marker
// bounding squares and are confirmed by center distance.
func (s *Scene) Overlaps() []Overlap {
	var tr rtree.RTreeG[int]
	for k, m := range s.Markers {
		lo, hi := square(m)
		tr.Insert(lo, hi, k)
	}

	var out []Overlap
	for k, m := range s.Markers {
		lo, hi := square(m)
		tr.Search(lo, hi, func(_, _ [2]float64, other int) bool {
			if other <= k {
				return true
			}
			o := s.Markers[other]
			if math.Hypot(m.X-o.X, m.Y-o.Y) < m.Radius+o.Radius {
				out = append(out, Overlap{I: k, J: other})
			}
			return true
		})
	}
	slices.SortFunc(out, func(a, b Overlap) int {
		return cmp.Or(cmp.Compare(a.I, b.I), cmp.Compare(a.J, b.J))
	})
	return out
}

func square(m Marker) (lo, hi [2]float64) {
	return [2]float64{m.X - m.Radius, m.Y - m.Radius}, [2]float64{m.X + m.Radius, m.Y + m.Radius}
}
