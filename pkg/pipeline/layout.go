package pipeline

import (
	"context"
	"encoding/json"

	"github.com/matzehuels/rnaviz/pkg/layout"
	"github.com/matzehuels/rnaviz/pkg/structure"
)

// GenerateLayout computes the layout of s. Like [layout.ComputeContext] it
// returns the layout together with a warning for disconnected graphs.
func GenerateLayout(ctx context.Context, s *structure.Structure, opts Options) (*layout.Layout, error) {
	return layout.ComputeContext(ctx, s, opts.LayoutOptions())
}

// MarshalLayout serializes a layout for caching.
func MarshalLayout(l *layout.Layout) ([]byte, error) {
	return json.Marshal(l)
}

// UnmarshalLayout restores a layout written by [MarshalLayout].
func UnmarshalLayout(data []byte) (*layout.Layout, error) {
	var l layout.Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, err
	}
	return &l, nil
}
