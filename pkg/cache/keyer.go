package cache

// Keyer derives cache keys for each pipeline stage.
type Keyer interface {
	// LayoutKey identifies a layout of the structure with the given hash.
	LayoutKey(structureHash string, opts LayoutKeyOpts) string
	// ArtifactKey identifies one rendered format of the layout with the given hash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the layout settings that change the computed positions.
// The worker count never changes the result and is not part of the key.
type LayoutKeyOpts struct {
	Mode          string  `json:"mode"`
	MaxIterations int     `json:"max_iterations"`
	Tolerance     float64 `json:"tolerance"`
	Seed          uint64  `json:"seed"`
}

// ArtifactKeyOpts are the render settings that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	Engine     string  `json:"engine,omitempty"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Margin     float64 `json:"margin"`
	NodeRadius float64 `json:"node_radius,omitempty"`
	Style      string  `json:"style,omitempty"`
	Background string  `json:"background,omitempty"`
	Title      string  `json:"title,omitempty"`
	Legend     bool    `json:"legend,omitempty"`
	Scale      float64 `json:"scale,omitempty"`
}

// DefaultKeyer hashes the inputs of each stage.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey returns "layout:<hash>".
func (DefaultKeyer) LayoutKey(structureHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", structureHash, opts)
}

// ArtifactKey returns "artifact:<format>:<hash>".
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact:"+opts.Format, layoutHash, opts)
}

var _ Keyer = DefaultKeyer{}
