// Package config defines the immutable runtime settings for a viewer
// session: tile source, style, starting view, and rendering options.
package config

// LayerOverride customizes label placement for one source layer.
type LayerOverride struct {
	Margin  int  // collision margin in terminal cells; 0 means "use the default"
	Cluster bool // collapse colliding labels to a bare marker instead of dropping them
}

// Config holds every option enumerated for a viewer session. It is built
// once at startup and never mutated afterward — no package-level mutable
// global carries these values.
type Config struct {
	Language string
	Source   string
	// StyleFile is read and compiled once at startup into a *style.Styler;
	// Config itself only carries the path.
	StyleFile string

	InitialLat, InitialLon float64
	InitialZoom            float64
	MaxZoom                float64
	ZoomStep               float64

	UseBraille             bool
	PersistDownloadedTiles bool
	ProjectSize            int
	LabelMargin            int
	Layers                 map[string]LayerOverride

	Delimiter string
	PoiMarker rune
	Headless  bool

	CacheSize int
}

// Default provides the baseline configuration; callers override only the
// fields they care about.
var Default = Config{
	InitialZoom: 2,
	MaxZoom:     18,
	ZoomStep:    0.2,
	UseBraille:  true,
	ProjectSize: 256,
	LabelMargin: 4,
	Delimiter:   "\n\r",
	PoiMarker:   '◉',
	CacheSize:   64,
}

// New returns a copy of Default with overrides applied by the caller
// (the returned value has its own Layers map, safe to populate further).
func New() Config {
	c := Default
	c.Layers = make(map[string]LayerOverride)
	return c
}

// MarginFor returns the collision margin for sourceLayer: its override if
// one was configured and non-zero, otherwise c.LabelMargin.
func (c Config) MarginFor(sourceLayer string) int {
	if o, ok := c.Layers[sourceLayer]; ok && o.Margin != 0 {
		return o.Margin
	}
	return c.LabelMargin
}

// ClusterFor reports whether sourceLayer should collapse colliding labels
// to a bare marker rather than dropping them.
func (c Config) ClusterFor(sourceLayer string) bool {
	return c.Layers[sourceLayer].Cluster
}
