package reflow

// Config holds the reflow tunables
type Config struct {
	// MinGap is the smallest unused span considered for closing (default: 30 pixels)
	MinGap float64

	// MinMove is the smallest upward shift worth applying; shorter moves are
	// visually negligible jitter (default: 50 pixels)
	MinMove float64

	// Spacing is the gap left above a block after it has been moved
	// (default: 10 pixels)
	Spacing float64

	// BoundaryInset is the distance from the top of a page at which a block
	// pushed off a page boundary is placed (default: 20 pixels)
	BoundaryInset float64

	// DeletionGap is the spacing above which the deletion pre-pass collapses
	// the space left by removed blocks (default: 20 pixels)
	DeletionGap float64

	// PreserveIntentionalSpacing keeps pinned blocks where they are
	// (default: true)
	PreserveIntentionalSpacing bool

	// MaxPasses bounds the fill/split iterations of one reflow. Zero derives a
	// bound from the number of blocks.
	MaxPasses int
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		MinGap:                     30,
		MinMove:                    50,
		Spacing:                    10,
		BoundaryInset:              20,
		DeletionGap:                20,
		PreserveIntentionalSpacing: true,
		MaxPasses:                  0,
	}
}

// maxPasses returns the iteration bound for n blocks
func (c Config) maxPasses(n int) int {
	if c.MaxPasses > 0 {
		return c.MaxPasses
	}
	return 4*n + 8
}
