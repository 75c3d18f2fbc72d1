package enhance

import "image"

// Mode selects one of the two enhancement paths.
type Mode string

const (
	ModeFull        Mode = "full"
	ModeLightweight Mode = "lightweight"
)

// Lightweight upscaling is kept within this range.
const (
	MinLightweightScale = 3.0
	MaxLightweightScale = 6.0
)

// Defaults for the optional contrast stretch stage.
const (
	DefaultContrastFactor = 1.5
	DefaultContrastPivot  = 128.0
)

// Options configures an enhancement run.
type Options struct {
	Mode  Mode
	Scale float64

	// Full pipeline only
	ClipLimit      float64
	TileSize       int
	ContrastFactor float64 // 0 skips the stretch stage
	Brightness     float64 // 0 or 1 skips the multiply stage

	// Region limits enhancement to a selection rectangle. The zero value keeps the whole image.
	Region image.Rectangle
}

// DefaultOptions returns the full pipeline settings.
func DefaultOptions() Options {
	return Options{
		Mode:      ModeFull,
		Scale:     2,
		ClipLimit: 2,
		TileSize:  DefaultTileSize,
	}
}

// LightweightOptions returns the fast grayscale-and-upscale settings.
func LightweightOptions() Options {
	return Options{
		Mode:  ModeLightweight,
		Scale: MinLightweightScale,
	}
}

// DigitOptions tunes the full pipeline for the number-only flow, where the digit line is
// small and benefits from extra contrast.
func DigitOptions() Options {
	opts := DefaultOptions()
	opts.Scale = 3
	opts.ContrastFactor = DefaultContrastFactor
	return opts
}

// WithRegion limits enhancement to r.
func (opts Options) WithRegion(r image.Rectangle) Options {
	opts.Region = r
	return opts
}

// WithScale overrides the upscale factor.
func (opts Options) WithScale(scale float64) Options {
	opts.Scale = scale
	return opts
}

// WithBrightness enables the final brightness multiply.
func (opts Options) WithBrightness(multiplier float64) Options {
	opts.Brightness = multiplier
	return opts
}

// WithContrast enables the contrast stretch stage.
func (opts Options) WithContrast(factor float64) Options {
	opts.ContrastFactor = factor
	return opts
}

// WithCLAHE overrides the equalization parameters.
func (opts Options) WithCLAHE(clipLimit float64, tileSize int) Options {
	opts.ClipLimit = clipLimit
	opts.TileSize = tileSize
	return opts
}
