package enhance

import (
	"image"
	"math"

	"github.com/disintegration/imaging"

	apperrors "github.com/anime-shed/cccd-inspector-go/internal/errors"
)

// Stage names recorded on a Result.
const (
	StageCrop       = "crop"
	StageUpscale    = "upscale"
	StageGrayscale  = "grayscale"
	StageContrast   = "contrast"
	StageCLAHE      = "clahe"
	StageMedian     = "median"
	StageSharpen    = "sharpen"
	StageOtsu       = "otsu"
	StageBrightness = "brightness"
)

// Result is an enhanced raster plus the ordered list of stages that produced it.
type Result struct {
	Image     *image.NRGBA
	Stages    []string
	Threshold uint8 // Otsu level, full pipeline only
}

// Enhancer runs one of the enhancement paths with fixed options.
type Enhancer interface {
	Enhance(img image.Image) (*Result, error)
	Options() Options
}

type enhancer struct {
	opts Options
}

// NewEnhancer creates an Enhancer. An unknown mode runs the full pipeline.
func NewEnhancer(opts Options) Enhancer {
	return &enhancer{opts: opts}
}

func (e *enhancer) Options() Options {
	return e.opts
}

func (e *enhancer) Enhance(img image.Image) (*Result, error) {
	if e.opts.Mode == ModeLightweight {
		return Lightweight(img, e.opts)
	}
	return Full(img, e.opts)
}

func checkInput(img image.Image) error {
	if img == nil {
		return apperrors.NewProcessingError("no image to enhance", nil)
	}
	if img.Bounds().Empty() {
		return apperrors.NewProcessingError("image has no pixels", nil)
	}
	return nil
}

// Lightweight upscales by a factor clamped to [3,6] and converts to grayscale.
func Lightweight(img image.Image, opts Options) (*Result, error) {
	if err := checkInput(img); err != nil {
		return nil, err
	}
	res := &Result{}
	out := cropStage(img, opts.Region, res)
	scale := math.Min(math.Max(opts.Scale, MinLightweightScale), MaxLightweightScale)
	out = Upscale(out, scale)
	res.Stages = append(res.Stages, StageUpscale)
	res.Image = Grayscale(out)
	res.Stages = append(res.Stages, StageGrayscale)
	return res, nil
}

// Full runs crop, upscale, grayscale, contrast, CLAHE, median, sharpen, Otsu and
// brightness in that order. Optional stages are skipped when not configured.
func Full(img image.Image, opts Options) (*Result, error) {
	if err := checkInput(img); err != nil {
		return nil, err
	}
	res := &Result{}
	out := cropStage(img, opts.Region, res)

	if opts.Scale > 1 {
		out = Upscale(out, opts.Scale)
		res.Stages = append(res.Stages, StageUpscale)
	}

	out = Grayscale(out)
	res.Stages = append(res.Stages, StageGrayscale)

	if opts.ContrastFactor > 0 {
		out = ContrastStretch(out, opts.ContrastFactor, DefaultContrastPivot)
		res.Stages = append(res.Stages, StageContrast)
	}

	out = CLAHE(out, opts.ClipLimit, opts.TileSize)
	res.Stages = append(res.Stages, StageCLAHE)

	out = Median3x3(out)
	res.Stages = append(res.Stages, StageMedian)

	out = Sharpen(out)
	res.Stages = append(res.Stages, StageSharpen)

	res.Threshold = OtsuThreshold(Histogram(out))
	out = Binarize(out, res.Threshold)
	res.Stages = append(res.Stages, StageOtsu)

	if opts.Brightness > 0 && opts.Brightness != 1 {
		out = AdjustBrightness(out, opts.Brightness)
		res.Stages = append(res.Stages, StageBrightness)
	}

	res.Image = out
	return res, nil
}

func cropStage(img image.Image, region image.Rectangle, res *Result) *image.NRGBA {
	if region.Empty() {
		return imaging.Clone(img)
	}
	res.Stages = append(res.Stages, StageCrop)
	return Crop(img, region)
}
