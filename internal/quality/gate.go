package quality

import (
	"image"
	"math"
	"sync"

	"github.com/anime-shed/cccd-inspector-go/pkg/models"
	"gonum.org/v1/gonum/stat"
)

// Gate scores a raw capture before any enhancement.
type Gate interface {
	Inspect(img image.Image) models.QualityReport
}

// CornerDetector reports whether any document corner is cut off.
type CornerDetector interface {
	MissingCorners(img image.Image) bool
}

// Options holds the gate thresholds.
type Options struct {
	BlurThreshold  float64 // below: blurry
	SharpThreshold float64 // above: sharp

	DarkPixel     float64 // luminance below which a pixel counts as dark
	BrightPixel   float64 // luminance above which a pixel counts as bright
	DarkAverage   float64
	BrightAverage float64
	ClippedRatio  float64 // dark or bright pixel fraction that fails the capture

	MinWidth  int
	MinHeight int
}

// DefaultOptions returns the thresholds used for card captures.
func DefaultOptions() Options {
	return Options{
		BlurThreshold:  100,
		SharpThreshold: 200,
		DarkPixel:      50,
		BrightPixel:    200,
		DarkAverage:    60,
		BrightAverage:  200,
		ClippedRatio:   0.5,
		MinWidth:       640,
		MinHeight:      400,
	}
}

type gate struct {
	opts    Options
	corners CornerDetector
	planes  sync.Pool
}

// NewGate creates a gate. A nil detector never reports missing corners; pass
// ContrastCorners to enable the check.
func NewGate(opts Options, corners CornerDetector) Gate {
	if corners == nil {
		corners = noCornerCheck{}
	}
	return &gate{
		opts:    opts,
		corners: corners,
		planes: sync.Pool{
			New: func() interface{} {
				return make([]float64, 0, 1024)
			},
		},
	}
}

func (g *gate) Inspect(img image.Image) models.QualityReport {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	report := models.QualityReport{Width: w, Height: h}
	if w == 0 || h == 0 {
		report.IsBlurry = true
		report.BlurLevel = models.BlurLevelBlurry
		report.Brightness = models.BrightnessTooDark
		report.Issues = []string{"empty image"}
		return report
	}

	plane := g.planes.Get().([]float64)
	plane = LuminancePlane(img, plane)
	defer g.planes.Put(plane[:0])

	report.BlurVariance = LaplacianEnergy(plane, w, h)
	report.IsBlurry = report.BlurVariance < g.opts.BlurThreshold
	switch {
	case report.BlurVariance > g.opts.SharpThreshold:
		report.BlurLevel = models.BlurLevelSharp
	case report.IsBlurry:
		report.BlurLevel = models.BlurLevelBlurry
	default:
		report.BlurLevel = models.BlurLevelAcceptable
	}

	g.classifyBrightness(plane, &report)
	report.HasMissingCorners = g.corners.MissingCorners(img)
	report.IsLowResolution = w < g.opts.MinWidth || h < g.opts.MinHeight
	report.ReadinessScore = ReadinessScore(report)

	if report.IsBlurry {
		report.Issues = append(report.Issues, "image is blurry, please recapture")
	}
	switch report.Brightness {
	case models.BrightnessTooDark:
		report.Issues = append(report.Issues, "image is too dark, increase lighting")
	case models.BrightnessTooBright:
		report.Issues = append(report.Issues, "image is overexposed, reduce lighting")
	}
	if report.HasMissingCorners {
		report.Issues = append(report.Issues, "document corners are not visible")
	}
	report.Passed = !report.IsBlurry && report.Brightness == models.BrightnessGood && !report.HasMissingCorners
	return report
}

func (g *gate) classifyBrightness(plane []float64, report *models.QualityReport) {
	var dark, bright int
	for _, v := range plane {
		if v < g.opts.DarkPixel {
			dark++
		}
		if v > g.opts.BrightPixel {
			bright++
		}
	}
	n := float64(len(plane))
	report.AvgBrightness = stat.Mean(plane, nil)
	report.Contrast = stat.StdDev(plane, nil)
	if math.IsNaN(report.Contrast) {
		report.Contrast = 0
	}
	report.DarkRatio = float64(dark) / n
	report.BrightRatio = float64(bright) / n

	switch {
	case report.AvgBrightness < g.opts.DarkAverage || report.DarkRatio > g.opts.ClippedRatio:
		report.Brightness = models.BrightnessTooDark
	case report.AvgBrightness > g.opts.BrightAverage || report.BrightRatio > g.opts.ClippedRatio:
		report.Brightness = models.BrightnessTooBright
	default:
		report.Brightness = models.BrightnessGood
	}
}

// ReadinessScore condenses a report into 0-100 for clients that want a single number.
func ReadinessScore(r models.QualityReport) float64 {
	score := 100.0
	if r.IsBlurry {
		score -= 40
	}
	if r.Brightness == models.BrightnessTooDark || r.Brightness == models.BrightnessTooBright {
		score -= 25
	}
	if r.HasMissingCorners {
		score -= 15
	}
	if r.IsLowResolution {
		score -= 30
	}
	return math.Max(0, score)
}

// noCornerCheck reports corners as always present.
type noCornerCheck struct{}

func (noCornerCheck) MissingCorners(image.Image) bool { return false }
