package quality

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/anime-shed/cccd-inspector-go/pkg/models"
)

func createTestImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func createCheckerboard(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x+y)%2 == 0 {
				img.Set(x, y, color.RGBA{255, 255, 255, 255})
			} else {
				img.Set(x, y, color.RGBA{0, 0, 0, 255})
			}
		}
	}
	return img
}

type stubCorners bool

func (s stubCorners) MissingCorners(image.Image) bool { return bool(s) }

func TestLuminance(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    float64
	}{
		{"black", 0, 0, 0, 0},
		{"white", 255, 255, 255, 255},
		{"red", 255, 0, 0, 76.245},
		{"green", 0, 255, 0, 149.685},
		{"blue", 0, 0, 255, 29.07},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Luminance(tt.r, tt.g, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Expected %f, got %f", tt.want, got)
			}
		})
	}
}

func TestLaplacianEnergy_CenterSpike(t *testing.T) {
	plane := []float64{
		0, 0, 0,
		0, 255, 0,
		0, 0, 0,
	}
	got := LaplacianEnergy(plane, 3, 3)
	if math.Abs(got-1040400) > 1e-6 {
		t.Errorf("Expected 1040400, got %f", got)
	}
}

func TestLaplacianEnergy_TooSmall(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
	}{
		{"single pixel", 1, 1},
		{"two columns", 2, 10},
		{"two rows", 10, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plane := make([]float64, tt.width*tt.height)
			if got := LaplacianEnergy(plane, tt.width, tt.height); got != 0 {
				t.Errorf("Expected 0, got %f", got)
			}
		})
	}
}

func TestLaplacianEnergy_FlatFractionalPlane(t *testing.T) {
	tests := []float64{0.1, 90, Luminance(128, 128, 128), Luminance(37, 201, 90)}
	for _, v := range tests {
		plane := make([]float64, 25)
		for i := range plane {
			plane[i] = v
		}
		if got := LaplacianEnergy(plane, 5, 5); got != 0 {
			t.Errorf("Expected 0 energy for flat plane of %v, got %g", v, got)
		}
	}
}

func TestLuminancePlane_ParallelMatchesPixels(t *testing.T) {
	img := createCheckerboard(400, 300)
	plane := LuminancePlane(img, nil)
	if len(plane) != 400*300 {
		t.Fatalf("Expected %d values, got %d", 400*300, len(plane))
	}
	for _, p := range []image.Point{{0, 0}, {1, 0}, {399, 299}, {200, 151}} {
		want := 0.0
		if (p.X+p.Y)%2 == 0 {
			want = 255
		}
		if got := plane[p.Y*400+p.X]; math.Abs(got-want) > 1e-9 {
			t.Errorf("Pixel %v: expected %f, got %f", p, want, got)
		}
	}
}

func TestInspect_Brightness(t *testing.T) {
	gate := NewGate(DefaultOptions(), nil)
	tests := []struct {
		name  string
		value uint8
		want  models.Brightness
	}{
		{"dark", 20, models.BrightnessTooDark},
		{"mid gray", 128, models.BrightnessGood},
		{"bright", 240, models.BrightnessTooBright},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := createTestImage(50, 50, color.RGBA{tt.value, tt.value, tt.value, 255})
			report := gate.Inspect(img)
			if report.Brightness != tt.want {
				t.Errorf("Expected brightness %s, got %s", tt.want, report.Brightness)
			}
			if math.Abs(report.AvgBrightness-float64(tt.value)) > 1e-6 {
				t.Errorf("Expected average %d, got %f", tt.value, report.AvgBrightness)
			}
		})
	}
}

func TestInspect_FlatImageIsBlurry(t *testing.T) {
	gate := NewGate(DefaultOptions(), nil)
	report := gate.Inspect(createTestImage(100, 100, color.RGBA{128, 128, 128, 255}))

	if report.BlurVariance != 0 {
		t.Errorf("Expected blur variance 0, got %f", report.BlurVariance)
	}
	if !report.IsBlurry {
		t.Error("Expected flat image to be blurry")
	}
	if report.BlurLevel != models.BlurLevelBlurry {
		t.Errorf("Expected blur level blurry, got %s", report.BlurLevel)
	}
	if report.Contrast != 0 {
		t.Errorf("Expected contrast 0, got %f", report.Contrast)
	}
	if report.Passed {
		t.Error("Expected blurry image to fail the gate")
	}
}

func TestInspect_SharpCapturePasses(t *testing.T) {
	gate := NewGate(DefaultOptions(), nil)
	report := gate.Inspect(createCheckerboard(700, 420))

	if report.IsBlurry {
		t.Errorf("Expected checkerboard to be sharp, got variance %f", report.BlurVariance)
	}
	if report.BlurLevel != models.BlurLevelSharp {
		t.Errorf("Expected blur level sharp, got %s", report.BlurLevel)
	}
	if report.Brightness != models.BrightnessGood {
		t.Errorf("Expected brightness good, got %s", report.Brightness)
	}
	if report.IsLowResolution {
		t.Error("Expected 700x420 to meet the resolution floor")
	}
	if !report.Passed {
		t.Errorf("Expected capture to pass, issues: %v", report.Issues)
	}
	if report.ReadinessScore != 100 {
		t.Errorf("Expected readiness 100, got %f", report.ReadinessScore)
	}
}

func TestInspect_BlurLevels(t *testing.T) {
	opts := DefaultOptions()
	opts.BlurThreshold = 1
	opts.SharpThreshold = 2e6
	gate := NewGate(opts, nil)

	report := gate.Inspect(createCheckerboard(10, 10))
	if report.BlurLevel != models.BlurLevelAcceptable {
		t.Errorf("Expected blur level acceptable, got %s", report.BlurLevel)
	}
}

func TestInspect_EmptyImage(t *testing.T) {
	gate := NewGate(DefaultOptions(), nil)
	report := gate.Inspect(image.NewRGBA(image.Rect(0, 0, 0, 0)))
	if report.Passed {
		t.Error("Expected empty image to fail")
	}
	if len(report.Issues) == 0 {
		t.Error("Expected an issue for empty image")
	}
}

func TestInspect_MissingCorners(t *testing.T) {
	gate := NewGate(DefaultOptions(), stubCorners(true))
	report := gate.Inspect(createCheckerboard(700, 420))
	if !report.HasMissingCorners {
		t.Error("Expected missing corners from detector")
	}
	if report.Passed {
		t.Error("Expected capture with missing corners to fail")
	}
	if report.ReadinessScore != 85 {
		t.Errorf("Expected readiness 85, got %f", report.ReadinessScore)
	}
}

func TestReadinessScore(t *testing.T) {
	tests := []struct {
		name   string
		report models.QualityReport
		want   float64
	}{
		{"clean", models.QualityReport{Brightness: models.BrightnessGood}, 100},
		{"blurry", models.QualityReport{IsBlurry: true, Brightness: models.BrightnessGood}, 60},
		{"dark", models.QualityReport{Brightness: models.BrightnessTooDark}, 75},
		{"bright and low res", models.QualityReport{Brightness: models.BrightnessTooBright, IsLowResolution: true}, 45},
		{"everything wrong", models.QualityReport{
			IsBlurry:          true,
			Brightness:        models.BrightnessTooDark,
			HasMissingCorners: true,
			IsLowResolution:   true,
		}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReadinessScore(tt.report); got != tt.want {
				t.Errorf("Expected %f, got %f", tt.want, got)
			}
		})
	}
}
