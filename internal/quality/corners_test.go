package quality

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
)

// cardOnBackground draws a bright card with a dark border of the given width.
func cardOnBackground(width, height, border int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.RGBA{20, 20, 20, 255}}, image.Point{}, draw.Src)
	card := image.Rect(border, border, width-border, height-border)
	draw.Draw(img, card, &image.Uniform{color.RGBA{220, 220, 220, 255}}, image.Point{}, draw.Src)
	return img
}

func TestContrastCorners(t *testing.T) {
	detector := DefaultContrastCorners()

	tests := []struct {
		name    string
		img     image.Image
		missing bool
	}{
		{"card inside frame", cardOnBackground(200, 120, 30), false},
		{"card fills frame", createTestImage(200, 120, color.RGBA{220, 220, 220, 255}), true},
		{"too small to judge", createTestImage(30, 30, color.RGBA{220, 220, 220, 255}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detector.MissingCorners(tt.img); got != tt.missing {
				t.Errorf("Expected missing=%v, got %v", tt.missing, got)
			}
		})
	}
}

func TestContrastCorners_InGate(t *testing.T) {
	gate := NewGate(DefaultOptions(), DefaultContrastCorners())
	report := gate.Inspect(createTestImage(200, 120, color.RGBA{128, 128, 128, 255}))
	if !report.HasMissingCorners {
		t.Errorf("Expected a uniform capture to report missing corners")
	}
}
