package quality

import "image"

// ContrastCorners reports missing corners when the corner patches of a capture look like
// its centre, which is what a card running past the frame edges produces. A card shot
// against a background shows at least MinCorners patches that differ from the centre.
type ContrastCorners struct {
	Margin     int     // inset of each patch from the image corner
	Patch      int     // patch side in pixels
	MinDelta   float64 // mean luminance gap that marks a patch as background
	MinCorners int
}

func DefaultContrastCorners() ContrastCorners {
	return ContrastCorners{Margin: 10, Patch: 8, MinDelta: 30, MinCorners: 2}
}

func (c ContrastCorners) MissingCorners(img image.Image) bool {
	b := img.Bounds()
	inset := c.Margin + c.Patch
	if b.Dx() < 2*inset+c.Patch || b.Dy() < 2*inset+c.Patch {
		// too small to judge
		return false
	}

	cx, cy := b.Min.X+(b.Dx()-c.Patch)/2, b.Min.Y+(b.Dy()-c.Patch)/2
	center := patchMean(img, cx, cy, c.Patch)
	corners := []image.Point{
		{b.Min.X + c.Margin, b.Min.Y + c.Margin},
		{b.Max.X - inset, b.Min.Y + c.Margin},
		{b.Min.X + c.Margin, b.Max.Y - inset},
		{b.Max.X - inset, b.Max.Y - inset},
	}

	differing := 0
	for _, p := range corners {
		if d := patchMean(img, p.X, p.Y, c.Patch) - center; d > c.MinDelta || d < -c.MinDelta {
			differing++
		}
	}
	return differing < c.MinCorners
}

func patchMean(img image.Image, x0, y0, size int) float64 {
	var sum float64
	for y := y0; y < y0+size; y++ {
		for x := x0; x < x0+size; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			sum += Luminance(uint8(r>>8), uint8(g>>8), uint8(b>>8))
		}
	}
	return sum / float64(size*size)
}
