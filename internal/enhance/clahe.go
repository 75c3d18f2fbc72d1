package enhance

import (
	"image"
	"math"
)

// DefaultTileSize is the edge length of a CLAHE tile in pixels.
const DefaultTileSize = 8

// CLAHE equalizes the gray channel tile by tile and blends neighbouring tile mappings
// bilinearly. clipLimit is relative to a uniform histogram; a value <= 0 disables clipping.
func CLAHE(img image.Image, clipLimit float64, tileSize int) *image.NRGBA {
	src := opaque(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	if w == 0 || h == 0 {
		return src
	}
	if tileSize <= 0 {
		tileSize = DefaultTileSize
	}

	tilesX := (w + tileSize - 1) / tileSize
	tilesY := (h + tileSize - 1) / tileSize
	luts := make([][256]uint8, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			r := image.Rect(tx*tileSize, ty*tileSize, (tx+1)*tileSize, (ty+1)*tileSize).Intersect(src.Rect)
			luts[ty*tilesX+tx] = tileMapping(src, r, clipLimit)
		}
	}

	dst := image.NewNRGBA(src.Rect)
	for y := 0; y < h; y++ {
		ty0, ty1, ay := neighbours(y, tileSize, tilesY)
		for x := 0; x < w; x++ {
			tx0, tx1, ax := neighbours(x, tileSize, tilesX)
			o := src.PixOffset(x, y)
			v := src.Pix[o]

			top := (1-ax)*float64(luts[ty0*tilesX+tx0][v]) + ax*float64(luts[ty0*tilesX+tx1][v])
			bottom := (1-ax)*float64(luts[ty1*tilesX+tx0][v]) + ax*float64(luts[ty1*tilesX+tx1][v])
			g := clamp((1-ay)*top + ay*bottom)

			dst.Pix[o] = g
			dst.Pix[o+1] = g
			dst.Pix[o+2] = g
			dst.Pix[o+3] = 255
		}
	}
	return dst
}

// neighbours returns the two tile indices surrounding pixel p along one axis and the
// weight of the second.
func neighbours(p, tileSize, tiles int) (int, int, float64) {
	g := (float64(p)+0.5)/float64(tileSize) - 0.5
	if g <= 0 {
		return 0, 0, 0
	}
	i0 := int(math.Floor(g))
	if i0 >= tiles-1 {
		return tiles - 1, tiles - 1, 0
	}
	return i0, i0 + 1, g - float64(i0)
}

func tileMapping(src *image.NRGBA, r image.Rectangle, clipLimit float64) [256]uint8 {
	var hist [256]int
	for y := r.Min.Y; y < r.Max.Y; y++ {
		o := src.PixOffset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x++ {
			hist[src.Pix[o]]++
			o += 4
		}
	}
	pixels := r.Dx() * r.Dy()
	if clipLimit > 0 {
		clipHistogram(&hist, clipLimit, pixels)
	}

	var cdf [256]int
	running := 0
	cdfMin := 0
	for i, n := range hist {
		running += n
		cdf[i] = running
		if cdfMin == 0 && running > 0 {
			cdfMin = running
		}
	}

	var lut [256]uint8
	denom := float64(running - cdfMin)
	for i := range lut {
		if denom <= 0 {
			lut[i] = uint8(i)
			continue
		}
		lut[i] = clamp(math.Round(float64(cdf[i]-cdfMin) / denom * 255))
	}
	return lut
}

// clipHistogram caps every bin at max(1, clipLimit*pixels/256) and spreads the excess
// evenly across all bins.
func clipHistogram(hist *[256]int, clipLimit float64, pixels int) {
	limit := int(clipLimit * float64(pixels) / 256)
	if limit < 1 {
		limit = 1
	}
	excess := 0
	for i, n := range hist {
		if n > limit {
			excess += n - limit
			hist[i] = limit
		}
	}
	if excess == 0 {
		return
	}
	per := excess / 256
	rem := excess % 256
	for i := range hist {
		hist[i] += per
		if i < rem {
			hist[i]++
		}
	}
}
