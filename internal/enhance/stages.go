package enhance

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// Luminance weights shared with the quality gate.
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

func clamp(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v + 0.5)
}

func gray(v uint8) color.NRGBA {
	return color.NRGBA{R: v, G: v, B: v, A: 255}
}

// Grayscale converts img to luminance, rounded to the nearest level, at full opacity.
func Grayscale(img image.Image) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return gray(clamp(lumaR*float64(c.R) + lumaG*float64(c.G) + lumaB*float64(c.B)))
	})
}

// Upscale resizes img by factor with Lanczos resampling. Factors at or below 1 return a copy.
func Upscale(img image.Image, factor float64) *image.NRGBA {
	b := img.Bounds()
	if factor <= 1 || b.Empty() {
		return imaging.Clone(img)
	}
	w := int(math.Round(float64(b.Dx()) * factor))
	h := int(math.Round(float64(b.Dy()) * factor))
	return imaging.Resize(img, w, h, imaging.Lanczos)
}

// Crop cuts region out of img. The region is clipped to the image bounds and an empty
// result falls back to the whole image.
func Crop(img image.Image, region image.Rectangle) *image.NRGBA {
	r := region.Intersect(img.Bounds())
	if r.Empty() {
		return imaging.Clone(img)
	}
	return imaging.Crop(img, r)
}

// TextRegion returns the centre crop where the front-side text block sits:
// 10%..80% horizontally and 20%..90% vertically.
func TextRegion(img image.Image) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	r := image.Rect(
		b.Min.X+w*10/100, b.Min.Y+h*20/100,
		b.Min.X+w*80/100, b.Min.Y+h*90/100,
	)
	return Crop(img, r)
}

// ContrastStretch scales every channel away from pivot by factor.
func ContrastStretch(img image.Image, factor, pivot float64) *image.NRGBA {
	stretch := func(v uint8) uint8 {
		return clamp((float64(v)-pivot)*factor + pivot)
	}
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{R: stretch(c.R), G: stretch(c.G), B: stretch(c.B), A: 255}
	})
}

// AdjustBrightness multiplies every channel by multiplier.
func AdjustBrightness(img image.Image, multiplier float64) *image.NRGBA {
	scale := func(v uint8) uint8 {
		return clamp(float64(v) * multiplier)
	}
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: 255}
	})
}

// Median3x3 replaces each interior pixel by the median of its 3x3 neighbourhood, per channel.
// Border pixels are copied unchanged.
func Median3x3(img image.Image) *image.NRGBA {
	src := opaque(img)
	dst := imaging.Clone(src)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	if w < 3 || h < 3 {
		return dst
	}

	var window [9]uint8
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			o := dst.PixOffset(x, y)
			for ch := 0; ch < 3; ch++ {
				n := 0
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						window[n] = src.Pix[src.PixOffset(x+dx, y+dy)+ch]
						n++
					}
				}
				dst.Pix[o+ch] = median9(&window)
			}
		}
	}
	return dst
}

func median9(w *[9]uint8) uint8 {
	for i := 1; i < len(w); i++ {
		for j := i; j > 0 && w[j] < w[j-1]; j-- {
			w[j], w[j-1] = w[j-1], w[j]
		}
	}
	return w[4]
}

// Sharpen applies the kernel [0,-1,0;-1,5,-1;0,-1,0] to interior pixels. Border pixels are
// copied unchanged.
func Sharpen(img image.Image) *image.NRGBA {
	src := opaque(img)
	dst := imaging.Clone(src)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	if w < 3 || h < 3 {
		return dst
	}

	stride := src.Stride
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			o := src.PixOffset(x, y)
			for ch := 0; ch < 3; ch++ {
				c := float64(src.Pix[o+ch])
				top := float64(src.Pix[o-stride+ch])
				bottom := float64(src.Pix[o+stride+ch])
				left := float64(src.Pix[o-4+ch])
				right := float64(src.Pix[o+4+ch])
				dst.Pix[o+ch] = clamp(5*c - top - bottom - left - right)
			}
		}
	}
	return dst
}

// Histogram counts gray levels of the red channel, which carries luminance once the image
// is grayscale.
func Histogram(img *image.NRGBA) [256]int {
	var hist [256]int
	w, h := img.Rect.Dx(), img.Rect.Dy()
	for y := 0; y < h; y++ {
		row := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
		for x := 0; x < w; x++ {
			hist[img.Pix[row+x*4]]++
		}
	}
	return hist
}

// OtsuThreshold picks the gray level that maximises inter-class variance wB*wF*(mB-mF)^2.
// The first maximum wins.
func OtsuThreshold(hist [256]int) uint8 {
	total := 0
	sum := 0.0
	for i, n := range hist {
		total += n
		sum += float64(i * n)
	}
	if total == 0 {
		return 0
	}

	var (
		sumB      float64
		wB        int
		best      float64
		threshold int
	)
	for t := 0; t < 256; t++ {
		wB += hist[t]
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(t * hist[t])
		mB := sumB / float64(wB)
		mF := (sum - sumB) / float64(wF)
		between := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			threshold = t
		}
	}
	return uint8(threshold)
}

// Binarize maps gray levels above threshold to white and the rest to black.
func Binarize(img image.Image, threshold uint8) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		if c.R > threshold {
			return gray(255)
		}
		return gray(0)
	})
}

// opaque returns an NRGBA copy of img, with origin at 0,0 and alpha forced to 255.
func opaque(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 255
	}
	return dst
}
