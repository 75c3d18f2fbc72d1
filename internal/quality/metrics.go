package quality

import (
	"image"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/stat"
)

// Luminance weights for 8-bit RGB.
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// Luminance returns the weighted gray value of a pixel on the 0-255 scale.
func Luminance(r, g, b uint8) float64 {
	return lumaR*float64(r) + lumaG*float64(g) + lumaB*float64(b)
}

// LuminancePlane converts img into a row-major luminance slice, reusing buf when it is
// large enough. Rows are converted in parallel horizontal strips.
func LuminancePlane(img image.Image, buf []float64) []float64 {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	n := width * height
	if cap(buf) < n {
		buf = make([]float64, n)
	}
	buf = buf[:n]
	if n == 0 {
		return buf
	}

	numWorkers := runtime.NumCPU()
	if height < numWorkers {
		numWorkers = height
	}
	if n < 100000 {
		numWorkers = 1
	}
	rowsPerWorker := (height + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		startRow := i * rowsPerWorker
		endRow := startRow + rowsPerWorker
		if endRow > height {
			endRow = height
		}
		if startRow >= endRow {
			break
		}
		wg.Add(1)
		go func(startRow, endRow int) {
			defer wg.Done()
			for row := startRow; row < endRow; row++ {
				y := bounds.Min.Y + row
				off := row * width
				for col := 0; col < width; col++ {
					r, g, b, _ := img.At(bounds.Min.X+col, y).RGBA()
					buf[off+col] = Luminance(uint8(r>>8), uint8(g>>8), uint8(b>>8))
				}
			}
		}(startRow, endRow)
	}
	wg.Wait()
	return buf
}

// LaplacianEnergy is the mean squared response of the 4-neighbour Laplacian over interior
// pixels. Images narrower or shorter than 3 pixels score 0.
func LaplacianEnergy(plane []float64, width, height int) float64 {
	responses := laplacian(plane, width, height)
	if len(responses) == 0 {
		return 0
	}
	for i, v := range responses {
		responses[i] = v * v
	}
	return stat.Mean(responses, nil)
}

func laplacian(plane []float64, width, height int) []float64 {
	if width < 3 || height < 3 || len(plane) < width*height {
		return nil
	}
	out := make([]float64, 0, (width-2)*(height-2))
	for y := 1; y < height-1; y++ {
		row := y * width
		for x := 1; x < width-1; x++ {
			c := plane[row+x]
			top := plane[row-width+x]
			bottom := plane[row+width+x]
			left := plane[row+x-1]
			right := plane[row+x+1]
			out = append(out, (c-top)+(c-bottom)+(c-left)+(c-right))
		}
	}
	return out
}
