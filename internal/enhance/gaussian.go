package enhance

import (
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// truncate is the kernel half-width in standard deviations.
const truncate = 4.0

// uniformSpan is the sigma, in multiples of the axis length, from which the
// folded kernel is taken as flat. At sigma = 4n the first harmonic of the
// periodized Gaussian is exp(-8π²) ≈ 5e-35, far below float64 resolution.
const uniformSpan = 4.0

// kernelRadius returns int(truncate*sigma + 0.5), or 0 when sigma is not
// positive. Callers bound sigma first so the conversion cannot overflow.
func kernelRadius(sigma float64) int {
	if !(sigma > 0) {
		return 0
	}
	return int(math.Floor(truncate*sigma + 0.5))
}

// gaussianKernel returns normalized weights for offsets -radius..radius.
func gaussianKernel(sigma float64, radius int) []float64 {
	kernel := make([]float64, 2*radius+1)
	twoSigmaSq := 2 * sigma * sigma
	var sum float64
	for i := range kernel {
		d := float64(i - radius)
		kernel[i] = math.Exp(-d * d / twoSigmaSq)
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// axisKernel is a 1-D kernel specialised to one axis length:
// out[x] = Σ weights[i] * src[reflect(x+offset+i, n)].
type axisKernel struct {
	offset  int
	weights []float64
	// mean marks the flat limit, where every output is the line mean.
	mean bool
}

func (k axisKernel) identity() bool {
	return !k.mean && len(k.weights) <= 1
}

// newAxisKernel builds the kernel for sigma along an axis of n samples.
// The reflect boundary repeats with period 2n, so taps at offsets that agree
// modulo 2n read the same sample and are summed into one weight. No axis
// kernel has more than 2n taps, whatever sigma is.
func newAxisKernel(sigma float64, n int) axisKernel {
	if !(sigma > 0) || n <= 1 {
		return axisKernel{}
	}
	if sigma >= uniformSpan*float64(n) {
		return axisKernel{mean: true}
	}

	radius := kernelRadius(sigma)
	if radius == 0 {
		return axisKernel{}
	}
	kernel := gaussianKernel(sigma, radius)
	if radius < n {
		return axisKernel{offset: -radius, weights: kernel}
	}

	period := 2 * n
	folded := make([]float64, period)
	for i, w := range kernel {
		m := (i - radius) % period
		if m < 0 {
			m += period
		}
		folded[m] += w
	}
	return axisKernel{weights: folded}
}

// reflect maps an out-of-range index onto [0, n) by mirroring about the
// sample edges (d c b a | a b c d | d c b a). Both blurs of one transform
// use this policy, so the detail layer has no edge bias of its own.
func reflect(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * n
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - 1 - i
	}
	return i
}

// GaussianBlur convolves a height x width plane with a separable Gaussian of
// the given standard deviation in sample units. sigma == 0 copies the input.
// The source slice is never modified. Cost per sample is bounded by twice the
// axis length; once sigma reaches 4x an axis length that axis collapses to
// its mean.
func GaussianBlur(src []float64, height, width int, sigma float64) []float64 {
	dst := make([]float64, len(src))
	if height <= 0 || width <= 0 {
		copy(dst, src)
		return dst
	}

	rows := newAxisKernel(sigma, width)
	cols := newAxisKernel(sigma, height)
	if rows.identity() && cols.identity() {
		copy(dst, src)
		return dst
	}

	tmp := make([]float64, len(src))
	forEachRow(height, func(y int) {
		convolveRow(tmp[y*width:(y+1)*width], src[y*width:(y+1)*width], rows)
	})

	if cols.mean {
		means := columnMeans(tmp, height, width)
		forEachRow(height, func(y int) {
			copy(dst[y*width:(y+1)*width], means)
		})
		return dst
	}

	forEachRow(height, func(y int) {
		convolveColumnsAt(dst, tmp, y, height, width, cols)
	})
	return dst
}

// columnMeans sums each column top to bottom.
func columnMeans(src []float64, height, width int) []float64 {
	means := make([]float64, width)
	for y := 0; y < height; y++ {
		for x, v := range src[y*width : (y+1)*width] {
			means[x] += v
		}
	}
	for x := range means {
		means[x] /= float64(height)
	}
	return means
}

func convolveRow(dst, src []float64, k axisKernel) {
	n := len(src)
	switch {
	case k.mean:
		var sum float64
		for _, v := range src {
			sum += v
		}
		mean := sum / float64(n)
		for x := range dst {
			dst[x] = mean
		}
	case k.identity():
		copy(dst, src)
	default:
		for x := 0; x < n; x++ {
			var acc float64
			for i, w := range k.weights {
				acc += w * src[reflect(x+k.offset+i, n)]
			}
			dst[x] = acc
		}
	}
}

func convolveColumnsAt(dst, src []float64, y, height, width int, k axisKernel) {
	row := dst[y*width : (y+1)*width]
	if k.identity() {
		copy(row, src[y*width:(y+1)*width])
		return
	}
	for x := range row {
		var acc float64
		for i, w := range k.weights {
			acc += w * src[reflect(y+k.offset+i, height)*width+x]
		}
		row[x] = acc
	}
}

// forEachRow splits rows across GOMAXPROCS goroutines. Every row is written
// by exactly one goroutine, so the output does not depend on scheduling.
func forEachRow(height int, fn func(y int)) {
	if height <= 0 {
		return
	}
	workers := runtime.GOMAXPROCS(0)
	if workers > height {
		workers = height
	}
	chunk := (height + workers - 1) / workers

	var g errgroup.Group
	for start := 0; start < height; start += chunk {
		start := start
		end := min(start+chunk, height)
		g.Go(func() error {
			for y := start; y < end; y++ {
				fn(y)
			}
			return nil
		})
	}
	_ = g.Wait()
}
