package enhance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKernelRadius(t *testing.T) {
	tests := []struct {
		sigma  float64
		radius int
	}{
		{0, 0},
		{0.1, 0},
		{0.25, 1},
		{1, 4},
		{2.5, 10},
		{math.NaN(), 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.radius, kernelRadius(tt.sigma), "sigma=%v", tt.sigma)
	}
}

func TestGaussianKernel(t *testing.T) {
	for _, sigma := range []float64{0.25, 1, 2.5} {
		k := gaussianKernel(sigma, kernelRadius(sigma))
		assert.Len(t, k, 2*kernelRadius(sigma)+1)

		var sum float64
		for i, w := range k {
			sum += w
			assert.InDelta(t, w, k[len(k)-1-i], 1e-15, "kernel must be symmetric")
		}
		assert.InDelta(t, 1.0, sum, 1e-12)
	}
}

func TestAxisKernelTapsBounded(t *testing.T) {
	sigmas := []float64{0.5, 3, 40, 1e6, 1e17, 2e18, 1e19, math.Inf(1)}
	for _, n := range []int{2, 5, 64} {
		for _, sigma := range sigmas {
			k := newAxisKernel(sigma, n)
			assert.LessOrEqual(t, len(k.weights), 2*n, "sigma=%v n=%d", sigma, n)
			if k.mean || k.identity() {
				continue
			}
			var sum float64
			for _, w := range k.weights {
				sum += w
			}
			assert.InDelta(t, 1.0, sum, 1e-12, "sigma=%v n=%d", sigma, n)
		}
	}

	assert.True(t, newAxisKernel(1e19, 4).mean, "huge sigma must not overflow into an identity kernel")
}

func TestFoldedKernelMatchesDirectConvolution(t *testing.T) {
	src := []float64{4, 0, 7, 1, 9}
	sigma := 3.0
	radius := kernelRadius(sigma)
	require.GreaterOrEqual(t, radius, len(src), "kernel must be wider than the line")

	full := gaussianKernel(sigma, radius)
	want := make([]float64, len(src))
	for x := range src {
		for i, w := range full {
			want[x] += w * src[reflect(x+i-radius, len(src))]
		}
	}

	got := make([]float64, len(src))
	convolveRow(got, src, newAxisKernel(sigma, len(src)))
	for x := range want {
		assert.InDelta(t, want[x], got[x], 1e-12, "x=%d", x)
	}
}

func TestReflect(t *testing.T) {
	tests := []struct {
		i, n, want int
	}{
		{0, 4, 0},
		{3, 4, 3},
		{-1, 4, 0},
		{-2, 4, 1},
		{4, 4, 3},
		{5, 4, 2},
		{8, 4, 0},
		{-9, 4, 0},
		{7, 1, 0},
		{-3, 2, 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, reflect(tt.i, tt.n), "reflect(%d, %d)", tt.i, tt.n)
	}
}

func TestGaussianBlurZeroSigmaCopies(t *testing.T) {
	src := []float64{1, 2, 3, 4, 5, 6}
	dst := GaussianBlur(src, 2, 3, 0)
	assert.Equal(t, src, dst)

	dst[0] = 100
	assert.Equal(t, 1.0, src[0])
}

func TestGaussianBlurPreservesConstantAndMass(t *testing.T) {
	src := make([]float64, 7*5)
	for i := range src {
		src[i] = 3
	}
	for _, v := range GaussianBlur(src, 7, 5, 1.3) {
		assert.InDelta(t, 3, v, 1e-12)
	}

	impulse := make([]float64, 9*9)
	impulse[4*9+4] = 1
	blurred := GaussianBlur(impulse, 9, 9, 0.8)
	var sum float64
	for _, v := range blurred {
		sum += v
	}
	assert.InDelta(t, 1, sum, 1e-12)
	assert.Greater(t, blurred[4*9+4], blurred[4*9+5])
	assert.InDelta(t, blurred[3*9+4], blurred[4*9+3], 1e-15)
}

func TestGaussianBlurLargeSigmaOnSmallImage(t *testing.T) {
	src := []float64{0, 10}
	out := GaussianBlur(src, 1, 2, 5)
	assert.Len(t, out, 2)
	assert.InDelta(t, 5, (out[0]+out[1])/2, 1e-9)
}

func TestGaussianBlurHugeSigmaSmallPlane(t *testing.T) {
	src := []float64{1, 2, 3, 4}
	for _, sigma := range []float64{1e6, 1e17, 2e18, 1e19} {
		assert.Equal(t, []float64{2.5, 2.5, 2.5, 2.5}, GaussianBlur(src, 2, 2, sigma), "sigma=%v", sigma)
	}
}

func TestGaussianBlurHugeSigmaLargePlane(t *testing.T) {
	const height, width = 40, 300
	src := make([]float64, height*width)
	var sum float64
	for i := range src {
		src[i] = float64(i%7) + float64(i/width)
		sum += src[i]
	}
	mean := sum / float64(len(src))

	out := GaussianBlur(src, height, width, 1e9)
	require.Len(t, out, len(src))
	for _, v := range out {
		assert.InDelta(t, mean, v, 1e-9)
	}
}

func TestGaussianBlurEmptyPlane(t *testing.T) {
	assert.Empty(t, GaussianBlur(nil, 0, 4, 1))
	assert.Empty(t, GaussianBlur(nil, 4, 0, 1))
}
