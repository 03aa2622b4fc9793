package enhance

import (
	"math"
	"math/rand"
	"testing"

	"kinky/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomImage(t *testing.T, height, width, channels int, seed int64) *models.Image {
	t.Helper()
	img, err := models.NewImage(height, width, channels)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(seed))
	for i := range img.Pix {
		img.Pix[i] = rng.Float64() * 1000
	}
	return img
}

func TestTransformFlatFieldWithDefaults(t *testing.T) {
	img, err := models.NewImageFromSamples(2, 2, 1, []float64{5, 5, 5, 5})
	require.NoError(t, err)

	out := Transform(img, models.DefaultParameters())

	require.Equal(t, 1, out.Channels)
	for _, v := range out.Pix {
		assert.InDelta(t, 4.9, v, 1e-12)
	}
	assert.Equal(t, []float64{5, 5, 5, 5}, img.Pix, "input must not be mutated")
}

func TestTransformIsDeterministic(t *testing.T) {
	img := randomImage(t, 37, 23, 3, 1)
	p := models.ParameterSet{KEnh: 2.5, SigmaEnh: 3.2, SigmaNoise: 1.1, Threshold: 40}

	first := Transform(img, p)
	second := Transform(img, p)

	require.Equal(t, len(first.Pix), len(second.Pix))
	for i := range first.Pix {
		if math.Float64bits(first.Pix[i]) != math.Float64bits(second.Pix[i]) {
			t.Fatalf("sample %d differs: %v vs %v", i, first.Pix[i], second.Pix[i])
		}
	}
}

func TestTransformZeroGainIsIdentity(t *testing.T) {
	img := randomImage(t, 16, 9, 1, 2)
	out := Transform(img, models.ParameterSet{KEnh: 0, SigmaEnh: 2, SigmaNoise: 0.7, Threshold: 0})
	assert.Equal(t, img.Pix, out.Pix)
}

func TestTransformZeroGainYieldsClamped(t *testing.T) {
	img, err := models.NewImageFromSamples(1, 4, 1, []float64{0, 1, 2, 3})
	require.NoError(t, err)

	out := Transform(img, models.ParameterSet{KEnh: 0, SigmaEnh: 1, SigmaNoise: 1, Threshold: 1.5})
	assert.Equal(t, []float64{0, 0, 0.5, 1.5}, out.Pix)
}

func TestTransformThresholdAboveMaxIsBlack(t *testing.T) {
	img := randomImage(t, 8, 8, 3, 3)
	for _, th := range []float64{img.Max(), img.Max() * 2} {
		out := Transform(img, models.ParameterSet{KEnh: 5, SigmaEnh: 2, SigmaNoise: 1, Threshold: th})
		for _, v := range out.Pix {
			require.Equal(t, 0.0, v)
		}
	}
}

func TestTransformOutputNonNegativeAndSameShape(t *testing.T) {
	img := randomImage(t, 20, 31, 3, 4)
	out := Transform(img, models.ParameterSet{KEnh: 50, SigmaEnh: 4, SigmaNoise: 0.5, Threshold: 100})

	assert.True(t, img.SameShape(out))
	for _, v := range out.Pix {
		require.GreaterOrEqual(t, v, 0.0)
	}
}

func TestTransformChannelsAreIndependent(t *testing.T) {
	rgb := randomImage(t, 12, 10, 3, 5)
	p := models.ParameterSet{KEnh: 1.7, SigmaEnh: 2, SigmaNoise: 0.6, Threshold: 10}
	out := Transform(rgb, p)

	for c := 0; c < 3; c++ {
		gray, err := models.NewImageFromSamples(12, 10, 1, rgb.Plane(c))
		require.NoError(t, err)
		single := Transform(gray, p)
		assert.Equal(t, single.Pix, out.Plane(c))
	}
}

func TestTransformHugeSigmaStaysTotal(t *testing.T) {
	img, err := models.NewImageFromSamples(2, 2, 1, []float64{1, 2, 3, 4})
	require.NoError(t, err)

	for _, sigma := range []float64{1e6, 1e17, 2e18, 1e19} {
		var out *models.Image
		require.NotPanics(t, func() {
			out = Transform(img, models.ParameterSet{KEnh: 1, SigmaEnh: sigma, SigmaNoise: 0.1})
		}, "sigma=%v", sigma)
		assert.Equal(t, []float64{0, 1.5, 3.5, 5.5}, out.Pix, "sigma=%v", sigma)
	}
}

func TestTransformEmptyImage(t *testing.T) {
	img := &models.Image{Channels: 1}
	assert.NotPanics(t, func() {
		out := Transform(img, models.DefaultParameters())
		assert.Empty(t, out.Pix)
	})
}
