package models

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewImageRejectsBadShapes(t *testing.T) {
	tests := []struct {
		name                    string
		height, width, channels int
	}{
		{"zero height", 0, 4, 1},
		{"negative width", 4, -1, 1},
		{"two channels", 4, 4, 2},
		{"four channels", 4, 4, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewImage(tt.height, tt.width, tt.channels)
			assert.Error(t, err)
		})
	}
}

func TestImagePlaneRoundTrip(t *testing.T) {
	img, err := NewImage(2, 3, 3)
	require.NoError(t, err)
	for i := range img.Pix {
		img.Pix[i] = float64(i)
	}

	green := img.Plane(1)
	require.Len(t, green, 6)
	assert.Equal(t, img.At(1, 2, 1), green[5])

	for i := range green {
		green[i] *= 10
	}
	img.SetPlane(1, green)
	assert.Equal(t, float64((1*3+2)*3+1)*10, img.At(1, 2, 1))
	assert.Equal(t, float64((1*3+2)*3+0), img.At(1, 2, 0))
}

func TestImageCloneIsIndependent(t *testing.T) {
	img, err := NewImage(1, 2, 1)
	require.NoError(t, err)
	img.Set(0, 1, 0, 7)

	clone := img.Clone()
	clone.Set(0, 1, 0, 9)

	assert.Equal(t, 7.0, img.At(0, 1, 0))
	assert.True(t, img.SameShape(clone))
	assert.Equal(t, 7.0, img.Max())
}

func TestNewImageFromSamplesLength(t *testing.T) {
	_, err := NewImageFromSamples(2, 2, 1, make([]float64, 3))
	assert.Error(t, err)

	img, err := NewImageFromSamples(2, 2, 1, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, 4.0, img.Max())
}

func TestParameterSetValidate(t *testing.T) {
	assert.NoError(t, DefaultParameters().Validate())
	assert.NoError(t, ParameterSet{}.Validate())

	tests := []struct {
		name  string
		p     ParameterSet
		field string
	}{
		{"negative gain", ParameterSet{KEnh: -1}, "k_enh"},
		{"negative enhancement sigma", ParameterSet{SigmaEnh: -0.1}, "sigma_enh"},
		{"negative noise sigma", ParameterSet{SigmaNoise: -2}, "sigma_noise"},
		{"negative threshold", ParameterSet{Threshold: -0.5}, "threshold"},
		{"nan gain", ParameterSet{KEnh: math.NaN()}, "k_enh"},
		{"infinite threshold", ParameterSet{Threshold: math.Inf(1)}, "threshold"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}
