// Package enhance implements the difference-of-Gaussians enhancement filter.
//
// For each channel independently:
//
//	clamped  = max(threshold, image) - threshold
//	denoised = G(clamped, sigma_noise)
//	detail   = denoised - G(denoised, sigma_enh)
//	result   = max(0, clamped + k_enh*detail)
//
// G is a separable Gaussian with mirrored (symmetric) boundaries and a
// kernel truncated at four standard deviations.
package enhance

import (
	"math"

	"kinky/internal/models"
)

// Transform returns a new image; the input is not modified. Parameters are
// assumed to be validated and non-negative.
func Transform(img *models.Image, p models.ParameterSet) *models.Image {
	out := &models.Image{
		Height:   img.Height,
		Width:    img.Width,
		Channels: img.Channels,
		Pix:      make([]float64, len(img.Pix)),
	}

	for c := 0; c < img.Channels; c++ {
		out.SetPlane(c, transformPlane(img.Plane(c), img.Height, img.Width, p))
	}
	return out
}

func transformPlane(plane []float64, height, width int, p models.ParameterSet) []float64 {
	clamped := make([]float64, len(plane))
	for i, v := range plane {
		clamped[i] = math.Max(p.Threshold, v) - p.Threshold
	}

	denoised := GaussianBlur(clamped, height, width, p.SigmaNoise)
	smooth := GaussianBlur(denoised, height, width, p.SigmaEnh)

	result := make([]float64, len(plane))
	for i := range result {
		detail := denoised[i] - smooth[i]
		result[i] = math.Max(0, clamped[i]+p.KEnh*detail)
	}
	return result
}
