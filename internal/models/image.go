package models

import (
	"fmt"
)

// Image is a height x width x channels grid of floating point samples.
// Samples are stored row-major with channels interleaved.
type Image struct {
	Height   int
	Width    int
	Channels int
	Pix      []float64
}

// NewImage allocates a zero-filled image.
func NewImage(height, width, channels int) (*Image, error) {
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("invalid image dimensions %dx%d", width, height)
	}
	if channels != 1 && channels != 3 {
		return nil, fmt.Errorf("unsupported channel count: %d", channels)
	}

	return &Image{
		Height:   height,
		Width:    width,
		Channels: channels,
		Pix:      make([]float64, height*width*channels),
	}, nil
}

// NewImageFromSamples wraps an existing sample slice without copying it.
func NewImageFromSamples(height, width, channels int, pix []float64) (*Image, error) {
	img, err := NewImage(height, width, channels)
	if err != nil {
		return nil, err
	}
	if len(pix) != len(img.Pix) {
		return nil, fmt.Errorf("sample count %d does not match %dx%dx%d", len(pix), height, width, channels)
	}
	img.Pix = pix
	return img, nil
}

func (img *Image) offset(y, x, c int) int {
	return (y*img.Width+x)*img.Channels + c
}

// At returns the sample at row y, column x, channel c.
func (img *Image) At(y, x, c int) float64 {
	return img.Pix[img.offset(y, x, c)]
}

// Set stores a sample at row y, column x, channel c.
func (img *Image) Set(y, x, c int, v float64) {
	img.Pix[img.offset(y, x, c)] = v
}

// Len returns the number of samples per channel.
func (img *Image) Len() int {
	return img.Height * img.Width
}

// Plane copies one channel out into a contiguous row-major slice.
func (img *Image) Plane(c int) []float64 {
	plane := make([]float64, img.Len())
	for i := range plane {
		plane[i] = img.Pix[i*img.Channels+c]
	}
	return plane
}

// SetPlane writes a contiguous row-major slice back into one channel.
func (img *Image) SetPlane(c int, plane []float64) {
	for i, v := range plane {
		img.Pix[i*img.Channels+c] = v
	}
}

// Max returns the largest sample, or 0 for an all-zero image.
func (img *Image) Max() float64 {
	var m float64
	for i, v := range img.Pix {
		if i == 0 || v > m {
			m = v
		}
	}
	return m
}

// Clone returns a deep copy.
func (img *Image) Clone() *Image {
	pix := make([]float64, len(img.Pix))
	copy(pix, img.Pix)
	return &Image{
		Height:   img.Height,
		Width:    img.Width,
		Channels: img.Channels,
		Pix:      pix,
	}
}

// SameShape reports whether two images have identical dimensions.
func (img *Image) SameShape(other *Image) bool {
	return other != nil &&
		img.Height == other.Height &&
		img.Width == other.Width &&
		img.Channels == other.Channels
}
