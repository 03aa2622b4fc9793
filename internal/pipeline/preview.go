package pipeline

import (
	"image"
	"math"

	"kinky/internal/models"
)

// Preview renders img as 8-bit NRGBA for display, scaling by the image
// maximum. Single-channel images are replicated into gray.
func Preview(img *models.Image) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
	peak := img.Max()
	scale := 0.0
	if peak > 0 {
		scale = 255 / peak
	}

	for i := 0; i < img.Len(); i++ {
		o := i * 4
		if img.Channels == 1 {
			v := toByte(img.Pix[i] * scale)
			out.Pix[o], out.Pix[o+1], out.Pix[o+2] = v, v, v
		} else {
			s := i * 3
			out.Pix[o] = toByte(img.Pix[s] * scale)
			out.Pix[o+1] = toByte(img.Pix[s+1] * scale)
			out.Pix[o+2] = toByte(img.Pix[s+2] * scale)
		}
		out.Pix[o+3] = 0xff
	}
	return out
}

func toByte(v float64) uint8 {
	v = math.Floor(v)
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
