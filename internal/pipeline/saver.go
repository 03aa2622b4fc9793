package pipeline

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"kinky/internal/logger"
	"kinky/internal/models"

	"gocv.io/x/gocv"
)

const maxOutputValue = 1<<16 - 1

// SaveImage writes img as a 16-bit PNG or TIFF, scaling so the largest sample
// becomes 65535.
func SaveImage(img *models.Image, path string, log logger.Logger) error {
	if img == nil {
		return fmt.Errorf("no image data to save")
	}
	if !SupportedOutput(path) {
		return fmt.Errorf("unsupported output format for %s: use .png or .tiff", path)
	}

	start := time.Now()
	samples := Quantize16(img)

	raw := make([]byte, 2*len(samples))
	for i, v := range samples {
		binary.NativeEndian.PutUint16(raw[2*i:], v)
	}

	matType := gocv.MatTypeCV16UC1
	if img.Channels == 3 {
		matType = gocv.MatTypeCV16UC3
		swapRedBlue16(raw)
	}

	mat, err := gocv.NewMatFromBytes(img.Height, img.Width, matType, raw)
	if err != nil {
		return fmt.Errorf("failed to build output Mat: %w", err)
	}
	defer mat.Close()
	if err := validateMat(mat, "save"); err != nil {
		return err
	}

	if !gocv.IMWrite(path, mat) {
		err := fmt.Errorf("failed to encode image to %s", path)
		log.Error("ImageSaver", err, map[string]interface{}{"path": path})
		return err
	}

	log.Info("ImageSaver", "image saved", map[string]interface{}{
		"path":    path,
		"width":   img.Width,
		"height":  img.Height,
		"elapsed": time.Since(start).String(),
	})
	return nil
}

// Quantize16 normalizes samples so the maximum maps to 65535. An all-zero
// image stays zero.
func Quantize16(img *models.Image) []uint16 {
	out := make([]uint16, len(img.Pix))
	peak := img.Max()
	if peak <= 0 {
		return out
	}

	scale := maxOutputValue / peak
	for i, v := range img.Pix {
		q := math.Floor(v * scale)
		if q < 0 {
			q = 0
		}
		if q > maxOutputValue {
			q = maxOutputValue
		}
		out[i] = uint16(q)
	}
	return out
}

// swapRedBlue16 converts interleaved 16-bit RGB to OpenCV's BGR order in place.
func swapRedBlue16(raw []byte) {
	for i := 0; i+5 < len(raw); i += 6 {
		raw[i], raw[i+1], raw[i+4], raw[i+5] = raw[i+4], raw[i+5], raw[i], raw[i+1]
	}
}
