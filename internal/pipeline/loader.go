// Package pipeline converts between files on disk and the floating point
// sample grids the enhancer works on.
package pipeline

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"kinky/internal/logger"
	"kinky/internal/models"

	"gocv.io/x/gocv"
)

// LoadImage decodes any raster format OpenCV can read, preserving 16-bit
// samples. Colour images come back as RGB, grayscale images as one channel.
// The returned depth is the source bit depth (8 or 16).
func LoadImage(path string, log logger.Logger) (*models.Image, int, error) {
	start := time.Now()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read image data: %w", err)
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadAnyDepth|gocv.IMReadAnyColor)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode image with OpenCV: %w", err)
	}
	defer mat.Close()
	if err := validateMat(mat, "load"); err != nil {
		return nil, 0, fmt.Errorf("failed to decode image %s: %w", filepath.Base(path), err)
	}

	img, depth, err := matToImage(mat)
	if err != nil {
		return nil, 0, err
	}

	log.Info("ImageLoader", "image loaded successfully", map[string]interface{}{
		"path":     path,
		"width":    img.Width,
		"height":   img.Height,
		"channels": img.Channels,
		"depth":    depth,
		"elapsed":  time.Since(start).String(),
	})
	return img, depth, nil
}

func matToImage(mat gocv.Mat) (*models.Image, int, error) {
	work := mat
	switch mat.Channels() {
	case 1:
	case 3:
		rgb := gocv.NewMat()
		defer rgb.Close()
		gocv.CvtColor(mat, &rgb, gocv.ColorBGRToRGB)
		work = rgb
	case 4:
		rgb := gocv.NewMat()
		defer rgb.Close()
		gocv.CvtColor(mat, &rgb, gocv.ColorBGRAToRGB)
		work = rgb
	default:
		return nil, 0, fmt.Errorf("unsupported channel count: %d", mat.Channels())
	}

	return samplesToImage(work.ToBytes(), work.Rows(), work.Cols(), work.Channels())
}

// samplesToImage interprets raw 8- or 16-bit unsigned samples in native
// byte order.
func samplesToImage(raw []byte, rows, cols, channels int) (*models.Image, int, error) {
	img, err := models.NewImage(rows, cols, channels)
	if err != nil {
		return nil, 0, err
	}

	switch len(raw) {
	case len(img.Pix):
		for i, b := range raw {
			img.Pix[i] = float64(b)
		}
		return img, 8, nil
	case 2 * len(img.Pix):
		for i := range img.Pix {
			img.Pix[i] = float64(binary.NativeEndian.Uint16(raw[2*i:]))
		}
		return img, 16, nil
	default:
		return nil, 0, fmt.Errorf("unsupported sample depth: %d bytes for %d samples", len(raw), len(img.Pix))
	}
}

// SupportedOutput reports whether path has an extension that keeps 16-bit samples.
func SupportedOutput(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".tif", ".tiff":
		return true
	default:
		return false
	}
}
