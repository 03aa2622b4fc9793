package pipeline

import (
	"encoding/binary"
	"testing"

	"kinky/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestSamplesToImage8Bit(t *testing.T) {
	img, depth, err := samplesToImage([]byte{0, 10, 200, 255}, 2, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 8, depth)
	assert.Equal(t, []float64{0, 10, 200, 255}, img.Pix)
}

func TestSamplesToImage16Bit(t *testing.T) {
	raw := make([]byte, 6)
	for i, v := range []uint16{1, 4096, 65535} {
		binary.NativeEndian.PutUint16(raw[2*i:], v)
	}

	img, depth, err := samplesToImage(raw, 1, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 16, depth)
	assert.Equal(t, []float64{1, 4096, 65535}, img.Pix)
}

func TestSamplesToImageRejectsOddSizes(t *testing.T) {
	_, _, err := samplesToImage(make([]byte, 5), 2, 2, 1)
	assert.Error(t, err)
}

func TestQuantize16(t *testing.T) {
	img, err := models.NewImageFromSamples(1, 4, 1, []float64{0, 0.5, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, []uint16{0, 16383, 32767, 65535}, Quantize16(img))

	black, err := models.NewImage(2, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint16{0, 0, 0, 0}, Quantize16(black))
}

func TestSwapRedBlue16(t *testing.T) {
	raw := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	swapRedBlue16(raw)
	assert.Equal(t, []byte{5, 6, 3, 4, 1, 2, 11, 12, 9, 10, 7, 8}, raw)
}

func TestPreview(t *testing.T) {
	gray, err := models.NewImageFromSamples(1, 2, 1, []float64{0, 1000})
	require.NoError(t, err)
	p := Preview(gray)
	assert.Equal(t, []uint8{0, 0, 0, 255, 255, 255, 255, 255}, p.Pix)

	rgb, err := models.NewImageFromSamples(1, 1, 3, []float64{10, 5, 0})
	require.NoError(t, err)
	p = Preview(rgb)
	assert.Equal(t, []uint8{255, 127, 0, 255}, p.Pix)

	black, err := models.NewImage(1, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 0, 0, 255}, Preview(black).Pix)
}

func TestSupportedOutput(t *testing.T) {
	assert.True(t, SupportedOutput("out.png"))
	assert.True(t, SupportedOutput("/tmp/OUT.TIFF"))
	assert.True(t, SupportedOutput("a.tif"))
	assert.False(t, SupportedOutput("a.jpg"))
	assert.False(t, SupportedOutput("noext"))
}

func TestValidateDimensions(t *testing.T) {
	assert.NoError(t, validateDimensions(640, 480, "load"))
	assert.Error(t, validateDimensions(0, 480, "load"))
	assert.Error(t, validateDimensions(640, -1, "load"))
	assert.Error(t, validateDimensions(maxDimension+1, 10, "load"))
}

func TestValidateMatType(t *testing.T) {
	assert.NoError(t, validateMatType(gocv.MatTypeCV16UC3, "load"))
	assert.NoError(t, validateMatType(gocv.MatTypeCV8UC1, "load"))
	err := validateMatType(gocv.MatTypeCV32FC1, "load")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load")
}
