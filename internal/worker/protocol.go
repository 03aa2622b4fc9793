package worker

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"kinky/internal/models"
)

// Frames are big-endian.
//
//	image:   [u32 height][u32 width][u32 channels][float64 x height*width*channels]
//	request: [float64 k_enh][float64 sigma_enh][float64 sigma_noise][float64 threshold]

// Frame limits. maxDimension matches the largest side the image loader
// accepts; maxSamples caps a frame at 2 GiB of float64 samples.
const (
	maxDimension = 32768
	maxSamples   = 1 << 28
)

func checkFrame(height, width, channels int) error {
	if height > maxDimension || width > maxDimension {
		return fmt.Errorf("image frame %dx%d exceeds the %d sample side limit", height, width, maxDimension)
	}
	if uint64(height)*uint64(width)*uint64(channels) > maxSamples {
		return fmt.Errorf("image frame too large: %dx%dx%d", height, width, channels)
	}
	return nil
}

func WriteImage(w io.Writer, img *models.Image) error {
	if err := checkFrame(img.Height, img.Width, img.Channels); err != nil {
		return err
	}
	header := [3]uint32{uint32(img.Height), uint32(img.Width), uint32(img.Channels)}
	if err := binary.Write(w, binary.BigEndian, header); err != nil {
		return fmt.Errorf("failed to write image header: %w", err)
	}

	buf := make([]byte, 8*len(img.Pix))
	for i, v := range img.Pix {
		binary.BigEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("failed to write image samples: %w", err)
	}
	return nil
}

// ReadImage returns io.EOF untouched when the stream ends before a header.
func ReadImage(r io.Reader) (*models.Image, error) {
	var header [3]uint32
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		if err == io.EOF {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read image header: %w", err)
	}

	height, width, channels := int(header[0]), int(header[1]), int(header[2])
	if err := checkFrame(height, width, channels); err != nil {
		return nil, err
	}
	img, err := models.NewImage(height, width, channels)
	if err != nil {
		return nil, fmt.Errorf("invalid image frame: %w", err)
	}

	buf := make([]byte, 8*len(img.Pix))
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("failed to read image samples: %w", err)
	}
	for i := range img.Pix {
		img.Pix[i] = math.Float64frombits(binary.BigEndian.Uint64(buf[i*8:]))
	}
	return img, nil
}

func WriteParams(w io.Writer, p models.ParameterSet) error {
	frame := [4]float64{p.KEnh, p.SigmaEnh, p.SigmaNoise, p.Threshold}
	if err := binary.Write(w, binary.BigEndian, frame); err != nil {
		return fmt.Errorf("failed to write parameters: %w", err)
	}
	return nil
}

// ReadParams returns io.EOF untouched on a clean end of stream.
func ReadParams(r io.Reader) (models.ParameterSet, error) {
	var frame [4]float64
	if err := binary.Read(r, binary.BigEndian, &frame); err != nil {
		if err == io.EOF {
			return models.ParameterSet{}, err
		}
		return models.ParameterSet{}, fmt.Errorf("failed to read parameters: %w", err)
	}
	return models.ParameterSet{
		KEnh:       frame[0],
		SigmaEnh:   frame[1],
		SigmaNoise: frame[2],
		Threshold:  frame[3],
	}, nil
}
