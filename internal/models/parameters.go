package models

import (
	"fmt"
	"math"
)

// ParameterSet holds the four coefficients that fully determine one
// enhancement pass over a given image.
type ParameterSet struct {
	KEnh       float64 `yaml:"k_enh"`
	SigmaEnh   float64 `yaml:"sigma_enh"`
	SigmaNoise float64 `yaml:"sigma_noise"`
	Threshold  float64 `yaml:"threshold"`
}

// DefaultParameters returns the session start values.
func DefaultParameters() ParameterSet {
	return ParameterSet{
		KEnh:       1.0,
		SigmaEnh:   0.25,
		SigmaNoise: 0.1,
		Threshold:  0.1,
	}
}

// Validate rejects negative or non-finite values. Values are never clamped.
func (p ParameterSet) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"k_enh", p.KEnh},
		{"sigma_enh", p.SigmaEnh},
		{"sigma_noise", p.SigmaNoise},
		{"threshold", p.Threshold},
	}

	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return &ValidationError{Field: f.name, Value: f.value, Reason: "must be finite"}
		}
		if f.value < 0 {
			return &ValidationError{Field: f.name, Value: f.value, Reason: "must be non-negative"}
		}
	}
	return nil
}

func (p ParameterSet) String() string {
	return fmt.Sprintf("k=%.4g σe=%.4g σn=%.4g th=%.4g", p.KEnh, p.SigmaEnh, p.SigmaNoise, p.Threshold)
}
