// Package drag maps accumulated pointer travel onto a new ParameterSet.
//
// Every axis is multiplicative: new = old * 10^(±delta/e), where e is the
// configured exponent factor, multiplied by the precision factor while the
// precision modifier is held and by the fine reduction for the enhancement
// radius. Vertical travel always drives k_enh, upward (negative dy) raising it.
// Horizontal travel drives one parameter chosen by the held drag buttons:
//
//	Secondary            sigma_noise
//	Secondary + Primary  sigma_enh
//	Primary              threshold
//
// With no drag button held the parameters are left untouched.
package drag

import (
	"math"

	"kinky/internal/config"
	"kinky/internal/models"
)

// Buttons is the set of drag buttons currently held.
type Buttons uint8

const (
	Primary Buttons = 1 << iota
	Secondary
)

// Target is the parameter driven by horizontal travel.
type Target int

const (
	TargetNone Target = iota
	TargetSigmaNoise
	TargetSigmaEnh
	TargetThreshold
)

func (t Target) String() string {
	switch t {
	case TargetSigmaNoise:
		return "sigma_noise"
	case TargetSigmaEnh:
		return "sigma_enh"
	case TargetThreshold:
		return "threshold"
	default:
		return "none"
	}
}

// Modifiers describes the input state accompanying one drag delta.
type Modifiers struct {
	Buttons   Buttons
	Precision bool
}

// HorizontalTarget resolves the binding table for a button set.
func HorizontalTarget(b Buttons) Target {
	switch b & (Primary | Secondary) {
	case Secondary:
		return TargetSigmaNoise
	case Secondary | Primary:
		return TargetSigmaEnh
	case Primary:
		return TargetThreshold
	default:
		return TargetNone
	}
}

type Mapper struct {
	expFactor     float64
	fineReduction float64
}

func NewMapper(s config.Sensitivity) *Mapper {
	return &Mapper{
		expFactor:     s.ExpFactor,
		fineReduction: s.FineReduction,
	}
}

// Map applies one drag delta to prev. precisionFactor only takes effect while
// mods.Precision is set; values below 1 are treated as 1.
func (m *Mapper) Map(prev models.ParameterSet, dx, dy float64, mods Modifiers, precisionFactor float64) models.ParameterSet {
	target := HorizontalTarget(mods.Buttons)
	if target == TargetNone {
		return prev
	}

	coarse := m.expFactor
	if mods.Precision && precisionFactor > 1 {
		coarse *= precisionFactor
	}
	fine := coarse * m.fineReduction

	next := prev
	next.KEnh = scale(prev.KEnh, -dy, coarse)

	switch target {
	case TargetSigmaNoise:
		next.SigmaNoise = scale(prev.SigmaNoise, dx, coarse)
	case TargetSigmaEnh:
		next.SigmaEnh = scale(prev.SigmaEnh, dx, fine)
	case TargetThreshold:
		next.Threshold = scale(prev.Threshold, dx, coarse)
	}
	return next
}

func scale(value, delta, expFactor float64) float64 {
	if delta == 0 {
		return value
	}
	return value * math.Pow(10, delta/expFactor)
}
