/*
Copyright © 2026 the deepstop authors.
This file is part of deepstop.

deepstop is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

deepstop is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with deepstop.  If not, see <http://www.gnu.org/licenses/>.
*/

// Bühlmann ZH-L16 decompression model with gradient factors by Erik Baker.
//
// [mpdfd] Powell, Mark. Deco for Divers, United Kingdom, 2010

package deepstop

import (
	"fmt"
	"math"
)

// NumCompartments is the number of tissue compartments in the ZH-L16
// model.
const NumCompartments = 16

// ModelVariant selects the set of Bühlmann coefficients in use.
type ModelVariant string

// The supported model variants. The nitrogen A coefficients of ZH-L16C
// are tightened from compartment 5 onwards relative to ZH-L16B; the
// half-times are shared.
const (
	ZHL16B ModelVariant = "zh-l16b-gf"
	ZHL16C ModelVariant = "zh-l16c-gf"
)

// Tissues is an immutable snapshot of the inert gas loading of all
// tissue compartments. N2 and He hold the nitrogen and helium partial
// pressures [bar] per compartment; GF is the gradient factor currently
// in force for ceiling calculations.
type Tissues struct {
	N2 [NumCompartments]float64
	He [NumCompartments]float64
	GF float64
}

// WithGF returns a copy of the tissue state with the gradient factor
// replaced.
func (t Tissues) WithGF(gf float64) Tissues {
	t.GF = gf
	return t
}

// ZH-L16B-GF coefficients; source: gfdeco.f by Baker.
var zhl16b = modelConst{
	n2A: [NumCompartments]float64{
		1.1696, 1.0000, 0.8618, 0.7562, 0.6667, 0.5600, 0.4947, 0.4500,
		0.4187, 0.3798, 0.3497, 0.3223, 0.2850, 0.2737, 0.2523, 0.2327,
	},
	n2B: [NumCompartments]float64{
		0.5578, 0.6514, 0.7222, 0.7825, 0.8126, 0.8434, 0.8693, 0.8910,
		0.9092, 0.9222, 0.9319, 0.9403, 0.9477, 0.9544, 0.9602, 0.9653,
	},
	heA: [NumCompartments]float64{
		1.6189, 1.3830, 1.1919, 1.0458, 0.9220, 0.8205, 0.7305, 0.6502,
		0.5950, 0.5545, 0.5333, 0.5189, 0.5181, 0.5176, 0.5172, 0.5119,
	},
	heB: [NumCompartments]float64{
		0.4770, 0.5747, 0.6527, 0.7223, 0.7582, 0.7957, 0.8279, 0.8553,
		0.8757, 0.8903, 0.8997, 0.9073, 0.9122, 0.9171, 0.9217, 0.9267,
	},
	n2HalfLife: [NumCompartments]float64{
		5.0, 8.0, 12.5, 18.5, 27.0, 38.3, 54.3, 77.0, 109.0,
		146.0, 187.0, 239.0, 305.0, 390.0, 498.0, 635.0,
	},
	heHalfLife: [NumCompartments]float64{
		1.88, 3.02, 4.72, 6.99, 10.21, 14.48, 20.53, 29.11,
		41.20, 55.19, 70.69, 90.34, 115.29, 147.42, 188.24, 240.03,
	},
}

// ZH-L16C-GF coefficients; source: OSTC firmware code.
var zhl16c = modelConst{
	n2A: [NumCompartments]float64{
		1.2599, 1.0000, 0.8618, 0.7562, 0.6200, 0.5043, 0.4410, 0.4000,
		0.3750, 0.3500, 0.3295, 0.3065, 0.2835, 0.2610, 0.2480, 0.2327,
	},
	n2B: [NumCompartments]float64{
		0.5050, 0.6514, 0.7222, 0.7825, 0.8126, 0.8434, 0.8693, 0.8910,
		0.9092, 0.9222, 0.9319, 0.9403, 0.9477, 0.9544, 0.9602, 0.9653,
	},
	heA: [NumCompartments]float64{
		1.7424, 1.3830, 1.1919, 1.0458, 0.9220, 0.8205, 0.7305, 0.6502,
		0.5950, 0.5545, 0.5333, 0.5189, 0.5181, 0.5176, 0.5172, 0.5119,
	},
	heB: [NumCompartments]float64{
		0.4245, 0.5747, 0.6527, 0.7223, 0.7582, 0.7957, 0.8279, 0.8553,
		0.8757, 0.8903, 0.8997, 0.9073, 0.9122, 0.9171, 0.9217, 0.9267,
	},
	n2HalfLife: [NumCompartments]float64{
		5.0, 8.0, 12.5, 18.5, 27.0, 38.3, 54.3, 77.0, 109.0,
		146.0, 187.0, 239.0, 305.0, 390.0, 498.0, 635.0,
	},
	heHalfLife: [NumCompartments]float64{
		1.88, 3.02, 4.72, 6.99, 10.21, 14.48, 20.53, 29.11,
		41.20, 55.19, 70.69, 90.34, 115.29, 147.42, 188.24, 240.03,
	},
}

type modelConst struct {
	n2A, n2B   [NumCompartments]float64
	heA, heB   [NumCompartments]float64
	n2HalfLife [NumCompartments]float64
	heHalfLife [NumCompartments]float64
}

// Model holds the compartment constants of a ZH-L16 model variant and
// advances tissue states through dive segments.
type Model struct {
	Variant ModelVariant

	// Exp computes exp(-k*t) for gas loading. Defaults to MathExp.
	Exp ExpCalculator

	consts   modelConst
	n2K, heK [NumCompartments]float64 // decay constants ln(2)/half-life
}

// NewModel creates a decompression model for the requested variant.
func NewModel(variant ModelVariant) (*Model, error) {
	m := &Model{Variant: variant, Exp: MathExp{}}
	switch variant {
	case ZHL16B:
		m.consts = zhl16b
	case ZHL16C:
		m.consts = zhl16c
	default:
		return nil, fmt.Errorf("%w: unknown model variant %q", ErrConfig, variant)
	}
	for i := 0; i < NumCompartments; i++ {
		m.n2K[i] = math.Ln2 / m.consts.n2HalfLife[i]
		m.heK[i] = math.Ln2 / m.consts.heHalfLife[i]
	}
	return m, nil
}

// DecayConstants returns the nitrogen and helium decay constants of all
// compartments, for use by table-backed ExpCalculator implementations.
func (m *Model) DecayConstants() (n2, he [NumCompartments]float64) {
	return m.n2K, m.heK
}

// Init returns the tissue state of a diver equilibrated with air at the
// surface: nitrogen at 79.02% of the water-vapour-corrected surface
// pressure, no helium.
func (m *Model) Init(surfacePressure, gf float64) Tissues {
	var t Tissues
	p := 0.7902 * (surfacePressure - WaterVapourPressure)
	for i := range t.N2 {
		t.N2[i] = p
	}
	t.GF = gf
	return t
}

// Load advances all tissue compartments through a dive segment of
// duration time [min], breathing gas at a pressure change rate of rate
// [bar/min] starting from absolute pressure absP [bar]. A zero rate is a
// constant-depth exposure (Haldane equation); a non-zero rate is a
// linear ascent or descent (Schreiner equation).
func (m *Model) Load(t Tissues, time, rate, absP float64, gas GasMix) Tissues {
	if time == 0 {
		return t
	}
	piN2 := InspiredPressure(absP, gas.N2)
	piHe := InspiredPressure(absP, gas.He)
	if rate == 0 {
		for i := range t.N2 {
			t.N2[i] = Haldane(piN2, t.N2[i], m.n2K[i], time, m.Exp)
			t.He[i] = Haldane(piHe, t.He[i], m.heK[i], time, m.Exp)
		}
		return t
	}
	rN2 := rate * gas.N2
	rHe := rate * gas.He
	for i := range t.N2 {
		t.N2[i] = Schreiner(piN2, t.N2[i], rN2, m.n2K[i], time, m.Exp)
		t.He[i] = Schreiner(piHe, t.He[i], rHe, m.heK[i], time, m.Exp)
	}
	return t
}

// TissueLimit returns, per compartment, the minimum ambient pressure
// [bar] tolerated under gradient factor gf. The Bühlmann A and B
// coefficients are weighted by the helium and nitrogen loading of the
// compartment ([mpdfd] chapter 6)
//
//	A = (Phe*Ahe + Pn2*An2) / (Phe + Pn2)
//	B = (Phe*Bhe + Pn2*Bn2) / (Phe + Pn2)
//	Ptol = (P - gf*A) / (gf/B - gf + 1)
//
// Negative tolerated pressures are clamped to zero.
func (m *Model) TissueLimit(t Tissues, gf float64) [NumCompartments]float64 {
	var lim [NumCompartments]float64
	for i := range lim {
		p := t.N2[i] + t.He[i]
		a := (t.He[i]*m.consts.heA[i] + t.N2[i]*m.consts.n2A[i]) / p
		b := (t.He[i]*m.consts.heB[i] + t.N2[i]*m.consts.n2B[i]) / p
		ptol := (p - gf*a) / (gf/b - gf + 1)
		if ptol < 0 {
			ptol = 0
		}
		lim[i] = ptol
	}
	return lim
}

// CeilingLimit returns the ascent ceiling: the shallowest absolute
// pressure [bar] to which the diver may ascend without any compartment
// exceeding its gradient-factor-adjusted M-value.
func (m *Model) CeilingLimit(t Tissues, gf float64) float64 {
	lim := m.TissueLimit(t, gf)
	ceiling := lim[0]
	for _, p := range lim[1:] {
		if p > ceiling {
			ceiling = p
		}
	}
	return ceiling
}
