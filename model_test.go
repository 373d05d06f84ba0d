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

package deepstop

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestNewModelVariants(t *testing.T) {
	for _, variant := range []ModelVariant{ZHL16B, ZHL16C} {
		if _, err := NewModel(variant); err != nil {
			t.Errorf("%v: %v", variant, err)
		}
	}
	if _, err := NewModel("zh-l12"); !errors.Is(err, ErrConfig) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestModelInit(t *testing.T) {
	m, _ := NewModel(ZHL16B)
	ts := m.Init(1.01325, 0.3)
	want := 0.7902 * (1.01325 - WaterVapourPressure)
	for i := 0; i < NumCompartments; i++ {
		if !scalar.EqualWithinAbs(ts.N2[i], want, 1e-9) {
			t.Errorf("compartment %d: N2 %v, want %v", i, ts.N2[i], want)
		}
		if ts.He[i] != 0 {
			t.Errorf("compartment %d: He %v, want 0", i, ts.He[i])
		}
	}
	if ts.GF != 0.3 {
		t.Errorf("gf %v, want 0.3", ts.GF)
	}
}

// Reference values for a nitrogen loading of 3 bar in the first ZH-L16B
// compartment (A 1.1696, B 0.5578).
func TestTissueLimit(t *testing.T) {
	m, _ := NewModel(ZHL16B)
	var ts Tissues
	for i := range ts.N2 {
		ts.N2[i] = 3
	}
	if v := m.TissueLimit(ts, 0.3)[0]; !scalar.EqualWithinAbs(v, 2.14013, 1e-4) {
		t.Errorf("gf 0.3: got %v, want 2.14013", v)
	}
	if v := m.TissueLimit(ts, 1.0)[0]; !scalar.EqualWithinAbs(v, 1.02099, 1e-4) {
		t.Errorf("gf 1.0: got %v, want 1.02099", v)
	}
}

func TestTissueLimitClamped(t *testing.T) {
	m, _ := NewModel(ZHL16B)
	var ts Tissues
	for i := range ts.N2 {
		ts.N2[i] = 0.01
	}
	for i, v := range m.TissueLimit(ts, 1.0) {
		if v != 0 {
			t.Errorf("compartment %d: limit %v, want clamped to 0", i, v)
		}
	}
}

// Lowering the gradient factor must raise (or keep) the ceiling.
func TestCeilingMonotoneInGF(t *testing.T) {
	m, _ := NewModel(ZHL16B)
	ts := m.Init(1.01325, 0.3)
	ts = m.Load(ts, 30, 0, 5, Air)
	prev := 0.0
	for _, gf := range []float64{1.0, 0.85, 0.5, 0.3, 0.1} {
		c := m.CeilingLimit(ts, gf)
		if c < prev {
			t.Fatalf("ceiling %v at gf %v is shallower than %v at higher gf", c, gf, prev)
		}
		prev = c
	}
}

func TestLoadNoop(t *testing.T) {
	m, _ := NewModel(ZHL16B)
	ts := m.Init(1.01325, 0.3)
	if got := m.Load(ts, 0, -1, 4, Air); got != ts {
		t.Error("zero-duration load changed the tissue state")
	}
}

// Two consecutive constant-depth exposures must equal one exposure of
// the combined duration.
func TestLoadComposition(t *testing.T) {
	m, _ := NewModel(ZHL16B)
	ts := m.Init(1.01325, 0.3)
	split := m.Load(m.Load(ts, 11, 0, 4, Air), 17, 0, 4, Air)
	whole := m.Load(ts, 28, 0, 4, Air)
	for i := 0; i < NumCompartments; i++ {
		if !scalar.EqualWithinAbs(split.N2[i], whole.N2[i], 1e-9) {
			t.Errorf("compartment %d: %v != %v", i, split.N2[i], whole.N2[i])
		}
	}
}

func TestLoadTrimix(t *testing.T) {
	m, _ := NewModel(ZHL16B)
	tx, err := NewGasMix(0, 0.18, 0.45)
	if err != nil {
		t.Fatal(err)
	}
	ts := m.Init(1.01325, 0.3)
	ts = m.Load(ts, 20, 0, 7, tx)
	for i := 0; i < NumCompartments; i++ {
		if ts.He[i] <= 0 {
			t.Errorf("compartment %d: no helium uptake", i)
		}
		if ts.N2[i] < 0 {
			t.Errorf("compartment %d: negative nitrogen", i)
		}
	}
	// helium equilibrates faster than nitrogen
	if ts.He[0]/InspiredPressure(7, tx.He) <= ts.N2[0]/InspiredPressure(7, tx.N2) {
		t.Error("helium did not load faster than nitrogen")
	}
}

// ZH-L16C tightens the nitrogen A coefficients, so for the same loading
// its ceiling must never be shallower than ZH-L16B's.
func TestVariantConservatism(t *testing.T) {
	b, _ := NewModel(ZHL16B)
	c, _ := NewModel(ZHL16C)
	ts := b.Init(1.01325, 0.3)
	for _, depth := range []float64{20, 30, 40} {
		loaded := b.Load(ts, 25, 0, 1.01325+depth*0.09985, Air)
		if c.CeilingLimit(loaded, 0.3) < b.CeilingLimit(loaded, 0.3) {
			t.Errorf("depth %vm: ZH-L16C ceiling shallower than ZH-L16B", depth)
		}
	}
}
