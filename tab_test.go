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
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestTabExpMatchesMath(t *testing.T) {
	m, _ := NewModel(ZHL16B)
	tab := NewTabExp(m, 0.1, 180)
	n2K, heK := m.DecayConstants()
	for _, ks := range [][NumCompartments]float64{n2K, heK} {
		for _, k := range ks {
			for _, minutes := range []float64{0.1, 0.3, 1, 2, 64, 180} {
				got := tab.ExpMinusKt(k, minutes)
				want := math.Exp(-k * minutes)
				if !scalar.EqualWithinAbs(got, want, 1e-12) {
					t.Fatalf("k=%v t=%v: %v != %v", k, minutes, got, want)
				}
			}
		}
	}
}

func TestTabExpFallback(t *testing.T) {
	m, _ := NewModel(ZHL16B)
	tab := NewTabExp(m, 1, 64)
	// off-grid time and foreign decay constant both fall back to math.Exp
	for _, tc := range []struct{ k, t float64 }{
		{math.Ln2 / 5, 0.123456}, {0.5, 7}, {math.Ln2 / 5, 1e6},
	} {
		if got := tab.ExpMinusKt(tc.k, tc.t); got != math.Exp(-tc.k*tc.t) {
			t.Errorf("k=%v t=%v: %v", tc.k, tc.t, got)
		}
	}
}

// A dive planned with the table-backed calculator must agree with the
// default calculator.
func TestTabExpDive(t *testing.T) {
	def := testEngine(t, ZHL16B)
	def.AddGas(0, 0.21, 0)
	want, err := def.Calculate(40, 35)
	if err != nil {
		t.Fatal(err)
	}

	e := testEngine(t, ZHL16B)
	e.AddGas(0, 0.21, 0)
	e.Model.Exp = NewTabExp(e.Model, 0.1, 1440)
	got, err := e.Calculate(40, 35)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(want) {
		t.Fatalf("%d steps with table exp, %d with math.Exp", len(got), len(want))
	}
	for i := range got {
		if got[i].Phase != want[i].Phase ||
			!scalar.EqualWithinAbs(got[i].AbsP, want[i].AbsP, 1e-9) ||
			!scalar.EqualWithinAbs(got[i].Time, want[i].Time, 1e-6) {
			t.Errorf("step %d differs: %+v vs %+v", i, got[i], want[i])
		}
	}
	for i := range e.DecoTable {
		if e.DecoTable[i] != def.DecoTable[i] {
			t.Errorf("stop %d differs: %+v vs %+v", i, e.DecoTable[i], def.DecoTable[i])
		}
	}
}
