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

// Reference values computed for a 10m depth change over one minute
// (pressure rate 1 bar/min) on a compartment with a 5 minute half-life.
func TestSchreiner(t *testing.T) {
	k := math.Ln2 / 5.0
	tests := []struct {
		name string
		f    float64 // inert gas fraction
		rate float64 // pressure change rate [bar/min]
		want float64
	}{
		{"air ascent", 0.79, -1, 2.96198},
		{"air descent", 0.79, 1, 3.06661},
		{"EAN32 ascent", 0.68, -1, 2.91320},
		{"EAN32 descent", 0.68, 1, 3.00326},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			pi0 := InspiredPressure(4, test.f)
			v := Schreiner(pi0, 3, test.rate*test.f, k, 1, MathExp{})
			if !scalar.EqualWithinAbs(v, test.want, 1e-4) {
				t.Errorf("got %v, want %v", v, test.want)
			}
		})
	}
}

func TestHaldaneEquilibrium(t *testing.T) {
	k := math.Ln2 / 5.0
	// after many half-lives the compartment pressure approaches the
	// inspired pressure
	v := Haldane(2.5, 1.0, k, 600, MathExp{})
	if !scalar.EqualWithinAbs(v, 2.5, 1e-9) {
		t.Errorf("got %v, want equilibrium at 2.5", v)
	}
	// a single half-life halves the gap
	v = Haldane(2.0, 1.0, k, 5, MathExp{})
	if !scalar.EqualWithinAbs(v, 1.5, 1e-12) {
		t.Errorf("got %v, want 1.5 after one half-life", v)
	}
}

func TestHaldaneMonotonic(t *testing.T) {
	k := math.Ln2 / 27.0
	prev := 1.0
	for minutes := 1.0; minutes <= 64; minutes *= 2 {
		v := Haldane(3.0, 1.0, k, minutes, MathExp{})
		if v <= prev {
			t.Fatalf("on-gassing not monotone: %v after %v min (prev %v)", v, minutes, prev)
		}
		prev = v
	}
	prev = 3.0
	for minutes := 1.0; minutes <= 64; minutes *= 2 {
		v := Haldane(1.0, 3.0, k, minutes, MathExp{})
		if v >= prev {
			t.Fatalf("off-gassing not monotone: %v after %v min (prev %v)", v, minutes, prev)
		}
		prev = v
	}
}

func TestInspiredPressure(t *testing.T) {
	v := InspiredPressure(1.01325, 0.79)
	if !scalar.EqualWithinAbs(v, 0.75092, 1e-4) {
		t.Errorf("got %v", v)
	}
}
