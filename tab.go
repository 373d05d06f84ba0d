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

import "math"

// TabExp is an ExpCalculator backed by a table of precomputed exp(-k*t)
// values, for hosts where transcendental functions are expensive. The
// table keys are the Cartesian product of the model's compartment decay
// constants and the segment times the engine produces: whole minutes up
// to MaxTime for constant-depth segments and multiples of the linear
// segment quantum for ascents and descents. Lookups outside the table
// fall back to math.Exp.
type TabExp struct {
	// Quantum is the time granularity [min] of tabulated linear
	// segments.
	Quantum float64
	// MaxTime is the longest tabulated exposure [min].
	MaxTime float64

	values map[tabKey]float64
}

type tabKey struct {
	k int64 // decay constant in nano-units
	t int64 // time in quanta
}

func (e *TabExp) key(k, t float64) (tabKey, bool) {
	q := t / e.Quantum
	qi := math.Round(q)
	if math.Abs(q-qi) > 1e-9*math.Max(1, q) {
		return tabKey{}, false
	}
	return tabKey{k: int64(math.Round(k * 1e9)), t: int64(qi)}, true
}

// NewTabExp builds the exp table for a model. The quantum must evenly
// divide one minute so constant-depth segments are covered.
func NewTabExp(m *Model, quantum, maxTime float64) *TabExp {
	e := &TabExp{
		Quantum: quantum,
		MaxTime: maxTime,
		values:  make(map[tabKey]float64),
	}
	n2K, heK := m.DecayConstants()
	for _, ks := range [2][NumCompartments]float64{n2K, heK} {
		for _, k := range ks {
			for i := 1; float64(i)*quantum <= maxTime+1e-9; i++ {
				t := float64(i) * quantum
				if key, ok := e.key(k, t); ok {
					e.values[key] = math.Exp(-k * t)
				}
			}
		}
	}
	return e
}

// ExpMinusKt implements ExpCalculator.
func (e *TabExp) ExpMinusKt(k, t float64) float64 {
	if key, ok := e.key(k, t); ok {
		if v, ok := e.values[key]; ok {
			return v
		}
	}
	return math.Exp(-k * t)
}
