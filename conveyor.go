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

// Conveyor expands a planned dive into fixed-interval samples for
// plotting and export. The engine emits one logical step per segment;
// the conveyor re-emits each segment as samples every TimeDelta minutes
// by advancing tissue state with partial durations, ending with the
// segment's own step.
type Conveyor struct {
	// TimeDelta is the sample interval [min]. Zero or negative leaves
	// the plan unexpanded.
	TimeDelta float64
}

// Expand subdivides the dive steps planned by engine e. Start and
// gas_mix steps have no duration and pass through unchanged.
func (c Conveyor) Expand(e *Engine, steps []Step) []Step {
	if c.TimeDelta <= 0 || len(steps) == 0 {
		return steps
	}
	out := []Step{steps[0]}
	for i := 1; i < len(steps); i++ {
		prev, s := steps[i-1], steps[i]
		duration := s.Time - prev.Time
		if duration <= c.TimeDelta+depthEps {
			out = append(out, s)
			continue
		}
		rate := (s.AbsP - prev.AbsP) / duration
		sub := prev
		sub.Phase = s.Phase
		sub.Gas = s.Gas
		sub.PrevGas = GasMix{}
		sub.Tissues.GF = s.Tissues.GF
		for t := c.TimeDelta; t < duration-depthEps; t += c.TimeDelta {
			sub.Tissues = e.Model.Load(sub.Tissues, c.TimeDelta, rate, sub.AbsP, s.Gas)
			sub.AbsP += rate * c.TimeDelta
			sub.Time += c.TimeDelta
			out = append(out, sub)
		}
		out = append(out, s)
	}
	return out
}
