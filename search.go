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
	"fmt"
	"math"
)

// stopSearchStep is the coarse step [min] of the linear scan preceding
// the bisection in the stop length search.
const stopSearchStep = 64

// maxStopLength bounds the stop length search [min]; a stop this long
// means the off-gassing gradient at the stop is too small to ever clear
// the next stop.
const maxStopLength = 1440

// FirstStopFinder locates the first decompression stop during an ascent
// from the start step toward the target absolute pressure absP (the
// surface or a gas switch depth, at a multiple of 3m). On success the
// returned step is the first stop — depth a multiple of 3m, tissues
// advanced by the ascent to it. found is false when the ascent to the
// target requires no stop; the caller then performs the ascent itself.
type FirstStopFinder interface {
	FindFirstStop(e *Engine, start Step, absP float64, gas GasMix) (stop Step, found bool, err error)
}

// StepwiseFirstStop finds the first decompression stop by chasing the
// ascent ceiling: ascend to the stop indicated by the current ceiling,
// reload tissues, and repeat until the ceiling stops retreating. It is
// the default finder and the more conservative of the two, as each
// intermediate reload accounts for on-gassing during the ascent itself.
type StepwiseFirstStop struct{}

// FindFirstStop implements FirstStopFinder.
func (StepwiseFirstStop) FindFirstStop(e *Engine, start Step, absP float64, gas GasMix) (Step, bool, error) {
	targetDepth := e.ToDepth(absP)
	step := start
	for {
		ceiling := e.Model.CeilingLimit(step.Tissues, step.Tissues.GF)
		stopDepth := roundUp3(e.ToDepth(ceiling))
		if stopDepth <= targetDepth+depthEps {
			return Step{}, false, nil
		}
		if stopDepth < e.LastStopDepth {
			stopDepth = e.LastStopDepth
		}

		cur := e.ToDepth(step.AbsP)
		if stopDepth >= cur-depthEps {
			if stopDepth > cur+depthEps {
				return Step{}, false, fmt.Errorf(
					"%w: ceiling %.2fm is below the current depth %.2fm on %v",
					ErrCalc, e.ToDepth(ceiling), cur, gas)
			}
			return step, true, nil
		}

		// Ascend to the tentative stop. If on-gassing during the
		// projected ascent raises the ceiling above the stop, deepen the
		// stop by one step and retry.
		for {
			trial := e.stepNextAscent(step, (cur-stopDepth)/e.AscentRate, gas)
			if e.Model.CeilingLimit(trial.Tissues, trial.Tissues.GF) <= trial.AbsP+Epsilon {
				step = trial
				break
			}
			stopDepth += 3
			if stopDepth >= cur-depthEps {
				return Step{}, false, fmt.Errorf(
					"%w: projected ascent from %.2fm on %v cannot reach a tolerable stop",
					ErrCalc, cur, gas)
			}
		}
	}
}

// stopLength returns the length [min] of the decompression stop at step
// s: the smallest multiple of the stop granularity after which the
// ascent to the next stop depth keeps the ceiling, under the next stop's
// gradient factor, at or below the next stop's pressure. The search is a
// coarse linear scan followed by a bisection of the last coarse
// interval.
func (e *Engine) stopLength(s Step, gas GasMix, gfNext, nextDepth float64) (float64, error) {
	pNext := e.ToPressure(nextDepth)
	ascentTime := (e.ToDepth(s.AbsP) - nextDepth) / e.AscentRate
	rate := -e.AscentRate * e.MeterToBar
	valid := func(t float64) bool {
		ts := e.Model.Load(s.Tissues, t, 0, s.AbsP, gas)
		ts = e.Model.Load(ts, ascentTime, rate, s.AbsP, gas)
		return e.Model.CeilingLimit(ts, gfNext) <= pNext+Epsilon
	}

	base := 0.0
	for !valid(base + stopSearchStep) {
		base += stopSearchStep
		if base > maxStopLength {
			return 0, fmt.Errorf(
				"%w: stop at %.0fm on %v does not off-gas enough to clear %.0fm",
				ErrCalc, e.ToDepth(s.AbsP), gas, nextDepth)
		}
	}
	// valid(base) is false, valid(base+stopSearchStep) is true; bisect
	// for the smallest whole minute in between.
	k := bisectFind(stopSearchStep-1, func(k int) bool {
		return !valid(base + float64(k))
	})
	length := base + float64(k) + 1

	length = math.Ceil(length/e.MinStopTime) * e.MinStopTime
	if length < e.MinStopTime {
		length = e.MinStopTime
	}
	return length, nil
}

// bisectFind returns the largest k in [1, n] for which f(k) is true, or
// 0 when f(1) is already false. f must be monotone: true on a prefix of
// the range, false after.
func bisectFind(n int, f func(int) bool) int {
	lo, hi := 1, n+1
	for lo < hi {
		k := (lo + hi) / 2
		if f(k) {
			lo = k + 1
		} else {
			hi = k
		}
	}
	return hi - 1
}
