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

// BisectFirstStop finds the first decompression stop with a binary
// search over ascent time, after Baker's gfdeco.f. Candidate ascent
// times are k*t3m + dt, where t3m is the time to ascend 3m and dt the
// remainder aligning candidate depths to multiples of 3m; the largest k
// whose single-segment ascent keeps the ceiling at bay gives the stop.
//
// Unlike the stepwise chase it evaluates each candidate as one Schreiner
// segment from the starting depth and performs no projected-ascent
// deepening, so it can place the first stop one step shallower on deep
// trimix profiles.
type BisectFirstStop struct{}

// FindFirstStop implements FirstStopFinder.
func (BisectFirstStop) FindFirstStop(e *Engine, start Step, absP float64, gas GasMix) (Step, bool, error) {
	targetDepth := e.ToDepth(absP)
	cur := e.ToDepth(start.AbsP)

	t3m := 3 / e.AscentRate
	total := (cur - targetDepth) / e.AscentRate
	n := int((total + depthEps) / t3m)
	dt := total - float64(n)*t3m

	k := bisectFind(n, func(k int) bool {
		return e.canAscend(start, float64(k)*t3m+dt, gas)
	})
	if k == n {
		return Step{}, false, nil
	}
	// keep the stop at or below the configured last stop depth
	if stopDepth := targetDepth + float64(n-k)*3; stopDepth < e.LastStopDepth-depthEps {
		k = n - int((e.LastStopDepth-targetDepth)/3)
	}
	if k <= 0 {
		// already in the decompression zone
		return start, true, nil
	}
	stop := e.stepNextAscent(start, float64(k)*t3m+dt, gas)
	return stop, true, nil
}
