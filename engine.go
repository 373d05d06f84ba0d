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
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"
)

// The two kinds of failure the planner can report. Configuration errors
// are detected before planning starts; calculation errors are detected
// during planning and carry the offending depth and gas mix in their
// message. In both cases no dive steps are returned.
var (
	ErrConfig = errors.New("deepstop: invalid configuration")
	ErrCalc   = errors.New("deepstop: decompression calculation failed")
)

// Version is the deepstop version.
const Version = "0.9.1"

// Epsilon absorbs floating point noise in ceiling comparisons [bar].
const Epsilon = 1e-6

// depthEps absorbs floating point noise in depth comparisons [m].
const depthEps = 1e-6

// Phase labels the kind of dive step.
type Phase string

// Dive phases in emission order within a plan.
const (
	PhaseStart    Phase = "start"
	PhaseDescent  Phase = "descent"
	PhaseConst    Phase = "const"
	PhaseAscent   Phase = "ascent"
	PhaseDecoStop Phase = "deco_stop"
	PhaseGasMix   Phase = "gas_mix"
)

// Step is one record of the planned dive. AbsP is the absolute pressure
// [bar] at the end of the step, Time the cumulative run time [min] since
// the start of the dive, Gas the mix breathed to reach AbsP and Tissues
// the tissue state at the end of the step. PrevGas is set on gas_mix
// steps only and names the mix breathed before the switch.
type Step struct {
	Phase   Phase
	AbsP    float64
	Time    float64
	Gas     GasMix
	PrevGas GasMix
	Tissues Tissues
}

// DecoStop is one entry of the decompression table: depth [m] and stop
// time [min].
type DecoStop struct {
	Depth float64
	Time  float64
}

// DecoTable is the ordered list of required decompression stops, deepest
// first.
type DecoTable []DecoStop

// Total returns the total decompression time [min].
func (t DecoTable) Total() float64 {
	var sum float64
	for _, s := range t {
		sum += s.Time
	}
	return sum
}

// Engine plans a dive. Configure the exported fields and the gas list,
// then call Calculate. The engine is stateless between runs; only the
// deco table of the most recent plan is retained.
type Engine struct {
	Model *Model

	SurfacePressure float64 // absolute pressure at the surface [bar]
	AscentRate      float64 // [m/min]
	DescentRate     float64 // [m/min]
	GFLow           float64 // gradient factor at the first stop
	GFHigh          float64 // gradient factor at the surface
	LastStopDepth   float64 // depth of the shallowest stop, 3 or 6 [m]
	MeterToBar      float64 // pressure of one meter of water [bar]
	MinStopTime     float64 // deco stop time granularity [min]

	// FirstStop locates the first decompression stop during ascent.
	// Defaults to the stepwise ceiling chase; BisectFirstStop is the
	// alternative.
	FirstStop FirstStopFinder

	Log logrus.FieldLogger

	// DecoTable is the decompression table of the most recent plan.
	DecoTable DecoTable

	gases []GasMix
}

// NewEngine creates a dive engine with default decompression parameters:
// surface pressure 1.01325 bar, ascent 10 m/min, descent 20 m/min,
// gradient factors 30/85, last stop at 3m.
func NewEngine(variant ModelVariant) (*Engine, error) {
	m, err := NewModel(variant)
	if err != nil {
		return nil, err
	}
	return &Engine{
		Model:           m,
		SurfacePressure: 1.01325,
		AscentRate:      10,
		DescentRate:     20,
		GFLow:           0.3,
		GFHigh:          0.85,
		LastStopDepth:   3,
		MeterToBar:      0.09985,
		MinStopTime:     1,
		FirstStop:       StepwiseFirstStop{},
		Log:             logrus.StandardLogger(),
	}, nil
}

// AddGas adds a breathing mix to the gas list. The first mix of a dive
// must have switch depth 0 (the bottom mix); decompression mixes are
// taken into use during ascent at their switch depths.
func (e *Engine) AddGas(switchDepth, o2, he float64) error {
	mix, err := NewGasMix(switchDepth, o2, he)
	if err != nil {
		return err
	}
	e.gases = append(e.gases, mix)
	return nil
}

// Gases returns the configured gas list ordered by ascending switch
// depth.
func (e *Engine) Gases() []GasMix {
	gases := make([]GasMix, len(e.gases))
	copy(gases, e.gases)
	sort.SliceStable(gases, func(i, j int) bool {
		return gases[i].SwitchDepth < gases[j].SwitchDepth
	})
	return gases
}

// ToPressure converts depth [m] to absolute pressure [bar].
func (e *Engine) ToPressure(depth float64) float64 {
	return e.SurfacePressure + depth*e.MeterToBar
}

// ToDepth converts absolute pressure [bar] to depth [m].
func (e *Engine) ToDepth(absP float64) float64 {
	return (absP - e.SurfacePressure) / e.MeterToBar
}

// roundUp3 rounds a depth up to the next multiple of 3m.
func roundUp3(depth float64) float64 {
	return 3 * math.Ceil((depth-depthEps)/3)
}

// roundDown3 rounds a depth down to the previous multiple of 3m.
func roundDown3(depth float64) float64 {
	return 3 * math.Floor((depth+depthEps)/3)
}

// stepNext advances a step at constant depth for time minutes.
func (e *Engine) stepNext(s Step, time float64, gas GasMix, phase Phase) Step {
	ts := e.Model.Load(s.Tissues, time, 0, s.AbsP, gas)
	return Step{Phase: phase, AbsP: s.AbsP, Time: s.Time + time, Gas: gas, Tissues: ts}
}

// stepNextAscent advances a step by ascending at the configured ascent
// rate for time minutes.
func (e *Engine) stepNextAscent(s Step, time float64, gas GasMix) Step {
	rate := -e.AscentRate * e.MeterToBar
	ts := e.Model.Load(s.Tissues, time, rate, s.AbsP, gas)
	return Step{Phase: PhaseAscent, AbsP: s.AbsP + rate*time, Time: s.Time + time, Gas: gas, Tissues: ts}
}

// stepNextDescent advances a step by descending at the configured
// descent rate for time minutes.
func (e *Engine) stepNextDescent(s Step, time float64, gas GasMix) Step {
	rate := e.DescentRate * e.MeterToBar
	ts := e.Model.Load(s.Tissues, time, rate, s.AbsP, gas)
	return Step{Phase: PhaseDescent, AbsP: s.AbsP + rate*time, Time: s.Time + time, Gas: gas, Tissues: ts}
}

// canAscend reports whether ascending from step s for time minutes keeps
// the ascent ceiling at or below the destination pressure.
func (e *Engine) canAscend(s Step, time float64, gas GasMix) bool {
	trial := e.stepNextAscent(s, time, gas)
	return e.Model.CeilingLimit(trial.Tissues, trial.Tissues.GF) <= trial.AbsP+Epsilon
}

func (e *Engine) validate(depth, bottomTime float64) error {
	switch {
	case e.Model == nil:
		return fmt.Errorf("%w: no decompression model", ErrConfig)
	case depth <= 0:
		return fmt.Errorf("%w: bottom depth %vm", ErrConfig, depth)
	case e.AscentRate <= 0:
		return fmt.Errorf("%w: ascent rate %v m/min", ErrConfig, e.AscentRate)
	case e.DescentRate <= 0:
		return fmt.Errorf("%w: descent rate %v m/min", ErrConfig, e.DescentRate)
	case e.MeterToBar <= 0:
		return fmt.Errorf("%w: meter to bar conversion %v", ErrConfig, e.MeterToBar)
	case e.SurfacePressure <= WaterVapourPressure:
		return fmt.Errorf("%w: surface pressure %v bar", ErrConfig, e.SurfacePressure)
	case e.GFLow <= 0 || e.GFLow > 1 || e.GFHigh <= 0 || e.GFHigh > 1 || e.GFLow > e.GFHigh:
		return fmt.Errorf("%w: gradient factors %v/%v", ErrConfig, e.GFLow, e.GFHigh)
	case e.LastStopDepth != 3 && e.LastStopDepth != 6:
		return fmt.Errorf("%w: last stop depth %vm (must be 3 or 6)", ErrConfig, e.LastStopDepth)
	case e.MinStopTime < 1:
		return fmt.Errorf("%w: minimum deco stop time %v min", ErrConfig, e.MinStopTime)
	case len(e.gases) == 0:
		return fmt.Errorf("%w: no gas mixes", ErrConfig)
	case bottomTime <= depth/e.DescentRate:
		return fmt.Errorf("%w: bottom time %v min does not cover the %v min descent",
			ErrConfig, bottomTime, depth/e.DescentRate)
	}
	gases := e.Gases()
	if gases[0].SwitchDepth != 0 {
		return fmt.Errorf("%w: no bottom mix anchored at depth 0", ErrConfig)
	}
	for i, g := range gases {
		if err := g.Validate(); err != nil {
			return err
		}
		if i > 0 && g.SwitchDepth == gases[i-1].SwitchDepth {
			return fmt.Errorf("%w: duplicate gas switch depth %vm", ErrConfig, g.SwitchDepth)
		}
	}
	if e.FirstStop == nil {
		e.FirstStop = StepwiseFirstStop{}
	}
	if e.Log == nil {
		e.Log = logrus.StandardLogger()
	}
	return nil
}

// ascentStage is one leg of the ascent: breathe gas until reaching the
// target depth [m].
type ascentStage struct {
	gas    GasMix
	target float64
}

// ascentStages partitions the ascent from the bottom to the surface into
// stages delimited by gas switch depths. Intermediate stage targets are
// rounded up to a multiple of 3m so the diver arrives slightly below the
// switch depth; the final stage targets the surface.
func (e *Engine) ascentStages(bottomDepth float64) []ascentStage {
	gases := e.Gases()
	var stages []ascentStage
	cur := gases[0]
	// decompression mixes shallower than the bottom, deepest first
	for i := len(gases) - 1; i > 0; i-- {
		g := gases[i]
		if g.SwitchDepth >= bottomDepth {
			continue
		}
		stages = append(stages, ascentStage{gas: cur, target: roundUp3(g.SwitchDepth)})
		cur = g
	}
	stages = append(stages, ascentStage{gas: cur, target: 0})
	return stages
}

// ascentSwitchGas performs the gas switch at the entry of an ascent
// stage: ascend to the switch depth, change the mix, then ascend to the
// next multiple of 3m. The switch is valid only if none of the segments
// violates the ascent ceiling; on violation no steps are returned and
// the caller falls through to the decompression loop at the current
// depth.
func (e *Engine) ascentSwitchGas(s Step, gas GasMix) ([]Step, bool) {
	var steps []Step
	cur := e.ToDepth(s.AbsP)
	if gas.SwitchDepth < cur-depthEps {
		s = e.stepNextAscent(s, (cur-gas.SwitchDepth)/e.AscentRate, s.Gas)
		steps = append(steps, s)
	}
	sw := s
	sw.Phase = PhaseGasMix
	sw.PrevGas = s.Gas
	sw.Gas = gas
	steps = append(steps, sw)
	s = sw
	s.PrevGas = GasMix{}
	if down := roundDown3(gas.SwitchDepth); down < gas.SwitchDepth-depthEps {
		s = e.stepNextAscent(s, (gas.SwitchDepth-down)/e.AscentRate, gas)
		steps = append(steps, s)
	}
	for _, st := range steps {
		if e.Model.CeilingLimit(st.Tissues, st.Tissues.GF) > st.AbsP+Epsilon {
			return nil, false
		}
	}
	return steps, true
}

// gasAt returns the best decompression mix usable at a stop depth: the
// one with the smallest switch depth whose switch stop (switch depth
// rounded down to 3m) is no shallower than the stop.
func (e *Engine) gasAt(current GasMix, depth float64) GasMix {
	best := current
	for _, g := range e.Gases()[1:] {
		if roundDown3(g.SwitchDepth) >= depth-depthEps &&
			(best.SwitchDepth == 0 || g.SwitchDepth < best.SwitchDepth) {
			best = g
		}
	}
	return best
}

// gfAt interpolates the gradient factor in force at a depth, given the
// depth of the first decompression stop: GF low at the first stop, GF
// high at the surface.
func (e *Engine) gfAt(depth, firstStopDepth float64) float64 {
	return e.GFHigh + depth/firstStopDepth*(e.GFLow-e.GFHigh)
}

// Calculate plans a dive to depth [m] with the given bottom time [min],
// which includes the descent. It returns the ordered dive steps and
// records the decompression table on the engine. On error no steps are
// returned and the deco table is empty.
func (e *Engine) Calculate(depth, bottomTime float64) ([]Step, error) {
	e.DecoTable = nil
	if err := e.validate(depth, bottomTime); err != nil {
		return nil, err
	}
	bottomMix := e.Gases()[0]

	start := Step{
		Phase:   PhaseStart,
		AbsP:    e.SurfacePressure,
		Time:    0,
		Gas:     bottomMix,
		Tissues: e.Model.Init(e.SurfacePressure, e.GFLow),
	}
	steps := []Step{start}

	// descent and bottom segment
	descentTime := depth / e.DescentRate
	step := e.stepNextDescent(start, descentTime, bottomMix)
	steps = append(steps, step)
	e.Log.WithFields(logrus.Fields{"depth": depth, "time": descentTime}).
		Debug("descent complete")

	step = e.stepNext(step, bottomTime-descentTime, bottomMix, PhaseConst)
	steps = append(steps, step)

	// no-decompression check: can the diver ascend straight to the
	// surface? A direct ascent is governed by the surface gradient
	// factor.
	surfaceTime := e.ToDepth(step.AbsP) / e.AscentRate
	ndl := step
	ndl.Tissues.GF = e.GFHigh
	if e.canAscend(ndl, surfaceTime, bottomMix) {
		step = e.stepNextAscent(ndl, surfaceTime, bottomMix)
		steps = append(steps, step)
		e.Log.Debug("no decompression required")
		return steps, nil
	}

	// free ascent toward the surface, stage by stage, until the first
	// decompression stop interrupts it
	inDeco := false
	for i, stage := range e.ascentStages(depth) {
		if i > 0 {
			switchSteps, ok := e.ascentSwitchGas(step, stage.gas)
			if !ok {
				e.Log.WithFields(logrus.Fields{"gas": stage.gas.String(), "depth": e.ToDepth(step.AbsP)}).
					Debug("gas switch would violate ceiling; starting deco")
				inDeco = true
				break
			}
			steps = append(steps, switchSteps...)
			step = switchSteps[len(switchSteps)-1]
		}
		stop, found, err := e.FirstStop.FindFirstStop(e, step, e.ToPressure(stage.target), stage.gas)
		if err != nil {
			e.DecoTable = nil
			return nil, err
		}
		if found {
			if stop.Time > step.Time {
				stop.Phase = PhaseAscent
				steps = append(steps, stop)
			}
			step = stop
			inDeco = true
			e.Log.WithFields(logrus.Fields{"depth": e.ToDepth(stop.AbsP)}).
				Debug("first deco stop found")
			break
		}
		if t := (e.ToDepth(step.AbsP) - stage.target) / e.AscentRate; t > 0 {
			step = e.stepNextAscent(step, t, stage.gas)
			steps = append(steps, step)
		}
	}
	if !inDeco {
		return steps, nil
	}

	decoSteps, err := e.decoAscent(step)
	if err != nil {
		e.DecoTable = nil
		return nil, err
	}
	return append(steps, decoSteps...), nil
}

// decoAscent walks the staged decompression from the first stop to the
// surface: at each 3m stop it switches gas if a better mix is available,
// updates the gradient factor per the linear schedule, holds until the
// ascent to the next stop is allowed, then ascends.
func (e *Engine) decoAscent(first Step) ([]Step, error) {
	firstDepth := e.ToDepth(first.AbsP)
	if d := 3 * math.Round(firstDepth/3); math.Abs(d-firstDepth) > 1e-4 {
		return nil, fmt.Errorf("%w: first stop at %vm on %v is not at a multiple of 3m",
			ErrCalc, firstDepth, first.Gas)
	}
	firstDepth = 3 * math.Round(firstDepth/3)
	if firstDepth < e.LastStopDepth {
		return nil, fmt.Errorf("%w: first stop at %vm on %v is above the %vm last stop",
			ErrCalc, firstDepth, first.Gas, e.LastStopDepth)
	}

	var steps []Step
	step := first
	gas := first.Gas
	for depth := firstDepth; depth >= e.LastStopDepth; depth -= 3 {
		if best := e.gasAt(gas, depth); best != gas {
			sw := step
			sw.Phase = PhaseGasMix
			sw.PrevGas = gas
			sw.Gas = best
			steps = append(steps, sw)
			step = sw
			step.PrevGas = GasMix{}
			gas = best
			e.Log.WithFields(logrus.Fields{"gas": gas.String(), "depth": depth}).
				Debug("deco gas switch")
		}

		next := depth - 3
		if next < e.LastStopDepth {
			next = 0
		}
		gf := e.gfAt(depth, firstDepth)
		gfNext := e.gfAt(next, firstDepth)

		step.Tissues.GF = gf
		length, err := e.stopLength(step, gas, gfNext, next)
		if err != nil {
			return nil, err
		}
		step = e.stepNext(step, length, gas, PhaseDecoStop)
		steps = append(steps, step)
		e.DecoTable = append(e.DecoTable, DecoStop{Depth: depth, Time: length})
		e.Log.WithFields(logrus.Fields{"depth": depth, "time": length, "gf": gf}).
			Debug("deco stop")

		step.Tissues.GF = gfNext
		step = e.stepNextAscent(step, (depth-next)/e.AscentRate, gas)
		steps = append(steps, step)
	}
	return steps, nil
}
