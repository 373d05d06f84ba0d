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

// WaterVapourPressure is the pressure of water vapour in the lungs [bar].
const WaterVapourPressure = 0.0627

// ExpCalculator computes exp(-k*t) for a tissue compartment decay
// constant k [1/min] and an exposure time t [min]. The default
// implementation calls math.Exp; a table-backed implementation can be
// substituted to avoid transcendental function cost.
type ExpCalculator interface {
	ExpMinusKt(k, t float64) float64
}

// MathExp is the default ExpCalculator backed by math.Exp.
type MathExp struct{}

// ExpMinusKt returns exp(-k*t).
func (MathExp) ExpMinusKt(k, t float64) float64 {
	return math.Exp(-k * t)
}

// Schreiner calculates tissue compartment gas loading after exposure to a
// linear pressure change (Schreiner equation, [mpdfd] chapter 5)
//
//	P(t) = Pi0 + R*(t - 1/k) - (Pi0 - P0 - R/k)*exp(-k*t)
//
// where Pi0 is the initial inspired partial pressure of the gas [bar],
// p0 the initial compartment pressure [bar], rate the rate of inspired
// pressure change [bar/min] (negative during ascent), k the compartment
// decay constant [1/min] and t the exposure time [min].
func Schreiner(pi0, p0, rate, k, t float64, exp ExpCalculator) float64 {
	return pi0 + rate*(t-1/k) - (pi0-p0-rate/k)*exp.ExpMinusKt(k, t)
}

// Haldane calculates tissue compartment gas loading after exposure at
// constant pressure (Haldane equation)
//
//	P(t) = P0 + (Pi - P0)*(1 - exp(-k*t))
//
// where pi is the inspired partial pressure of the gas [bar], p0 the
// initial compartment pressure [bar], k the compartment decay constant
// [1/min] and t the exposure time [min].
func Haldane(pi, p0, k, t float64, exp ExpCalculator) float64 {
	return p0 + (pi-p0)*(1-exp.ExpMinusKt(k, t))
}

// InspiredPressure returns the inspired partial pressure of a gas with
// fraction f breathed at absolute pressure absP, accounting for water
// vapour in the lungs.
func InspiredPressure(absP, f float64) float64 {
	return (absP - WaterVapourPressure) * f
}
