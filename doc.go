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

// Package deepstop plans staged decompression for open-circuit dives
// using the Bühlmann ZH-L16 inert-gas model with Erik Baker's gradient
// factors (ZH-L16B-GF and ZH-L16C-GF variants).
//
// The Engine type turns a bottom depth, a bottom time and a list of
// breathing gas mixes into the full sequence of dive steps — descent,
// bottom segment, gas switches, free ascent and the staged decompression
// stops required before surfacing — together with the inert-gas tissue
// loading at every step:
//
//	engine, err := deepstop.NewEngine(deepstop.ZHL16B)
//	if err != nil {
//		// unknown model variant
//	}
//	engine.AddGas(0, 0.21, 0)            // air from the surface
//	steps, err := engine.Calculate(40, 35)
//	if err != nil {
//		// configuration or planning error; no steps were produced
//	}
//	for _, stop := range engine.DecoTable {
//		fmt.Println(stop.Depth, stop.Time)
//	}
//
// All pressures are absolute and in bar, depths in meters and times in
// minutes. Tissue states are immutable values; every model operation
// returns a new state, so intermediate results are safe to keep or share.
package deepstop
