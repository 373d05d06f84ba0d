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
	"encoding/csv"
	"io"
	"strconv"
)

// InfoTissue is the state of one tissue compartment at a dive step.
// Pressure is the total inert gas pressure [bar], Limit the minimum
// tolerated ambient pressure at the full M-value (gf = 1) and GFLimit
// the same under the gradient factor GF in force at the step.
type InfoTissue struct {
	No       int
	Pressure float64
	Limit    float64
	GF       float64
	GFLimit  float64
}

// InfoSample is one dive step enriched with per-compartment detail.
type InfoSample struct {
	DiveNo   int
	Depth    float64
	Time     float64
	Pressure float64
	Gas      GasMix
	Phase    Phase
	Tissues  [NumCompartments]InfoTissue
}

// Info converts a dive step into a rich information record using the
// engine's model.
func (e *Engine) Info(diveNo int, s Step) InfoSample {
	limit := e.Model.TissueLimit(s.Tissues, 1)
	gfLimit := e.Model.TissueLimit(s.Tissues, s.Tissues.GF)
	sample := InfoSample{
		DiveNo:   diveNo,
		Depth:    e.ToDepth(s.AbsP),
		Time:     s.Time,
		Pressure: s.AbsP,
		Gas:      s.Gas,
		Phase:    s.Phase,
	}
	for i := range sample.Tissues {
		sample.Tissues[i] = InfoTissue{
			No:       i + 1,
			Pressure: s.Tissues.N2[i] + s.Tissues.He[i],
			Limit:    limit[i],
			GF:       s.Tissues.GF,
			GFLimit:  gfLimit[i],
		}
	}
	return sample
}

// csvHeader is the column layout of exported dive profiles, one row per
// tissue compartment per dive step.
var csvHeader = []string{
	"dive_no", "time", "depth", "pressure", "gas_mix",
	"tissue_no", "tissue_pressure", "tissue_gf_limit", "tissue_limit",
}

// WriteCSV writes dive information records to w in CSV form.
func WriteCSV(w io.Writer, samples []InfoSample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 4, 64) }
	for _, s := range samples {
		for _, t := range s.Tissues {
			err := cw.Write([]string{
				strconv.Itoa(s.DiveNo),
				f(s.Time),
				f(s.Depth),
				f(s.Pressure),
				s.Gas.String(),
				strconv.Itoa(t.No),
				f(t.Pressure),
				f(t.GFLimit),
				f(t.Limit),
			})
			if err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
