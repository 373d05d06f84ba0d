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

package deepstoputil

import (
	"fmt"

	"github.com/deepstop/deepstop"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// plotCmd renders the planned dive profile to an image file.
var plotCmd = &cobra.Command{
	Use:   "plot [depth] [time]",
	Short: "Plot a dive profile.",
	Long: `plot calculates the dive profile for the given bottom depth [m] and
bottom time [min] and renders the depth versus run time curve to an image
file. The output format follows the file extension (png, svg, pdf, ...).`,
	Args:              cobra.ExactArgs(2),
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		depth, time, err := parseDive(args)
		if err != nil {
			return err
		}
		engine, err := EngineFromConfig(Cfg)
		if err != nil {
			return err
		}
		steps, err := engine.Calculate(depth, time)
		if err != nil {
			return err
		}
		// sample every 0.25 min so stops render as flat shelves
		steps = deepstop.Conveyor{TimeDelta: 0.25}.Expand(engine, steps)

		name := Cfg.GetString("output")
		if err := plotProfile(engine, steps, depth, time, name); err != nil {
			return err
		}
		logrus.WithField("file", name).Info("wrote dive profile plot")
		return nil
	},
}

func plotProfile(engine *deepstop.Engine, steps []deepstop.Step, depth, time float64, name string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%vm for %vmin, GF %.0f/%.0f",
		depth, time, engine.GFLow*100, engine.GFHigh*100)
	p.X.Label.Text = "run time [min]"
	p.Y.Label.Text = "depth [m]"
	p.Add(plotter.NewGrid())

	xys := make(plotter.XYs, len(steps))
	for i, s := range steps {
		xys[i].X = s.Time
		xys[i].Y = -engine.ToDepth(s.AbsP)
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return err
	}
	p.Add(line)

	return p.Save(8*vg.Inch, 4*vg.Inch, name)
}
