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

// Package deepstoputil wires the deepstop decompression planner into a
// command line interface.
package deepstoputil

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/deepstop/deepstop"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	Cfg = viper.New()
	Cfg.SetEnvPrefix("DEEPSTOP")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	Cfg.AutomaticEnv()

	// Options are the configuration options available to deepstop.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "model",
			usage: `
              model specifies the decompression model variant, either
              zh-l16b-gf or zh-l16c-gf.`,
			shorthand:  "m",
			defaultVal: string(deepstop.ZHL16B),
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "gf-low",
			usage: `
              gf-low specifies the gradient factor in force at the first
              decompression stop, as a percentage.`,
			defaultVal: 30,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "gf-high",
			usage: `
              gf-high specifies the gradient factor in force at the
              surface, as a percentage.`,
			defaultVal: 85,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "gas-list",
			usage: `
              gas-list specifies the breathing gas mixes as a space
              separated list of o2,he@depth entries with fractions in
              percent, e.g. '21,0@0 50,0@21 100,0@6'. The entry at depth
              0 is the bottom mix.`,
			shorthand:  "l",
			defaultVal: "21,0@0",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "ascent-rate",
			usage: `
              ascent-rate specifies the ascent rate in meters per
              minute.`,
			defaultVal: 10.0,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "descent-rate",
			usage: `
              descent-rate specifies the descent rate in meters per
              minute.`,
			defaultVal: 20.0,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "surface-pressure",
			usage: `
              surface-pressure specifies the absolute pressure at the
              surface in bar.`,
			defaultVal: 1.01325,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "last-stop",
			usage: `
              last-stop specifies the depth of the shallowest
              decompression stop, either 3 or 6 meters.`,
			defaultVal: 3.0,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "time-delta",
			usage: `
              time-delta expands the planned profile into samples every
              time-delta minutes. Zero emits logical steps only.`,
			shorthand:  "t",
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{planCmd.Flags()},
		},
		{
			name: "csv-file",
			usage: `
              csv-file writes per-tissue dive profile records to the
              named CSV file.`,
			shorthand:  "f",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{planCmd.Flags()},
		},
		{
			name: "output",
			usage: `
              output specifies the image file the dive profile plot is
              written to.`,
			shorthand:  "o",
			defaultVal: "profile.png",
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "verbose",
			usage: `
              verbose enables debug logging of the planning process.`,
			shorthand:  "v",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
	}

	for _, option := range options {
		for _, set := range option.flagsets {
			switch v := option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, v, option.usage)
			case float64:
				set.Float64P(option.name, option.shorthand, v, option.usage)
			case int:
				set.IntP(option.name, option.shorthand, v, option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, v, option.usage)
			default:
				panic(fmt.Sprintf("invalid option type %T", option.defaultVal))
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}

	Root.AddCommand(versionCmd)
	Root.AddCommand(planCmd)
	Root.AddCommand(plotCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("deepstop: problem reading configuration file: %v", err)
		}
	}
	if Cfg.GetBool("verbose") {
		logrus.SetLevel(logrus.DebugLevel)
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "deepstop",
	Short: "A staged decompression planner.",
	Long: `deepstop plans staged decompression for open-circuit dives using the
Bühlmann ZH-L16 model with gradient factors (ZH-L16B-GF and ZH-L16C-GF).
Use the subcommands specified below to access the planner functionality.

Configuration can be changed by using a configuration file (and providing
the path to the file using the --config flag), by using command-line
arguments, or by setting environment variables in the format
'DEEPSTOP_var' where 'var' is the name of the variable to be set. Refer to
https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
	SilenceUsage:      true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of deepstop.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("deepstop v%s\n", deepstop.Version)
	},
	DisableAutoGenTag: true,
}

// planCmd plans a dive and prints the dive steps and the decompression
// table.
var planCmd = &cobra.Command{
	Use:   "plan [depth] [time]",
	Short: "Plan a decompression dive.",
	Long: `plan calculates the dive profile for the given bottom depth [m] and
bottom time [min] (the bottom time includes the descent), prints the dive
steps and the decompression table and optionally exports per-tissue
records to a CSV file.`,
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
		if td := Cfg.GetFloat64("time-delta"); td > 0 {
			steps = deepstop.Conveyor{TimeDelta: td}.Expand(engine, steps)
		}

		printPlan(cmd, engine, steps)

		if name := Cfg.GetString("csv-file"); name != "" {
			samples := make([]deepstop.InfoSample, len(steps))
			for i, s := range steps {
				samples[i] = engine.Info(1, s)
			}
			f, err := os.Create(name)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := deepstop.WriteCSV(f, samples); err != nil {
				return err
			}
			logrus.WithField("file", name).Info("wrote dive profile CSV")
		}
		return nil
	},
}

func parseDive(args []string) (depth, time float64, err error) {
	if depth, err = cast.ToFloat64E(args[0]); err != nil {
		return 0, 0, fmt.Errorf("deepstop: bad depth %q: %v", args[0], err)
	}
	if time, err = cast.ToFloat64E(args[1]); err != nil {
		return 0, 0, fmt.Errorf("deepstop: bad bottom time %q: %v", args[1], err)
	}
	return depth, time, nil
}

// EngineFromConfig creates a dive engine from the configuration held by
// cfg.
func EngineFromConfig(cfg *viper.Viper) (*deepstop.Engine, error) {
	engine, err := deepstop.NewEngine(deepstop.ModelVariant(cfg.GetString("model")))
	if err != nil {
		return nil, err
	}
	engine.GFLow = float64(cfg.GetInt("gf-low")) / 100
	engine.GFHigh = float64(cfg.GetInt("gf-high")) / 100
	engine.AscentRate = cfg.GetFloat64("ascent-rate")
	engine.DescentRate = cfg.GetFloat64("descent-rate")
	engine.SurfacePressure = cfg.GetFloat64("surface-pressure")
	engine.LastStopDepth = cfg.GetFloat64("last-stop")
	for _, entry := range strings.Fields(cfg.GetString("gas-list")) {
		mix, err := deepstop.ParseGasMix(entry)
		if err != nil {
			return nil, err
		}
		if err := engine.AddGas(mix.SwitchDepth, mix.O2, mix.He); err != nil {
			return nil, err
		}
	}
	return engine, nil
}

// printPlan writes the dive steps and the decompression table to the
// command output.
func printPlan(cmd *cobra.Command, engine *deepstop.Engine, steps []deepstop.Step) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "phase\tdepth [m]\ttime [min]\tgas\t")
	for _, s := range steps {
		fmt.Fprintf(w, "%s\t%.1f\t%.1f\t%s\t\n",
			s.Phase, engine.ToDepth(s.AbsP), s.Time, s.Gas)
	}
	w.Flush()

	if len(engine.DecoTable) > 0 {
		fmt.Fprintln(cmd.OutOrStdout())
		w = tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "stop [m]\ttime [min]\t")
		for _, stop := range engine.DecoTable {
			fmt.Fprintf(w, "%.0f\t%.0f\t\n", stop.Depth, stop.Time)
		}
		fmt.Fprintf(w, "total\t%.0f\t\n", engine.DecoTable.Total())
		w.Flush()
	}
}
