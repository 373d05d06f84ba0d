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
	"bytes"
	"encoding/csv"
	"strconv"
	"testing"
)

func TestInfoSample(t *testing.T) {
	e := testEngine(t, ZHL16B)
	e.AddGas(0, 0.21, 0)
	steps, err := e.Calculate(40, 35)
	if err != nil {
		t.Fatal(err)
	}
	s := steps[len(steps)-1]
	sample := e.Info(1, s)
	if sample.Phase != s.Phase || sample.Time != s.Time || sample.Pressure != s.AbsP {
		t.Errorf("sample header mismatch: %+v", sample)
	}
	for i, tissue := range sample.Tissues {
		if tissue.No != i+1 {
			t.Errorf("tissue %d numbered %d", i, tissue.No)
		}
		if tissue.Pressure != s.Tissues.N2[i]+s.Tissues.He[i] {
			t.Errorf("tissue %d: pressure %v", i, tissue.Pressure)
		}
		// the gradient factor limit is never more permissive than the
		// full M-value limit
		if tissue.GFLimit < tissue.Limit {
			t.Errorf("tissue %d: gf limit %v below full limit %v", i, tissue.GFLimit, tissue.Limit)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	e := testEngine(t, ZHL16B)
	e.AddGas(0, 0.21, 0)
	steps, err := e.Calculate(18, 30)
	if err != nil {
		t.Fatal(err)
	}
	samples := make([]InfoSample, len(steps))
	for i, s := range steps {
		samples[i] = e.Info(1, s)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, samples); err != nil {
		t.Fatal(err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if want := 1 + len(steps)*NumCompartments; len(records) != want {
		t.Fatalf("%d rows, want %d", len(records), want)
	}
	if records[0][0] != "dive_no" || records[0][5] != "tissue_no" {
		t.Errorf("unexpected header: %v", records[0])
	}
	for _, rec := range records[1:] {
		if rec[4] != "air" {
			t.Errorf("gas column %q, want air", rec[4])
		}
		no, err := strconv.Atoi(rec[5])
		if err != nil || no < 1 || no > NumCompartments {
			t.Errorf("bad tissue number %q", rec[5])
		}
		if _, err := strconv.ParseFloat(rec[6], 64); err != nil {
			t.Errorf("bad tissue pressure %q", rec[6])
		}
	}
}
