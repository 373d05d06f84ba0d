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
	"strings"

	"github.com/spf13/cast"
)

// GasMix is a breathing gas mix described by its oxygen, nitrogen and
// helium mole fractions, plus the depth at which the diver switches to it
// during ascent. The mix breathed at the bottom is anchored at depth 0.
type GasMix struct {
	O2 float64 // oxygen fraction
	N2 float64 // nitrogen fraction
	He float64 // helium fraction

	// SwitchDepth is the depth [m] at which the mix is taken into use.
	SwitchDepth float64
}

// Air is the default surface and bottom mix.
var Air = GasMix{O2: 0.21, N2: 0.79, He: 0}

// NewGasMix creates a gas mix from oxygen and helium fractions; the
// nitrogen fraction is the remainder. The oxygen fraction must be within
// (0, 1], the helium fraction non-negative and o2+he must not exceed 1.
func NewGasMix(switchDepth, o2, he float64) (GasMix, error) {
	mix := GasMix{O2: o2, N2: 1 - o2 - he, He: he, SwitchDepth: switchDepth}
	if err := mix.Validate(); err != nil {
		return GasMix{}, err
	}
	return mix, nil
}

// Validate checks that the mix fractions are non-negative, that oxygen is
// present and that the fractions sum to 1.
func (g GasMix) Validate() error {
	if g.O2 <= 0 || g.O2 > 1 || g.N2 < 0 || g.He < 0 {
		return fmt.Errorf("%w: invalid gas fractions in %v", ErrConfig, g)
	}
	if math.Abs(g.O2+g.N2+g.He-1) > 1e-6 {
		return fmt.Errorf("%w: gas fractions of %v do not sum to 1", ErrConfig, g)
	}
	if g.SwitchDepth < 0 {
		return fmt.Errorf("%w: negative switch depth %vm", ErrConfig, g.SwitchDepth)
	}
	return nil
}

// String renders the mix in common diving notation: "air", "oxygen",
// "EANxx" for nitrox and "xx/yy" for trimix.
func (g GasMix) String() string {
	o2 := int(math.Round(g.O2 * 100))
	he := int(math.Round(g.He * 100))
	switch {
	case he > 0:
		return fmt.Sprintf("%d/%d", o2, he)
	case o2 == 100:
		return "oxygen"
	case o2 == 21:
		return "air"
	default:
		return fmt.Sprintf("EAN%d", o2)
	}
}

// ParseGasMix parses a gas mix specification of the form "o2,he@depth"
// with o2 and he in percent, e.g. "21,0@0" for air at the surface,
// "50,0@21" for EAN50 taken at 21m or "18,45@0" for trimix 18/45.
func ParseGasMix(s string) (GasMix, error) {
	frac, depth, ok := strings.Cut(s, "@")
	if !ok {
		return GasMix{}, fmt.Errorf("%w: gas mix %q is missing a switch depth", ErrConfig, s)
	}
	o2s, hes, ok := strings.Cut(frac, ",")
	if !ok {
		hes = "0"
	}
	o2, err := cast.ToFloat64E(strings.TrimSpace(o2s))
	if err != nil {
		return GasMix{}, fmt.Errorf("%w: gas mix %q: bad oxygen fraction: %v", ErrConfig, s, err)
	}
	he, err := cast.ToFloat64E(strings.TrimSpace(hes))
	if err != nil {
		return GasMix{}, fmt.Errorf("%w: gas mix %q: bad helium fraction: %v", ErrConfig, s, err)
	}
	d, err := cast.ToFloat64E(strings.TrimSpace(depth))
	if err != nil {
		return GasMix{}, fmt.Errorf("%w: gas mix %q: bad switch depth: %v", ErrConfig, s, err)
	}
	return NewGasMix(d, o2/100, he/100)
}
