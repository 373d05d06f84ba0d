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

// Command deepstop is a command-line interface for the deepstop
// decompression planner.
package main

import (
	"os"

	"github.com/deepstop/deepstop/deepstoputil"
)

func main() {
	if err := deepstoputil.Root.Execute(); err != nil {
		os.Exit(1)
	}
}
