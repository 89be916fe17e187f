// seehuhn.de/go/voxelprint - halftoning for multi-material voxel printers
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package palette

import (
	"fmt"

	"seehuhn.de/go/voxelprint/internal/colconv"
)

// Metric selects the color difference used to rank palette entries.
type Metric int

const (
	// CIE76 ranks by squared Euclidean distance in L*a*b*.
	CIE76 Metric = iota

	// CIEDE2000 ranks by the CIEDE2000 color difference.
	CIEDE2000
)

func (m Metric) String() string {
	switch m {
	case CIE76:
		return "cie76"
	case CIEDE2000:
		return "ciede2000"
	default:
		return fmt.Sprintf("Metric(%d)", int(m))
	}
}

// ParseMetric converts a metric name, as returned by [Metric.String], back
// to a Metric.
func ParseMetric(s string) (Metric, error) {
	switch s {
	case "cie76":
		return CIE76, nil
	case "ciede2000":
		return CIEDE2000, nil
	}
	return 0, fmt.Errorf("palette: unknown metric %q", s)
}

// Nearest returns the index of the palette entry closest to the given
// L*a*b* color.  Ties are resolved in favour of the entry declared first.
func (p *Palette) Nearest(lab colconv.Lab, m Metric) int {
	dist := colconv.DistanceSquared
	if m == CIEDE2000 {
		dist = colconv.DeltaE00
	}

	best := 0
	bestDist := dist(lab, p.entries[0].Lab)
	for i := 1; i < len(p.entries); i++ {
		d := dist(lab, p.entries[i].Lab)
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}
