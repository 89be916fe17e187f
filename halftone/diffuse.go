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

package halftone

// tap is one entry of an error diffusion kernel.
type tap struct {
	dx, dy int
	weight float64
}

// floydSteinberg is used when a row is scanned from left to right.
var floydSteinberg = [4]tap{
	{1, 0, 7.0 / 16},
	{-1, 1, 3.0 / 16},
	{0, 1, 5.0 / 16},
	{1, 1, 1.0 / 16},
}

// floydSteinbergReverse is the horizontal mirror image of floydSteinberg,
// used when a row is scanned from right to left.
var floydSteinbergReverse = [4]tap{
	{-1, 0, 7.0 / 16},
	{1, 1, 3.0 / 16},
	{0, 1, 5.0 / 16},
	{-1, 1, 1.0 / 16},
}

func kernel(reverse bool) *[4]tap {
	if reverse {
		return &floydSteinbergReverse
	}
	return &floydSteinberg
}

// diffuse distributes the residual of pixel (x, y) to its unvisited
// neighbours.  Targets outside the image, and void pixels, are skipped.
func (e *engine) diffuse(x, y int, residual [3]float64, reverse bool) {
	for _, t := range kernel(reverse) {
		xx := x + t.dx
		yy := y + t.dy
		if xx < 0 || xx >= e.width || yy >= e.height {
			continue
		}
		j := yy*e.width + xx
		if e.void[j] {
			continue
		}
		cell := &e.buf[j]
		cell[0] += residual[0] * t.weight
		cell[1] += residual[1] * t.weight
		cell[2] += residual[2] * t.weight
	}
}
