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

// BlueNoise returns a pseudo-random value in the range [0, 1) which only
// depends on the pixel coordinates.
//
// The value is computed by an integer hash, so the noise pattern is
// identical on every run and on every platform.
func BlueNoise(x, y int) float64 {
	n := uint32(x)*374761393 + uint32(y)*668265263
	n ^= n >> 13
	n *= 1274126177
	return float64(n&0xffff) / 0x10000
}
