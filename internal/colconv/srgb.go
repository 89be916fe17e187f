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

package colconv

import "math"

// SRGB8ToLinear decodes an 8-bit sRGB component to linear light in the
// range [0, 1].
func SRGB8ToLinear(v uint8) float64 {
	x := float64(v) / 255
	if x <= 0.04045 {
		return x / 12.92
	}
	return math.Pow((x+0.055)/1.055, 2.4)
}

// LinearToSRGB8 encodes a linear light value as an 8-bit sRGB component.
// Values outside [0, 1] are clamped to 0 and 255, respectively.
func LinearToSRGB8(x float64) uint8 {
	var v float64
	if x <= 0.0031308 {
		v = 255 * 12.92 * x
	} else {
		v = 255 * (1.055*math.Pow(x, 1/2.4) - 0.055)
	}
	return uint8(clamp(math.Round(v), 0, 255))
}

// SRGB8ToLinearRGB decodes all three components of an sRGB color.
func SRGB8ToLinearRGB(r, g, b uint8) [3]float64 {
	return [3]float64{SRGB8ToLinear(r), SRGB8ToLinear(g), SRGB8ToLinear(b)}
}

// Luma8 returns the ITU-R BT.709 luma of an 8-bit sRGB color, rounded to
// the nearest integer.  The weights are applied to the gamma encoded
// values, so this is not the same as relative luminance.
func Luma8(r, g, b uint8) uint8 {
	y := 0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)
	return uint8(clamp(math.Round(y), 0, 255))
}

// Clamp01 restricts x to the unit interval.
func Clamp01(x float64) float64 {
	return clamp(x, 0, 1)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
