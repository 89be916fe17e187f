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

// Package colconv converts between sRGB, linear RGB, CIE XYZ and CIE
// L*a*b* and measures color differences.
//
// All conversions use the sRGB primaries and the D65 white point.
package colconv

import "math"

// WhitePointD65 is the D65 reference white in CIE 1931 XYZ coordinates,
// normalised to Y = 1.
var WhitePointD65 = [3]float64{0.95047, 1.0, 1.08883}

// Lab is a color in the CIE 1976 L*a*b* color space.
type Lab [3]float64

// LinearToXYZ converts linear sRGB values to CIE XYZ.
func LinearToXYZ(r, g, b float64) (X, Y, Z float64) {
	X = 0.4124564*r + 0.3575761*g + 0.1804375*b
	Y = 0.2126729*r + 0.7151522*g + 0.0721750*b
	Z = 0.0193339*r + 0.1191920*g + 0.9503041*b
	return X, Y, Z
}

// XYZToLab converts CIE XYZ values to L*a*b*, relative to the D65 white
// point.
func XYZToLab(X, Y, Z float64) Lab {
	fx := labF(X / WhitePointD65[0])
	fy := labF(Y / WhitePointD65[1])
	fz := labF(Z / WhitePointD65[2])

	return Lab{
		116*fy - 16,
		500 * (fx - fy),
		200 * (fy - fz),
	}
}

// LinearToLab converts linear sRGB values to L*a*b*.
func LinearToLab(r, g, b float64) Lab {
	return XYZToLab(LinearToXYZ(r, g, b))
}

// SRGB8ToLab converts an 8-bit sRGB color to L*a*b*.
func SRGB8ToLab(r, g, b uint8) Lab {
	return LinearToLab(SRGB8ToLinear(r), SRGB8ToLinear(g), SRGB8ToLinear(b))
}

// DistanceSquared returns the squared CIE76 color difference between two
// colors.  This is only used for ranking, so the square root is never
// taken.
func DistanceSquared(c1, c2 Lab) float64 {
	dL := c1[0] - c2[0]
	da := c1[1] - c2[1]
	db := c1[2] - c2[2]
	return dL*dL + da*da + db*db
}

func labF(t float64) float64 {
	const delta = 6.0 / 29.0
	if t > delta*delta*delta {
		return math.Cbrt(t)
	}
	return t/(3*delta*delta) + 4.0/29.0
}
