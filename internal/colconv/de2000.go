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

// DeltaE00 returns the CIEDE2000 color difference between two colors,
// with the parametric factors kL, kC and kH all set to 1.
func DeltaE00(c1, c2 Lab) float64 {
	const deg = math.Pi / 180
	pow25to7 := math.Pow(25, 7)

	L1, a1, b1 := c1[0], c1[1], c1[2]
	L2, a2, b2 := c2[0], c2[1], c2[2]

	cBar := (math.Hypot(a1, b1) + math.Hypot(a2, b2)) / 2
	cBar7 := math.Pow(cBar, 7)
	g := 0.5 * (1 - math.Sqrt(cBar7/(cBar7+pow25to7)))

	a1p := (1 + g) * a1
	a2p := (1 + g) * a2
	c1p := math.Hypot(a1p, b1)
	c2p := math.Hypot(a2p, b2)
	h1p := hueAngle(b1, a1p)
	h2p := hueAngle(b2, a2p)

	dLp := L2 - L1
	dCp := c2p - c1p

	var dhp float64
	if c1p*c2p != 0 {
		dhp = h2p - h1p
		if dhp > 180 {
			dhp -= 360
		} else if dhp < -180 {
			dhp += 360
		}
	}
	dHp := 2 * math.Sqrt(c1p*c2p) * math.Sin(dhp*deg/2)

	lBarp := (L1 + L2) / 2
	cBarp := (c1p + c2p) / 2

	hBarp := h1p + h2p
	if c1p*c2p != 0 {
		switch {
		case math.Abs(h1p-h2p) <= 180:
			hBarp /= 2
		case hBarp < 360:
			hBarp = (hBarp + 360) / 2
		default:
			hBarp = (hBarp - 360) / 2
		}
	}

	t := 1 -
		0.17*math.Cos((hBarp-30)*deg) +
		0.24*math.Cos(2*hBarp*deg) +
		0.32*math.Cos((3*hBarp+6)*deg) -
		0.20*math.Cos((4*hBarp-63)*deg)

	l50 := (lBarp - 50) * (lBarp - 50)
	sL := 1 + 0.015*l50/math.Sqrt(20+l50)
	sC := 1 + 0.045*cBarp
	sH := 1 + 0.015*cBarp*t

	cBarp7 := math.Pow(cBarp, 7)
	dTheta := 30 * math.Exp(-((hBarp-275)/25)*((hBarp-275)/25))
	rT := -2 * math.Sqrt(cBarp7/(cBarp7+pow25to7)) * math.Sin(2*dTheta*deg)

	tL := dLp / sL
	tC := dCp / sC
	tH := dHp / sH
	return math.Sqrt(tL*tL + tC*tC + tH*tH + rT*tC*tH)
}

// hueAngle returns atan2(y, x) in degrees, in the range [0, 360).
func hueAngle(y, x float64) float64 {
	if x == 0 && y == 0 {
		return 0
	}
	h := math.Atan2(y, x) * 180 / math.Pi
	if h < 0 {
		h += 360
	}
	return h
}
