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

import (
	"context"
	"math/rand/v2"

	"seehuhn.de/go/voxelprint/internal/colconv"
	"seehuhn.de/go/voxelprint/palette"
)

// screen implements the Stochastic method.
//
// For every non-void pixel, the subtractive amounts 1-r, 1-g and 1-b are
// used as probabilities for placing cyan, magenta and yellow.  If several
// inks pass, one of them is chosen uniformly.  If none pass, the pixel is
// white, or void for very dark pixels.
func (e *engine) screen(ctx context.Context, src []byte) error {
	rng := rand.New(rand.NewPCG(e.opt.Seed, uint64(e.width)<<32|uint64(e.height)))

	inks := [3]int{-1, -1, -1}
	for c, m := range []palette.Material{palette.Cyan, palette.Magenta, palette.Yellow} {
		if k, ok := e.pal.IndexOf(m); ok {
			inks[c] = k
		}
	}
	white, hasWhite := e.pal.IndexOf(palette.White)

	var candidates []int
	for y := 0; y < e.height; y++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for x := 0; x < e.width; x++ {
			i := y*e.width + x
			r, g, b, a := src[4*i], src[4*i+1], src[4*i+2], src[4*i+3]
			if e.opt.IsVoid(a, r, g, b) {
				e.emit(i, e.pal.VoidIndex())
				continue
			}

			candidates = candidates[:0]
			for c, v := range [3]uint8{r, g, b} {
				amount := 1 - float64(v)/255
				if rng.Float64() < amount && inks[c] >= 0 {
					candidates = append(candidates, inks[c])
				}
			}

			var k int
			switch {
			case len(candidates) > 0:
				k = candidates[rng.IntN(len(candidates))]
			case float64(colconv.Luma8(r, g, b)) < 0.1*255:
				k = e.pal.VoidIndex()
			case hasWhite:
				k = white
			default:
				k = e.pal.Nearest(colconv.SRGB8ToLab(r, g, b), e.opt.Metric)
			}
			e.emit(i, k)
		}
	}
	return nil
}
