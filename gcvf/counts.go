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

package gcvf

import (
	"cmp"

	"golang.org/x/exp/slices"

	"seehuhn.de/go/voxelprint/halftone"
	"seehuhn.de/go/voxelprint/palette"
)

// DefaultMaterialNames gives the printer material used for each palette
// material.  Void is not printed and has no name.
var DefaultMaterialNames = map[palette.Material]string{
	palette.Cyan:    "VeroCY-V",
	palette.Magenta: "VeroMGT-V",
	palette.Yellow:  "VeroYL-V",
	palette.White:   "VUltraWhite",
}

// Counts accumulates the number of voxels per palette entry over a
// sequence of layers.
type Counts struct {
	pal    *palette.Palette
	voxels []int64
}

// NewCounts returns an empty voxel count for the given palette.
func NewCounts(pal *palette.Palette) *Counts {
	return &Counts{
		pal:    pal,
		voxels: make([]int64, pal.Len()),
	}
}

// AddResult adds the pixel counts of a quantized layer.
// The layer must have been produced with the same palette.
func (c *Counts) AddResult(res *halftone.Result) {
	for k, n := range res.Counts {
		c.voxels[k] += int64(n)
	}
}

// AddPixel counts a single pixel of a decoded layer image.  It reports
// false if the color is not part of the palette.
func (c *Counts) AddPixel(r, g, b uint8) bool {
	k, ok := c.pal.Index(r, g, b)
	if !ok {
		return false
	}
	c.voxels[k]++
	return true
}

// Voxels returns the number of voxels counted for material m.
func (c *Counts) Voxels(m palette.Material) int64 {
	var total int64
	for k, n := range c.voxels {
		if c.pal.Entry(k).Material == m {
			total += n
		}
	}
	return total
}

// Materials returns the material list for the descriptor.  Void voxels are
// not listed, and neither are materials which were never used.  The list
// is ordered by material.
func (c *Counts) Materials(names map[palette.Material]string) []Material {
	type item struct {
		entry palette.Entry
		count int64
	}
	var items []item
	for k, n := range c.voxels {
		e := c.pal.Entry(k)
		if e.Material == palette.Void || n == 0 {
			continue
		}
		items = append(items, item{e, n})
	}
	slices.SortStableFunc(items, func(a, b item) int {
		return cmp.Compare(a.entry.Material, b.entry.Material)
	})

	res := make([]Material, len(items))
	for i, it := range items {
		name, ok := names[it.entry.Material]
		if !ok {
			name = it.entry.Material.String()
		}
		rgb := it.entry.RGB
		res[i] = Material{
			Name:       name,
			RGBA:       RGBA{rgb[0], rgb[1], rgb[2], 255},
			VoxelCount: it.count,
		}
	}
	return res
}
