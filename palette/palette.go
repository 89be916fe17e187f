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

// Package palette describes the fixed set of printable materials a layer
// image is quantized to.
//
// A [Palette] is immutable once constructed and may be shared between
// goroutines.  Exactly one of its entries represents the absence of
// material ("void").
package palette

import (
	"errors"
	"fmt"

	"seehuhn.de/go/voxelprint/internal/colconv"
)

// MaxEntries is the largest number of materials a palette can hold.
const MaxEntries = 8

// Material identifies a printable material.
type Material int

// These are the materials supported by the printer.
const (
	Cyan Material = iota
	Magenta
	Yellow
	White
	Void
)

func (m Material) String() string {
	switch m {
	case Cyan:
		return "cyan"
	case Magenta:
		return "magenta"
	case Yellow:
		return "yellow"
	case White:
		return "white"
	case Void:
		return "void"
	default:
		return fmt.Sprintf("Material(%d)", int(m))
	}
}

// ParseMaterial returns the material with the given name.
func ParseMaterial(name string) (Material, error) {
	for m := Cyan; m <= Void; m++ {
		if m.String() == name {
			return m, nil
		}
	}
	if name == "black" {
		return Void, nil
	}
	return 0, fmt.Errorf("palette: unknown material %q", name)
}

// Entry is a single palette color.
type Entry struct {
	Material Material

	// RGB is the 8-bit sRGB color written to layer images for this
	// material.
	RGB [3]uint8

	// Lab is the color in CIE L*a*b* coordinates, used for the nearest
	// color search.
	Lab [3]float64

	// Linear is the color in linear RGB, used for computing quantization
	// errors.
	Linear [3]float64
}

// NewEntry returns a palette entry for the given material and sRGB color.
// The Lab and linear RGB coordinates are computed from r, g and b.
func NewEntry(m Material, r, g, b uint8) Entry {
	return Entry{
		Material: m,
		RGB:      [3]uint8{r, g, b},
		Lab:      colconv.SRGB8ToLab(r, g, b),
		Linear:   colconv.SRGB8ToLinearRGB(r, g, b),
	}
}

// These errors are returned by [New].
var (
	ErrEmpty        = errors.New("palette: no entries")
	ErrTooLarge     = fmt.Errorf("palette: more than %d entries", MaxEntries)
	ErrNoVoid       = errors.New("palette: no void entry")
	ErrMultipleVoid = errors.New("palette: more than one void entry")
)

// Palette is an ordered, immutable list of materials.
//
// The order of entries is significant: when two entries are equally close
// to a color, the one declared first is chosen.
type Palette struct {
	entries []Entry
	void    int
}

// New returns a palette consisting of the given entries, in the given
// order.
func New(entries ...Entry) (*Palette, error) {
	if len(entries) == 0 {
		return nil, ErrEmpty
	}
	if len(entries) > MaxEntries {
		return nil, ErrTooLarge
	}

	void := -1
	for i, e := range entries {
		if e.Material != Void {
			continue
		}
		if void >= 0 {
			return nil, ErrMultipleVoid
		}
		void = i
	}
	if void < 0 {
		return nil, ErrNoVoid
	}

	p := &Palette{
		entries: make([]Entry, len(entries)),
		void:    void,
	}
	copy(p.entries, entries)
	return p, nil
}

// Default returns the standard palette: cyan, magenta, yellow, white and
// a black void entry, in this order.
func Default() *Palette {
	return defaultPalette
}

var defaultPalette = must(New(
	NewEntry(Cyan, 0, 255, 255),
	NewEntry(Magenta, 255, 0, 255),
	NewEntry(Yellow, 255, 255, 0),
	NewEntry(White, 255, 255, 255),
	NewEntry(Void, 0, 0, 0),
))

func must(p *Palette, err error) *Palette {
	if err != nil {
		panic(err)
	}
	return p
}

// Len returns the number of entries in the palette.
func (p *Palette) Len() int {
	return len(p.entries)
}

// Entry returns the i-th entry of the palette.
func (p *Palette) Entry(i int) Entry {
	return p.entries[i]
}

// Entries returns a copy of the palette entries.
func (p *Palette) Entries() []Entry {
	res := make([]Entry, len(p.entries))
	copy(res, p.entries)
	return res
}

// VoidIndex returns the index of the void entry.
func (p *Palette) VoidIndex() int {
	return p.void
}

// Void returns the void entry.
func (p *Palette) Void() Entry {
	return p.entries[p.void]
}

// IndexOf returns the index of the first entry for material m.
func (p *Palette) IndexOf(m Material) (int, bool) {
	for i := range p.entries {
		if p.entries[i].Material == m {
			return i, true
		}
	}
	return -1, false
}

// Index returns the index of the first entry with the given sRGB color.
func (p *Palette) Index(r, g, b uint8) (int, bool) {
	rgb := [3]uint8{r, g, b}
	for i := range p.entries {
		if p.entries[i].RGB == rgb {
			return i, true
		}
	}
	return -1, false
}
