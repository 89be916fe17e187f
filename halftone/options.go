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
	"fmt"
	"math"

	"seehuhn.de/go/voxelprint/internal/colconv"
	"seehuhn.de/go/voxelprint/palette"
)

// Method selects the screening algorithm.
type Method int

const (
	// ErrorDiffusion quantizes pixels in serpentine raster order and
	// distributes the quantization error to unvisited neighbours using
	// Floyd-Steinberg weights.
	ErrorDiffusion Method = iota

	// Stochastic picks one ink per pixel using independent random
	// thresholds on the subtractive cyan, magenta and yellow amounts.
	// Given the same seed, the output is reproducible.
	Stochastic
)

func (m Method) String() string {
	switch m {
	case ErrorDiffusion:
		return "diffusion"
	case Stochastic:
		return "stochastic"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod converts a method name, as returned by [Method.String], back
// to a Method.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "diffusion":
		return ErrorDiffusion, nil
	case "stochastic":
		return Stochastic, nil
	}
	return 0, fmt.Errorf("halftone: unknown method %q", s)
}

// Options controls the quantization of a layer image.
// A nil *Options is equivalent to the result of [DefaultOptions].
type Options struct {
	// VoidAlphaThreshold is the largest alpha value which is treated as
	// transparent, i.e. as void.
	VoidAlphaThreshold uint8

	// VoidLumaThreshold is the largest BT.709 luma value which is treated
	// as void.  The test is applied both to the source pixel and to the
	// value accumulated during error diffusion.
	VoidLumaThreshold uint8

	// NoiseStrength is the amplitude of the blue noise added to each
	// non-void pixel before quantization, in linear RGB units.
	// Set this to 0 to disable the noise.
	NoiseStrength float64

	// Serpentine alternates the scan direction between rows.  If this is
	// false, all rows are processed from left to right.
	Serpentine bool

	// Metric is the color difference used for choosing the nearest
	// palette entry.
	Metric palette.Metric

	// Method selects the screening algorithm.
	Method Method

	// Seed initialises the random number generator of the [Stochastic]
	// method.  It is ignored by [ErrorDiffusion].
	Seed uint64
}

// DefaultOptions returns the default quantization settings.
func DefaultOptions() *Options {
	return &Options{
		VoidAlphaThreshold: 16,
		VoidLumaThreshold:  8,
		NoiseStrength:      0.75 / 255,
		Serpentine:         true,
		Metric:             palette.CIE76,
		Method:             ErrorDiffusion,
	}
}

// IsVoid reports whether a source pixel represents the absence of material.
// This is the case if the pixel is (almost) transparent, or if it is very
// dark.
func (o *Options) IsVoid(a, r, g, b uint8) bool {
	return a <= o.VoidAlphaThreshold || colconv.Luma8(r, g, b) <= o.VoidLumaThreshold
}

func (o *Options) check() error {
	switch o.Method {
	case ErrorDiffusion, Stochastic:
	default:
		return fmt.Errorf("%w: %s", ErrOptions, o.Method)
	}
	switch o.Metric {
	case palette.CIE76, palette.CIEDE2000:
	default:
		return fmt.Errorf("%w: %s", ErrOptions, o.Metric)
	}
	if math.IsNaN(o.NoiseStrength) || math.IsInf(o.NoiseStrength, 0) {
		return fmt.Errorf("%w: noise strength %g", ErrOptions, o.NoiseStrength)
	}
	return nil
}
