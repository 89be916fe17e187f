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

// Package halftone converts continuous-tone layer images into images which
// only use the colors of a fixed material palette.
//
// The default method is error diffusion: pixels are visited in serpentine
// raster order, each pixel is replaced by the perceptually closest palette
// color (in CIE L*a*b*), and the remaining error is distributed, in linear
// RGB, to the neighbouring pixels which have not been visited yet.  A small
// amount of coordinate-dependent noise is added beforehand to break up
// contouring.  The result only depends on the input, so repeated runs give
// identical output.
//
// Processing of a single image is strictly sequential.  Different images
// can be processed concurrently, since they share no mutable state.
package halftone

import (
	"context"
	"errors"
	"fmt"
	"image"

	"seehuhn.de/go/voxelprint/internal/colconv"
	"seehuhn.de/go/voxelprint/palette"
)

// These errors indicate invalid arguments to [Quantize].
// No pixels are processed if any of these is returned.
var (
	ErrDimensions = errors.New("halftone: image dimensions do not match the pixel buffer")
	ErrStride     = errors.New("halftone: pixel buffer length is not a multiple of 4")
	ErrNoPalette  = errors.New("halftone: missing palette")
	ErrOptions    = errors.New("halftone: invalid options")
)

// Result is a quantized layer image.
type Result struct {
	Width, Height int

	// Pix holds the 8-bit RGB values of the pixels, in row-major order.
	// Every pixel equals the RGB value of one of the palette entries.
	Pix []byte

	// Counts gives the number of pixels assigned to each palette entry.
	Counts []int

	pal *palette.Palette
	idx []uint8
}

// At returns the palette index of the pixel at (x, y).
func (r *Result) At(x, y int) int {
	return int(r.idx[y*r.Width+x])
}

// Palette returns the palette used to produce r.
func (r *Result) Palette() *palette.Palette {
	return r.pal
}

// Image returns the result as an opaque image.
func (r *Result) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, r.Width, r.Height))
	n := r.Width * r.Height
	for i := 0; i < n; i++ {
		copy(img.Pix[4*i:4*i+3], r.Pix[3*i:3*i+3])
		img.Pix[4*i+3] = 0xFF
	}
	return img
}

// Quantize reduces an RGBA image to the colors of the palette pal.
//
// The slice src holds the 8-bit, non-premultiplied RGBA values of the
// source pixels in row-major order, so its length must be 4*width*height.
// If opt is nil, the defaults from [DefaultOptions] are used.
func Quantize(src []byte, width, height int, pal *palette.Palette, opt *Options) (*Result, error) {
	return QuantizeContext(context.Background(), src, width, height, pal, opt)
}

// QuantizeContext is like [Quantize], but stops early if ctx is cancelled.
// In this case, ctx.Err() is returned and the partial result is discarded.
func QuantizeContext(ctx context.Context, src []byte, width, height int, pal *palette.Palette, opt *Options) (*Result, error) {
	if len(src)%4 != 0 {
		return nil, ErrStride
	}
	n := len(src) / 4
	if width <= 0 || height <= 0 || width > n || n%width != 0 || n/width != height {
		return nil, fmt.Errorf("%w: %dx%d image, %d pixels",
			ErrDimensions, width, height, n)
	}
	if pal == nil {
		return nil, ErrNoPalette
	}
	if opt == nil {
		opt = DefaultOptions()
	}
	if err := opt.check(); err != nil {
		return nil, err
	}

	e := newEngine(width, height, pal, opt)
	var err error
	switch opt.Method {
	case Stochastic:
		err = e.screen(ctx, src)
	default:
		e.seed(src)
		err = e.run(ctx)
	}
	if err != nil {
		return nil, err
	}
	return e.res, nil
}

// engine holds the state for quantizing a single image.
type engine struct {
	width, height int
	pal           *palette.Palette
	opt           *Options

	// buf is the working buffer, in linear RGB.  Values are not clamped
	// when error is added, only when they are read for quantization.
	buf [][3]float64

	// void marks pixels which were classified as void in the source image.
	void []bool

	res *Result
}

func newEngine(width, height int, pal *palette.Palette, opt *Options) *engine {
	n := width * height
	return &engine{
		width:  width,
		height: height,
		pal:    pal,
		opt:    opt,
		buf:    make([][3]float64, n),
		void:   make([]bool, n),
		res: &Result{
			Width:  width,
			Height: height,
			Pix:    make([]byte, 3*n),
			Counts: make([]int, pal.Len()),
			pal:    pal,
			idx:    make([]uint8, n),
		},
	}
}

// seed fills the working buffer from the source pixels and adds the noise.
func (e *engine) seed(src []byte) {
	for i := range e.buf {
		r, g, b, a := src[4*i], src[4*i+1], src[4*i+2], src[4*i+3]
		if e.opt.IsVoid(a, r, g, b) {
			e.void[i] = true
			continue
		}

		n := (BlueNoise(i%e.width, i/e.width) - 0.5) * e.opt.NoiseStrength
		lin := colconv.SRGB8ToLinearRGB(r, g, b)
		e.buf[i] = [3]float64{lin[0] + n, lin[1] + n, lin[2] + n}
	}
}

// run visits all pixels in scan order.
func (e *engine) run(ctx context.Context) error {
	for y := 0; y < e.height; y++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		reverse := e.opt.Serpentine && y%2 == 1
		for k := 0; k < e.width; k++ {
			x := k
			if reverse {
				x = e.width - 1 - k
			}
			residual, ok := e.quantizePixel(x, y)
			if ok {
				e.diffuse(x, y, residual, reverse)
			}
		}
	}
	return nil
}

// quantizePixel chooses the output color for pixel (x, y).  If the error
// needs to be diffused, the residual is returned together with true.
func (e *engine) quantizePixel(x, y int) ([3]float64, bool) {
	i := y*e.width + x
	if e.void[i] {
		e.emit(i, e.pal.VoidIndex())
		return [3]float64{}, false
	}

	cell := e.buf[i]
	clamped := [3]float64{
		colconv.Clamp01(cell[0]),
		colconv.Clamp01(cell[1]),
		colconv.Clamp01(cell[2]),
	}
	r := colconv.LinearToSRGB8(clamped[0])
	g := colconv.LinearToSRGB8(clamped[1])
	b := colconv.LinearToSRGB8(clamped[2])

	// Accumulated error may have pushed the pixel into the void range.
	if colconv.Luma8(r, g, b) <= e.opt.VoidLumaThreshold {
		e.emit(i, e.pal.VoidIndex())
		return [3]float64{}, false
	}

	k := e.pal.Nearest(colconv.SRGB8ToLab(r, g, b), e.opt.Metric)
	e.emit(i, k)

	q := e.pal.Entry(k).Linear
	return [3]float64{
		clamped[0] - q[0],
		clamped[1] - q[1],
		clamped[2] - q[2],
	}, true
}

// emit writes palette entry k to output pixel i.
func (e *engine) emit(i, k int) {
	rgb := e.pal.Entry(k).RGB
	copy(e.res.Pix[3*i:3*i+3], rgb[:])
	e.res.idx[i] = uint8(k)
	e.res.Counts[k]++
}
