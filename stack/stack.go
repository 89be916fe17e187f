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

// Package stack halftones a sequence of layer images in parallel.
//
// Layers are independent of each other.  Each layer is loaded, quantized and
// stored by a single worker, and all workers share the same read-only
// palette.
package stack

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime"

	"golang.org/x/sync/errgroup"

	"seehuhn.de/go/voxelprint/halftone"
	"seehuhn.de/go/voxelprint/palette"
	"seehuhn.de/go/voxelprint/raster"
)

// ErrLayerCount is returned by [Processor.Run] for a negative layer count.
var ErrLayerCount = errors.New("stack: invalid number of layers")

// LoadFunc returns the source image for layer i.
type LoadFunc func(ctx context.Context, i int) (image.Image, error)

// StoreFunc receives the quantized image for layer i.
type StoreFunc func(i int, res *halftone.Result) error

// Processor quantizes the layers of a print job.
type Processor struct {
	// Palette is used for all layers.  If nil, [palette.Default] is used.
	Palette *palette.Palette

	// Options control the quantization.  If nil, the defaults from
	// [halftone.DefaultOptions] are used.
	Options *halftone.Options

	// Workers is the maximal number of layers processed at the same time.
	// If zero, runtime.NumCPU() is used.
	Workers int
}

// Run quantizes the layers 0, 1, ..., n-1.  Layers are processed
// concurrently, so load and store must be safe for concurrent use, and
// store may see the layers in any order.
//
// The first error stops all remaining work and is returned.  In this case
// store is not called for the failed layer, nor for any layer which was
// not finished before the error occurred.
func (p *Processor) Run(ctx context.Context, n int, load LoadFunc, store StoreFunc) error {
	if n < 0 {
		return fmt.Errorf("%d layers: %w", n, ErrLayerCount)
	}
	pal := p.Palette
	if pal == nil {
		pal = palette.Default()
	}
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	started := 0
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := p.layer(gctx, i, pal, load)
			if err != nil {
				return err
			}
			if err := gctx.Err(); err != nil {
				return err
			}
			return store(i, res)
		})
		started++
	}
	err := g.Wait()
	if err == nil && started < n {
		// the parent context was cancelled before all layers were started
		err = ctx.Err()
	}
	return err
}

func (p *Processor) layer(ctx context.Context, i int, pal *palette.Palette, load LoadFunc) (*halftone.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := load(ctx, i)
	if err != nil {
		return nil, fmt.Errorf("layer %d: %w", i, err)
	}
	m := raster.ToNRGBA(img)
	b := m.Bounds()
	res, err := halftone.QuantizeContext(ctx, m.Pix, b.Dx(), b.Dy(), pal, p.Options)
	if err != nil {
		return nil, fmt.Errorf("layer %d: %w", i, err)
	}
	return res, nil
}
