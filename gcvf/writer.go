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

// Package gcvf writes GCVF archives, the zip based container used to send
// a stack of halftoned layer images to a multi-material voxel printer.
//
// An archive contains one PNG image per layer, named by [LayerName], and a
// descriptor file ConfigFile.xml which records the printer resolution, the
// layer size and the number of voxels printed with each material.
package gcvf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"golang.org/x/exp/slices"

	"seehuhn.de/go/voxelprint/halftone"
	"seehuhn.de/go/voxelprint/palette"
	"seehuhn.de/go/voxelprint/raster"
)

var (
	// ErrSize is returned if a layer image has a different size than the
	// layers added before.
	ErrSize = errors.New("gcvf: layer size mismatch")

	// ErrLayerRange is returned if the layer numbers are not 0, 1, ..., n-1.
	ErrLayerRange = errors.New("gcvf: layer numbers are not contiguous")

	// ErrOffPalette is returned if a layer image contains a color which is
	// not part of the palette.
	ErrOffPalette = errors.New("gcvf: color not in palette")

	// ErrDuplicate is returned if a file name is used twice.
	ErrDuplicate = errors.New("gcvf: duplicate file name")

	// ErrClosed is returned when writing to a closed archive.
	ErrClosed = errors.New("gcvf: archive is closed")
)

// Options control the contents of the descriptor file.
type Options struct {
	// XDpi and YDpi give the printer resolution.  If zero, 600 and 300 are
	// used.
	XDpi, YDpi int

	// SliceThickness is the layer thickness in nanometers.  If zero,
	// 27000 is used.
	SliceThickness int

	// Palette lists the colors which may occur in the layer images.
	// If nil, [palette.Default] is used.
	Palette *palette.Palette

	// MaterialNames maps palette materials to printer material names.
	// If nil, [DefaultMaterialNames] is used.
	MaterialNames map[palette.Material]string
}

// Writer writes a GCVF archive.
type Writer struct {
	zw     *zip.Writer
	opt    Options
	counts *Counts

	width, height int
	layers        map[int]bool
	names         map[string]bool
	closed        bool
}

// NewWriter returns a new Writer which writes the archive to w.
// The archive is complete once Close has been called.
func NewWriter(w io.Writer, opt *Options) *Writer {
	var o Options
	if opt != nil {
		o = *opt
	}
	if o.XDpi == 0 {
		o.XDpi = 600
	}
	if o.YDpi == 0 {
		o.YDpi = 300
	}
	if o.SliceThickness == 0 {
		o.SliceThickness = 27000
	}
	if o.Palette == nil {
		o.Palette = palette.Default()
	}
	if o.MaterialNames == nil {
		o.MaterialNames = DefaultMaterialNames
	}

	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	return &Writer{
		zw:     zw,
		opt:    o,
		counts: NewCounts(o.Palette),
		layers: make(map[int]bool),
		names:  make(map[string]bool),
	}
}

// AddLayer encodes a quantized layer as PNG and adds it to the archive.
// The layer must have been quantized using the palette of the archive.
func (w *Writer) AddLayer(i int, res *halftone.Result) error {
	if !slices.Equal(res.Palette().Entries(), w.opt.Palette.Entries()) {
		return fmt.Errorf("layer %d: palette differs from archive: %w", i, ErrOffPalette)
	}
	if err := w.checkLayer(i, res.Width, res.Height); err != nil {
		return err
	}
	buf := &bytes.Buffer{}
	err := raster.EncodePNG(buf, res, nil)
	if err != nil {
		return err
	}
	err = w.create(LayerName(i), buf.Bytes())
	if err != nil {
		return err
	}
	w.counts.AddResult(res)
	w.layers[i] = true
	return nil
}

// AddEncodedLayer adds an already encoded layer image to the archive.
// The image is decoded to check its size and to count the voxels of each
// material.  Every pixel must be opaque and must have a palette color.
func (w *Writer) AddEncodedLayer(i int, data []byte) error {
	img, _, err := raster.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("gcvf: layer %d: %w", i, err)
	}
	b := img.Bounds()
	if err := w.checkLayer(i, b.Dx(), b.Dy()); err != nil {
		return err
	}

	layer := NewCounts(w.opt.Palette)
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+4*b.Dx()]
		for x := 0; x < b.Dx(); x++ {
			p := row[4*x : 4*x+4]
			if p[3] != 255 || !layer.AddPixel(p[0], p[1], p[2]) {
				return fmt.Errorf("layer %d, pixel (%d,%d): %w", i, x, y, ErrOffPalette)
			}
		}
	}

	err = w.create(LayerName(i), data)
	if err != nil {
		return err
	}
	for k, n := range layer.voxels {
		w.counts.voxels[k] += n
	}
	w.layers[i] = true
	return nil
}

func (w *Writer) checkLayer(i, width, height int) error {
	if w.closed {
		return ErrClosed
	}
	if i < 0 {
		return fmt.Errorf("layer %d: %w", i, ErrLayerRange)
	}
	if w.layers[i] {
		return fmt.Errorf("layer %d: %w", i, ErrDuplicate)
	}
	if len(w.layers) == 0 {
		w.width, w.height = width, height
	} else if width != w.width || height != w.height {
		return fmt.Errorf("layer %d is %dx%d, expected %dx%d: %w",
			i, width, height, w.width, w.height, ErrSize)
	}
	return nil
}

// AddFile adds an auxiliary file, for example a preview image, to the
// archive.  The name must not collide with the descriptor or with a layer
// image.
func (w *Writer) AddFile(name string, data []byte) error {
	if w.closed {
		return ErrClosed
	}
	if strings.EqualFold(name, DescriptorName) {
		return fmt.Errorf("%q: %w", name, ErrDuplicate)
	}
	if _, ok := ParseLayerName(name); ok {
		return fmt.Errorf("%q: %w", name, ErrDuplicate)
	}
	return w.create(name, data)
}

func (w *Writer) create(name string, data []byte) error {
	if w.names[name] {
		return fmt.Errorf("%q: %w", name, ErrDuplicate)
	}
	f, err := w.zw.CreateHeader(&zip.FileHeader{
		Name:   name,
		Method: zip.Deflate,
	})
	if err != nil {
		return err
	}
	_, err = f.Write(data)
	if err != nil {
		return err
	}
	w.names[name] = true
	return nil
}

// Descriptor returns the descriptor for the layers added so far.
func (w *Writer) Descriptor() *Descriptor {
	return &Descriptor{
		Version: 2,
		Resolution: Resolution{
			XDpi:                    w.opt.XDpi,
			YDpi:                    w.opt.YDpi,
			SliceThicknessNanoMeter: w.opt.SliceThickness,
		},
		SliceDimensions: SliceDimensions{
			SliceWidth:  w.width,
			SliceHeight: w.height,
		},
		SliceRange: SliceRange{
			StartIndex:     0,
			NumberOfSlices: len(w.layers),
		},
		BitDepth:          4,
		MaxNumberOfColors: 6,
		DataSemantics:     "Materials",
		CreationMode:      "MODEL_ONLY",
		ImageFilePrefix:   "layer_",
		MaterialList: MaterialList{
			BackGroundMaterialRGBA: RGBA{0, 0, 0, 255},
			Materials:              w.counts.Materials(w.opt.MaterialNames),
		},
	}
}

// Counts returns the voxel counts of the layers added so far.
func (w *Writer) Counts() *Counts {
	return w.counts
}

// Close writes the descriptor and finishes the archive.  The layers
// 0, 1, ..., n-1 must all have been added, for some n >= 1.
// Close does not close the underlying writer.
func (w *Writer) Close() error {
	if w.closed {
		return ErrClosed
	}
	n := len(w.layers)
	if n == 0 {
		return fmt.Errorf("no layers: %w", ErrLayerRange)
	}
	for i := 0; i < n; i++ {
		if !w.layers[i] {
			return fmt.Errorf("layer %d missing: %w", i, ErrLayerRange)
		}
	}

	buf := &bytes.Buffer{}
	err := w.Descriptor().Encode(buf)
	if err != nil {
		return err
	}
	err = w.create(DescriptorName, buf.Bytes())
	if err != nil {
		return err
	}
	w.closed = true
	return w.zw.Close()
}

// LayerName returns the file name of layer i inside the archive.
func LayerName(i int) string {
	return "layer_" + strconv.Itoa(i) + ".png"
}

// ParseLayerName returns the layer number encoded in a layer file name.
// Leading zeros and upper case letters are accepted.
func ParseLayerName(name string) (int, bool) {
	lower := strings.ToLower(name)
	s, ok := strings.CutPrefix(lower, "layer_")
	if !ok {
		return 0, false
	}
	s, ok = strings.CutSuffix(s, ".png")
	if !ok || s == "" {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return i, true
}
