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

// Package raster reads source images and writes quantized layer images.
//
// Decoding supports PNG, JPEG, GIF, TIFF, BMP, WebP and QOI files.  Layer
// images can be written as PNG (tagged with an ICC profile), as TIFF, or
// as QOI.
package raster

import (
	"fmt"
	"image"
	_ "image/gif" // register decoders
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
	"seehuhn.de/go/voxelprint/halftone"
	"seehuhn.de/go/voxelprint/palette"
)

// Decode reads an image in any of the supported formats and converts it
// to non-premultiplied 8-bit RGBA.  The returned image has its origin at
// (0, 0) and no padding between rows.
func Decode(r io.Reader) (*image.NRGBA, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", err
	}
	return ToNRGBA(img), format, nil
}

// ToNRGBA converts img to non-premultiplied 8-bit RGBA, with the origin at
// (0, 0) and no padding between rows.  If img already has this form, it is
// returned unchanged.
func ToNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	if m, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) && m.Stride == 4*b.Dx() {
		return m
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// Quantize converts img to a layer image using the colors of pal.
// See [halftone.Quantize] for details.
func Quantize(img image.Image, pal *palette.Palette, opt *halftone.Options) (*halftone.Result, error) {
	m := ToNRGBA(img)
	b := m.Bounds()
	return halftone.Quantize(m.Pix, b.Dx(), b.Dy(), pal, opt)
}

// Format is a file format for layer images.
type Format int

// These are the supported output formats.
const (
	PNG Format = iota
	TIFF
	QOI
)

func (f Format) String() string {
	switch f {
	case PNG:
		return "png"
	case TIFF:
		return "tiff"
	case QOI:
		return "qoi"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Ext returns the file name extension for f, including the leading dot.
func (f Format) Ext() string {
	if f == TIFF {
		return ".tif"
	}
	return "." + f.String()
}

// ParseFormat converts a format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "png":
		return PNG, nil
	case "tiff", "tif":
		return TIFF, nil
	case "qoi":
		return QOI, nil
	}
	return 0, fmt.Errorf("raster: unknown format %q", s)
}

// Encode writes a layer image in the given format.
// The options are only used for PNG output, and may be nil.
func Encode(w io.Writer, res *halftone.Result, f Format, opt *EncodeOptions) error {
	switch f {
	case PNG:
		return EncodePNG(w, res, opt)
	case TIFF:
		return EncodeTIFF(w, res)
	case QOI:
		return EncodeQOI(w, res)
	default:
		return fmt.Errorf("raster: unsupported format %s", f)
	}
}
