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

package raster

import (
	"io"

	"github.com/xfmoulet/qoi"
	"golang.org/x/image/tiff"

	"seehuhn.de/go/voxelprint/halftone"
)

// EncodeTIFF writes res as a deflate-compressed TIFF image with horizontal
// differencing.
func EncodeTIFF(w io.Writer, res *halftone.Result) error {
	return tiff.Encode(w, res.Image(), &tiff.Options{
		Compression: tiff.Deflate,
		Predictor:   true,
	})
}

// EncodeQOI writes res as a QOI image.
func EncodeQOI(w io.Writer, res *halftone.Result) error {
	return qoi.Encode(w, res.Image())
}
