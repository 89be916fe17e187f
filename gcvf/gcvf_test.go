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
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/zip"

	"seehuhn.de/go/voxelprint/halftone"
	"seehuhn.de/go/voxelprint/palette"
)

// layer returns a quantized layer where the top row has the given color and
// the remaining rows are transparent.
func layer(t *testing.T, width, height int, c color.NRGBA) *halftone.Result {
	t.Helper()
	src := make([]byte, 4*width*height)
	for x := 0; x < width; x++ {
		copy(src[4*x:], []byte{c.R, c.G, c.B, c.A})
	}
	opt := halftone.DefaultOptions()
	opt.NoiseStrength = 0
	res, err := halftone.Quantize(src, width, height, palette.Default(), opt)
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func readArchive(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	files := make(map[string][]byte)
	for _, f := range zr.File {
		r, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		body, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			t.Fatal(err)
		}
		files[f.Name] = body
	}
	return files
}

func TestWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewWriter(buf, nil)

	err := w.AddLayer(1, layer(t, 3, 2, color.NRGBA{0, 255, 255, 255}))
	if err != nil {
		t.Fatal(err)
	}
	err = w.AddLayer(0, layer(t, 3, 2, color.NRGBA{255, 255, 255, 255}))
	if err != nil {
		t.Fatal(err)
	}
	err = w.AddFile("preview.txt", []byte("hello"))
	if err != nil {
		t.Fatal(err)
	}
	err = w.Close()
	if err != nil {
		t.Fatal(err)
	}

	files := readArchive(t, buf.Bytes())
	for _, name := range []string{"layer_0.png", "layer_1.png", "preview.txt", DescriptorName} {
		if _, ok := files[name]; !ok {
			t.Errorf("%s missing from archive", name)
		}
	}

	img, err := png.Decode(bytes.NewReader(files["layer_1.png"]))
	if err != nil {
		t.Fatal(err)
	}
	if got := color.NRGBAModel.Convert(img.At(2, 0)); got != (color.NRGBA{0, 255, 255, 255}) {
		t.Errorf("layer 1 pixel (2,0) = %v", got)
	}

	desc, err := ReadDescriptor(bytes.NewReader(files[DescriptorName]))
	if err != nil {
		t.Fatal(err)
	}
	want := &Descriptor{
		Version:           2,
		Resolution:        Resolution{XDpi: 600, YDpi: 300, SliceThicknessNanoMeter: 27000},
		SliceDimensions:   SliceDimensions{SliceWidth: 3, SliceHeight: 2},
		SliceRange:        SliceRange{StartIndex: 0, NumberOfSlices: 2},
		BitDepth:          4,
		MaxNumberOfColors: 6,
		DataSemantics:     "Materials",
		CreationMode:      "MODEL_ONLY",
		ImageFilePrefix:   "layer_",
		MaterialList: MaterialList{
			BackGroundMaterialRGBA: RGBA{0, 0, 0, 255},
			Materials: []Material{
				{Name: "VeroCY-V", RGBA: RGBA{0, 255, 255, 255}, VoxelCount: 3},
				{Name: "VUltraWhite", RGBA: RGBA{255, 255, 255, 255}, VoxelCount: 3},
			},
		},
	}
	desc.XMLName.Local = ""
	if d := cmp.Diff(desc, want); d != "" {
		t.Errorf("unexpected descriptor (-got +want):\n%s", d)
	}
}

func TestDescriptorText(t *testing.T) {
	d := &Descriptor{
		Version: 2,
		MaterialList: MaterialList{
			BackGroundMaterialRGBA: RGBA{0, 0, 0, 255},
			Materials: []Material{
				{Name: "VeroYL-V", RGBA: RGBA{255, 255, 0, 255}, VoxelCount: 7},
			},
		},
	}
	buf := &bytes.Buffer{}
	err := d.Encode(buf)
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"<?xml version=\"1.0\" encoding=\"UTF-8\"?>",
		"<GCVF>",
		"<BackGroundMaterialRGBA>0 0 0 255</BackGroundMaterialRGBA>",
		"<RGBA>255 255 0 255</RGBA>",
		"<VoxelCount>7</VoxelCount>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("descriptor does not contain %q:\n%s", want, out)
		}
	}
}

func TestRGBAInvalid(t *testing.T) {
	var c RGBA
	if err := c.UnmarshalText([]byte("1 2 x 4")); err == nil {
		t.Error("invalid RGBA value accepted")
	}
}

func TestAddEncodedLayer(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{255, 0, 255, 255})
	img.SetNRGBA(1, 0, color.NRGBA{255, 0, 255, 255})
	img.SetNRGBA(0, 1, color.NRGBA{255, 255, 0, 255})
	img.SetNRGBA(1, 1, color.NRGBA{0, 0, 0, 255})
	enc := &bytes.Buffer{}
	if err := png.Encode(enc, img); err != nil {
		t.Fatal(err)
	}

	w := NewWriter(io.Discard, nil)
	err := w.AddEncodedLayer(0, enc.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	counts := w.Counts()
	got := []int64{
		counts.Voxels(palette.Cyan),
		counts.Voxels(palette.Magenta),
		counts.Voxels(palette.Yellow),
		counts.Voxels(palette.White),
		counts.Voxels(palette.Void),
	}
	if d := cmp.Diff(got, []int64{0, 2, 1, 0, 1}); d != "" {
		t.Errorf("unexpected counts (-got +want):\n%s", d)
	}

	img.SetNRGBA(1, 1, color.NRGBA{10, 20, 30, 255})
	enc.Reset()
	if err := png.Encode(enc, img); err != nil {
		t.Fatal(err)
	}
	err = w.AddEncodedLayer(1, enc.Bytes())
	if !errors.Is(err, ErrOffPalette) {
		t.Errorf("off-palette layer: got %v, want %v", err, ErrOffPalette)
	}
}

func TestWriterErrors(t *testing.T) {
	white := color.NRGBA{255, 255, 255, 255}

	w := NewWriter(io.Discard, nil)
	if err := w.Close(); !errors.Is(err, ErrLayerRange) {
		t.Errorf("empty archive: got %v, want %v", err, ErrLayerRange)
	}

	w = NewWriter(io.Discard, nil)
	if err := w.AddLayer(0, layer(t, 2, 2, white)); err != nil {
		t.Fatal(err)
	}
	if err := w.AddLayer(1, layer(t, 3, 2, white)); !errors.Is(err, ErrSize) {
		t.Errorf("size mismatch: got %v, want %v", err, ErrSize)
	}
	if err := w.AddLayer(0, layer(t, 2, 2, white)); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate layer: got %v, want %v", err, ErrDuplicate)
	}
	if err := w.AddFile("Layer_7.PNG", nil); !errors.Is(err, ErrDuplicate) {
		t.Errorf("layer-like file name: got %v, want %v", err, ErrDuplicate)
	}
	if err := w.AddFile("configfile.xml", nil); !errors.Is(err, ErrDuplicate) {
		t.Errorf("descriptor file name: got %v, want %v", err, ErrDuplicate)
	}
	if err := w.AddLayer(2, layer(t, 2, 2, white)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); !errors.Is(err, ErrLayerRange) {
		t.Errorf("gap in layers: got %v, want %v", err, ErrLayerRange)
	}

	w = NewWriter(io.Discard, nil)
	if err := w.AddLayer(0, layer(t, 2, 2, white)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.AddLayer(1, layer(t, 2, 2, white)); !errors.Is(err, ErrClosed) {
		t.Errorf("write after close: got %v, want %v", err, ErrClosed)
	}
}

func TestForeignPalette(t *testing.T) {
	pal, err := palette.New(
		palette.NewEntry(palette.White, 255, 255, 255),
		palette.NewEntry(palette.Void, 0, 0, 0),
	)
	if err != nil {
		t.Fatal(err)
	}
	res, err := halftone.Quantize(make([]byte, 4), 1, 1, pal, nil)
	if err != nil {
		t.Fatal(err)
	}
	w := NewWriter(io.Discard, nil)
	if err := w.AddLayer(0, res); !errors.Is(err, ErrOffPalette) {
		t.Errorf("foreign palette: got %v, want %v", err, ErrOffPalette)
	}
}

func TestLayerName(t *testing.T) {
	for _, i := range []int{0, 1, 99, 1234} {
		j, ok := ParseLayerName(LayerName(i))
		if !ok || j != i {
			t.Errorf("ParseLayerName(LayerName(%d)) = %d, %t", i, j, ok)
		}
	}

	cases := []struct {
		name string
		i    int
		ok   bool
	}{
		{"layer_007.png", 7, true},
		{"LAYER_3.PNG", 3, true},
		{"layer_.png", 0, false},
		{"layer_-1.png", 0, false},
		{"layer_1.tif", 0, false},
		{"slice_1.png", 0, false},
	}
	for _, c := range cases {
		i, ok := ParseLayerName(c.name)
		if i != c.i || ok != c.ok {
			t.Errorf("ParseLayerName(%q) = %d, %t, want %d, %t", c.name, i, ok, c.i, c.ok)
		}
	}
}
