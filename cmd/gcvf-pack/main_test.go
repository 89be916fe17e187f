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

package main

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFindLayers(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"layer_10.png", "layer_2.png", "notes.txt", "layer_1.tif", "Layer_003.PNG"} {
		err := os.WriteFile(filepath.Join(dir, name), nil, 0o644)
		if err != nil {
			t.Fatal(err)
		}
	}
	err := os.Mkdir(filepath.Join(dir, "layer_5.png"), 0o755)
	if err != nil {
		t.Fatal(err)
	}

	layers, err := findLayers(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []layerFile{
		{2, "layer_2.png"},
		{3, "Layer_003.PNG"},
		{10, "layer_10.png"},
	}
	if d := cmp.Diff(layers, want, cmp.AllowUnexported(layerFile{})); d != "" {
		t.Errorf("unexpected layers (-got +want):\n%s", d)
	}
}

func TestFindLayersDuplicate(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"layer_1.png", "layer_01.png"} {
		err := os.WriteFile(filepath.Join(dir, name), nil, 0o644)
		if err != nil {
			t.Fatal(err)
		}
	}
	if _, err := findLayers(dir); err == nil {
		t.Error("duplicate layer numbers not detected")
	}
}

func TestFindLayersLargeNumbers(t *testing.T) {
	dir := t.TempDir()
	big := "layer_" + strconv.Itoa(math.MaxInt) + ".png"
	for _, name := range []string{big, "layer_0.png", "layer_1.png"} {
		err := os.WriteFile(filepath.Join(dir, name), nil, 0o644)
		if err != nil {
			t.Fatal(err)
		}
	}

	layers, err := findLayers(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []layerFile{
		{0, "layer_0.png"},
		{1, "layer_1.png"},
		{math.MaxInt, big},
	}
	if d := cmp.Diff(layers, want, cmp.AllowUnexported(layerFile{})); d != "" {
		t.Errorf("unexpected layers (-got +want):\n%s", d)
	}
}
