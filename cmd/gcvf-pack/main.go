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
	"cmp"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"slices"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"seehuhn.de/go/voxelprint/gcvf"
	"seehuhn.de/go/voxelprint/internal/buildinfo"
)

var (
	layersArg  = flag.Int("layers", 0, "expected number of layers (0 = any)")
	xdpiArg    = flag.Int("xdpi", 600, "horizontal printer resolution")
	ydpiArg    = flag.Int("ydpi", 300, "vertical printer resolution")
	thickness  = flag.Int("thickness", 27000, "layer thickness in `nanometers`")
	includeArg = flag.String("include", "", "add all files from `dir` to the archive")
	force      = flag.Bool("f", false, "overwrite an existing archive")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "gcvf-pack - package layer images into a GCVF archive\n")
		fmt.Fprintf(os.Stderr, "%s\n\n", buildinfo.Short("gcvf-pack"))
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  gcvf-pack [options] <dir> <out.gcvf>\n\n")
		fmt.Fprintf(os.Stderr, "Arguments:\n")
		fmt.Fprintf(os.Stderr, "  dir        directory containing layer_<n>.png files\n")
		fmt.Fprintf(os.Stderr, "  out.gcvf   the archive to create\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(1)
	}

	log.SetFlags(0)
	log.SetPrefix("gcvf-pack: ")

	if err := run(flag.Arg(0), flag.Arg(1)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type layerFile struct {
	num  int
	name string
}

func run(dir, out string) error {
	layers, err := findLayers(dir)
	if err != nil {
		return err
	}
	if len(layers) == 0 {
		return fmt.Errorf("%s: no layer images found", dir)
	}
	if *layersArg > 0 && len(layers) != *layersArg {
		return fmt.Errorf("%s: found %d layers, expected %d", dir, len(layers), *layersArg)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !*force {
		flags |= os.O_EXCL
	}
	fd, err := os.OpenFile(out, flags, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%s exists (use -f to overwrite)", out)
	} else if err != nil {
		return err
	}

	w := gcvf.NewWriter(fd, &gcvf.Options{
		XDpi:           *xdpiArg,
		YDpi:           *ydpiArg,
		SliceThickness: *thickness,
	})
	err = pack(w, dir, layers)
	if err == nil {
		err = fd.Close()
	} else {
		fd.Close()
	}
	if err != nil {
		os.Remove(out)
		return err
	}

	desc := w.Descriptor()
	p := message.NewPrinter(language.English)
	p.Printf("%s: %d layers of %dx%d pixels\n", out,
		desc.SliceRange.NumberOfSlices,
		desc.SliceDimensions.SliceWidth, desc.SliceDimensions.SliceHeight)
	for _, m := range desc.MaterialList.Materials {
		p.Printf("  %-12s %14d voxels\n", m.Name, m.VoxelCount)
	}
	return nil
}

// findLayers lists the layer images in dir, ordered by layer number.
func findLayers(dir string) ([]layerFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var layers []layerFile
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		num, ok := gcvf.ParseLayerName(e.Name())
		if !ok {
			continue
		}
		layers = append(layers, layerFile{num: num, name: e.Name()})
	}
	slices.SortFunc(layers, func(a, b layerFile) int {
		return cmp.Compare(a.num, b.num)
	})
	for i := 1; i < len(layers); i++ {
		if layers[i].num == layers[i-1].num {
			return nil, fmt.Errorf("%s and %s have the same layer number",
				layers[i-1].name, layers[i].name)
		}
	}
	return layers, nil
}

func pack(w *gcvf.Writer, dir string, layers []layerFile) error {
	for i, l := range layers {
		if l.num != i {
			log.Printf("%s stored as %s", l.name, gcvf.LayerName(i))
		}
		data, err := os.ReadFile(filepath.Join(dir, l.name))
		if err != nil {
			return err
		}
		err = w.AddEncodedLayer(i, data)
		if err != nil {
			return fmt.Errorf("%s: %w", l.name, err)
		}
	}

	if *includeArg != "" {
		entries, err := os.ReadDir(*includeArg)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if !e.Type().IsRegular() {
				continue
			}
			data, err := os.ReadFile(filepath.Join(*includeArg, e.Name()))
			if err != nil {
				return err
			}
			err = w.AddFile(e.Name(), data)
			if err != nil {
				return err
			}
		}
	}

	return w.Close()
}
