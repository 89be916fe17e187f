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
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"sync/atomic"

	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"seehuhn.de/go/voxelprint/gcvf"
	"seehuhn.de/go/voxelprint/halftone"
	"seehuhn.de/go/voxelprint/internal/buildinfo"
	"seehuhn.de/go/voxelprint/internal/profile"
	"seehuhn.de/go/voxelprint/palette"
	"seehuhn.de/go/voxelprint/raster"
	"seehuhn.de/go/voxelprint/stack"
)

var (
	outDir     = flag.String("o", ".", "write layer images to `dir`")
	numLayers  = flag.Int("n", 0, "replicate a single input into `count` layers")
	formatArg  = flag.String("format", "png", "output `format` (png, tiff or qoi)")
	iccArg     = flag.String("icc", "", "embed the ICC profile from `file` (PNG only)")
	serpentine = flag.Bool("serpentine", true, "alternate the scan direction between rows")
	noiseArg   = flag.Float64("noise", 0.75, "blue noise `amplitude`, in 8-bit code values")
	voidAlpha  = flag.Uint("void-alpha", 16, "pixels with alpha at most `value` are void")
	voidLuma   = flag.Uint("void-luma", 8, "pixels with luma at most `value` are void")
	metricArg  = flag.String("metric", "cie76", "color difference `metric` (cie76 or ciede2000)")
	methodArg  = flag.String("method", "diffusion", "halftoning `method` (diffusion or stochastic)")
	seedArg    = flag.Uint64("seed", 0, "random `seed` for the stochastic method")
	workersArg = flag.Int("workers", 0, "number of layers processed in parallel (0 = all CPUs)")
	force      = flag.Bool("f", false, "overwrite existing output files")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")
	memprofile = flag.String("memprofile", "", "write memory profile to `file`")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "slice-halftone - convert slice images into printer layers\n")
		fmt.Fprintf(os.Stderr, "%s\n\n", buildinfo.Short("slice-halftone"))
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  slice-halftone [options] <image>...\n\n")
		fmt.Fprintf(os.Stderr, "Arguments:\n")
		fmt.Fprintf(os.Stderr, "  image   one input image per layer, in layer order\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  slice-halftone -o out slice_*.png\n")
		fmt.Fprintf(os.Stderr, "  slice-halftone -o out -n 100 -method stochastic part.png\n")
	}
	flag.Parse()

	if flag.NArg() < 1 || (*numLayers > 0 && flag.NArg() != 1) {
		flag.Usage()
		os.Exit(1)
	}

	log.SetFlags(0)
	log.SetPrefix("slice-halftone: ")

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	stop, err := profile.Start(*cpuprofile, *memprofile)
	if err != nil {
		return err
	}
	defer func() {
		if err := stop(); err != nil {
			log.Print(err)
		}
	}()

	opt, err := options()
	if err != nil {
		return err
	}
	format, err := raster.ParseFormat(*formatArg)
	if err != nil {
		return err
	}
	encOpt := &raster.EncodeOptions{}
	if *iccArg != "" {
		if format != raster.PNG {
			return fmt.Errorf("-icc is only supported for PNG output")
		}
		encOpt.Profile, err = os.ReadFile(*iccArg)
		if err != nil {
			return err
		}
		encOpt.ProfileName = filepath.Base(*iccArg)
	}

	inputs := flag.Args()
	n := len(inputs)
	if *numLayers > 0 {
		n = *numLayers
	}

	err = os.MkdirAll(*outDir, 0o755)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	pal := palette.Default()
	counts := gcvf.NewCounts(pal)
	var mu sync.Mutex

	var done atomic.Int64
	showProgress := term.IsTerminal(int(os.Stderr.Fd()))

	load := func(_ context.Context, i int) (image.Image, error) {
		fname := inputs[0]
		if len(inputs) > 1 {
			fname = inputs[i]
		}
		return readImage(fname)
	}
	store := func(i int, res *halftone.Result) error {
		err := writeLayer(i, res, format, encOpt)
		if err != nil {
			return err
		}
		mu.Lock()
		counts.AddResult(res)
		mu.Unlock()
		if showProgress {
			fmt.Fprintf(os.Stderr, "\r%d/%d layers", done.Add(1), n)
		}
		return nil
	}

	p := &stack.Processor{
		Palette: pal,
		Options: opt,
		Workers: *workersArg,
	}
	err = p.Run(ctx, n, load, store)
	if showProgress {
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		return err
	}

	printer := message.NewPrinter(language.English)
	printer.Printf("%d layers written to %s\n", n, *outDir)
	for _, e := range pal.Entries() {
		printer.Printf("  %-8s %14d voxels\n", e.Material, counts.Voxels(e.Material))
	}
	return nil
}

func options() (*halftone.Options, error) {
	if *voidAlpha > 255 || *voidLuma > 255 {
		return nil, errors.New("void thresholds must be in the range 0-255")
	}
	metric, err := palette.ParseMetric(*metricArg)
	if err != nil {
		return nil, err
	}
	method, err := halftone.ParseMethod(*methodArg)
	if err != nil {
		return nil, err
	}

	opt := halftone.DefaultOptions()
	opt.VoidAlphaThreshold = uint8(*voidAlpha)
	opt.VoidLumaThreshold = uint8(*voidLuma)
	opt.NoiseStrength = *noiseArg / 255
	opt.Serpentine = *serpentine
	opt.Metric = metric
	opt.Method = method
	opt.Seed = *seedArg
	return opt, nil
}

func readImage(fname string) (image.Image, error) {
	fd, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer fd.Close()
	img, _, err := raster.Decode(fd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	return img, nil
}

func writeLayer(i int, res *halftone.Result, format raster.Format, encOpt *raster.EncodeOptions) error {
	name := fmt.Sprintf("layer_%d%s", i, format.Ext())
	fname := filepath.Join(*outDir, name)

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !*force {
		flags |= os.O_EXCL
	}
	fd, err := os.OpenFile(fname, flags, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%s exists (use -f to overwrite)", fname)
	} else if err != nil {
		return err
	}

	opt := *encOpt
	opt.Title = name
	err = raster.Encode(fd, res, format, &opt)
	if err != nil {
		fd.Close()
		return fmt.Errorf("%s: %w", fname, err)
	}
	return fd.Close()
}
