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
	"bytes"
	"errors"
	"fmt"
	"hash/crc32"
	"image/png"
	"io"

	"github.com/klauspost/compress/zlib"
	"golang.org/x/text/language"
	"seehuhn.de/go/icc"
	"seehuhn.de/go/xmp"

	"seehuhn.de/go/voxelprint/halftone"
)

// These errors can be returned by the PNG functions.
var (
	ErrNotPNG    = errors.New("raster: not a PNG file")
	ErrNoProfile = errors.New("raster: no embedded ICC profile")
	ErrNoXMP     = errors.New("raster: no XMP metadata")
	ErrProfile   = errors.New("raster: invalid ICC profile")
)

const pngSignature = "\x89PNG\r\n\x1a\n"

// xmpKeyword is the iTXt keyword used for XMP packets in PNG files.
const xmpKeyword = "XML:com.adobe.xmp"

// EncodeOptions controls the metadata written to PNG layer images.
type EncodeOptions struct {
	// Profile is the ICC profile embedded in the file.  This must be an
	// RGB profile.  If this is nil, the sRGB profile is used.
	Profile []byte

	// ProfileName is stored alongside the profile.  If this is empty,
	// "ICC profile" is used for custom profiles and "sRGB" otherwise.
	ProfileName string

	// Title, if set, is written as the Dublin Core title of an XMP packet.
	Title string
}

// EncodePNG writes res as an RGB PNG image.
// The image is tagged with an ICC profile, and optionally with XMP
// metadata.  If opt is nil, the sRGB profile is used and no XMP metadata
// is written.
func EncodePNG(w io.Writer, res *halftone.Result, opt *EncodeOptions) error {
	if opt == nil {
		opt = &EncodeOptions{}
	}

	profile := opt.Profile
	name := opt.ProfileName
	if profile == nil {
		profile = icc.SRGBv2Profile
		if name == "" {
			name = "sRGB"
		}
	} else if name == "" {
		name = "ICC profile"
	}
	if err := checkProfile(profile); err != nil {
		return err
	}
	if len(name) > 79 {
		name = name[:79]
	}

	buf := &bytes.Buffer{}
	err := png.Encode(buf, res.Image())
	if err != nil {
		return err
	}
	body := buf.Bytes()

	// The IHDR chunk is always first and always 13 bytes long.
	const ihdrEnd = len(pngSignature) + 8 + 13 + 4
	if len(body) < ihdrEnd || string(body[12:16]) != "IHDR" {
		return ErrNotPNG
	}

	_, err = w.Write(body[:ihdrEnd])
	if err != nil {
		return err
	}

	iccp := &bytes.Buffer{}
	iccp.WriteString(name)
	iccp.Write([]byte{0, 0}) // separator, compression method
	zw := zlib.NewWriter(iccp)
	_, err = zw.Write(profile)
	if err != nil {
		return err
	}
	err = zw.Close()
	if err != nil {
		return err
	}
	err = writeChunk(w, "iCCP", iccp.Bytes())
	if err != nil {
		return err
	}

	if opt.Title != "" {
		itxt, err := xmpChunk(opt.Title)
		if err != nil {
			return err
		}
		err = writeChunk(w, "iTXt", itxt)
		if err != nil {
			return err
		}
	}

	_, err = w.Write(body[ihdrEnd:])
	return err
}

func checkProfile(profile []byte) error {
	p, err := icc.Decode(profile)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProfile, err)
	}
	if p.ColorSpace != icc.RGBSpace {
		return fmt.Errorf("%w: color space %v", ErrProfile, p.ColorSpace)
	}
	return nil
}

func xmpChunk(title string) ([]byte, error) {
	packet := xmp.NewPacket()
	dc := &xmp.DublinCore{}
	dc.Title.Set(language.Und, title)
	err := packet.Set(dc)
	if err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	buf.WriteString(xmpKeyword)
	// separator, no compression, empty language tag and translated keyword
	buf.Write([]byte{0, 0, 0, 0, 0})
	err = packet.Write(buf, nil)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeChunk(w io.Writer, tag string, data []byte) error {
	header := make([]byte, 8, 8+len(data)+4)
	putU32be(header, uint32(len(data)))
	copy(header[4:], tag)

	crc := crc32.NewIEEE()
	crc.Write(header[4:])
	crc.Write(data)

	chunk := append(header, data...)
	chunk = crc.Sum(chunk)
	_, err := w.Write(chunk)
	return err
}

// Profile returns the ICC profile embedded in a PNG file.
func Profile(encodedPNG []byte) ([]byte, error) {
	data, err := findChunk(encodedPNG, "iCCP")
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrNoProfile
	}

	sep := bytes.IndexByte(data, 0)
	if sep < 0 || sep+2 > len(data) || data[sep+1] != 0 {
		return nil, ErrNotPNG
	}
	zr, err := zlib.NewReader(bytes.NewReader(data[sep+2:]))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// Metadata returns the XMP packet embedded in a PNG file.
func Metadata(encodedPNG []byte) (*xmp.Packet, error) {
	prefix := []byte(xmpKeyword + "\x00\x00\x00\x00\x00")
	var packet []byte
	err := walkChunks(encodedPNG, func(tag string, data []byte) bool {
		if tag == "iTXt" && bytes.HasPrefix(data, prefix) {
			packet = data[len(prefix):]
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if packet == nil {
		return nil, ErrNoXMP
	}
	return xmp.Read(bytes.NewReader(packet))
}

// findChunk returns the payload of the first chunk with the given tag, or
// nil if there is no such chunk before the image data.
func findChunk(encodedPNG []byte, want string) ([]byte, error) {
	var res []byte
	err := walkChunks(encodedPNG, func(tag string, data []byte) bool {
		if tag == want {
			res = data
			return false
		}
		return true
	})
	return res, err
}

// walkChunks calls yield for every chunk before the first IDAT chunk,
// until yield returns false.  Checksums are not verified.
func walkChunks(encodedPNG []byte, yield func(tag string, data []byte) bool) error {
	if len(encodedPNG) < 8 || string(encodedPNG[:8]) != pngSignature {
		return ErrNotPNG
	}

	for src := encodedPNG[8:]; len(src) >= 12; {
		chunkLen := u32be(src)
		if uint64(len(src)) < 12+uint64(chunkLen) {
			return ErrNotPNG
		}
		tag := string(src[4:8])
		if tag == "IDAT" {
			return nil
		}
		if !yield(tag, src[8:8+chunkLen]) {
			return nil
		}
		src = src[12+uint64(chunkLen):]
	}
	return ErrNotPNG
}

func u32be(b []byte) uint32 {
	return (uint32(b[0]) << 24) |
		(uint32(b[1]) << 16) |
		(uint32(b[2]) << 8) |
		(uint32(b[3]) << 0)
}

func putU32be(b []byte, x uint32) {
	b[0] = byte(x >> 24)
	b[1] = byte(x >> 16)
	b[2] = byte(x >> 8)
	b[3] = byte(x)
}
