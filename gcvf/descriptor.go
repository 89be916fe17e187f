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
	"encoding/xml"
	"fmt"
	"io"
)

// DescriptorName is the file name of the descriptor inside the archive.
const DescriptorName = "ConfigFile.xml"

// Descriptor is the contents of the ConfigFile.xml file.
type Descriptor struct {
	XMLName           xml.Name        `xml:"GCVF"`
	Version           int             `xml:"Version"`
	Resolution        Resolution      `xml:"Resolution"`
	SliceDimensions   SliceDimensions `xml:"SliceDimensions"`
	SliceRange        SliceRange      `xml:"SliceRange"`
	BitDepth          int             `xml:"BitDepth"`
	MaxNumberOfColors int             `xml:"MaxNumberOfColors"`
	DataSemantics     string          `xml:"DataSemantics"`
	CreationMode      string          `xml:"CreationMode"`
	ImageFilePrefix   string          `xml:"ImageFilePrefix"`
	MaterialList      MaterialList    `xml:"MaterialList"`
}

// Resolution gives the printer resolution.
type Resolution struct {
	XDpi                    int `xml:"XDpi"`
	YDpi                    int `xml:"YDpi"`
	SliceThicknessNanoMeter int `xml:"SliceThicknessNanoMeter"`
}

// SliceDimensions gives the size of the layer images, in pixels.
type SliceDimensions struct {
	SliceWidth  int `xml:"SliceWidth"`
	SliceHeight int `xml:"SliceHeight"`
}

// SliceRange gives the layer numbers contained in the archive.
type SliceRange struct {
	StartIndex     int `xml:"StartIndex"`
	NumberOfSlices int `xml:"NumberOfSlices"`
}

// MaterialList lists the materials used in the layer images.
type MaterialList struct {
	BackGroundMaterialRGBA RGBA       `xml:"BackGroundMaterialRGBA"`
	Materials              []Material `xml:"Material"`
}

// Material describes one material and the number of voxels printed with it.
type Material struct {
	Name       string `xml:"Name"`
	RGBA       RGBA   `xml:"RGBA"`
	VoxelCount int64  `xml:"VoxelCount"`
}

// RGBA is a color, written as four space-separated decimal numbers.
type RGBA [4]uint8

// MarshalText implements the [encoding.TextMarshaler] interface.
func (c RGBA) MarshalText() ([]byte, error) {
	return fmt.Appendf(nil, "%d %d %d %d", c[0], c[1], c[2], c[3]), nil
}

// UnmarshalText implements the [encoding.TextUnmarshaler] interface.
func (c *RGBA) UnmarshalText(text []byte) error {
	var v [4]uint8
	_, err := fmt.Sscanf(string(text), "%d %d %d %d", &v[0], &v[1], &v[2], &v[3])
	if err != nil {
		return fmt.Errorf("gcvf: invalid RGBA value %q: %w", text, err)
	}
	*c = v
	return nil
}

// Encode writes the descriptor as an XML document.
func (d *Descriptor) Encode(w io.Writer) error {
	_, err := io.WriteString(w, xml.Header)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, "<!--  GCVF - GrabCad Voxel Print File  -->\n")
	if err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "    ")
	err = enc.Encode(d)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

// ReadDescriptor decodes a descriptor written by [Descriptor.Encode].
func ReadDescriptor(r io.Reader) (*Descriptor, error) {
	d := &Descriptor{}
	err := xml.NewDecoder(r).Decode(d)
	if err != nil {
		return nil, err
	}
	return d, nil
}
