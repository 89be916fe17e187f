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

package buildinfo

import (
	"runtime/debug"
	"testing"
)

func TestVersion(t *testing.T) {
	cases := []struct {
		name     string
		version  string
		settings map[string]string
		want     string
	}{
		{"release", "v0.3.1", nil, "v0.3.1"},
		{"devel", "(devel)", nil, ""},
		{"vcs", "(devel)", map[string]string{"vcs.revision": "0123456789abcdef"}, "01234567"},
		{"dirty", "", map[string]string{
			"vcs.revision": "abc",
			"vcs.modified": "true",
		}, "abc+dirty"},
		{"dirty without revision", "", map[string]string{"vcs.modified": "true"}, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			info := &debug.BuildInfo{Main: debug.Module{Version: c.version}}
			for k, v := range c.settings {
				info.Settings = append(info.Settings, debug.BuildSetting{Key: k, Value: v})
			}
			if got := version(info); got != c.want {
				t.Errorf("got %q, want %q", got, c.want)
			}
		})
	}
}

func TestShort(t *testing.T) {
	got := Short("tool")
	if len(got) < 4 || got[:4] != "tool" {
		t.Errorf("Short(\"tool\") = %q", got)
	}
}
