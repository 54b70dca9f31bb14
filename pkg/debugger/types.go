// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package debugger

import (
	"fmt"
	"strings"

	"github.com/lassandro/lc3vm/pkg/encoding"
)

type WatchpointType uint

const (
	ReadWatch WatchpointType = 1 << iota
	WriteWatch
	ReadWriteWatch = ReadWatch | WriteWatch
)

func (wtype WatchpointType) String() string {
	switch wtype {
	case ReadWatch:
		return "R"
	case WriteWatch:
		return "W"
	case ReadWriteWatch:
		return "RW"
	}

	return "<invalid>"
}

type Watchpoint struct {
	Addr uint16
	Type WatchpointType
}

// ParseWatchpoint decodes "0x####[:r|w|rw]", defaulting to readwrite.
func ParseWatchpoint(s string) (Watchpoint, error) {
	addr, kind, _ := strings.Cut(s, ":")

	value, err := encoding.DecodeHex(addr)
	if err != nil {
		return Watchpoint{}, err
	}

	watch := Watchpoint{Addr: value}

	switch kind {
	case "r", "read":
		watch.Type = ReadWatch
	case "w", "write":
		watch.Type = WriteWatch
	case "", "rw", "readwrite":
		watch.Type = ReadWriteWatch
	default:
		return Watchpoint{}, fmt.Errorf("invalid watchpoint type %q", kind)
	}

	return watch, nil
}
