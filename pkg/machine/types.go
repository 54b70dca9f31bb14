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

package machine

import (
	"bufio"
)

// Keyboard is the non-blocking input capability behind the keyboard device
// registers.
type Keyboard interface {
	// CheckKey reports whether a key is waiting, without consuming it.
	CheckKey() bool
	// GetKey consumes the waiting key, if any.
	GetKey() (byte, bool)
}

type DeviceHandler struct {
	Keyboard Keyboard
	Display  *bufio.Writer
}

// Registers holds R0-R7 plus the program counter and condition register.
// Index REG_PC and REG_COND address the latter two through Get and Set.
type Registers struct {
	R    [8]uint16
	PC   uint16
	Cond uint16
}

type MachineState struct {
	Registers Registers
	Memory    [MEMSPACE_SIZE]uint16
}

type MachineDebugger interface {
	Trace(mc *Machine, instruction uint16)
	Read(addr uint16, mc *Machine)
	Write(addr uint16, mc *Machine)
}

type Machine struct {
	Devices  *DeviceHandler
	State    MachineState
	Debugger MachineDebugger
	Running  bool
}
