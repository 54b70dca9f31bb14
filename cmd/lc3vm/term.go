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

package main

import (
	"os"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// rawTerm holds the terminal settings to put back on exit. Input that is not
// a terminal is left untouched.
type rawTerm struct {
	fd      uintptr
	restore unix.Termios
	active  bool
}

func enterRawTerm(file *os.File) (*rawTerm, error) {
	raw := &rawTerm{fd: file.Fd()}

	if !term.IsTerminal(int(raw.fd)) {
		return raw, nil
	}

	if err := termios.Tcgetattr(raw.fd, &raw.restore); err != nil {
		return nil, err
	}

	termstate := raw.restore

	termstate.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.INLCR
	termstate.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.IEXTEN
	termstate.Cflag &^= unix.CSIZE | unix.PARENB
	termstate.Cflag |= unix.CS8

	// Reads block for one byte, the keyboard relay runs on its own goroutine.
	termstate.Cc[unix.VMIN] = 1
	termstate.Cc[unix.VTIME] = 0

	if err := termios.Tcsetattr(raw.fd, termios.TCSANOW, &termstate); err != nil {
		return nil, err
	}

	raw.active = true

	return raw, nil
}

func (raw *rawTerm) Restore() error {
	if !raw.active {
		return nil
	}

	raw.active = false

	return termios.Tcsetattr(raw.fd, termios.TCSANOW, &raw.restore)
}
