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

// Package keyboard relays bytes from a blocking reader so that they can be
// polled without blocking.
package keyboard

import (
	"io"
	"sync"
)

type Keyboard struct {
	keys    chan byte
	stopCh  chan struct{}
	stopped sync.Once

	pending bool
	key     byte
}

// New starts relaying single bytes from reader. The relay ends when reader
// returns an error or Close is called.
func New(reader io.Reader) *Keyboard {
	kb := &Keyboard{
		keys:   make(chan byte),
		stopCh: make(chan struct{}),
	}

	go kb.relay(reader)

	return kb
}

func (kb *Keyboard) relay(reader io.Reader) {
	defer close(kb.keys)

	buf := make([]byte, 1)

	for {
		n, err := reader.Read(buf)

		if n > 0 {
			select {
			case kb.keys <- buf[0]:
			case <-kb.stopCh:
				return
			}
		}

		if err != nil {
			return
		}
	}
}

// CheckKey reports whether a key is waiting. A received key is held until
// GetKey consumes it.
func (kb *Keyboard) CheckKey() bool {
	if kb.pending {
		return true
	}

	select {
	case key, ok := <-kb.keys:
		if !ok {
			return false
		}
		kb.key, kb.pending = key, true
	default:
	}

	return kb.pending
}

// GetKey consumes the waiting key without blocking.
func (kb *Keyboard) GetKey() (byte, bool) {
	if !kb.CheckKey() {
		return 0, false
	}

	kb.pending = false

	return kb.key, true
}

// Close stops relaying. A relay blocked inside reader.Read only exits once
// that read returns.
func (kb *Keyboard) Close() {
	kb.stopped.Do(func() {
		close(kb.stopCh)
	})
}
