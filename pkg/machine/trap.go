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
	"context"
	"time"
)

// Interval between keyboard polls while GETC or IN wait for a key.
var KeyPollInterval = time.Millisecond

func (mc *Machine) trap(ctx context.Context, vector uint16) error {
	regs := &mc.State.Registers

	switch vector {
	case TRAP_GETC:
		key, err := mc.waitKey(ctx)
		if err != nil {
			return err
		}

		regs.SetWithCond(0, uint16(key))

	case TRAP_OUT:
		return mc.display(byte(regs.Get(0)))

	case TRAP_PUTS:
		var out []byte

		for addr := regs.Get(0); ; addr++ {
			value, err := mc.Read(addr)
			if err != nil {
				return err
			}

			if value == 0 {
				break
			}

			out = append(out, byte(value))
		}

		return mc.display(out...)

	case TRAP_IN:
		if err := mc.display([]byte(inPrompt)...); err != nil {
			return err
		}

		key, err := mc.waitKey(ctx)
		if err != nil {
			return err
		}

		if err := mc.display(key); err != nil {
			return err
		}

		regs.SetWithCond(0, uint16(key))

	case TRAP_PUTSP:
		var out []byte

	packed:
		for addr := regs.Get(0); ; addr++ {
			value, err := mc.Read(addr)
			if err != nil {
				return err
			}

			// Low byte first, a zero byte in either half terminates.
			for _, char := range [2]byte{byte(value), byte(value >> 8)} {
				if char == 0 {
					break packed
				}
				out = append(out, char)
			}
		}

		return mc.display(out...)

	case TRAP_HALT:
		mc.Running = false

	default:
		return &UnimplementedTrapError{Vector: vector}
	}

	return nil
}

// waitKey spins on the keyboard until a key is available.
func (mc *Machine) waitKey(ctx context.Context) (byte, error) {
	var keyboard Keyboard
	if mc.Devices != nil {
		keyboard = mc.Devices.Keyboard
	}

	for {
		if keyboard != nil && keyboard.CheckKey() {
			if key, ok := keyboard.GetKey(); ok {
				return key, nil
			}
		}

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(KeyPollInterval):
		}
	}
}

func (mc *Machine) display(out ...byte) error {
	if mc.Devices == nil || mc.Devices.Display == nil {
		return nil
	}

	if _, err := mc.Devices.Display.Write(out); err != nil {
		return err
	}

	return mc.Devices.Display.Flush()
}
