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
	"context"
	"encoding/binary"
	"errors"
	"io"

	"github.com/lassandro/lc3vm/pkg/encoding"
)

func (mc *MachineState) Reset() {
	for i := range mc.Memory {
		mc.Memory[i] = 0x0000
	}

	mc.Registers = Registers{PC: MEMSPACE_USER}
}

// LoadBin reads a big-endian image whose first word is its load origin.
// Execution always begins at MEMSPACE_USER regardless of the origin.
func (mc *Machine) LoadBin(reader io.Reader) error {
	mc.State.Reset()

	buffered := bufio.NewReader(reader)
	scratch := make([]byte, 2)

	if _, err := io.ReadFull(buffered, scratch); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			err = ErrTruncatedHeader
		}
		return &LoadError{Err: err}
	}

	origin := binary.BigEndian.Uint16(scratch)
	words := make([]uint16, 0, MEMSPACE_SIZE-int(origin))

	for {
		_, err := io.ReadFull(buffered, scratch)

		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		} else if err != nil {
			return &LoadError{Err: err}
		}

		if int(origin)+len(words) >= MEMSPACE_SIZE {
			return &LoadError{Err: ErrImageOverflow}
		}

		words = append(words, binary.BigEndian.Uint16(scratch))
	}

	copy(mc.State.Memory[origin:], words)

	return nil
}

// Read returns the word at addr. The keyboard registers are served by the
// keyboard device instead of storage.
func (mc *Machine) Read(addr uint16) (uint16, error) {
	if mc.Debugger != nil {
		mc.Debugger.Read(addr, mc)
	}

	if addr < MEMSPACE_DEVICES {
		return mc.State.Memory[addr], nil
	}

	var keyboard Keyboard
	if mc.Devices != nil {
		keyboard = mc.Devices.Keyboard
	}

	switch addr {
	case DEV_KBSR:
		if keyboard != nil && keyboard.CheckKey() {
			return 1 << 15, nil
		}
		return 0, nil

	case DEV_KBDR:
		// With no key waiting the register keeps its previous contents.
		if keyboard != nil {
			if key, ok := keyboard.GetKey(); ok {
				return uint16(key), nil
			}
		}
		return mc.State.Memory[DEV_KBDR], nil
	}

	return 0, &UnmappedAddressError{Addr: addr}
}

// Write stores value at addr. Device addresses are not write protected.
func (mc *Machine) Write(addr uint16, value uint16) {
	mc.State.Memory[addr] = value

	if mc.Debugger != nil {
		mc.Debugger.Write(addr, mc)
	}
}

func (mc *Machine) Halted() bool {
	return !mc.Running
}

// Run executes instructions until the machine halts, faults, or ctx is done.
func (mc *Machine) Run(ctx context.Context) error {
	mc.Running = true

	for mc.Running {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := mc.step(ctx); err != nil {
			mc.Running = false
			return err
		}
	}

	return nil
}

// Step executes a single instruction.
func (mc *Machine) Step() error {
	return mc.step(context.Background())
}

func (mc *Machine) step(ctx context.Context) error {
	regs := &mc.State.Registers
	addr := regs.PC

	instruction, err := mc.Read(addr)
	if err != nil {
		return &ExecError{Addr: addr, Instruction: instruction, Err: err}
	}

	if mc.Debugger != nil {
		mc.Debugger.Trace(mc, instruction)
	}

	// The last word of memory is the last word ever fetched.
	if regs.PC == MEMSPACE_LAST {
		mc.Running = false
	} else {
		regs.PC++
	}

	if err := mc.execute(ctx, instruction); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return &ExecError{Addr: addr, Instruction: instruction, Err: err}
	}

	return nil
}

func (mc *Machine) execute(ctx context.Context, instruction uint16) error {
	regs := &mc.State.Registers

	switch OpcodeOf(instruction) {
	// ADD  |0001    |DR   |SR1  |0|00 |SR2   | Register  addition
	// ADD  |0001    |DR   |SR1  |1|imm5      | Immediate addition
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_ADD:
		dest, src1 := fieldDR(instruction), fieldSR1(instruction)

		regs.SetWithCond(dest, regs.Get(src1)+operand2(regs, instruction))

	// AND  |0101    |DR   |SR1  |0|00 |SR2   | Register  bitwise
	// AND  |0101    |DR   |SR1  |1|imm5      | Immediate bitwise
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_AND:
		dest, src1 := fieldDR(instruction), fieldSR1(instruction)

		regs.SetWithCond(dest, regs.Get(src1)&operand2(regs, instruction))

	// BR   |0000    |N|Z|P|PCoffset9         | Conditional branch
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_BR:
		mask := (instruction >> 9) & 0x7

		if mask == 0x7 || mask&regs.Cond != 0 {
			regs.PC += offset9(instruction)
		}

	// JMP  |1100    |000  |BaseR|000000      | Jump
	// RET  |1100    |000  |111  |000000      | Return
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_JMP:
		regs.PC = regs.Get(fieldSR1(instruction))

	// JSR  |0100    |1|PCoffset11            | Jump to subroutine
	// JSRR |0100    |0|00 |BaseR|000000      | Jump to subroutine register
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_JSR:
		// Read the base first, JSRR R7 jumps to the old R7.
		base := regs.Get(fieldSR1(instruction))
		regs.Set(7, regs.PC)

		if (instruction>>11)&0x1 == 1 {
			regs.PC += encoding.SignExtend(instruction&0x7FF, 11)
		} else {
			regs.PC = base
		}

	// LD   |0010    |DR   |PCoffset9         | Load
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_LD:
		value, err := mc.Read(regs.PC + offset9(instruction))
		if err != nil {
			return err
		}

		regs.SetWithCond(fieldDR(instruction), value)

	// LDI  |1010    |DR   |PCoffset9         | Load indirect
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_LDI:
		pointer, err := mc.Read(regs.PC + offset9(instruction))
		if err != nil {
			return err
		}

		value, err := mc.Read(pointer)
		if err != nil {
			return err
		}

		regs.SetWithCond(fieldDR(instruction), value)

	// LDR  |0110    |DR   |BaseR|offset6     | Load base+offset
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_LDR:
		value, err := mc.Read(regs.Get(fieldSR1(instruction)) + offset6(instruction))
		if err != nil {
			return err
		}

		regs.SetWithCond(fieldDR(instruction), value)

	// LEA  |1110    |DR   |PCoffset9         | Load effective address
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_LEA:
		regs.SetWithCond(fieldDR(instruction), regs.PC+offset9(instruction))

	// NOT  |1001    |DR   |SR   |1|11111     | Bitwise complement
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_NOT:
		regs.SetWithCond(fieldDR(instruction), ^regs.Get(fieldSR1(instruction)))

	// ST   |0011    |SR   |PCoffset9         | Store
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_ST:
		mc.Write(regs.PC+offset9(instruction), regs.Get(fieldDR(instruction)))

	// STI  |1011    |SR   |PCoffset9         | Store indirect
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_STI:
		pointer, err := mc.Read(regs.PC + offset9(instruction))
		if err != nil {
			return err
		}

		mc.Write(pointer, regs.Get(fieldDR(instruction)))

	// STR  |0111    |SR   |BaseR|offset6     | Store base+offset
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_STR:
		addr := regs.Get(fieldSR1(instruction)) + offset6(instruction)

		mc.Write(addr, regs.Get(fieldDR(instruction)))

	// TRAP |1111    |0000   |trapvect8       | System call
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_TRAP:
		regs.Set(7, regs.PC)

		return mc.trap(ctx, encoding.ZeroExtend(instruction, 8))

	// RTI  |1000    |000000000000            | Return from interrupt
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_RTI:
		return ErrPrivilegeViolation

	// RES  |1101    |                        | Reserved (illegal)
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_RES:
		return ErrIllegalInstruction
	}

	return nil
}

func fieldDR(instruction uint16) int {
	return int((instruction >> 9) & 0x7)
}

func fieldSR1(instruction uint16) int {
	return int((instruction >> 6) & 0x7)
}

func offset6(instruction uint16) uint16 {
	return encoding.SignExtend(instruction&0x3F, 6)
}

func offset9(instruction uint16) uint16 {
	return encoding.SignExtend(instruction&0x1FF, 9)
}

// operand2 selects SR2 or the sign extended imm5 field for ADD and AND.
func operand2(regs *Registers, instruction uint16) uint16 {
	if (instruction>>5)&0x1 == 1 {
		return encoding.SignExtend(instruction&0x1F, 5)
	}

	return regs.Get(int(instruction & 0x7))
}
