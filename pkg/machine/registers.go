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

func (reg *Registers) ref(idx int) *uint16 {
	switch {
	case idx >= 0 && idx < len(reg.R):
		return &reg.R[idx]
	case idx == REG_PC:
		return &reg.PC
	case idx == REG_COND:
		return &reg.Cond
	}

	panic(&InvalidRegisterError{Index: idx})
}

func (reg *Registers) Get(idx int) uint16 {
	return *reg.ref(idx)
}

func (reg *Registers) Set(idx int, value uint16) {
	*reg.ref(idx) = value
}

// SetWithCond stores value and replaces the condition flags with its sign.
func (reg *Registers) SetWithCond(idx int, value uint16) {
	reg.Set(idx, value)

	switch signed := int16(value); {
	case signed > 0:
		reg.Cond = FLAG_POS
	case signed < 0:
		reg.Cond = FLAG_NEG
	default:
		reg.Cond = FLAG_ZERO
	}
}

// Flags renders the condition register as a subset of "NZP".
func (reg *Registers) Flags() string {
	var flags []byte

	if reg.Cond&FLAG_NEG != 0 {
		flags = append(flags, 'N')
	}
	if reg.Cond&FLAG_ZERO != 0 {
		flags = append(flags, 'Z')
	}
	if reg.Cond&FLAG_POS != 0 {
		flags = append(flags, 'P')
	}

	return string(flags)
}
