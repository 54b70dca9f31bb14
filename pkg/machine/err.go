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
	"errors"

	"github.com/lassandro/lc3vm/pkg/translate"
)

var f = translate.From

var (
	ErrIllegalInstruction = errors.New(f("illegal instruction (RES)"))
	ErrPrivilegeViolation = errors.New(f("privilege violation (RTI)"))
	ErrTruncatedHeader    = errors.New(f("truncated origin header"))
	ErrImageOverflow      = errors.New(f("image overflows address space"))
)

type LoadError struct {
	Err error
}

func (err *LoadError) Error() string {
	return f("load: %v", err.Err)
}

func (err *LoadError) Unwrap() error {
	return err.Err
}

type UnimplementedTrapError struct {
	Vector uint16
}

func (err *UnimplementedTrapError) Error() string {
	return f("unimplemented trap vector %#02x", err.Vector)
}

type UnmappedAddressError struct {
	Addr uint16
}

func (err *UnmappedAddressError) Error() string {
	return f("unimplemented memory-mapped address %#04x", err.Addr)
}

// InvalidRegisterError is panicked, decoded register fields never produce it.
type InvalidRegisterError struct {
	Index int
}

func (err *InvalidRegisterError) Error() string {
	return f("invalid register index %d", err.Index)
}

// ExecError locates a runtime fault at the address of the faulting instruction.
type ExecError struct {
	Addr        uint16
	Instruction uint16
	Err         error
}

func (err *ExecError) Error() string {
	return f("%#04x: %#04x: %v", err.Addr, err.Instruction, err.Err)
}

func (err *ExecError) Unwrap() error {
	return err.Err
}
