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

// Package debugger traces machine execution as structured log records.
package debugger

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/lassandro/lc3vm/pkg/machine"
)

type Tracer struct {
	Watchpoints []Watchpoint

	log *logrus.Logger
}

func NewTracer(out io.Writer) *Tracer {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(logrus.DebugLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    true,
	})

	return &Tracer{log: logger}
}

func hex(value uint16) string {
	return fmt.Sprintf("%#04x", value)
}

// Trace records the instruction about to execute at the current PC.
func (dbg *Tracer) Trace(mc *machine.Machine, instruction uint16) {
	regs := &mc.State.Registers

	fields := logrus.Fields{
		"pc":     hex(regs.PC),
		"op":     machine.OpcodeOf(instruction).String(),
		"params": hex(instruction & 0x0FFF),
		"cond":   hex(regs.Cond),
		"flags":  regs.Flags(),
	}

	for i, value := range regs.R {
		fields[fmt.Sprintf("r%d", i)] = hex(value)
	}

	dbg.log.WithFields(fields).Debug("step")
}

func (dbg *Tracer) Read(addr uint16, mc *machine.Machine) {
	dbg.watch(addr, ReadWatch, "read", mc)
}

func (dbg *Tracer) Write(addr uint16, mc *machine.Machine) {
	dbg.watch(addr, WriteWatch, "write", mc)
}

func (dbg *Tracer) watch(addr uint16, access WatchpointType, msg string, mc *machine.Machine) {
	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Addr != addr || watchpoint.Type&access == 0 {
			continue
		}

		dbg.log.WithFields(logrus.Fields{
			"pc":    hex(mc.State.Registers.PC),
			"addr":  hex(addr),
			"value": hex(mc.State.Memory[addr]),
		}).Info(msg)

		break
	}
}
