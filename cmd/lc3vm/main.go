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
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/lassandro/lc3vm/pkg/debugger"
	"github.com/lassandro/lc3vm/pkg/keyboard"
	"github.com/lassandro/lc3vm/pkg/machine"
	"github.com/lassandro/lc3vm/pkg/translate"
)

var helpvar bool
var debugvar bool
var watchvar watchList

const usage = "lc3vm [-debug] [-watch 0x####[:r|w|rw]]... filename"

type watchList []debugger.Watchpoint

func (list *watchList) String() string {
	parts := make([]string, 0, len(*list))
	for _, watch := range *list {
		parts = append(parts, fmt.Sprintf("%#04x:%v", watch.Addr, watch.Type))
	}

	return strings.Join(parts, ",")
}

func (list *watchList) Set(s string) error {
	watch, err := debugger.ParseWatchpoint(s)
	if err != nil {
		return err
	}

	*list = append(*list, watch)

	return nil
}

func init() {
	exe, _ := os.Executable()
	log.SetFlags(0)
	log.SetPrefix(fmt.Sprintf("%s: ", filepath.Base(exe)))
	log.SetOutput(os.Stderr)
}

func init() {
	flag.BoolVar(&helpvar, "help", false, "Displays command usage")
	flag.BoolVar(&debugvar, "debug", false, "Traces every instruction to stderr")
	flag.Var(&watchvar, "watch", "Traces accesses to an address (with -debug)")
}

func lc3vm() int {
	flag.Parse()

	if helpvar {
		fmt.Println(usage)
		return 0
	}

	args := flag.Args()

	if len(args) != 1 {
		log.Println(usage)
		return 1
	}

	file, err := os.Open(args[0])

	if err != nil {
		log.Println(translate.From("load: %v", err))
		return 1
	}

	defer file.Close()

	var mc machine.Machine
	var dh machine.DeviceHandler
	dh.Display = bufio.NewWriter(os.Stdout)
	mc.Devices = &dh

	if debugvar {
		tracer := debugger.NewTracer(os.Stderr)
		tracer.Watchpoints = watchvar
		mc.Debugger = tracer
	}

	if err := mc.LoadBin(file); err != nil {
		log.Println(err)
		return 1
	}

	raw, err := enterRawTerm(os.Stdin)

	if err != nil {
		log.Println(err)
		return 1
	}

	defer func() {
		if err := raw.Restore(); err != nil {
			log.Println(err)
		}
	}()

	kb := keyboard.New(os.Stdin)
	defer kb.Close()
	dh.Keyboard = kb

	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	if err := mc.Run(ctx); errors.Is(err, context.Canceled) {
		fmt.Println()
		return 130
	} else if err != nil {
		log.Println(err)
		return 1
	}

	return 0
}

func main() {
	os.Exit(lc3vm())
}
