// Command cpurunner executes a CHIP-8 program on the bare CPU without display or
// timing, printing an optional instruction trace. It exits 1 when the CPU traps.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/cart"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/config"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/cpu"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/emu"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

type traceEntry struct {
	pc, op, i uint16
	sp, dt    byte
	v         [16]byte
}

func (te traceEntry) String() string {
	return fmt.Sprintf("PC=%03X OP=%04X %-16s I=%03X SP=%X DT=%02X V=% X",
		te.pc, te.op, emu.FormatInstruction(te.op), te.i, te.sp, te.dt, te.v[:])
}

func main() {
	romPath := flag.String("rom", "", "path to ROM (.ch8)")
	steps := flag.Int("steps", 1_000_000, "max CPU cycles to run")
	seed := flag.Int64("seed", 1, "random seed for RND")
	trace := flag.Bool("trace", false, "print PC/opcodes")
	timeout := flag.Duration("timeout", 0, "optional wall-clock timeout (e.g. 30s, 2m); 0 disables")
	traceOnFail := flag.Bool("traceOnFail", false, "on a trap, print a recent trace window")
	traceWindow := flag.Int("traceWindow", 64, "number of recent instructions to include in 'traceOnFail' dump")
	dump := flag.Bool("dump", false, "print the display as text when done")
	quiet := flag.Bool("q", false, "only log errors")
	flag.Parse()

	logger := config.CreateLogger(false, *quiet)
	if *romPath == "" {
		logger.Fatal("-rom is required")
	}
	rom, err := cart.Load(*romPath)
	if err != nil {
		logger.Fatal("Loading ROM failed", log.Err(err))
	}

	c := cpu.New(cpu.WithSeed(*seed))
	if err := c.Load(rom.Data); err != nil {
		logger.Fatal("Loading ROM failed", log.Err(err))
	}
	logger.Info("Running", log.String("rom", rom.Info.String()), log.Int("steps", *steps))

	ctx := app.Context()
	start := time.Now()
	var deadline time.Time
	if *timeout > 0 {
		deadline = start.Add(*timeout)
	}

	window := *traceWindow
	if window < 1 {
		window = 1
	}
	ring := make([]traceEntry, window)
	ringIdx, ringFill := 0, 0

	done := func(n int) {
		fmt.Printf("\nDone: steps=%d elapsed=%s\n", n, time.Since(start).Truncate(time.Millisecond))
		if *dump {
			fmt.Print(c.Display())
		}
	}

	for i := 0; i < *steps; i++ {
		if *trace || *traceOnFail {
			te := traceEntry{pc: c.PC, op: c.Opcode(), i: c.I, sp: c.SP, dt: c.DT, v: c.V}
			if *trace {
				fmt.Println(te)
			}
			ring[ringIdx] = te
			ringIdx = (ringIdx + 1) % window
			if ringFill < window {
				ringFill++
			}
		}

		if err := c.Cycle(); err != nil {
			logger.Error("CPU trap", log.Err(err))
			if *traceOnFail && ringFill > 0 {
				fmt.Printf("\n--- recent trace (last %d instructions) ---\n", ringFill)
				// print in chronological order
				startIdx := (ringIdx - ringFill + window) % window
				for j := 0; j < ringFill; j++ {
					fmt.Println(ring[(startIdx+j)%window])
				}
				fmt.Printf("--- end trace ---\n")
			}
			done(i + 1)
			os.Exit(1)
		}

		if i%1024 == 0 {
			select {
			case <-ctx.Done():
				logger.Info("Operation cancelled")
				done(i + 1)
				os.Exit(130)
			default:
			}
			if !deadline.IsZero() && time.Now().After(deadline) {
				fmt.Printf("\nTimeout after %s.\n", time.Since(start).Truncate(time.Millisecond))
				done(i + 1)
				os.Exit(2)
			}
		}
	}
	done(*steps)
}
