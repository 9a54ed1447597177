package debugger

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rv32im/rvsim/vm"
)

// RunCLI runs the line-oriented debugger REPL on stdin/stdout.
func RunCLI(dbg *Debugger) error {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("(rvsim-dbg) ")

		if !scanner.Scan() {
			break
		}

		cmdLine := strings.TrimSpace(scanner.Text())

		if cmdLine == "quit" || cmdLine == "q" || cmdLine == "exit" {
			fmt.Println("Exiting debugger...")
			break
		}

		if err := dbg.ExecuteCommand(cmdLine); err != nil {
			fmt.Printf("Error: %v\n", err)
		}

		if output := dbg.GetOutput(); output != "" {
			fmt.Print(output)
		}

		if dbg.Running {
			for dbg.Running {
				if shouldBreak, reason := dbg.ShouldBreak(); shouldBreak {
					dbg.Running = false
					fmt.Printf("Stopped: %s at pc=0x%08x\n", reason, dbg.VM.PC)
					break
				}

				rec, err := dbg.VM.Step()
				if dbg.TraceOn {
					fmt.Println(rec.Text)
				}
				if err != nil {
					fmt.Printf("Runtime error: %v\n", err)
					dbg.Running = false
					break
				}
				if dbg.VM.State == vm.StateHalted {
					dbg.Running = false
					fmt.Printf("Program halted at pc=0x%08x\n", dbg.VM.PC)
					break
				}
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("input error: %w", err)
	}

	return nil
}

// RunTUI runs the tcell/tview text user interface.
func RunTUI(dbg *Debugger) error {
	t := NewTUI(dbg)
	return t.Run()
}
