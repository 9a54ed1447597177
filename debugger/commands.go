package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rv32im/rvsim/vm"
)

func (d *Debugger) cmdRun(args []string) error {
	d.VM.ResetRegisters()
	d.VM.State = vm.StateRunning
	d.Running = true
	d.StepMode = StepNone
	d.Println("Starting program execution...")
	return nil
}

func (d *Debugger) cmdContinue(args []string) error {
	if d.VM.State == vm.StateHalted {
		return fmt.Errorf("program is not running")
	}
	d.VM.State = vm.StateRunning
	d.Running = true
	d.StepMode = StepNone
	d.Println("Continuing...")
	return nil
}

// cmdStep executes exactly one instruction at the current PC; a breakpoint
// set at that PC does not stop it.
func (d *Debugger) cmdStep(args []string) error {
	d.StepMode = StepNone
	rec, err := d.VM.Step()
	if d.TraceOn {
		d.Println(rec.Text)
	}
	if err != nil {
		return err
	}
	if rec.Halt {
		d.Printf("Program halted at pc=0x%08x\n", d.VM.PC)
	}
	return nil
}

func (d *Debugger) cmdBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: break <address> [if <reg> <op> <value>]")
	}

	address, err := d.ResolveAddress(args[0])
	if err != nil {
		return err
	}

	var condition string
	if len(args) > 1 && strings.ToLower(args[1]) == "if" {
		condition = strings.Join(args[2:], " ")
	}

	bp := d.Breakpoints.AddBreakpoint(address, false, condition)
	if condition != "" {
		d.Printf("Breakpoint %d at 0x%08x (condition: %s)\n", bp.ID, address, condition)
	} else {
		d.Printf("Breakpoint %d at 0x%08x\n", bp.ID, address)
	}
	return nil
}

func (d *Debugger) cmdTBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tbreak <address>")
	}
	address, err := d.ResolveAddress(args[0])
	if err != nil {
		return err
	}
	bp := d.Breakpoints.AddBreakpoint(address, true, "")
	d.Printf("Temporary breakpoint %d at 0x%08x\n", bp.ID, address)
	return nil
}

func (d *Debugger) cmdDelete(args []string) error {
	if len(args) == 0 {
		d.Breakpoints.Clear()
		d.Println("All breakpoints deleted")
		return nil
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}
	if err := d.Breakpoints.DeleteBreakpoint(id); err != nil {
		return err
	}
	d.Printf("Breakpoint %d deleted\n", id)
	return nil
}

func (d *Debugger) cmdEnable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: enable <breakpoint-id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}
	if err := d.Breakpoints.EnableBreakpoint(id); err != nil {
		return err
	}
	d.Printf("Breakpoint %d enabled\n", id)
	return nil
}

func (d *Debugger) cmdDisable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: disable <breakpoint-id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}
	if err := d.Breakpoints.DisableBreakpoint(id); err != nil {
		return err
	}
	d.Printf("Breakpoint %d disabled\n", id)
	return nil
}

// cmdWatch sets a watchpoint on a register or a bracketed memory address,
// e.g. "watch t0" or "watch [0x80000100]".
func (d *Debugger) cmdWatch(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: watch <register>|[<address>]")
	}
	expr := args[0]

	if strings.HasPrefix(expr, "[") && strings.HasSuffix(expr, "]") {
		addrStr := strings.TrimSuffix(strings.TrimPrefix(expr, "["), "]")
		addr, err := d.ResolveAddress(addrStr)
		if err != nil {
			return err
		}
		wp := d.Watchpoints.AddWatchpoint(WatchWrite, expr, addr, false, 0)
		if err := d.Watchpoints.InitializeWatchpoint(wp.ID, d.VM); err != nil {
			return err
		}
		d.Printf("Watchpoint %d: %s\n", wp.ID, expr)
		return nil
	}

	reg, ok := vm.LookupABI(expr)
	if !ok {
		return fmt.Errorf("unknown register %q", expr)
	}
	wp := d.Watchpoints.AddWatchpoint(WatchWrite, expr, 0, true, int(reg))
	if err := d.Watchpoints.InitializeWatchpoint(wp.ID, d.VM); err != nil {
		return err
	}
	d.Printf("Watchpoint %d: %s\n", wp.ID, expr)
	return nil
}

// cmdRegs prints the full register file, one register per line (ABI name,
// index, hex and signed decimal value), followed by pc and cycle count.
func (d *Debugger) cmdRegs(args []string) error {
	d.Println("Registers:")
	for i := 0; i < 32; i++ {
		v := d.VM.Regs.Get(uint32(i))
		d.Printf("  %-4s(x%-2d) = 0x%08x (%d)\n", vm.ABIName(uint32(i)), i, v, int32(v))
	}
	d.Printf("  pc       = 0x%08x\n", d.VM.PC)
	d.Printf("  cycles   = %d\n", d.VM.Cycles)
	return nil
}

// cmdMem dumps len bytes of memory starting at addr, 16 bytes per row.
func (d *Debugger) cmdMem(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: mem <address> <length>")
	}
	addr, err := d.ResolveAddress(args[0])
	if err != nil {
		return err
	}
	length, err := strconv.Atoi(args[1])
	if err != nil || length <= 0 {
		return fmt.Errorf("invalid length: %s", args[1])
	}

	for row := 0; row < length; row += 16 {
		d.Printf("0x%08x:", addr+uint32(row))
		for col := 0; col < 16 && row+col < length; col++ {
			b, err := d.VM.Mem.ReadByte(addr + uint32(row+col))
			if err != nil {
				return err
			}
			d.Printf(" %02x", b)
		}
		d.Println()
	}
	return nil
}

func (d *Debugger) cmdTrace(args []string) error {
	if len(args) == 0 {
		d.Printf("trace is %s\n", onOff(d.TraceOn))
		return nil
	}
	switch args[0] {
	case "on":
		d.TraceOn = true
	case "off":
		d.TraceOn = false
	default:
		return fmt.Errorf("usage: trace on|off")
	}
	d.Printf("trace is %s\n", onOff(d.TraceOn))
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (d *Debugger) cmdReset(args []string) error {
	d.VM.ResetRegisters()
	d.Println("VM reset (registers and PC only; memory preserved)")
	return nil
}

func (d *Debugger) cmdHelp(args []string) error {
	d.Println(`Commands:
  run, r                   reset and start execution
  continue, c               continue until breakpoint or halt
  step, s                   execute a single instruction
  break ADDR [if COND]       set a breakpoint
  tbreak ADDR                set a one-shot breakpoint
  delete [ID]                delete one breakpoint, or all if ID omitted
  enable ID / disable ID     toggle a breakpoint
  watch REG|[ADDR]           break when a register or memory word changes
  regs                       print the register file
  mem ADDR LEN                dump LEN bytes of memory starting at ADDR
  trace on|off                toggle printing trace lines as they execute
  reset                       reset the VM to its initial state
  help                       show this message
  quit, q, exit               leave the debugger`)
	return nil
}
