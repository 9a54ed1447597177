package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rv32im/rvsim/vm"
)

// Debugger wraps a VM with breakpoints, watchpoints, and a REPL command
// dispatcher. It drives the VM one step at a time rather than handing it a
// free-running loop, so it can check stop conditions between instructions.
type Debugger struct {
	VM *vm.VM

	Breakpoints *BreakpointManager
	Watchpoints *WatchpointManager
	History     *CommandHistory

	Running  bool
	StepMode StepMode

	// TraceOn echoes each executed instruction's trace line as it runs,
	// the debugger's equivalent of the CLI's trace file.
	TraceOn bool

	LastCommand string

	Output strings.Builder
}

// StepMode controls what ShouldBreak checks for on the next instruction.
type StepMode int

const (
	StepNone StepMode = iota
	StepSingle
)

// New creates a debugger session bound to machine.
func New(machine *vm.VM) *Debugger {
	return &Debugger{
		VM:          machine,
		Breakpoints: NewBreakpointManager(),
		Watchpoints: NewWatchpointManager(),
		History:     NewCommandHistory(),
	}
}

// ResolveAddress parses a hex (0x-prefixed) or decimal address, or looks it
// up as an ABI register name holding an address (e.g. "sp").
func (d *Debugger) ResolveAddress(s string) (uint32, error) {
	if reg, ok := vm.LookupABI(s); ok {
		return d.VM.Regs.Get(reg), nil
	}

	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseUint(s[2:], 16, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid address: %s", s)
		}
		return uint32(v), nil
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid address: %s", s)
	}
	return uint32(v), nil
}

// ExecuteCommand parses and runs one command line. An empty line repeats
// the last command, matching the convention of step/next-style debuggers.
func (d *Debugger) ExecuteCommand(cmdLine string) error {
	cmdLine = strings.TrimSpace(cmdLine)
	if cmdLine == "" {
		cmdLine = d.LastCommand
	}
	if cmdLine != "" {
		d.History.Add(cmdLine)
		d.LastCommand = cmdLine
	}

	parts := strings.Fields(cmdLine)
	if len(parts) == 0 {
		return nil
	}

	return d.handleCommand(strings.ToLower(parts[0]), parts[1:])
}

func (d *Debugger) handleCommand(cmd string, args []string) error {
	switch cmd {
	case "run", "r":
		return d.cmdRun(args)
	case "continue", "c":
		return d.cmdContinue(args)
	case "step", "s":
		return d.cmdStep(args)

	case "break", "b":
		return d.cmdBreak(args)
	case "tbreak", "tb":
		return d.cmdTBreak(args)
	case "delete", "d":
		return d.cmdDelete(args)
	case "enable":
		return d.cmdEnable(args)
	case "disable":
		return d.cmdDisable(args)

	case "watch", "w":
		return d.cmdWatch(args)

	case "regs", "registers", "info":
		return d.cmdRegs(args)
	case "mem", "x":
		return d.cmdMem(args)
	case "trace":
		return d.cmdTrace(args)

	case "reset":
		return d.cmdReset(args)

	case "help", "h", "?":
		return d.cmdHelp(args)

	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
	}
}

// ShouldBreak reports whether execution should pause before the current PC
// executes, and why.
func (d *Debugger) ShouldBreak() (bool, string) {
	pc := d.VM.PC

	if d.StepMode == StepSingle {
		d.StepMode = StepNone
		return true, "single step"
	}

	if bp := d.Breakpoints.GetBreakpoint(pc); bp != nil {
		if !bp.Enabled {
			return false, ""
		}
		if bp.Condition != "" {
			ok, err := d.evalCondition(bp.Condition)
			if err != nil {
				return true, fmt.Sprintf("breakpoint %d (condition error: %v)", bp.ID, err)
			}
			if !ok {
				return false, ""
			}
		}

		bp.HitCount++
		if bp.Temporary {
			_ = d.Breakpoints.DeleteBreakpoint(bp.ID)
		}
		return true, fmt.Sprintf("breakpoint %d", bp.ID)
	}

	if wp, changed := d.Watchpoints.CheckWatchpoints(d.VM); wp != nil && changed {
		return true, fmt.Sprintf("watchpoint %d: %s", wp.ID, wp.Expression)
	}

	return false, ""
}

// evalCondition supports the one conditional form the CLI needs: "<reg>
// ==|!=|<|>|<=|>= <value>", e.g. "t0 == 0x10". Anything richer belongs in a
// real expression language, which this debugger deliberately doesn't have.
func (d *Debugger) evalCondition(cond string) (bool, error) {
	fields := strings.Fields(cond)
	if len(fields) != 3 {
		return false, fmt.Errorf("unsupported condition %q (want '<reg> <op> <value>')", cond)
	}

	reg, ok := vm.LookupABI(fields[0])
	if !ok {
		return false, fmt.Errorf("unknown register %q", fields[0])
	}
	lhs := int32(d.VM.Regs.Get(reg))

	rhsAddr, err := d.ResolveAddress(fields[2])
	if err != nil {
		return false, err
	}
	rhs := int32(rhsAddr)

	switch fields[1] {
	case "==":
		return lhs == rhs, nil
	case "!=":
		return lhs != rhs, nil
	case "<":
		return lhs < rhs, nil
	case ">":
		return lhs > rhs, nil
	case "<=":
		return lhs <= rhs, nil
	case ">=":
		return lhs >= rhs, nil
	default:
		return false, fmt.Errorf("unsupported operator %q", fields[1])
	}
}

// GetOutput returns and clears the buffered output produced by the last
// command.
func (d *Debugger) GetOutput() string {
	output := d.Output.String()
	d.Output.Reset()
	return output
}

func (d *Debugger) Printf(format string, args ...interface{}) {
	fmt.Fprintf(&d.Output, format, args...)
}

func (d *Debugger) Println(args ...interface{}) {
	fmt.Fprintln(&d.Output, args...)
}
