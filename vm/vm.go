package vm

import (
	"fmt"
	"io"
)

// ExecutionState mirrors the lifecycle a caller (CLI, debugger, API) drives
// the VM through.
type ExecutionState int

const (
	StateHalted ExecutionState = iota
	StateRunning
	StateBreakpoint
	StateError
)

func (s ExecutionState) String() string {
	switch s {
	case StateHalted:
		return "halted"
	case StateRunning:
		return "running"
	case StateBreakpoint:
		return "breakpoint"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// VM bundles the architectural state — memory, registers, PC — and the
// bookkeeping needed to drive the fetch-decode-execute loop. All of it is
// owned exclusively by whichever goroutine calls Step/Run; there is no
// internal synchronization (spec.md §5: single-threaded, no sharing).
type VM struct {
	Regs   RegisterFile
	Mem    *Memory
	PC     uint32
	Cycles uint64
	State  ExecutionState

	MaxSteps uint64

	// EntryPC records where the loader set PC when the current program image
	// was installed, so a debugger session can restart execution without
	// reloading the image from disk.
	EntryPC uint32

	// LastError records why State became StateError.
	LastError error

	// OutputWriter receives nothing from the core itself (no ECALL console
	// I/O is implemented); it is the seam the API attaches its trace
	// broadcasting writer to.
	OutputWriter io.Writer
}

// NewVM creates a VM with a fresh, zeroed Memory and RegisterFile, PC at the
// reset address.
func NewVM() *VM {
	return &VM{
		Mem:      NewMemory(),
		PC:       ResetPC,
		State:    StateHalted,
		MaxSteps: DefaultMaxSteps,
	}
}

// Reset clears all architectural state, including memory, back to power-on
// values. Any loaded program image is lost; callers that want to restart
// execution of an already-loaded image should use ResetRegisters instead.
func (m *VM) Reset() {
	m.Regs.Reset()
	m.Mem.Reset()
	m.PC = ResetPC
	m.Cycles = 0
	m.State = StateHalted
	m.LastError = nil
}

// ResetRegisters reinitializes registers, PC (to EntryPC), and cycle count
// but preserves memory contents, so a debugger can restart execution of the
// currently loaded program without reloading it from disk.
func (m *VM) ResetRegisters() {
	m.Regs.Reset()
	m.PC = m.EntryPC
	m.Cycles = 0
	m.State = StateHalted
	m.LastError = nil
}

// LoadProgram installs a program image into memory at addr without
// disturbing the PC (the loader sets PC separately via SetPC once the whole
// image, possibly spanning multiple @ directives, is in place).
func (m *VM) LoadProgram(addr uint32, data []byte) error {
	if err := m.Mem.LoadBytes(addr, data); err != nil {
		return fmt.Errorf("load program: %w", err)
	}
	return nil
}

// SetPC sets the program counter, used by the CLI and the API's load handler
// to establish the entry point after loading an image.
func (m *VM) SetPC(pc uint32) { m.PC = pc }

// Fetch reads the instruction word at the current PC using the same
// little-endian word read as a data load (spec.md §4.6).
func (m *VM) Fetch() (uint32, error) {
	word, err := m.Mem.ReadWord(m.PC)
	if err != nil {
		return 0, fmt.Errorf("fetch at pc=0x%08x: %w", m.PC, err)
	}
	return word, nil
}

// Step fetches, decodes, and executes exactly one instruction, advancing PC
// and returning the TraceRecord the run loop should emit. Step returns an
// error only for a host-level failure (out-of-range memory); an
// architecturally undefined opcode is not an error, it is traced as a no-op
// per spec.md §7.
func (m *VM) Step() (TraceRecord, error) {
	pc := m.PC
	word, err := m.Fetch()
	if err != nil {
		m.State = StateError
		m.LastError = err
		return TraceRecord{}, err
	}

	inst := Decode(word)
	nextPC := pc + 4

	var rec TraceRecord
	switch inst.Class {
	case Load:
		rec, err = execLoad(m, inst, pc)
	case OpImm:
		rec, err = execOpImm(m, inst, pc)
	case AuiPc:
		rec, err = execAuiPc(m, inst, pc)
	case Store:
		rec, err = execStore(m, inst, pc)
	case Op:
		switch inst.Funct7 {
		case Funct7Base:
			rec, err = execOpBase(m, inst, pc)
		case Funct7Alt:
			rec, err = execOpAlt(m, inst, pc)
		case Funct7MExt:
			rec, err = execMulDiv(m, inst, pc)
		default:
			rec = traceUnknown(pc, word)
		}
	case Lui:
		rec, err = execLui(m, inst, pc)
	case Branch:
		rec, nextPC, err = execBranch(m, inst, pc)
	case Jalr:
		rec, nextPC, err = execJalr(m, inst, pc)
	case Jal:
		rec, nextPC, err = execJal(m, inst, pc)
	case System:
		rec, err = execSystem(m, inst, pc)
	default:
		rec = traceUnknown(pc, word)
	}

	if err != nil {
		m.State = StateError
		m.LastError = err
		return TraceRecord{}, err
	}

	m.PC = nextPC
	m.Cycles++

	if rec.Halt {
		m.State = StateHalted
	}
	return rec, nil
}

// Run steps the VM until EBREAK halts it, a step errors, or MaxSteps is
// exceeded, invoking emit once per executed instruction. A MaxSteps of zero
// disables the guard.
func (m *VM) Run(emit func(TraceRecord)) error {
	m.State = StateRunning
	for {
		if m.MaxSteps > 0 && m.Cycles >= m.MaxSteps {
			m.State = StateError
			m.LastError = fmt.Errorf("exceeded maximum step count (%d)", m.MaxSteps)
			return m.LastError
		}

		rec, err := m.Step()
		if err != nil {
			return err
		}
		if emit != nil {
			emit(rec)
		}
		if rec.Halt {
			return nil
		}
	}
}

// DumpState returns a one-line human-readable summary, used by the CLI's
// verbose completion message.
func (m *VM) DumpState() string {
	return fmt.Sprintf("pc=0x%08x cycles=%d state=%s", m.PC, m.Cycles, m.State)
}
