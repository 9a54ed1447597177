package service

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/rv32im/rvsim/debugger"
	"github.com/rv32im/rvsim/vm"
)

const (
	maxMemoryRead  = 1 << 20 // cap a single GetMemory request to 1MB
	maxDisasmCount = 4096
	maxStackCount  = 4096
)

var serviceLog *log.Logger

func init() {
	if os.Getenv("RVSIM_DEBUG") != "" {
		serviceLog = log.New(os.Stderr, "service: ", log.LstdFlags)
	} else {
		serviceLog = log.New(io.Discard, "", 0)
	}
}

// DebuggerService is the shared translation seam between a vm.VM +
// debugger.Debugger pair and the wire format used by both the line/TUI
// debugger and the HTTP/WebSocket API, so neither front end duplicates
// state-serialization logic.
type DebuggerService struct {
	mu  sync.RWMutex
	vm  *vm.VM
	dbg *debugger.Debugger
}

// NewDebuggerService wraps machine in a fresh debugger session.
func NewDebuggerService(machine *vm.VM) *DebuggerService {
	return &DebuggerService{
		vm:  machine,
		dbg: debugger.New(machine),
	}
}

// GetVM returns the underlying VM.
func (s *DebuggerService) GetVM() *vm.VM {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vm
}

// GetRegisterState snapshots the register file, PC, and cycle count.
func (s *DebuggerService) GetRegisterState() RegisterState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var regs [32]uint32
	for i := range regs {
		regs[i] = s.vm.Regs.Get(uint32(i))
	}

	return RegisterState{
		Registers: regs,
		PC:        s.vm.PC,
		Cycles:    s.vm.Cycles,
	}
}

// Step executes a single instruction and returns its trace record.
func (s *DebuggerService) Step() (vm.TraceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vm.Step()
}

// Continue marks the session as free-running; the caller (API handler or
// CLI loop) drives the actual step loop and checks ShouldBreak/halted.
func (s *DebuggerService) Continue() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dbg.Running = true
	s.dbg.StepMode = debugger.StepNone
	s.vm.State = vm.StateRunning
}

// Pause stops a free-running session without resetting VM state.
func (s *DebuggerService) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dbg.Running = false
}

// ShouldBreak reports whether the debugger wants to stop before the next
// instruction executes, and why.
func (s *DebuggerService) ShouldBreak() (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dbg.ShouldBreak()
}

// Reset restores the VM and clears breakpoints/watchpoints, a full reset to
// power-on state.
func (s *DebuggerService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.vm.Reset()
	s.dbg.Breakpoints.Clear()
	s.dbg.Watchpoints.Clear()
	s.dbg.Running = false
	s.dbg.StepMode = debugger.StepNone
}

// GetExecutionState returns the wire representation of the VM's state.
func (s *DebuggerService) GetExecutionState() ExecutionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return VMStateToExecution(s.vm.State)
}

// IsRunning reports whether the session is in free-running mode.
func (s *DebuggerService) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dbg.Running
}

// AddBreakpoint sets a breakpoint at address.
func (s *DebuggerService) AddBreakpoint(address uint32) BreakpointInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	bp := s.dbg.Breakpoints.AddBreakpoint(address, false, "")
	return BreakpointInfo{ID: bp.ID, Address: bp.Address, Enabled: bp.Enabled, HitCount: bp.HitCount}
}

// RemoveBreakpoint deletes the breakpoint at address.
func (s *DebuggerService) RemoveBreakpoint(address uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dbg.Breakpoints.DeleteBreakpointAt(address)
}

// GetBreakpoints lists all breakpoints.
func (s *DebuggerService) GetBreakpoints() []BreakpointInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bps := s.dbg.Breakpoints.GetAllBreakpoints()
	result := make([]BreakpointInfo, len(bps))
	for i, bp := range bps {
		result[i] = BreakpointInfo{
			ID:        bp.ID,
			Address:   bp.Address,
			Enabled:   bp.Enabled,
			Temporary: bp.Temporary,
			Condition: bp.Condition,
			HitCount:  bp.HitCount,
		}
	}
	return result
}

// ClearAllBreakpoints removes every breakpoint.
func (s *DebuggerService) ClearAllBreakpoints() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dbg.Breakpoints.Clear()
}

// AddWatchpoint watches a register (by ABI name) or a memory address.
func (s *DebuggerService) AddWatchpoint(expr string, address uint32, isRegister bool, register int) (WatchpointInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wp := s.dbg.Watchpoints.AddWatchpoint(debugger.WatchWrite, expr, address, isRegister, register)
	if err := s.dbg.Watchpoints.InitializeWatchpoint(wp.ID, s.vm); err != nil {
		_ = s.dbg.Watchpoints.DeleteWatchpoint(wp.ID)
		return WatchpointInfo{}, err
	}
	return WatchpointInfo{ID: wp.ID, Expression: wp.Expression, IsRegister: wp.IsRegister, Address: wp.Address, LastValue: wp.LastValue}, nil
}

// RemoveWatchpoint deletes a watchpoint by ID.
func (s *DebuggerService) RemoveWatchpoint(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dbg.Watchpoints.DeleteWatchpoint(id)
}

// GetWatchpoints lists all watchpoints.
func (s *DebuggerService) GetWatchpoints() []WatchpointInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wps := s.dbg.Watchpoints.GetAllWatchpoints()
	result := make([]WatchpointInfo, len(wps))
	for i, wp := range wps {
		result[i] = WatchpointInfo{ID: wp.ID, Expression: wp.Expression, IsRegister: wp.IsRegister, Address: wp.Address, LastValue: wp.LastValue}
	}
	return result
}

// GetMemory reads size bytes of memory starting at address. Unreadable
// bytes (outside [vm.Base, vm.Base+vm.MemorySize)) read back as zero rather
// than failing the whole request, so a display can show partial results at
// a region boundary.
func (s *DebuggerService) GetMemory(address uint32, size uint32) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if size > maxMemoryRead {
		return nil, fmt.Errorf("requested size %d exceeds maximum %d", size, maxMemoryRead)
	}

	data := make([]byte, size)
	for i := uint32(0); i < size; i++ {
		b, err := s.vm.Mem.ReadByte(address + i)
		if err != nil {
			continue
		}
		data[i] = b
	}
	return data, nil
}

// GetDisassembly decodes count instructions starting at startAddr.
func (s *DebuggerService) GetDisassembly(startAddr uint32, count int) []DisassemblyLine {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if count > maxDisasmCount {
		count = maxDisasmCount
	}

	result := make([]DisassemblyLine, 0, count)
	for i := 0; i < count; i++ {
		addr := startAddr + uint32(i*4)
		word, err := s.vm.Mem.ReadWord(addr)
		if err != nil {
			break
		}
		inst := vm.Decode(word)
		result = append(result, DisassemblyLine{Address: addr, Word: word, Class: inst.Class.String()})
	}
	return result
}

// GetStack reads count words from the stack, starting offset words from sp
// (x2). A negative offset reads below sp.
func (s *DebuggerService) GetStack(offset int, count int) []StackEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if count > maxStackCount {
		count = maxStackCount
	}

	sp := s.vm.Regs.Get(2)
	result := make([]StackEntry, 0, count)
	for i := 0; i < count; i++ {
		addr := uint32(int64(sp) + int64(offset+i)*4)
		value, err := s.vm.Mem.ReadWord(addr)
		if err != nil {
			continue
		}
		result = append(result, StackEntry{Address: addr, Value: value})
	}
	return result
}

// RunUntilStop free-runs the VM, invoking onStep after every executed
// instruction, until a breakpoint/watchpoint fires, the program halts, or a
// host-level execution error occurs. It mirrors the debugger CLI's own
// step loop so both front ends stop on exactly the same conditions.
func (s *DebuggerService) RunUntilStop(onStep func(vm.TraceRecord)) error {
	s.mu.Lock()
	s.dbg.Running = true
	s.dbg.StepMode = debugger.StepNone
	s.vm.State = vm.StateRunning
	s.mu.Unlock()

	for {
		s.mu.Lock()
		if !s.dbg.Running {
			s.mu.Unlock()
			return nil
		}
		if shouldBreak, _ := s.dbg.ShouldBreak(); shouldBreak {
			s.dbg.Running = false
			s.vm.State = vm.StateBreakpoint
			s.mu.Unlock()
			return nil
		}

		rec, err := s.vm.Step()
		halted := s.vm.State == vm.StateHalted
		s.mu.Unlock()

		if onStep != nil {
			onStep(rec)
		}

		if err != nil && !halted {
			s.mu.Lock()
			s.dbg.Running = false
			s.mu.Unlock()
			return err
		}
		if halted {
			s.mu.Lock()
			s.dbg.Running = false
			s.mu.Unlock()
			return nil
		}
	}
}
