package service

import "github.com/rv32im/rvsim/vm"

// RegisterState is a snapshot of the full RV32I register file plus PC and
// cycle count, the shape both the debugger and the API serialize.
type RegisterState struct {
	Registers [32]uint32
	PC        uint32
	Cycles    uint64
}

// BreakpointInfo describes a breakpoint for UI/API display.
type BreakpointInfo struct {
	ID        int    `json:"id"`
	Address   uint32 `json:"address"`
	Enabled   bool   `json:"enabled"`
	Temporary bool   `json:"temporary"`
	Condition string `json:"condition,omitempty"`
	HitCount  int    `json:"hitCount"`
}

// WatchpointInfo describes a watchpoint for UI/API display.
type WatchpointInfo struct {
	ID         int    `json:"id"`
	Expression string `json:"expression"`
	IsRegister bool   `json:"isRegister"`
	Address    uint32 `json:"address,omitempty"`
	LastValue  uint32 `json:"lastValue"`
}

// MemoryRegion is a contiguous block of memory read out for display.
type MemoryRegion struct {
	Address uint32
	Data    []byte
}

// ExecutionState mirrors vm.ExecutionState as a wire-friendly string,
// insulating the API and debugger front ends from the core's enum.
type ExecutionState string

const (
	StateRunning    ExecutionState = "running"
	StateHalted     ExecutionState = "halted"
	StateBreakpoint ExecutionState = "breakpoint"
	StateError      ExecutionState = "error"
)

// VMStateToExecution converts vm.ExecutionState to the wire representation.
func VMStateToExecution(state vm.ExecutionState) ExecutionState {
	switch state {
	case vm.StateRunning:
		return StateRunning
	case vm.StateHalted:
		return StateHalted
	case vm.StateBreakpoint:
		return StateBreakpoint
	case vm.StateError:
		return StateError
	default:
		return StateHalted
	}
}

// DisassemblyLine is one decoded instruction in a disassembly listing.
type DisassemblyLine struct {
	Address uint32 `json:"address"`
	Word    uint32 `json:"word"`
	Class   string `json:"class"`
}

// StackEntry is a single word read from the stack, addressed relative to sp.
type StackEntry struct {
	Address uint32 `json:"address"`
	Value   uint32 `json:"value"`
}
