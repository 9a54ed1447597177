package api

import (
	"time"

	"github.com/rv32im/rvsim/service"
)

// SessionCreateRequest is the body of POST /sessions.
type SessionCreateRequest struct {
	MaxCycles uint64 `json:"maxCycles,omitempty"` // 0 keeps the session default
}

// SessionCreateResponse is the response from POST /sessions.
type SessionCreateResponse struct {
	SessionID string    `json:"sessionId"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionStatusResponse is the response from GET /sessions/{id}.
type SessionStatusResponse struct {
	SessionID string `json:"sessionId"`
	State     string `json:"state"`
	PC        uint32 `json:"pc"`
	Cycles    uint64 `json:"cycles"`
}

// LoadImageRequest is the body of POST /sessions/{id}/load: the raw
// hex-record program image text (spec.md §6 format).
type LoadImageRequest struct {
	Image string `json:"image"`
}

// LoadImageResponse reports the entry point recovered from the image.
type LoadImageResponse struct {
	EntryPoint uint32 `json:"entryPoint"`
}

// RegistersResponse is the response from GET /sessions/{id}/registers.
type RegistersResponse struct {
	Registers [32]uint32 `json:"registers"`
	PC        uint32     `json:"pc"`
	Cycles    uint64     `json:"cycles"`
}

// MemoryResponse is the response from GET /sessions/{id}/memory.
type MemoryResponse struct {
	Address uint32 `json:"address"`
	Data    []byte `json:"data"`
}

// DisassemblyResponse is the response from GET /sessions/{id}/disassembly.
type DisassemblyResponse struct {
	Instructions []service.DisassemblyLine `json:"instructions"`
}

// StackResponse is the response from GET /sessions/{id}/stack.
type StackResponse struct {
	Entries []service.StackEntry `json:"entries"`
}

// BreakpointRequest is the body of POST /sessions/{id}/breakpoint.
type BreakpointRequest struct {
	Address uint32 `json:"address"`
}

// BreakpointsResponse is the response from GET /sessions/{id}/breakpoints.
type BreakpointsResponse struct {
	Breakpoints []service.BreakpointInfo `json:"breakpoints"`
}

// WatchpointRequest is the body of POST /sessions/{id}/watchpoint: either a
// register ABI name or a memory address, mirroring the debugger's "watch"
// command syntax.
type WatchpointRequest struct {
	Register string `json:"register,omitempty"`
	Address  uint32 `json:"address,omitempty"`
}

// WatchpointsResponse is the response from GET /sessions/{id}/watchpoints.
type WatchpointsResponse struct {
	Watchpoints []service.WatchpointInfo `json:"watchpoints"`
}

// ErrorResponse is the body of any non-2xx JSON response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// SuccessResponse is a simple success acknowledgement.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Event is a timestamped message envelope. A session's WebSocket stream
// itself pushes BroadcastEvent values (broadcaster.go), which have no
// timestamp.
type Event struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// StateEvent is the payload of a "state" Event: a full register snapshot
// plus execution state, pushed after every step.
type StateEvent struct {
	State     string     `json:"state"`
	PC        uint32     `json:"pc"`
	Registers [32]uint32 `json:"registers"`
	Cycles    uint64     `json:"cycles"`
}

// TraceEvent holds one executed instruction's trace line. The stream has no
// "trace" message type: trace lines are pushed as "output" messages whose
// stream is "trace".
type TraceEvent struct {
	Text string `json:"text"`
}

// ExecutionEvent is the payload of an "event" message, pushed once a run
// stops: its Event is the session's execution state at that point.
type ExecutionEvent struct {
	Event   string `json:"event"` // "halted", "breakpoint", "error", or "running" after a pause
	Address uint32 `json:"address,omitempty"`
	Message string `json:"message,omitempty"`
}

// ToRegistersResponse converts a service.RegisterState to its wire form.
func ToRegistersResponse(regs service.RegisterState) RegistersResponse {
	return RegistersResponse{
		Registers: regs.Registers,
		PC:        regs.PC,
		Cycles:    regs.Cycles,
	}
}
