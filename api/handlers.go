package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/rv32im/rvsim/loader"
	"github.com/rv32im/rvsim/service"
	"github.com/rv32im/rvsim/vm"
)

// handleCreateSession handles POST /sessions
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req SessionCreateRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := s.sessions.CreateSession(req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to create session: %v", err))
		return
	}

	writeJSON(w, http.StatusCreated, SessionCreateResponse{
		SessionID: session.ID,
		CreatedAt: session.CreatedAt,
	})
}

// handleListSessions handles GET /sessions
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ids := s.sessions.ListSessions()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": ids,
		"count":    len(ids),
	})
}

// handleGetSessionStatus handles GET /sessions/{id}
func (s *Server) handleGetSessionStatus(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	regs := session.Service.GetRegisterState()
	state := session.Service.GetExecutionState()

	writeJSON(w, http.StatusOK, SessionStatusResponse{
		SessionID: sessionID,
		State:     string(state),
		PC:        regs.PC,
		Cycles:    regs.Cycles,
	})
}

// handleDestroySession handles DELETE /sessions/{id}
func (s *Server) handleDestroySession(w http.ResponseWriter, r *http.Request, sessionID string) {
	if err := s.sessions.DestroySession(sessionID); err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Session destroyed"})
}

// handleLoadImage handles POST /sessions/{id}/load: the request body is a
// JSON LoadImageRequest whose image field holds the hex-record image text,
// parsed and loaded into the session's memory.
func (s *Server) handleLoadImage(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	var req LoadImageRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	machine := session.Service.GetVM()
	img, err := loader.Parse(strings.NewReader(req.Image))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid image: %v", err))
		return
	}
	for _, seg := range img.Segments {
		if err := machine.Mem.LoadBytes(seg.Addr, seg.Data); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to load segment at 0x%08x: %v", seg.Addr, err))
			return
		}
	}
	machine.SetPC(img.EntryAddr)
	machine.EntryPC = img.EntryAddr

	writeJSON(w, http.StatusOK, LoadImageResponse{EntryPoint: img.EntryAddr})
}

// handleRun handles POST /sessions/{id}/run: free-runs the session in the
// background, streaming trace and state events to any connected WebSocket
// clients until it stops.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	go func() {
		_ = session.Service.RunUntilStop(func(rec vm.TraceRecord) {
			s.broadcastTrace(session, rec)
			s.broadcastStateChange(sessionID, session.Service.GetRegisterState(), session.Service.GetExecutionState())
		})
		s.broadcastExecutionEvent(sessionID, string(session.Service.GetExecutionState()))
	}()

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Run started"})
}

// handleStop handles POST /sessions/{id}/stop
func (s *Server) handleStop(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	session.Service.Pause()
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Run stopped"})
}

// handleStep handles POST /sessions/{id}/step
func (s *Server) handleStep(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	rec, stepErr := session.Service.Step()
	if stepErr != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Step failed: %v", stepErr))
		return
	}

	regs := session.Service.GetRegisterState()
	state := session.Service.GetExecutionState()

	s.broadcastTrace(session, rec)
	s.broadcastStateChange(sessionID, regs, state)

	writeJSON(w, http.StatusOK, ToRegistersResponse(regs))
}

// handleReset handles POST /sessions/{id}/reset
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	session.Service.Reset()
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "VM reset"})
}

// handleGetRegisters handles GET /sessions/{id}/registers
func (s *Server) handleGetRegisters(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, ToRegistersResponse(session.Service.GetRegisterState()))
}

// handleGetMemory handles GET /sessions/{id}/memory?address=..&length=..
func (s *Server) handleGetMemory(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	query := r.URL.Query()
	address, err := parseHexOrDec(query.Get("address"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid address parameter")
		return
	}

	length, err := strconv.ParseUint(query.Get("length"), 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid length parameter")
		return
	}

	const maxMemoryRead = 1024 * 1024
	if length > maxMemoryRead {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Length too large (max %d bytes)", maxMemoryRead))
		return
	}

	data, err := session.Service.GetMemory(uint32(address), uint32(length)) // #nosec G115 -- parseHexOrDec validates input fits in uint32
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to read memory: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, MemoryResponse{Address: uint32(address), Data: data}) // #nosec G115 -- validated above
}

// handleGetDisassembly handles GET /sessions/{id}/disassembly?address=..&count=..
func (s *Server) handleGetDisassembly(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	query := r.URL.Query()
	address, err := parseHexOrDec(query.Get("address"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid address parameter")
		return
	}

	count, err := strconv.ParseUint(query.Get("count"), 10, 32)
	if err != nil || count == 0 {
		count = 10
	}

	const maxDisassembly = 1000
	if count > maxDisassembly {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Count too large (max %d)", maxDisassembly))
		return
	}

	lines := session.Service.GetDisassembly(uint32(address), int(count)) // #nosec G115 -- parseHexOrDec validates input fits in uint32

	writeJSON(w, http.StatusOK, DisassemblyResponse{Instructions: lines})
}

// handleGetStack handles GET /sessions/{id}/stack?offset=..&count=..
func (s *Server) handleGetStack(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	query := r.URL.Query()
	offset, _ := strconv.Atoi(query.Get("offset"))
	count, err := strconv.Atoi(query.Get("count"))
	if err != nil || count <= 0 {
		count = 16
	}

	entries := session.Service.GetStack(offset, count)
	writeJSON(w, http.StatusOK, StackResponse{Entries: entries})
}

// handleBreakpoint handles POST/DELETE /sessions/{id}/breakpoint
func (s *Server) handleBreakpoint(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	var req BreakpointRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	switch r.Method {
	case http.MethodPost:
		bp := session.Service.AddBreakpoint(req.Address)
		writeJSON(w, http.StatusOK, bp)

	case http.MethodDelete:
		if err := session.Service.RemoveBreakpoint(req.Address); err != nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("Failed to remove breakpoint: %v", err))
			return
		}
		writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Breakpoint removed"})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleListBreakpoints handles GET /sessions/{id}/breakpoints
func (s *Server) handleListBreakpoints(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, BreakpointsResponse{Breakpoints: session.Service.GetBreakpoints()})
}

// handleWatchpoint handles POST /sessions/{id}/watchpoint; deletion goes
// through handleDeleteWatchpoint.
func (s *Server) handleWatchpoint(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	var req WatchpointRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var wp service.WatchpointInfo
	if req.Register != "" {
		reg, ok := vm.LookupABI(req.Register)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown register %q", req.Register))
			return
		}
		wp, err = session.Service.AddWatchpoint(req.Register, 0, true, int(reg))
	} else {
		wp, err = session.Service.AddWatchpoint(fmt.Sprintf("0x%08x", req.Address), req.Address, false, 0)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to add watchpoint: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, wp)
}

// handleDeleteWatchpoint handles DELETE /sessions/{id}/watchpoint/{watchpointID}
func (s *Server) handleDeleteWatchpoint(w http.ResponseWriter, r *http.Request, sessionID string, watchpointID int) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	if err := session.Service.RemoveWatchpoint(watchpointID); err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Failed to remove watchpoint: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Watchpoint removed"})
}

// handleListWatchpoints handles GET /sessions/{id}/watchpoints
func (s *Server) handleListWatchpoints(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, WatchpointsResponse{Watchpoints: session.Service.GetWatchpoints()})
}

func parseHexOrDec(s string) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty string")
	}
	if len(s) > 2 && s[:2] == "0x" {
		return strconv.ParseUint(s[2:], 16, 32)
	}
	return strconv.ParseUint(s, 10, 32)
}

// broadcastStateChange pushes a full register snapshot to WebSocket clients
// subscribed to this session after every step.
func (s *Server) broadcastStateChange(sessionID string, regs service.RegisterState, state service.ExecutionState) {
	if s.broadcaster == nil {
		return
	}

	data := map[string]interface{}{
		"state":     string(state),
		"pc":        regs.PC,
		"cycles":    regs.Cycles,
		"registers": regs.Registers,
	}
	s.broadcaster.BroadcastState(sessionID, data)
}

// broadcastTrace pushes one executed instruction's trace line, through the
// session's EventWriter when one is attached (the normal case: session_manager
// wires it up as the VM's OutputWriter at creation), falling back to a
// direct broadcast otherwise.
func (s *Server) broadcastTrace(session *Session, rec vm.TraceRecord) {
	if s.broadcaster == nil {
		return
	}
	if w, ok := session.Service.GetVM().OutputWriter.(*EventWriter); ok {
		_, _ = w.Write([]byte(rec.Text + "\n"))
		return
	}
	s.broadcaster.BroadcastTrace(session.ID, rec)
}

// broadcastExecutionEvent pushes a terminal run-loop event (halted, error,
// breakpoint) once RunUntilStop returns.
func (s *Server) broadcastExecutionEvent(sessionID string, finalState string) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastExecutionEvent(sessionID, finalState, nil)
}
