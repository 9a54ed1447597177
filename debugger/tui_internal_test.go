package debugger

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/rv32im/rvsim/vm"
)

func newSimTUI(t *testing.T) *TUI {
	t.Helper()
	machine := vm.NewVM()
	dbg := New(machine)

	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("failed to init simulation screen: %v", err)
	}
	t.Cleanup(screen.Fini)

	return NewTUIWithScreen(dbg, screen)
}

// TestExecuteCommandUpdatesOutput checks that a recognized command is routed
// through the debugger and its output lands in the output view.
func TestExecuteCommandUpdatesOutput(t *testing.T) {
	tui := newSimTUI(t)

	tui.executeCommand("help")

	if !strings.Contains(tui.OutputView.GetText(true), "Commands:") {
		t.Fatal("expected help output in output view")
	}
}

// TestExecuteCommandReportsError checks that an unknown command surfaces an
// error line instead of panicking the TUI.
func TestExecuteCommandReportsError(t *testing.T) {
	tui := newSimTUI(t)

	tui.executeCommand("bogus")

	if !strings.Contains(tui.OutputView.GetText(true), "Error") {
		t.Fatal("expected error output in output view")
	}
}

// TestHandleCommandClearsInput checks that submitting the command field
// dispatches the command and clears the input for the next one.
func TestHandleCommandClearsInput(t *testing.T) {
	tui := newSimTUI(t)
	tui.CommandInput.SetText("help")

	tui.handleCommand(tcell.KeyEnter)

	if tui.CommandInput.GetText() != "" {
		t.Fatalf("expected command input cleared, got %q", tui.CommandInput.GetText())
	}
}
