package debugger

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/rv32im/rvsim/vm"
)

// TUI is the tcell/tview text interface for the debugger: a register panel,
// a memory/stack dump, a disassembly window around PC, a breakpoint list,
// and a command line, refreshed after every command.
type TUI struct {
	Debugger *Debugger
	App      *tview.Application
	Pages    *tview.Pages

	MainLayout *tview.Flex
	LeftPanel  *tview.Flex
	RightPanel *tview.Flex

	RegisterView    *tview.TextView
	MemoryView      *tview.TextView
	StackView       *tview.TextView
	DisassemblyView *tview.TextView
	BreakpointsView *tview.TextView
	OutputView      *tview.TextView
	CommandInput    *tview.InputField

	MemoryAddress uint32
}

func NewTUI(debugger *Debugger) *TUI {
	t := &TUI{
		Debugger: debugger,
		App:      tview.NewApplication(),
	}

	t.initializeViews()
	t.buildLayout()
	t.setupKeyBindings()

	return t
}

// NewTUIWithScreen builds a TUI bound to an explicit tcell.Screen, letting
// tests drive it against a tcell.SimulationScreen instead of a real terminal.
func NewTUIWithScreen(debugger *Debugger, screen tcell.Screen) *TUI {
	t := &TUI{
		Debugger: debugger,
		App:      tview.NewApplication(),
	}
	t.App.SetScreen(screen)

	t.initializeViews()
	t.buildLayout()
	t.setupKeyBindings()

	return t
}

func (t *TUI) initializeViews() {
	t.RegisterView = tview.NewTextView().SetDynamicColors(true).SetScrollable(false)
	t.RegisterView.SetBorder(true).SetTitle(" Registers ")

	t.MemoryView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.MemoryView.SetBorder(true).SetTitle(" Memory ")

	t.StackView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.StackView.SetBorder(true).SetTitle(" Stack ")

	t.DisassemblyView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.DisassemblyView.SetBorder(true).SetTitle(" Disassembly ")

	t.BreakpointsView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.BreakpointsView.SetBorder(true).SetTitle(" Breakpoints/Watchpoints ")

	t.OutputView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().SetLabel("> ").SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
}

func (t *TUI) buildLayout() {
	t.LeftPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.DisassemblyView, 0, 3, false).
		AddItem(t.BreakpointsView, 8, 0, false)

	t.RightPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.RegisterView, RegisterViewRows, 0, false).
		AddItem(t.MemoryView, 0, 1, false).
		AddItem(t.StackView, 0, 1, false)

	mainContent := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(t.LeftPanel, 0, 2, false).
		AddItem(t.RightPanel, 0, 1, false)

	t.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(mainContent, 0, 4, false).
		AddItem(t.OutputView, 8, 0, false).
		AddItem(t.CommandInput, 3, 0, true)

	t.Pages = tview.NewPages().AddPage("main", t.MainLayout, true, true)
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF1:
			t.executeCommand("help")
			return nil
		case tcell.KeyF5:
			t.executeCommand("continue")
			return nil
		case tcell.KeyF11:
			t.executeCommand("step")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		case tcell.KeyCtrlL:
			t.RefreshAll()
			return nil
		}
		return event
	})
}

func (t *TUI) handleCommand(key tcell.Key) {
	if key == tcell.KeyEnter {
		cmd := t.CommandInput.GetText()
		if cmd != "" {
			t.executeCommand(cmd)
			t.CommandInput.SetText("")
		}
	}
}

func (t *TUI) executeCommand(cmd string) {
	t.Debugger.Output.Reset()

	err := t.Debugger.ExecuteCommand(cmd)
	output := t.Debugger.GetOutput()

	if err != nil {
		t.WriteOutput(fmt.Sprintf("[red]Error:[white] %v\n", err))
	}
	if output != "" {
		t.WriteOutput(output)
	}

	if t.Debugger.Running {
		var steps uint64
		for t.Debugger.Running {
			if shouldBreak, reason := t.Debugger.ShouldBreak(); shouldBreak {
				t.Debugger.Running = false
				t.WriteOutput(fmt.Sprintf("[yellow]Stopped:[white] %s at pc=0x%08x\n", reason, t.Debugger.VM.PC))
				break
			}
			rec, stepErr := t.Debugger.VM.Step()
			if t.Debugger.TraceOn {
				t.WriteOutput(rec.Text + "\n")
			}
			if stepErr != nil {
				t.WriteOutput(fmt.Sprintf("[red]Runtime error:[white] %v\n", stepErr))
				t.Debugger.Running = false
				break
			}
			if t.Debugger.VM.State == vm.StateHalted {
				t.Debugger.Running = false
				t.WriteOutput(fmt.Sprintf("[green]Program halted[white] at pc=0x%08x\n", t.Debugger.VM.PC))
				break
			}

			steps++
			if steps%DisplayUpdateFrequency == 0 {
				t.UpdateRegisterView()
				t.App.Draw()
			}
		}
	}

	t.RefreshAll()
}

func (t *TUI) WriteOutput(text string) {
	_, _ = t.OutputView.Write([]byte(text))
	t.OutputView.ScrollToEnd()
}

func (t *TUI) RefreshAll() {
	t.UpdateRegisterView()
	t.UpdateMemoryView()
	t.UpdateStackView()
	t.UpdateDisassemblyView()
	t.UpdateBreakpointsView()
	t.App.Draw()
}

func (t *TUI) UpdateRegisterView() {
	m := t.Debugger.VM
	var lines []string

	const numRegs = 32
	rows := (numRegs + RegisterGroupSize - 1) / RegisterGroupSize
	for row := 0; row < rows; row++ {
		var cols []string
		for col := 0; col < RegisterGroupSize; col++ {
			reg := uint32(row*RegisterGroupSize + col)
			if reg >= numRegs {
				break
			}
			cols = append(cols, fmt.Sprintf("%-4s: 0x%08x", vm.ABIName(reg), m.Regs.Get(reg)))
		}
		lines = append(lines, strings.Join(cols, "  "))
	}

	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("pc: 0x%08x   cycles: %d   state: %s", m.PC, m.Cycles, m.State))

	t.RegisterView.SetText(strings.Join(lines, "\n"))
}

func (t *TUI) UpdateMemoryView() {
	addr := t.MemoryAddress
	if addr == 0 {
		addr = t.Debugger.VM.PC
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("[yellow]Address: 0x%08x[white]", addr))

	for row := 0; row < MemoryDisplayRows; row++ {
		rowAddr := addr + uint32(row*MemoryDisplayBytesPerRow)
		line := fmt.Sprintf("0x%08x: ", rowAddr)

		var hexBytes []string
		var ascii []byte
		for col := 0; col < MemoryDisplayColumns; col++ {
			b, err := t.Debugger.VM.Mem.ReadByte(rowAddr + uint32(col))
			if err != nil {
				hexBytes = append(hexBytes, "??")
				ascii = append(ascii, '.')
				continue
			}
			hexBytes = append(hexBytes, fmt.Sprintf("%02x", b))
			if b >= 32 && b < 127 {
				ascii = append(ascii, b)
			} else {
				ascii = append(ascii, '.')
			}
		}
		line += strings.Join(hexBytes, " ") + "  " + string(ascii)
		lines = append(lines, line)
	}

	t.MemoryView.SetText(strings.Join(lines, "\n"))
}

func (t *TUI) UpdateStackView() {
	sp := t.Debugger.VM.Regs.Get(2) // x2 = sp

	var lines []string
	lines = append(lines, fmt.Sprintf("[yellow]sp: 0x%08x[white]", sp))

	for i := 0; i < StackDisplayWords; i++ {
		addr := sp + uint32(i*4)
		word, err := t.Debugger.VM.Mem.ReadWord(addr)
		if err != nil {
			lines = append(lines, fmt.Sprintf("0x%08x: ????????", addr))
			continue
		}
		marker := "  "
		if addr == sp {
			marker = "->"
		}
		lines = append(lines, fmt.Sprintf("%s 0x%08x: 0x%08x", marker, addr, word))
	}

	t.StackView.SetText(strings.Join(lines, "\n"))
}

func (t *TUI) UpdateDisassemblyView() {
	pc := t.Debugger.VM.PC
	before := uint32(CodeContextLinesBeforeCompact * 4)
	startAddr := pc
	if startAddr >= vm.Base+before {
		startAddr -= before
	} else {
		startAddr = vm.Base
	}

	var lines []string
	total := CodeContextLinesBeforeCompact + CodeContextLinesAfterCompact
	for i := 0; i < total; i++ {
		addr := startAddr + uint32(i*4)
		word, err := t.Debugger.VM.Mem.ReadWord(addr)
		if err != nil {
			continue
		}

		marker := "  "
		color := "white"
		if addr == pc {
			marker = "->"
			color = "yellow"
		}
		if t.Debugger.Breakpoints.GetBreakpoint(addr) != nil {
			marker = "* "
		}

		inst := vm.Decode(word)
		lines = append(lines, fmt.Sprintf("[%s]%s 0x%08x: %-10s (0x%08x)[white]", color, marker, addr, inst.Class, word))
	}

	t.DisassemblyView.SetText(strings.Join(lines, "\n"))
}

func (t *TUI) UpdateBreakpointsView() {
	var lines []string

	bps := t.Debugger.Breakpoints.GetAllBreakpoints()
	if len(bps) > 0 {
		lines = append(lines, "[yellow]Breakpoints:[white]")
		for _, bp := range bps {
			color := "green"
			if !bp.Enabled {
				color = "red"
			}
			line := fmt.Sprintf("  [%s]%s[white]", color, t.Debugger.Breakpoints.Describe(bp, t.Debugger.VM))
			if bp.Condition != "" {
				line += fmt.Sprintf(" if %s", bp.Condition)
			}
			lines = append(lines, line)
		}
	} else {
		lines = append(lines, "[yellow]No breakpoints set[white]")
	}

	lines = append(lines, "")

	wps := t.Debugger.Watchpoints.GetAllWatchpoints()
	if len(wps) > 0 {
		lines = append(lines, "[yellow]Watchpoints:[white]")
		for _, wp := range wps {
			lines = append(lines, "  "+t.Debugger.Watchpoints.Describe(wp))
		}
	}

	t.BreakpointsView.SetText(strings.Join(lines, "\n"))
}

// Run starts the TUI event loop.
func (t *TUI) Run() error {
	t.RefreshAll()

	t.WriteOutput("[green]rvsim debugger[white]\n")
	t.WriteOutput("Press F1 for help, F5 to continue, F11 to step\n")
	t.WriteOutput("Type 'help' for the command list\n\n")

	return t.App.SetRoot(t.Pages, true).SetFocus(t.CommandInput).Run()
}

func (t *TUI) Stop() {
	t.App.Stop()
}
