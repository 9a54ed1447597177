package debugger

// TUI Display Update Constants
const (
	// DisplayUpdateFrequency controls how often the TUI display updates during continuous execution
	// (every N cycles to keep display responsive without overwhelming the terminal)
	DisplayUpdateFrequency = 100
)

// Code View Context Constants
const (
	// CodeContextLinesBeforeCompact is the number of instructions shown
	// before PC in the TUI's disassembly panel.
	CodeContextLinesBeforeCompact = 5

	// CodeContextLinesAfterCompact is the number of instructions shown
	// after PC in the TUI's disassembly panel.
	CodeContextLinesAfterCompact = 10
)

// Memory Display Constants
const (
	// MemoryDisplayRows is the number of rows to show in the memory hex dump view
	MemoryDisplayRows = 16

	// MemoryDisplayColumns is the number of bytes per row in the memory hex dump view
	MemoryDisplayColumns = 16

	// MemoryDisplayBytesPerRow is the number of bytes displayed per row (same as columns)
	MemoryDisplayBytesPerRow = 16
)

// Stack Display Constants
const (
	// StackDisplayWords is the number of 32-bit words to show in the stack view
	StackDisplayWords = 16
)

// Register Display Constants
const (
	// RegisterViewRows is the fixed height of the register view panel: 32
	// registers at RegisterGroupSize per row (ceil(32/5) = 7 rows) plus a
	// blank line plus the pc/cycles/state status line.
	RegisterViewRows = 9

	// RegisterGroupSize is the number of registers displayed per row
	RegisterGroupSize = 5
)
