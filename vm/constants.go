package vm

// Reset base and memory capacity, per the simulator's fixed memory map.
// A RV32I image is always loaded relative to Base and must fit within
// [Base, Base+MemorySize).
const (
	Base       uint32 = 0x8000_0000
	MemorySize uint32 = 32 * 1024

	// ResetPC is the program counter value at power-on.
	ResetPC = Base

	// EBreak is the exact instruction word that signals halt. Any other
	// System-class encoding is a no-op, per spec.
	EBreak uint32 = 0x0010_0073

	// DefaultMaxSteps bounds Run when the caller doesn't impose its own
	// limit, guarding against runaway images that never reach EBREAK.
	DefaultMaxSteps uint64 = 1_000_000
)

// Opcode values for the RV32IM base encoding, bits [6:0] of the instruction
// word.
const (
	OpcodeLoad   uint32 = 0b0000011
	OpcodeOpImm  uint32 = 0b0010011
	OpcodeAuiPc  uint32 = 0b0010111
	OpcodeStore  uint32 = 0b0100011
	OpcodeOp     uint32 = 0b0110011
	OpcodeLui    uint32 = 0b0110111
	OpcodeBranch uint32 = 0b1100011
	OpcodeJalr   uint32 = 0b1100111
	OpcodeJal    uint32 = 0b1101111
	OpcodeSystem uint32 = 0b1110011
)

// funct7 selectors distinguishing the three Op-class instruction families.
const (
	Funct7Base uint32 = 0b0000000
	Funct7Alt  uint32 = 0b0100000
	Funct7MExt uint32 = 0b0000001
)
