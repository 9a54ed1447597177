package vm

// Minimal instruction encoders used only by tests to build program images
// without depending on an external assembler.

func encR(opcode, funct3, funct7, rd, rs1, rs2 uint32) uint32 {
	return (funct7 << 25) | (rs2 << 20) | (rs1 << 15) | (funct3 << 12) | (rd << 7) | opcode
}

func encI(opcode, funct3, rd, rs1 uint32, imm int32) uint32 {
	return (uint32(imm)&0xFFF)<<20 | (rs1 << 15) | (funct3 << 12) | (rd << 7) | opcode
}

func encShiftImm(funct3, funct7, rd, rs1, shamt uint32) uint32 {
	return (funct7 << 25) | (shamt << 20) | (rs1 << 15) | (funct3 << 12) | (rd << 7) | OpcodeOpImm
}

func encS(opcode, funct3, rs1, rs2 uint32, imm int32) uint32 {
	u := uint32(imm) & 0xFFF
	return (u>>5)<<25 | (rs2 << 20) | (rs1 << 15) | (funct3 << 12) | ((u & 0x1F) << 7) | opcode
}

func encB(funct3, rs1, rs2 uint32, imm int32) uint32 {
	u := uint32(imm) & 0x1FFF
	bit12 := (u >> 12) & 1
	bit11 := (u >> 11) & 1
	bits10_5 := (u >> 5) & 0x3F
	bits4_1 := (u >> 1) & 0xF
	return (bit12 << 31) | (bits10_5 << 25) | (rs2 << 20) | (rs1 << 15) | (funct3 << 12) | (bits4_1 << 8) | (bit11 << 7) | OpcodeBranch
}

func encU(opcode, rd uint32, imm uint32) uint32 {
	return (imm & 0xFFFF_F000) | (rd << 7) | opcode
}

func encJ(rd uint32, imm int32) uint32 {
	u := uint32(imm) & 0x1F_FFFF
	bit20 := (u >> 20) & 1
	bits10_1 := (u >> 1) & 0x3FF
	bit11 := (u >> 11) & 1
	bits19_12 := (u >> 12) & 0xFF
	return (bit20 << 31) | (bits10_1 << 21) | (bit11 << 20) | (bits19_12 << 12) | (rd << 7) | OpcodeJal
}

func addi(rd, rs1 uint32, imm int32) uint32 { return encI(OpcodeOpImm, 0b000, rd, rs1, imm) }
func add(rd, rs1, rs2 uint32) uint32        { return encR(OpcodeOp, 0b000, Funct7Base, rd, rs1, rs2) }
func sub(rd, rs1, rs2 uint32) uint32        { return encR(OpcodeOp, 0b000, Funct7Alt, rd, rs1, rs2) }
func srai(rd, rs1, shamt uint32) uint32     { return encShiftImm(0b101, Funct7Alt, rd, rs1, shamt) }
func srli(rd, rs1, shamt uint32) uint32     { return encShiftImm(0b101, Funct7Base, rd, rs1, shamt) }
func slli(rd, rs1, shamt uint32) uint32     { return encShiftImm(0b001, Funct7Base, rd, rs1, shamt) }
func lui(rd uint32, imm uint32) uint32      { return encU(OpcodeLui, rd, imm) }
func sw(rs1, rs2 uint32, imm int32) uint32  { return encS(OpcodeStore, 0b010, rs1, rs2, imm) }
func lw(rd, rs1 uint32, imm int32) uint32   { return encI(OpcodeLoad, 0b010, rd, rs1, imm) }
func lbu(rd, rs1 uint32, imm int32) uint32  { return encI(OpcodeLoad, 0b100, rd, rs1, imm) }
func lb(rd, rs1 uint32, imm int32) uint32   { return encI(OpcodeLoad, 0b000, rd, rs1, imm) }
func beq(rs1, rs2 uint32, imm int32) uint32 { return encB(0b000, rs1, rs2, imm) }
func div(rd, rs1, rs2 uint32) uint32        { return encR(OpcodeOp, 0b100, Funct7MExt, rd, rs1, rs2) }
func rem(rd, rs1, rs2 uint32) uint32        { return encR(OpcodeOp, 0b110, Funct7MExt, rd, rs1, rs2) }

const ebreakWord = EBreak

// registers referenced by name for readability in tests.
const (
	regZero = 0
	regSP   = 2
	regT0   = 5
	regT1   = 6
	regT2   = 7
	regT3   = 28
	regA0   = 10
	regA1   = 11
	regA2   = 12
)
