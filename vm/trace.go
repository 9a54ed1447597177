package vm

import "fmt"

// TraceRecord is the executor's structured description of one executed
// instruction. Text is the fully formatted line exactly as it should appear
// in the trace sink; the remaining fields let a test assert on the
// instruction's outcome without parsing Text back out, per the "separate
// tracer from execution" design note.
type TraceRecord struct {
	PC       uint32
	Mnemonic string
	Text     string
	Halt     bool

	// Taken is meaningful only for Branch-class records: whether the
	// branch condition held and PC jumped to the computed target.
	Taken bool
}

// mask12 returns the low 12 bits of a sign-extended immediate, the display
// width spec.md §6 specifies for I/S/B-type operands.
func mask12(imm int32) uint32 { return uint32(imm) & 0xFFF }

// mask20 returns the low 20 bits of imm, the display width spec.md §6
// specifies for U-type operands (after the implicit right-shift by 12) and,
// by the same convention, for J-type operands.
func mask20(imm int32) uint32 { return uint32(imm) & 0xFFFFF }

func line(pc uint32, mnemonic string, rest string) string {
	return fmt.Sprintf("0x%08x:%-7s%s", pc, mnemonic, rest)
}

func traceLoad(pc uint32, mnemonic string, rd, rs1 uint32, imm int32, addr, value uint32) TraceRecord {
	text := line(pc, mnemonic, fmt.Sprintf("%s,0x%03x(%s)    %s=mem[0x%08x]=0x%08x",
		ABIName(rd), mask12(imm), ABIName(rs1), ABIName(rd), addr, value))
	return TraceRecord{PC: pc, Mnemonic: mnemonic, Text: text}
}

func traceStore(pc uint32, mnemonic string, rs1, rs2 uint32, imm int32, addr uint32, value uint32, width int) TraceRecord {
	var valueText string
	switch width {
	case 1:
		valueText = fmt.Sprintf("0x%02x", value)
	case 2:
		valueText = fmt.Sprintf("0x%04x", value)
	default:
		valueText = fmt.Sprintf("0x%08x", value)
	}
	text := line(pc, mnemonic, fmt.Sprintf("%s,0x%03x(%s) mem[0x%08x]=%s",
		ABIName(rs2), mask12(imm), ABIName(rs1), addr, valueText))
	return TraceRecord{PC: pc, Mnemonic: mnemonic, Text: text}
}

// traceImmArith covers ADDI/ANDI/ORI/XORI: three-operand forms
// whose effect expression is "rd=lhs<op>rhs=result".
func traceImmArith(pc uint32, mnemonic, symbol string, rd, rs1 uint32, imm int32, lhs, rhs, result uint32) TraceRecord {
	text := line(pc, mnemonic, fmt.Sprintf("%s,%s,0x%03x   %s=0x%08x%s0x%08x=0x%08x",
		ABIName(rd), ABIName(rs1), mask12(imm), ABIName(rd), lhs, symbol, rhs, result))
	return TraceRecord{PC: pc, Mnemonic: mnemonic, Text: text}
}

// traceImmCompare covers SLTI/SLTIU.
func traceImmCompare(pc uint32, mnemonic string, rd, rs1 uint32, imm int32, lhs, rhs uint32, result uint32) TraceRecord {
	text := line(pc, mnemonic, fmt.Sprintf("%s,%s,0x%03x   %s=(0x%08x<0x%08x)=%d",
		ABIName(rd), ABIName(rs1), mask12(imm), ABIName(rd), lhs, rhs, result))
	return TraceRecord{PC: pc, Mnemonic: mnemonic, Text: text}
}

// traceImmShift covers SLLI/SRLI/SRAI: the shift amount prints in decimal,
// not hex, and the operator is "<<", ">>" (logical) or ">>>" (arithmetic).
func traceImmShift(pc uint32, mnemonic, symbol string, rd, rs1 uint32, shamt uint32, value, result uint32) TraceRecord {
	text := line(pc, mnemonic, fmt.Sprintf("%s,%s,%d      %s=0x%08x%s%d=0x%08x",
		ABIName(rd), ABIName(rs1), shamt, ABIName(rd), value, symbol, shamt, result))
	return TraceRecord{PC: pc, Mnemonic: mnemonic, Text: text}
}

func traceAuiPc(pc uint32, rd uint32, imm int32, base, result uint32) TraceRecord {
	text := line(pc, "auipc", fmt.Sprintf("%s,0x%05x     %s=0x%08x+0x%08x=0x%08x",
		ABIName(rd), mask20(imm), ABIName(rd), base, uint32(imm), result))
	return TraceRecord{PC: pc, Mnemonic: "auipc", Text: text}
}

func traceLui(pc uint32, rd uint32, imm int32, result uint32) TraceRecord {
	text := line(pc, "lui", fmt.Sprintf("%s,0x%05x     %s=0x%08x",
		ABIName(rd), mask20(imm), ABIName(rd), result))
	return TraceRecord{PC: pc, Mnemonic: "lui", Text: text}
}

// traceRegArith covers ADD/SUB/AND/OR/XOR and the M-extension MUL/DIV/REM
// family: three-register forms with a simple "rd=lhs<op>rhs=result" effect.
func traceRegArith(pc uint32, mnemonic, symbol string, rd, rs1, rs2 uint32, lhs, rhs, result uint32) TraceRecord {
	text := line(pc, mnemonic, fmt.Sprintf("%s,%s,%s     %s=0x%08x%s0x%08x=0x%08x",
		ABIName(rd), ABIName(rs1), ABIName(rs2), ABIName(rd), lhs, symbol, rhs, result))
	return TraceRecord{PC: pc, Mnemonic: mnemonic, Text: text}
}

// traceRegArithUpper covers MULH/MULHSU/MULHU, which report the upper half
// of a 64-bit product.
func traceRegArithUpper(pc uint32, mnemonic, qualifier string, rd, rs1, rs2 uint32, lhs, rhs, result uint32) TraceRecord {
	text := line(pc, mnemonic, fmt.Sprintf("%s,%s,%s     %s=upper(0x%08x%s*0x%08x%s)=0x%08x",
		ABIName(rd), ABIName(rs1), ABIName(rs2), ABIName(rd), lhs, qualifier, rhs, reverseQualifier(qualifier), result))
	return TraceRecord{PC: pc, Mnemonic: mnemonic, Text: text}
}

// reverseQualifier swaps the (s)/(u) tag used by MULHSU's two differently
// signed operands; MULH/MULHU pass "" for both sides.
func reverseQualifier(q string) string {
	switch q {
	case "(s)":
		return "(u)"
	case "(u)":
		return "(s)"
	default:
		return q
	}
}

func traceRegCompare(pc uint32, mnemonic string, rd, rs1, rs2 uint32, lhs, rhs uint32, result uint32) TraceRecord {
	text := line(pc, mnemonic, fmt.Sprintf("%s,%s,%s     %s=(0x%08x<0x%08x)=%d",
		ABIName(rd), ABIName(rs1), ABIName(rs2), ABIName(rd), lhs, rhs, result))
	return TraceRecord{PC: pc, Mnemonic: mnemonic, Text: text}
}

func traceRegShift(pc uint32, mnemonic, symbol string, rd, rs1, rs2 uint32, shamt uint32, value, result uint32) TraceRecord {
	text := line(pc, mnemonic, fmt.Sprintf("%s,%s,%s     %s=0x%08x%s%d=0x%08x",
		ABIName(rd), ABIName(rs1), ABIName(rs2), ABIName(rd), value, symbol, shamt, result))
	return TraceRecord{PC: pc, Mnemonic: mnemonic, Text: text}
}

func traceBranch(pc uint32, mnemonic, symbol string, rs1, rs2 uint32, imm int32, lhs, rhs uint32, taken bool, nextPC uint32) TraceRecord {
	takenNum := 0
	if taken {
		takenNum = 1
	}
	text := line(pc, mnemonic, fmt.Sprintf("%s,%s,0x%03x  (0x%08x%s0x%08x)=%d->pc=0x%08x",
		ABIName(rs1), ABIName(rs2), mask12(imm), lhs, symbol, rhs, takenNum, nextPC))
	return TraceRecord{PC: pc, Mnemonic: mnemonic, Text: text, Taken: taken}
}

func traceJalr(pc uint32, rd, rs1 uint32, imm int32, rs1Val uint32, rdValue uint32) TraceRecord {
	text := line(pc, "jalr", fmt.Sprintf("%s,%s,0x%03x   pc=0x%08x+0x%08x,rd=0x%08x",
		ABIName(rd), ABIName(rs1), mask12(imm), rs1Val, uint32(imm), rdValue))
	return TraceRecord{PC: pc, Mnemonic: "jalr", Text: text}
}

func traceJal(pc uint32, rd uint32, imm int32, nextPC, rdValue uint32) TraceRecord {
	text := line(pc, "jal", fmt.Sprintf("%s,0x%05x     pc=0x%08x,rd=0x%08x",
		ABIName(rd), mask20(imm), nextPC, rdValue))
	return TraceRecord{PC: pc, Mnemonic: "jal", Text: text}
}

func traceEBreak(pc uint32) TraceRecord {
	text := fmt.Sprintf("0x%08x:ebreak", pc)
	return TraceRecord{PC: pc, Mnemonic: "ebreak", Text: text, Halt: true}
}

// traceUnknown formats the no-op policy for an unrecognized opcode or an
// undefined (funct3,funct7) combination: the raw hex word, per spec.md §7.
func traceUnknown(pc uint32, word uint32) TraceRecord {
	text := fmt.Sprintf("0x%08x:unknown 0x%08x", pc, word)
	return TraceRecord{PC: pc, Mnemonic: "unknown", Text: text}
}
