package vm

// execBranch implements the Branch opcode: BEQ/BNE/BLT/BGE/BLTU/BGEU.
// Returns the next PC (current+4 if not taken, current+B-imm if taken).
func execBranch(m *VM, inst Instruction, pc uint32) (TraceRecord, uint32, error) {
	lhs, rhs := m.Regs.Get(inst.Rs1), m.Regs.Get(inst.Rs2)
	fallthroughPC := pc + 4
	targetPC := uint32(int64(pc) + int64(inst.Imm))

	var taken bool
	var mnemonic, symbol string

	switch inst.Funct3 {
	case 0b000:
		mnemonic, symbol = "beq", "=="
		taken = lhs == rhs
	case 0b001:
		mnemonic, symbol = "bne", "!="
		taken = lhs != rhs
	case 0b100:
		mnemonic, symbol = "blt", "<"
		taken = int32(lhs) < int32(rhs)
	case 0b101:
		mnemonic, symbol = "bge", ">="
		taken = int32(lhs) >= int32(rhs)
	case 0b110:
		mnemonic, symbol = "bltu", "<"
		taken = lhs < rhs
	case 0b111:
		mnemonic, symbol = "bgeu", ">="
		taken = lhs >= rhs
	default:
		return traceUnknown(pc, inst.Raw), fallthroughPC, nil
	}

	nextPC := fallthroughPC
	if taken {
		nextPC = targetPC
	}
	return traceBranch(pc, mnemonic, symbol, inst.Rs1, inst.Rs2, inst.Imm, lhs, rhs, taken, nextPC), nextPC, nil
}

// execJal implements JAL: unconditional PC-relative jump, linking rd.
func execJal(m *VM, inst Instruction, pc uint32) (TraceRecord, uint32, error) {
	linkValue := pc + 4
	m.Regs.Set(inst.Rd, linkValue)
	nextPC := uint32(int64(pc) + int64(inst.Imm))
	return traceJal(pc, inst.Rd, inst.Imm, nextPC, m.Regs.Get(inst.Rd)), nextPC, nil
}

// execJalr implements JALR: indirect jump through rs1+imm with bit 0
// masked, linking rd.
func execJalr(m *VM, inst Instruction, pc uint32) (TraceRecord, uint32, error) {
	rs1Val := m.Regs.Get(inst.Rs1)
	linkValue := pc + 4
	m.Regs.Set(inst.Rd, linkValue)
	nextPC := (rs1Val + uint32(inst.Imm)) &^ 1
	return traceJalr(pc, inst.Rd, inst.Rs1, inst.Imm, rs1Val, m.Regs.Get(inst.Rd)), nextPC, nil
}
