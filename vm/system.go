package vm

// execAuiPc implements AUIPC: rd = current_pc + U-imm.
func execAuiPc(m *VM, inst Instruction, pc uint32) (TraceRecord, error) {
	result := pc + uint32(inst.Imm)
	m.Regs.Set(inst.Rd, result)
	return traceAuiPc(pc, inst.Rd, inst.Imm, pc, m.Regs.Get(inst.Rd)), nil
}

// execLui implements LUI: rd = U-imm.
func execLui(m *VM, inst Instruction, pc uint32) (TraceRecord, error) {
	result := uint32(inst.Imm)
	m.Regs.Set(inst.Rd, result)
	return traceLui(pc, inst.Rd, inst.Imm, m.Regs.Get(inst.Rd)), nil
}

// execSystem implements the System opcode. Only the exact EBREAK encoding
// is recognized; every other System word is a silent no-op, matching the
// original reference implementation (spec.md §4.4, §9).
func execSystem(m *VM, inst Instruction, pc uint32) (TraceRecord, error) {
	if inst.Raw == EBreak {
		return traceEBreak(pc), nil
	}
	return TraceRecord{PC: pc, Mnemonic: "system", Halt: false}, nil
}
