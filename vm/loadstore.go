package vm

import "fmt"

// execLoad implements the Load opcode: LB/LH/LW/LBU/LHU (spec.md §4.4).
func execLoad(m *VM, inst Instruction, pc uint32) (TraceRecord, error) {
	addr := m.Regs.Get(inst.Rs1) + uint32(inst.Imm)

	switch inst.Funct3 {
	case 0b000: // LB
		b, err := m.Mem.ReadByte(addr)
		if err != nil {
			return TraceRecord{}, fmt.Errorf("lb: %w", err)
		}
		value := uint32(signExtend(uint32(b), 8))
		m.Regs.Set(inst.Rd, value)
		return traceLoad(pc, "lb", inst.Rd, inst.Rs1, inst.Imm, addr, value), nil
	case 0b001: // LH
		h, err := m.Mem.ReadHalf(addr)
		if err != nil {
			return TraceRecord{}, fmt.Errorf("lh: %w", err)
		}
		value := uint32(signExtend(uint32(h), 16))
		m.Regs.Set(inst.Rd, value)
		return traceLoad(pc, "lh", inst.Rd, inst.Rs1, inst.Imm, addr, value), nil
	case 0b010: // LW
		value, err := m.Mem.ReadWord(addr)
		if err != nil {
			return TraceRecord{}, fmt.Errorf("lw: %w", err)
		}
		m.Regs.Set(inst.Rd, value)
		return traceLoad(pc, "lw", inst.Rd, inst.Rs1, inst.Imm, addr, value), nil
	case 0b100: // LBU
		b, err := m.Mem.ReadByte(addr)
		if err != nil {
			return TraceRecord{}, fmt.Errorf("lbu: %w", err)
		}
		value := uint32(b)
		m.Regs.Set(inst.Rd, value)
		return traceLoad(pc, "lbu", inst.Rd, inst.Rs1, inst.Imm, addr, value), nil
	case 0b101: // LHU
		h, err := m.Mem.ReadHalf(addr)
		if err != nil {
			return TraceRecord{}, fmt.Errorf("lhu: %w", err)
		}
		value := uint32(h)
		m.Regs.Set(inst.Rd, value)
		return traceLoad(pc, "lhu", inst.Rd, inst.Rs1, inst.Imm, addr, value), nil
	default:
		return traceUnknown(pc, inst.Raw), nil
	}
}

// execStore implements the Store opcode: SB/SH/SW.
func execStore(m *VM, inst Instruction, pc uint32) (TraceRecord, error) {
	addr := m.Regs.Get(inst.Rs1) + uint32(inst.Imm)
	rs2Val := m.Regs.Get(inst.Rs2)

	switch inst.Funct3 {
	case 0b000: // SB
		value := byte(rs2Val)
		if err := m.Mem.WriteByte(addr, value); err != nil {
			return TraceRecord{}, fmt.Errorf("sb: %w", err)
		}
		return traceStore(pc, "sb", inst.Rs1, inst.Rs2, inst.Imm, addr, uint32(value), 1), nil
	case 0b001: // SH
		value := uint16(rs2Val)
		if err := m.Mem.WriteHalf(addr, value); err != nil {
			return TraceRecord{}, fmt.Errorf("sh: %w", err)
		}
		return traceStore(pc, "sh", inst.Rs1, inst.Rs2, inst.Imm, addr, uint32(value), 2), nil
	case 0b010: // SW
		if err := m.Mem.WriteWord(addr, rs2Val); err != nil {
			return TraceRecord{}, fmt.Errorf("sw: %w", err)
		}
		return traceStore(pc, "sw", inst.Rs1, inst.Rs2, inst.Imm, addr, rs2Val, 4), nil
	default:
		return traceUnknown(pc, inst.Raw), nil
	}
}
