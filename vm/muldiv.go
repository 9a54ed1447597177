package vm

// execMulDiv implements the RV32M funct7==0000001 family of the Op opcode:
// MUL/MULH/MULHSU/MULHU/DIV/DIVU/REM/REMU, including the RISC-V defined
// division-by-zero and INT32_MIN/-1 overflow quotients (spec.md §4.4).
func execMulDiv(m *VM, inst Instruction, pc uint32) (TraceRecord, error) {
	lhs, rhs := m.Regs.Get(inst.Rs1), m.Regs.Get(inst.Rs2)
	lhsS, rhsS := int32(lhs), int32(rhs)

	switch inst.Funct3 {
	case 0b000: // MUL
		result := lhs * rhs
		m.Regs.Set(inst.Rd, result)
		return traceRegArith(pc, "mul", "*", inst.Rd, inst.Rs1, inst.Rs2, lhs, rhs, result), nil
	case 0b001: // MULH
		product := int64(lhsS) * int64(rhsS)
		result := uint32(product >> 32)
		m.Regs.Set(inst.Rd, result)
		return traceRegArithUpper(pc, "mulh", "", inst.Rd, inst.Rs1, inst.Rs2, lhs, rhs, result), nil
	case 0b010: // MULHSU
		product := int64(lhsS) * int64(rhs)
		result := uint32(product >> 32)
		m.Regs.Set(inst.Rd, result)
		return traceRegArithUpper(pc, "mulhsu", "(s)", inst.Rd, inst.Rs1, inst.Rs2, lhs, rhs, result), nil
	case 0b011: // MULHU
		product := uint64(lhs) * uint64(rhs)
		result := uint32(product >> 32)
		m.Regs.Set(inst.Rd, result)
		return traceRegArithUpper(pc, "mulhu", "", inst.Rd, inst.Rs1, inst.Rs2, lhs, rhs, result), nil
	case 0b100: // DIV
		result := divSigned(lhsS, rhsS)
		m.Regs.Set(inst.Rd, result)
		return traceRegArith(pc, "div", "/", inst.Rd, inst.Rs1, inst.Rs2, lhs, rhs, result), nil
	case 0b101: // DIVU
		result := divUnsigned(lhs, rhs)
		m.Regs.Set(inst.Rd, result)
		return traceRegArith(pc, "divu", "/", inst.Rd, inst.Rs1, inst.Rs2, lhs, rhs, result), nil
	case 0b110: // REM
		result := remSigned(lhsS, rhsS)
		m.Regs.Set(inst.Rd, result)
		return traceRegArith(pc, "rem", "%", inst.Rd, inst.Rs1, inst.Rs2, lhs, rhs, result), nil
	case 0b111: // REMU
		result := remUnsigned(lhs, rhs)
		m.Regs.Set(inst.Rd, result)
		return traceRegArith(pc, "remu", "%", inst.Rd, inst.Rs1, inst.Rs2, lhs, rhs, result), nil
	default:
		return traceUnknown(pc, inst.Raw), nil
	}
}

func divSigned(a, b int32) uint32 {
	switch {
	case b == 0:
		return 0xFFFF_FFFF
	case a == -(1<<31) && b == -1:
		return uint32(a)
	default:
		return uint32(a / b)
	}
}

func divUnsigned(a, b uint32) uint32 {
	if b == 0 {
		return 0xFFFF_FFFF
	}
	return a / b
}

func remSigned(a, b int32) uint32 {
	switch {
	case b == 0:
		return uint32(a)
	case a == -(1<<31) && b == -1:
		return 0
	default:
		return uint32(a % b)
	}
}

func remUnsigned(a, b uint32) uint32 {
	if b == 0 {
		return a
	}
	return a % b
}
