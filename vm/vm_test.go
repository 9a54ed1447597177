package vm

import "testing"

func newVMWithWords(t *testing.T, words ...uint32) *VM {
	t.Helper()
	m := NewVM()
	addr := Base
	for _, w := range words {
		if err := m.Mem.WriteWord(addr, w); err != nil {
			t.Fatalf("failed to install test program: %v", err)
		}
		addr += 4
	}
	return m
}

func runToHalt(t *testing.T, m *VM) []TraceRecord {
	t.Helper()
	var trace []TraceRecord
	err := m.Run(func(r TraceRecord) { trace = append(trace, r) })
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return trace
}

func TestScenario1_AddImmediateAndAdd(t *testing.T) {
	m := newVMWithWords(t,
		addi(regA0, regZero, 5),
		addi(regA1, regZero, 7),
		add(regA2, regA0, regA1),
		ebreakWord,
	)
	trace := runToHalt(t, m)
	if len(trace) != 4 {
		t.Fatalf("expected 4 trace lines, got %d", len(trace))
	}
	if got := m.Regs.Get(regA2); got != 12 {
		t.Fatalf("a2 = %d, want 12", got)
	}
}

func TestScenario2_LuiAddiSignExtends(t *testing.T) {
	m := newVMWithWords(t,
		lui(regT0, 0x12345000),
		addi(regT0, regT0, 0x678),
		ebreakWord,
	)
	runToHalt(t, m)
	if got := m.Regs.Get(regT0); got != 0x12345678 {
		t.Fatalf("t0 = 0x%08x, want 0x12345678", got)
	}
}

func TestScenario3_ShiftArithmeticVsLogical(t *testing.T) {
	m := newVMWithWords(t,
		addi(regT0, regZero, -1),
		srai(regT1, regT0, 1),
		srli(regT2, regT0, 1),
		ebreakWord,
	)
	runToHalt(t, m)
	if got := m.Regs.Get(regT1); got != 0xFFFF_FFFF {
		t.Fatalf("t1 = 0x%08x, want 0xffffffff", got)
	}
	if got := m.Regs.Get(regT2); got != 0x7FFF_FFFF {
		t.Fatalf("t2 = 0x%08x, want 0x7fffffff", got)
	}
}

func TestScenario4_BranchSkipsTakenPath(t *testing.T) {
	m := newVMWithWords(t,
		addi(regT0, regZero, 10),
		addi(regT1, regZero, 0),
		beq(regT0, regT1, 8), // not taken (10 != 0)
		addi(regA0, regZero, 1),
		ebreakWord,
		addi(regA0, regZero, 2),
		ebreakWord,
	)
	runToHalt(t, m)
	if got := m.Regs.Get(regA0); got != 1 {
		t.Fatalf("a0 = %d, want 1", got)
	}
}

func TestScenario4_BranchTakenSkipsOverMiss(t *testing.T) {
	m := newVMWithWords(t,
		addi(regT0, regZero, 0),
		addi(regT1, regZero, 0),
		beq(regT0, regT1, 12), // taken (0 == 0): skip the first path
		addi(regA0, regZero, 1),
		ebreakWord,
		addi(regA0, regZero, 2),
		ebreakWord,
	)
	runToHalt(t, m)
	if got := m.Regs.Get(regA0); got != 2 {
		t.Fatalf("a0 = %d, want 2", got)
	}
}

func TestScenario5_MemoryRoundTrip(t *testing.T) {
	m := newVMWithWords(t,
		lui(regSP, Base),
		addi(regSP, regSP, 0x100),
		addi(regT0, regZero, -1),
		sw(regSP, regT0, 0),
		lbu(regA0, regSP, 0),
		lb(regA1, regSP, 3),
		ebreakWord,
	)
	runToHalt(t, m)
	if got := m.Regs.Get(regA0); got != 0xFF {
		t.Fatalf("a0 = 0x%08x, want 0xff", got)
	}
	if got := m.Regs.Get(regA1); got != 0xFFFF_FFFF {
		t.Fatalf("a1 = 0x%08x, want 0xffffffff", got)
	}
}

func TestScenario6_DivisionEdgeCase(t *testing.T) {
	m := newVMWithWords(t,
		lui(regT0, 0x8000_0000),
		addi(regT1, regZero, -1),
		div(regT2, regT0, regT1),
		rem(regT3, regT0, regT1),
		ebreakWord,
	)
	runToHalt(t, m)
	if got := m.Regs.Get(regT2); got != 0x8000_0000 {
		t.Fatalf("t2 = 0x%08x, want 0x80000000", got)
	}
	if got := m.Regs.Get(regT3); got != 0 {
		t.Fatalf("t3 = %d, want 0", got)
	}
}

func TestRegisterZeroAlwaysReadsZero(t *testing.T) {
	m := newVMWithWords(t,
		addi(regZero, regZero, 123),
		ebreakWord,
	)
	runToHalt(t, m)
	if got := m.Regs.Get(regZero); got != 0 {
		t.Fatalf("x0 = %d, want 0 even after a write attempt", got)
	}
}

func TestNonBranchAdvancesPCByFour(t *testing.T) {
	m := newVMWithWords(t, addi(regT0, regZero, 1), ebreakWord)
	before := m.PC
	if _, err := m.Step(); err != nil {
		t.Fatalf("step failed: %v", err)
	}
	if m.PC != before+4 {
		t.Fatalf("pc = 0x%08x, want 0x%08x", m.PC, before+4)
	}
}

func TestFalseBranchAdvancesPCByFour(t *testing.T) {
	m := newVMWithWords(t, beq(regT0, regT1, 0x100), ebreakWord)
	m.Regs.Set(regT0, 1) // t0 != t1, so beq is not taken
	before := m.PC
	if _, err := m.Step(); err != nil {
		t.Fatalf("step failed: %v", err)
	}
	if m.PC != before+4 {
		t.Fatalf("pc = 0x%08x, want 0x%08x", m.PC, before+4)
	}
}

func TestJalLinksReturnAddressEvenWhenNotUsed(t *testing.T) {
	m := newVMWithWords(t, encJ(regA0, 8), addi(regA1, regZero, 9), ebreakWord)
	before := m.PC
	if _, err := m.Step(); err != nil {
		t.Fatalf("step failed: %v", err)
	}
	if got := m.Regs.Get(regA0); got != before+4 {
		t.Fatalf("a0 = 0x%08x, want 0x%08x", got, before+4)
	}
}

func TestJalrMasksBitZero(t *testing.T) {
	m := NewVM()
	m.Regs.Set(regT0, Base+5) // odd target
	word := encI(OpcodeJalr, 0b000, regA0, regT0, 0)
	if err := m.Mem.WriteWord(Base, word); err != nil {
		t.Fatal(err)
	}
	if err := m.Mem.WriteWord(Base+4, ebreakWord); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Step(); err != nil {
		t.Fatalf("step failed: %v", err)
	}
	if m.PC != Base+4 {
		t.Fatalf("pc = 0x%08x, want 0x%08x (bit 0 masked)", m.PC, Base+4)
	}
}

func TestAddOverflowWraps(t *testing.T) {
	m := NewVM()
	m.Regs.Set(regT0, 0xFFFF_FFFF)
	m.Regs.Set(regT1, 2)
	word := add(regA0, regT0, regT1)
	if err := m.Mem.WriteWord(Base, word); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Step(); err != nil {
		t.Fatalf("step failed: %v", err)
	}
	if got := m.Regs.Get(regA0); got != 1 {
		t.Fatalf("a0 = %d, want 1 (wrapped)", got)
	}
}

func TestResetRegistersPreservesMemory(t *testing.T) {
	m := newVMWithWords(t, addi(regA0, regZero, 1), ebreakWord)
	m.EntryPC = Base
	runToHalt(t, m)
	if got := m.Regs.Get(regA0); got != 1 {
		t.Fatalf("a0 = %d, want 1 before reset", got)
	}

	m.ResetRegisters()

	if m.PC != Base {
		t.Fatalf("pc = 0x%08x, want 0x%08x (EntryPC) after ResetRegisters", m.PC, Base)
	}
	if got := m.Regs.Get(regA0); got != 0 {
		t.Fatalf("a0 = %d, want 0 after ResetRegisters", got)
	}
	word, err := m.Mem.ReadWord(Base)
	if err != nil {
		t.Fatalf("read back program word: %v", err)
	}
	if word != addi(regA0, regZero, 1) {
		t.Fatalf("memory was wiped by ResetRegisters, want program word preserved")
	}
}

func TestUnknownOpcodeIsNoOpWithTrace(t *testing.T) {
	m := NewVM()
	// opcode 0b1111111 is not in the dispatch table.
	word := uint32(0b1111111)
	if err := m.Mem.WriteWord(Base, word); err != nil {
		t.Fatal(err)
	}
	before := m.Regs.Snapshot()
	rec, err := m.Step()
	if err != nil {
		t.Fatalf("unexpected error on unknown opcode: %v", err)
	}
	if rec.Mnemonic != "unknown" {
		t.Fatalf("mnemonic = %q, want %q", rec.Mnemonic, "unknown")
	}
	if m.PC != Base+4 {
		t.Fatalf("pc did not advance by 4 on unknown opcode")
	}
	after := m.Regs.Snapshot()
	if before != after {
		t.Fatalf("unknown opcode must not mutate registers")
	}
}
