package vm

import "testing"

func TestImmIExtraction(t *testing.T) {
	word := encI(OpcodeOpImm, 0, 0, 0, -1)
	if got := immI(word); got != -1 {
		t.Fatalf("immI = %d, want -1", got)
	}
	word = encI(OpcodeOpImm, 0, 0, 0, 0x7FF)
	if got := immI(word); got != 0x7FF {
		t.Fatalf("immI = %d, want 0x7ff", got)
	}
}

func TestImmSExtraction(t *testing.T) {
	word := encS(OpcodeStore, 0, 0, 0, -4)
	if got := immS(word); got != -4 {
		t.Fatalf("immS = %d, want -4", got)
	}
}

func TestImmBExtraction(t *testing.T) {
	word := encB(0, 0, 0, -8)
	if got := immB(word); got != -8 {
		t.Fatalf("immB = %d, want -8", got)
	}
	word = encB(0, 0, 0, 4094)
	if got := immB(word); got != 4094 {
		t.Fatalf("immB = %d, want 4094", got)
	}
}

func TestImmUExtraction(t *testing.T) {
	word := encU(OpcodeLui, 0, 0x12345000)
	if got := immU(word); uint32(got) != 0x12345000 {
		t.Fatalf("immU = 0x%08x, want 0x12345000", uint32(got))
	}
}

func TestImmJExtraction(t *testing.T) {
	word := encJ(0, -16)
	if got := immJ(word); got != -16 {
		t.Fatalf("immJ = %d, want -16", got)
	}
	word = encJ(0, 100000)
	if got := immJ(word); got != 100000 {
		t.Fatalf("immJ = %d, want 100000", got)
	}
}

func TestDecodeClassDispatch(t *testing.T) {
	cases := []struct {
		name  string
		word  uint32
		class Class
	}{
		{"load", lbu(0, 0, 0), Load},
		{"opimm", addi(0, 0, 0), OpImm},
		{"lui", lui(0, 0), Lui},
		{"store", sw(0, 0, 0), Store},
		{"op", add(0, 0, 0), Op},
		{"branch", beq(0, 0, 0), Branch},
		{"jal", encJ(0, 0), Jal},
		{"system", ebreakWord, System},
		{"unknown", 0b1111111, Unknown},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			inst := Decode(c.word)
			if inst.Class != c.class {
				t.Fatalf("class = %v, want %v", inst.Class, c.class)
			}
		})
	}
}

func TestTraceLineFormatMatchesSpecExample(t *testing.T) {
	m := newVMWithWords(t, addi(regA0, regZero, 0x00a), ebreakWord)
	rec, err := m.Step()
	if err != nil {
		t.Fatalf("step failed: %v", err)
	}
	want := "0x80000000:addi   a0,zero,0x00a   a0=0x00000000+0x0000000a=0x0000000a"
	if rec.Text != want {
		t.Fatalf("trace line = %q, want %q", rec.Text, want)
	}
}

func TestTraceLineFormatMatchesSpecLoadExample(t *testing.T) {
	m := newVMWithWords(t, addi(regZero, regZero, 0), lw(regA1, regSP, 4), ebreakWord)
	m.Regs.Set(regSP, 0x800000FC)
	if err := m.Mem.WriteWord(0x80000100, 0xdeadbeef); err != nil {
		t.Fatalf("failed to seed memory: %v", err)
	}

	if _, err := m.Step(); err != nil {
		t.Fatalf("step failed: %v", err)
	}
	rec, err := m.Step()
	if err != nil {
		t.Fatalf("step failed: %v", err)
	}
	want := "0x80000004:lw     a1,0x004(sp)    a1=mem[0x80000100]=0xdeadbeef"
	if rec.Text != want {
		t.Fatalf("trace line = %q, want %q", rec.Text, want)
	}
}

func TestTraceEBreakFormat(t *testing.T) {
	m := newVMWithWords(t, ebreakWord)
	rec, err := m.Step()
	if err != nil {
		t.Fatalf("step failed: %v", err)
	}
	want := "0x80000000:ebreak"
	if rec.Text != want {
		t.Fatalf("trace line = %q, want %q", rec.Text, want)
	}
	if !rec.Halt {
		t.Fatalf("ebreak must signal halt")
	}
}
