package vm

import "strconv"

// ABINames maps register index 0..31 to its canonical RISC-V ABI name.
// Used only by the tracer and debugger — the executor and decoder always
// address registers by numeric index.
var ABINames = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// ABIName returns the canonical register name for index i, or "?" if i is
// out of range.
func ABIName(i uint32) string {
	if i >= uint32(len(ABINames)) {
		return "?"
	}
	return ABINames[i]
}

// LookupABI resolves an ABI name ("t0", "sp", ...) or an "x<N>" numeric form
// to a register index. Used by the debugger to parse user-typed register
// references.
func LookupABI(name string) (uint32, bool) {
	for i, n := range ABINames {
		if n == name {
			return uint32(i), true
		}
	}
	if len(name) > 1 && name[0] == 'x' {
		if v, err := strconv.ParseUint(name[1:], 10, 32); err == nil && v < uint64(len(ABINames)) {
			return uint32(v), true
		}
	}
	return 0, false
}
